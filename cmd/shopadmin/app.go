package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/shopadmin/internal/dashboard"
	"github.com/angelmondragon/shopadmin/internal/resources"
	"github.com/angelmondragon/shopadmin/internal/store"
	"github.com/angelmondragon/shopadmin/pkg/logger"
	"github.com/angelmondragon/shopadmin/pkg/pagination"
	"github.com/shopspring/decimal"
)

const usage = `usage: shopadmin <command> [flags]

commands:
  login -email E -password P
  logout
  list <resource> [-page N -size N -search S -sort FIELD -desc]
  get <resource> <id>
  delete <resource> <id>...
  create category|merchant|customer|payment|expense [flags]
  today
  profits [-from YYYY-MM-DD -to YYYY-MM-DD]
  sessions [-page N -size N]
  invoice <orderID> [-out DIR]
  dashboard

resources: ` + "%s\n"

var errUsage = errors.New("invalid usage")

type app struct {
	st   *store.Store
	out  io.Writer
	logg *logger.Logger
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usage()
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.login(ctx, rest)
	case "logout":
		if err := a.st.Account.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, a.st.Account.State().Message)
		return nil
	case "list":
		return a.list(ctx, rest)
	case "get":
		return a.get(ctx, rest)
	case "delete":
		return a.delete(ctx, rest)
	case "create":
		return a.create(ctx, rest)
	case "today":
		orders, err := a.st.Reports.LoadTodayOrders(ctx)
		if err != nil {
			return err
		}
		return a.print(orders)
	case "profits":
		return a.profits(ctx, rest)
	case "sessions":
		return a.sessions(ctx, rest)
	case "invoice":
		return a.invoice(ctx, rest)
	case "dashboard":
		summary, err := dashboard.NewLoader(a.st, a.logg).Load(ctx)
		if perr := a.print(summary); perr != nil {
			return perr
		}
		return err
	case "help", "-h", "--help":
		return a.usage()
	default:
		fmt.Fprintf(a.out, "unknown command %q\n", cmd)
		return a.usage()
	}
}

func (a *app) usage() error {
	fmt.Fprintf(a.out, usage, strings.Join(resources.ResourceNames(), ", "))
	return errUsage
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("%w: login needs -email and -password", errUsage)
	}
	result, err := a.st.Account.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "logged in as %s (expires %s)\n", result.User.Email, result.ExpiresAt.Format(time.RFC3339))
	return nil
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *app) resource(name string) (resourceCommands, error) {
	cmds, ok := commandsFor(a.st)[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: unknown resource %q", errUsage, name)
	}
	return cmds, nil
}

func (a *app) list(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: list needs a resource", errUsage)
	}
	cmds, err := a.resource(args[0])
	if err != nil {
		return err
	}
	fs := a.flags("list")
	pageNum := fs.Int("page", 1, "page number")
	size := fs.Int("size", pagination.DefaultPageSize, "page size")
	search := fs.String("search", "", "search text")
	sortField := fs.String("sort", "", "sort field")
	desc := fs.Bool("desc", false, "sort descending")
	if err := fs.Parse(args[1:]); err != nil {
		return errUsage
	}
	page, err := cmds.list(ctx, pagination.Query{
		PageNumber:     *pageNum,
		PageSize:       *size,
		Search:         *search,
		SortField:      *sortField,
		SortDescending: *desc,
	})
	if err != nil {
		return err
	}
	return a.print(page)
}

func (a *app) get(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: get needs a resource and an id", errUsage)
	}
	cmds, err := a.resource(args[0])
	if err != nil {
		return err
	}
	id, err := parseID(args[1])
	if err != nil {
		return err
	}
	item, err := cmds.get(ctx, id)
	if err != nil {
		return err
	}
	return a.print(item)
}

func (a *app) delete(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: delete needs a resource and at least one id", errUsage)
	}
	cmds, err := a.resource(args[0])
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(args)-1)
	for _, raw := range args[1:] {
		id, err := parseID(raw)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	n, err := cmds.deleteMany(ctx, ids)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "deleted %d row(s)\n", n)
	return a.refresh(ctx, cmds)
}

// refresh re-fetches the first page after a mutation so the held list matches
// the server.
func (a *app) refresh(ctx context.Context, cmds resourceCommands) error {
	total, err := cmds.refresh(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%d row(s) on the server\n", total)
	return nil
}

func (a *app) create(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: create needs a resource", errUsage)
	}
	kind, rest := strings.ToLower(args[0]), args[1:]
	fs := a.flags("create " + kind)

	var submit func() (any, error)
	switch kind {
	case "category":
		name := fs.String("name", "", "category name")
		submit = func() (any, error) {
			return a.st.Categories.Create(ctx, resources.CategoryInput{Name: *name})
		}
	case "merchant", "customer":
		name := fs.String("name", "", "name")
		phone := fs.String("phone", "", "phone number")
		address := fs.String("address", "", "address")
		balance := fs.String("balance", "0", "outstanding balance")
		submit = func() (any, error) {
			amount, err := parseAmount("balance", *balance)
			if err != nil {
				return nil, err
			}
			if kind == "merchant" {
				return a.st.Merchants.Create(ctx, resources.MerchantInput{Name: *name, Phone: *phone, Address: *address, OutstandingBalance: amount})
			}
			return a.st.Customers.Create(ctx, resources.CustomerInput{Name: *name, Phone: *phone, Address: *address, OutstandingBalance: amount})
		}
	case "payment":
		customer := fs.Int64("customer", 0, "customer id")
		amountRaw := fs.String("amount", "", "amount received")
		dateRaw := fs.String("date", "", "payment date (YYYY-MM-DD, default today)")
		info := fs.String("info", "", "note")
		submit = func() (any, error) {
			amount, err := parseAmount("amount", *amountRaw)
			if err != nil {
				return nil, err
			}
			date, err := parseDate(*dateRaw)
			if err != nil {
				return nil, err
			}
			return a.st.Payments.Create(ctx, resources.PaymentInput{Amount: amount, CustomerID: *customer, Date: date, Info: *info})
		}
	case "expense":
		categoryRaw := fs.String("category", "Other", "expense category name")
		amountRaw := fs.String("amount", "", "amount spent")
		dateRaw := fs.String("date", "", "expense date (YYYY-MM-DD, default today)")
		info := fs.String("info", "", "note")
		submit = func() (any, error) {
			category, ok := resources.ParseExpenseCategory(*categoryRaw)
			if !ok {
				return nil, fmt.Errorf("%w: unknown expense category %q", errUsage, *categoryRaw)
			}
			amount, err := parseAmount("amount", *amountRaw)
			if err != nil {
				return nil, err
			}
			date, err := parseDate(*dateRaw)
			if err != nil {
				return nil, err
			}
			return a.st.Expenses.Create(ctx, resources.ExpenseInput{Amount: amount, Category: category, Date: date, Info: *info})
		}
	default:
		return fmt.Errorf("%w: cannot create %q", errUsage, kind)
	}

	if err := fs.Parse(rest); err != nil {
		return errUsage
	}
	created, err := submit()
	if err != nil {
		return err
	}
	if err := a.print(created); err != nil {
		return err
	}
	cmds, err := a.resource(kind)
	if err != nil {
		return err
	}
	return a.refresh(ctx, cmds)
}

func (a *app) profits(ctx context.Context, args []string) error {
	fs := a.flags("profits")
	from := fs.String("from", "", "first day (YYYY-MM-DD)")
	to := fs.String("to", "", "last day (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	report, err := a.st.Reports.LoadProfits(ctx, *from, *to)
	if err != nil {
		return err
	}
	return a.print(report)
}

func (a *app) sessions(ctx context.Context, args []string) error {
	fs := a.flags("sessions")
	pageNum := fs.Int("page", 1, "page number")
	size := fs.Int("size", pagination.DefaultPageSize, "page size")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	page, err := a.st.Reports.LoadSessions(ctx, pagination.Query{PageNumber: *pageNum, PageSize: *size, SortField: "loginTime", SortDescending: true})
	if err != nil {
		return err
	}
	return a.print(page)
}

// invoice saves the generated PDF under the filename the server supplied.
func (a *app) invoice(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: invoice needs an order id", errUsage)
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	fs := a.flags("invoice")
	dir := fs.String("out", ".", "directory to write the PDF to")
	if err := fs.Parse(args[1:]); err != nil {
		return errUsage
	}
	att, err := a.st.Reports.DownloadInvoice(ctx, id)
	if err != nil {
		return err
	}
	target := filepath.Join(*dir, filepath.Base(att.Filename))
	if err := os.WriteFile(target, att.Content, 0o644); err != nil {
		return fmt.Errorf("write invoice: %w", err)
	}
	fmt.Fprintf(a.out, "saved %s (%d bytes)\n", target, len(att.Content))
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: %q is not a valid id", errUsage, raw)
	}
	return id, nil
}

func parseAmount(name, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: -%s must be a number", errUsage, name)
	}
	return d, nil
}

func parseDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: dates use YYYY-MM-DD", errUsage)
	}
	return t, nil
}

// resourceCommands adapts one typed slice to the generic list/get/delete commands.
type resourceCommands interface {
	list(ctx context.Context, q pagination.Query) (any, error)
	get(ctx context.Context, id int64) (any, error)
	deleteMany(ctx context.Context, ids []int64) (int64, error)
	refresh(ctx context.Context) (int, error)
}

type sliceCommands[E, I any] struct {
	slice *store.Slice[E, I]
}

func (c sliceCommands[E, I]) list(ctx context.Context, q pagination.Query) (any, error) {
	return c.slice.ListAll(ctx, q)
}

func (c sliceCommands[E, I]) get(ctx context.Context, id int64) (any, error) {
	return c.slice.GetOne(ctx, id)
}

func (c sliceCommands[E, I]) deleteMany(ctx context.Context, ids []int64) (int64, error) {
	return c.slice.DeleteMany(ctx, ids)
}

func (c sliceCommands[E, I]) refresh(ctx context.Context) (int, error) {
	page, err := c.slice.ListAll(ctx, pagination.Query{})
	if err != nil {
		return 0, err
	}
	return page.MetaData.TotalCount, nil
}

func commandsFor(st *store.Store) map[string]resourceCommands {
	return map[string]resourceCommands{
		"category": sliceCommands[resources.Category, resources.CategoryInput]{st.Categories},
		"merchant": sliceCommands[resources.Merchant, resources.MerchantInput]{st.Merchants},
		"product":  sliceCommands[resources.Product, resources.ProductInput]{st.Products},
		"customer": sliceCommands[resources.Customer, resources.CustomerInput]{st.Customers},
		"order":    sliceCommands[resources.Order, resources.OrderInput]{st.Orders},
		"purchase": sliceCommands[resources.Purchase, resources.PurchaseInput]{st.Purchases},
		"payment":  sliceCommands[resources.Payment, resources.PaymentInput]{st.Payments},
		"expense":  sliceCommands[resources.Expense, resources.ExpenseInput]{st.Expenses},
		"user":     sliceCommands[resources.User, resources.UserInput]{st.Users},
	}
}

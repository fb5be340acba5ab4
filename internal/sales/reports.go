package sales

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/shopadmin/internal/resources"
	"github.com/angelmondragon/shopadmin/pkg/db"
	"github.com/angelmondragon/shopadmin/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	dateLayout = "2006-01-02"
	// DefaultProfitDays is the window reported when no range is given.
	DefaultProfitDays = 30
	// MaxProfitDays bounds a single profit report.
	MaxProfitDays = 366
)

// Reports computes the read-only order reports.
type Reports struct {
	db  *gorm.DB
	now Clock
	loc *time.Location
}

// NewReports builds the report service. Days are cut in loc (UTC when nil).
func NewReports(database *gorm.DB, now Clock, loc *time.Location) *Reports {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Reports{db: database, now: now, loc: loc}
}

func (r *Reports) dayStart(t time.Time) time.Time {
	t = t.In(r.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.loc)
}

func (r *Reports) ordersBetween(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer").
		Where("order_date >= ? AND order_date < ?", from.UTC(), to.UTC()).
		Order("order_date ASC").
		Order("id ASC").
		Find(&orders).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load orders")
	}
	return orders, nil
}

// TodayOrders lists the orders placed since the start of the current day.
func (r *Reports) TodayOrders(ctx context.Context) ([]resources.Order, error) {
	start := r.dayStart(r.now())
	orders, err := r.ordersBetween(ctx, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	out := make([]resources.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, OrderFromModel(o))
	}
	return out, nil
}

// Profits reports revenue, cost and profit per day between two inclusive
// YYYY-MM-DD dates. Missing bounds default to the last DefaultProfitDays days.
func (r *Reports) Profits(ctx context.Context, fromRaw, toRaw string) (*resources.ProfitReport, error) {
	to := r.dayStart(r.now())
	if strings.TrimSpace(toRaw) != "" {
		parsed, err := time.ParseInLocation(dateLayout, strings.TrimSpace(toRaw), r.loc)
		if err != nil {
			return nil, invalidDate("to", toRaw)
		}
		to = parsed
	}
	from := to.AddDate(0, 0, -(DefaultProfitDays - 1))
	if strings.TrimSpace(fromRaw) != "" {
		parsed, err := time.ParseInLocation(dateLayout, strings.TrimSpace(fromRaw), r.loc)
		if err != nil {
			return nil, invalidDate("from", fromRaw)
		}
		from = parsed
	}
	if from.After(to) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid range").WithMessages("from must not be after to")
	}
	if to.Sub(from) >= MaxProfitDays*24*time.Hour {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "range too long").
			WithMessages(fmt.Sprintf("A profit report covers at most %d days", MaxProfitDays))
	}

	orders, err := r.ordersBetween(ctx, from, to.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	byDay := map[string]*resources.DailyProfit{}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		key := day.Format(dateLayout)
		byDay[key] = &resources.DailyProfit{Date: key}
	}
	for _, o := range orders {
		day, ok := byDay[o.OrderDate.In(r.loc).Format(dateLayout)]
		if !ok {
			continue
		}
		day.Orders++
		for _, item := range o.Items {
			day.Revenue = day.Revenue.Add(item.SubTotal)
			day.Cost = day.Cost.Add(item.UnitCost.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	report := &resources.ProfitReport{
		From: from.Format(dateLayout),
		To:   to.Format(dateLayout),
		Days: make([]resources.DailyProfit, 0, len(byDay)),
	}
	for _, day := range byDay {
		day.Profit = day.Revenue.Sub(day.Cost)
		report.TotalRevenue = report.TotalRevenue.Add(day.Revenue)
		report.TotalCost = report.TotalCost.Add(day.Cost)
		report.Days = append(report.Days, *day)
	}
	sort.Slice(report.Days, func(i, j int) bool { return report.Days[i].Date < report.Days[j].Date })
	report.TotalProfit = report.TotalRevenue.Sub(report.TotalCost)
	return report, nil
}

func invalidDate(field, raw string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid date").
		WithMessages(fmt.Sprintf("%s must be a YYYY-MM-DD date, got %q", field, raw))
}

// Invoice builds the printable view of an order.
func (r *Reports) Invoice(ctx context.Context, orderID int64) (*resources.Invoice, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Customer").
		Preload("User").
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, db.Translate(err, "Order not found")
	}

	inv := &resources.Invoice{
		OrderID:       order.ID,
		InvoiceNumber: InvoiceNumber(order.ID),
		OrderDate:     order.OrderDate,
		Notes:         order.Notes,
		TotalAmount:   order.TotalAmount,
		TotalDiscount: order.TotalDiscount,
		Lines:         make([]resources.InvoiceLine, 0, len(order.Items)),
	}
	if order.Customer != nil {
		inv.CustomerName = order.Customer.Name
		inv.CustomerPhone = order.Customer.Phone
	}
	if order.User != nil {
		inv.CashierName = order.User.FullName()
	}
	for _, item := range order.Items {
		inv.Lines = append(inv.Lines, resources.InvoiceLine{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
			SubTotal:    item.SubTotal,
		})
	}
	return inv, nil
}

// InvoicePDF renders the invoice as a PDF document and its download filename.
func (r *Reports) InvoicePDF(ctx context.Context, orderID int64) ([]byte, string, error) {
	inv, err := r.Invoice(ctx, orderID)
	if err != nil {
		return nil, "", err
	}
	return RenderInvoicePDF(*inv), fmt.Sprintf("invoice-%d.pdf", orderID), nil
}

// MerchantPurchases lists every purchase recorded for a merchant, newest first.
func (r *Reports) MerchantPurchases(ctx context.Context, merchantID int64) ([]resources.Purchase, error) {
	var merchant models.Merchant
	if err := r.db.WithContext(ctx).Select("id").Where("id = ?", merchantID).First(&merchant).Error; err != nil {
		return nil, db.Translate(err, "Merchant not found")
	}
	var purchases []models.Purchase
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("merchant_id = ?", merchantID).
		Order("order_date DESC").
		Order("id DESC").
		Find(&purchases).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load purchases")
	}
	out := make([]resources.Purchase, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, PurchaseFromModel(p))
	}
	return out, nil
}

func InvoiceNumber(orderID int64) string {
	return fmt.Sprintf("INV-%06d", orderID)
}

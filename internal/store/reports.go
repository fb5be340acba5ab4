package store

import (
	"context"

	"github.com/angelmondragon/shopadmin/internal/resources"
	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/angelmondragon/shopadmin/pkg/logger"
	"github.com/angelmondragon/shopadmin/pkg/pagination"
	"github.com/angelmondragon/shopadmin/pkg/transport"
	"github.com/angelmondragon/shopadmin/pkg/types"
)

// ReportsAPI is the read-only report surface.
type ReportsAPI interface {
	TodayOrders(ctx context.Context) (*types.SingleEnvelope[[]resources.Order], error)
	Profits(ctx context.Context, from, to string) (*types.SingleEnvelope[resources.ProfitReport], error)
	Invoice(ctx context.Context, orderID int64) (*types.SingleEnvelope[resources.Invoice], error)
	GenerateInvoice(ctx context.Context, orderID int64) (*transport.Attachment, error)
	MerchantPurchases(ctx context.Context, merchantID int64) (*types.SingleEnvelope[[]resources.Purchase], error)
	UserSessions(ctx context.Context, query pagination.Query) (*types.ListEnvelope[resources.Session], error)
}

type ReportsState struct {
	TodayOrders       []resources.Order
	Profits           *resources.ProfitReport
	Invoice           *resources.Invoice
	MerchantPurchases []resources.Purchase
	Sessions          []resources.Session
	SessionsMeta      pagination.MetaData
	Error             string
	Loading           bool
}

func cloneReports(s ReportsState) ReportsState {
	out := s
	out.TodayOrders = cloneSlice(s.TodayOrders)
	out.MerchantPurchases = cloneSlice(s.MerchantPurchases)
	out.Sessions = cloneSlice(s.Sessions)
	if s.Profits != nil {
		p := *s.Profits
		p.Days = cloneSlice(s.Profits.Days)
		out.Profits = &p
	}
	if s.Invoice != nil {
		inv := *s.Invoice
		inv.Lines = cloneSlice(s.Invoice.Lines)
		out.Invoice = &inv
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	return append(make([]T, 0, len(in)), in...)
}

// ReportsSlice holds dashboard and report data.
type ReportsSlice struct {
	api  ReportsAPI
	logg *logger.Logger
	cell *cell[ReportsState]
}

func NewReportsSlice(api ReportsAPI, logg *logger.Logger) *ReportsSlice {
	if logg == nil {
		logg = logger.Nop()
	}
	return &ReportsSlice{api: api, logg: logg, cell: newCell(ReportsState{}, cloneReports)}
}

func (r *ReportsSlice) State() ReportsState {
	return r.cell.snapshot()
}

func (r *ReportsSlice) Subscribe(fn func(ReportsState)) func() {
	return r.cell.subscribe(fn)
}

func (r *ReportsSlice) pending() {
	r.cell.update(func(st *ReportsState) {
		st.Loading = true
		st.Error = ""
	})
}

func (r *ReportsSlice) rejected(ctx context.Context, op string, err error) error {
	msg := pkgerrors.UserMessage(err)
	r.cell.update(func(st *ReportsState) {
		st.Loading = false
		st.Error = msg
	})
	r.logg.Warn(r.logg.WithFields(ctx, map[string]any{"resource": "Reports", "operation": op, "error": err.Error()}), "store operation rejected")
	return err
}

func (r *ReportsSlice) LoadTodayOrders(ctx context.Context) ([]resources.Order, error) {
	r.pending()
	out, err := r.api.TodayOrders(ctx)
	if err != nil {
		return nil, r.rejected(ctx, "todayOrders", err)
	}
	r.cell.update(func(st *ReportsState) {
		st.Loading = false
		st.TodayOrders = cloneSlice(out.Data)
	})
	return out.Data, nil
}

func (r *ReportsSlice) LoadProfits(ctx context.Context, from, to string) (*resources.ProfitReport, error) {
	r.pending()
	out, err := r.api.Profits(ctx, from, to)
	if err != nil {
		return nil, r.rejected(ctx, "profits", err)
	}
	report := out.Data
	r.cell.update(func(st *ReportsState) {
		st.Loading = false
		p := report
		st.Profits = &p
	})
	return &report, nil
}

func (r *ReportsSlice) LoadInvoice(ctx context.Context, orderID int64) (*resources.Invoice, error) {
	r.pending()
	out, err := r.api.Invoice(ctx, orderID)
	if err != nil {
		return nil, r.rejected(ctx, "invoice", err)
	}
	inv := out.Data
	r.cell.update(func(st *ReportsState) {
		st.Loading = false
		i := inv
		st.Invoice = &i
	})
	return &inv, nil
}

// DownloadInvoice fetches the PDF. Only Loading and Error are touched; the
// caller saves the file.
func (r *ReportsSlice) DownloadInvoice(ctx context.Context, orderID int64) (*transport.Attachment, error) {
	r.pending()
	att, err := r.api.GenerateInvoice(ctx, orderID)
	if err != nil {
		return nil, r.rejected(ctx, "generateInvoice", err)
	}
	r.cell.update(func(st *ReportsState) {
		st.Loading = false
	})
	return att, nil
}

func (r *ReportsSlice) LoadMerchantPurchases(ctx context.Context, merchantID int64) ([]resources.Purchase, error) {
	r.pending()
	out, err := r.api.MerchantPurchases(ctx, merchantID)
	if err != nil {
		return nil, r.rejected(ctx, "merchantPurchases", err)
	}
	r.cell.update(func(st *ReportsState) {
		st.Loading = false
		st.MerchantPurchases = cloneSlice(out.Data)
	})
	return out.Data, nil
}

func (r *ReportsSlice) LoadSessions(ctx context.Context, query pagination.Query) (*types.ListEnvelope[resources.Session], error) {
	r.pending()
	out, err := r.api.UserSessions(ctx, query)
	if err != nil {
		return nil, r.rejected(ctx, "sessions", err)
	}
	r.cell.update(func(st *ReportsState) {
		st.Loading = false
		st.Sessions = cloneSlice(out.Items)
		st.SessionsMeta = out.MetaData
	})
	return out, nil
}

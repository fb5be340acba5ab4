// Package dashboard loads the panel's landing view: today's orders, the
// profit report and the first pages of products and customers.
package dashboard

import (
	"context"
	"fmt"

	"github.com/angelmondragon/shopadmin/internal/resources"
	"github.com/angelmondragon/shopadmin/internal/store"
	"github.com/angelmondragon/shopadmin/pkg/logger"
	"github.com/angelmondragon/shopadmin/pkg/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// LowStockThreshold is the quantity at or below which a stocked product is flagged.
const LowStockThreshold = 5

type Summary struct {
	TodayOrders   []resources.Order
	TodayRevenue  decimal.Decimal
	Profits       *resources.ProfitReport
	ProductCount  int
	CustomerCount int
	LowStock      []resources.Product
}

type Loader struct {
	store *store.Store
	logg  *logger.Logger
	// ProfitFrom and ProfitTo bound the profit report; empty uses the server default.
	ProfitFrom string
	ProfitTo   string
}

func NewLoader(st *store.Store, logg *logger.Logger) *Loader {
	if logg == nil {
		logg = logger.Nop()
	}
	return &Loader{store: st, logg: logg}
}

// Load fetches every section concurrently. A failing section does not stop
// the others; the returned summary holds whatever loaded and the error
// combines every failure.
func (l *Loader) Load(ctx context.Context) (*Summary, error) {
	var (
		g       errgroup.Group
		summary Summary
		errs    = make([]error, 4)
	)
	firstPage := pagination.Query{PageNumber: 1, PageSize: pagination.DefaultPageSize}

	g.Go(func() error {
		orders, err := l.store.Reports.LoadTodayOrders(ctx)
		if err != nil {
			errs[0] = fmt.Errorf("today's orders: %w", err)
			return nil
		}
		summary.TodayOrders = orders
		for _, o := range orders {
			summary.TodayRevenue = summary.TodayRevenue.Add(o.TotalAmount)
		}
		return nil
	})
	g.Go(func() error {
		report, err := l.store.Reports.LoadProfits(ctx, l.ProfitFrom, l.ProfitTo)
		if err != nil {
			errs[1] = fmt.Errorf("profits: %w", err)
			return nil
		}
		summary.Profits = report
		return nil
	})
	g.Go(func() error {
		page, err := l.store.Products.ListAll(ctx, firstPage)
		if err != nil {
			errs[2] = fmt.Errorf("products: %w", err)
			return nil
		}
		summary.ProductCount = page.MetaData.TotalCount
		for _, p := range page.Items {
			if p.IsStock && p.Quantity <= LowStockThreshold {
				summary.LowStock = append(summary.LowStock, p)
			}
		}
		return nil
	})
	g.Go(func() error {
		page, err := l.store.Customers.ListAll(ctx, firstPage)
		if err != nil {
			errs[3] = fmt.Errorf("customers: %w", err)
			return nil
		}
		summary.CustomerCount = page.MetaData.TotalCount
		return nil
	})
	_ = g.Wait()

	err := multierr.Combine(errs...)
	if err != nil {
		l.logg.Warn(l.logg.WithField(ctx, "failures", len(multierr.Errors(err))), "dashboard partially loaded")
	}
	return &summary, err
}

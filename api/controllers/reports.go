package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/shopadmin/api/responses"
	"github.com/angelmondragon/shopadmin/api/validators"
	"github.com/angelmondragon/shopadmin/internal/resources"
	"github.com/angelmondragon/shopadmin/pkg/logger"
	"github.com/angelmondragon/shopadmin/pkg/pagination"
	"github.com/angelmondragon/shopadmin/pkg/types"
)

// ReportService produces the read-only dashboard and invoice reports.
type ReportService interface {
	TodayOrders(ctx context.Context) ([]resources.Order, error)
	Profits(ctx context.Context, from, to string) (*resources.ProfitReport, error)
	Invoice(ctx context.Context, orderID int64) (*resources.Invoice, error)
	InvoicePDF(ctx context.Context, orderID int64) ([]byte, string, error)
	MerchantPurchases(ctx context.Context, merchantID int64) ([]resources.Purchase, error)
}

type SessionLister interface {
	List(ctx context.Context, query pagination.Query) (*types.ListEnvelope[resources.Session], error)
}

func TodayOrders(svc ReportService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orders, err := svc.TodayOrders(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteData(w, orders, "")
	}
}

// Profits reads the optional from and to query parameters (YYYY-MM-DD).
func Profits(svc ReportService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		report, err := svc.Profits(r.Context(), q.Get("from"), q.Get("to"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteData(w, *report, "")
	}
}

func Invoice(svc ReportService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		inv, err := svc.Invoice(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteData(w, *inv, "")
	}
}

func GenerateInvoice(svc ReportService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body, filename, err := svc.InvoicePDF(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteFile(w, "application/pdf", filename, body)
	}
}

func MerchantPurchases(svc ReportService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		purchases, err := svc.MerchantPurchases(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteData(w, purchases, "")
	}
}

func UserSessions(svc SessionLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := svc.List(r.Context(), validators.ListQuery(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// Package ledger serves customer payments and shop expenses.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/shopadmin/internal/crud"
	"github.com/angelmondragon/shopadmin/internal/repo"
	"github.com/angelmondragon/shopadmin/internal/resources"
	"github.com/angelmondragon/shopadmin/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"gorm.io/gorm"
)

type (
	PaymentService = crud.Service[models.Payment, resources.Payment, resources.PaymentInput]
	ExpenseService = crud.Service[models.Expense, resources.Expense, resources.ExpenseInput]
)

func dateOrNow(t time.Time, now func() time.Time) time.Time {
	if t.IsZero() {
		t = now()
	}
	return t.UTC()
}

func NewPaymentService(db *gorm.DB, now func() time.Time) (*PaymentService, error) {
	if now == nil {
		now = time.Now
	}
	return crud.New(db, "Payment", repo.ListSpec{
		SearchColumns: []string{"info"},
		SortColumns: map[string]string{
			"id":         "id",
			"amount":     "amount",
			"date":       "date",
			"customerId": "customer_id",
		},
		DefaultSort: "date",
	}, crud.Hooks[models.Payment, resources.Payment, resources.PaymentInput]{
		ID:       func(m models.Payment) int64 { return m.ID },
		ToEntity: PaymentFromModel,
		Apply: func(ctx context.Context, tx *gorm.DB, in resources.PaymentInput, m *models.Payment) error {
			var count int64
			if err := tx.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", in.CustomerID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "unknown customer").
					WithMessages(fmt.Sprintf("Customer %d does not exist", in.CustomerID))
			}
			m.Amount = in.Amount
			m.CustomerID = in.CustomerID
			m.Date = dateOrNow(in.Date, now)
			m.Info = strings.TrimSpace(in.Info)
			m.Customer = nil
			return nil
		},
	})
}

func NewExpenseService(db *gorm.DB, now func() time.Time) (*ExpenseService, error) {
	if now == nil {
		now = time.Now
	}
	return crud.New(db, "Expense", repo.ListSpec{
		SearchColumns: []string{"info"},
		SortColumns: map[string]string{
			"id":       "id",
			"amount":   "amount",
			"date":     "date",
			"category": "category",
		},
		DefaultSort: "date",
	}, crud.Hooks[models.Expense, resources.Expense, resources.ExpenseInput]{
		ID:       func(m models.Expense) int64 { return m.ID },
		ToEntity: ExpenseFromModel,
		Apply: func(_ context.Context, _ *gorm.DB, in resources.ExpenseInput, m *models.Expense) error {
			if !in.Category.IsValid() {
				return pkgerrors.New(pkgerrors.CodeValidation, "unknown expense category").
					WithMessages(fmt.Sprintf("Expense category %d is not valid", in.Category))
			}
			m.Amount = in.Amount
			m.Category = int(in.Category)
			m.Date = dateOrNow(in.Date, now)
			m.Info = strings.TrimSpace(in.Info)
			return nil
		},
	})
}

func PaymentFromModel(m models.Payment) resources.Payment {
	return resources.Payment{
		ID:         m.ID,
		Amount:     m.Amount,
		CustomerID: m.CustomerID,
		Date:       m.Date,
		Info:       m.Info,
	}
}

func ExpenseFromModel(m models.Expense) resources.Expense {
	return resources.Expense{
		ID:       m.ID,
		Amount:   m.Amount,
		Category: resources.ExpenseCategory(m.Category),
		Date:     m.Date,
		Info:     m.Info,
	}
}

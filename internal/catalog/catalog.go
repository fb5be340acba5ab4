// Package catalog serves categories, merchants, customers and products.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/shopadmin/internal/crud"
	"github.com/angelmondragon/shopadmin/internal/repo"
	"github.com/angelmondragon/shopadmin/internal/resources"
	"github.com/angelmondragon/shopadmin/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"gorm.io/gorm"
)

type (
	CategoryService = crud.Service[models.Category, resources.Category, resources.CategoryInput]
	MerchantService = crud.Service[models.Merchant, resources.Merchant, resources.MerchantInput]
	CustomerService = crud.Service[models.Customer, resources.Customer, resources.CustomerInput]
)

var partySortColumns = map[string]string{
	"id":                 "id",
	"name":               "name",
	"phone":              "phone",
	"address":            "address",
	"outstandingBalance": "outstanding_balance",
}

func NewCategoryService(db *gorm.DB) (*CategoryService, error) {
	return crud.New(db, "Category", repo.ListSpec{
		SearchColumns: []string{"name"},
		SortColumns:   map[string]string{"id": "id", "name": "name"},
		DefaultSort:   "id",
	}, crud.Hooks[models.Category, resources.Category, resources.CategoryInput]{
		ID:       func(m models.Category) int64 { return m.ID },
		ToEntity: CategoryFromModel,
		Apply: func(_ context.Context, _ *gorm.DB, in resources.CategoryInput, m *models.Category) error {
			m.Name = strings.TrimSpace(in.Name)
			return nil
		},
		BeforeDelete: func(ctx context.Context, tx *gorm.DB, ids []int64) error {
			return refuseWhenReferenced(ctx, tx, &models.Product{}, "category_id", ids, "Category is used by existing products")
		},
	})
}

func NewMerchantService(db *gorm.DB) (*MerchantService, error) {
	return crud.New(db, "Merchant", repo.ListSpec{
		SearchColumns: []string{"name", "phone", "address"},
		SortColumns:   partySortColumns,
		DefaultSort:   "id",
	}, crud.Hooks[models.Merchant, resources.Merchant, resources.MerchantInput]{
		ID:       func(m models.Merchant) int64 { return m.ID },
		ToEntity: MerchantFromModel,
		Apply: func(_ context.Context, _ *gorm.DB, in resources.MerchantInput, m *models.Merchant) error {
			m.Name = strings.TrimSpace(in.Name)
			m.Phone = strings.TrimSpace(in.Phone)
			m.Address = strings.TrimSpace(in.Address)
			m.OutstandingBalance = in.OutstandingBalance
			return nil
		},
		BeforeDelete: func(ctx context.Context, tx *gorm.DB, ids []int64) error {
			return refuseWhenReferenced(ctx, tx, &models.Purchase{}, "merchant_id", ids, "Merchant has recorded purchases")
		},
	})
}

func NewCustomerService(db *gorm.DB) (*CustomerService, error) {
	return crud.New(db, "Customer", repo.ListSpec{
		SearchColumns: []string{"name", "phone", "address"},
		SortColumns:   partySortColumns,
		DefaultSort:   "id",
	}, crud.Hooks[models.Customer, resources.Customer, resources.CustomerInput]{
		ID:       func(m models.Customer) int64 { return m.ID },
		ToEntity: CustomerFromModel,
		Apply: func(_ context.Context, _ *gorm.DB, in resources.CustomerInput, m *models.Customer) error {
			m.Name = strings.TrimSpace(in.Name)
			m.Phone = strings.TrimSpace(in.Phone)
			m.Address = strings.TrimSpace(in.Address)
			m.OutstandingBalance = in.OutstandingBalance
			return nil
		},
		BeforeDelete: func(ctx context.Context, tx *gorm.DB, ids []int64) error {
			if err := refuseWhenReferenced(ctx, tx, &models.Order{}, "customer_id", ids, "Customer has recorded orders"); err != nil {
				return err
			}
			return tx.WithContext(ctx).Where("customer_id IN ?", ids).Delete(&models.Payment{}).Error
		},
		Enrich: enrichCustomers,
	})
}

// refuseWhenReferenced fails with CONFLICT when any row of model points at ids through column.
func refuseWhenReferenced(ctx context.Context, tx *gorm.DB, model any, column string, ids []int64, message string) error {
	var count int64
	if err := tx.WithContext(ctx).Model(model).Where(column+" IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "referenced rows").WithMessages(message)
	}
	return nil
}

// enrichCustomers fills the read-only order and payment totals.
func enrichCustomers(ctx context.Context, db *gorm.DB, items []resources.Customer) error {
	ids := make([]int64, 0, len(items))
	index := make(map[int64]int, len(items))
	for i, c := range items {
		ids = append(ids, c.ID)
		index[c.ID] = i
	}

	var orders []models.Order
	if err := db.WithContext(ctx).Select("id", "customer_id", "total_amount").Where("customer_id IN ?", ids).Find(&orders).Error; err != nil {
		return fmt.Errorf("load customer orders: %w", err)
	}
	for _, o := range orders {
		c := &items[index[o.CustomerID]]
		c.TotalOrders++
		c.TotalSpent = c.TotalSpent.Add(o.TotalAmount)
	}

	var payments []models.Payment
	if err := db.WithContext(ctx).Select("id", "customer_id", "amount").Where("customer_id IN ?", ids).Find(&payments).Error; err != nil {
		return fmt.Errorf("load customer payments: %w", err)
	}
	for _, p := range payments {
		c := &items[index[p.CustomerID]]
		c.TotalPaid = c.TotalPaid.Add(p.Amount)
	}
	return nil
}

func CategoryFromModel(m models.Category) resources.Category {
	return resources.Category{ID: m.ID, Name: m.Name}
}

func MerchantFromModel(m models.Merchant) resources.Merchant {
	return resources.Merchant{
		ID:                 m.ID,
		Name:               m.Name,
		Phone:              m.Phone,
		Address:            m.Address,
		OutstandingBalance: m.OutstandingBalance,
	}
}

func CustomerFromModel(m models.Customer) resources.Customer {
	return resources.Customer{
		ID:                 m.ID,
		Name:               m.Name,
		Phone:              m.Phone,
		Address:            m.Address,
		OutstandingBalance: m.OutstandingBalance,
	}
}

// Package sales serves orders, purchases and the reports derived from them.
package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/shopadmin/internal/crud"
	"github.com/angelmondragon/shopadmin/internal/repo"
	"github.com/angelmondragon/shopadmin/internal/resources"
	"github.com/angelmondragon/shopadmin/pkg/auth"
	"github.com/angelmondragon/shopadmin/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type (
	OrderService    = crud.Service[models.Order, resources.Order, resources.OrderInput]
	PurchaseService = crud.Service[models.Purchase, resources.Purchase, resources.PurchaseInput]
)

// Clock returns the current time; tests replace it.
type Clock func() time.Time

func NewOrderService(db *gorm.DB, now Clock) (*OrderService, error) {
	if now == nil {
		now = time.Now
	}
	return crud.New(db, "Order", repo.ListSpec{
		SearchColumns: []string{"notes"},
		SortColumns: map[string]string{
			"id":            "id",
			"orderDate":     "order_date",
			"customerId":    "customer_id",
			"totalAmount":   "total_amount",
			"totalDiscount": "total_discount",
		},
		DefaultSort: "order_date",
		Preloads:    []string{"Items", "Customer"},
	}, crud.Hooks[models.Order, resources.Order, resources.OrderInput]{
		ID:       func(m models.Order) int64 { return m.ID },
		ToEntity: OrderFromModel,
		Apply: func(ctx context.Context, tx *gorm.DB, in resources.OrderInput, m *models.Order) error {
			return applyOrder(ctx, tx, now, in, m)
		},
		AfterSave: func(ctx context.Context, tx *gorm.DB, _ resources.OrderInput, m *models.Order) error {
			if err := tx.WithContext(ctx).Where("order_id = ?", m.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			for i := range m.Items {
				m.Items[i].ID = 0
				m.Items[i].OrderID = m.ID
			}
			if len(m.Items) == 0 {
				return nil
			}
			return tx.WithContext(ctx).Create(&m.Items).Error
		},
		BeforeDelete: func(ctx context.Context, tx *gorm.DB, ids []int64) error {
			return tx.WithContext(ctx).Where("order_id IN ?", ids).Delete(&models.OrderItem{}).Error
		},
	})
}

// applyOrder prices every line from the current product prices and derives
// the order totals. A line's subtotal is unit price times quantity minus its discount.
func applyOrder(ctx context.Context, tx *gorm.DB, now Clock, in resources.OrderInput, m *models.Order) error {
	if err := requireRow(ctx, tx, &models.Customer{}, in.CustomerID, "Customer"); err != nil {
		return err
	}

	userID := in.UserID
	if userID == 0 {
		if actor, ok := auth.ActorFromContext(ctx); ok {
			userID = actor.UserID
		}
	}
	if userID == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "missing cashier").WithMessages("userId is required")
	}
	if err := requireRow(ctx, tx, &models.User{}, userID, "User"); err != nil {
		return err
	}

	productIDs := make([]int64, 0, len(in.OrderItems))
	for _, item := range in.OrderItems {
		productIDs = append(productIDs, item.ProductID)
	}
	var products []models.Product
	if err := tx.WithContext(ctx).Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return err
	}
	byID := make(map[int64]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]models.OrderItem, 0, len(in.OrderItems))
	totalAmount, totalDiscount := decimal.Zero, decimal.Zero
	for _, line := range in.OrderItems {
		product, ok := byID[line.ProductID]
		if !ok {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown product").
				WithMessages(fmt.Sprintf("Product %d does not exist", line.ProductID))
		}
		gross := product.SellingPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		if line.Discount.GreaterThan(gross) {
			return pkgerrors.New(pkgerrors.CodeValidation, "discount too large").
				WithMessages(fmt.Sprintf("Discount for %s exceeds the line total", product.Name))
		}
		sub := gross.Sub(line.Discount)
		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   product.SellingPrice,
			UnitCost:    product.PurchasePrice,
			Discount:    line.Discount,
			SubTotal:    sub,
		})
		totalAmount = totalAmount.Add(sub)
		totalDiscount = totalDiscount.Add(line.Discount)
	}

	orderDate := in.OrderDate
	if orderDate.IsZero() {
		orderDate = now()
	}
	m.OrderDate = orderDate.UTC()
	m.CustomerID = in.CustomerID
	m.UserID = userID
	m.Notes = strings.TrimSpace(in.Notes)
	m.TotalAmount = totalAmount
	m.TotalDiscount = totalDiscount
	m.Items = items
	m.Customer = nil
	m.User = nil
	return nil
}

func requireRow(ctx context.Context, tx *gorm.DB, model any, id int64, name string) error {
	var count int64
	if err := tx.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown "+strings.ToLower(name)).
			WithMessages(fmt.Sprintf("%s %d does not exist", name, id))
	}
	return nil
}

func OrderFromModel(m models.Order) resources.Order {
	o := resources.Order{
		ID:            m.ID,
		OrderDate:     m.OrderDate,
		CustomerID:    m.CustomerID,
		UserID:        m.UserID,
		Notes:         m.Notes,
		TotalAmount:   m.TotalAmount,
		TotalDiscount: m.TotalDiscount,
		OrderItems:    make([]resources.OrderItem, 0, len(m.Items)),
	}
	if m.Customer != nil {
		o.CustomerName = m.Customer.Name
	}
	for _, item := range m.Items {
		o.OrderItems = append(o.OrderItems, resources.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Discount:    item.Discount,
			SubTotal:    item.SubTotal,
		})
	}
	return o
}

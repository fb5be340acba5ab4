package sales

import (
	"context"
	"strings"
	"time"

	"github.com/angelmondragon/shopadmin/internal/crud"
	"github.com/angelmondragon/shopadmin/internal/repo"
	"github.com/angelmondragon/shopadmin/internal/resources"
	"github.com/angelmondragon/shopadmin/pkg/db/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var purchaseSpec = repo.ListSpec{
	SearchColumns: []string{"notes"},
	SortColumns: map[string]string{
		"id":          "id",
		"orderDate":   "order_date",
		"merchantId":  "merchant_id",
		"totalAmount": "total_amount",
	},
	DefaultSort: "order_date",
	Preloads:    []string{"Items"},
}

func NewPurchaseService(db *gorm.DB, now Clock) (*PurchaseService, error) {
	if now == nil {
		now = time.Now
	}
	return crud.New(db, "Purchase", purchaseSpec, crud.Hooks[models.Purchase, resources.Purchase, resources.PurchaseInput]{
		ID:       func(m models.Purchase) int64 { return m.ID },
		ToEntity: PurchaseFromModel,
		Apply: func(ctx context.Context, tx *gorm.DB, in resources.PurchaseInput, m *models.Purchase) error {
			if err := requireRow(ctx, tx, &models.Merchant{}, in.MerchantID, "Merchant"); err != nil {
				return err
			}
			items := make([]models.PurchaseItem, 0, len(in.PurchaseItems))
			total := decimal.Zero
			for _, line := range in.PurchaseItems {
				lineTotal := line.PricePerUnit.Mul(decimal.NewFromInt(int64(line.Quantity)))
				items = append(items, models.PurchaseItem{
					ProductName:  strings.TrimSpace(line.ProductName),
					Quantity:     line.Quantity,
					PricePerUnit: line.PricePerUnit,
					TotalPrice:   lineTotal,
				})
				total = total.Add(lineTotal)
			}
			date := in.OrderDate
			if date.IsZero() {
				date = now()
			}
			m.MerchantID = in.MerchantID
			m.OrderDate = date.UTC()
			m.Notes = strings.TrimSpace(in.Notes)
			m.TotalAmount = total
			m.Items = items
			m.Merchant = nil
			return nil
		},
		AfterSave: func(ctx context.Context, tx *gorm.DB, _ resources.PurchaseInput, m *models.Purchase) error {
			if err := tx.WithContext(ctx).Where("purchase_id = ?", m.ID).Delete(&models.PurchaseItem{}).Error; err != nil {
				return err
			}
			for i := range m.Items {
				m.Items[i].ID = 0
				m.Items[i].PurchaseID = m.ID
			}
			if len(m.Items) == 0 {
				return nil
			}
			return tx.WithContext(ctx).Create(&m.Items).Error
		},
		BeforeDelete: func(ctx context.Context, tx *gorm.DB, ids []int64) error {
			return tx.WithContext(ctx).Where("purchase_id IN ?", ids).Delete(&models.PurchaseItem{}).Error
		},
	})
}

func PurchaseFromModel(m models.Purchase) resources.Purchase {
	p := resources.Purchase{
		ID:            m.ID,
		MerchantID:    m.MerchantID,
		OrderDate:     m.OrderDate,
		Notes:         m.Notes,
		TotalAmount:   m.TotalAmount,
		PurchaseItems: make([]resources.PurchaseItem, 0, len(m.Items)),
	}
	for _, item := range m.Items {
		p.PurchaseItems = append(p.PurchaseItems, resources.PurchaseItem{
			ProductName:  item.ProductName,
			Quantity:     item.Quantity,
			PricePerUnit: item.PricePerUnit,
			TotalPrice:   item.TotalPrice,
		})
	}
	return p
}

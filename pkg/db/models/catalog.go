package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Merchant is a supplier the shop purchases stock from.
type Merchant struct {
	ID                 int64           `gorm:"primaryKey"`
	Name               string          `gorm:"column:name;not null"`
	Phone              string          `gorm:"column:phone"`
	Address            string          `gorm:"column:address"`
	OutstandingBalance decimal.Decimal `gorm:"column:outstanding_balance;not null;default:0"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

type Customer struct {
	ID                 int64           `gorm:"primaryKey"`
	Name               string          `gorm:"column:name;not null"`
	Phone              string          `gorm:"column:phone"`
	Address            string          `gorm:"column:address"`
	OutstandingBalance decimal.Decimal `gorm:"column:outstanding_balance;not null;default:0"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// CustomerTotals is the aggregate row joined onto customer reads.
type CustomerTotals struct {
	CustomerID  int64
	TotalOrders int
	TotalSpent  decimal.Decimal
	TotalPaid   decimal.Decimal
}

// Product belongs to a category; ImageURL is set by the multipart update.
type Product struct {
	ID            int64           `gorm:"primaryKey"`
	Name          string          `gorm:"column:name;not null"`
	Quantity      int             `gorm:"column:quantity;not null;default:0"`
	IsStock       bool            `gorm:"column:is_stock;not null;default:true"`
	PurchasePrice decimal.Decimal `gorm:"column:purchase_price;not null"`
	SellingPrice  decimal.Decimal `gorm:"column:selling_price;not null"`
	CategoryID    int64           `gorm:"column:category_id;not null"`
	Category      *Category       `gorm:"foreignKey:CategoryID"`
	UniqueNumber  string          `gorm:"column:unique_number;not null;uniqueIndex"`
	ImageURL      string          `gorm:"column:image_url"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order totals are derived from its items when the order is written.
type Order struct {
	ID            int64           `gorm:"primaryKey"`
	OrderDate     time.Time       `gorm:"column:order_date;not null"`
	CustomerID    int64           `gorm:"column:customer_id;not null"`
	Customer      *Customer       `gorm:"foreignKey:CustomerID"`
	UserID        int64           `gorm:"column:user_id;not null"`
	User          *User           `gorm:"foreignKey:UserID"`
	Notes         string          `gorm:"column:notes"`
	TotalAmount   decimal.Decimal `gorm:"column:total_amount;not null"`
	TotalDiscount decimal.Decimal `gorm:"column:total_discount;not null"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem snapshots the product's prices at the time of sale.
type OrderItem struct {
	ID          int64           `gorm:"primaryKey"`
	OrderID     int64           `gorm:"column:order_id;not null"`
	ProductID   int64           `gorm:"column:product_id;not null"`
	ProductName string          `gorm:"column:product_name;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;not null"`
	UnitCost    decimal.Decimal `gorm:"column:unit_cost;not null"`
	Discount    decimal.Decimal `gorm:"column:discount;not null"`
	SubTotal    decimal.Decimal `gorm:"column:sub_total;not null"`
}

type Purchase struct {
	ID          int64           `gorm:"primaryKey"`
	MerchantID  int64           `gorm:"column:merchant_id;not null"`
	Merchant    *Merchant       `gorm:"foreignKey:MerchantID"`
	OrderDate   time.Time       `gorm:"column:order_date;not null"`
	Notes       string          `gorm:"column:notes"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;not null"`
	Items       []PurchaseItem  `gorm:"foreignKey:PurchaseID"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

type PurchaseItem struct {
	ID           int64           `gorm:"primaryKey"`
	PurchaseID   int64           `gorm:"column:purchase_id;not null"`
	ProductName  string          `gorm:"column:product_name;not null"`
	Quantity     int             `gorm:"column:quantity;not null"`
	PricePerUnit decimal.Decimal `gorm:"column:price_per_unit;not null"`
	TotalPrice   decimal.Decimal `gorm:"column:total_price;not null"`
}

// Payment is money received from a customer.
type Payment struct {
	ID         int64           `gorm:"primaryKey"`
	Amount     decimal.Decimal `gorm:"column:amount;not null"`
	CustomerID int64           `gorm:"column:customer_id;not null"`
	Customer   *Customer       `gorm:"foreignKey:CustomerID"`
	Date       time.Time       `gorm:"column:date;not null"`
	Info       string          `gorm:"column:info"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// Expense.Category stores the expense category enum index.
type Expense struct {
	ID        int64           `gorm:"primaryKey"`
	Amount    decimal.Decimal `gorm:"column:amount;not null"`
	Category  int             `gorm:"column:category;not null"`
	Date      time.Time       `gorm:"column:date;not null"`
	Info      string          `gorm:"column:info"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

package resources

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyProfit is one day of the profit report.
type DailyProfit struct {
	Date    string          `json:"date" validate:"required"`
	Orders  int             `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
	Profit  decimal.Decimal `json:"profit"`
}

// ProfitReport is profit computed as selling minus purchase price per sold unit, net of discounts.
type ProfitReport struct {
	From         string          `json:"from"`
	To           string          `json:"to"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalCost    decimal.Decimal `json:"totalCost"`
	TotalProfit  decimal.Decimal `json:"totalProfit"`
	Days         []DailyProfit   `json:"days" validate:"dive"`
}

type InvoiceLine struct {
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Discount    decimal.Decimal `json:"discount"`
	SubTotal    decimal.Decimal `json:"subTotal"`
}

// Invoice is the printable view of an order.
type Invoice struct {
	OrderID       int64           `json:"orderId" validate:"gte=1"`
	InvoiceNumber string          `json:"invoiceNumber" validate:"required"`
	OrderDate     time.Time       `json:"orderDate"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerPhone"`
	CashierName   string          `json:"cashierName"`
	Notes         string          `json:"notes"`
	Lines         []InvoiceLine   `json:"lines" validate:"dive"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	TotalDiscount decimal.Decimal `json:"totalDiscount"`
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	Token     string    `json:"token" validate:"required"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

package resources

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The API exchanges money as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Entity is implemented by every resource record.
type Entity interface {
	Identifier() int64
}

type Category struct {
	ID   int64  `json:"id" validate:"gte=1"`
	Name string `json:"name" validate:"required"`
}

func (c Category) Identifier() int64 { return c.ID }

// CategoryRef is the category name and id denormalized onto a product.
type CategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Merchant struct {
	ID                 int64           `json:"id" validate:"gte=1"`
	Name               string          `json:"name" validate:"required"`
	Phone              string          `json:"phone"`
	Address            string          `json:"address"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
}

func (m Merchant) Identifier() int64 { return m.ID }

type Product struct {
	ID            int64           `json:"id" validate:"gte=1"`
	Name          string          `json:"name" validate:"required"`
	Quantity      int             `json:"quantity"`
	IsStock       bool            `json:"isStock"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	SellingPrice  decimal.Decimal `json:"sellingPrice"`
	CategoryID    int64           `json:"categoryId"`
	UniqueNumber  string          `json:"uniqueNumber"`
	ImageURL      string          `json:"imageUrl,omitempty"`
	Category      *CategoryRef    `json:"category,omitempty"`
}

func (p Product) Identifier() int64 { return p.ID }

// Customer totals are computed by the server and read-only.
type Customer struct {
	ID                 int64           `json:"id" validate:"gte=1"`
	Name               string          `json:"name" validate:"required"`
	Phone              string          `json:"phone"`
	Address            string          `json:"address"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
	TotalOrders        int             `json:"totalOrders"`
	TotalSpent         decimal.Decimal `json:"totalSpent"`
	TotalPaid          decimal.Decimal `json:"totalPaid"`
}

func (c Customer) Identifier() int64 { return c.ID }

type OrderItem struct {
	ProductID   int64           `json:"productId" validate:"gte=1"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity"`
	Discount    decimal.Decimal `json:"discount"`
	SubTotal    decimal.Decimal `json:"subTotal"`
}

type Order struct {
	ID            int64           `json:"id" validate:"gte=1"`
	OrderDate     time.Time       `json:"orderDate"`
	CustomerID    int64           `json:"customerId"`
	CustomerName  string          `json:"customerName,omitempty"`
	UserID        int64           `json:"userId"`
	Notes         string          `json:"notes"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	TotalDiscount decimal.Decimal `json:"totalDiscount"`
	OrderItems    []OrderItem     `json:"orderItems" validate:"dive"`
}

func (o Order) Identifier() int64 { return o.ID }

type PurchaseItem struct {
	ProductName  string          `json:"productName" validate:"required"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
}

type Purchase struct {
	ID            int64           `json:"id" validate:"gte=1"`
	MerchantID    int64           `json:"merchantId"`
	OrderDate     time.Time       `json:"orderDate"`
	Notes         string          `json:"notes"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PurchaseItems []PurchaseItem  `json:"purchaseItems" validate:"dive"`
}

func (p Purchase) Identifier() int64 { return p.ID }

type Payment struct {
	ID         int64           `json:"id" validate:"gte=1"`
	Amount     decimal.Decimal `json:"amount"`
	CustomerID int64           `json:"customerId"`
	Date       time.Time       `json:"date"`
	Info       string          `json:"info"`
}

func (p Payment) Identifier() int64 { return p.ID }

// ExpenseCategory is the enum index the API stores for an expense.
type ExpenseCategory int

const (
	ExpenseRent ExpenseCategory = iota
	ExpenseUtilities
	ExpenseSalaries
	ExpenseSupplies
	ExpenseMaintenance
	ExpenseTransport
	ExpenseMarketing
	ExpenseOther
)

var expenseCategoryNames = [...]string{
	"Rent", "Utilities", "Salaries", "Supplies", "Maintenance", "Transport", "Marketing", "Other",
}

func (c ExpenseCategory) String() string {
	if c < 0 || int(c) >= len(expenseCategoryNames) {
		return "Unknown"
	}
	return expenseCategoryNames[c]
}

func (c ExpenseCategory) IsValid() bool {
	return c >= 0 && int(c) < len(expenseCategoryNames)
}

// ParseExpenseCategory accepts a category name (case-insensitive).
func ParseExpenseCategory(name string) (ExpenseCategory, bool) {
	for i, candidate := range expenseCategoryNames {
		if strings.EqualFold(candidate, strings.TrimSpace(name)) {
			return ExpenseCategory(i), true
		}
	}
	return 0, false
}

type Expense struct {
	ID       int64           `json:"id" validate:"gte=1"`
	Amount   decimal.Decimal `json:"amount"`
	Category ExpenseCategory `json:"category" validate:"gte=0"`
	Date     time.Time       `json:"date"`
	Info     string          `json:"info"`
}

func (e Expense) Identifier() int64 { return e.ID }

const (
	RoleCashier = 0
	RoleAdmin   = 1
)

// User never carries the password on reads.
type User struct {
	ID          int64  `json:"id" validate:"gte=1"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email" validate:"required"`
	PhoneNumber string `json:"phoneNumber"`
	Role        int    `json:"role" validate:"oneof=0 1"`
}

func (u User) Identifier() int64 { return u.ID }

// Session is a read-only row of the user-session report. LogoutTime and
// SessionDuration are empty while the session is open.
type Session struct {
	UserID          int64      `json:"userId" validate:"gte=1"`
	UserName        string     `json:"userName,omitempty"`
	LoginTime       time.Time  `json:"loginTime"`
	LogoutTime      *time.Time `json:"logoutTime"`
	SessionDuration string     `json:"sessionDuration"`
}

package resources

import (
	"time"

	"github.com/angelmondragon/shopadmin/pkg/transport"
	"github.com/shopspring/decimal"
)

// Input types carry the writable fields of each resource. The reference backend
// decodes request bodies into the same types and validates them with these tags.

type CategoryInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

type MerchantInput struct {
	Name               string          `json:"name" validate:"required,max=150"`
	Phone              string          `json:"phone" validate:"omitempty,max=30"`
	Address            string          `json:"address" validate:"omitempty,max=250"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance" validate:"gte=0"`
}

// ProductInput is also the element type of the AddProducts array body. Image is
// only sent by the multipart update.
type ProductInput struct {
	Name          string          `json:"name" validate:"required,max=150"`
	Quantity      int             `json:"quantity" validate:"gte=0"`
	IsStock       bool            `json:"isStock"`
	PurchasePrice decimal.Decimal `json:"purchasePrice" validate:"gte=0"`
	SellingPrice  decimal.Decimal `json:"sellingPrice" validate:"gte=0"`
	CategoryID    int64           `json:"categoryId" validate:"required,gte=1"`
	UniqueNumber  string          `json:"uniqueNumber" validate:"required,max=64"`
	Image         *transport.File `json:"-" form:"image"`
}

// Attachment reports the file that forces a multipart update.
func (p ProductInput) Attachment() *transport.File {
	return p.Image
}

type CustomerInput struct {
	Name               string          `json:"name" validate:"required,max=150"`
	Phone              string          `json:"phone" validate:"omitempty,max=30"`
	Address            string          `json:"address" validate:"omitempty,max=250"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance" validate:"gte=0"`
}

type OrderItemInput struct {
	ProductID int64           `json:"productId" validate:"required,gte=1"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	Discount  decimal.Decimal `json:"discount" validate:"gte=0"`
}

// OrderInput omits derived fields; totals and subtotals are computed by the server.
// UserID defaults to the authenticated cashier when zero.
type OrderInput struct {
	OrderDate  time.Time        `json:"orderDate"`
	CustomerID int64            `json:"customerId" validate:"required,gte=1"`
	UserID     int64            `json:"userId" validate:"gte=0"`
	Notes      string           `json:"notes" validate:"max=500"`
	OrderItems []OrderItemInput `json:"orderItems" validate:"min=1,dive"`
}

type PurchaseItemInput struct {
	ProductName  string          `json:"productName" validate:"required,max=150"`
	Quantity     int             `json:"quantity" validate:"gte=1"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit" validate:"gte=0"`
}

type PurchaseInput struct {
	MerchantID    int64               `json:"merchantId" validate:"required,gte=1"`
	OrderDate     time.Time           `json:"orderDate"`
	Notes         string              `json:"notes" validate:"max=500"`
	PurchaseItems []PurchaseItemInput `json:"purchaseItems" validate:"min=1,dive"`
}

type PaymentInput struct {
	Amount     decimal.Decimal `json:"amount" validate:"gt=0"`
	CustomerID int64           `json:"customerId" validate:"required,gte=1"`
	Date       time.Time       `json:"date"`
	Info       string          `json:"info" validate:"max=250"`
}

type ExpenseInput struct {
	Amount   decimal.Decimal `json:"amount" validate:"gt=0"`
	Category ExpenseCategory `json:"category" validate:"gte=0,lte=7"`
	Date     time.Time       `json:"date"`
	Info     string          `json:"info" validate:"max=250"`
}

// UserInput is sent multipart. ID is set only on update, where the API reads it
// from the body; Password is optional on update.
type UserInput struct {
	ID          int64  `json:"id,omitempty"`
	FirstName   string `json:"firstName" validate:"required,max=80"`
	LastName    string `json:"lastName" validate:"required,max=80"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,max=30"`
	Role        int    `json:"role" validate:"oneof=0 1"`
	Password    string `json:"password,omitempty" validate:"omitempty,min=6"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ForgotPasswordInput struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordInput struct {
	Email       string `json:"email" validate:"required,email"`
	Code        string `json:"code" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// SetID fills the id the update endpoint reads from the body.
func (u *UserInput) SetID(id int64) {
	u.ID = id
}

func (u UserInput) BodyID() int64 {
	return u.ID
}

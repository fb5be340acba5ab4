// Package store is the application's state container: one slice per resource
// plus the report and account slices. Views read through each slice's State and
// write only through its operations.
package store

import (
	"github.com/angelmondragon/shopadmin/internal/resources"
	"github.com/angelmondragon/shopadmin/pkg/auth/session"
	"github.com/angelmondragon/shopadmin/pkg/logger"
)

type Store struct {
	Categories *Slice[resources.Category, resources.CategoryInput]
	Merchants  *Slice[resources.Merchant, resources.MerchantInput]
	Products   *Slice[resources.Product, resources.ProductInput]
	Customers  *Slice[resources.Customer, resources.CustomerInput]
	Orders     *Slice[resources.Order, resources.OrderInput]
	Purchases  *Slice[resources.Purchase, resources.PurchaseInput]
	Payments   *Slice[resources.Payment, resources.PaymentInput]
	Expenses   *Slice[resources.Expense, resources.ExpenseInput]
	Users      *Slice[resources.User, resources.UserInput]
	Reports    *ReportsSlice
	Account    *AccountSlice
}

func New(apis *resources.APIs, tokens session.Holder, logg *logger.Logger) *Store {
	return &Store{
		Categories: NewSlice[resources.Category, resources.CategoryInput]("Category", apis.Categories, logg),
		Merchants:  NewSlice[resources.Merchant, resources.MerchantInput]("Merchant", apis.Merchants, logg),
		Products:   NewSlice[resources.Product, resources.ProductInput]("Product", apis.Products, logg),
		Customers:  NewSlice[resources.Customer, resources.CustomerInput]("Customer", apis.Customers, logg),
		Orders:     NewSlice[resources.Order, resources.OrderInput]("Order", apis.Orders, logg),
		Purchases:  NewSlice[resources.Purchase, resources.PurchaseInput]("Purchase", apis.Purchases, logg),
		Payments:   NewSlice[resources.Payment, resources.PaymentInput]("Payment", apis.Payments, logg),
		Expenses:   NewSlice[resources.Expense, resources.ExpenseInput]("Expense", apis.Expenses, logg),
		Users:      NewSlice[resources.User, resources.UserInput]("User", apis.Users, logg),
		Reports:    NewReportsSlice(apis.Reports, logg),
		Account:    NewAccountSlice(apis.Account, tokens, logg),
	}
}

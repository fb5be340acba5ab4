package resources

// Typed APIs for every resource, built over one transport client.
type APIs struct {
	Categories *API[Category, CategoryInput]
	Merchants  *API[Merchant, MerchantInput]
	Products   *API[Product, ProductInput]
	Customers  *API[Customer, CustomerInput]
	Orders     *API[Order, OrderInput]
	Purchases  *API[Purchase, PurchaseInput]
	Payments   *API[Payment, PaymentInput]
	Expenses   *API[Expense, ExpenseInput]
	Users      *API[User, UserInput]
	Reports    *ReportsAPI
	Account    *AccountAPI
}

func NewAPIs(client Client) *APIs {
	return &APIs{
		Categories: NewAPI[Category, CategoryInput](client, CategoryContract),
		Merchants:  NewAPI[Merchant, MerchantInput](client, MerchantContract),
		Products:   NewAPI[Product, ProductInput](client, ProductContract),
		Customers:  NewAPI[Customer, CustomerInput](client, CustomerContract),
		Orders:     NewAPI[Order, OrderInput](client, OrderContract),
		Purchases:  NewAPI[Purchase, PurchaseInput](client, PurchaseContract),
		Payments:   NewAPI[Payment, PaymentInput](client, PaymentContract),
		Expenses:   NewAPI[Expense, ExpenseInput](client, ExpenseContract),
		Users:      NewAPI[User, UserInput](client, UserContract),
		Reports:    NewReportsAPI(client),
		Account:    NewAccountAPI(client),
	}
}

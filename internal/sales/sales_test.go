package sales

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/shopadmin/internal/resources"
	"github.com/angelmondragon/shopadmin/internal/testdb"
	"github.com/angelmondragon/shopadmin/pkg/auth"
	"github.com/angelmondragon/shopadmin/pkg/db/models"
	pkgerrors "github.com/angelmondragon/shopadmin/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fixture struct {
	db       *gorm.DB
	orders   *OrderService
	reports  *Reports
	customer models.Customer
	cashier  models.User
	milk     models.Product
	cheese   models.Product
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Gorm(t)
	f := &fixture{db: db}

	category := models.Category{Name: "Dairy"}
	require.NoError(t, db.Create(&category).Error)
	f.milk = models.Product{Name: "Milk", Quantity: 20, CategoryID: category.ID, UniqueNumber: "MLK", PurchasePrice: dec("1.00"), SellingPrice: dec("1.50")}
	f.cheese = models.Product{Name: "Cheese", Quantity: 5, CategoryID: category.ID, UniqueNumber: "CHS", PurchasePrice: dec("4"), SellingPrice: dec("6")}
	require.NoError(t, db.Create(&f.milk).Error)
	require.NoError(t, db.Create(&f.cheese).Error)
	f.customer = models.Customer{Name: "Ana", Phone: "555-0101"}
	require.NoError(t, db.Create(&f.customer).Error)
	f.cashier = models.User{FirstName: "Carla", LastName: "Cashier", Email: "carla@shop.test", PasswordHash: "x"}
	require.NoError(t, db.Create(&f.cashier).Error)

	var err error
	f.orders, err = NewOrderService(db, clock)
	require.NoError(t, err)
	f.reports = NewReports(db, clock, time.UTC)
	return f
}

func (f *fixture) place(t *testing.T, date time.Time, lines ...resources.OrderItemInput) *resources.Order {
	t.Helper()
	order, err := f.orders.Create(context.Background(), resources.OrderInput{
		OrderDate:  date,
		CustomerID: f.customer.ID,
		UserID:     f.cashier.ID,
		OrderItems: lines,
	})
	require.NoError(t, err)
	return order
}

func TestOrderTotalsAreDerivedFromProducts(t *testing.T) {
	f := newFixture(t)

	order := f.place(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		resources.OrderItemInput{ProductID: f.milk.ID, Quantity: 4, Discount: dec("0.50")},
		resources.OrderItemInput{ProductID: f.cheese.ID, Quantity: 1},
	)

	assert.True(t, order.TotalAmount.Equal(dec("11.50")), order.TotalAmount.String())
	assert.True(t, order.TotalDiscount.Equal(dec("0.50")))
	assert.Equal(t, "Ana", order.CustomerName)
	require.Len(t, order.OrderItems, 2)
	assert.Equal(t, "Milk", order.OrderItems[0].ProductName)
	assert.True(t, order.OrderItems[0].SubTotal.Equal(dec("5.50")))

	updated, err := f.orders.Update(context.Background(), order.ID, resources.OrderInput{
		CustomerID: f.customer.ID,
		UserID:     f.cashier.ID,
		OrderItems: []resources.OrderItemInput{{ProductID: f.milk.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	require.Len(t, updated.OrderItems, 1)
	assert.True(t, updated.TotalAmount.Equal(dec("1.50")))
	assert.True(t, updated.OrderDate.Equal(fixedNow), "a zero date defaults to now")

	var items int64
	require.NoError(t, f.db.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&items).Error)
	assert.EqualValues(t, 1, items)
}

func TestOrderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.orders.Create(ctx, resources.OrderInput{
		CustomerID: f.customer.ID,
		UserID:     f.cashier.ID,
		OrderItems: []resources.OrderItemInput{{ProductID: f.milk.ID, Quantity: 1, Discount: dec("2")}},
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "discount above line total: %v", err)

	_, err = f.orders.Create(ctx, resources.OrderInput{
		CustomerID: f.customer.ID,
		OrderItems: []resources.OrderItemInput{{ProductID: f.milk.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, []string{"userId is required"}, pkgerrors.As(err).Messages())

	_, err = f.orders.Create(ctx, resources.OrderInput{
		CustomerID: 404,
		UserID:     f.cashier.ID,
		OrderItems: []resources.OrderItemInput{{ProductID: f.milk.ID, Quantity: 1}},
	})
	require.Error(t, err)
	assert.Equal(t, []string{"Customer 404 does not exist"}, pkgerrors.As(err).Messages())

	_, err = f.orders.Create(ctx, resources.OrderInput{
		CustomerID: f.customer.ID,
		UserID:     f.cashier.ID,
		OrderItems: []resources.OrderItemInput{{ProductID: 77, Quantity: 1}},
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	var orders int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders, "failed creates leave nothing behind")
}

func TestOrderCashierDefaultsToCaller(t *testing.T) {
	f := newFixture(t)
	ctx := auth.WithActor(context.Background(), auth.Actor{UserID: f.cashier.ID, Role: auth.RoleCashier})

	order, err := f.orders.Create(ctx, resources.OrderInput{
		CustomerID: f.customer.ID,
		OrderItems: []resources.OrderItemInput{{ProductID: f.cheese.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, f.cashier.ID, order.UserID)
}

func TestOrderDeleteRemovesItems(t *testing.T) {
	f := newFixture(t)
	first := f.place(t, fixedNow, resources.OrderItemInput{ProductID: f.milk.ID, Quantity: 1})
	second := f.place(t, fixedNow, resources.OrderItemInput{ProductID: f.milk.ID, Quantity: 2})

	deleted, err := f.orders.DeleteMany(context.Background(), []int64{first.ID, second.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	var items int64
	require.NoError(t, f.db.Model(&models.OrderItem{}).Count(&items).Error)
	assert.Zero(t, items)
}

func TestTodayOrdersAndProfits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.place(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		resources.OrderItemInput{ProductID: f.milk.ID, Quantity: 4, Discount: dec("0.50")},
		resources.OrderItemInput{ProductID: f.cheese.ID, Quantity: 1},
	)
	f.place(t, time.Date(2026, 3, 8, 18, 30, 0, 0, time.UTC),
		resources.OrderItemInput{ProductID: f.cheese.ID, Quantity: 2},
	)

	today, err := f.reports.TodayOrders(ctx)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.True(t, today[0].TotalAmount.Equal(dec("11.50")))

	report, err := f.reports.Profits(ctx, "2026-03-08", "2026-03-10")
	require.NoError(t, err)
	require.Len(t, report.Days, 3)
	assert.Equal(t, []string{"2026-03-08", "2026-03-09", "2026-03-10"}, []string{report.Days[0].Date, report.Days[1].Date, report.Days[2].Date})
	assert.Equal(t, 1, report.Days[0].Orders)
	assert.Zero(t, report.Days[1].Orders)
	assert.True(t, report.Days[1].Profit.IsZero())
	assert.True(t, report.Days[2].Profit.Equal(dec("3.50")), report.Days[2].Profit.String())
	assert.True(t, report.TotalRevenue.Equal(dec("23.50")))
	assert.True(t, report.TotalCost.Equal(dec("16")))
	assert.True(t, report.TotalProfit.Equal(dec("7.50")))

	defaults, err := f.reports.Profits(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, "2026-02-09", defaults.From)
	assert.Equal(t, "2026-03-10", defaults.To)
	assert.Len(t, defaults.Days, DefaultProfitDays)
}

func TestProfitsRejectsBadRanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct{ from, to string }{
		{"2026-03-10", "2026-03-01"},
		{"10/03/2026", ""},
		{"2025-01-01", "2026-03-10"},
	}
	for _, tc := range cases {
		_, err := f.reports.Profits(ctx, tc.from, tc.to)
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "from=%s to=%s", tc.from, tc.to)
	}
}

func TestInvoiceAndPDF(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.place(t, fixedNow,
		resources.OrderItemInput{ProductID: f.milk.ID, Quantity: 2},
		resources.OrderItemInput{ProductID: f.cheese.ID, Quantity: 1, Discount: dec("1")},
	)

	inv, err := f.reports.Invoice(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, InvoiceNumber(order.ID), inv.InvoiceNumber)
	assert.Equal(t, "INV-000001", InvoiceNumber(1))
	assert.Equal(t, "Carla Cashier", inv.CashierName)
	assert.Equal(t, "555-0101", inv.CustomerPhone)
	require.Len(t, inv.Lines, 2)
	assert.True(t, inv.TotalAmount.Equal(dec("8")))

	pdf, name, err := f.reports.InvoicePDF(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "invoice-1.pdf", name)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-1.4")))
	assert.True(t, bytes.HasSuffix(bytes.TrimSpace(pdf), []byte("%%EOF")))
	assert.Contains(t, string(pdf), "INVOICE INV-000001")

	_, err = f.reports.Invoice(ctx, 999)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, []string{"Order not found"}, pkgerrors.As(err).Messages())
}

func TestPDFEscapesText(t *testing.T) {
	pdf := RenderInvoicePDF(resources.Invoice{InvoiceNumber: "INV-000002", CustomerName: `Ana (VIP) \ co`})
	assert.Contains(t, string(pdf), `Ana \(VIP\) \\ co`)
}

func TestPDFLongInvoiceKeepsEveryLineAndTotals(t *testing.T) {
	inv := resources.Invoice{InvoiceNumber: "INV-000003", TotalAmount: dec("1234.56"), TotalDiscount: dec("4"), Notes: "deliver friday"}
	for i := 0; i < 60; i++ {
		inv.Lines = append(inv.Lines, resources.InvoiceLine{
			ProductName: fmt.Sprintf("Item %02d", i),
			Quantity:    1,
			UnitPrice:   dec("1"),
			Discount:    decimal.Zero,
			SubTotal:    dec("1"),
		})
	}

	pdf := string(RenderInvoicePDF(inv))
	assert.Contains(t, pdf, "(Item 00 ")
	assert.Contains(t, pdf, "(Item 59 ")
	assert.Contains(t, pdf, "(Total: 1234.56) Tj")
	assert.Contains(t, pdf, "(Notes: deliver friday) Tj")
	assert.Contains(t, pdf, "INVOICE INV-000003 \\(continued\\)")
	assert.Contains(t, pdf, "/Count 2")
	assert.NotContains(t, pdf, "(...)")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(pdf), "%%EOF"))
}

func TestPDFShortInvoiceIsOnePage(t *testing.T) {
	pdf := string(RenderInvoicePDF(resources.Invoice{InvoiceNumber: "INV-000004", TotalAmount: dec("8")}))
	assert.Contains(t, pdf, "/Count 1")
	assert.Contains(t, pdf, "(Total: 8.00) Tj")
}

func TestPurchasesAndMerchantReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	merchant := models.Merchant{Name: "Farm Co"}
	require.NoError(t, f.db.Create(&merchant).Error)

	purchases, err := NewPurchaseService(f.db, clock)
	require.NoError(t, err)

	older, err := purchases.Create(ctx, resources.PurchaseInput{
		MerchantID: merchant.ID,
		OrderDate:  fixedNow.AddDate(0, 0, -2),
		PurchaseItems: []resources.PurchaseItemInput{
			{ProductName: "Milk crate", Quantity: 3, PricePerUnit: dec("2.50")},
			{ProductName: "Cheese wheel", Quantity: 1, PricePerUnit: dec("10")},
		},
	})
	require.NoError(t, err)
	assert.True(t, older.TotalAmount.Equal(dec("17.50")))
	require.Len(t, older.PurchaseItems, 2)
	assert.True(t, older.PurchaseItems[0].TotalPrice.Equal(dec("7.50")))

	newer, err := purchases.Create(ctx, resources.PurchaseInput{
		MerchantID:    merchant.ID,
		PurchaseItems: []resources.PurchaseItemInput{{ProductName: "Butter", Quantity: 1, PricePerUnit: dec("3")}},
	})
	require.NoError(t, err)

	list, err := f.reports.MerchantPurchases(ctx, merchant.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)

	_, err = f.reports.MerchantPurchases(ctx, 999)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = purchases.Create(ctx, resources.PurchaseInput{MerchantID: 999, PurchaseItems: []resources.PurchaseItemInput{{ProductName: "x", Quantity: 1}}})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

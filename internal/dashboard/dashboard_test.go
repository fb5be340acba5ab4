package dashboard

import (
	"context"
	"testing"

	"github.com/angelmondragon/shopadmin/internal/resources"
	"github.com/angelmondragon/shopadmin/internal/store"
	"github.com/angelmondragon/shopadmin/internal/testserver"
	"github.com/angelmondragon/shopadmin/pkg/auth/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func newStore(t *testing.T, srv *testserver.Server, login bool) *store.Store {
	t.Helper()
	tokens := session.NewMemoryStore("")
	st := store.New(srv.APIs(t, tokens), tokens, nil)
	if login {
		_, err := st.Account.Login(context.Background(), testserver.AdminEmail, testserver.AdminPassword)
		require.NoError(t, err)
	}
	return st
}

func TestLoadCollectsEverySection(t *testing.T) {
	srv := testserver.Start(t, nil)
	st := newStore(t, srv, true)
	ctx := context.Background()

	category, err := st.Categories.Create(ctx, resources.CategoryInput{Name: "Drinks"})
	require.NoError(t, err)
	customer, err := st.Customers.Create(ctx, resources.CustomerInput{Name: "Grace"})
	require.NoError(t, err)
	low, err := st.Products.Create(ctx, resources.ProductInput{
		Name: "Juice", Quantity: 2, IsStock: true, CategoryID: category.ID, UniqueNumber: "J-1",
		PurchasePrice: decimal.NewFromInt(1), SellingPrice: decimal.NewFromInt(3),
	})
	require.NoError(t, err)
	_, err = st.Products.Create(ctx, resources.ProductInput{
		Name: "Water", Quantity: 50, IsStock: true, CategoryID: category.ID, UniqueNumber: "W-1",
		PurchasePrice: decimal.NewFromInt(1), SellingPrice: decimal.NewFromInt(2),
	})
	require.NoError(t, err)
	_, err = st.Orders.Create(ctx, resources.OrderInput{
		CustomerID: customer.ID,
		OrderItems: []resources.OrderItemInput{{ProductID: low.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	summary, err := NewLoader(st, nil).Load(ctx)
	require.NoError(t, err)

	assert.Len(t, summary.TodayOrders, 1)
	assert.True(t, summary.TodayRevenue.Equal(decimal.NewFromInt(6)), "got %s", summary.TodayRevenue)
	require.NotNil(t, summary.Profits)
	assert.True(t, summary.Profits.TotalProfit.Equal(decimal.NewFromInt(4)), "got %s", summary.Profits.TotalProfit)
	assert.Equal(t, 2, summary.ProductCount)
	assert.Equal(t, 1, summary.CustomerCount)
	require.Len(t, summary.LowStock, 1)
	assert.Equal(t, "Juice", summary.LowStock[0].Name)
}

func TestLoadCombinesFailures(t *testing.T) {
	srv := testserver.Start(t, nil)
	st := newStore(t, srv, false)

	summary, err := NewLoader(st, nil).Load(context.Background())
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 4)
	require.NotNil(t, summary)
	assert.Empty(t, summary.TodayOrders)
	assert.NotEmpty(t, st.Products.State().Error)
}

func TestLoadRejectsBadProfitRange(t *testing.T) {
	srv := testserver.Start(t, nil)
	st := newStore(t, srv, true)

	loader := NewLoader(st, nil)
	loader.ProfitFrom = "2026-02-01"
	loader.ProfitTo = "2026-01-01"

	summary, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 1)
	assert.Nil(t, summary.Profits)
	assert.Equal(t, 0, summary.ProductCount)
}

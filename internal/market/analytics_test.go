package market

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeOrders(t *testing.T, store Store, buyer User, productID string, n int) {
	t.Helper()
	engine := &Orders{Store: store}
	for i := 0; i < n; i++ {
		_, err := engine.Create(context.Background(), buyer, OrderInput{
			ProductID:       productID,
			Quantity:        2,
			DeliveryAddress: "Plant 4, Pune",
		})
		require.NoError(t, err)
	}
}

func TestAdminDashboard(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	agg := &Aggregator{Store: store}

	admin := testUser(RoleAdmin)
	buyer := testUser(RoleBuyer)
	supplier := testUser(RoleSupplier)
	for _, u := range []User{admin, buyer, supplier} {
		require.NoError(t, store.InsertUser(ctx, u))
	}

	p := seedProduct(t, store, supplier.ID, FlyAsh, 1000, 10)
	seedDemand(t, store, buyer.ID, FlyAsh, 10, 20)
	placeOrders(t, store, buyer, p.ID, 7)

	raw, err := agg.Dashboard(ctx, admin)
	require.NoError(t, err)

	var d AdminDashboard
	require.NoError(t, json.Unmarshal(raw, &d))
	assert.Equal(t, int64(3), d.TotalUsers)
	assert.Equal(t, int64(1), d.TotalProducts)
	assert.Equal(t, int64(1), d.TotalDemands)
	assert.Equal(t, int64(7), d.TotalOrders)
	assert.Len(t, d.RecentOrders, 5)
}

func TestSupplierDashboard(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	agg := &Aggregator{Store: store}

	supplier := testUser(RoleSupplier)
	buyer := testUser(RoleBuyer)
	p := seedProduct(t, store, supplier.ID, BottomAsh, 1000, 25)
	seedProduct(t, store, testUser(RoleSupplier).ID, BottomAsh, 1000, 25) // someone else's
	placeOrders(t, store, buyer, p.ID, 3)

	raw, err := agg.Dashboard(ctx, supplier)
	require.NoError(t, err)

	var d SupplierDashboard
	require.NoError(t, json.Unmarshal(raw, &d))
	assert.Equal(t, int64(1), d.MyProducts)
	assert.Equal(t, int64(3), d.MyOrders)
	assert.Equal(t, 150.0, d.TotalRevenue) // 3 orders of 2 tons at 25
	assert.Len(t, d.RecentOrders, 3)
}

func TestBuyerDashboardAndZeroRevenue(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	agg := &Aggregator{Store: store}

	buyer := testUser(RoleBuyer)
	seedDemand(t, store, buyer.ID, PondAsh, 50, 15)

	raw, err := agg.Dashboard(ctx, buyer)
	require.NoError(t, err)

	var d BuyerDashboard
	require.NoError(t, json.Unmarshal(raw, &d))
	assert.Equal(t, int64(1), d.MyDemands)
	assert.Zero(t, d.MyOrders)
	assert.Zero(t, d.TotalSpent)
	assert.Empty(t, d.RecentOrders)
}

func TestLogisticsDashboardEmpty(t *testing.T) {
	agg := &Aggregator{Store: NewMemStore()}
	raw, err := agg.Dashboard(context.Background(), testUser(RoleLogistics))
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(raw))
}

func TestDashboardCountsMonotonic(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	agg := &Aggregator{Store: store}

	admin := testUser(RoleAdmin)
	require.NoError(t, store.InsertUser(ctx, admin))
	buyer := testUser(RoleBuyer)
	supplier := testUser(RoleSupplier)
	p := seedProduct(t, store, supplier.ID, FlyAsh, 10000, 5)

	var prev AdminDashboard
	for i := 0; i < 4; i++ {
		seedDemand(t, store, buyer.ID, FlyAsh, 10, 20)
		placeOrders(t, store, buyer, p.ID, 1)

		raw, err := agg.Dashboard(ctx, admin)
		require.NoError(t, err)
		var cur AdminDashboard
		require.NoError(t, json.Unmarshal(raw, &cur))

		assert.GreaterOrEqual(t, cur.TotalOrders, prev.TotalOrders)
		assert.GreaterOrEqual(t, cur.TotalDemands, prev.TotalDemands)
		assert.GreaterOrEqual(t, cur.TotalProducts, prev.TotalProducts)
		assert.GreaterOrEqual(t, cur.TotalUsers, prev.TotalUsers)
		prev = cur
	}
}

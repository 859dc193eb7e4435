package market

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ashlink/marketplace/internal/redisx"
)

const recentOrdersLimit = 5

type AdminDashboard struct {
	TotalUsers    int64   `json:"total_users"`
	TotalProducts int64   `json:"total_products"`
	TotalOrders   int64   `json:"total_orders"`
	TotalDemands  int64   `json:"total_demands"`
	RecentOrders  []Order `json:"recent_orders"`
}

type SupplierDashboard struct {
	MyProducts   int64   `json:"my_products"`
	MyOrders     int64   `json:"my_orders"`
	TotalRevenue float64 `json:"total_revenue"`
	RecentOrders []Order `json:"recent_orders"`
}

type BuyerDashboard struct {
	MyDemands    int64   `json:"my_demands"`
	MyOrders     int64   `json:"my_orders"`
	TotalSpent   float64 `json:"total_spent"`
	RecentOrders []Order `json:"recent_orders"`
}

// Aggregator derives role-scoped dashboard summaries from current store
// state. Redis is optional; when set, rendered dashboards are cached
// read-through for a few minutes.
type Aggregator struct {
	Store Store
	Redis *redis.Client
}

// Dashboard returns the rendered summary for the caller. Logistics (and any
// future role without a dashboard) gets an empty object.
func (a *Aggregator) Dashboard(ctx context.Context, caller User) (json.RawMessage, error) {
	key := fmt.Sprintf(redisx.KeyDashboard, caller.ID)
	if a.Redis != nil {
		if cached, err := a.Redis.Get(ctx, key).Result(); err == nil && cached != "" {
			return json.RawMessage(cached), nil
		}
	}

	var summary any
	var err error
	switch caller.Role {
	case RoleAdmin:
		summary, err = a.adminDashboard(ctx)
	case RoleSupplier:
		summary, err = a.supplierDashboard(ctx, caller.ID)
	case RoleBuyer:
		summary, err = a.buyerDashboard(ctx, caller.ID)
	default:
		summary = struct{}{}
	}
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}
	if a.Redis != nil {
		_ = a.Redis.Set(ctx, key, b, redisx.TTLDashboard).Err()
	}
	return b, nil
}

func (a *Aggregator) adminDashboard(ctx context.Context) (AdminDashboard, error) {
	var d AdminDashboard
	var err error
	if d.TotalUsers, err = a.Store.CountUsers(ctx); err != nil {
		return d, err
	}
	if d.TotalProducts, err = a.Store.CountProducts(ctx, ProductFilter{ActiveOnly: true}); err != nil {
		return d, err
	}
	if d.TotalOrders, err = a.Store.CountOrders(ctx, OrderFilter{}); err != nil {
		return d, err
	}
	if d.TotalDemands, err = a.Store.CountDemands(ctx, DemandFilter{ActiveOnly: true}); err != nil {
		return d, err
	}
	if d.RecentOrders, err = a.Store.RecentOrders(ctx, OrderFilter{}, recentOrdersLimit); err != nil {
		return d, err
	}
	return d, nil
}

func (a *Aggregator) supplierDashboard(ctx context.Context, supplierID string) (SupplierDashboard, error) {
	var d SupplierDashboard
	var err error
	if d.MyProducts, err = a.Store.CountProducts(ctx, ProductFilter{SupplierID: supplierID}); err != nil {
		return d, err
	}
	f := OrderFilter{SupplierID: supplierID}
	if d.MyOrders, err = a.Store.CountOrders(ctx, f); err != nil {
		return d, err
	}
	if d.TotalRevenue, err = a.Store.SumOrderAmounts(ctx, f); err != nil {
		return d, err
	}
	if d.RecentOrders, err = a.Store.RecentOrders(ctx, f, recentOrdersLimit); err != nil {
		return d, err
	}
	return d, nil
}

func (a *Aggregator) buyerDashboard(ctx context.Context, buyerID string) (BuyerDashboard, error) {
	var d BuyerDashboard
	var err error
	if d.MyDemands, err = a.Store.CountDemands(ctx, DemandFilter{BuyerID: buyerID}); err != nil {
		return d, err
	}
	f := OrderFilter{BuyerID: buyerID}
	if d.MyOrders, err = a.Store.CountOrders(ctx, f); err != nil {
		return d, err
	}
	if d.TotalSpent, err = a.Store.SumOrderAmounts(ctx, f); err != nil {
		return d, err
	}
	if d.RecentOrders, err = a.Store.RecentOrders(ctx, f, recentOrdersLimit); err != nil {
		return d, err
	}
	return d, nil
}

package market

import (
	"context"
	"time"
)

// ProductFilter narrows product queries. Pointer fields are comparisons that
// apply only when set; zero-value string/bool fields are ignored.
type ProductFilter struct {
	SupplierID  string
	AshType     AshType
	City        string   // case-insensitive substring
	MinQuantity *int     // quantity_available >= *MinQuantity
	MaxPrice    *float64 // price_per_ton <= *MaxPrice
	ActiveOnly  bool
	Limit       int // 0 = unbounded
}

type DemandFilter struct {
	BuyerID     string
	AshType     AshType
	MaxQuantity *int     // quantity_required <= *MaxQuantity
	MinPrice    *float64 // max_price_per_ton >= *MinPrice
	ActiveOnly  bool
	Limit       int
}

type OrderFilter struct {
	BuyerID    string
	SupplierID string
}

// Store is the document-store boundary. Implementations return results in
// store-defined order; callers must not depend on it. Missing documents are
// reported as ErrNotFound.
type Store interface {
	InsertUser(ctx context.Context, u User) error
	UserByID(ctx context.Context, id string) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	CountUsers(ctx context.Context) (int64, error)

	InsertProduct(ctx context.Context, p Product) error
	ProductByID(ctx context.Context, id string) (Product, error)
	Products(ctx context.Context, f ProductFilter) ([]Product, error)
	CountProducts(ctx context.Context, f ProductFilter) (int64, error)
	// AddProductQuantity adjusts quantity_available by delta (negative to
	// decrement). It is a blind increment, not a guarded compare-and-swap.
	AddProductQuantity(ctx context.Context, id string, delta int) error

	InsertDemand(ctx context.Context, d Demand) error
	Demands(ctx context.Context, f DemandFilter) ([]Demand, error)
	CountDemands(ctx context.Context, f DemandFilter) (int64, error)

	InsertOrder(ctx context.Context, o Order) error
	OrderByID(ctx context.Context, id string) (Order, error)
	Orders(ctx context.Context, f OrderFilter) ([]Order, error)
	RecentOrders(ctx context.Context, f OrderFilter, limit int) ([]Order, error)
	CountOrders(ctx context.Context, f OrderFilter) (int64, error)
	SumOrderAmounts(ctx context.Context, f OrderFilter) (float64, error)
	UpdateOrderStatus(ctx context.Context, id string, status OrderStatus, updatedAt time.Time) error

	InsertNotification(ctx context.Context, n Notification) error
	NotificationsFor(ctx context.Context, userID string) ([]Notification, error)
}

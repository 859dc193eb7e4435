package market

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// MemStore is an in-memory Store used by tests and local development. It keeps
// documents in insertion order, which is as good a "store-defined order" as
// any.
type MemStore struct {
	mu sync.RWMutex

	users         []User
	products      []Product
	demands       []Demand
	orders        []Order
	notifications []Notification
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore { return &MemStore{} }

// ---- users ----

func (s *MemStore) InsertUser(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
	return nil
}

func (s *MemStore) UserByID(_ context.Context, id string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return User{}, fmt.Errorf("%w: user", ErrNotFound)
}

func (s *MemStore) UserByEmail(_ context.Context, email string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, fmt.Errorf("%w: user", ErrNotFound)
}

func (s *MemStore) CountUsers(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

// ---- products ----

func matchProduct(p Product, f ProductFilter) bool {
	if f.SupplierID != "" && p.SupplierID != f.SupplierID {
		return false
	}
	if f.AshType != "" && p.AshType != f.AshType {
		return false
	}
	if f.City != "" && !strings.Contains(strings.ToLower(p.City), strings.ToLower(f.City)) {
		return false
	}
	if f.MinQuantity != nil && p.QuantityAvailable < *f.MinQuantity {
		return false
	}
	if f.MaxPrice != nil && p.PricePerTon > *f.MaxPrice {
		return false
	}
	if f.ActiveOnly && !p.IsActive {
		return false
	}
	return true
}

func (s *MemStore) InsertProduct(_ context.Context, p Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, p)
	return nil
}

func (s *MemStore) ProductByID(_ context.Context, id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("%w: product", ErrNotFound)
}

func (s *MemStore) Products(_ context.Context, f ProductFilter) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Product{}
	for _, p := range s.products {
		if !matchProduct(p, f) {
			continue
		}
		out = append(out, p)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (s *MemStore) CountProducts(_ context.Context, f ProductFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, p := range s.products {
		if matchProduct(p, f) {
			n++
		}
	}
	return n, nil
}

func (s *MemStore) AddProductQuantity(_ context.Context, id string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i].QuantityAvailable += delta
			s.products[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("%w: product %s", ErrNotFound, id)
}

// ---- demands ----

func matchDemand(d Demand, f DemandFilter) bool {
	if f.BuyerID != "" && d.BuyerID != f.BuyerID {
		return false
	}
	if f.AshType != "" && d.AshType != f.AshType {
		return false
	}
	if f.MaxQuantity != nil && d.QuantityRequired > *f.MaxQuantity {
		return false
	}
	if f.MinPrice != nil && d.MaxPricePerTon < *f.MinPrice {
		return false
	}
	if f.ActiveOnly && !d.IsActive {
		return false
	}
	return true
}

func (s *MemStore) InsertDemand(_ context.Context, d Demand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.demands = append(s.demands, d)
	return nil
}

func (s *MemStore) Demands(_ context.Context, f DemandFilter) ([]Demand, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Demand{}
	for _, d := range s.demands {
		if !matchDemand(d, f) {
			continue
		}
		out = append(out, d)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (s *MemStore) CountDemands(_ context.Context, f DemandFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, d := range s.demands {
		if matchDemand(d, f) {
			n++
		}
	}
	return n, nil
}

// ---- orders ----

func matchOrder(o Order, f OrderFilter) bool {
	if f.BuyerID != "" && o.BuyerID != f.BuyerID {
		return false
	}
	if f.SupplierID != "" && o.SupplierID != f.SupplierID {
		return false
	}
	return true
}

func (s *MemStore) InsertOrder(_ context.Context, o Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, o)
	return nil
}

func (s *MemStore) OrderByID(_ context.Context, id string) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, fmt.Errorf("%w: order", ErrNotFound)
}

func (s *MemStore) Orders(_ context.Context, f OrderFilter) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Order{}
	for _, o := range s.orders {
		if matchOrder(o, f) {
			out = append(out, o)
		}
	}
	return out, nil
}

// RecentOrders walks insertion order backwards; orders are inserted as they
// are created, so this is newest-first.
func (s *MemStore) RecentOrders(_ context.Context, f OrderFilter, limit int) ([]Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Order{}
	for i := len(s.orders) - 1; i >= 0 && len(out) < limit; i-- {
		if matchOrder(s.orders[i], f) {
			out = append(out, s.orders[i])
		}
	}
	return out, nil
}

func (s *MemStore) CountOrders(_ context.Context, f OrderFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, o := range s.orders {
		if matchOrder(o, f) {
			n++
		}
	}
	return n, nil
}

func (s *MemStore) SumOrderAmounts(_ context.Context, f OrderFilter) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, o := range s.orders {
		if matchOrder(o, f) {
			total += o.TotalAmount
		}
	}
	return total, nil
}

func (s *MemStore) UpdateOrderStatus(_ context.Context, id string, status OrderStatus, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders[i].Status = status
			s.orders[i].UpdatedAt = updatedAt
			return nil
		}
	}
	return fmt.Errorf("%w: order %s", ErrNotFound, id)
}

// ---- notifications ----

func (s *MemStore) InsertNotification(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *MemStore) NotificationsFor(_ context.Context, userID string) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Notification{}
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].UserID == userID {
			out = append(out, s.notifications[i])
		}
	}
	return out, nil
}

package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Orders validates and creates orders and applies role-gated status
// transitions.
type Orders struct {
	Store Store
}

type OrderInput struct {
	ProductID       string  `json:"product_id"`
	Quantity        int     `json:"quantity"`
	DeliveryAddress string  `json:"delivery_address"`
	ContractTerms   *string `json:"contract_terms,omitempty"`
}

// Create places an order for the caller against a product, snapshotting the
// product's current price and decrementing its availability.
//
// The availability check and the decrement are two separate store writes with
// no transaction or lock between them; two concurrent orders can both pass the
// check and oversell the product. That matches the stock-handling discipline
// of the rest of the system (last write wins) and is left as-is on purpose.
func (s *Orders) Create(ctx context.Context, caller User, in OrderInput) (Order, error) {
	if caller.Role != RoleBuyer {
		return Order{}, fmt.Errorf("%w: only buyers can create orders", ErrForbidden)
	}
	if in.ProductID == "" {
		return Order{}, fmt.Errorf("%w: product_id is required", ErrValidation)
	}
	if in.Quantity < 1 {
		return Order{}, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if strings.TrimSpace(in.DeliveryAddress) == "" {
		return Order{}, fmt.Errorf("%w: delivery_address is required", ErrValidation)
	}

	p, err := s.Store.ProductByID(ctx, in.ProductID)
	if err != nil {
		return Order{}, err
	}
	if !p.IsActive {
		return Order{}, fmt.Errorf("%w: product %s", ErrNotFound, in.ProductID)
	}
	if p.QuantityAvailable < in.Quantity {
		return Order{}, ErrInsufficientInventory
	}

	now := time.Now().UTC()
	o := Order{
		ID:                uuid.NewString(),
		BuyerID:           caller.ID,
		SupplierID:        p.SupplierID,
		ProductID:         p.ID,
		Quantity:          in.Quantity,
		AgreedPricePerTon: p.PricePerTon,
		TotalAmount:       p.PricePerTon * float64(in.Quantity),
		DeliveryAddress:   in.DeliveryAddress,
		Status:            StatusPending,
		ContractTerms:     in.ContractTerms,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.Store.InsertOrder(ctx, o); err != nil {
		return Order{}, err
	}
	if err := s.Store.AddProductQuantity(ctx, p.ID, -in.Quantity); err != nil {
		return Order{}, err
	}
	return o, nil
}

// ListFor returns the caller's orders: buyers see orders they placed,
// suppliers see orders placed against their products. Other roles are denied.
func (s *Orders) ListFor(ctx context.Context, caller User) ([]Order, error) {
	switch caller.Role {
	case RoleBuyer:
		return s.Store.Orders(ctx, OrderFilter{BuyerID: caller.ID})
	case RoleSupplier:
		return s.Store.Orders(ctx, OrderFilter{SupplierID: caller.ID})
	default:
		return nil, fmt.Errorf("%w: access denied", ErrForbidden)
	}
}

// UpdateStatus moves an order along the status machine. Suppliers may confirm
// or cancel orders on their own products, buyers may cancel their own orders,
// logistics actors move confirmed orders through transit and delivery, and
// admins may apply any legal transition.
func (s *Orders) UpdateStatus(ctx context.Context, caller User, orderID string, next OrderStatus) (Order, error) {
	o, err := s.Store.OrderByID(ctx, orderID)
	if err != nil {
		return Order{}, err
	}
	if !CanTransition(o.Status, next) {
		return Order{}, fmt.Errorf("%w: cannot move order from %s to %s", ErrValidation, o.Status, next)
	}

	allowed := false
	switch caller.Role {
	case RoleSupplier:
		allowed = o.SupplierID == caller.ID && (next == StatusConfirmed || next == StatusCancelled)
	case RoleBuyer:
		allowed = o.BuyerID == caller.ID && next == StatusCancelled
	case RoleLogistics:
		allowed = next == StatusInTransit || next == StatusDelivered
	case RoleAdmin:
		allowed = true
	}
	if !allowed {
		return Order{}, fmt.Errorf("%w: role %s may not set status %s on this order", ErrForbidden, caller.Role, next)
	}

	now := time.Now().UTC()
	if err := s.Store.UpdateOrderStatus(ctx, o.ID, next, now); err != nil {
		return Order{}, err
	}
	o.Status = next
	o.UpdatedAt = now
	return o, nil
}

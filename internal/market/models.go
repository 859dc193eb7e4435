package market

import (
	"fmt"
	"time"
)

// AshType classifies a coal-combustion byproduct listing.
type AshType string

const (
	FlyAsh    AshType = "fly_ash"
	BottomAsh AshType = "bottom_ash"
	PondAsh   AshType = "pond_ash"
)

func ParseAshType(s string) (AshType, error) {
	switch AshType(s) {
	case FlyAsh, BottomAsh, PondAsh:
		return AshType(s), nil
	}
	return "", fmt.Errorf("%w: unknown ash type %q", ErrValidation, s)
}

// QualitySpecs is an open key-value bag (chemical composition, fineness,
// moisture and the like). Values are whatever JSON scalars the supplier sends.
type QualitySpecs map[string]any

type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	Company       string    `json:"company"`
	ContactPerson string    `json:"contact_person"`
	Phone         string    `json:"phone"`
	Role          Role      `json:"role"`
	Address       string    `json:"address"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	KYCVerified   bool      `json:"kyc_verified"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Product struct {
	ID                string       `json:"id"`
	SupplierID        string       `json:"supplier_id"`
	Title             string       `json:"title"`
	AshType           AshType      `json:"ash_type"`
	QuantityAvailable int          `json:"quantity_available"` // tons
	PricePerTon       float64      `json:"price_per_ton"`
	Location          string       `json:"location"`
	City              string       `json:"city"`
	State             string       `json:"state"`
	QualitySpecs      QualitySpecs `json:"quality_specs"`
	TestReportURL     *string      `json:"test_report_url,omitempty"`
	Description       string       `json:"description"`
	IsActive          bool         `json:"is_active"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

type Demand struct {
	ID                  string       `json:"id"`
	BuyerID             string       `json:"buyer_id"`
	Title               string       `json:"title"`
	AshType             AshType      `json:"ash_type"`
	QuantityRequired    int          `json:"quantity_required"` // tons
	MaxPricePerTon      float64      `json:"max_price_per_ton"`
	DeliveryLocation    string       `json:"delivery_location"`
	DeliveryCity        string       `json:"delivery_city"`
	DeliveryState       string       `json:"delivery_state"`
	RequiredBy          time.Time    `json:"required_by"`
	QualityRequirements QualitySpecs `json:"quality_requirements"`
	Description         string       `json:"description"`
	IsActive            bool         `json:"is_active"`
	CreatedAt           time.Time    `json:"created_at"`
}

type Order struct {
	ID                string      `json:"id"`
	BuyerID           string      `json:"buyer_id"`
	SupplierID        string      `json:"supplier_id"`
	ProductID         string      `json:"product_id"`
	DemandID          *string     `json:"demand_id,omitempty"`
	Quantity          int         `json:"quantity"`
	AgreedPricePerTon float64     `json:"agreed_price_per_ton"`
	TotalAmount       float64     `json:"total_amount"`
	DeliveryAddress   string      `json:"delivery_address"`
	Status            OrderStatus `json:"status"`
	ContractTerms     *string     `json:"contract_terms,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// Notification is produced by the notifier service from order events and
// surfaced on GET /notifications/my.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	OrderID   string    `json:"order_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

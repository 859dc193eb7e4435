package market

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testUser(role Role) User {
	return User{
		ID:    uuid.NewString(),
		Email: uuid.NewString() + "@example.com",
		Role:  role,
	}
}

func seedProduct(t *testing.T, s Store, supplierID string, ashType AshType, qty int, price float64) Product {
	t.Helper()
	now := time.Now().UTC()
	p := Product{
		ID:                uuid.NewString(),
		SupplierID:        supplierID,
		Title:             "Test lot",
		AshType:           ashType,
		QuantityAvailable: qty,
		PricePerTon:       price,
		City:              "Nagpur",
		State:             "Maharashtra",
		QualitySpecs:      QualitySpecs{"fineness": 92.5},
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, s.InsertProduct(context.Background(), p))
	return p
}

func seedDemand(t *testing.T, s Store, buyerID string, ashType AshType, qty int, maxPrice float64) Demand {
	t.Helper()
	d := Demand{
		ID:               uuid.NewString(),
		BuyerID:          buyerID,
		Title:            "Test demand",
		AshType:          ashType,
		QuantityRequired: qty,
		MaxPricePerTon:   maxPrice,
		DeliveryCity:     "Pune",
		RequiredBy:       time.Now().UTC().Add(30 * 24 * time.Hour),
		IsActive:         true,
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, s.InsertDemand(context.Background(), d))
	return d
}

package market

import "context"

// matchLimit caps counterparts per anchor entity.
const matchLimit = 10

// Suggestion pairs an anchor entity with compatible counterparts. Exactly one
// of Demand/Product is set depending on which side the caller is on.
type Suggestion struct {
	Demand           *Demand   `json:"demand,omitempty"`
	MatchingProducts []Product `json:"matching_products,omitempty"`
	Product          *Product  `json:"product,omitempty"`
	MatchingDemands  []Demand  `json:"matching_demands,omitempty"`
}

// Matcher computes supply-demand pairing suggestions.
type Matcher struct {
	Store Store
}

// Suggest returns pairing groups for the caller. Buyers get, per active
// demand, active products of the same ash type with enough quantity at or
// under the demand's price ceiling. Suppliers get the symmetric view per
// active product. Anchors with no matches are omitted. Other roles get an
// empty list. Counterpart order is store-defined.
func (m *Matcher) Suggest(ctx context.Context, caller User) ([]Suggestion, error) {
	suggestions := []Suggestion{}

	switch caller.Role {
	case RoleBuyer:
		demands, err := m.Store.Demands(ctx, DemandFilter{BuyerID: caller.ID, ActiveOnly: true})
		if err != nil {
			return nil, err
		}
		for _, d := range demands {
			d := d
			products, err := m.Store.Products(ctx, ProductFilter{
				AshType:     d.AshType,
				MinQuantity: &d.QuantityRequired,
				MaxPrice:    &d.MaxPricePerTon,
				ActiveOnly:  true,
				Limit:       matchLimit,
			})
			if err != nil {
				return nil, err
			}
			if len(products) > 0 {
				suggestions = append(suggestions, Suggestion{Demand: &d, MatchingProducts: products})
			}
		}

	case RoleSupplier:
		products, err := m.Store.Products(ctx, ProductFilter{SupplierID: caller.ID, ActiveOnly: true})
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			p := p
			demands, err := m.Store.Demands(ctx, DemandFilter{
				AshType:     p.AshType,
				MaxQuantity: &p.QuantityAvailable,
				MinPrice:    &p.PricePerTon,
				ActiveOnly:  true,
				Limit:       matchLimit,
			})
			if err != nil {
				return nil, err
			}
			if len(demands) > 0 {
				suggestions = append(suggestions, Suggestion{Product: &p, MatchingDemands: demands})
			}
		}
	}

	return suggestions, nil
}

package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ashlink/marketplace/internal/market"
)

// CatalogHandler serves product listings and demand postings.
type CatalogHandler struct {
	Store market.Store
}

type ProductReq struct {
	Title             string              `json:"title"`
	AshType           string              `json:"ash_type"`
	QuantityAvailable int                 `json:"quantity_available"`
	PricePerTon       float64             `json:"price_per_ton"`
	Location          string              `json:"location"`
	City              string              `json:"city"`
	State             string              `json:"state"`
	QualitySpecs      market.QualitySpecs `json:"quality_specs"`
	TestReportURL     *string             `json:"test_report_url,omitempty"`
	Description       string              `json:"description"`
}

type DemandReq struct {
	Title               string              `json:"title"`
	AshType             string              `json:"ash_type"`
	QuantityRequired    int                 `json:"quantity_required"`
	MaxPricePerTon      float64             `json:"max_price_per_ton"`
	DeliveryLocation    string              `json:"delivery_location"`
	DeliveryCity        string              `json:"delivery_city"`
	DeliveryState       string              `json:"delivery_state"`
	RequiredBy          time.Time           `json:"required_by"`
	QualityRequirements market.QualitySpecs `json:"quality_requirements"`
	Description         string              `json:"description"`
}

func (h *CatalogHandler) Register(r chi.Router, a *Auth) {
	r.Get("/products", h.listProducts)
	r.Get("/demands", h.listDemands)
	r.Group(func(r chi.Router) {
		r.Use(a.RequireUser)
		r.Post("/products", h.createProduct)
		r.Get("/products/my", h.myProducts)
		r.Post("/demands", h.createDemand)
		r.Get("/demands/my", h.myDemands)
	})
}

func (h *CatalogHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	if u.Role != market.RoleSupplier {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "only suppliers can create products"})
		return
	}

	var req ProductReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	ashType, err := market.ParseAshType(req.AshType)
	if err != nil {
		writeErr(w, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" || req.QuantityAvailable < 0 || req.PricePerTon < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title, non-negative quantity and price are required"})
		return
	}

	now := time.Now().UTC()
	p := market.Product{
		ID:                uuid.NewString(),
		SupplierID:        u.ID,
		Title:             req.Title,
		AshType:           ashType,
		QuantityAvailable: req.QuantityAvailable,
		PricePerTon:       req.PricePerTon,
		Location:          req.Location,
		City:              req.City,
		State:             req.State,
		QualitySpecs:      req.QualitySpecs,
		TestReportURL:     req.TestReportURL,
		Description:       req.Description,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := h.Store.InsertProduct(r.Context(), p); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	f := market.ProductFilter{ActiveOnly: true}

	q := r.URL.Query()
	if s := q.Get("ash_type"); s != "" {
		ashType, err := market.ParseAshType(s)
		if err != nil {
			writeErr(w, err)
			return
		}
		f.AshType = ashType
	}
	f.City = q.Get("city")
	if s := q.Get("min_quantity"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "min_quantity must be an integer"})
			return
		}
		if n > 0 {
			f.MinQuantity = &n
		}
	}
	if s := q.Get("max_price"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "max_price must be a number"})
			return
		}
		if v > 0 {
			f.MaxPrice = &v
		}
	}

	products, err := h.Store.Products(r.Context(), f)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) myProducts(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	if u.Role != market.RoleSupplier {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "only suppliers can view their products"})
		return
	}
	products, err := h.Store.Products(r.Context(), market.ProductFilter{SupplierID: u.ID})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) createDemand(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	if u.Role != market.RoleBuyer {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "only buyers can create demand requests"})
		return
	}

	var req DemandReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	ashType, err := market.ParseAshType(req.AshType)
	if err != nil {
		writeErr(w, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" || req.QuantityRequired < 1 || req.MaxPricePerTon < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title, positive quantity and non-negative price are required"})
		return
	}

	d := market.Demand{
		ID:                  uuid.NewString(),
		BuyerID:             u.ID,
		Title:               req.Title,
		AshType:             ashType,
		QuantityRequired:    req.QuantityRequired,
		MaxPricePerTon:      req.MaxPricePerTon,
		DeliveryLocation:    req.DeliveryLocation,
		DeliveryCity:        req.DeliveryCity,
		DeliveryState:       req.DeliveryState,
		RequiredBy:          req.RequiredBy,
		QualityRequirements: req.QualityRequirements,
		Description:         req.Description,
		IsActive:            true,
		CreatedAt:           time.Now().UTC(),
	}
	if err := h.Store.InsertDemand(r.Context(), d); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *CatalogHandler) listDemands(w http.ResponseWriter, r *http.Request) {
	demands, err := h.Store.Demands(r.Context(), market.DemandFilter{ActiveOnly: true})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, demands)
}

func (h *CatalogHandler) myDemands(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	if u.Role != market.RoleBuyer {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "only buyers can view their demands"})
		return
	}
	demands, err := h.Store.Demands(r.Context(), market.DemandFilter{BuyerID: u.ID})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, demands)
}

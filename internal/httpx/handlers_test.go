package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashlink/marketplace/internal/auth"
	"github.com/ashlink/marketplace/internal/market"
)

func newTestServer(t *testing.T) (*chi.Mux, *market.MemStore, *auth.Tokens) {
	t.Helper()
	store := market.NewMemStore()
	tokens := auth.NewTokens("test-secret", time.Hour)
	authn := &Auth{Tokens: tokens, Store: store}

	router := NewRouter([]string{"*"})
	(&AuthHandler{Store: store, Tokens: tokens}).Register(router, authn)
	(&CatalogHandler{Store: store}).Register(router, authn)
	(&OrdersHandler{Orders: &market.Orders{Store: store}, Service: "test"}).Register(router, authn)
	(&MatchingHandler{Matcher: &market.Matcher{Store: store}}).Register(router, authn)
	(&AnalyticsHandler{Aggregator: &market.Aggregator{Store: store}}).Register(router, authn)
	(&NotificationsHandler{Store: store}).Register(router, authn)
	return router, store, tokens
}

func seedUser(t *testing.T, store *market.MemStore, role market.Role) market.User {
	t.Helper()
	u := market.User{
		ID:    uuid.NewString(),
		Email: uuid.NewString() + "@example.com",
		Role:  role,
	}
	require.NoError(t, store.InsertUser(context.Background(), u))
	return u
}

func seedProduct(t *testing.T, store *market.MemStore, supplierID string, ashType market.AshType, qty int, price float64) market.Product {
	t.Helper()
	now := time.Now().UTC()
	p := market.Product{
		ID:                uuid.NewString(),
		SupplierID:        supplierID,
		Title:             "Fly ash lot",
		AshType:           ashType,
		QuantityAvailable: qty,
		PricePerTon:       price,
		City:              "Nagpur",
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	require.NoError(t, store.InsertProduct(context.Background(), p))
	return p
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func bearer(t *testing.T, tokens *auth.Tokens, u market.User) string {
	t.Helper()
	raw, err := tokens.Issue(u)
	require.NoError(t, err)
	return raw
}

func TestRegisterLoginMe(t *testing.T) {
	router, _, _ := newTestServer(t)

	reg := map[string]any{
		"email":          "buyer@acme.example",
		"password":       "hunter2",
		"company":        "Acme Cement",
		"contact_person": "R. Rao",
		"phone":          "+91-1234",
		"role":           "buyer",
		"address":        "1 Kiln Rd",
		"city":           "Pune",
		"state":          "Maharashtra",
	}
	rec := doJSON(t, router, http.MethodPost, "/auth/register", "", reg)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.NotContains(t, rec.Body.String(), "password_hash")

	// duplicate email
	rec = doJSON(t, router, http.MethodPost, "/auth/register", "", reg)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// bad credentials
	rec = doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "buyer@acme.example", "password": "nope",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// login and use the token
	rec = doJSON(t, router, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "buyer@acme.example", "password": "hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var login LoginResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, "bearer", login.TokenType)
	assert.Equal(t, market.RoleBuyer, login.User.Role)

	rec = doJSON(t, router, http.MethodGet, "/auth/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me market.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, login.User.ID, me.ID)
}

func TestCreateOrderEndpoint(t *testing.T) {
	router, store, tokens := newTestServer(t)

	buyer := seedUser(t, store, market.RoleBuyer)
	supplier := seedUser(t, store, market.RoleSupplier)
	p := seedProduct(t, store, supplier.ID, market.FlyAsh, 100, 50)

	body := map[string]any{
		"product_id":       p.ID,
		"quantity":         30,
		"delivery_address": "Plant 4, Pune",
	}

	// no token
	rec := doJSON(t, router, http.MethodPost, "/orders", "", body)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// supplier may not order
	rec = doJSON(t, router, http.MethodPost, "/orders", bearer(t, tokens, supplier), body)
	require.Equal(t, http.StatusForbidden, rec.Code)

	// buyer creates the order
	rec = doJSON(t, router, http.MethodPost, "/orders", bearer(t, tokens, buyer), body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var o market.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, 1500.0, o.TotalAmount)
	assert.Equal(t, market.StatusPending, o.Status)

	// unknown product
	body["product_id"] = "missing"
	rec = doJSON(t, router, http.MethodPost, "/orders", bearer(t, tokens, buyer), body)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// over availability
	body["product_id"] = p.ID
	body["quantity"] = 500
	rec = doJSON(t, router, http.MethodPost, "/orders", bearer(t, tokens, buyer), body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrdersMyScoping(t *testing.T) {
	router, store, tokens := newTestServer(t)

	buyer := seedUser(t, store, market.RoleBuyer)
	supplier := seedUser(t, store, market.RoleSupplier)
	logistics := seedUser(t, store, market.RoleLogistics)
	p := seedProduct(t, store, supplier.ID, market.BottomAsh, 100, 10)

	rec := doJSON(t, router, http.MethodPost, "/orders", bearer(t, tokens, buyer), map[string]any{
		"product_id": p.ID, "quantity": 5, "delivery_address": "x",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	for _, u := range []market.User{buyer, supplier} {
		rec = doJSON(t, router, http.MethodGet, "/orders/my", bearer(t, tokens, u), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var orders []market.Order
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
		assert.Len(t, orders, 1)
	}

	rec = doJSON(t, router, http.MethodGet, "/orders/my", bearer(t, tokens, logistics), nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOrderStatusEndpoint(t *testing.T) {
	router, store, tokens := newTestServer(t)

	buyer := seedUser(t, store, market.RoleBuyer)
	supplier := seedUser(t, store, market.RoleSupplier)
	p := seedProduct(t, store, supplier.ID, market.FlyAsh, 100, 10)

	rec := doJSON(t, router, http.MethodPost, "/orders", bearer(t, tokens, buyer), map[string]any{
		"product_id": p.ID, "quantity": 5, "delivery_address": "x",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var o market.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))

	path := fmt.Sprintf("/orders/%s/status", o.ID)

	// buyer cannot confirm
	rec = doJSON(t, router, http.MethodPatch, path, bearer(t, tokens, buyer), map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// unknown status value
	rec = doJSON(t, router, http.MethodPatch, path, bearer(t, tokens, supplier), map[string]string{"status": "shipped"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// supplier confirms
	rec = doJSON(t, router, http.MethodPatch, path, bearer(t, tokens, supplier), map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &o))
	assert.Equal(t, market.StatusConfirmed, o.Status)

	// illegal transition
	rec = doJSON(t, router, http.MethodPatch, path, bearer(t, tokens, supplier), map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductListingFilters(t *testing.T) {
	router, store, tokens := newTestServer(t)

	supplier := seedUser(t, store, market.RoleSupplier)
	seedProduct(t, store, supplier.ID, market.FlyAsh, 100, 50)
	seedProduct(t, store, supplier.ID, market.FlyAsh, 100, 80)
	seedProduct(t, store, supplier.ID, market.BottomAsh, 100, 50)

	rec := doJSON(t, router, http.MethodGet, "/products?ash_type=fly_ash&max_price=60", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var products []market.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	require.Len(t, products, 1)
	assert.Equal(t, market.FlyAsh, products[0].AshType)

	rec = doJSON(t, router, http.MethodGet, "/products?ash_type=slag", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// supplier-only creation
	buyer := seedUser(t, store, market.RoleBuyer)
	rec = doJSON(t, router, http.MethodPost, "/products", bearer(t, tokens, buyer), map[string]any{
		"title": "x", "ash_type": "fly_ash", "quantity_available": 1, "price_per_ton": 1,
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMatchingSuggestionsEndpoint(t *testing.T) {
	router, store, tokens := newTestServer(t)

	buyer := seedUser(t, store, market.RoleBuyer)
	supplier := seedUser(t, store, market.RoleSupplier)
	seedProduct(t, store, supplier.ID, market.FlyAsh, 100, 50)

	rec := doJSON(t, router, http.MethodPost, "/demands", bearer(t, tokens, buyer), map[string]any{
		"title": "Need ash", "ash_type": "fly_ash", "quantity_required": 80,
		"max_price_per_ton": 60, "required_by": time.Now().Add(720 * time.Hour).UTC(),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/matching/suggestions", bearer(t, tokens, buyer), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Suggestions []market.Suggestion `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Suggestions, 1)
	assert.Len(t, resp.Suggestions[0].MatchingProducts, 1)

	// logistics gets an empty list, not an error
	logistics := seedUser(t, store, market.RoleLogistics)
	rec = doJSON(t, router, http.MethodGet, "/matching/suggestions", bearer(t, tokens, logistics), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Suggestions)
}

func TestDashboardEndpoint(t *testing.T) {
	router, store, tokens := newTestServer(t)

	supplier := seedUser(t, store, market.RoleSupplier)
	seedProduct(t, store, supplier.ID, market.PondAsh, 10, 5)

	rec := doJSON(t, router, http.MethodGet, "/analytics/dashboard", bearer(t, tokens, supplier), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var d market.SupplierDashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &d))
	assert.Equal(t, int64(1), d.MyProducts)
	assert.Zero(t, d.TotalRevenue)
}

func TestNotificationsEndpoint(t *testing.T) {
	router, store, tokens := newTestServer(t)

	supplier := seedUser(t, store, market.RoleSupplier)
	require.NoError(t, store.InsertNotification(context.Background(), market.Notification{
		ID: uuid.NewString(), UserID: supplier.ID, OrderID: "o-1",
		Kind: "order_placed", Message: "New order", CreatedAt: time.Now().UTC(),
	}))

	rec := doJSON(t, router, http.MethodGet, "/notifications/my", bearer(t, tokens, supplier), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var ns []market.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ns))
	require.Len(t, ns, 1)
	assert.Equal(t, "o-1", ns[0].OrderID)
}

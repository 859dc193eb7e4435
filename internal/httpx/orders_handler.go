package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/ashlink/marketplace/internal/kafka"
	"github.com/ashlink/marketplace/internal/market"
	"github.com/ashlink/marketplace/internal/redisx"
)

type OrdersHandler struct {
	Orders          *market.Orders
	CreatedProducer *kafkax.Producer // marketplace.order.created
	StatusProducer  *kafkax.Producer // marketplace.order.status
	Redis           *redis.Client
	Service         string
}

type UpdateStatusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) Register(r chi.Router, a *Auth) {
	r.Group(func(r chi.Router) {
		r.Use(a.RequireUser)
		r.Post("/orders", h.createOrder)
		r.Get("/orders/my", h.myOrders)
		r.Patch("/orders/{id}/status", h.updateStatus)
	})
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())

	var in market.OrderInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	o, err := h.Orders.Create(r.Context(), u, in)
	if err != nil {
		writeErr(w, err)
		return
	}

	h.cacheStatus(r, o)
	h.publish(r, h.CreatedProducer, market.EventOrderCreated, o.ID, market.OrderCreatedPayload{
		OrderID:     o.ID,
		BuyerID:     o.BuyerID,
		SupplierID:  o.SupplierID,
		ProductID:   o.ProductID,
		Quantity:    o.Quantity,
		TotalAmount: o.TotalAmount,
	})

	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) myOrders(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	orders, err := h.Orders.ListFor(r.Context(), u)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	orderID := chi.URLParam(r, "id")

	var req UpdateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	next, ok := market.ParseOrderStatus(req.Status)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown order status"})
		return
	}

	old, err := h.Orders.Store.OrderByID(r.Context(), orderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	o, err := h.Orders.UpdateStatus(r.Context(), u, orderID, next)
	if err != nil {
		writeErr(w, err)
		return
	}

	h.cacheStatus(r, o)
	h.publish(r, h.StatusProducer, market.EventOrderStatusChanged, o.ID, market.OrderStatusChangedPayload{
		OrderID:    o.ID,
		BuyerID:    o.BuyerID,
		SupplierID: o.SupplierID,
		OldStatus:  old.Status,
		NewStatus:  o.Status,
	})

	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cacheStatus(r *http.Request, o market.Order) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, o.ID)
	body, _ := json.Marshal(map[string]any{"status": o.Status})
	_ = h.Redis.Set(r.Context(), key, body, redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) publish(r *http.Request, p *kafkax.Producer, eventType, orderID string, payload any) {
	if p == nil {
		return
	}
	ev := market.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(market.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

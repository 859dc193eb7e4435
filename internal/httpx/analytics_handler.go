package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashlink/marketplace/internal/market"
)

type AnalyticsHandler struct {
	Aggregator *market.Aggregator
}

func (h *AnalyticsHandler) Register(r chi.Router, a *Auth) {
	r.Group(func(r chi.Router) {
		r.Use(a.RequireUser)
		r.Get("/analytics/dashboard", h.dashboard)
	})
}

func (h *AnalyticsHandler) dashboard(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	body, err := h.Aggregator.Dashboard(r.Context(), u)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

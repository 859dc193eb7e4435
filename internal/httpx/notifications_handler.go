package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashlink/marketplace/internal/market"
)

type NotificationsHandler struct {
	Store market.Store
}

func (h *NotificationsHandler) Register(r chi.Router, a *Auth) {
	r.Group(func(r chi.Router) {
		r.Use(a.RequireUser)
		r.Get("/notifications/my", h.myNotifications)
	})
}

func (h *NotificationsHandler) myNotifications(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	notifications, err := h.Store.NotificationsFor(r.Context(), u.ID)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashlink/marketplace/internal/market"
)

type MatchingHandler struct {
	Matcher *market.Matcher
}

func (h *MatchingHandler) Register(r chi.Router, a *Auth) {
	r.Group(func(r chi.Router) {
		r.Use(a.RequireUser)
		r.Get("/matching/suggestions", h.suggestions)
	})
}

func (h *MatchingHandler) suggestions(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	suggestions, err := h.Matcher.Suggest(r.Context(), u)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/ashlink/marketplace/internal/auth"
	"github.com/ashlink/marketplace/internal/market"
)

type ctxKey int

const userKey ctxKey = iota

// Auth resolves the bearer token to a stored user before protected handlers
// run.
type Auth struct {
	Tokens *auth.Tokens
	Store  market.Store
}

func (a *Auth) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing authorization"})
			return
		}
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid authorization header"})
			return
		}
		claims, err := a.Tokens.Parse(parts[1])
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "could not validate credentials"})
			return
		}
		u, err := a.Store.UserByID(r.Context(), claims.Subject)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "user not found"})
			return
		}
		ctx := context.WithValue(r.Context(), userKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFrom(ctx context.Context) (market.User, bool) {
	u, ok := ctx.Value(userKey).(market.User)
	return u, ok
}

package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ashlink/marketplace/internal/auth"
	"github.com/ashlink/marketplace/internal/market"
)

type AuthHandler struct {
	Store  market.Store
	Tokens *auth.Tokens
}

type RegisterReq struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	Company       string `json:"company"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Role          string `json:"role"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
}

type LoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResp struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        market.User `json:"user"`
}

func (h *AuthHandler) Register(r chi.Router, a *Auth) {
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)
	r.Group(func(r chi.Router) {
		r.Use(a.RequireUser)
		r.Get("/auth/me", h.me)
	})
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "valid email is required"})
		return
	}
	if req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "password is required"})
		return
	}
	role, err := market.ParseRole(req.Role)
	if err != nil {
		writeErr(w, err)
		return
	}

	if _, err := h.Store.UserByEmail(r.Context(), req.Email); err == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email already registered"})
		return
	} else if !errors.Is(err, market.ErrNotFound) {
		writeErr(w, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	now := time.Now().UTC()
	u := market.User{
		ID:            uuid.NewString(),
		Email:         req.Email,
		PasswordHash:  hash,
		Company:       req.Company,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Role:          role,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := h.Store.InsertUser(r.Context(), u); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	u, err := h.Store.UserByEmail(r.Context(), req.Email)
	if err != nil || !auth.CheckPassword(req.Password, u.PasswordHash) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}

	token, err := h.Tokens.Issue(u)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, LoginResp{AccessToken: token, TokenType: "bearer", User: u})
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	u, _ := userFrom(r.Context())
	writeJSON(w, http.StatusOK, u)
}

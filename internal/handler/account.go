package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Wafflinyo/USALeague/internal/middleware"
	"github.com/Wafflinyo/USALeague/internal/service"
	"github.com/Wafflinyo/USALeague/pkg/apperror"
	"github.com/Wafflinyo/USALeague/pkg/response"
)

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accounts *service.AccountService
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Me handles GET /api/v1/me. The profile is created on first sight so a
// fresh login always has a balance to show.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	acct, created, err := h.accounts.EnsureAccount(r.Context(), accountID, r.Header.Get("X-Display-Name"))
	if err != nil {
		response.Error(w, err)
		return
	}

	if created {
		response.Created(w, acct)
		return
	}
	response.OK(w, acct)
}

// UpdateMe handles PATCH /api/v1/me
func (h *AccountHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var req struct {
		DisplayName string `json:"displayName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apperror.InvalidInput("invalid JSON body"))
		return
	}

	if err := h.accounts.UpdateDisplayName(r.Context(), accountID, req.DisplayName); err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]any{"displayName": req.DisplayName})
}

// Inventory handles GET /api/v1/me/inventory
func (h *AccountHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	entries, err := h.accounts.Inventory(r.Context(), accountID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, entries)
}

// Leaderboard handles GET /api/v1/leaderboard
func (h *AccountHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(w, apperror.InvalidInput("limit must be a number"))
			return
		}
		limit = n
	}

	leaders, err := h.accounts.Leaderboard(r.Context(), limit)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, leaders)
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Wafflinyo/USALeague/internal/middleware"
	"github.com/Wafflinyo/USALeague/internal/service"
	"github.com/Wafflinyo/USALeague/pkg/apperror"
	"github.com/Wafflinyo/USALeague/pkg/response"
)

// PicksHandler handles prediction HTTP requests.
type PicksHandler struct {
	settlement *service.SettlementService
}

// NewPicksHandler creates a new picks handler.
func NewPicksHandler(settlement *service.SettlementService) *PicksHandler {
	return &PicksHandler{settlement: settlement}
}

// Submit handles POST /api/v1/picks
func (h *PicksHandler) Submit(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var req struct {
		Day   string            `json:"day"`
		Picks map[string]string `json:"picks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apperror.InvalidInput("invalid JSON body"))
		return
	}

	if err := h.settlement.SubmitPicks(r.Context(), accountID, req.Day, req.Picks); err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]any{"day": req.Day, "picks": len(req.Picks)})
}

// Sync handles POST /api/v1/results/sync. It settles the newest finished
// day the account hasn't been paid for yet.
func (h *PicksHandler) Sync(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	result, err := h.settlement.SyncNext(r.Context(), accountID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, result)
}

// Settle handles POST /api/v1/results/{day}/settle
func (h *PicksHandler) Settle(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())
	day := chi.URLParam(r, "day")

	result, err := h.settlement.Settle(r.Context(), accountID, day)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, result)
}

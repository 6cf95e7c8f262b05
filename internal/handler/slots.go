package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Wafflinyo/USALeague/internal/game/slot"
	"github.com/Wafflinyo/USALeague/internal/middleware"
	"github.com/Wafflinyo/USALeague/internal/service"
	"github.com/Wafflinyo/USALeague/pkg/apperror"
	"github.com/Wafflinyo/USALeague/pkg/response"
)

// SlotsHandler handles slot-machine HTTP requests.
type SlotsHandler struct {
	slots *service.SlotsService
}

// NewSlotsHandler creates a new slots handler.
func NewSlotsHandler(slots *service.SlotsService) *SlotsHandler {
	return &SlotsHandler{slots: slots}
}

// Spin handles POST /api/v1/slots/spin. The client supplies the symbol
// pool it is displaying; the server draws from it and settles coins.
func (h *SlotsHandler) Spin(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	var req struct {
		Symbols []slot.Symbol `json:"symbols"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apperror.InvalidInput("invalid JSON body"))
		return
	}

	result, err := h.slots.Spin(r.Context(), accountID, req.Symbols)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, result)
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Wafflinyo/USALeague/internal/model"
	"github.com/Wafflinyo/USALeague/internal/service"
	"github.com/Wafflinyo/USALeague/pkg/apperror"
	"github.com/Wafflinyo/USALeague/pkg/response"
)

// AdminHandler handles league-operator HTTP requests.
type AdminHandler struct {
	settlement *service.SettlementService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(settlement *service.SettlementService) *AdminHandler {
	return &AdminHandler{settlement: settlement}
}

// PostResults handles POST /api/v1/admin/results. The operator posts the
// day's final scores; winners are derived here, not trusted from input.
func (h *AdminHandler) PostResults(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Day   string       `json:"day"`
		Games []model.Game `json:"games"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apperror.InvalidInput("invalid JSON body"))
		return
	}

	if err := h.settlement.PostResults(r.Context(), req.Day, req.Games); err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, map[string]any{"day": req.Day, "games": len(req.Games)})
}

package handler

import (
	"net/http"

	"github.com/Wafflinyo/USALeague/internal/middleware"
	"github.com/Wafflinyo/USALeague/internal/pkg/civil"
	"github.com/Wafflinyo/USALeague/internal/service"
	"github.com/Wafflinyo/USALeague/pkg/response"
)

// BonusHandler handles daily-bonus HTTP requests.
type BonusHandler struct {
	bonus *service.BonusService
	clock *civil.Clock
}

// NewBonusHandler creates a new bonus handler.
func NewBonusHandler(bonus *service.BonusService, clock *civil.Clock) *BonusHandler {
	return &BonusHandler{bonus: bonus, clock: clock}
}

// Claim handles POST /api/v1/bonus/claim. "Today" is the league's civil
// date, not the caller's.
func (h *BonusHandler) Claim(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.GetAccountID(r.Context())

	result, err := h.bonus.Claim(r.Context(), accountID, h.clock.Today())
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, result)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/stockfolio/backend/internal/api/middleware"
	"github.com/stockfolio/backend/internal/api/response"
	"github.com/stockfolio/backend/internal/apperrors"
	"github.com/stockfolio/backend/internal/service"
)

// HoldingHandler handles HTTP requests for current positions.
type HoldingHandler struct {
	ledgerService *service.LedgerService
}

// NewHoldingHandler creates a new HoldingHandler with the provided service dependency.
func NewHoldingHandler(ledgerService *service.LedgerService) *HoldingHandler {
	return &HoldingHandler{
		ledgerService: ledgerService,
	}
}

// ListHoldings handles GET requests to retrieve the owner's current positions.
//
// Endpoint: GET /api/holding
// Response: 200 OK with array of Holding (empty array for a flat portfolio)
// Error: 404 Not Found if the owner has no portfolio yet
// Error: 500 Internal Server Error if retrieval fails
func (h *HoldingHandler) ListHoldings(w http.ResponseWriter, r *http.Request) {
	holdings, err := h.ledgerService.ListHoldings(r.Context(), middleware.OwnerID(r.Context()))
	if err != nil {
		if errors.Is(err, apperrors.ErrPortfolioNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPortfolioNotFound.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve holdings", nil)
		return
	}

	response.RespondJSON(w, http.StatusOK, holdings)
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stockfolio/backend/internal/api/middleware"
	"github.com/stockfolio/backend/internal/api/request"
	"github.com/stockfolio/backend/internal/api/response"
	"github.com/stockfolio/backend/internal/apperrors"
	"github.com/stockfolio/backend/internal/service"
	"github.com/stockfolio/backend/internal/validation"
)

// TransactionHandler handles HTTP requests for the transaction ledger.
// It parses requests and delegates everything else to the ledger service.
type TransactionHandler struct {
	ledgerService *service.LedgerService
}

// NewTransactionHandler creates a new TransactionHandler with the provided service dependency.
func NewTransactionHandler(ledgerService *service.LedgerService) *TransactionHandler {
	return &TransactionHandler{
		ledgerService: ledgerService,
	}
}

// CreateTransaction handles POST requests to record a trade.
//
// Endpoint: POST /api/transaction
// Request Body: CreateTransactionRequest (type, symbol, quantity, pricePerUnit, date)
// Response: 201 Created with Transaction
// Error: 400 Bad Request if validation fails or a SELL exceeds the holding
// Error: 409 Conflict if a concurrent operation held the holding lock (retryable)
// Error: 500 Internal Server Error otherwise
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CreateTransactionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCreateTransaction(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	transaction, err := h.ledgerService.CreateTransaction(r.Context(), middleware.OwnerID(r.Context()), req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInsufficientHolding):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrInsufficientHolding.Error(), nil)
		case errors.Is(err, apperrors.ErrConflict):
			response.RespondError(w, http.StatusConflict, apperrors.ErrConflict.Error(), "safe to retry")
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to create transaction", nil)
		}
		return
	}

	response.RespondJSON(w, http.StatusCreated, transaction)
}

// ListTransactions handles GET requests to retrieve the owner's transaction history.
//
// Endpoint: GET /api/transaction
// Response: 200 OK with array of Transaction (empty array when the portfolio has none)
// Error: 404 Not Found if the owner has no portfolio yet
// Error: 500 Internal Server Error if retrieval fails
func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.ledgerService.ListTransactions(r.Context(), middleware.OwnerID(r.Context()))
	if err != nil {
		if errors.Is(err, apperrors.ErrPortfolioNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPortfolioNotFound.Error(), nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve transactions", nil)
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// DeleteTransaction handles DELETE requests to remove a transaction and
// reverse its effect on the holding.
//
// Endpoint: DELETE /api/transaction/{uuid}
// Response: 200 OK with the deleted Transaction
// Error: 400 Bad Request if the transaction ID is invalid (validated by middleware)
// Error: 404 Not Found if the portfolio, transaction, or backing holding is missing
// Error: 409 Conflict if a concurrent operation held the holding lock (retryable)
// Error: 500 Internal Server Error if the ledger and holdings have diverged
func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "uuid")

	transaction, err := h.ledgerService.DeleteTransaction(r.Context(), middleware.OwnerID(r.Context()), transactionID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPortfolioNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPortfolioNotFound.Error(), nil)
		case errors.Is(err, apperrors.ErrTransactionNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrTransactionNotFound.Error(), nil)
		case errors.Is(err, apperrors.ErrHoldingNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrHoldingNotFound.Error(), nil)
		case errors.Is(err, apperrors.ErrConflict):
			response.RespondError(w, http.StatusConflict, apperrors.ErrConflict.Error(), "safe to retry")
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to delete transaction", nil)
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, transaction)
}

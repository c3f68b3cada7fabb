package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/stockfolio/backend/internal/api/request"
	"github.com/stockfolio/backend/internal/model"
)

// ValidTransactionType contains the allowed transaction type values.
var ValidTransactionType = map[string]bool{
	model.TransactionTypeBuy:  true,
	model.TransactionTypeSell: true,
}

// ValidateCreateTransaction validates a transaction creation request.
// The reconciliation engine relies on these guarantees and does not
// re-validate them.
//
// Required fields:
//   - type: Must be BUY or SELL
//   - symbol: Must be non-empty
//   - quantity: Must be a positive integer
//   - pricePerUnit: Must be positive
//   - date: Must be in YYYY-MM-DD format and not in the future
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateCreateTransaction(req request.CreateTransactionRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Type) == "" {
		errors["type"] = "type is required"
	} else if !ValidTransactionType[req.Type] {
		errors["type"] = fmt.Sprintf("invalid type: %s", req.Type)
	}

	if strings.TrimSpace(req.Symbol) == "" {
		errors["symbol"] = "symbol is required"
	}

	if req.Quantity <= 0 {
		errors["quantity"] = "quantity must be a positive integer"
	}

	if !req.PricePerUnit.IsPositive() {
		errors["pricePerUnit"] = "pricePerUnit must be positive"
	}

	if strings.TrimSpace(req.Date) == "" {
		errors["date"] = "date is required"
	} else {
		tradeDate, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			errors["date"] = err.Error()
		} else if tradeDate.After(time.Now()) {
			errors["date"] = "date cannot be in the future"
		}
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

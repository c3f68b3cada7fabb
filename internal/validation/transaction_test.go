package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockfolio/backend/internal/api/request"
)

func validCreateRequest() request.CreateTransactionRequest {
	return request.CreateTransactionRequest{
		Type:         "BUY",
		Symbol:       "ABC",
		Quantity:     10,
		PricePerUnit: decimal.NewFromInt(100),
		Date:         "2024-01-15",
	}
}

func assertFieldError(t *testing.T, err error, field string) {
	t.Helper()

	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if _, ok := verr.Fields[field]; !ok {
		t.Errorf("Expected error on field %q, got %v", field, verr.Fields)
	}
}

func TestValidateCreateTransaction(t *testing.T) {
	t.Run("accepts a valid request", func(t *testing.T) {
		if err := ValidateCreateTransaction(validCreateRequest()); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("rejects a missing type", func(t *testing.T) {
		req := validCreateRequest()
		req.Type = ""
		assertFieldError(t, ValidateCreateTransaction(req), "type")
	})

	t.Run("rejects an unknown type", func(t *testing.T) {
		req := validCreateRequest()
		req.Type = "SHORT"
		assertFieldError(t, ValidateCreateTransaction(req), "type")
	})

	t.Run("rejects a lowercase type", func(t *testing.T) {
		req := validCreateRequest()
		req.Type = "buy"
		assertFieldError(t, ValidateCreateTransaction(req), "type")
	})

	t.Run("rejects a blank symbol", func(t *testing.T) {
		req := validCreateRequest()
		req.Symbol = "   "
		assertFieldError(t, ValidateCreateTransaction(req), "symbol")
	})

	t.Run("rejects a non-positive quantity", func(t *testing.T) {
		for _, qty := range []int64{0, -1} {
			req := validCreateRequest()
			req.Quantity = qty
			assertFieldError(t, ValidateCreateTransaction(req), "quantity")
		}
	})

	t.Run("rejects a non-positive price", func(t *testing.T) {
		for _, price := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
			req := validCreateRequest()
			req.PricePerUnit = price
			assertFieldError(t, ValidateCreateTransaction(req), "pricePerUnit")
		}
	})

	t.Run("rejects a malformed date", func(t *testing.T) {
		req := validCreateRequest()
		req.Date = "15-01-2024"
		assertFieldError(t, ValidateCreateTransaction(req), "date")
	})

	t.Run("rejects a future date", func(t *testing.T) {
		req := validCreateRequest()
		req.Date = time.Now().AddDate(0, 0, 2).Format("2006-01-02")
		assertFieldError(t, ValidateCreateTransaction(req), "date")
	})

	t.Run("collects errors for every invalid field", func(t *testing.T) {
		req := request.CreateTransactionRequest{}

		var verr *Error
		if !errors.As(ValidateCreateTransaction(req), &verr) {
			t.Fatal("Expected validation error")
		}
		for _, field := range []string{"type", "symbol", "quantity", "pricePerUnit", "date"} {
			if _, ok := verr.Fields[field]; !ok {
				t.Errorf("Expected error on field %q", field)
			}
		}
	})
}

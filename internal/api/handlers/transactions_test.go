package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stockfolio/backend/internal/api/handlers"
	"github.com/stockfolio/backend/internal/api/request"
	"github.com/stockfolio/backend/internal/model"
	"github.com/stockfolio/backend/internal/testutil"
)

func createBody(symbol string, qty int64, price, date, typ string) map[string]any {
	return map[string]any{
		"type":         typ,
		"symbol":       symbol,
		"quantity":     qty,
		"pricePerUnit": price,
		"date":         date,
	}
}

func TestCreateTransactionHandler(t *testing.T) {
	t.Run("records a buy and returns 201", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestLedgerService(t, db)
		handler := handlers.NewTransactionHandler(svc)
		user := testutil.NewUser().Build(t, db)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/transaction",
			createBody("ABC", 10, "100", "2024-01-15", "BUY"))
		req = testutil.AsOwner(req, user.ID)
		rec := httptest.NewRecorder()

		handler.CreateTransaction(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var created model.Transaction
		if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if created.Symbol != "ABC" || created.Quantity != 10 {
			t.Errorf("Unexpected transaction in response: %+v", created)
		}
		testutil.AssertRowCount(t, db, "transaction", 1)
	})

	t.Run("rejects an invalid request with 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestLedgerService(t, db)
		handler := handlers.NewTransactionHandler(svc)
		user := testutil.NewUser().Build(t, db)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/transaction",
			createBody("ABC", 0, "100", "2024-01-15", "BUY"))
		req = testutil.AsOwner(req, user.ID)
		rec := httptest.NewRecorder()

		handler.CreateTransaction(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("Expected status 400, got %d", rec.Code)
		}
		testutil.AssertRowCount(t, db, "transaction", 0)
	})

	t.Run("rejects an unknown body field with 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestLedgerService(t, db)
		handler := handlers.NewTransactionHandler(svc)
		user := testutil.NewUser().Build(t, db)

		body := createBody("ABC", 10, "100", "2024-01-15", "BUY")
		body["portfolioId"] = "injected"
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/transaction", body)
		req = testutil.AsOwner(req, user.ID)
		rec := httptest.NewRecorder()

		handler.CreateTransaction(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("Expected status 400, got %d", rec.Code)
		}
	})

	t.Run("oversell returns 400", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestLedgerService(t, db)
		handler := handlers.NewTransactionHandler(svc)
		user := testutil.NewUser().Build(t, db)

		seed := request.CreateTransactionRequest{
			Type:         model.TransactionTypeBuy,
			Symbol:       "ABC",
			Quantity:     10,
			PricePerUnit: decimal.NewFromInt(100),
			Date:         "2024-01-15",
		}
		if _, err := svc.CreateTransaction(context.Background(), user.ID, seed); err != nil {
			t.Fatalf("Failed to seed buy: %v", err)
		}

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/transaction",
			createBody("ABC", 11, "150", "2024-03-01", "SELL"))
		req = testutil.AsOwner(req, user.ID)
		rec := httptest.NewRecorder()

		handler.CreateTransaction(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("Expected status 400, got %d", rec.Code)
		}
		testutil.AssertRowCount(t, db, "transaction", 1)
	})
}

func TestListTransactionsHandler(t *testing.T) {
	t.Run("returns the history", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestLedgerService(t, db)
		handler := handlers.NewTransactionHandler(svc)
		user := testutil.NewUser().Build(t, db)
		portfolio := testutil.NewPortfolio(user.ID).Build(t, db)
		testutil.NewTransaction(portfolio.ID).WithSymbol("ABC").Build(t, db)

		req := testutil.AsOwner(httptest.NewRequest(http.MethodGet, "/api/transaction", nil), user.ID)
		rec := httptest.NewRecorder()

		handler.ListTransactions(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}
		var transactions []model.Transaction
		if err := json.NewDecoder(rec.Body).Decode(&transactions); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(transactions) != 1 {
			t.Errorf("Expected 1 transaction, got %d", len(transactions))
		}
	})

	t.Run("missing portfolio returns 404", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestLedgerService(t, db)
		handler := handlers.NewTransactionHandler(svc)
		user := testutil.NewUser().Build(t, db)

		req := testutil.AsOwner(httptest.NewRequest(http.MethodGet, "/api/transaction", nil), user.ID)
		rec := httptest.NewRecorder()

		handler.ListTransactions(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("Expected status 404, got %d", rec.Code)
		}
	})
}

func TestDeleteTransactionHandler(t *testing.T) {
	t.Run("deletes a transaction and returns it", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestLedgerService(t, db)
		handler := handlers.NewTransactionHandler(svc)
		user := testutil.NewUser().Build(t, db)

		seed := request.CreateTransactionRequest{
			Type:         model.TransactionTypeBuy,
			Symbol:       "ABC",
			Quantity:     10,
			PricePerUnit: decimal.NewFromInt(100),
			Date:         "2024-01-15",
		}
		created, err := svc.CreateTransaction(context.Background(), user.ID, seed)
		if err != nil {
			t.Fatalf("Failed to seed buy: %v", err)
		}

		req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/transaction/"+created.ID,
			map[string]string{"uuid": created.ID})
		req = testutil.AsOwner(req, user.ID)
		rec := httptest.NewRecorder()

		handler.DeleteTransaction(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var deleted model.Transaction
		if err := json.NewDecoder(rec.Body).Decode(&deleted); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if deleted.ID != created.ID {
			t.Errorf("Expected deleted transaction %s, got %s", created.ID, deleted.ID)
		}
		testutil.AssertRowCount(t, db, "transaction", 0)
	})

	t.Run("unknown transaction returns 404", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestLedgerService(t, db)
		handler := handlers.NewTransactionHandler(svc)
		user := testutil.NewUser().Build(t, db)
		testutil.NewPortfolio(user.ID).Build(t, db)

		id := testutil.MakeID()
		req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/transaction/"+id,
			map[string]string{"uuid": id})
		req = testutil.AsOwner(req, user.ID)
		rec := httptest.NewRecorder()

		handler.DeleteTransaction(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("Expected status 404, got %d", rec.Code)
		}
	})

	t.Run("diverged ledger returns 500", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestLedgerService(t, db)
		handler := handlers.NewTransactionHandler(svc)
		user := testutil.NewUser().Build(t, db)
		portfolio := testutil.NewPortfolio(user.ID).Build(t, db)

		// Buy on the ledger with no backing holding.
		orphan := testutil.NewTransaction(portfolio.ID).WithSymbol("ABC").Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/transaction/"+orphan.ID,
			map[string]string{"uuid": orphan.ID})
		req = testutil.AsOwner(req, user.ID)
		rec := httptest.NewRecorder()

		handler.DeleteTransaction(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("Expected status 500, got %d", rec.Code)
		}
	})
}

func TestListHoldingsHandler(t *testing.T) {
	t.Run("returns current positions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestLedgerService(t, db)
		handler := handlers.NewHoldingHandler(svc)
		user := testutil.NewUser().Build(t, db)
		portfolio := testutil.NewPortfolio(user.ID).Build(t, db)
		testutil.NewHolding(portfolio.ID).WithSymbol("ABC").WithQuantity(10).Build(t, db)

		req := testutil.AsOwner(httptest.NewRequest(http.MethodGet, "/api/holding", nil), user.ID)
		rec := httptest.NewRecorder()

		handler.ListHoldings(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}
		var holdings []model.Holding
		if err := json.NewDecoder(rec.Body).Decode(&holdings); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(holdings) != 1 || holdings[0].Symbol != "ABC" {
			t.Errorf("Unexpected holdings: %+v", holdings)
		}
	})

	t.Run("missing portfolio returns 404", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestLedgerService(t, db)
		handler := handlers.NewHoldingHandler(svc)
		user := testutil.NewUser().Build(t, db)

		req := testutil.AsOwner(httptest.NewRequest(http.MethodGet, "/api/holding", nil), user.ID)
		rec := httptest.NewRecorder()

		handler.ListHoldings(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("Expected status 404, got %d", rec.Code)
		}
	})
}

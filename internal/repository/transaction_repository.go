package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockfolio/backend/internal/apperrors"
	"github.com/stockfolio/backend/internal/model"
)

// TransactionRepository provides data access methods for the transaction
// ledger. Rows are immutable once written; the only mutation is deletion.
type TransactionRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// WithTx returns a new TransactionRepository scoped to the provided transaction.
func (r *TransactionRepository) WithTx(tx *sql.Tx) *TransactionRepository {
	return &TransactionRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *TransactionRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Insert appends a transaction to the ledger.
func (r *TransactionRepository) Insert(ctx context.Context, t *model.Transaction) error {
	query := `
		INSERT INTO "transaction" (id, portfolio_id, type, symbol, quantity, price_per_unit, trade_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		t.ID,
		t.PortfolioID,
		t.Type,
		t.Symbol,
		t.Quantity,
		t.PricePerUnit.String(),
		t.TradeDate.Format("2006-01-02"),
		t.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// Get retrieves a single transaction by ID, scoped to the given portfolio.
// Returns ErrTransactionNotFound if no matching record exists.
func (r *TransactionRepository) Get(ctx context.Context, portfolioID, transactionID string) (model.Transaction, error) {
	query := `
		SELECT id, portfolio_id, type, symbol, quantity, price_per_unit, trade_date, created_at
		FROM "transaction"
		WHERE id = ? AND portfolio_id = ?
	`

	row := r.getQuerier().QueryRowContext(ctx, query, transactionID, portfolioID)
	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return model.Transaction{}, apperrors.ErrTransactionNotFound
	}
	if err != nil {
		return model.Transaction{}, err
	}

	return t, nil
}

// Delete removes a transaction by ID, scoped to the given portfolio, and
// returns the deleted record. Returns ErrTransactionNotFound if no matching
// record exists.
func (r *TransactionRepository) Delete(ctx context.Context, portfolioID, transactionID string) (model.Transaction, error) {
	t, err := r.Get(ctx, portfolioID, transactionID)
	if err != nil {
		return model.Transaction{}, err
	}

	query := `DELETE FROM "transaction" WHERE id = ? AND portfolio_id = ?`
	if _, err := r.getQuerier().ExecContext(ctx, query, transactionID, portfolioID); err != nil {
		return model.Transaction{}, fmt.Errorf("failed to delete transaction: %w", err)
	}

	return t, nil
}

// ListByPortfolio retrieves all transactions for a portfolio in trade-date
// order. An empty result is a valid outcome, not an error.
func (r *TransactionRepository) ListByPortfolio(ctx context.Context, portfolioID string) ([]model.Transaction, error) {
	query := `
		SELECT id, portfolio_id, type, symbol, quantity, price_per_unit, trade_date, created_at
		FROM "transaction"
		WHERE portfolio_id = ?
		ORDER BY trade_date ASC, created_at ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// ListBuys retrieves all remaining BUY transactions for a (portfolio, symbol)
// pair, excluding excludeID. This is the input set for rebuilding a holding
// after a buy is deleted.
func (r *TransactionRepository) ListBuys(ctx context.Context, portfolioID, symbol, excludeID string) ([]model.Transaction, error) {
	query := `
		SELECT id, portfolio_id, type, symbol, quantity, price_per_unit, trade_date, created_at
		FROM "transaction"
		WHERE portfolio_id = ? AND symbol = ? AND type = ? AND id != ?
		ORDER BY trade_date ASC, created_at ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, portfolioID, symbol, model.TransactionTypeBuy, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transaction table: %w", err)
	}
	defer rows.Close()

	transactions := []model.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction table: %w", err)
	}

	return transactions, nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var t model.Transaction
	var priceStr, tradeDateStr, createdAtStr string

	err := row.Scan(
		&t.ID,
		&t.PortfolioID,
		&t.Type,
		&t.Symbol,
		&t.Quantity,
		&priceStr,
		&tradeDateStr,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.Transaction{}, err
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to scan transaction table results: %w", err)
	}

	t.PricePerUnit, err = decimal.NewFromString(priceStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to parse price: %w", err)
	}

	t.TradeDate, err = ParseTime(tradeDateStr)
	if err != nil || t.TradeDate.IsZero() {
		return model.Transaction{}, fmt.Errorf("failed to parse date: %w", err)
	}

	t.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil || t.CreatedAt.IsZero() {
		return model.Transaction{}, fmt.Errorf("failed to parse date: %w", err)
	}

	return t, nil
}

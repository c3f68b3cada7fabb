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

// HoldingRepository provides data access methods for the holding table: the
// derived aggregate the reconciliation engine keeps in step with the ledger.
// Only the coordinator mutates holdings, and only inside an atomic unit it owns.
type HoldingRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewHoldingRepository creates a new HoldingRepository with the provided database connection.
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

// WithTx returns a new HoldingRepository scoped to the provided transaction.
func (r *HoldingRepository) WithTx(tx *sql.Tx) *HoldingRepository {
	return &HoldingRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *HoldingRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Get retrieves the holding for a (portfolio, symbol) pair.
// Returns ErrHoldingNotFound if no holding record exists.
func (r *HoldingRepository) Get(ctx context.Context, portfolioID, symbol string) (model.Holding, error) {
	query := `
		SELECT portfolio_id, symbol, quantity, avg_cost_per_unit, last_buy_date
		FROM holding
		WHERE portfolio_id = ? AND symbol = ?
	`

	var h model.Holding
	var avgCostStr, lastBuyDateStr string
	err := r.getQuerier().QueryRowContext(ctx, query, portfolioID, symbol).Scan(
		&h.PortfolioID,
		&h.Symbol,
		&h.Quantity,
		&avgCostStr,
		&lastBuyDateStr,
	)
	if err == sql.ErrNoRows {
		return model.Holding{}, apperrors.ErrHoldingNotFound
	}
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to query holding table: %w", err)
	}

	h.AvgCostPerUnit, err = decimal.NewFromString(avgCostStr)
	if err != nil {
		return model.Holding{}, fmt.Errorf("failed to parse average cost: %w", err)
	}

	h.LastBuyDate, err = ParseTime(lastBuyDateStr)
	if err != nil {
		return model.Holding{}, err
	}

	return h, nil
}

// Upsert writes the holding, replacing any existing record for the same
// (portfolio, symbol) pair.
func (r *HoldingRepository) Upsert(ctx context.Context, h *model.Holding) error {
	query := `
		INSERT INTO holding (portfolio_id, symbol, quantity, avg_cost_per_unit, last_buy_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(portfolio_id, symbol) DO UPDATE SET
			quantity = excluded.quantity,
			avg_cost_per_unit = excluded.avg_cost_per_unit,
			last_buy_date = excluded.last_buy_date,
			updated_at = excluded.updated_at
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		h.PortfolioID,
		h.Symbol,
		h.Quantity,
		h.AvgCostPerUnit.String(),
		h.LastBuyDate.Format("2006-01-02"),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert holding: %w", err)
	}

	return nil
}

// Delete removes the holding record for a (portfolio, symbol) pair. Deleting
// an absent record is not an error; the invariant is only that no record
// remains.
func (r *HoldingRepository) Delete(ctx context.Context, portfolioID, symbol string) error {
	query := `DELETE FROM holding WHERE portfolio_id = ? AND symbol = ?`

	if _, err := r.getQuerier().ExecContext(ctx, query, portfolioID, symbol); err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}

	return nil
}

// ListByPortfolio retrieves all holdings for a portfolio ordered by symbol.
func (r *HoldingRepository) ListByPortfolio(ctx context.Context, portfolioID string) ([]model.Holding, error) {
	query := `
		SELECT portfolio_id, symbol, quantity, avg_cost_per_unit, last_buy_date
		FROM holding
		WHERE portfolio_id = ?
		ORDER BY symbol ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	holdings := []model.Holding{}
	for rows.Next() {
		var h model.Holding
		var avgCostStr, lastBuyDateStr string
		if err := rows.Scan(&h.PortfolioID, &h.Symbol, &h.Quantity, &avgCostStr, &lastBuyDateStr); err != nil {
			return nil, fmt.Errorf("failed to scan holding table results: %w", err)
		}

		h.AvgCostPerUnit, err = decimal.NewFromString(avgCostStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse average cost: %w", err)
		}

		h.LastBuyDate, err = ParseTime(lastBuyDateStr)
		if err != nil {
			return nil, err
		}

		holdings = append(holdings, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}

	return holdings, nil
}

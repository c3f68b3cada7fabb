package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stockfolio/backend/internal/apperrors"
	"github.com/stockfolio/backend/internal/database"
	"github.com/stockfolio/backend/internal/model"
)

// PortfolioRepository provides data access methods for the portfolio table.
// Every owner has at most one portfolio, enforced by a unique constraint on
// owner_id.
type PortfolioRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewPortfolioRepository creates a new PortfolioRepository with the provided database connection.
func NewPortfolioRepository(db *sql.DB) *PortfolioRepository {
	return &PortfolioRepository{db: db}
}

// WithTx returns a new PortfolioRepository scoped to the provided transaction.
func (r *PortfolioRepository) WithTx(tx *sql.Tx) *PortfolioRepository {
	return &PortfolioRepository{
		db: r.db,
		tx: tx,
	}
}

// getQuerier returns the active transaction if one is set, otherwise the database connection.
func (r *PortfolioRepository) getQuerier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetByOwner retrieves the portfolio belonging to the given owner.
// Returns ErrPortfolioNotFound if the owner has no portfolio yet.
func (r *PortfolioRepository) GetByOwner(ctx context.Context, ownerID string) (model.Portfolio, error) {
	query := `
		SELECT id, owner_id, created_at
		FROM portfolio
		WHERE owner_id = ?
	`

	var p model.Portfolio
	var createdAtStr string
	err := r.getQuerier().QueryRowContext(ctx, query, ownerID).Scan(
		&p.ID,
		&p.OwnerID,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.Portfolio{}, apperrors.ErrPortfolioNotFound
	}
	if err != nil {
		return model.Portfolio{}, fmt.Errorf("failed to query portfolio table: %w", err)
	}

	p.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Portfolio{}, err
	}

	return p, nil
}

// Insert stores a new portfolio. Returns ErrDuplicateEntry if the owner
// already has one; callers resolving a create race should re-read the
// winner's row on that error.
func (r *PortfolioRepository) Insert(ctx context.Context, p *model.Portfolio) error {
	query := `
		INSERT INTO portfolio (id, owner_id, created_at)
		VALUES (?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		p.ID,
		p.OwnerID,
		p.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.ErrDuplicateEntry
		}
		return fmt.Errorf("failed to insert portfolio: %w", err)
	}

	return nil
}

// ListAll retrieves every portfolio. Used by the integrity audit.
func (r *PortfolioRepository) ListAll(ctx context.Context) ([]model.Portfolio, error) {
	query := `
		SELECT id, owner_id, created_at
		FROM portfolio
		ORDER BY created_at ASC
	`

	rows, err := r.getQuerier().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query portfolio table: %w", err)
	}
	defer rows.Close()

	portfolios := []model.Portfolio{}
	for rows.Next() {
		var p model.Portfolio
		var createdAtStr string
		if err := rows.Scan(&p.ID, &p.OwnerID, &createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio table results: %w", err)
		}
		p.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, err
		}
		portfolios = append(portfolios, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating portfolio table: %w", err)
	}

	return portfolios, nil
}

package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockfolio/backend/internal/model"
)

// UserBuilder provides a fluent interface for creating test users.
//
// Example usage:
//
//	user := testutil.NewUser().WithEmail("jane@example.com").Build(t, db)
type UserBuilder struct {
	ID           string
	Email        string
	PasswordHash string
}

// NewUser creates a UserBuilder with sensible defaults.
func NewUser() *UserBuilder {
	id := MakeID()
	return &UserBuilder{
		ID:    id,
		Email: id + "@example.com",
		// bcrypt hash of "password123", precomputed to keep builders fast
		PasswordHash: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
	}
}

// WithID sets a custom ID.
func (b *UserBuilder) WithID(id string) *UserBuilder {
	b.ID = id
	return b
}

// WithEmail sets a custom email.
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.Email = email
	return b
}

// Build creates the user in the database and returns it.
func (b *UserBuilder) Build(t *testing.T, db *sql.DB) model.User {
	t.Helper()

	query := `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Email, b.PasswordHash, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return model.User{
		ID:           b.ID,
		Email:        b.Email,
		PasswordHash: b.PasswordHash,
	}
}

// PortfolioBuilder provides a fluent interface for creating test portfolios.
type PortfolioBuilder struct {
	ID      string
	OwnerID string
}

// NewPortfolio creates a PortfolioBuilder for the given owner.
func NewPortfolio(ownerID string) *PortfolioBuilder {
	return &PortfolioBuilder{
		ID:      MakeID(),
		OwnerID: ownerID,
	}
}

// WithID sets a custom ID.
func (b *PortfolioBuilder) WithID(id string) *PortfolioBuilder {
	b.ID = id
	return b
}

// Build creates the portfolio in the database and returns it.
func (b *PortfolioBuilder) Build(t *testing.T, db *sql.DB) model.Portfolio {
	t.Helper()

	query := `
		INSERT INTO portfolio (id, owner_id, created_at)
		VALUES (?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.OwnerID, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		t.Fatalf("Failed to create test portfolio: %v", err)
	}

	return model.Portfolio{
		ID:      b.ID,
		OwnerID: b.OwnerID,
	}
}

// TransactionBuilder provides a fluent interface for creating test ledger entries.
//
// Example usage:
//
//	tx := testutil.NewTransaction(portfolio.ID).
//	    Sell().
//	    WithSymbol("ABC").
//	    WithQuantity(4).
//	    WithPrice("150").
//	    Build(t, db)
type TransactionBuilder struct {
	ID           string
	PortfolioID  string
	Type         string
	Symbol       string
	Quantity     int64
	PricePerUnit decimal.Decimal
	TradeDate    time.Time
}

// NewTransaction creates a TransactionBuilder with sensible defaults (a BUY).
func NewTransaction(portfolioID string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:           MakeID(),
		PortfolioID:  portfolioID,
		Type:         model.TransactionTypeBuy,
		Symbol:       "TEST",
		Quantity:     10,
		PricePerUnit: decimal.NewFromInt(100),
		TradeDate:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

// Sell marks the transaction as a SELL.
func (b *TransactionBuilder) Sell() *TransactionBuilder {
	b.Type = model.TransactionTypeSell
	return b
}

// WithID sets a custom ID.
func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	b.ID = id
	return b
}

// WithSymbol sets a custom symbol.
func (b *TransactionBuilder) WithSymbol(symbol string) *TransactionBuilder {
	b.Symbol = symbol
	return b
}

// WithQuantity sets a custom quantity.
func (b *TransactionBuilder) WithQuantity(qty int64) *TransactionBuilder {
	b.Quantity = qty
	return b
}

// WithPrice sets a custom price from its decimal string form.
func (b *TransactionBuilder) WithPrice(price string) *TransactionBuilder {
	b.PricePerUnit = decimal.RequireFromString(price)
	return b
}

// WithTradeDate sets a custom trade date.
func (b *TransactionBuilder) WithTradeDate(date time.Time) *TransactionBuilder {
	b.TradeDate = date
	return b
}

// Build creates the transaction in the database and returns it. The builder
// writes the ledger row only; it does not touch holdings.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	query := `
		INSERT INTO "transaction" (id, portfolio_id, type, symbol, quantity, price_per_unit, trade_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID,
		b.PortfolioID,
		b.Type,
		b.Symbol,
		b.Quantity,
		b.PricePerUnit.String(),
		b.TradeDate.Format("2006-01-02"),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return model.Transaction{
		ID:           b.ID,
		PortfolioID:  b.PortfolioID,
		Type:         b.Type,
		Symbol:       b.Symbol,
		Quantity:     b.Quantity,
		PricePerUnit: b.PricePerUnit,
		TradeDate:    b.TradeDate,
	}
}

// HoldingBuilder provides a fluent interface for creating test holdings.
type HoldingBuilder struct {
	PortfolioID    string
	Symbol         string
	Quantity       int64
	AvgCostPerUnit decimal.Decimal
	LastBuyDate    time.Time
}

// NewHolding creates a HoldingBuilder with sensible defaults.
func NewHolding(portfolioID string) *HoldingBuilder {
	return &HoldingBuilder{
		PortfolioID:    portfolioID,
		Symbol:         "TEST",
		Quantity:       10,
		AvgCostPerUnit: decimal.NewFromInt(100),
		LastBuyDate:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
}

// WithSymbol sets a custom symbol.
func (b *HoldingBuilder) WithSymbol(symbol string) *HoldingBuilder {
	b.Symbol = symbol
	return b
}

// WithQuantity sets a custom quantity.
func (b *HoldingBuilder) WithQuantity(qty int64) *HoldingBuilder {
	b.Quantity = qty
	return b
}

// WithAvgCost sets a custom average cost from its decimal string form.
func (b *HoldingBuilder) WithAvgCost(avgCost string) *HoldingBuilder {
	b.AvgCostPerUnit = decimal.RequireFromString(avgCost)
	return b
}

// Build creates the holding in the database and returns it.
func (b *HoldingBuilder) Build(t *testing.T, db *sql.DB) model.Holding {
	t.Helper()

	query := `
		INSERT INTO holding (portfolio_id, symbol, quantity, avg_cost_per_unit, last_buy_date, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.PortfolioID,
		b.Symbol,
		b.Quantity,
		b.AvgCostPerUnit.String(),
		b.LastBuyDate.Format("2006-01-02"),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		t.Fatalf("Failed to create test holding: %v", err)
	}

	return model.Holding{
		PortfolioID:    b.PortfolioID,
		Symbol:         b.Symbol,
		Quantity:       b.Quantity,
		AvgCostPerUnit: b.AvgCostPerUnit,
		LastBuyDate:    b.LastBuyDate,
	}
}

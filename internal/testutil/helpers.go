package testutil

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stockfolio/backend/internal/auth"
	"github.com/stockfolio/backend/internal/repository"
	"github.com/stockfolio/backend/internal/service"
)

// TestJWTSecret is the signing secret used by test token managers.
const TestJWTSecret = "test-secret-do-not-use"

func NewTestPortfolioService(t *testing.T, db *sql.DB) *service.PortfolioService {
	t.Helper()

	portfolioRepo := repository.NewPortfolioRepository(db)

	return service.NewPortfolioService(portfolioRepo, zerolog.Nop())
}

func NewTestLedgerService(t *testing.T, db *sql.DB) *service.LedgerService {
	t.Helper()

	portfolioService := NewTestPortfolioService(t, db)
	transactionRepo := repository.NewTransactionRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)

	return service.NewLedgerService(db, portfolioService, transactionRepo, holdingRepo, zerolog.Nop())
}

func NewTestAuthService(t *testing.T, db *sql.DB) *service.AuthService {
	t.Helper()

	userRepo := repository.NewUserRepository(db)
	tokens := auth.NewTokenManager(TestJWTSecret, 1)

	return service.NewAuthService(userRepo, tokens, zerolog.Nop())
}

func NewTestAuditService(t *testing.T, db *sql.DB) *service.AuditService {
	t.Helper()

	portfolioRepo := repository.NewPortfolioRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)

	return service.NewAuditService(portfolioRepo, transactionRepo, holdingRepo, zerolog.Nop())
}

// MakeID generates a UUID string for use in tests.
func MakeID() string {
	return uuid.New().String()
}

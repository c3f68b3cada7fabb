package apperrors

import "errors"

// Domain entity errors represent missing entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrUserNotFound indicates that no account exists for the given email or ID.
	ErrUserNotFound = errors.New("user not found")

	// ErrPortfolioNotFound indicates that the owner has no portfolio yet.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrTransactionNotFound indicates that a transaction with the given ID
	// does not exist within the owner's portfolio.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrHoldingNotFound indicates that no holding record exists for the
	// (portfolio, symbol) pair a reversal needs to operate on.
	ErrHoldingNotFound = errors.New("holding not found")
)

// Business logic errors represent rejected business rules.
// These errors indicate that an operation cannot be completed, not a bug.
var (
	// ErrInsufficientHolding indicates that a sell would drive the holding
	// quantity negative.
	ErrInsufficientHolding = errors.New("insufficient holding for sale")

	// ErrDuplicateEmail indicates that an account with the same email already exists.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidCredentials indicates a failed login attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicateEntry indicates that an entity with the same unique
	// constraint already exists.
	ErrDuplicateEntry = errors.New("duplicate entry")
)

// Availability errors represent transient failures that the caller may retry.
var (
	// ErrConflict indicates that transaction isolation could not be acquired
	// within the configured bound. The whole operation is safe to retry.
	ErrConflict = errors.New("conflicting concurrent operation")

	// ErrPortfolioUnavailable indicates that the portfolio could not be
	// resolved or created for the owner.
	ErrPortfolioUnavailable = errors.New("portfolio unavailable")
)

// Data integrity errors represent inconsistencies between the ledger and the
// derived holdings. They are internal faults, never caller mistakes.
var (
	// ErrDataInconsistency indicates that the ledger and the holdings
	// aggregate have diverged (e.g. a BUY exists but no holding does).
	ErrDataInconsistency = errors.New("data inconsistency detected")
)

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stockfolio/backend/internal/api/request"
	"github.com/stockfolio/backend/internal/apperrors"
	"github.com/stockfolio/backend/internal/database"
	"github.com/stockfolio/backend/internal/holdings"
	"github.com/stockfolio/backend/internal/model"
	"github.com/stockfolio/backend/internal/repository"
)

// LedgerService coordinates the transaction ledger and the derived holdings.
// Each operation runs the ledger write and the holding mutation in one
// database transaction: either both take effect or neither does.
type LedgerService struct {
	db               *sql.DB
	portfolioService *PortfolioService
	transactionRepo  *repository.TransactionRepository
	holdingRepo      *repository.HoldingRepository
	log              zerolog.Logger
}

// NewLedgerService creates a new LedgerService with the provided dependencies.
func NewLedgerService(
	db *sql.DB,
	portfolioService *PortfolioService,
	transactionRepo *repository.TransactionRepository,
	holdingRepo *repository.HoldingRepository,
	log zerolog.Logger,
) *LedgerService {
	return &LedgerService{
		db:               db,
		portfolioService: portfolioService,
		transactionRepo:  transactionRepo,
		holdingRepo:      holdingRepo,
		log:              log.With().Str("component", "ledger_service").Logger(),
	}
}

// CreateTransaction records a trade and folds it into the owner's holding for
// the symbol, creating the portfolio on first use. A SELL exceeding the
// current holding fails with ErrInsufficientHolding and leaves no trace of
// the transaction. A lock that cannot be acquired within the busy timeout
// surfaces as ErrConflict; the whole operation is safe to retry.
func (s *LedgerService) CreateTransaction(ctx context.Context, ownerID string, req request.CreateTransactionRequest) (*model.Transaction, error) {
	tradeDate, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, err
	}

	portfolio, err := s.portfolioService.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPortfolioUnavailable, err)
	}

	transaction := &model.Transaction{
		ID:           uuid.New().String(),
		PortfolioID:  portfolio.ID,
		Type:         req.Type,
		Symbol:       req.Symbol,
		Quantity:     req.Quantity,
		PricePerUnit: req.PricePerUnit,
		TradeDate:    tradeDate,
		CreatedAt:    time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapConflict(err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := s.transactionRepo.WithTx(tx).Insert(ctx, transaction); err != nil {
		return nil, mapConflict(err)
	}

	position, err := s.currentPosition(ctx, tx, portfolio.ID, req.Symbol)
	if err != nil {
		return nil, err
	}

	holdingRepo := s.holdingRepo.WithTx(tx)
	switch req.Type {
	case model.TransactionTypeBuy:
		next := holdings.ApplyBuy(position, req.Quantity, req.PricePerUnit, tradeDate)
		if err := holdingRepo.Upsert(ctx, s.holdingFromPosition(portfolio.ID, req.Symbol, &next)); err != nil {
			return nil, mapConflict(err)
		}
	case model.TransactionTypeSell:
		next, err := holdings.ApplySell(position, req.Quantity)
		if err != nil {
			// Aborting here also discards the just-inserted transaction.
			return nil, err
		}
		if next == nil {
			if err := holdingRepo.Delete(ctx, portfolio.ID, req.Symbol); err != nil {
				return nil, mapConflict(err)
			}
		} else {
			if err := holdingRepo.Upsert(ctx, s.holdingFromPosition(portfolio.ID, req.Symbol, next)); err != nil {
				return nil, mapConflict(err)
			}
		}
	default:
		return nil, fmt.Errorf("unknown transaction type: %s", req.Type)
	}

	if err := tx.Commit(); err != nil {
		return nil, mapConflict(err)
	}

	return transaction, nil
}

// DeleteTransaction removes a transaction from the owner's ledger and
// reverses its effect on the holding, in one atomic unit. A deleted SELL is
// reversed by restoring its quantity; a deleted BUY forces a rebuild of the
// holding from the remaining buys for that symbol.
func (s *LedgerService) DeleteTransaction(ctx context.Context, ownerID, transactionID string) (*model.Transaction, error) {
	portfolio, err := s.portfolioService.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapConflict(err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	deleted, err := s.transactionRepo.WithTx(tx).Delete(ctx, portfolio.ID, transactionID)
	if err != nil {
		return nil, mapConflict(err)
	}

	switch deleted.Type {
	case model.TransactionTypeSell:
		if err := s.reverseSell(ctx, tx, &deleted); err != nil {
			return nil, err
		}
	case model.TransactionTypeBuy:
		if err := s.reverseBuy(ctx, tx, &deleted); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown transaction type: %s", deleted.Type)
	}

	if err := tx.Commit(); err != nil {
		return nil, mapConflict(err)
	}

	return &deleted, nil
}

// reverseSell restores the deleted sell's quantity to the holding. Without a
// base position the sell cannot be reversed (its cost basis is unknown), so
// this fails with ErrHoldingNotFound rather than fabricating one.
func (s *LedgerService) reverseSell(ctx context.Context, tx *sql.Tx, deleted *model.Transaction) error {
	position, err := s.currentPosition(ctx, tx, deleted.PortfolioID, deleted.Symbol)
	if err != nil {
		return err
	}

	next, err := holdings.ReverseSell(position, deleted.Quantity)
	if err != nil {
		return err
	}

	return mapConflict(s.holdingRepo.WithTx(tx).Upsert(ctx, s.holdingFromPosition(deleted.PortfolioID, deleted.Symbol, &next)))
}

// reverseBuy rebuilds the holding from the remaining buys for the symbol. A
// buy transaction must have produced a holding; finding none means the ledger
// and the aggregate have already diverged, which is surfaced as an internal
// inconsistency rather than a caller mistake.
func (s *LedgerService) reverseBuy(ctx context.Context, tx *sql.Tx, deleted *model.Transaction) error {
	if _, err := s.holdingRepo.WithTx(tx).Get(ctx, deleted.PortfolioID, deleted.Symbol); err != nil {
		if errors.Is(err, apperrors.ErrHoldingNotFound) {
			s.log.Error().
				Str("portfolio_id", deleted.PortfolioID).
				Str("symbol", deleted.Symbol).
				Str("transaction_id", deleted.ID).
				Msg("buy transaction exists without a holding record")
			return fmt.Errorf("%w: buy transaction without holding", apperrors.ErrDataInconsistency)
		}
		return err
	}

	remaining, err := s.transactionRepo.WithTx(tx).ListBuys(ctx, deleted.PortfolioID, deleted.Symbol, deleted.ID)
	if err != nil {
		return err
	}

	lots := make([]holdings.BuyLot, 0, len(remaining))
	for _, t := range remaining {
		lots = append(lots, holdings.BuyLot{
			Quantity:     t.Quantity,
			PricePerUnit: t.PricePerUnit,
			TradeDate:    t.TradeDate,
		})
	}

	holdingRepo := s.holdingRepo.WithTx(tx)
	next := holdings.RebuildFromBuys(lots)
	if next == nil {
		return mapConflict(holdingRepo.Delete(ctx, deleted.PortfolioID, deleted.Symbol))
	}

	return mapConflict(holdingRepo.Upsert(ctx, s.holdingFromPosition(deleted.PortfolioID, deleted.Symbol, next)))
}

// ListTransactions retrieves the owner's full transaction history in
// trade-date order. Returns ErrPortfolioNotFound if the owner has no
// portfolio; an empty history on an existing portfolio is a valid result.
func (s *LedgerService) ListTransactions(ctx context.Context, ownerID string) ([]model.Transaction, error) {
	portfolio, err := s.portfolioService.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return s.transactionRepo.ListByPortfolio(ctx, portfolio.ID)
}

// ListHoldings retrieves the owner's current positions ordered by symbol.
// Returns ErrPortfolioNotFound if the owner has no portfolio.
func (s *LedgerService) ListHoldings(ctx context.Context, ownerID string) ([]model.Holding, error) {
	portfolio, err := s.portfolioService.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return s.holdingRepo.ListByPortfolio(ctx, portfolio.ID)
}

// currentPosition loads the holding for a (portfolio, symbol) pair inside the
// atomic unit, translating "no record" into a nil position.
func (s *LedgerService) currentPosition(ctx context.Context, tx *sql.Tx, portfolioID, symbol string) (*holdings.Position, error) {
	h, err := s.holdingRepo.WithTx(tx).Get(ctx, portfolioID, symbol)
	if errors.Is(err, apperrors.ErrHoldingNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, mapConflict(err)
	}

	return &holdings.Position{
		Quantity:       h.Quantity,
		AvgCostPerUnit: h.AvgCostPerUnit,
		LastBuyDate:    h.LastBuyDate,
	}, nil
}

func (s *LedgerService) holdingFromPosition(portfolioID, symbol string, p *holdings.Position) *model.Holding {
	return &model.Holding{
		PortfolioID:    portfolioID,
		Symbol:         symbol,
		Quantity:       p.Quantity,
		AvgCostPerUnit: p.AvgCostPerUnit,
		LastBuyDate:    p.LastBuyDate,
	}
}

// mapConflict translates a SQLite busy/locked failure into the retryable
// ErrConflict; other errors pass through unchanged.
func mapConflict(err error) error {
	if err == nil {
		return nil
	}
	if database.IsBusy(err) {
		return fmt.Errorf("%w: %v", apperrors.ErrConflict, err)
	}
	return err
}

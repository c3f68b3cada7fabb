package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/stockfolio/backend/internal/model"
	"github.com/stockfolio/backend/internal/repository"
)

// AuditService performs a read-only integrity check: it replays each
// portfolio's full ledger chronologically and compares the replayed net
// position per symbol against the stored holding. Divergence is expected in
// one known case: deleting a buy rebuilds the holding from the remaining
// buys without replaying later sells. The audit makes that visible without
// ever correcting the write path.
type AuditService struct {
	portfolioRepo   *repository.PortfolioRepository
	transactionRepo *repository.TransactionRepository
	holdingRepo     *repository.HoldingRepository
	log             zerolog.Logger
}

// NewAuditService creates a new AuditService with the provided repository dependencies.
func NewAuditService(
	portfolioRepo *repository.PortfolioRepository,
	transactionRepo *repository.TransactionRepository,
	holdingRepo *repository.HoldingRepository,
	log zerolog.Logger,
) *AuditService {
	return &AuditService{
		portfolioRepo:   portfolioRepo,
		transactionRepo: transactionRepo,
		holdingRepo:     holdingRepo,
		log:             log.With().Str("component", "audit_service").Logger(),
	}
}

// Discrepancy reports one symbol whose stored holding disagrees with the
// quantity obtained by replaying the ledger.
type Discrepancy struct {
	PortfolioID    string `json:"portfolioId"`
	Symbol         string `json:"symbol"`
	LedgerQuantity int64  `json:"ledgerQuantity"`
	StoredQuantity int64  `json:"storedQuantity"`
}

// Report summarizes one audit run.
type Report struct {
	RanAt             time.Time     `json:"ranAt"`
	CheckedPortfolios int           `json:"checkedPortfolios"`
	CheckedSymbols    int           `json:"checkedSymbols"`
	Discrepancies     []Discrepancy `json:"discrepancies"`
}

// Run audits every portfolio and returns the findings. Mismatches are logged
// at warn level; the stored holdings are never modified.
func (s *AuditService) Run(ctx context.Context) (Report, error) {
	report := Report{
		RanAt:         time.Now().UTC(),
		Discrepancies: []Discrepancy{},
	}

	portfolios, err := s.portfolioRepo.ListAll(ctx)
	if err != nil {
		return Report{}, err
	}

	for _, portfolio := range portfolios {
		transactions, err := s.transactionRepo.ListByPortfolio(ctx, portfolio.ID)
		if err != nil {
			return Report{}, err
		}

		// Net position per symbol from the full mixed buy/sell history.
		replayed := make(map[string]int64)
		for _, t := range transactions {
			switch t.Type {
			case model.TransactionTypeBuy:
				replayed[t.Symbol] += t.Quantity
			case model.TransactionTypeSell:
				replayed[t.Symbol] -= t.Quantity
			}
		}

		stored := make(map[string]int64)
		holdings, err := s.holdingRepo.ListByPortfolio(ctx, portfolio.ID)
		if err != nil {
			return Report{}, err
		}
		for _, h := range holdings {
			stored[h.Symbol] = h.Quantity
		}

		symbols := make(map[string]struct{}, len(replayed)+len(stored))
		for symbol := range replayed {
			symbols[symbol] = struct{}{}
		}
		for symbol := range stored {
			symbols[symbol] = struct{}{}
		}

		report.CheckedPortfolios++
		report.CheckedSymbols += len(symbols)

		for symbol := range symbols {
			if replayed[symbol] == stored[symbol] {
				continue
			}

			d := Discrepancy{
				PortfolioID:    portfolio.ID,
				Symbol:         symbol,
				LedgerQuantity: replayed[symbol],
				StoredQuantity: stored[symbol],
			}
			report.Discrepancies = append(report.Discrepancies, d)

			s.log.Warn().
				Str("portfolio_id", d.PortfolioID).
				Str("symbol", d.Symbol).
				Int64("ledger_quantity", d.LedgerQuantity).
				Int64("stored_quantity", d.StoredQuantity).
				Msg("holding diverges from ledger replay")
		}
	}

	return report, nil
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stockfolio/backend/internal/apperrors"
	"github.com/stockfolio/backend/internal/model"
	"github.com/stockfolio/backend/internal/repository"
	"golang.org/x/sync/singleflight"
)

// PortfolioService is the portfolio registry: it maps an owner identity to
// exactly one portfolio record, created lazily on first use.
type PortfolioService struct {
	portfolioRepo *repository.PortfolioRepository
	group         singleflight.Group
	log           zerolog.Logger
}

// NewPortfolioService creates a new PortfolioService with the provided repository dependency.
func NewPortfolioService(portfolioRepo *repository.PortfolioRepository, log zerolog.Logger) *PortfolioService {
	return &PortfolioService{
		portfolioRepo: portfolioRepo,
		log:           log.With().Str("component", "portfolio_service").Logger(),
	}
}

// GetByOwner retrieves the owner's portfolio.
// Returns ErrPortfolioNotFound if the owner has no portfolio yet.
func (s *PortfolioService) GetByOwner(ctx context.Context, ownerID string) (model.Portfolio, error) {
	return s.portfolioRepo.GetByOwner(ctx, ownerID)
}

// GetOrCreate returns the owner's portfolio, creating it on first use.
// Concurrent first calls for the same owner are collapsed in-process via
// singleflight; across processes the unique constraint on owner_id decides
// the race, and the loser re-reads the winner's record.
func (s *PortfolioService) GetOrCreate(ctx context.Context, ownerID string) (model.Portfolio, error) {
	v, err, _ := s.group.Do(ownerID, func() (any, error) {
		return s.getOrCreate(ctx, ownerID)
	})
	if err != nil {
		return model.Portfolio{}, err
	}
	return v.(model.Portfolio), nil
}

func (s *PortfolioService) getOrCreate(ctx context.Context, ownerID string) (model.Portfolio, error) {
	portfolio, err := s.portfolioRepo.GetByOwner(ctx, ownerID)
	if err == nil {
		return portfolio, nil
	}
	if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
		return model.Portfolio{}, err
	}

	portfolio = model.Portfolio{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		CreatedAt: time.Now().UTC(),
	}

	err = s.portfolioRepo.Insert(ctx, &portfolio)
	if err == nil {
		s.log.Info().Str("portfolio_id", portfolio.ID).Msg("created portfolio on first use")
		return portfolio, nil
	}
	if errors.Is(err, apperrors.ErrDuplicateEntry) {
		// Lost the create race; the winner's record is authoritative.
		return s.portfolioRepo.GetByOwner(ctx, ownerID)
	}

	return model.Portfolio{}, err
}

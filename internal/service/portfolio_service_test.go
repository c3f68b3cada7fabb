package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stockfolio/backend/internal/apperrors"
	"github.com/stockfolio/backend/internal/model"
	"github.com/stockfolio/backend/internal/testutil"
)

func TestGetOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a portfolio on first use", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		user := testutil.NewUser().Build(t, db)

		portfolio, err := svc.GetOrCreate(ctx, user.ID)
		if err != nil {
			t.Fatalf("Failed to get or create portfolio: %v", err)
		}
		if portfolio.OwnerID != user.ID {
			t.Errorf("Expected owner %s, got %s", user.ID, portfolio.OwnerID)
		}
		testutil.AssertRowCount(t, db, "portfolio", 1)
	})

	t.Run("returns the same portfolio on repeated calls", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		user := testutil.NewUser().Build(t, db)

		first, err := svc.GetOrCreate(ctx, user.ID)
		if err != nil {
			t.Fatalf("Failed on first call: %v", err)
		}
		second, err := svc.GetOrCreate(ctx, user.ID)
		if err != nil {
			t.Fatalf("Failed on second call: %v", err)
		}

		if first.ID != second.ID {
			t.Errorf("Expected the same portfolio, got %s and %s", first.ID, second.ID)
		}
		testutil.AssertRowCount(t, db, "portfolio", 1)
	})

	t.Run("returns an existing portfolio", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		user := testutil.NewUser().Build(t, db)
		existing := testutil.NewPortfolio(user.ID).Build(t, db)

		portfolio, err := svc.GetOrCreate(ctx, user.ID)
		if err != nil {
			t.Fatalf("Failed to get portfolio: %v", err)
		}
		if portfolio.ID != existing.ID {
			t.Errorf("Expected portfolio %s, got %s", existing.ID, portfolio.ID)
		}
	})

	t.Run("concurrent first calls create exactly one portfolio", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		user := testutil.NewUser().Build(t, db)

		const n = 10
		var wg sync.WaitGroup
		results := make(chan model.Portfolio, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				portfolio, err := svc.GetOrCreate(ctx, user.ID)
				if err != nil {
					t.Errorf("Concurrent get-or-create failed: %v", err)
					return
				}
				results <- portfolio
			}()
		}
		wg.Wait()
		close(results)

		ids := make(map[string]struct{})
		for portfolio := range results {
			ids[portfolio.ID] = struct{}{}
		}
		if len(ids) != 1 {
			t.Errorf("Expected one portfolio ID across all callers, got %d", len(ids))
		}
		testutil.AssertRowCount(t, db, "portfolio", 1)
	})
}

func TestGetByOwner(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the owner's portfolio", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		user := testutil.NewUser().Build(t, db)
		existing := testutil.NewPortfolio(user.ID).Build(t, db)

		portfolio, err := svc.GetByOwner(ctx, user.ID)
		if err != nil {
			t.Fatalf("Failed to get portfolio: %v", err)
		}
		if portfolio.ID != existing.ID {
			t.Errorf("Expected portfolio %s, got %s", existing.ID, portfolio.ID)
		}
	})

	t.Run("fails when the owner has no portfolio", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPortfolioService(t, db)
		user := testutil.NewUser().Build(t, db)

		_, err := svc.GetByOwner(ctx, user.ID)
		if !errors.Is(err, apperrors.ErrPortfolioNotFound) {
			t.Fatalf("Expected ErrPortfolioNotFound, got %v", err)
		}
	})
}

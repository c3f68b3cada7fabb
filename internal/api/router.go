package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/stockfolio/backend/internal/api/handlers"
	custommiddleware "github.com/stockfolio/backend/internal/api/middleware"
	"github.com/stockfolio/backend/internal/auth"
	"github.com/stockfolio/backend/internal/config"
	"github.com/stockfolio/backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	db *sql.DB,
	tokens *auth.TokenManager,
	authService *service.AuthService,
	ledgerService *service.LedgerService,
	auditService *service.AuditService,
	cfg *config.Config,
	log zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.NewLogger(log))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	authMiddleware := custommiddleware.NewAuth(tokens)
	loginLimiter := custommiddleware.NewRateLimiter(1, 5)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Auth namespace (unauthenticated, rate limited)
		r.Route("/auth", func(r chi.Router) {
			r.Use(loginLimiter.Handler)
			authHandler := handlers.NewAuthHandler(authService)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(db, auditService)
			r.Get("/health", systemHandler.Health)
			r.With(authMiddleware.Handler).Get("/integrity", systemHandler.Integrity)
		})

		// Ledger namespace (authenticated)
		r.Route("/transaction", func(r chi.Router) {
			r.Use(authMiddleware.Handler)
			transactionHandler := handlers.NewTransactionHandler(ledgerService)
			r.Post("/", transactionHandler.CreateTransaction)
			r.Get("/", transactionHandler.ListTransactions)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Delete("/", transactionHandler.DeleteTransaction)
			})
		})

		r.Route("/holding", func(r chi.Router) {
			r.Use(authMiddleware.Handler)
			holdingHandler := handlers.NewHoldingHandler(ledgerService)
			r.Get("/", holdingHandler.ListHoldings)
		})
	})

	return r
}

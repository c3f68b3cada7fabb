package handlers

import (
	"database/sql"
	"net/http"

	"github.com/stockfolio/backend/internal/api/response"
	"github.com/stockfolio/backend/internal/database"
	"github.com/stockfolio/backend/internal/service"
)

// SystemHandler handles health and integrity endpoints.
type SystemHandler struct {
	db           *sql.DB
	auditService *service.AuditService
}

// NewSystemHandler creates a new SystemHandler with the provided dependencies.
func NewSystemHandler(db *sql.DB, auditService *service.AuditService) *SystemHandler {
	return &SystemHandler{
		db:           db,
		auditService: auditService,
	}
}

// Health handles GET requests for a liveness check.
//
// Endpoint: GET /api/system/health
// Response: 200 OK with {status: "ok"}
// Error: 503 Service Unavailable if the database is unreachable
func (h *SystemHandler) Health(w http.ResponseWriter, _ *http.Request) {
	if err := database.HealthCheck(h.db); err != nil {
		response.RespondError(w, http.StatusServiceUnavailable, "database unreachable", nil)
		return
	}

	response.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Integrity handles GET requests to run the ledger/holdings audit on demand.
//
// Endpoint: GET /api/system/integrity
// Response: 200 OK with the audit Report
// Error: 500 Internal Server Error if the audit fails
func (h *SystemHandler) Integrity(w http.ResponseWriter, r *http.Request) {
	report, err := h.auditService.Run(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to run integrity audit", nil)
		return
	}

	response.RespondJSON(w, http.StatusOK, report)
}

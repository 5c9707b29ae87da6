package health

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/sangkips/customer-registry-service/internal/handlers"
)

const Version = "1.0.0"

// Pinger is implemented by the event broker connection.
type Pinger interface {
	Ping() error
}

type Handler struct {
	db     *sql.DB
	broker Pinger
}

// NewHandler builds the health handler. broker may be nil when no event
// broker is configured; it is then left out of the report.
func NewHandler(db *sql.DB, broker Pinger) *Handler {
	return &Handler{
		db:     db,
		broker: broker,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
	Timestamp time.Time        `json:"timestamp"`
}

// Check represents a single health check
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health performs health checks on the database and, if configured, the broker
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]Check)
	overallHealthy := true

	dbCheck := h.checkDatabase(ctx)
	checks["database"] = dbCheck
	if dbCheck.Status != "healthy" {
		overallHealthy = false
	}

	if h.broker != nil {
		queueCheck := h.checkQueue()
		checks["queue"] = queueCheck
		if queueCheck.Status != "healthy" {
			overallHealthy = false
		}
	}

	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Checks:    checks,
		Timestamp: time.Now(),
	}

	if !overallHealthy {
		response.Status = "unhealthy"
		handlers.RespondWithJSON(w, http.StatusServiceUnavailable, handlers.Envelope{
			Success: false,
			Message: "API com problemas",
			Data:    response,
		})
		return
	}

	handlers.RespondWithSuccess(w, http.StatusOK, "API funcionando corretamente", response)
}

// checkDatabase checks if the database is accessible
func (h *Handler) checkDatabase(ctx context.Context) Check {
	if h.db == nil {
		return Check{
			Status:  "unhealthy",
			Message: "database connection is nil",
		}
	}

	err := h.db.PingContext(ctx)
	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: "database connection failed: " + err.Error(),
		}
	}

	var result int
	err = h.db.QueryRowContext(ctx, "SELECT 1").Scan(&result)
	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: "database query failed: " + err.Error(),
		}
	}

	return Check{
		Status:  "healthy",
		Message: "database is accessible",
	}
}

// checkQueue checks if the broker is accessible
func (h *Handler) checkQueue() Check {
	if err := h.broker.Ping(); err != nil {
		return Check{
			Status:  "unhealthy",
			Message: "queue connection failed: " + err.Error(),
		}
	}

	return Check{
		Status:  "healthy",
		Message: "queue is accessible",
	}
}

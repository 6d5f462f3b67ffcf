package api

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skicrew/inscriptions/internal/pkg/httputil"
	"github.com/skicrew/inscriptions/internal/service/dispatch"
	"github.com/skicrew/inscriptions/internal/service/event"
	"github.com/skicrew/inscriptions/internal/service/inscription"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	events       *event.Service
	inscriptions *inscription.Service
	dispatches   *dispatch.Service
	db           *sql.DB
	startedAt    time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(events *event.Service, inscriptions *inscription.Service, dispatches *dispatch.Service, db *sql.DB) *Handlers {
	return &Handlers{
		events:       events,
		inscriptions: inscriptions,
		dispatches:   dispatches,
		db:           db,
		startedAt:    time.Now(),
	}
}

// HealthCheck returns the health status of the API.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	database := "ok"
	if h.db == nil {
		database = "not configured"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			status = "degraded"
			database = "unreachable"
		}
	}

	httputil.OK(w, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now(),
		"database":  database,
		"email":     h.dispatches.Configured(),
		"uptime":    time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// idParam parses a numeric URL parameter. Writes a 400 and returns false
// when the value is not a positive integer.
func idParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		httputil.BadRequest(w, "invalid "+name)
		return 0, false
	}
	return id, true
}

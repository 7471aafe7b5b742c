package handlers

import (
	"context"
	"net/http"

	"github.com/vaquejada/senhas/internal/auth"
	"github.com/vaquejada/senhas/internal/logger"
	"github.com/vaquejada/senhas/internal/services"
)

// Pinger reports whether backing stores are reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Events    services.EventServicer
	Staff     services.StaffServicer
	Purchases services.PurchaseServicer
	Drafts    services.DraftServicer
	Judging   services.JudgingServicer
	Auth      *auth.Auth
	Log       logger.Logger
	Health    Pinger
	ws        http.HandlerFunc
}

// New creates a new Handlers instance. ws serves the realtime feed and may be nil.
func New(
	events services.EventServicer,
	staff services.StaffServicer,
	purchases services.PurchaseServicer,
	drafts services.DraftServicer,
	judging services.JudgingServicer,
	verifier *auth.Auth,
	ws http.HandlerFunc,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Events:    events,
		Staff:     staff,
		Purchases: purchases,
		Drafts:    drafts,
		Judging:   judging,
		Auth:      verifier,
		Log:       log,
		ws:        ws,
	}
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.Health != nil {
		if err := h.Health.Ping(r.Context()); err != nil {
			h.Log.Warn("Health check failed", "error", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	respondOK(w, map[string]string{"status": "ok"})
}

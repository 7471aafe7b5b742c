package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vaquejada/senhas/internal/auth"
	"github.com/vaquejada/senhas/internal/models"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)

	r.Get("/healthz", h.handleHealth)
	if h.ws != nil {
		r.Get("/ws", h.ws)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(h.Auth.Authenticate)

		// Public catalogue
		r.Get("/events", h.handleListEvents)
		r.Get("/events/{eventID}", h.handleGetEvent)
		r.Get("/events/{eventID}/categories", h.handleListCategories)
		r.Get("/events/{eventID}/categories/{categoryID}", h.handleGetCategory)
		r.Get("/events/{eventID}/categories/{categoryID}/grid", h.handleGetGrid)

		// Checkout answers LOGIN_REQUIRED itself so the selection can be parked
		r.Post("/events/{eventID}/checkout", h.handleCheckout)

		// Any signed-in caller
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole())
			r.Get("/events/{eventID}/drafts/{key}", h.handleRestoreDraft)
			r.Get("/purchases/{purchaseID}", h.handleGetPurchase)
			r.Get("/passwords/{passwordID}/qr", h.handleTicketQR)
		})

		// Live board
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleJudge, models.RoleSpeaker, models.RoleOrganizer))
			r.Get("/events/{eventID}/summary", h.handleGetSummary)
		})

		// Judges
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleJudge))
			r.Post("/events/{eventID}/votes", h.handleSubmitVote)
			r.Get("/events/{eventID}/votes/mine", h.handleGetMyVotes)
			r.Put("/votes/{voteID}", h.handleUpdateVote)
		})

		// Organizers
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleOrganizer))
			r.Post("/events", h.handleCreateEvent)
			r.Post("/events/{eventID}/categories", h.handleCreateCategory)
			r.Get("/events/{eventID}/staff", h.handleListStaff)
			r.Post("/events/{eventID}/staff", h.handleCreateStaff)
			r.Put("/passwords/{passwordID}/status", h.handleSetPasswordStatus)
		})
	})

	return r
}

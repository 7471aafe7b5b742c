package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/vaquejada/senhas/internal/auth"
	"github.com/vaquejada/senhas/internal/config"
	"github.com/vaquejada/senhas/internal/draft"
	"github.com/vaquejada/senhas/internal/handlers"
	"github.com/vaquejada/senhas/internal/logger"
	"github.com/vaquejada/senhas/internal/repository"
	"github.com/vaquejada/senhas/internal/services"
	"github.com/vaquejada/senhas/internal/websocket"
	"github.com/vaquejada/senhas/pkg/payment"
)

const shutdownTimeout = 10 * time.Second

// App holds all application dependencies
type App struct {
	log      logger.Logger
	cfg      *config.Config
	handlers *handlers.Handlers
	repo     *repository.Repository
	redis    *redis.Client
}

// pingers checks every backing store in turn
type pingers []handlers.Pinger

func (p pingers) Ping(ctx context.Context) error {
	for _, pg := range p {
		if err := pg.Ping(ctx); err != nil {
			return err
		}
	}
	return nil
}

// New creates and initializes a new application instance. payments is the client used
// for checkout handoff; pass nil to build an HTTP client from cfg.
func New(log logger.Logger, cfg *config.Config, payments payment.Client) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	a := &App{log: log, cfg: cfg, repo: repo}
	health := pingers{repo}

	var store draft.Store
	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		rs := draft.NewRedisStore(a.redis, cfg.DraftTTL)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rs.Ping(ctx)
		cancel()
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		store = rs
		health = append(health, rs)
		log.Info("Selection drafts stored in redis", "addr", cfg.RedisAddr)
	} else {
		store = draft.NewMemoryStore(cfg.DraftTTL)
		log.Info("Selection drafts stored in memory")
	}

	if payments == nil {
		payments = payment.NewHTTPClient(cfg.PaymentURL, cfg.PaymentTimeout, log)
	}

	eventService := services.NewEventService(log, repo)
	staffService := services.NewStaffService(log, repo)
	draftService := services.NewDraftService(log, store, repo)
	purchaseService := services.NewPurchaseService(log, repo, payments, draftService)
	judgingService := services.NewJudgingService(log, repo)

	hub := websocket.New(log, judgingService)
	hub.Start()
	purchaseService.SetBroadcaster(hub)
	judgingService.SetBroadcaster(hub)

	if cfg.HTTPLogging {
		log.EnableHTTPLogging()
	}

	a.handlers = handlers.New(
		eventService,
		staffService,
		purchaseService,
		draftService,
		judgingService,
		auth.New(cfg.JWTSecret),
		hub.ServeWs,
		log,
	)
	a.handlers.Health = health
	return a, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Close releases the database and redis connections
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("Failed to close redis client", "error", err)
		}
	}
	if err := a.repo.Close(); err != nil {
		a.log.Warn("Failed to close database", "error", err)
	}
}

// Run serves HTTP on addr until ctx is cancelled, then shuts down gracefully
func (a *App) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.log.Info("Server starting", "addr", addr, "lan_url", fmt.Sprintf("http://%s%s", lanAddress(systemInterfaces{}), addr))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sorodev/marketplace-client/internal/api"
	"github.com/sorodev/marketplace-client/internal/cart"
	"github.com/sorodev/marketplace-client/internal/catalog"
	"github.com/sorodev/marketplace-client/internal/checkout"
	"github.com/sorodev/marketplace-client/internal/payment"
	"github.com/sorodev/marketplace-client/internal/pricing"
	"github.com/sorodev/marketplace-client/internal/ratelimit"
	"github.com/sorodev/marketplace-client/pkg/config"
	"github.com/sorodev/marketplace-client/pkg/logger"
	"github.com/sorodev/marketplace-client/pkg/metrics"
)

const sessionFile = ".marketctl-session"

// app wires the engines behind the CLI commands.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	sessionID string

	coordinator *ratelimit.Coordinator
	client      *api.Client
	cart        *cart.Store
	catalog     catalog.Service
	pricing     *pricing.Resolver
	checkout    *checkout.Orchestrator
	payment     *payment.Orchestrator

	closers []func() error
}

func newApp(ctx context.Context) (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logg := logger.New(logger.Options{
		ServiceName: "marketctl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	sessionID, err := resolveSessionID(cfg.Session)
	if err != nil {
		return nil, err
	}
	ctx = logg.WithSessionID(ctx, sessionID)

	coordinator := ratelimit.NewCoordinator()
	coordinator.SubscribeExceeded(func(state ratelimit.Exceeded) {
		if state.Exceeded {
			logg.Warn(logg.WithField(ctx, "retry_after", state.RetryAfter), "rate limit exceeded, submissions blocked")
		}
	})
	coordinator.SubscribeCaptcha(func(state ratelimit.CaptchaState) {
		if state.Required {
			logg.Warn(logg.WithField(ctx, "attempts", state.Attempts), "captcha required before the next order")
		}
	})

	a := &app{
		cfg:         cfg,
		log:         logg,
		sessionID:   sessionID,
		coordinator: coordinator,
	}

	storage, err := a.openCartStorage(ctx)
	if err != nil {
		return nil, err
	}
	a.cart, err = cart.NewStore(ctx, storage, logg)
	if err != nil {
		return nil, err
	}

	a.client, err = api.NewClient(cfg.API, coordinator, logg)
	if err != nil {
		return nil, err
	}
	a.catalog, err = catalog.NewService(a.client, logg)
	if err != nil {
		return nil, err
	}
	a.pricing, err = pricing.NewResolver(a.client, logg)
	if err != nil {
		return nil, err
	}

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)
	a.checkout, err = checkout.NewOrchestrator(a.cart, a.client, coordinator, checkoutMetrics, logg)
	if err != nil {
		return nil, err
	}
	a.payment, err = payment.NewOrchestrator(a.client, payment.NewDirWriter(cfg.Receipts), checkoutMetrics, logg)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) openCartStorage(ctx context.Context) (cart.Storage, error) {
	switch strings.ToLower(a.cfg.Storage.Backend) {
	case config.StorageBackendRedis:
		storage, err := cart.NewRedisStorage(ctx, a.cfg.Redis, a.sessionID)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, storage.Close)
		return storage, nil
	case config.StorageBackendMemory:
		return cart.NewMemoryStorage(), nil
	default:
		db, err := cart.OpenSQLite(a.cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		return cart.NewRecordRepository(db, a.sessionID)
	}
}

func (a *app) close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.log.Error(context.Background(), "close failed", err)
		}
	}
}

// resolveSessionID returns the configured session identifier, or the
// one persisted alongside the binary, generating and saving a fresh
// one on first use.
func resolveSessionID(cfg config.SessionConfig) (string, error) {
	if cfg.ID != "" {
		return cfg.ID, nil
	}
	if data, err := os.ReadFile(sessionFile); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			return id, nil
		}
	}
	id := uuid.NewString()
	if err := os.WriteFile(sessionFile, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("persisting session id: %w", err)
	}
	return id, nil
}

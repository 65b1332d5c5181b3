// Package app wires the storefront together and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikolayk812/pharmacy-storefront/internal/admin"
	"github.com/nikolayk812/pharmacy-storefront/internal/backend"
	"github.com/nikolayk812/pharmacy-storefront/internal/booking"
	"github.com/nikolayk812/pharmacy-storefront/internal/checkout"
	"github.com/nikolayk812/pharmacy-storefront/internal/config"
	"github.com/nikolayk812/pharmacy-storefront/internal/metrics"
	"github.com/nikolayk812/pharmacy-storefront/internal/prescription"
	"github.com/nikolayk812/pharmacy-storefront/internal/query"
	"github.com/nikolayk812/pharmacy-storefront/internal/session"
	httptransport "github.com/nikolayk812/pharmacy-storefront/internal/transport/http"
	"github.com/nikolayk812/pharmacy-storefront/internal/validate"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type App struct {
	cfg       config.Config
	transport *httptransport.HTTPTransport
	log       *zap.Logger
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	m := metrics.New()

	client, err := backend.New(backend.Config{
		BaseURL:        cfg.Backend.BaseURL,
		Timeout:        cfg.Backend.Timeout,
		MaxRetries:     cfg.Backend.MaxRetries,
		InitialBackoff: cfg.Backend.InitialBackoff,
		RateLimit:      cfg.Backend.RateLimit,
		RateBurst:      cfg.Backend.RateBurst,
	}, log, m)
	if err != nil {
		return nil, fmt.Errorf("backend.New: %w", err)
	}

	// a shared read may retry, so its deadline covers every attempt
	loadTimeout := cfg.Backend.Timeout * time.Duration(cfg.Backend.MaxRetries+1)
	cache := query.New(client, cfg.Cache.Size, cfg.Cache.TTL, log, m, query.WithLoadTimeout(loadTimeout))
	sessions := session.New(cfg.Session.MaxSessions, cfg.Session.TTL, m)
	v := validate.New()

	checkoutSvc, err := checkout.NewService(cache, sessions, v, cfg.Checkout.DefaultCountry, log, m)
	if err != nil {
		return nil, fmt.Errorf("checkout.NewService: %w", err)
	}

	bookingSvc, err := booking.NewService(cache, cache, cfg.Location(), log)
	if err != nil {
		return nil, fmt.Errorf("booking.NewService: %w", err)
	}

	prescriptionSvc, err := prescription.NewService(cache, cfg.Prescription.MaxImageBytes, log)
	if err != nil {
		return nil, fmt.Errorf("prescription.NewService: %w", err)
	}

	adminSvc, err := admin.NewService(cache, v, cfg.Prescription.MaxImageBytes, log)
	if err != nil {
		return nil, fmt.Errorf("admin.NewService: %w", err)
	}

	transport, err := httptransport.NewHTTPTransport(httptransport.Config{
		Addr:           cfg.HTTP.Addr,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		CookieName:     cfg.Session.CookieName,
		SecureCookies:  cfg.HTTP.SecureCookies,
		SessionTTL:     cfg.Session.TTL,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Currency:       cfg.Currency(),
	}, httptransport.Deps{
		Catalog:       cache,
		Account:       cache,
		Sessions:      sessions,
		Checkout:      checkoutSvc,
		Booking:       bookingSvc,
		Prescriptions: prescriptionSvc,
		Admin:         adminSvc,
		Validator:     v,
		Metrics:       m,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("httptransport.NewHTTPTransport: %w", err)
	}

	return &App{
		cfg:       cfg,
		transport: transport,
		log:       log,
	}, nil
}

// Run serves until ctx is done, then shuts the server down gracefully.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("starting HTTP server", zap.String("addr", a.cfg.HTTP.Addr))
		return a.transport.Run()
	})

	g.Go(func() error {
		<-ctx.Done()
		a.log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.HTTP.ShutdownTimeout)
		defer cancel()

		if err := a.transport.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("transport.Shutdown: %w", err)
		}

		a.log.Info("HTTP server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

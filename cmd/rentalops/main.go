// rentalops serves the operational alert feed and pricing API for a
// vehicle rental business.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/salamtime/rentalops/internal/alerting"
	apiv2 "github.com/salamtime/rentalops/internal/api/v2"
	"github.com/salamtime/rentalops/internal/conf"
	"github.com/salamtime/rentalops/internal/datastore"
	"github.com/salamtime/rentalops/internal/datastore/repository"
	"github.com/salamtime/rentalops/internal/events"
	"github.com/salamtime/rentalops/internal/fetch"
	"github.com/salamtime/rentalops/internal/logger"
	"github.com/salamtime/rentalops/internal/pricing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configFile := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	if err := run(*configFile); err != nil {
		logger.Default().Error("fatal", logger.Error(err))
		os.Exit(1)
	}
}

func run(configFile string) error {
	settings, err := conf.Load(configFile)
	if err != nil {
		return err
	}

	log := logger.NewSlogLogger(os.Stderr, logger.ParseLevel(settings.LogLevel), nil)

	if err := alerting.ValidateDisplayNames(); err != nil {
		return err
	}

	db, err := datastore.Open(settings.Database.Driver, settings.Database.DSN)
	if err != nil {
		return err
	}
	if err := datastore.AutoMigrate(db); err != nil {
		return err
	}
	log.Info("database ready",
		logger.String("driver", settings.Database.Driver))

	accessor := fetch.New(fetch.Config{
		Timeout:     settings.Fetch.Timeout.Std(),
		MaxRetries:  settings.Fetch.MaxRetries,
		BackoffBase: settings.Fetch.BackoffBase.Std(),
		BackoffCap:  settings.Fetch.BackoffCap.Std(),
	}, log)

	thresholds := alerting.Thresholds{
		DueSoonWindow:             settings.Alerting.DueSoonWindow.Std(),
		MaintenanceUrgentWindow:   settings.Alerting.MaintenanceUrgentWindow.Std(),
		MaintenanceReminderWindow: settings.Alerting.MaintenanceReminderWindow.Std(),
		LowFuelThresholdPct:       settings.Alerting.LowFuelThresholdPct,
		ApprovalEscalationWindow:  settings.Alerting.ApprovalEscalationWindow.Std(),
	}

	fleetRepo := repository.NewFleetRepository(db)
	overrideRepo := repository.NewPriceOverrideRepository(db)
	cacheTTL := settings.Fetch.CacheTTL.Std()

	overrideAdapter := alerting.NewOverrideAdapter(overrideRepo, accessor, cacheTTL, thresholds, log)
	adapters := []alerting.SourceAdapter{
		alerting.NewRentalAdapter(repository.NewRentalRepository(db), accessor, cacheTTL, thresholds, log),
		alerting.NewFuelAdapter(repository.NewFuelRepository(db), accessor, cacheTTL, thresholds, log),
		alerting.NewMaintenanceAdapter(repository.NewMaintenanceRepository(db), accessor, cacheTTL, thresholds, log),
		alerting.NewFleetAdapter(fleetRepo, accessor, cacheTTL, log),
		overrideAdapter,
	}

	hub := events.NewHub()
	aggregator := alerting.NewAggregator(adapters, settings.Alerting.AggregateTimeout.Std(), log)
	store := alerting.NewStore(aggregator, hub, log)
	defer store.Stop()

	pricingSvc := pricing.NewService(repository.NewPricingRepository(db), overrideRepo, accessor, cacheTTL, log)
	pricingSvc.OnOverrideResolved(overrideAdapter.InvalidateCache)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Prime the feed before accepting traffic; a failed first pass is
	// partial, not fatal.
	if err := store.Refresh(ctx); err != nil {
		log.Warn("initial alert refresh failed", logger.Error(err))
	}
	store.StartAutoRefresh(settings.RefreshInterval())

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	apiv2.New(ctx, e.Group("/api/v2"), store, pricingSvc, fleetRepo, log)
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(settings.Listen)
	}()
	log.Info("server listening", logger.String("addr", settings.Listen))

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

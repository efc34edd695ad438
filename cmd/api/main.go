package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"caregiver-assistant/internal/adapters/auth/iam"
	"caregiver-assistant/internal/adapters/capabilities/plansfeatures"
	"caregiver-assistant/internal/adapters/gemini"
	pg "caregiver-assistant/internal/adapters/storage/postgres"
	"caregiver-assistant/internal/domain/alerts"
	"caregiver-assistant/internal/platform/config"
	"caregiver-assistant/internal/platform/logger"
	"caregiver-assistant/internal/platform/metrics"
	"caregiver-assistant/internal/ports/auth"
	"caregiver-assistant/internal/ports/capabilities"
	"caregiver-assistant/internal/router"
)

// @title caregiver-assistant API
// @version 1.0
// @description Registros de pacientes, medicinas, recordatorios y notas; alertas; asistente de voz.
// @BasePath /
func main() {
	log := logger.NewFromEnv()

	if err := run(log); err != nil {
		log.Error("server stopped with error", map[string]any{"err": err})
		os.Exit(1)
	}
}

func run(log logger.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New("caregiver")

	var db *sql.DB
	if cfg.DBDSN != "" {
		db, err = pg.Open(ctx, cfg.DBDSN, pg.Options{
			MaxOpenConns:   cfg.DBMaxConns,
			ConnectRetries: cfg.DBConnectRetries,
		})
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.DBMigrate {
			if err := pg.Migrate(ctx, db); err != nil {
				return err
			}
		}
		log.Info("using postgres store", nil)
	} else {
		log.Info("using in-memory store", nil)
	}

	var verifier auth.AuthVerifier // nil => modo dev (X-Debug-User-ID)
	if cfg.IAMBaseURL != "" {
		client, err := iam.NewClient(iam.Config{BaseURL: cfg.IAMBaseURL, APIKey: cfg.IAMAPIKey})
		if err != nil {
			return err
		}
		verifier = iam.NewVerifier(client)
	}

	var resolver capabilities.CapabilitiesResolver // nil => voz habilitada para todos
	if cfg.PlansBaseURL != "" {
		client, err := plansfeatures.NewClient(plansfeatures.Config{BaseURL: cfg.PlansBaseURL, APIKey: cfg.PlansAPIKey})
		if err != nil {
			return err
		}
		resolver = plansfeatures.NewResolver(client, cfg.AllowAllCapabilities)
	}

	ai := gemini.New(gemini.Config{
		APIKey:    cfg.GeminiAPIKey,
		LiveModel: cfg.LiveModel,
		TTSModel:  cfg.TTSModel,
		TextModel: cfg.TextModel,
		Logger:    log,
	})
	if err := ai.Ready(); err != nil {
		log.Warn("assistant disabled until GEMINI_API_KEY is set", nil)
	}

	svcs := router.NewServices(db, m)

	monitor := alerts.NewMonitor(svcs.Alerts, svcs.Owners, alerts.MonitorOptions{
		Interval:          cfg.AlertPollInterval,
		LowStockThreshold: cfg.LowStockThreshold,
		Logger:            log,
	})
	go monitor.Run(ctx)

	r := router.NewRouter(router.Options{
		AuthVerifier:       verifier,
		Services:           svcs,
		Logger:             log,
		Metrics:            m,
		Capabilities:       resolver,
		Dialer:             ai,
		Speaker:            ai,
		Asker:              ai,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	// Sin WriteTimeout: /api/assistant/live es un websocket de larga duración.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "go.uber.org/automaxprocs"

	"github.com/MrJamesThe3rd/titledeed/internal/app"
	"github.com/MrJamesThe3rd/titledeed/internal/config"
	titledeedHttp "github.com/MrJamesThe3rd/titledeed/internal/http"
	applicationHandler "github.com/MrJamesThe3rd/titledeed/internal/http/application"
	cadastreHandler "github.com/MrJamesThe3rd/titledeed/internal/http/cadastre"
	eventsHandler "github.com/MrJamesThe3rd/titledeed/internal/http/events"
	ledgerHandler "github.com/MrJamesThe3rd/titledeed/internal/http/ledger"
	propertyHandler "github.com/MrJamesThe3rd/titledeed/internal/http/property"
	reviewHandler "github.com/MrJamesThe3rd/titledeed/internal/http/review"
	txHandler "github.com/MrJamesThe3rd/titledeed/internal/http/transaction"
	"github.com/MrJamesThe3rd/titledeed/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.App.Debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if cfg.Auth.JWTSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Stdout:      cfg.Telemetry.Stdout,
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.App.Name,
	})
	if err != nil {
		return err
	}

	defer func() {
		if err := shutdownTracing(context.WithoutCancel(ctx)); err != nil {
			logger.Error("failed to flush traces", "error", err)
		}
	}()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	go a.Bridge.RunReconciler(ctx, cfg.Reconcile.Interval)

	router := titledeedHttp.New(titledeedHttp.Options{
		JWTSecret:      cfg.Auth.JWTSecret,
		JWTIssuer:      cfg.Auth.Issuer,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Metrics:        a.Registry,
	}, titledeedHttp.Handlers{
		Transactions: txHandler.NewHandler(a.Transactions),
		Properties:   propertyHandler.NewHandler(a.Properties),
		Applications: applicationHandler.NewHandler(a.Applications),
		Cadastre:     cadastreHandler.NewHandler(a.Cadastre),
		Review:       reviewHandler.NewHandler(a.Assignments, a.Transactions, a.Properties, a.Applications),
		Ledger:       ledgerHandler.NewHandler(a.Audit, a.Bridge, a.Ledger),
		Events:       eventsHandler.NewHandler(a.Events),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("starting server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

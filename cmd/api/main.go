// @title Guest Check-in API
// @version 1.0
// @description Event registries with organizer-signed attendee authorizations.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"guestcheckin/config"
	_ "guestcheckin/docs"
	"guestcheckin/internal/adapters/auth"
	"guestcheckin/internal/adapters/email"
	httpdelivery "guestcheckin/internal/delivery/http"
	"guestcheckin/internal/domain"
	"guestcheckin/internal/repository/memory"
	"guestcheckin/internal/repository/postgres"
	"guestcheckin/internal/services"
)

func main() {
	logger := config.NewLogger()
	if err := run(logger); err != nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load(logger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	journal, closeJournal, err := openJournal(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeJournal()

	publisher := services.NewJournalPublisher(journal, logger, services.DefaultQueueSize)
	sinks := domain.Sinks{publisher, services.LogSink{Logger: logger}}

	var alerts *services.AlertSink
	if cfg.Mail.AlertEmail != "" {
		mailer, err := email.NewMailer(email.MailerConfig{
			Provider:    cfg.Mail.Provider,
			FromAddress: cfg.Mail.FromAddress,
			FromName:    cfg.Mail.FromName,
			SES: email.SESConfig{
				Region:             cfg.Mail.SESRegion,
				AccessKeyID:        cfg.Mail.AWSAccessKeyID,
				SecretAccessKey:    cfg.Mail.AWSSecretAccessKey,
				InsecureSkipVerify: cfg.Mail.SESInsecureSkipVerify,
			},
		}, logger)
		if err != nil {
			return fmt.Errorf("create mailer: %w", err)
		}
		renderer, err := email.NewTemplateRenderer()
		if err != nil {
			return fmt.Errorf("load email templates: %w", err)
		}
		alerts = services.NewAlertSink(services.NewEmailService(mailer, renderer, logger), cfg.Mail.AlertEmail, logger, services.DefaultQueueSize)
		sinks = append(sinks, alerts)
	}

	// Replay publishes nothing, so the live sinks can be attached up front.
	factory := domain.NewFactory(cfg.FactoryAddress, domain.SystemClock{}, sinks)
	applied, err := services.RestoreFactory(ctx, factory, journal)
	if err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	logger.Info("state restored", "notifications", applied, "events", factory.EventCount())

	var workers sync.WaitGroup
	workers.Go(func() { publisher.Run(ctx) })
	if alerts != nil {
		workers.Go(func() { alerts.Run(ctx) })
	}

	jwt, err := auth.NewJWT(cfg.JWTSecret)
	if err != nil {
		return err
	}
	challenges := memory.NewChallengeStore(cfg.ChallengeTTL, memory.DefaultChallengeCleanup)

	router := httpdelivery.NewRouter(httpdelivery.RouterConfig{
		Logger:             logger,
		Registry:           services.NewRegistryService(factory, journal, logger, cfg.RequestTimeout),
		Auth:               services.NewAuthService(challenges, jwt, domain.SystemClock{}, cfg.ChallengeTTL, cfg.JWTExpiry),
		Verifier:           jwt,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           http.TimeoutHandler(router, cfg.RequestTimeout, `{"data":null,"error":{"code":"internal_error","message":"request timed out"}}`),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "factory", cfg.FactoryAddress.Hex(), "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down server")
	case err := <-serveErr:
		runErr = fmt.Errorf("server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}

	// No request is in flight now, so nothing publishes after Close.
	publisher.Close()
	if alerts != nil {
		alerts.Close()
	}
	workers.Wait()
	logger.Info("server stopped")
	return runErr
}

// openJournal returns the Postgres journal when DATABASE_URL is set and the
// in-memory one otherwise.
func openJournal(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.JournalRepository, func(), error) {
	if cfg.DBUrl == "" {
		logger.Warn("DATABASE_URL not set, notifications are kept in memory only")
		return memory.NewJournalRepository(), func() {}, nil
	}
	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	logger.Info("connected to postgres")
	return postgres.NewJournalRepository(db), func() { _ = db.Close() }, nil
}

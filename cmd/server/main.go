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

	gosmtp "github.com/emersion/go-smtp"
	"github.com/welldanyogia/webrana-contact-relay/internal/api"
	"github.com/welldanyogia/webrana-contact-relay/internal/api/middleware"
	"github.com/welldanyogia/webrana-contact-relay/internal/config"
	"github.com/welldanyogia/webrana-contact-relay/internal/database"
	"github.com/welldanyogia/webrana-contact-relay/internal/logger"
	"github.com/welldanyogia/webrana-contact-relay/internal/provider"
	"github.com/welldanyogia/webrana-contact-relay/internal/repository"
	"github.com/welldanyogia/webrana-contact-relay/internal/services"
	"github.com/welldanyogia/webrana-contact-relay/internal/smtp"
	"github.com/welldanyogia/webrana-contact-relay/internal/websocket"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const (
	shutdownTimeout    = 10 * time.Second
	limiterSweepEvery  = 10 * time.Minute
	limiterIdleTimeout = 30 * time.Minute
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadWithValidation()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	production := cfg.AppEnv == "production"

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)
	log.Info("starting contact relay")
	cfg.LogConfig(log)

	if missing := cfg.MissingDelivery(); len(missing) > 0 {
		log.Warn("delivery is not configured, submissions will be refused", slog.Any("missing", missing))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	security := logger.NewSecurityLogger(cfg.SlogLevel())

	sender, err := provider.New(cfg, log)
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}

	var db *gorm.DB
	var ledger repository.DeliveryRepository
	if cfg.DatabaseURL != "" {
		db, err = database.Connect(cfg.DatabaseURL, database.Options{Production: production})
		if err != nil {
			return fmt.Errorf("connect ledger database: %w", err)
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrate ledger database: %w", err)
		}
		ledger = repository.NewDeliveryRepository(db)
		log.Info("delivery ledger enabled")
	}

	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	limiter := middleware.NewIPRateLimiter(rate.Limit(cfg.RateLimitRequests), cfg.RateLimitBurst)
	go limiter.Run(ctx, limiterSweepEvery, limiterIdleTimeout)

	service := services.NewContactService(&services.ContactServiceConfig{
		Config:    cfg,
		Provider:  sender,
		Ledger:    ledger,
		Publisher: hub,
		Security:  security,
		Logger:    log,
	})

	e := api.NewRouter(&api.RouterConfig{
		Config:   cfg,
		Service:  service,
		DB:       db,
		Ledger:   ledger,
		Hub:      hub,
		Limiter:  limiter,
		Security: security,
		Logger:   log,
	})

	errCh := make(chan error, 2)

	var sink *gosmtp.Server
	if cfg.MailSinkAddr != "" {
		backend := smtp.NewBackend(&smtp.BackendConfig{Publisher: hub, Logger: log})
		sink = smtp.NewSecureServer(backend, &smtp.ServerConfig{
			Addr:          cfg.MailSinkAddr,
			Domain:        cfg.MailSinkDomain,
			AllowInsecure: true,
		})
		go func() {
			log.Info("mail sink listening", slog.String("addr", cfg.MailSinkAddr))
			if err := sink.ListenAndServe(); err != nil && !errors.Is(err, gosmtp.ErrServerClosed) {
				errCh <- fmt.Errorf("mail sink: %w", err)
			}
		}()
	}

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	go func() {
		log.Info("http server listening", slog.String("addr", addr))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err := <-errCh:
		stop()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", slog.String("error", err.Error()))
	}
	if sink != nil {
		if err := sink.Shutdown(shutdownCtx); err != nil {
			log.Error("mail sink shutdown failed", slog.String("error", err.Error()))
		}
	}

	log.Info("server stopped")
	return nil
}

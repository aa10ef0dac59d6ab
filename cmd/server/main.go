package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	emailPkg "lembah/internal/adapters/email"
	web "lembah/internal/adapters/http"
	"lembah/internal/adapters/http/perf"
	"lembah/internal/adapters/storage"
	accountStore "lembah/internal/adapters/storage/account"
	memberStore "lembah/internal/adapters/storage/member"
	paymentStore "lembah/internal/adapters/storage/payment"
	trainingLogStore "lembah/internal/adapters/storage/traininglog"
	"lembah/internal/application/orchestrators"
	"lembah/internal/config"
	"lembah/internal/logging"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		slog.Error("server_failed", "error", err.Error())
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	_, logCloser := logging.Setup(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})
	defer logCloser.Close()

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return err
	}
	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		return err
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQueryMs)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	stores := web.Stores{
		AccountStore:     acctStore,
		MemberStore:      memberStore.NewSQLiteStore(timedDB),
		PaymentStore:     paymentStore.NewSQLiteStore(timedDB),
		TrainingLogStore: trainingLogStore.NewSQLiteStore(timedDB),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := bootstrapManager(ctx, acctStore, cfg.ManagerPassword); err != nil {
		return err
	}

	receipts := orchestrators.ReceiptDeps{From: cfg.ResendFrom, GymName: cfg.GymName}
	if cfg.ResendKey != "" {
		receipts.Sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.ResendFrom)
		slog.Info("email_sender", "provider", "resend")
	} else {
		receipts.Sender = emailPkg.NewNoopSender()
		if cfg.Production() {
			slog.Warn("email_sender", "provider", "noop", "detail", "LEMBAH_RESEND_KEY is not set, receipts are not delivered")
		}
	}

	srv, err := web.NewServer(stores, web.Options{
		CSRFKey:            cfg.CSRFKey,
		FlashKey:           cfg.FlashKey,
		Production:         cfg.Production(),
		TrustedOrigins:     cfg.TrustedOrigins,
		RateLimitPerSecond: cfg.RateLimit,
		LoginPerMinute:     cfg.LoginLimit,
		SlowRequestMs:      cfg.SlowRequestMs,
		Location:           cfg.Location,
		Receipts:           receipts,
		Ping:               timedDB.PingContext,
	}, collector)
	if err != nil {
		return err
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server_start", "version", version, "addr", cfg.Addr, "env", cfg.Env,
			"schema", storage.LatestSchemaVersion(), "tz", cfg.Location.String())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("server_stop", "reason", "signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// bootstrapManager creates the primary manager on an empty database.
// Existing installations are left alone; use cmd/bootstrap to reset a password.
func bootstrapManager(ctx context.Context, accounts accountStore.Store, password string) error {
	n, err := accounts.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	if password == "" {
		slog.Warn("auth_event", "event", "no_accounts",
			"detail", "set LEMBAH_MANAGER_PASSWORD or run cmd/bootstrap to create the manager account")
		return nil
	}
	_, err = orchestrators.ExecuteBootstrapManager(ctx,
		orchestrators.BootstrapManagerInput{Password: password},
		orchestrators.BootstrapManagerDeps{AccountStore: accounts},
	)
	return err
}

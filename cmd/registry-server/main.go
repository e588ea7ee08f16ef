// Package main provides the vehicle registry server entry point.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/transport-authority/vehicle-registry/pkg/audit"
	"github.com/transport-authority/vehicle-registry/pkg/db"
	"github.com/transport-authority/vehicle-registry/pkg/notify"
	"github.com/transport-authority/vehicle-registry/pkg/owner"
	"github.com/transport-authority/vehicle-registry/pkg/ownership"
	"github.com/transport-authority/vehicle-registry/pkg/plate"
	"github.com/transport-authority/vehicle-registry/pkg/query"
	"github.com/transport-authority/vehicle-registry/pkg/registration"
	"github.com/transport-authority/vehicle-registry/pkg/server"
	"github.com/transport-authority/vehicle-registry/pkg/transfer"
	"github.com/transport-authority/vehicle-registry/pkg/vehicle"
)

// resolveDatabaseType picks between the -db-type flag and the DATABASE_TYPE
// environment variable. A flag passed on the command line always wins, even
// when it matches the default.
func resolveDatabaseType(flagValue string, flagSet bool, envValue string) string {
	if flagSet || envValue == "" {
		return flagValue
	}
	return envValue
}

func main() {
	var (
		listenAddr         string
		databaseType       string
		databaseDSN        string
		auditRetentionDays int
	)

	flag.StringVar(&listenAddr, "listen", ":8080", "Address to listen on")
	flag.StringVar(&databaseType, "db-type", "sqlite", "Database type (sqlite, mysql, or postgres)")
	flag.StringVar(&databaseDSN, "db-dsn", "", "Database connection string")
	flag.IntVar(&auditRetentionDays, "audit-retention-days", 365, "Days to keep audit events (0 disables cleanup)")
	flag.Parse()

	if databaseDSN == "" {
		databaseDSN = os.Getenv("DATABASE_DSN")
	}
	dbTypeSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "db-type" {
			dbTypeSet = true
		}
	})
	databaseType = resolveDatabaseType(databaseType, dbTypeSet, os.Getenv("DATABASE_TYPE"))

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting registry server",
		"listen", listenAddr,
		"dbType", databaseType,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	gdb, err := db.Open(databaseType, databaseDSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(gdb); err != nil {
		logger.Error("failed to migrate schema", "error", err)
		os.Exit(1)
	}

	owners := owner.NewStore(gdb)
	vehicles := vehicle.NewStore(gdb)
	plates := plate.NewStore(gdb)
	ledger := ownership.NewStore(gdb)
	audits := audit.NewStore(gdb)
	notifications := notify.NewStore(gdb)

	notifyCfg := notify.ConfigFromEnv()
	var sender notify.Sender
	if notifyCfg.SMTPHost != "" {
		sender = notify.NewSMTPSender(notifyCfg)
		logger.Info("using SMTP notification delivery", "host", notifyCfg.SMTPHost)
	} else {
		sender = &notify.LogSender{Logger: logger}
		logger.Info("SMTP not configured, notifications logged only")
	}
	notifier := notify.NewNotifier(notifications, logger)

	reg := registration.NewService(gdb, vehicles, owners, plates, ledger,
		registration.WithAuditStore(audits),
		registration.WithLogger(logger),
	)
	coordinator := transfer.NewCoordinator(gdb, vehicles, owners, plates, ledger,
		transfer.WithNotifier(notifier),
		transfer.WithAuditStore(audits),
		transfer.WithLogger(logger),
	)
	queries := query.NewService(gdb, vehicles, owners, plates, ledger)

	worker := notify.NewWorker(notifications, sender, notifyCfg, logger)
	go worker.Run(ctx)

	retention := audit.NewRetentionWorker(audits, auditRetentionDays, logger)
	go retention.Run(ctx)

	srv := server.New(gdb, owners, vehicles, plates, ledger, reg, coordinator, queries, audits, logger)

	httpServer := &http.Server{
		Addr:    listenAddr,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("registry server ready", "listen", listenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("registry server stopped")
}

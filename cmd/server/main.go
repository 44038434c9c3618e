package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/liamcoop/riskscore/assessment"
	"github.com/liamcoop/riskscore/engine"
	"github.com/liamcoop/riskscore/internal/config"
	"github.com/liamcoop/riskscore/internal/logger"
	"github.com/liamcoop/riskscore/internal/metrics"
	"github.com/liamcoop/riskscore/policy"
	"github.com/liamcoop/riskscore/refdata"
)

func loadReferenceData(dir string) (*refdata.ReferenceData, error) {
	if dir == "" {
		return refdata.Shared()
	}
	return refdata.LoadDir(dir)
}

func loadPolicy(path string) (policy.Policy, error) {
	if path == "" {
		return policy.Default(), nil
	}
	return policy.LoadFile(path)
}

func openStore(databaseURL string) (assessment.Store, *sql.DB, error) {
	if databaseURL == "" {
		return assessment.NewInMemoryStore(), nil, nil
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return assessment.NewPostgresStore(db), db, nil
}

func main() {
	cfg := config.FromEnv()

	if err := logger.Setup(cfg.Log); err != nil {
		logger.Warn("logger setup degraded", "error", err)
	}

	ref, err := loadReferenceData(cfg.RefdataDir)
	if err != nil {
		logger.Fatal("failed to load reference data", "dir", cfg.RefdataDir, "error", err)
	}

	pol, err := loadPolicy(cfg.PolicyFile)
	if err != nil {
		logger.Fatal("failed to load scoring policy", "file", cfg.PolicyFile, "error", err)
	}

	eng, err := engine.New(ref, pol)
	if err != nil {
		logger.Fatal("failed to build risk engine", "error", err)
	}
	logger.Info("risk engine ready",
		"rules", len(eng.Rules()),
		"medium_from", pol.MediumFrom,
		"high_from", pol.HighFrom,
	)

	store, db, err := openStore(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to open assessment store", "error", err)
	}
	if db != nil {
		defer db.Close()
		logger.Info("using postgres assessment store")
	} else {
		logger.Info("DATABASE_URL not set, using in-memory assessment store")
	}

	server, err := NewServer(Deps{
		Engine:       eng,
		Store:        store,
		Metrics:      metrics.New(),
		Gatherer:     prometheus.DefaultGatherer,
		DB:           db,
		SlowRequest:  cfg.SlowRequest,
		RequestLimit: cfg.RequestLimit,
	})
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestLimit + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		logger.Info("server starting", "port", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	if err := logger.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "logger shutdown: %v\n", err)
	}

	logger.Info("server stopped")
}

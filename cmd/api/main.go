package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/dgraph-io/ristretto"
	"github.com/joho/godotenv"

	"github.com/harborbank/ledger/internal/audit"
	auditStore "github.com/harborbank/ledger/internal/audit/store"
	"github.com/harborbank/ledger/internal/balance"
	"github.com/harborbank/ledger/internal/config"
	ledgerHttp "github.com/harborbank/ledger/internal/http"
	"github.com/harborbank/ledger/internal/http/cachemon"
	txHandler "github.com/harborbank/ledger/internal/http/transaction"
	"github.com/harborbank/ledger/internal/transaction"
	txStore "github.com/harborbank/ledger/internal/transaction/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.Cache.NumCounters,
		MaxCost:     cfg.Cache.MaxCost,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		slog.Error("failed to build cache", "error", err)
		os.Exit(1)
	}

	transactionService := transaction.NewService(
		txStore.New(),
		audit.NewRecorder(auditStore.New()),
		balance.NewStub(),
		transaction.Config{
			MaxUpdateAttempts: cfg.Update.MaxAttempts,
			BackoffCeiling:    cfg.Update.BackoffCeiling,
			Cache:             cache,
		},
	)

	router := ledgerHttp.New(
		txHandler.NewHandler(transactionService),
		cachemon.NewHandler(cache),
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	slog.Info("starting server", "app", cfg.App.Name, "addr", server.Addr)

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

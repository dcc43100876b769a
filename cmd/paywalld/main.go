// Command paywalld serves the content paywall API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chainpress/paywall"
	"github.com/chainpress/paywall/catalog"
	"github.com/chainpress/paywall/config"
	"github.com/chainpress/paywall/logger"
	"github.com/chainpress/paywall/metrics"
	"github.com/chainpress/paywall/oracle"
	"github.com/chainpress/paywall/server"
	"github.com/chainpress/paywall/types"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewZapLogger(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ora, err := buildOracle(ctx, cfg)
	if err != nil {
		log.Error("failed to build chain oracle", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	var rec metrics.Recorder = metrics.NoopRecorder{}
	if cfg.Server.EnableMetrics {
		rec = metrics.NewPrometheusRecorder()
	}

	pw := paywall.New(
		catalog.NewSeeded(),
		ora,
		paywall.WithLogger(log),
		paywall.WithMetrics(rec),
		paywall.WithTimeout(cfg.VerifyTimeout),
		paywall.WithNetwork(types.Network(cfg.Network)),
	)

	srv := server.New(pw, log, cfg.Server.EnableMetrics)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("shutting down", nil)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", map[string]any{"error": err.Error()})
		}
	}
}

func buildOracle(ctx context.Context, cfg *config.ParsedConfig) (oracle.Oracle, error) {
	switch cfg.Oracle.Kind {
	case "stacks":
		return oracle.NewStacks(cfg.Oracle.StacksAPIURL, cfg.OracleTimeout), nil
	case "evm":
		currency := types.Currency(cfg.Oracle.EVMCurrency)
		if currency == "" {
			currency = types.CurrencySBTC
		}
		return oracle.NewEVM(ctx, cfg.Oracle.EVMRPCURL, currency)
	case "static":
		return oracle.NewStatic(), nil
	default:
		return nil, fmt.Errorf("unknown oracle kind: %s", cfg.Oracle.Kind)
	}
}

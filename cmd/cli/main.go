package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/docdb/internal/client/cli"
	"github.com/dmitrijs2005/docdb/internal/client/config"
	"github.com/dmitrijs2005/docdb/internal/logging"
	"github.com/dmitrijs2005/docdb/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.LoadConfig(config.Args())
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		if m, err = metrics.New(reg); err != nil {
			log.Fatalf("%v", err)
		}
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.Handler(reg), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "metrics server stopped", "addr", cfg.MetricsAddr, "error", err)
			}
		}()
		defer srv.Close()
		logger.Info(ctx, "serving metrics", "addr", cfg.MetricsAddr)
	}

	app, err := cli.NewApp(cfg, logger, m)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/citywatch/internal/buildinfo"
	"github.com/dmitrijs2005/citywatch/internal/client/backend"
	"github.com/dmitrijs2005/citywatch/internal/client/cli"
	"github.com/dmitrijs2005/citywatch/internal/client/config"
	"github.com/dmitrijs2005/citywatch/internal/client/metrics"
	"github.com/dmitrijs2005/citywatch/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit status: 0 after a normal REPL exit, 1 when
// configuration or storage startup fails.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {

	buildinfo.PrintBuildData(stdout)

	cfg, err := config.LoadConfig(args)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}

	logger := logging.New(stderr, "text", cfg.LogLevel)

	var rec backend.Recorder
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		rec = metrics.NewCollector(reg)

		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.NewMux(reg), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "metrics server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		logger.Info(ctx, "serving metrics", "addr", cfg.MetricsAddr)
	}

	app, err := cli.NewApp(ctx, cfg, logger, rec)
	if err != nil {
		logger.Error(ctx, "startup failed", "error", err)
		return 1
	}

	app.Run(ctx)
	return 0
}

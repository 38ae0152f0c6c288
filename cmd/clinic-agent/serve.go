package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	httpAdapter "github.com/Dima11235813/wellness-clinic-agent/internal/adapters/http"
	"github.com/Dima11235813/wellness-clinic-agent/internal/config"
	"github.com/Dima11235813/wellness-clinic-agent/internal/logging"
	"github.com/Dima11235813/wellness-clinic-agent/internal/metrics"
	"github.com/Dima11235813/wellness-clinic-agent/internal/runtime"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Starts the agent in server mode, exposing the thread API over HTTP with an SSE state stream and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Port = port
		}
		logger := logging.New(cfg.SlogLevel(), cfg.LogJSON)

		store, closeStore, err := buildStore(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		m := metrics.New(prometheus.DefaultRegisterer)
		svc, err := buildService(store, cfg, logger, runtime.WithLifecycleHooks(m.Hooks()))
		if err != nil {
			return err
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/", httpAdapter.NewHandler(svc, httpAdapter.WithLogger(logger)))

		srv := &http.Server{
			Addr:    ":" + cfg.Port,
			Handler: mux,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("server listening", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown incomplete, forcing close", "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("close server: %w", err)
				}
			}
			logger.Info("server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (overrides PORT)")
}

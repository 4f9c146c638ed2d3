package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/gatewall/gatewall-go/config"
	"github.com/gatewall/gatewall-go/inspect"
	"github.com/gatewall/gatewall-go/inspect/emit"
	"github.com/gatewall/gatewall-go/inspect/store"
	"github.com/gatewall/gatewall-go/server"
)

const version = "0.1.0"

var (
	configPath string
	listenAddr string
)

var rootCmd = &cobra.Command{
	Use:   "gatewall",
	Short: "Gatewall - request inspection gateway for submission endpoints",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if listenAddr != "" {
			cfg.Listen = listenAddr
		}

		emitter, closeLog, err := buildEmitter(cfg.Log)
		if err != nil {
			return err
		}
		defer closeLog()

		observers := []inspect.Observer{emit.NewDecisionObserver(emitter)}

		auditStore, err := buildAuditStore(cfg.Audit)
		if err != nil {
			return err
		}
		if auditStore != nil {
			defer auditStore.Close()
			auditOpts := []store.AuditOption{
				store.WithErrorHandler(func(err error) {
					fmt.Fprintf(os.Stderr, "[WARN] audit write failed: %v\n", err)
				}),
			}
			if cfg.Audit.RejectsOnly {
				auditOpts = append(auditOpts, store.WithRejectsOnly())
			}
			observers = append(observers, store.NewAuditObserver(auditStore, auditOpts...))
		}

		vopts := make([]inspect.Option, 0, 2)
		vopts = append(vopts, inspect.WithObserver(observers...))

		sopts := []server.ServerOption{
			server.WithMaxBodyBytes(cfg.MaxBodyBytes),
		}
		if cfg.Metrics.Enabled {
			registry := prometheus.NewRegistry()
			metrics := inspect.NewPrometheusMetrics(registry)
			vopts = append(vopts, inspect.WithMetrics(metrics))
			sopts = append(sopts, server.WithMetrics(metrics, registry))
		}
		if auditStore != nil {
			sopts = append(sopts, server.WithAuditStore(auditStore))
		}

		validator, err := inspect.New(vopts...)
		if err != nil {
			return err
		}
		srv, err := server.New(validator, sopts...)
		if err != nil {
			return err
		}

		fmt.Printf("[INFO] gatewall %s listening on %s\n", version, cfg.Listen)
		return srv.Run(cmd.Context(), cfg.Listen)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gatewall version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gatewall %s\n", version)
	},
}

// loadConfig resolves the effective configuration. An explicit --config path
// must exist; without the flag the built-in defaults are used.
func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func buildEmitter(cfg config.LogConfig) (emit.Emitter, func(), error) {
	var w io.Writer = os.Stdout
	closeLog := func() {}

	if cfg.Output != "" {
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log output: %w", err)
		}
		w = f
		closeLog = func() { _ = f.Close() }
	}

	return emit.NewLogEmitter(w, cfg.Format == "json"), closeLog, nil
}

func buildAuditStore(cfg config.AuditConfig) (store.Store, error) {
	switch cfg.Driver {
	case "", "none":
		return nil, nil
	case "memory":
		return store.NewMemStore(), nil
	case "sqlite":
		return store.NewSQLiteStore(cfg.DSN)
	case "mysql":
		return store.NewMySQLStore(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown audit driver: %s", cfg.Driver)
	}
}

func init() {
	serveCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to gatewall config file")
	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "Listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	// Graceful shutdown on SIGINT/SIGTERM via cobra's command context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

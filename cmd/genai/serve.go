package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"genai/internal/config"
	"genai/internal/engine"
	"genai/internal/httpapi"
	"genai/internal/loader"
	"genai/internal/manager"
)

func newServeCmd(opts *options) *cobra.Command {
	var (
		addr        string
		corsOrigins string
		corsMethods string
		corsHeaders string
	)
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the HTTP API",
		Example: "  genai serve --config genai.yaml --addr :8080",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if addr != "" {
				cfg.Addr = addr
			}
			if v := splitCSV(corsOrigins); len(v) > 0 {
				cfg.CORSEnabled = true
				cfg.CORSAllowedOrigins = v
			}
			if v := splitCSV(corsMethods); len(v) > 0 {
				cfg.CORSAllowedMethods = v
			}
			if v := splitCSV(corsHeaders); len(v) > 0 {
				cfg.CORSAllowedHeaders = v
			}

			e, err := loader.Load(cfg.Model)
			if err != nil {
				return err
			}
			mgr := manager.NewWithConfig(managerConfig(cfg, e))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			httpapi.SetBaseContext(ctx)
			httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
			httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSAllowedOrigins, cfg.CORSAllowedMethods, cfg.CORSAllowedHeaders)

			srv := &http.Server{
				Addr:              cfg.Addr,
				Handler:           httpapi.NewMux(mgr),
				ReadHeaderTimeout: 10 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				opts.log.Info().Str("addr", cfg.Addr).Str("backend", cfg.Model.Backend).
					Str("model", cfg.Model.ModelPath).Msg("listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				_ = mgr.Shutdown()
				return err
			case <-ctx.Done():
			}
			opts.log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				opts.log.Error().Err(err).Msg("graceful shutdown")
			}
			return mgr.Shutdown()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config addr)")
	cmd.Flags().StringVar(&corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins; enables CORS")
	cmd.Flags().StringVar(&corsMethods, "cors-methods", "", "Comma-separated allowed CORS methods")
	cmd.Flags().StringVar(&corsHeaders, "cors-headers", "", "Comma-separated allowed CORS headers")
	return cmd
}

func managerConfig(cfg config.Config, e *engine.Engine) manager.ManagerConfig {
	return manager.ManagerConfig{
		Engine:        e,
		MaxInflight:   cfg.MaxInflight,
		MaxQueueDepth: cfg.MaxQueueDepth,
		MaxWait:       time.Duration(cfg.MaxWaitSeconds) * time.Second,
		DrainTimeout:  time.Duration(cfg.DrainTimeoutSeconds) * time.Second,
	}
}

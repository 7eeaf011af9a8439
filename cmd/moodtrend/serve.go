package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/moodtrend/pkg/api"
)

const shutdownTimeout = 10 * time.Second

var addrFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the moodtrend HTTP API",
	Long: `Serve the JSON API used by dashboards: check-ins, insights, alerts, the
clinician review and PDF reports. Stops gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		addr := a.cfg.HTTPAddr
		if cmd.Flags().Changed("addr") {
			addr = addrFlag
		}

		srv := &http.Server{
			Addr:              addr,
			Handler:           api.NewRouter(a.svc, a.log),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			a.log.Info("http server listening", "addr", addr, "backend", a.cfg.ResolvedBackend())
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("http server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		a.log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	},
}

func initServeCmd() {
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address (default from config, :8080)")
}

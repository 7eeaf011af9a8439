package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/unowned-ai/moodtrend/pkg/checkin"
	"github.com/unowned-ai/moodtrend/pkg/config"
	"github.com/unowned-ai/moodtrend/pkg/logging"
	"github.com/unowned-ai/moodtrend/pkg/records"
)

// app bundles what a command needs after startup.
type app struct {
	cfg   config.Config
	log   *logging.Logger
	store records.Store
	svc   *checkin.Service
}

// openApp loads the configuration, applies opts and opens the store.
func openApp(cmd *cobra.Command, opts ...func(*config.Config)) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	log, err := logging.New(cfg.LogMode)
	if err != nil {
		return nil, err
	}
	store, err := records.Open(contextOf(cmd), cfg.StoreOptions())
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.ResolvedBackend(), err)
	}
	log.Debug("store opened", "backend", cfg.ResolvedBackend(), "dsn", cfg.DBPath)
	return &app{cfg: cfg, log: log, store: store, svc: checkin.NewService(store, log)}, nil
}

// quietUnlessSet lowers logging to warnings when --log-mode was not given.
func quietUnlessSet(cmd *cobra.Command) func(*config.Config) {
	return func(c *config.Config) {
		if !cmd.Flags().Changed("log-mode") {
			c.LogMode = "quiet"
		}
	}
}

func (a *app) Close() error {
	defer a.log.Sync()
	return a.store.Close()
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatTimestamp renders t in local time for terminal output.
func formatTimestamp(t time.Time) string {
	return t.Local().Format(time.RFC3339)
}

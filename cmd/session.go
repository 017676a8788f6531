package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/quizmind/internal/config"
	"github.com/abhisek/quizmind/internal/engine"
	"github.com/abhisek/quizmind/internal/logger"
	"github.com/abhisek/quizmind/internal/metrics"
	"github.com/abhisek/quizmind/internal/store"
)

// session is the per-command runtime: configuration, logger, store and
// an engine loaded from the store.
type session struct {
	cfg      *config.Config
	log      *zap.Logger
	st       *store.Store
	registry *prometheus.Registry
	engine   *engine.Engine
}

// openSession loads configuration, opens the store and builds the engine.
// opts supplies the command-specific collaborators; its Config, Store,
// Metrics and Logger fields are filled in here.
func openSession(cmd *cobra.Command, opts engine.Options) (*session, error) {
	ctx := cmd.Context()

	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	log.Debug("store opened", zap.String("path", dbPath))

	reg := prometheus.NewRegistry()
	opts.Config = cfg
	opts.Store = st
	opts.Metrics = metrics.New(reg)
	opts.Logger = log

	e := engine.New(opts)
	e.Load(ctx)

	return &session{cfg: cfg, log: log, st: st, registry: reg, engine: e}, nil
}

// Close flushes buffered analytics and closes the store.
func (s *session) Close(ctx context.Context) {
	if err := s.engine.Flush(ctx); err != nil {
		s.log.Warn("flush analytics", zap.Error(err))
	}
	if err := s.st.Close(); err != nil {
		s.log.Warn("close store", zap.Error(err))
	}
	_ = s.log.Sync()
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func printReport(cmd *cobra.Command, report string) {
	fmt.Fprintln(cmd.OutOrStdout(), report)
}

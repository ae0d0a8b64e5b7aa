package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"liquidityBook/internal/config"
	"liquidityBook/internal/engine"
	"liquidityBook/internal/model"
	"liquidityBook/internal/rangemap"
	"liquidityBook/internal/storage"
	"liquidityBook/internal/storage/postgres"
)

// openSession loads config and the snapshot and returns a ready engine.
func openSession(cmd *cobra.Command) (*engine.Engine, config.Config, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, cfg, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, cfg, nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, cfg, nil, err
	}

	rec, err := readSnapshot(cmd.Context(), cfg)
	if err != nil {
		return nil, cfg, logger, err
	}

	eng, err := engine.New(cfg.Range(), logger)
	if err != nil {
		return nil, cfg, logger, err
	}
	snap, err := eng.LoadRecord(rec)
	if err != nil {
		return nil, cfg, logger, err
	}

	logger.Debug("session open",
		zap.String("pool", snap.Pool()),
		zap.Int64("active_id", snap.ActiveID()),
		zap.Float64("active_price", snap.ActivePrice()),
		zap.Int("bins", snap.Len()),
	)
	return eng, cfg, logger, nil
}

func readSnapshot(ctx context.Context, cfg config.Config) (model.SnapshotRecord, error) {
	if cfg.Snapshot != "" {
		return storage.ReadSnapshotFile(cfg.Snapshot)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	store, err := postgres.NewStore(ctx, cfg.PGDSN)
	if err != nil {
		return model.SnapshotRecord{}, fmt.Errorf("connect postgres: %w", err)
	}
	defer store.Close()

	rec, ok, err := store.LoadSnapshot(ctx, cfg.Pool)
	if err != nil {
		return model.SnapshotRecord{}, fmt.Errorf("load snapshot %s: %w", cfg.Pool, err)
	}
	if !ok {
		return model.SnapshotRecord{}, fmt.Errorf("no stored snapshot for pool %q", cfg.Pool)
	}
	return rec, nil
}

// rangeOptions turns the override flags into mapper options.
func rangeOptions(flags *pflag.FlagSet) []rangemap.Option {
	var opts []rangemap.Option
	if flags.Changed("reference-price") {
		p, _ := flags.GetFloat64("reference-price")
		opts = append(opts, rangemap.WithReferencePrice(p))
	}
	if flags.Changed("bin-step") {
		bp, _ := flags.GetInt("bin-step")
		opts = append(opts, rangemap.WithBinStep(bp))
	}
	return opts
}

// planRequest builds the selection part of a plan request from flags.
func planRequest(flags *pflag.FlagSet) engine.PlanRequest {
	req := engine.PlanRequest{Options: rangeOptions(flags)}
	if flags.Changed("left-index") || flags.Changed("right-index") {
		left, _ := flags.GetInt("left-index")
		right, _ := flags.GetInt("right-index")
		req.Indices = &model.BinIndexSelection{Left: left, Right: right}
		return req
	}
	left, _ := flags.GetFloat64("left")
	right, _ := flags.GetFloat64("right")
	req.Selection = &model.Selection{LeftPercent: left, RightPercent: right}
	return req
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

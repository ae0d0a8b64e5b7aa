package main

import (
	"context"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityBook/internal/chain"
	"liquidityBook/internal/config"
	"liquidityBook/internal/lbpair"
	"liquidityBook/internal/model"
	"liquidityBook/internal/storage"
	"liquidityBook/internal/storage/postgres"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadFetch(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !common.IsHexAddress(cfg.Pair) {
		return fmt.Errorf("invalid pair address %q", cfg.Pair)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	chainID, err := chainClient.GetChainID(ctx)
	if err != nil {
		return fmt.Errorf("chain id: %w", err)
	}
	head, err := chainClient.LatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("latest block: %w", err)
	}

	logger.Info("snapshot start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("chain_id", chainID.String()),
		zap.Uint64("block", head),
		zap.String("pair", cfg.Pair),
		zap.Int64("radius", cfg.Radius),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Int("concurrency", cfg.Concurrency),
	)

	fetcher := lbpair.NewFetcher(chainClient, lbpair.NewTokenMetaCache(), lbpair.FetchConfig{
		Pool:         cfg.Pool,
		Radius:       cfg.Radius,
		BatchSize:    cfg.BatchSize,
		Concurrency:  cfg.Concurrency,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		QuoteUSD:     cfg.QuoteUSD,
	}, logger)

	rec, err := fetcher.Fetch(ctx, common.HexToAddress(cfg.Pair), new(big.Int).SetUint64(head))
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}
	if _, err := model.NewSnapshot(rec); err != nil {
		return fmt.Errorf("fetched snapshot: %w", err)
	}

	if cfg.Out != "" {
		if err := storage.WriteSnapshotFile(cfg.Out, rec); err != nil {
			return err
		}
		logger.Info("snapshot written", zap.String("out", cfg.Out))
	}

	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()

		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		if err := store.UpsertSnapshot(ctx, rec); err != nil {
			return err
		}
		logger.Info("snapshot stored", zap.String("pool", rec.Pool), zap.Int("bins", len(rec.Bins)))
	}

	return nil
}

package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"liquidityBook/internal/binmath"
	"liquidityBook/internal/rangemap"
)

func main() {
	root := &cobra.Command{
		Use:          "lbengine",
		Short:        "Liquidity Book bin pricing and distribution engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch a bin snapshot from an LBPair contract",
		RunE:  runSnapshot,
	}

	snapshotCmd.Flags().String("rpc", "", "RPC URL")
	snapshotCmd.Flags().String("pair", "", "LBPair contract address")
	snapshotCmd.Flags().String("pool", "", "pool name (default SYMBOLX/SYMBOLY)")
	snapshotCmd.Flags().Int64("radius", 100, "bins to fetch on each side of the active bin")
	snapshotCmd.Flags().Float64("quote-usd", 1, "USD value of one token Y")
	snapshotCmd.Flags().Int("batch-size", 25, "bins per fetch batch")
	snapshotCmd.Flags().Int("concurrency", 4, "concurrent fetch batches")
	snapshotCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	snapshotCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	snapshotCmd.Flags().String("out", "./data/snapshot.json", "snapshot file (.json, .yaml, .yml), empty to skip")
	snapshotCmd.Flags().String("pg-dsn", "", "Postgres DSN, stores the snapshot when set")
	snapshotCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(snapshotCmd)

	rangeCmd := &cobra.Command{
		Use:   "range",
		Short: "Map a selection to a bin and price range",
		RunE:  runRange,
	}
	addEngineFlags(rangeCmd.Flags())
	addSelectionFlags(rangeCmd.Flags())

	root.AddCommand(rangeCmd)

	distributeCmd := &cobra.Command{
		Use:   "distribute",
		Short: "Compute the per-bin distribution of a deposit",
		RunE:  runDistribute,
	}
	addEngineFlags(distributeCmd.Flags())
	addSelectionFlags(distributeCmd.Flags())
	distributeCmd.Flags().String("strategy", "spot", "distribution strategy (spot, curve, bid-ask)")
	distributeCmd.Flags().Float64("amount-x", 0, "token X amount")
	distributeCmd.Flags().Float64("amount-y", 0, "token Y amount")
	distributeCmd.Flags().String("out", "", "output JSONL path, empty for stdout")

	root.AddCommand(distributeCmd)

	autofillCmd := &cobra.Command{
		Use:   "autofill",
		Short: "Suggest the counter-token amount",
		RunE:  runAutofill,
	}
	addEngineFlags(autofillCmd.Flags())
	autofillCmd.Flags().String("amount", "", "entered token amount")
	autofillCmd.Flags().String("strategy", "spot", "distribution strategy (spot, curve, bid-ask)")
	autofillCmd.Flags().String("direction", "x-to-y", "conversion direction (x-to-y, y-to-x)")
	autofillCmd.Flags().Float64("price", 0, "active price override, skips loading a snapshot")

	root.AddCommand(autofillCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addEngineFlags(flags *pflag.FlagSet) {
	flags.String("snapshot", "", "snapshot file (.json, .yaml, .yml)")
	flags.String("pg-dsn", "", "Postgres DSN, used when no snapshot file is given")
	flags.String("pool", "", "pool name to load from Postgres")
	flags.Float64("display-window-span", rangemap.DefaultDisplayWindowSpan, "price span of the full 0-100% selection axis")
	flags.Int("max-bin-count", rangemap.DefaultMaxBinCount, "maximum bins per range")
	flags.Int64("max-bin-offset", binmath.DefaultMaxOffset, "bin window around the active bin")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
}

func addSelectionFlags(flags *pflag.FlagSet) {
	flags.Float64("left", 45, "selection left edge, percent of the display axis")
	flags.Float64("right", 55, "selection right edge, percent of the display axis")
	flags.Int("left-index", -1, "left bin index into the snapshot, overrides --left/--right")
	flags.Int("right-index", -1, "right bin index into the snapshot")
	flags.Float64("reference-price", 0, "anchor price, defaults to the active bin price")
	flags.Int("bin-step", 0, "bin step override in basis points")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

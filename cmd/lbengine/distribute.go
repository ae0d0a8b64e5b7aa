package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityBook/internal/model"
	"liquidityBook/internal/storage"
)

func runDistribute(cmd *cobra.Command, _ []string) error {
	eng, cfg, logger, err := openSession(cmd)
	if logger != nil {
		defer logger.Sync()
	}
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	strategyName, _ := flags.GetString("strategy")
	strategy, err := model.ParseStrategy(strategyName)
	if err != nil {
		return err
	}
	amountX, _ := flags.GetFloat64("amount-x")
	amountY, _ := flags.GetFloat64("amount-y")

	req := planRequest(flags)
	req.Strategy = strategy
	req.Amounts = model.Amounts{X: amountX, Y: amountY}

	plan, err := eng.Plan(req)
	if err != nil {
		return err
	}
	if len(plan.Allocations) == 0 {
		logger.Warn("no distribution: both amounts are zero")
		return nil
	}

	var sink storage.DistributionSink = storage.NewJsonlStorage(cfg.Out)
	if err := sink.PutDistribution(plan.Records(time.Now())); err != nil {
		return err
	}

	logger.Info("distribution computed",
		zap.String("pool", plan.Pool),
		zap.Stringer("strategy", plan.Strategy),
		zap.Int64("lower_bin_id", plan.Range.LowerBinID),
		zap.Int64("upper_bin_id", plan.Range.UpperBinID),
		zap.Int("bins", plan.Summary.Bins),
		zap.Int("funded_bins", plan.Summary.FundedBins),
		zap.Float64("total_x", plan.Summary.TotalX),
		zap.Float64("total_y", plan.Summary.TotalY),
		zap.Int64("peak_bin_id", plan.Summary.PeakBinID),
		zap.String("out", cfg.Out),
	)
	return nil
}

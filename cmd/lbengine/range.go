package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"liquidityBook/internal/model"
)

func runRange(cmd *cobra.Command, _ []string) error {
	eng, _, logger, err := openSession(cmd)
	if logger != nil {
		defer logger.Sync()
	}
	if err != nil {
		return err
	}

	req := planRequest(cmd.Flags())
	var res model.RangeResult
	if req.Indices != nil {
		res, err = eng.MapBinIndices(*req.Indices, req.Options...)
	} else {
		res, err = eng.MapSelection(*req.Selection, req.Options...)
	}
	if err != nil {
		return err
	}

	logger.Info("range mapped",
		zap.Int("bin_count", res.BinCount),
		zap.Int64("center_offset", res.CenterOffset),
		zap.Float64("min_price", res.MinPrice),
		zap.Float64("max_price", res.MaxPrice),
		zap.Bool("clamped", res.Clamped),
	)
	return printJSON(res)
}

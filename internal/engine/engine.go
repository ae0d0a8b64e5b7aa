// Package engine ties bin math, range mapping, distribution and auto-fill to
// the snapshot of the pool currently on screen.
package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"liquidityBook/internal/autofill"
	"liquidityBook/internal/binmath"
	"liquidityBook/internal/distribution"
	"liquidityBook/internal/model"
	"liquidityBook/internal/rangemap"
)

// ErrNoSnapshot is returned when an operation runs before Load.
var ErrNoSnapshot = errors.New("no snapshot loaded")

// Engine is a pool view session. Every entry point reads the current snapshot
// once and keeps no derived state, so a concurrent Load never mixes pools
// within a call.
type Engine struct {
	conv   *binmath.Converter
	mapper *rangemap.Mapper
	logger *zap.Logger
	snap   atomic.Pointer[model.Snapshot]
}

// New builds an Engine without a snapshot.
func New(cfg rangemap.Config, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mapper, err := rangemap.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Engine{
		conv:   binmath.NewConverter(cfg.MaxOffset, logger),
		mapper: mapper,
		logger: logger,
	}, nil
}

// Load replaces the current snapshot, e.g. on a pool switch or refresh.
func (e *Engine) Load(snap *model.Snapshot) error {
	if snap == nil || snap.Len() == 0 {
		return model.ErrEmptySnapshot
	}
	prev := e.snap.Swap(snap)
	fields := []zap.Field{
		zap.String("pool", snap.Pool()),
		zap.Int64("active_id", snap.ActiveID()),
		zap.Int("bin_step", snap.BinStep()),
		zap.Int("bins", snap.Len()),
	}
	if prev != nil {
		fields = append(fields, zap.String("previous_pool", prev.Pool()))
	}
	e.logger.Debug("snapshot loaded", fields...)
	return nil
}

// LoadRecord validates rec and loads it.
func (e *Engine) LoadRecord(rec model.SnapshotRecord) (*model.Snapshot, error) {
	snap, err := model.NewSnapshot(rec)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", rec.Pool, err)
	}
	if err := e.Load(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// Snapshot returns the current snapshot.
func (e *Engine) Snapshot() (*model.Snapshot, error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Config returns the range mapping configuration.
func (e *Engine) Config() rangemap.Config {
	return e.mapper.Config()
}

// PriceAt returns the price of binID relative to the current active bin.
func (e *Engine) PriceAt(binID int64) (float64, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return 0, err
	}
	return e.conv.PriceAt(binID, snap.ActiveID(), snap.ActivePrice(), snap.BinStep())
}

// BinIDAt returns the bin id holding price relative to the current active bin.
func (e *Engine) BinIDAt(price float64) (int64, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return 0, err
	}
	return e.conv.BinIDAt(price, snap.ActiveID(), snap.ActivePrice(), snap.BinStep())
}

// MapSelection maps a percentage selection on the current snapshot.
func (e *Engine) MapSelection(sel model.Selection, opts ...rangemap.Option) (model.RangeResult, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return model.RangeResult{}, err
	}
	return e.mapper.MapSelection(sel, snap, opts...)
}

// MapBinIndices maps a bin index pair on the current snapshot.
func (e *Engine) MapBinIndices(sel model.BinIndexSelection, opts ...rangemap.Option) (model.RangeResult, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return model.RangeResult{}, err
	}
	return e.mapper.MapBinIndices(sel, snap, opts...)
}

// ComputeDistribution weights the bins of rng on the current snapshot.
func (e *Engine) ComputeDistribution(strategy model.Strategy, amounts model.Amounts, rng model.RangeResult) ([]model.WeightedBin, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	return distribution.Compute(strategy, amounts, rng, snap), nil
}

// AutoFill suggests the counter amount at the current active price.
func (e *Engine) AutoFill(amount string, strategy model.Strategy, direction model.Direction) (string, bool) {
	snap := e.snap.Load()
	if snap == nil {
		return "", false
	}
	return autofill.CounterAmount(amount, snap.ActivePrice(), strategy, direction)
}

// PlanRequest describes one distribution plan. Exactly one of Selection and
// Indices should be set; Indices wins when both are.
type PlanRequest struct {
	Selection *model.Selection
	Indices   *model.BinIndexSelection
	Strategy  model.Strategy
	Amounts   model.Amounts
	Options   []rangemap.Option
}

// Plan is a mapped range with its per-bin allocation.
type Plan struct {
	Pool        string
	ActiveID    int64
	Strategy    model.Strategy
	Range       model.RangeResult
	Allocations []model.BinAllocation
	Summary     distribution.Summary
}

// Plan maps the request selection, computes weights and allocates the amounts,
// all against one snapshot.
func (e *Engine) Plan(req PlanRequest) (Plan, error) {
	snap, err := e.Snapshot()
	if err != nil {
		return Plan{}, err
	}

	var rng model.RangeResult
	switch {
	case req.Indices != nil:
		rng, err = e.mapper.MapBinIndices(*req.Indices, snap, req.Options...)
	case req.Selection != nil:
		rng, err = e.mapper.MapSelection(*req.Selection, snap, req.Options...)
	default:
		return Plan{}, fmt.Errorf("%w: no selection", rangemap.ErrInvalidSelection)
	}
	if err != nil {
		return Plan{}, err
	}

	weights := distribution.Compute(req.Strategy, req.Amounts, rng, snap)
	allocs := distribution.Allocate(weights, req.Amounts, snap.ActiveID())
	plan := Plan{
		Pool:        snap.Pool(),
		ActiveID:    snap.ActiveID(),
		Strategy:    req.Strategy,
		Range:       rng,
		Allocations: allocs,
		Summary:     distribution.Summarize(allocs),
	}
	e.logger.Debug("plan computed",
		zap.String("pool", plan.Pool),
		zap.Stringer("strategy", plan.Strategy),
		zap.Int64("lower_bin_id", rng.LowerBinID),
		zap.Int64("upper_bin_id", rng.UpperBinID),
		zap.Int("funded_bins", plan.Summary.FundedBins),
	)
	return plan, nil
}

// Records flattens the plan into one record per bin.
func (p Plan) Records(generatedAt time.Time) []model.DistributionRecord {
	ts := generatedAt.UTC().Format(time.RFC3339)
	out := make([]model.DistributionRecord, 0, len(p.Allocations))
	for _, a := range p.Allocations {
		out = append(out, model.DistributionRecord{
			Pool:        p.Pool,
			Strategy:    p.Strategy.String(),
			ActiveID:    p.ActiveID,
			BinID:       a.BinID,
			Price:       a.Price,
			Weight:      a.Weight,
			AmountX:     a.AmountX,
			AmountY:     a.AmountY,
			GeneratedAt: ts,
		})
	}
	return out
}

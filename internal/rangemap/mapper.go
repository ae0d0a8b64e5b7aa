package rangemap

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"liquidityBook/internal/binmath"
	"liquidityBook/internal/model"
)

const (
	// DefaultDisplayWindowSpan is the total price span of the visible bin axis
	// as a fraction of the reference price (±30% around the active bin).
	DefaultDisplayWindowSpan = 0.6

	// DefaultMaxBinCount caps the number of bins a selection can cover.
	DefaultMaxBinCount = 200
)

var (
	// ErrInvalidSelection is returned for NaN or infinite selection bounds.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid range mapper config")
)

// Config controls how a selection on the display axis maps to bins.
type Config struct {
	// DisplayWindowSpan is the price span the full 0-100% axis represents.
	// A selection of s percent maps to a price ratio of 1 + s/100*span.
	DisplayWindowSpan float64
	MaxBinCount       int
	// MaxOffset bounds every bin id to activeID ± MaxOffset.
	MaxOffset int64
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		DisplayWindowSpan: DefaultDisplayWindowSpan,
		MaxBinCount:       DefaultMaxBinCount,
		MaxOffset:         binmath.DefaultMaxOffset,
	}
}

// Validate checks the config values.
func (c Config) Validate() error {
	if !(c.DisplayWindowSpan > 0) || math.IsInf(c.DisplayWindowSpan, 0) {
		return fmt.Errorf("%w: display window span must be positive", ErrInvalidConfig)
	}
	if c.MaxBinCount < 1 {
		return fmt.Errorf("%w: max bin count must be >= 1", ErrInvalidConfig)
	}
	if c.MaxOffset < 1 {
		return fmt.Errorf("%w: max offset must be >= 1", ErrInvalidConfig)
	}
	return nil
}

// Option overrides snapshot defaults for a single mapping call.
type Option func(*options)

type options struct {
	referencePrice float64
	binStep        int
}

// WithReferencePrice anchors the range at p instead of the active bin price.
func WithReferencePrice(p float64) Option {
	return func(o *options) { o.referencePrice = p }
}

// WithBinStep overrides the snapshot bin step, in basis points.
func WithBinStep(bp int) Option {
	return func(o *options) { o.binStep = bp }
}

// Mapper turns selections into price ranges using only a loaded snapshot.
// It keeps no per-call state and is safe for concurrent use.
type Mapper struct {
	cfg    Config
	logger *zap.Logger
}

// New builds a Mapper.
func New(cfg Config, logger *zap.Logger) (*Mapper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mapper{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Config returns the mapper configuration.
func (m *Mapper) Config() Config {
	return m.cfg
}

// MapSelection maps a percentage selection on the display axis to a bin range.
// The bin count comes from the selection span; the centre comes from the
// selection midpoint's position in the snapshot, so off-centre selections
// yield asymmetric ranges.
func (m *Mapper) MapSelection(sel model.Selection, snap *model.Snapshot, opts ...Option) (model.RangeResult, error) {
	if snap == nil || snap.Len() == 0 {
		return model.RangeResult{}, model.ErrEmptySnapshot
	}
	ax, err := m.resolve(snap, opts)
	if err != nil {
		return model.RangeResult{}, err
	}
	sel, err = normalizeSelection(sel)
	if err != nil {
		return model.RangeResult{}, err
	}

	priceRatio := 1 + (sel.Span()/100)*m.cfg.DisplayWindowSpan
	binCount := clampCount(int(math.Round(math.Log(priceRatio)/math.Log(ax.mult))), m.cfg.MaxBinCount)

	midIndex := int(math.Round(sel.Midpoint() / 100 * float64(snap.Len()-1)))
	centerOffset := snap.BinAt(midIndex).ID - snap.ActiveID()

	half := int64(binCount / 2)
	return m.build(snap.ActiveID(), centerOffset, centerOffset-half, centerOffset+half, binCount, ax)
}

// MapBinIndices maps an inclusive pair of snapshot array indexes to a bin
// range. Indexes outside the snapshot are clamped to it.
func (m *Mapper) MapBinIndices(sel model.BinIndexSelection, snap *model.Snapshot, opts ...Option) (model.RangeResult, error) {
	if snap == nil || snap.Len() == 0 {
		return model.RangeResult{}, model.ErrEmptySnapshot
	}
	ax, err := m.resolve(snap, opts)
	if err != nil {
		return model.RangeResult{}, err
	}

	left, right := clampIndex(sel.Left, snap.Len()), clampIndex(sel.Right, snap.Len())
	if left > right {
		left, right = right, left
	}

	activeID := snap.ActiveID()
	lower := snap.BinAt(left).ID - activeID
	upper := snap.BinAt(right).ID - activeID
	if span := upper - lower + 1; span > int64(m.cfg.MaxBinCount) {
		mid := lower + (upper-lower)/2
		lower = mid - int64(m.cfg.MaxBinCount-1)/2
		upper = lower + int64(m.cfg.MaxBinCount) - 1
	}
	binCount := clampCount(int(upper-lower+1), m.cfg.MaxBinCount)
	center := int64(math.Round(float64(lower+upper) / 2))

	return m.build(activeID, center, lower, upper, binCount, ax)
}

// axis is the price axis a single mapping call works on.
type axis struct {
	ref  float64
	step int
	mult float64
}

func (m *Mapper) resolve(snap *model.Snapshot, opts []Option) (axis, error) {
	o := options{referencePrice: snap.ActivePrice(), binStep: snap.BinStep()}
	for _, opt := range opts {
		opt(&o)
	}
	mult, err := binmath.StepMultiplier(o.binStep)
	if err != nil {
		return axis{}, err
	}
	if math.IsNaN(o.referencePrice) || math.IsInf(o.referencePrice, 0) || o.referencePrice <= 0 {
		return axis{}, fmt.Errorf("reference price: %w: %v", binmath.ErrInvalidPrice, o.referencePrice)
	}
	return axis{ref: o.referencePrice, step: o.binStep, mult: mult}, nil
}

// build derives prices from the reference for the given offsets (relative to
// the active bin). A window reaching past activeID ± MaxOffset is shifted back
// inside it whole, and trimmed only when it is wider than the window itself.
func (m *Mapper) build(activeID, center, lower, upper int64, binCount int, ax axis) (model.RangeResult, error) {
	lo, hi, mid, clamped := fitWindow(lower, upper, center, m.cfg.MaxOffset)
	if covered := int(hi - lo + 1); binCount > covered {
		binCount = covered
	}
	if clamped {
		m.logger.Debug("range shifted into bin window",
			zap.Int64("active_id", activeID),
			zap.Int64("center_offset", center),
			zap.Int64("lower_offset", lower),
			zap.Int64("upper_offset", upper),
			zap.Int64("max_offset", m.cfg.MaxOffset),
		)
	}

	ref, mult := ax.ref, ax.mult
	var minPrice, maxPrice float64
	if lo == hi {
		// A single bin spans half a step on each side of its price.
		minPrice = ref * math.Pow(mult, float64(lo)-0.5)
		maxPrice = ref * math.Pow(mult, float64(lo)+0.5)
	} else {
		minPrice = ref * math.Pow(mult, float64(lo))
		maxPrice = ref * math.Pow(mult, float64(hi))
	}

	return model.RangeResult{
		PriceRange:     model.PriceRange{MinPrice: minPrice, MaxPrice: maxPrice},
		BinCount:       binCount,
		CenterOffset:   mid,
		LowerBinID:     activeID + lo,
		UpperBinID:     activeID + hi,
		ReferencePrice: ref,
		BinStep:        ax.step,
		PercentageRange: model.PercentageRange{
			Min: (minPrice/ref - 1) * 100,
			Max: (maxPrice/ref - 1) * 100,
		},
		Clamped: clamped,
	}, nil
}

// fitWindow moves the offsets [lower, upper] into [-limit, limit] keeping
// their width where possible. The centre moves with the window and is then
// kept inside it.
func fitWindow(lower, upper, center, limit int64) (int64, int64, int64, bool) {
	clamped := false
	if upper-lower > 2*limit {
		lower, upper = -limit, limit
		clamped = true
	}
	if upper > limit {
		d := upper - limit
		lower, upper, center = lower-d, upper-d, center-d
		clamped = true
	}
	if lower < -limit {
		d := -limit - lower
		lower, upper, center = lower+d, upper+d, center+d
		clamped = true
	}
	if center < lower {
		center, clamped = lower, true
	}
	if center > upper {
		center, clamped = upper, true
	}
	return lower, upper, center, clamped
}

func normalizeSelection(sel model.Selection) (model.Selection, error) {
	for _, v := range []float64{sel.LeftPercent, sel.RightPercent} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return sel, fmt.Errorf("%w: %v", ErrInvalidSelection, v)
		}
	}
	left := math.Min(math.Max(sel.LeftPercent, 0), 100)
	right := math.Min(math.Max(sel.RightPercent, 0), 100)
	if left > right {
		left, right = right, left
	}
	return model.Selection{LeftPercent: left, RightPercent: right}, nil
}

func clampCount(count, max int) int {
	if count < 1 {
		return 1
	}
	if count > max {
		return max
	}
	return count
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

package binmath

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

const (
	// BasisPointMax is the bin step denominator.
	BasisPointMax = 10000

	// DefaultMaxOffset bounds bin ids to activeID ± DefaultMaxOffset.
	DefaultMaxOffset int64 = 200
)

var (
	// ErrInvalidStep is returned for a bin step <= 0.
	ErrInvalidStep = errors.New("invalid bin step")

	// ErrInvalidPrice is returned for non-positive or non-finite prices.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrOutOfBoundsBin marks a bin id clamped to the engine window. It is a
	// diagnostic, never returned from a conversion.
	ErrOutOfBoundsBin = errors.New("bin id out of bounds")
)

// OutOfBoundsBin describes a clamped bin id.
type OutOfBoundsBin struct {
	Requested int64
	Clamped   int64
	ActiveID  int64
	MaxOffset int64
}

func (o OutOfBoundsBin) Error() string {
	return fmt.Sprintf("%s: requested %d, clamped to %d (active %d ± %d)",
		ErrOutOfBoundsBin, o.Requested, o.Clamped, o.ActiveID, o.MaxOffset)
}

func (o OutOfBoundsBin) Unwrap() error {
	return ErrOutOfBoundsBin
}

// StepMultiplier returns 1 + binStep/10000.
func StepMultiplier(binStepBp int) (float64, error) {
	if binStepBp <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidStep, binStepBp)
	}
	return 1 + float64(binStepBp)/BasisPointMax, nil
}

// PriceAt returns the price of binID given the active bin reference, using the
// default clamp window.
func PriceAt(binID, activeID int64, activePrice float64, binStepBp int) (float64, error) {
	return defaultConverter.PriceAt(binID, activeID, activePrice, binStepBp)
}

// BinIDAt returns the bin id holding price given the active bin reference,
// using the default clamp window.
func BinIDAt(price float64, activeID int64, activePrice float64, binStepBp int) (int64, error) {
	return defaultConverter.BinIDAt(price, activeID, activePrice, binStepBp)
}

// ClampBinID bounds id to activeID ± maxOffset. maxOffset <= 0 disables clamping.
func ClampBinID(id, activeID, maxOffset int64) (int64, bool) {
	if maxOffset <= 0 {
		return id, false
	}
	switch {
	case id > activeID+maxOffset:
		return activeID + maxOffset, true
	case id < activeID-maxOffset:
		return activeID - maxOffset, true
	default:
		return id, false
	}
}

var defaultConverter = &Converter{MaxOffset: DefaultMaxOffset}

// Converter performs price/bin conversions bounded to a bin window around the
// active bin. It holds no mutable state and is safe for concurrent use.
type Converter struct {
	MaxOffset int64
	Logger    *zap.Logger
}

// NewConverter builds a Converter. maxOffset <= 0 falls back to DefaultMaxOffset.
func NewConverter(maxOffset int64, logger *zap.Logger) *Converter {
	if maxOffset <= 0 {
		maxOffset = DefaultMaxOffset
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{MaxOffset: maxOffset, Logger: logger}
}

// PriceAt computes activePrice * (1 + step)^(binID - activeID). The exponent is
// applied with math.Pow for both signs so negative offsets are not derived from
// a separately rounded inverse.
func (c *Converter) PriceAt(binID, activeID int64, activePrice float64, binStepBp int) (float64, error) {
	mult, err := StepMultiplier(binStepBp)
	if err != nil {
		return 0, err
	}
	if err := validatePrice(activePrice); err != nil {
		return 0, fmt.Errorf("active price: %w", err)
	}

	id := c.clamp(binID, activeID)
	return activePrice * math.Pow(mult, float64(id-activeID)), nil
}

// BinIDAt computes activeID + round(ln(price/activePrice) / ln(1 + step)),
// rounding half away from zero.
func (c *Converter) BinIDAt(price float64, activeID int64, activePrice float64, binStepBp int) (int64, error) {
	mult, err := StepMultiplier(binStepBp)
	if err != nil {
		return 0, err
	}
	if err := validatePrice(price); err != nil {
		return 0, err
	}
	if err := validatePrice(activePrice); err != nil {
		return 0, fmt.Errorf("active price: %w", err)
	}

	offset := math.Round(math.Log(price/activePrice) / math.Log(mult))
	// Bound before converting so huge ratios cannot overflow int64.
	limit := float64(c.maxOffset())
	if offset > limit {
		offset = limit + 1
	} else if offset < -limit {
		offset = -limit - 1
	}
	return c.clamp(activeID+int64(offset), activeID), nil
}

func (c *Converter) maxOffset() int64 {
	if c == nil || c.MaxOffset <= 0 {
		return DefaultMaxOffset
	}
	return c.MaxOffset
}

func (c *Converter) clamp(id, activeID int64) int64 {
	clamped, ok := ClampBinID(id, activeID, c.maxOffset())
	if ok && c != nil && c.Logger != nil {
		c.Logger.Debug("bin id clamped", zap.Error(OutOfBoundsBin{
			Requested: id,
			Clamped:   clamped,
			ActiveID:  activeID,
			MaxOffset: c.maxOffset(),
		}))
	}
	return clamped
}

func validatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidPrice, price)
	}
	return nil
}

package model

import (
	"fmt"
	"math"
)

// SnapshotRecord is the serialisable form of a bin snapshot.
type SnapshotRecord struct {
	Pool        string    `json:"pool" yaml:"pool"`
	PairAddress string    `json:"pair_address,omitempty" yaml:"pair_address,omitempty"`
	TokenX      TokenMeta `json:"token_x" yaml:"token_x"`
	TokenY      TokenMeta `json:"token_y" yaml:"token_y"`
	ActiveID    int64     `json:"active_id" yaml:"active_id"`
	BinStep     int       `json:"bin_step" yaml:"bin_step"`
	Block       uint64    `json:"block,omitempty" yaml:"block,omitempty"`
	FetchedAt   string    `json:"fetched_at,omitempty" yaml:"fetched_at,omitempty"`
	Bins        []Bin     `json:"bins" yaml:"bins"`
}

// Snapshot is a validated, read-only set of bins around the active bin.
// Lookups by id or index are O(1).
type Snapshot struct {
	rec         SnapshotRecord
	activeIndex int
	indexByID   map[int64]int
}

// NewSnapshot validates a record and indexes it. The bins slice is copied.
func NewSnapshot(rec SnapshotRecord) (*Snapshot, error) {
	if len(rec.Bins) == 0 {
		return nil, ErrEmptySnapshot
	}
	if rec.BinStep <= 0 {
		return nil, fmt.Errorf("%w: bin step %d", ErrInvalidSnapshot, rec.BinStep)
	}

	bins := make([]Bin, len(rec.Bins))
	copy(bins, rec.Bins)

	indexByID := make(map[int64]int, len(bins))
	for i, bin := range bins {
		if !(bin.Price > 0) || math.IsInf(bin.Price, 0) {
			return nil, fmt.Errorf("%w: bin %d has price %v", ErrInvalidSnapshot, bin.ID, bin.Price)
		}
		if !nonNegative(bin.ReserveX) || !nonNegative(bin.ReserveY) || !nonNegative(bin.LiquidityUSD) {
			return nil, fmt.Errorf("%w: bin %d has negative or non-finite reserves", ErrInvalidSnapshot, bin.ID)
		}
		if i > 0 {
			prev := bins[i-1]
			if bin.ID <= prev.ID {
				return nil, fmt.Errorf("%w: bin ids not increasing at %d", ErrInvalidSnapshot, bin.ID)
			}
			if bin.Price <= prev.Price {
				return nil, fmt.Errorf("%w: bin prices not increasing at %d", ErrInvalidSnapshot, bin.ID)
			}
		}
		indexByID[bin.ID] = i
	}

	activeIndex, ok := indexByID[rec.ActiveID]
	if !ok {
		return nil, fmt.Errorf("%w: active bin %d not in snapshot", ErrInvalidSnapshot, rec.ActiveID)
	}

	rec.Bins = bins
	return &Snapshot{
		rec:         rec,
		activeIndex: activeIndex,
		indexByID:   indexByID,
	}, nil
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

func (s *Snapshot) Pool() string        { return s.rec.Pool }
func (s *Snapshot) PairAddress() string { return s.rec.PairAddress }
func (s *Snapshot) ActiveID() int64     { return s.rec.ActiveID }
func (s *Snapshot) BinStep() int        { return s.rec.BinStep }
func (s *Snapshot) Len() int            { return len(s.rec.Bins) }
func (s *Snapshot) ActiveIndex() int    { return s.activeIndex }

// ActiveBin returns the bin holding the current market price.
func (s *Snapshot) ActiveBin() Bin {
	return s.rec.Bins[s.activeIndex]
}

// ActivePrice is the reference price all offsets are computed from.
func (s *Snapshot) ActivePrice() float64 {
	return s.rec.Bins[s.activeIndex].Price
}

// BinAt returns the bin at array index i.
func (s *Snapshot) BinAt(i int) Bin {
	return s.rec.Bins[i]
}

// IndexOf returns the array index of a bin id.
func (s *Snapshot) IndexOf(id int64) (int, bool) {
	i, ok := s.indexByID[id]
	return i, ok
}

// Bins exposes the ordered bins. Callers must not modify the slice.
func (s *Snapshot) Bins() []Bin {
	return s.rec.Bins
}

// Record returns a copy suitable for persistence.
func (s *Snapshot) Record() SnapshotRecord {
	rec := s.rec
	rec.Bins = make([]Bin, len(s.rec.Bins))
	copy(rec.Bins, s.rec.Bins)
	return rec
}

package rangemap

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liquidityBook/internal/binmath"
	"liquidityBook/internal/model"
)

const activeID int64 = 8388608

func buildSnapshot(t *testing.T, radius int64, binStep int, activePrice float64) *model.Snapshot {
	t.Helper()
	bins := make([]model.Bin, 0, 2*radius+1)
	for id := activeID - radius; id <= activeID+radius; id++ {
		price, err := binmath.PriceAt(id, activeID, activePrice, binStep)
		require.NoError(t, err)
		bins = append(bins, model.Bin{ID: id, Price: price})
	}
	snap, err := model.NewSnapshot(model.SnapshotRecord{
		Pool:     "TEST",
		ActiveID: activeID,
		BinStep:  binStep,
		Bins:     bins,
	})
	require.NoError(t, err)
	return snap
}

func newMapper(t *testing.T) *Mapper {
	t.Helper()
	m, err := New(DefaultConfig(), nil)
	require.NoError(t, err)
	return m
}

func TestMapSelectionCentredScenario(t *testing.T) {
	snap := buildSnapshot(t, 100, 25, 1.0)
	cfg := DefaultConfig()
	cfg.DisplayWindowSpan = 0.06
	m, err := New(cfg, nil)
	require.NoError(t, err)

	// 10% of a 6% axis is a price ratio of 1.006: two 25bp bins.
	res, err := m.MapSelection(model.Selection{LeftPercent: 45, RightPercent: 55}, snap)
	require.NoError(t, err)

	assert.Equal(t, 2, res.BinCount)
	assert.Equal(t, int64(0), res.CenterOffset)
	assert.InDelta(t, 1/1.0025, res.MinPrice, 1e-9)
	assert.InDelta(t, 1.0025, res.MaxPrice, 1e-9)
	assert.InDelta(t, 0.25, res.PercentageRange.Max, 1e-9)
	assert.InDelta(t, (1/1.0025-1)*100, res.PercentageRange.Min, 1e-9)
	assert.Equal(t, activeID-1, res.LowerBinID)
	assert.Equal(t, activeID+1, res.UpperBinID)
	assert.Equal(t, 25, res.BinStep)
	assert.False(t, res.Clamped)
}

func TestMapSelectionDefaultWindow(t *testing.T) {
	snap := buildSnapshot(t, 100, 25, 1.0)
	res, err := newMapper(t).MapSelection(model.Selection{LeftPercent: 45, RightPercent: 55}, snap)
	require.NoError(t, err)

	assert.Equal(t, int(math.Round(math.Log(1.06)/math.Log(1.0025))), res.BinCount)
	assert.Equal(t, int64(0), res.CenterOffset)
	assert.Equal(t, activeID-11, res.LowerBinID)
	assert.Equal(t, activeID+11, res.UpperBinID)
	assert.InDelta(t, math.Pow(1.0025, 11), res.MaxPrice, 1e-9)
	assert.InDelta(t, math.Pow(1.0025, -11), res.MinPrice, 1e-9)
}

func TestMapSelectionAsymmetric(t *testing.T) {
	snap := buildSnapshot(t, 100, 25, 1.0)
	m := newMapper(t)

	left, err := m.MapSelection(model.Selection{LeftPercent: 10, RightPercent: 20}, snap)
	require.NoError(t, err)
	right, err := m.MapSelection(model.Selection{LeftPercent: 80, RightPercent: 90}, snap)
	require.NoError(t, err)

	assert.Equal(t, left.BinCount, right.BinCount)
	assert.NotEqual(t, left.CenterOffset, right.CenterOffset)
	assert.Equal(t, int64(-70), left.CenterOffset)
	assert.Equal(t, int64(70), right.CenterOffset)
	assert.NotEqual(t, left.MinPrice, right.MinPrice)
	assert.NotEqual(t, left.MaxPrice, right.MaxPrice)

	// Fully single-sided ranges are legal.
	assert.Less(t, left.MaxPrice, snap.ActivePrice())
	assert.Greater(t, right.MinPrice, snap.ActivePrice())
}

func TestMapSelectionOrderingAndBounds(t *testing.T) {
	m := newMapper(t)
	for _, step := range []int{1, 25, 100, 1000} {
		snap := buildSnapshot(t, 100, step, 1.0)
		for left := 0.0; left < 100; left += 7.5 {
			for right := left + 0.5; right <= 100; right += 6.5 {
				res, err := m.MapSelection(model.Selection{LeftPercent: left, RightPercent: right}, snap)
				require.NoError(t, err)
				require.Less(t, res.MinPrice, res.MaxPrice, "step %d [%v,%v]", step, left, right)
				require.GreaterOrEqual(t, res.BinCount, 1)
				require.LessOrEqual(t, res.BinCount, DefaultMaxBinCount)
				require.LessOrEqual(t, res.LowerBinID, res.UpperBinID)
			}
		}
	}
}

func TestMapSelectionCollapsed(t *testing.T) {
	snap := buildSnapshot(t, 100, 25, 1.0)
	res, err := newMapper(t).MapSelection(model.Selection{LeftPercent: 75, RightPercent: 75}, snap)
	require.NoError(t, err)

	assert.Equal(t, 1, res.BinCount)
	assert.Equal(t, int64(50), res.CenterOffset)
	assert.Equal(t, res.LowerBinID, res.UpperBinID)
	assert.Equal(t, activeID+50, res.LowerBinID)
	assert.Less(t, res.MinPrice, res.MaxPrice)

	binPrice := snap.BinAt(150).Price
	assert.Less(t, res.MinPrice, binPrice)
	assert.Greater(t, res.MaxPrice, binPrice)
}

func TestMapSelectionFullSpan(t *testing.T) {
	snap := buildSnapshot(t, 100, 25, 1.0)
	res, err := newMapper(t).MapSelection(model.Selection{LeftPercent: 0, RightPercent: 100}, snap)
	require.NoError(t, err)
	assert.Equal(t, int(math.Round(math.Log(1.6)/math.Log(1.0025))), res.BinCount)

	fine := buildSnapshot(t, 100, 1, 1.0)
	res, err = newMapper(t).MapSelection(model.Selection{LeftPercent: 0, RightPercent: 100}, fine)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxBinCount, res.BinCount)
}

func TestMapSelectionNormalizes(t *testing.T) {
	snap := buildSnapshot(t, 100, 25, 1.0)
	m := newMapper(t)

	want, err := m.MapSelection(model.Selection{LeftPercent: 30, RightPercent: 60}, snap)
	require.NoError(t, err)
	got, err := m.MapSelection(model.Selection{LeftPercent: 60, RightPercent: 30}, snap)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	clamped, err := m.MapSelection(model.Selection{LeftPercent: -20, RightPercent: 140}, snap)
	require.NoError(t, err)
	full, err := m.MapSelection(model.Selection{LeftPercent: 0, RightPercent: 100}, snap)
	require.NoError(t, err)
	assert.Equal(t, full, clamped)

	_, err = m.MapSelection(model.Selection{LeftPercent: math.NaN(), RightPercent: 10}, snap)
	assert.ErrorIs(t, err, ErrInvalidSelection)
}

func TestMapSelectionOptions(t *testing.T) {
	snap := buildSnapshot(t, 100, 25, 1.0)
	m := newMapper(t)

	res, err := m.MapSelection(model.Selection{LeftPercent: 45, RightPercent: 55}, snap, WithReferencePrice(2000))
	require.NoError(t, err)
	assert.InDelta(t, 2000*math.Pow(1.0025, 11), res.MaxPrice, 1e-6)
	assert.Equal(t, 2000.0, res.ReferencePrice)
	assert.Equal(t, 25, res.BinStep)

	res, err = m.MapSelection(model.Selection{LeftPercent: 45, RightPercent: 55}, snap, WithBinStep(10))
	require.NoError(t, err)
	assert.Equal(t, int(math.Round(math.Log(1.06)/math.Log(1.001))), res.BinCount)
	assert.Equal(t, 10, res.BinStep)

	_, err = m.MapSelection(model.Selection{LeftPercent: 45, RightPercent: 55}, snap, WithBinStep(0))
	assert.ErrorIs(t, err, binmath.ErrInvalidStep)

	_, err = m.MapSelection(model.Selection{LeftPercent: 45, RightPercent: 55}, snap, WithReferencePrice(-1))
	assert.ErrorIs(t, err, binmath.ErrInvalidPrice)

	_, err = m.MapSelection(model.Selection{LeftPercent: 45, RightPercent: 55}, nil)
	assert.ErrorIs(t, err, model.ErrEmptySnapshot)
}

func TestMapSelectionClampsToWindow(t *testing.T) {
	snap := buildSnapshot(t, 100, 25, 1.0)
	cfg := DefaultConfig()
	cfg.MaxOffset = 50
	m, err := New(cfg, nil)
	require.NoError(t, err)

	// [90,100] centres on +90 with 23 bins; the window slides down to end at +50.
	res, err := m.MapSelection(model.Selection{LeftPercent: 90, RightPercent: 100}, snap)
	require.NoError(t, err)
	assert.True(t, res.Clamped)
	assert.Equal(t, 23, res.BinCount)
	assert.Equal(t, activeID+50, res.UpperBinID)
	assert.Equal(t, activeID+28, res.LowerBinID)
	assert.Equal(t, int64(39), res.CenterOffset)
	assert.Less(t, res.MinPrice, res.MaxPrice)

	res, err = m.MapSelection(model.Selection{LeftPercent: 80, RightPercent: 100}, snap)
	require.NoError(t, err)
	assert.True(t, res.Clamped)
	assert.Equal(t, 45, res.BinCount)
	assert.Equal(t, activeID+6, res.LowerBinID)
	assert.Equal(t, activeID+50, res.UpperBinID)
	assert.Equal(t, int64(28), res.CenterOffset)
	assert.InDelta(t, math.Pow(1.0025, 6), res.MinPrice, 1e-12)
	assert.InDelta(t, math.Pow(1.0025, 50), res.MaxPrice, 1e-12)

	for left := 0.0; left <= 100; left += 5 {
		for right := left; right <= 100; right += 5 {
			res, err := m.MapSelection(model.Selection{LeftPercent: left, RightPercent: right}, snap)
			require.NoError(t, err)
			covered := int(res.UpperBinID - res.LowerBinID + 1)
			require.GreaterOrEqual(t, covered, res.BinCount, "[%v,%v]", left, right)
			require.GreaterOrEqual(t, res.LowerBinID, activeID-50, "[%v,%v]", left, right)
			require.LessOrEqual(t, res.UpperBinID, activeID+50, "[%v,%v]", left, right)
			require.True(t, res.Contains(activeID+res.CenterOffset), "[%v,%v]", left, right)
		}
	}
}

func TestMapSelectionTrimsToWindow(t *testing.T) {
	snap := buildSnapshot(t, 100, 25, 1.0)
	cfg := DefaultConfig()
	cfg.MaxOffset = 10
	m, err := New(cfg, nil)
	require.NoError(t, err)

	res, err := m.MapSelection(model.Selection{LeftPercent: 0, RightPercent: 100}, snap)
	require.NoError(t, err)
	assert.True(t, res.Clamped)
	assert.Equal(t, activeID-10, res.LowerBinID)
	assert.Equal(t, activeID+10, res.UpperBinID)
	assert.Equal(t, 21, res.BinCount)
	assert.Equal(t, int64(0), res.CenterOffset)
}

func TestMapBinIndices(t *testing.T) {
	snap := buildSnapshot(t, 100, 25, 1.0)
	m := newMapper(t)

	res, err := m.MapBinIndices(model.BinIndexSelection{Left: 95, Right: 105}, snap)
	require.NoError(t, err)
	assert.Equal(t, 11, res.BinCount)
	assert.Equal(t, int64(0), res.CenterOffset)
	assert.Equal(t, activeID-5, res.LowerBinID)
	assert.Equal(t, activeID+5, res.UpperBinID)
	assert.InDelta(t, snap.BinAt(95).Price, res.MinPrice, 1e-12)
	assert.InDelta(t, snap.BinAt(105).Price, res.MaxPrice, 1e-12)

	reversed, err := m.MapBinIndices(model.BinIndexSelection{Left: 105, Right: 95}, snap)
	require.NoError(t, err)
	assert.Equal(t, res, reversed)

	wide, err := m.MapBinIndices(model.BinIndexSelection{Left: -10, Right: 500}, snap)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxBinCount, wide.BinCount)
	assert.Equal(t, int64(DefaultMaxBinCount-1), wide.UpperBinID-wide.LowerBinID)

	single, err := m.MapBinIndices(model.BinIndexSelection{Left: 20, Right: 20}, snap)
	require.NoError(t, err)
	assert.Equal(t, 1, single.BinCount)
	assert.Equal(t, int64(-80), single.CenterOffset)
	assert.Less(t, single.MinPrice, single.MaxPrice)
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.DisplayWindowSpan = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = cfg
	bad.MaxBinCount = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = cfg
	bad.MaxOffset = 0
	_, err := New(bad, nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

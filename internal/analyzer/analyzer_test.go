package analyzer

import (
	"math"
	"testing"
	"time"

	"chanengine/internal/kline"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bar(idx int, h, lo float64) kline.Bar {
	return kline.Bar{
		Idx: idx, Time: time.Unix(int64(idx), 0).UTC(),
		Open: lo, High: h, Low: lo, Close: h, Volume: 1,
	}
}

func feed(t *testing.T, a *Analyzer, highs, lows []float64) {
	t.Helper()
	for i := range highs {
		require.NoError(t, a.AddBar(bar(i, highs[i], lows[i])))
	}
}

// TestInclusionMergeProducesExpectedCandleCount drives four bars where the
// fourth is engulfed by the running candle's up-direction projection,
// asserting three merged candles emerge with the last absorbing two bars
// (S1's seed scenario).
func TestInclusionMergeProducesExpectedCandleCount(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	a, err := New("TEST", cfg)
	require.NoError(t, err)

	highs := []float64{10, 12, 15, 14}
	lows := []float64{9, 11, 13, 13.5}
	feed(t, a, highs, lows)

	require.Equal(t, 3, a.CandleList().Len())
	last := a.CandleList().At(2)
	assert.Equal(t, 2, last.FirstBarIdx)
	assert.Equal(t, 3, last.LastBarIdx)
}

// TestFractalFinalizesOnThirdCandle extends S1 with a further descending
// run so the merged candle at index 2 is finalized as a Top fractal once
// the candle after it is emitted (S2's seed scenario).
func TestFractalFinalizesOnThirdCandle(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	a, err := New("TEST", cfg)
	require.NoError(t, err)

	highs := []float64{10, 12, 15, 14, 11, 9}
	lows := []float64{9, 11, 13, 13.5, 8, 6}
	feed(t, a, highs, lows)

	require.Equal(t, 5, a.CandleList().Len())
	assert.Equal(t, kline.FxTop, a.CandleList().At(2).Fx)
}

// TestSingleSureStrokeFromTopToBottomFractal extends S2 with a rise back up
// so the down-run closes a Bottom fractal, producing exactly one sure Down
// stroke from the Top fractal candle to the Bottom fractal candle (S3's
// seed scenario).
func TestSingleSureStrokeFromTopToBottomFractal(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	a, err := New("TEST", cfg)
	require.NoError(t, err)

	// Each pair of bars strictly dominates the running candle, so every
	// bar emits its own merged candle: a rising run peaking at candle 4
	// (Top), a falling run troughing at candle 8 (Bottom) — seeding one
	// tentative Down stroke — then a further rise (candles 9-13) that
	// confirms it as sure and opens the next, still-tentative, Up stroke.
	highs := []float64{10, 11, 12, 13, 14, 13, 11, 9, 7, 8, 9, 10, 11, 12, 11}
	lows := []float64{9, 10, 11, 12, 13, 11, 9, 7, 5, 6, 7, 8, 9, 10, 8}
	feed(t, a, highs, lows)

	require.Equal(t, kline.FxTop, a.CandleList().At(4).Fx)
	require.Equal(t, kline.FxBottom, a.CandleList().At(8).Fx)

	strokes := a.BiList()
	require.Len(t, strokes, 2)
	first := strokes[0]
	assert.True(t, first.IsSure())
	assert.Equal(t, kline.Down, first.Dir())
	assert.Equal(t, 4, first.StartCandleIdx())
	assert.Equal(t, 8, first.EndCandleIdx())

	assert.False(t, strokes[1].IsSure())
	assert.Equal(t, kline.Up, strokes[1].Dir())
}

// TestZoneBoundsMatchDirectComputationOnEmittedStrokes drives a 36-bar
// saw-tooth oscillating within [100,110], asserting at least one zone
// forms whose upper/lower bounds match direct computation from the first
// three overlapping strokes (S4's seed scenario).
func TestZoneBoundsMatchDirectComputationOnEmittedStrokes(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	a, err := New("TEST", cfg)
	require.NoError(t, err)

	var highs, lows []float64
	base := []struct{ h, l float64 }{
		{105, 100}, {108, 102}, {110, 104}, {107, 101}, {109, 103}, {106, 100},
	}
	for i := 0; i < 6; i++ {
		for _, p := range base {
			highs = append(highs, p.h)
			lows = append(lows, p.l)
		}
	}
	feed(t, a, highs, lows)

	zones := a.BiZsList()
	require.NotEmpty(t, zones)
	z := zones[0]

	strokes := a.BiList()
	require.True(t, z.EndLineIdx() < len(strokes))
	var upper, lower float64
	upper, lower = strokes[z.StartLineIdx()].High(), strokes[z.StartLineIdx()].Low()
	for i := z.StartLineIdx(); i <= z.StartLineIdx()+2 && i < len(strokes); i++ {
		if strokes[i].High() < upper {
			upper = strokes[i].High()
		}
		if strokes[i].Low() > lower {
			lower = strokes[i].Low()
		}
	}
	assert.Equal(t, upper, z.Upper())
	assert.Equal(t, lower, z.Lower())
}

// TestIdempotentReplayAcrossFreshAnalyzers feeds two freshly constructed
// analyzers the same bar stream and asserts every layer ends up in the
// same observable state, confirming the pipeline carries no hidden,
// non-deterministic state across runs.
func TestIdempotentReplayAcrossFreshAnalyzers(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	highs := []float64{10, 12, 15, 14, 11, 9, 7, 8, 10, 12, 14, 11, 9, 7, 5}
	lows := []float64{9, 11, 13, 13.5, 8, 6, 4, 6, 8, 10, 12, 9, 7, 5, 3}

	a1, err := New("TEST", cfg)
	require.NoError(t, err)
	a2, err := New("TEST", cfg)
	require.NoError(t, err)
	feed(t, a1, highs, lows)
	feed(t, a2, highs, lows)

	require.Equal(t, a1.CandleList().Len(), a2.CandleList().Len())
	require.Len(t, a2.BiList(), len(a1.BiList()))
	for i, s := range a1.BiList() {
		o := a2.BiList()[i]
		assert.Equal(t, s.Dir(), o.Dir())
		assert.Equal(t, s.IsSure(), o.IsSure())
		assert.Equal(t, s.StartCandleIdx(), o.StartCandleIdx())
		assert.Equal(t, s.EndCandleIdx(), o.EndCandleIdx())
	}
	require.Len(t, a2.SegList(), len(a1.SegList()))
	require.Len(t, a2.BiZsList(), len(a1.BiZsList()))
}

// TestBspOnlySurfacedOnceHostLineIsSure asserts the façade's view-level
// revocation contract: every bsp BiBspList reports sits on a sure stroke.
func TestBspOnlySurfacedOnceHostLineIsSure(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	a, err := New("TEST", cfg)
	require.NoError(t, err)

	highs := []float64{105, 108, 110, 107, 109, 106, 130}
	lows := []float64{100, 102, 104, 101, 103, 100, 120}
	feed(t, a, highs, lows)

	for _, b := range a.BiBspList() {
		idx := b.LineIdx()
		require.True(t, idx < len(a.BiList()))
		assert.True(t, a.BiList()[idx].IsSure())
	}
}

// TestBspEmittedCounterIncrementsOnClassification asserts a successful bsp
// classification drives chan_bsp_emitted_total (§4.8's per-transition
// counter requirement), not just the in-memory bsp list.
func TestBspEmittedCounterIncrementsOnClassification(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	a, err := New("TEST", cfg)
	require.NoError(t, err)

	// Eight periods of the saw-tooth used above: the fourth stroke becomes
	// sure while the bi-zone is open and is tagged T1P.
	var highs, lows []float64
	base := []struct{ h, l float64 }{
		{105, 100}, {108, 102}, {110, 104}, {107, 101}, {109, 103}, {106, 100},
	}
	for i := 0; i < 8; i++ {
		for _, p := range base {
			highs = append(highs, p.h)
			lows = append(lows, p.l)
		}
	}
	feed(t, a, highs, lows)

	require.NotEmpty(t, a.biBsp.Bsps())
	assert.Greater(t, testutil.CollectAndCount(a.met.BspEmitted), 0)
}

// TestAddBarRejectsNonMonotoneTimestamp asserts an out-of-order bar is
// rejected before it mutates any layer (§7's InvalidBar contract).
func TestAddBarRejectsNonMonotoneTimestamp(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	a, err := New("TEST", cfg)
	require.NoError(t, err)

	require.NoError(t, a.AddBar(bar(0, 10, 9)))
	beforeCandles := a.CandleList().Len()

	bad := bar(0, 11, 10)
	bad.Time = time.Unix(0, 0).UTC() // not strictly after the first bar's time
	err = a.AddBar(bad)
	require.Error(t, err)
	assert.Equal(t, beforeCandles, a.CandleList().Len())
}

// TestAddBarRejectsNonFinitePrice asserts a NaN/Inf OHLC value is rejected.
func TestAddBarRejectsNonFinitePrice(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	a, err := New("TEST", cfg)
	require.NoError(t, err)

	b := bar(0, 10, 9)
	b.High = math.NaN()
	err = a.AddBar(b)
	require.Error(t, err)
	assert.Equal(t, 0, a.CandleList().Len())
}

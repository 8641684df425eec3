package bsp

import (
	"testing"

	"chanengine/internal/kline"
	"chanengine/internal/zs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLine struct {
	idx       int
	dir       kline.Direction
	high, low float64
}

func (l *stubLine) Index() int           { return l.idx }
func (l *stubLine) Dir() kline.Direction { return l.dir }
func (l *stubLine) High() float64        { return l.high }
func (l *stubLine) Low() float64         { return l.low }
func (l *stubLine) IsSure() bool         { return true }

type stubSource struct{ lines []*stubLine }

func (s *stubSource) At(idx int) *stubLine { return s.lines[idx] }

// seedDivergentExit builds a source of 6 lines: lines 0-2 overlap and
// accumulate into a zone (line 0 is its first member, so the zone has no
// entry line and takes line 0's orientation), lines 3 and 4 extend it,
// and line 5 breaks out in the opposite direction from the zone's
// orientation — the S5 seed scenario. The tests give line 3, an in-zone
// line against the zone's orientation, the same metric as line 0 so that
// only line 5 diverges.
func seedDivergentExit() *stubSource {
	return &stubSource{lines: []*stubLine{
		{idx: 0, dir: kline.Down, high: 102, low: 96},
		{idx: 1, dir: kline.Up, high: 105, low: 95},
		{idx: 2, dir: kline.Down, high: 108, low: 98},
		{idx: 3, dir: kline.Up, high: 112, low: 100},
		{idx: 4, dir: kline.Down, high: 106, low: 97},
		{idx: 5, dir: kline.Up, high: 130, low: 120},
	}}
}

func metricFromMap(m map[int]float64) MetricFunc {
	return func(startLineIdx, endLineIdx int, algo string) float64 {
		return m[startLineIdx]
	}
}

func driveZonesAndBsp[L kline.IndexedLine](t *testing.T, n int, zb *zs.Builder[L], bb *Builder[L]) [][]*Bsp {
	t.Helper()
	var out [][]*Bsp
	for i := 0; i < n; i++ {
		zb.OnLine(i)
		bsps, err := bb.OnLine(i)
		require.NoError(t, err)
		out = append(out, bsps)
	}
	return out
}

func TestT1EmittedOnceOnDivergentZoneExit(t *testing.T) {
	zCfg, err := zs.NewConfig()
	require.NoError(t, err)
	bConf, err := NewConfig()
	require.NoError(t, err)
	sConf, err := NewConfig()
	require.NoError(t, err)

	src := seedDivergentExit()
	zb := zs.NewBuilder[*stubLine](zCfg, src)
	metric := metricFromMap(map[int]float64{0: 10, 3: 10, 5: 3})
	bb := NewBuilder[*stubLine](bConf, sConf, src, zb.Zones, metric, nil)

	rounds := driveZonesAndBsp[*stubLine](t, len(src.lines), zb, bb)

	var t1Count int
	for _, r := range rounds {
		for _, bsp := range r {
			if bsp.HasType(T1) {
				t1Count++
			}
		}
	}
	assert.Equal(t, 1, t1Count)
	require.Len(t, bb.Bsps(), 1)
	assert.Equal(t, 5, bb.Bsps()[0].LineIdx())
	assert.False(t, bb.Bsps()[0].IsBuy())
}

func TestT1SuppressedWhenDivergenceRateBelowMeasuredRatio(t *testing.T) {
	zCfg, err := zs.NewConfig()
	require.NoError(t, err)
	// measured ratio is 3/10 = 0.3; a divergence_rate of 0.2 means the
	// exit metric (3) is no longer below rate*enter (0.2*10=2), so T1
	// must not fire.
	bConf, err := NewConfig(WithDivergenceRate(0.2))
	require.NoError(t, err)
	sConf, err := NewConfig(WithDivergenceRate(0.2))
	require.NoError(t, err)

	src := seedDivergentExit()
	zb := zs.NewBuilder[*stubLine](zCfg, src)
	metric := metricFromMap(map[int]float64{0: 10, 3: 10, 5: 3})
	bb := NewBuilder[*stubLine](bConf, sConf, src, zb.Zones, metric, nil)

	driveZonesAndBsp[*stubLine](t, len(src.lines), zb, bb)

	assert.Len(t, bb.Bsps(), 0)
}

func TestT2FollowsT1WithBoundedRetracement(t *testing.T) {
	zCfg, err := zs.NewConfig()
	require.NoError(t, err)
	bConf, err := NewConfig()
	require.NoError(t, err)
	sConf, err := NewConfig()
	require.NoError(t, err)

	src := &stubSource{lines: []*stubLine{
		{idx: 0, dir: kline.Down, high: 102, low: 96},
		{idx: 1, dir: kline.Up, high: 105, low: 95},
		{idx: 2, dir: kline.Down, high: 108, low: 98},
		{idx: 3, dir: kline.Up, high: 112, low: 100},
		{idx: 4, dir: kline.Down, high: 106, low: 97},
		{idx: 5, dir: kline.Up, high: 130, low: 120},
		{idx: 6, dir: kline.Down, high: 128, low: 124}, // retrace 4/10 = 0.4 <= 0.618
	}}
	zb := zs.NewBuilder[*stubLine](zCfg, src)
	metric := metricFromMap(map[int]float64{0: 10, 3: 10, 5: 3})
	bb := NewBuilder[*stubLine](bConf, sConf, src, zb.Zones, metric, nil)

	driveZonesAndBsp[*stubLine](t, len(src.lines), zb, bb)

	require.Len(t, bb.Bsps(), 2)
	t2 := bb.Bsps()[1]
	assert.True(t, t2.HasType(T2))
	rel, ok := t2.RelateBsp1()
	require.True(t, ok)
	assert.Equal(t, bb.Bsps()[0].Index(), rel)
}

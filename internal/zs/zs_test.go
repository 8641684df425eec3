package zs

import (
	"testing"

	"chanengine/internal/kline"

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

func TestZoneFormsAtThirdOverlappingLineAndClosesOnBreakout(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	src := &stubSource{lines: []*stubLine{
		{idx: 0, dir: kline.Up, high: 105, low: 95},
		{idx: 1, dir: kline.Down, high: 108, low: 98},
		{idx: 2, dir: kline.Up, high: 112, low: 100},
		{idx: 3, dir: kline.Down, high: 106, low: 97},
		{idx: 4, dir: kline.Up, high: 130, low: 120},
	}}

	b := NewBuilder[*stubLine](cfg, src)
	for i := range src.lines {
		b.OnLine(i)
	}

	require.Len(t, b.Zones(), 1)
	z := b.Zones()[0]
	assert.Equal(t, 100.0, z.Lower())
	assert.Equal(t, 105.0, z.Upper())
	assert.Equal(t, 112.0, z.PeakHigh())
	assert.Equal(t, 95.0, z.PeakLow())
	assert.Equal(t, 0, z.StartLineIdx())
	assert.Equal(t, 3, z.EndLineIdx())
	assert.True(t, z.Closed())
	exit, ok := z.ExitLineIdx()
	require.True(t, ok)
	assert.Equal(t, 4, exit)
}

func TestOneBiZsOpensOnSingleLine(t *testing.T) {
	cfg, err := NewConfig(WithOneBiZs(true))
	require.NoError(t, err)
	src := &stubSource{lines: []*stubLine{
		{idx: 0, dir: kline.Up, high: 105, low: 95},
	}}
	b := NewBuilder[*stubLine](cfg, src)
	b.OnLine(0)
	require.Len(t, b.Zones(), 1)
	assert.False(t, b.Zones()[0].Closed())
}

// TestCombineAppendsNewZoneLeavingOriginalsUntouched drives two closed,
// same-orientation zones separated by exactly one bridging line (the line
// that broke the first zone) whose ranges still overlap, and asserts
// need_combine appends a third zone recording both as sub-zones rather
// than rewriting either original's published slot.
func TestCombineAppendsNewZoneLeavingOriginalsUntouched(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)

	src := &stubSource{lines: []*stubLine{
		{idx: 0, dir: kline.Up, high: 105, low: 95},
		{idx: 1, dir: kline.Down, high: 108, low: 98},
		{idx: 2, dir: kline.Up, high: 112, low: 100},
		{idx: 3, dir: kline.Up, high: 130, low: 120},   // breaks zone A, bridges to zone C
		{idx: 4, dir: kline.Down, high: 118, low: 102},  // doesn't overlap the bridge's run; restarts pending
		{idx: 5, dir: kline.Up, high: 120, low: 104},
		{idx: 6, dir: kline.Down, high: 110, low: 103},  // zone C reaches threshold here
		{idx: 7, dir: kline.Up, high: 140, low: 130},    // breaks zone C, triggers tryCombine
	}}

	b := NewBuilder[*stubLine](cfg, src)
	for i := range src.lines {
		b.OnLine(i)
	}

	require.Len(t, b.Zones(), 3)

	a := b.Zones()[0]
	assert.Equal(t, 0, a.Index())
	assert.Equal(t, 100.0, a.Lower())
	assert.Equal(t, 105.0, a.Upper())
	assert.Equal(t, 0, a.StartLineIdx())
	assert.Equal(t, 2, a.EndLineIdx())
	aExit, ok := a.ExitLineIdx()
	require.True(t, ok)
	assert.Equal(t, 3, aExit)

	c := b.Zones()[1]
	assert.Equal(t, 1, c.Index())
	assert.Equal(t, 104.0, c.Lower())
	assert.Equal(t, 110.0, c.Upper())
	assert.Equal(t, 4, c.StartLineIdx())
	assert.Equal(t, 6, c.EndLineIdx())
	cExit, ok := c.ExitLineIdx()
	require.True(t, ok)
	assert.Equal(t, 7, cExit)

	merged := b.Zones()[2]
	assert.Equal(t, 2, merged.Index())
	assert.Equal(t, []int{0, 1}, merged.SubZoneIdxs())
	assert.Equal(t, 0, merged.StartLineIdx())
	assert.Equal(t, 6, merged.EndLineIdx())
	mergedExit, ok := merged.ExitLineIdx()
	require.True(t, ok)
	assert.Equal(t, 7, mergedExit)
	// default CombineMode is CombineZS: narrow to the intersection.
	assert.Equal(t, 104.0, merged.Lower())
	assert.Equal(t, 105.0, merged.Upper())
	assert.Equal(t, 120.0, merged.PeakHigh())
	assert.Equal(t, 95.0, merged.PeakLow())

	// a and c keep their original slots and geometry untouched.
	assert.Equal(t, 100.0, a.Lower())
	assert.Equal(t, 105.0, a.Upper())
	assert.Equal(t, 104.0, c.Lower())
	assert.Equal(t, 110.0, c.Upper())
}

func TestNoZoneBelowThreshold(t *testing.T) {
	cfg, err := NewConfig()
	require.NoError(t, err)
	src := &stubSource{lines: []*stubLine{
		{idx: 0, dir: kline.Up, high: 105, low: 95},
		{idx: 1, dir: kline.Down, high: 108, low: 98},
	}}
	b := NewBuilder[*stubLine](cfg, src)
	b.OnLine(0)
	b.OnLine(1)
	assert.Len(t, b.Zones(), 0)
}

package bi

import "chanengine/internal/kline"

// Bi is one confirmed (or still-tentative) stroke: an oriented line
// connecting two fractals of opposite kind on the merged-candle list.
type Bi struct {
	idx            int
	dir            kline.Direction
	startCandleIdx int
	endCandleIdx   int
	beginVal       float64
	endVal         float64
	sure           bool
	parentSegIdx   *int
	bspIdx         *int
}

// Index is this stroke's stable position in the stroke list.
func (b *Bi) Index() int { return b.idx }

// Dir is the stroke's orientation.
func (b *Bi) Dir() kline.Direction { return b.dir }

// High is the stroke's maximum excursion (implements kline.Line).
func (b *Bi) High() float64 {
	if b.dir == kline.Up {
		return b.endVal
	}
	return b.beginVal
}

// Low is the stroke's minimum excursion (implements kline.Line).
func (b *Bi) Low() float64 {
	if b.dir == kline.Up {
		return b.beginVal
	}
	return b.endVal
}

// IsSure reports whether this stroke has been confirmed (implements
// kline.Line).
func (b *Bi) IsSure() bool { return b.sure }

// StartCandleIdx is the merged-candle index the stroke begins at.
func (b *Bi) StartCandleIdx() int { return b.startCandleIdx }

// EndCandleIdx is the merged-candle index the stroke ends at.
func (b *Bi) EndCandleIdx() int { return b.endCandleIdx }

// BeginVal is the price at the stroke's start.
func (b *Bi) BeginVal() float64 { return b.beginVal }

// EndVal is the price at the stroke's end.
func (b *Bi) EndVal() float64 { return b.endVal }

// Amp is the stroke's absolute amplitude, used as a diagnostic feature.
func (b *Bi) Amp() float64 {
	d := b.endVal - b.beginVal
	if d < 0 {
		return -d
	}
	return d
}

// ParentSegIdx returns the index of the segment that contains this stroke,
// if any has been assigned yet.
func (b *Bi) ParentSegIdx() (int, bool) {
	if b.parentSegIdx == nil {
		return 0, false
	}
	return *b.parentSegIdx, true
}

// SetParentSegIdx records which segment contains this stroke.
func (b *Bi) SetParentSegIdx(idx int) { v := idx; b.parentSegIdx = &v }

// BspIdx returns the index of the bsp attached to this stroke, if any.
func (b *Bi) BspIdx() (int, bool) {
	if b.bspIdx == nil {
		return 0, false
	}
	return *b.bspIdx, true
}

// SetBspIdx attaches a bsp to this stroke.
func (b *Bi) SetBspIdx(idx int) { v := idx; b.bspIdx = &v }

// ClearBspIdx detaches any bsp from this stroke.
func (b *Bi) ClearBspIdx() { b.bspIdx = nil }

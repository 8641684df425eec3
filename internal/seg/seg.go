package seg

import "chanengine/internal/kline"

// Seg is one confirmed (or still-tentative) segment: an oriented line
// spanning a contiguous run of lines (strokes, or — at the seg-of-seg
// level — segments) in the layer below.
type Seg struct {
	idx          int
	dir          kline.Direction
	startLineIdx int
	endLineIdx   int
	beginVal     float64
	endVal       float64
	sure         bool
	parentSegIdx *int
	bspIdx       *int
}

// Index is this segment's stable position in the segment list (implements
// kline.IndexedLine).
func (s *Seg) Index() int { return s.idx }

// Dir is the segment's orientation.
func (s *Seg) Dir() kline.Direction { return s.dir }

// High is the segment's maximum excursion (implements kline.Line).
func (s *Seg) High() float64 {
	if s.dir == kline.Up {
		return s.endVal
	}
	return s.beginVal
}

// Low is the segment's minimum excursion (implements kline.Line).
func (s *Seg) Low() float64 {
	if s.dir == kline.Up {
		return s.beginVal
	}
	return s.endVal
}

// IsSure reports whether this segment has been confirmed (implements
// kline.Line).
func (s *Seg) IsSure() bool { return s.sure }

// StartLineIdx is the index, in the layer below, the segment begins at.
func (s *Seg) StartLineIdx() int { return s.startLineIdx }

// EndLineIdx is the index, in the layer below, the segment ends at.
func (s *Seg) EndLineIdx() int { return s.endLineIdx }

// BeginVal is the price at the segment's start.
func (s *Seg) BeginVal() float64 { return s.beginVal }

// EndVal is the price at the segment's end.
func (s *Seg) EndVal() float64 { return s.endVal }

// ParentSegIdx returns the index of the seg-of-seg containing this
// segment, if one has been assigned yet.
func (s *Seg) ParentSegIdx() (int, bool) {
	if s.parentSegIdx == nil {
		return 0, false
	}
	return *s.parentSegIdx, true
}

// SetParentSegIdx records which seg-of-seg contains this segment.
func (s *Seg) SetParentSegIdx(idx int) { v := idx; s.parentSegIdx = &v }

// BspIdx returns the index of the bsp attached to this segment, if any.
func (s *Seg) BspIdx() (int, bool) {
	if s.bspIdx == nil {
		return 0, false
	}
	return *s.bspIdx, true
}

// SetBspIdx attaches a bsp to this segment.
func (s *Seg) SetBspIdx(idx int) { v := idx; s.bspIdx = &v }

// ClearBspIdx detaches any bsp from this segment.
func (s *Seg) ClearBspIdx() { s.bspIdx = nil }

func makeSeg(idx int, dir kline.Direction, startLineIdx, endLineIdx int, beginVal, endVal float64, sure bool) *Seg {
	return &Seg{
		idx: idx, dir: dir,
		startLineIdx: startLineIdx, endLineIdx: endLineIdx,
		beginVal: beginVal, endVal: endVal, sure: sure,
	}
}

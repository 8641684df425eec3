package seg

import "chanengine/internal/kline"

// eigenElem is one merged "eigen candle" — the segment-builder's analogue
// of a merged candle (§4.3), but built from counter-direction lines' high/
// low pairs instead of raw bars. boundaryIdx carries the index (in the
// layer below) of the forward-direction line most recently seen before
// this eigen element was formed — the candidate segment boundary a
// fractal here will resolve to.
type eigenElem struct {
	dir         kline.Direction
	high        float64
	low         float64
	boundaryIdx int
	fx          kline.FxKind
}

// eigenList runs the same directional inclusion-merge and three-element
// fractal rule as internal/candle, one level up, over synthetic elements
// rather than bars.
type eigenList struct {
	elems []*eigenElem
}

func newEigenList() *eigenList {
	return &eigenList{elems: make([]*eigenElem, 0, 16)}
}

func (e *eigenList) boundaryAt(idx int) int { return e.elems[idx].boundaryIdx }

// add folds one counter-direction line's (high, low) into the eigen
// stream. It returns the index of a fractal finalized as a result, or -1
// if none was (either because fewer than 3 eigen elements exist yet, or
// the new element was merged rather than emitted as a new one, or the
// triple failed the strict extremum test).
func (e *eigenList) add(high, low float64, boundaryIdx int) int {
	if len(e.elems) == 0 {
		e.elems = append(e.elems, &eigenElem{dir: kline.Up, high: high, low: low, boundaryIdx: boundaryIdx})
		return -1
	}

	cur := e.elems[len(e.elems)-1]
	switch {
	case high > cur.high && low > cur.low:
		e.elems = append(e.elems, &eigenElem{dir: kline.Up, high: high, low: low, boundaryIdx: boundaryIdx})
		return e.checkFractal()
	case high < cur.high && low < cur.low:
		e.elems = append(e.elems, &eigenElem{dir: kline.Down, high: high, low: low, boundaryIdx: boundaryIdx})
		return e.checkFractal()
	default:
		if cur.dir == kline.Up {
			if high > cur.high {
				cur.high = high
			}
			if low > cur.low {
				cur.low = low
			}
		} else {
			if high < cur.high {
				cur.high = high
			}
			if low < cur.low {
				cur.low = low
			}
		}
		cur.boundaryIdx = boundaryIdx
		return -1
	}
}

func (e *eigenList) checkFractal() int {
	n := len(e.elems)
	if n < 3 {
		return -1
	}
	pre, cur, next := e.elems[n-3], e.elems[n-2], e.elems[n-1]
	idx := n - 2

	switch {
	case pre.high < cur.high && next.high < cur.high && pre.low < cur.low && next.low < cur.low:
		cur.fx = kline.FxTop
		return idx
	case pre.high > cur.high && next.high > cur.high && pre.low > cur.low && next.low > cur.low:
		cur.fx = kline.FxBottom
		return idx
	default:
		cur.fx = kline.FxNone
		return -1
	}
}

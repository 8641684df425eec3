// Package candle implements C2 (the directional-inclusion merge) and C3
// (the three-candle fractal detector) from the design. Raw bars are folded
// into merged candles one at a time; whenever a new candle is emitted and
// the list reaches length 3, the fractal kind of the penultimate candle is
// finalized and never touched again (§4.1).
package candle

import "chanengine/internal/kline"

// Candle is a contiguous run of bars sharing a direction after inclusion
// merging. High/Low are the merged range: each bar absorbed by inclusion
// moves both in the candle's direction (the larger high and larger low for
// Up, the smaller high and smaller low for Down); FirstBarIdx/LastBarIdx
// bound the span of raw bars it absorbed.
type Candle struct {
	Idx         int
	Dir         kline.Direction
	High        float64
	Low         float64
	Close       float64
	FirstBarIdx int
	LastBarIdx  int
	Fx          kline.FxKind
	Volume      float64
	Amount      float64
}

// List is the append-only merged-candle store for one analyzer instance.
type List struct {
	candles []*Candle
}

// NewList creates an empty candle list.
func NewList() *List {
	return &List{candles: make([]*Candle, 0, 1024)}
}

// Len returns the current number of merged candles.
func (l *List) Len() int { return len(l.candles) }

// At returns the candle at idx. Panics if idx is out of range — callers
// must only dereference indices they know are valid.
func (l *List) At(idx int) *Candle { return l.candles[idx] }

// Last returns the most recently emitted candle, or nil if the list is
// empty.
func (l *List) Last() *Candle {
	if len(l.candles) == 0 {
		return nil
	}
	return l.candles[len(l.candles)-1]
}

// AddBarResult reports what happened to the candle list and fractal state
// as a consequence of one AddBar call.
type AddBarResult struct {
	// Emitted is true when a new candle was appended (as opposed to the
	// bar being absorbed into the current candle).
	Emitted bool
	// NewCandleIdx is the index of the newly emitted candle (valid only
	// when Emitted is true).
	NewCandleIdx int
	// FractalIdx is the index of a candle whose fractal kind was just
	// finalized, or -1 if none was finalized this call.
	FractalIdx int
}

// AddBar applies the inclusion-merge rule (§4.1) for one raw bar against
// the current candle, emitting a new candle when the bar strictly
// dominates or is strictly dominated, merging otherwise. On emission, if
// the list has reached length 3, the fractal kind of the penultimate
// candle is finalized.
func (l *List) AddBar(bar kline.Bar) AddBarResult {
	if len(l.candles) == 0 {
		c := &Candle{
			Idx:         0,
			Dir:         kline.Up, // first candle is Up by convention
			High:        bar.High,
			Low:         bar.Low,
			Close:       bar.Close,
			FirstBarIdx: bar.Idx,
			LastBarIdx:  bar.Idx,
			Fx:          kline.FxNone,
			Volume:      bar.Volume,
			Amount:      bar.Volume * bar.Close,
		}
		l.candles = append(l.candles, c)
		return AddBarResult{Emitted: true, NewCandleIdx: 0, FractalIdx: -1}
	}

	cur := l.candles[len(l.candles)-1]
	switch {
	case bar.High > cur.High && bar.Low > cur.Low:
		return AddBarResult{Emitted: true, NewCandleIdx: l.emit(bar, kline.Up), FractalIdx: l.checkFractal()}
	case bar.High < cur.High && bar.Low < cur.Low:
		return AddBarResult{Emitted: true, NewCandleIdx: l.emit(bar, kline.Down), FractalIdx: l.checkFractal()}
	default:
		// Inclusion: merge the bar into the current candle, projecting
		// its extreme according to the candle's running direction.
		if cur.Dir == kline.Up {
			if bar.High > cur.High {
				cur.High = bar.High
			}
			if bar.Low > cur.Low {
				cur.Low = bar.Low
			}
		} else {
			if bar.High < cur.High {
				cur.High = bar.High
			}
			if bar.Low < cur.Low {
				cur.Low = bar.Low
			}
		}
		cur.Close = bar.Close
		cur.LastBarIdx = bar.Idx
		cur.Volume += bar.Volume
		cur.Amount += bar.Volume * bar.Close
		return AddBarResult{Emitted: false, NewCandleIdx: -1, FractalIdx: -1}
	}
}

func (l *List) emit(bar kline.Bar, dir kline.Direction) int {
	c := &Candle{
		Idx:         len(l.candles),
		Dir:         dir,
		High:        bar.High,
		Low:         bar.Low,
		Close:       bar.Close,
		FirstBarIdx: bar.Idx,
		LastBarIdx:  bar.Idx,
		Fx:          kline.FxNone,
		Volume:      bar.Volume,
		Amount:      bar.Volume * bar.Close,
	}
	l.candles = append(l.candles, c)
	return c.Idx
}

// checkFractal implements C3: on the last three candles, mark the
// penultimate one Top if it is the strict high AND strict low of the
// triple, Bottom if it is the strict low AND strict high in the opposite
// sense, else None. Returns the finalized candle's index, or -1 if fewer
// than 3 candles exist yet.
func (l *List) checkFractal() int {
	n := len(l.candles)
	if n < 3 {
		return -1
	}
	pre, cur, next := l.candles[n-3], l.candles[n-2], l.candles[n-1]

	switch {
	case pre.High < cur.High && next.High < cur.High && pre.Low < cur.Low && next.Low < cur.Low:
		cur.Fx = kline.FxTop
	case pre.High > cur.High && next.High > cur.High && pre.Low > cur.Low && next.Low > cur.Low:
		cur.Fx = kline.FxBottom
	default:
		cur.Fx = kline.FxNone
	}
	return cur.Idx
}

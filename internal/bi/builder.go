package bi

import (
	"chanengine/internal/candle"
	"chanengine/internal/kline"
)

// Builder incrementally folds finalized fractals into a stroke list. It
// holds no history beyond the current tentative anchor and the strokes
// already produced: everything else is read back from the candle list by
// index, matching the rest of the engine's arena-and-handle discipline.
type Builder struct {
	cfg *Config
	cl  *candle.List
	bis []*Bi

	// anchorIdx/anchorKind describe the most recent fractal seen before any
	// stroke exists yet — the tentative seed for the very first stroke.
	anchorIdx  int
	anchorKind kline.FxKind
}

// NewBuilder creates a stroke builder reading candles from cl.
func NewBuilder(cfg *Config, cl *candle.List) *Builder {
	return &Builder{cfg: cfg, cl: cl, anchorIdx: -1, anchorKind: kline.FxNone}
}

// Strokes returns the current stroke list, in append order. The last entry
// may still be tentative (IsSure() == false).
func (b *Builder) Strokes() []*Bi { return b.bis }

// Len returns the number of strokes produced so far. Together with At, it
// lets Builder serve as a seg.Source[*Bi].
func (b *Builder) Len() int { return len(b.bis) }

// At returns the stroke at idx.
func (b *Builder) At(idx int) *Bi { return b.bis[idx] }

// Last returns the most recent stroke, or nil if none exist yet.
func (b *Builder) Last() *Bi {
	if len(b.bis) == 0 {
		return nil
	}
	return b.bis[len(b.bis)-1]
}

// OnFractal processes a fractal finalized at the given merged-candle index.
// It returns true if the fractal changed builder state (recorded or
// replaced the anchor before any stroke exists, seeded the first stroke,
// extended the tentative stroke's endpoint, or confirmed the tentative
// stroke and opened the next one), false if the fractal was inspected and
// ignored.
func (b *Builder) OnFractal(candleIdx int) bool {
	kind := b.cl.At(candleIdx).Fx
	if kind == kline.FxNone {
		return false
	}

	if len(b.bis) == 0 {
		return b.seedOrTrackAnchor(candleIdx, kind)
	}
	return b.extendOrConfirm(candleIdx, kind)
}

// seedOrTrackAnchor runs before any stroke exists: it remembers the first
// fractal as a tentative anchor, lets a same-kind fractal replace it if more
// extreme, and seeds the first stroke once an opposite-kind fractal arrives.
func (b *Builder) seedOrTrackAnchor(candleIdx int, kind kline.FxKind) bool {
	if b.anchorIdx < 0 {
		b.anchorIdx, b.anchorKind = candleIdx, kind
		return true
	}
	if kind == b.anchorKind {
		newVal := extremeVal(b.cl.At(candleIdx), kind)
		oldVal := extremeVal(b.cl.At(b.anchorIdx), b.anchorKind)
		if moreExtreme(kind, newVal, oldVal) {
			b.anchorIdx = candleIdx
			return true
		}
		return false
	}

	dir := dirFromFx(b.anchorKind)
	start, end := b.cl.At(b.anchorIdx), b.cl.At(candleIdx)
	bi := makeBi(len(b.bis), dir, b.anchorIdx, candleIdx, extremeVal(start, b.anchorKind), extremeVal(end, kind))
	b.bis = append(b.bis, bi)
	b.anchorIdx, b.anchorKind = candleIdx, kind
	return true
}

// extendOrConfirm runs once a tentative stroke exists: a same-kind fractal
// that is more extreme replaces the stroke's endpoint in place; an
// opposite-kind fractal, if it passes checkPredicate, confirms the current
// stroke as sure and opens the next tentative stroke from its endpoint.
func (b *Builder) extendOrConfirm(candleIdx int, kind kline.FxKind) bool {
	last := b.Last()
	endKind := endFxKindFor(last.dir)

	if kind == endKind {
		if last.sure {
			return false
		}
		newVal := extremeVal(b.cl.At(candleIdx), kind)
		oldVal := extremeVal(b.cl.At(last.endCandleIdx), kind)
		if !moreExtreme(kind, newVal, oldVal) {
			return false
		}
		last.endCandleIdx = candleIdx
		last.endVal = newVal
		return true
	}

	newDir := last.dir.Opposite()
	if !b.checkPredicate(last.endCandleIdx, candleIdx, newDir) {
		return false
	}

	last.sure = true
	start, end := b.cl.At(last.endCandleIdx), b.cl.At(candleIdx)
	next := makeBi(len(b.bis), newDir, last.endCandleIdx, candleIdx, extremeVal(start, endKind), extremeVal(end, kind))
	b.bis = append(b.bis, next)
	return true
}

func makeBi(idx int, dir kline.Direction, startCandleIdx, endCandleIdx int, beginVal, endVal float64) *Bi {
	return &Bi{
		idx:            idx,
		dir:            dir,
		startCandleIdx: startCandleIdx,
		endCandleIdx:   endCandleIdx,
		beginVal:       beginVal,
		endVal:         endVal,
		sure:           false,
	}
}

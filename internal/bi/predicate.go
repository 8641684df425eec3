package bi

import (
	"chanengine/internal/candle"
	"chanengine/internal/kline"
)

// checkPredicate implements the confirmation predicate of §4.2: a minimum
// candle gap (widened by is_strict, and by gap_as_kl counting true price
// gaps as extra separator candles), an fx-check span-dominance test tiered
// by FxCheckMethod, and — when bi_end_is_peak is set — a requirement that
// the end candle be the global extreme of the span, relaxed to "at most
// one candle exceeds it" when bi_allow_sub_peak is also set.
func (b *Builder) checkPredicate(startIdx, endIdx int, dir kline.Direction) bool {
	if b.gapCount(startIdx, endIdx) < b.minGap() {
		return false
	}
	if !b.fxCheckPasses(startIdx, endIdx, dir) {
		return false
	}
	if b.cfg.BiEndIsPeak {
		if b.isGlobalExtreme(startIdx, endIdx, dir) {
			return true
		}
		if b.cfg.BiAllowSubPeak && b.isSubPeak(startIdx, endIdx, dir) {
			return true
		}
		return false
	}
	return true
}

func (b *Builder) minGap() int {
	if b.cfg.IsStrict {
		return 5
	}
	return 4
}

// gapCount is the number of merged candles separating startIdx and endIdx,
// optionally incremented for each adjacent pair within the span whose
// ranges don't overlap at all (a true price gap), per gap_as_kl.
func (b *Builder) gapCount(startIdx, endIdx int) int {
	n := endIdx - startIdx
	if b.cfg.GapAsKl {
		for i := startIdx; i < endIdx; i++ {
			c0, c1 := b.cl.At(i), b.cl.At(i+1)
			if c1.Low > c0.High || c1.High < c0.Low {
				n++
			}
		}
	}
	return n
}

func (b *Builder) fxCheckPasses(startIdx, endIdx int, dir kline.Direction) bool {
	switch b.cfg.FxCheck {
	case FxCheckTotally:
		return true
	case FxCheckLoss:
		if endIdx-1 > startIdx {
			return b.rangeDominance(startIdx, endIdx, endIdx-1, endIdx-1, dir)
		}
		return true
	case FxCheckHalf:
		mid := startIdx + (endIdx-startIdx)/2
		lo := mid
		if lo >= endIdx {
			lo = endIdx - 1
		}
		if lo <= startIdx {
			return true
		}
		return b.rangeDominance(startIdx, endIdx, lo, endIdx-1, dir)
	case FxCheckStrict:
		if endIdx-1 <= startIdx {
			return true
		}
		return b.rangeDominance(startIdx, endIdx, startIdx+1, endIdx-1, dir)
	default:
		return true
	}
}

// rangeDominance checks that every candle in [loLoop, hiLoop] stays inside
// the bound set by the stroke's two endpoint candles, in the direction of
// travel: for an Up stroke no interior candle may exceed the end candle's
// high or undercut the start candle's low (and symmetrically for Down).
func (b *Builder) rangeDominance(startIdx, endIdx, loLoop, hiLoop int, dir kline.Direction) bool {
	startC, endC := b.cl.At(startIdx), b.cl.At(endIdx)
	for i := loLoop; i <= hiLoop; i++ {
		c := b.cl.At(i)
		if dir == kline.Up {
			if c.High > endC.High || c.Low < startC.Low {
				return false
			}
		} else {
			if c.Low < endC.Low || c.High > startC.High {
				return false
			}
		}
	}
	return true
}

func (b *Builder) isGlobalExtreme(startIdx, endIdx int, dir kline.Direction) bool {
	endC := b.cl.At(endIdx)
	for i := startIdx; i <= endIdx; i++ {
		c := b.cl.At(i)
		if dir == kline.Up {
			if c.High > endC.High {
				return false
			}
		} else {
			if c.Low < endC.Low {
				return false
			}
		}
	}
	return true
}

func (b *Builder) isSubPeak(startIdx, endIdx int, dir kline.Direction) bool {
	endC := b.cl.At(endIdx)
	exceed := 0
	for i := startIdx; i <= endIdx; i++ {
		c := b.cl.At(i)
		if dir == kline.Up {
			if c.High > endC.High {
				exceed++
			}
		} else {
			if c.Low < endC.Low {
				exceed++
			}
		}
	}
	return exceed <= 1
}

func extremeVal(c *candle.Candle, kind kline.FxKind) float64 {
	if kind == kline.FxTop {
		return c.High
	}
	return c.Low
}

func moreExtreme(kind kline.FxKind, newVal, oldVal float64) bool {
	if kind == kline.FxTop {
		return newVal > oldVal
	}
	return newVal < oldVal
}

func dirFromFx(k kline.FxKind) kline.Direction {
	if k == kline.FxBottom {
		return kline.Up
	}
	return kline.Down
}

func endFxKindFor(dir kline.Direction) kline.FxKind {
	if dir == kline.Up {
		return kline.FxTop
	}
	return kline.FxBottom
}

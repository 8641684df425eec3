package seg

import "chanengine/internal/kline"

// Source is random access into the layer below, by stable index. Both
// bi.Builder (serving strokes, for C5) and seg.Builder itself (serving
// segments, for C6) satisfy this for their respective element types.
type Source[L kline.IndexedLine] interface {
	At(idx int) L
}

// Builder runs the eigen-fractal segment algorithm (§4.3) over any line
// source satisfying kline.IndexedLine. Instantiated over *bi.Bi it is C5;
// instantiated over *seg.Seg (itself) it is C6 — the same algorithm,
// unmodified, one level up.
type Builder[L kline.IndexedLine] struct {
	cfg *Config
	src Source[L]
	segs []*Seg

	dirSet      bool
	curDir      kline.Direction
	segStartIdx int
	lastFwdIdx  int
	eigen       *eigenList
	closedCount int
}

// NewBuilder creates a segment builder reading lines from src.
func NewBuilder[L kline.IndexedLine](cfg *Config, src Source[L]) *Builder[L] {
	return &Builder[L]{cfg: cfg, src: src, eigen: newEigenList()}
}

// Segments returns the current segment list. The last entry may still be
// tentative (IsSure() == false).
func (b *Builder[L]) Segments() []*Seg { return b.segs }

// Len returns the number of segments produced so far. Together with At,
// this lets a Builder serve as a Source[*Seg] for a nested Builder — the
// C6 instantiation.
func (b *Builder[L]) Len() int { return len(b.segs) }

// At returns the segment at idx.
func (b *Builder[L]) At(idx int) *Seg { return b.segs[idx] }

// Last returns the most recent segment, or nil if none exist yet.
func (b *Builder[L]) Last() *Seg {
	if len(b.segs) == 0 {
		return nil
	}
	return b.segs[len(b.segs)-1]
}

func (b *Builder[L]) extremeAt(idx int, dir kline.Direction) float64 {
	line := b.src.At(idx)
	if dir == kline.Up {
		return line.Low()
	}
	return line.High()
}

func (b *Builder[L]) endExtremeAt(idx int, dir kline.Direction) float64 {
	line := b.src.At(idx)
	if dir == kline.Up {
		return line.High()
	}
	return line.Low()
}

// OnLine processes one newly-confirmed (sure) line from the layer below,
// identified by its stable index idx. It returns true in every case: each
// line seeds the first segment, advances the forward-line cursor (moving
// the open segment's endpoint when the line reaches a new extreme),
// rotates a left-tail tentative segment, feeds the eigen stream, or
// closes a segment and opens the next.
func (b *Builder[L]) OnLine(idx int) bool {
	line := b.src.At(idx)
	dir := line.Dir()

	if !b.dirSet {
		b.dirSet = true
		b.curDir = dir
		b.segStartIdx = idx
		b.lastFwdIdx = idx
		b.eigen = newEigenList()
		begin := b.extremeAt(idx, dir)
		b.segs = append(b.segs, makeSeg(0, dir, idx, idx, begin, begin, false))
		return true
	}

	if dir == b.curDir {
		b.lastFwdIdx = idx
		last := b.Last()
		end := b.endExtremeAt(idx, dir)
		if (dir == kline.Up && end > last.endVal) || (dir == kline.Down && end < last.endVal) {
			last.endLineIdx = idx
			last.endVal = end
		}
		return true
	}

	// Counter-direction line.
	if b.cfg.LeftMethod == LeftAll && b.closedCount == 0 {
		b.openNextTentative(idx, dir)
		return true
	}

	fractalIdx := b.eigen.add(line.High(), line.Low(), b.lastFwdIdx)
	if fractalIdx < 0 {
		return true
	}

	boundaryIdx := b.eigen.boundaryAt(fractalIdx)
	b.Last().sure = true
	b.Last().endLineIdx = boundaryIdx
	b.Last().endVal = b.endExtremeAt(boundaryIdx, b.curDir)
	b.closedCount++

	b.openNextTentative(boundaryIdx, b.curDir.Opposite())
	return true
}

func (b *Builder[L]) openNextTentative(idx int, dir kline.Direction) {
	b.curDir = dir
	b.segStartIdx = idx
	b.lastFwdIdx = idx
	b.eigen = newEigenList()
	begin := b.extremeAt(idx, dir)
	b.segs = append(b.segs, makeSeg(len(b.segs), dir, idx, idx, begin, begin, false))
}

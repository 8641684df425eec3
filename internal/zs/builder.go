package zs

import "chanengine/internal/kline"

// Source is random access into the line sequence (strokes or segments) a
// zone builder consumes, by stable index.
type Source[L kline.IndexedLine] interface {
	At(idx int) L
}

// Builder runs the overlap-zone algorithm (§4.5) over any line source
// satisfying kline.IndexedLine — the same generic shape used by seg, so a
// Builder can run over bi.Bi (bi-zones) or seg.Seg (seg-zones, and the
// over_seg algorithm) without modification.
type Builder[L kline.IndexedLine] struct {
	cfg *Config
	src Source[L]
	zones []*Zone

	// pending holds the indices of lines buffered while waiting to reach
	// the overlap threshold, plus the running intersection of their
	// ranges.
	pending    []int
	pendingLo  float64
	pendingHi  float64
	pendingSet bool

	openIdx int // index into zones of the currently-open zone, or -1
}

// NewBuilder creates a zone builder reading lines from src.
func NewBuilder[L kline.IndexedLine](cfg *Config, src Source[L]) *Builder[L] {
	return &Builder[L]{cfg: cfg, src: src, openIdx: -1}
}

// Zones returns the current zone list, in append order.
func (b *Builder[L]) Zones() []*Zone { return b.zones }

func (b *Builder[L]) threshold() int {
	if b.cfg.OneBiZs {
		return 1
	}
	return 3
}

// OnLine processes one newly-confirmed line from the layer below,
// identified by its stable index idx.
func (b *Builder[L]) OnLine(idx int) {
	line := b.src.At(idx)

	if b.openIdx >= 0 {
		open := b.zones[b.openIdx]
		if overlaps(open.lower, open.upper, line.Low(), line.High()) {
			open.endLineIdx = idx
			if line.High() > open.peakHigh {
				open.peakHigh = line.High()
			}
			if line.Low() < open.peakLow {
				open.peakLow = line.Low()
			}
			return
		}
		open.closed = true
		v := idx
		open.exitLineIdx = &v
		b.openIdx = -1
		b.tryCombine()
		// fall through: this line becomes the start of a fresh pending run
	}

	if !b.pendingSet {
		b.pending = []int{idx}
		b.pendingLo, b.pendingHi = line.Low(), line.High()
		b.pendingSet = true
	} else {
		newLo := maxF(b.pendingLo, line.Low())
		newHi := minF(b.pendingHi, line.High())
		if newLo > newHi {
			b.pending = []int{idx}
			b.pendingLo, b.pendingHi = line.Low(), line.High()
		} else {
			b.pending = append(b.pending, idx)
			b.pendingLo, b.pendingHi = newLo, newHi
		}
	}

	if len(b.pending) >= b.threshold() {
		b.openZoneFromPending()
	}
}

func (b *Builder[L]) openZoneFromPending() {
	members := b.pending
	first := b.src.At(members[0])

	z := &Zone{
		idx:          len(b.zones),
		orientation:  first.Dir(),
		startLineIdx: members[0],
		endLineIdx:   members[len(members)-1],
		upper:        b.pendingHi,
		lower:        b.pendingLo,
	}
	z.peakHigh, z.peakLow = first.High(), first.Low()
	for _, i := range members {
		l := b.src.At(i)
		if l.High() > z.peakHigh {
			z.peakHigh = l.High()
		}
		if l.Low() < z.peakLow {
			z.peakLow = l.Low()
		}
	}
	if members[0] > 0 {
		v := members[0] - 1
		z.entryLineIdx = &v
		z.orientation = b.src.At(v).Dir()
	}

	b.zones = append(b.zones, z)
	b.openIdx = len(b.zones) - 1
	b.pending = nil
	b.pendingSet = false
}

// tryCombine implements need_combine: when the two most recent closed
// zones share orientation, are separated by exactly one line (a's exit
// line, directly before c's first member), and their [lower, upper]
// ranges overlap each other, a new zone recording both as sub-zones is
// appended (§4.5). a and c keep their published indices and geometry untouched —
// only the new combined zone's idx is freshly allocated — so the combine
// never rewrites an already-published zone (§3 invariant 4) or reuses an
// index for a different entity (§8 property 1).
func (b *Builder[L]) tryCombine() {
	if !b.cfg.NeedCombine || len(b.zones) < 2 {
		return
	}
	n := len(b.zones)
	a, c := b.zones[n-2], b.zones[n-1]
	if !a.closed || !c.closed {
		return
	}
	if a.orientation != c.orientation {
		return
	}
	aExit, ok := a.ExitLineIdx()
	if !ok || aExit != c.startLineIdx-1 {
		return
	}
	// The single bridging line is, by construction, the line whose
	// non-overlap with a closed a in the first place (OnLine's own
	// overlap check against a.lower/a.upper), so re-testing the bridge
	// line's own range against a can never hold. need_combine instead
	// asks whether the two zones themselves are still close enough in
	// price to be read as one consolidation.
	if !overlaps(a.lower, a.upper, c.lower, c.upper) {
		return
	}

	merged := &Zone{
		idx:          len(b.zones),
		orientation:  a.orientation,
		startLineIdx: a.startLineIdx,
		endLineIdx:   c.endLineIdx,
		entryLineIdx: a.entryLineIdx,
		exitLineIdx:  c.exitLineIdx,
		closed:       true,
		subZoneIdxs:  append([]int{a.idx, c.idx}, append(append([]int{}, a.subZoneIdxs...), c.subZoneIdxs...)...),
	}
	switch b.cfg.CombineMode {
	case CombinePeak:
		merged.upper = maxF(a.upper, c.upper)
		merged.lower = minF(a.lower, c.lower)
	default: // CombineZS
		merged.upper = minF(a.upper, c.upper)
		merged.lower = maxF(a.lower, c.lower)
	}
	merged.peakHigh = maxF(a.peakHigh, c.peakHigh)
	merged.peakLow = minF(a.peakLow, c.peakLow)

	b.zones = append(b.zones, merged)
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

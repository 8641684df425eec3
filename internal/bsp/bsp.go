package bsp

import "chanengine/internal/cherr"

// Bsp is a classified turning point attached to a stroke or segment (§3).
type Bsp struct {
	idx        int
	lineIdx    int
	isBuy      bool
	types      map[TargetType]bool
	relateBsp1 *int
	features   map[string]float64
}

// Index is this bsp's stable position in the bsp list.
func (b *Bsp) Index() int { return b.idx }

// LineIdx is the index of the line (stroke or segment) this bsp is
// attached to.
func (b *Bsp) LineIdx() int { return b.lineIdx }

// IsBuy reports whether this is a buy-side (vs. sell-side) point.
func (b *Bsp) IsBuy() bool { return b.isBuy }

// HasType reports whether t is among this bsp's type tags.
func (b *Bsp) HasType(t TargetType) bool { return b.types[t] }

// Types returns the full set of type tags carried by this bsp.
func (b *Bsp) Types() map[TargetType]bool { return b.types }

// RelateBsp1 returns the index of the related type-1 bsp this one's
// classification derives from (T2/T2S/T3A/T3B), if any.
func (b *Bsp) RelateBsp1() (int, bool) {
	if b.relateBsp1 == nil {
		return 0, false
	}
	return *b.relateBsp1, true
}

// Feature returns a named diagnostic scalar (e.g. the divergence metric
// value that triggered this bsp).
func (b *Bsp) Feature(name string) (float64, bool) {
	v, ok := b.features[name]
	return v, ok
}

// addAnotherType adds t to this bsp's type set, idempotently, and
// asserts a relate_bsp1 collision as an internal invariant violation
// (§4.6: "collision on relate_bsp1 is an invariant violation to assert").
func (b *Bsp) addAnotherType(t TargetType, relateBsp1 *int) error {
	if b.relateBsp1 != nil && relateBsp1 != nil && *b.relateBsp1 != *relateBsp1 {
		err := cherr.New("bsp", cherr.InternalInvariant, "relate_bsp1 collision on existing bsp")
		cherr.AssertInvariant(err)
		return err
	}
	if b.types == nil {
		b.types = make(map[TargetType]bool)
	}
	b.types[t] = true
	if b.relateBsp1 == nil {
		b.relateBsp1 = relateBsp1
	}
	return nil
}

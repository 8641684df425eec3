package zs

import "chanengine/internal/kline"

// Zone is a consolidation region formed by a maximal contiguous run of
// overlapping consecutive lines (§3, §4.5).
type Zone struct {
	idx           int
	orientation   kline.Direction
	startLineIdx  int
	endLineIdx    int
	upper         float64
	lower         float64
	peakHigh      float64
	peakLow       float64
	entryLineIdx  *int
	exitLineIdx   *int
	closed        bool
	subZoneIdxs   []int
}

// Index is this zone's stable position in the zone list.
func (z *Zone) Index() int { return z.idx }

// Orientation is inherited from the entry line.
func (z *Zone) Orientation() kline.Direction { return z.orientation }

// Upper is min(high) across the zone's originating (first-window) members.
func (z *Zone) Upper() float64 { return z.upper }

// Lower is max(low) across the zone's originating (first-window) members.
func (z *Zone) Lower() float64 { return z.lower }

// PeakHigh is the running max high across every member ever admitted.
func (z *Zone) PeakHigh() float64 { return z.peakHigh }

// PeakLow is the running min low across every member ever admitted.
func (z *Zone) PeakLow() float64 { return z.peakLow }

// StartLineIdx is the index of the zone's first member line.
func (z *Zone) StartLineIdx() int { return z.startLineIdx }

// EndLineIdx is the index of the zone's most recent member line.
func (z *Zone) EndLineIdx() int { return z.endLineIdx }

// EntryLineIdx is the line immediately preceding the first member, if any.
func (z *Zone) EntryLineIdx() (int, bool) {
	if z.entryLineIdx == nil {
		return 0, false
	}
	return *z.entryLineIdx, true
}

// ExitLineIdx is the line that closed this zone, absent while open.
func (z *Zone) ExitLineIdx() (int, bool) {
	if z.exitLineIdx == nil {
		return 0, false
	}
	return *z.exitLineIdx, true
}

// Closed reports whether the zone has an exit line.
func (z *Zone) Closed() bool { return z.closed }

// SubZoneIdxs lists the zone indices absorbed into this one when
// need_combine folded adjacent same-orientation zones together.
func (z *Zone) SubZoneIdxs() []int { return z.subZoneIdxs }

func overlaps(lo, hi, lineLow, lineHigh float64) bool {
	return lineLow <= hi && lineHigh >= lo
}

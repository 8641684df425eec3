package bsp

import (
	"chanengine/internal/kline"
	"chanengine/internal/zs"
)

// Source is random access into the line sequence (strokes or segments)
// the bsp engine classifies, by stable index.
type Source[L kline.IndexedLine] interface {
	At(idx int) L
}

// MetricFunc evaluates a configured macd_algo divergence metric over the
// span [startLineIdx, endLineIdx] of the underlying line sequence, for
// the named algorithm. The analyzer façade supplies this, closing over
// the macd.Line and candle list so this package stays free of a direct
// macd/candle dependency beyond the Algo enum in Config.
type MetricFunc func(startLineIdx, endLineIdx int, algo string) float64

// EmitFunc is notified once per successful classification (new bsp or an
// additional type tagged onto an existing one), so the caller can drive a
// chanmetrics counter without this package importing chanmetrics directly
// (the same injection shape as MetricFunc).
type EmitFunc func(kind TargetType, isBuy bool)

// Builder runs the BS-point classification rules (§4.6) over a line
// source, its zone list, and an externally-supplied divergence metric.
type Builder[L kline.IndexedLine] struct {
	bConf, sConf *Config
	src          Source[L]
	zones        func() []*zs.Zone
	metric       MetricFunc
	onEmit       EmitFunc

	bsps     []*Bsp
	byLine   map[int]int  // lineIdx -> bsp idx, for the most recent bsp on that line
	t2sLevel map[int]uint // lineIdx -> chain depth, for max_bsp2s_lv bookkeeping
	lastErr  error        // set by emit on a relate_bsp1 collision, surfaced by OnLine
}

// NewBuilder creates a bsp engine. zones and metric are supplied by the
// caller (ultimately the analyzer façade): zones returns the current
// zone list for this layer (bi-zones or seg-zones), metric evaluates a
// macd_algo divergence span. onEmit may be nil.
func NewBuilder[L kline.IndexedLine](
	bConf, sConf *Config,
	src Source[L],
	zones func() []*zs.Zone,
	metric MetricFunc,
	onEmit EmitFunc,
) *Builder[L] {
	return &Builder[L]{
		bConf: bConf, sConf: sConf, src: src, zones: zones, metric: metric, onEmit: onEmit,
		byLine: make(map[int]int),
	}
}

// Bsps returns the current bsp list, in append order.
func (b *Builder[L]) Bsps() []*Bsp { return b.bsps }

func (b *Builder[L]) cfgFor(isBuy bool) *Config {
	if isBuy {
		return b.bConf
	}
	return b.sConf
}

// OnLine processes one newly-confirmed line, classifying it against the
// current zone list. It returns the bsps touched (created or re-tagged)
// by this call, and a non-nil error if a relate_bsp1 collision was
// detected — the caller must treat that as an internal invariant and
// abort the enclosing AddBar.
func (b *Builder[L]) OnLine(idx int) ([]*Bsp, error) {
	line := b.src.At(idx)
	dir := line.Dir()
	isBuy := dir == kline.Down // a line that just finished going down ends at a trough: a buy candidate
	cfg := b.cfgFor(isBuy)
	b.lastErr = nil

	var emitted []*Bsp
	if t1 := b.tryT1(idx, line, isBuy, cfg); t1 != nil {
		emitted = append(emitted, t1...)
	}
	if b.lastErr != nil {
		return emitted, b.lastErr
	}
	if t2 := b.tryT2(idx, line, isBuy, cfg); t2 != nil {
		emitted = append(emitted, t2)
	}
	if b.lastErr != nil {
		return emitted, b.lastErr
	}
	if t2s := b.tryT2S(idx, line, isBuy, cfg); t2s != nil {
		emitted = append(emitted, t2s)
	}
	if b.lastErr != nil {
		return emitted, b.lastErr
	}
	if t3 := b.tryT3(idx, line, isBuy, cfg); t3 != nil {
		emitted = append(emitted, t3)
	}
	return emitted, b.lastErr
}

func (b *Builder[L]) emit(lineIdx int, isBuy bool, t TargetType, relateBsp1 *int, features map[string]float64) *Bsp {
	if existing, ok := b.byLine[lineIdx]; ok {
		bsp := b.bsps[existing]
		if err := bsp.addAnotherType(t, relateBsp1); err != nil {
			b.lastErr = err
			return nil
		}
		if b.onEmit != nil {
			b.onEmit(t, isBuy)
		}
		return bsp
	}
	bsp := &Bsp{
		idx: len(b.bsps), lineIdx: lineIdx, isBuy: isBuy,
		types: map[TargetType]bool{t: true}, relateBsp1: relateBsp1, features: features,
	}
	b.bsps = append(b.bsps, bsp)
	b.byLine[lineIdx] = bsp.idx
	if b.onEmit != nil {
		b.onEmit(t, isBuy)
	}
	return bsp
}

func (b *Builder[L]) countTraversedZones(zones []*zs.Zone, upToIdx int, isBuy bool, onlyMultibi bool) uint {
	var n uint
	for _, z := range zones {
		if z.EndLineIdx() > upToIdx {
			continue
		}
		if onlyMultibi && z.EndLineIdx() == z.StartLineIdx() {
			continue
		}
		n++
	}
	return n
}

// tryT1 classifies idx as T1 (leaves the zone with divergence) or T1P
// (stops short of leaving, but still diverges).
func (b *Builder[L]) tryT1(idx int, line L, isBuy bool, cfg *Config) []*Bsp {
	if !cfg.TargetTypes[T1] && !cfg.TargetTypes[T1P] {
		return nil
	}
	zones := b.zones()
	var out []*Bsp
	for _, z := range zones {
		exit, hasExit := z.ExitLineIdx()
		isExit := hasExit && exit == idx
		isRetest := !hasExit && z.EndLineIdx() == idx && z.Orientation() != line.Dir()
		if !isExit && !isRetest {
			continue
		}
		if z.Orientation() == line.Dir() {
			continue // divergence is evaluated against a reversal away from the zone's trend
		}

		traversed := b.countTraversedZones(zones, idx, isBuy, cfg.Bsp1OnlyMultibiZs)
		if traversed < cfg.MinZsCnt {
			continue
		}
		if cfg.Bs1Peak {
			if isBuy && line.Low() > z.PeakLow() {
				continue
			}
			if !isBuy && line.High() < z.PeakHigh() {
				continue
			}
		}

		enterLineIdx := z.StartLineIdx()
		if e, ok := z.EntryLineIdx(); ok {
			enterLineIdx = e
		}
		enterMetric := b.metric(enterLineIdx, enterLineIdx, string(cfg.MacdAlgo))
		exitMetric := b.metric(idx, idx, string(cfg.MacdAlgo))
		if enterMetric == 0 {
			continue
		}
		if exitMetric >= cfg.DivergenceRate*enterMetric {
			continue
		}

		t := T1
		if isRetest {
			t = T1P
		}
		if !cfg.TargetTypes[t] {
			continue
		}
		features := map[string]float64{"enter_metric": enterMetric, "exit_metric": exitMetric}
		if bsp := b.emit(idx, isBuy, t, nil, features); bsp != nil {
			out = append(out, bsp)
		}
	}
	return out
}

// tryT2 classifies the line immediately after a T1, in the opposite
// direction, with a bounded retracement.
func (b *Builder[L]) tryT2(idx int, line L, isBuy bool, cfg *Config) *Bsp {
	if !cfg.TargetTypes[T2] || idx == 0 {
		return nil
	}
	prevIdx := idx - 1
	t1BspIdx, ok := b.byLine[prevIdx]
	if !ok || !b.bsps[t1BspIdx].HasType(T1) {
		return nil
	}
	t1Line := b.src.At(prevIdx)
	if t1Line.Dir() == line.Dir() {
		return nil
	}
	amp := t1Line.High() - t1Line.Low()
	if amp <= 0 {
		return nil
	}
	retrace := (line.High() - line.Low()) / amp
	if retrace > cfg.MaxBs2Rate {
		return nil
	}
	rel := t1BspIdx
	return b.emit(idx, isBuy, T2, &rel, map[string]float64{"retrace": retrace})
}

// tryT2S classifies a subsequent same-side retest of a T2, bounded by
// max_bsp2s_lv.
func (b *Builder[L]) tryT2S(idx int, line L, isBuy bool, cfg *Config) *Bsp {
	if !cfg.TargetTypes[T2S] || !cfg.Bsp2sFollow2 || idx < 2 {
		return nil
	}
	priorIdx := idx - 2
	priorBspIdx, ok := b.byLine[priorIdx]
	if !ok {
		return nil
	}
	prior := b.bsps[priorBspIdx]
	if !prior.HasType(T2) && !prior.HasType(T2S) {
		return nil
	}
	priorLine := b.src.At(priorIdx)
	if priorLine.Dir() != line.Dir() {
		return nil
	}
	rel, hasRel := prior.RelateBsp1()
	if !hasRel {
		return nil
	}
	lv := uint(1)
	if prior.HasType(T2S) {
		lv = b.t2sLevel[priorIdx] + 1
	}
	if cfg.MaxBsp2sLv != nil && lv > *cfg.MaxBsp2sLv {
		return nil
	}
	if b.t2sLevel == nil {
		b.t2sLevel = make(map[int]uint)
	}
	b.t2sLevel[idx] = lv
	return b.emit(idx, isBuy, T2S, &rel, nil)
}

// tryT3 classifies a line that stays clear of the most recent closed zone
// (a buy whose low holds above the zone's upper bound, a sell whose high
// holds below its lower bound) as T3A, or as T3B when the line just
// before it already carries a bsp. This is a simplified reading of §4.6's
// T3A/T3B rule: only the last zone in the list is examined, whatever its
// orientation, and no re-entry history is kept.
func (b *Builder[L]) tryT3(idx int, line L, isBuy bool, cfg *Config) *Bsp {
	if !cfg.TargetTypes[T3A] && !cfg.TargetTypes[T3B] {
		return nil
	}
	zones := b.zones()
	if len(zones) == 0 {
		return nil
	}
	z := zones[len(zones)-1]
	if !z.Closed() {
		return nil
	}
	exit, ok := z.ExitLineIdx()
	if !ok {
		return nil
	}
	if cfg.StrictBsp3 && exit != idx-1 && exit != idx {
		return nil
	}

	breaksOut := (isBuy && line.Low() > z.Upper()) || (!isBuy && line.High() < z.Lower())
	if !breaksOut {
		return nil
	}
	if cfg.Bsp3Peak {
		if isBuy && line.Low() < z.PeakHigh() {
			return nil
		}
		if !isBuy && line.High() > z.PeakLow() {
			return nil
		}
	}

	var rel *int
	if cfg.Bsp3Follow1 {
		if t1Idx, ok := b.byLine[z.StartLineIdx()]; ok {
			v := t1Idx
			rel = &v
		}
	}

	t := T3A
	if _, reentered := b.byLine[idx-1]; reentered && cfg.TargetTypes[T3B] {
		t = T3B
	}
	if !cfg.TargetTypes[t] {
		return nil
	}
	return b.emit(idx, isBuy, t, rel, nil)
}

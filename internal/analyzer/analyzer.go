package analyzer

import (
	"log/slog"
	"math"
	"strconv"
	"time"

	"chanengine/internal/bi"
	"chanengine/internal/bsp"
	"chanengine/internal/candle"
	"chanengine/internal/chanlog"
	"chanengine/internal/chanmetrics"
	"chanengine/internal/cherr"
	"chanengine/internal/kline"
	"chanengine/internal/macd"
	"chanengine/internal/seg"
	"chanengine/internal/zs"
)

// Analyzer is the single mutation entry point of the engine: it owns
// every layer's arena and drives them, in the fixed C1→C8 order, for
// each incoming bar.
type Analyzer struct {
	cfg *Config
	log *chanlog.Logger
	met *chanmetrics.Metrics

	bars []kline.Bar

	candles *candle.List
	macd    *macd.Line

	strokes *bi.Builder
	segs    *seg.Builder[*bi.Bi]
	segSegs *seg.Builder[*seg.Seg]

	biZs  *zs.Builder[*bi.Bi]
	segZs *zs.Builder[*seg.Seg]

	biBsp  *bsp.Builder[*bi.Bi]
	segBsp *bsp.Builder[*seg.Seg]

	// biLenSeen/segLenSeen track each layer's length as of the end of the
	// previous AddBar. A builder grows by appending the next tentative line
	// once the previous one is confirmed sure (§4.2, §4.3), so a length
	// increase from n to n+1 (n>=1) normally means the line at n-1 just
	// became sure — that is the index replayed into the layer above. The
	// exception is left_method=all, whose left-tail segments are appended
	// without confirming the previous one; cascade does not replay those.
	biLenSeen  int
	segLenSeen int
}

// New creates an analyzer instance for one symbol, wiring every layer's
// builder together and instrumenting it with a private metrics registry
// and a symbol-scoped structured logger.
func New(symbol string, cfg *Config) (*Analyzer, error) {
	macdCfg, err := macd.NewConfig()
	if err != nil {
		return nil, err
	}

	a := &Analyzer{
		cfg:     cfg,
		log:     chanlog.New(symbol, slog.LevelInfo, nil),
		met:     chanmetrics.New(symbol),
		candles: candle.NewList(),
		macd:    macd.NewLine(macdCfg),
	}

	a.strokes = bi.NewBuilder(cfg.Bi, a.candles)
	a.segs = seg.NewBuilder[*bi.Bi](cfg.Seg, a.strokes)
	a.segSegs = seg.NewBuilder[*seg.Seg](cfg.Seg, a.segs)

	a.biZs = zs.NewBuilder[*bi.Bi](cfg.Zs, a.strokes)
	a.segZs = zs.NewBuilder[*seg.Seg](cfg.Zs, a.segs)

	a.biBsp = bsp.NewBuilder[*bi.Bi](cfg.BspBuy, cfg.BspSell, a.strokes, a.biZoneSource, a.biMetric, a.onBspEmit)
	a.segBsp = bsp.NewBuilder[*seg.Seg](cfg.BspBuy, cfg.BspSell, a.segs, a.segZoneSource, a.segMetric, a.onBspEmit)

	return a, nil
}

// biZoneSource selects the zone list the stroke-level bsp engine
// classifies against: the bi-level zones under zs_algo=normal, or the
// segment-level zones when zs_algo=over_seg (§9's resolution of the
// over_seg open question — here applied to which zone set governs
// stroke-level BS-points).
func (a *Analyzer) biZoneSource() []*zs.Zone {
	if a.cfg.Zs.ZsAlgo == zs.AlgoOverSeg {
		return a.segZs.Zones()
	}
	return a.biZs.Zones()
}

func (a *Analyzer) segZoneSource() []*zs.Zone { return a.segZs.Zones() }

// onBspEmit is the EmitFunc both bsp builders report successful
// classifications through, driving chan_bsp_emitted_total by type and
// side (§4.8).
func (a *Analyzer) onBspEmit(kind bsp.TargetType, isBuy bool) {
	a.met.BspEmitted.WithLabelValues(string(kind), strconv.FormatBool(isBuy)).Inc()
}

// biMetric evaluates a macd_algo divergence metric over the merged-candle
// span a stroke range covers.
func (a *Analyzer) biMetric(startLineIdx, endLineIdx int, algo string) float64 {
	startCandle := a.strokes.At(startLineIdx).StartCandleIdx()
	endCandle := a.strokes.At(endLineIdx).EndCandleIdx()
	v, err := macd.Metric(macd.Algo(algo), a.candles, a.macd, startCandle, endCandle)
	if err != nil {
		return 0
	}
	return v
}

// segMetric evaluates a macd_algo divergence metric over the
// merged-candle span a segment range covers, by following the segment's
// stroke-index bounds down to their candle-index bounds.
func (a *Analyzer) segMetric(startLineIdx, endLineIdx int, algo string) float64 {
	startBi := a.segs.At(startLineIdx).StartLineIdx()
	endBi := a.segs.At(endLineIdx).EndLineIdx()
	startCandle := a.strokes.At(startBi).StartCandleIdx()
	endCandle := a.strokes.At(endBi).EndCandleIdx()
	v, err := macd.Metric(macd.Algo(algo), a.candles, a.macd, startCandle, endCandle)
	if err != nil {
		return 0
	}
	return v
}

// AddBar advances the pipeline by one bar (§4.7's add_k). On an
// InvalidBar it validates before mutating any state, so the engine is
// left untouched. On an InternalInvariant it aborts the call and returns
// the error; the analyzer must be re-initialized to recover (§7).
func (a *Analyzer) AddBar(bar kline.Bar) error {
	start := time.Now()
	defer a.met.ObserveAddBar(start)

	if err := a.validateBar(bar); err != nil {
		a.met.InvalidBars.Inc()
		return err
	}
	bar.Idx = len(a.bars)
	a.bars = append(a.bars, bar)
	a.met.BarsTotal.Inc()

	result := a.candles.AddBar(bar)
	if result.Emitted {
		a.macd.Add(a.candles.At(result.NewCandleIdx).Close)
		a.met.CandleCount.Set(float64(a.candles.Len()))
		a.log.Component("candle").Debug("candle emitted", "idx", result.NewCandleIdx)
	}
	if result.FractalIdx >= 0 {
		beforeBi := a.strokes.Len()
		a.strokes.OnFractal(result.FractalIdx)
		a.met.BiCount.Set(float64(a.strokes.Len()))
		if a.strokes.Len() < beforeBi {
			a.met.BiRevocations.Inc()
		}
	}

	if err := a.cascade(); err != nil {
		a.met.InvariantErr.Inc()
		return err
	}
	return nil
}

// sureTransition reports the index that just became sure when a layer
// grows from prevLen to its current length, per the length-n-to-n+1
// convention documented on Analyzer.
func sureTransition(prevLen, curLen int) (int, bool) {
	if curLen == prevLen+1 && prevLen >= 1 {
		return prevLen - 1, true
	}
	return 0, false
}

// cascade drives C5 through C8 in the fixed order the design specifies
// ("stroke changes drive C5, then C6, then C7 and C8"): a newly-sure
// stroke feeds the segment builder; a newly-sure segment (which may only
// emerge several bars later) feeds the seg-of-seg builder; then both
// zone builders run; then both bsp builders run.
func (a *Analyzer) cascade() error {
	biIdx, biSure := sureTransition(a.biLenSeen, a.strokes.Len())
	a.biLenSeen = a.strokes.Len()
	if biSure {
		a.segs.OnLine(biIdx)
		a.log.Component("seg").Debug("stroke fed to segment builder", "bi_idx", biIdx)
	}
	a.met.SegCount.Set(float64(a.segs.Len()))

	segIdx, segSure := sureTransition(a.segLenSeen, a.segs.Len())
	a.segLenSeen = a.segs.Len()
	if segSure && !a.segs.At(segIdx).IsSure() {
		segSure = false
	}
	if segSure {
		a.segSegs.OnLine(segIdx)
	}
	a.met.SegSegCount.Set(float64(a.segSegs.Len()))

	if biSure {
		a.biZs.OnLine(biIdx)
	}
	if segSure {
		a.segZs.OnLine(segIdx)
	}
	a.met.BiZsCount.Set(float64(len(a.biZs.Zones())))
	a.met.SegZsCount.Set(float64(len(a.segZs.Zones())))

	if biSure {
		if _, err := a.biBsp.OnLine(biIdx); err != nil {
			return err
		}
	}
	if segSure {
		if _, err := a.segBsp.OnLine(segIdx); err != nil {
			return err
		}
	}
	a.met.BiBspCount.Set(float64(len(a.biBsp.Bsps())))
	a.met.SegBspCount.Set(float64(len(a.segBsp.Bsps())))
	return nil
}

// validateBar enforces the InvalidBar contract (§7): strictly increasing
// timestamps and finite OHLC values.
func (a *Analyzer) validateBar(bar kline.Bar) error {
	if len(a.bars) > 0 && !bar.Time.After(a.bars[len(a.bars)-1].Time) {
		return cherr.New("analyzer", cherr.InvalidBar, "timestamp must strictly increase")
	}
	for _, v := range []float64{bar.Open, bar.High, bar.Low, bar.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return cherr.New("analyzer", cherr.InvalidBar, "non-finite price")
		}
	}
	if bar.High < bar.Low {
		return cherr.New("analyzer", cherr.InvalidBar, "high below low")
	}
	return nil
}

// BarList returns the raw bar store (C1), read-only.
func (a *Analyzer) BarList() []kline.Bar { return a.bars }

// CandleList returns the merged-candle list (C2/C3), read-only.
func (a *Analyzer) CandleList() *candle.List { return a.candles }

// BiList returns the stroke list (C4), read-only.
func (a *Analyzer) BiList() []*bi.Bi { return a.strokes.Strokes() }

// SegList returns the segment list (C5), read-only.
func (a *Analyzer) SegList() []*seg.Seg { return a.segs.Segments() }

// SegSegList returns the seg-of-seg list (C6), read-only.
func (a *Analyzer) SegSegList() []*seg.Seg { return a.segSegs.Segments() }

// BiZsList returns the stroke-level zone list (C7), read-only.
func (a *Analyzer) BiZsList() []*zs.Zone { return a.biZs.Zones() }

// SegZsList returns the segment-level zone list (C7), read-only.
func (a *Analyzer) SegZsList() []*zs.Zone { return a.segZs.Zones() }

// BiBspList returns the stroke-level bsp list (C8), surfacing only those
// attached to sure strokes (§4.6 revocation rule).
func (a *Analyzer) BiBspList() []*bsp.Bsp {
	return filterSure(a.biBsp.Bsps(), func(idx int) bool { return a.strokes.At(idx).IsSure() })
}

// SegBspList returns the segment-level bsp list (C8), surfacing only
// those attached to sure segments.
func (a *Analyzer) SegBspList() []*bsp.Bsp {
	return filterSure(a.segBsp.Bsps(), func(idx int) bool { return a.segs.At(idx).IsSure() })
}

func filterSure(bsps []*bsp.Bsp, isSure func(idx int) bool) []*bsp.Bsp {
	out := make([]*bsp.Bsp, 0, len(bsps))
	for _, b := range bsps {
		if isSure(b.LineIdx()) {
			out = append(out, b)
		}
	}
	return out
}

package macd

import (
	"chanengine/internal/candle"
	"chanengine/internal/cherr"
)

// Algo is the divergence metric a BS-point comparison is evaluated under
// (§4.6's macd_algo). Each variant is a small pure function over the
// candle/MACD span a line (stroke or segment) covers — dispatched by an
// exhaustive switch rather than a registry, per the design's preference for
// tagged-variant config over dynamic method lookup.
type Algo string

const (
	AlgoArea         Algo = "area"          // signed sum of the MACD histogram
	AlgoFullArea     Algo = "full_area"     // sum of |histogram|, no zero-crossing cancellation
	AlgoPeak         Algo = "peak"          // max |histogram| over the span
	AlgoDiff         Algo = "diff"          // |DIF| at the span's end
	AlgoSlope        Algo = "slope"         // price amplitude / span length
	AlgoAmp          Algo = "amp"           // price amplitude (|high-low| of the span)
	AlgoVolume       Algo = "volume"        // total traded volume over the span
	AlgoAmount       Algo = "amount"        // total traded amount (volume*price) over the span
	AlgoVolumeAvg    Algo = "volume_avg"    // average volume per candle over the span
	AlgoAmountAvg    Algo = "amount_avg"    // average amount per candle over the span
	AlgoTurnrateAvg  Algo = "turnrate_avg"  // average volume/amount ratio, a turnover-rate proxy
	AlgoRSI          Algo = "rsi"           // Wilder RSI computed over the span's closes
)

// Metric evaluates algo over the merged-candle span [startIdx, endIdx]
// (inclusive), reading MACD items at the same indices (the line's macd
// series is kept in lockstep with its candle list — one item per candle).
func Metric(algo Algo, cl *candle.List, line *Line, startIdx, endIdx int) (float64, error) {
	if startIdx < 0 || endIdx >= cl.Len() || startIdx > endIdx {
		err := cherr.New("macd", cherr.InternalInvariant, "metric span out of range")
		cherr.AssertInvariant(err)
		return 0, err
	}
	switch algo {
	case AlgoArea:
		var sum float64
		for i := startIdx; i <= endIdx; i++ {
			sum += line.At(i).Macd
		}
		return sum, nil
	case AlgoFullArea:
		var sum float64
		for i := startIdx; i <= endIdx; i++ {
			sum += abs(line.At(i).Macd)
		}
		return sum, nil
	case AlgoPeak:
		var peak float64
		for i := startIdx; i <= endIdx; i++ {
			if v := abs(line.At(i).Macd); v > peak {
				peak = v
			}
		}
		return peak, nil
	case AlgoDiff:
		return abs(line.At(endIdx).Dif), nil
	case AlgoSlope:
		amp, _ := Metric(AlgoAmp, cl, line, startIdx, endIdx)
		n := float64(endIdx - startIdx + 1)
		return amp / n, nil
	case AlgoAmp:
		hi, lo := cl.At(startIdx).High, cl.At(startIdx).Low
		for i := startIdx + 1; i <= endIdx; i++ {
			c := cl.At(i)
			if c.High > hi {
				hi = c.High
			}
			if c.Low < lo {
				lo = c.Low
			}
		}
		return hi - lo, nil
	case AlgoVolume:
		var sum float64
		for i := startIdx; i <= endIdx; i++ {
			sum += cl.At(i).Volume
		}
		return sum, nil
	case AlgoAmount:
		var sum float64
		for i := startIdx; i <= endIdx; i++ {
			sum += cl.At(i).Amount
		}
		return sum, nil
	case AlgoVolumeAvg:
		sum, _ := Metric(AlgoVolume, cl, line, startIdx, endIdx)
		return sum / float64(endIdx-startIdx+1), nil
	case AlgoAmountAvg:
		sum, _ := Metric(AlgoAmount, cl, line, startIdx, endIdx)
		return sum / float64(endIdx-startIdx+1), nil
	case AlgoTurnrateAvg:
		var sum float64
		n := 0
		for i := startIdx; i <= endIdx; i++ {
			c := cl.At(i)
			if c.Amount != 0 {
				sum += c.Volume / c.Amount
				n++
			}
		}
		if n == 0 {
			return 0, nil
		}
		return sum / float64(n), nil
	case AlgoRSI:
		return rsi(cl, startIdx, endIdx), nil
	default:
		return 0, cherr.New("macd", cherr.InvalidConfig, "unknown macd_algo")
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// rsi computes Wilder's RSI over the closes of [startIdx, endIdx], seeded
// from the first candle's close with no prior gain/loss history.
func rsi(cl *candle.List, startIdx, endIdx int) float64 {
	var gain, loss float64
	n := endIdx - startIdx
	if n <= 0 {
		return 50
	}
	for i := startIdx + 1; i <= endIdx; i++ {
		d := cl.At(i).Close - cl.At(i-1).Close
		if d >= 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(n)
	avgLoss := loss / float64(n)
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

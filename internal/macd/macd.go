// Package macd computes the incremental MACD line (fast/slow EMA, DIF, DEA)
// that the bsp divergence tests (§4.6) are evaluated against. One value is
// appended per emitted merged candle, never per raw bar.
package macd

import "chanengine/internal/cherr"

// Config holds the three EMA periods. Defaults (12/26/9) match classical
// MACD and czsc's CMACD::new usage throughout the original library.
type Config struct {
	FastPeriod   int `validate:"min=1"`
	SlowPeriod   int `validate:"min=1,gtfield=FastPeriod"`
	SignalPeriod int `validate:"min=1"`
}

// Option mutates a Config under construction.
type Option func(*Config)

// WithFastPeriod sets the fast EMA period.
func WithFastPeriod(n int) Option { return func(c *Config) { c.FastPeriod = n } }

// WithSlowPeriod sets the slow EMA period.
func WithSlowPeriod(n int) Option { return func(c *Config) { c.SlowPeriod = n } }

// WithSignalPeriod sets the signal-line (DEA) EMA period.
func WithSignalPeriod(n int) Option { return func(c *Config) { c.SignalPeriod = n } }

// NewConfig builds a Config from the classical 12/26/9 defaults, applying
// opts on top.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{FastPeriod: 12, SlowPeriod: 26, SignalPeriod: 9}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.FastPeriod < 1 || cfg.SlowPeriod < 1 || cfg.SignalPeriod < 1 {
		return nil, cherr.New("macd", cherr.InvalidConfig, "macd periods must be positive")
	}
	if cfg.SlowPeriod <= cfg.FastPeriod {
		return nil, cherr.New("macd", cherr.InvalidConfig, "slow period must exceed fast period")
	}
	return cfg, nil
}

// Item is one incremental MACD observation, indexed in lockstep with the
// merged-candle list that produced it.
type Item struct {
	Idx      int
	FastEMA  float64
	SlowEMA  float64
	Dif      float64
	Dea      float64
	Macd     float64 // 2 * (Dif - Dea), the histogram
}

// Line is the append-only incremental MACD series for one analyzer
// instance, grounded on czsc's CMACD recurrence.
type Line struct {
	cfg   *Config
	items []*Item
}

// NewLine creates an empty MACD line under cfg.
func NewLine(cfg *Config) *Line {
	return &Line{cfg: cfg, items: make([]*Item, 0, 1024)}
}

// Len returns the number of MACD items computed so far.
func (l *Line) Len() int { return len(l.items) }

// At returns the item at idx.
func (l *Line) At(idx int) *Item { return l.items[idx] }

// Last returns the most recent item, or nil if none exist yet.
func (l *Line) Last() *Item {
	if len(l.items) == 0 {
		return nil
	}
	return l.items[len(l.items)-1]
}

// Add folds one merged-candle closing value into the series, recomputing
// the fast/slow EMA, DIF and DEA from the previous item (or seeding them
// from value when the series is empty), and appends the new item.
func (l *Line) Add(value float64) *Item {
	var item *Item
	if last := l.Last(); last != nil {
		fast := float64(l.cfg.FastPeriod)
		slow := float64(l.cfg.SlowPeriod)
		signal := float64(l.cfg.SignalPeriod)

		fastEMA := (2.0*value + (fast-1.0)*last.FastEMA) / (fast + 1.0)
		slowEMA := (2.0*value + (slow-1.0)*last.SlowEMA) / (slow + 1.0)
		dif := fastEMA - slowEMA
		dea := (2.0*dif + (signal-1.0)*last.Dea) / (signal + 1.0)
		item = &Item{
			Idx: len(l.items), FastEMA: fastEMA, SlowEMA: slowEMA,
			Dif: dif, Dea: dea, Macd: 2.0 * (dif - dea),
		}
	} else {
		item = &Item{Idx: 0, FastEMA: value, SlowEMA: value, Dif: 0, Dea: 0, Macd: 0}
	}
	l.items = append(l.items, item)
	return item
}

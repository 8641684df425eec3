// Package bsp implements C8, the buy/sell-point engine: it classifies
// newly-confirmed lines (strokes or segments) against the current zone
// list into T1/T1P/T2/T2S/T3A/T3B turning points (§4.6).
package bsp

import (
	"chanengine/internal/cherr"
	"chanengine/internal/macd"

	"github.com/go-playground/validator/v10"
)

// TargetType is one of the six classification tags a bsp may carry.
type TargetType string

const (
	T1  TargetType = "T1"
	T1P TargetType = "T1P"
	T2  TargetType = "T2"
	T2S TargetType = "T2S"
	T3A TargetType = "T3A"
	T3B TargetType = "T3B"
)

// Config is one side (buyer or seller) of the BS-point configuration
// surface (§6); the engine holds one for each side (b_conf, s_conf) so
// traders can asymmetrize thresholds.
type Config struct {
	DivergenceRate    float64   `validate:"gt=0,lte=1"`
	MinZsCnt          uint      `validate:"-"`
	Bsp1OnlyMultibiZs bool      `validate:"-"`
	MaxBs2Rate        float64   `validate:"gt=0"`
	MacdAlgo          macd.Algo `validate:"oneof=area full_area peak diff slope amp volume amount volume_avg amount_avg turnrate_avg rsi"`
	Bs1Peak           bool      `validate:"-"`
	TargetTypes       map[TargetType]bool `validate:"-"`
	Bsp2Follow1       bool      `validate:"-"`
	Bsp3Follow1       bool      `validate:"-"`
	Bsp3Peak          bool      `validate:"-"`
	Bsp2sFollow2      bool      `validate:"-"`
	MaxBsp2sLv        *uint     `validate:"-"`
	StrictBsp3        bool      `validate:"-"`
}

// Option mutates a Config under construction.
type Option func(*Config)

func WithDivergenceRate(v float64) Option    { return func(c *Config) { c.DivergenceRate = v } }
func WithMinZsCnt(v uint) Option             { return func(c *Config) { c.MinZsCnt = v } }
func WithBsp1OnlyMultibiZs(v bool) Option    { return func(c *Config) { c.Bsp1OnlyMultibiZs = v } }
func WithMaxBs2Rate(v float64) Option        { return func(c *Config) { c.MaxBs2Rate = v } }
func WithMacdAlgo(a macd.Algo) Option        { return func(c *Config) { c.MacdAlgo = a } }
func WithBs1Peak(v bool) Option              { return func(c *Config) { c.Bs1Peak = v } }
func WithTargetTypes(ts ...TargetType) Option {
	return func(c *Config) {
		c.TargetTypes = make(map[TargetType]bool, len(ts))
		for _, t := range ts {
			c.TargetTypes[t] = true
		}
	}
}
func WithBsp2Follow1(v bool) Option  { return func(c *Config) { c.Bsp2Follow1 = v } }
func WithBsp3Follow1(v bool) Option  { return func(c *Config) { c.Bsp3Follow1 = v } }
func WithBsp3Peak(v bool) Option     { return func(c *Config) { c.Bsp3Peak = v } }
func WithBsp2sFollow2(v bool) Option { return func(c *Config) { c.Bsp2sFollow2 = v } }
func WithMaxBsp2sLv(v uint) Option   { return func(c *Config) { c.MaxBsp2sLv = &v } }
func WithStrictBsp3(v bool) Option   { return func(c *Config) { c.StrictBsp3 = v } }

var validate = validator.New()

// NewConfig builds a Config from czsc's CPointConfig defaults: divergence
// at 90% (exit must be < 0.9x entry strength), at least one zone
// traversed, all six target types enabled, bsp2/bsp3 following their
// defining T1, bsp1/bsp3 peak requirements on, one level of T2S allowed.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		DivergenceRate:    0.9,
		MinZsCnt:          1,
		Bsp1OnlyMultibiZs: false,
		MaxBs2Rate:        0.618,
		MacdAlgo:          macd.AlgoPeak,
		Bs1Peak:           true,
		TargetTypes: map[TargetType]bool{
			T1: true, T1P: true, T2: true, T2S: true, T3A: true, T3B: true,
		},
		Bsp2Follow1:  true,
		Bsp3Follow1:  true,
		Bsp3Peak:     true,
		Bsp2sFollow2: true,
		StrictBsp3:   false,
	}
	lv := uint(1)
	cfg.MaxBsp2sLv = &lv
	for _, o := range opts {
		o(cfg)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, cherr.Wrap("bsp", cherr.InvalidConfig, "invalid bsp config", err)
	}
	return cfg, nil
}

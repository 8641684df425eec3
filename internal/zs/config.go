// Package zs implements C7, the zone (pivot) builder: the maximal
// contiguous run of >=3 overlapping consecutive lines (strokes or
// segments), with optional relaxation to 1 and optional combination of
// adjacent same-orientation zones (§4.5).
package zs

import (
	"chanengine/internal/cherr"

	"github.com/go-playground/validator/v10"
)

// CombineMode governs how an adjacent pair of same-orientation, mutually
// overlapping zones separated by a single line is collapsed when
// need_combine.
type CombineMode string

const (
	// CombineZS merges the two zones' ranges.
	CombineZS CombineMode = "zs"
	// CombinePeak keeps the outer peaks of the two zones.
	CombinePeak CombineMode = "peak"
)

// Algo selects which line sequence a zone builder consumes.
type Algo string

const (
	// AlgoNormal runs directly over the chosen line sequence (strokes or
	// segments).
	AlgoNormal Algo = "normal"
	// AlgoOverSeg runs the normal algorithm using the segment list as the
	// input line sequence (an open question in the source, resolved this
	// way per SPEC_FULL.md).
	AlgoOverSeg Algo = "over_seg"
)

// Config mirrors the zone configuration surface (§6).
type Config struct {
	NeedCombine bool        `validate:"-"`
	CombineMode CombineMode `validate:"oneof=zs peak"`
	OneBiZs     bool        `validate:"-"`
	ZsAlgo      Algo        `validate:"oneof=normal over_seg"`
}

// Option mutates a Config under construction.
type Option func(*Config)

// WithNeedCombine sets need_combine.
func WithNeedCombine(v bool) Option { return func(c *Config) { c.NeedCombine = v } }

// WithCombineMode sets zs_combine_mode.
func WithCombineMode(m CombineMode) Option { return func(c *Config) { c.CombineMode = m } }

// WithOneBiZs sets one_bi_zs.
func WithOneBiZs(v bool) Option { return func(c *Config) { c.OneBiZs = v } }

// WithAlgo sets zs_algo.
func WithAlgo(a Algo) Option { return func(c *Config) { c.ZsAlgo = a } }

var validate = validator.New()

// NewConfig builds a Config defaulting to need_combine=true,
// zs_combine_mode=zs, one_bi_zs=false, zs_algo=normal.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{NeedCombine: true, CombineMode: CombineZS, OneBiZs: false, ZsAlgo: AlgoNormal}
	for _, o := range opts {
		o(cfg)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, cherr.Wrap("zs", cherr.InvalidConfig, "invalid zs config", err)
	}
	return cfg, nil
}

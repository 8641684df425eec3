// Package bi implements C4, the stroke (bi) builder: it confirms a stroke
// between two fractals of opposite polarity and revises the last tentative
// stroke's endpoint as later fractals extend it (§4.2).
package bi

import (
	"chanengine/internal/cherr"

	"github.com/go-playground/validator/v10"
)

// FxCheckMethod governs how strongly the candles spanned by a candidate
// stroke must dominate in the stroke's direction before the stroke is
// confirmed.
type FxCheckMethod string

const (
	// FxCheckStrict checks every interior candle against both endpoints —
	// the strongest, least permissive check.
	FxCheckStrict FxCheckMethod = "strict"
	// FxCheckHalf checks only the half of the span nearest the end
	// fractal.
	FxCheckHalf FxCheckMethod = "half"
	// FxCheckLoss checks only the single candle immediately preceding the
	// end fractal.
	FxCheckLoss FxCheckMethod = "loss"
	// FxCheckTotally performs no interior check at all — the weakest.
	FxCheckTotally FxCheckMethod = "totally"
)

// Config mirrors the Chán stroke configuration surface (§6): bi_algo,
// is_strict, bi_fx_check, gap_as_kl, bi_end_is_peak, bi_allow_sub_peak.
type Config struct {
	BiAlgo         string        `validate:"oneof=normal"`
	IsStrict       bool          `validate:"-"`
	FxCheck        FxCheckMethod `validate:"oneof=strict half loss totally"`
	GapAsKl        bool          `validate:"-"`
	BiEndIsPeak    bool          `validate:"-"`
	BiAllowSubPeak bool          `validate:"-"`
}

// Option mutates a Config under construction.
type Option func(*Config)

// WithStrict sets is_strict.
func WithStrict(v bool) Option { return func(c *Config) { c.IsStrict = v } }

// WithFxCheck sets bi_fx_check.
func WithFxCheck(v FxCheckMethod) Option { return func(c *Config) { c.FxCheck = v } }

// WithGapAsKl sets gap_as_kl.
func WithGapAsKl(v bool) Option { return func(c *Config) { c.GapAsKl = v } }

// WithBiEndIsPeak sets bi_end_is_peak.
func WithBiEndIsPeak(v bool) Option { return func(c *Config) { c.BiEndIsPeak = v } }

// WithBiAllowSubPeak sets bi_allow_sub_peak.
func WithBiAllowSubPeak(v bool) Option { return func(c *Config) { c.BiAllowSubPeak = v } }

var validate = validator.New()

// NewConfig builds a Config from the classical chán defaults (bi_algo=normal,
// is_strict=true, bi_fx_check=strict, gap_as_kl=false, bi_end_is_peak=true,
// bi_allow_sub_peak=true), applying opts on top, and validates the result.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		BiAlgo:         "normal",
		IsStrict:       true,
		FxCheck:        FxCheckStrict,
		GapAsKl:        false,
		BiEndIsPeak:    true,
		BiAllowSubPeak: true,
	}
	for _, o := range opts {
		o(cfg)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, cherr.Wrap("bi", cherr.InvalidConfig, "invalid bi config", err)
	}
	return cfg, nil
}

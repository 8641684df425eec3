// Package seg implements C5, the segment builder, and — by instantiating
// the same generic type a second time over its own output — C6, the
// recursive seg-of-seg layer (§4.3, §4.4). A segment is discovered by
// running a fractal detector one level up, over synthetic "eigen" elements
// derived from counter-direction lines of the layer below.
package seg

import (
	"chanengine/internal/cherr"

	"github.com/go-playground/validator/v10"
)

// LeftSegMethod resolves the left-tail ambiguity: the run of lines before
// the first confirmed segment cannot be assigned definitively (§4.3).
type LeftSegMethod string

const (
	// LeftPeak keeps a single tentative segment spanning the tail,
	// continuously extended to the tail's current global extreme.
	LeftPeak LeftSegMethod = "peak"
	// LeftAll surfaces every alternating stretch in the tail as its own
	// tentative segment.
	LeftAll LeftSegMethod = "all"
)

// Config mirrors the segment configuration surface (§6).
type Config struct {
	LeftMethod LeftSegMethod `validate:"oneof=peak all"`
	SegAlgo    string        `validate:"oneof=eigen_fractal"`
}

// Option mutates a Config under construction.
type Option func(*Config)

// WithLeftMethod sets left_method.
func WithLeftMethod(m LeftSegMethod) Option { return func(c *Config) { c.LeftMethod = m } }

var validate = validator.New()

// NewConfig builds a Config defaulting to left_method=peak, the single
// seg-algorithm name ("eigen_fractal", presently the only one per §6).
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{LeftMethod: LeftPeak, SegAlgo: "eigen_fractal"}
	for _, o := range opts {
		o(cfg)
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, cherr.Wrap("seg", cherr.InvalidConfig, "invalid seg config", err)
	}
	return cfg, nil
}

// Package analyzer implements C9, the façade that drives the bar→candle→
// fractal→stroke→segment→seg-of-seg→zone→bsp pipeline one bar at a time
// and exposes read-only views over every layer.
package analyzer

import (
	"chanengine/internal/bi"
	"chanengine/internal/bsp"
	"chanengine/internal/seg"
	"chanengine/internal/zs"
)

// Config is the composite configuration surface (§6): one Config per
// structural layer, plus a buy/sell split for the BS-point engine shared
// by both the stroke-level and segment-level bsp builders.
type Config struct {
	Bi      *bi.Config
	Seg     *seg.Config
	Zs      *zs.Config
	BspBuy  *bsp.Config
	BspSell *bsp.Config
}

// Option mutates a Config under construction.
type Option func(*Config) error

// WithBi overrides the stroke-builder config via bi.Option values.
func WithBi(opts ...bi.Option) Option {
	return func(c *Config) error {
		cfg, err := bi.NewConfig(opts...)
		if err != nil {
			return err
		}
		c.Bi = cfg
		return nil
	}
}

// WithSeg overrides the segment-builder config via seg.Option values.
func WithSeg(opts ...seg.Option) Option {
	return func(c *Config) error {
		cfg, err := seg.NewConfig(opts...)
		if err != nil {
			return err
		}
		c.Seg = cfg
		return nil
	}
}

// WithZs overrides the zone-builder config via zs.Option values.
func WithZs(opts ...zs.Option) Option {
	return func(c *Config) error {
		cfg, err := zs.NewConfig(opts...)
		if err != nil {
			return err
		}
		c.Zs = cfg
		return nil
	}
}

// WithBspBuy overrides the buy-side BS-point config via bsp.Option values.
func WithBspBuy(opts ...bsp.Option) Option {
	return func(c *Config) error {
		cfg, err := bsp.NewConfig(opts...)
		if err != nil {
			return err
		}
		c.BspBuy = cfg
		return nil
	}
}

// WithBspSell overrides the sell-side BS-point config via bsp.Option values.
func WithBspSell(opts ...bsp.Option) Option {
	return func(c *Config) error {
		cfg, err := bsp.NewConfig(opts...)
		if err != nil {
			return err
		}
		c.BspSell = cfg
		return nil
	}
}

// NewConfig builds a Config from every layer's defaults, applying opts on
// top.
func NewConfig(opts ...Option) (*Config, error) {
	biCfg, err := bi.NewConfig()
	if err != nil {
		return nil, err
	}
	segCfg, err := seg.NewConfig()
	if err != nil {
		return nil, err
	}
	zsCfg, err := zs.NewConfig()
	if err != nil {
		return nil, err
	}
	bspBuy, err := bsp.NewConfig()
	if err != nil {
		return nil, err
	}
	bspSell, err := bsp.NewConfig()
	if err != nil {
		return nil, err
	}
	cfg := &Config{Bi: biCfg, Seg: segCfg, Zs: zsCfg, BspBuy: bspBuy, BspSell: bspSell}
	for _, o := range opts {
		if err := o(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

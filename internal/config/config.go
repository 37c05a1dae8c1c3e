// Package config holds the encoder settings and the optional YAML file they
// can be loaded from.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultRoot is the directory optimized when no other root is given.
const DefaultRoot = "docs/images"

// Config is the full set of knobs for a run. The zero file (or no file at
// all) yields Default().
type Config struct {
	Root string      `yaml:"root"`
	JPEG JPEGOptions `yaml:"jpeg"`
	PNG  PNGOptions  `yaml:"png"`
	WebP WebPOptions `yaml:"webp"`
}

type JPEGOptions struct {
	Quality        int  `yaml:"quality"`
	Progressive    bool `yaml:"progressive"`
	OptimizeCoding bool `yaml:"optimize_coding"`
}

type PNGOptions struct {
	// CompressionLevel uses the zlib 0-9 scale.
	CompressionLevel int `yaml:"compression_level"`
}

type WebPOptions struct {
	Quality int `yaml:"quality"`
	// Method is the libwebp effort knob, 0 (fast) to 6 (smallest).
	Method int `yaml:"method"`
}

// Default returns the settings used when nothing overrides them.
func Default() *Config {
	return &Config{
		Root: DefaultRoot,
		JPEG: JPEGOptions{
			Quality:        85,
			Progressive:    true,
			OptimizeCoding: true,
		},
		PNG: PNGOptions{
			CompressionLevel: 9,
		},
		WebP: WebPOptions{
			Quality: 85,
			Method:  6,
		},
	}
}

// Load reads path on top of Default(). An empty path or a missing file is
// not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every option against the range its encoder accepts.
func (c *Config) Validate() error {
	var errs []error
	if c.Root == "" {
		errs = append(errs, errors.New("root must not be empty"))
	}
	if c.JPEG.Quality < 1 || c.JPEG.Quality > 100 {
		errs = append(errs, fmt.Errorf("jpeg.quality %d out of range 1-100", c.JPEG.Quality))
	}
	if c.PNG.CompressionLevel < 0 || c.PNG.CompressionLevel > 9 {
		errs = append(errs, fmt.Errorf("png.compression_level %d out of range 0-9", c.PNG.CompressionLevel))
	}
	if c.WebP.Quality < 1 || c.WebP.Quality > 100 {
		errs = append(errs, fmt.Errorf("webp.quality %d out of range 1-100", c.WebP.Quality))
	}
	if c.WebP.Method < 0 || c.WebP.Method > 6 {
		errs = append(errs, fmt.Errorf("webp.method %d out of range 0-6", c.WebP.Method))
	}
	return errors.Join(errs...)
}

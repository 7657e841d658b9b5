// Package config holds the tunables for tracing, analysis, extrusion and
// logging. A Config starts from Default() and file values are decoded over
// it, so a file only needs the keys it changes.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/chazu/formcutter/pkg/analyze"
	"github.com/chazu/formcutter/pkg/engine"
	"github.com/chazu/formcutter/pkg/extrude"
	"github.com/chazu/formcutter/pkg/form"
	"github.com/chazu/formcutter/pkg/geom"
)

// Blade describes the extruded cutting wall.
type Blade struct {
	Thickness float64 `toml:"thickness" yaml:"thickness"`
	Height    float64 `toml:"height" yaml:"height"`
	Name      string  `toml:"name" yaml:"name"`
}

// Analysis holds the manufacturability thresholds.
type Analysis struct {
	MinAngle    float64 `toml:"min_angle" yaml:"min_angle"`
	MinDistance float64 `toml:"min_distance" yaml:"min_distance"`
}

// Tracing controls curve sampling.
type Tracing struct {
	Step    float64 `toml:"step" yaml:"step"`
	Epsilon float64 `toml:"epsilon" yaml:"epsilon"`
}

// Script bounds outline script evaluation.
type Script struct {
	Timeout float64 `toml:"timeout" yaml:"timeout"` // seconds
}

// Logging selects the log sink. An empty Logfile logs to stderr.
type Logging struct {
	Logfile string `toml:"logfile" yaml:"logfile"`
	MaxSize int    `toml:"max_log_size" yaml:"max_log_size"` // megabytes
	MaxAge  int    `toml:"max_log_age" yaml:"max_log_age"`   // days
	Level   string `toml:"level" yaml:"level"`
}

// Config is the full configuration.
type Config struct {
	Blade    Blade    `toml:"blade" yaml:"blade"`
	Analysis Analysis `toml:"analysis" yaml:"analysis"`
	Tracing  Tracing  `toml:"tracing" yaml:"tracing"`
	Script   Script   `toml:"script" yaml:"script"`
	Logging  Logging  `toml:"logging" yaml:"logging"`
}

// Default returns a working configuration for a typical cookie cutter.
func Default() Config {
	p := analyze.DefaultProfile()
	return Config{
		Blade: Blade{
			Thickness: 0.8,
			Height:    12,
			Name:      "cutter",
		},
		Analysis: Analysis{
			MinAngle:    p.MinAngle,
			MinDistance: p.MinDistance,
		},
		Tracing: Tracing{
			Step:    geom.DefaultStep,
			Epsilon: geom.Epsilon,
		},
		Script: Script{
			Timeout: engine.DefaultTimeout.Seconds(),
		},
		Logging: Logging{
			MaxSize: 10,
			MaxAge:  7,
			Level:   "info",
		},
	}
}

// Load reads a TOML or YAML file over the defaults and validates the
// result. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("config: could not decode TOML %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, fmt.Errorf("config: unknown key %q in %s", undecoded[0].String(), path)
		}
	case ".yaml", ".yml":
		file, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("config: failed to open %s: %w", path, err)
		}
		defer file.Close()

		decoder := yaml.NewDecoder(file)
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("config: YAML error in %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("config: unsupported file extension %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.ExtrudeParams().Validate(); err != nil {
		return fmt.Errorf("config: blade: %w", err)
	}
	if c.Analysis.MinAngle <= 0 || c.Analysis.MinAngle >= 180 {
		return fmt.Errorf("config: analysis: min_angle must be in (0, 180), got %g", c.Analysis.MinAngle)
	}
	if c.Analysis.MinDistance < 0 {
		return fmt.Errorf("config: analysis: min_distance must not be negative, got %g", c.Analysis.MinDistance)
	}
	if c.Tracing.Step <= 0 {
		return fmt.Errorf("config: tracing: step must be positive, got %g", c.Tracing.Step)
	}
	if c.Tracing.Epsilon <= 0 {
		return fmt.Errorf("config: tracing: epsilon must be positive, got %g", c.Tracing.Epsilon)
	}
	if c.Script.Timeout <= 0 {
		return fmt.Errorf("config: script: timeout must be positive, got %g", c.Script.Timeout)
	}
	if c.Logging.MaxSize < 0 || c.Logging.MaxAge < 0 {
		return fmt.Errorf("config: logging: rotation limits must not be negative")
	}
	return nil
}

// ExtrudeParams returns the extrusion parameters of the blade section.
func (c Config) ExtrudeParams() extrude.Params {
	return extrude.Params{
		Thickness: c.Blade.Thickness,
		Height:    c.Blade.Height,
		Name:      c.Blade.Name,
	}
}

// Profile returns the analyzer thresholds.
func (c Config) Profile() analyze.Profile {
	return analyze.Profile{
		MinAngle:    c.Analysis.MinAngle,
		MinDistance: c.Analysis.MinDistance,
	}
}

// Tracer returns a tracer using the sampling settings.
func (c Config) Tracer() form.Tracer {
	return form.Tracer{Step: c.Tracing.Step, Epsilon: c.Tracing.Epsilon}
}

// EvalTimeout returns the script timeout as a duration.
func (c Config) EvalTimeout() time.Duration {
	return time.Duration(c.Script.Timeout * float64(time.Second))
}

// SPDX-License-Identifier: GPL-3.0-or-later

package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/netdata/netdata/go/topology/logger"
)

// ErrInvalidConfig is returned for configurations that fail validation.
var ErrInvalidConfig = errors.New("invalid analysis config")

const (
	TrackEvaluationStatic    = "static"
	TrackEvaluationDataPlane = "dataplane"
)

type Config struct {
	// RecordElections keeps per-group election diagnostics in the result.
	RecordElections bool `yaml:"record_elections" json:"record_elections"`
	// TrackEvaluation selects how FHRP track methods are evaluated.
	TrackEvaluation string `yaml:"track_evaluation,omitempty" json:"track_evaluation"`
	// SynthesizeL3 builds the Layer3 topology from subnets alone when a
	// snapshot carries no wiring.
	SynthesizeL3 bool `yaml:"synthesize_l3" json:"synthesize_l3"`
	// MaxConcurrency bounds RunAll. Zero means GOMAXPROCS.
	MaxConcurrency int    `yaml:"max_concurrency,omitempty" json:"max_concurrency"`
	LogLevel       string `yaml:"log_level,omitempty" json:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		TrackEvaluation: TrackEvaluationStatic,
		SynthesizeL3:    true,
		MaxConcurrency:  runtime.GOMAXPROCS(0),
	}
}

func (c Config) Validate() error {
	switch c.TrackEvaluation {
	case TrackEvaluationStatic, TrackEvaluationDataPlane:
	default:
		return fmt.Errorf("%w: unknown track evaluation '%s'", ErrInvalidConfig, c.TrackEvaluation)
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("%w: negative max concurrency %d", ErrInvalidConfig, c.MaxConcurrency)
	}
	if c.LogLevel != "" && !isLogLevel(c.LogLevel) {
		return fmt.Errorf("%w: unknown log level '%s'", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// ApplyLogLevel sets the process-wide log level when one is configured.
func (c Config) ApplyLogLevel() {
	if c.LogLevel != "" {
		logger.Level.SetByName(c.LogLevel)
	}
}

func (c Config) concurrency() int {
	if c.MaxConcurrency > 0 {
		return c.MaxConcurrency
	}
	return runtime.GOMAXPROCS(0)
}

func isLogLevel(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "err", "error", "warn", "warning", "notice", "info", "debug",
		"off", "none", "emergency", "alert", "critical":
		return true
	}
	return false
}

// LoadConfig reads a YAML or JSON (by extension) config on top of the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read analysis config %q: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	default:
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("decode analysis config %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%q: %w", path, err)
	}
	return cfg, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// PinningConfig controls the pinning subsystem's runtime knobs: the score
// sentinel pinned documents receive and whether Prometheus collectors are
// wired up at all.
type PinningConfig struct {
	BasePinScore   float64 `yaml:"basePinScore"`
	MetricsEnabled bool    `yaml:"metricsEnabled"`
}

// Load reads a YAML config file (if path is non-empty) and overlays it onto
// defaultPinningConfig, then applies PIN_* environment-variable overrides.
// An empty path is not an error: defaults apply. A non-empty path that
// cannot be read or parsed is an error.
func Load(path string) (*PinningConfig, error) {
	cfg := defaultPinningConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyPinningEnvOverrides(cfg)
	return cfg, nil
}

func defaultPinningConfig() *PinningConfig {
	return &PinningConfig{
		BasePinScore:   1_000_000.0,
		MetricsEnabled: true,
	}
}

func applyPinningEnvOverrides(cfg *PinningConfig) {
	if v := os.Getenv("PIN_BASE_SCORE"); v != "" {
		if score, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.BasePinScore = score
		}
	}
	if v := os.Getenv("PIN_METRICS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.MetricsEnabled = enabled
		}
	}
}

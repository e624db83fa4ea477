package engine

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Config is a unified structure able to describe engine tunables in JSON or
// YAML. Scene composition itself is programmatic; config only covers knobs.
type Config struct {
	Gravity       [3]float32 `json:"gravity" yaml:"gravity"`
	FixedSubstep  float32    `json:"fixed_substep" yaml:"fixed_substep"`
	MaxSubsteps   int        `json:"max_substeps" yaml:"max_substeps"`
	ShadowMapSize int        `json:"shadow_map_size" yaml:"shadow_map_size"`
	ClearColor    [4]float32 `json:"clear_color" yaml:"clear_color"`
	TargetFPS     int        `json:"target_fps" yaml:"target_fps"`
	LogLevel      string     `json:"log_level" yaml:"log_level"`
	Ground        Ground     `json:"ground" yaml:"ground"`
}

// Ground configures the optional ground collision plane.
type Ground struct {
	Enabled     bool    `json:"enabled" yaml:"enabled"`
	Height      float32 `json:"height" yaml:"height"`
	Restitution float32 `json:"restitution" yaml:"restitution"`
}

func DefaultConfig() Config {
	return Config{
		Gravity:       [3]float32{0, -9.81, 0},
		FixedSubstep:  1.0 / 120,
		MaxSubsteps:   8,
		ShadowMapSize: 2048,
		ClearColor:    [4]float32{0.05, 0.05, 0.08, 1},
		TargetFPS:     60,
		LogLevel:      "info",
		Ground:        Ground{Enabled: true, Height: 0, Restitution: 0.2},
	}
}

// LoadJSON loads config from a JSON reader on top of the defaults.
func LoadJSON(r io.Reader) (Config, error) {
	c := DefaultConfig()
	dec := json.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

// LoadYAML loads config from a YAML reader on top of the defaults.
func LoadYAML(r io.Reader) (Config, error) {
	c := DefaultConfig()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&c); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

func (c Config) Validate() error {
	if c.FixedSubstep <= 0 {
		return fmt.Errorf("engine: fixed_substep must be positive, got %g", c.FixedSubstep)
	}
	if c.MaxSubsteps < 1 {
		return fmt.Errorf("engine: max_substeps must be at least 1, got %d", c.MaxSubsteps)
	}
	if c.ShadowMapSize < 1 {
		return fmt.Errorf("engine: shadow_map_size must be positive, got %d", c.ShadowMapSize)
	}
	if c.TargetFPS < 1 {
		return fmt.Errorf("engine: target_fps must be positive, got %d", c.TargetFPS)
	}
	if c.Ground.Restitution < 0 || c.Ground.Restitution > 1 {
		return fmt.Errorf("engine: ground restitution must be in [0,1], got %g", c.Ground.Restitution)
	}
	return nil
}

package physics

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the space-wide simulation configuration. Changing any of it on
// a live engine invalidates every checkpoint, since checkpoints are only
// valid for the exact configuration they were recorded under.
type Config struct {
	Gravity  Vector  `yaml:"gravity"`
	TimeStep float64 `yaml:"timeStep"`

	VelocityIterations int `yaml:"velocityIterations"`
	PositionIterations int `yaml:"positionIterations"`

	CollisionSlop float64 `yaml:"collisionSlop"`
	CollisionBias float64 `yaml:"collisionBias"`

	SleepSpeedThreshold float64 `yaml:"sleepSpeedThreshold"`
	SleepTimeThreshold  float64 `yaml:"sleepTimeThreshold"`

	CheckpointInterval int    `yaml:"checkpointInterval"`
	Seed               uint32 `yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		Gravity:             Vector{0, 980},
		TimeStep:            1.0 / 60.0,
		VelocityIterations:  8,
		PositionIterations:  3,
		CollisionSlop:       0.01,
		CollisionBias:       0.2,
		SleepSpeedThreshold: 0.05,
		SleepTimeThreshold:  0.5,
		CheckpointInterval:  30,
		Seed:                0x9E3779B9,
	}
}

// LoadConfig reads a YAML config file. A missing file is not an error and
// yields the defaults; unset fields fall back to their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("physics: parse config %s: %w", path, err)
	}
	return cfg.withDefaults(), nil
}

// withDefaults fills non-positive tunables so a sparse config file still
// produces a steppable engine.
func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	if cfg.TimeStep <= 0 {
		cfg.TimeStep = def.TimeStep
	}
	if cfg.VelocityIterations <= 0 {
		cfg.VelocityIterations = def.VelocityIterations
	}
	if cfg.PositionIterations <= 0 {
		cfg.PositionIterations = def.PositionIterations
	}
	if cfg.CheckpointInterval <= 0 {
		cfg.CheckpointInterval = def.CheckpointInterval
	}
	return cfg
}

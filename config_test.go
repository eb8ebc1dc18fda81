package physics

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physics.yaml")
	data := []byte("gravity:\n  x: 0\n  y: 490\ntimeStep: 0.02\nseed: 12345\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Gravity != (Vector{0, 490}) {
		t.Errorf("gravity: %v", cfg.Gravity)
	}
	if cfg.TimeStep != 0.02 {
		t.Errorf("timeStep: %v", cfg.TimeStep)
	}
	if cfg.Seed != 12345 {
		t.Errorf("seed: %v", cfg.Seed)
	}
	// Fields the file never mentions keep their defaults.
	if cfg.VelocityIterations != 8 || cfg.CheckpointInterval != 30 {
		t.Errorf("unset fields lost their defaults: %+v", cfg)
	}
}

func TestLoadConfig_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("gravity: [not a map\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("malformed YAML should return an error")
	}
}

func TestConfig_WithDefaultsFillsTunables(t *testing.T) {
	cfg := Config{Gravity: Vector{0, 100}}.withDefaults()
	if cfg.TimeStep != 1.0/60.0 {
		t.Errorf("timeStep: %v", cfg.TimeStep)
	}
	if cfg.VelocityIterations != 8 || cfg.PositionIterations != 3 {
		t.Errorf("iterations: %d/%d", cfg.VelocityIterations, cfg.PositionIterations)
	}
	if cfg.CheckpointInterval != 30 {
		t.Errorf("checkpointInterval: %d", cfg.CheckpointInterval)
	}
	// Gravity is intentionally not defaulted: zero gravity is a valid scene.
	if cfg.Gravity != (Vector{0, 100}) {
		t.Errorf("gravity overwritten: %v", cfg.Gravity)
	}
}

// Package tuning loads gameplay numbers from a YAML file so balance changes
// do not require a rebuild. Zero-valued fields fall back to the shipped
// defaults.
package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hillrush/hillrush/internal/terrain"
	"github.com/hillrush/hillrush/internal/vehicle"
)

type Tuning struct {
	TickRateHz int     `yaml:"tick_rate_hz"`
	Gravity    float64 `yaml:"gravity"`

	Terrain TerrainTuning `yaml:"terrain"`
	Vehicle VehicleTuning `yaml:"vehicle"`

	// Suspension preset: "default", "stiff" or "soft".
	Suspension string `yaml:"suspension"`
}

type TerrainTuning struct {
	ChunkWidth       float64 `yaml:"chunk_width"`
	PointSpacing     float64 `yaml:"point_spacing"`
	LoadAhead        float64 `yaml:"load_ahead"`
	UnloadBehind     float64 `yaml:"unload_behind"`
	SegmentLength    float64 `yaml:"segment_length"`
	TransitionLength float64 `yaml:"transition_length"`
}

type VehicleTuning struct {
	DriveImpulse     float64 `yaml:"drive_impulse"`
	MaxForwardSpeed  float64 `yaml:"max_forward_speed"`
	MaxBackwardSpeed float64 `yaml:"max_backward_speed"`
	TiltForce        float64 `yaml:"tilt_force"`
}

// Default returns the shipped tuning.
func Default() Tuning {
	return Tuning{
		TickRateHz: 60,
		Gravity:    -500,
		Suspension: "default",
	}
}

// Load reads a tuning file. Fields omitted from the file keep their defaults.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning: %w", err)
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if t.TickRateHz <= 0 {
		return t, fmt.Errorf("tick_rate_hz must be positive, got %d", t.TickRateHz)
	}
	if t.Gravity >= 0 {
		return t, fmt.Errorf("gravity must be negative, got %v", t.Gravity)
	}
	switch t.Suspension {
	case "", "default", "stiff", "soft":
	default:
		return t, fmt.Errorf("unknown suspension preset %q", t.Suspension)
	}
	return t, nil
}

// StreamerConfig merges the terrain tuning over the shipped streamer defaults.
func (t Tuning) StreamerConfig() terrain.StreamerConfig {
	cfg := terrain.DefaultStreamerConfig()
	if t.Terrain.ChunkWidth > 0 {
		cfg.ChunkWidth = t.Terrain.ChunkWidth
	}
	if t.Terrain.PointSpacing > 0 {
		cfg.PointSpacing = t.Terrain.PointSpacing
	}
	if t.Terrain.LoadAhead > 0 {
		cfg.LoadAhead = t.Terrain.LoadAhead
	}
	if t.Terrain.UnloadBehind > 0 {
		cfg.UnloadBehind = t.Terrain.UnloadBehind
	}
	if t.Terrain.SegmentLength > 0 {
		cfg.SegmentLength = t.Terrain.SegmentLength
	}
	if t.Terrain.TransitionLength > 0 {
		cfg.TransitionLength = t.Terrain.TransitionLength
	}
	return cfg
}

// VehicleConfig merges the vehicle tuning over the shipped vehicle defaults.
func (t Tuning) VehicleConfig() vehicle.Config {
	cfg := vehicle.DefaultConfig()
	switch t.Suspension {
	case "", "default":
		cfg.Suspension = vehicle.DefaultSuspension()
	case "stiff":
		cfg.Suspension = vehicle.StiffSuspension()
	case "soft":
		cfg.Suspension = vehicle.SoftSuspension()
	}
	if t.Vehicle.DriveImpulse > 0 {
		cfg.DriveImpulse = t.Vehicle.DriveImpulse
	}
	if t.Vehicle.MaxForwardSpeed > 0 {
		cfg.MaxForwardSpeed = t.Vehicle.MaxForwardSpeed
	}
	if t.Vehicle.MaxBackwardSpeed < 0 {
		cfg.MaxBackwardSpeed = t.Vehicle.MaxBackwardSpeed
	}
	if t.Vehicle.TiltForce > 0 {
		cfg.TiltForce = t.Vehicle.TiltForce
	}
	return cfg
}

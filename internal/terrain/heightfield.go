package terrain

import (
	"fmt"
	"math"
)

// HeightFieldConfig holds the shaping coefficients for terrain synthesis.
// All distances and heights are in world units.
type HeightFieldConfig struct {
	BaseHeight float64
	MinHeight  float64

	// Large rolling hills.
	LargeHillAmp  float64
	LargeHillFreq float64

	// Medium variation, phase-shifted so the two sinusoids do not reinforce
	// predictably.
	MediumHillAmp   float64
	MediumHillFreq  float64
	MediumHillPhase float64

	// Small fixed-frequency texture layer.
	SmallHillAmp  float64
	SmallHillFreq float64

	// Fractal roughness.
	NoiseAmp         float64
	NoiseFreq        float64
	NoiseOctaves     int
	NoisePersistence float64

	// Feature modifiers.
	RampInterval     float64
	RampWidth        float64
	RampHeight       float64
	SteepInterval    float64
	SteepWidth       float64
	SteepHeight      float64
	PlateauInterval  float64
	PlateauRampWidth float64
	PlateauWidth     float64
	PlateauHeight    float64

	// Global difficulty ramp: height is multiplied by 1 + x/DifficultyScale.
	DifficultyScale float64

	// Features are bypassed below this x so the launch area stays tame.
	StartAreaEnd float64
}

// DefaultHeightFieldConfig returns the shipped terrain tuning.
func DefaultHeightFieldConfig() HeightFieldConfig {
	return HeightFieldConfig{
		BaseHeight: 200,
		MinHeight:  50,

		LargeHillAmp:  80,
		LargeHillFreq: 0.008,

		MediumHillAmp:   40,
		MediumHillFreq:  0.021,
		MediumHillPhase: 1.3,

		SmallHillAmp:  12,
		SmallHillFreq: 0.05,

		NoiseAmp:         25,
		NoiseFreq:        0.01,
		NoiseOctaves:     4,
		NoisePersistence: 0.5,

		RampInterval:     2200,
		RampWidth:        300,
		RampHeight:       120,
		SteepInterval:    3500,
		SteepWidth:       250,
		SteepHeight:      150,
		PlateauInterval:  2800,
		PlateauRampWidth: 100,
		PlateauWidth:     300,
		PlateauHeight:    60,

		DifficultyScale: 50000,
		StartAreaEnd:    800,
	}
}

// HeightField converts an x-position and a biome into a terrain height.
// It is a pure function of (seed, x, biome): no state mutates across calls,
// so a HeightField may be queried concurrently.
type HeightField struct {
	cfg    HeightFieldConfig
	noise  *Noise
	jitter *Noise
}

// NewHeightField creates a generator with the default config.
func NewHeightField(seed int64) *HeightField {
	hf, err := NewHeightFieldConfigured(seed, DefaultHeightFieldConfig())
	if err != nil {
		// The default config is statically valid.
		panic(err)
	}
	return hf
}

// NewHeightFieldConfigured creates a generator with an explicit config.
// Invalid shaping parameters are configuration errors and fail here, never
// silently clamped.
func NewHeightFieldConfigured(seed int64, cfg HeightFieldConfig) (*HeightField, error) {
	if cfg.DifficultyScale <= 0 {
		return nil, fmt.Errorf("difficulty scale must be positive, got %v", cfg.DifficultyScale)
	}
	if cfg.NoiseOctaves < 1 {
		return nil, fmt.Errorf("noise octaves must be >= 1, got %d", cfg.NoiseOctaves)
	}
	if cfg.NoisePersistence <= 0 {
		return nil, fmt.Errorf("noise persistence must be positive, got %v", cfg.NoisePersistence)
	}
	return &HeightField{
		cfg:    cfg,
		noise:  NewNoise(seed),
		jitter: NewNoise(seed + 1),
	}, nil
}

// Config returns the generator's shaping coefficients.
func (g *HeightField) Config() HeightFieldConfig {
	return g.cfg
}

// BaseHeight returns the flat launch-pad height.
func (g *HeightField) BaseHeight() float64 {
	return g.cfg.BaseHeight
}

// HeightAt returns the terrain height at x under the given biome modifiers.
// The result is always >= MinHeight.
func (g *HeightField) HeightAt(x float64, b Biome) float64 {
	cfg := &g.cfg

	dist := x
	if dist < 0 {
		dist = 0
	}
	distanceFactor := math.Min(dist/10000, 2.0)
	progAmp := 1 + 0.5*distanceFactor
	progFreq := 1 + 0.3*distanceFactor

	h := cfg.BaseHeight

	// Large rolling hills.
	h += math.Sin(x*cfg.LargeHillFreq*b.HillFreqMul*progFreq) *
		cfg.LargeHillAmp * b.HillAmpMul * progAmp

	// Medium variation.
	h += math.Sin(x*cfg.MediumHillFreq*b.HillFreqMul*progFreq+cfg.MediumHillPhase) *
		cfg.MediumHillAmp * b.HillAmpMul * progAmp

	// Small texture layer, unscaled.
	h += math.Sin(x*cfg.SmallHillFreq) * cfg.SmallHillAmp

	// Fractal roughness.
	h += g.noise.Octave1D(x*cfg.NoiseFreq, cfg.NoiseOctaves, cfg.NoisePersistence) *
		cfg.NoiseAmp * b.NoiseAmpMul * progAmp * 1.5

	// Discrete features stay out of the starting area.
	if x >= cfg.StartAreaEnd {
		h += g.rampDelta(x, dist)
		h += g.steepDelta(x, dist)
		h += g.plateauDelta(x)
	}

	// Global difficulty ramp.
	h *= 1 + dist/cfg.DifficultyScale

	if h < cfg.MinHeight {
		h = cfg.MinHeight
	}
	return h
}

// rampDelta contributes a smooth jump bump that recurs roughly every
// RampInterval. The interval is jittered per cycle by noise so ramps are not
// perfectly periodic; a non-positive effective interval skips the cycle.
func (g *HeightField) rampDelta(x, dist float64) float64 {
	cfg := &g.cfg
	cycle := math.Floor(x / cfg.RampInterval)
	eff := cfg.RampInterval + g.jitter.Noise1D(cycle*0.73)*0.25*cfg.RampInterval
	if eff <= cfg.RampWidth {
		// Degenerate cycle: no ramp rather than a division by a collapsed window.
		return 0
	}

	pos := x - cycle*cfg.RampInterval
	start := 0.35 * eff
	if pos < start || pos >= start+cfg.RampWidth {
		return 0
	}

	t := (pos - start) / cfg.RampWidth
	distScale := 1 + math.Min(dist/20000, 1.0)
	return math.Sin(t*math.Pi) * cfg.RampHeight * distScale
}

// steepDelta contributes a three-part climb: smoothstep ascent, flat peak,
// smoothstep descent, each SteepWidth wide. Peak height grows with distance.
func (g *HeightField) steepDelta(x, dist float64) float64 {
	cfg := &g.cfg
	pos := math.Mod(x, cfg.SteepInterval)
	start := 0.5 * cfg.SteepInterval
	w := cfg.SteepWidth
	peak := cfg.SteepHeight * (1 + math.Min(dist/20000, 1.0))

	switch {
	case pos < start || pos >= start+3*w:
		return 0
	case pos < start+w:
		return smoothstep((pos-start)/w) * peak
	case pos < start+2*w:
		return peak
	default:
		return (1 - smoothstep((pos-start-2*w)/w)) * peak
	}
}

// plateauDelta contributes a low flat rest area: short rise, constant top,
// short fall. Plateaus do not grow with distance; they are breather zones.
func (g *HeightField) plateauDelta(x float64) float64 {
	cfg := &g.cfg
	pos := math.Mod(x, cfg.PlateauInterval)
	start := 0.25 * cfg.PlateauInterval
	rise := cfg.PlateauRampWidth
	flat := cfg.PlateauWidth

	switch {
	case pos < start || pos >= start+2*rise+flat:
		return 0
	case pos < start+rise:
		return smoothstep((pos-start)/rise) * cfg.PlateauHeight
	case pos < start+rise+flat:
		return cfg.PlateauHeight
	default:
		return (1 - smoothstep((pos-start-rise-flat)/rise)) * cfg.PlateauHeight
	}
}

// smoothstep is the cubic easing curve 3t^2 - 2t^3 on [0, 1].
func smoothstep(t float64) float64 {
	return t * t * (3 - 2*t)
}

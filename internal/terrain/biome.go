package terrain

import (
	"errors"
	"fmt"
)

// Biome supplies multiplicative modifiers to terrain shaping plus a color
// palette for observers. The zero-cost identity biome leaves terrain unchanged.
type Biome struct {
	Name string

	HillAmpMul  float64
	HillFreqMul float64
	NoiseAmpMul float64

	Sky    Color
	Ground Color
}

// Color is a normalized RGB triple.
type Color struct {
	R, G, B float64
}

// DefaultBiome returns the identity biome (all multipliers 1.0).
func DefaultBiome() Biome {
	return Biome{
		Name:        "countryside",
		HillAmpMul:  1.0,
		HillFreqMul: 1.0,
		NoiseAmpMul: 1.0,
		Sky:         Color{0.53, 0.81, 0.92},
		Ground:      Color{0.36, 0.55, 0.23},
	}
}

// BuiltinBiomes returns the default biome cycle used by endless mode.
func BuiltinBiomes() []Biome {
	return []Biome{
		DefaultBiome(),
		{
			Name:        "desert",
			HillAmpMul:  0.7,
			HillFreqMul: 0.8,
			NoiseAmpMul: 1.4,
			Sky:         Color{0.95, 0.84, 0.62},
			Ground:      Color{0.87, 0.72, 0.44},
		},
		{
			Name:        "mountains",
			HillAmpMul:  1.6,
			HillFreqMul: 1.2,
			NoiseAmpMul: 1.1,
			Sky:         Color{0.62, 0.73, 0.86},
			Ground:      Color{0.48, 0.46, 0.43},
		},
		{
			Name:        "arctic",
			HillAmpMul:  1.2,
			HillFreqMul: 0.9,
			NoiseAmpMul: 0.8,
			Sky:         Color{0.78, 0.87, 0.94},
			Ground:      Color{0.92, 0.94, 0.96},
		},
	}
}

// BlendBiomes linearly interpolates the shaping multipliers and colors of two
// biomes. t is clamped to [0, 1]; the result keeps b's name once t reaches 0.5.
func BlendBiomes(a, b Biome, t float64) Biome {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	name := a.Name
	if t >= 0.5 {
		name = b.Name
	}
	return Biome{
		Name:        name,
		HillAmpMul:  lerp(a.HillAmpMul, b.HillAmpMul, t),
		HillFreqMul: lerp(a.HillFreqMul, b.HillFreqMul, t),
		NoiseAmpMul: lerp(a.NoiseAmpMul, b.NoiseAmpMul, t),
		Sky:         blendColor(a.Sky, b.Sky, t),
		Ground:      blendColor(a.Ground, b.Ground, t),
	}
}

// BiomeSequence partitions x into fixed-length segments, cycling through a
// biome list. Inside the trailing transition sub-window of each segment the
// shaping multipliers and colors interpolate toward the next biome, so
// collision geometry morphs smoothly instead of stepping at the boundary.
type BiomeSequence struct {
	biomes        []Biome
	segmentLength float64
	transition    float64
}

// NewBiomeSequence creates a sequence over the given biomes. segmentLength is
// the span of one biome in world units; transition is the trailing sub-window
// over which adjacent biomes blend. The biome list must be non-empty and
// transition must fit inside a segment.
func NewBiomeSequence(biomes []Biome, segmentLength, transition float64) (*BiomeSequence, error) {
	if len(biomes) == 0 {
		return nil, errors.New("biome sequence requires at least one biome")
	}
	if segmentLength <= 0 {
		return nil, fmt.Errorf("segment length must be positive, got %v", segmentLength)
	}
	if transition < 0 || transition > segmentLength {
		return nil, fmt.Errorf("transition %v outside [0, %v]", transition, segmentLength)
	}
	return &BiomeSequence{
		biomes:        biomes,
		segmentLength: segmentLength,
		transition:    transition,
	}, nil
}

// BiomeAt returns the (possibly blended) biome governing position x.
func (s *BiomeSequence) BiomeAt(x float64) Biome {
	if x < 0 {
		x = 0
	}
	seg := int(x / s.segmentLength)
	cur := s.biomes[seg%len(s.biomes)]
	if s.transition == 0 {
		return cur
	}

	into := x - float64(seg)*s.segmentLength
	blendStart := s.segmentLength - s.transition
	if into < blendStart {
		return cur
	}

	next := s.biomes[(seg+1)%len(s.biomes)]
	t := (into - blendStart) / s.transition
	return BlendBiomes(cur, next, t)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func blendColor(a, b Color, t float64) Color {
	return Color{
		R: lerp(a.R, b.R, t),
		G: lerp(a.G, b.G, t),
		B: lerp(a.B, b.B, t),
	}
}

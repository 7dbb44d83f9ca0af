package terrain

import (
	"fmt"
)

// StreamerConfig controls the sliding chunk window.
type StreamerConfig struct {
	ChunkWidth   float64
	PointSpacing float64
	LoadAhead    float64
	UnloadBehind float64

	// Biome cycling (endless mode). Ignored when a fixed biome is set.
	SegmentLength    float64
	TransitionLength float64
}

// DefaultStreamerConfig returns the shipped streaming tuning.
func DefaultStreamerConfig() StreamerConfig {
	return StreamerConfig{
		ChunkWidth:       800,
		PointSpacing:     20,
		LoadAhead:        1500,
		UnloadBehind:     1000,
		SegmentLength:    10000,
		TransitionLength: 2000,
	}
}

// Streamer maintains a sliding window of terrain chunks: generated ahead of a
// moving reference position, retired once fully behind it. All mutation happens
// on the simulation thread; the streamer is not safe for concurrent writes.
type Streamer struct {
	cfg StreamerConfig
	gen *HeightField

	fixedBiome *Biome
	biomes     *BiomeSequence

	chunks         []*Chunk
	generatedUpToX float64
	initialized    bool

	// Optional hooks for the collision layer.
	onChunkAdded   func(*Chunk)
	onChunkRemoved func(*Chunk)
}

// NewStreamer creates a streamer that cycles through the built-in biomes.
func NewStreamer(seed int64, cfg StreamerConfig) (*Streamer, error) {
	return newStreamer(seed, cfg, nil, BuiltinBiomes())
}

// NewFixedBiomeStreamer creates a streamer locked to a single biome.
func NewFixedBiomeStreamer(seed int64, cfg StreamerConfig, biome Biome) (*Streamer, error) {
	return newStreamer(seed, cfg, &biome, nil)
}

// NewStreamerWithBiomes creates a streamer cycling through an explicit biome
// list, e.g. one loaded from a level pack.
func NewStreamerWithBiomes(seed int64, cfg StreamerConfig, biomes []Biome) (*Streamer, error) {
	return newStreamer(seed, cfg, nil, biomes)
}

func newStreamer(seed int64, cfg StreamerConfig, fixed *Biome, biomes []Biome) (*Streamer, error) {
	if cfg.ChunkWidth <= 0 {
		return nil, fmt.Errorf("chunk width must be positive, got %v", cfg.ChunkWidth)
	}
	if cfg.PointSpacing <= 0 || cfg.PointSpacing > cfg.ChunkWidth {
		return nil, fmt.Errorf("point spacing %v outside (0, %v]", cfg.PointSpacing, cfg.ChunkWidth)
	}
	if cfg.LoadAhead <= 0 {
		return nil, fmt.Errorf("load-ahead distance must be positive, got %v", cfg.LoadAhead)
	}
	if cfg.UnloadBehind < 0 {
		return nil, fmt.Errorf("unload-behind distance must be non-negative, got %v", cfg.UnloadBehind)
	}

	s := &Streamer{
		cfg:        cfg,
		gen:        NewHeightField(seed),
		fixedBiome: fixed,
	}
	if fixed == nil {
		seq, err := NewBiomeSequence(biomes, cfg.SegmentLength, cfg.TransitionLength)
		if err != nil {
			return nil, err
		}
		s.biomes = seq
	}
	return s, nil
}

// SetChunkListeners registers hooks invoked when chunks enter and leave the
// live set, so the physics layer can mirror collision bodies. Must be set
// before terrain generation starts.
func (s *Streamer) SetChunkListeners(added, removed func(*Chunk)) {
	s.onChunkAdded = added
	s.onChunkRemoved = removed
}

// BiomeAt returns the (possibly blended) biome governing position x.
func (s *Streamer) BiomeAt(x float64) Biome {
	if s.fixedBiome != nil {
		return *s.fixedBiome
	}
	return s.biomes.BiomeAt(x)
}

// HeightField returns the underlying generator.
func (s *Streamer) HeightField() *HeightField { return s.gen }

// sample is the composed height function: biome resolution plus generation.
func (s *Streamer) sample(x float64) float64 {
	return s.gen.HeightAt(x, s.BiomeAt(x))
}

// GenerateInitialTerrain seeds the window: a launch-pad chunk that is flat at
// BaseHeight for its first 70% and blends into generated terrain over the
// final 30%, then enough ordinary chunks to satisfy the load-ahead distance.
// Calling it again after terrain exists is a no-op.
func (s *Streamer) GenerateInitialTerrain() {
	if s.initialized {
		return
	}
	s.initialized = true

	w := s.cfg.ChunkWidth
	flatEnd := 0.7 * w
	base := s.gen.BaseHeight()

	launch := GenerateChunk(func(x float64) float64 {
		if x <= flatEnd {
			return base
		}
		t := (x - flatEnd) / (w - flatEnd)
		return base + (s.sample(x)-base)*smoothstep(t)
	}, 0, w, s.cfg.PointSpacing)

	s.appendChunk(launch)

	for s.generatedUpToX < s.cfg.LoadAhead {
		s.generateNext()
	}
}

// Update advances the window for the given reference position: terrain is
// generated up to referenceX+LoadAhead, and chunks fully behind
// referenceX-UnloadBehind are removed. Must run before any height query that
// depends on it within the same tick.
func (s *Streamer) Update(referenceX float64) {
	if !s.initialized {
		s.GenerateInitialTerrain()
	}

	for s.generatedUpToX < referenceX+s.cfg.LoadAhead {
		s.generateNext()
	}

	cutoff := referenceX - s.cfg.UnloadBehind
	keep := 0
	for _, c := range s.chunks {
		if c.EndX() < cutoff {
			if s.onChunkRemoved != nil {
				s.onChunkRemoved(c)
			}
			continue
		}
		s.chunks[keep] = c
		keep++
	}
	clear(s.chunks[keep:])
	s.chunks = s.chunks[:keep]
}

// generateNext appends the chunk [generatedUpToX, generatedUpToX+ChunkWidth].
// The watermark advances by exactly one chunk width: no skips, no overlaps.
func (s *Streamer) generateNext() {
	c := GenerateChunk(s.sample, s.generatedUpToX, s.cfg.ChunkWidth, s.cfg.PointSpacing)
	s.appendChunk(c)
}

func (s *Streamer) appendChunk(c *Chunk) {
	s.chunks = append(s.chunks, c)
	s.generatedUpToX += s.cfg.ChunkWidth
	if s.onChunkAdded != nil {
		s.onChunkAdded(c)
	}
}

// SurfaceY returns the interpolated terrain height at x, or false when no live
// chunk covers x (already unloaded, or beyond generation).
func (s *Streamer) SurfaceY(x float64) (float64, bool) {
	for _, c := range s.chunks {
		if y, ok := c.SurfaceY(x); ok {
			return y, true
		}
	}
	return 0, false
}

// GeneratedUpToX returns the monotonically non-decreasing generation watermark.
func (s *Streamer) GeneratedUpToX() float64 { return s.generatedUpToX }

// LastGeneratedX returns the rightmost x covered by a live chunk, 0 if none.
func (s *Streamer) LastGeneratedX() float64 {
	if len(s.chunks) == 0 {
		return 0
	}
	return s.chunks[len(s.chunks)-1].EndX()
}

// Chunks returns the live chunk window, ordered by StartX.
func (s *Streamer) Chunks() []*Chunk { return s.chunks }

// Package game composes the terrain streamer, physics world and vehicle into
// a tick-stepped play session.
package game

import (
	"fmt"
	"log/slog"

	"github.com/hillrush/hillrush/internal/physics"
	"github.com/hillrush/hillrush/internal/terrain"
	"github.com/hillrush/hillrush/internal/vehicle"
)

// Controls are the per-tick input intents handed to the session.
type Controls struct {
	Throttle  bool
	Reverse   bool
	Brake     bool
	TiltLeft  bool
	TiltRight bool
}

// Frame is the per-tick snapshot emitted for observers and replays.
type Frame struct {
	Tick       uint64  `json:"tick"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	VX         float64 `json:"vx"`
	VY         float64 `json:"vy"`
	Angle      float64 `json:"angle"`
	Speed      float64 `json:"speed"`
	Stationary bool    `json:"stationary"`
	Distance   float64 `json:"distance"`
	Watermark  float64 `json:"watermark"`
	Biome      string  `json:"biome"`
	GroundY    float64 `json:"ground_y"`
	OnTerrain  bool    `json:"on_terrain"`
}

// SessionConfig assembles a session. Zero-valued fields use defaults.
type SessionConfig struct {
	Seed       int64
	Gravity    float64
	TickRateHz int
	SpawnX     float64

	Streamer terrain.StreamerConfig
	Vehicle  vehicle.Config

	// FixedBiome locks terrain to one built-in biome by name; empty enables
	// endless biome cycling. Biomes overrides the built-in cycle entirely
	// (level packs).
	FixedBiome string
	Biomes     []terrain.Biome
}

// DefaultSessionConfig returns the shipping session setup.
func DefaultSessionConfig(seed int64) SessionConfig {
	return SessionConfig{
		Seed:       seed,
		Gravity:    -500,
		TickRateHz: 60,
		SpawnX:     120,
		Streamer:   terrain.DefaultStreamerConfig(),
		Vehicle:    vehicle.DefaultConfig(),
	}
}

// Session drives one play run. All methods run on the simulation thread.
type Session struct {
	log *slog.Logger
	cfg SessionConfig

	streamer *terrain.Streamer
	world    *physics.World
	vehicle  *vehicle.Vehicle

	chains map[*terrain.Chunk]*physics.EdgeChain

	tick     uint64
	dt       float64
	distance float64
}

// NewSession builds the streamer, physics world and vehicle for a run.
// Terrain is generated eagerly so the vehicle spawns on solid ground.
func NewSession(cfg SessionConfig, log *slog.Logger) (*Session, error) {
	if cfg.TickRateHz <= 0 {
		return nil, fmt.Errorf("tick rate must be positive, got %d", cfg.TickRateHz)
	}
	if cfg.Gravity >= 0 {
		return nil, fmt.Errorf("gravity must be negative, got %v", cfg.Gravity)
	}

	streamer, err := buildStreamer(cfg)
	if err != nil {
		return nil, fmt.Errorf("terrain streamer: %w", err)
	}

	world := physics.NewWorld(physics.Vec2{Y: cfg.Gravity})

	s := &Session{
		log:      log,
		cfg:      cfg,
		streamer: streamer,
		world:    world,
		chains:   make(map[*terrain.Chunk]*physics.EdgeChain),
		dt:       1.0 / float64(cfg.TickRateHz),
	}

	// Mirror chunk lifecycle into static collision bodies. Registered before
	// generation so the launch chunk gets a body too.
	streamer.SetChunkListeners(s.addChunkBody, s.removeChunkBody)
	streamer.GenerateInitialTerrain()

	groundY, ok := streamer.SurfaceY(cfg.SpawnX)
	if !ok {
		return nil, fmt.Errorf("no terrain at spawn x=%v", cfg.SpawnX)
	}
	spawn := physics.Vec2{X: cfg.SpawnX, Y: groundY + 60}
	veh, err := vehicle.Spawn(world, spawn, cfg.Vehicle)
	if err != nil {
		return nil, fmt.Errorf("spawn vehicle: %w", err)
	}
	s.vehicle = veh

	log.Info("session ready",
		"seed", cfg.Seed,
		"spawnX", cfg.SpawnX,
		"spawnY", spawn.Y,
		"watermark", streamer.GeneratedUpToX(),
	)
	return s, nil
}

func buildStreamer(cfg SessionConfig) (*terrain.Streamer, error) {
	if cfg.FixedBiome != "" {
		for _, b := range biomePool(cfg) {
			if b.Name == cfg.FixedBiome {
				return terrain.NewFixedBiomeStreamer(cfg.Seed, cfg.Streamer, b)
			}
		}
		return nil, fmt.Errorf("unknown biome %q", cfg.FixedBiome)
	}
	return terrain.NewStreamerWithBiomes(cfg.Seed, cfg.Streamer, biomePool(cfg))
}

func biomePool(cfg SessionConfig) []terrain.Biome {
	if len(cfg.Biomes) > 0 {
		return cfg.Biomes
	}
	return terrain.BuiltinBiomes()
}

func (s *Session) addChunkBody(c *terrain.Chunk) {
	pts := c.CollisionPolyline()
	if len(pts) < 2 {
		return
	}
	vecs := make([]physics.Vec2, len(pts))
	for i, p := range pts {
		vecs[i] = physics.Vec2{X: p.X, Y: p.Y}
	}
	chain, err := s.world.AddEdgeChain(vecs)
	if err != nil {
		// Chunk points are increasing by construction; this is a bug, not a
		// runtime condition.
		s.log.Error("reject chunk collision body", "startX", c.StartX(), "error", err)
		return
	}
	s.chains[c] = chain
}

func (s *Session) removeChunkBody(c *terrain.Chunk) {
	if chain, ok := s.chains[c]; ok {
		s.world.RemoveEdgeChain(chain)
		delete(s.chains, c)
	}
}

// Step advances the session one tick: terrain streaming first, then control
// intents, then physics. Streaming before any consumer keeps terrain extending
// beyond the vehicle at all times.
func (s *Session) Step(c Controls) Frame {
	pos := s.vehicle.Position()
	s.streamer.Update(pos.X)

	if c.Throttle {
		s.vehicle.MoveForward()
	}
	if c.Reverse {
		s.vehicle.MoveBackward()
	}
	if c.Brake {
		s.vehicle.ApplyBrake()
	}
	if c.TiltLeft {
		s.vehicle.TiltLeft()
	}
	if c.TiltRight {
		s.vehicle.TiltRight()
	}

	s.world.Step(s.dt)
	s.tick++

	pos = s.vehicle.Position()
	if pos.X > s.distance {
		s.distance = pos.X
	}
	return s.frame(pos)
}

func (s *Session) frame(pos physics.Vec2) Frame {
	vel := s.vehicle.Chassis().Velocity()
	groundY, onTerrain := s.streamer.SurfaceY(pos.X)
	return Frame{
		Tick:       s.tick,
		X:          pos.X,
		Y:          pos.Y,
		VX:         vel.X,
		VY:         vel.Y,
		Angle:      s.vehicle.Heading(),
		Speed:      s.vehicle.Speed(),
		Stationary: s.vehicle.IsStationary(),
		Distance:   s.distance,
		Watermark:  s.streamer.GeneratedUpToX(),
		Biome:      s.streamer.BiomeAt(pos.X).Name,
		GroundY:    groundY,
		OnTerrain:  onTerrain,
	}
}

// Tick returns the number of completed steps.
func (s *Session) Tick() uint64 { return s.tick }

// Distance returns the farthest x the vehicle has reached.
func (s *Session) Distance() float64 { return s.distance }

// Vehicle returns the session's vehicle.
func (s *Session) Vehicle() *vehicle.Vehicle { return s.vehicle }

// Terrain returns the session's streamer.
func (s *Session) Terrain() *terrain.Streamer { return s.streamer }

// SurfaceY exposes the streamer's height query for external spawner logic.
func (s *Session) SurfaceY(x float64) (float64, bool) {
	return s.streamer.SurfaceY(x)
}

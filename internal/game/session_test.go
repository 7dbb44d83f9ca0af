package game

import (
	"io"
	"log/slog"
	"math"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(t *testing.T, seed int64) *Session {
	t.Helper()
	s, err := NewSession(DefaultSessionConfig(seed), testLogger())
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	return s
}

func TestNewSessionValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SessionConfig)
	}{
		{"zero tick rate", func(c *SessionConfig) { c.TickRateHz = 0 }},
		{"positive gravity", func(c *SessionConfig) { c.Gravity = 10 }},
		{"unknown biome", func(c *SessionConfig) { c.FixedBiome = "lava" }},
		{"bad streamer config", func(c *SessionConfig) { c.Streamer.ChunkWidth = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSessionConfig(42)
			tt.mutate(&cfg)
			if _, err := NewSession(cfg, testLogger()); err == nil {
				t.Errorf("NewSession() error = nil, want error")
			}
		})
	}
}

func TestSessionSpawnsOnTerrain(t *testing.T) {
	s := newTestSession(t, 42)

	pos := s.Vehicle().Position()
	groundY, ok := s.SurfaceY(pos.X)
	if !ok {
		t.Fatalf("SurfaceY(%v) not covered at spawn", pos.X)
	}
	if pos.Y <= groundY {
		t.Errorf("spawn y = %v, want above ground %v", pos.Y, groundY)
	}

	// Let it settle onto the launch pad.
	for i := 0; i < 300; i++ {
		s.Step(Controls{})
	}
	pos = s.Vehicle().Position()
	groundY, ok = s.SurfaceY(pos.X)
	if !ok {
		t.Fatalf("SurfaceY(%v) not covered after settling", pos.X)
	}
	if pos.Y < groundY || pos.Y > groundY+100 {
		t.Errorf("settled y = %v, want within 100 above ground %v", pos.Y, groundY)
	}
}

func TestSessionTerrainStaysAhead(t *testing.T) {
	s := newTestSession(t, 7)

	for i := 0; i < 2400; i++ {
		f := s.Step(Controls{Throttle: true})
		if !f.OnTerrain {
			t.Fatalf("tick %d: vehicle at x=%v has no terrain under it", f.Tick, f.X)
		}
		// Streaming runs before integration, so allow one tick of motion.
		if f.Watermark < f.X+s.cfg.Streamer.LoadAhead-20 {
			t.Fatalf("tick %d: watermark %v < x %v + load-ahead", f.Tick, f.Watermark, f.X)
		}
	}
}

func TestSessionChunkBodiesMirrorWindow(t *testing.T) {
	s := newTestSession(t, 7)

	if got, want := len(s.chains), len(s.Terrain().Chunks()); got != want {
		t.Fatalf("initial chains = %d, want %d", got, want)
	}

	for i := 0; i < 3000; i++ {
		s.Step(Controls{Throttle: true})
	}
	if got, want := len(s.chains), len(s.Terrain().Chunks()); got != want {
		t.Errorf("chains after driving = %d, want %d (live chunks)", got, want)
	}
	for c := range s.chains {
		found := false
		for _, live := range s.Terrain().Chunks() {
			if live == c {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("chain kept for retired chunk starting at %v", c.StartX())
		}
	}
}

func TestSessionThrottleAdvancesDistance(t *testing.T) {
	s := newTestSession(t, 42)

	for i := 0; i < 300; i++ {
		s.Step(Controls{})
	}
	start := s.Distance()
	for i := 0; i < 600; i++ {
		s.Step(Controls{Throttle: true})
	}
	if s.Distance() <= start+100 {
		t.Errorf("distance = %v after driving, want > %v", s.Distance(), start+100)
	}
}

func TestSessionDistanceIsHighWaterMark(t *testing.T) {
	s := newTestSession(t, 42)

	for i := 0; i < 600; i++ {
		s.Step(Controls{Throttle: true})
	}
	peak := s.Distance()
	for i := 0; i < 600; i++ {
		s.Step(Controls{Reverse: true})
	}
	if s.Distance() < peak {
		t.Errorf("distance = %v after reversing, want >= earlier peak %v", s.Distance(), peak)
	}
}

func TestSessionFrameContent(t *testing.T) {
	s := newTestSession(t, 42)

	var f Frame
	for i := 0; i < 10; i++ {
		f = s.Step(Controls{})
	}
	if f.Tick != 10 {
		t.Errorf("Tick = %d, want 10", f.Tick)
	}
	if f.Biome == "" {
		t.Errorf("Biome is empty")
	}
	if !f.OnTerrain {
		t.Errorf("OnTerrain = false near spawn")
	}
	if math.IsNaN(f.Y) || math.IsNaN(f.Speed) {
		t.Errorf("frame has NaN fields: %+v", f)
	}
}

func TestSessionDeterminism(t *testing.T) {
	script := func(i int) Controls {
		return Controls{
			Throttle:  i%3 != 0,
			Brake:     i%97 == 0,
			TiltRight: i%11 == 0,
		}
	}

	a := newTestSession(t, 1234)
	b := newTestSession(t, 1234)
	var fa, fb Frame
	for i := 0; i < 1200; i++ {
		fa = a.Step(script(i))
		fb = b.Step(script(i))
	}
	if fa != fb {
		t.Errorf("same seed and inputs diverged:\n  a = %+v\n  b = %+v", fa, fb)
	}
}

func TestSessionFixedBiome(t *testing.T) {
	cfg := DefaultSessionConfig(42)
	cfg.FixedBiome = "desert"
	s, err := NewSession(cfg, testLogger())
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	f := s.Step(Controls{})
	if f.Biome != "desert" {
		t.Errorf("Biome = %q, want %q", f.Biome, "desert")
	}
}

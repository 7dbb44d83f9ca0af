package terrain

import (
	"math"
	"testing"
)

func flatSample(y float64) SampleFunc {
	return func(float64) float64 { return y }
}

func TestGenerateChunkSampling(t *testing.T) {
	g := NewHeightField(42)
	b := DefaultBiome()
	c := GenerateChunk(func(x float64) float64 { return g.HeightAt(x, b) }, 1000, 800, 20)

	points := c.Points()
	if points[0].X != 1000 {
		t.Errorf("first point x = %f, want 1000", points[0].X)
	}
	last := points[len(points)-1]
	if math.Abs(last.X-1800) > 20 {
		t.Errorf("last point x = %f, want 1800 (±spacing)", last.X)
	}

	for i := 1; i < len(points); i++ {
		dx := points[i].X - points[i-1].X
		if math.Abs(dx-20) > 1e-9 {
			t.Fatalf("spacing between points %d and %d = %f, want 20", i-1, i, dx)
		}
		if points[i].X <= points[i-1].X {
			t.Fatalf("points not strictly increasing at index %d", i)
		}
	}
}

func TestChunkSurfaceYInterpolates(t *testing.T) {
	// y = x/2 samples linearly; interpolation must reproduce it exactly.
	c := GenerateChunk(func(x float64) float64 { return x / 2 }, 0, 100, 10)

	for _, x := range []float64{0, 5, 13, 50, 99.5, 100} {
		y, ok := c.SurfaceY(x)
		if !ok {
			t.Fatalf("SurfaceY(%f) not found inside chunk", x)
		}
		if math.Abs(y-x/2) > 1e-9 {
			t.Errorf("SurfaceY(%f) = %f, want %f", x, y, x/2)
		}
	}
}

func TestChunkSurfaceYOutOfRange(t *testing.T) {
	c := GenerateChunk(flatSample(100), 500, 200, 20)

	for _, x := range []float64{499.9, 700.1, -10, 10000} {
		if _, ok := c.SurfaceY(x); ok {
			t.Errorf("SurfaceY(%f) = found, want not-found outside [500, 700]", x)
		}
	}
}

func TestChunkSurfaceYIsPiecewiseLinear(t *testing.T) {
	g := NewHeightField(7)
	b := DefaultBiome()
	sample := func(x float64) float64 { return g.HeightAt(x, b) }
	c := GenerateChunk(sample, 2000, 800, 20)

	// Midway between two samples the chunk answers the segment midpoint, not
	// the raw generator: collision geometry is the sampled polyline.
	x := 2010.0
	y, ok := c.SurfaceY(x)
	if !ok {
		t.Fatal("SurfaceY(2010) not found")
	}
	want := (sample(2000) + sample(2020)) / 2
	if math.Abs(y-want) > 1e-9 {
		t.Errorf("SurfaceY(2010) = %f, want segment midpoint %f", y, want)
	}
}

func TestGenerateChunkZeroWidth(t *testing.T) {
	for _, width := range []float64{0, -50} {
		c := GenerateChunk(flatSample(80), 100, width, 20)
		points := c.Points()
		if len(points) != 1 {
			t.Fatalf("width %f: got %d points, want 1", width, len(points))
		}
		if points[0].X != 100 || points[0].Y != 80 {
			t.Errorf("width %f: first point = %+v, want {100 80}", width, points[0])
		}
	}
}

func TestChunkCollisionPolylineMatchesPoints(t *testing.T) {
	c := GenerateChunk(flatSample(60), 0, 100, 25)

	poly := c.CollisionPolyline()
	points := c.Points()
	if len(poly) != len(points) {
		t.Fatalf("polyline has %d points, surface has %d", len(poly), len(points))
	}
	for i := range poly {
		if poly[i] != points[i] {
			t.Errorf("polyline[%d] = %+v, want %+v", i, poly[i], points[i])
		}
	}
}

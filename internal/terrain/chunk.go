package terrain

// Point is a single terrain surface sample.
type Point struct {
	X, Y float64
}

// SampleFunc returns the terrain height at x. The streamer composes the
// height field and biome sequencing into one of these before sampling.
type SampleFunc func(x float64) float64

// Chunk is an immutable slice of terrain geometry: surface points at fixed
// spacing over [StartX, EndX] and the collision polyline derived from them.
type Chunk struct {
	startX  float64
	endX    float64
	spacing float64
	points  []Point
}

// GenerateChunk samples fn at fixed spacing over [startX, startX+width].
// A zero or negative width still yields the first sample point.
func GenerateChunk(fn SampleFunc, startX, width, spacing float64) *Chunk {
	n := 0
	if width > 0 {
		n = int(width / spacing)
		if float64(n)*spacing < width {
			n++
		}
	}

	points := make([]Point, n+1)
	for i := 0; i <= n; i++ {
		x := startX + float64(i)*spacing
		points[i] = Point{X: x, Y: fn(x)}
	}

	return &Chunk{
		startX:  startX,
		endX:    points[n].X,
		spacing: spacing,
		points:  points,
	}
}

// StartX returns the chunk's leftmost covered coordinate.
func (c *Chunk) StartX() float64 { return c.startX }

// EndX returns the x of the chunk's last sample point.
func (c *Chunk) EndX() float64 { return c.endX }

// Points returns the ordered surface samples. The returned slice is shared;
// callers must not modify it.
func (c *Chunk) Points() []Point { return c.points }

// CollisionPolyline returns the open polyline the physics layer turns into a
// static edge chain. It is the surface point sequence itself, derived once at
// construction.
func (c *Chunk) CollisionPolyline() []Point { return c.points }

// SurfaceY returns the terrain height at x, linearly interpolated between the
// two bracketing sample points. The second result is false when x falls
// outside [StartX, EndX]; absence is explicit, never a default height.
func (c *Chunk) SurfaceY(x float64) (float64, bool) {
	if x < c.startX || x > c.endX {
		return 0, false
	}
	if len(c.points) == 1 {
		return c.points[0].Y, true
	}

	i := int((x - c.startX) / c.spacing)
	if i >= len(c.points)-1 {
		i = len(c.points) - 2
	}

	p0, p1 := c.points[i], c.points[i+1]
	t := (x - p0.X) / (p1.X - p0.X)
	return p0.Y + (p1.Y-p0.Y)*t, true
}

package terrain

// Perlin-style 1D gradient noise. Produces values in the range [-1, 1].

// Noise produces deterministic smooth 1D noise from a seed.
type Noise struct {
	perm [512]int
}

// NewNoise creates a noise generator with a seeded permutation table.
func NewNoise(seed int64) *Noise {
	n := &Noise{}

	// Initialize with identity permutation.
	var p [256]int
	for i := range p {
		p[i] = i
	}

	// Fisher-Yates shuffle with seed-derived random.
	s := seed
	for i := 255; i > 0; i-- {
		s = s*6364136223846793005 + 1442695040888963407 // LCG
		j := int((s>>33)&0x7FFFFFFF) % (i + 1)
		if j < 0 {
			j = -j
		}
		p[i], p[j] = p[j], p[i]
	}

	// Double the permutation table for wrapping.
	for i := 0; i < 512; i++ {
		n.perm[i] = p[i&255]
	}
	return n
}

// Noise1D returns 1D gradient noise for the given coordinate.
// Output is in the range [-1, 1].
func (n *Noise) Noise1D(x float64) float64 {
	xi := fastFloor(x)
	xf := x - float64(xi)

	cell := xi & 255
	g0 := grad1(n.perm[cell])
	g1 := grad1(n.perm[cell+1])

	// Gradient contributions at the two cell corners.
	a := g0 * xf
	b := g1 * (xf - 1.0)

	t := fade(xf)
	return 2.0 * (a + t*(b-a))
}

// Octave1D layers multiple octaves of noise for fractal detail.
// The result is normalized back into [-1, 1].
func (n *Noise) Octave1D(x float64, octaves int, persistence float64) float64 {
	var total, maxVal float64
	frequency := 1.0
	amplitude := 1.0

	for i := 0; i < octaves; i++ {
		total += n.Noise1D(x*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2.0
	}
	return total / maxVal
}

// grad1 maps a permutation value to a gradient in [-1, 1].
func grad1(hash int) float64 {
	g := float64(1+hash&7) / 8.0
	if hash&8 != 0 {
		return -g
	}
	return g
}

// fade is the quintic smoothing curve 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	return t * t * t * (t*(t*6.0-15.0) + 10.0)
}

func fastFloor(x float64) int {
	xi := int(x)
	if x < float64(xi) {
		return xi - 1
	}
	return xi
}

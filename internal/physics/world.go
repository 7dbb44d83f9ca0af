package physics

import (
	"errors"
	"math"
)

// ErrMissingBody is returned when a constraint is created over a nil body.
var ErrMissingBody = errors.New("physics: constraint requires two backed bodies")

// EdgeChain is a static collision polyline with strictly increasing x, the
// shape terrain chunks hand to the world.
type EdgeChain struct {
	points []Vec2
}

// StartX returns the chain's leftmost covered coordinate.
func (e *EdgeChain) StartX() float64 { return e.points[0].X }

// EndX returns the chain's rightmost covered coordinate.
func (e *EdgeChain) EndX() float64 { return e.points[len(e.points)-1].X }

// World steps rigid bodies, constraints, and static terrain once per
// simulation tick. It is driven by a single thread.
type World struct {
	gravity Vec2

	bodies      []*RigidBody
	constraints []Constraint
	chains      []*EdgeChain

	friction   float64
	iterations int
}

// NewWorld creates a world with the given gravity (negative y pulls down).
func NewWorld(gravity Vec2) *World {
	return &World{
		gravity:    gravity,
		friction:   1.2,
		iterations: 4,
	}
}

// AddBody registers a body for integration and collision.
func (w *World) AddBody(b *RigidBody) {
	w.bodies = append(w.bodies, b)
}

// AddEdgeChain registers a static terrain polyline. Points must be ordered by
// strictly increasing x.
func (w *World) AddEdgeChain(points []Vec2) (*EdgeChain, error) {
	if len(points) < 2 {
		return nil, errors.New("physics: edge chain needs at least two points")
	}
	for i := 1; i < len(points); i++ {
		if points[i].X <= points[i-1].X {
			return nil, errors.New("physics: edge chain points must increase in x")
		}
	}
	c := &EdgeChain{points: points}
	w.chains = append(w.chains, c)
	return c, nil
}

// RemoveEdgeChain drops a static polyline, e.g. when its chunk unloads.
func (w *World) RemoveEdgeChain(c *EdgeChain) {
	for i, have := range w.chains {
		if have == c {
			w.chains = append(w.chains[:i], w.chains[i+1:]...)
			return
		}
	}
}

// NewSlideConstraint restricts b to a's local vertical axis through anchorA
// (local to a), with axial travel in [lower, upper].
func (w *World) NewSlideConstraint(a, b Body, anchorA Vec2, lower, upper float64) (*SlideConstraint, error) {
	if a == nil || b == nil {
		return nil, ErrMissingBody
	}
	c := newSlide(a, b, anchorA, lower, upper)
	w.constraints = append(w.constraints, c)
	return c, nil
}

// NewSpringConstraint connects anchorA (local to a) to b's center with a
// damped spring; rest length is the current separation.
func (w *World) NewSpringConstraint(a, b Body, anchorA Vec2, frequency, damping float64) (*SpringConstraint, error) {
	if a == nil || b == nil {
		return nil, ErrMissingBody
	}
	c := newSpring(a, b, anchorA, frequency, damping)
	w.constraints = append(w.constraints, c)
	return c, nil
}

// NewPinConstraint pins b's center to anchorA (local to a), leaving b free to
// rotate.
func (w *World) NewPinConstraint(a, b Body, anchorA Vec2) (*PinConstraint, error) {
	if a == nil || b == nil {
		return nil, ErrMissingBody
	}
	c := newPin(a, b, anchorA)
	w.constraints = append(w.constraints, c)
	return c, nil
}

// SurfaceAt returns the terrain height and unit surface normal at x, false
// when no chain covers x.
func (w *World) SurfaceAt(x float64) (float64, Vec2, bool) {
	for _, c := range w.chains {
		if x < c.StartX() || x > c.EndX() {
			continue
		}
		pts := c.points
		// Binary search for the segment containing x.
		lo, hi := 0, len(pts)-1
		for hi-lo > 1 {
			mid := (lo + hi) / 2
			if pts[mid].X <= x {
				lo = mid
			} else {
				hi = mid
			}
		}
		p0, p1 := pts[lo], pts[hi]
		t := (x - p0.X) / (p1.X - p0.X)
		y := p0.Y + (p1.Y-p0.Y)*t
		normal := p1.Sub(p0).Perp().Normalize()
		if normal.Y < 0 {
			normal = normal.Scale(-1)
		}
		return y, normal, true
	}
	return 0, Vec2{}, false
}

// Step advances the simulation by dt seconds.
func (w *World) Step(dt float64) {
	for _, c := range w.constraints {
		c.preStep(dt)
	}
	for _, b := range w.bodies {
		b.integrate(w.gravity, dt)
	}
	for i := 0; i < w.iterations; i++ {
		for _, c := range w.constraints {
			c.solve(dt)
		}
	}
	for _, b := range w.bodies {
		if b.radius > 0 {
			w.collideCircle(b, dt)
		}
	}
}

// collideCircle resolves a circle body against the terrain: positional
// push-out along the surface normal, zero restitution, and a friction impulse
// that couples wheel spin to forward motion.
func (w *World) collideCircle(b *RigidBody, dt float64) {
	ground, normal, ok := w.SurfaceAt(b.pos.X)
	if !ok {
		return
	}
	pen := ground + b.radius - b.pos.Y
	if pen <= 0 {
		return
	}

	b.pos.Y += pen

	vn := b.vel.Dot(normal)
	if vn < 0 {
		b.vel = b.vel.Sub(normal.Scale(vn))
	}

	// Tangent oriented toward +x. Contact point tangential slip includes the
	// spin term; opposing it is what drives a spinning wheel forward.
	tangent := Vec2{X: normal.Y, Y: -normal.X}
	slip := b.vel.Dot(tangent) + b.angVel*b.radius

	mt := 1.0 / (b.invMass + b.radius*b.radius*b.invInrt)
	lambda := -slip * mt

	maxFriction := w.friction * b.mass * math.Abs(w.gravity.Y) * dt
	if lambda > maxFriction {
		lambda = maxFriction
	}
	if lambda < -maxFriction {
		lambda = -maxFriction
	}

	b.vel = b.vel.Add(tangent.Scale(lambda * b.invMass))
	b.angVel += lambda * b.radius * b.invInrt
}

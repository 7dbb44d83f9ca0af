package physics

import "math"

// Constraint is solved by the world each step. Springs contribute forces
// before integration; slide and pin joints project positions and velocities
// after it.
type Constraint interface {
	preStep(dt float64)
	solve(dt float64)
}

// pointVelocity returns the velocity of a world-space point rigidly attached
// to the body.
func pointVelocity(b Body, worldPoint Vec2) Vec2 {
	r := worldPoint.Sub(b.Position())
	return b.Velocity().Add(r.Perp().Scale(b.AngularVelocity()))
}

func invMass(b Body) float64 {
	m := b.Mass()
	if m <= 0 {
		return 0
	}
	return 1.0 / m
}

// SpringConstraint supplies an elastic restoring force between an anchor
// point on body A and body B's center. Stiffness is parameterized by
// frequency in Hz; damping is a ratio (0 = undamped, 1 = critical).
type SpringConstraint struct {
	a, b    Body
	anchorA Vec2 // local to A
	rest    float64

	frequency float64
	damping   float64
}

func newSpring(a, b Body, anchorA Vec2, frequency, damping float64) *SpringConstraint {
	s := &SpringConstraint{
		a:         a,
		b:         b,
		anchorA:   anchorA,
		frequency: frequency,
		damping:   damping,
	}
	world := a.Position().Add(anchorA.Rotate(a.Angle()))
	s.rest = b.Position().Sub(world).Length()
	return s
}

func (s *SpringConstraint) preStep(dt float64) {
	anchorW := s.a.Position().Add(s.anchorA.Rotate(s.a.Angle()))
	d := s.b.Position().Sub(anchorW)
	length := d.Length()
	if length == 0 {
		return
	}
	dir := d.Scale(1.0 / length)

	// Box2D-style soft constraint: k = m*omega^2, c = 2*m*zeta*omega.
	m := s.b.Mass()
	omega := 2.0 * math.Pi * s.frequency
	k := m * omega * omega
	c := 2.0 * m * s.damping * omega

	relVel := s.b.Velocity().Sub(pointVelocity(s.a, anchorW)).Dot(dir)
	magnitude := -k*(length-s.rest) - c*relVel

	force := dir.Scale(magnitude)
	s.b.ApplyForceAtPoint(force, s.b.Position())
	s.a.ApplyForceAtPoint(force.Scale(-1), anchorW)
}

func (s *SpringConstraint) solve(dt float64) {}

// SlideConstraint restricts body B to move along body A's local vertical axis
// through a local anchor, with bounded travel. The axis rotates with A. Travel
// is measured along local "down": positive = extension, negative = compression.
type SlideConstraint struct {
	a, b    Body
	anchorA Vec2
	lower   float64
	upper   float64
}

func newSlide(a, b Body, anchorA Vec2, lower, upper float64) *SlideConstraint {
	return &SlideConstraint{a: a, b: b, anchorA: anchorA, lower: lower, upper: upper}
}

// Offset returns the current axial travel of B relative to A's anchor.
func (s *SlideConstraint) Offset() float64 {
	axis := Vec2{X: 0, Y: -1}.Rotate(s.a.Angle())
	anchorW := s.a.Position().Add(s.anchorA.Rotate(s.a.Angle()))
	return s.b.Position().Sub(anchorW).Dot(axis)
}

func (s *SlideConstraint) preStep(dt float64) {}

func (s *SlideConstraint) solve(dt float64) {
	axis := Vec2{X: 0, Y: -1}.Rotate(s.a.Angle())
	perp := axis.Perp()
	anchorW := s.a.Position().Add(s.anchorA.Rotate(s.a.Angle()))
	d := s.b.Position().Sub(anchorW)

	invA, invB := invMass(s.a), invMass(s.b)
	invSum := invA + invB
	if invSum == 0 {
		return
	}

	// Remove the perpendicular component: B may only slide along the axis.
	// Corrections are mass-weighted and equal-and-opposite so wheel impulses
	// propagate to the chassis.
	if p := d.Dot(perp); p != 0 {
		corr := perp.Scale(p)
		s.b.SetPosition(s.b.Position().Sub(corr.Scale(invB / invSum)))
		s.a.SetPosition(s.a.Position().Add(corr.Scale(invA / invSum)))
	}
	relVel := s.b.Velocity().Sub(pointVelocity(s.a, anchorW))
	if vp := relVel.Dot(perp); vp != 0 {
		imp := perp.Scale(-vp / invSum)
		s.b.SetVelocity(s.b.Velocity().Add(imp.Scale(invB)))
		s.a.SetVelocity(s.a.Velocity().Sub(imp.Scale(invA)))
	}

	// Clamp axial travel to the limits.
	ax := d.Dot(axis)
	clamped := math.Max(s.lower, math.Min(s.upper, ax))
	if clamped != ax {
		corr := axis.Scale(ax - clamped)
		s.b.SetPosition(s.b.Position().Sub(corr.Scale(invB / invSum)))
		s.a.SetPosition(s.a.Position().Add(corr.Scale(invA / invSum)))

		// Kill velocity still pushing past the limit.
		va := s.b.Velocity().Sub(pointVelocity(s.a, anchorW)).Dot(axis)
		pastLower := clamped == s.lower && va < 0
		pastUpper := clamped == s.upper && va > 0
		if pastLower || pastUpper {
			imp := axis.Scale(-va / invSum)
			s.b.SetVelocity(s.b.Velocity().Add(imp.Scale(invB)))
			s.a.SetVelocity(s.a.Velocity().Sub(imp.Scale(invA)))
		}
	}
}

// PinConstraint keeps body B's center coincident with an anchor on body A
// while leaving B's rotation free. This is the joint that lets a wheel spin
// under drive torque while staying attached.
type PinConstraint struct {
	a, b    Body
	anchorA Vec2
}

func newPin(a, b Body, anchorA Vec2) *PinConstraint {
	return &PinConstraint{a: a, b: b, anchorA: anchorA}
}

func (p *PinConstraint) preStep(dt float64) {}

func (p *PinConstraint) solve(dt float64) {
	anchorW := p.a.Position().Add(p.anchorA.Rotate(p.a.Angle()))

	invA, invB := invMass(p.a), invMass(p.b)
	invSum := invA + invB
	if invSum == 0 {
		return
	}

	relVel := p.b.Velocity().Sub(pointVelocity(p.a, anchorW))
	imp := relVel.Scale(-1.0 / invSum)
	p.b.SetVelocity(p.b.Velocity().Add(imp.Scale(invB)))
	p.a.SetVelocity(p.a.Velocity().Sub(imp.Scale(invA)))

	err := p.b.Position().Sub(anchorW)
	p.b.SetPosition(p.b.Position().Sub(err.Scale(invB / invSum)))
	p.a.SetPosition(p.a.Position().Add(err.Scale(invA / invSum)))
}

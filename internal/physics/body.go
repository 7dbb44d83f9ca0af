package physics

// Body is the minimal surface the vehicle layer programs against. It is
// satisfied by RigidBody; a different 2D engine can be adapted behind it
// without touching the control logic.
type Body interface {
	Position() Vec2
	SetPosition(Vec2)
	Velocity() Vec2
	SetVelocity(Vec2)
	Angle() float64
	AngularVelocity() float64
	SetAngularVelocity(float64)
	Mass() float64
	ApplyImpulse(Vec2)
	ApplyAngularImpulse(float64)
	ApplyForceAtPoint(force, worldPoint Vec2)
}

// RigidBody is an impulse-integrated 2D body. A positive radius makes it a
// circle that collides with terrain edge chains; radius 0 bodies (chassis,
// shock posts) are constraint-driven only.
type RigidBody struct {
	pos    Vec2
	vel    Vec2
	angle  float64
	angVel float64

	mass    float64
	invMass float64
	inertia float64
	invInrt float64
	radius  float64

	force  Vec2
	torque float64
}

// NewBody creates a non-colliding rigid body. Mass must be positive.
func NewBody(mass float64, pos Vec2) *RigidBody {
	// Point-mass inertia stand-in keeps angular impulses well-defined.
	return newRigidBody(mass, mass*10.0, 0, pos)
}

// NewCircleBody creates a circle body that collides with terrain.
func NewCircleBody(mass, radius float64, pos Vec2) *RigidBody {
	inertia := 0.5 * mass * radius * radius
	return newRigidBody(mass, inertia, radius, pos)
}

// NewBoxBody creates a non-colliding body with box inertia, used for the
// vehicle chassis so tilt forces produce sensible rotation.
func NewBoxBody(mass, width, height float64, pos Vec2) *RigidBody {
	inertia := mass * (width*width + height*height) / 12.0
	return newRigidBody(mass, inertia, 0, pos)
}

func newRigidBody(mass, inertia, radius float64, pos Vec2) *RigidBody {
	b := &RigidBody{
		pos:     pos,
		mass:    mass,
		inertia: inertia,
		radius:  radius,
	}
	if mass > 0 {
		b.invMass = 1.0 / mass
	}
	if inertia > 0 {
		b.invInrt = 1.0 / inertia
	}
	return b
}

func (b *RigidBody) Position() Vec2     { return b.pos }
func (b *RigidBody) SetPosition(p Vec2) { b.pos = p }
func (b *RigidBody) Velocity() Vec2     { return b.vel }
func (b *RigidBody) SetVelocity(v Vec2) { b.vel = v }

func (b *RigidBody) Angle() float64 { return b.angle }

// SetAngle overrides the body orientation directly.
func (b *RigidBody) SetAngle(a float64) { b.angle = a }

func (b *RigidBody) AngularVelocity() float64     { return b.angVel }
func (b *RigidBody) SetAngularVelocity(w float64) { b.angVel = w }

func (b *RigidBody) Mass() float64   { return b.mass }
func (b *RigidBody) Radius() float64 { return b.radius }

// ApplyImpulse changes linear velocity immediately.
func (b *RigidBody) ApplyImpulse(imp Vec2) {
	b.vel = b.vel.Add(imp.Scale(b.invMass))
}

// ApplyAngularImpulse changes angular velocity immediately.
func (b *RigidBody) ApplyAngularImpulse(imp float64) {
	b.angVel += imp * b.invInrt
}

// ApplyForceAtPoint accumulates a force applied at a world-space point; the
// offset from the center of mass produces torque.
func (b *RigidBody) ApplyForceAtPoint(force, worldPoint Vec2) {
	b.force = b.force.Add(force)
	r := worldPoint.Sub(b.pos)
	b.torque += r.Cross(force)
}

// ApplyForce accumulates a force through the center of mass.
func (b *RigidBody) ApplyForce(force Vec2) {
	b.force = b.force.Add(force)
}

// integrate advances the body one step and clears force accumulators.
func (b *RigidBody) integrate(gravity Vec2, dt float64) {
	b.vel = b.vel.Add(gravity.Scale(dt)).Add(b.force.Scale(b.invMass * dt))
	b.angVel += b.torque * b.invInrt * dt

	b.pos = b.pos.Add(b.vel.Scale(dt))
	b.angle += b.angVel * dt

	b.force = Vec2{}
	b.torque = 0
}

package vehicle

import (
	"errors"
	"math"
	"testing"

	"github.com/hillrush/hillrush/internal/physics"
)

const dt = 1.0 / 60.0

func flatWorld(t *testing.T, groundY float64) *physics.World {
	t.Helper()
	w := physics.NewWorld(physics.Vec2{Y: -500})
	if _, err := w.AddEdgeChain([]physics.Vec2{{X: -5000, Y: groundY}, {X: 5000, Y: groundY}}); err != nil {
		t.Fatalf("AddEdgeChain: %v", err)
	}
	return w
}

func spawnOnGround(t *testing.T, w *physics.World) *Vehicle {
	t.Helper()
	v, err := Spawn(w, physics.Vec2{X: 0, Y: 160}, DefaultConfig())
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	// Let the suspension settle.
	for i := 0; i < 300; i++ {
		w.Step(dt)
	}
	return v
}

func TestNewRejectsMissingBodies(t *testing.T) {
	w := physics.NewWorld(physics.Vec2{Y: -500})
	cfg := DefaultConfig()
	chassis := physics.NewBoxBody(cfg.ChassisMass, cfg.ChassisWidth, cfg.ChassisHeight, physics.Vec2{})
	wheel := physics.NewCircleBody(cfg.WheelMass, cfg.WheelRadius, physics.Vec2{})

	cases := []struct {
		name                 string
		chassis, front, rear physics.Body
	}{
		{"nil chassis", nil, wheel, wheel},
		{"nil front wheel", chassis, nil, wheel},
		{"nil rear wheel", chassis, wheel, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(w, tc.chassis, tc.front, tc.rear, cfg)
			if !errors.Is(err, physics.ErrMissingBody) {
				t.Errorf("err = %v, want ErrMissingBody", err)
			}
		})
	}
}

func TestConfigValidation(t *testing.T) {
	w := physics.NewWorld(physics.Vec2{Y: -500})

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero wheel radius", func(c *Config) { c.WheelRadius = 0 }},
		{"zero chassis mass", func(c *Config) { c.ChassisMass = 0 }},
		{"non-positive forward cap", func(c *Config) { c.MaxForwardSpeed = 0 }},
		{"positive backward cap", func(c *Config) { c.MaxBackwardSpeed = 100 }},
		{"zero tilt angle", func(c *Config) { c.MaxTiltAngle = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if _, err := Spawn(w, physics.Vec2{}, cfg); err == nil {
				t.Error("expected configuration error, got nil")
			}
		})
	}
}

func TestSuspensionPresetsAreValid(t *testing.T) {
	for _, cfg := range []SuspensionConfig{DefaultSuspension(), StiffSuspension(), SoftSuspension()} {
		if err := cfg.validate(); err != nil {
			t.Errorf("preset %+v invalid: %v", cfg, err)
		}
	}
}

func TestSuspensionTravelStaysBounded(t *testing.T) {
	w := flatWorld(t, 100)
	v, err := Spawn(w, physics.Vec2{X: 0, Y: 250}, DefaultConfig())
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	lo := v.FrontSuspension().Config().LowerLimit
	hi := v.FrontSuspension().Config().Travel

	// Drop, bounce, then drive: travel must stay clamped throughout.
	for i := 0; i < 900; i++ {
		w.Step(dt)
		if i%3 == 0 {
			v.MoveForward()
		}
		for name, s := range map[string]*SuspensionAssembly{
			"front": v.FrontSuspension(),
			"rear":  v.RearSuspension(),
		} {
			if off := s.Travel(); off < lo-1e-6 || off > hi+1e-6 {
				t.Fatalf("step %d: %s travel %f outside [%f, %f]", i, name, off, lo, hi)
			}
		}
	}
}

func TestMoveForwardSpeedClamp(t *testing.T) {
	w := flatWorld(t, 100)
	v := spawnOnGround(t, w)
	max := DefaultConfig().MaxForwardSpeed

	for i := 0; i < 500; i++ {
		v.MoveForward()
		for _, wheel := range []physics.Body{v.FrontWheel(), v.RearWheel()} {
			if vx := wheel.Velocity().X; vx > max+1e-9 {
				t.Fatalf("call %d: wheel velocity %f exceeds cap %f", i, vx, max)
			}
		}
	}
	if vx := v.FrontWheel().Velocity().X; math.Abs(vx-max) > 1e-6 {
		t.Errorf("front wheel converged to %f, want %f", vx, max)
	}
}

func TestMoveBackwardSpeedClampAsymmetric(t *testing.T) {
	w := flatWorld(t, 100)
	v := spawnOnGround(t, w)
	cfg := DefaultConfig()

	for i := 0; i < 500; i++ {
		v.MoveBackward()
		for _, wheel := range []physics.Body{v.FrontWheel(), v.RearWheel()} {
			if vx := wheel.Velocity().X; vx < cfg.MaxBackwardSpeed-1e-9 {
				t.Fatalf("call %d: wheel velocity %f below cap %f", i, vx, cfg.MaxBackwardSpeed)
			}
		}
	}
	if vx := v.RearWheel().Velocity().X; math.Abs(vx-cfg.MaxBackwardSpeed) > 1e-6 {
		t.Errorf("rear wheel converged to %f, want %f", vx, cfg.MaxBackwardSpeed)
	}
	if math.Abs(cfg.MaxBackwardSpeed) >= cfg.MaxForwardSpeed {
		t.Error("reverse cap should be smaller in magnitude than forward cap")
	}
}

func TestTiltLockoutBlocksDrive(t *testing.T) {
	w := flatWorld(t, 100)
	v := spawnOnGround(t, w)

	// Flip the chassis past the tilt limit.
	v.Chassis().(*physics.RigidBody).SetAngle(100 * math.Pi / 180)

	before := [2]physics.Vec2{v.FrontWheel().Velocity(), v.RearWheel().Velocity()}
	v.MoveForward()
	v.MoveBackward()
	after := [2]physics.Vec2{v.FrontWheel().Velocity(), v.RearWheel().Velocity()}

	if before != after {
		t.Errorf("drive while flipped changed wheel velocity: %+v -> %+v", before, after)
	}
}

func TestTiltLockoutAllowsDriveUpright(t *testing.T) {
	w := flatWorld(t, 100)
	v := spawnOnGround(t, w)

	before := v.FrontWheel().Velocity().X
	v.MoveForward()
	if v.FrontWheel().Velocity().X <= before {
		t.Error("upright MoveForward did not accelerate the wheel")
	}
}

func TestBrakeLocksOnlyRearWheel(t *testing.T) {
	w := flatWorld(t, 100)
	v := spawnOnGround(t, w)

	for i := 0; i < 100; i++ {
		v.MoveForward()
	}
	w.Step(dt)
	frontBefore := v.FrontWheel().Velocity()

	v.ApplyBrake()

	if got := v.RearWheel().Velocity(); got != (physics.Vec2{}) {
		t.Errorf("rear wheel velocity after brake = %+v, want zero", got)
	}
	if got := v.RearWheel().AngularVelocity(); got != 0 {
		t.Errorf("rear wheel spin after brake = %f, want 0", got)
	}
	if got := v.FrontWheel().Velocity(); got != frontBefore {
		t.Errorf("brake changed front wheel velocity: %+v -> %+v", frontBefore, got)
	}
}

func TestBrakeAtRestNeverAcceleratesForward(t *testing.T) {
	w := flatWorld(t, 100)
	v := spawnOnGround(t, w)

	for i := 0; i < 120; i++ {
		v.ApplyBrake()
		w.Step(dt)
		if vx := v.Chassis().Velocity().X; vx > 1.0 {
			t.Fatalf("step %d: braking at rest produced forward velocity %f", i, vx)
		}
	}
	if !v.IsStationary() {
		t.Error("vehicle should remain stationary under repeated braking")
	}
}

func TestTiltProducesRotation(t *testing.T) {
	w := physics.NewWorld(physics.Vec2{})
	v, err := Spawn(w, physics.Vec2{X: 0, Y: 500}, DefaultConfig())
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	v.TiltLeft()
	w.Step(dt)
	if v.Chassis().AngularVelocity() <= 0 {
		t.Errorf("TiltLeft angular velocity = %f, want counter-clockwise (positive)", v.Chassis().AngularVelocity())
	}

	// Cancel and tilt the other way.
	v.Chassis().SetAngularVelocity(0)
	v.TiltRight()
	w.Step(dt)
	if v.Chassis().AngularVelocity() >= 0 {
		t.Errorf("TiltRight angular velocity = %f, want clockwise (negative)", v.Chassis().AngularVelocity())
	}
}

func TestTiltForceRotatesWithChassis(t *testing.T) {
	w := physics.NewWorld(physics.Vec2{})
	v, err := Spawn(w, physics.Vec2{X: 0, Y: 500}, DefaultConfig())
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	// With the chassis rotated 90 degrees the tilt force direction follows
	// it, so the moment keeps the same sign.
	v.Chassis().(*physics.RigidBody).SetAngle(math.Pi / 2)
	v.TiltLeft()
	w.Step(dt)
	if v.Chassis().AngularVelocity() <= 0 {
		t.Errorf("rotated TiltLeft angular velocity = %f, want positive", v.Chassis().AngularVelocity())
	}
}

func TestStationaryAndMovingQueries(t *testing.T) {
	w := flatWorld(t, 100)
	v := spawnOnGround(t, w)

	if !v.IsStationary() {
		t.Errorf("settled vehicle not stationary: speed %f", v.Speed())
	}
	if v.IsMovingForward() {
		t.Error("settled vehicle reports moving forward")
	}

	for i := 0; i < 600; i++ {
		v.MoveForward()
		w.Step(dt)
	}
	if v.IsStationary() {
		t.Errorf("driven vehicle still stationary: vx %f", v.Chassis().Velocity().X)
	}
	if !v.IsMovingForward() {
		t.Errorf("driven vehicle not moving forward: vx %f", v.Chassis().Velocity().X)
	}
}

func TestHeadingNormalized(t *testing.T) {
	w := flatWorld(t, 100)
	v := spawnOnGround(t, w)

	v.Chassis().(*physics.RigidBody).SetAngle(3 * math.Pi)
	if h := v.Heading(); h < -math.Pi || h > math.Pi {
		t.Errorf("Heading = %f, want normalized into (-pi, pi]", h)
	}
}

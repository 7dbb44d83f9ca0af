package vehicle

import (
	"fmt"
	"math"

	"github.com/hillrush/hillrush/internal/physics"
)

// Config holds the drivable unit's geometry and control tuning.
type Config struct {
	ChassisMass   float64
	ChassisWidth  float64
	ChassisHeight float64
	WheelMass     float64
	WheelRadius   float64

	// Suspension anchor points in chassis-local coordinates.
	FrontAnchor physics.Vec2
	RearAnchor  physics.Vec2
	Suspension  SuspensionConfig

	// Drive.
	DriveImpulse float64
	SpinImpulse  float64
	// MaxForwardSpeed and MaxBackwardSpeed bound wheel horizontal velocity;
	// MaxBackwardSpeed is negative and smaller in magnitude (reverse is
	// capped lower than forward).
	MaxForwardSpeed  float64
	MaxBackwardSpeed float64
	// MaxTiltAngle locks out drive impulses while flipped.
	MaxTiltAngle float64

	// Mid-air attitude control.
	TiltForce float64
	TiltArm   float64

	// Below this horizontal speed the vehicle counts as stationary.
	StationaryThreshold float64
}

// DefaultConfig returns the shipping vehicle tuning.
func DefaultConfig() Config {
	return Config{
		ChassisMass:   100,
		ChassisWidth:  90,
		ChassisHeight: 30,
		WheelMass:     12,
		WheelRadius:   14,

		FrontAnchor: physics.Vec2{X: 32, Y: -12},
		RearAnchor:  physics.Vec2{X: -32, Y: -12},
		Suspension:  DefaultSuspension(),

		DriveImpulse:     55,
		SpinImpulse:      90,
		MaxForwardSpeed:  600,
		MaxBackwardSpeed: -300,
		MaxTiltAngle:     70 * math.Pi / 180,

		TiltForce: 26000,
		TiltArm:   20,

		StationaryThreshold: 30,
	}
}

func (c Config) validate() error {
	if c.ChassisMass <= 0 || c.WheelMass <= 0 {
		return fmt.Errorf("masses must be positive, got chassis %v wheel %v", c.ChassisMass, c.WheelMass)
	}
	if c.WheelRadius <= 0 {
		return fmt.Errorf("wheel radius must be positive, got %v", c.WheelRadius)
	}
	if c.MaxForwardSpeed <= 0 {
		return fmt.Errorf("max forward speed must be positive, got %v", c.MaxForwardSpeed)
	}
	if c.MaxBackwardSpeed >= 0 {
		return fmt.Errorf("max backward speed must be negative, got %v", c.MaxBackwardSpeed)
	}
	if c.MaxTiltAngle <= 0 {
		return fmt.Errorf("max tilt angle must be positive, got %v", c.MaxTiltAngle)
	}
	return nil
}

// Vehicle composes a chassis and two wheel+suspension pairs into a drivable
// unit. All control operations are per-tick intents; none can fail at runtime,
// construction is the only failure point.
type Vehicle struct {
	cfg     Config
	chassis physics.Body
	front   physics.Body
	rear    physics.Body

	frontSusp *SuspensionAssembly
	rearSusp  *SuspensionAssembly
}

// New assembles a vehicle from externally created bodies. It fails when any
// body is missing or the config is invalid; a vehicle cannot exist without
// suspension, so callers must treat an error as fatal initialization failure.
func New(w *physics.World, chassis, frontWheel, rearWheel physics.Body, cfg Config) (*Vehicle, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if chassis == nil || frontWheel == nil || rearWheel == nil {
		return nil, physics.ErrMissingBody
	}

	frontSusp, err := NewSuspensionAssembly(w, chassis, frontWheel, cfg.FrontAnchor, cfg.Suspension)
	if err != nil {
		return nil, fmt.Errorf("front suspension: %w", err)
	}
	rearSusp, err := NewSuspensionAssembly(w, chassis, rearWheel, cfg.RearAnchor, cfg.Suspension)
	if err != nil {
		return nil, fmt.Errorf("rear suspension: %w", err)
	}

	return &Vehicle{
		cfg:       cfg,
		chassis:   chassis,
		front:     frontWheel,
		rear:      rearWheel,
		frontSusp: frontSusp,
		rearSusp:  rearSusp,
	}, nil
}

// Spawn creates chassis and wheel bodies at pos, registers them with the
// world, and assembles a vehicle around them.
func Spawn(w *physics.World, pos physics.Vec2, cfg Config) (*Vehicle, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	chassis := physics.NewBoxBody(cfg.ChassisMass, cfg.ChassisWidth, cfg.ChassisHeight, pos)
	front := physics.NewCircleBody(cfg.WheelMass, cfg.WheelRadius, pos.Add(cfg.FrontAnchor))
	rear := physics.NewCircleBody(cfg.WheelMass, cfg.WheelRadius, pos.Add(cfg.RearAnchor))
	w.AddBody(chassis)
	w.AddBody(front)
	w.AddBody(rear)

	return New(w, chassis, front, rear, cfg)
}

// MoveForward applies drive impulses to both wheels. Locked out while the
// chassis is tilted past MaxTiltAngle so a flipped vehicle cannot walk.
func (v *Vehicle) MoveForward() {
	if !v.tiltOK() {
		return
	}
	v.drive(v.cfg.DriveImpulse, -v.cfg.SpinImpulse)
}

// MoveBackward is the reverse counterpart of MoveForward.
func (v *Vehicle) MoveBackward() {
	if !v.tiltOK() {
		return
	}
	v.drive(-v.cfg.DriveImpulse, v.cfg.SpinImpulse)
}

func (v *Vehicle) drive(linear, spin float64) {
	for _, wheel := range []physics.Body{v.front, v.rear} {
		wheel.ApplyImpulse(physics.Vec2{X: linear})
		wheel.ApplyAngularImpulse(spin)
		v.clampWheelSpeed(wheel)
	}
}

// clampWheelSpeed bounds wheel horizontal velocity to the asymmetric
// [MaxBackwardSpeed, MaxForwardSpeed] window.
func (v *Vehicle) clampWheelSpeed(wheel physics.Body) {
	vel := wheel.Velocity()
	if vel.X > v.cfg.MaxForwardSpeed {
		vel.X = v.cfg.MaxForwardSpeed
		wheel.SetVelocity(vel)
	} else if vel.X < v.cfg.MaxBackwardSpeed {
		vel.X = v.cfg.MaxBackwardSpeed
		wheel.SetVelocity(vel)
	}
}

// ApplyBrake hard-locks the rear wheel: angular and linear velocity are
// overwritten to zero. Braking acts only on the rear wheel and never
// accelerates a resting vehicle.
func (v *Vehicle) ApplyBrake() {
	v.rear.SetAngularVelocity(0)
	v.rear.SetVelocity(physics.Vec2{})
}

// TiltLeft applies an off-center chassis force producing a counter-clockwise
// moment, for mid-air attitude control. The force rotates with the vehicle.
func (v *Vehicle) TiltLeft() {
	v.tilt(-v.cfg.TiltForce)
}

// TiltRight is the clockwise counterpart of TiltLeft.
func (v *Vehicle) TiltRight() {
	v.tilt(v.cfg.TiltForce)
}

func (v *Vehicle) tilt(magnitude float64) {
	angle := v.chassis.Angle()
	point := v.chassis.Position().Add(physics.Vec2{Y: v.cfg.TiltArm}.Rotate(angle))
	force := physics.Vec2{X: magnitude}.Rotate(angle)
	v.chassis.ApplyForceAtPoint(force, point)
}

func (v *Vehicle) tiltOK() bool {
	return math.Abs(normalizeAngle(v.chassis.Angle())) <= v.cfg.MaxTiltAngle
}

// Speed returns the chassis speed magnitude.
func (v *Vehicle) Speed() float64 {
	return v.chassis.Velocity().Length()
}

// Heading returns the chassis orientation in radians, normalized to (-pi, pi].
func (v *Vehicle) Heading() float64 {
	return normalizeAngle(v.chassis.Angle())
}

// IsStationary reports whether horizontal speed is below the stationary
// threshold.
func (v *Vehicle) IsStationary() bool {
	return math.Abs(v.chassis.Velocity().X) < v.cfg.StationaryThreshold
}

// IsMovingForward reports whether the chassis is travelling forward faster
// than the stationary threshold.
func (v *Vehicle) IsMovingForward() bool {
	return v.chassis.Velocity().X > v.cfg.StationaryThreshold
}

// Position returns the chassis position.
func (v *Vehicle) Position() physics.Vec2 {
	return v.chassis.Position()
}

// Chassis returns the chassis body.
func (v *Vehicle) Chassis() physics.Body { return v.chassis }

// FrontWheel returns the front wheel body.
func (v *Vehicle) FrontWheel() physics.Body { return v.front }

// RearWheel returns the rear wheel body.
func (v *Vehicle) RearWheel() physics.Body { return v.rear }

// FrontSuspension returns the front suspension assembly.
func (v *Vehicle) FrontSuspension() *SuspensionAssembly { return v.frontSusp }

// RearSuspension returns the rear suspension assembly.
func (v *Vehicle) RearSuspension() *SuspensionAssembly { return v.rearSusp }

// normalizeAngle wraps an angle into (-pi, pi].
func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

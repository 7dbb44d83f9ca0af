package vehicle

import (
	"fmt"

	"github.com/hillrush/hillrush/internal/physics"
)

// SuspensionConfig parameterizes one wheel's shock absorber. Presets differ
// only in these numbers; there is no behavioral branching between them.
type SuspensionConfig struct {
	// Frequency is spring stiffness in Hz: higher resists compression more.
	Frequency float64
	// Damping is the damping ratio: higher suppresses oscillation faster,
	// 0 leaves the spring undamped.
	Damping float64
	// Travel bounds wheel extension below the anchor.
	Travel float64
	// LowerLimit bounds compression above the anchor (negative).
	LowerLimit float64
}

// DefaultSuspension is the balanced shipping setup.
func DefaultSuspension() SuspensionConfig {
	return SuspensionConfig{Frequency: 4.0, Damping: 0.7, Travel: 25, LowerLimit: -10}
}

// StiffSuspension resists compression, for heavy or high-speed setups.
func StiffSuspension() SuspensionConfig {
	return SuspensionConfig{Frequency: 6.0, Damping: 0.9, Travel: 15, LowerLimit: -5}
}

// SoftSuspension absorbs rough terrain at the cost of body roll.
func SoftSuspension() SuspensionConfig {
	return SuspensionConfig{Frequency: 2.5, Damping: 0.4, Travel: 40, LowerLimit: -15}
}

func (c SuspensionConfig) validate() error {
	if c.Frequency <= 0 {
		return fmt.Errorf("suspension frequency must be positive, got %v", c.Frequency)
	}
	if c.Damping < 0 {
		return fmt.Errorf("suspension damping must be non-negative, got %v", c.Damping)
	}
	if c.Travel <= 0 || c.LowerLimit > 0 || c.LowerLimit >= c.Travel {
		return fmt.Errorf("suspension travel [%v, %v] invalid", c.LowerLimit, c.Travel)
	}
	return nil
}

// SuspensionAssembly models one wheel's connection to the chassis as three
// cooperating constraints mirroring a real shock absorber: a slide joint
// bounding an intermediary shock post to the chassis's vertical axis, a spring
// supplying the restoring force, and a pin attaching the wheel to the post so
// it can spin freely under drive torque.
type SuspensionAssembly struct {
	cfg  SuspensionConfig
	post *physics.RigidBody

	slide  *physics.SlideConstraint
	spring *physics.SpringConstraint
	pin    *physics.PinConstraint
}

// shock post mass; light relative to the wheel so it follows without lag.
const postMass = 2.0

// NewSuspensionAssembly wires chassis and wheel together through a fresh shock
// post. anchor is the attach point in chassis-local coordinates. Construction
// fails when either body is missing: suspension cannot exist without both
// anchors, and the caller must treat that as fatal.
func NewSuspensionAssembly(w *physics.World, chassis, wheel physics.Body, anchor physics.Vec2, cfg SuspensionConfig) (*SuspensionAssembly, error) {
	if chassis == nil || wheel == nil {
		return nil, physics.ErrMissingBody
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	post := physics.NewBody(postMass, wheel.Position())
	w.AddBody(post)

	slide, err := w.NewSlideConstraint(chassis, post, anchor, cfg.LowerLimit, cfg.Travel)
	if err != nil {
		return nil, fmt.Errorf("slide joint: %w", err)
	}
	spring, err := w.NewSpringConstraint(chassis, wheel, anchor, cfg.Frequency, cfg.Damping)
	if err != nil {
		return nil, fmt.Errorf("spring joint: %w", err)
	}
	pin, err := w.NewPinConstraint(post, wheel, physics.Vec2{})
	if err != nil {
		return nil, fmt.Errorf("pin joint: %w", err)
	}

	return &SuspensionAssembly{
		cfg:    cfg,
		post:   post,
		slide:  slide,
		spring: spring,
		pin:    pin,
	}, nil
}

// Config returns the assembly's parameters.
func (s *SuspensionAssembly) Config() SuspensionConfig { return s.cfg }

// Travel returns the current axial offset of the shock post relative to the
// chassis anchor. It stays within [LowerLimit, Travel].
func (s *SuspensionAssembly) Travel() float64 {
	return s.slide.Offset()
}

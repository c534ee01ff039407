package flock

import "fmt"

// Default tuning constants. Set BounceDamping to 1 for full undamped
// inversion on wall rebound.
const (
	DefaultPursuitGain      = 0.05
	DefaultJitterAmplitude  = 0.05
	DefaultBounceDamping    = 0.9
	DefaultPredatorRelSpeed = 1.2
)

// Parameters is the immutable per-call configuration of one tick.
// Weights default to 1, which yields the plain unweighted rule composition.
type Parameters struct {
	// World extent. Positions are kept inside [0, Width] x [0, Height].
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Physics limits.
	MaxSpeed float64 `json:"maxSpeed"`
	MaxForce float64 `json:"maxForce"`

	// Interaction radii. All thresholds are strict (d < radius).
	VisionRadius     float64 `json:"visionRadius"`     // alignment + cohesion neighborhood
	SeparationRadius float64 `json:"separationRadius"` // personal space
	PredatorRadius   float64 `json:"predatorRadius"`   // boid flees predators inside this

	// Rule weights.
	SeparationWeight    float64 `json:"separationWeight"`
	AlignmentWeight     float64 `json:"alignmentWeight"`
	CohesionWeight      float64 `json:"cohesionWeight"`
	PredatorAvoidWeight float64 `json:"predatorAvoidWeight"`
	HazardAvoidWeight   float64 `json:"hazardAvoidWeight"`

	// BounceDamping scales the inverted velocity component on wall rebound.
	// 1.0 inverts without energy loss.
	BounceDamping float64 `json:"bounceDamping"`

	// Predator tuning: speed cap multiplier relative to MaxSpeed, and the
	// fixed pursuit impulse magnitude toward the nearest boid.
	PredatorRelSpeed float64 `json:"predatorRelSpeed"`
	PursuitGain      float64 `json:"pursuitGain"`

	// JitterAmplitude is the half-width of the uniform per-axis perturbation
	// applied after speed limiting. It only takes effect when the caller
	// supplies a random source; see Update.
	JitterAmplitude float64 `json:"jitterAmplitude"`
}

// DefaultParameters returns a usable parameter set for a world of the given
// extent.
func DefaultParameters(width, height float64) Parameters {
	return Parameters{
		Width:               width,
		Height:              height,
		MaxSpeed:            4.0,
		MaxForce:            0.5,
		VisionRadius:        70.0,
		SeparationRadius:    20.0,
		PredatorRadius:      50.0,
		SeparationWeight:    1.0,
		AlignmentWeight:     1.0,
		CohesionWeight:      1.0,
		PredatorAvoidWeight: 1.0,
		HazardAvoidWeight:   1.0,
		BounceDamping:       DefaultBounceDamping,
		PredatorRelSpeed:    DefaultPredatorRelSpeed,
		PursuitGain:         DefaultPursuitGain,
		JitterAmplitude:     DefaultJitterAmplitude,
	}
}

// Validate fails fast on parameter sets that would make a tick meaningless
// or numerically unsafe.
func (p Parameters) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("world extent must be positive, got %gx%g", p.Width, p.Height)
	}
	if p.MaxSpeed <= 0 {
		return fmt.Errorf("maxSpeed must be positive, got %g", p.MaxSpeed)
	}
	if p.MaxForce < 0 {
		return fmt.Errorf("maxForce must not be negative, got %g", p.MaxForce)
	}
	if p.VisionRadius < 0 || p.SeparationRadius < 0 || p.PredatorRadius < 0 {
		return fmt.Errorf("radii must not be negative, got vision=%g separation=%g predator=%g",
			p.VisionRadius, p.SeparationRadius, p.PredatorRadius)
	}
	if p.SeparationWeight < 0 || p.AlignmentWeight < 0 || p.CohesionWeight < 0 ||
		p.PredatorAvoidWeight < 0 || p.HazardAvoidWeight < 0 {
		return fmt.Errorf("rule weights must not be negative")
	}
	if p.BounceDamping < 0 || p.BounceDamping > 1 {
		return fmt.Errorf("bounceDamping must be in [0,1], got %g", p.BounceDamping)
	}
	if p.PredatorRelSpeed < 0 {
		return fmt.Errorf("predatorRelSpeed must not be negative, got %g", p.PredatorRelSpeed)
	}
	if p.PursuitGain < 0 {
		return fmt.Errorf("pursuitGain must not be negative, got %g", p.PursuitGain)
	}
	if p.JitterAmplitude < 0 {
		return fmt.Errorf("jitterAmplitude must not be negative, got %g", p.JitterAmplitude)
	}
	return nil
}

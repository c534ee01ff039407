// Package flock implements one tick of a discrete-time boids simulation:
// separation, alignment and cohesion among neighbors, avoidance of predators
// and hazard zones, speed and force limiting, and reflective boundary
// handling inside a rectangular world. Both updaters are pure functions of
// their inputs; the hosting driver owns the state between ticks.
package flock

import (
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// Update computes the next-tick state of the boid population.
//
// predators and hazards are optional read-only context; pass nil to disable
// the corresponding avoidance rule. rng drives the small uniform perturbation
// applied after speed limiting; pass nil for a fully deterministic tick.
//
// The input arrays are never written. Every boid reads the complete
// previous-tick state of all others, so the returned swarm is a consistent
// snapshot regardless of iteration order.
func Update(boids Swarm, predators *Swarm, hazards *HazardField, p Parameters, rng *rand.Rand) (Swarm, error) {
	if err := boids.Validate(); err != nil {
		return Swarm{}, err
	}
	if predators != nil {
		if err := predators.Validate(); err != nil {
			return Swarm{}, err
		}
	}
	if hazards != nil {
		if err := hazards.Validate(); err != nil {
			return Swarm{}, err
		}
	}
	if err := p.Validate(); err != nil {
		return Swarm{}, err
	}

	n := boids.Len()
	next := NewSwarm(n)

	for i := 0; i < n; i++ {
		pos := geometry.Vector2D{X: boids.X[i], Y: boids.Y[i]}
		vel := geometry.Vector2D{X: boids.VX[i], Y: boids.VY[i]}

		// Accumulators for the three neighbor rules.
		var sep, ali, coh geometry.Vector2D
		sepCount, visCount := 0, 0

		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			dx := boids.X[i] - boids.X[j]
			dy := boids.Y[i] - boids.Y[j]
			d := math.Hypot(dx, dy)

			// Separation: unit displacement away from each close neighbor.
			// Coincident boids (d == 0) are skipped, there is no direction
			// to flee in and dividing by d would blow up.
			if d < p.SeparationRadius && d > 0 {
				sep = sep.Add(geometry.Vector2D{X: dx / d, Y: dy / d})
				sepCount++
			}

			// Alignment and cohesion average over the wider vision range.
			if d < p.VisionRadius {
				ali = ali.Add(geometry.Vector2D{X: boids.VX[j], Y: boids.VY[j]})
				coh = coh.Add(geometry.Vector2D{X: boids.X[j], Y: boids.Y[j]})
				visCount++
			}
		}

		var force geometry.Vector2D
		if sepCount > 0 {
			force = force.Add(steer(sep, vel, p).Mul(p.SeparationWeight))
		}
		if visCount > 0 {
			inv := 1 / float64(visCount)
			force = force.Add(steer(ali.Mul(inv), vel, p).Mul(p.AlignmentWeight))
			toCenter := coh.Mul(inv).Sub(pos)
			force = force.Add(steer(toCenter, vel, p).Mul(p.CohesionWeight))
		}
		if predators != nil && predators.Len() > 0 {
			away := fleeAccumulator(pos, predators.X, predators.Y, func(int) float64 { return p.PredatorRadius })
			force = force.Add(steer(away, vel, p).Mul(p.PredatorAvoidWeight))
		}
		if hazards != nil && hazards.Len() > 0 {
			away := fleeAccumulator(pos, hazards.X, hazards.Y, func(k int) float64 { return hazards.Radius[k] })
			force = force.Add(steer(away, vel, p).Mul(p.HazardAvoidWeight))
		}

		newVel := vel.Add(force).Limit(p.MaxSpeed)

		// Perturbation comes after speed limiting, so a tick may end
		// marginally above MaxSpeed until the next limiting pass.
		if rng != nil && p.JitterAmplitude > 0 {
			newVel.X += (rng.Float64()*2 - 1) * p.JitterAmplitude
			newVel.Y += (rng.Float64()*2 - 1) * p.JitterAmplitude
		}

		x, vx := rebound(pos.X+newVel.X, newVel.X, p.Width, p.BounceDamping)
		y, vy := rebound(pos.Y+newVel.Y, newVel.Y, p.Height, p.BounceDamping)

		next.X[i], next.Y[i] = x, y
		next.VX[i], next.VY[i] = vx, vy
	}

	return next, nil
}

// steer turns a desired-direction accumulator into a bounded steering force:
// the accumulator is scaled to MaxSpeed (the desired velocity), the current
// velocity is subtracted, and the result is magnitude-clamped to MaxForce.
// A zero accumulator produces zero force, never a braking -vel term.
func steer(desired, vel geometry.Vector2D, p Parameters) geometry.Vector2D {
	if desired.Len() < geometry.Epsilon {
		return geometry.Vector2D{}
	}
	target := desired.Normalize().Mul(p.MaxSpeed)
	return target.Sub(vel).Limit(p.MaxForce)
}

// fleeAccumulator sums the unit displacements away from every threat whose
// distance to pos is strictly inside its radius. radiusOf is indexed like the
// threat arrays, which is how hazard zones carry per-zone thresholds.
func fleeAccumulator(pos geometry.Vector2D, xs, ys []float64, radiusOf func(int) float64) geometry.Vector2D {
	var away geometry.Vector2D
	for k := range xs {
		dx := pos.X - xs[k]
		dy := pos.Y - ys[k]
		d := math.Hypot(dx, dy)
		if d < radiusOf(k) && d > 0 {
			away = away.Add(geometry.Vector2D{X: dx / d, Y: dy / d})
		}
	}
	return away
}

// rebound applies reflective boundary handling on one axis: a position
// outside [0, extent] is clamped to the wall and the velocity component is
// inverted, scaled by the damping factor.
func rebound(pos, vel, extent, damping float64) (float64, float64) {
	if pos < 0 || pos > extent {
		return geometry.Clamp(pos, 0, extent), -vel * damping
	}
	return pos, vel
}

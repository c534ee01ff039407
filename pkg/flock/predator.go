package flock

import (
	"math"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

// UpdatePredators computes the next-tick state of the predator population.
// Each predator steers toward the nearest boid with a fixed pursuit impulse,
// is speed-limited to MaxSpeed * PredatorRelSpeed, and rebounds off walls
// with full velocity inversion. With no boids to hunt, the velocity carries
// over unsteered. Ties on the nearest boid go to the lowest index, which
// keeps the tick deterministic.
func UpdatePredators(predators, boids Swarm, p Parameters) (Swarm, error) {
	if err := predators.Validate(); err != nil {
		return Swarm{}, err
	}
	if err := boids.Validate(); err != nil {
		return Swarm{}, err
	}
	if err := p.Validate(); err != nil {
		return Swarm{}, err
	}

	next := NewSwarm(predators.Len())
	maxSpeed := p.MaxSpeed * p.PredatorRelSpeed

	for i := 0; i < predators.Len(); i++ {
		vel := geometry.Vector2D{X: predators.VX[i], Y: predators.VY[i]}

		closest, closestDist := -1, math.Inf(1)
		for j := 0; j < boids.Len(); j++ {
			d := math.Hypot(boids.X[j]-predators.X[i], boids.Y[j]-predators.Y[i])
			if d < closestDist {
				closest, closestDist = j, d
			}
		}

		// A coincident target (d == 0) gives no direction to steer in.
		if closest >= 0 && closestDist > 0 {
			vel.X += (boids.X[closest] - predators.X[i]) / closestDist * p.PursuitGain
			vel.Y += (boids.Y[closest] - predators.Y[i]) / closestDist * p.PursuitGain
		}

		vel = vel.Limit(maxSpeed)

		x, vx := rebound(predators.X[i]+vel.X, vel.X, p.Width, 1)
		y, vy := rebound(predators.Y[i]+vel.Y, vel.Y, p.Height, 1)

		next.X[i], next.Y[i] = x, y
		next.VX[i], next.VY[i] = vx, vy
	}

	return next, nil
}

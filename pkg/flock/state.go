package flock

import (
	"errors"
	"fmt"
)

// ErrShape reports malformed input collections: parallel arrays whose
// lengths disagree within a collection. Callers can match it with errors.Is.
var ErrShape = errors.New("mismatched array lengths")

// Swarm is the state of an agent population (boids or predators) laid out as
// a struct of parallel arrays: index i of every array belongs to agent i.
// The index carries no identity beyond the current tick; every updater reads
// the whole previous-tick state before any value is committed.
type Swarm struct {
	X  []float64 `json:"x"`
	Y  []float64 `json:"y"`
	VX []float64 `json:"vx"`
	VY []float64 `json:"vy"`
}

// NewSwarm allocates a zeroed swarm of n agents.
func NewSwarm(n int) Swarm {
	return Swarm{
		X:  make([]float64, n),
		Y:  make([]float64, n),
		VX: make([]float64, n),
		VY: make([]float64, n),
	}
}

// Len returns the population size.
func (s Swarm) Len() int {
	return len(s.X)
}

// Validate checks that all four arrays have the same length.
func (s Swarm) Validate() error {
	n := len(s.X)
	if len(s.Y) != n || len(s.VX) != n || len(s.VY) != n {
		return fmt.Errorf("%w: swarm x=%d y=%d vx=%d vy=%d",
			ErrShape, len(s.X), len(s.Y), len(s.VX), len(s.VY))
	}
	return nil
}

// Clone returns a deep copy of the swarm, so snapshots handed to other
// goroutines never alias the authoritative arrays.
func (s Swarm) Clone() Swarm {
	out := NewSwarm(s.Len())
	copy(out.X, s.X)
	copy(out.Y, s.Y)
	copy(out.VX, s.VX)
	copy(out.VY, s.VY)
	return out
}

// HazardField is a set of fixed zones that boids steer away from.
// Radii are per zone: Radius[k] is the avoidance threshold of zone k.
type HazardField struct {
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
	Radius []float64 `json:"radius"`
}

// Len returns the number of zones.
func (h HazardField) Len() int {
	return len(h.X)
}

// Validate checks that the radius array matches the position arrays.
// A radius array shorter than the positions would otherwise read out of
// bounds mid-tick; it is rejected up front, never truncated.
func (h HazardField) Validate() error {
	n := len(h.X)
	if len(h.Y) != n || len(h.Radius) != n {
		return fmt.Errorf("%w: hazards x=%d y=%d radius=%d",
			ErrShape, len(h.X), len(h.Y), len(h.Radius))
	}
	return nil
}

package flock

import (
	"errors"
	"math"
	"math/rand/v2"
	"reflect"
	"testing"
)

// floatNear compares floats with an absolute tolerance.
func floatNear(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// testParams returns a deterministic parameter set for a 1000x800 world.
func testParams() Parameters {
	p := DefaultParameters(1000, 800)
	p.JitterAmplitude = 0
	return p
}

func TestUpdate_EmptyFlock(t *testing.T) {
	next, err := Update(NewSwarm(0), nil, nil, testParams(), nil)
	if err != nil {
		t.Fatalf("Update(empty) returned error: %v", err)
	}
	if next.Len() != 0 {
		t.Errorf("Update(empty) returned %d boids; want 0", next.Len())
	}
}

func TestUpdate_IsolatedBoidMovesStraight(t *testing.T) {
	// A single boid has no neighbors, predators or hazards: it must move in
	// a straight line at constant velocity until it hits a wall.
	boids := Swarm{X: []float64{10}, Y: []float64{10}, VX: []float64{1}, VY: []float64{0.5}}

	next, err := Update(boids, nil, nil, testParams(), nil)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if next.X[0] != 11 || next.Y[0] != 10.5 {
		t.Errorf("position = (%v, %v); want (11, 10.5)", next.X[0], next.Y[0])
	}
	if next.VX[0] != 1 || next.VY[0] != 0.5 {
		t.Errorf("velocity = (%v, %v); want (1, 0.5)", next.VX[0], next.VY[0])
	}
}

func TestUpdate_ReboundDamped(t *testing.T) {
	// A boid at (0,0) moving (-1,-1) in a 100x100 world with damping 0.9
	// ends clamped at (0,0) with velocity (0.9, 0.9).
	p := DefaultParameters(100, 100)
	p.JitterAmplitude = 0
	boids := Swarm{X: []float64{0}, Y: []float64{0}, VX: []float64{-1}, VY: []float64{-1}}

	next, err := Update(boids, nil, nil, p, nil)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if next.X[0] != 0 || next.Y[0] != 0 {
		t.Errorf("position = (%v, %v); want (0, 0)", next.X[0], next.Y[0])
	}
	if !floatNear(next.VX[0], 0.9, 1e-12) || !floatNear(next.VY[0], 0.9, 1e-12) {
		t.Errorf("velocity = (%v, %v); want (0.9, 0.9)", next.VX[0], next.VY[0])
	}
}

func TestUpdate_ReboundFullInversion(t *testing.T) {
	// With damping 1 the velocity component flips sign without losing energy,
	// and only on the axis that went out of range.
	p := DefaultParameters(100, 100)
	p.JitterAmplitude = 0
	p.BounceDamping = 1
	boids := Swarm{X: []float64{99.5}, Y: []float64{50}, VX: []float64{1}, VY: []float64{0}}

	next, err := Update(boids, nil, nil, p, nil)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if next.X[0] != 100 {
		t.Errorf("x = %v; want clamped to 100", next.X[0])
	}
	if next.VX[0] != -1 {
		t.Errorf("vx = %v; want -1", next.VX[0])
	}
	if next.Y[0] != 50 || next.VY[0] != 0 {
		t.Errorf("y axis disturbed: pos %v vel %v; want 50, 0", next.Y[0], next.VY[0])
	}
}

func TestUpdate_SeparationBoundaryIsExclusive(t *testing.T) {
	p := testParams()
	p.SeparationRadius = 10
	p.AlignmentWeight = 0
	p.CohesionWeight = 0

	t.Run("Exactly at radius: no force", func(t *testing.T) {
		boids := Swarm{
			X:  []float64{100, 110},
			Y:  []float64{100, 100},
			VX: []float64{0, 0},
			VY: []float64{0, 0},
		}
		next, err := Update(boids, nil, nil, p, nil)
		if err != nil {
			t.Fatalf("Update returned error: %v", err)
		}
		for i := 0; i < 2; i++ {
			if next.VX[i] != 0 || next.VY[i] != 0 {
				t.Errorf("boid %d got separation force at exactly separationRadius: (%v, %v)",
					i, next.VX[i], next.VY[i])
			}
		}
	})

	t.Run("Just inside radius: repulsion", func(t *testing.T) {
		boids := Swarm{
			X:  []float64{100, 109.5},
			Y:  []float64{100, 100},
			VX: []float64{0, 0},
			VY: []float64{0, 0},
		}
		next, err := Update(boids, nil, nil, p, nil)
		if err != nil {
			t.Fatalf("Update returned error: %v", err)
		}
		if next.VX[0] >= 0 {
			t.Errorf("boid 0 vx = %v; want repulsion away from neighbor (negative)", next.VX[0])
		}
		if next.VX[1] <= 0 {
			t.Errorf("boid 1 vx = %v; want repulsion away from neighbor (positive)", next.VX[1])
		}
	})
}

func TestUpdate_SpeedLimited(t *testing.T) {
	p := testParams() // MaxSpeed 4
	boids := Swarm{X: []float64{100}, Y: []float64{100}, VX: []float64{10}, VY: []float64{0}}

	next, err := Update(boids, nil, nil, p, nil)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	speed := math.Hypot(next.VX[0], next.VY[0])
	if !floatNear(speed, p.MaxSpeed, 1e-12) {
		t.Errorf("speed = %v; want rescaled to MaxSpeed %v", speed, p.MaxSpeed)
	}
	if next.VY[0] != 0 {
		t.Errorf("direction changed by speed limiting: vy = %v", next.VY[0])
	}
}

func TestUpdate_AlignmentFollowsNeighborHeading(t *testing.T) {
	p := testParams()
	p.SeparationRadius = 5 // neighbor is outside personal space
	p.CohesionWeight = 0
	boids := Swarm{
		X:  []float64{100, 110},
		Y:  []float64{100, 100},
		VX: []float64{0, 0},
		VY: []float64{0, 1},
	}

	next, err := Update(boids, nil, nil, p, nil)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if next.VY[0] <= 0 {
		t.Errorf("boid 0 vy = %v; want pulled toward neighbor heading (positive)", next.VY[0])
	}
}

func TestUpdate_CohesionPullsTowardCenter(t *testing.T) {
	p := testParams()
	p.SeparationRadius = 5
	p.AlignmentWeight = 0
	boids := Swarm{
		X:  []float64{100, 110},
		Y:  []float64{100, 100},
		VX: []float64{0, 0},
		VY: []float64{0, 0},
	}

	next, err := Update(boids, nil, nil, p, nil)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if next.VX[0] <= 0 {
		t.Errorf("boid 0 vx = %v; want pulled toward neighbor (positive)", next.VX[0])
	}
}

func TestUpdate_PredatorAvoidance(t *testing.T) {
	p := testParams()
	p.PredatorRadius = 20
	p.SeparationWeight = 0
	p.AlignmentWeight = 0
	p.CohesionWeight = 0

	boid := Swarm{X: []float64{100}, Y: []float64{100}, VX: []float64{0}, VY: []float64{0}}

	t.Run("Inside radius: flees", func(t *testing.T) {
		predators := Swarm{X: []float64{110}, Y: []float64{100}, VX: []float64{0}, VY: []float64{0}}
		next, err := Update(boid, &predators, nil, p, nil)
		if err != nil {
			t.Fatalf("Update returned error: %v", err)
		}
		if next.VX[0] >= 0 {
			t.Errorf("vx = %v; want flight away from predator (negative)", next.VX[0])
		}
	})

	t.Run("Outside radius: ignored", func(t *testing.T) {
		predators := Swarm{X: []float64{150}, Y: []float64{100}, VX: []float64{0}, VY: []float64{0}}
		next, err := Update(boid, &predators, nil, p, nil)
		if err != nil {
			t.Fatalf("Update returned error: %v", err)
		}
		if next.VX[0] != 0 || next.VY[0] != 0 {
			t.Errorf("velocity = (%v, %v); want unaffected by distant predator", next.VX[0], next.VY[0])
		}
	})
}

func TestUpdate_HazardUsesPerZoneRadius(t *testing.T) {
	p := testParams()
	p.SeparationWeight = 0
	p.AlignmentWeight = 0
	p.CohesionWeight = 0

	boid := Swarm{X: []float64{100}, Y: []float64{100}, VX: []float64{0}, VY: []float64{0}}
	// Zone 0 is 8 away with radius 5 (inert); zone 1 is 8 away with radius 10.
	hazards := HazardField{
		X:      []float64{108, 100},
		Y:      []float64{100, 108},
		Radius: []float64{5, 10},
	}

	next, err := Update(boid, nil, &hazards, p, nil)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if next.VX[0] != 0 {
		t.Errorf("vx = %v; want 0, the x-axis zone is outside its own radius", next.VX[0])
	}
	if next.VY[0] >= 0 {
		t.Errorf("vy = %v; want flight away from the y-axis zone (negative)", next.VY[0])
	}
}

func TestUpdate_CoincidentBoidsStayFinite(t *testing.T) {
	p := testParams()
	boids := Swarm{
		X:  []float64{50, 50},
		Y:  []float64{50, 50},
		VX: []float64{0, 0},
		VY: []float64{0, 0},
	}

	next, err := Update(boids, nil, nil, p, nil)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	for i := 0; i < 2; i++ {
		for _, v := range []float64{next.X[i], next.Y[i], next.VX[i], next.VY[i]} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("boid %d produced non-finite state: %v", i, next)
			}
		}
	}
}

func TestUpdate_Determinism(t *testing.T) {
	boids := makeTestFlock(25, 1000, 800)
	predators := Swarm{X: []float64{500}, Y: []float64{400}, VX: []float64{1}, VY: []float64{-1}}
	hazards := HazardField{X: []float64{200}, Y: []float64{200}, Radius: []float64{60}}
	p := DefaultParameters(1000, 800)

	t.Run("Nil rng", func(t *testing.T) {
		a, err := Update(boids, &predators, &hazards, p, nil)
		if err != nil {
			t.Fatalf("Update returned error: %v", err)
		}
		b, err := Update(boids, &predators, &hazards, p, nil)
		if err != nil {
			t.Fatalf("Update returned error: %v", err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Error("two invocations with nil rng differ")
		}
	})

	t.Run("Seeded rng", func(t *testing.T) {
		a, err := Update(boids, &predators, &hazards, p, rand.New(rand.NewPCG(7, 7)))
		if err != nil {
			t.Fatalf("Update returned error: %v", err)
		}
		b, err := Update(boids, &predators, &hazards, p, rand.New(rand.NewPCG(7, 7)))
		if err != nil {
			t.Fatalf("Update returned error: %v", err)
		}
		if !reflect.DeepEqual(a, b) {
			t.Error("two invocations with identically seeded rng differ")
		}
	})
}

func TestUpdate_ContainmentAndSpeedCap(t *testing.T) {
	p := DefaultParameters(1000, 800)
	boids := makeTestFlock(30, p.Width, p.Height)
	predators := Swarm{X: []float64{500, 20}, Y: []float64{400, 700}, VX: []float64{2, -2}, VY: []float64{0, 1}}
	hazards := HazardField{X: []float64{300, 800}, Y: []float64{300, 100}, Radius: []float64{50, 120}}
	rng := rand.New(rand.NewPCG(42, 42))

	// The post-limit perturbation can push each axis by JitterAmplitude,
	// so the speed bound only holds up to that transient.
	speedCap := p.MaxSpeed + 2*p.JitterAmplitude

	for tick := 0; tick < 50; tick++ {
		nextPred, err := UpdatePredators(predators, boids, p)
		if err != nil {
			t.Fatalf("tick %d: UpdatePredators returned error: %v", tick, err)
		}
		next, err := Update(boids, &predators, &hazards, p, rng)
		if err != nil {
			t.Fatalf("tick %d: Update returned error: %v", tick, err)
		}
		boids, predators = next, nextPred

		for i := 0; i < boids.Len(); i++ {
			if boids.X[i] < 0 || boids.X[i] > p.Width || boids.Y[i] < 0 || boids.Y[i] > p.Height {
				t.Fatalf("tick %d: boid %d escaped the world: (%v, %v)", tick, i, boids.X[i], boids.Y[i])
			}
			if speed := math.Hypot(boids.VX[i], boids.VY[i]); speed > speedCap {
				t.Fatalf("tick %d: boid %d speed %v exceeds cap %v", tick, i, speed, speedCap)
			}
		}
		for i := 0; i < predators.Len(); i++ {
			if predators.X[i] < 0 || predators.X[i] > p.Width || predators.Y[i] < 0 || predators.Y[i] > p.Height {
				t.Fatalf("tick %d: predator %d escaped the world: (%v, %v)", tick, i, predators.X[i], predators.Y[i])
			}
		}
	}
}

func TestUpdate_RejectsMalformedInput(t *testing.T) {
	p := testParams()
	good := Swarm{X: []float64{1}, Y: []float64{1}, VX: []float64{0}, VY: []float64{0}}

	tests := []struct {
		name      string
		boids     Swarm
		predators *Swarm
		hazards   *HazardField
	}{
		{"Short vx array", Swarm{X: []float64{1, 2}, Y: []float64{1, 2}, VX: []float64{0}, VY: []float64{0, 0}}, nil, nil},
		{"Predator length mismatch", good, &Swarm{X: []float64{1}, Y: []float64{1, 2}, VX: []float64{0}, VY: []float64{0}}, nil},
		{"Hazard radius array too short", good, nil, &HazardField{X: []float64{1, 2}, Y: []float64{1, 2}, Radius: []float64{5}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Update(tt.boids, tt.predators, tt.hazards, p, nil)
			if !errors.Is(err, ErrShape) {
				t.Errorf("Update error = %v; want ErrShape", err)
			}
		})
	}
}

func TestUpdate_RejectsInvalidParameters(t *testing.T) {
	boids := NewSwarm(1)
	p := testParams()
	p.MaxSpeed = 0

	if _, err := Update(boids, nil, nil, p, nil); err == nil {
		t.Error("Update accepted MaxSpeed = 0")
	}
}

// makeTestFlock spreads n boids over the world on a deterministic lattice
// with varied headings, so tests need no random source for setup.
func makeTestFlock(n int, width, height float64) Swarm {
	s := NewSwarm(n)
	for i := 0; i < n; i++ {
		s.X[i] = math.Mod(float64(i)*97.3, width)
		s.Y[i] = math.Mod(float64(i)*61.7, height)
		s.VX[i] = math.Cos(float64(i)) * 2
		s.VY[i] = math.Sin(float64(i)) * 2
	}
	return s
}

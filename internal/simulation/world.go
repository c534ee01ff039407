package simulation

import (
	"math/rand/v2"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
)

// WorldSnapshot is the state pushed to the host after each tick. The swarms
// are deep copies, so the receiver may keep them across ticks.
type WorldSnapshot struct {
	Tick      int         `json:"tick"`
	Boids     flock.Swarm `json:"boids"`
	Predators flock.Swarm `json:"predators"`
}

// WorldActor is the simulation "Brain": it owns the authoritative boid,
// predator and hazard arrays and advances them one tick per tick message.
// The tick trigger is a protobuf Duration carrying the nominal frame delta;
// the physics itself integrates with a unit time step.
//
// A single actor hosts the whole population on purpose: each tick must be a
// pure function of the complete previous-tick state, so the two updaters run
// against stable input arrays and their results are committed together.
type WorldActor struct {
	cfg    *Config
	params flock.Parameters

	boids     flock.Swarm
	predators flock.Swarm
	hazards   flock.HazardField
	rng       *rand.Rand
	tick      int

	// Communication with the host
	snapshotCh chan<- *WorldSnapshot

	// --- Benchmark Stats ---
	tickCount   int
	lastLogTime time.Time
}

var _ actor.Actor = (*WorldActor)(nil)

// NewWorldActor creates the world logic unit.
func NewWorldActor(snapshotCh chan<- *WorldSnapshot, cfg *Config) *WorldActor {
	return &WorldActor{
		cfg:        cfg,
		snapshotCh: snapshotCh,
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	if err := w.initState(); err != nil {
		return err
	}
	ctx.ActorSystem().Logger().Infof("World seeded: %d boids, %d predators, %d hazard zones (seed=%d)",
		w.boids.Len(), w.predators.Len(), w.hazards.Len(), w.cfg.Seed)
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch ctx.Message().(type) {

	case *goaktpb.PostStart:
		ctx.Logger().Info("World started, waiting for ticks...")

	// The Main Simulation Step (driven by the host loop)
	case *durationpb.Duration:
		if err := w.advance(); err != nil {
			// Malformed state is a precondition violation: no partial tick.
			ctx.Err(err)
			return
		}
		w.pushSnapshot()
		w.logBenchmarks(ctx)

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World shutting down after %d ticks", w.tick)
	return nil
}

// initState validates the configuration and spawns the initial populations.
// Split out of PreStart so the stepping logic is testable without an actor
// system.
func (w *WorldActor) initState() error {
	w.params = w.cfg.Parameters()
	if err := w.params.Validate(); err != nil {
		return err
	}
	w.rng = rand.New(rand.NewPCG(w.cfg.Seed, w.cfg.Seed))
	w.boids = w.spawnSwarm(w.cfg.NumBoids)
	w.predators = w.spawnSwarm(w.cfg.NumPredators)
	w.hazards = w.cfg.HazardField()
	if err := w.hazards.Validate(); err != nil {
		return err
	}
	w.lastLogTime = time.Now()
	return nil
}

// advance runs one tick: predators and boids both read the previous-tick
// state of the other population, then the two snapshots are committed
// together as the new current state.
func (w *WorldActor) advance() error {
	nextPredators, err := flock.UpdatePredators(w.predators, w.boids, w.params)
	if err != nil {
		return err
	}
	nextBoids, err := flock.Update(w.boids, &w.predators, &w.hazards, w.params, w.rng)
	if err != nil {
		return err
	}
	w.boids, w.predators = nextBoids, nextPredators
	w.tick++
	w.tickCount++
	return nil
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	snapshot := &WorldSnapshot{
		Tick:      w.tick,
		Boids:     w.boids.Clone(),
		Predators: w.predators.Clone(),
	}
	select {
	case w.snapshotCh <- snapshot:
	default:
		// Host busy, skip frame
	}
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) >= time.Second {
		ctx.Logger().Infof("📊 TICK RATE: %d/sec | tick=%d boids=%d predators=%d",
			w.tickCount, w.tick, w.boids.Len(), w.predators.Len())
		w.tickCount = 0
		w.lastLogTime = time.Now()
	}
}

// spawnSwarm scatters n agents uniformly over the world with small random
// headings, the way the population would enter frame one.
func (w *WorldActor) spawnSwarm(n int) flock.Swarm {
	s := flock.NewSwarm(n)
	for i := 0; i < n; i++ {
		s.X[i] = w.rng.Float64() * w.cfg.WorldWidth
		s.Y[i] = w.rng.Float64() * w.cfg.WorldHeight
		s.VX[i] = (w.rng.Float64() - 0.5) * 2
		s.VY[i] = (w.rng.Float64() - 0.5) * 2
	}
	return s
}

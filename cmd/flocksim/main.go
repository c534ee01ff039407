// Command flocksim runs the flocking simulation headless: it loads and
// validates a JSON configuration, spawns the world actor, drives it for the
// configured number of ticks and writes the final state snapshot as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tochemey/goakt/v3/actor"
	goaktlog "github.com/tochemey/goakt/v3/log"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/durationpb"

	"github.com/lao-tseu-is-alive/go-flock-simulation/internal/simulation"
)

// tickInterval is the nominal frame delta carried by each tick message.
// The core integrates with a unit time step, so this only drives pacing
// metadata, not physics.
const tickInterval = time.Second / 60

// snapshotTimeout bounds how long the host waits for the world to finish one
// tick before giving up on the run.
const snapshotTimeout = 10 * time.Second

var (
	cfgFile    string
	schemaFile string
	outFile    string
	ticks      int
	seed       uint64
)

var rootCmd = &cobra.Command{
	Use:   "flocksim",
	Short: "Headless boids flocking simulator with predators and hazard zones",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVarP(&cfgFile, "config", "c", "", "config file (JSON); defaults are used when omitted")
	rootCmd.Flags().StringVar(&schemaFile, "schema", "config.schema.json", "JSON schema the config file is validated against")
	rootCmd.Flags().StringVarP(&outFile, "out", "o", "", "write the final snapshot to this file instead of stdout")
	rootCmd.Flags().IntVarP(&ticks, "ticks", "t", 0, "override the configured number of simulation ticks")
	rootCmd.Flags().Uint64Var(&seed, "seed", 0, "override the configured random seed")
}

func run(cmd *cobra.Command, _ []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // flushing stderr can legitimately fail

	cfg := simulation.DefaultConfig()
	if cfgFile != "" {
		cfg, err = simulation.LoadConfig(cfgFile, schemaFile)
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("ticks") {
		cfg.Ticks = ticks
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cfg.Ticks <= 0 {
		return fmt.Errorf("number of ticks must be positive, got %d", cfg.Ticks)
	}

	logger.Info("Starting simulation",
		zap.Int("boids", cfg.NumBoids),
		zap.Int("predators", cfg.NumPredators),
		zap.Int("hazards", len(cfg.Hazards)),
		zap.Int("ticks", cfg.Ticks),
		zap.Uint64("seed", cfg.Seed))

	ctx := context.Background()
	system, err := actor.NewActorSystem("flocksim", actor.WithLogger(goaktlog.DefaultLogger))
	if err != nil {
		return fmt.Errorf("failed to create actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return fmt.Errorf("failed to start actor system: %w", err)
	}
	defer system.Stop(ctx) //nolint:errcheck // shutdown on exit is best effort

	snapshotCh := make(chan *simulation.WorldSnapshot, 10)
	worldPID, err := system.Spawn(ctx, "world", simulation.NewWorldActor(snapshotCh, cfg))
	if err != nil {
		return fmt.Errorf("failed to spawn world: %w", err)
	}

	start := time.Now()
	var last *simulation.WorldSnapshot
	for i := 0; i < cfg.Ticks; i++ {
		if err := actor.Tell(ctx, worldPID, durationpb.New(tickInterval)); err != nil {
			return fmt.Errorf("failed to send tick %d: %w", i+1, err)
		}
		// Reading one snapshot per tick keeps the host in lockstep with the
		// world, so the channel never drops frames.
		select {
		case snap := <-snapshotCh:
			last = snap
		case <-time.After(snapshotTimeout):
			return fmt.Errorf("timed out waiting for tick %d", i+1)
		}
	}

	logger.Info("Simulation complete",
		zap.Int("ticks", last.Tick),
		zap.Duration("elapsed", time.Since(start)))

	return writeSnapshot(last)
}

func writeSnapshot(snap *simulation.WorldSnapshot) error {
	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

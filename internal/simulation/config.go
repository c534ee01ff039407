package simulation

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
)

// HazardZone is one configured avoidance zone with its own radius.
type HazardZone struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// Config is the host-side configuration: world layout, populations, the full
// core parameter set, and the run controls of the headless driver.
type Config struct {
	// World Dimensions
	WorldWidth  float64 `json:"worldWidth"`
	WorldHeight float64 `json:"worldHeight"`

	// Population
	NumBoids     int `json:"numBoids"`
	NumPredators int `json:"numPredators"`

	// Interaction Radii
	VisionRadius     float64 `json:"visionRadius"`
	SeparationRadius float64 `json:"separationRadius"`
	PredatorRadius   float64 `json:"predatorRadius"`

	// Physics / Behavior
	MaxSpeed         float64 `json:"maxSpeed"`
	MaxForce         float64 `json:"maxForce"`
	BounceDamping    float64 `json:"bounceDamping"`
	PredatorRelSpeed float64 `json:"predatorRelSpeed"`
	PursuitGain      float64 `json:"pursuitGain"`
	JitterAmplitude  float64 `json:"jitterAmplitude"`

	// Rule weights
	SeparationWeight    float64 `json:"separationWeight"`
	AlignmentWeight     float64 `json:"alignmentWeight"`
	CohesionWeight      float64 `json:"cohesionWeight"`
	PredatorAvoidWeight float64 `json:"predatorAvoidWeight"`
	HazardAvoidWeight   float64 `json:"hazardAvoidWeight"`

	// Hazard zones boids steer away from
	Hazards []HazardZone `json:"hazards"`

	// Run controls
	Seed  uint64 `json:"seed"`
	Ticks int    `json:"ticks"`
}

func DefaultConfig() *Config {
	return &Config{
		WorldWidth:          1000,
		WorldHeight:         800,
		NumBoids:            250,
		NumPredators:        3,
		VisionRadius:        70.0,
		SeparationRadius:    20.0,
		PredatorRadius:      50.0,
		MaxSpeed:            4.0,
		MaxForce:            0.5,
		BounceDamping:       flock.DefaultBounceDamping,
		PredatorRelSpeed:    flock.DefaultPredatorRelSpeed,
		PursuitGain:         flock.DefaultPursuitGain,
		JitterAmplitude:     flock.DefaultJitterAmplitude,
		SeparationWeight:    1.0,
		AlignmentWeight:     1.0,
		CohesionWeight:      1.0,
		PredatorAvoidWeight: 1.0,
		HazardAvoidWeight:   1.0,
		Hazards: []HazardZone{
			{X: 300, Y: 300, Radius: 60},
			{X: 750, Y: 150, Radius: 90},
		},
		Seed:  1,
		Ticks: 600,
	}
}

// LoadConfig loads configuration from a JSON file and validates it against the schema.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := jsonschema.Compile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 3. Validate
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal into Struct
	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Parameters flattens the config into the core's per-tick parameter record.
func (c *Config) Parameters() flock.Parameters {
	return flock.Parameters{
		Width:               c.WorldWidth,
		Height:              c.WorldHeight,
		MaxSpeed:            c.MaxSpeed,
		MaxForce:            c.MaxForce,
		VisionRadius:        c.VisionRadius,
		SeparationRadius:    c.SeparationRadius,
		PredatorRadius:      c.PredatorRadius,
		SeparationWeight:    c.SeparationWeight,
		AlignmentWeight:     c.AlignmentWeight,
		CohesionWeight:      c.CohesionWeight,
		PredatorAvoidWeight: c.PredatorAvoidWeight,
		HazardAvoidWeight:   c.HazardAvoidWeight,
		BounceDamping:       c.BounceDamping,
		PredatorRelSpeed:    c.PredatorRelSpeed,
		PursuitGain:         c.PursuitGain,
		JitterAmplitude:     c.JitterAmplitude,
	}
}

// HazardField converts the configured zone list to the core's parallel-array
// representation.
func (c *Config) HazardField() flock.HazardField {
	h := flock.HazardField{
		X:      make([]float64, len(c.Hazards)),
		Y:      make([]float64, len(c.Hazards)),
		Radius: make([]float64, len(c.Hazards)),
	}
	for k, zone := range c.Hazards {
		h.X[k], h.Y[k], h.Radius[k] = zone.X, zone.Y, zone.Radius
	}
	return h
}

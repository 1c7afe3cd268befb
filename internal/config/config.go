// Package config handles simulation configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all runner settings.
type Config struct {
	Terrain    TerrainConfig    `yaml:"terrain"`
	Streaming  StreamingConfig  `yaml:"streaming"`
	Obstacles  ObstaclesConfig  `yaml:"obstacles"`
	Movement   MovementConfig   `yaml:"movement"`
	Physics    PhysicsConfig    `yaml:"physics"`
	Simulation SimulationConfig `yaml:"simulation"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// TerrainConfig controls chunk geometry and the height field.
type TerrainConfig struct {
	Seed            int64   `yaml:"seed"`
	ChunkSize       float32 `yaml:"chunk_size"`
	Subdivisions    int     `yaml:"subdivisions"`
	Amplitude       float32 `yaml:"amplitude"`
	HorizontalScale float32 `yaml:"horizontal_scale"`
	VerticalScale   float32 `yaml:"vertical_scale"`
}

// StreamingConfig controls which chunks are kept loaded.
type StreamingConfig struct {
	Window  int `yaml:"window"`  // chunks loaded from the current one forward
	Workers int `yaml:"workers"` // parallel mesh builders; 1 builds inline
}

// ObstaclesConfig controls obstacle placement.
type ObstaclesConfig struct {
	PerChunk int     `yaml:"per_chunk"`
	Size     float32 `yaml:"size"` // cuboid edge length
	Seed     uint64  `yaml:"seed"` // 0 picks a fresh random stream every run
}

// MovementConfig holds player locomotion tuning.
type MovementConfig struct {
	Gravity             float32 `yaml:"gravity"`
	GravityMultiplier   float32 `yaml:"gravity_multiplier"`
	FastFallMultiplier  float32 `yaml:"fast_fall_multiplier"`
	TurnRate            float32 `yaml:"turn_rate"` // radians per second
	InitialSpeed        float32 `yaml:"initial_speed"`
	GroundProbeDistance float32 `yaml:"ground_probe_distance"`
}

// PhysicsConfig holds the player collider and slide settings.
type PhysicsConfig struct {
	CapsuleRadius float32 `yaml:"capsule_radius"`
	CapsuleLength float32 `yaml:"capsule_length"`
	MaxBounces    int     `yaml:"max_bounces"`
}

// SimulationConfig controls the fixed-step loop.
type SimulationConfig struct {
	TickRate        int           `yaml:"tick_rate"` // fixed ticks per second
	Duration        time.Duration `yaml:"duration"`  // simulated run length
	HitstopSpeed    float32       `yaml:"hitstop_speed"`
	HitstopDuration time.Duration `yaml:"hitstop_duration"` // virtual time
}

// TelemetryConfig holds diagnostic output paths.
type TelemetryConfig struct {
	LandingsCSV string `yaml:"landings_csv"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns a Config with the stock runner tuning.
func Default() *Config {
	return &Config{
		Terrain: TerrainConfig{
			Seed:            12345,
			ChunkSize:       200,
			Subdivisions:    64,
			Amplitude:       20,
			HorizontalScale: 80,
			VerticalScale:   10,
		},
		Streaming: StreamingConfig{
			Window:  5,
			Workers: 4,
		},
		Obstacles: ObstaclesConfig{
			PerChunk: 2,
			Size:     30,
			Seed:     0,
		},
		Movement: MovementConfig{
			Gravity:             9.8,
			GravityMultiplier:   2,
			FastFallMultiplier:  7,
			TurnRate:            0.3141593, // pi/10
			InitialSpeed:        50,
			GroundProbeDistance: 0.2,
		},
		Physics: PhysicsConfig{
			CapsuleRadius: 0.5,
			CapsuleLength: 1,
			MaxBounces:    5,
		},
		Simulation: SimulationConfig{
			TickRate:        60,
			Duration:        30 * time.Second,
			HitstopSpeed:    0.02,
			HitstopDuration: 10 * time.Millisecond,
		},
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  20,
			MaxBackups: 3,
		},
	}
}

// TickDelta returns the fixed tick length in seconds.
func (c *Config) TickDelta() float32 {
	if c.Simulation.TickRate <= 0 {
		return 0
	}
	return 1 / float32(c.Simulation.TickRate)
}

// Validate reports every setting the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Terrain.ChunkSize > 0, "terrain.chunk_size must be positive, got %v", c.Terrain.ChunkSize)
	check(c.Terrain.Subdivisions >= 0, "terrain.subdivisions must not be negative, got %d", c.Terrain.Subdivisions)
	check(c.Terrain.HorizontalScale != 0, "terrain.horizontal_scale must be non-zero")
	check(c.Terrain.VerticalScale != 0, "terrain.vertical_scale must be non-zero")

	check(c.Streaming.Window > 0, "streaming.window must be positive, got %d", c.Streaming.Window)
	check(c.Streaming.Workers > 0, "streaming.workers must be positive, got %d", c.Streaming.Workers)

	check(c.Obstacles.PerChunk >= 0, "obstacles.per_chunk must not be negative, got %d", c.Obstacles.PerChunk)
	check(c.Obstacles.Size > 0, "obstacles.size must be positive, got %v", c.Obstacles.Size)

	check(c.Movement.Gravity >= 0, "movement.gravity must not be negative, got %v", c.Movement.Gravity)
	check(c.Movement.GroundProbeDistance > 0, "movement.ground_probe_distance must be positive, got %v", c.Movement.GroundProbeDistance)

	check(c.Physics.CapsuleRadius > 0, "physics.capsule_radius must be positive, got %v", c.Physics.CapsuleRadius)
	check(c.Physics.CapsuleLength >= 0, "physics.capsule_length must not be negative, got %v", c.Physics.CapsuleLength)
	check(c.Physics.MaxBounces > 0, "physics.max_bounces must be positive, got %d", c.Physics.MaxBounces)

	check(c.Simulation.TickRate > 0, "simulation.tick_rate must be positive, got %d", c.Simulation.TickRate)
	check(c.Simulation.Duration >= 0, "simulation.duration must not be negative, got %v", c.Simulation.Duration)
	check(c.Simulation.HitstopSpeed > 0 && c.Simulation.HitstopSpeed <= 1,
		"simulation.hitstop_speed must be in (0, 1], got %v", c.Simulation.HitstopSpeed)
	check(c.Simulation.HitstopDuration >= 0, "simulation.hitstop_duration must not be negative, got %v", c.Simulation.HitstopDuration)

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

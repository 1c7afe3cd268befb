package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagSeed        = flag.Int64("seed", 0, "Terrain noise seed (0 keeps the configured seed)")
	flagObstacleRNG = flag.Uint64("obstacle-seed", 0, "Obstacle placement seed (0 keeps the configured seed)")
	flagDuration    = flag.Duration("duration", 0, "Simulated run length")
	flagWorkers     = flag.Int("workers", 0, "Parallel chunk mesh builders")
	flagLandings    = flag.String("landings-csv", "", "Write landing telemetry to this CSV file")
	flagLogFile     = flag.String("log-file", "", "Write logs to this file")
	flagWriteConfig = flag.String("write-config", "", "Write the effective config to this file and exit")
	flagSaveConfig  = flag.Bool("save-config", false, "Save the effective config to the user config directory and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSeed != 0 {
		cfg.Terrain.Seed = *flagSeed
	}
	if *flagObstacleRNG != 0 {
		cfg.Obstacles.Seed = *flagObstacleRNG
	}
	if *flagDuration > 0 {
		cfg.Simulation.Duration = *flagDuration
	}
	if *flagWorkers > 0 {
		cfg.Streaming.Workers = *flagWorkers
	}
	if *flagLandings != "" {
		cfg.Telemetry.LandingsCSV = *flagLandings
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}

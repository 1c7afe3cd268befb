// Package main is the entry point for the headless downhill runner.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/downhill/internal/config"
	"github.com/Faultbox/downhill/internal/game"
	"github.com/Faultbox/downhill/internal/game/movement"
	"github.com/Faultbox/downhill/internal/logger"
	"github.com/Faultbox/downhill/pkg/math"
)

var flagWeave = flag.Duration("weave", 0, "Alternate steering left and right with this period (0 runs straight)")

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	fileCfg := logger.FileConfig{}
	if cfg.Logging.LogFile != "" {
		fileCfg = logger.DefaultFileConfig(cfg.Logging.LogFile)
		fileCfg.MaxSizeMB = cfg.Logging.MaxSizeMB
		fileCfg.MaxBackups = cfg.Logging.MaxBackups
	}
	if err := logger.InitWithOptions(logger.Options{
		Level:   cfg.Logging.Level,
		File:    fileCfg,
		Console: os.Stdout,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== downhill ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	written, err := config.WriteRequested(cfg)
	for _, path := range written {
		logger.Info("config written", zap.String("path", path))
	}
	if err != nil {
		logger.Error("failed to write config", zap.Error(err))
		os.Exit(1)
	}
	if len(written) > 0 {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, err := game.New(cfg, logger.Log, weaveInput(*flagWeave, cfg.Simulation.TickRate))
	if err != nil {
		logger.Error("failed to create game", zap.Error(err))
		os.Exit(1)
	}

	runErr := g.Run(ctx)
	if s := g.Session(); s != nil {
		summary := s.Telemetry().Summary()
		logger.Info("run summary",
			zap.Duration("simulated", s.Clock().Elapsed()),
			zap.Float32("distance", s.Distance()),
			zap.Int("chunks", s.Streamer().Registry().Len()),
			zap.Int("landings", summary.Landings),
			zap.Any("landing_quality", summary.ByQuality),
			zap.Int("obstacle_hits", summary.Obstacles))
	}
	if err := g.Close(); err != nil {
		logger.Error("failed to close game", zap.Error(err))
		os.Exit(1)
	}
	if runErr != nil {
		logger.Error("game error", zap.Error(runErr))
		os.Exit(1)
	}

	logger.Info("run finished normally")
}

// weaveInput steers right for half the period, then left.
func weaveInput(period time.Duration, tickRate int) game.Input {
	if period <= 0 {
		return game.ScriptedInput{}
	}
	half := uint64(period.Seconds() * float64(tickRate) / 2)
	if half == 0 {
		half = 1
	}
	return game.ScriptedInput{
		{Frames: half, Actions: movement.Actions{Move: math.Vec2{X: 1}}},
		{Frames: half, Actions: movement.Actions{Move: math.Vec2{X: -1}}},
	}
}

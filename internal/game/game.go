package game

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/downhill/internal/config"
	"github.com/Faultbox/downhill/internal/game/movement"
	"github.com/Faultbox/downhill/internal/game/states"
)

// Game is the headless runner: it steps the state machine at the fixed
// frame rate until the session has simulated the configured duration.
type Game struct {
	cfg     *config.Config
	log     *zap.Logger
	input   Input
	manager *states.Manager
	session *Session
	frames  uint64
}

// New creates a game that starts a session immediately.
func New(cfg *config.Config, log *zap.Logger, input Input) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	if input == nil {
		input = ScriptedInput{}
	}

	g := &Game{
		cfg:     cfg,
		log:     log,
		input:   input,
		manager: states.NewManager(),
	}

	playing := states.NewPlayingState(func() (states.Simulation, error) {
		s, err := NewSession(cfg, log)
		if err != nil {
			return nil, err
		}
		g.session = s
		return s, nil
	})
	g.manager.Change(states.NewMenuState(g.manager, func() states.State { return playing }, true))
	return g, nil
}

// Session returns the current session, or nil before it starts.
func (g *Game) Session() *Session {
	return g.session
}

// Run drives frames until the simulated duration elapses or ctx is done.
func (g *Game) Run(ctx context.Context) error {
	frame := time.Second / time.Duration(g.cfg.Simulation.TickRate)
	g.log.Info("starting game loop",
		zap.Duration("frame", frame),
		zap.Duration("duration", g.cfg.Simulation.Duration))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if g.session != nil && g.session.Clock().Elapsed() >= g.cfg.Simulation.Duration {
			return nil
		}

		if err := g.manager.HandleInput(g.input.Actions(g.frames)); err != nil {
			return fmt.Errorf("input error: %w", err)
		}
		if err := g.manager.Update(ctx, frame); err != nil {
			return fmt.Errorf("update error: %w", err)
		}
		g.frames++
	}
}

// Close exits the current state, closing its session.
func (g *Game) Close() error {
	g.log.Info("closing game", zap.Uint64("frames", g.frames))
	return g.manager.Close()
}

// Input supplies actions per frame.
type Input interface {
	Actions(frame uint64) movement.Actions
}

// InputSegment holds actions for a number of frames.
type InputSegment struct {
	Frames  uint64
	Actions movement.Actions
}

// ScriptedInput plays segments in order and loops. An empty script is no
// input.
type ScriptedInput []InputSegment

// Actions returns the actions for frame.
func (s ScriptedInput) Actions(frame uint64) movement.Actions {
	var total uint64
	for _, seg := range s {
		total += seg.Frames
	}
	if total == 0 {
		return movement.Actions{}
	}
	frame %= total
	for _, seg := range s {
		if frame < seg.Frames {
			return seg.Actions
		}
		frame -= seg.Frames
	}
	return movement.Actions{}
}

package states

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/downhill/internal/game/movement"
	"github.com/Faultbox/downhill/internal/logger"
)

// Simulation is a running session.
type Simulation interface {
	Tick(ctx context.Context, actions movement.Actions, real time.Duration) (int, error)
	Close() error
}

// PlayingState owns one simulation for as long as it is current.
type PlayingState struct {
	newSim  func() (Simulation, error)
	sim     Simulation
	actions movement.Actions
	frames  uint64
}

// NewPlayingState creates the state. The simulation is built on Enter.
func NewPlayingState(newSim func() (Simulation, error)) *PlayingState {
	return &PlayingState{newSim: newSim}
}

// Simulation returns the running simulation, or nil outside the state.
func (s *PlayingState) Simulation() Simulation {
	return s.sim
}

// Enter is called when entering this state.
func (s *PlayingState) Enter() error {
	sim, err := s.newSim()
	if err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	s.sim = sim
	s.frames = 0
	s.actions = movement.Actions{}
	logger.Debug("entering PlayingState")
	return nil
}

// Exit is called when leaving this state.
func (s *PlayingState) Exit() error {
	if s.sim == nil {
		return nil
	}
	err := s.sim.Close()
	s.sim = nil
	logger.Debug("leaving PlayingState", zap.Uint64("frames", s.frames))
	return err
}

// Update is called every frame.
func (s *PlayingState) Update(ctx context.Context, real time.Duration) error {
	if s.sim == nil {
		return nil
	}
	s.frames++
	_, err := s.sim.Tick(ctx, s.actions, real)
	return err
}

// HandleInput stores the actions used by the next update.
func (s *PlayingState) HandleInput(actions movement.Actions) error {
	s.actions = actions
	return nil
}

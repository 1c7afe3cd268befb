package states

import (
	"context"
	"time"

	"github.com/Faultbox/downhill/internal/game/movement"
	"github.com/Faultbox/downhill/internal/logger"
)

// MenuState waits for the run to be started, then hands over to the next
// state.
type MenuState struct {
	manager   *Manager
	next      func() State
	autoStart bool
	started   bool
}

// NewMenuState creates the menu. With autoStart the run begins on the first
// update.
func NewMenuState(manager *Manager, next func() State, autoStart bool) *MenuState {
	return &MenuState{manager: manager, next: next, autoStart: autoStart}
}

// Start requests the run to begin.
func (s *MenuState) Start() {
	s.started = true
}

// Enter is called when entering this state.
func (s *MenuState) Enter() error {
	s.started = s.autoStart
	logger.Debug("entering MenuState")
	return nil
}

// Exit is called when leaving this state.
func (s *MenuState) Exit() error {
	return nil
}

// Update is called every frame.
func (s *MenuState) Update(_ context.Context, _ time.Duration) error {
	if s.started {
		s.started = false
		s.manager.Change(s.next())
	}
	return nil
}

// HandleInput starts the run on fast fall, the only button there is.
func (s *MenuState) HandleInput(actions movement.Actions) error {
	if actions.FastFall {
		s.Start()
	}
	return nil
}

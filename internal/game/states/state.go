// Package states implements game state management.
package states

import (
	"context"
	"time"

	"github.com/Faultbox/downhill/internal/game/movement"
)

// State represents a game state (menu, playing).
type State interface {
	// Enter is called when entering this state.
	Enter() error

	// Exit is called when leaving this state.
	Exit() error

	// Update is called every frame with the real time since the last one.
	Update(ctx context.Context, real time.Duration) error

	// HandleInput receives the player's actions for the frame.
	HandleInput(actions movement.Actions) error
}

// Manager manages game state transitions.
type Manager struct {
	current State
	next    State
}

// NewManager creates a new state manager.
func NewManager() *Manager {
	return &Manager{}
}

// Current returns the current state.
func (m *Manager) Current() State {
	return m.current
}

// Change schedules a state change.
func (m *Manager) Change(next State) {
	m.next = next
}

// HandleInput forwards input to the current state.
func (m *Manager) HandleInput(actions movement.Actions) error {
	if m.current != nil {
		return m.current.HandleInput(actions)
	}
	return nil
}

// Update processes state changes and updates current state.
func (m *Manager) Update(ctx context.Context, real time.Duration) error {
	// Handle state transition
	if m.next != nil {
		if m.current != nil {
			if err := m.current.Exit(); err != nil {
				return err
			}
		}
		m.current = m.next
		m.next = nil
		if err := m.current.Enter(); err != nil {
			return err
		}
	}

	// Update current state
	if m.current != nil {
		return m.current.Update(ctx, real)
	}
	return nil
}

// Close exits the current state.
func (m *Manager) Close() error {
	if m.current == nil {
		return nil
	}
	err := m.current.Exit()
	m.current = nil
	m.next = nil
	return err
}

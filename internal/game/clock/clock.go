// Package clock provides the scaled simulation clock and the hitstop effect
// that briefly slows it down.
package clock

import "time"

// Virtual advances simulated time at a relative speed to real time.
type Virtual struct {
	speed   float64
	elapsed time.Duration
}

// NewVirtual creates a clock running at real-time speed.
func NewVirtual() *Virtual {
	return &Virtual{speed: 1}
}

// RelativeSpeed returns the current speed factor.
func (c *Virtual) RelativeSpeed() float64 {
	return c.speed
}

// SetRelativeSpeed changes the speed factor. Negative values clamp to 0.
func (c *Virtual) SetRelativeSpeed(speed float64) {
	if speed < 0 {
		speed = 0
	}
	c.speed = speed
}

// Advance moves the clock by a real-time delta and returns the virtual delta.
func (c *Virtual) Advance(real time.Duration) time.Duration {
	d := time.Duration(float64(real) * c.speed)
	c.elapsed += d
	return d
}

// Elapsed returns the total virtual time.
func (c *Virtual) Elapsed() time.Duration {
	return c.elapsed
}

// Hitstop slows a clock for a fixed span of the clock's own time, so a short
// duration stretches over many real frames at a low speed.
type Hitstop struct {
	Speed    float64       // relative speed while active
	Duration time.Duration // virtual time

	remaining time.Duration
	active    bool
}

// Trigger starts or restarts the hitstop on c.
func (h *Hitstop) Trigger(c *Virtual) {
	h.active = true
	h.remaining = h.Duration
	c.SetRelativeSpeed(h.Speed)
}

// Active reports whether the hitstop is running.
func (h *Hitstop) Active() bool {
	return h.active
}

// Update counts down the virtual delta c just advanced by and restores c to
// full speed when the hitstop finishes. It reports whether it finished during
// this call.
func (h *Hitstop) Update(c *Virtual, virtual time.Duration) bool {
	if !h.active {
		return false
	}
	h.remaining -= virtual
	if h.remaining > 0 {
		return false
	}
	h.active = false
	h.remaining = 0
	c.SetRelativeSpeed(1)
	return true
}

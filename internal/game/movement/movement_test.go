package movement

import (
	gomath "math"
	"testing"

	"github.com/Faultbox/downhill/internal/engine/physics"
	"github.com/Faultbox/downhill/pkg/math"
)

// scriptedCaster replays hits in order and repeats the last one.
type scriptedCaster struct {
	hits  []physics.Hit
	ok    []bool
	calls []castCall
}

type castCall struct {
	origin      math.Vec3
	direction   math.Vec3
	maxDistance float32
}

func (c *scriptedCaster) CastShape(_ physics.Capsule, origin math.Vec3, _ math.Quat, direction math.Vec3, maxDistance float32, _ physics.Filter) (physics.Hit, bool) {
	c.calls = append(c.calls, castCall{origin, direction, maxDistance})
	if len(c.ok) == 0 {
		return physics.Hit{}, false
	}
	i := len(c.calls) - 1
	if i >= len(c.ok) {
		i = len(c.ok) - 1
	}
	return c.hits[i], c.ok[i]
}

var testCapsule = physics.NewCapsule(0.5, 1)

func approx(a, b, tol float32) bool {
	return a-b <= tol && b-a <= tol
}

func TestSlideUnobstructed(t *testing.T) {
	caster := &scriptedCaster{}
	r := SlideResolver{MaxBounces: 5, Caster: caster}

	res := r.Resolve(testCapsule, math.Vec3{}, math.QuatIdentity(), math.Vec3{Z: -50}, 0.016, physics.Filter{})

	if !res.Slide.ApproxEqual(math.Vec3{Z: -0.8}, 1e-5) {
		t.Errorf("slide = %v, want (0, 0, -0.8)", res.Slide)
	}
	if !res.Velocity.ApproxEqual(math.Vec3{Z: -50}, 1e-3) {
		t.Errorf("velocity = %v, want (0, 0, -50)", res.Velocity)
	}
	if res.Bounces != 0 || res.Degenerate {
		t.Errorf("unexpected result %+v", res)
	}
	if len(caster.calls) != 1 || !approx(caster.calls[0].maxDistance, 0.8, 1e-5) {
		t.Errorf("expected one cast of 0.8, got %+v", caster.calls)
	}
}

func TestSlideZeroVelocity(t *testing.T) {
	caster := &scriptedCaster{}
	r := SlideResolver{MaxBounces: 5, Caster: caster}

	res := r.Resolve(testCapsule, math.Vec3{}, math.QuatIdentity(), math.Vec3{}, 0.016, physics.Filter{})

	if res.Velocity != (math.Vec3{}) {
		t.Errorf("velocity = %v, want zero", res.Velocity)
	}
	if len(caster.calls) != 0 {
		t.Errorf("zero velocity should not cast, got %d casts", len(caster.calls))
	}
}

func TestSlideAlongFloorPreservesSpeed(t *testing.T) {
	caster := &scriptedCaster{
		hits: []physics.Hit{{Distance: 0.3, Normal: math.Up}, {}},
		ok:   []bool{true, false},
	}
	r := SlideResolver{MaxBounces: 5, Caster: caster}
	v := math.Vec3{Y: -10, Z: -10}

	res := r.Resolve(testCapsule, math.Vec3{}, math.QuatIdentity(), v, 0.1, physics.Filter{})

	if !approx(res.Velocity.Length(), v.Length(), 1e-3) {
		t.Errorf("speed %v, want %v", res.Velocity.Length(), v.Length())
	}
	if res.Bounces != 1 {
		t.Errorf("expected 1 bounce, got %d", res.Bounces)
	}
	if res.Velocity.Z >= 0 || res.Velocity.Y < -5 {
		t.Errorf("velocity %v should run along the floor", res.Velocity)
	}

	// Second cast starts just off the surface heading along it
	if len(caster.calls) != 2 {
		t.Fatalf("expected 2 casts, got %d", len(caster.calls))
	}
	second := caster.calls[1]
	if !second.direction.ApproxEqual(math.Forward, 1e-5) {
		t.Errorf("second cast direction %v, want forward", second.direction)
	}
	d := float32(gomath.Sqrt(0.5))
	wantOrigin := math.Vec3{Y: -0.3*d + 1.0/60, Z: -0.3 * d}
	if !second.origin.ApproxEqual(wantOrigin, 1e-5) {
		t.Errorf("second cast origin %v, want %v", second.origin, wantOrigin)
	}
}

func TestSlideTerminates(t *testing.T) {
	slope := math.Vec3{Y: 0.6, Z: 0.8}
	caster := &scriptedCaster{
		hits: []physics.Hit{{Distance: 0.1, Normal: slope}},
		ok:   []bool{true},
	}
	r := SlideResolver{MaxBounces: 5, Caster: caster}
	v := math.Vec3{X: 3, Z: -50}

	res := r.Resolve(testCapsule, math.Vec3{}, math.QuatIdentity(), v, 0.016, physics.Filter{})

	if len(caster.calls) != 5 || res.Bounces != 5 {
		t.Errorf("expected 5 casts and bounces, got %d/%d", len(caster.calls), res.Bounces)
	}
	if !approx(res.Velocity.Length(), v.Length(), 1e-3) {
		t.Errorf("speed %v, want %v", res.Velocity.Length(), v.Length())
	}
}

func TestSlideHeadOnStops(t *testing.T) {
	caster := &scriptedCaster{
		hits: []physics.Hit{{Distance: 0.2, Normal: math.Vec3{Z: 1}}},
		ok:   []bool{true},
	}
	r := SlideResolver{MaxBounces: 5, Caster: caster}
	v := math.Vec3{Z: -50}

	res := r.Resolve(testCapsule, math.Vec3{}, math.QuatIdentity(), v, 0.016, physics.Filter{})

	if len(caster.calls) != 1 {
		t.Errorf("a zero tangent should end the loop, got %d casts", len(caster.calls))
	}
	if !res.Slide.ApproxEqual(math.Vec3{Z: -0.2}, 1e-5) {
		t.Errorf("slide = %v, want (0, 0, -0.2)", res.Slide)
	}
	if !res.Velocity.ApproxEqual(v, 1e-3) {
		t.Errorf("velocity = %v, want %v", res.Velocity, v)
	}
}

func TestSlideDegenerateKeepsVelocity(t *testing.T) {
	caster := &scriptedCaster{
		hits: []physics.Hit{{Distance: 0, Normal: math.Vec3{Z: 1}}},
		ok:   []bool{true},
	}
	r := SlideResolver{MaxBounces: 5, Caster: caster}
	v := math.Vec3{Z: -50}

	res := r.Resolve(testCapsule, math.Vec3{}, math.QuatIdentity(), v, 0.016, physics.Filter{})

	if !res.Degenerate {
		t.Error("expected degenerate slide")
	}
	if res.Velocity != v {
		t.Errorf("velocity = %v, want unchanged %v", res.Velocity, v)
	}
}

func TestSlideAgainstCollisionWorld(t *testing.T) {
	w := physics.NewWorld()
	floor := []math.Triangle{
		{{X: -50, Z: -50}, {X: -50, Z: 50}, {X: 50, Z: -50}},
		{{X: 50, Z: -50}, {X: -50, Z: 50}, {X: 50, Z: 50}},
	}
	w.ConstructStaticCollider(floor, math.Identity())

	r := SlideResolver{MaxBounces: 5, Caster: w}
	v := math.Vec3{Y: -10, Z: -10}
	res := r.Resolve(testCapsule, math.Vec3{Y: 1.2}, math.QuatIdentity(), v, 0.1, physics.Filter{})

	if res.Bounces != 1 {
		t.Errorf("expected 1 bounce, got %d", res.Bounces)
	}
	if !approx(res.Velocity.Length(), v.Length(), 1e-3) {
		t.Errorf("speed %v, want %v", res.Velocity.Length(), v.Length())
	}
	if res.Velocity.Z >= 0 || res.Velocity.Y < -3 {
		t.Errorf("velocity %v should be redirected along the floor", res.Velocity)
	}
}

func TestGravity(t *testing.T) {
	g := Gravity{G: 9.8, Multiplier: 2, FastFallMultiplier: 7}
	v := math.Vec3{Z: -50}

	tests := []struct {
		name     string
		grounded bool
		fastFall bool
		wantY    float32
	}{
		{"airborne", false, false, -9.8 * 2 * 0.016},
		{"fast fall", false, true, -9.8 * 7 * 0.016},
		{"grounded", true, false, 0},
		{"grounded fast fall", true, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := g.Apply(v, tt.grounded, tt.fastFall, 0.016)
			if !approx(got.Y, tt.wantY, 1e-5) {
				t.Errorf("y = %v, want %v", got.Y, tt.wantY)
			}
			if got.Z != -50 {
				t.Errorf("gravity changed forward speed: %v", got)
			}
		})
	}
}

func TestSteer(t *testing.T) {
	v := math.Vec3{Z: -50}

	if got := Steer(v, math.Vec2{}, gomath.Pi/10, 0.016); got != v {
		t.Errorf("no input should not steer, got %v", got)
	}

	right := Steer(v, math.Vec2{X: 1}, gomath.Pi/10, 1)
	if right.X <= 0 {
		t.Errorf("positive move should turn right, got %v", right)
	}
	left := Steer(v, math.Vec2{X: -0.2}, gomath.Pi/10, 1)
	if left.X >= 0 {
		t.Errorf("negative move should turn left, got %v", left)
	}
	if !approx(right.X, -left.X, 1e-4) {
		t.Errorf("turn rate should not depend on stick magnitude: %v vs %v", right, left)
	}
	if !approx(right.Length(), 50, 1e-3) {
		t.Errorf("steering changed speed: %v", right.Length())
	}

	want := float32(50 * gomath.Sin(gomath.Pi/10))
	if !approx(right.X, want, 1e-3) {
		t.Errorf("x = %v, want %v", right.X, want)
	}
}

func TestClassifyLanding(t *testing.T) {
	tests := []struct {
		name     string
		normal   math.Vec3
		velocity math.Vec3
		want     LandingQuality
	}{
		{"flat forward", math.Up, math.Vec3{Z: -40}, LandingPerfect},
		{"steep drop", math.Up, math.Vec3{Y: -10, Z: -10}, LandingMeh},
		{"slight drop", math.Up, math.Vec3{Y: -2.7, Z: -10}, LandingOk},
		{"moderate drop", math.Up, math.Vec3{Y: -4, Z: -10}, LandingMeh},
		{"shallow drop", math.Up, math.Vec3{Y: -0.17, Z: -1}, LandingGood},
		{"zero velocity", math.Up, math.Vec3{}, LandingMeh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := ClassifyLanding(tt.normal, tt.velocity)
			if got != tt.want {
				t.Errorf("ClassifyLanding = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLandingQualityThresholds(t *testing.T) {
	tests := []struct {
		score float32
		want  LandingQuality
	}{
		{1, LandingPerfect},
		{0.991, LandingPerfect},
		{0.99, LandingGood},
		{0.981, LandingGood},
		{0.98, LandingOk},
		{0.951, LandingOk},
		{0.95, LandingMeh},
		{-1, LandingMeh},
	}

	for _, tt := range tests {
		if got := LandingQualityFor(tt.score); got != tt.want {
			t.Errorf("LandingQualityFor(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestGroundProbeHysteresis(t *testing.T) {
	caster := &scriptedCaster{
		hits: []physics.Hit{{Distance: 0.1, Normal: math.Up}},
		ok:   []bool{true},
	}
	probe := GroundProbe{Distance: 0.2}
	last := math.Vec3{Z: -50}

	first := probe.Probe(caster, testCapsule, math.Vec3{}, math.QuatIdentity(), physics.Filter{}, false, last)
	if !first.Grounded || !first.Landed {
		t.Fatalf("expected landing, got %+v", first)
	}
	if first.Quality != LandingPerfect {
		t.Errorf("expected perfect landing, got %v", first.Quality)
	}

	second := probe.Probe(caster, testCapsule, math.Vec3{}, math.QuatIdentity(), physics.Filter{}, first.Grounded, last)
	if !second.Grounded || second.Landed {
		t.Errorf("staying grounded must not land again, got %+v", second)
	}

	call := caster.calls[0]
	if call.direction != math.Down || call.maxDistance != 0.2 {
		t.Errorf("probe cast %+v, want straight down 0.2", call)
	}
}

func TestGroundProbeAirborne(t *testing.T) {
	probe := GroundProbe{Distance: 0.2}
	res := probe.Probe(&scriptedCaster{}, testCapsule, math.Vec3{Y: 10}, math.QuatIdentity(), physics.Filter{}, true, math.Vec3{})
	if res.Grounded || res.Landed {
		t.Errorf("expected airborne, got %+v", res)
	}
}

func TestLandingQualityString(t *testing.T) {
	want := map[LandingQuality]string{
		LandingMeh:     "meh",
		LandingOk:      "ok",
		LandingGood:    "good",
		LandingPerfect: "perfect",
	}
	for q, s := range want {
		if q.String() != s {
			t.Errorf("%d.String() = %q, want %q", q, q.String(), s)
		}
	}
}

package game

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Faultbox/downhill/internal/config"
	"github.com/Faultbox/downhill/internal/engine/terrain"
	"github.com/Faultbox/downhill/internal/game/movement"
	"github.com/Faultbox/downhill/internal/game/world"
	"github.com/Faultbox/downhill/pkg/math"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Streaming.Workers = 2
	cfg.Obstacles.Seed = 3
	cfg.Simulation.Duration = 200 * time.Millisecond
	return cfg
}

func newTestSession(t *testing.T, cfg *config.Config) *Session {
	t.Helper()
	s, err := NewSession(cfg, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestNewSessionSpawnsPlayer(t *testing.T) {
	cfg := testConfig()
	s := newTestSession(t, cfg)

	p := s.World().Player()
	wantY := terrain.NewNoiseField(cfg.Terrain.Seed).Sample(math.Zero3)*cfg.Terrain.Amplitude + 1
	if p.Transform.Position != (math.Vec3{Y: wantY}) {
		t.Errorf("spawned at %v, want (0, %v, 0)", p.Transform.Position, wantY)
	}
	if p.Velocity.Linear != (math.Vec3{Z: -50}) {
		t.Errorf("initial velocity %v", p.Velocity.Linear)
	}
	if p.LastFrameVelocity.Linear != p.Velocity.Linear {
		t.Error("last frame velocity should match the initial velocity")
	}
	if s.ID() == "" {
		t.Error("session id is empty")
	}
}

func TestNewSessionRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Physics.MaxBounces = 0
	if _, err := NewSession(cfg, nil); err == nil {
		t.Error("expected config error")
	}
}

func TestStepStreamsAndMoves(t *testing.T) {
	s := newTestSession(t, testConfig())
	ctx := context.Background()

	if err := s.Step(ctx, movement.Actions{}); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if got := s.Streamer().Registry().Indices(); len(got) != 5 || got[0] != 0 || got[4] != 4 {
		t.Errorf("loaded %v, want [0 1 2 3 4]", got)
	}
	if s.Ticks() != 1 {
		t.Errorf("expected 1 tick, got %d", s.Ticks())
	}
	if s.Distance() <= 0 {
		t.Errorf("player did not move forward: distance %v", s.Distance())
	}

	p := s.World().Player()
	if p.LastFrameVelocity.Linear != p.Velocity.Linear {
		t.Error("last frame velocity not recorded")
	}
}

func TestRunStaysOnTerrain(t *testing.T) {
	cfg := testConfig()
	cfg.Obstacles.PerChunk = 0
	s := newTestSession(t, cfg)
	ctx := context.Background()

	for range 120 {
		if err := s.Step(ctx, movement.Actions{}); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}

	p := s.World().Player()
	pos := p.Transform.Position
	index := world.ChunkIndex(pos.Z, cfg.Terrain.ChunkSize)
	e, ok := s.Streamer().Registry().Get(index)
	if !ok {
		t.Fatalf("chunk %d under the player is not loaded", index)
	}
	chunk, _ := s.World().Chunk(e)
	offset := float32(index) * cfg.Terrain.ChunkSize
	ground := terrain.HeightAt(chunk.Mesh, pos.X, pos.Z+offset)

	bottom := pos.Y - cfg.Physics.CapsuleRadius - cfg.Physics.CapsuleLength/2
	if bottom < ground-1 {
		t.Errorf("player fell through terrain: bottom %v, ground %v", bottom, ground)
	}
	if s.Distance() < 50 {
		t.Errorf("player travelled only %v in two seconds", s.Distance())
	}
	if speed := p.Velocity.Linear.Length(); speed < 40 {
		t.Errorf("player slowed to %v", speed)
	}
	if s.Telemetry().Summary().Landings < 1 {
		t.Error("expected at least one landing")
	}
}

func TestObstacleHitTriggersHitstop(t *testing.T) {
	cfg := testConfig()
	s := newTestSession(t, cfg)
	ctx := context.Background()

	if err := s.Step(ctx, movement.Actions{}); err != nil {
		t.Fatalf("Step: %v", err)
	}
	obstacles := s.World().Obstacles()
	if len(obstacles) == 0 {
		t.Fatal("no obstacles spawned")
	}
	target := obstacles[0]

	s.World().Player().Transform.Position = target.Position
	s.World().SyncPlayerCollider()
	if err := s.Step(ctx, movement.Actions{}); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if s.World().Alive(target.Entity) {
		t.Error("hit obstacle should be despawned")
	}
	if got, want := s.Clock().RelativeSpeed(), float64(cfg.Simulation.HitstopSpeed); got != want {
		t.Errorf("relative speed %v, want %v", got, want)
	}
	if s.Telemetry().Summary().Obstacles != 1 {
		t.Errorf("expected 1 obstacle hit, got %d", s.Telemetry().Summary().Obstacles)
	}

	// While slowed, a frame's worth of real time runs no fixed steps
	steps, err := s.Tick(ctx, movement.Actions{}, 5*time.Millisecond)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if steps != 0 {
		t.Errorf("expected no steps during hitstop, got %d", steps)
	}

	// The hitstop ends once its duration has passed in virtual time
	if _, err := s.Tick(ctx, movement.Actions{}, 500*time.Millisecond); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if got := s.Clock().RelativeSpeed(); got != 1 {
		t.Errorf("relative speed %v after hitstop, want 1", got)
	}
}

func TestHitstopSlowsRealFrames(t *testing.T) {
	cfg := testConfig()
	s := newTestSession(t, cfg)
	ctx := context.Background()
	frame := time.Second / time.Duration(cfg.Simulation.TickRate)

	s.hitstop.Trigger(s.clock)
	before := s.Clock().Elapsed()
	if _, err := s.Tick(ctx, movement.Actions{}, frame); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if advanced := s.Clock().Elapsed() - before; advanced >= frame/10 {
		t.Errorf("virtual time advanced %v over a %v frame during hitstop", advanced, frame)
	}
	if !s.hitstop.Active() {
		t.Fatal("hitstop ended after a single frame")
	}

	frames := 1
	for s.hitstop.Active() && frames < 1000 {
		if _, err := s.Tick(ctx, movement.Actions{}, frame); err != nil {
			t.Fatalf("Tick: %v", err)
		}
		frames++
	}
	// 10ms of virtual time at 0.02 is about half a second of real frames
	if frames < 25 || frames > 40 {
		t.Errorf("hitstop lasted %d frames, want about 30", frames)
	}
	if got := s.Clock().RelativeSpeed(); got != 1 {
		t.Errorf("relative speed %v after hitstop, want 1", got)
	}
}

func TestTickRunsDueSteps(t *testing.T) {
	s := newTestSession(t, testConfig())
	ctx := context.Background()

	steps, err := s.Tick(ctx, movement.Actions{}, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if steps != 3 {
		t.Errorf("expected 3 steps in 50ms at 60Hz, got %d", steps)
	}

	// A long stall is capped
	steps, err = s.Tick(ctx, movement.Actions{}, 2*time.Second)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if steps != maxStepsPerTick {
		t.Errorf("expected %d steps, got %d", maxStepsPerTick, steps)
	}
}

func TestCloseWritesTelemetry(t *testing.T) {
	cfg := testConfig()
	cfg.Telemetry.LandingsCSV = filepath.Join(t.TempDir(), "landings.csv")
	s := newTestSession(t, cfg)

	for range 30 {
		if err := s.Step(context.Background(), movement.Actions{}); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(cfg.Telemetry.LandingsCSV)
	if err != nil {
		t.Fatalf("reading telemetry: %v", err)
	}
	if !strings.HasPrefix(string(data), "tick,time,quality,score,speed,distance") {
		t.Errorf("unexpected telemetry %q", data)
	}
}

func TestGameRun(t *testing.T) {
	cfg := testConfig()
	steer := ScriptedInput{
		{Frames: 5, Actions: movement.Actions{Move: math.Vec2{X: 1}}},
		{Frames: 5, Actions: movement.Actions{Move: math.Vec2{X: -1}}},
	}

	g, err := New(cfg, nil, steer)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	s := g.Session()
	if s == nil {
		t.Fatal("no session started")
	}
	if s.Clock().Elapsed() < cfg.Simulation.Duration {
		t.Errorf("ran %v, want at least %v", s.Clock().Elapsed(), cfg.Simulation.Duration)
	}
	if s.Ticks() == 0 {
		t.Error("no fixed steps ran")
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestGameRunCancelled(t *testing.T) {
	g, err := New(testConfig(), nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := g.Run(ctx); err == nil {
		t.Error("expected context error")
	}
	if err := g.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestScriptedInput(t *testing.T) {
	right := movement.Actions{Move: math.Vec2{X: 1}}
	fall := movement.Actions{FastFall: true}
	in := ScriptedInput{{Frames: 2, Actions: right}, {Frames: 1, Actions: fall}}

	want := []movement.Actions{right, right, fall, right, right, fall}
	for frame, w := range want {
		if got := in.Actions(uint64(frame)); got != w {
			t.Errorf("frame %d: got %+v, want %+v", frame, got, w)
		}
	}

	if got := (ScriptedInput{}).Actions(7); got != (movement.Actions{}) {
		t.Errorf("empty script should give no input, got %+v", got)
	}
}

// Package game runs the downhill simulation: a Session owns one run's world
// and advances it in fixed ticks, and Game drives sessions through states.
package game

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/downhill/internal/config"
	"github.com/Faultbox/downhill/internal/engine/physics"
	"github.com/Faultbox/downhill/internal/engine/terrain"
	"github.com/Faultbox/downhill/internal/game/clock"
	"github.com/Faultbox/downhill/internal/game/movement"
	"github.com/Faultbox/downhill/internal/game/telemetry"
	"github.com/Faultbox/downhill/internal/game/world"
	"github.com/Faultbox/downhill/pkg/math"
)

// maxStepsPerTick bounds catch-up work after a long frame.
const maxStepsPerTick = 10

// Session is one run: the player, the streamed terrain and everything that
// moves them forward.
type Session struct {
	id  string
	cfg *config.Config
	log *zap.Logger

	noise    *terrain.NoiseField
	world    *world.World
	streamer *world.Streamer

	probe    movement.GroundProbe
	gravity  movement.Gravity
	slide    movement.SlideResolver
	turnRate float32

	clock   *clock.Virtual
	hitstop *clock.Hitstop

	telemetry *telemetry.Recorder

	step        time.Duration
	dt          float32
	accumulator time.Duration
	tick        uint64
	startZ      float32
}

// NewSession builds the world and spawns the player above the terrain at
// the origin.
func NewSession(cfg *config.Config, log *zap.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	id := uuid.NewString()
	log = log.With(zap.String("session", id))

	noise := terrain.NewNoiseField(cfg.Terrain.Seed)
	builder, err := terrain.NewBuilder(terrain.MeshConfig{
		Size:            cfg.Terrain.ChunkSize,
		Subdivisions:    cfg.Terrain.Subdivisions,
		Amplitude:       cfg.Terrain.Amplitude,
		HorizontalScale: cfg.Terrain.HorizontalScale,
		VerticalScale:   cfg.Terrain.VerticalScale,
	}, noise)
	if err != nil {
		return nil, fmt.Errorf("creating terrain builder: %w", err)
	}

	phys := physics.NewWorld()
	w := world.New(phys)
	streamer := world.NewStreamer(world.StreamerConfig{
		Window:            cfg.Streaming.Window,
		Workers:           cfg.Streaming.Workers,
		ObstaclesPerChunk: cfg.Obstacles.PerChunk,
		ObstacleSize:      cfg.Obstacles.Size,
		ObstacleSeed:      cfg.Obstacles.Seed,
	}, w, builder, log)

	spawn := math.Vec3{Y: noise.Sample(math.Zero3)*cfg.Terrain.Amplitude + 1}
	velocity := math.Forward.Scale(cfg.Movement.InitialSpeed)
	shape := physics.NewCapsule(cfg.Physics.CapsuleRadius, cfg.Physics.CapsuleLength)
	if _, err := w.SpawnPlayer(shape, spawn, velocity); err != nil {
		return nil, err
	}

	s := &Session{
		id:       id,
		cfg:      cfg,
		log:      log,
		noise:    noise,
		world:    w,
		streamer: streamer,
		probe:    movement.GroundProbe{Distance: cfg.Movement.GroundProbeDistance},
		gravity: movement.Gravity{
			G:                  cfg.Movement.Gravity,
			Multiplier:         cfg.Movement.GravityMultiplier,
			FastFallMultiplier: cfg.Movement.FastFallMultiplier,
		},
		slide: movement.SlideResolver{
			MaxBounces: cfg.Physics.MaxBounces,
			Caster:     phys,
			Log:        log,
		},
		turnRate: cfg.Movement.TurnRate,
		clock:    clock.NewVirtual(),
		hitstop: &clock.Hitstop{
			Speed:    float64(cfg.Simulation.HitstopSpeed),
			Duration: cfg.Simulation.HitstopDuration,
		},
		telemetry: telemetry.NewRecorder(),
		step:      time.Second / time.Duration(cfg.Simulation.TickRate),
		dt:        cfg.TickDelta(),
		startZ:    spawn.Z,
	}

	log.Info("session started",
		zap.Int64("seed", cfg.Terrain.Seed),
		zap.Float32("spawn_y", spawn.Y),
		zap.Int("tick_rate", cfg.Simulation.TickRate))
	return s, nil
}

// ID returns the session identifier carried in its log lines.
func (s *Session) ID() string {
	return s.id
}

// World returns the session's entities.
func (s *Session) World() *world.World {
	return s.world
}

// Streamer returns the chunk streamer.
func (s *Session) Streamer() *world.Streamer {
	return s.streamer
}

// Telemetry returns the diagnostics recorder.
func (s *Session) Telemetry() *telemetry.Recorder {
	return s.telemetry
}

// Clock returns the virtual clock.
func (s *Session) Clock() *clock.Virtual {
	return s.clock
}

// Ticks returns the number of fixed steps run.
func (s *Session) Ticks() uint64 {
	return s.tick
}

// Distance returns how far the player has travelled along the forward axis.
func (s *Session) Distance() float32 {
	return s.startZ - s.world.Player().Transform.Position.Z
}

// Tick advances real time by real and runs every fixed step that became due
// in virtual time. It returns the number of steps run.
func (s *Session) Tick(ctx context.Context, actions movement.Actions, real time.Duration) (int, error) {
	virtual := s.clock.Advance(real)
	s.accumulator += virtual
	if s.hitstop.Update(s.clock, virtual) {
		s.log.Debug("hitstop finished", zap.Duration("elapsed", s.clock.Elapsed()))
	}

	steps := 0
	for s.accumulator >= s.step {
		if steps == maxStepsPerTick {
			s.log.Debug("dropping backlog", zap.Duration("backlog", s.accumulator))
			s.accumulator = 0
			break
		}
		if err := s.Step(ctx, actions); err != nil {
			return steps, err
		}
		s.accumulator -= s.step
		steps++
	}
	return steps, nil
}

// Step runs one fixed tick: stream terrain, steer, probe the ground, apply
// gravity, slide, integrate, then resolve obstacle contacts.
func (s *Session) Step(ctx context.Context, actions movement.Actions) error {
	dt := s.dt

	loaded, err := s.streamer.Ensure(ctx, s.world.Player().Transform.Position)
	if err != nil {
		return fmt.Errorf("streaming chunks: %w", err)
	}
	if len(loaded) > 0 {
		s.log.Info("chunks loaded",
			zap.Uint32s("indices", loaded),
			zap.Int("total", s.streamer.Registry().Len()))
	}

	p := s.world.Player()
	shape := p.Player.Shape
	pos := p.Transform.Position
	rot := p.Transform.Rotation
	velocity := movement.Steer(p.Velocity.Linear, actions.Move, s.turnRate, dt)

	ground := s.probe.Probe(s.world.Physics(), shape, pos, rot,
		physics.ExcludeHandles(p.Collider.Handle),
		p.Grounded.ShapeCast, p.LastFrameVelocity.Linear)
	p.Grounded.ShapeCast = ground.Grounded
	if ground.Landed {
		s.recordLanding(ground, p.LastFrameVelocity.Linear)
	}

	velocity = s.gravity.Apply(velocity, ground.Grounded, actions.FastFall, dt)

	exclude := append([]physics.Handle{p.Collider.Handle}, s.world.PassThroughHandles()...)
	res := s.slide.Resolve(shape, pos, rot, velocity, dt, physics.ExcludeHandles(exclude...))
	velocity = res.Velocity
	if res.Bounces > 0 {
		s.log.Debug("slide",
			zap.Int("bounces", res.Bounces),
			zap.Bool("degenerate", res.Degenerate))
	}

	p.Velocity.Linear = velocity
	p.Transform.Position = pos.Add(velocity.Scale(dt))
	s.world.SyncPlayerCollider()

	for _, c := range s.world.PlayerContacts() {
		s.handleContact(c)
	}

	s.world.Player().LastFrameVelocity.Linear = velocity
	s.tick++
	return nil
}

func (s *Session) handleContact(c world.Contact) {
	switch c.Kind {
	case world.ContactObstacle:
		s.hitstop.Trigger(s.clock)
		s.world.Despawn(c.Entity)
		s.telemetry.RecordObstacleHit()
		s.log.Info("obstacle hit",
			zap.Uint64("tick", s.tick),
			zap.Float32("x", c.Position.X),
			zap.Float32("z", c.Position.Z))
	default:
		s.log.Warn("unhandled contact", zap.Stringer("kind", c.Kind))
	}
}

func (s *Session) recordLanding(ground movement.GroundResult, lastVelocity math.Vec3) {
	speed := lastVelocity.Length()
	s.log.Info("landed",
		zap.Stringer("quality", ground.Quality),
		zap.Float32("score", ground.Score),
		zap.Float32("speed", speed))
	s.telemetry.RecordLanding(telemetry.LandingRecord{
		Tick:     s.tick,
		Time:     s.clock.Elapsed().Seconds(),
		Quality:  ground.Quality.String(),
		Score:    ground.Score,
		Speed:    speed,
		Distance: s.Distance(),
	})
}

// Close writes telemetry if configured and releases the session.
func (s *Session) Close() error {
	summary := s.telemetry.Summary()
	s.log.Info("session finished",
		zap.Uint64("ticks", s.tick),
		zap.Float32("distance", s.Distance()),
		zap.Int("chunks", s.streamer.Registry().Len()),
		zap.Int("landings", summary.Landings),
		zap.Int("obstacle_hits", summary.Obstacles))

	if path := s.cfg.Telemetry.LandingsCSV; path != "" {
		if err := s.telemetry.WriteCSVFile(path); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		s.log.Info("telemetry written", zap.String("path", path))
	}
	return nil
}

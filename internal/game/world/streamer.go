package world

import (
	"context"
	"fmt"
	gomath "math"
	"math/rand/v2"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/downhill/internal/engine/terrain"
	"github.com/Faultbox/downhill/pkg/math"
)

// StreamerConfig controls chunk streaming and obstacle placement.
type StreamerConfig struct {
	Window            int     // chunks loaded from the current one forward
	Workers           int     // parallel mesh builders
	ObstaclesPerChunk int     // samples drawn per chunk surface
	ObstacleSize      float32 // cuboid edge length
	ObstacleSeed      uint64  // 0 draws a fresh stream per chunk
}

// Streamer loads terrain chunks ahead of the player. Chunks are created once
// and never unloaded.
type Streamer struct {
	cfg      StreamerConfig
	world    *World
	builder  *terrain.Builder
	registry *Registry
	log      *zap.Logger
}

// NewStreamer creates a chunk streamer that spawns into w.
func NewStreamer(cfg StreamerConfig, w *World, builder *terrain.Builder, log *zap.Logger) *Streamer {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Streamer{
		cfg:      cfg,
		world:    w,
		builder:  builder,
		registry: NewRegistry(),
		log:      log,
	}
}

// Registry returns the loaded chunk registry.
func (s *Streamer) Registry() *Registry {
	return s.registry
}

// ChunkIndex returns the index of the chunk under a forward position.
func ChunkIndex(z, chunkSize float32) uint32 {
	return uint32(gomath.Floor(float64(absf(z) / chunkSize)))
}

// builtChunk is one worker's output, committed on the calling goroutine.
type builtChunk struct {
	index     uint32
	offset    float32
	mesh      *terrain.Mesh
	triangles []math.Triangle
	obstacles []math.Vec3 // world-space centers
}

// Ensure loads every missing chunk in the window starting at the player's
// chunk and returns the newly loaded indices in ascending order.
func (s *Streamer) Ensure(ctx context.Context, position math.Vec3) ([]uint32, error) {
	size := s.builder.Config().Size
	current := ChunkIndex(position.Z, size)

	var missing []uint32
	for i := 0; i < s.cfg.Window; i++ {
		index := current + uint32(i)
		if !s.registry.Contains(index) {
			missing = append(missing, index)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}

	results := make([]builtChunk, len(missing))
	if len(missing) == 1 || s.cfg.Workers == 1 {
		for i, index := range missing {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			results[i] = s.build(index)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.cfg.Workers)
		for i, index := range missing {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = s.build(index)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("building chunks %v: %w", missing, err)
		}
	}

	for _, r := range results {
		s.commit(r)
	}
	return missing, nil
}

// build is safe to run concurrently: the builder and noise field are
// read-only, and each chunk draws from its own random stream.
func (s *Streamer) build(index uint32) builtChunk {
	offset := float32(index) * s.builder.Config().Size
	mesh := s.builder.Build(offset)
	tris := mesh.Triangles()

	out := builtChunk{
		index:     index,
		offset:    offset,
		mesh:      mesh,
		triangles: tris,
	}
	if s.cfg.ObstaclesPerChunk == 0 {
		return out
	}

	sampler, err := terrain.NewSurfaceSampler(tris, s.obstacleSource(index))
	if err != nil {
		panic(fmt.Sprintf("world: chunk %d: %v", index, err))
	}
	translation := math.Vec3{Z: -offset}
	for _, p := range sampler.Sample(s.cfg.ObstaclesPerChunk) {
		out.obstacles = append(out.obstacles, p.Add(translation))
	}
	return out
}

func (s *Streamer) obstacleSource(index uint32) rand.Source {
	if s.cfg.ObstacleSeed == 0 {
		return rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return rand.NewPCG(s.cfg.ObstacleSeed, uint64(index))
}

func (s *Streamer) commit(r builtChunk) {
	e := s.world.spawnChunk(r.index, r.mesh, r.triangles, r.offset)

	half := s.cfg.ObstacleSize / 2
	extents := math.Vec3{X: half, Y: half, Z: half}
	for _, center := range r.obstacles {
		s.world.spawnObstacle(r.index, center, extents)
	}

	s.registry.add(r.index, e)
	s.log.Debug("chunk loaded",
		zap.Uint32("index", r.index),
		zap.Int("obstacles", len(r.obstacles)),
		zap.Int("loaded", s.registry.Len()))
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

// Package world holds the entities of a run: the player, streamed terrain
// chunks and their obstacles. Entities live in an ECS world; their collision
// bodies live in a physics world kept in step with it.
package world

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"

	"github.com/Faultbox/downhill/internal/engine/physics"
	"github.com/Faultbox/downhill/internal/engine/terrain"
	"github.com/Faultbox/downhill/pkg/math"
)

// World owns the ECS world and the collision world.
type World struct {
	ecs     *ecs.World
	physics *physics.World

	byHandle map[physics.Handle]ecs.Entity

	playerMapper   *ecs.Map6[Transform, Velocity, LastFrameVelocity, Grounded, Collider, Player]
	chunkMapper    *ecs.Map3[Transform, Collider, LandChunk]
	obstacleMapper *ecs.Map4[Transform, Collider, Obstacle, PassThrough]

	playerFilter      *ecs.Filter1[Player]
	passThroughFilter *ecs.Filter2[Collider, PassThrough]
	obstacleFilter    *ecs.Filter1[Obstacle]

	transformMap *ecs.Map[Transform]
	velocityMap  *ecs.Map[Velocity]
	lastVelMap   *ecs.Map[LastFrameVelocity]
	groundedMap  *ecs.Map[Grounded]
	colliderMap  *ecs.Map[Collider]
	playerMap    *ecs.Map[Player]
	obstacleMap  *ecs.Map[Obstacle]
	chunkMap     *ecs.Map[LandChunk]
}

// New creates an empty world over the given collision world.
func New(phys *physics.World) *World {
	w := ecs.NewWorld()
	return &World{
		ecs:      w,
		physics:  phys,
		byHandle: make(map[physics.Handle]ecs.Entity),

		playerMapper:   ecs.NewMap6[Transform, Velocity, LastFrameVelocity, Grounded, Collider, Player](w),
		chunkMapper:    ecs.NewMap3[Transform, Collider, LandChunk](w),
		obstacleMapper: ecs.NewMap4[Transform, Collider, Obstacle, PassThrough](w),

		playerFilter:      ecs.NewFilter1[Player](w),
		passThroughFilter: ecs.NewFilter2[Collider, PassThrough](w),
		obstacleFilter:    ecs.NewFilter1[Obstacle](w),

		transformMap: ecs.NewMap[Transform](w),
		velocityMap:  ecs.NewMap[Velocity](w),
		lastVelMap:   ecs.NewMap[LastFrameVelocity](w),
		groundedMap:  ecs.NewMap[Grounded](w),
		colliderMap:  ecs.NewMap[Collider](w),
		playerMap:    ecs.NewMap[Player](w),
		obstacleMap:  ecs.NewMap[Obstacle](w),
		chunkMap:     ecs.NewMap[LandChunk](w),
	}
}

// Physics returns the collision world.
func (w *World) Physics() *physics.World {
	return w.physics
}

// SpawnPlayer creates the runner with a kinematic capsule collider. There
// can only be one.
func (w *World) SpawnPlayer(shape physics.Capsule, position, velocity math.Vec3) (ecs.Entity, error) {
	if n := w.countPlayers(); n != 0 {
		return ecs.Entity{}, fmt.Errorf("spawning player: %d already present", n)
	}

	handle := w.physics.AddKinematicCapsule(shape, position)
	tr := Transform{Position: position, Rotation: math.QuatIdentity()}
	vel := Velocity{Linear: velocity}
	last := LastFrameVelocity{Linear: velocity}
	grounded := Grounded{}
	col := Collider{Handle: handle}
	player := Player{Shape: shape}

	e := w.playerMapper.NewEntity(&tr, &vel, &last, &grounded, &col, &player)
	w.byHandle[handle] = e
	return e, nil
}

// PlayerEntity returns the runner. It panics unless exactly one exists.
func (w *World) PlayerEntity() ecs.Entity {
	var found []ecs.Entity
	query := w.playerFilter.Query()
	for query.Next() {
		found = append(found, query.Entity())
	}
	if len(found) != 1 {
		panic(fmt.Sprintf("world: expected exactly one player, found %d", len(found)))
	}
	return found[0]
}

func (w *World) countPlayers() int {
	n := 0
	query := w.playerFilter.Query()
	for query.Next() {
		n++
	}
	return n
}

// PlayerView gives direct access to the runner's components for one tick.
// The pointers are invalidated by any structural change to the world.
type PlayerView struct {
	Entity            ecs.Entity
	Transform         *Transform
	Velocity          *Velocity
	LastFrameVelocity *LastFrameVelocity
	Grounded          *Grounded
	Collider          *Collider
	Player            *Player
}

// Player returns the runner's components. It panics unless exactly one
// player exists.
func (w *World) Player() PlayerView {
	e := w.PlayerEntity()
	return PlayerView{
		Entity:            e,
		Transform:         w.transformMap.Get(e),
		Velocity:          w.velocityMap.Get(e),
		LastFrameVelocity: w.lastVelMap.Get(e),
		Grounded:          w.groundedMap.Get(e),
		Collider:          w.colliderMap.Get(e),
		Player:            w.playerMap.Get(e),
	}
}

// SyncPlayerCollider moves the player's body to its transform.
func (w *World) SyncPlayerCollider() {
	p := w.Player()
	w.physics.SetPosition(p.Collider.Handle, p.Transform.Position)
}

// spawnChunk registers a built chunk mesh as a static collider placed at
// its forward offset.
func (w *World) spawnChunk(index uint32, mesh *terrain.Mesh, tris []math.Triangle, offset float32) ecs.Entity {
	transform := math.Translate(0, 0, -offset)
	handle := w.physics.ConstructStaticCollider(tris, transform)

	tr := Transform{Position: transform.Translation(), Rotation: math.QuatIdentity()}
	col := Collider{Handle: handle}
	chunk := LandChunk{Index: index, Mesh: mesh}

	e := w.chunkMapper.NewEntity(&tr, &col, &chunk)
	w.byHandle[handle] = e
	return e
}

func (w *World) spawnObstacle(chunk uint32, center, halfExtents math.Vec3) ecs.Entity {
	handle := w.physics.AddCuboid(center, halfExtents)

	tr := Transform{Position: center, Rotation: math.QuatIdentity()}
	col := Collider{Handle: handle}
	obs := Obstacle{Chunk: chunk, HalfExtents: halfExtents}

	e := w.obstacleMapper.NewEntity(&tr, &col, &obs, &PassThrough{})
	w.byHandle[handle] = e
	return e
}

// Despawn removes an entity and its collision body.
func (w *World) Despawn(e ecs.Entity) {
	if !w.ecs.Alive(e) {
		return
	}
	if w.colliderMap.Has(e) {
		h := w.colliderMap.Get(e).Handle
		w.physics.Remove(h)
		delete(w.byHandle, h)
	}
	w.ecs.RemoveEntity(e)
}

// Alive reports whether e still exists.
func (w *World) Alive(e ecs.Entity) bool {
	return w.ecs.Alive(e)
}

// EntityFor returns the entity owning a collision body.
func (w *World) EntityFor(h physics.Handle) (ecs.Entity, bool) {
	e, ok := w.byHandle[h]
	return e, ok
}

// PassThroughHandles returns the bodies the slide cast ignores.
func (w *World) PassThroughHandles() []physics.Handle {
	var out []physics.Handle
	query := w.passThroughFilter.Query()
	for query.Next() {
		col, _ := query.Get()
		out = append(out, col.Handle)
	}
	return out
}

// Obstacles returns the obstacle entities and their data.
func (w *World) Obstacles() []ObstacleInfo {
	var out []ObstacleInfo
	query := w.obstacleFilter.Query()
	for query.Next() {
		e := query.Entity()
		obs := query.Get()
		out = append(out, ObstacleInfo{
			Entity:   e,
			Chunk:    obs.Chunk,
			Position: w.transformMap.Get(e).Position,
		})
	}
	return out
}

// ObstacleInfo is a snapshot of one obstacle.
type ObstacleInfo struct {
	Entity   ecs.Entity
	Chunk    uint32
	Position math.Vec3
}

// Chunk returns the chunk component of a chunk entity.
func (w *World) Chunk(e ecs.Entity) (*LandChunk, bool) {
	if !w.ecs.Alive(e) || !w.chunkMap.Has(e) {
		return nil, false
	}
	return w.chunkMap.Get(e), true
}

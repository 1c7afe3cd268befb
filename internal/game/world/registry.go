package world

import (
	"sort"

	"github.com/mlange-42/ark/ecs"
)

// Registry records which chunk indices are loaded. An index is present only
// once its chunk and obstacles exist.
type Registry struct {
	chunks map[uint32]ecs.Entity
}

// NewRegistry creates an empty chunk registry.
func NewRegistry() *Registry {
	return &Registry{chunks: make(map[uint32]ecs.Entity)}
}

// Contains reports whether the chunk at index is loaded.
func (r *Registry) Contains(index uint32) bool {
	_, ok := r.chunks[index]
	return ok
}

// Get returns the chunk entity at index.
func (r *Registry) Get(index uint32) (ecs.Entity, bool) {
	e, ok := r.chunks[index]
	return e, ok
}

// Len returns the number of loaded chunks.
func (r *Registry) Len() int {
	return len(r.chunks)
}

// Indices returns the loaded indices in ascending order.
func (r *Registry) Indices() []uint32 {
	out := make([]uint32, 0, len(r.chunks))
	for i := range r.chunks {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

// add panics on a duplicate index; the streamer must check first.
func (r *Registry) add(index uint32, e ecs.Entity) {
	if _, ok := r.chunks[index]; ok {
		panic("world: chunk registered twice")
	}
	r.chunks[index] = e
}

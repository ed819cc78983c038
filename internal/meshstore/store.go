// Package meshstore owns the renderable geometry grouped by shader and the
// queue that carries new geometry from producer goroutines to the render thread.
//
// Everything on Store must be called from the render thread. Only
// UploadQueue.Push is safe to call from other goroutines.
package meshstore

import (
	"log/slog"
	"sort"

	"nova/internal/geometry"
)

// Store holds render objects grouped by the shader that draws them
type Store struct {
	device geometry.Device
	groups map[string][]geometry.RenderObject
	logger *slog.Logger
}

// NewStore creates an empty store whose meshes are created through device
func NewStore(device geometry.Device, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		device: device,
		groups: make(map[string][]geometry.RenderObject),
		logger: logger,
	}
}

// GroupFor returns the objects drawn by shader, in insertion order.
// The slice is a view; callers must not modify it. Later removals replace
// the group rather than rewriting the returned slice.
func (s *Store) GroupFor(shader string) []geometry.RenderObject {
	return s.groups[shader]
}

// Add appends obj to the shader's group. The store takes ownership of obj.Mesh.
func (s *Store) Add(shader string, obj geometry.RenderObject) {
	s.groups[shader] = append(s.groups[shader], obj)
}

// materialize creates the GPU mesh for rec and adds it to the shader group
func (s *Store) materialize(shader string, rec *geometry.Record) {
	obj, err := geometry.NewRenderObject(s.device, rec)
	if err != nil {
		// No degraded mode exists for GPU exhaustion here.
		s.logger.Error("could not create mesh", "shader", shader, "owner", rec.OwnerID, "err", err)
		panic("meshstore: mesh allocation failed for shader " + shader + ": " + err.Error())
	}
	s.Add(shader, obj)
}

// RemoveIf removes every object matching pred from every group, keeping the
// order of the survivors. Removed meshes are released. Returns the number removed.
func (s *Store) RemoveIf(pred func(obj *geometry.RenderObject) bool) int {
	removed := 0
	for shader, group := range s.groups {
		// survivors go to a new slice so views from GroupFor stay intact
		var kept []geometry.RenderObject
		dropped := 0
		for i := range group {
			obj := &group[i]
			if pred(obj) {
				if obj.Mesh != nil {
					obj.Mesh.Release()
				}
				if kept == nil {
					kept = make([]geometry.RenderObject, i, len(group)-1)
					copy(kept, group[:i])
				}
				dropped++
				continue
			}
			if kept != nil {
				kept = append(kept, *obj)
			}
		}
		if dropped == 0 {
			continue
		}
		removed += dropped
		if len(kept) == 0 {
			delete(s.groups, shader)
			continue
		}
		s.groups[shader] = kept
	}
	return removed
}

// RemoveGUIObjects drops all GUI geometry, which the UI rebuilds every frame
func (s *Store) RemoveGUIObjects() int {
	return s.RemoveIf(func(obj *geometry.RenderObject) bool {
		return obj.Type == geometry.TypeGUI
	})
}

// RemoveObjectsOwnedBy drops all objects whose owner is id, e.g. when a chunk unloads
func (s *Store) RemoveObjectsOwnedBy(id int64) int {
	return s.RemoveIf(func(obj *geometry.RenderObject) bool {
		return obj.OwnedBy(id)
	})
}

// Shaders returns the names of all non-empty groups, sorted
func (s *Store) Shaders() []string {
	names := make([]string, 0, len(s.groups))
	for name := range s.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the total number of objects across all groups
func (s *Store) Count() int {
	n := 0
	for _, g := range s.groups {
		n += len(g)
	}
	return n
}

// Close releases every mesh and empties the store
func (s *Store) Close() {
	s.RemoveIf(func(*geometry.RenderObject) bool { return true })
}

package headless

import (
	"sync/atomic"

	"nova/internal/geometry"

	"github.com/pkg/errors"
)

// ErrOutOfMemory is a convenience error for Fail hooks
var ErrOutOfMemory = errors.New("headless: out of memory")

// Device creates meshes without a graphics context. Meshes only remember
// their sizes and count draws, which is enough to run the frame loop in tests.
type Device struct {
	created  atomic.Int64
	released atomic.Int64

	// Fail, when set, is consulted before each allocation.
	Fail func(rec *geometry.Record) error
}

// New returns an empty headless device
func New() *Device {
	return &Device{}
}

func (d *Device) CreateMesh(rec *geometry.Record) (geometry.Mesh, error) {
	if d.Fail != nil {
		if err := d.Fail(rec); err != nil {
			return nil, err
		}
	}
	d.created.Add(1)
	return &Mesh{
		device:     d,
		format:     rec.Format,
		indexCount: len(rec.Indices),
		Vertices:   rec.VertexCount(),
	}, nil
}

// Live returns the number of meshes created and not yet released
func (d *Device) Live() int64 {
	return d.created.Load() - d.released.Load()
}

// Created returns the total number of meshes ever created
func (d *Device) Created() int64 {
	return d.created.Load()
}

// Mesh is the mesh type handed out by Device
type Mesh struct {
	device     *Device
	format     geometry.VertexFormat
	indexCount int
	released   bool

	Vertices int
	Draws    int
}

func (m *Mesh) Format() geometry.VertexFormat { return m.format }

func (m *Mesh) HasData() bool { return m.indexCount > 0 }

func (m *Mesh) Draw() { m.Draws++ }

// Released reports whether Release has been called
func (m *Mesh) Released() bool { return m.released }

func (m *Mesh) Release() {
	if m.released {
		return
	}
	m.released = true
	m.device.released.Add(1)
}

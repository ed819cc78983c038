package gpu

import (
	"unsafe"

	"nova/internal/geometry"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

var errOutOfMemory = errors.New("gpu: GL_OUT_OF_MEMORY while uploading mesh")

// GLDevice creates meshes backed by OpenGL vertex arrays. gl.Init must have
// been called on the current thread before use.
type GLDevice struct {
	usage uint32
}

// NewGLDevice returns a device that uploads with GL_STATIC_DRAW
func NewGLDevice() *GLDevice {
	return &GLDevice{usage: gl.STATIC_DRAW}
}

// NewDynamicGLDevice returns a device for geometry rebuilt every frame, like GUI quads
func NewDynamicGLDevice() *GLDevice {
	return &GLDevice{usage: gl.DYNAMIC_DRAW}
}

// CreateMesh uploads rec into a fresh VAO/VBO/EBO triple
func (d *GLDevice) CreateMesh(rec *geometry.Record) (geometry.Mesh, error) {
	m := &glMesh{format: rec.Format}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)
	gl.GenBuffers(1, &m.vbo)
	gl.GenBuffers(1, &m.ebo)

	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(rec.Vertices)*4, ptr(rec.Vertices), d.usage)
	enableVertexAttributes(rec.Format)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(rec.Indices)*4, ptr(rec.Indices), d.usage)
	m.indexCount = int32(len(rec.Indices))

	gl.BindVertexArray(0)

	if code := gl.GetError(); code == gl.OUT_OF_MEMORY {
		m.Release()
		return nil, errOutOfMemory
	}
	return m, nil
}

func ptr[T float32 | uint32](data []T) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(data)
}

// enableVertexAttributes binds attribute locations for the active VBO
func enableVertexAttributes(format geometry.VertexFormat) {
	stride := format.Stride()
	for _, a := range format.Attributes() {
		gl.EnableVertexAttribArray(a.Location)
		gl.VertexAttribPointerWithOffset(a.Location, a.Components, glType(a.Type), false, stride, uintptr(a.Offset))
	}
}

func glType(t geometry.AttribType) uint32 {
	switch t {
	case geometry.AttribUnsignedByte:
		return gl.UNSIGNED_BYTE
	case geometry.AttribShort:
		return gl.SHORT
	default:
		return gl.FLOAT
	}
}

type glMesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
	format        geometry.VertexFormat
}

func (m *glMesh) Format() geometry.VertexFormat { return m.format }

func (m *glMesh) HasData() bool { return m.indexCount > 0 }

func (m *glMesh) Draw() {
	gl.BindVertexArray(m.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, 0)
}

// Release frees the GL objects. When the context is already gone (window
// torn down first) the names are just forgotten.
func (m *glMesh) Release() {
	live := glfw.GetCurrentContext() != nil
	if m.vbo != 0 {
		if live {
			gl.DeleteBuffers(1, &m.vbo)
		}
		m.vbo = 0
	}
	if m.ebo != 0 {
		if live {
			gl.DeleteBuffers(1, &m.ebo)
		}
		m.ebo = 0
	}
	if m.vao != 0 {
		if live {
			gl.DeleteVertexArrays(1, &m.vao)
		}
		m.vao = 0
	}
	m.indexCount = 0
}

package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ObjectType tags what produced a RenderObject
type ObjectType uint8

const (
	TypeChunk ObjectType = iota
	TypeGUI
	TypeOther
)

func (t ObjectType) String() string {
	switch t {
	case TypeChunk:
		return "chunk"
	case TypeGUI:
		return "gui"
	default:
		return "other"
	}
}

// Mesh is a GPU-resident geometry handle. It must only be used, and
// released, on the thread that owns the graphics context.
type Mesh interface {
	Format() VertexFormat
	HasData() bool
	Draw()
	Release()
}

// Device creates meshes. Implementations are context-affine.
type Device interface {
	CreateMesh(rec *Record) (Mesh, error)
}

// RenderObject is the render-thread counterpart of a Record
type RenderObject struct {
	Mesh Mesh
	Type ObjectType

	OwnerID  int64
	HasOwner bool

	Position mgl32.Vec3
	Name     string

	// Texture names, empty when unused
	ColorTexture string
	NormalMap    string
	DataTexture  string
}

// OwnedBy reports whether the object has an owner equal to id
func (o *RenderObject) OwnedBy(id int64) bool {
	return o.HasOwner && o.OwnerID == id
}

// NewRenderObject materialises rec through dev
func NewRenderObject(dev Device, rec *Record) (RenderObject, error) {
	mesh, err := dev.CreateMesh(rec)
	if err != nil {
		return RenderObject{}, err
	}
	obj := RenderObject{
		Mesh:         mesh,
		Type:         rec.Type,
		OwnerID:      rec.OwnerID,
		HasOwner:     !rec.NoOwner,
		Position:     rec.Position,
		Name:         rec.Name,
		ColorTexture: rec.ColorTexture,
	}
	if rec.Type == TypeChunk {
		if obj.Name == "" {
			obj.Name = ChunkPartName
		}
		if obj.ColorTexture == "" {
			obj.ColorTexture = BlockColorTexture
		}
	}
	if obj.Name == "" {
		obj.Name = rec.Type.String()
	}
	return obj, nil
}

const (
	ChunkPartName     = "chunk_part"
	BlockColorTexture = "block_color"
)

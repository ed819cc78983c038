package geometry

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// VertexFormat describes how the floats of a vertex payload are laid out
type VertexFormat int

const (
	FormatPos VertexFormat = iota
	FormatPosUV
	FormatPosUVColor
	FormatPosColorUVLightmapUVNormalTangent
)

var formatNames = [...]string{
	FormatPos:                               "POS",
	FormatPosUV:                             "POS_UV",
	FormatPosUVColor:                        "POS_UV_COLOR",
	FormatPosColorUVLightmapUVNormalTangent: "POS_COLOR_UV_LIGHTMAPUV_NORMAL_TANGENT",
}

// floats per vertex for each format
var formatWidths = [...]int{
	FormatPos:                               3,
	FormatPosUV:                             5,
	FormatPosUVColor:                        9,
	FormatPosColorUVLightmapUVNormalTangent: 13,
}

// FormatFromIndex converts a raw format index, as sent by a producer, into a VertexFormat
func FormatFromIndex(i int) (VertexFormat, error) {
	if i < 0 || i >= len(formatNames) {
		return 0, errors.Errorf("unknown vertex format index %d", i)
	}
	return VertexFormat(i), nil
}

func (f VertexFormat) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("VertexFormat(%d)", int(f))
	}
	return formatNames[f]
}

// Floats returns the number of 32-bit slots in one vertex
func (f VertexFormat) Floats() int {
	if f < 0 || int(f) >= len(formatWidths) {
		return 0
	}
	return formatWidths[f]
}

// Stride returns the size of one vertex in bytes
func (f VertexFormat) Stride() int32 {
	return int32(f.Floats() * 4)
}

// Record is CPU-side mesh data produced by any goroutine and waiting to be
// turned into a RenderObject on the render thread.
type Record struct {
	Vertices []float32
	Indices  []uint32
	Format   VertexFormat

	// OwnerID groups records for bulk removal, e.g. all parts of one chunk.
	// Every record is owned unless NoOwner is set, as it is for GUI geometry.
	OwnerID int64
	NoOwner bool

	Position mgl32.Vec3
	Type     ObjectType

	Name         string
	ColorTexture string
}

// VertexCount returns the number of whole vertices in the payload
func (r *Record) VertexCount() int {
	n := r.Format.Floats()
	if n == 0 {
		return 0
	}
	return len(r.Vertices) / n
}

// AttribType is the component type of a vertex attribute
type AttribType int

const (
	AttribFloat AttribType = iota
	AttribUnsignedByte
	AttribShort
)

// Size returns the size of one component in bytes
func (t AttribType) Size() int {
	switch t {
	case AttribUnsignedByte:
		return 1
	case AttribShort:
		return 2
	default:
		return 4
	}
}

// Attribute is one vertex attribute inside a format's stride
type Attribute struct {
	Location   uint32
	Components int32
	Type       AttribType
	Offset     int // bytes from the start of the vertex
}

// End returns the byte just past the attribute
func (a Attribute) End() int {
	return a.Offset + int(a.Components)*a.Type.Size()
}

var formatAttributes = [...][]Attribute{
	FormatPos: {
		{Location: 0, Components: 3, Type: AttribFloat, Offset: 0},
	},
	FormatPosUV: {
		{Location: 0, Components: 3, Type: AttribFloat, Offset: 0},
		{Location: 1, Components: 2, Type: AttribFloat, Offset: 12},
	},
	FormatPosUVColor: {
		{Location: 0, Components: 3, Type: AttribFloat, Offset: 0},
		{Location: 1, Components: 2, Type: AttribFloat, Offset: 12},
		{Location: 2, Components: 4, Type: AttribFloat, Offset: 20},
	},
	// position, packed RGBA color, uv, lightmap uv as two shorts, normal, tangent
	FormatPosColorUVLightmapUVNormalTangent: {
		{Location: 0, Components: 3, Type: AttribFloat, Offset: 0},
		{Location: 5, Components: 4, Type: AttribUnsignedByte, Offset: 12},
		{Location: 1, Components: 2, Type: AttribFloat, Offset: 16},
		{Location: 2, Components: 2, Type: AttribShort, Offset: 24},
		{Location: 3, Components: 3, Type: AttribFloat, Offset: 28},
		{Location: 4, Components: 3, Type: AttribFloat, Offset: 40},
	},
}

// Attributes returns the attribute layout of one vertex. Position is always location 0.
func (f VertexFormat) Attributes() []Attribute {
	if f < 0 || int(f) >= len(formatAttributes) {
		return nil
	}
	return formatAttributes[f]
}

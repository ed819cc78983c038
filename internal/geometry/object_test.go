package geometry

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubMesh struct{ format VertexFormat }

func (m *stubMesh) Format() VertexFormat { return m.format }
func (m *stubMesh) HasData() bool        { return true }
func (m *stubMesh) Draw()                {}
func (m *stubMesh) Release()             {}

type stubDevice struct{ err error }

func (d stubDevice) CreateMesh(rec *Record) (Mesh, error) {
	if d.err != nil {
		return nil, d.err
	}
	return &stubMesh{format: rec.Format}, nil
}

func TestFormatWidths(t *testing.T) {
	assert.Equal(t, int32(12), FormatPos.Stride())
	assert.Equal(t, int32(20), FormatPosUV.Stride())
	assert.Equal(t, int32(36), FormatPosUVColor.Stride())
	assert.Equal(t, int32(52), FormatPosColorUVLightmapUVNormalTangent.Stride())
	assert.Equal(t, 0, VertexFormat(42).Floats())
	assert.Equal(t, "VertexFormat(42)", VertexFormat(42).String())
}

func TestAttributesFitInsideStride(t *testing.T) {
	for _, f := range []VertexFormat{FormatPos, FormatPosUV, FormatPosUVColor, FormatPosColorUVLightmapUVNormalTangent} {
		attrs := f.Attributes()
		require.NotEmpty(t, attrs, f.String())
		assert.Equal(t, uint32(0), attrs[0].Location, "%s position location", f)

		locations := make(map[uint32]bool)
		end := 0
		for _, a := range attrs {
			assert.False(t, locations[a.Location], "%s reuses location %d", f, a.Location)
			locations[a.Location] = true
			assert.GreaterOrEqual(t, a.Offset, end, "%s location %d overlaps the previous attribute", f, a.Location)
			end = a.End()
		}
		assert.Equal(t, int(f.Stride()), end, "%s attributes must fill the stride exactly", f)
	}
}

func TestPackedFormatLayout(t *testing.T) {
	attrs := FormatPosColorUVLightmapUVNormalTangent.Attributes()
	require.Len(t, attrs, 6)
	normal, tangent := attrs[4], attrs[5]
	assert.Equal(t, 28, normal.Offset)
	assert.Equal(t, 40, tangent.Offset)
	assert.Equal(t, 52, tangent.End())
	assert.Nil(t, VertexFormat(99).Attributes())
}

func TestFormatFromIndex(t *testing.T) {
	f, err := FormatFromIndex(2)
	require.NoError(t, err)
	assert.Equal(t, FormatPosUVColor, f)

	_, err = FormatFromIndex(4)
	assert.EqualError(t, err, "unknown vertex format index 4")
	// errors carry the stack of where they were made
	assert.Contains(t, fmt.Sprintf("%+v", err), "FormatFromIndex")
	_, err = FormatFromIndex(-1)
	assert.Error(t, err)
}

func TestVertexCountDropsPartialVertex(t *testing.T) {
	rec := Record{Vertices: make([]float32, 11), Format: FormatPosUV}
	assert.Equal(t, 2, rec.VertexCount())
}

func TestNewRenderObjectChunkDefaults(t *testing.T) {
	rec := &Record{
		Format:   FormatPosUV,
		OwnerID:  7,
		Position: mgl32.Vec3{16, 0, 32},
	}
	obj, err := NewRenderObject(stubDevice{}, rec)
	require.NoError(t, err)
	assert.Equal(t, TypeChunk, obj.Type)
	assert.Equal(t, ChunkPartName, obj.Name)
	assert.Equal(t, BlockColorTexture, obj.ColorTexture)
	assert.Equal(t, mgl32.Vec3{16, 0, 32}, obj.Position)
	assert.True(t, obj.OwnedBy(7))
	assert.False(t, obj.OwnedBy(8))
}

func TestNewRenderObjectWithoutOwner(t *testing.T) {
	obj, err := NewRenderObject(stubDevice{}, &Record{Type: TypeGUI, NoOwner: true, ColorTexture: "gui_atlas"})
	require.NoError(t, err)
	assert.Equal(t, "gui", obj.Name)
	assert.Equal(t, "gui_atlas", obj.ColorTexture)
	assert.False(t, obj.OwnedBy(0))
}

func TestNewRenderObjectDeviceError(t *testing.T) {
	_, err := NewRenderObject(stubDevice{err: errors.New("out of memory")}, &Record{})
	assert.EqualError(t, err, "out of memory")
}

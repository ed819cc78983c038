package meshstore

import (
	"strings"

	"nova/internal/geometry"

	"github.com/go-gl/mathgl/mgl32"
)

// GUIShader is the shader group all GUI geometry is drawn with
const GUIShader = "gui"

// TextureLocation is a sub-rectangle of an atlas in normalised UV space
type TextureLocation struct {
	Min, Max mgl32.Vec2
}

// TextureLocator resolves a texture name to its place in the atlas
type TextureLocator interface {
	TextureLocation(name string) (TextureLocation, bool)
}

// GUIBufferCommand is one screen's worth of GUI quads as sent by the UI.
// Vertices are POS_UV_COLOR with UVs relative to the named texture.
type GUIBufferCommand struct {
	TextureName string
	AtlasName   string
	Vertices    []float32
	Indices     []uint32
}

// NormalizeTextureName turns "textures/gui/widgets.png" into "minecraft:gui/widgets"
func NormalizeTextureName(name string) string {
	name = strings.TrimPrefix(name, "textures/")
	name = strings.TrimSuffix(name, ".png")
	return "minecraft:" + name
}

// AddGUIBuffers remaps the command's UVs into the atlas and queues the result
// for the GUI group. The mesh itself is still created by the next drain.
func (q *UploadQueue) AddGUIBuffers(cmd GUIBufferCommand, textures TextureLocator) {
	q.Push(GUIShader, BuildGUIRecord(cmd, textures))
}

// BuildGUIRecord converts cmd into a record with atlas-space UVs.
// A trailing partial vertex is dropped.
func BuildGUIRecord(cmd GUIBufferCommand, textures TextureLocator) geometry.Record {
	loc := TextureLocation{Max: mgl32.Vec2{1, 1}}
	if textures != nil {
		if found, ok := textures.TextureLocation(NormalizeTextureName(cmd.TextureName)); ok {
			loc = found
		}
	}
	size := loc.Max.Sub(loc.Min)

	stride := geometry.FormatPosUVColor.Floats()
	whole := len(cmd.Vertices) / stride * stride
	verts := make([]float32, whole)
	copy(verts, cmd.Vertices[:whole])
	for i := 0; i < whole; i += stride {
		verts[i+3] = verts[i+3]*size.X() + loc.Min.X()
		verts[i+4] = verts[i+4]*size.Y() + loc.Min.Y()
	}

	indices := make([]uint32, len(cmd.Indices))
	copy(indices, cmd.Indices)

	return geometry.Record{
		Vertices:     verts,
		Indices:      indices,
		Format:       geometry.FormatPosUVColor,
		Type:         geometry.TypeGUI,
		NoOwner:      true,
		Name:         GUIShader,
		ColorTexture: cmd.AtlasName,
	}
}

package engine

import (
	"log/slog"
	"sync"

	"nova/internal/geometry"
	"nova/internal/rendergraph"

	"github.com/go-gl/mathgl/mgl32"
)

// Texture slots used for every drawn object
const (
	ColorSlot    uint32 = 0
	NormalSlot   uint32 = 1
	DataSlot     uint32 = 2
	LightmapSlot uint32 = 3

	LightmapTexture = "lightmap"
	ModelUniform    = "gbufferModel"
)

// TextureManager binds named textures to texture units
type TextureManager interface {
	Bind(name string, slot uint32) error
}

// UniformUploader sets uniforms on the active program
type UniformUploader interface {
	SetMatrix4(name string, value *float32)
}

// ProgramSource activates the program for a shader and returns its uniforms
type ProgramSource interface {
	Program(shader string) (UniformUploader, error)
}

// DrawExecutor is the default PassExecutor: it binds the pass program and
// textures, then draws each object that has data with its model matrix.
type DrawExecutor struct {
	textures TextureManager
	programs ProgramSource
	logger   *slog.Logger

	mu                    sync.Mutex
	viewWidth, viewHeight float32
	scaleFactor           float32
}

// NewDrawExecutor returns an executor with a 900x600 GUI view at scale 2
func NewDrawExecutor(textures TextureManager, programs ProgramSource, logger *slog.Logger) *DrawExecutor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DrawExecutor{
		textures:    textures,
		programs:    programs,
		logger:      logger,
		viewWidth:   900,
		viewHeight:  600,
		scaleFactor: 2,
	}
}

// SetGUIView sets the view size and scale factor used for GUI objects.
// Goroutine-safe.
func (d *DrawExecutor) SetGUIView(width, height, scaleFactor float32) {
	d.mu.Lock()
	d.viewWidth, d.viewHeight, d.scaleFactor = width, height, scaleFactor
	d.mu.Unlock()
}

func (d *DrawExecutor) guiMatrix() mgl32.Mat4 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return GUIMatrix(d.viewWidth, d.viewHeight, d.scaleFactor)
}

// GUIMatrix maps GUI pixel coordinates, origin top left, to clip space
func GUIMatrix(viewWidth, viewHeight, scaleFactor float32) mgl32.Mat4 {
	return mgl32.Translate3D(-1, 1, 0).
		Mul4(mgl32.Scale3D(scaleFactor, scaleFactor, 1)).
		Mul4(mgl32.Scale3D(1/viewWidth, 1/viewHeight, 1)).
		Mul4(mgl32.Scale3D(1, -1, 1))
}

// ModelMatrix returns the model matrix uploaded for obj
func ModelMatrix(obj *geometry.RenderObject) mgl32.Mat4 {
	return mgl32.Translate3D(obj.Position.X(), obj.Position.Y(), obj.Position.Z())
}

// ExecutePass draws objects with the program of the pass's shader
func (d *DrawExecutor) ExecutePass(pass *rendergraph.RenderPass, objects []geometry.RenderObject) {
	uniforms, err := d.programs.Program(pass.ShaderName())
	if err != nil {
		d.logger.Error("could not use program, skipping pass", "pass", pass.Name, "shader", pass.ShaderName(), "err", err)
		return
	}
	for _, tb := range pass.Textures {
		d.bind(pass, tb.Name, tb.Binding)
	}

	var gui mgl32.Mat4
	haveGUI := false
	for i := range objects {
		obj := &objects[i]
		if obj.Mesh == nil || !obj.Mesh.HasData() {
			d.logger.Debug("skipping geometry without data", "pass", pass.Name, "object", obj.Name)
			continue
		}

		if obj.ColorTexture != "" {
			d.bind(pass, obj.ColorTexture, ColorSlot)
		}
		if obj.NormalMap != "" {
			d.bind(pass, obj.NormalMap, NormalSlot)
		}
		if obj.DataTexture != "" {
			d.bind(pass, obj.DataTexture, DataSlot)
		}
		d.bind(pass, LightmapTexture, LightmapSlot)

		var model mgl32.Mat4
		if obj.Type == geometry.TypeGUI {
			if !haveGUI {
				gui, haveGUI = d.guiMatrix(), true
			}
			model = gui
		} else {
			model = ModelMatrix(obj)
		}
		uniforms.SetMatrix4(ModelUniform, &model[0])

		obj.Mesh.Draw()
	}
}

func (d *DrawExecutor) bind(pass *rendergraph.RenderPass, name string, slot uint32) {
	if d.textures == nil {
		return
	}
	if err := d.textures.Bind(name, slot); err != nil {
		d.logger.Warn("could not bind texture", "pass", pass.Name, "texture", name, "slot", slot, "err", err)
	}
}

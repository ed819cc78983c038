// Package window owns the glfw window the frame loop presents to.
package window

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
)

// GLFW is an OpenGL 4.1 core window. It must be created and used on the
// thread that called glfw.Init.
type GLFW struct {
	*glfw.Window

	width, height int
}

// New opens a window and makes its context current. glfw.Init must have
// been called.
func New(title string, width, height int, vsync bool) (*GLFW, error) {
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create window")
	}
	win.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		win.Destroy()
		return nil, errors.Wrap(err, "init gl")
	}

	if vsync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	w := &GLFW{Window: win, width: width, height: height}
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, fbWidth, fbHeight int) {
		gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
	})
	win.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width, w.height = width, height
	})
	win.SetKeyCallback(func(win *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
		}
	})
	return w, nil
}

// Size returns the window size in screen coordinates
func (w *GLFW) Size() (int, int) {
	return w.width, w.height
}

// EndFrame presents the back buffer and pumps events
func (w *GLFW) EndFrame() {
	w.SwapBuffers()
	glfw.PollEvents()
}

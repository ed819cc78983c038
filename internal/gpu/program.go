package gpu

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pkg/errors"
)

// Program is a linked OpenGL shader program
type Program struct {
	ID uint32
}

// NewProgram compiles and links a program from vertex and fragment source files
func NewProgram(vertexPath, fragmentPath string) (*Program, error) {
	vertexSource, err := os.ReadFile(vertexPath)
	if err != nil {
		return nil, errors.Wrap(err, "read vertex shader")
	}
	fragmentSource, err := os.ReadFile(fragmentPath)
	if err != nil {
		return nil, errors.Wrap(err, "read fragment shader")
	}

	id, err := compileProgram(string(vertexSource), string(fragmentSource))
	if err != nil {
		return nil, errors.Wrapf(err, "%s + %s", vertexPath, fragmentPath)
	}
	return &Program{ID: id}, nil
}

// Use activates the program
func (p *Program) Use() {
	gl.UseProgram(p.ID)
}

// SetInt sets an integer uniform
func (p *Program) SetInt(name string, value int32) {
	gl.Uniform1i(p.location(name), value)
}

// SetMatrix4 sets a 4x4 matrix uniform
func (p *Program) SetMatrix4(name string, value *float32) {
	gl.UniformMatrix4fv(p.location(name), 1, false, value)
}

func (p *Program) location(name string) int32 {
	return gl.GetUniformLocation(p.ID, gl.Str(name+"\x00"))
}

// Delete frees the program
func (p *Program) Delete() {
	gl.DeleteProgram(p.ID)
	p.ID = 0
}

// Programs loads one program per shader name from a shaderpack directory:
// <dir>/<shader>.vsh and <dir>/<shader>.fsh. Programs are linked on first use.
type Programs struct {
	dir string

	mu    sync.Mutex
	cache map[string]*Program
}

// NewPrograms returns a program cache rooted at dir
func NewPrograms(dir string) *Programs {
	return &Programs{dir: dir, cache: make(map[string]*Program)}
}

// Program activates and returns the program for shader
func (ps *Programs) Program(shader string) (*Program, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	p, ok := ps.cache[shader]
	if !ok {
		var err error
		base := filepath.Join(ps.dir, shader)
		p, err = NewProgram(base+".vsh", base+".fsh")
		if err != nil {
			return nil, errors.Wrapf(err, "shader %s", shader)
		}
		ps.cache[shader] = p
	}
	p.Use()
	return p, nil
}

// Close deletes every linked program
func (ps *Programs) Close() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	for name, p := range ps.cache {
		p.Delete()
		delete(ps.cache, name)
	}
}

func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		return 0, errors.Errorf("link program: %s", strings.TrimRight(log, "\x00"))
	}
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		return 0, errors.Errorf("compile shader: %s", strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

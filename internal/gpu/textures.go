package gpu

import (
	"image"
	"image/draw"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pkg/errors"
)

// Textures resolves texture names to GL textures, loading PNGs from dir on
// first use. "minecraft:blocks/stone" maps to <dir>/minecraft/blocks/stone.png.
type Textures struct {
	dir string

	mu    sync.RWMutex
	cache map[string]uint32
}

// NewTextures returns a texture cache rooted at dir
func NewTextures(dir string) *Textures {
	return &Textures{dir: dir, cache: make(map[string]uint32)}
}

// Register makes an already uploaded texture available under name, for
// render targets created by the caller
func (t *Textures) Register(name string, id uint32) {
	t.mu.Lock()
	t.cache[name] = id
	t.mu.Unlock()
}

// Bind binds the named texture to the given texture unit
func (t *Textures) Bind(name string, slot uint32) error {
	tex, err := t.get(name)
	if err != nil {
		return err
	}
	gl.ActiveTexture(gl.TEXTURE0 + slot)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	return nil
}

func (t *Textures) get(name string) (uint32, error) {
	t.mu.RLock()
	if tex, ok := t.cache[name]; ok {
		t.mu.RUnlock()
		return tex, nil
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()

	// Double check locking
	if tex, ok := t.cache[name]; ok {
		return tex, nil
	}

	tex, _, _, err := LoadTexture(t.path(name))
	if err != nil {
		return 0, errors.Wrapf(err, "texture %s", name)
	}
	t.cache[name] = tex
	return tex, nil
}

func (t *Textures) path(name string) string {
	return filepath.Join(t.dir, filepath.FromSlash(strings.ReplaceAll(name, ":", "/"))+".png")
}

// Close deletes every cached texture
func (t *Textures) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for name, tex := range t.cache {
		gl.DeleteTextures(1, &tex)
		delete(t.cache, name)
	}
}

// LoadTexture loads a 2D texture from a file
func LoadTexture(path string) (uint32, int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, 0, errors.Wrap(err, "open texture file")
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return 0, 0, 0, errors.Wrapf(err, "decode %s", path)
	}

	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)

	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		gl.RGBA,
		int32(rgba.Rect.Size().X),
		int32(rgba.Rect.Size().Y),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(rgba.Pix),
	)

	gl.BindTexture(gl.TEXTURE_2D, 0)

	return texture, rgba.Rect.Size().X, rgba.Rect.Size().Y, nil
}

// Package rendergraph orders render passes so that every pass runs after the
// passes it depends on, either explicitly or through the resources it reads.
package rendergraph

import "cogentcore.org/core/ordmap"

// TextureBinding binds a named texture to a sampler slot before a pass draws
type TextureBinding struct {
	Name    string `yaml:"name"`
	Binding uint32 `yaml:"binding"`
}

// RenderPass is one stage of the frame. Passes are immutable once a
// shaderpack is loaded; a reload builds a new set.
type RenderPass struct {
	Name string `yaml:"name"`

	// Shader names the geometry group drawn by this pass. Empty means Name.
	Shader string `yaml:"shader"`

	// Dependencies lists passes that must run before this one.
	Dependencies []string `yaml:"dependencies"`

	// Reads and Writes declare resources (render targets, buffers). A pass
	// reading a resource runs after every other pass writing it.
	Reads  []string `yaml:"reads"`
	Writes []string `yaml:"writes"`

	Textures []TextureBinding `yaml:"textures"`
}

// ShaderName returns the geometry group this pass draws
func (p *RenderPass) ShaderName() string {
	if p.Shader != "" {
		return p.Shader
	}
	return p.Name
}

// Passes is a name → pass mapping that remembers declaration order
type Passes = ordmap.Map[string, RenderPass]

// NewPasses builds a Passes from passes in the given order, keyed by Name
func NewPasses(passes ...RenderPass) *Passes {
	m := ordmap.New[string, RenderPass]()
	for _, p := range passes {
		m.Add(p.Name, p)
	}
	return m
}

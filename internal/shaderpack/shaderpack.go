// Package shaderpack reads the render pass declarations of a shaderpack.
package shaderpack

import (
	"bytes"
	"os"
	"path/filepath"

	"nova/internal/rendergraph"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// PassesFile is the file inside a shaderpack directory declaring its passes
const PassesFile = "passes.yaml"

type passesDoc struct {
	Passes []rendergraph.RenderPass `yaml:"passes"`
}

// Parse decodes a pass list, keeping the order passes are declared in
func Parse(data []byte) (*rendergraph.Passes, error) {
	var doc passesDoc
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode passes")
	}

	passes := rendergraph.NewPasses()
	for i, p := range doc.Passes {
		if p.Name == "" {
			return nil, errors.Errorf("pass #%d has no name", i)
		}
		if _, dup := passes.IndexByKeyTry(p.Name); dup {
			return nil, errors.Errorf("pass %q is declared twice", p.Name)
		}
		passes.Add(p.Name, p)
	}
	return passes, nil
}

// Load reads <dir>/<name>/passes.yaml
func Load(dir, name string) (*rendergraph.Passes, error) {
	path := filepath.Join(dir, name, PassesFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "shaderpack %s", name)
	}
	passes, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "shaderpack %s (%s)", name, path)
	}
	return passes, nil
}

// Dir loads shaderpacks from one directory
type Dir string

// LoadPasses loads the named shaderpack from d
func (d Dir) LoadPasses(name string) (*rendergraph.Passes, error) {
	return Load(string(d), name)
}

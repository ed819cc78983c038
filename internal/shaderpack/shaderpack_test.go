package shaderpack

import (
	"os"
	"path/filepath"
	"testing"

	"nova/internal/rendergraph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePack = `
passes:
  - name: composite
    reads: [gbuffer_color, shadow_map]
    writes: [scene]
  - name: gbuffers_terrain
    shader: terrain
    writes: [gbuffer_color]
    textures:
      - {name: block_color, binding: 0}
      - {name: lightmap, binding: 3}
  - name: shadow
    writes: [shadow_map]
  - name: final
    dependencies: [composite]
`

func TestParseKeepsDeclarationOrder(t *testing.T) {
	passes, err := Parse([]byte(samplePack))
	require.NoError(t, err)
	assert.Equal(t, []string{"composite", "gbuffers_terrain", "shadow", "final"}, passes.Keys())

	terrain := passes.ValueByKey("gbuffers_terrain")
	assert.Equal(t, "terrain", terrain.ShaderName())
	assert.Equal(t, []rendergraph.TextureBinding{{Name: "block_color", Binding: 0}, {Name: "lightmap", Binding: 3}}, terrain.Textures)

	order, err := rendergraph.Compile(passes)
	require.NoError(t, err)
	assert.Equal(t, []string{"gbuffers_terrain", "shadow", "composite", "final"}, order)
}

func TestParseRejectsDuplicates(t *testing.T) {
	_, err := Parse([]byte("passes:\n  - name: a\n  - name: a\n"))
	assert.ErrorContains(t, err, `pass "a" is declared twice`)
}

func TestParseRejectsUnnamedPass(t *testing.T) {
	_, err := Parse([]byte("passes:\n  - shader: x\n"))
	assert.ErrorContains(t, err, "pass #0 has no name")
}

func TestParseRejectsUnknownField(t *testing.T) {
	_, err := Parse([]byte("passes:\n  - name: a\n    depends: [b]\n"))
	assert.ErrorContains(t, err, "decode passes")
}

func TestLoadFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "BSL"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "BSL", PassesFile), []byte(samplePack), 0o644))

	passes, err := Dir(dir).LoadPasses("BSL")
	require.NoError(t, err)
	assert.Equal(t, 4, passes.Len())

	_, err = Dir(dir).LoadPasses("missing")
	assert.ErrorContains(t, err, "shaderpack missing")
}

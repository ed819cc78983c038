package rendergraph

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pass(name string, deps ...string) RenderPass {
	return RenderPass{Name: name, Dependencies: deps}
}

// assertValidOrder checks that order is a permutation of passes honouring every edge
func assertValidOrder(t *testing.T, passes *Passes, order []string) {
	t.Helper()
	require.Len(t, order, passes.Len())
	pos := make(map[string]int, len(order))
	for i, name := range order {
		_, dup := pos[name]
		require.False(t, dup, "pass %q appears twice", name)
		pos[name] = i
	}
	for _, kv := range passes.Order {
		_, ok := pos[kv.Key]
		require.True(t, ok, "pass %q missing from order", kv.Key)
		for _, dep := range kv.Value.Dependencies {
			assert.Less(t, pos[dep], pos[kv.Key], "%s must run before %s", dep, kv.Key)
		}
		for _, res := range kv.Value.Reads {
			for _, other := range passes.Order {
				if other.Key == kv.Key {
					continue
				}
				for _, w := range other.Value.Writes {
					if w == res {
						assert.Less(t, pos[other.Key], pos[kv.Key], "%s writes %s read by %s", other.Key, res, kv.Key)
					}
				}
			}
		}
	}
}

func TestCompileChain(t *testing.T) {
	passes := NewPasses(pass("A"), pass("B", "A"), pass("C", "A", "B"))
	order, err := Compile(passes)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, order)
}

func TestCompileDeclarationOrderIsIndependentOfDependencyDeclaration(t *testing.T) {
	passes := NewPasses(pass("C", "A", "B"), pass("B", "A"), pass("A"))
	order, err := Compile(passes)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, order)
}

func TestCompileTieBreakUsesDeclarationOrder(t *testing.T) {
	passes := NewPasses(pass("shadow"), pass("sky"), pass("terrain"), pass("gui"))
	order, err := Compile(passes)
	require.NoError(t, err)
	assert.Equal(t, []string{"shadow", "sky", "terrain", "gui"}, order)

	// a pass unlocked later still yields to an earlier-declared ready pass
	passes = NewPasses(pass("composite", "terrain"), pass("sky"), pass("terrain"), pass("final", "composite"))
	order, err = Compile(passes)
	require.NoError(t, err)
	assert.Equal(t, []string{"sky", "terrain", "composite", "final"}, order)
}

func TestCompileImplicitResourceEdges(t *testing.T) {
	passes := NewPasses(
		RenderPass{Name: "composite", Reads: []string{"gbuffer_color", "shadow_map"}, Writes: []string{"scene"}},
		RenderPass{Name: "final", Reads: []string{"scene"}},
		RenderPass{Name: "gbuffers", Writes: []string{"gbuffer_color"}},
		RenderPass{Name: "shadow", Writes: []string{"shadow_map"}},
	)
	order, err := Compile(passes)
	require.NoError(t, err)
	assert.Equal(t, []string{"gbuffers", "shadow", "composite", "final"}, order)
	assertValidOrder(t, passes, order)
}

func TestCompileReadWriteSameResourceIsNotACycle(t *testing.T) {
	passes := NewPasses(
		RenderPass{Name: "blur", Reads: []string{"bloom"}, Writes: []string{"bloom"}},
		RenderPass{Name: "bright", Writes: []string{"bloom"}},
	)
	order, err := Compile(passes)
	require.NoError(t, err)
	assert.Equal(t, []string{"bright", "blur"}, order)
}

func TestCompileImplicitCycle(t *testing.T) {
	passes := NewPasses(
		RenderPass{Name: "a", Reads: []string{"y"}, Writes: []string{"x"}},
		RenderPass{Name: "b", Reads: []string{"x"}, Writes: []string{"y"}},
	)
	_, err := Compile(passes)
	assert.True(t, errors.Is(err, ErrCycleDetected))
}

func TestCompileCycle(t *testing.T) {
	passes := NewPasses(pass("A", "B"), pass("B", "A"))
	order, err := Compile(passes)
	assert.Nil(t, order)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, CycleDetected, verr.Kind)
	assert.Equal(t, []string{"A", "B"}, verr.Unordered)
	assert.True(t, errors.Is(err, ErrCycleDetected))
	assert.False(t, errors.Is(err, ErrMissingDependency))

	again, err2 := Compile(passes)
	assert.Nil(t, again)
	assert.Equal(t, err.Error(), err2.Error())
	assert.Equal(t, []string{"B"}, passes.ValueByKey("A").Dependencies)
}

func TestCompileCycleReportsOnlyUnorderedPasses(t *testing.T) {
	passes := NewPasses(pass("pre"), pass("x", "pre", "z"), pass("y", "x"), pass("z", "y"), pass("post", "z"))
	_, err := Compile(passes)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"x", "y", "z", "post"}, verr.Unordered)
	assert.Contains(t, err.Error(), "cycle detected")
}

func TestCompileSelfDependency(t *testing.T) {
	_, err := Compile(NewPasses(pass("loop", "loop")))
	assert.True(t, errors.Is(err, ErrCycleDetected))
}

func TestCompileMissingDependency(t *testing.T) {
	passes := NewPasses(pass("A"), pass("B", "A", "ghost"))
	order, err := Compile(passes)
	assert.Nil(t, order)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, MissingDependency, verr.Kind)
	assert.Equal(t, "B", verr.Pass)
	assert.Equal(t, "ghost", verr.Dependency)
	assert.True(t, errors.Is(err, ErrMissingDependency))
	assert.Contains(t, err.Error(), `"B"`)
	assert.Contains(t, err.Error(), `"ghost"`)
}

func TestCompileRejectsKeyNameMismatch(t *testing.T) {
	passes := NewPasses(pass("A"))
	passes.Add("shadow", pass("B", "A"))

	order, err := Compile(passes)
	assert.Nil(t, order)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, NameMismatch, verr.Kind)
	assert.Equal(t, "shadow", verr.Pass)
	assert.Equal(t, "B", verr.Name)
	assert.True(t, errors.Is(err, ErrNameMismatch))
	assert.EqualError(t, err, `render graph: pass stored as "shadow" is named "B"`)

	_, err = CompileList(passes)
	assert.True(t, errors.Is(err, ErrNameMismatch))
}

func TestCompileMissingDependencyWinsOverCycle(t *testing.T) {
	_, err := Compile(NewPasses(pass("A", "B"), pass("B", "A", "nope")))
	assert.True(t, errors.Is(err, ErrMissingDependency))
}

func TestCompileEmpty(t *testing.T) {
	order, err := Compile(NewPasses())
	require.NoError(t, err)
	assert.Empty(t, order)

	order, err = Compile(nil)
	require.NoError(t, err)
	assert.Empty(t, order)
}

func TestCompileDeterministic(t *testing.T) {
	var list []RenderPass
	for i := 0; i < 40; i++ {
		p := RenderPass{Name: fmt.Sprintf("p%02d", i)}
		if i%3 == 0 && i > 0 {
			p.Dependencies = []string{fmt.Sprintf("p%02d", i-1)}
		}
		if i%5 == 0 {
			p.Writes = []string{fmt.Sprintf("r%d", i/5)}
		}
		if i%7 == 0 && i >= 7 {
			p.Reads = []string{fmt.Sprintf("r%d", i/7)}
		}
		list = append(list, p)
	}
	passes := NewPasses(list...)

	first, err := Compile(passes)
	require.NoError(t, err)
	assertValidOrder(t, passes, first)
	for i := 0; i < 10; i++ {
		again, err := Compile(passes)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestCompileDuplicateDependencyCountsOnce(t *testing.T) {
	passes := NewPasses(
		RenderPass{Name: "a", Writes: []string{"t"}},
		RenderPass{Name: "b", Dependencies: []string{"a", "a"}, Reads: []string{"t"}},
	)
	order, err := Compile(passes)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestCompileList(t *testing.T) {
	passes := NewPasses(
		RenderPass{Name: "final", Shader: "composite_final", Dependencies: []string{"terrain"}},
		RenderPass{Name: "terrain"},
	)
	list, err := CompileList(passes)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "terrain", list[0].ShaderName())
	assert.Equal(t, "composite_final", list[1].ShaderName())

	_, err = CompileList(NewPasses(pass("x", "y")))
	assert.Error(t, err)
}

func BenchmarkCompile(b *testing.B) {
	var list []RenderPass
	for i := 0; i < 64; i++ {
		p := RenderPass{Name: fmt.Sprintf("p%d", i), Writes: []string{fmt.Sprintf("r%d", i)}}
		if i > 0 {
			p.Reads = []string{fmt.Sprintf("r%d", i-1)}
		}
		list = append(list, p)
	}
	passes := NewPasses(list...)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Compile(passes); err != nil {
			b.Fatal(err)
		}
	}
}

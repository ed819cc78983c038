package rendergraph

import (
	"slices"
	"sort"
)

// Compile returns the pass names in an order that satisfies every explicit
// dependency and every write→read resource edge. When several passes are
// ready at once the one declared first wins, so the result is reproducible.
//
// Every pass must be stored under its own Name.
// Compile does not modify passes. On failure it returns a *ValidationError
// and no order at all.
func Compile(passes *Passes) ([]string, error) {
	if passes == nil || passes.Len() == 0 {
		return []string{}, nil
	}
	n := passes.Len()

	if err := checkNames(passes); err != nil {
		return nil, err
	}
	if err := checkDependencies(passes); err != nil {
		return nil, err
	}

	g := buildGraph(passes)

	ready := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if g.indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]string, 0, n)
	placed := make([]bool, n)
	for len(ready) > 0 {
		cur := ready[0]
		ready = ready[1:]
		order = append(order, passes.KeyByIndex(cur))
		placed[cur] = true

		for _, next := range g.successors[cur] {
			g.indegree[next]--
			if g.indegree[next] == 0 {
				at := sort.SearchInts(ready, next)
				ready = slices.Insert(ready, at, next)
			}
		}
	}

	if len(order) < n {
		unordered := make([]string, 0, n-len(order))
		for i := 0; i < n; i++ {
			if !placed[i] {
				unordered = append(unordered, passes.KeyByIndex(i))
			}
		}
		return nil, &ValidationError{Kind: CycleDetected, Unordered: unordered}
	}
	return order, nil
}

// CompileList is Compile returning the passes themselves
func CompileList(passes *Passes) ([]RenderPass, error) {
	names, err := Compile(passes)
	if err != nil {
		return nil, err
	}
	list := make([]RenderPass, len(names))
	for i, name := range names {
		list[i] = passes.ValueByKey(name)
	}
	return list, nil
}

// checkNames requires every key to equal its pass's Name, so orders built from
// keys and from RenderPass values agree
func checkNames(passes *Passes) error {
	for _, kv := range passes.Order {
		if kv.Key != kv.Value.Name {
			return &ValidationError{Kind: NameMismatch, Pass: kv.Key, Name: kv.Value.Name}
		}
	}
	return nil
}

func checkDependencies(passes *Passes) error {
	for i := 0; i < passes.Len(); i++ {
		kv := passes.Order[i]
		for _, dep := range kv.Value.Dependencies {
			if _, ok := passes.IndexByKeyTry(dep); !ok {
				return &ValidationError{Kind: MissingDependency, Pass: kv.Key, Dependency: dep}
			}
		}
	}
	return nil
}

type graph struct {
	// successors[i] holds the indices that must run after i, ascending, no duplicates
	successors [][]int
	indegree   []int
}

func buildGraph(passes *Passes) *graph {
	n := passes.Len()
	edges := make([]map[int]struct{}, n)
	addEdge := func(from, to int) {
		if edges[from] == nil {
			edges[from] = make(map[int]struct{})
		}
		edges[from][to] = struct{}{}
	}

	writers := make(map[string][]int)
	for i := 0; i < n; i++ {
		for _, res := range passes.Order[i].Value.Writes {
			writers[res] = append(writers[res], i)
		}
	}

	for i := 0; i < n; i++ {
		pass := &passes.Order[i].Value
		for _, dep := range pass.Dependencies {
			// a pass depending on itself is kept as a self edge: it can never
			// become ready and surfaces as a cycle
			addEdge(passes.IndexByKey(dep), i)
		}
		for _, res := range pass.Reads {
			for _, w := range writers[res] {
				if w != i {
					addEdge(w, i)
				}
			}
		}
	}

	g := &graph{
		successors: make([][]int, n),
		indegree:   make([]int, n),
	}
	for from, set := range edges {
		for to := range set {
			g.successors[from] = append(g.successors[from], to)
			g.indegree[to]++
		}
		sort.Ints(g.successors[from])
	}
	return g
}

package resolve

import "github.com/broady/elmgen/elmgen/ir"

// MarkRecursive sets Recursive on every type that reaches itself through
// references among types, directly or through other types of the set.
// References to types outside the set are ignored.
func MarkRecursive(types ...*Type) {
	index := make(map[ir.GoIdentifier]int, len(types))
	for i, t := range types {
		index[t.Ident] = i
	}
	edges := make([][]int, len(types))
	for i, t := range types {
		forEachReference(t.Shape, func(id ir.GoIdentifier) {
			if j, ok := index[id]; ok {
				edges[i] = append(edges[i], j)
			}
		})
	}

	// Tarjan's strongly connected components.
	var (
		next    int
		order   = make([]int, len(types))
		low     = make([]int, len(types))
		onStack = make([]bool, len(types))
		stack   []int
		visit   func(v int)
	)
	for i := range order {
		order[i] = -1
	}
	visit = func(v int) {
		order[v], low[v] = next, next
		next++
		stack = append(stack, v)
		onStack[v] = true
		for _, w := range edges[v] {
			switch {
			case order[w] < 0:
				visit(w)
				low[v] = min(low[v], low[w])
			case onStack[w]:
				low[v] = min(low[v], order[w])
			}
		}
		if low[v] != order[v] {
			return
		}
		var scc []int
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		if len(scc) > 1 || selfLoop(edges[v], v) {
			for _, w := range scc {
				types[w].Recursive = true
			}
		}
	}
	for v := range types {
		if order[v] < 0 {
			visit(v)
		}
	}
}

func selfLoop(edges []int, v int) bool {
	for _, w := range edges {
		if w == v {
			return true
		}
	}
	return false
}

// forEachReference calls fn for every named type a shape refers to.
func forEachReference(s Shape, fn func(ir.GoIdentifier)) {
	walk := func(td ir.TypeDescriptor) {
		ir.Walk(td, func(d ir.TypeDescriptor) {
			if ref, ok := d.(*ir.ReferenceDescriptor); ok {
				fn(ref.Target)
			}
		})
	}
	switch s := s.(type) {
	case *Newtype:
		walk(s.Element)
	case *Tuple:
		for _, td := range s.Elements {
			walk(td)
		}
	case *Product:
		for _, f := range s.Fields {
			walk(f.Type)
		}
	case *Sum:
		for _, v := range s.Variants {
			for _, td := range v.Elements {
				walk(td)
			}
			for _, f := range v.Fields {
				walk(f.Type)
			}
		}
	}
}

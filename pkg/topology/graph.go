// SPDX-License-Identifier: GPL-3.0-or-later

package topology

import (
	"slices"
)

type vertex[N any] interface {
	comparable
	Compare(N) int
}

// digraph is an immutable directed graph without parallel edges or
// self-loops. Nodes live in a sorted arena; adjacency is kept as sorted
// index lists in both directions.
type digraph[N vertex[N]] struct {
	nodes []N
	index map[N]int
	out   [][]int
	in    [][]int
	size  int
}

func newDigraph[N vertex[N]](pairs [][2]N) digraph[N] {
	seen := make(map[N]struct{})
	for _, p := range pairs {
		if p[0] == p[1] {
			continue
		}
		seen[p[0]] = struct{}{}
		seen[p[1]] = struct{}{}
	}

	g := digraph[N]{
		nodes: make([]N, 0, len(seen)),
		index: make(map[N]int, len(seen)),
	}
	for n := range seen {
		g.nodes = append(g.nodes, n)
	}
	slices.SortFunc(g.nodes, func(a, b N) int { return a.Compare(b) })
	for i, n := range g.nodes {
		g.index[n] = i
	}

	g.out = make([][]int, len(g.nodes))
	g.in = make([][]int, len(g.nodes))
	for _, p := range pairs {
		if p[0] == p[1] {
			continue
		}
		from, to := g.index[p[0]], g.index[p[1]]
		g.out[from] = append(g.out[from], to)
		g.in[to] = append(g.in[to], from)
	}
	for i := range g.nodes {
		g.out[i] = sortedUnique(g.out[i])
		g.in[i] = sortedUnique(g.in[i])
		g.size += len(g.out[i])
	}
	return g
}

func sortedUnique(v []int) []int {
	slices.Sort(v)
	return slices.Compact(v)
}

func (g digraph[N]) nodeList() []N {
	return slices.Clone(g.nodes)
}

func (g digraph[N]) contains(n N) bool {
	_, ok := g.index[n]
	return ok
}

func (g digraph[N]) successors(n N) []N {
	i, ok := g.index[n]
	if !ok {
		return nil
	}
	return g.resolve(g.out[i])
}

func (g digraph[N]) predecessors(n N) []N {
	i, ok := g.index[n]
	if !ok {
		return nil
	}
	return g.resolve(g.in[i])
}

// neighbors returns the nodes adjacent to n in either direction.
func (g digraph[N]) neighbors(n N) []N {
	i, ok := g.index[n]
	if !ok {
		return nil
	}
	merged := append(slices.Clone(g.out[i]), g.in[i]...)
	return g.resolve(sortedUnique(merged))
}

func (g digraph[N]) hasEdge(from, to N) bool {
	i, ok := g.index[from]
	if !ok {
		return false
	}
	j, ok := g.index[to]
	if !ok {
		return false
	}
	_, found := slices.BinarySearch(g.out[i], j)
	return found
}

// edgePairs returns every edge, ordered by source then target.
func (g digraph[N]) edgePairs() [][2]N {
	out := make([][2]N, 0, g.size)
	for i, targets := range g.out {
		for _, j := range targets {
			out = append(out, [2]N{g.nodes[i], g.nodes[j]})
		}
	}
	return out
}

func (g digraph[N]) equal(other digraph[N]) bool {
	if len(g.nodes) != len(other.nodes) || g.size != other.size {
		return false
	}
	if !slices.Equal(g.nodes, other.nodes) {
		return false
	}
	for i := range g.out {
		if !slices.Equal(g.out[i], other.out[i]) {
			return false
		}
	}
	return true
}

func (g digraph[N]) resolve(idx []int) []N {
	if len(idx) == 0 {
		return nil
	}
	out := make([]N, len(idx))
	for k, i := range idx {
		out[k] = g.nodes[i]
	}
	return out
}

// SPDX-License-Identifier: GPL-3.0-or-later

package topology

// unionFind is a disjoint-set forest with path halving and union by size.
type unionFind[N comparable] struct {
	index  map[N]int
	items  []N
	parent []int
	size   []int
}

func newUnionFind[N comparable]() *unionFind[N] {
	return &unionFind[N]{index: make(map[N]int)}
}

func (u *unionFind[N]) add(n N) int {
	if i, ok := u.index[n]; ok {
		return i
	}
	i := len(u.items)
	u.index[n] = i
	u.items = append(u.items, n)
	u.parent = append(u.parent, i)
	u.size = append(u.size, 1)
	return i
}

func (u *unionFind[N]) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind[N]) union(a, b N) {
	ra, rb := u.find(u.add(a)), u.find(u.add(b))
	if ra == rb {
		return
	}
	if u.size[ra] < u.size[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	u.size[ra] += u.size[rb]
}

// sets returns the members of every disjoint set.
func (u *unionFind[N]) sets() [][]N {
	groups := make(map[int][]N)
	var roots []int
	for i, n := range u.items {
		r := u.find(i)
		if _, ok := groups[r]; !ok {
			roots = append(roots, r)
		}
		groups[r] = append(groups[r], n)
	}
	out := make([][]N, 0, len(roots))
	for _, r := range roots {
		out = append(out, groups[r])
	}
	return out
}

package merge

// unionFind is a disjoint-set forest with union by rank and path
// compression. find is iterative; the parent structure is acyclic by
// construction.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	u := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range u.parent {
		u.parent[i] = i
	}
	return u
}

func (u *unionFind) find(i int) int {
	root := i
	for u.parent[root] != root {
		root = u.parent[root]
	}
	// Second pass: compress the path.
	for u.parent[i] != root {
		u.parent[i], i = root, u.parent[i]
	}
	return root
}

func (u *unionFind) union(i, j int) {
	ri, rj := u.find(i), u.find(j)
	if ri == rj {
		return
	}
	switch {
	case u.rank[ri] > u.rank[rj]:
		u.parent[rj] = ri
	case u.rank[ri] < u.rank[rj]:
		u.parent[ri] = rj
	default:
		u.parent[rj] = ri
		u.rank[ri]++
	}
}

package community

// UnionFind is a disjoint-set forest over the contiguous id range [0, n).
// Find compresses paths; Unite links by rank.
type UnionFind struct {
	parent []int
	rank   []int
	size   []int
}

// NewUnionFind creates a forest of n singleton sets.
func NewUnionFind(n int) *UnionFind {
	if n < 0 {
		n = 0
	}
	uf := &UnionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
		size:   make([]int, n),
	}
	for i := 0; i < n; i++ {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

// Len returns the number of ids the forest covers.
func (uf *UnionFind) Len() int {
	return len(uf.parent)
}

// Find returns the representative of x's set.
func (uf *UnionFind) Find(x int) int {
	root := x
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[x] != root {
		next := uf.parent[x]
		uf.parent[x] = root
		x = next
	}
	return root
}

// Unite merges the sets containing a and b.
func (uf *UnionFind) Unite(a, b int) {
	ra, rb := uf.Find(a), uf.Find(b)
	if ra == rb {
		return
	}

	switch {
	case uf.rank[ra] < uf.rank[rb]:
		uf.parent[ra] = rb
		uf.size[rb] += uf.size[ra]
	case uf.rank[ra] > uf.rank[rb]:
		uf.parent[rb] = ra
		uf.size[ra] += uf.size[rb]
	default:
		uf.parent[rb] = ra
		uf.size[ra] += uf.size[rb]
		uf.rank[ra]++
	}
}

// Connected reports whether a and b share a set.
func (uf *UnionFind) Connected(a, b int) bool {
	return uf.Find(a) == uf.Find(b)
}

// ComponentSize returns the size of x's set.
func (uf *UnionFind) ComponentSize(x int) int {
	return uf.size[uf.Find(x)]
}

// Components groups every id in the forest by its root, in ascending id order
// within each group. Ids that were never assigned to anything still show up as
// singletons; callers filter them.
func (uf *UnionFind) Components() map[int][]int {
	out := make(map[int][]int)
	for i := range uf.parent {
		root := uf.Find(i)
		out[root] = append(out[root], i)
	}
	return out
}

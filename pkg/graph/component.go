package graph

// UnionFind is a disjoint-set forest with union by size and path halving.
type UnionFind struct {
	parent []uint32
	size   []uint32
}

func NewUnionFind(n uint32) *UnionFind {
	uf := &UnionFind{
		parent: make([]uint32, n),
		size:   make([]uint32, n),
	}
	for i := uint32(0); i < n; i++ {
		uf.parent[i] = i
		uf.size[i] = 1
	}
	return uf
}

// Find returns the representative of the set containing x.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y and reports whether they were
// distinct.
func (uf *UnionFind) Union(x, y uint32) bool {
	x, y = uf.Find(x), uf.Find(y)
	if x == y {
		return false
	}
	if uf.size[x] < uf.size[y] {
		x, y = y, x
	}
	uf.parent[y] = x
	uf.size[x] += uf.size[y]
	return true
}

// LargestComponent returns the node ids belonging to the largest weakly
// connected component of g (the directed graph treated as undirected).
// Imported road networks typically carry small disconnected islands that
// would make most queries fail; preprocessing only the main component
// avoids that.
func LargestComponent(g *InputGraph) []uint32 {
	if g.NumNodes() == 0 {
		return nil
	}

	uf := NewUnionFind(g.NumNodes())
	for _, e := range g.Edges() {
		uf.Union(e.From, e.To)
	}

	bestRoot := uint32(0)
	bestSize := uint32(0)
	for i := uint32(0); i < g.NumNodes(); i++ {
		root := uf.Find(i)
		if uf.size[root] > bestSize {
			bestRoot = root
			bestSize = uf.size[root]
		}
	}

	nodes := make([]uint32, 0, bestSize)
	for i := uint32(0); i < g.NumNodes(); i++ {
		if uf.Find(i) == bestRoot {
			nodes = append(nodes, i)
		}
	}

	return nodes
}

// FilterToComponent returns a new unfrozen graph containing only the given
// nodes, renumbered densely in the given order, plus the old-to-new node
// mapping. Edges with an endpoint outside the set are dropped.
func FilterToComponent(g *InputGraph, nodes []uint32) (*InputGraph, map[uint32]uint32) {
	oldToNew := make(map[uint32]uint32, len(nodes))
	for newIdx, oldIdx := range nodes {
		oldToNew[oldIdx] = uint32(newIdx)
	}

	filtered := NewInputGraph()
	for _, e := range g.Edges() {
		from, ok := oldToNew[e.From]
		if !ok {
			continue
		}
		to, ok := oldToNew[e.To]
		if !ok {
			continue
		}
		filtered.AddEdge(from, to, e.Weight)
	}

	return filtered, oldToNew
}

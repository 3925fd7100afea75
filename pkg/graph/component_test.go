package graph

import (
	"testing"
)

func TestUnionFind(t *testing.T) {
	uf := NewUnionFind(5)

	// Initially all separate.
	for i := uint32(0); i < 5; i++ {
		if uf.Find(i) != i {
			t.Errorf("Find(%d) = %d, want %d", i, uf.Find(i), i)
		}
	}

	uf.Union(0, 1)
	if uf.Find(0) != uf.Find(1) {
		t.Error("0 and 1 should be in same set")
	}

	uf.Union(2, 3)
	if uf.Find(2) != uf.Find(3) {
		t.Error("2 and 3 should be in same set")
	}

	if uf.Find(0) == uf.Find(2) {
		t.Error("0 and 2 should be in different sets")
	}

	// Union the two groups.
	uf.Union(1, 3)
	if uf.Find(0) != uf.Find(3) {
		t.Error("0 and 3 should be in same set after merging")
	}

	// Union within the same set is a no-op.
	if uf.Union(0, 2) {
		t.Error("Union(0, 2) should report already merged")
	}

	// 4 is still alone.
	if uf.Find(4) != 4 {
		t.Errorf("Find(4) = %d, want 4", uf.Find(4))
	}
}

func TestLargestComponent(t *testing.T) {
	g := NewInputGraph()
	// Main component: 0-1-2-3.
	g.AddEdge(0, 1, 10)
	g.AddEdge(1, 2, 10)
	g.AddEdge(2, 3, 10)
	// Island: 4-5.
	g.AddEdge(4, 5, 10)
	// Singleton: 6.
	g.AddEdge(6, 6, 10)

	nodes := LargestComponent(g)
	if len(nodes) != 4 {
		t.Fatalf("largest component size = %d, want 4", len(nodes))
	}
	want := map[uint32]bool{0: true, 1: true, 2: true, 3: true}
	for _, n := range nodes {
		if !want[n] {
			t.Errorf("unexpected node %d in largest component", n)
		}
	}
}

func TestLargestComponentDirectedTreatedAsUndirected(t *testing.T) {
	g := NewInputGraph()
	// One-way edges still connect nodes weakly.
	g.AddEdge(0, 1, 5)
	g.AddEdge(2, 1, 5)
	g.AddEdge(3, 4, 5)

	nodes := LargestComponent(g)
	if len(nodes) != 3 {
		t.Fatalf("largest component size = %d, want 3", len(nodes))
	}
}

func TestLargestComponentEmpty(t *testing.T) {
	if nodes := LargestComponent(NewInputGraph()); nodes != nil {
		t.Errorf("expected nil for empty graph, got %v", nodes)
	}
}

func TestFilterToComponent(t *testing.T) {
	g := NewInputGraph()
	g.AddEdge(0, 1, 10)
	g.AddEdge(1, 2, 20)
	g.AddEdge(3, 4, 30) // island, dropped
	g.AddEdge(2, 3, 40) // crosses the boundary, dropped

	filtered, oldToNew := FilterToComponent(g, []uint32{0, 1, 2})

	if filtered.NumNodes() != 3 {
		t.Errorf("NumNodes = %d, want 3", filtered.NumNodes())
	}
	if filtered.NumEdges() != 2 {
		t.Fatalf("NumEdges = %d, want 2", filtered.NumEdges())
	}
	if oldToNew[0] != 0 || oldToNew[1] != 1 || oldToNew[2] != 2 {
		t.Errorf("unexpected renumbering: %v", oldToNew)
	}

	edges := filtered.Edges()
	if edges[0] != (Edge{From: 0, To: 1, Weight: 10}) {
		t.Errorf("edge 0 = %+v", edges[0])
	}
	if edges[1] != (Edge{From: 1, To: 2, Weight: 20}) {
		t.Errorf("edge 1 = %+v", edges[1])
	}
}

func TestFilterToComponentRenumbers(t *testing.T) {
	g := NewInputGraph()
	g.AddEdge(5, 7, 10)
	g.AddEdge(7, 9, 20)

	filtered, oldToNew := FilterToComponent(g, []uint32{5, 7, 9})

	if filtered.NumNodes() != 3 {
		t.Errorf("NumNodes = %d, want 3", filtered.NumNodes())
	}
	if oldToNew[5] != 0 || oldToNew[7] != 1 || oldToNew[9] != 2 {
		t.Errorf("unexpected renumbering: %v", oldToNew)
	}
}

package routing_test

import (
	"container/heap"
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"fastroute/pkg/ch"
	"fastroute/pkg/graph"
	"fastroute/pkg/routing"
)

func prepare(t *testing.T, edges ...[3]uint32) *graph.FastGraph {
	t.Helper()
	g := graph.NewInputGraph()
	for _, e := range edges {
		g.AddEdge(e[0], e[1], e[2])
	}
	g.Freeze()
	return ch.Prepare(g, nil)
}

func TestCalcPathTriangle(t *testing.T) {
	fg := prepare(t,
		[3]uint32{0, 1, 1},
		[3]uint32{1, 2, 1},
		[3]uint32{0, 2, 3},
	)
	p, err := routing.NewPathCalculator(fg).CalcPath(0, 2)
	if err != nil {
		t.Fatalf("CalcPath: %v", err)
	}
	if p.Weight != 2 {
		t.Errorf("Weight = %d, want 2", p.Weight)
	}
	if !reflect.DeepEqual(p.Nodes, []uint32{0, 1, 2}) {
		t.Errorf("Nodes = %v, want [0 1 2]", p.Nodes)
	}
	if p.Source != 0 || p.Target != 2 {
		t.Errorf("Source/Target = %d/%d, want 0/2", p.Source, p.Target)
	}
}

func TestCalcPathTrivial(t *testing.T) {
	fg := prepare(t, [3]uint32{0, 1, 1})
	p, err := routing.NewPathCalculator(fg).CalcPath(1, 1)
	if err != nil {
		t.Fatalf("CalcPath: %v", err)
	}
	if p.Weight != 0 {
		t.Errorf("Weight = %d, want 0", p.Weight)
	}
	if !reflect.DeepEqual(p.Nodes, []uint32{1}) {
		t.Errorf("Nodes = %v, want [1]", p.Nodes)
	}
}

func TestCalcPathNoRoute(t *testing.T) {
	// Two disconnected pairs.
	fg := prepare(t,
		[3]uint32{0, 1, 1},
		[3]uint32{2, 3, 1},
	)
	_, err := routing.NewPathCalculator(fg).CalcPath(0, 3)
	if !errors.Is(err, routing.ErrNoRoute) {
		t.Errorf("err = %v, want ErrNoRoute", err)
	}
}

func TestCalcPathRespectsDirection(t *testing.T) {
	fg := prepare(t, [3]uint32{0, 1, 1})
	if _, err := routing.NewPathCalculator(fg).CalcPath(1, 0); !errors.Is(err, routing.ErrNoRoute) {
		t.Errorf("err = %v, want ErrNoRoute against edge direction", err)
	}
}

func TestCalcPathUnknownNode(t *testing.T) {
	fg := prepare(t, [3]uint32{0, 1, 1})
	pc := routing.NewPathCalculator(fg)
	if _, err := pc.CalcPath(0, 7); !errors.Is(err, routing.ErrUnknownNode) {
		t.Errorf("err = %v, want ErrUnknownNode", err)
	}
	if _, err := pc.CalcPath(7, 0); !errors.Is(err, routing.ErrUnknownNode) {
		t.Errorf("err = %v, want ErrUnknownNode", err)
	}
}

func TestCalcPathLongChain(t *testing.T) {
	// 0 -> 1 -> ... -> 5, each hop weight 2, forcing multi-level shortcuts.
	g := graph.NewInputGraph()
	for i := uint32(0); i < 5; i++ {
		g.AddEdge(i, i+1, 2)
		g.AddEdge(i+1, i, 2)
	}
	g.Freeze()
	fg := ch.Prepare(g, nil)

	p, err := routing.NewPathCalculator(fg).CalcPath(0, 5)
	if err != nil {
		t.Fatalf("CalcPath: %v", err)
	}
	if p.Weight != 10 {
		t.Errorf("Weight = %d, want 10", p.Weight)
	}
	if !reflect.DeepEqual(p.Nodes, []uint32{0, 1, 2, 3, 4, 5}) {
		t.Errorf("Nodes = %v, want full chain", p.Nodes)
	}

	p, err = routing.NewPathCalculator(fg).CalcPath(5, 0)
	if err != nil {
		t.Fatalf("CalcPath reversed: %v", err)
	}
	if !reflect.DeepEqual(p.Nodes, []uint32{5, 4, 3, 2, 1, 0}) {
		t.Errorf("Nodes = %v, want reversed chain", p.Nodes)
	}
}

func TestCalcPathMultiSourcesAndTargets(t *testing.T) {
	//	0 --5-- 2 --5-- 3
	//	1 --1-- 2
	fg := prepare(t,
		[3]uint32{0, 2, 5},
		[3]uint32{1, 2, 1},
		[3]uint32{2, 3, 5},
	)
	pc := routing.NewPathCalculator(fg)

	// Source 0 wins: 0+5+5 = 10 beats 10+1+5 = 16.
	p, err := pc.CalcPathMultiSourcesAndTargets(
		[]routing.WeightedNode{{Node: 0, Weight: 0}, {Node: 1, Weight: 10}},
		[]routing.WeightedNode{{Node: 3, Weight: 0}},
	)
	if err != nil {
		t.Fatalf("CalcPathMultiSourcesAndTargets: %v", err)
	}
	if p.Weight != 10 {
		t.Errorf("Weight = %d, want 10", p.Weight)
	}
	if p.Source != 0 {
		t.Errorf("Source = %d, want 0", p.Source)
	}

	// Lower offset on 1 makes it the better start: 2+1+5 = 8.
	p, err = pc.CalcPathMultiSourcesAndTargets(
		[]routing.WeightedNode{{Node: 0, Weight: 5}, {Node: 1, Weight: 2}},
		[]routing.WeightedNode{{Node: 3, Weight: 0}},
	)
	if err != nil {
		t.Fatalf("CalcPathMultiSourcesAndTargets: %v", err)
	}
	if p.Weight != 8 {
		t.Errorf("Weight = %d, want 8", p.Weight)
	}
	if p.Source != 1 {
		t.Errorf("Source = %d, want 1", p.Source)
	}
}

func TestCalcPathMultiEmptyEndpoints(t *testing.T) {
	fg := prepare(t, [3]uint32{0, 1, 1})
	pc := routing.NewPathCalculator(fg)
	if _, err := pc.CalcPathMultiSourcesAndTargets(nil, []routing.WeightedNode{{Node: 0}}); !errors.Is(err, routing.ErrNoRoute) {
		t.Errorf("empty sources: err = %v, want ErrNoRoute", err)
	}
	if _, err := pc.CalcPathMultiSourcesAndTargets([]routing.WeightedNode{{Node: 0}}, nil); !errors.Is(err, routing.ErrNoRoute) {
		t.Errorf("empty targets: err = %v, want ErrNoRoute", err)
	}
}

func TestCalcPathMultiSharedEndpoint(t *testing.T) {
	// A node that is both source and target yields a trivial candidate.
	fg := prepare(t,
		[3]uint32{0, 1, 10},
		[3]uint32{1, 0, 10},
	)
	p, err := routing.NewPathCalculator(fg).CalcPathMultiSourcesAndTargets(
		[]routing.WeightedNode{{Node: 0, Weight: 3}},
		[]routing.WeightedNode{{Node: 0, Weight: 4}, {Node: 1, Weight: 0}},
	)
	if err != nil {
		t.Fatalf("CalcPathMultiSourcesAndTargets: %v", err)
	}
	if p.Weight != 7 {
		t.Errorf("Weight = %d, want 7 (trivial path beats 3+10)", p.Weight)
	}
	if len(p.Nodes) != 1 || p.Nodes[0] != 0 {
		t.Errorf("Nodes = %v, want [0]", p.Nodes)
	}
}

func TestCalculatorReuse(t *testing.T) {
	fg := prepare(t,
		[3]uint32{0, 1, 1},
		[3]uint32{1, 2, 1},
		[3]uint32{2, 3, 1},
	)
	pc := routing.NewPathCalculator(fg)
	for i := 0; i < 50; i++ {
		p, err := pc.CalcPath(0, 3)
		if err != nil {
			t.Fatalf("query %d: %v", i, err)
		}
		if p.Weight != 3 {
			t.Fatalf("query %d: Weight = %d, want 3", i, p.Weight)
		}
	}
}

// refDijkstra is a plain textbook Dijkstra over the input edges, used as
// the ground truth for randomized comparisons.
func refDijkstra(g *graph.InputGraph, source uint32) []uint32 {
	n := g.NumNodes()
	adj := make([][]graph.Edge, n)
	for _, e := range g.Edges() {
		adj[e.From] = append(adj[e.From], e)
	}

	dist := make([]uint32, n)
	for i := range dist {
		dist[i] = math.MaxUint32
	}
	dist[source] = 0

	pq := &refHeap{{node: source, dist: 0}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(refItem)
		if cur.dist > dist[cur.node] {
			continue
		}
		for _, e := range adj[cur.node] {
			if d := cur.dist + e.Weight; d < dist[e.To] {
				dist[e.To] = d
				heap.Push(pq, refItem{node: e.To, dist: d})
			}
		}
	}
	return dist
}

type refItem struct {
	node uint32
	dist uint32
}

type refHeap []refItem

func (h refHeap) Len() int            { return len(h) }
func (h refHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h refHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *refHeap) Push(x any)         { *h = append(*h, x.(refItem)) }
func (h *refHeap) Pop() any           { old := *h; n := len(old); it := old[n-1]; *h = old[:n-1]; return it }

func TestCalcPathMatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const numNodes = 60

	g := graph.NewInputGraph()
	for i := 0; i < 250; i++ {
		from := rng.Uint32() % numNodes
		to := rng.Uint32() % numNodes
		if from == to {
			continue
		}
		g.AddEdge(from, to, rng.Uint32()%1000+1)
	}
	g.Freeze()
	fg := ch.Prepare(g, nil)
	pc := routing.NewPathCalculator(fg)

	for s := uint32(0); s < g.NumNodes(); s += 7 {
		want := refDijkstra(g, s)
		for d := uint32(0); d < g.NumNodes(); d++ {
			p, err := pc.CalcPath(s, d)
			if want[d] == math.MaxUint32 {
				if !errors.Is(err, routing.ErrNoRoute) {
					t.Errorf("(%d, %d): err = %v, want ErrNoRoute", s, d, err)
				}
				continue
			}
			if err != nil {
				t.Errorf("(%d, %d): unexpected error %v", s, d, err)
				continue
			}
			if p.Weight != want[d] {
				t.Errorf("(%d, %d): Weight = %d, want %d", s, d, p.Weight, want[d])
			}
			if pathWeight(g, p.Nodes) != p.Weight {
				t.Errorf("(%d, %d): returned nodes do not sum to the weight", s, d)
			}
		}
	}
}

// pathWeight re-prices a node sequence against the cheapest input edges.
func pathWeight(g *graph.InputGraph, nodes []uint32) uint32 {
	best := make(map[[2]uint32]uint32)
	for _, e := range g.Edges() {
		key := [2]uint32{e.From, e.To}
		if w, ok := best[key]; !ok || e.Weight < w {
			best[key] = e.Weight
		}
	}
	var total uint32
	for i := 0; i+1 < len(nodes); i++ {
		w, ok := best[[2]uint32{nodes[i], nodes[i+1]}]
		if !ok {
			return math.MaxUint32
		}
		total += w
	}
	return total
}

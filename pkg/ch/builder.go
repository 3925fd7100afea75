package ch

import (
	"container/heap"
	"errors"
	"fmt"
	"log"

	"fastroute/pkg/graph"
)

// ErrBadOrder reports a contraction order that is not a permutation of the
// graph's node ids.
var ErrBadOrder = errors.New("invalid contraction order")

// Params tunes the preparation. The defaults work well on road networks;
// see DefaultParams.
type Params struct {
	// MaxSettledNodes caps each witness search. Lower values speed up
	// preparation but produce more shortcuts, slowing down queries.
	MaxSettledNodes int

	// Weights of the contraction priority terms.
	EdgeDifferenceFactor      float64
	DepthFactor               float64
	ContractedNeighborsFactor float64
}

func DefaultParams() *Params {
	return &Params{
		MaxSettledNodes:           500,
		EdgeDifferenceFactor:      1,
		DepthFactor:               1,
		ContractedNeighborsFactor: 1,
	}
}

// Prepare contracts all nodes of the frozen input graph in an order chosen
// by the dynamic priority heuristic and returns the resulting hierarchy.
func Prepare(g *graph.InputGraph, params *Params) *graph.FastGraph {
	if params == nil {
		params = DefaultParams()
	}
	b := newBuilder(g.NumNodes())
	b.runContraction(g, params)
	return b.fg
}

// PrepareWithOrder contracts the nodes in the given order, still running
// witness searches and emitting the resulting shortcuts. The order must be
// a permutation of [0, NumNodes). Reusing the ordering of an earlier
// preparation is much faster than Prepare and works well when only the
// weights changed.
func PrepareWithOrder(g *graph.InputGraph, order []uint32, params *Params) (*graph.FastGraph, error) {
	if params == nil {
		params = DefaultParams()
	}
	n := g.NumNodes()
	if uint32(len(order)) != n {
		return nil, fmt.Errorf("%w: got %d nodes, graph has %d", ErrBadOrder, len(order), n)
	}
	seen := make([]bool, n)
	for _, node := range order {
		if node >= n || seen[node] {
			return nil, fmt.Errorf("%w: not a permutation of [0, %d)", ErrBadOrder, n)
		}
		seen[node] = true
	}
	b := newBuilder(n)
	b.runContractionWithOrder(g, order, params)
	return b.fg, nil
}

// builder accumulates the hierarchy while nodes are contracted one by one.
// Edges are appended in rank order, so the FirstEdge offsets fall out of
// the append positions. Shortcut center nodes are kept in side arrays and
// resolved to edge indices once all ranks are known.
type builder struct {
	fg         *graph.FastGraph
	centersFwd []uint32
	centersBwd []uint32
	order      []uint32 // rank -> node, inverted into fg.Rank at finish
}

func newBuilder(numNodes uint32) *builder {
	return &builder{
		fg:    graph.NewFastGraph(numNodes),
		order: make([]uint32, 0, numNodes),
	}
}

func (b *builder) runContraction(g *graph.InputGraph, params *Params) {
	n := g.NumNodes()
	if n == 0 {
		return
	}
	pg := prepGraphFromInput(g)
	ws := newWitnessSearch(n, params.MaxSettledNodes)

	depth := make([]int, n)
	contractedNeighbors := make([]int, n)

	log.Printf("Starting contraction of %d nodes...", n)

	// One heap entry per node, index-tracked so neighbor updates can use
	// heap.Fix instead of pushing stale duplicates.
	entries := make([]*pqEntry, n)
	pq := make(priorityQueue, n)
	for i := uint32(0); i < n; i++ {
		entries[i] = &pqEntry{
			node:     i,
			priority: calcPriority(pg, ws, params, i, 0, 0),
			index:    int(i),
		}
		pq[i] = entries[i]
	}
	heap.Init(&pq)

	neighborStamp := make([]uint32, n)
	rank := uint32(0)

	for pq.Len() > 0 {
		entry := heap.Pop(&pq).(*pqEntry)
		node := entry.node

		// Lazy update: the popped priority may be stale. Recompute, and if
		// the node no longer beats the heap head, put it back and retry.
		priority := calcPriority(pg, ws, params, node, depth[node], contractedNeighbors[node])
		if pq.Len() > 0 && priority > pq[0].priority {
			entry.priority = priority
			heap.Push(&pq, entry)
			continue
		}

		// Collect the live neighbors before they lose their arcs to node.
		var neighbors []uint32
		for _, e := range pg.out[node] {
			if !pg.contracted[e.adj] && neighborStamp[e.adj] != rank+1 {
				neighborStamp[e.adj] = rank + 1
				neighbors = append(neighbors, e.adj)
			}
		}
		for _, e := range pg.in[node] {
			if !pg.contracted[e.adj] && neighborStamp[e.adj] != rank+1 {
				neighborStamp[e.adj] = rank + 1
				neighbors = append(neighbors, e.adj)
			}
		}

		b.captureNode(pg, node)
		contractNode(pg, ws, node)

		for _, nb := range neighbors {
			if depth[node]+1 > depth[nb] {
				depth[nb] = depth[node] + 1
			}
			contractedNeighbors[nb]++
			e := entries[nb]
			e.priority = calcPriority(pg, ws, params, nb, depth[nb], contractedNeighbors[nb])
			heap.Fix(&pq, e.index)
		}

		rank++
		if rank%logInterval(n-rank) == 0 {
			log.Printf("Contracted %d/%d nodes, %d forward edges so far", rank, n, b.fg.NumOutEdges())
		}
	}

	b.finish()
	log.Printf("Contraction complete: %d forward edges, %d backward edges (input had %d)",
		b.fg.NumOutEdges(), b.fg.NumInEdges(), g.NumEdges())
}

func (b *builder) runContractionWithOrder(g *graph.InputGraph, order []uint32, params *Params) {
	n := g.NumNodes()
	if n == 0 {
		return
	}
	pg := prepGraphFromInput(g)
	ws := newWitnessSearch(n, params.MaxSettledNodes)

	log.Printf("Starting contraction of %d nodes with fixed order...", n)
	for _, node := range order {
		b.captureNode(pg, node)
		contractNode(pg, ws, node)
	}
	b.finish()
	log.Printf("Contraction complete: %d forward edges, %d backward edges (input had %d)",
		b.fg.NumOutEdges(), b.fg.NumInEdges(), g.NumEdges())
}

// captureNode freezes the node's current live arcs into the hierarchy at
// the next rank. All live neighbors are still uncontracted and therefore
// end up with a higher rank, so every captured edge points upward.
func (b *builder) captureNode(pg *prepGraph, node uint32) {
	fg := b.fg
	for _, e := range pg.out[node] {
		if pg.contracted[e.adj] {
			continue
		}
		fg.FwdBase = append(fg.FwdBase, node)
		fg.FwdAdj = append(fg.FwdAdj, e.adj)
		fg.FwdWeight = append(fg.FwdWeight, e.weight)
		b.centersFwd = append(b.centersFwd, e.center)
	}
	for _, e := range pg.in[node] {
		if pg.contracted[e.adj] {
			continue
		}
		fg.BwdBase = append(fg.BwdBase, node)
		fg.BwdAdj = append(fg.BwdAdj, e.adj)
		fg.BwdWeight = append(fg.BwdWeight, e.weight)
		b.centersBwd = append(b.centersBwd, e.center)
	}
	rank := uint32(len(b.order))
	fg.FwdFirstEdge[rank+1] = fg.NumOutEdges()
	fg.BwdFirstEdge[rank+1] = fg.NumInEdges()
	b.order = append(b.order, node)
}

// finish inverts the contraction order into ranks and resolves every
// shortcut's center node to the indices of its two child edges, so that
// path unpacking never has to search adjacencies.
func (b *builder) finish() {
	fg := b.fg
	for rank, node := range b.order {
		fg.Rank[node] = uint32(rank)
	}

	fg.FwdReplacedIn = make([]uint32, fg.NumOutEdges())
	fg.FwdReplacedOut = make([]uint32, fg.NumOutEdges())
	fg.BwdReplacedIn = make([]uint32, fg.NumInEdges())
	fg.BwdReplacedOut = make([]uint32, fg.NumInEdges())

	for _, node := range b.order {
		for e := fg.BeginOut(node); e < fg.EndOut(node); e++ {
			c := b.centersFwd[e]
			if c == graph.NoNode {
				fg.FwdReplacedIn[e] = graph.NoEdge
				fg.FwdReplacedOut[e] = graph.NoEdge
			} else {
				fg.FwdReplacedIn[e] = b.findInEdge(c, node)
				fg.FwdReplacedOut[e] = b.findOutEdge(c, fg.FwdAdj[e])
			}
		}
		for e := fg.BeginIn(node); e < fg.EndIn(node); e++ {
			c := b.centersBwd[e]
			if c == graph.NoNode {
				fg.BwdReplacedIn[e] = graph.NoEdge
				fg.BwdReplacedOut[e] = graph.NoEdge
			} else {
				fg.BwdReplacedIn[e] = b.findInEdge(c, fg.BwdAdj[e])
				fg.BwdReplacedOut[e] = b.findOutEdge(c, node)
			}
		}
	}
}

func (b *builder) findOutEdge(node, adj uint32) uint32 {
	fg := b.fg
	for e := fg.BeginOut(node); e < fg.EndOut(node); e++ {
		if fg.FwdAdj[e] == adj {
			return e
		}
	}
	panic(fmt.Sprintf("no out-edge %d->%d in hierarchy", node, adj))
}

func (b *builder) findInEdge(node, adj uint32) uint32 {
	fg := b.fg
	for e := fg.BeginIn(node); e < fg.EndIn(node); e++ {
		if fg.BwdAdj[e] == adj {
			return e
		}
	}
	panic(fmt.Sprintf("no in-edge %d<-%d in hierarchy", node, adj))
}

// logInterval picks a progress log frequency: frequent near the end, where
// contractions are slowest.
func logInterval(remaining uint32) uint32 {
	switch {
	case remaining < 1000:
		return 100
	case remaining < 10000:
		return 1000
	case remaining < 100000:
		return 10000
	default:
		return 50000
	}
}

// Priority queue implementation for contraction ordering.

type pqEntry struct {
	node     uint32
	priority float64
	index    int
}

type priorityQueue []*pqEntry

func (pq priorityQueue) Len() int           { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool { return pq[i].priority < pq[j].priority }
func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	entry := x.(*pqEntry)
	entry.index = len(*pq)
	*pq = append(*pq, entry)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	entry.index = -1
	*pq = old[:n-1]
	return entry
}

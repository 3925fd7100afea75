package routing

import (
	"errors"
	"math"

	"fastroute/pkg/graph"
)

const noNode = ^uint32(0)
const noEdge = ^uint32(0)

// ErrNoRoute indicates no path exists between the requested endpoints.
var ErrNoRoute = errors.New("no route found")

// ErrUnknownNode indicates a node id outside the prepared graph.
var ErrUnknownNode = errors.New("unknown node id")

// ShortestPath is a query result. Nodes are input node ids, source first,
// target last. A trivial path (source == target) has weight 0 and a single
// node.
type ShortestPath struct {
	Source uint32
	Target uint32
	Weight uint32
	Nodes  []uint32
}

// WeightedNode is a search endpoint with an initial weight offset, used
// for queries with multiple sources or targets.
type WeightedNode struct {
	Node   uint32
	Weight uint32
}

// PathCalculator runs bidirectional upward Dijkstra queries on a prepared
// hierarchy. It owns scratch arrays sized to the graph, reset lazily via a
// per-query generation stamp, so repeated queries do not reallocate.
//
// A calculator is not safe for concurrent use. Create one per goroutine;
// the FastGraph itself is immutable and can be shared.
type PathCalculator struct {
	g        *graph.FastGraph
	numNodes uint32

	distFwd   []uint32
	distBwd   []uint32
	parentFwd []uint32
	parentBwd []uint32
	edgeFwd   []uint32 // hierarchy edge that reached the node, noEdge for seeds
	edgeBwd   []uint32
	doneFwd   []bool
	doneBwd   []bool
	stampFwd  []uint32
	stampBwd  []uint32

	generation uint32
	heapFwd    MinHeap
	heapBwd    MinHeap
}

// NewPathCalculator creates a calculator for the given hierarchy.
func NewPathCalculator(g *graph.FastGraph) *PathCalculator {
	n := g.NumNodes
	return &PathCalculator{
		g:         g,
		numNodes:  n,
		distFwd:   make([]uint32, n),
		distBwd:   make([]uint32, n),
		parentFwd: make([]uint32, n),
		parentBwd: make([]uint32, n),
		edgeFwd:   make([]uint32, n),
		edgeBwd:   make([]uint32, n),
		doneFwd:   make([]bool, n),
		doneBwd:   make([]bool, n),
		stampFwd:  make([]uint32, n),
		stampBwd:  make([]uint32, n),
		heapFwd:   MinHeap{items: make([]PQItem, 0, 256)},
		heapBwd:   MinHeap{items: make([]PQItem, 0, 256)},
	}
}

// CalcPath computes the shortest path from source to target. It returns
// ErrUnknownNode for ids outside the graph and ErrNoRoute when target is
// unreachable from source.
func (pc *PathCalculator) CalcPath(source, target uint32) (*ShortestPath, error) {
	return pc.CalcPathMultiSourcesAndTargets(
		[]WeightedNode{{Node: source, Weight: 0}},
		[]WeightedNode{{Node: target, Weight: 0}},
	)
}

// CalcPathMultiSourcesAndTargets computes the path minimizing
// initial(s) + dist(s, t) + initial(t) over all source/target pairs.
// Ties between pairs may resolve to any optimal pair.
func (pc *PathCalculator) CalcPathMultiSourcesAndTargets(sources, targets []WeightedNode) (*ShortestPath, error) {
	if len(sources) == 0 || len(targets) == 0 {
		return nil, ErrNoRoute
	}
	for _, s := range sources {
		if s.Node >= pc.numNodes {
			return nil, ErrUnknownNode
		}
	}
	for _, t := range targets {
		if t.Node >= pc.numNodes {
			return nil, ErrUnknownNode
		}
	}

	pc.generation++
	pc.heapFwd.Reset()
	pc.heapBwd.Reset()

	mu := uint32(math.MaxUint32)
	meetingNode := noNode

	// A node that is both source and target is already a candidate answer
	// with no edges travelled.
	for _, s := range sources {
		for _, t := range targets {
			if s.Node == t.Node && s.Weight+t.Weight < mu {
				mu = s.Weight + t.Weight
				meetingNode = s.Node
			}
		}
	}

	for _, s := range sources {
		if s.Weight < pc.weightFwd(s.Node) {
			pc.updateFwd(s.Node, s.Weight, noNode, noEdge)
			pc.heapFwd.Push(s.Node, s.Weight)
		}
	}
	for _, t := range targets {
		if t.Weight < pc.weightBwd(t.Node) {
			pc.updateBwd(t.Node, t.Weight, noNode, noEdge)
			pc.heapBwd.Push(t.Node, t.Weight)
		}
	}

	for {
		fwdDone := pc.heapFwd.Len() == 0 || pc.heapFwd.PeekDist() >= mu
		bwdDone := pc.heapBwd.Len() == 0 || pc.heapBwd.PeekDist() >= mu
		if fwdDone && bwdDone {
			break
		}

		if !fwdDone {
			cur := pc.heapFwd.Pop()
			if !pc.settledFwd(cur.Node) && cur.Dist <= pc.weightFwd(cur.Node) && !pc.stallableFwd(cur) {
				pc.doneFwd[cur.Node] = true
				g := pc.g
				for e := g.BeginOut(cur.Node); e < g.EndOut(cur.Node); e++ {
					adj := g.FwdAdj[e]
					weight := cur.Dist + g.FwdWeight[e]
					if weight < pc.weightFwd(adj) {
						pc.updateFwd(adj, weight, cur.Node, e)
						pc.heapFwd.Push(adj, weight)
					}
				}
				if bwd := pc.weightBwd(cur.Node); bwd != math.MaxUint32 && cur.Dist+bwd < mu {
					mu = cur.Dist + bwd
					meetingNode = cur.Node
				}
			}
		}

		if !bwdDone {
			cur := pc.heapBwd.Pop()
			if !pc.settledBwd(cur.Node) && cur.Dist <= pc.weightBwd(cur.Node) && !pc.stallableBwd(cur) {
				pc.doneBwd[cur.Node] = true
				g := pc.g
				for e := g.BeginIn(cur.Node); e < g.EndIn(cur.Node); e++ {
					adj := g.BwdAdj[e]
					weight := cur.Dist + g.BwdWeight[e]
					if weight < pc.weightBwd(adj) {
						pc.updateBwd(adj, weight, cur.Node, e)
						pc.heapBwd.Push(adj, weight)
					}
				}
				if fwd := pc.weightFwd(cur.Node); fwd != math.MaxUint32 && cur.Dist+fwd < mu {
					mu = cur.Dist + fwd
					meetingNode = cur.Node
				}
			}
		}
	}

	if meetingNode == noNode {
		return nil, ErrNoRoute
	}
	nodes := pc.extractNodes(meetingNode)
	return &ShortestPath{
		Source: nodes[0],
		Target: nodes[len(nodes)-1],
		Weight: mu,
		Nodes:  nodes,
	}, nil
}

// stallableFwd reports whether the forward search can skip expanding cur:
// if some already reached in-neighbor proves a shorter way to cur, the
// tentative distance is not the true upward distance and relaxing from
// here cannot contribute to a shortest path.
func (pc *PathCalculator) stallableFwd(cur PQItem) bool {
	g := pc.g
	for e := g.BeginIn(cur.Node); e < g.EndIn(cur.Node); e++ {
		adjWeight := pc.weightFwd(g.BwdAdj[e])
		if adjWeight == math.MaxUint32 {
			continue
		}
		if adjWeight+g.BwdWeight[e] < cur.Dist {
			return true
		}
	}
	return false
}

func (pc *PathCalculator) stallableBwd(cur PQItem) bool {
	g := pc.g
	for e := g.BeginOut(cur.Node); e < g.EndOut(cur.Node); e++ {
		adjWeight := pc.weightBwd(g.FwdAdj[e])
		if adjWeight == math.MaxUint32 {
			continue
		}
		if adjWeight+g.FwdWeight[e] < cur.Dist {
			return true
		}
	}
	return false
}

// extractNodes walks the parent pointers of both searches away from the
// meeting node and unpacks every hierarchy edge into its original nodes.
func (pc *PathCalculator) extractNodes(meetingNode uint32) []uint32 {
	var nodes []uint32

	node := meetingNode
	for pc.edgeFwd[node] != noEdge {
		pc.unpackFwd(&nodes, pc.edgeFwd[node], true)
		node = pc.parentFwd[node]
	}
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}

	node = meetingNode
	for pc.edgeBwd[node] != noEdge {
		pc.unpackBwd(&nodes, pc.edgeBwd[node], false)
		node = pc.parentBwd[node]
	}
	nodes = append(nodes, node)
	return nodes
}

// unpackFwd appends the original nodes represented by a forward hierarchy
// edge, excluding the edge's head. With reverse set the nodes come out in
// reverse travel order, for the forward half of the path which is walked
// from the meeting node back to the source.
func (pc *PathCalculator) unpackFwd(nodes *[]uint32, e uint32, reverse bool) {
	g := pc.g
	if !g.IsShortcutFwd(e) {
		*nodes = append(*nodes, g.FwdBase[e])
		return
	}
	if reverse {
		pc.unpackFwd(nodes, g.FwdReplacedOut[e], reverse)
		pc.unpackBwd(nodes, g.FwdReplacedIn[e], reverse)
	} else {
		pc.unpackBwd(nodes, g.FwdReplacedIn[e], reverse)
		pc.unpackFwd(nodes, g.FwdReplacedOut[e], reverse)
	}
}

func (pc *PathCalculator) unpackBwd(nodes *[]uint32, e uint32, reverse bool) {
	g := pc.g
	if !g.IsShortcutBwd(e) {
		*nodes = append(*nodes, g.BwdAdj[e])
		return
	}
	if reverse {
		pc.unpackFwd(nodes, g.BwdReplacedOut[e], reverse)
		pc.unpackBwd(nodes, g.BwdReplacedIn[e], reverse)
	} else {
		pc.unpackBwd(nodes, g.BwdReplacedIn[e], reverse)
		pc.unpackFwd(nodes, g.BwdReplacedOut[e], reverse)
	}
}

func (pc *PathCalculator) updateFwd(node, weight, parent, edge uint32) {
	if pc.stampFwd[node] != pc.generation {
		pc.stampFwd[node] = pc.generation
		pc.doneFwd[node] = false
	}
	pc.distFwd[node] = weight
	pc.parentFwd[node] = parent
	pc.edgeFwd[node] = edge
}

func (pc *PathCalculator) updateBwd(node, weight, parent, edge uint32) {
	if pc.stampBwd[node] != pc.generation {
		pc.stampBwd[node] = pc.generation
		pc.doneBwd[node] = false
	}
	pc.distBwd[node] = weight
	pc.parentBwd[node] = parent
	pc.edgeBwd[node] = edge
}

func (pc *PathCalculator) settledFwd(node uint32) bool {
	return pc.stampFwd[node] == pc.generation && pc.doneFwd[node]
}

func (pc *PathCalculator) settledBwd(node uint32) bool {
	return pc.stampBwd[node] == pc.generation && pc.doneBwd[node]
}

func (pc *PathCalculator) weightFwd(node uint32) uint32 {
	if pc.stampFwd[node] != pc.generation {
		return math.MaxUint32
	}
	return pc.distFwd[node]
}

func (pc *PathCalculator) weightBwd(node uint32) uint32 {
	if pc.stampBwd[node] != pc.generation {
		return math.MaxUint32
	}
	return pc.distBwd[node]
}

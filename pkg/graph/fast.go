package graph

// FastGraph holds the output of contraction hierarchies preprocessing.
//
// Edges are grouped by the rank of their base node (the contraction order
// position), so the edge ranges of a node are found through Rank. The
// forward arrays hold the upward out-edges of each node, the backward
// arrays its upward in-edges, both captured at the moment the node was
// contracted. Base and adjacent nodes are stored as input ids.
//
// A shortcut edge carries the indices of the two edges it replaced:
// ReplacedIn always points into the backward arrays (the half arriving at
// the bypassed center node), ReplacedOut into the forward arrays (the half
// leaving it). Original edges carry NoEdge in both.
type FastGraph struct {
	NumNodes uint32
	Rank     []uint32 // input node id -> rank

	// Forward upward edges, grouped by rank of the base node.
	FwdFirstEdge   []uint32 // len: NumNodes + 1, indexed by rank
	FwdBase        []uint32
	FwdAdj         []uint32
	FwdWeight      []uint32
	FwdReplacedIn  []uint32
	FwdReplacedOut []uint32

	// Backward upward edges. FwdAdj/BwdAdj naming is from the search's
	// point of view: BwdAdj[e] is the node the backward search relaxes to,
	// i.e. the tail of the original directed edge BwdAdj[e] -> BwdBase[e].
	BwdFirstEdge   []uint32
	BwdBase        []uint32
	BwdAdj         []uint32
	BwdWeight      []uint32
	BwdReplacedIn  []uint32
	BwdReplacedOut []uint32
}

// NewFastGraph returns an empty hierarchy for the given node count.
func NewFastGraph(numNodes uint32) *FastGraph {
	return &FastGraph{
		NumNodes:     numNodes,
		Rank:         make([]uint32, numNodes),
		FwdFirstEdge: make([]uint32, numNodes+1),
		BwdFirstEdge: make([]uint32, numNodes+1),
	}
}

func (g *FastGraph) NumOutEdges() uint32 { return uint32(len(g.FwdAdj)) }
func (g *FastGraph) NumInEdges() uint32  { return uint32(len(g.BwdAdj)) }

// BeginOut and EndOut bound the forward upward edge range of node u.
func (g *FastGraph) BeginOut(u uint32) uint32 { return g.FwdFirstEdge[g.Rank[u]] }
func (g *FastGraph) EndOut(u uint32) uint32   { return g.FwdFirstEdge[g.Rank[u]+1] }

// BeginIn and EndIn bound the backward upward edge range of node u.
func (g *FastGraph) BeginIn(u uint32) uint32 { return g.BwdFirstEdge[g.Rank[u]] }
func (g *FastGraph) EndIn(u uint32) uint32   { return g.BwdFirstEdge[g.Rank[u]+1] }

func (g *FastGraph) IsShortcutFwd(e uint32) bool { return g.FwdReplacedIn[e] != NoEdge }
func (g *FastGraph) IsShortcutBwd(e uint32) bool { return g.BwdReplacedIn[e] != NoEdge }

// NodeOrdering returns the contraction order: the node id at each rank.
// The result can be fed back into a later preparation of a graph with the
// same topology but different weights.
func (g *FastGraph) NodeOrdering() []uint32 {
	order := make([]uint32, len(g.Rank))
	for node, rank := range g.Rank {
		order[rank] = uint32(node)
	}
	return order
}

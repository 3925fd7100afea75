package ch

// shortcut is an edge to be added when a node is contracted.
type shortcut struct {
	from   uint32
	to     uint32
	center uint32
	weight uint32
}

// handleShortcuts finds the shortcuts required to remove node from the
// graph without changing any shortest path, and passes each one to fn.
//
// For every live pair (u, w) of an incoming neighbor u and an outgoing
// neighbor w, a shortcut of weight d = weight(u,node) + weight(node,w) is
// required unless a witness path u->w of weight <= d exists that does not
// run through node.
func handleShortcuts(g *prepGraph, ws *witnessSearch, node uint32, fn func(shortcut)) {
	for _, in := range g.in[node] {
		if g.contracted[in.adj] {
			continue
		}
		ws.init(in.adj, node)
		for _, out := range g.out[node] {
			if g.contracted[out.adj] || out.adj == in.adj {
				continue
			}
			weight := in.weight + out.weight
			best := ws.findMaxWeight(g, out.adj, weight)
			if best > weight {
				fn(shortcut{from: in.adj, to: out.adj, center: node, weight: weight})
			}
		}
	}
}

// contractNode inserts the required shortcuts and disconnects node.
func contractNode(g *prepGraph, ws *witnessSearch, node uint32) {
	handleShortcuts(g, ws, node, func(sc shortcut) {
		g.addOrReduce(sc.from, sc.to, sc.weight, sc.center)
	})
	g.disconnect(node)
}

// countShortcuts runs a simulated contraction: identical to contractNode
// but nothing is inserted and the node stays connected.
func countShortcuts(g *prepGraph, ws *witnessSearch, node uint32) int {
	n := 0
	handleShortcuts(g, ws, node, func(shortcut) { n++ })
	return n
}

// calcPriority scores a contraction candidate (lower = contract first).
// Edge difference favors nodes whose removal shrinks the graph, depth and
// contracted-neighbors spread contractions spatially.
func calcPriority(g *prepGraph, ws *witnessSearch, params *Params, node uint32, depth, contractedNeighbors int) float64 {
	edgeDifference := countShortcuts(g, ws, node) - g.liveDegree(node)
	return params.EdgeDifferenceFactor*float64(edgeDifference) +
		params.DepthFactor*float64(depth) +
		params.ContractedNeighborsFactor*float64(contractedNeighbors)
}

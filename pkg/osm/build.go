package osm

import (
	"github.com/paulmach/osm"

	"fastroute/pkg/graph"
)

// BuildGraph converts parsed OSM edges into an unfrozen input graph with
// densely numbered nodes, plus per-node coordinates aligned to the new ids.
func BuildGraph(result *ParseResult) (*graph.InputGraph, []float64, []float64) {
	nodeSet := make(map[osm.NodeID]uint32)
	var nodeIDs []osm.NodeID

	addNode := func(id osm.NodeID) uint32 {
		if idx, ok := nodeSet[id]; ok {
			return idx
		}
		idx := uint32(len(nodeIDs))
		nodeSet[id] = idx
		nodeIDs = append(nodeIDs, id)
		return idx
	}

	g := graph.NewInputGraph()
	for _, e := range result.Edges {
		g.AddEdge(addNode(e.From), addNode(e.To), e.WeightMM)
	}

	lat := make([]float64, len(nodeIDs))
	lon := make([]float64, len(nodeIDs))
	for id, idx := range nodeSet {
		lat[idx] = result.NodeLat[id]
		lon[idx] = result.NodeLon[id]
	}

	return g, lat, lon
}

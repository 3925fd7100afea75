// Package fastroute computes exact shortest paths on directed weighted
// graphs using contraction hierarchies. Graphs are prepared once, which
// takes a while, and queried many times, which is orders of magnitude
// faster than plain Dijkstra.
//
// Basic usage:
//
//	g := graph.NewInputGraph()
//	g.AddEdge(0, 1, 3)
//	g.AddEdge(1, 2, 4)
//	g.Freeze()
//	fg := fastroute.Prepare(g)
//	p, err := fastroute.CalcPath(fg, 0, 2)
package fastroute

import (
	"fastroute/pkg/ch"
	"fastroute/pkg/graph"
	"fastroute/pkg/routing"
)

// Prepare builds a contraction hierarchy for the frozen input graph using
// the default parameters.
func Prepare(g *graph.InputGraph) *graph.FastGraph {
	return ch.Prepare(g, nil)
}

// PrepareWithParams builds a contraction hierarchy with custom parameters.
func PrepareWithParams(g *graph.InputGraph, params *ch.Params) *graph.FastGraph {
	return ch.Prepare(g, params)
}

// PrepareWithOrder builds a contraction hierarchy contracting nodes in the
// given order, typically the ordering of a previous preparation obtained
// from GetNodeOrdering. Returns ch.ErrBadOrder if order is not a
// permutation of the graph's nodes.
func PrepareWithOrder(g *graph.InputGraph, order []uint32) (*graph.FastGraph, error) {
	return ch.PrepareWithOrder(g, order, nil)
}

// PrepareWithOrderAndParams is PrepareWithOrder with custom parameters.
func PrepareWithOrderAndParams(g *graph.InputGraph, order []uint32, params *ch.Params) (*graph.FastGraph, error) {
	return ch.PrepareWithOrder(g, order, params)
}

// CalcPath computes the shortest path between two nodes. It allocates a
// fresh calculator per call; for repeated queries use CreateCalculator.
func CalcPath(fg *graph.FastGraph, source, target uint32) (*routing.ShortestPath, error) {
	return routing.NewPathCalculator(fg).CalcPath(source, target)
}

// CalcPathMultiSourcesAndTargets computes the best path over all given
// source/target pairs, including the per-endpoint initial weights.
func CalcPathMultiSourcesAndTargets(fg *graph.FastGraph, sources, targets []routing.WeightedNode) (*routing.ShortestPath, error) {
	return routing.NewPathCalculator(fg).CalcPathMultiSourcesAndTargets(sources, targets)
}

// CreateCalculator returns a reusable query engine for the hierarchy. A
// calculator is not safe for concurrent use; create one per goroutine.
func CreateCalculator(fg *graph.FastGraph) *routing.PathCalculator {
	return routing.NewPathCalculator(fg)
}

// GetNodeOrdering returns the contraction order of a prepared hierarchy.
func GetNodeOrdering(fg *graph.FastGraph) []uint32 {
	return fg.NodeOrdering()
}

// SaveToDisk writes a prepared hierarchy to path atomically.
func SaveToDisk(fg *graph.FastGraph, path string) error {
	return graph.SaveFastGraph(fg, path)
}

// LoadFromDisk reads a hierarchy previously written by SaveToDisk.
func LoadFromDisk(path string) (*graph.FastGraph, error) {
	return graph.LoadFastGraph(path)
}

package routing

import (
	"context"
	"math"
	"sync"

	"fastroute/pkg/graph"
)

// LatLng represents a geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// Segment represents a road segment in the route result.
type Segment struct {
	DistanceMeters float64
	Geometry       []LatLng
}

// RouteResult is the output of a route query.
type RouteResult struct {
	TotalDistanceMeters float64
	Segments            []Segment
}

// Router is the interface for route queries.
type Router interface {
	Route(ctx context.Context, start, end LatLng) (*RouteResult, error)
}

// Network bundles a prepared hierarchy with the node coordinates and
// original edges needed for snapping and geometry. Edge weights are
// millimeters, matching what the importer produces.
type Network struct {
	Fast  *graph.FastGraph
	Lat   []float64
	Lon   []float64
	Edges []graph.Edge
}

// LoadNetwork reads a network previously written by Save.
func LoadNetwork(path string) (*Network, error) {
	fg, lat, lon, edges, err := graph.LoadRoadNetwork(path)
	if err != nil {
		return nil, err
	}
	return &Network{Fast: fg, Lat: lat, Lon: lon, Edges: edges}, nil
}

// Save writes the network to path atomically.
func (n *Network) Save(path string) error {
	return graph.SaveRoadNetwork(path, n.Fast, n.Lat, n.Lon, n.Edges)
}

// Engine implements Router on a prepared network. It is safe for
// concurrent use; per-query scratch state is pooled.
type Engine struct {
	net     *Network
	snapper *Snapper
	calcs   sync.Pool
}

// NewEngine creates a routing engine from a prepared network.
func NewEngine(net *Network) *Engine {
	e := &Engine{
		net:     net,
		snapper: NewSnapper(net.Edges, net.Lat, net.Lon),
	}
	e.calcs.New = func() any { return NewPathCalculator(net.Fast) }
	return e
}

// Route computes the shortest path between two points. Both points are
// snapped to the nearest road segment first, and the search starts from
// both endpoints of each snapped edge with the edge weight split by the
// projection ratio.
func (e *Engine) Route(ctx context.Context, start, end LatLng) (*RouteResult, error) {
	startSnap, err := e.snapper.Snap(start.Lat, start.Lng)
	if err != nil {
		return nil, err
	}
	endSnap, err := e.snapper.Snap(end.Lat, end.Lng)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	calc := e.calcs.Get().(*PathCalculator)
	defer e.calcs.Put(calc)

	p, err := calc.CalcPathMultiSourcesAndTargets(
		seedNodes(e.net, startSnap),
		seedNodes(e.net, endSnap),
	)
	if err != nil {
		return nil, err
	}

	totalDistMeters := float64(p.Weight) / 1000.0
	return &RouteResult{
		TotalDistanceMeters: totalDistMeters,
		Segments: []Segment{
			{
				DistanceMeters: totalDistMeters,
				Geometry:       e.buildGeometry(p.Nodes),
			},
		},
	}, nil
}

// seedNodes turns a snapped point into weighted search endpoints. The snap
// point sits partway along a directed edge, so both endpoints are seeded
// with the edge weight split by the projection ratio.
func seedNodes(net *Network, snap SnapResult) []WeightedNode {
	weight := float64(net.Edges[snap.EdgeIdx].Weight)
	return []WeightedNode{
		{Node: snap.NodeU, Weight: uint32(math.Round(weight * snap.Ratio))},
		{Node: snap.NodeV, Weight: uint32(math.Round(weight * (1 - snap.Ratio)))},
	}
}

// buildGeometry converts a node sequence into lat/lng coordinates.
func (e *Engine) buildGeometry(nodes []uint32) []LatLng {
	geom := make([]LatLng, len(nodes))
	for i, n := range nodes {
		geom[i] = LatLng{Lat: e.net.Lat[n], Lng: e.net.Lon[n]}
	}
	return geom
}

package routing

import (
	"errors"
	"math"

	"github.com/tidwall/rtree"

	"fastroute/pkg/geo"
	"fastroute/pkg/graph"
)

const maxSnapDistMeters = 500.0

// ErrPointTooFar is returned when the query point is too far from any road.
var ErrPointTooFar = errors.New("point too far from road")

// SnapResult represents a point snapped to a road segment.
type SnapResult struct {
	EdgeIdx uint32  // index into the network's edge slice
	NodeU   uint32  // source node of the edge
	NodeV   uint32  // target node of the edge
	Ratio   float64 // 0.0 = at NodeU, 1.0 = at NodeV
	Dist    float64 // distance in meters from query point to snapped point
}

// degToMeters converts degree distances to meters at the equator. Longitude
// degrees shrink with latitude, so this is an upper bound on real distance,
// which makes it safe for pruning lower bounds.
const degToMeters = math.Pi / 180 * 6_371_000.0

// Snapper provides nearest-road snapping using an R-tree over edge segment
// bounding boxes. Candidates come out in ascending box distance, so the scan
// can stop as soon as the lower bound exceeds the best exact distance found.
type Snapper struct {
	tr    rtree.RTreeG[uint32]
	edges []graph.Edge
	lat   []float64
	lon   []float64
}

// NewSnapper builds the spatial index from the network's original edges.
func NewSnapper(edges []graph.Edge, lat, lon []float64) *Snapper {
	s := &Snapper{edges: edges, lat: lat, lon: lon}
	for i, e := range edges {
		uLat, uLon := lat[e.From], lon[e.From]
		vLat, vLon := lat[e.To], lon[e.To]
		s.tr.Insert(
			[2]float64{math.Min(uLon, vLon), math.Min(uLat, vLat)},
			[2]float64{math.Max(uLon, vLon), math.Max(uLat, vLat)},
			uint32(i),
		)
	}
	return s
}

// Snap finds the nearest road segment to the given lat/lng.
func (s *Snapper) Snap(lat, lng float64) (SnapResult, error) {
	// Box distances are in raw degrees. A longitudinal degree spans
	// cos(lat) of an equatorial one, so scaling by cosLat gives a valid
	// lower bound in meters for the pruning cutoff.
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}

	bestDist := math.Inf(1)
	var bestResult SnapResult

	point := [2]float64{lng, lat}
	s.tr.Nearby(
		rtree.BoxDist[float64, uint32](point, point, nil),
		func(_, _ [2]float64, idx uint32, boxDist float64) bool {
			if boxDist*degToMeters*cosLat > math.Min(bestDist, maxSnapDistMeters) {
				return false
			}

			e := s.edges[idx]
			exactDist, ratio := geo.PointToSegmentDist(
				lat, lng,
				s.lat[e.From], s.lon[e.From],
				s.lat[e.To], s.lon[e.To],
			)
			if exactDist < bestDist {
				bestDist = exactDist
				bestResult = SnapResult{
					EdgeIdx: idx,
					NodeU:   e.From,
					NodeV:   e.To,
					Ratio:   ratio,
					Dist:    exactDist,
				}
			}
			return true
		},
	)

	if bestDist > maxSnapDistMeters {
		return SnapResult{}, ErrPointTooFar
	}

	return bestResult, nil
}

// Package osm extracts a drivable road network from OpenStreetMap PBF
// extracts. Ways are filtered to car-accessible highway types, split into
// per-segment directed edges and weighted by great-circle length.
package osm

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"fastroute/pkg/geo"
)

// WayEdge is one directed road segment between two OSM nodes. WeightMM is
// the segment length in millimeters, never zero.
type WayEdge struct {
	From     osm.NodeID
	To       osm.NodeID
	WeightMM uint32
}

// ParseResult is the extracted road network keyed by original OSM node ids.
type ParseResult struct {
	Edges   []WayEdge
	NodeLat map[osm.NodeID]float64
	NodeLon map[osm.NodeID]float64
}

// BBox filters the extract to a geographic window. The zero value means no
// filtering.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

func (b BBox) IsZero() bool {
	return b == BBox{}
}

func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// ParseOptions configures Parse.
type ParseOptions struct {
	BBox BBox
}

// drivable reports whether a way is open to ordinary car traffic.
func drivable(tags osm.Tags) bool {
	switch tags.Find("highway") {
	case "motorway", "motorway_link",
		"trunk", "trunk_link",
		"primary", "primary_link",
		"secondary", "secondary_link",
		"tertiary", "tertiary_link",
		"unclassified", "residential",
		"living_street", "service":
	default:
		return false
	}
	switch tags.Find("access") {
	case "no", "private":
		return false
	}
	if tags.Find("motor_vehicle") == "no" {
		return false
	}
	// Mapped areas (plazas, parking aprons) are not linear roads.
	return tags.Find("area") != "yes"
}

// wayDirections resolves the oneway rules for a drivable way. An explicit
// oneway tag beats the directions implied by motorways and roundabouts.
func wayDirections(tags osm.Tags) (forward, backward bool) {
	switch tags.Find("oneway") {
	case "yes", "true", "1":
		return true, false
	case "-1", "reverse":
		return false, true
	case "no":
		return true, true
	case "reversible":
		// Direction depends on the time of day. Not representable here.
		return false, false
	}

	hw := tags.Find("highway")
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		return true, false
	}
	return true, true
}

type parsedWay struct {
	nodes    []osm.NodeID
	forward  bool
	backward bool
}

// collectWays runs the first scan over the file, keeping the node sequences
// and directions of every drivable way and recording which node ids appear.
func collectWays(ctx context.Context, rs io.ReadSeeker, wanted map[osm.NodeID]struct{}) ([]parsedWay, error) {
	sc := osmpbf.New(ctx, rs, 1)
	defer sc.Close()
	sc.SkipNodes = true
	sc.SkipRelations = true

	var ways []parsedWay
	for sc.Scan() {
		w, ok := sc.Object().(*osm.Way)
		if !ok || len(w.Nodes) < 2 || !drivable(w.Tags) {
			continue
		}
		fwd, bwd := wayDirections(w.Tags)
		if !fwd && !bwd {
			continue
		}

		ids := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			ids[i] = wn.ID
			wanted[wn.ID] = struct{}{}
		}
		ways = append(ways, parsedWay{nodes: ids, forward: fwd, backward: bwd})
	}
	return ways, sc.Err()
}

// collectCoords runs the second scan, picking up coordinates for exactly
// the node ids the ways reference.
func collectCoords(ctx context.Context, rs io.ReadSeeker, wanted map[osm.NodeID]struct{}) (lat, lon map[osm.NodeID]float64, err error) {
	sc := osmpbf.New(ctx, rs, 1)
	defer sc.Close()
	sc.SkipWays = true
	sc.SkipRelations = true

	lat = make(map[osm.NodeID]float64, len(wanted))
	lon = make(map[osm.NodeID]float64, len(wanted))
	for sc.Scan() {
		n, ok := sc.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, ref := wanted[n.ID]; !ref {
			continue
		}
		lat[n.ID] = n.Lat
		lon[n.ID] = n.Lon
	}
	return lat, lon, sc.Err()
}

// Parse reads an OSM PBF extract and returns the directed car network. The
// file is scanned twice, ways first and then nodes, so the reader must
// support seeking back to the start.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ...ParseOptions) (*ParseResult, error) {
	var opt ParseOptions
	if len(opts) > 0 {
		opt = opts[0]
	}

	wanted := make(map[osm.NodeID]struct{})
	ways, err := collectWays(ctx, rs, wanted)
	if err != nil {
		return nil, fmt.Errorf("scanning ways: %w", err)
	}
	log.Printf("ways scanned: %d drivable, %d distinct nodes", len(ways), len(wanted))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding for node scan: %w", err)
	}
	lat, lon, err := collectCoords(ctx, rs, wanted)
	if err != nil {
		return nil, fmt.Errorf("scanning nodes: %w", err)
	}
	log.Printf("nodes scanned: %d coordinates", len(lat))

	res := &ParseResult{NodeLat: lat, NodeLon: lon}
	var missing, outside int
	clip := !opt.BBox.IsZero()

	for _, w := range ways {
		for i := 0; i+1 < len(w.nodes); i++ {
			from, to := w.nodes[i], w.nodes[i+1]
			fromLat, okF := lat[from]
			toLat, okT := lat[to]
			if !okF || !okT {
				missing++
				continue
			}
			fromLon, toLon := lon[from], lon[to]
			if clip && (!opt.BBox.Contains(fromLat, fromLon) || !opt.BBox.Contains(toLat, toLon)) {
				outside++
				continue
			}

			mm := uint32(math.Round(geo.Haversine(fromLat, fromLon, toLat, toLon) * 1000))
			if mm == 0 {
				mm = 1
			}
			if w.forward {
				res.Edges = append(res.Edges, WayEdge{From: from, To: to, WeightMM: mm})
			}
			if w.backward {
				res.Edges = append(res.Edges, WayEdge{From: to, To: from, WeightMM: mm})
			}
		}
	}

	if missing > 0 {
		log.Printf("dropped %d segments referencing nodes absent from the extract", missing)
	}
	if outside > 0 {
		log.Printf("dropped %d segments outside the bounding box", outside)
	}
	log.Printf("extracted %d directed edges", len(res.Edges))
	return res, nil
}

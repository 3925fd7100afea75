package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"fastroute/pkg/ch"
	"fastroute/pkg/graph"
	osmparser "fastroute/pkg/osm"
	"fastroute/pkg/routing"
)

func main() {
	input := flag.String("input", "", "Path to .osm.pbf file")
	output := flag.String("output", "network.bin", "Output binary network file path")
	bbox := flag.String("bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng")
	maxSettled := flag.Int("max-settled", 500, "Witness search settled-node budget")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Usage: preprocess --input <file.osm.pbf> [--output network.bin] [--bbox minLat,minLng,maxLat,maxLng]")
		os.Exit(1)
	}

	var opts osmparser.ParseOptions
	if *bbox != "" {
		var minLat, minLng, maxLat, maxLng float64
		_, err := fmt.Sscanf(*bbox, "%f,%f,%f,%f", &minLat, &minLng, &maxLat, &maxLng)
		if err != nil {
			log.Fatalf("Invalid bbox format (expected minLat,minLng,maxLat,maxLng): %v", err)
		}
		opts.BBox = osmparser.BBox{MinLat: minLat, MaxLat: maxLat, MinLng: minLng, MaxLng: maxLng}
		log.Printf("Using bounding box filter: lat [%.4f, %.4f], lng [%.4f, %.4f]", minLat, maxLat, minLng, maxLng)
	}

	start := time.Now()

	log.Println("Opening OSM file...")
	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open input file: %v", err)
	}
	defer f.Close()

	log.Println("Parsing OSM data...")
	parseResult, err := osmparser.Parse(context.Background(), f, opts)
	if err != nil {
		log.Fatalf("Failed to parse OSM data: %v", err)
	}
	log.Printf("Parsed %d edges, %d nodes", len(parseResult.Edges), len(parseResult.NodeLat))

	log.Println("Building graph...")
	g, lat, lon := osmparser.BuildGraph(parseResult)
	log.Printf("Graph: %d nodes, %d edges", g.NumNodes(), g.NumEdges())

	log.Println("Extracting largest connected component...")
	componentNodes := graph.LargestComponent(g)
	log.Printf("Largest component: %d nodes (%.1f%%)", len(componentNodes), float64(len(componentNodes))/float64(g.NumNodes())*100)
	g, _ = graph.FilterToComponent(g, componentNodes)
	compLat := make([]float64, len(componentNodes))
	compLon := make([]float64, len(componentNodes))
	for newIdx, oldIdx := range componentNodes {
		compLat[newIdx] = lat[oldIdx]
		compLon[newIdx] = lon[oldIdx]
	}
	log.Printf("Filtered graph: %d nodes, %d edges", g.NumNodes(), g.NumEdges())

	log.Println("Building contraction hierarchy...")
	g.Freeze()
	params := ch.DefaultParams()
	params.MaxSettledNodes = *maxSettled
	fg := ch.Prepare(g, params)
	log.Printf("Hierarchy complete: %d fwd edges, %d bwd edges", fg.NumOutEdges(), fg.NumInEdges())

	log.Printf("Writing binary to %s...", *output)
	net := &routing.Network{Fast: fg, Lat: compLat, Lon: compLon, Edges: g.Edges()}
	if err := net.Save(*output); err != nil {
		log.Fatalf("Failed to write binary: %v", err)
	}

	info, _ := os.Stat(*output)
	elapsed := time.Since(start)
	log.Printf("Done in %s. Output: %s (%.1f MB)", elapsed.Round(time.Second), *output, float64(info.Size())/(1024*1024))
}

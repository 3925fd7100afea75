package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"fastroute/pkg/api"
	"fastroute/pkg/routing"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (overrides other flags)")
	graphPath := flag.String("graph", "network.bin", "Path to preprocessed network binary")
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	flag.Parse()

	cfg := api.DefaultConfig(fmt.Sprintf(":%d", *port))
	cfg.CORSOrigin = *corsOrigin
	netPath := *graphPath

	if *configPath != "" {
		fileCfg, err := api.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = fileCfg.ServerConfig()
		if fileCfg.GraphFile != "" {
			netPath = fileCfg.GraphFile
		}
	}

	start := time.Now()

	log.Printf("Loading network from %s...", netPath)
	net, err := routing.LoadNetwork(netPath)
	if err != nil {
		log.Fatalf("Failed to load network: %v", err)
	}
	log.Printf("Loaded: %d nodes, %d fwd edges, %d bwd edges",
		net.Fast.NumNodes, net.Fast.NumOutEdges(), net.Fast.NumInEdges())

	log.Println("Building R-tree spatial index...")
	engine := routing.NewEngine(net)

	loadTime := time.Since(start)
	log.Printf("Ready in %s", loadTime.Round(time.Millisecond))

	stats := api.StatsResponse{
		NumNodes:    net.Fast.NumNodes,
		NumFwdEdges: int(net.Fast.NumOutEdges()),
		NumBwdEdges: int(net.Fast.NumInEdges()),
	}

	handlers := api.NewHandlers(engine, stats)
	srv := api.NewServer(cfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}

package main

import (
	"flag"
	"log"
	"math/rand"
	"sort"
	"time"

	"fastroute"
	"fastroute/pkg/graph"
)

func main() {
	input := flag.String("graph", "network.bin", "Path to prepared hierarchy binary")
	numQueries := flag.Int("n", 10000, "Number of random queries to run")
	seed := flag.Int64("seed", 1, "Random seed for query endpoints")
	flag.Parse()

	log.Printf("Loading hierarchy from %s...", *input)
	start := time.Now()
	fg, err := graph.LoadFastGraph(*input)
	if err != nil {
		log.Fatalf("Failed to load hierarchy: %v", err)
	}
	log.Printf("Loaded %d nodes, %d fwd edges, %d bwd edges in %s",
		fg.NumNodes, fg.NumOutEdges(), fg.NumInEdges(), time.Since(start).Round(time.Millisecond))

	rng := rand.New(rand.NewSource(*seed))
	calc := fastroute.CreateCalculator(fg)

	durations := make([]time.Duration, 0, *numQueries)
	var noRoutes int
	var checksum uint64

	total := time.Now()
	for i := 0; i < *numQueries; i++ {
		source := rng.Uint32() % fg.NumNodes
		target := rng.Uint32() % fg.NumNodes

		qStart := time.Now()
		p, err := calc.CalcPath(source, target)
		durations = append(durations, time.Since(qStart))

		if err != nil {
			noRoutes++
			continue
		}
		checksum += uint64(p.Weight)
	}
	elapsed := time.Since(total)

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	log.Printf("%d queries in %s (%.0f queries/sec), %d without route, weight checksum %d",
		*numQueries, elapsed.Round(time.Millisecond),
		float64(*numQueries)/elapsed.Seconds(), noRoutes, checksum)
	log.Printf("latency p50=%s p95=%s p99=%s max=%s",
		percentile(durations, 50), percentile(durations, 95),
		percentile(durations, 99), durations[len(durations)-1])
}

func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := len(sorted) * p / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

package ch

import (
	"fmt"

	"fastroute/pkg/graph"
)

// arc is an entry in the mutable adjacency lists used during contraction.
// center is graph.NoNode for original edges, else the contracted node the
// arc bypasses.
type arc struct {
	adj    uint32
	weight uint32
	center uint32
}

// prepGraph is the adjacency representation the contractor works on. Arcs
// whose adjacent node has been contracted are tombstones: they stay in the
// slices and are skipped by checking the contracted flag. Live arc counts
// per node are maintained so degree queries stay O(1).
type prepGraph struct {
	out        [][]arc
	in         [][]arc
	contracted []bool
	liveOut    []uint32
	liveIn     []uint32
}

func newPrepGraph(numNodes uint32) *prepGraph {
	return &prepGraph{
		out:        make([][]arc, numNodes),
		in:         make([][]arc, numNodes),
		contracted: make([]bool, numNodes),
		liveOut:    make([]uint32, numNodes),
		liveIn:     make([]uint32, numNodes),
	}
}

// prepGraphFromInput builds the preparation graph from a frozen input graph.
func prepGraphFromInput(g *graph.InputGraph) *prepGraph {
	if !g.IsFrozen() {
		panic("input graph must be frozen before preparation")
	}
	pg := newPrepGraph(g.NumNodes())
	for _, e := range g.Edges() {
		pg.addArc(e.From, e.To, e.Weight, graph.NoNode)
	}
	return pg
}

func (pg *prepGraph) numNodes() uint32 { return uint32(len(pg.out)) }

func (pg *prepGraph) addArc(from, to, weight, center uint32) {
	if to >= pg.numNodes() {
		panic(fmt.Sprintf("invalid node id %d, graph has %d nodes", to, pg.numNodes()))
	}
	pg.out[from] = append(pg.out[from], arc{adj: to, weight: weight, center: center})
	pg.in[to] = append(pg.in[to], arc{adj: from, weight: weight, center: center})
	pg.liveOut[from]++
	pg.liveIn[to]++
}

// addOrReduce inserts a shortcut from->to, or lowers the weight of the
// existing live arc if one is already present with a higher weight.
func (pg *prepGraph) addOrReduce(from, to, weight, center uint32) {
	for i := range pg.out[from] {
		e := &pg.out[from][i]
		if e.adj != to || pg.contracted[e.adj] {
			continue
		}
		if e.weight <= weight {
			return
		}
		e.weight = weight
		e.center = center
		for j := range pg.in[to] {
			r := &pg.in[to][j]
			if r.adj == from && !pg.contracted[r.adj] {
				r.weight = weight
				r.center = center
			}
		}
		return
	}
	pg.addArc(from, to, weight, center)
}

// disconnect logically removes a node: it is flagged contracted and the
// live counts of its neighbors are adjusted. The tombstoned arcs remain in
// the adjacency slices.
func (pg *prepGraph) disconnect(node uint32) {
	for _, e := range pg.out[node] {
		if !pg.contracted[e.adj] {
			pg.liveIn[e.adj]--
		}
	}
	for _, e := range pg.in[node] {
		if !pg.contracted[e.adj] {
			pg.liveOut[e.adj]--
		}
	}
	pg.liveOut[node] = 0
	pg.liveIn[node] = 0
	pg.contracted[node] = true
}

// liveDegree returns the number of live incident arcs (in + out).
func (pg *prepGraph) liveDegree(node uint32) int {
	return int(pg.liveIn[node]) + int(pg.liveOut[node])
}

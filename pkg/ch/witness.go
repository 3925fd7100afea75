package ch

const maxUint32 = ^uint32(0)

// witnessHeapItem is an entry in the witness search min-heap.
type witnessHeapItem struct {
	node uint32
	dist uint32
}

// witnessHeap is a concrete-typed binary min-heap for witness search.
type witnessHeap struct {
	items []witnessHeapItem
}

func (h *witnessHeap) Len() int { return len(h.items) }

func (h *witnessHeap) PeekDist() uint32 { return h.items[0].dist }

func (h *witnessHeap) Push(node uint32, dist uint32) {
	h.items = append(h.items, witnessHeapItem{node, dist})
	h.siftUp(len(h.items) - 1)
}

func (h *witnessHeap) Pop() witnessHeapItem {
	top := h.items[0]
	n := len(h.items) - 1
	h.items[0] = h.items[n]
	h.items = h.items[:n]
	if n > 0 {
		h.siftDown(0)
	}
	return top
}

// siftUp uses hole-sift: saves the floating item and does 1 assignment per
// level instead of 3 (swap).
func (h *witnessHeap) siftUp(i int) {
	item := h.items[i]
	for i > 0 {
		parent := (i - 1) / 2
		if item.dist >= h.items[parent].dist {
			break
		}
		h.items[i] = h.items[parent]
		i = parent
	}
	h.items[i] = item
}

// siftDown uses hole-sift: saves the floating item and does 1 assignment per
// level instead of 3 (swap).
func (h *witnessHeap) siftDown(i int) {
	n := len(h.items)
	item := h.items[i]
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && h.items[right].dist < h.items[child].dist {
			child = right
		}
		if item.dist <= h.items[child].dist {
			break
		}
		h.items[i] = h.items[child]
		i = child
	}
	h.items[i] = item
}

func (h *witnessHeap) Reset() {
	h.items = h.items[:0]
}

// witnessSearch is a bounded Dijkstra over the preparation graph that never
// relaxes through the node being contracted. It is initialized once per
// incoming neighbor and then queried per outgoing neighbor; queries resume
// the search from its heap instead of restarting, so targets that were
// already settled are answered in O(1).
//
// Scratch arrays are tagged with a generation stamp so initialization does
// not require an O(N) clear.
type witnessSearch struct {
	maxSettled int

	avoid   uint32
	source  uint32
	settled int

	dist       []uint32
	stamp      []uint32
	done       []bool
	generation uint32
	heap       witnessHeap
}

func newWitnessSearch(numNodes uint32, maxSettled int) *witnessSearch {
	return &witnessSearch{
		maxSettled: maxSettled,
		avoid:      maxUint32,
		dist:       make([]uint32, numNodes),
		stamp:      make([]uint32, numNodes),
		done:       make([]bool, numNodes),
		heap:       witnessHeap{items: make([]witnessHeapItem, 0, 256)},
	}
}

func (ws *witnessSearch) init(source, avoid uint32) {
	ws.generation++
	ws.source = source
	ws.avoid = avoid
	ws.settled = 0
	ws.heap.Reset()
	ws.setDist(source, 0)
	ws.heap.Push(source, 0)
}

func (ws *witnessSearch) setDist(node, dist uint32) {
	if ws.stamp[node] != ws.generation {
		ws.stamp[node] = ws.generation
		ws.done[node] = false
	}
	ws.dist[node] = dist
}

func (ws *witnessSearch) getDist(node uint32) uint32 {
	if ws.stamp[node] != ws.generation {
		return maxUint32
	}
	return ws.dist[node]
}

func (ws *witnessSearch) isSettled(node uint32) bool {
	return ws.stamp[node] == ws.generation && ws.done[node]
}

// findMaxWeight resumes the search until target is settled, the heap runs
// dry, the next entry exceeds limit, or the settled-node budget is spent.
// It returns the best known distance to target, maxUint32 if unreached.
// A budget-bounded answer may overestimate the true distance, which makes
// the caller keep a shortcut it might not have needed. That only costs
// space, never correctness.
func (ws *witnessSearch) findMaxWeight(g *prepGraph, target, limit uint32) uint32 {
	if ws.isSettled(target) {
		return ws.getDist(target)
	}
	for ws.heap.Len() > 0 && ws.settled < ws.maxSettled {
		if ws.heap.PeekDist() > limit {
			break
		}
		cur := ws.heap.Pop()

		// Skip stale entries.
		if cur.dist > ws.getDist(cur.node) || ws.isSettled(cur.node) {
			continue
		}
		ws.done[cur.node] = true
		ws.settled++

		for _, e := range g.out[cur.node] {
			if e.adj == ws.avoid || g.contracted[e.adj] {
				continue
			}
			newDist := cur.dist + e.weight
			if newDist < ws.getDist(e.adj) {
				ws.setDist(e.adj, newDist)
				ws.heap.Push(e.adj, newDist)
			}
		}

		if cur.node == target {
			return cur.dist
		}
	}
	return ws.getDist(target)
}

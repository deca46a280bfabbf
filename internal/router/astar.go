// astar.go holds the A* search's node type and its priority queue. State
// lives entirely in this per-findPath-call struct, never in package-level
// scratch, matching §9's design note that per-search scratch should be
// owned by the search driver rather than kept as hidden global mutable
// state.
package router

import (
	"container/heap"

	"FPGARouter/internal/device"
)

// aStarNode is one state in the A* frontier: the tile it sits in and the
// wire it entered that tile on, plus the cost-so-far and heuristic that
// together form its priority (§4.6's AStarNode).
type aStarNode struct {
	x, y     int
	tileType uint32
	cost     float64
	heuristic float64
	wireIn   device.StringIdx
}

func (n *aStarNode) priority() float64 { return n.cost + n.heuristic }

// nodeHeap is a container/heap priority queue over *aStarNode, ascending
// by cost+heuristic. Ties break by insertion order is not strictly
// enforced (container/heap doesn't guarantee FIFO among equal keys), which
// the spec explicitly allows: "the exact discipline is irrelevant as long
// as a vertex may be re-enqueued upon improvement."
type nodeHeap []*aStarNode

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].priority() < h[j].priority() }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)         { *h = append(*h, x.(*aStarNode)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

var _ heap.Interface = (*nodeHeap)(nil)

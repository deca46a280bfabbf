// Package pipgraph implements C2, the per-tile-type switch-box graph: a
// directed graph of PIP-connected wires with the costed search
// (FindOutputs) the A* router calls once per pop on its hot path, plus
// uncosted BFS queries (FindOutputsPlain/FindInputs). The pre-routed
// fan-in/out builder (C4) does not call the BFS queries; it single-steps
// with ForwardNeighbors/ReverseNeighbors.
package pipgraph

import (
	"FPGARouter/internal/device"
	"FPGARouter/internal/resource"
)

// VertexID is a dense, per-type index into a Graph's wire list — what §9's
// design notes call the wire-graph index, distinct from the wire's global
// StringIdx.
type VertexID int32

// Found is one entry of the result FindOutputs returns: a reachable output
// vertex and the cost to reach it. The plain BFS variants return bare
// VertexIDs instead.
type Found struct {
	Cost   float64
	Vertex VertexID
}

// Graph is G_t, the switch-box graph for one tile type.
type Graph struct {
	wire2Idx map[device.StringIdx]VertexID
	idx2wire []device.StringIdx
	isOutput []bool
	adj      [][]VertexID
	adjRev   [][]VertexID

	// WireResourcesDefault is the type's default resource vector, cloned
	// per concrete tile on first touch by resource.Tables.Get.
	WireResourcesDefault resource.Table
}

// Builder accumulates PIP edges for one tile type before Build finalizes
// the dense vertex numbering. Splitting construction out of Graph mirrors
// the original core's addEdge/loadFromFile split: edges arrive in
// declaration order, vertex ids are assigned on first sight.
type Builder struct {
	wire2Idx map[device.StringIdx]VertexID
	idx2wire []device.StringIdx
	adj      [][]VertexID
	adjRev   [][]VertexID
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{wire2Idx: make(map[device.StringIdx]VertexID)}
}

func (b *Builder) internVertex(w device.StringIdx) VertexID {
	if idx, ok := b.wire2Idx[w]; ok {
		return idx
	}
	idx := VertexID(len(b.idx2wire))
	b.wire2Idx[w] = idx
	b.idx2wire = append(b.idx2wire, w)
	b.adj = append(b.adj, nil)
	b.adjRev = append(b.adjRev, nil)
	return idx
}

// AddEdge records a routable PIP u->v (both global wire-name indices).
func (b *Builder) AddEdge(u, v device.StringIdx) {
	uIdx := b.internVertex(u)
	vIdx := b.internVertex(v)
	b.adj[uIdx] = append(b.adj[uIdx], vIdx)
	b.adjRev[vIdx] = append(b.adjRev[vIdx], uIdx)
}

// Build finalizes the graph. outputWires flags which wires (by global
// StringIdx) are exits from the tile (§3's isOutput); sinkWires marks
// which of those should start out forbidden (presentCost=-1) since, per
// §4.6, sinks stay forbidden except while the router is actively
// searching for them. forbidden additionally forces presentCost=-1 on
// any vertex present regardless of whether it's a sink — used for the
// BYPASS/BOUNCE_ rule inside INT tiles (§3).
func (b *Builder) Build(outputWires, sinkWires, forbidden map[device.StringIdx]struct{}) *Graph {
	g := &Graph{
		wire2Idx:             b.wire2Idx,
		idx2wire:             b.idx2wire,
		adj:                  b.adj,
		adjRev:               b.adjRev,
		isOutput:             make([]bool, len(b.idx2wire)),
		WireResourcesDefault: make(resource.Table, len(b.idx2wire)),
	}
	for i := range g.WireResourcesDefault {
		g.WireResourcesDefault[i] = resource.NewDefault()
	}
	for w := range outputWires {
		idx, ok := g.wire2Idx[w]
		if !ok {
			continue
		}
		g.isOutput[idx] = true
		if _, isSink := sinkWires[w]; isSink {
			g.WireResourcesDefault[idx].PresentCost = -1
		}
	}
	for w := range forbidden {
		if idx, ok := g.wire2Idx[w]; ok {
			g.WireResourcesDefault[idx].PresentCost = -1
		}
	}
	return g
}

// ConvertWireToIdx translates a global wire-name index to this graph's
// dense vertex id.
func (g *Graph) ConvertWireToIdx(wire device.StringIdx) (VertexID, bool) {
	idx, ok := g.wire2Idx[wire]
	return idx, ok
}

// ConvertIdxToWire is the inverse of ConvertWireToIdx.
func (g *Graph) ConvertIdxToWire(idx VertexID) device.StringIdx {
	return g.idx2wire[idx]
}

// IsOutput reports whether vertex idx can leave the tile.
func (g *Graph) IsOutput(idx VertexID) bool {
	return g.isOutput[idx]
}

// NumVertices returns the number of wires participating in routable PIPs
// of this tile type.
func (g *Graph) NumVertices() int {
	return len(g.idx2wire)
}

// ForwardNeighbors returns the vertices reachable from idx via one
// downhill PIP, used by C4 to single-step the fan-out direction.
func (g *Graph) ForwardNeighbors(idx VertexID) []VertexID {
	return g.adj[idx]
}

// ReverseNeighbors returns the vertices reachable from idx via one
// uphill PIP, used by C4 to single-step the fan-in direction.
func (g *Graph) ReverseNeighbors(idx VertexID) []VertexID {
	return g.adjRev[idx]
}

// Scratch is per-search reusable state (queue + result buffer) for
// FindOutputs, owned by the caller (the router's search driver) and
// passed by reference so the allocation-free hot path the original core
// gets from static scratch containers doesn't require global mutable
// state (§9 design note).
type Scratch struct {
	queue  []qitem
	result []Found
}

type qitem struct {
	cost float64
	idx  VertexID
}

// Reset clears s for reuse without releasing its backing arrays.
func (s *Scratch) Reset() {
	s.queue = s.queue[:0]
	s.result = s.result[:0]
}

// FindOutputs is the costed single-source search of §4.2: explore G_t from
// wire, charging costSoFar plus each traversed resource's getCost(),
// reusing already-owned-by-this-net vertices for free, and returning every
// output vertex reached together with the cost to reach it. res is the
// concrete tile's resource vector (mutated in place: Parent/CostParent/
// ExploredID); runID marks "visited in this search" so repeated searches
// against the same res (one per A* pop within a sink's search) don't need
// to clear state between pops.
func (g *Graph) FindOutputs(wire device.StringIdx, res resource.Table, costSoFar float64, runID uint64, scratch *Scratch) []Found {
	scratch.Reset()
	start, ok := g.wire2Idx[wire]
	if !ok {
		return nil
	}
	res[start].Parent = resource.NoParent
	res[start].CostParent = 0
	res[start].ExploredID = runID
	scratch.queue = append(scratch.queue, qitem{cost: costSoFar, idx: start})

	for len(scratch.queue) > 0 {
		item := scratch.queue[0]
		scratch.queue = scratch.queue[1:]
		idx, cost := item.idx, item.cost

		for _, w := range g.adj[idx] {
			wr := &res[w]
			switch {
			case wr.ExploredID == resource.OwnedByCurrentNet:
				if wr.Parent != int32(idx) {
					continue
				}
				scratch.queue = append(scratch.queue, qitem{cost, w})
			case wr.PresentCost < 0:
				continue
			case wr.ExploredID != runID:
				wr.ExploredID = runID
				wr.Parent = int32(idx)
				wr.CostParent = cost
				scratch.queue = append(scratch.queue, qitem{cost + wr.Cost(), w})
			case wr.CostParent > cost:
				wr.Parent = int32(idx)
				wr.CostParent = cost
				scratch.queue = append(scratch.queue, qitem{wr.Cost() + cost, w})
			}
		}

		if g.isOutput[idx] {
			scratch.result = append(scratch.result, Found{Cost: cost, Vertex: idx})
		}
	}
	return scratch.result
}

// FindOutputsPlain is the uncosted forward BFS of §4.2: it walks downhill
// from a source wire without touching per-tile resource state.
func (g *Graph) FindOutputsPlain(wire device.StringIdx) []VertexID {
	start, ok := g.wire2Idx[wire]
	if !ok {
		return nil
	}
	return bfs(g.adj, start)
}

// FindInputs is the uncosted reverse BFS of §4.2: it walks uphill from a
// sink wire.
func (g *Graph) FindInputs(wire device.StringIdx) []VertexID {
	start, ok := g.wire2Idx[wire]
	if !ok {
		return nil
	}
	return bfs(g.adjRev, start)
}

func bfs(adj [][]VertexID, start VertexID) []VertexID {
	var out []VertexID
	visited := make([]bool, len(adj))
	visited[start] = true
	queue := []VertexID{start}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		for _, w := range adj[idx] {
			if visited[w] {
				continue
			}
			visited[w] = true
			out = append(out, w)
			queue = append(queue, w)
		}
	}
	return out
}

const (
	bypassPrefix = "BYPASS"
	bouncePrefix = "BOUNCE_"
)

// BuildAll constructs one Graph per tile type in tables, applying §3's
// BYPASS/BOUNCE_ forbidden-vertex rule inside the INT tile type. The
// result is indexed by tile-type index, matching tables.TileTypes.
func BuildAll(tables *device.Tables) []*Graph {
	graphs := make([]*Graph, len(tables.TileTypes))
	for typeIdx, tt := range tables.TileTypes {
		b := NewBuilder()
		for _, p := range tt.Pips {
			if !isRoutablePip(tt, p) {
				continue
			}
			b.AddEdge(tt.Wires[p.Wire0], tt.Wires[p.Wire1])
		}

		var forbidden map[device.StringIdx]struct{}
		if tables.HasIntType && uint32(typeIdx) == tables.IntTypeIdx {
			forbidden = make(map[device.StringIdx]struct{})
			for _, w := range tt.Wires {
				name := tables.StrList[w]
				if hasPrefix(name, bypassPrefix) || hasPrefix(name, bouncePrefix) {
					forbidden[w] = struct{}{}
				}
			}
		}

		graphs[typeIdx] = b.Build(tables.OutputWires[typeIdx], tables.SourceAndSinkWires[typeIdx], forbidden)
	}
	return graphs
}

func isRoutablePip(tt device.TileType, p device.Pip) bool {
	if !tt.IsCLEOrRCLK {
		return true
	}
	return p.Kind == device.PipConventional
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

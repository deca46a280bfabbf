// Package resource holds wire_resource (§3) — the one mutable struct in
// the whole router core — and the per-tile tables of it that pipgraph,
// routednet, and router all share. It is split out from pipgraph (which
// owns the static per-type graph) and from routednet (which owns the
// routing trees) specifically to avoid an import cycle between the two:
// both need to read and write the same per-tile vectors.
package resource

import "FPGARouter/internal/coord"

// NoParent is the routing_branch "reached via a node, not a PIP" sentinel
// the original core calls -2.
const NoParent int32 = -2

// OwnedByCurrentNet is the exploredId sentinel meaning "this vertex was
// already claimed by a branch of the net currently being routed" (§4.2
// rule 1). Never equal to a real run id: run ids start at 1 and only grow.
const OwnedByCurrentNet uint64 = ^uint64(0)

// Wire is one per-(tile, PipGraph-vertex) mutable search/negotiation
// record, matching §3's wire_resource exactly.
type Wire struct {
	Usage        uint16
	PresentCost  float64
	HistoricCost uint32
	Parent       int32
	CostParent   float64
	ExploredID   uint64
}

// NewDefault returns a fresh wire_resource with the default costs
// (presentCost=1, historicCost=1) §9's source comments describe.
func NewDefault() Wire {
	return Wire{PresentCost: 1, HistoricCost: 1}
}

// Cost returns getCost(): presentCost * historicCost. Callers must not
// call this when PresentCost < 0 (forbidden/sink-reserved) — the
// multiplication would still type-check but the result is meaningless,
// per the invariant in §3.
func (w *Wire) Cost() float64 {
	return w.PresentCost * float64(w.HistoricCost)
}

// UpdateHistoricCost bumps historicCost by (usage-1), the negotiated-
// congestion penalty §4.6/§9 describe. The source's invariant is that this
// is only ever called when Usage >= 1; DecrementUsage below prevents the
// underflow that would otherwise make usage-1 wrap.
func (w *Wire) UpdateHistoricCost() {
	w.HistoricCost += uint32(w.Usage) - 1
}

// DecrementUsage decrements Usage, floored at zero. The original core
// leaves this unchecked (UB on underflow in debug builds only); floor it
// here since Go has no implicit signed/unsigned footgun to rely on for
// symmetry and an errant double rip-up must not corrupt Usage.
func (w *Wire) DecrementUsage() {
	if w.Usage > 0 {
		w.Usage--
	}
}

// Table is the per-tile vector of Wire, one entry per vertex of that
// tile-type's PipGraph, keyed by the vertex's dense wire-graph index
// (pipgraph.VertexID). Table is created lazily as a clone of the type's
// default vector on first touch, per §5.
type Table []Wire

// Tables is the shared, global `wireResources : keyTile -> Vec<wire_resource>`
// map of §5, keyed by concrete tile.
type Tables struct {
	byTile map[coord.TileKey]Table
}

// NewTables returns an empty resource-table map.
func NewTables() *Tables {
	return &Tables{byTile: make(map[coord.TileKey]Table)}
}

// Get returns the resource vector for key, cloning it from def on first
// touch. def is never retained or mutated; every concrete tile gets its own
// copy so mutating one tile's resources never affects another tile sharing
// the same type.
func (t *Tables) Get(key coord.TileKey, def Table) Table {
	if existing, ok := t.byTile[key]; ok {
		return existing
	}
	cloned := make(Table, len(def))
	copy(cloned, def)
	t.byTile[key] = cloned
	return cloned
}

// Peek returns the resource vector for key if it has already been
// touched, without creating one.
func (t *Tables) Peek(key coord.TileKey) (Table, bool) {
	v, ok := t.byTile[key]
	return v, ok
}

// Keys returns every tile key touched so far. Used by routines (rip-up,
// cost update bookkeeping, tests) that need to walk every live resource.
func (t *Tables) Keys() []coord.TileKey {
	keys := make([]coord.TileKey, 0, len(t.byTile))
	for k := range t.byTile {
		keys = append(keys, k)
	}
	return keys
}

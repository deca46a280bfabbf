// Package routednet implements C5: the routing tree and net model the
// router core's outer loop drives. A Net owns one branch.Tree per source
// (shared-prefix forks live inside a single source's tree; multiple
// sources get independent trees, matching §3's "list of sources (each:
// start-edge descriptor + the routing-tree root branch for that source)")
// plus its sink list, bounding box, and accumulated cost. The mutable
// per-wire state the trees reference lives in internal/resource, shared
// with pipgraph and router, so rip-up and cost updates here mutate the
// same tables the A* search reads.
package routednet

import (
	"FPGARouter/internal/branch"
	"FPGARouter/internal/coord"
	"FPGARouter/internal/device"
	"FPGARouter/internal/prerouted"
	"FPGARouter/internal/resource"
)

// Source is one driver of the net: the tile and global wire it starts
// from, the routing_branch tree rooted there, and (if the source sits
// behind a fixed fan-out chain per §4.4) the pre-routed prefix the router
// must splice in ahead of its own search.
type Source struct {
	TileX, TileY int
	TileType     uint32
	StartWire    device.StringIdx

	Tree *branch.Tree
	Root branch.ID

	Prerouted *prerouted.Chain
}

// Sink is one destination pin of the net. SiteName/PinName are carried
// only for emission (§4.7's stub matching); routing itself only cares
// about the tile/wire target.
type Sink struct {
	TileX, TileY int
	TileType     uint32
	Wire         device.StringIdx

	SiteName string
	PinName  string

	IsRouted bool
	Distance int

	Prerouted *prerouted.Chain
}

// BoundingBox is the axis-aligned, padded rectangle §4.5 prunes A* search
// against.
type BoundingBox struct {
	MinX, MinY, MaxX, MaxY int
}

// Contains reports whether (x, y) lies inside the box, inclusive.
func (b BoundingBox) Contains(x, y int) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// NewBoundingBox builds the initial box spanning a source position and
// every sink, padded by (padX, padY) per §4.5.
func NewBoundingBox(srcX, srcY int, sinks []*Sink, padX, padY int) BoundingBox {
	minX, maxX := srcX, srcX
	minY, maxY := srcY, srcY
	for _, s := range sinks {
		if s.TileX < minX {
			minX = s.TileX
		}
		if s.TileX > maxX {
			maxX = s.TileX
		}
		if s.TileY < minY {
			minY = s.TileY
		}
		if s.TileY > maxY {
			maxY = s.TileY
		}
	}
	return BoundingBox{MinX: minX - padX, MinY: minY - padY, MaxX: maxX + padX, MaxY: maxY + padY}
}

// Enlarge grows the box by (padX, padY) on every side. Per §9's open
// question, the original core never calls this from the outer loop; it is
// kept as a knob an implementation may wire up for stubborn, repeatedly
// rejected nets without changing default behavior.
func (b *BoundingBox) Enlarge(padX, padY int) {
	b.MinX -= padX
	b.MinY -= padY
	b.MaxX += padX
	b.MaxY += padY
}

// ManhattanDistance is the L1 distance between two tile positions, used
// both to order sinks (§4.7: longest first) and as the A* heuristic's base
// (§4.6, before the ×4 multiplier).
func ManhattanDistance(x1, y1, x2, y2 int) int {
	return abs(x1-x2) + abs(y1-y2)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Net is the per-net state §3 describes: name, accumulated cost, sources,
// sinks, and bounding box.
type Net struct {
	Name    string
	TotCost float64
	Sources []*Source
	Sinks   []*Sink
	BBox    BoundingBox
}

// NewNet constructs a Net from its sources and sinks. Sinks should already
// be sorted by Distance descending per §4.7 (adapter's job); NewNet does
// not reorder them.
func NewNet(name string, sources []*Source, sinks []*Sink, bbox BoundingBox) *Net {
	return &Net{Name: name, Sources: sources, Sinks: sinks, BBox: bbox}
}

// IsInsideBoundingBox reports whether (x, y) lies inside the net's box,
// the prune test §4.6's findPath applies to every candidate template
// destination.
func (n *Net) IsInsideBoundingBox(x, y int) bool {
	return n.BBox.Contains(x, y)
}

// EnlargeBoundingBox grows the net's box; see BoundingBox.Enlarge.
func (n *Net) EnlargeBoundingBox(padX, padY int) {
	n.BBox.Enlarge(padX, padY)
}

// resourceAt resolves the wire_resource a branch refers to, or (nil,
// false) if the branch doesn't correspond to a live PipGraph vertex (a
// negative WireGraphIdx) or its tile hasn't been touched yet.
func resourceAt(resources *resource.Tables, b *branch.Branch) (*resource.Wire, bool) {
	if b.WireGraphIdx < 0 {
		return nil, false
	}
	key := coord.TileToKey(b.X, b.Y, b.TileType)
	tbl, ok := resources.Peek(key)
	if !ok || int(b.WireGraphIdx) >= len(tbl) {
		return nil, false
	}
	return &tbl[b.WireGraphIdx], true
}

// HasConflicts walks the whole routing tree and reports whether any
// branch's resource has usage > 1.
func (n *Net) HasConflicts(resources *resource.Tables) bool {
	for _, src := range n.Sources {
		conflict := false
		src.Tree.Walk(src.Root, func(id, parent branch.ID) bool {
			if conflict {
				return false
			}
			if parent == branch.NoID {
				return true
			}
			r, ok := resourceAt(resources, src.Tree.Get(id))
			if ok && r.Usage > 1 {
				conflict = true
				return false
			}
			return true
		})
		if conflict {
			return true
		}
	}
	return false
}

// ResetExploredFlags zeroes the exploredId field of every resource in the
// net's tree, the "resetParent()" step §4.6 runs after each net so the
// next net's search doesn't mistake this net's ownership markers for its
// own (exploredId's OwnedByCurrentNet sentinel is not itself net-scoped).
func (n *Net) ResetExploredFlags(resources *resource.Tables) {
	for _, src := range n.Sources {
		src.Tree.Walk(src.Root, func(id, parent branch.ID) bool {
			if r, ok := resourceAt(resources, src.Tree.Get(id)); ok {
				r.ExploredID = 0
			}
			return true
		})
	}
}

// Package prerouted implements C4: the fixed fan-in/fan-out routing
// segments between a site pin and the nearest interconnect (INT) tile
// wire, precomputed once per device so the main A* search never has to
// step through a site's internal switch-box wiring.
//
// The chains are built from the same pipgraph.BuildAll graphs the router
// uses; the CLI builds that graph set once. The BYPASS/BOUNCE_ forbidding
// in those graphs is a fixed wire-name rule and takes no input from these
// chains, and chain expansion only follows adjacency, so it does not read
// or respect forbidden resource costs.
package prerouted

import (
	"FPGARouter/internal/branch"
	"FPGARouter/internal/device"
	"FPGARouter/internal/pipgraph"
)

// Key identifies one pre-routed chain: the tile type and the site wire it
// starts from.
type Key struct {
	TileType uint32
	SiteWire device.StringIdx
}

// Chain is one fixed branching structure from a site wire to the tile(s)
// of the interconnect fabric. The tree is always rooted at the site wire
// regardless of direction — for a FanOut chain the emitter walks root to
// leaf (the site drives outward toward INT); for a FanIn chain the
// emitter walks leaf to root (the INT fabric drives inward toward the
// site) since the physical convergence point (the site pin) is the one
// place a chain cannot legitimately fork on the INT side.
type Chain struct {
	Tree *branch.Tree
	Root branch.ID

	// Leaves are the branches whose wire lives in the INT tile type: the
	// chain's entry/exit points into the main two-level routing graph.
	Leaves []branch.ID
}

// Resources is the full pre-routed table, keyed by (tile_type,
// site_wire_name_idx) per §4.4.
type Resources struct {
	FanOut map[Key]*Chain
	FanIn  map[Key]*Chain
}

type hopKey struct {
	tile device.StringIdx
	wire device.StringIdx
}

// Build derives the pre-routed fan-in/fan-out table for every tile that
// has at least one site. graphs is the pipgraph.BuildAll result; the walk
// uses only its adjacency, so BYPASS/BOUNCE_ wires forbidden for the router
// are still crossed here.
func Build(tables *device.Tables, graphs []*pipgraph.Graph) *Resources {
	r := &Resources{FanOut: make(map[Key]*Chain), FanIn: make(map[Key]*Chain)}

	for _, tile := range tables.Tiles {
		tt := tables.TileTypes[tile.TypeIdx]
		if len(tt.Sites) == 0 {
			continue
		}
		for w := range tables.SourceAndSinkWires[tile.TypeIdx] {
			if _, hasNode := tables.Wire2Node[device.GlobalWire{TileNameIdx: tile.NameIdx, WireNameIdx: w}]; !hasNode {
				continue
			}
			key := Key{TileType: tile.TypeIdx, SiteWire: w}
			if _, exists := r.FanOut[key]; !exists {
				r.FanOut[key] = buildChain(tables, graphs, tile, w, true)
			}
			if _, exists := r.FanIn[key]; !exists {
				r.FanIn[key] = buildChain(tables, graphs, tile, w, false)
			}
		}
	}
	return r
}

func buildChain(tables *device.Tables, graphs []*pipgraph.Graph, tile device.Tile, wire device.StringIdx, forward bool) *Chain {
	tree := branch.NewTree()
	g := graphs[tile.TypeIdx]

	wireGraphIdx := int32(-1)
	if idx, ok := g.ConvertWireToIdx(wire); ok {
		wireGraphIdx = int32(idx)
	}
	root := tree.New(branch.Branch{
		X: tile.X, Y: tile.Y, TileType: tile.TypeIdx,
		WireGraphIdx: wireGraphIdx, IsFirstWireOfTile: true, SinkID: branch.NoSink,
	})
	c := &Chain{Tree: tree, Root: root}

	onPath := map[hopKey]bool{{tile: tile.NameIdx, wire: wire}: true}
	expand(tables, graphs, tree, root, tile, wire, forward, onPath, c)
	return c
}

// expand grows the chain one hop at a time from (tile, wire), recursing
// into both same-tile PIP hops and cross-tile node-crossing hops, exactly
// the two kinds of edges the two-level routing graph exposes. A hop whose
// destination sits in the interconnect tile type is recorded as a leaf
// and not expanded further — that is the handoff point to the main A*
// search.
func expand(tables *device.Tables, graphs []*pipgraph.Graph, tree *branch.Tree, parent branch.ID, tile device.Tile, wire device.StringIdx, forward bool, onPath map[hopKey]bool, c *Chain) {
	g := graphs[tile.TypeIdx]
	if idx, ok := g.ConvertWireToIdx(wire); ok {
		var neighbors []pipgraph.VertexID
		if forward {
			neighbors = g.ForwardNeighbors(idx)
		} else {
			neighbors = g.ReverseNeighbors(idx)
		}
		for _, n := range neighbors {
			destWire := g.ConvertIdxToWire(n)
			hopInTile(tables, graphs, tree, parent, tile, destWire, forward, onPath, c)
		}
	}

	nodeID, ok := tables.Wire2Node[device.GlobalWire{TileNameIdx: tile.NameIdx, WireNameIdx: wire}]
	if !ok {
		return
	}
	members := tables.NodeWires[nodeID]
	if len(members) < 2 {
		return
	}
	for _, gw := range members {
		if gw.TileNameIdx == tile.NameIdx && gw.WireNameIdx == wire {
			continue
		}
		destTileIdx, ok := tables.TileName2Tile[gw.TileNameIdx]
		if !ok {
			continue
		}
		destTile := tables.Tiles[destTileIdx]
		var eligible bool
		if forward {
			_, eligible = tables.WiresWithDownhillPips[destTile.TypeIdx][gw.WireNameIdx]
		} else {
			_, eligible = tables.WiresWithUphillPips[destTile.TypeIdx][gw.WireNameIdx]
		}
		if !eligible {
			continue
		}
		hopAcrossTile(tables, graphs, tree, parent, destTile, gw.WireNameIdx, forward, onPath, c)
	}
}

func hopInTile(tables *device.Tables, graphs []*pipgraph.Graph, tree *branch.Tree, parent branch.ID, tile device.Tile, wire device.StringIdx, forward bool, onPath map[hopKey]bool, c *Chain) {
	key := hopKey{tile: tile.NameIdx, wire: wire}
	if onPath[key] {
		return
	}
	onPath[key] = true
	defer delete(onPath, key)

	g := graphs[tile.TypeIdx]
	idx, _ := g.ConvertWireToIdx(wire)
	childID := tree.AddChild(parent, branch.Branch{
		X: tile.X, Y: tile.Y, TileType: tile.TypeIdx,
		WireGraphIdx: int32(idx), SinkID: branch.NoSink,
	})

	if isInterconnect(tables, tile.TypeIdx) {
		c.Leaves = append(c.Leaves, childID)
		return
	}
	expand(tables, graphs, tree, childID, tile, wire, forward, onPath, c)
}

func hopAcrossTile(tables *device.Tables, graphs []*pipgraph.Graph, tree *branch.Tree, parent branch.ID, destTile device.Tile, wire device.StringIdx, forward bool, onPath map[hopKey]bool, c *Chain) {
	key := hopKey{tile: destTile.NameIdx, wire: wire}
	if onPath[key] {
		return
	}
	onPath[key] = true
	defer delete(onPath, key)

	g := graphs[destTile.TypeIdx]
	wireGraphIdx := int32(-1)
	if idx, ok := g.ConvertWireToIdx(wire); ok {
		wireGraphIdx = int32(idx)
	}
	childID := tree.AddChild(parent, branch.Branch{
		X: destTile.X, Y: destTile.Y, TileType: destTile.TypeIdx,
		WireGraphIdx: wireGraphIdx, IsFirstWireOfTile: true, SinkID: branch.NoSink,
	})

	if isInterconnect(tables, destTile.TypeIdx) {
		c.Leaves = append(c.Leaves, childID)
		return
	}
	expand(tables, graphs, tree, childID, destTile, wire, forward, onPath, c)
}

func isInterconnect(tables *device.Tables, tileType uint32) bool {
	return tables.HasIntType && tileType == tables.IntTypeIdx
}

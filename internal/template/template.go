// Package template implements C3, the inter-tile template graph: for each
// concrete tile, a shared map from output-wire to the list of next-tile
// entry points reachable by crossing a single node (an electrically-
// equivalent wire set spanning more than one tile). Templates are
// deduplicated by structural equality, since most tiles of the same type
// sit in a position whose surrounding node topology repeats exactly.
package template

import (
	"bytes"
	"encoding/binary"
	"sort"

	"FPGARouter/internal/coord"
	"FPGARouter/internal/device"
)

// Dest is one entry of a template: crossing the node lands on wire
// DestInputWire of a tile of type DestTileTypeIdx at (Δx,Δy) relative to
// the tile the template belongs to.
type Dest struct {
	DeltaX          int32
	DeltaY          int32
	DestTileTypeIdx uint32
	DestInputWire   device.StringIdx
}

// Graphs holds every deduplicated template and the per-tile pointer into
// that table.
type Graphs struct {
	templates    []map[device.StringIdx][]Dest
	tileTemplate map[coord.TileKey]int
}

// Build derives the template graph for every tile in tables that has at
// least one PIP or one site (§4.3). Tiles with neither (empty filler
// tiles) get no template entry at all.
func Build(tables *device.Tables) *Graphs {
	g := &Graphs{tileTemplate: make(map[coord.TileKey]int)}
	seen := make(map[string]int)

	for _, tile := range tables.Tiles {
		tt := tables.TileTypes[tile.TypeIdx]
		if len(tt.Pips) == 0 && len(tt.Sites) == 0 {
			continue
		}
		m := buildOneTile(tile, tables)
		key := canonicalKey(m)
		id, ok := seen[key]
		if !ok {
			id = len(g.templates)
			g.templates = append(g.templates, m)
			seen[key] = id
		}
		g.tileTemplate[coord.TileToKey(tile.X, tile.Y, tile.TypeIdx)] = id
	}
	return g
}

// buildOneTile computes the raw (undeduplicated) template map for a single
// concrete tile, per the three-step recipe of §4.3.
func buildOneTile(tile device.Tile, tables *device.Tables) map[device.StringIdx][]Dest {
	candidates := unionSets(tables.OutputWires[tile.TypeIdx], tables.SourceAndSinkWires[tile.TypeIdx])
	m := make(map[device.StringIdx][]Dest, len(candidates))

	for w := range candidates {
		nodeID, ok := tables.Wire2Node[device.GlobalWire{TileNameIdx: tile.NameIdx, WireNameIdx: w}]
		if !ok {
			continue
		}
		members := tables.NodeWires[nodeID]
		if len(members) < 2 {
			continue
		}

		var dests []Dest
		for _, gw := range members {
			if gw.TileNameIdx == tile.NameIdx && gw.WireNameIdx == w {
				continue
			}
			destTileIdx, ok := tables.TileName2Tile[gw.TileNameIdx]
			if !ok {
				continue
			}
			destTile := tables.Tiles[destTileIdx]
			if _, hasDownhill := tables.WiresWithDownhillPips[destTile.TypeIdx][gw.WireNameIdx]; !hasDownhill {
				continue
			}
			dests = append(dests, Dest{
				DeltaX:          int32(destTile.X - tile.X),
				DeltaY:          int32(destTile.Y - tile.Y),
				DestTileTypeIdx: destTile.TypeIdx,
				DestInputWire:   gw.WireNameIdx,
			})
		}
		if len(dests) == 0 {
			continue
		}
		sort.Slice(dests, func(i, j int) bool { return lessDest(dests[i], dests[j]) })
		m[w] = dests
	}
	return m
}

func lessDest(a, b Dest) bool {
	if a.DeltaX != b.DeltaX {
		return a.DeltaX < b.DeltaX
	}
	if a.DeltaY != b.DeltaY {
		return a.DeltaY < b.DeltaY
	}
	if a.DestTileTypeIdx != b.DestTileTypeIdx {
		return a.DestTileTypeIdx < b.DestTileTypeIdx
	}
	return a.DestInputWire < b.DestInputWire
}

func unionSets(a, b map[device.StringIdx]struct{}) map[device.StringIdx]struct{} {
	out := make(map[device.StringIdx]struct{}, len(a)+len(b))
	for w := range a {
		out[w] = struct{}{}
	}
	for w := range b {
		out[w] = struct{}{}
	}
	return out
}

// canonicalKey serializes a template map into a deterministic byte string
// so structurally identical templates (same wires, same ordered
// destination lists) collapse to the same map entry regardless of which
// tile produced them first.
func canonicalKey(m map[device.StringIdx][]Dest) string {
	keys := make([]device.StringIdx, 0, len(m))
	for w := range m {
		keys = append(keys, w)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	var buf bytes.Buffer
	for _, w := range keys {
		binary.Write(&buf, binary.LittleEndian, uint32(w))
		dests := m[w]
		binary.Write(&buf, binary.LittleEndian, uint32(len(dests)))
		for _, d := range dests {
			binary.Write(&buf, binary.LittleEndian, d.DeltaX)
			binary.Write(&buf, binary.LittleEndian, d.DeltaY)
			binary.Write(&buf, binary.LittleEndian, d.DestTileTypeIdx)
			binary.Write(&buf, binary.LittleEndian, uint32(d.DestInputWire))
		}
	}
	return buf.String()
}

// Destinations returns the ordered next-tile entries reachable from
// outputWire in the tile identified by tileKey. The last entry is the one
// the router's normal source-push logic uses; earlier entries are
// special-case routes (§4.6).
func (g *Graphs) Destinations(tileKey coord.TileKey, outputWire device.StringIdx) ([]Dest, bool) {
	id, ok := g.tileTemplate[tileKey]
	if !ok {
		return nil, false
	}
	dests, ok := g.templates[id][outputWire]
	return dests, ok
}

// HasTemplate reports whether tileKey has a template at all (§4.6 step 2:
// "if n has no template entry, continue").
func (g *Graphs) HasTemplate(tileKey coord.TileKey) bool {
	_, ok := g.tileTemplate[tileKey]
	return ok
}

// TemplateCount returns how many distinct deduplicated templates exist,
// for diagnostics and tests.
func (g *Graphs) TemplateCount() int {
	return len(g.templates)
}

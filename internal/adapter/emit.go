// emit.go implements the inverse half of C7 (§4.7): walking a routed
// net's trees back into the external PIP/stub representation.
package adapter

import (
	"fmt"

	"FPGARouter/internal/branch"
	"FPGARouter/internal/coord"
	"FPGARouter/internal/device"
	"FPGARouter/internal/physnetlist"
	"FPGARouter/internal/pipgraph"
	"FPGARouter/internal/routednet"
)

// tileNameIndex is a reverse lookup from concrete tile position+type back
// to its name, built once per Emit call from tables.Tiles — the emission
// counterpart of device.Tables.TileName2Tile.
type tileNameIndex map[coord.TileKey]device.StringIdx

func buildTileNameIndex(tables *device.Tables) tileNameIndex {
	idx := make(tileNameIndex, len(tables.Tiles))
	for _, t := range tables.Tiles {
		idx[coord.TileToKey(t.X, t.Y, t.TypeIdx)] = t.NameIdx
	}
	return idx
}

// Emit translates every routed net's tree back into design's matching
// external Net: the PIPs the router chose (plus any spliced pre-routed
// prefix/suffix), and the stub list narrowed to sinks that are still
// unrouted. Nets are matched to design by name; a net with no matching
// entry is a programming error (every routednet.Net given to Emit must
// have come from Ingest on the same design).
func Emit(tables *device.Tables, graphs []*pipgraph.Graph, design *physnetlist.Design, routed []*routednet.Net) error {
	tileNames := buildTileNameIndex(tables)
	byName := make(map[string]*physnetlist.Net, len(design.Nets))
	for i := range design.Nets {
		byName[design.Nets[i].Name] = &design.Nets[i]
	}

	for _, n := range routed {
		ext, ok := byName[n.Name]
		if !ok {
			return fmt.Errorf("emit: net %q not present in design", n.Name)
		}
		if err := emitNet(tables, graphs, tileNames, ext, n); err != nil {
			return fmt.Errorf("emit net %q: %w", n.Name, err)
		}
	}
	return nil
}

// hop is one parent->child edge of a reconstructed path, in the tree's own
// (always parent-to-child) orientation.
type hop struct {
	parent, child *branch.Branch
}

func hopsAlongPath(tree *branch.Tree, path []branch.ID) []hop {
	hops := make([]hop, 0, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		hops = append(hops, hop{parent: tree.Get(path[i]), child: tree.Get(path[i+1])})
	}
	return hops
}

// pipsForHops translates hops into external Pip records. forward=true
// (the main routed tree, and a source's pre-routed fan-out prefix) walks
// root-to-leaf with wire0=parent/wire1=child, matching how the PIP graph's
// forward adjacency was built (§4.2's AddEdge(wire0, wire1)). forward=false
// (a sink's pre-routed fan-in suffix, built by walking the PipGraph's
// reverse adjacency from the site toward the fabric) swaps the assignment
// and emits leaf-to-root so the resulting PIP order reads source-to-sink,
// the same way hops built by the forward case already do.
func pipsForHops(tables *device.Tables, graphs []*pipgraph.Graph, names tileNameIndex, hops []hop, forward bool) []physnetlist.Pip {
	var out []physnetlist.Pip
	emit := func(h hop) {
		if h.child.IsFirstWireOfTile {
			return
		}
		w0, w1 := h.parent, h.child
		if !forward {
			w0, w1 = h.child, h.parent
		}
		g := graphs[h.parent.TileType]
		tileKey := coord.TileToKey(h.parent.X, h.parent.Y, h.parent.TileType)
		tileNameIdx := names[tileKey]
		out = append(out, physnetlist.Pip{
			Tile:  tables.StrList[tileNameIdx],
			Wire0: tables.StrList[g.ConvertIdxToWire(pipgraph.VertexID(w0.WireGraphIdx))],
			Wire1: tables.StrList[g.ConvertIdxToWire(pipgraph.VertexID(w1.WireGraphIdx))],
		})
	}
	if forward {
		for _, h := range hops {
			emit(h)
		}
	} else {
		for i := len(hops) - 1; i >= 0; i-- {
			emit(hops[i])
		}
	}
	return out
}

// findPath walks tree depth-first from root and returns the branch-id path
// to the first branch match accepts, inclusive of root and the match.
func findPath(tree *branch.Tree, root branch.ID, match func(id branch.ID, b *branch.Branch) bool) ([]branch.ID, bool) {
	var path []branch.ID
	var walk func(id branch.ID) bool
	walk = func(id branch.ID) bool {
		path = append(path, id)
		b := tree.Get(id)
		if match(id, b) {
			return true
		}
		for _, c := range b.Children {
			if walk(c) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}
	ok := walk(root)
	return path, ok
}

// emitNet produces ext.Pips/ext.Stubs from n's routed trees: the
// pre-routed fan-out prefix of each source (if any), every routed sink's
// path through the main tree, and the pre-routed fan-in suffix of each
// routed sink (if any) — matched back to its stub entry by (site, pin)
// per §4.7.
func emitNet(tables *device.Tables, graphs []*pipgraph.Graph, names tileNameIndex, ext *physnetlist.Net, n *routednet.Net) error {
	var pips []physnetlist.Pip
	consumed := make([]bool, len(ext.Stubs))

	for _, src := range n.Sources {
		if src.Prerouted != nil {
			prefixPath, ok := findPath(src.Prerouted.Tree, src.Prerouted.Root, func(id branch.ID, _ *branch.Branch) bool { return id == src.Root })
			if !ok {
				return fmt.Errorf("source pre-routed chain does not reach its recorded entry leaf")
			}
			pips = append(pips, pipsForHops(tables, graphs, names, hopsAlongPath(src.Prerouted.Tree, prefixPath), true)...)
		}

		for sinkIdx, sink := range n.Sinks {
			if !sink.IsRouted {
				continue
			}
			path, ok := findPath(src.Tree, src.Root, func(_ branch.ID, b *branch.Branch) bool { return b.SinkID == int32(sinkIdx) })
			if !ok {
				continue
			}
			pips = append(pips, pipsForHops(tables, graphs, names, hopsAlongPath(src.Tree, path), true)...)

			if sink.Prerouted != nil {
				leafID := sink.Prerouted.Leaves[0]
				suffixPath, ok := findPath(sink.Prerouted.Tree, sink.Prerouted.Root, func(id branch.ID, _ *branch.Branch) bool { return id == leafID })
				if !ok {
					return fmt.Errorf("sink pre-routed chain does not reach its recorded entry leaf")
				}
				pips = append(pips, pipsForHops(tables, graphs, names, hopsAlongPath(sink.Prerouted.Tree, suffixPath), false)...)
			}

			if err := consumeStub(ext, consumed, sink.SiteName, sink.PinName); err != nil {
				return err
			}
		}
	}

	ext.Pips = pips
	remaining := ext.Stubs[:0:0]
	for i, stub := range ext.Stubs {
		if !consumed[i] {
			remaining = append(remaining, stub)
		}
	}
	ext.Stubs = remaining
	return nil
}

// consumeStub finds the first not-yet-consumed stub matching (site, pin)
// and marks it consumed. A routed sink with no matching stub means the
// tree is inconsistent with the original stub list — fatal per §7.
func consumeStub(ext *physnetlist.Net, consumed []bool, site, pin string) error {
	for i, s := range ext.Stubs {
		if consumed[i] {
			continue
		}
		if s.Site == site && s.Pin == pin {
			consumed[i] = true
			return nil
		}
	}
	return fmt.Errorf("no stub matches routed sink (site=%s, pin=%s)", site, pin)
}

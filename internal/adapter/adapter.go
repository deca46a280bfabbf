// Package adapter implements C7: translating the external physical-netlist
// representation (internal/physnetlist) into router-ready routednet.Nets
// against a device's derived tables, pre-routed chains, and pipgraph
// resource tables — and translating the routed trees back, per §4.7.
package adapter

import (
	"fmt"
	"sort"

	"FPGARouter/internal/branch"
	"FPGARouter/internal/coord"
	"FPGARouter/internal/device"
	"FPGARouter/internal/physnetlist"
	"FPGARouter/internal/pipgraph"
	"FPGARouter/internal/prerouted"
	"FPGARouter/internal/resource"
	"FPGARouter/internal/routednet"
)

// Config holds the adapter's tunables: the bounding-box padding §4.5/§4.7
// apply when constructing a Net's initial box.
type Config struct {
	BBoxPadX int
	BBoxPadY int
}

// resolvePin resolves a (site, pin) external reference against the
// device's site2TileType and pins2Wire tables (§4.1), returning the
// concrete tile index, the site's location record, and the tile wire the
// pin connects to.
func resolvePin(tables *device.Tables, site, pin string) (tileIdx int, loc device.SiteLocation, wireIdx device.StringIdx, err error) {
	siteIdx, ok := tables.WireName2WireID[site]
	if !ok {
		return 0, device.SiteLocation{}, 0, fmt.Errorf("unknown site %q", site)
	}
	loc, ok = tables.Site2TileType[siteIdx]
	if !ok {
		return 0, device.SiteLocation{}, 0, fmt.Errorf("site %q has no tile placement", site)
	}
	pinIdx, ok := tables.WireName2WireID[pin]
	if !ok {
		return 0, device.SiteLocation{}, 0, fmt.Errorf("unknown pin %q", pin)
	}
	wireIdx, ok = tables.Pins2Wire[loc.TileTypeIdx][device.PinKey{PinNameIdx: pinIdx, SiteTypeLocalIx: loc.SiteTypeLocalIx}]
	if !ok {
		return 0, device.SiteLocation{}, 0, fmt.Errorf("pin %q of site %q has no tile wire", pin, site)
	}
	tileIdx, ok = tables.TileName2Tile[loc.TileNameIdx]
	if !ok {
		return 0, device.SiteLocation{}, 0, fmt.Errorf("site %q's tile is not placed", site)
	}
	return tileIdx, loc, wireIdx, nil
}

func vertexIdxOrNeg1(g *pipgraph.Graph, wire device.StringIdx) int32 {
	if g == nil {
		return -1
	}
	if v, ok := g.ConvertWireToIdx(wire); ok {
		return int32(v)
	}
	return -1
}

// buildSource resolves one net's source pin into a routednet.Source. If
// the site wire has a pre-routed fan-out chain (§4.4), the chain's first
// leaf (the INT-side wire) becomes the effective A* entry point and the
// chain's tree is reused directly as the source's tree, so the fixed
// prefix is already present for buildBranches to extend and for Emit to
// splice back out; otherwise a fresh single-branch tree rooted at the
// site wire itself is the starting point.
func buildSource(tables *device.Tables, graphs []*pipgraph.Graph, pre *prerouted.Resources, site, pin string) (*routednet.Source, error) {
	tileIdx, loc, wireIdx, err := resolvePin(tables, site, pin)
	if err != nil {
		return nil, err
	}
	tile := tables.Tiles[tileIdx]

	key := prerouted.Key{TileType: loc.TileTypeIdx, SiteWire: wireIdx}
	if chain, ok := pre.FanOut[key]; ok && len(chain.Leaves) > 0 {
		leafID := chain.Leaves[0]
		leaf := chain.Tree.Get(leafID)
		return &routednet.Source{
			TileX: leaf.X, TileY: leaf.Y, TileType: leaf.TileType,
			StartWire: graphs[leaf.TileType].ConvertIdxToWire(pipgraph.VertexID(leaf.WireGraphIdx)),
			Tree:      chain.Tree, Root: leafID,
			Prerouted: chain,
		}, nil
	}

	g := graphs[tile.TypeIdx]
	tree := branch.NewTree()
	root := tree.New(branch.Branch{
		X: tile.X, Y: tile.Y, TileType: tile.TypeIdx,
		WireGraphIdx: vertexIdxOrNeg1(g, wireIdx), IsFirstWireOfTile: true, SinkID: branch.NoSink,
	})
	return &routednet.Source{TileX: tile.X, TileY: tile.Y, TileType: tile.TypeIdx, StartWire: wireIdx, Tree: tree, Root: root}, nil
}

// buildSink resolves one net's sink pin into a routednet.Sink and reserves
// its effective entry wire (presentCost=-1) so no other net can claim it
// while this one searches. Like buildSource, a pre-routed fan-in chain's
// first leaf becomes the effective target the A* search aims at; the
// chain itself is kept on the Sink so Emit can splice the fixed suffix
// back toward the site pin.
func buildSink(tables *device.Tables, graphs []*pipgraph.Graph, pre *prerouted.Resources, resources *resource.Tables, site, pin string) (*routednet.Sink, error) {
	tileIdx, loc, wireIdx, err := resolvePin(tables, site, pin)
	if err != nil {
		return nil, err
	}
	tile := tables.Tiles[tileIdx]

	sink := &routednet.Sink{SiteName: site, PinName: pin}
	key := prerouted.Key{TileType: loc.TileTypeIdx, SiteWire: wireIdx}
	if chain, ok := pre.FanIn[key]; ok && len(chain.Leaves) > 0 {
		leaf := chain.Tree.Get(chain.Leaves[0])
		sink.TileX, sink.TileY, sink.TileType = leaf.X, leaf.Y, leaf.TileType
		sink.Wire = graphs[leaf.TileType].ConvertIdxToWire(pipgraph.VertexID(leaf.WireGraphIdx))
		sink.Prerouted = chain
	} else {
		sink.TileX, sink.TileY, sink.TileType = tile.X, tile.Y, tile.TypeIdx
		sink.Wire = wireIdx
	}

	g := graphs[sink.TileType]
	if vIdx, ok := g.ConvertWireToIdx(sink.Wire); ok {
		tkey := coord.TileToKey(sink.TileX, sink.TileY, sink.TileType)
		tbl := resources.Get(tkey, g.WireResourcesDefault)
		tbl[vIdx].PresentCost = -1
	}
	return sink, nil
}

// forbidPip marks both endpoints of an already-committed PIP (from a
// skipped, already-routed external net) forbidden in the appropriate
// tile's resource vector, per §4.7: a clock-like fixed net's wires must
// never be handed to a signal net's search.
func forbidPip(tables *device.Tables, graphs []*pipgraph.Graph, resources *resource.Tables, p physnetlist.Pip) error {
	tileNameIdx, ok := tables.WireName2WireID[p.Tile]
	if !ok {
		return fmt.Errorf("unknown tile %q in fixed pip", p.Tile)
	}
	tileIdx, ok := tables.TileName2Tile[tileNameIdx]
	if !ok {
		return fmt.Errorf("tile %q is not placed", p.Tile)
	}
	tile := tables.Tiles[tileIdx]
	g := graphs[tile.TypeIdx]
	key := coord.TileToKey(tile.X, tile.Y, tile.TypeIdx)
	tbl := resources.Get(key, g.WireResourcesDefault)

	for _, wireName := range []string{p.Wire0, p.Wire1} {
		wireIdx, ok := tables.WireName2WireID[wireName]
		if !ok {
			return fmt.Errorf("unknown wire %q in fixed pip at tile %q", wireName, p.Tile)
		}
		if v, ok := g.ConvertWireToIdx(wireIdx); ok {
			tbl[v].PresentCost = -1
		}
	}
	return nil
}

// isAlreadyRouted implements §4.7's skip test: a net with no stubs, or one
// whose (fixed, clock-like) PIP list is non-empty, is already routed and
// is never handed to the router.
func isAlreadyRouted(n physnetlist.Net) bool {
	return len(n.Stubs) == 0 || len(n.Pips) > 0
}

// Ingest converts every routable net of design into a routednet.Net,
// reserving sink wires and forbidding fixed PIPs of skipped nets directly
// in resources. Nets already routed (§4.7) are left untouched in design
// and are not returned.
func Ingest(tables *device.Tables, graphs []*pipgraph.Graph, pre *prerouted.Resources, resources *resource.Tables, design *physnetlist.Design, cfg Config) ([]*routednet.Net, error) {
	var nets []*routednet.Net

	for _, extNet := range design.Nets {
		if isAlreadyRouted(extNet) {
			for _, p := range extNet.Pips {
				if err := forbidPip(tables, graphs, resources, p); err != nil {
					return nil, fmt.Errorf("net %q: %w", extNet.Name, err)
				}
			}
			continue
		}

		if len(extNet.Sources) == 0 {
			return nil, fmt.Errorf("net %q: no source pin", extNet.Name)
		}
		sources := make([]*routednet.Source, 0, len(extNet.Sources))
		for _, p := range extNet.Sources {
			src, err := buildSource(tables, graphs, pre, p.Site, p.Pin)
			if err != nil {
				return nil, fmt.Errorf("net %q source: %w", extNet.Name, err)
			}
			sources = append(sources, src)
		}

		sinks := make([]*routednet.Sink, 0, len(extNet.Stubs))
		for _, p := range extNet.Stubs {
			sink, err := buildSink(tables, graphs, pre, resources, p.Site, p.Pin)
			if err != nil {
				return nil, fmt.Errorf("net %q sink: %w", extNet.Name, err)
			}
			sinks = append(sinks, sink)
		}
		for _, sink := range sinks {
			sink.Distance = routednet.ManhattanDistance(sources[0].TileX, sources[0].TileY, sink.TileX, sink.TileY)
		}
		sort.Slice(sinks, func(i, j int) bool { return sinks[i].Distance > sinks[j].Distance })

		bbox := routednet.NewBoundingBox(sources[0].TileX, sources[0].TileY, sinks, cfg.BBoxPadX, cfg.BBoxPadY)
		net := routednet.NewNet(extNet.Name, sources, sinks, bbox)
		for _, sink := range sinks {
			net.TotCost += float64(sink.Distance)
		}
		nets = append(nets, net)
	}

	return nets, nil
}

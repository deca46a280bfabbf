package device

// Tables holds every table §4.1 derives from a RawDevice. All fields are
// indexed either globally (by StringIdx) or by tile-type index, matching
// the keys the rest of the router core (C2-C7) expects.
type Tables struct {
	StrList   []string
	Tiles     []Tile
	TileTypes []TileType

	TileName2Tile         map[StringIdx]int
	TileType2Name         []StringIdx
	TileTypeName2TypeIdx  map[string]uint32
	WireName2WireID       map[string]StringIdx
	IntTypeIdx            uint32
	HasIntType            bool
	Site2TileType         map[StringIdx]SiteLocation

	// Pins2Wire[tileType][(pinName, siteLocalIdx)] -> tile wire-name idx.
	Pins2Wire []map[PinKey]StringIdx

	Wire2Node map[GlobalWire]NodeID
	NodeWires [][]GlobalWire

	// Per tile type: sets of wire-name-indices (StringIdx) with the stated
	// property. Using map[StringIdx]struct{} rather than a bitset keeps
	// the representation independent of the device's actual wire-name
	// range, at the cost of the hashing the hot path in pipgraph avoids by
	// precomputing isOutput once at graph-build time (§4.2).
	WiresWithDownhillPips []map[StringIdx]struct{}
	WiresWithUphillPips   []map[StringIdx]struct{}
	SourceAndSinkWires    []map[StringIdx]struct{}
	OutputWires           []map[StringIdx]struct{}
}

// Derive computes every C1 table from a RawDevice. It never mutates dev and
// always returns the same Tables for the same dev, which is the property
// cache.go relies on to treat the result as cacheable.
func Derive(dev *RawDevice) *Tables {
	t := &Tables{
		StrList:   dev.Strings,
		Tiles:     dev.Tiles,
		TileTypes: dev.TileTypes,
		Site2TileType: dev.Sites,
	}

	t.TileName2Tile = make(map[StringIdx]int, len(dev.Tiles))
	for i, tile := range dev.Tiles {
		t.TileName2Tile[tile.NameIdx] = i
	}

	t.TileType2Name = make([]StringIdx, len(dev.TileTypes))
	t.TileTypeName2TypeIdx = make(map[string]uint32, len(dev.TileTypes))
	for i, tt := range dev.TileTypes {
		t.TileType2Name[i] = tt.NameIdx
		name := dev.Strings[tt.NameIdx]
		t.TileTypeName2TypeIdx[name] = uint32(i)
		if name == "INT" {
			t.IntTypeIdx = uint32(i)
			t.HasIntType = true
		}
	}

	t.WireName2WireID = make(map[string]StringIdx, len(dev.Strings))
	for i, s := range dev.Strings {
		t.WireName2WireID[s] = StringIdx(i)
	}

	t.Pins2Wire = make([]map[PinKey]StringIdx, len(dev.TileTypes))
	t.SourceAndSinkWires = make([]map[StringIdx]struct{}, len(dev.TileTypes))
	for typeIdx, tt := range dev.TileTypes {
		pins := make(map[PinKey]StringIdx)
		srcSink := make(map[StringIdx]struct{})
		for siteLocalIdx, site := range tt.Sites {
			for _, pin := range site.Pins {
				pins[PinKey{PinNameIdx: pin.NameIdx, SiteTypeLocalIx: uint32(siteLocalIdx)}] = pin.TileWireIdx
				srcSink[pin.TileWireIdx] = struct{}{}
			}
		}
		t.Pins2Wire[typeIdx] = pins
		t.SourceAndSinkWires[typeIdx] = srcSink
	}

	t.WiresWithDownhillPips = make([]map[StringIdx]struct{}, len(dev.TileTypes))
	t.WiresWithUphillPips = make([]map[StringIdx]struct{}, len(dev.TileTypes))
	for typeIdx, tt := range dev.TileTypes {
		down := make(map[StringIdx]struct{})
		up := make(map[StringIdx]struct{})
		for _, p := range tt.Pips {
			if !isRoutable(tt, p) {
				continue
			}
			down[tt.Wires[p.Wire0]] = struct{}{}
			up[tt.Wires[p.Wire1]] = struct{}{}
		}
		t.WiresWithDownhillPips[typeIdx] = down
		t.WiresWithUphillPips[typeIdx] = up
	}

	t.Wire2Node = make(map[GlobalWire]NodeID)
	t.NodeWires = dev.Nodes
	for id, wires := range dev.Nodes {
		for _, w := range wires {
			t.Wire2Node[w] = NodeID(id)
		}
	}

	// wireSpansMulti is keyed by (tile type, wire-name idx), not bare
	// wire-name idx: a wire-name string can be reused across tile types,
	// and whether a *particular physical tile's* wire sits on a node
	// spanning more than one wire must never leak across that boundary —
	// a wire named, say, "EE1_W_BEG0" spanning a multi-wire node in one
	// tile type must not mark every other tile type's same-named wire as
	// an output too (§4.1's outputWires is per tile type).
	type typeWireKey struct {
		typeIdx     uint32
		wireNameIdx StringIdx
	}
	wireSpansMulti := make(map[typeWireKey]bool, len(t.Wire2Node))
	for gw, id := range t.Wire2Node {
		if len(t.NodeWires[id]) <= 1 {
			continue
		}
		tileIdx, ok := t.TileName2Tile[gw.TileNameIdx]
		if !ok {
			continue
		}
		wireSpansMulti[typeWireKey{typeIdx: t.Tiles[tileIdx].TypeIdx, wireNameIdx: gw.WireNameIdx}] = true
	}

	t.OutputWires = make([]map[StringIdx]struct{}, len(dev.TileTypes))
	for typeIdx := range dev.TileTypes {
		out := make(map[StringIdx]struct{})
		srcSink := t.SourceAndSinkWires[typeIdx]
		for w := range t.WiresWithUphillPips[typeIdx] {
			if _, isSrcSink := srcSink[w]; isSrcSink {
				out[w] = struct{}{}
				continue
			}
			if wireSpansMulti[typeWireKey{typeIdx: uint32(typeIdx), wireNameIdx: w}] {
				out[w] = struct{}{}
			}
		}
		t.OutputWires[typeIdx] = out
	}

	return t
}

// isRoutable implements §3's CLE*/RCLK* restriction: for tile types whose
// name begins with "CLE" or "RCLK" only PipConventional PIPs are routable;
// every other tile type routes all its PIPs.
func isRoutable(tt TileType, p Pip) bool {
	if !tt.IsCLEOrRCLK {
		return true
	}
	return p.Kind == PipConventional
}

package prerouted

import (
	"testing"

	"FPGARouter/internal/device"
	"FPGARouter/internal/pipgraph"
)

// A CLE tile at (0,0) with site wire A0, whose node crosses into an INT
// tile at (1,0) on wire INT_W0. No PIPs are involved; the chain should be
// found purely via the node crossing.
func crossingTables() *device.Tables {
	const (
		cleTile device.StringIdx = 10
		intTile device.StringIdx = 11
	)
	return &device.Tables{
		StrList: []string{"A0", "INT_W0", "CLE", "INT"},
		Tiles: []device.Tile{
			{NameIdx: cleTile, TypeIdx: 0, X: 0, Y: 0},
			{NameIdx: intTile, TypeIdx: 1, X: 1, Y: 0},
		},
		TileTypes: []device.TileType{
			{NameIdx: 2, Wires: []device.StringIdx{0}, Sites: []device.TileTypeSite{{SiteTypeName: 2, Pins: []device.SitePin{{NameIdx: 0, TileWireIdx: 0}}}}},
			{NameIdx: 3, Wires: []device.StringIdx{1}},
		},
		TileName2Tile: map[device.StringIdx]int{cleTile: 0, intTile: 1},
		OutputWires:   []map[device.StringIdx]struct{}{{}, {}},
		SourceAndSinkWires: []map[device.StringIdx]struct{}{
			{0: {}},
			{},
		},
		WiresWithDownhillPips: []map[device.StringIdx]struct{}{
			{},
			{1: {}},
		},
		WiresWithUphillPips: []map[device.StringIdx]struct{}{
			{},
			{1: {}},
		},
		Wire2Node: map[device.GlobalWire]device.NodeID{
			{TileNameIdx: cleTile, WireNameIdx: 0}: 0,
			{TileNameIdx: intTile, WireNameIdx: 1}: 0,
		},
		NodeWires: [][]device.GlobalWire{
			{{TileNameIdx: cleTile, WireNameIdx: 0}, {TileNameIdx: intTile, WireNameIdx: 1}},
		},
		HasIntType: true,
		IntTypeIdx: 1,
	}
}

func TestBuildFindsNodeCrossingIntoINT(t *testing.T) {
	tables := crossingTables()
	graphs := pipgraph.BuildAll(tables)

	r := Build(tables, graphs)

	key := Key{TileType: 0, SiteWire: 0}
	fanOut, ok := r.FanOut[key]
	if !ok {
		t.Fatalf("expected a FanOut chain for %v", key)
	}
	if len(fanOut.Leaves) != 1 {
		t.Fatalf("expected 1 leaf, got %d", len(fanOut.Leaves))
	}
	leaf := fanOut.Tree.Get(fanOut.Leaves[0])
	if leaf.X != 1 || leaf.Y != 0 || leaf.TileType != 1 {
		t.Fatalf("unexpected leaf: %+v", leaf)
	}

	fanIn, ok := r.FanIn[key]
	if !ok {
		t.Fatalf("expected a FanIn chain for %v", key)
	}
	if len(fanIn.Leaves) != 1 {
		t.Fatalf("expected 1 leaf for fan-in, got %d", len(fanIn.Leaves))
	}
}

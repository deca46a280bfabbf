package template

import (
	"testing"

	"FPGARouter/internal/coord"
	"FPGARouter/internal/device"
)

// Two adjacent tiles of the same type, A at (0,0) and B at (1,0), both
// named "INT" for this test. A's wire "OUT" (idx 0) and B's wire "IN"
// (idx 1) belong to the same node, and B's IN has a downhill pip, so A
// should get one template entry: OUT -> {Δx:1, Δy:0, type:0, wire:1}.
func twoTileTables() (*device.Tables, device.StringIdx /*tileA*/, device.StringIdx /*tileB*/) {
	const (
		tileAName device.StringIdx = 100
		tileBName device.StringIdx = 101
	)

	tiles := []device.Tile{
		{NameIdx: tileAName, TypeIdx: 0, X: 0, Y: 0},
		{NameIdx: tileBName, TypeIdx: 0, X: 1, Y: 0},
	}
	tileTypes := []device.TileType{
		{NameIdx: 2, Wires: []device.StringIdx{0, 1}, Pips: []device.Pip{{Wire0: 0, Wire1: 1}}},
	}

	tables := &device.Tables{
		StrList:   []string{"OUT", "IN", "INT"},
		Tiles:     tiles,
		TileTypes: tileTypes,
		TileName2Tile: map[device.StringIdx]int{
			tileAName: 0,
			tileBName: 1,
		},
		OutputWires: []map[device.StringIdx]struct{}{
			{0: {}},
		},
		SourceAndSinkWires: []map[device.StringIdx]struct{}{
			{},
		},
		WiresWithDownhillPips: []map[device.StringIdx]struct{}{
			{1: {}},
		},
		WiresWithUphillPips: []map[device.StringIdx]struct{}{
			{},
		},
		Wire2Node: map[device.GlobalWire]device.NodeID{
			{TileNameIdx: tileAName, WireNameIdx: 0}: 0,
			{TileNameIdx: tileBName, WireNameIdx: 1}: 0,
		},
		NodeWires: [][]device.GlobalWire{
			{
				{TileNameIdx: tileAName, WireNameIdx: 0},
				{TileNameIdx: tileBName, WireNameIdx: 1},
			},
		},
	}
	return tables, tileAName, tileBName
}

func TestBuildProducesExpectedDestination(t *testing.T) {
	tables, tileAName, _ := twoTileTables()
	g := Build(tables)

	keyA := coord.TileToKey(0, 0, 0)
	if !g.HasTemplate(keyA) {
		t.Fatalf("expected tile A to have a template")
	}

	dests, ok := g.Destinations(keyA, 0)
	if !ok || len(dests) != 1 {
		t.Fatalf("expected 1 destination for OUT, got %v (ok=%v)", dests, ok)
	}
	d := dests[0]
	if d.DeltaX != 1 || d.DeltaY != 0 || d.DestTileTypeIdx != 0 || d.DestInputWire != 1 {
		t.Fatalf("unexpected destination: %+v", d)
	}
	_ = tileAName
}

func TestBuildDeduplicatesIdenticalTemplates(t *testing.T) {
	// Four tiles: A and C share the same relative layout to a node
	// partner (B and D respectively). B and D only receive node crossings,
	// so each gets an empty template, and the two empty templates dedup
	// into one entry of their own.
	const (
		tileAName device.StringIdx = 1
		tileBName device.StringIdx = 2
		tileCName device.StringIdx = 3
		tileDName device.StringIdx = 4
	)
	tiles := []device.Tile{
		{NameIdx: tileAName, TypeIdx: 0, X: 0, Y: 0},
		{NameIdx: tileBName, TypeIdx: 0, X: 1, Y: 0},
		{NameIdx: tileCName, TypeIdx: 0, X: 10, Y: 10},
		{NameIdx: tileDName, TypeIdx: 0, X: 11, Y: 10},
	}
	tileTypes := []device.TileType{
		{NameIdx: 200, Wires: []device.StringIdx{50, 51}, Pips: []device.Pip{{Wire0: 0, Wire1: 1}}},
	}
	tables := &device.Tables{
		StrList:   []string{},
		Tiles:     tiles,
		TileTypes: tileTypes,
		TileName2Tile: map[device.StringIdx]int{
			tileAName: 0, tileBName: 1, tileCName: 2, tileDName: 3,
		},
		OutputWires:           []map[device.StringIdx]struct{}{{50: {}}},
		SourceAndSinkWires:    []map[device.StringIdx]struct{}{{}},
		WiresWithDownhillPips: []map[device.StringIdx]struct{}{{51: {}}},
		WiresWithUphillPips:   []map[device.StringIdx]struct{}{{}},
		Wire2Node: map[device.GlobalWire]device.NodeID{
			{TileNameIdx: tileAName, WireNameIdx: 50}: 0,
			{TileNameIdx: tileBName, WireNameIdx: 51}: 0,
			{TileNameIdx: tileCName, WireNameIdx: 50}: 1,
			{TileNameIdx: tileDName, WireNameIdx: 51}: 1,
		},
		NodeWires: [][]device.GlobalWire{
			{{TileNameIdx: tileAName, WireNameIdx: 50}, {TileNameIdx: tileBName, WireNameIdx: 51}},
			{{TileNameIdx: tileCName, WireNameIdx: 50}, {TileNameIdx: tileDName, WireNameIdx: 51}},
		},
	}

	g := Build(tables)
	if g.TemplateCount() != 2 {
		t.Fatalf("expected A/C and B/D templates to dedup to 2 entries, got %d", g.TemplateCount())
	}
}

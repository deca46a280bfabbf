package adapter

import (
	"context"
	"testing"

	"FPGARouter/internal/coord"
	"FPGARouter/internal/device"
	"FPGARouter/internal/physnetlist"
	"FPGARouter/internal/pipgraph"
	"FPGARouter/internal/prerouted"
	"FPGARouter/internal/resource"
	"FPGARouter/internal/router"
	"FPGARouter/internal/template"
)

// fourTileFixture builds a minimal but complete device: two CLE tiles
// (sites, no internal PIPs — their site wires reach the fabric purely via
// node crossings, exercising C4) bracketing two INT tiles (one routable
// PIP each), matching scenario 3 of §8's testable properties: a
// pre-routed source prefix and pre-routed sink suffix around a two-hop
// router-chosen path.
//
//	CLE_SRC (0,0) --node--> INT_0 (1,0) --PIP--> --node--> INT_1 (2,0) --PIP--> --node--> CLE_SINK (3,0)
//	   A_OUT                  INT_IN  INT_OUT        INT_IN   INT_OUT              B_IN
const (
	wA_OUT  device.StringIdx = 0
	wB_IN   device.StringIdx = 1
	wINT_IN device.StringIdx = 2
	wINT_OUT device.StringIdx = 3
)

func fourTileFixture() *device.Tables {
	strList := []string{
		"A_OUT", "B_IN", "INT_IN", "INT_OUT", // 0-3
		"CLE", "INT", // 4-5
		"SLICE",    // 6
		"O", "I",   // 7-8
		"SLICE_A", "SLICE_B", // 9-10
		"CLE_SRC", "INT_0", "INT_1", "CLE_SINK", // 11-14
	}
	wireName2WireID := make(map[string]device.StringIdx, len(strList))
	for i, s := range strList {
		wireName2WireID[s] = device.StringIdx(i)
	}

	const (
		tCLE_SRC  device.StringIdx = 11
		tINT_0    device.StringIdx = 12
		tINT_1    device.StringIdx = 13
		tCLE_SINK device.StringIdx = 14
	)

	tables := &device.Tables{
		StrList: strList,
		Tiles: []device.Tile{
			{NameIdx: tCLE_SRC, TypeIdx: 0, X: 0, Y: 0},
			{NameIdx: tINT_0, TypeIdx: 1, X: 1, Y: 0},
			{NameIdx: tINT_1, TypeIdx: 1, X: 2, Y: 0},
			{NameIdx: tCLE_SINK, TypeIdx: 0, X: 3, Y: 0},
		},
		TileTypes: []device.TileType{
			{ // type 0: CLE
				NameIdx: 4,
				Wires:   []device.StringIdx{wA_OUT, wB_IN},
				Sites: []device.TileTypeSite{{
					SiteTypeName: 6,
					Pins: []device.SitePin{
						{NameIdx: 7, TileWireIdx: wA_OUT},
						{NameIdx: 8, TileWireIdx: wB_IN},
					},
				}},
			},
			{ // type 1: INT
				NameIdx: 5,
				Wires:   []device.StringIdx{wINT_IN, wINT_OUT},
				Pips:    []device.Pip{{Wire0: 0, Wire1: 1}},
			},
		},
		TileName2Tile:   map[device.StringIdx]int{tCLE_SRC: 0, tINT_0: 1, tINT_1: 2, tCLE_SINK: 3},
		WireName2WireID: wireName2WireID,
		HasIntType:      true,
		IntTypeIdx:      1,
		Site2TileType: map[device.StringIdx]device.SiteLocation{
			9:  {TileNameIdx: tCLE_SRC, TileTypeIdx: 0, SiteTypeLocalIx: 0},
			10: {TileNameIdx: tCLE_SINK, TileTypeIdx: 0, SiteTypeLocalIx: 0},
		},
		Pins2Wire: []map[device.PinKey]device.StringIdx{
			{ // type 0
				{PinNameIdx: 7, SiteTypeLocalIx: 0}: wA_OUT,
				{PinNameIdx: 8, SiteTypeLocalIx: 0}: wB_IN,
			},
			{}, // type 1
		},
		SourceAndSinkWires: []map[device.StringIdx]struct{}{
			{wA_OUT: {}, wB_IN: {}},
			{},
		},
		WiresWithDownhillPips: []map[device.StringIdx]struct{}{
			{},
			{wINT_IN: {}},
		},
		WiresWithUphillPips: []map[device.StringIdx]struct{}{
			{},
			{wINT_OUT: {}},
		},
		OutputWires: []map[device.StringIdx]struct{}{
			{},
			{wINT_OUT: {}},
		},
		Wire2Node: map[device.GlobalWire]device.NodeID{
			{TileNameIdx: tCLE_SRC, WireNameIdx: wA_OUT}:  0,
			{TileNameIdx: tINT_0, WireNameIdx: wINT_IN}:   0,
			{TileNameIdx: tINT_0, WireNameIdx: wINT_OUT}:  1,
			{TileNameIdx: tINT_1, WireNameIdx: wINT_IN}:   1,
			{TileNameIdx: tINT_1, WireNameIdx: wINT_OUT}:  2,
			{TileNameIdx: tCLE_SINK, WireNameIdx: wB_IN}:  2,
		},
		NodeWires: [][]device.GlobalWire{
			{{TileNameIdx: tCLE_SRC, WireNameIdx: wA_OUT}, {TileNameIdx: tINT_0, WireNameIdx: wINT_IN}},
			{{TileNameIdx: tINT_0, WireNameIdx: wINT_OUT}, {TileNameIdx: tINT_1, WireNameIdx: wINT_IN}},
			{{TileNameIdx: tINT_1, WireNameIdx: wINT_OUT}, {TileNameIdx: tCLE_SINK, WireNameIdx: wB_IN}},
		},
	}
	return tables
}

func TestIngestRouteEmitRoundTrip(t *testing.T) {
	tables := fourTileFixture()
	graphs := pipgraph.BuildAll(tables)
	templates := template.Build(tables)
	preroutedRes := prerouted.Build(tables, graphs)
	resources := resource.NewTables()

	design := &physnetlist.Design{Nets: []physnetlist.Net{{
		Name:    "net0",
		Sources: []physnetlist.Pin{{Site: "SLICE_A", Pin: "O"}},
		Stubs:   []physnetlist.Pin{{Site: "SLICE_B", Pin: "I"}},
	}}}

	nets, err := Ingest(tables, graphs, preroutedRes, resources, design, Config{BBoxPadX: 3, BBoxPadY: 15})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(nets) != 1 {
		t.Fatalf("expected 1 routable net, got %d", len(nets))
	}
	net := nets[0]
	if len(net.Sources) != 1 || len(net.Sinks) != 1 {
		t.Fatalf("unexpected net shape: %d sources, %d sinks", len(net.Sources), len(net.Sinks))
	}
	if net.Sources[0].Prerouted == nil {
		t.Fatalf("expected source to have a pre-routed fan-out chain")
	}
	if net.Sinks[0].Prerouted == nil {
		t.Fatalf("expected sink to have a pre-routed fan-in chain")
	}

	r := router.New(graphs, templates, resources, router.Config{
		MaxIter: 5, InitialNodeCost: 1, NodeCostCap: 256, HeuristicMultiplier: 4,
	}, nil)
	result := r.RouteNets(context.Background(), nets)
	if !result.Converged {
		t.Fatalf("expected convergence, got %+v", result)
	}
	if !net.Sinks[0].IsRouted {
		t.Fatalf("expected sink to be routed")
	}

	if err := Emit(tables, graphs, design, nets); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	ext := design.Nets[0]
	if len(ext.Stubs) != 0 {
		t.Fatalf("expected the routed sink's stub to be consumed, got %+v", ext.Stubs)
	}
	if len(ext.Pips) != 2 {
		t.Fatalf("expected 2 router-chosen PIPs (one per INT tile), got %d: %+v", len(ext.Pips), ext.Pips)
	}
	for _, p := range ext.Pips {
		if p.Wire0 != "INT_IN" || p.Wire1 != "INT_OUT" {
			t.Fatalf("unexpected pip: %+v", p)
		}
		if p.Tile != "INT_0" && p.Tile != "INT_1" {
			t.Fatalf("unexpected pip tile: %+v", p)
		}
	}
}

func TestIngestSkipsAlreadyRoutedNet(t *testing.T) {
	tables := fourTileFixture()
	graphs := pipgraph.BuildAll(tables)
	preroutedRes := prerouted.Build(tables, graphs)
	resources := resource.NewTables()

	design := &physnetlist.Design{Nets: []physnetlist.Net{{
		Name:    "clk0",
		Sources: []physnetlist.Pin{{Site: "SLICE_A", Pin: "O"}},
		Stubs:   []physnetlist.Pin{{Site: "SLICE_B", Pin: "I"}},
		Pips:    []physnetlist.Pip{{Tile: "INT_0", Wire0: "INT_IN", Wire1: "INT_OUT"}},
	}}}

	nets, err := Ingest(tables, graphs, preroutedRes, resources, design, Config{BBoxPadX: 3, BBoxPadY: 15})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if len(nets) != 0 {
		t.Fatalf("expected the fixed clock-like net to be skipped, got %d routable nets", len(nets))
	}

	g := graphs[1]
	key := coord.TileToKey(1, 0, 1) // INT_0 sits at (1,0) with type idx 1
	tbl, ok := resources.Peek(key)
	if !ok {
		t.Fatalf("expected INT_0's resources to have been touched while forbidding its fixed PIP")
	}
	inVertex, _ := g.ConvertWireToIdx(wINT_IN)
	outVertex, _ := g.ConvertWireToIdx(wINT_OUT)
	if tbl[inVertex].PresentCost != -1 || tbl[outVertex].PresentCost != -1 {
		t.Fatalf("expected both endpoints of the fixed pip to be forbidden, got %+v / %+v", tbl[inVertex], tbl[outVertex])
	}
}

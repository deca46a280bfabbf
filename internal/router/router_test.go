package router

import (
	"context"
	"testing"

	"FPGARouter/internal/branch"
	"FPGARouter/internal/coord"
	"FPGARouter/internal/device"
	"FPGARouter/internal/pipgraph"
	"FPGARouter/internal/resource"
	"FPGARouter/internal/routednet"
	"FPGARouter/internal/template"
)

// Two tile types, two tiles: A (type 0) at (0,0) with wires SRC->OUT, B
// (type 1) at (1,0) with wires IN->SINKW. A's OUT and B's IN share a node,
// so the template connects them; B's SINKW is the only sink-capable wire.
const (
	wireSRC    device.StringIdx = 0
	wireOUT    device.StringIdx = 1
	wireIN     device.StringIdx = 0
	wireSINKW  device.StringIdx = 1
	tileAName  device.StringIdx = 10
	tileBName  device.StringIdx = 11
)

func twoTileFixture() *device.Tables {
	return &device.Tables{
		StrList: []string{"SRC", "OUT", "TYPE0", "TYPE1"},
		Tiles: []device.Tile{
			{NameIdx: tileAName, TypeIdx: 0, X: 0, Y: 0},
			{NameIdx: tileBName, TypeIdx: 1, X: 1, Y: 0},
		},
		TileTypes: []device.TileType{
			{NameIdx: 2, Wires: []device.StringIdx{wireSRC, wireOUT}, Pips: []device.Pip{{Wire0: 0, Wire1: 1}}},
			{NameIdx: 3, Wires: []device.StringIdx{wireIN, wireSINKW}, Pips: []device.Pip{{Wire0: 0, Wire1: 1}}},
		},
		TileName2Tile: map[device.StringIdx]int{tileAName: 0, tileBName: 1},
		OutputWires: []map[device.StringIdx]struct{}{
			{wireOUT: {}},
			{wireSINKW: {}},
		},
		SourceAndSinkWires: []map[device.StringIdx]struct{}{
			{},
			{wireSINKW: {}},
		},
		WiresWithDownhillPips: []map[device.StringIdx]struct{}{
			{wireSRC: {}},
			{wireIN: {}},
		},
		WiresWithUphillPips: []map[device.StringIdx]struct{}{
			{},
			{},
		},
		Wire2Node: map[device.GlobalWire]device.NodeID{
			{TileNameIdx: tileAName, WireNameIdx: wireOUT}: 0,
			{TileNameIdx: tileBName, WireNameIdx: wireIN}:  0,
		},
		NodeWires: [][]device.GlobalWire{
			{
				{TileNameIdx: tileAName, WireNameIdx: wireOUT},
				{TileNameIdx: tileBName, WireNameIdx: wireIN},
			},
		},
	}
}

func newTestNet(name string) *routednet.Net {
	tree := branch.NewTree()
	root := tree.New(branch.Branch{X: 0, Y: 0, TileType: 0, WireGraphIdx: 0, SinkID: branch.NoSink})
	src := &routednet.Source{TileX: 0, TileY: 0, TileType: 0, StartWire: wireSRC, Tree: tree, Root: root}
	sink := &routednet.Sink{TileX: 1, TileY: 0, TileType: 1, Wire: wireSINKW}
	bbox := routednet.NewBoundingBox(0, 0, []*routednet.Sink{sink}, 3, 3)
	return routednet.NewNet(name, []*routednet.Source{src}, []*routednet.Sink{sink}, bbox)
}

func testConfig() Config {
	return Config{MaxIter: 5, InitialNodeCost: 1, NodeCostCap: 256, HeuristicMultiplier: 4}
}

func TestRouteNetsSingleNetConverges(t *testing.T) {
	tables := twoTileFixture()
	graphs := pipgraph.BuildAll(tables)
	templates := template.Build(tables)
	resources := resource.NewTables()

	r := New(graphs, templates, resources, testConfig(), nil)
	net := newTestNet("net0")

	result := r.RouteNets(context.Background(), []*routednet.Net{net})
	if !result.Converged {
		t.Fatalf("expected convergence, got %+v", result)
	}
	if !net.Sinks[0].IsRouted {
		t.Fatalf("expected sink to be routed")
	}

	src := net.Sources[0]
	// root(SRC) -> OUT -> IN (first wire of tile) -> SINKW (sink)
	if len(src.Tree.Get(src.Root).Children) != 1 {
		t.Fatalf("expected root to have exactly one child")
	}
	outID := src.Tree.Get(src.Root).Children[0]
	outBranch := src.Tree.Get(outID)
	if outBranch.WireGraphIdx != int32(wireOUT) || outBranch.TileType != 0 {
		t.Fatalf("unexpected OUT branch: %+v", outBranch)
	}
	if len(outBranch.Children) != 1 {
		t.Fatalf("expected OUT to have exactly one child")
	}
	inID := outBranch.Children[0]
	inBranch := src.Tree.Get(inID)
	if !inBranch.IsFirstWireOfTile || inBranch.TileType != 1 {
		t.Fatalf("unexpected IN branch: %+v", inBranch)
	}
	if len(inBranch.Children) != 1 {
		t.Fatalf("expected IN to have exactly one child")
	}
	sinkBranchID := inBranch.Children[0]
	sinkBranch := src.Tree.Get(sinkBranchID)
	if sinkBranch.SinkID != 0 {
		t.Fatalf("expected terminal branch to carry sinkId 0, got %+v", sinkBranch)
	}

	outKey := coord.TileToKey(0, 0, 0)
	tbl, ok := resources.Peek(outKey)
	if !ok {
		t.Fatalf("expected tile A's resources to have been touched")
	}
	if tbl[wireOUT].Usage != 1 {
		t.Fatalf("expected OUT usage 1, got %d", tbl[wireOUT].Usage)
	}
}

func TestRouteNetsSharedBottleneckNeverConverges(t *testing.T) {
	tables := twoTileFixture()
	graphs := pipgraph.BuildAll(tables)
	templates := template.Build(tables)
	resources := resource.NewTables()

	cfg := testConfig()
	r := New(graphs, templates, resources, cfg, nil)

	netA := newTestNet("netA")
	netB := newTestNet("netB")

	result := r.RouteNets(context.Background(), []*routednet.Net{netA, netB})
	if result.Converged {
		t.Fatalf("expected no convergence: both nets contend for the only physical path")
	}
	if result.Iterations != cfg.MaxIter {
		t.Fatalf("expected the loop to run to MaxIter, got %d", result.Iterations)
	}

	outKey := coord.TileToKey(0, 0, 0)
	tbl, ok := resources.Peek(outKey)
	if !ok {
		t.Fatalf("expected tile A's resources to have been touched")
	}
	if tbl[wireOUT].HistoricCost <= 1 {
		t.Fatalf("expected repeated negotiation to have bumped historic cost, got %d", tbl[wireOUT].HistoricCost)
	}
}

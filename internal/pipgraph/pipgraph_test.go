package pipgraph

import (
	"testing"

	"FPGARouter/internal/device"
	"FPGARouter/internal/resource"
)

// wires: 0=A 1=B 2=C 3=OUT, edges A->B->C->OUT, OUT is the only output.
func smallGraph() *Graph {
	b := NewBuilder()
	b.AddEdge(0, 1)
	b.AddEdge(1, 2)
	b.AddEdge(2, 3)
	outputs := map[device.StringIdx]struct{}{3: {}}
	return b.Build(outputs, nil, nil)
}

func TestFindOutputsReachesOutput(t *testing.T) {
	g := smallGraph()
	res := make(resource.Table, g.NumVertices())
	for i := range res {
		res[i] = resource.NewDefault()
	}

	var scratch Scratch
	found := g.FindOutputs(0, res, 0, 1, &scratch)
	if len(found) != 1 {
		t.Fatalf("expected 1 output, got %d", len(found))
	}
	if found[0].Vertex != 3 {
		t.Fatalf("expected vertex 3, got %d", found[0].Vertex)
	}
	if found[0].Cost <= 0 {
		t.Fatalf("expected positive cost, got %v", found[0].Cost)
	}
}

func TestFindOutputsSkipsForbidden(t *testing.T) {
	b := NewBuilder()
	b.AddEdge(0, 1)
	b.AddEdge(1, 2)
	outputs := map[device.StringIdx]struct{}{2: {}}
	forbidden := map[device.StringIdx]struct{}{1: {}}
	g := b.Build(outputs, nil, forbidden)

	res := make(resource.Table, g.NumVertices())
	copy(res, g.WireResourcesDefault)

	var scratch Scratch
	found := g.FindOutputs(0, res, 0, 1, &scratch)
	if len(found) != 0 {
		t.Fatalf("expected forbidden vertex to block the path, got %d outputs", len(found))
	}
}

func TestFindOutputsPlainAndFindInputs(t *testing.T) {
	g := smallGraph()

	down := g.FindOutputsPlain(0)
	if len(down) != 3 {
		t.Fatalf("expected 3 reachable vertices downhill from A, got %d", len(down))
	}

	up := g.FindInputs(3)
	if len(up) != 3 {
		t.Fatalf("expected 3 reachable vertices uphill from OUT, got %d", len(up))
	}
}

func TestConvertWireIdxRoundTrip(t *testing.T) {
	g := smallGraph()
	idx, ok := g.ConvertWireToIdx(2)
	if !ok {
		t.Fatalf("expected wire 2 to be present")
	}
	if g.ConvertIdxToWire(idx) != 2 {
		t.Fatalf("round trip mismatch")
	}
	if _, ok := g.ConvertWireToIdx(999); ok {
		t.Fatalf("expected unknown wire to report absent")
	}
}

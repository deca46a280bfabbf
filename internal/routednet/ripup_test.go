package routednet

import (
	"testing"

	"FPGARouter/internal/branch"
	"FPGARouter/internal/coord"
	"FPGARouter/internal/resource"
)

// buildForkedTree builds root -> mid (usage 2, in conflict) -> {left, right}
// (each sink-terminal, usage 1 on their own), the shape a net takes right
// after two of its own branches share a bottleneck one hop above a fork.
func buildForkedTree(resources *resource.Tables) (*branch.Tree, branch.ID, coord.TileKey) {
	const tileType = uint32(0)
	key := coord.TileToKey(0, 0, tileType)
	def := make(resource.Table, 3)
	for i := range def {
		def[i] = resource.NewDefault()
	}
	tbl := resources.Get(key, def)
	tbl[0].Usage = 2 // the segment above the fork is in conflict
	tbl[1].Usage = 1
	tbl[2].Usage = 1

	tree := branch.NewTree()
	root := tree.New(branch.Branch{X: 0, Y: 0, TileType: tileType, WireGraphIdx: -1, SinkID: branch.NoSink})
	mid := tree.AddChild(root, branch.Branch{X: 0, Y: 0, TileType: tileType, WireGraphIdx: 0, SinkID: branch.NoSink})
	tree.AddChild(mid, branch.Branch{X: 0, Y: 0, TileType: tileType, WireGraphIdx: 1, SinkID: 0})
	tree.AddChild(mid, branch.Branch{X: 0, Y: 0, TileType: tileType, WireGraphIdx: 2, SinkID: 1})
	return tree, root, key
}

// A fork whose feeding segment is in conflict must have both of its
// sub-branches ripped too: neither is reachable once the segment above
// them is pruned, so leaving their resources' Usage untouched would
// permanently overstate how many routing_branches still own them (§8).
func TestRipBranchesWithConflictCascadesIntoFork(t *testing.T) {
	resources := resource.NewTables()
	tree, root, key := buildForkedTree(resources)

	net := &Net{
		Name:    "forked",
		Sources: []*Source{{TileX: 0, TileY: 0, TileType: 0, Tree: tree, Root: root}},
		Sinks:   []*Sink{{IsRouted: true}, {IsRouted: true}},
	}

	net.RipBranchesWithConflict(1, resources)

	tbl, ok := resources.Peek(key)
	if !ok {
		t.Fatalf("expected tile's resources to have been touched")
	}
	if tbl[0].Usage != 1 {
		t.Fatalf("expected the conflicted segment's usage decremented once, got %d", tbl[0].Usage)
	}
	if tbl[1].Usage != 0 {
		t.Fatalf("expected the left fork branch ripped, got usage %d", tbl[1].Usage)
	}
	if tbl[2].Usage != 0 {
		t.Fatalf("expected the right fork branch ripped, got usage %d", tbl[2].Usage)
	}
	if net.Sinks[0].IsRouted || net.Sinks[1].IsRouted {
		t.Fatalf("expected both sinks' IsRouted cleared by the cascade")
	}
	if len(tree.Get(root).Children) != 0 {
		t.Fatalf("expected the fully-conflicted tree pruned back to a bare root")
	}
}

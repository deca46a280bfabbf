// ripup.go implements §4.5's rip-up and negotiated-congestion cost update
// operations: ripBranchesWithConflict (selective, segment-granular rip-up
// of conflicted chains), ripAll (unconditional full rip), and
// updateNodeCosts (the per-iteration present/historical cost bump).
package routednet

import (
	"math"

	"FPGARouter/internal/branch"
	"FPGARouter/internal/coord"
	"FPGARouter/internal/resource"
)

// ripUpOverage is the clamp §4.5 applies to the final resource of a ripped
// segment, so repeatedly-ripped hotspots don't have their presentCost
// driven arbitrarily negative by one big rip-up.
const ripUpOverage = 8.0

// RipBranchesWithConflict walks each source's tree and rips any maximal
// linear chain segment (one with no fork, ending at a fork or a sink) that
// contains at least one resource currently in conflict (usage > 1). A
// fork all of whose children end up fully ripped is itself folded into its
// parent segment's rip-up, per §4.5's recursion rule.
func (n *Net) RipBranchesWithConflict(nodeCost float64, resources *resource.Tables) {
	for _, src := range n.Sources {
		ripSegment(src.Tree, src.Root, resources, nodeCost, n, true, false)
	}
}

// ripSegment processes the branch at id, which starts a fresh segment
// (either the tree root, or a child of a fork). isRoot is true only for
// the tree's actual root: the source's own starting wire was never
// usage-counted by buildBranches (it is reserved, not searched for), so
// it must not be decremented here either. force is true when an ancestor
// segment has already been ripped, so the path feeding this branch no
// longer exists regardless of whether this segment's own resources are in
// conflict — every descendant still gets visited and ripped exactly once,
// matching the original core's cascading haveConflict recursion
// (`_examples/original_source/routino/net.h`'s ripBranch): it recurses
// into a fork's children unconditionally rather than only when the fork
// itself was found in conflict, so no descendant resource is ever orphaned
// with a stale Usage/PresentCost by a Prune that detaches it from every
// tree walk. It returns true iff id's entire segment — and everything
// below it — was ripped, so a fork caller can drop id from its own child
// list.
func ripSegment(tree *branch.Tree, id branch.ID, resources *resource.Tables, nodeCost float64, n *Net, isRoot, force bool) bool {
	segment := []branch.ID{id}
	cur := id
	for {
		cb := tree.Get(cur)
		if cb.SinkID != branch.NoSink || len(cb.Children) != 1 {
			break
		}
		cur = cb.Children[0]
		segment = append(segment, cur)
	}
	tail := tree.Get(segment[len(segment)-1])

	conflicted := force
	if !conflicted {
		for i, sid := range segment {
			if isRoot && i == 0 {
				continue
			}
			if r, ok := resourceAt(resources, tree.Get(sid)); ok && r.Usage > 1 {
				conflicted = true
				break
			}
		}
	}

	if tail.SinkID == branch.NoSink && len(tail.Children) > 1 {
		if conflicted {
			// The segment feeding this fork is being ripped (or was
			// already forced from above), so the fork is unreachable
			// regardless of its children's own conflict state: cascade
			// the rip into every sub-branch unconditionally.
			for _, c := range tail.Children {
				ripSegment(tree, c, resources, nodeCost, n, false, true)
			}
			tail.Children = nil
		} else {
			origChildren := tail.Children
			survivors := make([]branch.ID, 0, len(origChildren))
			for _, c := range origChildren {
				if !ripSegment(tree, c, resources, nodeCost, n, false, false) {
					survivors = append(survivors, c)
				}
			}
			tail.Children = survivors
			if len(survivors) == 0 {
				// Every sub-branch of this fork got ripped: fold the fork
				// itself into the rip-up too (§4.5's recursion rule).
				conflicted = true
			}
		}
	}

	if !conflicted {
		return false
	}

	for i, sid := range segment {
		if isRoot && i == 0 {
			continue
		}
		ripOneResource(tree.Get(sid), resources, nodeCost, i == len(segment)-1, n)
	}
	tree.Prune(id)
	return true
}

// ripOneResource releases one branch's resource as part of a conflict
// rip-up: usage--, presentCost -= dec (dec is nodeCost, clamped to
// ripUpOverage for the segment's terminal resource). Sink-reserved
// resources (presentCost < 0) only have their sink's isRouted flag
// cleared; they are never decremented (§4.5).
func ripOneResource(b *branch.Branch, resources *resource.Tables, nodeCost float64, isLast bool, n *Net) {
	if b.SinkID != branch.NoSink && int(b.SinkID) < len(n.Sinks) {
		n.Sinks[b.SinkID].IsRouted = false
	}
	r, ok := resourceAt(resources, b)
	if !ok || r.PresentCost < 0 {
		return
	}
	dec := nodeCost
	if isLast {
		dec = math.Min(nodeCost, ripUpOverage)
	}
	r.DecrementUsage()
	r.PresentCost -= dec
}

// RipAll unconditionally rips the entire net: every owned resource's usage
// and cost is released, every source's tree is pruned back to its root,
// and every sink's isRouted flag is cleared.
func (n *Net) RipAll(nodeCost float64, resources *resource.Tables) {
	for _, src := range n.Sources {
		src.Tree.Walk(src.Root, func(id, parent branch.ID) bool {
			if parent == branch.NoID {
				return true
			}
			ripOneResourceUnconditional(src.Tree.Get(id), resources, nodeCost)
			return true
		})
		src.Tree.Prune(src.Root)
	}
	for i := range n.Sinks {
		n.Sinks[i].IsRouted = false
	}
	n.TotCost = 0
}

func ripOneResourceUnconditional(b *branch.Branch, resources *resource.Tables, nodeCost float64) {
	r, ok := resourceAt(resources, b)
	if !ok || r.PresentCost < 0 {
		return
	}
	r.DecrementUsage()
	r.PresentCost -= nodeCost
}

// UpdateNodeCosts implements §4.5/§4.6's per-iteration negotiated-
// congestion bump: every non-sink resource in the tree gets +increment
// present cost; a resource still in conflict (usage > 1) is added to
// conflictSet and its contribution to the net's total cost uses the
// extra-penalized formula, otherwise its plain cost is added and
// UpdateHistoricCost adds usage-1 to its historical cost, which leaves it
// unchanged for a resource used at most once.
func (n *Net) UpdateNodeCosts(increment float64, resources *resource.Tables, conflictSet map[coord.ResourceKey]struct{}) {
	n.TotCost = 0
	for _, src := range n.Sources {
		src.Tree.Walk(src.Root, func(id, parent branch.ID) bool {
			if parent == branch.NoID {
				return true
			}
			b := src.Tree.Get(id)
			r, ok := resourceAt(resources, b)
			if !ok || r.PresentCost < 0 {
				return true
			}
			r.PresentCost += increment
			if r.Usage > 1 {
				key := coord.TileToKey(b.X, b.Y, b.TileType)
				conflictSet[coord.PackResource(key, int32(b.WireGraphIdx))] = struct{}{}
				n.TotCost += (increment*2*float64(r.Usage) + 1) * (float64(r.HistoricCost) + float64(r.Usage))
			} else {
				n.TotCost += r.Cost()
				r.UpdateHistoricCost()
			}
			return true
		})
	}
}

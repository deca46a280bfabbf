// path.go implements §4.6's A* search proper: findPath explores the
// two-level graph (per-tile PipGraph plus inter-tile template) from a
// net's sources toward one sink, reconstructThePath walks the discovered
// predecessor chain back into an ordered list of per-tile wire hops, and
// buildBranches splices those hops onto the net's routing tree.
package router

import (
	"FPGARouter/internal/branch"
	"FPGARouter/internal/coord"
	"FPGARouter/internal/device"
	"FPGARouter/internal/pipgraph"
	"FPGARouter/internal/resource"
	"FPGARouter/internal/routednet"

	"container/heap"
)

// startDesc is one source's effective A* entry point, computed once per
// net and reused (as fresh aStarNode instances) across every sink search.
type startDesc struct {
	x, y     int
	tileType uint32
	wire     device.StringIdx
	source   *routednet.Source
}

// buildStartDescs derives one startDesc per source. A source whose start
// wire is itself a PipGraph vertex begins the search there; otherwise its
// wire sits on a node spanning tiles and the template's last destination
// for it is the actual entry point the search pushes (§4.6 step 1).
func (r *Router) buildStartDescs(n *routednet.Net) []startDesc {
	descs := make([]startDesc, 0, len(n.Sources))
	for _, src := range n.Sources {
		g := r.graphFor(src.TileType)
		if g == nil {
			continue
		}
		if _, ok := g.ConvertWireToIdx(src.StartWire); ok {
			descs = append(descs, startDesc{x: src.TileX, y: src.TileY, tileType: src.TileType, wire: src.StartWire, source: src})
			continue
		}
		tileKey := coord.TileToKey(src.TileX, src.TileY, src.TileType)
		dests, ok := r.Templates.Destinations(tileKey, src.StartWire)
		if !ok || len(dests) == 0 {
			continue
		}
		d := dests[len(dests)-1]
		descs = append(descs, startDesc{
			x: src.TileX + int(d.DeltaX), y: src.TileY + int(d.DeltaY),
			tileType: d.DestTileTypeIdx, wire: d.DestInputWire, source: src,
		})
	}
	return descs
}

// bestInfo records the cheapest goal arrival found so far: the node whose
// FindOutputs call reached the sink vertex, and the cost to get there.
type bestInfo struct {
	pred     *aStarNode
	goalWire device.StringIdx
	cost     float64
}

// parentEdge records, for one destination (tile, wire) discovered during
// search, which node produced it and which output vertex of that node's
// tile it crossed a node from.
type parentEdge struct {
	pred    *aStarNode
	outWire device.StringIdx
}

// findPath runs one sink's A* search per §4.6: push every source's start
// node, then repeatedly pop the frontier's cheapest node, expand it within
// its tile via PipGraph.FindOutputs, and for every non-goal output vertex
// fan out across the inter-tile template to push successor nodes. Search
// stops once the cheapest remaining frontier priority can no longer beat
// the best goal arrival found so far.
func (r *Router) findPath(n *routednet.Net, starts []startDesc, targetX, targetY int, runID uint64) (*bestInfo, map[coord.TileWireKey]parentEdge) {
	pq := make(nodeHeap, 0, len(starts))
	for _, s := range starts {
		heap.Push(&pq, &aStarNode{x: s.x, y: s.y, tileType: s.tileType, wireIn: s.wire})
	}
	parent := make(map[coord.TileWireKey]parentEdge)
	var best *bestInfo

	for pq.Len() > 0 {
		nd := heap.Pop(&pq).(*aStarNode)
		if best != nil && best.cost <= nd.priority() {
			return best, parent
		}

		g := r.graphFor(nd.tileType)
		if g == nil {
			continue
		}
		tileKey := coord.TileToKey(nd.x, nd.y, nd.tileType)
		if !r.Templates.HasTemplate(tileKey) {
			continue
		}

		resTable := r.Resources.Get(tileKey, g.WireResourcesDefault)
		found := g.FindOutputs(nd.wireIn, resTable, nd.cost, runID, &r.scratch)

		for _, f := range found {
			if resTable[f.Vertex].PresentCost == 0 {
				if best == nil || f.Cost < best.cost {
					best = &bestInfo{pred: nd, goalWire: g.ConvertIdxToWire(f.Vertex), cost: f.Cost}
				}
				continue
			}
			if best != nil && f.Cost >= best.cost {
				continue
			}

			outWire := g.ConvertIdxToWire(f.Vertex)
			dests, ok := r.Templates.Destinations(tileKey, outWire)
			if !ok {
				continue
			}
			for _, d := range dests {
				x2, y2 := nd.x+int(d.DeltaX), nd.y+int(d.DeltaY)
				if !n.IsInsideBoundingBox(x2, y2) {
					continue
				}
				destKey := coord.TileWireAt(x2, y2, d.DestTileTypeIdx, uint32(d.DestInputWire))
				if _, exists := parent[destKey]; exists {
					continue
				}
				parent[destKey] = parentEdge{pred: nd, outWire: outWire}
				heur := float64(routednet.ManhattanDistance(x2, y2, targetX, targetY)) * r.Cfg.HeuristicMultiplier
				heap.Push(&pq, &aStarNode{x: x2, y: y2, tileType: d.DestTileTypeIdx, cost: f.Cost, heuristic: heur, wireIn: d.DestInputWire})
			}
		}
	}
	return best, parent
}

// reconstructThePath walks the predecessor chain backward from best into
// an ordered list of tileHop (sink tile first, source tile last), and
// returns the originating start node so the caller can find which
// source's tree owns the path.
func reconstructThePath(best *bestInfo, goalWire device.StringIdx, parent map[coord.TileWireKey]parentEdge, graphs []*pipgraph.Graph, resources *resource.Tables) ([]tileHop, *aStarNode) {
	var hops []tileHop
	cur := best.pred
	curOutWire := goalWire

	for {
		g := graphs[cur.tileType]
		tileKey := coord.TileToKey(cur.x, cur.y, cur.tileType)
		resTable, _ := resources.Peek(tileKey)
		endVertex, _ := g.ConvertWireToIdx(curOutWire)
		hops = append(hops, tileHop{x: cur.x, y: cur.y, tileType: cur.tileType, wires: chaseWires(g, resTable, endVertex)})

		destKey := coord.TileWireAt(cur.x, cur.y, cur.tileType, uint32(cur.wireIn))
		pe, ok := parent[destKey]
		if !ok {
			return hops, cur
		}
		cur = pe.pred
		curOutWire = pe.outWire
	}
}

// tileHop is one tile's worth of the reconstructed path: the ordered
// chain of wires (tile-entry wire first, the tile's exit/goal wire last)
// traversed inside that tile.
type tileHop struct {
	x, y     int
	tileType uint32
	wires    []device.StringIdx
}

// chaseWires walks wire_resource.Parent backward from endVertex until the
// NoParent sentinel (the tile-entry wire, reached via a node rather than a
// PIP), then reverses the result into source-to-sink order.
func chaseWires(g *pipgraph.Graph, resTable resource.Table, endVertex pipgraph.VertexID) []device.StringIdx {
	var chain []pipgraph.VertexID
	v := endVertex
	for {
		chain = append(chain, v)
		p := resTable[v].Parent
		if p == resource.NoParent {
			break
		}
		v = pipgraph.VertexID(p)
	}
	wires := make([]device.StringIdx, len(chain))
	for i, vv := range chain {
		wires[len(chain)-1-i] = g.ConvertIdxToWire(vv)
	}
	return wires
}

// buildBranches splices the reconstructed path onto src's tree, walking
// hops from the source side to the sink side (reverse of reconstruction
// order) and, at each wire, reusing an existing child branch with
// the same target when one already exists (a shared-prefix fork) instead
// of creating a duplicate. It returns the final (sink-terminal) branch.
func (r *Router) buildBranches(src *routednet.Source, hops []tileHop, nodeCost float64) branch.ID {
	tree := src.Tree
	cur := src.Root

	for i := len(hops) - 1; i >= 0; i-- {
		hop := hops[i]
		g := r.graphFor(hop.tileType)
		start := 0
		if i == len(hops)-1 {
			// hops[last].wires[0] is the source's own start wire, already
			// represented by src.Root.
			start = 1
		}
		for wi := start; wi < len(hop.wires); wi++ {
			w := hop.wires[wi]
			vIdx := int32(-1)
			if vertex, ok := g.ConvertWireToIdx(w); ok {
				vIdx = int32(vertex)
			}
			want := branch.Branch{
				X: hop.x, Y: hop.y, TileType: hop.tileType, WireGraphIdx: vIdx,
				IsFirstWireOfTile: wi == 0, SinkID: branch.NoSink,
			}
			cur = r.findOrCreateChild(tree, cur, want, g, nodeCost)
		}
	}
	return cur
}

func (r *Router) findOrCreateChild(tree *branch.Tree, parent branch.ID, want branch.Branch, g *pipgraph.Graph, nodeCost float64) branch.ID {
	pb := tree.Get(parent)
	for _, c := range pb.Children {
		cb := tree.Get(c)
		if cb.X == want.X && cb.Y == want.Y && cb.TileType == want.TileType && cb.WireGraphIdx == want.WireGraphIdx {
			return c
		}
	}
	id := tree.AddChild(parent, want)
	if want.WireGraphIdx >= 0 {
		key := coord.TileToKey(want.X, want.Y, want.TileType)
		tbl := r.Resources.Get(key, g.WireResourcesDefault)
		res := &tbl[want.WireGraphIdx]
		res.ExploredID = resource.OwnedByCurrentNet
		if res.PresentCost > -1 {
			res.Usage++
			res.PresentCost += nodeCost
		}
	}
	return id
}

// Package router implements C6: the negotiated-congestion outer loop and
// the A* search it drives per iteration, operating over the PipGraph
// (C2), template (C3), and routing-tree (C5) state built by the rest of
// the router core.
package router

import (
	"context"
	"math"
	"sort"
	"time"

	"FPGARouter/internal/coord"
	"FPGARouter/internal/logger"
	"FPGARouter/internal/pipgraph"
	"FPGARouter/internal/resource"
	"FPGARouter/internal/routednet"
	"FPGARouter/internal/telemetry/routetrace"
	"FPGARouter/internal/template"
)

// Config holds the outer loop's tunables, the Go-side mirror of the
// teacher's per-component config structs (here internal/config.RouterConfig).
type Config struct {
	MaxIter             int
	InitialNodeCost     float64
	NodeCostCap         float64
	HeuristicMultiplier float64
}

// Router owns the per-tile-type graphs, the inter-tile template, and the
// shared resource tables RouteNets negotiates over. It is built once per
// device and reused across every net passed to RouteNets.
type Router struct {
	Graphs    []*pipgraph.Graph
	Templates *template.Graphs
	Resources *resource.Tables
	Cfg       Config
	Logger    logger.Logger

	runID   uint64
	scratch pipgraph.Scratch
}

// New builds a Router over an already-constructed switch-box graph set,
// template graph, and shared resource tables.
func New(graphs []*pipgraph.Graph, templates *template.Graphs, resources *resource.Tables, cfg Config, lgr logger.Logger) *Router {
	if lgr == nil {
		lgr = &logger.NopLogger{}
	}
	return &Router{Graphs: graphs, Templates: templates, Resources: resources, Cfg: cfg, Logger: lgr.Named("router")}
}

func (r *Router) graphFor(tileType uint32) *pipgraph.Graph {
	if int(tileType) >= len(r.Graphs) {
		return nil
	}
	return r.Graphs[tileType]
}

// Result summarizes one RouteNets run.
type Result struct {
	Iterations int
	Converged  bool
}

// RouteNets runs §4.6's negotiated-congestion outer loop: route every net
// (ripping up and rerouting conflicted ones after the first pass), bump
// present/historical costs, and repeat until no net has a conflict or
// Cfg.MaxIter is reached.
func (r *Router) RouteNets(ctx context.Context, nets []*routednet.Net) Result {
	nodeCost := r.Cfg.InitialNodeCost
	conflictWires := make(map[coord.ResourceKey]struct{})
	start := time.Now()

	for iter := 1; iter <= r.Cfg.MaxIter; iter++ {
		sort.Slice(nets, func(i, j int) bool { return nets[i].TotCost > nets[j].TotCost })

		iterCtx, span := routetrace.StartIteration(ctx, iter, nodeCost)
		routed, conflicting := r.routeIteration(iterCtx, nets, iter, nodeCost)

		increment := nodeCost
		for _, n := range nets {
			n.UpdateNodeCosts(increment, r.Resources, conflictWires)
		}
		for key := range conflictWires {
			r.bumpHistoricCost(key)
		}
		numConflictWires := len(conflictWires)
		for key := range conflictWires {
			delete(conflictWires, key)
		}
		nodeCost = math.Min(nodeCost*2, r.Cfg.NodeCostCap)

		routetrace.EndIteration(span, routed, conflicting, numConflictWires)
		span.End()
		r.Logger.Info("routing iteration complete",
			logger.F("iter", iter), logger.F("routed_nets", routed),
			logger.F("conflicting_nets", conflicting), logger.F("conflicting_wires", numConflictWires),
			logger.F("elapsed_s", time.Since(start).Seconds()))

		if conflicting == 0 {
			return Result{Iterations: iter, Converged: true}
		}
	}

	r.Logger.Warn("router gave up without a conflict-free solution", logger.F("max_iter", r.Cfg.MaxIter))
	return Result{Iterations: r.Cfg.MaxIter, Converged: false}
}

func (r *Router) bumpHistoricCost(key coord.ResourceKey) {
	tileKey, vertex := coord.UnpackResource(key)
	tbl, ok := r.Resources.Peek(tileKey)
	if !ok || int(vertex) >= len(tbl) {
		return
	}
	tbl[vertex].UpdateHistoricCost()
}

// routeIteration routes every net once: on the first iteration every sink
// is unrouted so every net gets a full route; on later iterations a net
// with a live conflict is ripped up first (§4.5's selective rip-up), then
// every still-unrouted sink is retried. It returns how many nets ended the
// iteration fully routed and how many still have a conflict.
func (r *Router) routeIteration(ctx context.Context, nets []*routednet.Net, iter int, nodeCost float64) (routed, conflicting int) {
	for _, n := range nets {
		_, span := routetrace.StartNet(ctx, n.Name, len(n.Sinks))

		if iter > 1 && n.HasConflicts(r.Resources) {
			n.RipBranchesWithConflict(nodeCost, r.Resources)
		}

		r.routeNet(n, nodeCost)
		n.ResetExploredFlags(r.Resources)

		span.End()

		allRouted := true
		for _, s := range n.Sinks {
			if !s.IsRouted {
				allRouted = false
				break
			}
		}
		if allRouted {
			routed++
		}
		if n.HasConflicts(r.Resources) {
			conflicting++
		}
	}
	return routed, conflicting
}

// routeNet attempts to route every currently-unrouted sink of n, reusing
// one set of source start descriptors across all of them.
func (r *Router) routeNet(n *routednet.Net, nodeCost float64) {
	starts := r.buildStartDescs(n)
	if len(starts) == 0 {
		return
	}
	for i, sink := range n.Sinks {
		if sink.IsRouted {
			continue
		}
		r.routeSink(n, i, sink, starts, nodeCost)
	}
}

// routeSink runs one A* search for sink, temporarily marking its entry
// resource as the goal (presentCost=0) for the duration of the search, and
// on success splices the reconstructed path onto the owning source's tree.
func (r *Router) routeSink(n *routednet.Net, sinkIdx int, sink *routednet.Sink, starts []startDesc, nodeCost float64) {
	g := r.graphFor(sink.TileType)
	if g == nil {
		return
	}
	vertex, ok := g.ConvertWireToIdx(sink.Wire)
	if !ok {
		r.Logger.Warn("sink wire has no PipGraph vertex", logger.F("net", n.Name), logger.F("sink", sinkIdx))
		return
	}
	key := coord.TileToKey(sink.TileX, sink.TileY, sink.TileType)
	tbl := r.Resources.Get(key, g.WireResourcesDefault)
	tbl[vertex].PresentCost = 0

	r.runID++
	best, parent := r.findPath(n, starts, sink.TileX, sink.TileY, r.runID)

	tbl[vertex].PresentCost = -1

	if best == nil {
		r.Logger.Debug("sink unreachable this attempt", logger.F("net", n.Name), logger.F("sink", sinkIdx))
		return
	}

	hops, startNode := reconstructThePath(best, best.goalWire, parent, r.Graphs, r.Resources)
	src := sourceFor(starts, startNode)
	if src == nil {
		return
	}
	leaf := r.buildBranches(src, hops, nodeCost)
	src.Tree.Get(leaf).SinkID = int32(sinkIdx)
	sink.IsRouted = true
	r.Logger.Debug("sink routed", logger.F("net", n.Name), logger.F("sink", sinkIdx), logger.F("cost", best.cost))
}

func sourceFor(starts []startDesc, node *aStarNode) *routednet.Source {
	for _, s := range starts {
		if s.x == node.x && s.y == node.y && s.tileType == node.tileType && s.wire == node.wireIn {
			return s.source
		}
	}
	return nil
}

// Command fpgaroute is the CLI driver (§6, §11): load a device
// description and a placed-but-unrouted design, run the negotiated-
// congestion router, and write the routed design back out.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"FPGARouter/internal/adapter"
	"FPGARouter/internal/config"
	"FPGARouter/internal/device"
	"FPGARouter/internal/logger"
	zapfactory "FPGARouter/internal/logger/zap"
	"FPGARouter/internal/physnetlist"
	"FPGARouter/internal/pipgraph"
	"FPGARouter/internal/prerouted"
	"FPGARouter/internal/resource"
	"FPGARouter/internal/router"
	"FPGARouter/internal/telemetry"
	"FPGARouter/internal/template"
)

var defaultConfigPath = "config/fpgaroute/config.yaml"

func main() {
	// Parse command-line flags
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	devicePath := flag.String("device", "", "path to the device description (JSON)")
	flag.Parse()

	if flag.NArg() != 2 || *devicePath == "" {
		fmt.Fprintln(os.Stderr, "usage: fpgaroute -device <device.json> [-config <path>] <input.phys.json> <output.phys.json>")
		os.Exit(1)
	}
	inputPath, outputPath := flag.Arg(0), flag.Arg(1)

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration from %q: %v", *configPath, err)
	}
	cfg.ApplyEnvOverrides()
	// Validate configuration
	if err := cfg.ValidateConfig(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// Initialize logger
	var lgr logger.Logger
	if cfg.Logger.Active {
		zapLog, err := zapfactory.New(cfg.Logger)
		if err != nil {
			log.Fatalf("failed to initialize logger: %v", err)
		}
		defer func() { _ = zapLog.Sync() }()   // flush logger buffers before exit
		lgr = zapfactory.NewZapAdapter(zapLog) // adapt zap.Logger to logger.Logger
	} else {
		lgr = &logger.NopLogger{} // no-op logger
	}
	// Log loaded configuration at DEBUG level
	cfg.LogConfig(lgr)

	// Initialize telemetry
	shutdown := telemetry.InitTracer(cfg.Telemetry, "fpgaroute")
	defer shutdown(context.Background())

	// Load the device description and its derived tables (cache-or-derive, §4.1/§6)
	rawDevice, devKey, err := device.LoadRawDeviceFile(*devicePath)
	if err != nil {
		lgr.Error("failed to load device description", logger.F("err", err))
		os.Exit(1)
	}
	cache, err := device.NewCache(cfg.Cache.Dir, 4)
	if err != nil {
		lgr.Error("failed to open device cache", logger.F("err", err))
		os.Exit(1)
	}
	tables, err := cache.LoadOrDerive(devKey, rawDevice)
	if err != nil {
		lgr.Warn("device cache write failed, continuing with recomputed tables", logger.F("err", err))
	}
	lgr.Info("device tables ready", logger.F("tiles", len(tables.Tiles)), logger.F("tile_types", len(tables.TileTypes)))

	// Build the switch-box graphs (C2), the inter-tile template (C3), and
	// the pre-routed fan-in/out table (C4)
	graphs := pipgraph.BuildAll(tables)
	templates := template.Build(tables)
	preroutedRes := prerouted.Build(tables, graphs)
	lgr.Debug("pre-routed fan-in/out built",
		logger.F("fan_out", len(preroutedRes.FanOut)), logger.F("fan_in", len(preroutedRes.FanIn)))
	resources := resource.NewTables()

	// Ingest the design (C7)
	design, err := physnetlist.ReadFile(inputPath)
	if err != nil {
		lgr.Error("failed to read design", logger.F("err", err))
		os.Exit(1)
	}
	nets, err := adapter.Ingest(tables, graphs, preroutedRes, resources, design, adapter.Config{
		BBoxPadX: cfg.Router.BBoxPadX, BBoxPadY: cfg.Router.BBoxPadY,
	})
	if err != nil {
		lgr.Error("failed to ingest design", logger.F("err", err))
		os.Exit(1)
	}
	lgr.Info("design ingested", logger.F("routable_nets", len(nets)))

	// Route (C6)
	r := router.New(graphs, templates, resources, router.Config{
		MaxIter:             cfg.Router.MaxIter,
		InitialNodeCost:     cfg.Router.InitialNodeCost,
		NodeCostCap:         cfg.Router.NodeCostCap,
		HeuristicMultiplier: cfg.Router.HeuristicMultiplier,
	}, lgr.Named("router"))

	start := time.Now()
	result := r.RouteNets(context.Background(), nets)
	elapsed := time.Since(start)

	if result.Converged {
		lgr.Info("routing converged", logger.F("iterations", result.Iterations), logger.F("elapsed", elapsed))
	} else {
		// §7: convergence failure is non-fatal — the best-effort routing
		// is still emitted so the user can diagnose which nets remain
		// unrouted.
		lgr.Warn("router gave up without a conflict-free solution; emitting best-effort routing",
			logger.F("iterations", result.Iterations), logger.F("elapsed", elapsed))
	}

	// Emit the routed design (C7)
	if err := adapter.Emit(tables, graphs, design, nets); err != nil {
		lgr.Error("failed to emit routed design", logger.F("err", err))
		os.Exit(1)
	}
	if err := physnetlist.WriteFile(outputPath, design); err != nil {
		lgr.Error("failed to write routed design", logger.F("err", err))
		os.Exit(1)
	}
}

// Package config loads and validates the router CLI's YAML configuration:
// the negotiated-congestion tunables (§4.6, §9's MAX_ITER/node-cost design
// notes), the on-disk derived-table cache directory (§4.1/§6), and the
// ambient logger/telemetry stacks. Shape (LoadConfig/ApplyEnvOverrides/
// ValidateConfig/LogConfig) follows the teacher's internal/config.
package config

import (
	"fmt"
	"strings"

	"FPGARouter/internal/configloader"
	"FPGARouter/internal/logger"
)

type FileLoggerConfig struct {
	Path       string `yaml:"path"`
	MaxSize    int    `yaml:"maxSize"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAge     int    `yaml:"maxAge"`
	Compress   bool   `yaml:"compress"`
}

type LoggerConfig struct {
	Active   bool             `yaml:"active"`
	Level    string           `yaml:"level"`
	Encoding string           `yaml:"encoding"`
	Mode     string           `yaml:"mode"`
	File     FileLoggerConfig `yaml:"file"`
}

type TracingConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint"`
}

type TelemetryConfig struct {
	Tracing TracingConfig `yaml:"tracing"`
}

// RouterConfig holds the negotiated-congestion loop's tunables (§4.6,
// §5, §9). Names mirror the source constants the spec calls out:
// MAX_ITER, the doubling-capped node cost, the bounding-box padding
// (+3 x, +15 y default per §4.5), and the A* heuristic's ×4 multiplier.
type RouterConfig struct {
	MaxIter             int     `yaml:"maxIter"`
	InitialNodeCost     float64 `yaml:"initialNodeCost"`
	NodeCostCap         float64 `yaml:"nodeCostCap"`
	BBoxPadX            int     `yaml:"bboxPadX"`
	BBoxPadY            int     `yaml:"bboxPadY"`
	HeuristicMultiplier float64 `yaml:"heuristicMultiplier"`
}

// CacheConfig points at the directory §4.1/§6 describe: one opaque binary
// file per derived device table, unversioned — delete the directory to
// invalidate.
type CacheConfig struct {
	Dir string `yaml:"dir"`
}

type Config struct {
	Logger    LoggerConfig    `yaml:"logger"`
	Router    RouterConfig    `yaml:"router"`
	Cache     CacheConfig     `yaml:"cache"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// LoadConfig loads the configuration from a YAML file at the given path.
//
// This function performs only syntactic parsing of the YAML file. To
// validate the configuration structure and check for missing or invalid
// fields, call cfg.ValidateConfig() after loading.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := configloader.LoadYAML(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnvOverrides applies environment variable overrides to the
// configuration. Supported overrides:
//
//	ROUTER_MAX_ITER            -> cfg.Router.MaxIter
//	ROUTER_INITIAL_NODE_COST   -> cfg.Router.InitialNodeCost
//	ROUTER_NODE_COST_CAP       -> cfg.Router.NodeCostCap
//	ROUTER_BBOX_PAD_X          -> cfg.Router.BBoxPadX
//	ROUTER_BBOX_PAD_Y          -> cfg.Router.BBoxPadY
//	ROUTER_HEURISTIC_MULTIPLIER -> cfg.Router.HeuristicMultiplier
//	CACHE_DIR                  -> cfg.Cache.Dir
//	TRACE_ENABLED            -> cfg.Telemetry.Tracing.Enabled
//	TRACE_EXPORTER           -> cfg.Telemetry.Tracing.Exporter
//	TRACE_ENDPOINT           -> cfg.Telemetry.Tracing.Endpoint
//	LOGGER_ENABLED           -> cfg.Logger.Active
//	LOGGER_LEVEL             -> cfg.Logger.Level
//	LOGGER_ENCODING          -> cfg.Logger.Encoding
//	LOGGER_MODE              -> cfg.Logger.Mode
//	LOGGER_FILE_PATH         -> cfg.Logger.File.Path
func (cfg *Config) ApplyEnvOverrides() {
	configloader.OverrideInt(&cfg.Router.MaxIter, "ROUTER_MAX_ITER")
	configloader.OverrideFloat(&cfg.Router.InitialNodeCost, "ROUTER_INITIAL_NODE_COST")
	configloader.OverrideFloat(&cfg.Router.NodeCostCap, "ROUTER_NODE_COST_CAP")
	configloader.OverrideInt(&cfg.Router.BBoxPadX, "ROUTER_BBOX_PAD_X")
	configloader.OverrideInt(&cfg.Router.BBoxPadY, "ROUTER_BBOX_PAD_Y")
	configloader.OverrideFloat(&cfg.Router.HeuristicMultiplier, "ROUTER_HEURISTIC_MULTIPLIER")
	configloader.OverrideString(&cfg.Cache.Dir, "CACHE_DIR")
	configloader.OverrideBool(&cfg.Telemetry.Tracing.Enabled, "TRACE_ENABLED")
	configloader.OverrideString(&cfg.Telemetry.Tracing.Exporter, "TRACE_EXPORTER")
	configloader.OverrideString(&cfg.Telemetry.Tracing.Endpoint, "TRACE_ENDPOINT")
	configloader.OverrideBool(&cfg.Logger.Active, "LOGGER_ENABLED")
	configloader.OverrideString(&cfg.Logger.Level, "LOGGER_LEVEL")
	configloader.OverrideString(&cfg.Logger.Encoding, "LOGGER_ENCODING")
	configloader.OverrideString(&cfg.Logger.Mode, "LOGGER_MODE")
	configloader.OverrideString(&cfg.Logger.File.Path, "LOGGER_FILE_PATH")
}

// ValidateConfig performs structural validation of the loaded
// configuration. All detected issues are accumulated and returned as a
// single error.
func (cfg *Config) ValidateConfig() error {
	var errs []string

	switch cfg.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.level: %s", cfg.Logger.Level))
	}
	switch cfg.Logger.Encoding {
	case "console", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.encoding: %s", cfg.Logger.Encoding))
	}
	switch cfg.Logger.Mode {
	case "stdout":
	case "file":
		if cfg.Logger.File.Path == "" {
			errs = append(errs, "logger.file.path is required when mode=file")
		}
		if cfg.Logger.File.MaxSize < 0 || cfg.Logger.File.MaxBackups < 0 || cfg.Logger.File.MaxAge < 0 {
			errs = append(errs, "logger.file.* values must be non-negative")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid logger.mode: %s", cfg.Logger.Mode))
	}

	if cfg.Router.MaxIter <= 0 {
		errs = append(errs, "router.maxIter must be > 0")
	}
	if cfg.Router.InitialNodeCost <= 0 {
		errs = append(errs, "router.initialNodeCost must be > 0")
	}
	if cfg.Router.NodeCostCap < cfg.Router.InitialNodeCost {
		errs = append(errs, "router.nodeCostCap must be >= router.initialNodeCost")
	}
	if cfg.Router.BBoxPadX < 0 || cfg.Router.BBoxPadY < 0 {
		errs = append(errs, "router.bboxPadX/bboxPadY must be >= 0")
	}
	if cfg.Router.HeuristicMultiplier <= 0 {
		errs = append(errs, "router.heuristicMultiplier must be > 0")
	}

	if cfg.Cache.Dir == "" {
		errs = append(errs, "cache.dir is required")
	}

	if cfg.Telemetry.Tracing.Enabled {
		switch cfg.Telemetry.Tracing.Exporter {
		case "stdout", "otlp":
		default:
			errs = append(errs, fmt.Sprintf("invalid telemetry.tracing.exporter: %s", cfg.Telemetry.Tracing.Exporter))
		}
		if cfg.Telemetry.Tracing.Exporter == "otlp" && cfg.Telemetry.Tracing.Endpoint == "" {
			errs = append(errs, "telemetry.tracing.endpoint is required for the otlp exporter")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// LogConfig prints the loaded configuration at DEBUG level.
func (cfg *Config) LogConfig(lgr logger.Logger) {
	lgr.Debug("loaded configuration",
		logger.F("logger.active", cfg.Logger.Active),
		logger.F("logger.level", cfg.Logger.Level),
		logger.F("logger.encoding", cfg.Logger.Encoding),
		logger.F("logger.mode", cfg.Logger.Mode),
		logger.F("logger.file.path", cfg.Logger.File.Path),

		logger.F("router.maxIter", cfg.Router.MaxIter),
		logger.F("router.initialNodeCost", cfg.Router.InitialNodeCost),
		logger.F("router.nodeCostCap", cfg.Router.NodeCostCap),
		logger.F("router.bboxPadX", cfg.Router.BBoxPadX),
		logger.F("router.bboxPadY", cfg.Router.BBoxPadY),
		logger.F("router.heuristicMultiplier", cfg.Router.HeuristicMultiplier),

		logger.F("cache.dir", cfg.Cache.Dir),

		logger.F("telemetry.tracing.enabled", cfg.Telemetry.Tracing.Enabled),
		logger.F("telemetry.tracing.exporter", cfg.Telemetry.Tracing.Exporter),
		logger.F("telemetry.tracing.endpoint", cfg.Telemetry.Tracing.Endpoint),
	)
}

// Default returns a built-in configuration (the CLI does not call it; it
// always loads a config file): stdout console logging at info level, 150 iterations
// (§6/§9's MAX_ITER), node cost starting at 1 and doubling up to 256
// (§4.6), bounding-box padding of (+3, +15) (§4.5), and the ×4 heuristic
// multiplier (§4.6's findPath).
func Default() *Config {
	return &Config{
		Logger: LoggerConfig{
			Active:   true,
			Level:    "info",
			Encoding: "console",
			Mode:     "stdout",
		},
		Router: RouterConfig{
			MaxIter:             150,
			InitialNodeCost:     1,
			NodeCostCap:         256,
			BBoxPadX:            3,
			BBoxPadY:            15,
			HeuristicMultiplier: 4,
		},
		Cache: CacheConfig{Dir: ".fpgaroute-cache"},
	}
}

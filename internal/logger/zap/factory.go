package zap

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"FPGARouter/internal/config"
)

// New builds a *zap.Logger for the router from cfg: atomic level, a
// console or JSON encoder, and a stdout or rotating-file sink. The
// resulting logger is what ZapAdapter wraps into logger.Logger for every
// component from cmd/fpgaroute down to the A* search's per-sink Debug
// lines.
func New(cfg config.LoggerConfig) (*zap.Logger, error) {
	// Log level, atomic so it can be reconfigured without rebuilding the core.
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		// Unknown/empty level string: fall back to info rather than fail startup.
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	// Encoder: console (human-readable, colorized level) or JSON.
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	encCfg.NameKey = "component" // so Named("router")/Named("adapter") lands under "component"
	var encoder zapcore.Encoder
	if cfg.Encoding == "console" {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}
	var ws zapcore.WriteSyncer
	switch cfg.Mode {
	case "stdout":
		ws = zapcore.AddSync(os.Stdout)
	case "file":
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File.Path,
			MaxSize:    cfg.File.MaxSize,
			MaxBackups: cfg.File.MaxBackups,
			MaxAge:     cfg.File.MaxAge,
			Compress:   cfg.File.Compress,
		})
	default:
		ws = zapcore.AddSync(os.Stdout) // unknown mode: fall back to console
	}
	core := zapcore.NewCore(encoder, ws, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)), nil
}

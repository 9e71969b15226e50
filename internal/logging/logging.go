package logging

import (
	"io"
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Init builds a production zap logger at the given level and installs it as the global logger.
func Init(level string) *zap.Logger {
	log.SetOutput(io.Discard)

	var lvl zapcore.Level
	switch level {
	case "debug":
		lvl = zap.DebugLevel
	case "warn":
		lvl = zap.WarnLevel
	case "error":
		lvl = zap.ErrorLevel
	default:
		lvl = zap.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		logger = zap.NewNop()
	}

	zap.ReplaceGlobals(logger)
	return logger
}

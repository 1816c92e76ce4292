package utils

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogFile is where logs are mirrored when no file is configured
const DefaultLogFile = "deltabot.log"

var (
	log  *zap.Logger
	once sync.Once
)

// InitLogger initializes the global logger instance. Output goes to stdout
// and to file; an empty file means DefaultLogFile.
func InitLogger(debug bool, file string) *zap.Logger {
	once.Do(func() {
		if file == "" {
			file = DefaultLogFile
		}

		config := zap.NewProductionConfig()
		if debug {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}

		config.OutputPaths = []string{"stdout", file}
		config.ErrorOutputPaths = []string{"stderr", file}

		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.StacktraceKey = "stacktrace"

		logger, err := config.Build(
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		)
		if err != nil {
			panic(err)
		}

		log = logger
	})

	return log
}

// GetLogger returns the global logger instance
func GetLogger() *zap.Logger {
	if log == nil {
		return InitLogger(false, "")
	}
	return log
}

// CleanupLogger flushes any buffered log entries
func CleanupLogger() {
	if log != nil {
		_ = log.Sync()
	}
}

package logger

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerClient is a wrapper around Uber's Zap logger.
type LoggerClient struct {
	// Zap is the underlying zap.Logger instance.
	// Exposed for zap specific functionality; most logging should go through
	// the wrapper methods.
	Zap *zap.Logger

	// tracingEnabled makes the *WithContext methods add trace and span ids.
	tracingEnabled bool
}

// NewLoggerClient initializes and returns a new instance of the logger based on configuration.
//
// The logger is configured with:
//   - JSON encoding
//   - ISO8601 timestamps under "timestamp"
//   - capital level names ("INFO", "ERROR")
//   - pid and service as initial fields
//   - caller information, output to stderr
//
// If initialization fails, the function calls log.Fatal.
func NewLoggerClient(cfg Config) *LoggerClient {

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeDuration = zapcore.MillisDurationEncoder

	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Development:       false,
		DisableCaller:     false,
		DisableStacktrace: false,
		Sampling:          nil,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths: []string{
			"stderr",
		},
		ErrorOutputPaths: []string{
			"stderr",
		},
		InitialFields: map[string]interface{}{
			"pid":     os.Getpid(),
			"service": cfg.ServiceName,
		},
	}

	logger, err := config.Build(zap.AddCaller(), zap.AddCallerSkip(1))

	if err != nil {
		log.Fatal(err)
	}

	return &LoggerClient{
		Zap:            logger,
		tracingEnabled: cfg.EnableTracing,
	}
}

// NewFromZap wraps an existing zap logger. Tests use it with zaptest/observer cores.
func NewFromZap(z *zap.Logger, enableTracing bool) *LoggerClient {
	return &LoggerClient{Zap: z, tracingEnabled: enableTracing}
}

// NewNop returns a logger that discards everything.
func NewNop() *LoggerClient {
	return &LoggerClient{Zap: zap.NewNop()}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case Debug:
		return zap.DebugLevel
	case Warning:
		return zap.WarnLevel
	case Error:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

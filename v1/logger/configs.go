package logger

const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

type Config struct {
	// 1. production -> INFO
	// 2. development -> DEBUG
	// else -> INFO
	Level string `yaml:"level" envconfig:"ZAP_LOGGER_LEVEL"`

	// EnableTracing adds trace_id and span_id to *WithContext entries.
	EnableTracing bool `yaml:"enable_tracing" envconfig:"LOGGER_ENABLE_TRACING"`

	ServiceName string `yaml:"service_name" envconfig:"LOGGER_SERVICE_NAME"`
}

// Logger is the logging contract consumed by the other packages of this module.
// *LoggerClient implements it.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

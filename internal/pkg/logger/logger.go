package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New создаёт zap.Logger: json в проде, цветная консоль на уровне debug.
// service попадает в каждое сообщение полем "service".
func New(level, service string) (*zap.Logger, error) {
	return build(level, service, "stdout")
}

// NewStderr - то же, но в stderr (для CLI, где stdout занят результатом)
func NewStderr(level, service string) (*zap.Logger, error) {
	return build(level, service, "stderr")
}

func build(level, service, output string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if zapLevel == zapcore.DebugLevel {
		config.Development = true
		config.Encoding = "console"
		config.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if service != "" {
		config.InitialFields = map[string]interface{}{"service": service}
	}

	return config.Build()
}

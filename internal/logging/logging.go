package logging

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfg = zap.Config{
		Level:       zap.NewAtomicLevelAt(zap.InfoLevel),
		Development: false,
		Encoding:    "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	mu     sync.Mutex
	levels = make(map[string]zap.AtomicLevel)
)

// New builds a named logger. Each name keeps its own atomic level so
// individual subsystems can be made chattier at runtime via SetLevel.
func New(name string) *zap.SugaredLogger {
	c := cfg
	c.Level = levelFor(name)
	return zap.Must(c.Build(zap.AddStacktrace(zapcore.PanicLevel))).Named(name).Sugar()
}

// SetLevel changes the level of every logger created under name.
func SetLevel(name string, level zapcore.Level) {
	levelFor(name).SetLevel(level)
}

func levelFor(name string) zap.AtomicLevel {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := levels[name]; ok {
		return l
	}
	l := zap.NewAtomicLevelAt(defaultLevel())
	levels[name] = l
	return l
}

func defaultLevel() zapcore.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

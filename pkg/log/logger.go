package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	providerMu     sync.RWMutex
	globalProvider LoggerProvider = NewZerologProvider(LevelInfo)
)

// SetProvider replaces the process-wide provider used by GetLogger and
// GetLoggerWithName.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	globalProvider = p
}

// GetLogger returns the default logger of the global provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return globalProvider.GetLogger()
}

// GetLoggerWithName returns a component logger of the global provider.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return globalProvider.GetLoggerWithName(name)
}

// SetupLogger configures both the global zerolog provider and the slog default.
// format is "console" or "json"; output goes to w (stderr when nil).
func SetupLogger(level, format string, w io.Writer) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	if w == nil {
		w = os.Stderr
	}

	SetProvider(NewZerologProviderWithWriter(lvl, w, format == "console"))

	ops := slog.HandlerOptions{
		Level: ToLogLevel(lvl),
	}
	var handler slog.Handler
	if format == "console" {
		handler = slog.NewTextHandler(w, &ops)
	} else {
		handler = slog.NewJSONHandler(w, &ops)
	}
	slog.SetDefault(slog.New(withErrorStacks(handler)))
	return nil
}

// ParseLevel converts a level name to a Level.
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

// ToLogLevel converts a Level to its slog equivalent.
func ToLogLevel(level Level) slog.Level {
	return slog.Level(level)
}

// ErrAttrKey is the key errors are logged under.
const ErrAttrKey = "error"

// ErrAttr is a wrapper to pass err to slog.
func ErrAttr(err error) slog.Attr {
	return slog.Any(ErrAttrKey, err)
}

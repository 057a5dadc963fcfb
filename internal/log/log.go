package log

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelError Level = "ERROR"
)

var (
	mu     sync.RWMutex
	logger = newLogger(os.Stderr, LevelInfo)
)

func newLogger(w io.Writer, l Level) zerolog.Logger {
	console := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "2006-01-02T15:04:05.000Z07:00"}
	return zerolog.New(console).With().Timestamp().Logger().Level(l.zerolog())
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLevel maps "debug", "info" and "error" (any case) to a Level.
// Unknown values fall back to INFO.
func ParseLevel(s string) Level {
	switch Level(strings.ToUpper(strings.TrimSpace(s))) {
	case LevelDebug:
		return LevelDebug
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// Setup replaces the global logger, writing to w at the given level.
func Setup(w io.Writer, l Level) {
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w, l)
}

func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	logger = logger.Level(l.zerolog())
}

func Debug(msg string, kv ...any) {
	withFields(current().Debug(), kv).Msg(msg)
}

func Info(msg string, kv ...any) {
	withFields(current().Info(), kv).Msg(msg)
}

func Error(msg string, err error, kv ...any) {
	withFields(current().Error().Err(err), kv).Msg(msg)
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := logger
	return &l
}

// withFields attaches key/value pairs. Non-string keys are skipped and an
// odd trailing value is ignored.
func withFields(ev *zerolog.Event, kv []any) *zerolog.Event {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	return ev
}

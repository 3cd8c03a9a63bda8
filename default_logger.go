package fsadapter

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var defaultLogger = newDefaultLogger(os.Stdout)

// zeroLogger is the Logger used unless WithLogger replaces it, backed by zerolog.
type zeroLogger struct {
	mu     sync.RWMutex
	zl     zerolog.Logger
	out    io.Writer
	prefix string
	level  Level
}

func newDefaultLogger(w io.Writer) *zeroLogger {
	l := &zeroLogger{level: LevelInfo, prefix: "fsadapter"}
	l.build(w)
	return l
}

// build must be called with mu held (or before the logger is shared)
func (l *zeroLogger) build(w io.Writer) {
	l.out = w
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339Nano,
		NoColor:    w != os.Stdout && w != os.Stderr,
	}
	l.zl = zerolog.New(output).With().Timestamp().Str("component", l.prefix).Logger()
}

func (l *zeroLogger) Debugf(format string, v ...interface{}) {
	l.logf(LevelDebug, format, v...)
}

func (l *zeroLogger) Infof(format string, v ...interface{}) {
	l.logf(LevelInfo, format, v...)
}

func (l *zeroLogger) Noticef(format string, v ...interface{}) {
	l.logf(LevelNotice, format, v...)
}

func (l *zeroLogger) Warnf(format string, v ...interface{}) {
	l.logf(LevelWarn, format, v...)
}

func (l *zeroLogger) Errorf(format string, v ...interface{}) {
	l.logf(LevelError, format, v...)
}

func (l *zeroLogger) Fatalf(format string, v ...interface{}) {
	l.logf(LevelFatal, format, v...)
}

func (l *zeroLogger) SetLevel(lv Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = lv
}

func (l *zeroLogger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.build(w)
}

func (l *zeroLogger) SetPrefix(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prefix = s
	l.build(l.out)
}

func (l *zeroLogger) logf(lv Level, format string, v ...interface{}) {
	l.mu.RLock()
	zl, level := l.zl, l.level
	l.mu.RUnlock()
	if level > lv {
		return
	}
	msg := fmt.Sprintf(format, v...)
	switch lv {
	case LevelDebug:
		zl.Debug().Msg(msg)
	case LevelInfo:
		zl.Info().Msg(msg)
	case LevelNotice:
		// zerolog has no notice level
		zl.Info().Bool("notice", true).Msg(msg)
	case LevelWarn:
		zl.Warn().Msg(msg)
	case LevelError:
		zl.Error().Msg(msg)
	case LevelFatal:
		// exits the process
		zl.Fatal().Msg(msg)
	}
}

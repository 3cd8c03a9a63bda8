package fsadapter

import (
	"io"
	"time"
)

type Options struct {
	logger         Logger
	redialStrategy RedoStrategy
	classes        []string
	subclasses     []string
	maxRetries     int
	dialTimeout    time.Duration
	commandTimeout time.Duration
	netDelay       time.Duration
	idleWait       time.Duration
	autoRedial     bool
}

var (
	defaultEventClasses = []string{
		"CHANNEL_CREATE",
		"CHANNEL_ANSWER",
		"CHANNEL_HANGUP",
		"CHANNEL_DESTROY",
	}
	defaultEventSubclasses = []string{
		"conference::maintenance",
	}
)

func (o *Options) apply(opts []Option) {
	for _, op := range opts {
		op.f(o)
	}
}

func newOptions(opts []Option) *Options {
	o := &Options{
		autoRedial:     false,
		redialStrategy: nil,
		maxRetries:     -1,
		classes:        defaultEventClasses,
		subclasses:     defaultEventSubclasses,
		// timeouts
		dialTimeout:    3 * time.Second,
		commandTimeout: 10 * time.Second,
		netDelay:       2 * time.Second,
		idleWait:       1 * time.Millisecond,
		// debug logger
		logger: defaultLogger,
	}
	o.apply(opts)
	return o
}

type Option struct {
	f func(*Options)
}

// Resubscribe automatically when the event connection is lost by accident.
// A nil strategy waits 1s, 2s, 4s ... up to 64s between attempts.
func WithAutoResubscribe(strategy RedoStrategy) Option {
	return Option{
		f: func(o *Options) {
			if strategy == nil {
				strategy = &defaultRedoStrategy{}
			}
			o.autoRedial = true
			o.redialStrategy = strategy
		},
	}
}

func WithDefaultAutoResubscribe() Option {
	return WithAutoResubscribe(&defaultRedoStrategy{
		redoWaited: make([]time.Duration, 0),
	})
}

func WithLogger(logger Logger) Option {
	return Option{
		f: func(o *Options) { o.logger = logger },
	}
}

// if n is -1, always retry
func WithMaxRetries(n int) Option {
	return Option{
		f: func(o *Options) {
			if n == 0 || n > 100 {
				return
			}
			o.maxRetries = n
		},
	}
}

func WithDialTimeout(t time.Duration) Option {
	return Option{
		f: func(o *Options) { o.dialTimeout = t },
	}
}

// Deadline of a whole command round trip when the caller's ctx has none.
func WithCommandTimeout(t time.Duration) Option {
	return Option{
		f: func(o *Options) {
			if t > 0 {
				o.commandTimeout = t
			}
		},
	}
}

// Set max network delay time duration
// used as the subscribe handshake deadline and as the wait for the
// `noevents` acknowledgement on unsubscribe
// suggest range:       1*time.Second <= t <= 5*time.Second
// valid range: 100*time.Milliseconds <= t <= 10*time.Second
func WithNetDelay(t time.Duration) Option {
	return Option{
		f: func(o *Options) {
			if t.Milliseconds() >= 100 && t.Seconds() <= 10 {
				o.netDelay = t
			}
		},
	}
}

// How long the dispatch loop sleeps when the event queue is empty and
// nothing wakes it earlier.
func WithIdleWait(t time.Duration) Option {
	return Option{
		f: func(o *Options) {
			if t > 0 {
				o.idleWait = t
			}
		},
	}
}

// Event classes for `event json ...`, e.g. CHANNEL_CREATE.
func WithEventClasses(classes ...string) Option {
	return Option{
		f: func(o *Options) { o.classes = classes },
	}
}

// Event subclasses, sent after the CUSTOM token, e.g. conference::maintenance.
func WithEventSubclasses(subclasses ...string) Option {
	return Option{
		f: func(o *Options) { o.subclasses = subclasses },
	}
}

// Set logger level, ONLY set level of internal logger
// if a user defined logger, do nothing
func WithLogLevel(lv Level) Option {
	return Option{
		f: func(o *Options) {
			if o.logger != defaultLogger {
				return
			}
			defaultLogger.SetLevel(lv)
		},
	}
}

// Set logger output, only set output of the internal logger
// if a user defined logger, do nothing
func WithLogOutput(w io.Writer) Option {
	return Option{
		f: func(o *Options) {
			if o.logger != defaultLogger {
				return
			}
			defaultLogger.SetOutput(w)
		},
	}
}

func WithLogPrefix(s string) Option {
	return Option{
		f: func(o *Options) {
			if o.logger != defaultLogger {
				return
			}
			defaultLogger.SetPrefix(s)
		},
	}
}

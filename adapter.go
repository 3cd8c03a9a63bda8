package fsadapter

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"
)

// DefaultPort is the event socket port the switch listens on out of the box.
const DefaultPort = "8021"

// Adapter talks to one switch. Commands each run on their own connection
// and may be called from any goroutine; events flow through at most one
// subscription at a time to the registered handlers.
type Adapter struct {
	Address  string
	Password string

	opts     *Options
	handlers registry

	mu  sync.Mutex
	sub *subscription
}

// New creates an adapter for the switch at addr (host or host:port, the port
// defaults to 8021). No connection is made until a command or Subscribe.
func New(addr, passwd string, options ...Option) *Adapter {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, DefaultPort)
	}
	return &Adapter{
		Address:  addr,
		Password: passwd,
		opts:     newOptions(options),
	}
}

// Register adds h to the listeners and returns a func that removes it.
func (a *Adapter) Register(h Handler) (unregister func()) {
	return a.handlers.add(h)
}

// Execute sends the raw command text on a fresh connection and returns the
// logical reply. On a transport or framing failure the reply is empty, every
// handler's OnFailure is called and the error is returned as well. A command
// ended by ctx returns the ctx error without notifying the handlers.
func (a *Adapter) Execute(ctx context.Context, cmd string) (string, error) {
	reply, err := execute(ctx, a.opts, a.Address, a.Password, cmd)
	if err != nil {
		a.opts.logger.Warnf("command [%s] to %s failed: %v", firstWord(cmd), a.Address, err)
		if !interrupted(err) {
			a.handlers.failure(err)
		}
		return "", err
	}
	return reply, nil
}

// Send builds `cmd args...` and executes it.
func (a *Adapter) Send(ctx context.Context, cmd string, args ...string) (string, error) {
	return a.Execute(ctx, Command{Name: cmd, Args: args}.Serialize())
}

// Api sends an API command, already start with `api `. The result may start
// with `-ERR `, see CheckReply.
// NOTE: blocking APIs such as originate hold the command connection until
// they finish, use BgApi for them.
func (a *Adapter) Api(ctx context.Context, cmd string, args ...string) (string, error) {
	return a.Execute(ctx, Command{Api: true, Name: cmd, Args: args}.Serialize())
}

// Subscribe opens the event connection and starts delivering events to the
// registered handlers. An active subscription is replaced. Subscribe may be
// called from any handler callback, OnFailure included.
func (a *Adapter) Subscribe(ctx context.Context) error {
	a.mu.Lock()
	prev := a.sub
	a.sub = nil
	a.mu.Unlock()
	if prev != nil {
		a.opts.logger.Infof("replace active subscription of %s", a.Address)
		prev.close(ctx)
	}
	s, err := subscribe(ctx, a.opts, a.Address, a.Password, &a.handlers)
	if err != nil {
		a.opts.logger.Errorf("subscribe %s: %v", a.Address, err)
		if ctx.Err() == nil && !interrupted(err) {
			a.handlers.failure(err)
		}
		return err
	}
	a.mu.Lock()
	prev = a.sub
	a.sub = s
	a.mu.Unlock()
	if prev != nil {
		// a concurrent Subscribe finished first
		prev.close(ctx)
	}
	go a.watch(s)
	return nil
}

// Unsubscribe stops the event connection; it is a no-op without one. No
// failure is reported for the socket being closed here.
func (a *Adapter) Unsubscribe(ctx context.Context) error {
	a.mu.Lock()
	s := a.sub
	a.sub = nil
	a.mu.Unlock()
	if s == nil {
		return nil
	}
	s.close(ctx)
	a.opts.logger.Infof("unsubscribed from %s", a.Address)
	return ctx.Err()
}

// Subscribed reports whether a subscription is running.
func (a *Adapter) Subscribed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sub == nil {
		return false
	}
	select {
	case <-a.sub.exited:
		return false
	default:
		return true
	}
}

// Close is Unsubscribe with a bounded wait, handy for defer.
func (a *Adapter) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), a.opts.netDelay+a.opts.dialTimeout)
	defer cancel()
	if err := a.Unsubscribe(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		a.opts.logger.Warnf("close %s: %v", a.Address, err)
	}
}

// watch waits for s to end. A subscription that failed is reported to the
// handlers, then resubscribed when auto resubscribe is enabled, waiting
// between attempts as the redo strategy says.
func (a *Adapter) watch(s *subscription) {
	<-s.exited
	failure := s.failure()
	if failure == nil {
		return
	}
	a.handlers.failure(failure)
	if !a.opts.autoRedial {
		return
	}
	a.opts.logger.Warnf("subscription of %s lost: %v", a.Address, failure)
	for i := 0; i < a.opts.maxRetries || a.opts.maxRetries < 0; i++ {
		next := a.opts.redialStrategy.NextRedoWait()
		a.opts.logger.Warnf("resubscribe to %s in %v", a.Address, next)
		time.Sleep(next)

		if !a.current(s) {
			// unsubscribed or replaced meanwhile
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), a.opts.dialTimeout+a.opts.netDelay)
		ns, err := subscribe(ctx, a.opts, a.Address, a.Password, &a.handlers)
		cancel()
		if err != nil {
			a.opts.logger.Warnf("resubscribe to %s: %v", a.Address, err)
			continue
		}
		a.mu.Lock()
		if a.sub != s {
			a.mu.Unlock()
			ctx, cancel := context.WithTimeout(context.Background(), a.opts.netDelay)
			ns.close(ctx)
			cancel()
			return
		}
		a.sub = ns
		a.mu.Unlock()
		a.opts.redialStrategy.Reset()
		a.opts.logger.Noticef("resubscribed to %s", a.Address)
		go a.watch(ns)
		return
	}
	a.opts.logger.Errorf("give up resubscribing to %s", a.Address)
}

func (a *Adapter) current(s *subscription) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sub == s
}

package fsadapter

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/genmzy/fsadapter/ev_header"
)

// subscription is one long-lived event connection and its two goroutines:
// the receive loop frames payloads into the queue, the dispatch loop drains
// it into handler callbacks. Both stop on the same done signal.
type subscription struct {
	conn     *conn
	opts     *Options
	handlers *registry
	queue    *eventQueue
	disp     *dispatcher

	done     chan struct{} // shutdown signal
	stopOnce sync.Once
	recvDone chan struct{}
	dispDone chan struct{}
	exited   chan struct{} // both loops returned
	cancel   context.CancelFunc

	// set by the receive loop before recvDone is closed
	err error
}

// buildSubscribeList places bare classes first; subclasses are only valid
// after the CUSTOM token:
//
//	<class-1> ... <class-N> CUSTOM <subclass-1> ... <subclass-N>
func buildSubscribeList(classes, subclasses []string) string {
	list := make([]string, 0, len(classes)+len(subclasses)+1)
	for _, c := range classes {
		if c = strings.TrimSpace(c); c != "" && c != ev_header.CUSTOM {
			list = append(list, c)
		}
	}
	custom := false
	for _, sc := range subclasses {
		if sc = strings.TrimSpace(sc); sc == "" {
			continue
		}
		if !custom {
			list = append(list, ev_header.CUSTOM)
			custom = true
		}
		list = append(list, sc)
	}
	if len(list) == 0 {
		return ev_header.ALL
	}
	return strings.Join(list, " ")
}

func subscribe(ctx context.Context, opts *Options, addr, password string, handlers *registry) (*subscription, error) {
	conn, err := dial(ctx, addr, opts.dialTimeout)
	if err != nil {
		return nil, err
	}
	opts.logger.Debugf("set handshake deadline for dial timeout %v", opts.dialTimeout)
	if err := conn.applyDeadline(ctx, opts.dialTimeout); err != nil {
		conn.Close()
		return nil, connErr("set deadline", err)
	}
	if err := conn.auth(password); err != nil {
		conn.Close()
		return nil, err
	}
	cmd := "event json " + buildSubscribeList(opts.classes, opts.subclasses)
	reply, err := conn.sendRecv(cmd)
	if err != nil {
		conn.Close()
		return nil, connErr("subscribe", err)
	}
	if rerr := CheckReply(reply); rerr != nil {
		conn.Close()
		return nil, rerr
	}
	opts.logger.Infof("subscribed to %s: [%s] %s", addr, cmd, strings.TrimSpace(reply))
	// block until the switch has something to say
	conn.c.SetDeadline(time.Time{})

	loopCtx, cancel := context.WithCancel(context.Background())
	s := &subscription{
		conn:     conn,
		opts:     opts,
		handlers: handlers,
		queue:    newEventQueue(),
		disp:     newDispatcher(handlers, opts.logger),
		done:     make(chan struct{}),
		recvDone: make(chan struct{}),
		dispDone: make(chan struct{}),
		exited:   make(chan struct{}),
		cancel:   cancel,
	}
	go s.recvLoop()
	go func() {
		defer close(s.dispDone)
		s.disp.loop(loopCtx, s.queue, s.done, opts.idleWait)
	}()
	go func() {
		<-s.recvDone
		<-s.dispDone
		cancel()
		close(s.exited)
	}()
	return s, nil
}

func (s *subscription) stopping() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *subscription) shutdown() (first bool) {
	s.stopOnce.Do(func() {
		close(s.done)
		first = true
	})
	return
}

// recvLoop frames payloads into the queue until the connection fails or the
// subscription is shut down. It never calls handlers: a lost connection is
// recorded in s.err and reported by the adapter once both loops returned.
func (s *subscription) recvLoop() {
	defer close(s.recvDone)
	for {
		m, err := s.conn.recv()
		if err != nil {
			if s.stopping() {
				// the socket was closed to unblock this read
				s.opts.logger.Debugf("receive loop of %s unblocked: %v", s.conn.addr, err)
				return
			}
			if _, accident := connLost(err, 'r'); accident {
				s.opts.logger.Warnf("event connection to %s lost: %v", s.conn.addr, err)
			} else {
				s.opts.logger.Errorf("receive event from %s: %v", s.conn.addr, err)
			}
			s.err = connErr("receive event", err)
			s.shutdown()
			s.conn.Close()
			return
		}
		if s.stopping() {
			// events still in flight are dropped until the `noevents` ack
			if m.ContentType() == ContentCommandReply {
				s.opts.logger.Debugf("receive loop of %s stopped: %s", s.conn.addr, m.Get(HeaderReplyText))
				return
			}
			continue
		}
		switch {
		case m.ContentType() == ContentDisconnectNotice:
			s.opts.logger.Warnf("disconnect notice from %s: %s", s.conn.addr, strings.TrimSpace(string(m.Body)))
		case m.HasBody():
			s.queue.push(m.Body)
		default:
			s.opts.logger.Debugf("ignore message without body: [%s]", m)
		}
	}
}

// close stops both loops. It asks the switch to stop sending events, waits
// a bounded time for the acknowledgement, then closes the socket, which
// also unblocks a receive loop stuck in a read.
//
// Called from one of this subscription's event callbacks, close returns
// without waiting for the dispatch loop, which ends once the callback does.
func (s *subscription) close(ctx context.Context) {
	if s.shutdown() {
		s.conn.c.SetDeadline(time.Now().Add(s.opts.netDelay))
		if err := s.conn.send("noevents"); err != nil {
			s.opts.logger.Debugf("send noevents: %v", err)
		}
	}
	timer := time.NewTimer(s.opts.netDelay)
	defer timer.Stop()
	select {
	case <-s.recvDone:
	case <-timer.C:
	case <-ctx.Done():
	}
	s.conn.Close()
	if s.disp.busy.Load() {
		return
	}
	<-s.exited
}

// failure is the error that ended the receive loop, nil after a clean stop.
// Only meaningful once exited is closed.
func (s *subscription) failure() error {
	return s.err
}

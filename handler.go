package fsadapter

import (
	"context"
	"sync"
)

// Handler receives events from a subscription and failure notifications
// from both the subscription and commands.
//
// Event callbacks run on the dispatch goroutine, one at a time and in the
// order the switch emitted the events; a slow callback delays the ones
// after it. OnFailure may be called from any goroutine.
type Handler interface {
	// every dequeued payload, recognized or not
	OnRawEvent(ctx context.Context, payload []byte)
	// a call leg was created, A leg (ev.ALeg()) or B leg
	OnCall(ctx context.Context, ev CallEvent)
	OnCallDestroy(ctx context.Context, ev CallEvent)
	OnAnswer(ctx context.Context, ev AnswerEvent)
	OnHangup(ctx context.Context, ev HangupEvent)
	OnConferenceCreate(ctx context.Context, ev ConferenceEvent)
	OnConferenceDelete(ctx context.Context, ev ConferenceEvent)
	OnJoinConference(ctx context.Context, ev MemberEvent)
	OnLeaveConference(ctx context.Context, ev MemberEvent)
	// transport or framing failure; the reply of a failed command is empty
	// and a failed subscription has stopped
	OnFailure(err error)
}

// NopHandler ignores everything. Embed it to implement only the callbacks
// you care about.
type NopHandler struct{}

func (NopHandler) OnRawEvent(context.Context, []byte) {}
func (NopHandler) OnCall(context.Context, CallEvent) {}
func (NopHandler) OnCallDestroy(context.Context, CallEvent) {}
func (NopHandler) OnAnswer(context.Context, AnswerEvent) {}
func (NopHandler) OnHangup(context.Context, HangupEvent) {}
func (NopHandler) OnConferenceCreate(context.Context, ConferenceEvent) {}
func (NopHandler) OnConferenceDelete(context.Context, ConferenceEvent) {}
func (NopHandler) OnJoinConference(context.Context, MemberEvent) {}
func (NopHandler) OnLeaveConference(context.Context, MemberEvent) {}
func (NopHandler) OnFailure(error) {}

type registered struct {
	id int
	h  Handler
}

type registry struct {
	mu       sync.RWMutex
	nextID   int
	handlers []registered
}

func (r *registry) add(h Handler) (remove func()) {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.handlers = append(r.handlers, registered{id: id, h: h})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			for i, reg := range r.handlers {
				if reg.id == id {
					r.handlers = append(r.handlers[:i:i], r.handlers[i+1:]...)
					return
				}
			}
		})
	}
}

// snapshot is taken once per dispatched event, callbacks run without the lock
func (r *registry) snapshot() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.handlers) == 0 {
		return nil
	}
	hs := make([]Handler, len(r.handlers))
	for i, reg := range r.handlers {
		hs[i] = reg.h
	}
	return hs
}

func (r *registry) each(f func(Handler)) {
	for _, h := range r.snapshot() {
		f(h)
	}
}

func (r *registry) failure(err error) {
	recordFailure(err)
	r.each(func(h Handler) { h.OnFailure(err) })
}

package fsadapter

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/genmzy/fsadapter/ev_header"
)

// dispatcher turns queued payloads into typed callbacks. It owns the call
// leg table and must only be driven from a single goroutine.
type dispatcher struct {
	legs     callLegs
	handlers *registry
	logger   Logger

	// set while a payload is being dispatched to the handlers
	busy atomic.Bool
}

func newDispatcher(handlers *registry, logger Logger) *dispatcher {
	return &dispatcher{
		legs:     make(callLegs),
		handlers: handlers,
		logger:   logger,
	}
}

// loop pops payloads in FIFO order until done is closed, then drops what is
// left in the queue.
func (d *dispatcher) loop(ctx context.Context, q *eventQueue, done <-chan struct{}, idle time.Duration) {
	timer := time.NewTimer(idle)
	defer timer.Stop()
forloop:
	for {
		select {
		case <-done:
			break forloop
		default:
		}
		payload, ok := q.pop()
		if ok {
			d.busy.Store(true)
			d.dispatch(ctx, payload)
			d.busy.Store(false)
			continue
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(idle)
		select {
		case <-done:
			break forloop
		case <-q.ready:
		case <-timer.C:
		}
	}
	if n := q.drain(); n > 0 {
		d.logger.Noticef("dispatch loop exiting, %d queued events discarded", n)
	}
}

func (d *dispatcher) dispatch(ctx context.Context, payload []byte) {
	if len(payload) == 0 {
		return
	}
	d.handlers.each(func(h Handler) { h.OnRawEvent(ctx, payload) })

	ev, err := ParseRawEvent(payload)
	if err != nil {
		d.logger.Warnf("unparsable event payload (%d bytes): %v, skip it...", len(payload), err)
		recordEvent(KindUnknown)
		return
	}
	kind := classify(ev)
	recordEvent(kind)

	view := eventView{raw: ev}
	switch kind {
	case KindCallToSwitch, KindSwitchCallUser:
		d.legs.put(ev.Get(ev_header.Channel_Call_UUID), ev)
		cev := CallEvent{eventView: view, Kind: kind}
		d.handlers.each(func(h Handler) { h.OnCall(ctx, cev) })
	case KindAnswer:
		d.handlers.each(func(h Handler) { h.OnAnswer(ctx, AnswerEvent{view}) })
	case KindHangup:
		d.handlers.each(func(h Handler) { h.OnHangup(ctx, HangupEvent{view}) })
	case KindDestroyCall:
		d.legs.remove(ev.Get(ev_header.Channel_Call_UUID))
		cev := CallEvent{eventView: view, Kind: kind}
		d.handlers.each(func(h Handler) { h.OnCallDestroy(ctx, cev) })
	case KindConferenceCreate:
		d.handlers.each(func(h Handler) { h.OnConferenceCreate(ctx, ConferenceEvent{view}) })
	case KindConferenceDelete:
		d.handlers.each(func(h Handler) { h.OnConferenceDelete(ctx, ConferenceEvent{view}) })
	case KindJoinConference:
		mev := MemberEvent{eventView: view, leg: d.legs.get(ev.Get(ev_header.Caller_Unique_ID))}
		d.handlers.each(func(h Handler) { h.OnJoinConference(ctx, mev) })
	case KindLeaveConference:
		mev := MemberEvent{eventView: view, leg: d.legs.get(ev.Get(ev_header.Caller_Unique_ID))}
		d.handlers.each(func(h Handler) { h.OnLeaveConference(ctx, mev) })
	default:
		d.logger.Debugf("unsupported event %s/%s (%s), skip it...",
			ev.Get(ev_header.Event_Name), ev.Get(ev_header.Event_Subclass), ev.Get(ev_header.Action))
	}
}

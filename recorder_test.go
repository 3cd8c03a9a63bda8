package fsadapter

import (
	"context"
	"sync"
	"testing"
	"time"
)

// recorder keeps every callback it receives, in order.
type recorder struct {
	mu       sync.Mutex
	calls    []string
	raw      [][]byte
	members  []MemberEvent
	events   []CallEvent
	failures []error
	notify   chan struct{}
}

func newRecorder() *recorder {
	return &recorder{notify: make(chan struct{}, 128)}
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

func (r *recorder) OnRawEvent(_ context.Context, payload []byte) {
	r.mu.Lock()
	r.raw = append(r.raw, payload)
	r.mu.Unlock()
}

func (r *recorder) OnCall(_ context.Context, ev CallEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	r.add("call:" + ev.LegUuid())
}

func (r *recorder) OnCallDestroy(_ context.Context, ev CallEvent) {
	r.add("destroy:" + ev.LegUuid())
}

func (r *recorder) OnAnswer(_ context.Context, ev AnswerEvent) {
	r.add("answer:" + ev.CallUuid())
}

func (r *recorder) OnHangup(_ context.Context, ev HangupEvent) {
	r.add("hangup:" + ev.CallUuid())
}

func (r *recorder) OnConferenceCreate(_ context.Context, ev ConferenceEvent) {
	r.add("room+:" + ev.RoomName())
}

func (r *recorder) OnConferenceDelete(_ context.Context, ev ConferenceEvent) {
	r.add("room-:" + ev.RoomName())
}

func (r *recorder) OnJoinConference(_ context.Context, ev MemberEvent) {
	r.mu.Lock()
	r.members = append(r.members, ev)
	r.mu.Unlock()
	r.add("join:" + ev.MemberID())
}

func (r *recorder) OnLeaveConference(_ context.Context, ev MemberEvent) {
	r.mu.Lock()
	r.members = append(r.members, ev)
	r.mu.Unlock()
	r.add("leave:" + ev.MemberID())
}

func (r *recorder) OnFailure(err error) {
	r.mu.Lock()
	r.failures = append(r.failures, err)
	r.mu.Unlock()
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func (r *recorder) failureCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failures)
}

func (r *recorder) lastFailure() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.failures) == 0 {
		return nil
	}
	return r.failures[len(r.failures)-1]
}

// waitCalls blocks until at least n typed callbacks were seen.
func (r *recorder) waitCalls(t *testing.T, n int) []string {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		if calls := r.snapshot(); len(calls) >= n {
			return calls
		}
		select {
		case <-r.notify:
		case <-deadline:
			t.Fatalf("got %v, want %d callbacks", r.snapshot(), n)
		}
	}
}

// waitFailure blocks until at least one failure was reported.
func (r *recorder) waitFailure(t *testing.T) error {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		if err := r.lastFailure(); err != nil {
			return err
		}
		select {
		case <-r.notify:
		case <-deadline:
			t.Fatalf("no failure reported")
		}
	}
}

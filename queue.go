package fsadapter

import "sync"

// eventQueue is an unbounded FIFO of event payloads: the receive loop pushes,
// the dispatch loop pops. ready carries at most one pending wake-up.
type eventQueue struct {
	mu    sync.Mutex
	items [][]byte
	ready chan struct{}
}

func newEventQueue() *eventQueue {
	return &eventQueue{ready: make(chan struct{}, 1)}
}

func (q *eventQueue) push(payload []byte) {
	q.mu.Lock()
	q.items = append(q.items, payload)
	depth := len(q.items)
	q.mu.Unlock()
	recordQueueDepth(depth)
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// pop never blocks; ok is false when the queue is empty.
func (q *eventQueue) pop() (payload []byte, ok bool) {
	q.mu.Lock()
	if len(q.items) == 0 {
		q.mu.Unlock()
		return nil, false
	}
	payload = q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	depth := len(q.items)
	q.mu.Unlock()
	recordQueueDepth(depth)
	return payload, true
}

func (q *eventQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// drain discards everything left and returns how many items were dropped.
func (q *eventQueue) drain() int {
	q.mu.Lock()
	n := len(q.items)
	q.items = nil
	q.mu.Unlock()
	recordQueueDepth(0)
	return n
}

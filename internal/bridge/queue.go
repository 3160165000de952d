package bridge

import "sync"

// commandQueue is a FIFO that never blocks producers. A positive limit turns
// overflow into ErrQueueFull instead of growth.
type commandQueue struct {
	mu     sync.Mutex
	items  []Command
	limit  int
	closed bool
	notify chan struct{}
}

func newCommandQueue(limit int) *commandQueue {
	return &commandQueue{limit: limit, notify: make(chan struct{}, 1)}
}

func (q *commandQueue) push(cmd Command) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrStopped
	}
	if q.limit > 0 && len(q.items) >= q.limit {
		q.mu.Unlock()
		return ErrQueueFull
	}
	q.items = append(q.items, cmd)
	q.mu.Unlock()
	q.signal()
	return nil
}

// next blocks until a command is available. It returns false once the queue
// is closed and empty.
func (q *commandQueue) next() (Command, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			cmd := q.items[0]
			q.items[0] = Command{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return cmd, true
		}
		if q.closed {
			q.mu.Unlock()
			return Command{}, false
		}
		q.mu.Unlock()
		<-q.notify
	}
}

func (q *commandQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

// abandon empties the queue and returns what was dropped.
func (q *commandQueue) abandon() []Command {
	q.mu.Lock()
	dropped := q.items
	q.items = nil
	q.mu.Unlock()
	return dropped
}

func (q *commandQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *commandQueue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

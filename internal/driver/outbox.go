package driver

import (
	"fmt"
	"sync"
)

// defaultOutboxSize is the number of pending writes a session may have.
const defaultOutboxSize = 64

// chunk is one pending write to a connection.
type chunk struct {
	text   string
	prompt bool
}

// outbox routes rendered output from the driver goroutine to the
// session's writer goroutine.
type outbox struct {
	owner  string
	chunks chan chunk
	mu     sync.Mutex
	closed bool
}

// newOutbox creates an outbox holding up to size pending writes.
//
// Postcondition: Returns an outbox with an open channel.
func newOutbox(owner string, size int) *outbox {
	if size <= 0 {
		size = defaultOutboxSize
	}
	return &outbox{
		owner:  owner,
		chunks: make(chan chunk, size),
	}
}

// push enqueues c without blocking.
//
// Postcondition: c is enqueued, or an error is returned if the outbox is
// closed or full.
func (o *outbox) push(c chunk) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return fmt.Errorf("outbox of %s is closed", o.owner)
	}
	select {
	case o.chunks <- c:
		return nil
	default:
		return fmt.Errorf("outbox of %s is full", o.owner)
	}
}

// close closes the channel; the writer drains what is left and stops.
func (o *outbox) close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.closed {
		o.closed = true
		close(o.chunks)
	}
}

func (o *outbox) isClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

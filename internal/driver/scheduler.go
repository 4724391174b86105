package driver

import (
	"container/heap"
	"sort"
	"sync"
	"time"

	"github.com/cory-johannsen/tale/internal/game/world"
)

// deferred is an action scheduled on a world object at a game time.
type deferred struct {
	due    time.Time
	seq    uint64
	owner  world.ID
	action string
	args   []any
}

// deferredQueue orders deferreds by due time, then by insertion.
type deferredQueue []*deferred

func (q deferredQueue) Len() int { return len(q) }

func (q deferredQueue) Less(i, j int) bool {
	if q[i].due.Equal(q[j].due) {
		return q[i].seq < q[j].seq
	}
	return q[i].due.Before(q[j].due)
}

func (q deferredQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *deferredQueue) Push(x any) { *q = append(*q, x.(*deferred)) }

func (q *deferredQueue) Pop() any {
	old := *q
	n := len(old)
	d := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return d
}

// scheduler holds the deferred queue and the heartbeat registry. All
// methods are safe for concurrent use.
type scheduler struct {
	mu         sync.Mutex
	queue      deferredQueue
	seq        uint64
	heartbeats map[world.ID]struct{}
}

func newScheduler() *scheduler {
	return &scheduler{heartbeats: make(map[world.ID]struct{})}
}

// Defer schedules action on owner. Deferreds with equal due times run in
// the order they were scheduled.
func (s *scheduler) Defer(due time.Time, owner world.ID, action string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	heap.Push(&s.queue, &deferred{due: due, seq: s.seq, owner: owner, action: action, args: args})
}

// CancelDeferreds drops every deferred owned by owner.
func (s *scheduler) CancelDeferreds(owner world.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.queue[:0]
	for _, d := range s.queue {
		if d.owner != owner {
			kept = append(kept, d)
		}
	}
	for i := len(kept); i < len(s.queue); i++ {
		s.queue[i] = nil
	}
	s.queue = kept
	heap.Init(&s.queue)
}

func (s *scheduler) RegisterHeartbeat(id world.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heartbeats[id] = struct{}{}
}

func (s *scheduler) UnregisterHeartbeat(id world.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.heartbeats, id)
}

// Heartbeats returns the registered ids in ascending order.
func (s *scheduler) Heartbeats() []world.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]world.ID, 0, len(s.heartbeats))
	for id := range s.heartbeats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// mark returns the sequence number of the last scheduled deferred.
// popDue uses it to leave deferreds scheduled while firing for the next
// round.
func (s *scheduler) mark() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// popDue removes and returns the earliest deferred due at or before now
// that was scheduled no later than mark, or nil.
func (s *scheduler) popDue(now time.Time, mark uint64) *deferred {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil
	}
	if s.queue[0].due.After(now) {
		return nil
	}
	best := 0
	if s.queue[0].seq > mark {
		// scheduled during this round; look for an older one that is due
		best = -1
		for i, d := range s.queue {
			if d.seq > mark || d.due.After(now) {
				continue
			}
			if best < 0 || s.queue.Less(i, best) {
				best = i
			}
		}
		if best < 0 {
			return nil
		}
	}
	return heap.Remove(&s.queue, best).(*deferred)
}

// anyDue reports whether a deferred due at or before t matches pred.
func (s *scheduler) anyDue(t time.Time, pred func(*deferred) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range s.queue {
		if !d.due.After(t) && pred(d) {
			return true
		}
	}
	return false
}

// snapshot returns copies of the pending deferreds in firing order.
func (s *scheduler) snapshot() []deferred {
	s.mu.Lock()
	defer s.mu.Unlock()
	sorted := append(deferredQueue(nil), s.queue...)
	sort.Sort(sorted)
	out := make([]deferred, len(sorted))
	for i, d := range sorted {
		out[i] = *d
	}
	return out
}

// Len returns the number of pending deferreds.
func (s *scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// reset drops all deferreds and heartbeats.
func (s *scheduler) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = nil
	s.heartbeats = make(map[world.ID]struct{})
}

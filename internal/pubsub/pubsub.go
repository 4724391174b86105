// Package pubsub is a small synchronous topic bus used for wiretaps,
// arrival/departure notifications and debug tracing.
//
// Subscribers are referenced weakly in the sense that a subscriber reporting
// Alive() == false is dropped on the next delivery and never receives events.
package pubsub

import (
	"sort"
	"strings"
	"sync"
)

// Subscriber receives events sent on the topics it subscribed to.
type Subscriber interface {
	PubsubEvent(topic string, event any) any
}

// Liveness is implemented by subscribers whose lifetime may end while still
// subscribed, such as destroyed world objects or closed sessions.
type Liveness interface {
	Alive() bool
}

// Key builds a topic name from its parts, e.g. Key("wiretap-location", "town.square").
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// Bus holds all topics. The zero value is not usable; call New.
type Bus struct {
	mu     sync.Mutex
	topics map[string]*Topic
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{topics: make(map[string]*Topic)}
}

// Topic returns the topic with the given name, creating it on first use.
func (b *Bus) Topic(name string) *Topic {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.topics[name]; ok {
		return t
	}
	t := &Topic{name: name}
	b.topics[name] = t
	return t
}

// Lookup returns the named topic without creating it.
func (b *Bus) Lookup(name string) (*Topic, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.topics[name]
	return t, ok
}

// Names returns the names of all topics created so far, sorted.
func (b *Bus) Names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.topics))
	for n := range b.topics {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// UnsubscribeAll removes sub from every topic.
func (b *Bus) UnsubscribeAll(sub Subscriber) {
	b.mu.Lock()
	topics := make([]*Topic, 0, len(b.topics))
	for _, t := range b.topics {
		topics = append(topics, t)
	}
	b.mu.Unlock()
	for _, t := range topics {
		t.Unsubscribe(sub)
	}
}

// Topic is a named fan-out point.
type Topic struct {
	name string
	mu   sync.Mutex
	subs []Subscriber
}

// Name returns the topic name.
func (t *Topic) Name() string { return t.name }

// Subscribe adds sub to the topic. Subscribing twice has no effect.
func (t *Topic) Subscribe(sub Subscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.subs {
		if s == sub {
			return
		}
	}
	t.subs = append(t.subs, sub)
}

// Unsubscribe removes sub from the topic if present.
func (t *Topic) Unsubscribe(sub Subscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.subs {
		if s == sub {
			t.subs = append(t.subs[:i], t.subs[i+1:]...)
			return
		}
	}
}

// Subscribers returns the number of live subscribers.
func (t *Topic) Subscribers() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, s := range t.subs {
		if alive(s) {
			n++
		}
	}
	return n
}

// Send delivers event to every live subscriber in subscription order and
// returns the non-nil results. Dead subscribers are removed.
//
// Delivery happens outside the topic lock so a subscriber may subscribe or
// unsubscribe while handling an event.
func (t *Topic) Send(event any) []any {
	t.mu.Lock()
	live := t.subs[:0:0]
	kept := t.subs[:0]
	for _, s := range t.subs {
		if alive(s) {
			live = append(live, s)
			kept = append(kept, s)
		}
	}
	for i := len(kept); i < len(t.subs); i++ {
		t.subs[i] = nil
	}
	t.subs = kept
	t.mu.Unlock()

	var results []any
	for _, s := range live {
		if r := s.PubsubEvent(t.name, event); r != nil {
			results = append(results, r)
		}
	}
	return results
}

func alive(s Subscriber) bool {
	if l, ok := s.(Liveness); ok {
		return l.Alive()
	}
	return true
}

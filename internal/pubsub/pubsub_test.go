package pubsub_test

import (
	"testing"

	"github.com/cory-johannsen/tale/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

type listener struct {
	dead   bool
	events []any
	reply  any
}

func (l *listener) PubsubEvent(topic string, event any) any {
	l.events = append(l.events, event)
	return l.reply
}

func (l *listener) Alive() bool { return !l.dead }

func TestTopicIsSingleton(t *testing.T) {
	b := pubsub.New()
	t1 := b.Topic("a")
	assert.Same(t, t1, b.Topic("a"))
	assert.NotSame(t, t1, b.Topic("b"))
	assert.Equal(t, []string{"a", "b"}, b.Names())
	assert.Equal(t, "wiretap-location:town.square", pubsub.Key("wiretap-location", "town.square"))
}

func TestSendCollectsNonNilResults(t *testing.T) {
	b := pubsub.New()
	top := b.Topic("x")
	s1 := &listener{reply: "one"}
	s2 := &listener{}
	top.Subscribe(s1)
	top.Subscribe(s2)
	top.Subscribe(s1)
	assert.Equal(t, []any{"one"}, top.Send("evt"))
	assert.Equal(t, []any{"evt"}, s1.events)
	assert.Equal(t, []any{"evt"}, s2.events)
}

func TestUnsubscribeAll(t *testing.T) {
	b := pubsub.New()
	s := &listener{}
	b.Topic("a").Subscribe(s)
	b.Topic("b").Subscribe(s)
	b.UnsubscribeAll(s)
	b.Topic("a").Send(1)
	b.Topic("b").Send(2)
	assert.Empty(t, s.events)
	assert.Zero(t, b.Topic("a").Subscribers())
}

// TestDeadSubscriberReceivesNothing checks that a subscriber which dies
// between subscribe and send never sees an event.
func TestDeadSubscriberReceivesNothing(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(rt, "n")
		b := pubsub.New()
		top := b.Topic("t")
		subs := make([]*listener, n)
		for i := range subs {
			subs[i] = &listener{}
			top.Subscribe(subs[i])
		}
		deadMask := rapid.SliceOfN(rapid.Bool(), n, n).Draw(rt, "dead")
		live := 0
		for i, d := range deadMask {
			subs[i].dead = d
			if !d {
				live++
			}
		}
		top.Send("e")
		for i, s := range subs {
			if deadMask[i] && len(s.events) != 0 {
				rt.Fatalf("dead subscriber %d received %v", i, s.events)
			}
			if !deadMask[i] && len(s.events) != 1 {
				rt.Fatalf("live subscriber %d received %d events", i, len(s.events))
			}
		}
		if top.Subscribers() != live {
			rt.Fatalf("expected %d subscribers, got %d", live, top.Subscribers())
		}
	})
}

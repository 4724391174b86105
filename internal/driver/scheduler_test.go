package driver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tale/internal/game/world"
)

var epoch = time.Date(2012, 4, 19, 14, 0, 0, 0, time.UTC)

func drain(s *scheduler, now time.Time) []*deferred {
	mark := s.mark()
	var out []*deferred
	for d := s.popDue(now, mark); d != nil; d = s.popDue(now, mark) {
		out = append(out, d)
	}
	return out
}

func TestScheduler_OrdersByDueThenInsertion(t *testing.T) {
	s := newScheduler()
	s.Defer(epoch.Add(2*time.Minute), 1, "late")
	s.Defer(epoch.Add(time.Minute), 1, "first")
	s.Defer(epoch.Add(time.Minute), 2, "second")
	s.Defer(epoch.Add(time.Hour), 3, "not yet")

	got := drain(s, epoch.Add(2*time.Minute))
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].action)
	assert.Equal(t, "second", got[1].action)
	assert.Equal(t, "late", got[2].action)
	assert.Equal(t, 1, s.Len())
}

func TestScheduler_CancelDeferreds(t *testing.T) {
	s := newScheduler()
	s.Defer(epoch, 1, "a")
	s.Defer(epoch, 2, "b")
	s.Defer(epoch, 1, "c")
	s.CancelDeferreds(1)

	got := drain(s, epoch)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].action)
}

func TestScheduler_LeavesNewDeferredsForTheNextRound(t *testing.T) {
	s := newScheduler()
	s.Defer(epoch, 1, "old")
	mark := s.mark()
	s.Defer(epoch.Add(-time.Minute), 2, "new but earlier")

	d := s.popDue(epoch, mark)
	require.NotNil(t, d)
	assert.Equal(t, "old", d.action)
	assert.Nil(t, s.popDue(epoch, mark))

	d = s.popDue(epoch, s.mark())
	require.NotNil(t, d)
	assert.Equal(t, "new but earlier", d.action)
}

func TestScheduler_Heartbeats(t *testing.T) {
	s := newScheduler()
	s.RegisterHeartbeat(5)
	s.RegisterHeartbeat(2)
	s.RegisterHeartbeat(5)
	assert.Equal(t, []world.ID{2, 5}, s.Heartbeats())
	s.UnregisterHeartbeat(2)
	assert.Equal(t, []world.ID{5}, s.Heartbeats())
}

func TestScheduler_AnyDue(t *testing.T) {
	s := newScheduler()
	s.Defer(epoch.Add(time.Hour), 7, "x")
	is7 := func(d *deferred) bool { return d.owner == 7 }
	assert.False(t, s.anyDue(epoch.Add(30*time.Minute), is7))
	assert.True(t, s.anyDue(epoch.Add(time.Hour), is7))
	assert.False(t, s.anyDue(epoch.Add(2*time.Hour), func(*deferred) bool { return false }))
}

func TestScheduler_FiresInChronologicalOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := newScheduler()
		offsets := rapid.SliceOfN(rapid.IntRange(0, 20), 1, 40).Draw(t, "offsets")
		for i, off := range offsets {
			s.Defer(epoch.Add(time.Duration(off)*time.Minute), world.ID(i+1), "tick")
		}
		cut := rapid.IntRange(0, 20).Draw(t, "cut")
		got := drain(s, epoch.Add(time.Duration(cut)*time.Minute))

		want := 0
		for _, off := range offsets {
			if off <= cut {
				want++
			}
		}
		if len(got) != want {
			t.Fatalf("fired %d deferreds, want %d", len(got), want)
		}
		for i := 1; i < len(got); i++ {
			prev, cur := got[i-1], got[i]
			if cur.due.Before(prev.due) || (cur.due.Equal(prev.due) && cur.seq < prev.seq) {
				t.Fatalf("deferred %d fired out of order", i)
			}
		}
		if s.Len() != len(offsets)-want {
			t.Fatalf("%d deferreds left, want %d", s.Len(), len(offsets)-want)
		}
	})
}

func TestOutbox(t *testing.T) {
	o := newOutbox("julie", 2)
	require.NoError(t, o.push(chunk{text: "a"}))
	require.NoError(t, o.push(chunk{text: "b"}))
	assert.Error(t, o.push(chunk{text: "c"}))

	o.close()
	o.close()
	assert.True(t, o.isClosed())
	assert.Error(t, o.push(chunk{text: "d"}))

	var got []string
	for c := range o.chunks {
		got = append(got, c.text)
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

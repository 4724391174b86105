// Package gametime models the in-game clock and parses and displays game
// durations and times of day.
package gametime

import (
	"fmt"
	"sync"
	"time"
)

// Period is a named phase of the game day.
type Period string

const (
	PeriodMidnight  Period = "midnight"
	PeriodLateNight Period = "late night"
	PeriodDawn      Period = "dawn"
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
	PeriodDusk      Period = "dusk"
	PeriodEvening   Period = "evening"
	PeriodNight     Period = "night"
)

// Hour is an hour of the game day in [0, 23].
type Hour int

// Period returns the named phase of the day for h.
//
// Precondition: h is in [0, 23].
func (h Hour) Period() Period {
	switch {
	case h == 0:
		return PeriodMidnight
	case h <= 4:
		return PeriodLateNight
	case h <= 6:
		return PeriodDawn
	case h <= 11:
		return PeriodMorning
	case h <= 16:
		return PeriodAfternoon
	case h <= 18:
		return PeriodDusk
	case h <= 21:
		return PeriodEvening
	}
	return PeriodNight
}

// String returns the hour as "HH:00".
func (h Hour) String() string {
	return fmt.Sprintf("%02d:00", int(h))
}

// Clock is the game clock. Game time runs TimesRealtime times faster than
// real time. It is safe for concurrent use, though only the driver mutates it.
type Clock struct {
	mu            sync.Mutex
	now           time.Time
	timesRealtime float64
}

// NewClock creates a clock set to epoch.
//
// Precondition: timesRealtime > 0; smaller values are treated as 1.
func NewClock(epoch time.Time, timesRealtime float64) *Clock {
	if timesRealtime <= 0 {
		timesRealtime = 1
	}
	return &Clock{now: epoch, timesRealtime: timesRealtime}
}

// Now returns the current game time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// TimesRealtime returns the game/real time ratio.
func (c *Clock) TimesRealtime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timesRealtime
}

// ToGame converts a real-time duration to the game-time duration it spans.
func (c *Clock) ToGame(real time.Duration) time.Duration {
	return time.Duration(float64(real) * c.TimesRealtime())
}

// PlusRealtime returns the game time after real has elapsed, without
// moving the clock.
func (c *Clock) PlusRealtime(real time.Duration) time.Time {
	return c.Now().Add(c.ToGame(real))
}

// MinusRealtime returns the game time real ago, without moving the clock.
func (c *Clock) MinusRealtime(real time.Duration) time.Time {
	return c.Now().Add(-c.ToGame(real))
}

// AddRealtime advances the clock by the game time spanned by real.
func (c *Clock) AddRealtime(real time.Duration) {
	c.AddGametime(c.ToGame(real))
}

// SubRealtime winds the clock back by the game time spanned by real.
func (c *Clock) SubRealtime(real time.Duration) {
	c.AddGametime(-c.ToGame(real))
}

// AddGametime advances the clock by d game time.
func (c *Clock) AddGametime(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// SubGametime winds the clock back by d game time.
func (c *Clock) SubGametime(d time.Duration) {
	c.AddGametime(-d)
}

// Hour returns the current hour of the game day.
func (c *Clock) Hour() Hour {
	return Hour(c.Now().Hour())
}

// Period returns the current phase of the game day.
func (c *Clock) Period() Period {
	return c.Hour().Period()
}

// Display formats the game date and time for players.
func (c *Clock) Display() string {
	return c.Now().Format("2006-01-02 15:04:05")
}

package gametime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/lang"
)

var unitDurations = map[string]time.Duration{
	"h": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
}

var amountPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)([a-z]*)$`)

// ParseDuration parses words such as ["3", "hours", "2", "min"], ["3h", "2m"]
// or ["2.5", "min"] into a duration.
//
// Postcondition: returns a *errs.ParseError for empty or malformed input.
func ParseDuration(words []string) (time.Duration, error) {
	if len(words) == 0 {
		return 0, errs.Parse("It's not clear what duration you mean.")
	}
	var total time.Duration
	for i := 0; i < len(words); i++ {
		m := amountPattern.FindStringSubmatch(strings.ToLower(words[i]))
		if m == nil {
			return 0, errs.Parse("It's not clear what duration you mean.")
		}
		amount, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, errs.Parse("It's not clear what duration you mean.")
		}
		unit := m[2]
		if unit == "" {
			if i+1 >= len(words) {
				return 0, errs.Parse("It's not clear what duration you mean.")
			}
			i++
			unit = strings.ToLower(words[i])
		}
		d, ok := unitDurations[unit]
		if !ok {
			return 0, errs.Parse("Unknown time unit: %s.", unit)
		}
		total += time.Duration(amount * float64(d))
	}
	return total, nil
}

// DurationDisplay renders d as words, e.g. "2 hours, 3 minutes, and 4 seconds".
func DurationDisplay(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	secs := int64(d / time.Second)
	if secs == 0 {
		return "no time at all"
	}
	days, secs := secs/86400, secs%86400
	hours, secs := secs/3600, secs%3600
	minutes, secs := secs/60, secs%60
	var parts []string
	add := func(n int64, unit string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, lang.Pluralize(unit, float64(n))))
		}
	}
	add(days, "day")
	add(hours, "hour")
	add(minutes, "minute")
	add(secs, "second")
	return lang.Join(parts, "and")
}

// TimeOfDay is a wall-clock time within a game day.
type TimeOfDay struct {
	Hour, Minute, Second int
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
}

// On returns the instant at t on the day of day.
func (t TimeOfDay) On(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour, t.Minute, t.Second, 0, day.Location())
}

var namedTimes = map[string]TimeOfDay{
	"midnight": {0, 0, 0},
	"noon":     {12, 0, 0},
	"sunrise":  {6, 0, 0},
	"sunset":   {20, 0, 0},
}

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// ParseTime parses a time of day: "HH:MM", "HH:MM:SS", a named time
// (midnight, noon, sunrise, sunset) or a duration since midnight.
func ParseTime(words []string) (TimeOfDay, error) {
	if len(words) == 0 {
		return TimeOfDay{}, errs.Parse("It's not clear what time you mean.")
	}
	if len(words) == 1 {
		w := strings.ToLower(words[0])
		if t, ok := namedTimes[w]; ok {
			return t, nil
		}
		if m := clockPattern.FindStringSubmatch(w); m != nil {
			t := TimeOfDay{}
			t.Hour, _ = strconv.Atoi(m[1])
			t.Minute, _ = strconv.Atoi(m[2])
			if m[3] != "" {
				t.Second, _ = strconv.Atoi(m[3])
			}
			if t.Hour > 23 || t.Minute > 59 || t.Second > 59 {
				return TimeOfDay{}, errs.Parse("That is not a valid time.")
			}
			return t, nil
		}
	}
	d, err := ParseDuration(words)
	if err != nil {
		return TimeOfDay{}, errs.Parse("It's not clear what time you mean.")
	}
	if d >= 24*time.Hour {
		return TimeOfDay{}, errs.Parse("That is not a valid time.")
	}
	secs := int(d / time.Second)
	return TimeOfDay{Hour: secs / 3600, Minute: secs % 3600 / 60, Second: secs % 60}, nil
}

// Package phase partitions the 24-hour clock around sunrise and sunset and
// derives the filter command and wake-up timing for each segment.
package phase

import "time"

// Phase is the segment of the day the current time falls in. Exactly one
// phase holds for any instant: the three segments are contiguous and cover
// the full day, with sunrise and sunset as the boundaries.
type Phase int

const (
	BeforeDaytime Phase = iota
	Daytime
	AfterDaytime
)

func (p Phase) String() string {
	switch p {
	case BeforeDaytime:
		return "before_daytime"
	case Daytime:
		return "daytime"
	case AfterDaytime:
		return "after_daytime"
	default:
		return "unknown"
	}
}

// Classify places now within the partition [midnight, sunrise),
// [sunrise, sunset), [sunset, midnight]. Pure and total; assumes
// sunrise <= sunset.
func Classify(now, sunrise, sunset time.Time) Phase {
	if now.Before(sunrise) {
		return BeforeDaytime
	}
	if now.Before(sunset) {
		return Daytime
	}
	return AfterDaytime
}

// UntilNextBoundary returns the time until the next phase boundary,
// truncated to whole seconds and never negative. After sunset the boundary
// is 23:59:59 of the current UTC day rather than the next sunrise, so a
// fresh pair of boundaries is derived once the date rolls over.
func UntilNextBoundary(now, sunrise, sunset time.Time) time.Duration {
	var d time.Duration
	switch Classify(now, sunrise, sunset) {
	case BeforeDaytime:
		d = sunrise.Sub(now)
	case Daytime:
		d = sunset.Sub(now)
	default:
		d = endOfDay(now).Sub(now)
	}
	d = d.Truncate(time.Second)
	if d < 0 {
		// Clock skew or a boundary crossed mid-computation.
		return 0
	}
	return d
}

func endOfDay(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)
}

// Command is the filter instruction derived from a phase.
type Command struct {
	Enable      bool
	Temperature int
}

// CommandFor maps a phase to its filter command: the filter is off during
// daytime and set to the configured temperature otherwise.
func CommandFor(p Phase, temperature int) Command {
	if p == Daytime {
		return Command{}
	}
	return Command{Enable: true, Temperature: temperature}
}

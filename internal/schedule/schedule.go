// Package schedule turns an availability window into bookable slots.
//
// Slots are never stored. They are recomputed per request from the window,
// the busy intervals (scheduled bookings and time blocks) and the clock.
package schedule

import (
	"fmt"
	"time"

	"booking-service/internal/models"
)

const (
	dateLayout     = "2006-01-02"
	dayLabelLayout = "Mon, Jan 2"
	clockLayout    = "15:04"
)

// Interval is a half-open [Start, End) range.
type Interval struct {
	Start time.Time
	End   time.Time
}

type Slot struct {
	Start time.Time
	End   time.Time
	Label string
}

type Day struct {
	Date  string
	Label string
	Slots []Slot
}

type Params struct {
	Now      time.Time
	Days     int
	Duration time.Duration
	Location *time.Location
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Touching boundaries do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// OverlapsAny reports whether [start, end) intersects any of busy.
func OverlapsAny(start, end time.Time, busy []Interval) bool {
	for _, b := range busy {
		if Overlaps(start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}

// Horizon returns the [from, to) range covering the target days: midnight of
// the current day through midnight after the last one.
func Horizon(now time.Time, days int, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	to := time.Date(local.Year(), local.Month(), local.Day()+days, 0, 0, 0, 0, loc)
	return from, to
}

// ProjectWindow places the window's time-of-day bounds onto the calendar day of d.
func ProjectWindow(d time.Time, w models.AvailabilityWindow, loc *time.Location) (time.Time, time.Time) {
	local := d.In(loc)
	return atClock(local, w.DailyStart, loc), atClock(local, w.DailyEnd, loc)
}

// WithinWindow reports whether [start, end) lies inside the window projected
// onto the day start falls on.
func WithinWindow(start, end time.Time, w models.AvailabilityWindow, loc *time.Location) bool {
	ws, we := ProjectWindow(start, w, loc)
	return !start.Before(ws) && !end.After(we)
}

// Generate walks every target day from its window start in steps of
// p.Duration. A candidate survives when it ends no later than the window end,
// does not start before p.Now and does not overlap busy. Days without
// surviving slots are still returned.
func Generate(w models.AvailabilityWindow, busy []Interval, p Params) []Day {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}

	days := make([]Day, 0, p.Days)
	if p.Duration <= 0 {
		return days
	}

	first, _ := Horizon(p.Now, p.Days, loc)

	for i := 0; i < p.Days; i++ {
		date := time.Date(first.Year(), first.Month(), first.Day()+i, 0, 0, 0, 0, loc)
		windowStart, windowEnd := ProjectWindow(date, w, loc)

		day := Day{
			Date:  date.Format(dateLayout),
			Label: date.Format(dayLabelLayout),
			Slots: []Slot{},
		}

		for cur := windowStart; !cur.Add(p.Duration).After(windowEnd); cur = cur.Add(p.Duration) {
			end := cur.Add(p.Duration)

			if cur.Before(p.Now) {
				continue
			}
			if OverlapsAny(cur, end, busy) {
				continue
			}

			day.Slots = append(day.Slots, Slot{
				Start: cur,
				End:   end,
				Label: fmt.Sprintf("%s - %s", cur.Format(clockLayout), end.Format(clockLayout)),
			})
		}

		days = append(days, day)
	}

	return days
}

// ParseClock parses "HH:MM" or "HH:MM:SS" into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("schedule: invalid time of day %q", s)
}

// FormatClock renders an offset from midnight as "HH:MM", or "HH:MM:SS" when
// it carries seconds.
func FormatClock(d time.Duration) string {
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	if sec := int((d % time.Minute) / time.Second); sec != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

// FormatClockSeconds always renders "HH:MM:SS", the form a TIME column takes.
func FormatClockSeconds(d time.Duration) string {
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	sec := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
}

func atClock(day time.Time, offset time.Duration, loc *time.Location) time.Time {
	h := int(offset / time.Hour)
	m := int((offset % time.Hour) / time.Minute)
	s := int((offset % time.Minute) / time.Second)
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, s, 0, loc)
}

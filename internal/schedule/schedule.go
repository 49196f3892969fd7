// Package schedule contains the pure watering-schedule rules.
//
// Everything here is a total function over its inputs: no storage, no
// clock, no side effects. Callers pass "now" in explicitly, which makes
// the rules trivially testable and guarantees that the dashboard trigger
// and the scheduled job compute identical results from identical data.
//
// DATE ARITHMETIC, NOT TIME ARITHMETIC:
// Due-ness works in whole calendar days. A plant watered at any time on
// day D becomes eligible again on day D + interval, inclusive. We truncate
// every timestamp to its local calendar date before comparing, so a plant
// watered at 23:50 and one watered at 08:00 are treated identically.
package schedule

import "time"

// DateFormat is the layout for persisted calendar dates.
const DateFormat = "2006-01-02"

// Cutoff is the local time of day after which the daily reminder batch may
// run. Fixed by design — not configurable per user.
const (
	CutoffHour   = 18
	CutoffMinute = 0
)

// dateOf truncates a timestamp to midnight of its calendar date,
// preserving the location.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsDue reports whether a plant needs watering.
//
//   - lastWatered == "" means the plant has never been watered, which is
//     always due.
//   - An unparsable lastWatered is also treated as due. Failing open is
//     deliberate: a spurious reminder is recoverable, a plant that is
//     silently never watered again is not.
//   - Otherwise the plant is due iff date(now) >= date(lastWatered) +
//     intervalDays. The boundary is inclusive: watered on Jan 1 with a
//     3-day interval, the plant is due on Jan 4 and not on Jan 3.
//
// intervalDays < 1 is a precondition violation rejected at plant creation;
// IsDue does not re-validate it.
func IsDue(lastWatered string, intervalDays int, now time.Time) bool {
	if lastWatered == "" {
		return true
	}
	last, err := time.ParseInLocation(DateFormat, lastWatered, now.Location())
	if err != nil {
		return true
	}
	nextDue := last.AddDate(0, 0, intervalDays)
	return !dateOf(now).Before(nextDue)
}

// NextDue returns the first calendar date on which the plant becomes due.
// The second return value is false when the plant has never been watered
// (or its record is unreadable) — it is due immediately and has no
// meaningful next-due date.
func NextDue(lastWatered string, intervalDays int, loc *time.Location) (time.Time, bool) {
	if lastWatered == "" {
		return time.Time{}, false
	}
	last, err := time.ParseInLocation(DateFormat, lastWatered, loc)
	if err != nil {
		return time.Time{}, false
	}
	return last.AddDate(0, 0, intervalDays), true
}

// WateredOn reports whether lastWatered falls on the same calendar date as
// day. Used to suppress reminders for plants that are due but were already
// watered earlier today. "" and unparsable values report false, which keeps
// a broken record inside the reminder batch until a successful watering
// rewrites it.
func WateredOn(lastWatered string, day time.Time) bool {
	if lastWatered == "" {
		return false
	}
	last, err := time.ParseInLocation(DateFormat, lastWatered, day.Location())
	if err != nil {
		return false
	}
	return dateOf(last).Equal(dateOf(day))
}

// AfterCutoff reports whether the daily reminder batch is allowed to run
// at the given local time: true from 18:00:00 onward, inclusive.
func AfterCutoff(now time.Time) bool {
	if now.Hour() != CutoffHour {
		return now.Hour() > CutoffHour
	}
	return now.Minute() >= CutoffMinute
}

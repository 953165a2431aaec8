package remind

import "time"

// ShouldFire reports whether r is due at the civil instant now. now must
// already be in the bot's fixed zone; only its date, weekday and
// minute-truncated time are consulted.
//
// The function is pure. Callers evaluating once per minute get exactly one
// true per due minute; the one-off Sent flag is the callers' re-entry guard.
func ShouldFire(r Reminder, now time.Time) bool {
	nd := DateOf(now)
	nt := TimeOfDayOf(now)

	switch r.Kind {
	case KindOneOff:
		return !r.Sent && r.At.Date == nd && r.At.Time == nt

	case KindRecurring:
		if nd.Before(r.StartDate) {
			return false
		}
		// End date is inclusive.
		if r.EndDate != nil && nd.After(*r.EndDate) {
			return false
		}
		if nt != r.TimeOfDay {
			return false
		}
		switch r.Frequency {
		case Daily:
			return true
		case Weekly:
			// Anchored to the start of the week, not to StartDate's weekday.
			return now.Weekday() == time.Monday
		case Monthly:
			// Fires on the 1st regardless of StartDate's day component.
			return nd.Day == 1
		}
	}
	return false
}

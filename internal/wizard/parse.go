package wizard

import (
	"errors"

	"remindbot/internal/remind"
)

// The wizard vocabulary. All matches are case-sensitive: the words double as
// reply-keyboard buttons, so free-typed variants are expected to match the
// button text exactly.
const oneOffChoice = "One-off"

var frequencyChoices = []string{
	string(remind.Daily),
	string(remind.Weekly),
	string(remind.Monthly),
	oneOffChoice,
}

var startDateChoices = []string{"Today", "Tomorrow"}

// End-date shortcuts are fixed day offsets from the start date, not calendar
// arithmetic ("1 Month" is 30 days).
var endShortcuts = []struct {
	label string
	days  int
}{
	{"1 Week", 7},
	{"1 Month", 30},
	{"3 Months", 90},
	{"6 Months", 180},
	{"1 Year", 365},
}

var endDateChoices = func() []string {
	out := []string{"Never"}
	for _, s := range endShortcuts {
		out = append(out, s.label)
	}
	return out
}()

var errUnknownChoice = errors.New("unknown choice")

func parseFrequencyChoice(text string) (freq remind.Frequency, isOneOff bool, err error) {
	if text == oneOffChoice {
		return "", true, nil
	}
	f := remind.Frequency(text)
	if !f.Valid() {
		return "", false, errUnknownChoice
	}
	return f, false, nil
}

func parseStartDate(text string, today remind.Date) (remind.Date, error) {
	switch text {
	case "Today":
		return today, nil
	case "Tomorrow":
		return today.AddDays(1), nil
	}
	return remind.ParseDate(text)
}

// parseEndDate returns nil for "Never". The error text is user-facing.
func parseEndDate(text string, start remind.Date) (*remind.Date, error) {
	if text == "Never" {
		return nil, nil
	}
	for _, s := range endShortcuts {
		if text == s.label {
			d := start.AddDays(s.days)
			return &d, nil
		}
	}
	d, err := remind.ParseDate(text)
	if err != nil {
		return nil, errors.New("I couldn't read that date.")
	}
	if !d.After(start) {
		return nil, errors.New("The end date must be after the start date (" + start.String() + ").")
	}
	return &d, nil
}

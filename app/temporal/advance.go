package temporal

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var reOrdinalValue = regexp.MustCompile(`^第([\d,、]+)([月火水木金土日])曜?日?(の前日)?$`)

// Advance computes the next occurrence after the one that just fired.
// ErrExhausted means the rule has no next occurrence within the bounded
// search window; a malformed rule value is a data-integrity error. Either
// way the caller must deactivate the reminder rather than retry.
func Advance(occurrence time.Time, rule Rule) (time.Time, error) {
	switch rule.Kind {
	case KindDaily:
		return occurrence.AddDate(0, 0, 1), nil
	case KindWeekly:
		return occurrence.AddDate(0, 0, 7), nil
	case KindBiweekly:
		return occurrence.AddDate(0, 0, 14), nil
	case KindWeekdays:
		next := occurrence.AddDate(0, 0, 1)
		for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
			next = next.AddDate(0, 0, 1)
		}
		return next, nil
	case KindMonthly:
		return advanceMonthly(occurrence, rule.Value)
	}
	return time.Time{}, fmt.Errorf("unsupported recurrence kind %q", rule.Kind)
}

func advanceMonthly(occ time.Time, value string) (time.Time, error) {
	if m := reOrdinalValue.FindStringSubmatch(value); m != nil {
		nths, err := parseOrdinalList(m[1])
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid ordinal list in rule value %q: %w", value, err)
		}
		next, ok := nextOrdinalOccurrence(occ, nths, weekdayKanji[m[2]], m[3] != "",
			occ.Hour(), occ.Minute(), occ.Second())
		if !ok {
			return time.Time{}, ErrExhausted
		}
		return next, nil
	}

	day, err := strconv.Atoi(value)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid monthly rule value %q", value)
	}
	// Same day-of-month next month, clamped to that month's true last day
	// when the day does not exist there (the 31st in a 30-day month).
	next := firstOfMonth(occ).AddDate(0, 1, 0)
	last := lastDayOfMonth(next.Year(), next.Month(), occ.Location())
	if day > last.Day() {
		day = last.Day()
	}
	return time.Date(next.Year(), next.Month(), day,
		occ.Hour(), occ.Minute(), occ.Second(), 0, occ.Location()), nil
}

package temporal

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The detector runs before the single-shot resolver: recurring phrasing
// subsumes single-shot resolution whenever a cadence word is present.
// Branches are tried in fixed priority order.

var (
	reMonthlyOrdinal = regexp.MustCompile(`毎月第([\d,、]+)([月火水木金土日])曜?日?(の前日)?`)
	reMonthlyDay     = regexp.MustCompile(`毎月(\d{1,2})日`)
	reBiweekly       = regexp.MustCompile(`隔週の?([月火水木金土日])曜?日?`)
	reWeeklyWeekday  = regexp.MustCompile(`毎週の?([月火水木金土日])曜?日?`)
)

// dailyTokens map cadence words to their family default hours; the
// explicit time-of-day token in the same phrase, when present, wins.
var dailyTokens = []struct {
	token string
	hour  int
}{
	{"毎朝", 8},
	{"毎晩", 20},
	{"毎夜", 20},
	{"毎夕", 17},
	{"毎日", 9},
}

// detectRecurrence recognizes recurring phrasing and derives the rule plus
// its first valid occurrence strictly after now. A phrase with no cadence
// falls through to the single-shot resolver.
func detectRecurrence(s string, now time.Time) (Rule, time.Time, bool) {
	if m := reMonthlyOrdinal.FindStringSubmatch(s); m != nil {
		nths, err := parseOrdinalList(m[1])
		if err != nil {
			return Rule{}, time.Time{}, false
		}
		dayBefore := m[3] != ""
		value := "第" + canonicalOrdinalList(nths) + m[2] + "曜日"
		if dayBefore {
			value += "の前日"
		}
		ct := clockOrDefault(s, defaultHour)
		first, ok := nextOrdinalOccurrence(now, nths, weekdayKanji[m[2]], dayBefore, ct.hour, ct.minute, 0)
		if !ok {
			return Rule{}, time.Time{}, false
		}
		return Rule{Kind: KindMonthly, Value: value}, first, true
	}

	if m := reMonthlyDay.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		if day < 1 || day > 31 {
			return Rule{}, time.Time{}, false
		}
		ct := clockOrDefault(s, defaultHour)
		first := monthlyDayOccurrence(now, day, ct)
		if !first.After(now) {
			next := firstOfMonth(now).AddDate(0, 1, 0)
			first = monthlyDayOccurrence(next, day, ct)
		}
		return Rule{Kind: KindMonthly, Value: m[1]}, first, true
	}

	if m := reBiweekly.FindStringSubmatch(s); m != nil {
		rule := Rule{Kind: KindBiweekly, Value: m[1] + "曜日"}
		return rule, anchorWeekday(s, now, weekdayKanji[m[1]], 7), true
	}

	if m := reWeeklyWeekday.FindStringSubmatch(s); m != nil {
		rule := Rule{Kind: KindWeekly, Value: m[1] + "曜日"}
		return rule, anchorWeekday(s, now, weekdayKanji[m[1]], 7), true
	}

	if strings.Contains(s, "毎週") {
		// No weekday stated: anchor on today's weekday.
		rule := Rule{Kind: KindWeekly, Value: weekdayLabels[now.Weekday()] + "曜日"}
		return rule, anchorWeekday(s, now, now.Weekday(), 7), true
	}

	// 平日毎朝 belongs to the weekdays family below, not to 毎朝.
	if !strings.Contains(s, "平日") {
		for _, dt := range dailyTokens {
			if !strings.Contains(s, dt.token) {
				continue
			}
			ct := clockOrDefault(s, dt.hour)
			first := dateAt(now, ct.hour, ct.minute)
			if !first.After(now) {
				first = first.AddDate(0, 0, 1)
			}
			return Rule{Kind: KindDaily}, first, true
		}
	}

	if strings.Contains(s, "平日") {
		ct := clockOrDefault(s, defaultHour)
		first := dateAt(now, ct.hour, ct.minute)
		if !first.After(now) {
			first = first.AddDate(0, 0, 1)
		}
		for first.Weekday() == time.Saturday || first.Weekday() == time.Sunday {
			first = first.AddDate(0, 0, 1)
		}
		return Rule{Kind: KindWeekdays}, first, true
	}

	return Rule{}, time.Time{}, false
}

// anchorWeekday returns the next occurrence of the weekday at the phrase's
// time of day, rolling forward by rollDays when the candidate is not
// strictly after now.
func anchorWeekday(s string, now time.Time, wd time.Weekday, rollDays int) time.Time {
	ct := clockOrDefault(s, defaultHour)
	first := dateAt(now.AddDate(0, 0, daysUntil(now, wd)), ct.hour, ct.minute)
	if !first.After(now) {
		first = first.AddDate(0, 0, rollDays)
	}
	return first
}

// monthlyDayOccurrence places day-of-month in t's month, clamped to the
// month's true last day when the month is shorter.
func monthlyDayOccurrence(t time.Time, day int, ct clockTime) time.Time {
	last := lastDayOfMonth(t.Year(), t.Month(), t.Location())
	if day > last.Day() {
		day = last.Day()
	}
	return time.Date(t.Year(), t.Month(), day, ct.hour, ct.minute, 0, 0, t.Location())
}

func parseOrdinalList(raw string) ([]int, error) {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '、' })
	nths := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		if n < 1 || n > 5 {
			return nil, strconv.ErrRange
		}
		nths = append(nths, n)
	}
	if len(nths) == 0 {
		return nil, strconv.ErrSyntax
	}
	return nths, nil
}

func canonicalOrdinalList(nths []int) string {
	parts := make([]string, len(nths))
	for i, n := range nths {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// nthWeekdayOf returns the date of the nth given weekday within a month,
// or false when the month has no such occurrence: first day of the month,
// advance to the first matching weekday, add N-1 weeks, reject spill into
// the following month.
func nthWeekdayOf(year int, month time.Month, nth int, wd time.Weekday, loc *time.Location) (time.Time, bool) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	target := first.AddDate(0, 0, daysUntil(first, wd)+(nth-1)*7)
	if target.Month() != first.Month() {
		return time.Time{}, false
	}
	return target, true
}

// nextOrdinalOccurrence searches the month of after plus the following two
// months for the earliest ordinal-weekday candidate strictly after the
// anchor. The three-month window is deliberate: an ordinal a month never
// has (a 5th Monday, say) makes the rule dead for that month, not an
// error, and after three empty months the rule is exhausted.
func nextOrdinalOccurrence(after time.Time, nths []int, wd time.Weekday, dayBefore bool, hour, minute, sec int) (time.Time, bool) {
	loc := after.Location()
	var best time.Time
	for i := 0; i < 3; i++ {
		month := firstOfMonth(after).AddDate(0, i, 0)
		for _, nth := range nths {
			target, ok := nthWeekdayOf(month.Year(), month.Month(), nth, wd, loc)
			if !ok {
				continue
			}
			if dayBefore {
				target = target.AddDate(0, 0, -1)
			}
			cand := time.Date(target.Year(), target.Month(), target.Day(), hour, minute, sec, 0, loc)
			if cand.After(after) && (best.IsZero() || cand.Before(best)) {
				best = cand
			}
		}
	}
	return best, !best.IsZero()
}

package temporal

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// patternRule pairs a phrase matcher with its timestamp computation. The
// rules are evaluated in fixed order and the first match wins; phrases can
// satisfy several families, so the order is load-bearing.
type patternRule struct {
	name    string
	resolve func(s string, now time.Time) (time.Time, bool)
}

var patternRules = []patternRule{
	{"relative_offset", resolveRelativeOffset},
	{"named_day", resolveNamedDay},
	{"weekend", resolveWeekend},
	{"month_boundary", resolveMonthBoundary},
	{"day_of_month", resolveDayOfMonth},
	{"qualified_weekday", resolveQualifiedWeekday},
	{"explicit_date", resolveExplicitDate},
	{"clock_only", resolveClockOnly},
}

// resolvePattern derives an absolute timestamp from a normalized phrase
// and a reference instant, or reports no match.
func resolvePattern(s string, now time.Time) (time.Time, bool) {
	for _, r := range patternRules {
		if at, ok := r.resolve(s, now); ok {
			return at, true
		}
	}
	return time.Time{}, false
}

var (
	reWeeksAfter   = regexp.MustCompile(`(\d+)週間後`)
	reDaysAfter    = regexp.MustCompile(`(\d+)日後`)
	reHoursAfter   = regexp.MustCompile(`(\d+)時間(半)?(?:(\d+)分)?後`)
	reMinutesAfter = regexp.MustCompile(`(\d+)分後`)
)

// resolveRelativeOffset handles "N分後", "N時間後", "N時間半後",
// "N時間M分後", "N日後" and "N週間後". Distinct unit words in one phrase
// add their deltas; the result is now plus the exact declared duration.
func resolveRelativeOffset(s string, now time.Time) (time.Time, bool) {
	var d time.Duration
	matched := false

	if m := reWeeksAfter.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		d += time.Duration(n) * 7 * 24 * time.Hour
		matched = true
	}
	if m := reDaysAfter.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		d += time.Duration(n) * 24 * time.Hour
		matched = true
	}
	if m := reHoursAfter.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		d += time.Duration(n) * time.Hour
		if m[2] != "" {
			d += 30 * time.Minute
		}
		if m[3] != "" {
			mins, _ := strconv.Atoi(m[3])
			d += time.Duration(mins) * time.Minute
		}
		matched = true
	} else if m := reMinutesAfter.FindStringSubmatch(s); m != nil {
		// Only when no hour form matched: the minutes of "1時間30分後"
		// are already counted above.
		n, _ := strconv.Atoi(m[1])
		d += time.Duration(n) * time.Minute
		matched = true
	}

	if !matched {
		return time.Time{}, false
	}
	return now.Add(d), true
}

// namedDayOffsets is checked in order: longer tokens first so 明後日 is
// not consumed as 明日 plus leftovers.
var namedDayOffsets = []struct {
	token string
	days  int
}{
	{"明々後日", 3},
	{"明明後日", 3},
	{"明後日", 2},
	{"明日", 1},
	{"今日", 0},
}

func resolveNamedDay(s string, now time.Time) (time.Time, bool) {
	for _, nd := range namedDayOffsets {
		if !strings.Contains(s, nd.token) {
			continue
		}
		base := now.AddDate(0, 0, nd.days)
		if ct, ok := extractClock(s); ok {
			return dateAt(base, ct.hour, ct.minute), true
		}
		if nd.days == 0 {
			// 今日 without an explicit hour: the hour after the current
			// one. time.Date normalizes 24 o'clock into the next day.
			return dateAt(now, now.Hour()+1, 0), true
		}
		return dateAt(base, defaultHour, 0), true
	}
	return time.Time{}, false
}

func resolveWeekend(s string, now time.Time) (time.Time, bool) {
	onWeekend := now.Weekday() == time.Saturday || now.Weekday() == time.Sunday

	var days int
	switch {
	case strings.Contains(s, "来週末"):
		// From the weekend itself, next weekend is the following Saturday.
		if onWeekend {
			days = daysUntil(now, time.Saturday)
			if days == 0 {
				days = 7
			}
		} else {
			days = daysUntil(now, time.Saturday) + 7
		}
	case strings.Contains(s, "今週末"):
		// Already on the weekend counts as this weekend.
		if !onWeekend {
			days = daysUntil(now, time.Saturday)
		}
	default:
		return time.Time{}, false
	}
	ct := clockOrDefault(s, defaultHour)
	return dateAt(now.AddDate(0, 0, days), ct.hour, ct.minute), true
}

// monthBoundaryTokens resolve month-end and month-start references; longer
// tokens first so 来月末 is not consumed as 月末.
var monthBoundaryTokens = []struct {
	token  string
	months int
	end    bool
}{
	{"再来月末", 2, true},
	{"来月末", 1, true},
	{"今月末", 0, true},
	{"月末", 0, true},
	{"再来月頭", 2, false},
	{"来月頭", 1, false},
	{"今月頭", 0, false},
	{"月初", 0, false},
}

func resolveMonthBoundary(s string, now time.Time) (time.Time, bool) {
	for _, mb := range monthBoundaryTokens {
		idx := strings.Index(s, mb.token)
		if idx < 0 {
			continue
		}
		// A digit right before 月末/月初 is an explicit month reference
		// (7月末), which this family does not own.
		if (mb.token == "月末" || mb.token == "月初") && precededByDigit(s, idx) {
			continue
		}
		base := firstOfMonth(now).AddDate(0, mb.months, 0)
		if mb.end {
			base = base.AddDate(0, 1, -1)
		}
		ct := clockOrDefault(s, defaultHour)
		return dateAt(base, ct.hour, ct.minute), true
	}
	return time.Time{}, false
}

func precededByDigit(s string, idx int) bool {
	if idx == 0 {
		return false
	}
	c := s[idx-1]
	return c >= '0' && c <= '9'
}

var reDayOfMonth = regexp.MustCompile(`(再来月|来月|今月)(\d{1,2})日`)

var monthQualifierOffsets = map[string]int{"今月": 0, "来月": 1, "再来月": 2}

// resolveDayOfMonth handles "day N of this/next/the month after next
// month". An impossible day for the target month falls through to
// no-match rather than silently wrapping.
func resolveDayOfMonth(s string, now time.Time) (time.Time, bool) {
	m := reDayOfMonth.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[2])
	base := firstOfMonth(now).AddDate(0, monthQualifierOffsets[m[1]], 0)
	target := time.Date(base.Year(), base.Month(), day, 0, 0, 0, 0, now.Location())
	if target.Month() != base.Month() || target.Day() != day {
		return time.Time{}, false
	}
	ct := clockOrDefault(s, defaultHour)
	return dateAt(target, ct.hour, ct.minute), true
}

var (
	reQualifiedWeekday = regexp.MustCompile(`(再来週|来週|今週)の?([月火水木金土日])曜`)
	reNextWeekday      = regexp.MustCompile(`次の([月火水木金土日])曜`)
)

var weekQualifierOffsets = map[string]int{"今週": 0, "来週": 7, "再来週": 14}

func resolveQualifiedWeekday(s string, now time.Time) (time.Time, bool) {
	if m := reQualifiedWeekday.FindStringSubmatch(s); m != nil {
		wd := weekdayKanji[m[2]]
		// Weeks start on Monday.
		weekStart := now.AddDate(0, 0, -((int(now.Weekday()) + 6) % 7))
		target := weekStart.AddDate(0, 0, weekQualifierOffsets[m[1]]+(int(wd)+6)%7)
		ct := clockOrDefault(s, defaultHour)
		return dateAt(target, ct.hour, ct.minute), true
	}
	if m := reNextWeekday.FindStringSubmatch(s); m != nil {
		wd := weekdayKanji[m[1]]
		days := daysUntil(now, wd)
		if days == 0 {
			// 次の implies strictly future: today's weekday rolls a week.
			days = 7
		}
		ct := clockOrDefault(s, defaultHour)
		return dateAt(now.AddDate(0, 0, days), ct.hour, ct.minute), true
	}
	return time.Time{}, false
}

var reMonthDay = regexp.MustCompile(`(\d{1,2})月(\d{1,2})日`)

// resolveExplicitDate handles "M月D日". A date already past this year
// rolls to next year; an impossible date is no-match.
func resolveExplicitDate(s string, now time.Time) (time.Time, bool) {
	m := reMonthDay.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return time.Time{}, false
	}
	target := time.Date(now.Year(), time.Month(month), day, 0, 0, 0, 0, now.Location())
	if int(target.Month()) != month || target.Day() != day {
		return time.Time{}, false
	}
	ct := clockOrDefault(s, defaultHour)
	at := dateAt(target, ct.hour, ct.minute)
	if at.Before(now) {
		at = dateAt(target.AddDate(1, 0, 0), ct.hour, ct.minute)
	}
	return at, true
}

// resolveClockOnly handles phrases with a time of day but no date
// qualifier; a time already past today rolls to tomorrow.
func resolveClockOnly(s string, now time.Time) (time.Time, bool) {
	ct, ok := extractClock(s)
	if !ok {
		return time.Time{}, false
	}
	at := dateAt(now, ct.hour, ct.minute)
	if !at.After(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at, true
}

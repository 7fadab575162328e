package temporal

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var weekdayKanji = map[string]time.Weekday{
	"日": time.Sunday,
	"月": time.Monday,
	"火": time.Tuesday,
	"水": time.Wednesday,
	"木": time.Thursday,
	"金": time.Friday,
	"土": time.Saturday,
}

var weekdayLabels = map[time.Weekday]string{
	time.Sunday:    "日",
	time.Monday:    "月",
	time.Tuesday:   "火",
	time.Wednesday: "水",
	time.Thursday:  "木",
	time.Friday:    "金",
	time.Saturday:  "土",
}

// daysUntil returns the number of days from t to the next given weekday,
// zero when t already falls on it.
func daysUntil(t time.Time, wd time.Weekday) int {
	return (int(wd) - int(t.Weekday()) + 7) % 7
}

// dateAt places the given wall-clock time on t's calendar day, in t's zone.
func dateAt(t time.Time, hour, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// lastDayOfMonth computes a true month end as the first day of the
// following month minus one day, never via a fixed day-of-month guess.
func lastDayOfMonth(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, month+1, 1, 0, 0, 0, 0, loc).AddDate(0, 0, -1)
}

// clockTime is a wall-clock time extracted from a phrase. explicit is true
// when the phrase actually carried a time-of-day token.
type clockTime struct {
	hour   int
	minute int
}

const defaultHour = 9

var (
	rePMClock    = regexp.MustCompile(`午後(\d{1,2})時(?:(\d{1,2})分|(半))?`)
	reAMClock    = regexp.MustCompile(`午前(\d{1,2})時(?:(\d{1,2})分|(半))?`)
	reKanjiClock = regexp.MustCompile(`(\d{1,2})時(?:(\d{1,2})分|(半))?`)
	reColonClock = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// pmContextWords trigger the afternoon heuristic for bare 1-11 o'clock
// values that carry no explicit AM marker.
var pmContextWords = []string{"午後", "夕方", "夜", "晩"}

// vagueClockWords maps period-of-day words to their default hours. The
// slice order is load-bearing: longer, more specific words are checked
// before shorter ones so a generic token never masks a precise one
// (正午 before 昼, 深夜 before 夜).
var vagueClockWords = []struct {
	word string
	hour int
}{
	{"正午", 12},
	{"深夜", 23},
	{"朝", 8},
	{"昼", 12},
	{"夕方", 17},
	{"夜", 20},
	{"午後", 14},
}

// extractClock pulls a time of day out of a phrase. Explicit forms are
// checked first (午後N時, 午前N時, N時M分, N時半, N:MM, bare N時 with the
// PM-context heuristic), then vague period words with their fixed
// defaults.
func extractClock(s string) (clockTime, bool) {
	// 正午 and 深夜 outrank digit forms only over their generic
	// single-kanji counterparts; digits stay authoritative. Still, they
	// must be resolved before 昼/夜 below.
	if m := rePMClock.FindStringSubmatch(s); m != nil {
		hour, minute, ok := clockFromMatch(m)
		if !ok {
			return clockTime{}, false
		}
		if hour < 12 {
			hour += 12
		}
		return clockTime{hour: hour, minute: minute}, true
	}
	if m := reAMClock.FindStringSubmatch(s); m != nil {
		hour, minute, ok := clockFromMatch(m)
		if !ok {
			return clockTime{}, false
		}
		if hour == 12 {
			hour = 0
		}
		return clockTime{hour: hour, minute: minute}, true
	}
	if hour, minute, ok := findBareClock(s); ok {
		return clockTime{hour: applyPMContext(s, hour), minute: minute}, true
	}
	if m := reColonClock.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour <= 23 && minute <= 59 {
			return clockTime{hour: applyPMContext(s, hour), minute: minute}, true
		}
	}
	for _, vw := range vagueClockWords {
		if strings.Contains(s, vw.word) {
			return clockTime{hour: vw.hour}, true
		}
	}
	return clockTime{}, false
}

// findBareClock matches N時[M分|半] while skipping duration forms: the 時
// in "3時間" is a unit, not a clock time.
func findBareClock(s string) (hour, minute int, ok bool) {
	for _, m := range reKanjiClock.FindAllStringSubmatchIndex(s, -1) {
		if strings.HasPrefix(s[m[1]:], "間") {
			continue
		}
		h, _ := strconv.Atoi(s[m[2]:m[3]])
		if h > 23 {
			continue
		}
		mn := 0
		if m[4] >= 0 {
			mn, _ = strconv.Atoi(s[m[4]:m[5]])
			if mn > 59 {
				continue
			}
		} else if m[6] >= 0 {
			mn = 30
		}
		return h, mn, true
	}
	return 0, 0, false
}

func clockFromMatch(m []string) (hour, minute int, ok bool) {
	hour, _ = strconv.Atoi(m[1])
	if hour > 12 {
		return 0, 0, false
	}
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
		if minute > 59 {
			return 0, 0, false
		}
	} else if m[3] != "" {
		minute = 30
	}
	return hour, minute, true
}

func applyPMContext(s string, hour int) int {
	if hour < 1 || hour > 11 || strings.Contains(s, "午前") {
		return hour
	}
	for _, w := range pmContextWords {
		if strings.Contains(s, w) {
			return hour + 12
		}
	}
	return hour
}

// clockOrDefault extracts a time of day, falling back to the given hour.
func clockOrDefault(s string, hour int) clockTime {
	if ct, ok := extractClock(s); ok {
		return ct
	}
	return clockTime{hour: hour}
}

package temporal

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// dd matches a digit in either ASCII or full-width form. Extraction runs
// against the original, non-normalized text so multi-byte offsets stay
// intact, which means every digit class here must accept both widths.
const dd = `[0-9０-９]`

// protectedWords are compound words that happen to contain temporal
// substrings; stripping rules must never fire inside them. Longest first.
var protectedWords = []string{
	"明日香村",
	"明日香",
	"今日子",
	"毎日新聞",
	"朝日新聞",
	"日曜大工",
	"一昨日",
}

// stripPatterns mirror the resolver/detector priority so the longest,
// most specific temporal phrase is removed first and no partial strip
// leaves a dangling fragment behind.
var stripPatterns = []*regexp.Regexp{
	// Recurrence phrasing.
	regexp.MustCompile(`毎月第[0-9０-９,、]+[月火水木金土日]曜?日?の前日`),
	regexp.MustCompile(`毎月第[0-9０-９,、]+[月火水木金土日]曜?日?`),
	regexp.MustCompile(`毎月` + dd + `{1,2}日`),
	regexp.MustCompile(`隔週の?[月火水木金土日]曜?日?`),
	regexp.MustCompile(`毎週の?[月火水木金土日]曜?日?`),
	regexp.MustCompile(`毎週|毎朝|毎晩|毎夜|毎夕方|毎夕|毎日|平日`),
	// Relative offsets.
	regexp.MustCompile(dd + `+週間後`),
	regexp.MustCompile(dd + `+日後`),
	regexp.MustCompile(dd + `+時間半?(?:` + dd + `+分)?後`),
	regexp.MustCompile(dd + `+分後`),
	// Named days, weekends, month boundaries.
	regexp.MustCompile(`明々後日|明明後日|明後日|明日|今日`),
	regexp.MustCompile(`来週末|今週末`),
	regexp.MustCompile(`再来月末|来月末|今月末|再来月頭|来月頭|今月頭`),
	regexp.MustCompile(`(?:再来月|来月|今月)` + dd + `{1,2}日`),
	regexp.MustCompile(`(?:再来週|来週|今週)の?[月火水木金土日]曜日?`),
	regexp.MustCompile(`次の[月火水木金土日]曜日?`),
	regexp.MustCompile(dd + `{1,2}月` + dd + `{1,2}日`),
	// Explicit times of day.
	regexp.MustCompile(`午後` + dd + `{1,2}時(?:` + dd + `{1,2}分|半)?`),
	regexp.MustCompile(`午前` + dd + `{1,2}時(?:` + dd + `{1,2}分|半)?`),
	regexp.MustCompile(dd + `{1,2}:` + dd + `{2}`),
}

// vaguePatterns run after the hour stripper so 正午/深夜 win over 昼/夜.
var vaguePatterns = []*regexp.Regexp{
	regexp.MustCompile(`正午|深夜`),
	regexp.MustCompile(`朝|昼頃|昼|夕方|夜|午後|午前`),
}

var (
	reBareClockStrip = regexp.MustCompile(dd + `{1,2}時(?:` + dd + `{1,2}分|半)?`)
	reSeamParticle   = regexp.MustCompile(`(?:^|[\s　])[にへでとはの](?:[\s　]|$)`)
	reEdgeJunk       = regexp.MustCompile(`^[\s　、。,\.にへでとはの]+|[\s　、。,\.にへでとの]+$`)
	reWhitespace     = regexp.MustCompile(`[\s　]+`)
)

// ExtractContent removes every matched temporal and recurrence
// sub-expression from the original phrase, cleans dangling particles, and
// collapses whitespace. It never returns an empty string: when stripping
// would empty the content, the original input is returned unchanged.
func ExtractContent(phrase string) string {
	work, restore := protectCompounds(phrase)

	for _, re := range stripPatterns {
		work = re.ReplaceAllString(work, "")
	}
	work = stripMonthBoundary(work)
	work = stripBareClock(work)
	for _, re := range vaguePatterns {
		work = re.ReplaceAllString(work, "")
	}

	work = reSeamParticle.ReplaceAllString(work, " ")
	work = reEdgeJunk.ReplaceAllString(work, "")
	work = strings.TrimSpace(reWhitespace.ReplaceAllString(work, " "))
	work = restore(work)

	if work == "" {
		return phrase
	}
	return work
}

var reBareMonthBoundary = regexp.MustCompile(`月末|月初`)

// stripMonthBoundary removes bare 月末/月初 tokens. A digit right before
// the token is an explicit month reference (7月末) the resolver does not
// own, so the whole expression stays in the content.
func stripMonthBoundary(s string) string {
	var b strings.Builder
	last := 0
	for _, m := range reBareMonthBoundary.FindAllStringIndex(s, -1) {
		if digitBefore(s, m[0]) {
			continue
		}
		b.WriteString(s[last:m[0]])
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// digitBefore accepts both widths: unlike the resolver, this runs against
// the original, non-normalized text.
func digitBefore(s string, idx int) bool {
	r, size := utf8.DecodeLastRuneInString(s[:idx])
	if size == 0 {
		return false
	}
	return (r >= '0' && r <= '9') || (r >= '０' && r <= '９')
}

// stripBareClock removes N時[M分|半] tokens while keeping duration forms:
// the 時 in "2時間の会議" is a unit and part of the content.
func stripBareClock(s string) string {
	var b strings.Builder
	last := 0
	for _, m := range reBareClockStrip.FindAllStringIndex(s, -1) {
		if m[0] < last {
			continue
		}
		if strings.HasPrefix(s[m[1]:], "間") {
			continue
		}
		b.WriteString(s[last:m[0]])
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// protectCompounds swaps protected words for placeholders so no stripping
// rule can fire inside them, and returns the inverse substitution.
func protectCompounds(s string) (string, func(string) string) {
	replaced := make(map[string]string)
	for i, w := range protectedWords {
		if !strings.Contains(s, w) {
			continue
		}
		ph := fmt.Sprintf("\x00%c\x00", 'a'+i)
		s = strings.ReplaceAll(s, w, ph)
		replaced[ph] = w
	}
	return s, func(out string) string {
		for ph, w := range replaced {
			out = strings.ReplaceAll(out, ph, w)
		}
		return out
	}
}

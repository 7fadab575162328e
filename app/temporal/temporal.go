// Package temporal turns free-form Japanese scheduling phrases into
// absolute timestamps and recurrence rules, and computes each rule's next
// occurrence after it fires. Every function is a pure function of its
// inputs: the reference instant is captured once per call and never
// re-read, so concurrent invocation needs no locking.
package temporal

import "time"

// Resolve parses a phrase against the recurrence detector first, then the
// single-shot pattern resolver. The returned occurrence is expressed in
// now's zone; Content is never empty. ErrNoMatch is the expected result
// for phrases with no recognizable temporal expression and is the
// caller's cue to consult its fallback delegate.
func Resolve(phrase string, now time.Time) (*Result, error) {
	// Matching runs on a digit-normalized copy with compound lookalikes
	// masked out, so 毎日新聞 never reads as a daily cadence. Extraction
	// uses the original text.
	matchable, _ := protectCompounds(NormalizeDigits(phrase))

	if rule, first, ok := detectRecurrence(matchable, now); ok {
		r := rule
		return &Result{Content: ExtractContent(phrase), At: first, Rule: &r}, nil
	}
	if at, ok := resolvePattern(matchable, now); ok {
		return &Result{Content: ExtractContent(phrase), At: at}, nil
	}
	return nil, ErrNoMatch
}

package temporal

import (
	"errors"
	"time"
)

// Kind enumerates the supported recurrence cadences.
type Kind string

const (
	KindNone     Kind = "none"
	KindDaily    Kind = "daily"
	KindWeekly   Kind = "weekly"
	KindMonthly  Kind = "monthly"
	KindBiweekly Kind = "biweekly"
	KindWeekdays Kind = "weekdays"
)

// Rule describes how to compute the next occurrence after one fires.
//
// Value is drawn from a closed vocabulary produced by the detector, never
// free-form text: for monthly rules it is either a day-of-month digit
// string ("31") or an ordinal-weekday token ("第3火曜日", optionally
// suffixed with "の前日"); for weekly/biweekly rules a weekday token
// ("金曜日"); daily and weekdays rules carry no value.
type Rule struct {
	Kind  Kind
	Value string
}

// Result is the outcome of resolving a phrase: the residual reminder
// content, the first absolute occurrence, and the recurrence rule when the
// phrase described a cadence. At is always expressed in the zone of the
// reference instant passed to Resolve.
type Result struct {
	Content string
	At      time.Time
	Rule    *Rule
}

// ErrNoMatch is the expected outcome for phrases with no recognizable
// temporal expression. It is the caller's signal to consult the fallback
// delegate, not an error condition inside this package.
var ErrNoMatch = errors.New("no temporal expression matched")

// ErrExhausted reports that a recurrence rule has no next occurrence
// within the bounded search window. The caller must deactivate the
// reminder rather than retry.
var ErrExhausted = errors.New("recurrence rule exhausted")

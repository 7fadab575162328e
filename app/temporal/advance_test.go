package temporal

import (
	"errors"
	"testing"
	"time"
)

func TestAdvance_SimpleKinds(t *testing.T) {
	occ := time.Date(2024, 7, 5, 20, 30, 0, 0, jst) // Friday

	tests := []struct {
		name string
		rule Rule
		want time.Time
	}{
		{"daily", Rule{Kind: KindDaily}, time.Date(2024, 7, 6, 20, 30, 0, 0, jst)},
		{"weekly", Rule{Kind: KindWeekly, Value: "金曜日"}, time.Date(2024, 7, 12, 20, 30, 0, 0, jst)},
		{"biweekly", Rule{Kind: KindBiweekly, Value: "金曜日"}, time.Date(2024, 7, 19, 20, 30, 0, 0, jst)},
		{"weekdays from friday", Rule{Kind: KindWeekdays}, time.Date(2024, 7, 8, 20, 30, 0, 0, jst)},
	}

	for _, tt := range tests {
		got, err := Advance(occ, tt.rule)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestAdvance_WeekdaysNeverLandOnWeekend(t *testing.T) {
	occ := time.Date(2024, 7, 1, 9, 0, 0, 0, jst)
	for i := 0; i < 30; i++ {
		next, err := Advance(occ, Rule{Kind: KindWeekdays})
		if err != nil {
			t.Fatalf("Step %d: unexpected error: %v", i, err)
		}
		if wd := next.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Fatalf("Step %d: weekdays rule landed on %v (%v)", i, wd, next)
		}
		occ = next
	}
}

func TestAdvance_MonthlyDayKeepsRuleValue(t *testing.T) {
	// A day-31 rule that fired on the clamped Feb 29th targets Mar 31st,
	// not Mar 29th: the rule value drives the advance, not the fired day.
	occ := time.Date(2024, 2, 29, 9, 0, 0, 0, jst)
	next, err := Advance(occ, Rule{Kind: KindMonthly, Value: "31"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := time.Date(2024, 3, 31, 9, 0, 0, 0, jst)
	if !next.Equal(want) {
		t.Errorf("Expected %v, got %v", want, next)
	}
}

func TestAdvance_MonthlyDayClampsIntoShortMonth(t *testing.T) {
	occ := time.Date(2024, 1, 31, 9, 0, 0, 0, jst)
	next, err := Advance(occ, Rule{Kind: KindMonthly, Value: "31"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := time.Date(2024, 2, 29, 9, 0, 0, 0, jst)
	if !next.Equal(want) {
		t.Errorf("Expected leap-year clamp %v, got %v", want, next)
	}
}

func TestAdvance_MonthlyOrdinal(t *testing.T) {
	// 3rd Tuesday: Jul 16th fires, the next is Aug 20th.
	occ := time.Date(2024, 7, 16, 9, 0, 0, 0, jst)
	next, err := Advance(occ, Rule{Kind: KindMonthly, Value: "第3火曜日"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := time.Date(2024, 8, 20, 9, 0, 0, 0, jst)
	if !next.Equal(want) {
		t.Errorf("Expected %v, got %v", want, next)
	}
}

func TestAdvance_MonthlyOrdinalDayBefore(t *testing.T) {
	occ := time.Date(2024, 7, 15, 9, 0, 0, 0, jst)
	next, err := Advance(occ, Rule{Kind: KindMonthly, Value: "第3火曜日の前日"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := time.Date(2024, 8, 19, 9, 0, 0, 0, jst)
	if !next.Equal(want) {
		t.Errorf("Expected %v, got %v", want, next)
	}
}

func TestAdvance_MonthlyOrdinalList(t *testing.T) {
	// 2nd and 4th Saturday of July 2024: the 13th and the 27th.
	occ := time.Date(2024, 7, 13, 9, 0, 0, 0, jst)
	next, err := Advance(occ, Rule{Kind: KindMonthly, Value: "第2,4土曜日"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := time.Date(2024, 7, 27, 9, 0, 0, 0, jst)
	if !next.Equal(want) {
		t.Errorf("Expected %v, got %v", want, next)
	}
}

func TestAdvance_MonthlyOrdinalExhausted(t *testing.T) {
	// The 5th Friday of Aug 2024 is the 30th; Sep and Oct 2024 have only
	// four Fridays each, so the bounded search finds nothing.
	occ := time.Date(2024, 8, 30, 9, 0, 0, 0, jst)
	_, err := Advance(occ, Rule{Kind: KindMonthly, Value: "第5金曜日"})
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("Expected ErrExhausted, got %v", err)
	}
}

func TestAdvance_InvalidMonthlyValue(t *testing.T) {
	tests := []string{"", "0", "32", "abc", "第0火曜日", "第6火曜日"}

	for _, value := range tests {
		_, err := Advance(refMonday(), Rule{Kind: KindMonthly, Value: value})
		if err == nil {
			t.Errorf("Expected error for rule value %q", value)
		}
		if errors.Is(err, ErrExhausted) {
			t.Errorf("Value %q: malformed value must not read as exhaustion", value)
		}
	}
}

func TestAdvance_UnsupportedKind(t *testing.T) {
	_, err := Advance(refMonday(), Rule{Kind: KindNone})
	if err == nil {
		t.Error("Expected error for non-recurring rule")
	}
}

package temporal

import (
	"testing"
	"time"
)

func TestFormatRepeatLabel(t *testing.T) {
	tests := []struct {
		rule Rule
		want string
	}{
		{Rule{Kind: KindDaily}, "毎日"},
		{Rule{Kind: KindWeekly, Value: "金曜日"}, "毎週金曜日"},
		{Rule{Kind: KindBiweekly, Value: "月曜日"}, "隔週月曜日"},
		{Rule{Kind: KindMonthly, Value: "25"}, "毎月25日"},
		{Rule{Kind: KindMonthly, Value: "第3火曜日"}, "毎月第3火曜日"},
		{Rule{Kind: KindMonthly, Value: "第3火曜日の前日"}, "毎月第3火曜日の前日"},
		{Rule{Kind: KindWeekdays}, "平日"},
	}

	for _, tt := range tests {
		if got := FormatRepeatLabel(tt.rule); got != tt.want {
			t.Errorf("%+v: expected '%s', got '%s'", tt.rule, tt.want, got)
		}
	}
}

func TestFormatRemaining(t *testing.T) {
	now := refMonday()

	tests := []struct {
		name   string
		target time.Time
		want   string
	}{
		{"days and hours", now.Add(51 * time.Hour), "あと2日3時間"},
		{"exact days", now.Add(48 * time.Hour), "あと2日"},
		{"hours and minutes", now.Add(90 * time.Minute), "あと1時間30分"},
		{"exact hours", now.Add(2 * time.Hour), "あと2時間"},
		{"minutes", now.Add(45 * time.Minute), "あと45分"},
		{"under a minute", now.Add(30 * time.Second), "まもなく"},
		{"past", now.Add(-time.Minute), "期限切れ"},
	}

	for _, tt := range tests {
		if got := FormatRemaining(tt.target, now); got != tt.want {
			t.Errorf("%s: expected '%s', got '%s'", tt.name, tt.want, got)
		}
	}
}

package temporal

import (
	"fmt"
	"time"
)

var kindLabels = map[Kind]string{
	KindDaily:    "毎日",
	KindWeekly:   "毎週",
	KindMonthly:  "毎月",
	KindBiweekly: "隔週",
	KindWeekdays: "平日",
}

// FormatRepeatLabel renders a rule as a user-facing Japanese label:
// 毎月25日, 毎月第3火曜日, 毎週金曜日, 隔週月曜日, 毎日, 平日.
func FormatRepeatLabel(rule Rule) string {
	base, ok := kindLabels[rule.Kind]
	if !ok {
		return string(rule.Kind)
	}
	if rule.Value == "" {
		return base
	}
	if rule.Kind == KindMonthly {
		if isDigits(rule.Value) {
			return "毎月" + rule.Value + "日"
		}
		return "毎月" + rule.Value
	}
	return base + rule.Value
}

// FormatRemaining renders the time left until target as a short Japanese
// label (あと2日3時間, あと45分, まもなく, 期限切れ).
func FormatRemaining(target, now time.Time) string {
	total := int(target.Sub(now).Seconds())
	if total < 0 {
		return "期限切れ"
	}

	days := total / 86400
	hours := (total % 86400) / 3600
	minutes := (total % 3600) / 60

	switch {
	case days > 0 && hours > 0:
		return fmt.Sprintf("あと%d日%d時間", days, hours)
	case days > 0:
		return fmt.Sprintf("あと%d日", days)
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("あと%d時間%d分", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("あと%d時間", hours)
	case minutes > 0:
		return fmt.Sprintf("あと%d分", minutes)
	}
	return "まもなく"
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

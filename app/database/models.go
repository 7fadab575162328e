package database

import (
	"time"

	"oboete/app/temporal"
)

// Reminder represents a reminder record in the database
type Reminder struct {
	ID          int64
	UserID      string
	GuildID     *string // Nil for direct-message reminders
	ChannelID   string
	Content     string
	RemindAt    time.Time
	RepeatType  string  // none, daily, weekly, monthly, biweekly, weekdays
	RepeatValue *string // Weekday or day-of-month qualifier for weekly/biweekly/monthly rules
	IsActive    bool
	CreatedAt   time.Time
}

// IsRecurring reports whether the reminder re-schedules itself after firing.
func (r *Reminder) IsRecurring() bool {
	return r.RepeatType != "" && r.RepeatType != string(temporal.KindNone)
}

// Rule reconstructs the recurrence rule stored on the reminder, or nil for
// a one-shot reminder.
func (r *Reminder) Rule() *temporal.Rule {
	if !r.IsRecurring() {
		return nil
	}
	rule := temporal.Rule{Kind: temporal.Kind(r.RepeatType)}
	if r.RepeatValue != nil {
		rule.Value = *r.RepeatValue
	}
	return &rule
}

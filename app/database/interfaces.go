package database

import (
	"time"
)

type ReminderRepository interface {
	Create(reminder *Reminder) (int64, error)
	Get(id int64) (*Reminder, error)
	GetDue(now time.Time, limit int) ([]Reminder, error)
	GetUserReminders(userID string, limit int) ([]Reminder, error)
	GetReminderCount() (int, error)
	GetActiveReminderCount() (int, error)

	UpdateReminderTime(id int64, remindAt time.Time) error
	UpdateContent(id int64, userID string, content string) (bool, error)
	Snooze(id int64, userID string, until time.Time) (bool, error)
	Deactivate(id int64, userID string) (bool, error)
	DeactivateByID(id int64) error
	Delete(id int64, userID string) (bool, error)
}

type StateRepository interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

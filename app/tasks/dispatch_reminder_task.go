package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"oboete/app/database"
	"oboete/app/notify"
	"oboete/app/temporal"
)

type DispatchReminderTask struct {
	Task
	reminder     *database.Reminder
	reminderRepo database.ReminderRepository
	notifier     notify.Notifier

	// sent survives retries so a failure while re-scheduling never
	// delivers the same reminder twice.
	sent bool
}

func NewDispatchReminderTask(reminder *database.Reminder, reminderRepo database.ReminderRepository,
	notifier notify.Notifier) *DispatchReminderTask {
	return &DispatchReminderTask{
		Task:         NewTask(TaskTypeDispatchReminder, reminder.ID),
		reminder:     reminder,
		reminderRepo: reminderRepo,
		notifier:     notifier,
	}
}

func (t *DispatchReminderTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.sent {
		if err := t.notifier.Notify(ctx, t.reminder); err != nil {
			return fmt.Errorf("failed to deliver reminder %d: %w", t.reminder.ID, err)
		}
		t.sent = true
	}

	if err := t.settle(); err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", "DispatchReminder",
		"reminder_id", t.reminder.ID,
		"duration", t.GetDuration(),
		"recurring", t.reminder.IsRecurring())

	return nil
}

// settle decides what happens to the reminder after delivery: one-shot
// reminders deactivate, recurring ones move to their next occurrence. A
// rule that cannot advance (exhausted or malformed) deactivates too, so a
// broken row never fires again.
func (t *DispatchReminderTask) settle() error {
	rule := t.reminder.Rule()
	if rule == nil {
		if err := t.reminderRepo.DeactivateByID(t.reminder.ID); err != nil {
			return fmt.Errorf("failed to deactivate reminder %d: %w", t.reminder.ID, err)
		}
		return nil
	}

	next, err := advancePast(t.reminder.RemindAt, *rule, time.Now())
	if err != nil {
		if errors.Is(err, temporal.ErrExhausted) {
			slog.Info("Recurrence exhausted, deactivating reminder", "reminder_id", t.reminder.ID)
		} else {
			slog.Warn("Cannot advance recurrence, deactivating reminder",
				"reminder_id", t.reminder.ID, "error", err)
		}
		if derr := t.reminderRepo.DeactivateByID(t.reminder.ID); derr != nil {
			return fmt.Errorf("failed to deactivate reminder %d: %w", t.reminder.ID, derr)
		}
		return nil
	}

	if err := t.reminderRepo.UpdateReminderTime(t.reminder.ID, next); err != nil {
		return fmt.Errorf("failed to re-schedule reminder %d: %w", t.reminder.ID, err)
	}

	return nil
}

// advancePast steps the rule forward until the occurrence is strictly in
// the future, so a reminder that fired late (after downtime, say) does
// not immediately fire again for every missed occurrence.
func advancePast(occurrence time.Time, rule temporal.Rule, now time.Time) (time.Time, error) {
	next := occurrence
	for i := 0; i < 1000; i++ {
		var err error
		next, err = temporal.Advance(next, rule)
		if err != nil {
			return time.Time{}, err
		}
		if next.After(now) {
			return next, nil
		}
	}
	return time.Time{}, fmt.Errorf("recurrence did not reach the future from %v", occurrence)
}

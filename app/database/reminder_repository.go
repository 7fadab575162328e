package database

import (
	"database/sql"
	"fmt"
	"time"
)

// Timestamps are stored as RFC 3339 strings in UTC, so string comparison
// in SQL matches chronological order regardless of the display timezone.
const timeLayout = time.RFC3339

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(time.Local), nil
}

// SQLReminderRepository handles database operations for reminders
type SQLReminderRepository struct {
	db *DB
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(db *DB) *SQLReminderRepository {
	return &SQLReminderRepository{db: db}
}

// Create inserts a new reminder and returns its assigned ID
func (r *SQLReminderRepository) Create(reminder *Reminder) (int64, error) {
	repeatType := reminder.RepeatType
	if repeatType == "" {
		repeatType = "none"
	}

	result, err := r.db.Exec(`
		INSERT INTO reminders (user_id, guild_id, channel_id, content, remind_at, repeat_type, repeat_value)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, reminder.UserID, reminder.GuildID, reminder.ChannelID, reminder.Content,
		encodeTime(reminder.RemindAt), repeatType, reminder.RepeatValue)

	if err != nil {
		return 0, fmt.Errorf("failed to create reminder: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get reminder ID: %w", err)
	}

	reminder.ID = id
	return id, nil
}

const reminderColumns = `id, user_id, guild_id, channel_id, content, remind_at,
       repeat_type, COALESCE(repeat_value, ''), is_active, created_at`

func scanReminder(row interface{ Scan(...any) error }) (*Reminder, error) {
	var reminder Reminder
	var guildID sql.NullString
	var remindAt, repeatValue, createdAt string

	err := row.Scan(
		&reminder.ID, &reminder.UserID, &guildID, &reminder.ChannelID,
		&reminder.Content, &remindAt, &reminder.RepeatType, &repeatValue,
		&reminder.IsActive, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if guildID.Valid {
		reminder.GuildID = &guildID.String
	}
	if repeatValue != "" {
		reminder.RepeatValue = &repeatValue
	}
	if reminder.RemindAt, err = decodeTime(remindAt); err != nil {
		return nil, fmt.Errorf("invalid remind_at on reminder %d: %w", reminder.ID, err)
	}
	if reminder.CreatedAt, err = decodeTime(createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at on reminder %d: %w", reminder.ID, err)
	}

	return &reminder, nil
}

// Get retrieves a reminder by its ID
func (r *SQLReminderRepository) Get(id int64) (*Reminder, error) {
	reminder, err := scanReminder(r.db.QueryRow(`
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE id = ?
	`, id))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}

	return reminder, nil
}

// GetDue returns active reminders whose time has arrived, oldest first
func (r *SQLReminderRepository) GetDue(now time.Time, limit int) ([]Reminder, error) {
	rows, err := r.db.Query(`
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE is_active = 1
		  AND remind_at <= ?
		ORDER BY remind_at
		LIMIT ?
	`, encodeTime(now), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get due reminders: %w", err)
	}
	defer rows.Close()

	return collectReminders(rows)
}

// GetUserReminders returns a user's active reminders, soonest first
func (r *SQLReminderRepository) GetUserReminders(userID string, limit int) ([]Reminder, error) {
	rows, err := r.db.Query(`
		SELECT `+reminderColumns+`
		FROM reminders
		WHERE user_id = ?
		  AND is_active = 1
		ORDER BY remind_at
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get user reminders: %w", err)
	}
	defer rows.Close()

	return collectReminders(rows)
}

func collectReminders(rows *sql.Rows) ([]Reminder, error) {
	var reminders []Reminder
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder row: %w", err)
		}
		reminders = append(reminders, *reminder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminder rows: %w", err)
	}

	return reminders, nil
}

// GetReminderCount returns the total number of reminders
func (r *SQLReminderRepository) GetReminderCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM reminders").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get reminder count: %w", err)
	}
	return count, nil
}

// GetActiveReminderCount returns the count of active reminders
func (r *SQLReminderRepository) GetActiveReminderCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM reminders WHERE is_active = 1").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get active reminder count: %w", err)
	}
	return count, nil
}

// UpdateReminderTime moves a reminder to its next occurrence
func (r *SQLReminderRepository) UpdateReminderTime(id int64, remindAt time.Time) error {
	_, err := r.db.Exec(`
		UPDATE reminders
		SET remind_at = ?
		WHERE id = ?
	`, encodeTime(remindAt), id)

	if err != nil {
		return fmt.Errorf("failed to update reminder time: %w", err)
	}

	return nil
}

// UpdateContent rewrites the content of a user's active reminder. Returns
// false when no matching reminder exists.
func (r *SQLReminderRepository) UpdateContent(id int64, userID string, content string) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE reminders
		SET content = ?
		WHERE id = ? AND user_id = ? AND is_active = 1
	`, content, id, userID)

	if err != nil {
		return false, fmt.Errorf("failed to update reminder content: %w", err)
	}

	return rowsAffected(result)
}

// Snooze pushes a user's active reminder to a later time. Returns false
// when no matching reminder exists.
func (r *SQLReminderRepository) Snooze(id int64, userID string, until time.Time) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE reminders
		SET remind_at = ?
		WHERE id = ? AND user_id = ? AND is_active = 1
	`, encodeTime(until), id, userID)

	if err != nil {
		return false, fmt.Errorf("failed to snooze reminder: %w", err)
	}

	return rowsAffected(result)
}

// DeactivateByID marks a reminder inactive regardless of owner. Used by
// the dispatcher after a one-shot reminder fires.
func (r *SQLReminderRepository) DeactivateByID(id int64) error {
	_, err := r.db.Exec(`
		UPDATE reminders
		SET is_active = 0
		WHERE id = ?
	`, id)

	if err != nil {
		return fmt.Errorf("failed to deactivate reminder: %w", err)
	}

	return nil
}

// Deactivate marks a user's reminder as done. Returns false when no
// matching active reminder exists.
func (r *SQLReminderRepository) Deactivate(id int64, userID string) (bool, error) {
	result, err := r.db.Exec(`
		UPDATE reminders
		SET is_active = 0
		WHERE id = ? AND user_id = ? AND is_active = 1
	`, id, userID)

	if err != nil {
		return false, fmt.Errorf("failed to deactivate reminder: %w", err)
	}

	return rowsAffected(result)
}

// Delete removes a user's reminder entirely. Returns false when no
// matching reminder exists.
func (r *SQLReminderRepository) Delete(id int64, userID string) (bool, error) {
	result, err := r.db.Exec(`
		DELETE FROM reminders
		WHERE id = ? AND user_id = ?
	`, id, userID)

	if err != nil {
		return false, fmt.Errorf("failed to delete reminder: %w", err)
	}

	return rowsAffected(result)
}

func rowsAffected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n > 0, nil
}

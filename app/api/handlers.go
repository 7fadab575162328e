package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"oboete/app/database"
	"oboete/app/fallback"
	"oboete/app/notify"
	"oboete/app/temporal"
)

const (
	userRemindersLimit   = 25
	defaultSnoozeMinutes = 10
	resolvedSourceRules  = "rules"
	resolvedSourceLLM    = "fallback"
)

func NewHandler(reminderRepo database.ReminderRepository, routes *notify.RouteCache,
	fallbackResolver fallback.Resolver, version string) *Handler {
	return &Handler{
		reminderRepo: reminderRepo,
		routes:       routes,
		fallback:     fallbackResolver,
		version:      version,
	}
}

func (h *Handler) CreateReminder(c *gin.Context) {
	var req CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	now := time.Now()
	content, at, rule, source, err := h.resolvePhrase(c, req.Phrase, now)
	if err != nil {
		if errors.Is(err, temporal.ErrNoMatch) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "No temporal expression recognized in phrase",
			})
			return
		}
		slog.Error("Failed to resolve phrase", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to resolve phrase"})
		return
	}

	if !at.After(now) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Resolved time is not in the future",
		})
		return
	}

	reminder := &database.Reminder{
		UserID:    req.UserID,
		GuildID:   req.GuildID,
		ChannelID: req.ChannelID,
		Content:   content,
		RemindAt:  at,
	}
	if rule != nil {
		reminder.RepeatType = string(rule.Kind)
		if rule.Value != "" {
			value := rule.Value
			reminder.RepeatValue = &value
		}
	} else {
		reminder.RepeatType = string(temporal.KindNone)
	}

	if _, err := h.reminderRepo.Create(reminder); err != nil {
		slog.Error("Database error", "operation", "create_reminder", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	reminder.IsActive = true
	reminder.CreatedAt = now

	body := reminderResponse(reminder, now)
	body["resolved_by"] = source
	c.JSON(http.StatusCreated, body)
}

// resolvePhrase runs the rule-based resolver and, only when it finds no
// temporal expression at all, consults the fallback delegate. Content
// always comes from rule-based extraction on the original phrase.
func (h *Handler) resolvePhrase(c *gin.Context, phrase string, now time.Time) (string, time.Time, *temporal.Rule, string, error) {
	result, err := temporal.Resolve(phrase, now)
	if err == nil {
		return result.Content, result.At, result.Rule, resolvedSourceRules, nil
	}
	if !errors.Is(err, temporal.ErrNoMatch) || h.fallback == nil {
		return "", time.Time{}, nil, "", err
	}

	at, rule, ferr := h.fallback.Resolve(c.Request.Context(), phrase, now)
	if ferr != nil {
		slog.Warn("Fallback resolution failed", "error", ferr)
		return "", time.Time{}, nil, "", err
	}

	return temporal.ExtractContent(phrase), at, rule, resolvedSourceLLM, nil
}

func (h *Handler) ListReminders(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing user_id parameter"})
		return
	}

	reminders, err := h.reminderRepo.GetUserReminders(userID, userRemindersLimit)
	if err != nil {
		slog.Error("Database error", "operation", "list_reminders", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	now := time.Now()
	items := make([]gin.H, 0, len(reminders))
	for i := range reminders {
		items = append(items, reminderResponse(&reminders[i], now))
	}

	c.JSON(http.StatusOK, gin.H{
		"reminders": items,
		"total":     len(items),
	})
}

func (h *Handler) GetReminder(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}

	reminder, err := h.reminderRepo.Get(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_reminder", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if reminder == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}

	c.JSON(http.StatusOK, reminderResponse(reminder, time.Now()))
}

func (h *Handler) DeleteReminder(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}

	var req OwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	deleted, err := h.reminderRepo.Delete(id, req.UserID)
	if err != nil {
		slog.Error("Database error", "operation", "delete_reminder", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) CompleteReminder(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}

	var req OwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	done, err := h.reminderRepo.Deactivate(id, req.UserID)
	if err != nil {
		slog.Error("Database error", "operation", "complete_reminder", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !done {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) UpdateReminder(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}

	var req UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	updated, err := h.reminderRepo.UpdateContent(id, req.UserID, req.Content)
	if err != nil {
		slog.Error("Database error", "operation", "update_reminder", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) SnoozeReminder(c *gin.Context) {
	id, ok := reminderID(c)
	if !ok {
		return
	}

	var req SnoozeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if req.Minutes <= 0 {
		req.Minutes = defaultSnoozeMinutes
	}

	until := time.Now().Add(time.Duration(req.Minutes) * time.Minute)
	snoozed, err := h.reminderRepo.Snooze(id, req.UserID, until)
	if err != nil {
		slog.Error("Database error", "operation", "snooze_reminder", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !snoozed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"remind_at": until.Format(time.RFC3339),
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   h.version,
	}

	if count, err := h.reminderRepo.GetActiveReminderCount(); err == nil {
		health["active_reminders"] = count
	}
	health["configured_routes"] = h.routes.GetRouteCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := gin.H{}

	if total, err := h.reminderRepo.GetReminderCount(); err == nil {
		stats["total_reminders"] = total
	}
	if active, err := h.reminderRepo.GetActiveReminderCount(); err == nil {
		stats["active_reminders"] = active
	}
	stats["configured_routes"] = h.routes.GetRouteCount()

	c.JSON(http.StatusOK, stats)
}

func reminderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reminder ID"})
		return 0, false
	}
	return id, true
}

func reminderResponse(reminder *database.Reminder, now time.Time) gin.H {
	body := gin.H{
		"id":         reminder.ID,
		"user_id":    reminder.UserID,
		"channel_id": reminder.ChannelID,
		"content":    reminder.Content,
		"remind_at":  reminder.RemindAt.Format(time.RFC3339),
		"remaining":  temporal.FormatRemaining(reminder.RemindAt, now),
		"is_active":  reminder.IsActive,
	}
	if reminder.GuildID != nil {
		body["guild_id"] = *reminder.GuildID
	}
	if rule := reminder.Rule(); rule != nil {
		body["repeat"] = temporal.FormatRepeatLabel(*rule)
	}
	return body
}

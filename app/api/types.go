package api

import (
	"oboete/app/database"
	"oboete/app/fallback"
	"oboete/app/notify"
)

type Handler struct {
	reminderRepo database.ReminderRepository
	routes       *notify.RouteCache
	fallback     fallback.Resolver
	version      string
}

type CreateReminderRequest struct {
	UserID    string  `json:"user_id" binding:"required"`
	ChannelID string  `json:"channel_id" binding:"required"`
	GuildID   *string `json:"guild_id"`
	Phrase    string  `json:"phrase" binding:"required"`
}

type UpdateContentRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type SnoozeRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Minutes int    `json:"minutes"`
}

type OwnerRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

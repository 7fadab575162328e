package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"oboete/app/database"
	"oboete/app/temporal"
)

// Notifier delivers a fired reminder to its channel.
type Notifier interface {
	Notify(ctx context.Context, reminder *database.Reminder) error
}

// WebhookNotifier posts reminders as chat webhook messages with an embed
// card: mention in the message body, content and schedule in the embed.
type WebhookNotifier struct {
	routes    *RouteCache
	client    *http.Client
	userAgent string
}

func NewWebhookNotifier(routes *RouteCache, client *http.Client, userAgent string) *WebhookNotifier {
	return &WebhookNotifier{
		routes:    routes,
		client:    client,
		userAgent: userAgent,
	}
}

type webhookPayload struct {
	Content string         `json:"content"`
	Embeds  []webhookEmbed `json:"embeds"`
}

type webhookEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Fields      []webhookField `json:"fields,omitempty"`
	Timestamp   string         `json:"timestamp"`
}

type webhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, reminder *database.Reminder) error {
	url, err := n.routes.GetRoute(reminder.ChannelID)
	if err != nil {
		return err
	}

	payload := webhookPayload{
		Content: fmt.Sprintf("<@%s>", reminder.UserID),
		Embeds: []webhookEmbed{
			{
				Title:       "リマインダー",
				Description: reminder.Content,
				Timestamp:   reminder.RemindAt.UTC().Format(time.RFC3339),
			},
		},
	}
	if rule := reminder.Rule(); rule != nil {
		payload.Embeds[0].Fields = append(payload.Embeds[0].Fields, webhookField{
			Name:   "繰り返し",
			Value:  temporal.FormatRepeatLabel(*rule),
			Inline: true,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver reminder %d: %w", reminder.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d for reminder %d", resp.StatusCode, reminder.ID)
	}

	return nil
}

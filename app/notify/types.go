package notify

// Routes maps chat channels to their delivery webhooks. DefaultURL
// receives reminders for channels without an explicit entry.
type Routes struct {
	DefaultURL string            `yaml:"default_url"`
	Channels   map[string]string `yaml:"channels"`
}

package fallback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"oboete/app/temporal"
)

// Client asks an OpenAI-compatible chat completions endpoint to interpret
// phrases the rule-based resolver could not.
type Client struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

func NewClient(endpoint, apiKey, model string, client *http.Client) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		model:    model,
		client:   client,
	}
}

const systemPromptFormat = `あなたはリマインダーアシスタントです。ユーザーの入力から、リマインダーの日時を解析してください。

現在の日時: %s（%s曜日）

## 日時解析ルール

### 曖昧な表現（以下のデフォルト時刻を使用）
- 「朝」→ 08:00
- 「昼」「昼頃」→ 12:00
- 「午後」→ 14:00
- 「夕方」→ 17:00
- 「夜」→ 20:00
- 「仕事終わり」「退勤後」→ 18:00
- その他の時刻指定がない場合 → 09:00

### 繰り返し
- 「毎日9時」→ repeat_type="daily"
- 「毎週金曜18時」→ repeat_type="weekly", repeat_value="friday"
- 「毎月25日」→ repeat_type="monthly", repeat_value="25"
- 「毎月第3火曜日」→ repeat_type="monthly", repeat_value="third_tuesday"
- 「平日毎朝」→ repeat_type="weekdays"
- 「隔週月曜」→ repeat_type="biweekly", repeat_value="monday"

## 出力ルール
JSONオブジェクトのみを出力してください:
{"datetime": "YYYY-MM-DDTHH:MM:SS", "repeat_type": "none|daily|weekly|monthly|biweekly|weekdays", "repeat_value": "..."}
- datetimeは必ずISO 8601形式
- 1メッセージに複数の予定が含まれる場合、最初の1つだけを処理
- 日時がまったく読み取れない場合は {"datetime": ""} を返す`

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *responseFmt  `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFmt struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type parsedReminder struct {
	Datetime    string `json:"datetime"`
	RepeatType  string `json:"repeat_type"`
	RepeatValue string `json:"repeat_value"`
}

var jpWeekdays = []string{"日", "月", "火", "水", "木", "金", "土"}

// Resolve sends the phrase to the model and interprets the structured
// answer. An unparseable or missing datetime falls back to the next full
// hour, matching the behavior users expect from a best-effort assistant.
func (c *Client) Resolve(ctx context.Context, phrase string, now time.Time) (time.Time, *temporal.Rule, error) {
	parsed, err := c.complete(ctx, phrase, now)
	if err != nil {
		return time.Time{}, nil, err
	}

	at := parseDatetime(parsed.Datetime, now)
	rule := normalizeRule(parsed.RepeatType, parsed.RepeatValue)
	// A recurring rule needs a first occurrence in the future.
	for i := 0; rule != nil && !at.After(now) && i < 62; i++ {
		next, err := temporal.Advance(at, *rule)
		if err != nil {
			break
		}
		at = next
	}

	return at, rule, nil
}

func (c *Client) complete(ctx context.Context, phrase string, now time.Time) (*parsedReminder, error) {
	system := fmt.Sprintf(systemPromptFormat,
		now.Format("2006年01月02日 15:04"), jpWeekdays[now.Weekday()])

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: phrase},
		},
		Temperature:    0,
		ResponseFormat: &responseFmt{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("completion endpoint returned status %d", resp.StatusCode)
	}

	var completion chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, fmt.Errorf("failed to decode completion response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("completion response has no choices")
	}

	var parsed parsedReminder
	content := completion.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(extractJSON(content)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse completion content %q: %w", content, err)
	}

	slog.Debug("Fallback resolution", "datetime", parsed.Datetime,
		"repeat_type", parsed.RepeatType, "repeat_value", parsed.RepeatValue)

	return &parsed, nil
}

// extractJSON tolerates models that wrap their answer in a code fence.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}

var datetimeLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseDatetime(s string, now time.Time) time.Time {
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t
		}
	}
	return now.Add(time.Hour).Truncate(time.Hour)
}

var englishWeekdays = map[string]string{
	"monday":    "月曜日",
	"tuesday":   "火曜日",
	"wednesday": "水曜日",
	"thursday":  "木曜日",
	"friday":    "金曜日",
	"saturday":  "土曜日",
	"sunday":    "日曜日",
}

var englishOrdinals = map[string]string{
	"first":  "1",
	"second": "2",
	"third":  "3",
	"fourth": "4",
	"fifth":  "5",
}

var reDayValue = regexp.MustCompile(`^\d{1,2}$`)

// normalizeRule converts the model's repeat vocabulary into the closed
// rule vocabulary the recurrence engine understands. Anything it cannot
// map degrades to a one-shot reminder rather than storing a rule the
// engine would choke on later.
func normalizeRule(repeatType, repeatValue string) *temporal.Rule {
	repeatValue = strings.ToLower(strings.TrimSpace(repeatValue))

	switch temporal.Kind(repeatType) {
	case temporal.KindDaily:
		return &temporal.Rule{Kind: temporal.KindDaily}
	case temporal.KindWeekdays:
		return &temporal.Rule{Kind: temporal.KindWeekdays}
	case temporal.KindWeekly, temporal.KindBiweekly:
		if wd, ok := englishWeekdays[repeatValue]; ok {
			return &temporal.Rule{Kind: temporal.Kind(repeatType), Value: wd}
		}
	case temporal.KindMonthly:
		if reDayValue.MatchString(repeatValue) {
			return &temporal.Rule{Kind: temporal.KindMonthly, Value: repeatValue}
		}
		if ordinal, wd, ok := strings.Cut(repeatValue, "_"); ok {
			n, haveN := englishOrdinals[ordinal]
			label, haveWd := englishWeekdays[wd]
			if haveN && haveWd {
				return &temporal.Rule{Kind: temporal.KindMonthly, Value: "第" + n + label}
			}
		}
	}

	if repeatType != "" && repeatType != "none" {
		slog.Warn("Fallback returned unmappable recurrence, storing one-shot",
			"repeat_type", repeatType, "repeat_value", repeatValue)
	}
	return nil
}

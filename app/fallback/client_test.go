package fallback

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"oboete/app/temporal"
)

var jst = time.FixedZone("JST", 9*60*60)

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Unexpected authorization header: %s", auth)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("Expected system+user messages, got %+v", req.Messages)
		}

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func testClient(server *httptest.Server) *Client {
	return NewClient(server.URL, "test-key", "test-model", server.Client())
}

func TestClient_Resolve(t *testing.T) {
	server := completionServer(t, `{"datetime": "2024-07-12T18:00:00", "repeat_type": "none"}`)
	defer server.Close()

	now := time.Date(2024, 7, 1, 9, 0, 0, 0, jst)
	at, rule, err := testClient(server).Resolve(context.Background(), "仕事終わりに買い物", now)
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}

	want := time.Date(2024, 7, 12, 18, 0, 0, 0, jst)
	if !at.Equal(want) {
		t.Errorf("Expected %v, got %v", want, at)
	}
	if rule != nil {
		t.Errorf("Expected no rule, got %+v", rule)
	}
}

func TestClient_ResolveRecurring(t *testing.T) {
	server := completionServer(t, `{"datetime": "2024-07-05T18:00:00", "repeat_type": "weekly", "repeat_value": "friday"}`)
	defer server.Close()

	now := time.Date(2024, 7, 1, 9, 0, 0, 0, jst)
	at, rule, err := testClient(server).Resolve(context.Background(), "金曜のおわりにゴミ出し", now)
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}

	if rule == nil || rule.Kind != temporal.KindWeekly || rule.Value != "金曜日" {
		t.Errorf("Expected weekly 金曜日 rule, got %+v", rule)
	}
	want := time.Date(2024, 7, 5, 18, 0, 0, 0, jst)
	if !at.Equal(want) {
		t.Errorf("Expected %v, got %v", want, at)
	}
}

func TestClient_ResolvePastRecurringAdvances(t *testing.T) {
	// The model anchored the rule on a Friday already behind us; the
	// first stored occurrence must be in the future.
	server := completionServer(t, `{"datetime": "2024-06-28T18:00:00", "repeat_type": "weekly", "repeat_value": "friday"}`)
	defer server.Close()

	now := time.Date(2024, 7, 1, 9, 0, 0, 0, jst)
	at, _, err := testClient(server).Resolve(context.Background(), "金曜にゴミ出し", now)
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}

	want := time.Date(2024, 7, 5, 18, 0, 0, 0, jst)
	if !at.Equal(want) {
		t.Errorf("Expected advance to %v, got %v", want, at)
	}
}

func TestClient_ResolveUnparseableDatetime(t *testing.T) {
	server := completionServer(t, `{"datetime": "", "repeat_type": "none"}`)
	defer server.Close()

	now := time.Date(2024, 7, 1, 9, 20, 0, 0, jst)
	at, _, err := testClient(server).Resolve(context.Background(), "そのうち電話", now)
	if err != nil {
		t.Fatalf("Failed to resolve: %v", err)
	}

	want := time.Date(2024, 7, 1, 10, 0, 0, 0, jst)
	if !at.Equal(want) {
		t.Errorf("Expected next full hour %v, got %v", want, at)
	}
}

func TestClient_ResolveCodeFencedAnswer(t *testing.T) {
	content := "```json\n{\"datetime\": \"2024-07-02T09:00:00\"}\n```"
	server := completionServer(t, content)
	defer server.Close()

	now := time.Date(2024, 7, 1, 9, 0, 0, 0, jst)
	at, _, err := testClient(server).Resolve(context.Background(), "明日", now)
	if err != nil {
		t.Fatalf("Failed to resolve code-fenced answer: %v", err)
	}

	want := time.Date(2024, 7, 2, 9, 0, 0, 0, jst)
	if !at.Equal(want) {
		t.Errorf("Expected %v, got %v", want, at)
	}
}

func TestClient_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	_, _, err := testClient(server).Resolve(context.Background(), "明日", time.Now())
	if err == nil {
		t.Error("Expected error for 502 response")
	}
}

func TestNormalizeRule(t *testing.T) {
	tests := []struct {
		repeatType  string
		repeatValue string
		want        *temporal.Rule
	}{
		{"none", "", nil},
		{"", "", nil},
		{"daily", "09:00", &temporal.Rule{Kind: temporal.KindDaily}},
		{"weekdays", "08:00", &temporal.Rule{Kind: temporal.KindWeekdays}},
		{"weekly", "friday", &temporal.Rule{Kind: temporal.KindWeekly, Value: "金曜日"}},
		{"weekly", "Friday", &temporal.Rule{Kind: temporal.KindWeekly, Value: "金曜日"}},
		{"biweekly", "monday", &temporal.Rule{Kind: temporal.KindBiweekly, Value: "月曜日"}},
		{"monthly", "25", &temporal.Rule{Kind: temporal.KindMonthly, Value: "25"}},
		{"monthly", "third_tuesday", &temporal.Rule{Kind: temporal.KindMonthly, Value: "第3火曜日"}},
		{"weekly", "someday", nil},
		{"monthly", "whenever", nil},
		{"yearly", "1", nil},
	}

	for _, tt := range tests {
		got := normalizeRule(tt.repeatType, tt.repeatValue)
		name := fmt.Sprintf("%s/%s", tt.repeatType, tt.repeatValue)
		if (got == nil) != (tt.want == nil) {
			t.Errorf("%s: expected %+v, got %+v", name, tt.want, got)
			continue
		}
		if got != nil && *got != *tt.want {
			t.Errorf("%s: expected %+v, got %+v", name, tt.want, got)
		}
	}
}

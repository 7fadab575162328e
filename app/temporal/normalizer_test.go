package temporal

import "testing"

func TestNormalizeDigits(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"１８時", "18時"},
		{"毎月２５日", "毎月25日"},
		{"３０分後", "30分後"},
		{"18時", "18時"},
		{"歯医者", "歯医者"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeDigits(tt.input); got != tt.want {
			t.Errorf("%s: expected '%s', got '%s'", tt.input, tt.want, got)
		}
	}
}

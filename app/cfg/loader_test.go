package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	// Test default version
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}

	// Test that version is at least "dev" or "unknown"
	version := GetVersion()
	if version != "dev" && version != "unknown" {
		// This is fine, version could be set at build time
		t.Logf("Version: %s", version)
	}
}

func TestConfigFields(t *testing.T) {
	// Create a config instance to test field access
	cfg := &Cfg{
		DBPath:            "./reminders.db",
		RoutesFile:        "./routes.yml",
		Port:              "8080",
		WorkerCount:       3,
		SchedulerInterval: 30,
		APIAccessKey:      "test-key",
		LLMEndpoint:       "https://api.openai.com/v1",
		LLMAPIKey:         "llm-key",
		LLMModel:          "gpt-4o-mini",
		UserAgent:         "Test Agent",
		Timezone:          "Asia/Tokyo",
		Debug:             true,
		Version:           "test-version",
	}

	// Test direct field access
	if cfg.DBPath != "./reminders.db" {
		t.Errorf("Expected DB path './reminders.db', got '%s'", cfg.DBPath)
	}
	if cfg.RoutesFile != "./routes.yml" {
		t.Errorf("Expected routes file './routes.yml', got '%s'", cfg.RoutesFile)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.WorkerCount != 3 {
		t.Errorf("Expected worker count 3, got %d", cfg.WorkerCount)
	}
	if cfg.SchedulerInterval != 30 {
		t.Errorf("Expected scheduler interval 30, got %d", cfg.SchedulerInterval)
	}
	if cfg.APIAccessKey != "test-key" {
		t.Errorf("Expected API key 'test-key', got '%s'", cfg.APIAccessKey)
	}
	if cfg.LLMEndpoint != "https://api.openai.com/v1" {
		t.Errorf("Expected LLM endpoint 'https://api.openai.com/v1', got '%s'", cfg.LLMEndpoint)
	}
	if cfg.LLMAPIKey != "llm-key" {
		t.Errorf("Expected LLM API key 'llm-key', got '%s'", cfg.LLMAPIKey)
	}
	if cfg.LLMModel != "gpt-4o-mini" {
		t.Errorf("Expected LLM model 'gpt-4o-mini', got '%s'", cfg.LLMModel)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if cfg.Timezone != "Asia/Tokyo" {
		t.Errorf("Expected timezone 'Asia/Tokyo', got '%s'", cfg.Timezone)
	}
	if !cfg.Debug {
		t.Error("Expected debug to be enabled")
	}
	if cfg.Version != "test-version" {
		t.Errorf("Expected version 'test-version', got '%s'", cfg.Version)
	}
}

package notify

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRoutesFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "routes.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write routes file: %v", err)
	}
	return path
}

func TestRouteCache_Load(t *testing.T) {
	path := writeRoutesFile(t, `
default_url: https://hooks.example.com/default
channels:
  channel-1: https://hooks.example.com/one
  channel-2: https://hooks.example.com/two
`)

	cache := NewRouteCache(path)
	if err := cache.Run(); err != nil {
		t.Fatalf("Failed to load routes: %v", err)
	}

	if count := cache.GetRouteCount(); count != 2 {
		t.Errorf("Expected 2 channel routes, got %d", count)
	}

	url, err := cache.GetRoute("channel-1")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if url != "https://hooks.example.com/one" {
		t.Errorf("Expected channel-1 route, got '%s'", url)
	}
}

func TestRouteCache_DefaultFallback(t *testing.T) {
	path := writeRoutesFile(t, `
default_url: https://hooks.example.com/default
channels:
  channel-1: https://hooks.example.com/one
`)

	cache := NewRouteCache(path)
	if err := cache.Run(); err != nil {
		t.Fatalf("Failed to load routes: %v", err)
	}

	url, err := cache.GetRoute("unknown-channel")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if url != "https://hooks.example.com/default" {
		t.Errorf("Expected default route, got '%s'", url)
	}
}

func TestRouteCache_NoRoute(t *testing.T) {
	path := writeRoutesFile(t, `
channels:
  channel-1: https://hooks.example.com/one
`)

	cache := NewRouteCache(path)
	if err := cache.Run(); err != nil {
		t.Fatalf("Failed to load routes: %v", err)
	}

	if _, err := cache.GetRoute("unknown-channel"); err == nil {
		t.Error("Expected error for channel without route or default")
	}
}

func TestRouteCache_MissingFileIsNotFatal(t *testing.T) {
	cache := NewRouteCache(filepath.Join(t.TempDir(), "missing.yml"))
	if err := cache.Run(); err != nil {
		t.Errorf("Expected missing routes file to be tolerated, got: %v", err)
	}

	if _, err := cache.GetRoute("channel-1"); err == nil {
		t.Error("Expected no routes after loading a missing file")
	}
}

func TestRouteCache_InvalidURL(t *testing.T) {
	path := writeRoutesFile(t, `
channels:
  channel-1: not-a-url
`)

	cache := NewRouteCache(path)
	if err := cache.Run(); err == nil {
		t.Error("Expected validation error for non-URL route")
	}
}

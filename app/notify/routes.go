package notify

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

type RouteCache struct {
	routesFile string
	routes     *Routes
	mu         sync.RWMutex
}

func NewRouteCache(routesFile string) *RouteCache {
	return &RouteCache{
		routesFile: routesFile,
		routes:     &Routes{},
	}
}

// Run loads the route file. A missing file is not an error: the service
// can run without delivery configured, reminders just accumulate.
func (rc *RouteCache) Run() error {
	if _, err := os.Stat(rc.routesFile); os.IsNotExist(err) {
		slog.Warn("Route file not found, reminder delivery disabled", "file", rc.routesFile)
		return nil
	}

	routes, err := rc.parseRoutes(rc.routesFile)
	if err != nil {
		return fmt.Errorf("error loading %s: %w", rc.routesFile, err)
	}

	rc.mu.Lock()
	rc.routes = routes
	rc.mu.Unlock()

	slog.Debug("Routes loaded", "channels", len(routes.Channels), "has_default", routes.DefaultURL != "")

	return nil
}

// GetRoute returns the webhook URL for a channel, falling back to the
// default route when the channel has no entry.
func (rc *RouteCache) GetRoute(channelID string) (string, error) {
	rc.mu.RLock()
	defer rc.mu.RUnlock()

	if url, ok := rc.routes.Channels[channelID]; ok {
		return url, nil
	}
	if rc.routes.DefaultURL != "" {
		return rc.routes.DefaultURL, nil
	}
	return "", fmt.Errorf("no route configured for channel '%s'", channelID)
}

func (rc *RouteCache) GetRouteCount() int {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return len(rc.routes.Channels)
}

func (rc *RouteCache) parseRoutes(routesFile string) (*Routes, error) {
	data, err := os.ReadFile(routesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var routes Routes
	if err := yaml.Unmarshal(data, &routes); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := rc.validateRoutes(&routes); err != nil {
		return nil, err
	}

	return &routes, nil
}

func (rc *RouteCache) validateRoutes(routes *Routes) error {
	if routes.DefaultURL != "" && !strings.HasPrefix(routes.DefaultURL, "http") {
		return fmt.Errorf("default route is not a valid URL: %s", routes.DefaultURL)
	}
	for channel, url := range routes.Channels {
		if channel == "" {
			return fmt.Errorf("route with empty channel ID")
		}
		if !strings.HasPrefix(url, "http") {
			return fmt.Errorf("route for channel '%s' is not a valid URL: %s", channel, url)
		}
	}
	return nil
}

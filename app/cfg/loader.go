package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./reminders.db" description:"Path to the SQLite database file"`

	// Application configuration
	RoutesFile        string `long:"routes-file" env:"ROUTES_FILE" default:"./routes.yml" description:"YAML file mapping channel IDs to webhook URLs"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"3" description:"Number of background workers for reminder dispatch"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Due-reminder sweep interval in seconds"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Fallback resolver configuration
	LLMEndpoint string `long:"llm-endpoint" env:"LLM_ENDPOINT" default:"https://api.openai.com/v1" description:"OpenAI-compatible API base URL for the fallback resolver"`
	LLMAPIKey   string `long:"llm-api-key" env:"LLM_API_KEY" description:"API key for the fallback resolver (empty disables the fallback)"`
	LLMModel    string `long:"llm-model" env:"LLM_MODEL" default:"gpt-4o-mini" description:"Model name for the fallback resolver"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Oboete/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"Asia/Tokyo" description:"Timezone for resolving temporal expressions (e.g., Asia/Tokyo)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		RoutesFile:        raw.RoutesFile,
		Port:              raw.Port,
		WorkerCount:       raw.WorkerCount,
		SchedulerInterval: raw.SchedulerInterval,
		APIAccessKey:      raw.APIAccessKey,
		LLMEndpoint:       raw.LLMEndpoint,
		LLMAPIKey:         raw.LLMAPIKey,
		LLMModel:          raw.LLMModel,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}

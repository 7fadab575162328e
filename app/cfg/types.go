package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	RoutesFile        string
	Port              string
	WorkerCount       int
	SchedulerInterval int
	APIAccessKey      string

	// Fallback resolver configuration
	LLMEndpoint string
	LLMAPIKey   string
	LLMModel    string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

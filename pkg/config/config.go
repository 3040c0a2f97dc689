package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DatabaseDriver string
	DatabaseURL    string
	SQLitePath     string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleProjectID    string
	GooglePubSubTopic  string
	GoogleCredentials  string

	IMAPArchiveMailbox string

	AIProvider    string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiAPIKey  string
	GeminiModel   string
	OllamaBaseURL string
	OllamaModel   string

	BrowserAgent      string // "chrome" or "remote"
	BrowserAgentURL   string
	BrowserHeadless   bool
	BrowserMaxSteps   int
	BrowserAgentModel string

	SyncInterval time.Duration
	SyncPageSize int

	LogLevel            string
	LogFormat           string
	ActivityLogCapacity int
	MetricsAddr         string
}

// fileValues holds keys from the optional YAML overlay, upper-cased to match env names.
var fileValues = map[string]string{}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		values, err := loadYAMLFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config: ignoring %s: %v\n", path, err)
		} else {
			fileValues = values
		}
	}

	syncInterval := 60 * time.Second
	if v := getEnv("SYNC_INTERVAL", ""); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil && parsed > 0 {
			syncInterval = parsed
		}
	}

	return &Config{
		DatabaseDriver: getEnv("DATABASE_DRIVER", "postgres"),
		DatabaseURL:    getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=mailsweep port=5432 sslmode=disable"),
		SQLitePath:     getEnv("SQLITE_PATH", "mailsweep.db"),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleProjectID:    getEnv("GOOGLE_PROJECT_ID", ""),
		GooglePubSubTopic:  getEnv("GOOGLE_PUBSUB_TOPIC", ""),
		GoogleCredentials:  getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),

		IMAPArchiveMailbox: getEnv("IMAP_ARCHIVE_MAILBOX", "Archive"),

		AIProvider:    getEnv("AI_PROVIDER", "auto"),
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		GeminiAPIKey:  getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
		OllamaModel:   getEnv("OLLAMA_MODEL", "llama3"),

		BrowserAgent:      getEnv("BROWSER_AGENT", "chrome"),
		BrowserAgentURL:   getEnv("BROWSER_AGENT_URL", ""),
		BrowserHeadless:   getEnvBool("BROWSER_HEADLESS", true),
		BrowserMaxSteps:   getEnvInt("BROWSER_MAX_STEPS", 15),
		BrowserAgentModel: getEnv("BROWSER_AGENT_MODEL", "gpt-4o"),

		SyncInterval: syncInterval,
		SyncPageSize: getEnvInt("SYNC_PAGE_SIZE", 50),

		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "json"),
		ActivityLogCapacity: getEnvInt("ACTIVITY_LOG_CAPACITY", 500),
		MetricsAddr:         getEnv("METRICS_ADDR", ""),
	}
}

// loadYAMLFile reads a flat YAML mapping such as `openai_model: gpt-4o`.
func loadYAMLFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	raw := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		values[strings.ToUpper(k)] = fmt.Sprint(v)
	}
	return values, nil
}

// getEnv prefers the process environment, then the YAML overlay, then the default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	if value, ok := fileValues[key]; ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v := getEnv(key, ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v := getEnv(key, ""); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

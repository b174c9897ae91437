package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string

	GoogleAPIKey  string
	GeminiModel   string
	OllamaModel   string
	OllamaHost    string
	SearchAPIKey  string
	SearchEngine  string
	SearchResults int

	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration

	GenerationTimeout time.Duration
	AgentMaxSteps     int
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env entries.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:           getenv("PORT", "8080"),
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		LogLevel:       getenv("LOG_LEVEL", "info"),

		GoogleAPIKey:  getenv("GOOGLE_API_KEY", ""),
		GeminiModel:   getenv("GEMINI_MODEL", "gemini-2.0-flash"),
		OllamaModel:   getenv("OLLAMA_MODEL", "llama3.1"),
		OllamaHost:    getenv("OLLAMA_HOST", "http://localhost:11434"),
		SearchAPIKey:  getenv("GOOGLE_SEARCH_API_KEY", ""),
		SearchEngine:  getenv("GOOGLE_SEARCH_ENGINE_ID", ""),
		SearchResults: getint("SEARCH_MAX_RESULTS", 5),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		SessionTTL:    getduration("SESSION_TTL", 24*time.Hour),

		GenerationTimeout: getduration("GENERATION_TIMEOUT", 5*time.Minute),
		AgentMaxSteps:     getint("AGENT_MAX_STEPS", 12),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	n, err := strconv.Atoi(getenv(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getduration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(getenv(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package config

import (
	"os"
	"strconv"
)

// Config collects every tunable the server reads from the environment.
// Secrets (DATABASE_URL, GEMINI_API_KEY, session/OAuth keys) stay here too so
// the rest of the code never touches os.Getenv directly.
type Config struct {
	Port        string
	FrontendURL string

	DatabaseURL   string
	SessionSecret string

	GeminiAPIKey string
	GeminiModel  string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	// Rate limiter settings for the Gemini endpoint.
	RateLimitMaxRequests  int
	RateLimitWindowMillis int
	RateLimitMaxRetries   int

	// Object storage for lecture PDFs (optional; s3:// refs fail without it).
	StorageAccountID       string
	StorageBucket          string
	StorageAccessKeyID     string
	StorageSecretAccessKey string
}

// Load reads the configuration from the environment. Call godotenv.Load first
// if a .env file should be honored.
func Load() Config {
	return Config{
		Port:        getenv("PORT", "8080"),
		FrontendURL: getenv("FRONTEND_URL", "http://localhost:5173"),

		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SessionSecret: os.Getenv("SESSION_SECRET"),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getenv("GEMINI_MODEL", "gemini-2.0-flash"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		RateLimitMaxRequests:  getenvInt("RATE_LIMIT_MAX_REQUESTS", 15),
		RateLimitWindowMillis: getenvInt("RATE_LIMIT_WINDOW_MS", 60000),
		RateLimitMaxRetries:   getenvInt("RATE_LIMIT_MAX_RETRIES", 3),

		StorageAccountID:       os.Getenv("STORAGE_ACCOUNT_ID"),
		StorageBucket:          os.Getenv("STORAGE_BUCKET_NAME"),
		StorageAccessKeyID:     os.Getenv("STORAGE_ACCESS_KEY_ID"),
		StorageSecretAccessKey: os.Getenv("STORAGE_SECRET_ACCESS_KEY"),
	}
}

func getenv(k, fallback string) string {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

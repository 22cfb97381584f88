package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv            string
	AppName           string
	AppPort           string
	FrontendURL       string
	DatabaseURL       string
	SupabaseURL       string
	SupabaseKey       string
	SupabaseJWTSecret string
	GeminiAPIKey      string
	GeminiModel       string
	GeminiBaseURL     string
	AITimeoutSeconds  int
}

func Load() Config {
	_ = godotenv.Load(".env")

	return Config{
		AppEnv:            getEnv("APP_ENV", "local"),
		AppName:           getEnv("APP_NAME", "Love Analyzer API"),
		AppPort:           getEnv("APP_PORT", "5000"),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:5173"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		SupabaseURL:       getEnv("SUPABASE_URL", ""),
		SupabaseKey:       getEnv("SUPABASE_KEY", ""),
		SupabaseJWTSecret: getEnv("SUPABASE_JWT_SECRET", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		AITimeoutSeconds:  getEnvInt("AI_TIMEOUT_SECONDS", 30),
	}
}

// AllowedOrigins is the fixed CORS allow-list plus the configured frontend
// origin when it is not already listed.
func (c Config) AllowedOrigins() []string {
	origins := []string{"https://love-anlyzer.vercel.app", "http://localhost:5173"}
	frontend := strings.TrimSpace(c.FrontendURL)
	if frontend == "" {
		return origins
	}
	for _, origin := range origins {
		if origin == frontend {
			return origins
		}
	}
	return append(origins, frontend)
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}
	if strings.TrimSpace(c.SupabaseURL) == "" {
		return errors.New("SUPABASE_URL is required")
	}
	if strings.TrimSpace(c.SupabaseKey) == "" {
		return errors.New("SUPABASE_KEY is required")
	}
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		return errors.New("GEMINI_API_KEY is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

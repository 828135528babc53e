package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds every file path and logging knob the application needs.
// It is built once in main and passed to constructors; nothing reads the
// environment after startup.
type Config struct {
	DataDir       string
	DocxPath      string
	BankPath      string
	WrongPath     string
	StatsPath     string
	FavoritesPath string
	HistoryDBPath string
	LogLevel      string
	LogFormat     string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads a .env file if present but does not fail if missing.
func Load() Config {
	_ = godotenv.Load() // .env is optional

	dataDir := getEnv("QUIZ_DATA_DIR", ".")

	return Config{
		DataDir:       dataDir,
		DocxPath:      getEnv("QUIZ_DOCX_PATH", filepath.Join(dataDir, "questions.docx")),
		BankPath:      getEnv("QUIZ_BANK_PATH", filepath.Join(dataDir, "questions.json")),
		WrongPath:     getEnv("QUIZ_WRONG_PATH", filepath.Join(dataDir, "wrong_questions.json")),
		StatsPath:     getEnv("QUIZ_STATS_PATH", filepath.Join(dataDir, "stats.json")),
		FavoritesPath: getEnv("QUIZ_FAVORITES_PATH", filepath.Join(dataDir, "favorites.json")),
		HistoryDBPath: getEnv("QUIZ_HISTORY_DB", filepath.Join(dataDir, "history.db")),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "pretty"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

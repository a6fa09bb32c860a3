package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	DatabaseURL    string
	PublicURL      string
	WordsFile      string
	AllowedOrigins []string

	RevealDelay   time.Duration
	TypingTimeout time.Duration
	MaxClueLength int
	MinPlayers    int

	ActionRate  float64 // inbound actions per second per connection
	ActionBurst int

	LogLevel  string
	LogPretty bool
}

func Load() Config {
	port := getEnv("PORT", "8080")
	cfg := Config{
		Port:           port,
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		PublicURL:      strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:"+port), "/"),
		WordsFile:      os.Getenv("WORDS_FILE"),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		RevealDelay:    time.Duration(getEnvInt("REVEAL_DELAY_MS", 1800)) * time.Millisecond,
		TypingTimeout:  time.Duration(getEnvInt("TYPING_TIMEOUT_MS", 1800)) * time.Millisecond,
		MaxClueLength:  getEnvInt("MAX_CLUE_LENGTH", 40),
		MinPlayers:     max(getEnvInt("MIN_PLAYERS", 3), 3),
		ActionRate:     float64(getEnvInt("ACTION_RATE", 10)),
		ActionBurst:    getEnvInt("ACTION_BURST", 20),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogPretty:      getEnvBool("LOG_PRETTY", true),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type WeekdayMode string

const (
	// WeekdayReference matches reminder days against the scheduler's UTC clock.
	WeekdayReference WeekdayMode = "reference"
	// WeekdayLocal matches against the user's offset-shifted clock.
	WeekdayLocal WeekdayMode = "local"
)

type Config struct {
	Port           string
	AllowedOrigins string

	StorageBackend  string // "sqlite" or "memory"
	DBPath          string
	DBEncryptionKey string

	EnableWorkers bool
	TickInterval  time.Duration
	SendTimeout   time.Duration
	SessionTTL    time.Duration
	WeekdayMode   WeekdayMode

	AppSecret string

	UseMockLLM     bool
	TogetherAPIKey string
	TogetherModel  string
	TogetherURL    string
	LLMTimeout     time.Duration

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getIntEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// Load reads all env vars and builds the config
func Load() *Config {
	tickSeconds := getIntEnv("COACH_TICK_SECONDS", 60)
	// Reminders match on the exact minute, so a pass must run at least once a minute.
	if tickSeconds > 60 {
		tickSeconds = 60
	}

	cfg := &Config{
		Port:           getEnv("COACH_PORT", "3000"),
		AllowedOrigins: normalizeOrigins(os.Getenv("COACH_ALLOWED_ORIGINS")),

		StorageBackend:  getEnv("COACH_STORAGE", "sqlite"),
		DBPath:          getEnv("COACH_DB_PATH", "./data/habits.db"),
		DBEncryptionKey: os.Getenv("DB_ENCRYPTION_KEY"),

		EnableWorkers: getBoolEnv("COACH_ENABLE_WORKERS", true),
		TickInterval:  time.Duration(tickSeconds) * time.Second,
		SendTimeout:   time.Duration(getIntEnv("COACH_SEND_TIMEOUT_SECONDS", 10)) * time.Second,
		SessionTTL:    time.Duration(getIntEnv("COACH_SESSION_TTL_MINUTES", 60)) * time.Minute,
		WeekdayMode:   WeekdayMode(getEnv("COACH_WEEKDAY_MODE", string(WeekdayReference))),

		AppSecret: os.Getenv("COACH_APP_SECRET"),

		TogetherAPIKey: os.Getenv("TOGETHER_API_KEY"),
		TogetherModel:  getEnv("TOGETHER_MODEL", "mistralai/Mistral-7B-Instruct-v0.2"),
		TogetherURL:    getEnv("TOGETHER_URL", "https://api.together.xyz/v1/chat/completions"),
		LLMTimeout:     time.Duration(getIntEnv("COACH_LLM_TIMEOUT_SECONDS", 30)) * time.Second,

		VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
		VAPIDSubject:    os.Getenv("VAPID_SUBJECT"),
	}
	cfg.UseMockLLM = getBoolEnv("COACH_USE_MOCK_LLM", cfg.TogetherAPIKey == "")

	return cfg
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "sqlite", "memory":
	default:
		return errors.New("COACH_STORAGE must be sqlite or memory")
	}
	switch c.WeekdayMode {
	case WeekdayReference, WeekdayLocal:
	default:
		return errors.New("COACH_WEEKDAY_MODE must be reference or local")
	}
	if len(c.AppSecret) < 32 {
		return errors.New("COACH_APP_SECRET must be at least 32 characters long")
	}
	return nil
}

// WebPushConfigured reports whether all VAPID settings are present.
func (c *Config) WebPushConfigured() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != "" && c.VAPIDSubject != ""
}

func normalizeOrigins(raw string) string {
	origins := strings.TrimSpace(raw)
	if origins == "" {
		return "http://localhost:80,http://localhost:5173"
	}
	if origins == "*" {
		return origins
	}
	parts := strings.Split(origins, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, ",")
}

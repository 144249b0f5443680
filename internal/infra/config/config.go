package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultNotesPath   = "Website_Release_Note.docx"
	defaultRemote      = "origin"
	defaultSMTPHost    = "smtp.gmail.com"
	defaultSMTPPort    = 465
	defaultSMTPTimeout = 30 * time.Second
	defaultGitTimeout  = 2 * time.Minute
	defaultMaxAttempts = 10
	defaultCronSpec    = "0 10 * * 1" // Mondays, 10:00
	defaultRunTimeout  = 10 * time.Minute
)

// EmailConfig holds the sender credentials, recipient lists and relay endpoint.
// It is validated by the notifier, not by Load.
type EmailConfig struct {
	Sender   string
	Password string
	To       []string
	Cc       []string
	Bcc      []string
	SMTPHost string
	SMTPPort int
	Timeout  time.Duration
}

// GitConfig describes the working repository and its remote.
type GitConfig struct {
	RepoPath    string
	Remote      string
	Username    string
	Token       string
	Timeout     time.Duration
	StrictTags  bool
	MaxAttempts int
}

// TelegramConfig enables the optional chat announcement when both fields are set.
type TelegramConfig struct {
	Token  string
	ChatID int64
}

func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

// AppConfig holds all configuration for the application
type AppConfig struct {
	NotesPath   string
	Email       EmailConfig
	Git         GitConfig
	Telegram    TelegramConfig
	DatabaseURL string // optional; empty disables run history
	CronSpec    string
	RunTimeout  time.Duration
	LogLevel    string
	Environment string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables that are already set.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.NotesPath = getEnvDefault("RELEASE_NOTES_PATH", defaultNotesPath)

	cfg.Email = EmailConfig{
		Sender:   strings.TrimSpace(os.Getenv("EMAIL_SENDER")),
		Password: os.Getenv("EMAIL_PASSWORD"),
		To:       SplitAddressList(os.Getenv("EMAIL_RECEIVER")),
		Cc:       SplitAddressList(os.Getenv("EMAIL_CC")),
		Bcc:      SplitAddressList(os.Getenv("EMAIL_BCC")),
		SMTPHost: getEnvDefault("SMTP_HOST", defaultSMTPHost),
	}
	if cfg.Email.SMTPPort, err = getEnvInt("SMTP_PORT", defaultSMTPPort); err != nil {
		return nil, err
	}
	if cfg.Email.Timeout, err = getEnvDuration("SMTP_TIMEOUT", defaultSMTPTimeout); err != nil {
		return nil, err
	}

	cfg.Git = GitConfig{
		RepoPath: getEnvDefault("GIT_REPO_PATH", "."),
		Remote:   getEnvDefault("GIT_REMOTE", defaultRemote),
		Username: os.Getenv("GIT_USERNAME"),
		Token:    os.Getenv("GIT_TOKEN"),
	}
	if cfg.Git.Timeout, err = getEnvDuration("GIT_TIMEOUT", defaultGitTimeout); err != nil {
		return nil, err
	}
	if cfg.Git.StrictTags, err = getEnvBool("TAG_STRICT", false); err != nil {
		return nil, err
	}
	if cfg.Git.MaxAttempts, err = getEnvInt("TAG_MAX_ATTEMPTS", defaultMaxAttempts); err != nil {
		return nil, err
	}
	if cfg.Git.MaxAttempts < 1 {
		return nil, fmt.Errorf("invalid TAG_MAX_ATTEMPTS: must be at least 1, got %d", cfg.Git.MaxAttempts)
	}

	cfg.Telegram.Token = os.Getenv("TELEGRAM_TOKEN")
	if chatIDStr := os.Getenv("TELEGRAM_CHAT_ID"); chatIDStr != "" {
		cfg.Telegram.ChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.CronSpec = getEnvDefault("RELEASE_CRON_SPEC", defaultCronSpec)
	if cfg.RunTimeout, err = getEnvDuration("RELEASE_RUN_TIMEOUT", defaultRunTimeout); err != nil {
		return nil, err
	}

	cfg.LogLevel = strings.ToLower(getEnvDefault("LOG_LEVEL", "info"))
	cfg.Environment = strings.ToLower(getEnvDefault("ENVIRONMENT", "development"))

	return cfg, nil
}

// SplitAddressList splits a comma-separated list, trimming entries and dropping empty ones.
func SplitAddressList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

func getEnvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends.
const (
	BackendFile  = "file"
	BackendMongo = "mongo"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Store     StoreConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Ledger    LedgerConfig
	Reporting ReportingConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig selects the minimum log level.
type LogConfig struct {
	Level string
}

// StoreConfig selects the access layer backend.
type StoreConfig struct {
	Backend string
	FileDir string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// RedisConfig enables distributed write locks when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	LockTTL  time.Duration
}

// LedgerConfig holds ledger behaviour switches.
type LedgerConfig struct {
	OpeningPolicy string
	SeedCatalog   bool
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// WhatsAppConfig contains credentials for sending the daily report through
// the Meta WhatsApp Cloud API. Empty AccessToken disables it.
type WhatsAppConfig struct {
	AccessToken      string
	VerifyToken      string
	PhoneNumberID    string
	BaseURL          string
	APIVersion       string
	ReportRecipients []string
}

// Enabled reports whether report delivery is configured.
func (c WhatsAppConfig) Enabled() bool { return c.AccessToken != "" }

// InboundEnabled reports whether the webhook answering report requests is on.
func (c WhatsAppConfig) InboundEnabled() bool { return c.Enabled() && c.VerifyToken != "" }

// SheetsConfig contains configuration for the Google Sheets export. Empty
// SpreadsheetID disables it.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the Sheets export is configured.
func (c SheetsConfig) Enabled() bool { return c.SpreadsheetID != "" }

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env is fine when the environment is set directly.
		_ = godotenv.Load()
	}

	lockTTL, err := time.ParseDuration(getenvWithDefault("LOCK_TTL", "10s"))
	if err != nil {
		return nil, fmt.Errorf("LOCK_TTL: %w", err)
	}
	seedCatalog, err := strconv.ParseBool(getenvWithDefault("LEDGER_SEED_CATALOG", "true"))
	if err != nil {
		return nil, fmt.Errorf("LEDGER_SEED_CATALOG: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Backend: getenvWithDefault("STORE_BACKEND", BackendFile),
			FileDir: getenvWithDefault("STORE_FILE_DIR", "./data"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "oil_inventory"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			LockTTL:  lockTTL,
		},
		Ledger: LedgerConfig{
			OpeningPolicy: getenvWithDefault("LEDGER_OPENING_POLICY", "zero"),
			SeedCatalog:   seedCatalog,
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Asia/Kolkata"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:      os.Getenv("WHATSAPP_TOKEN"),
			VerifyToken:      os.Getenv("WHATSAPP_VERIFY_TOKEN"),
			PhoneNumberID:    os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:          getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:       getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ReportRecipients: splitList(os.Getenv("WHATSAPP_REPORT_RECIPIENTS")),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Store.Backend {
	case BackendFile:
		if c.Store.FileDir == "" {
			return errors.New("STORE_FILE_DIR must be provided for the file backend")
		}
	case BackendMongo:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided for the mongo backend")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendFile, BackendMongo, c.Store.Backend)
	}

	if c.Redis.Addr != "" && c.Redis.LockTTL <= 0 {
		return errors.New("LOCK_TTL must be positive")
	}

	switch c.Ledger.OpeningPolicy {
	case "zero", "carry_forward", "random":
	default:
		return fmt.Errorf("LEDGER_OPENING_POLICY must be zero, carry_forward or random, got %q", c.Ledger.OpeningPolicy)
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}
	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Reporting.Timezone, err)
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		case len(c.WhatsApp.ReportRecipients) == 0:
			return errors.New("WHATSAPP_REPORT_RECIPIENTS must be provided")
		}
	}

	if c.Sheets.Enabled() && c.Sheets.CredentialsPath == "" {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
	}

	return nil
}

// Location returns the reporting timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reporting.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

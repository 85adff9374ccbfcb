package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
}

// ICSFeed is one subscribed calendar feed.
type ICSFeed struct {
	ID  string `yaml:"id"`
	URL string `yaml:"url"`
}

type Config struct {
	HTTPPort  int    `yaml:"http_port"`
	DBPath    string `yaml:"db_path"`
	LogLevel  string `yaml:"log_level"`
	LogPretty bool   `yaml:"log_pretty"`

	// Text model used for calming-break decisions. An empty provider disables them.
	LLMProvider     string        `yaml:"llm_provider"`
	LLMAPIKey       string        `yaml:"llm_api_key"`
	LLMModel        string        `yaml:"llm_model"`
	LLMBaseURL      string        `yaml:"llm_base_url"`
	LLMTemperature  float64       `yaml:"llm_temperature"`
	OverrideTimeout time.Duration `yaml:"override_timeout"`

	BreakCacheTTL time.Duration `yaml:"break_cache_ttl"`

	GoogleCredentialsFile string `yaml:"google_credentials_file"`
	// GoogleTokenStore is "file" (GoogleTokenFile) or "db" (encrypted in the database).
	GoogleTokenStore string    `yaml:"google_token_store"`
	GoogleTokenFile  string    `yaml:"google_token_file"`
	CalendarID       string    `yaml:"calendar_id"`
	HorizonDays      int       `yaml:"horizon_days"`
	MaxEvents        int       `yaml:"max_events"`
	ICSFeeds         []ICSFeed `yaml:"ics"`

	ResendAPIKey      string        `yaml:"resend_api_key"`
	EmailFrom         string        `yaml:"email_from"`
	ReminderRecipient string        `yaml:"reminder_recipient"`
	ReminderLead      time.Duration `yaml:"reminder_lead"`
	AppURL            string        `yaml:"app_url"`

	PurgeCron    string `yaml:"purge_cron"`
	ReminderCron string `yaml:"reminder_cron"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HTTPPort:              8080,
		DBPath:                "./serenity.db",
		LogLevel:              "info",
		LLMTemperature:        0.1,
		OverrideTimeout:       8 * time.Second,
		BreakCacheTTL:         24 * time.Hour,
		GoogleCredentialsFile: "./credentials.json",
		GoogleTokenStore:      "file",
		GoogleTokenFile:       "./token.json",
		CalendarID:            "primary",
		HorizonDays:           7,
		MaxEvents:             10,
		ReminderLead:          5 * time.Minute,
		PurgeCron:             "@every 1h",
		ReminderCron:          "@every 1m",
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// SERENITY_CONFIG_FILE (if any), then the environment.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("SERENITY_CONFIG_FILE"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv is Load without a config file.
func LoadFromEnv() *Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	c.HTTPPort = getEnvAsIntOrDefault("SERENITY_HTTP_PORT", c.HTTPPort)
	c.DBPath = getEnvOrDefault("SERENITY_DB_PATH", c.DBPath)
	c.LogLevel = getEnvOrDefault("SERENITY_LOG_LEVEL", c.LogLevel)
	c.LogPretty = getEnvAsBoolOrDefault("SERENITY_LOG_PRETTY", c.LogPretty)

	c.LLMProvider = strings.ToLower(getEnvOrDefault("SERENITY_LLM_PROVIDER", c.LLMProvider))
	c.LLMAPIKey = getEnvOrDefault("SERENITY_LLM_API_KEY", c.LLMAPIKey)
	if c.LLMAPIKey == "" {
		switch c.LLMProvider {
		case "anthropic":
			c.LLMAPIKey = os.Getenv("ANTHROPIC_API_KEY")
		case "openai":
			c.LLMAPIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
	c.LLMModel = getEnvOrDefault("SERENITY_LLM_MODEL", c.LLMModel)
	c.LLMBaseURL = getEnvOrDefault("SERENITY_LLM_BASE_URL", c.LLMBaseURL)
	c.LLMTemperature = getEnvAsFloatOrDefault("SERENITY_LLM_TEMPERATURE", c.LLMTemperature)
	c.OverrideTimeout = getEnvAsDurationOrDefault("SERENITY_OVERRIDE_TIMEOUT", c.OverrideTimeout)

	c.BreakCacheTTL = getEnvAsDurationOrDefault("SERENITY_BREAK_CACHE_TTL", c.BreakCacheTTL)

	c.GoogleCredentialsFile = getEnvOrDefault("GOOGLE_CREDENTIALS_FILE", c.GoogleCredentialsFile)
	c.GoogleTokenStore = strings.ToLower(getEnvOrDefault("SERENITY_GOOGLE_TOKEN_STORE", c.GoogleTokenStore))
	c.GoogleTokenFile = getEnvOrDefault("GOOGLE_TOKEN_FILE", c.GoogleTokenFile)
	c.CalendarID = getEnvOrDefault("SERENITY_CALENDAR_ID", c.CalendarID)
	c.HorizonDays = getEnvAsIntOrDefault("SERENITY_HORIZON_DAYS", c.HorizonDays)
	c.MaxEvents = getEnvAsIntOrDefault("SERENITY_MAX_EVENTS", c.MaxEvents)
	if urls := os.Getenv("SERENITY_ICS_URLS"); urls != "" {
		c.ICSFeeds = parseFeedList(urls)
	}

	c.ResendAPIKey = getEnvOrDefault("RESEND_API_KEY", c.ResendAPIKey)
	c.EmailFrom = getEnvOrDefault("SERENITY_EMAIL_FROM", c.EmailFrom)
	c.ReminderRecipient = getEnvOrDefault("SERENITY_REMINDER_EMAIL", c.ReminderRecipient)
	c.ReminderLead = getEnvAsDurationOrDefault("SERENITY_REMINDER_LEAD", c.ReminderLead)
	c.AppURL = getEnvOrDefault("SERENITY_APP_URL", c.AppURL)

	c.PurgeCron = getEnvOrDefault("SERENITY_PURGE_CRON", c.PurgeCron)
	c.ReminderCron = getEnvOrDefault("SERENITY_REMINDER_CRON", c.ReminderCron)
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port %d", c.HTTPPort)
	}
	switch c.LLMProvider {
	case "", "anthropic", "openai", "ollama":
	default:
		return fmt.Errorf("unknown LLM provider %q", c.LLMProvider)
	}
	switch c.GoogleTokenStore {
	case "file", "db":
	default:
		return fmt.Errorf("unknown Google token store %q", c.GoogleTokenStore)
	}
	if c.OverrideTimeout <= 0 {
		return fmt.Errorf("override timeout must be positive, got %s", c.OverrideTimeout)
	}
	if c.BreakCacheTTL <= 0 {
		return fmt.Errorf("break cache TTL must be positive, got %s", c.BreakCacheTTL)
	}
	seen := make(map[string]bool)
	for _, f := range c.ICSFeeds {
		if f.URL == "" {
			return fmt.Errorf("ICS feed %q has no URL", f.ID)
		}
		if seen[f.ID] {
			return fmt.Errorf("duplicate ICS feed id %q", f.ID)
		}
		seen[f.ID] = true
	}
	return nil
}

// Horizon is the planning window.
func (c *Config) Horizon() time.Duration {
	return time.Duration(c.HorizonDays) * 24 * time.Hour
}

// parseFeedList reads "id=url,url2" style lists. Entries without an id are numbered.
func parseFeedList(value string) []ICSFeed {
	var feeds []ICSFeed
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		feed := ICSFeed{URL: part}
		if id, url, ok := strings.Cut(part, "="); ok && !strings.Contains(id, "://") {
			feed = ICSFeed{ID: strings.TrimSpace(id), URL: strings.TrimSpace(url)}
		}
		if feed.ID == "" {
			feed.ID = fmt.Sprintf("feed%d", len(feeds)+1)
		}
		feeds = append(feeds, feed)
	}
	return feeds
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvAsDurationOrDefault accepts Go durations ("90s") or plain seconds.
func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

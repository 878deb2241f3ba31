package folio

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/eringen/folio/logger"
	"github.com/eringen/folio/notify"
)

// SiteConfig holds all configuration for a folio site.
type SiteConfig struct {
	Name          string `mapstructure:"name"`           // Site name (default "Folio")
	URL           string `mapstructure:"url"`            // Canonical URL (default "http://localhost:3000")
	Description   string `mapstructure:"description"`    // Site description for RSS and meta tags
	Author        string `mapstructure:"author"`         // Author name for JSON-LD
	DefaultLocale Locale `mapstructure:"default_locale"` // Locale for "/" when negotiation fails (default "en")

	Addr         string `mapstructure:"addr"`          // Listen address (default ":3000")
	DatabasePath string `mapstructure:"database_path"` // SQLite path (default "data/folio.db")

	AdminPassword string `mapstructure:"admin_password"` // Enables the admin API when set
	SessionSecret string `mapstructure:"session_secret"` // Required with AdminPassword
	CookieSecure  bool   `mapstructure:"cookie_secure"`  // Set true for HTTPS

	ListCacheTTL     time.Duration `mapstructure:"list_cache_ttl"`    // Listing cache TTL (default 5m)
	SanitizeMarkdown bool          `mapstructure:"sanitize_markdown"` // Strip unsafe HTML from post bodies

	ContactRateLimit  int           `mapstructure:"contact_rate_limit"`  // Form submissions per IP per window (default 5)
	ContactRateWindow time.Duration `mapstructure:"contact_rate_window"` // (default 10m)

	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Log       LogConfig       `mapstructure:"log"`
}

// AnalyticsConfig configures post view counting. Views live in a separate
// SQLite file; RetentionDays <= 0 keeps them forever.
type AnalyticsConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	DatabasePath  string `mapstructure:"database_path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// TelegramConfig configures the bot that receives contact and feedback forms.
// Messages are only logged when BotToken is empty.
type TelegramConfig struct {
	BotToken  string        `mapstructure:"bot_token"`
	ChatID    string        `mapstructure:"chat_id"`
	APIBase   string        `mapstructure:"api_base"`
	Timeout   time.Duration `mapstructure:"timeout"`
	QueueSize int           `mapstructure:"queue_size"`
}

// Enabled reports whether a bot is configured.
func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && c.ChatID != ""
}

// LogConfig configures logging; Mode is "debug" or "release".
type LogConfig struct {
	Mode       string `mapstructure:"mode"`
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions converts c to logger options.
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

var configDefaults = map[string]any{
	"name":                     "Folio",
	"url":                      "http://localhost:3000",
	"description":              "",
	"author":                   "",
	"default_locale":           string(LocaleEN),
	"addr":                     ":3000",
	"database_path":            "data/folio.db",
	"admin_password":           "",
	"session_secret":           "",
	"cookie_secure":            false,
	"list_cache_ttl":           "5m",
	"sanitize_markdown":        false,
	"contact_rate_limit":       5,
	"contact_rate_window":      "10m",
	"telegram.bot_token":       "",
	"telegram.chat_id":         "",
	"telegram.api_base":        "",
	"telegram.timeout":         "10s",
	"telegram.queue_size":      64,
	"analytics.enabled":        false,
	"analytics.database_path":  "data/analytics.db",
	"analytics.retention_days": 365,
	"log.mode":                 "release",
	"log.dir":                  "",
	"log.filename":             "",
	"log.max_size_mb":          0,
	"log.max_backups":          0,
	"log.max_age_days":         0,
	"log.compress":             true,
}

// LoadConfig reads configuration from the YAML file at path (optional; pass
// "" to skip) and from FOLIO_* environment variables, which take precedence.
// Nested keys use underscores: telegram.bot_token is FOLIO_TELEGRAM_BOT_TOKEN.
func LoadConfig(path string) (SiteConfig, error) {
	v := viper.New()
	for k, val := range configDefaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix("FOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return SiteConfig{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return SiteConfig{}, err
	}
	return cfg, nil
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Folio"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.DefaultLocale == "" {
		c.DefaultLocale = LocaleEN
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/folio.db"
	}
	if c.ListCacheTTL == 0 {
		c.ListCacheTTL = 5 * time.Minute
	}
	if c.ContactRateLimit == 0 {
		c.ContactRateLimit = 5
	}
	if c.ContactRateWindow == 0 {
		c.ContactRateWindow = 10 * time.Minute
	}
	if c.Telegram.QueueSize == 0 {
		c.Telegram.QueueSize = 64
	}
	if c.Analytics.DatabasePath == "" {
		c.Analytics.DatabasePath = "data/analytics.db"
	}
}

func (c *SiteConfig) validate() error {
	if !c.DefaultLocale.Valid() {
		return fmt.Errorf("config: default_locale %q is not supported", c.DefaultLocale)
	}
	if c.AdminPassword != "" && c.SessionSecret == "" {
		return errors.New("config: session_secret is required when admin_password is set")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return errors.New("config: telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.ContactRateLimit < 0 {
		return errors.New("config: contact_rate_limit must not be negative")
	}
	return nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithContentStore replaces the SQLite store used for post resolution.
// Admin and import operations still require the SQLite store.
func WithContentStore(cs ContentStore) Option {
	return func(a *App) {
		a.content = cs
	}
}

// WithNotifier replaces the notification sink built from TelegramConfig.
func WithNotifier(s notify.Sender) Option {
	return func(a *App) {
		a.notifier = s
	}
}

// Package config provides application configuration loaded from a TOML file
// merged over built-in defaults, with environment variable overrides and
// validation. It centralizes bot settings such as the token, inbox limits,
// database path and pragmas, logging, and metrics.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
)

// Duration wraps time.Duration so TOML values can be written as "90s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// InboxConfig holds per-inbox defaults and limits.
type InboxConfig struct {
	MaxAttachmentSize int64    `toml:"max_attachment_size"` // bytes, cumulative per message
	MaxTicketsPerUser int      `toml:"max_tickets_per_user"`
	RatelimitFloor    Duration `toml:"ratelimit_floor"` // minimum per-user cooldown window
}

// BotConfig holds the gateway token and bot-level settings.
type BotConfig struct {
	Token  string      `toml:"token"`
	Driver string      `toml:"driver"` // registered platform driver name
	Locale string      `toml:"locale"` // source locale, BCP 47
	Inbox  InboxConfig `toml:"inbox"`
}

// DBConfig holds the SQLite location and extra initialization pragmas.
type DBConfig struct {
	Path    string   `toml:"path"`
	Pragmas []string `toml:"pragmas"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`  // debug|info|warn|error|fatal|panic
	Pretty bool   `toml:"pretty"` // pretty console logs in dev
}

// MetricsConfig holds the optional Prometheus listener settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// Config holds all configuration values for the application.
type Config struct {
	Bot     BotConfig     `toml:"bot"`
	DB      DBConfig      `toml:"db"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
}

// Default returns the built-in configuration a TOML file is merged over.
func Default() Config {
	return Config{
		Bot: BotConfig{
			Driver: "discord",
			Locale: "en-US",
			Inbox: InboxConfig{
				MaxAttachmentSize: 25 << 20,
				MaxTicketsPerUser: 1,
				RatelimitFloor:    Duration(60 * time.Second),
			},
		},
		DB: DBConfig{
			Path: "ticketbird.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
	}
}

// MustLoad loads the configuration and panics if loading or validation fails.
func MustLoad(path string) Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the TOML file at path (skipped when path is empty), applies
// environment overrides, normalizes values, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return cfg, fmt.Errorf("config: unknown key %q", undecoded[0].String())
		}
	}

	// Environment overrides, mainly for containerized deployments where
	// editing the file is inconvenient.
	cfg.Bot.Token = getenv("BOT_TOKEN", cfg.Bot.Token)
	cfg.Bot.Driver = getenv("BOT_DRIVER", cfg.Bot.Driver)
	cfg.Bot.Locale = getenv("BOT_LOCALE", cfg.Bot.Locale)
	cfg.Bot.Inbox.MaxAttachmentSize = getint64("INBOX_MAX_ATTACHMENT_SIZE", cfg.Bot.Inbox.MaxAttachmentSize)
	cfg.Bot.Inbox.MaxTicketsPerUser = getint("INBOX_MAX_TICKETS_PER_USER", cfg.Bot.Inbox.MaxTicketsPerUser)
	cfg.Bot.Inbox.RatelimitFloor = Duration(getdur("INBOX_RATELIMIT_FLOOR", cfg.Bot.Inbox.RatelimitFloor.Std()))
	cfg.DB.Path = getenv("DB_PATH", cfg.DB.Path)
	cfg.Log.Level = strings.ToLower(getenv("LOG_LEVEL", cfg.Log.Level))
	cfg.Log.Pretty = getbool("LOG_PRETTY", cfg.Log.Pretty)
	cfg.Metrics.Enabled = getbool("METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.Addr = getenv("METRICS_ADDR", cfg.Metrics.Addr)

	// --- normalization ---
	if cfg.Log.Level == "warning" {
		cfg.Log.Level = "warn"
	}
	for i, p := range cfg.DB.Pragmas {
		cfg.DB.Pragmas[i] = strings.TrimRight(strings.TrimSpace(p), ";")
	}

	// --- validation ---
	if strings.TrimSpace(cfg.Bot.Token) == "" {
		return cfg, errors.New("bot.token must not be empty")
	}
	if strings.TrimSpace(cfg.Bot.Driver) == "" {
		return cfg, errors.New("bot.driver must not be empty")
	}
	if _, err := language.Parse(cfg.Bot.Locale); err != nil {
		return cfg, fmt.Errorf("bot.locale is not a valid language tag: %w", err)
	}
	if cfg.Bot.Inbox.MaxAttachmentSize <= 0 {
		return cfg, errors.New("bot.inbox.max_attachment_size must be > 0")
	}
	if cfg.Bot.Inbox.MaxTicketsPerUser < 0 {
		return cfg, errors.New("bot.inbox.max_tickets_per_user must be >= 0")
	}
	if cfg.Bot.Inbox.RatelimitFloor < 0 {
		return cfg, errors.New("bot.inbox.ratelimit_floor must be >= 0")
	}
	if strings.TrimSpace(cfg.DB.Path) == "" {
		return cfg, errors.New("db.path must not be empty")
	}
	for _, p := range cfg.DB.Pragmas {
		if err := checkPragma(p); err != nil {
			return cfg, err
		}
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("log.level must be one of: debug, info, warn, error, fatal, panic")
	}
	if cfg.Metrics.Enabled && strings.TrimSpace(cfg.Metrics.Addr) == "" {
		return cfg, errors.New("metrics.addr must not be empty when metrics are enabled")
	}

	return cfg, nil
}

// checkPragma accepts a single PRAGMA statement with no trailing statements,
// so config values cannot smuggle arbitrary SQL into connection setup.
func checkPragma(p string) error {
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(p)), "pragma") {
		return fmt.Errorf("db.pragmas: %q must start with PRAGMA", p)
	}
	if strings.Contains(p, ";") {
		return fmt.Errorf("db.pragmas: %q must be a single statement", p)
	}
	return nil
}

// ---- env helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getint64(k string, def int64) int64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

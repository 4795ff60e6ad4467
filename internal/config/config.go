package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/robalobadob/colorguess/internal/clipboard"
	"github.com/robalobadob/colorguess/internal/game"
)

const (
	configFileEnv        = "CONFIG_FILE"
	portEnv              = "PORT"
	logLevelEnv          = "LOG_LEVEL"
	logFormatEnv         = "LOG_FORMAT"
	logFileEnv           = "LOG_FILE"
	clientOriginEnv      = "CLIENT_ORIGIN"
	dbPathEnv            = "DB_PATH"
	sessionSecretEnv     = "SESSION_SECRET"
	sessionTTLEnv        = "SESSION_TTL"
	dailySaltEnv         = "DAILY_SALT"
	defaultDifficultyEnv = "DEFAULT_DIFFICULTY"
	clipboardEnv         = "CLIPBOARD"
	colorNamesFileEnv    = "COLOR_NAMES_FILE"
	soundEnv             = "SOUND"

	devSessionSecret = "dev_secret_change_me"
)

type Config struct {
	Port              string        `yaml:"port"`
	LogLevel          string        `yaml:"log_level"`
	LogFormat         string        `yaml:"log_format"` // console | json
	LogFile           string        `yaml:"log_file"`
	ClientOrigin      string        `yaml:"client_origin"`
	DBPath            string        `yaml:"db_path"`
	SessionSecret     string        `yaml:"session_secret"`
	SessionTTL        time.Duration `yaml:"session_ttl"`
	DailySalt         string        `yaml:"daily_salt"`
	DefaultDifficulty string        `yaml:"default_difficulty"`
	Clipboard         string        `yaml:"clipboard"` // system | memory | none
	ColorNamesFile    string        `yaml:"color_names_file"`
	Sound             bool          `yaml:"sound"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:              "5175",
		LogLevel:          "info",
		LogFormat:         "console",
		ClientOrigin:      "http://localhost:5175",
		DBPath:            ":memory:",
		SessionSecret:     devSessionSecret,
		SessionTTL:        2 * time.Hour,
		DailySalt:         "local_dev_salt",
		DefaultDifficulty: "hard",
		Clipboard:         clipboard.ModeNone,
	}
}

// Load is LoadWith(Default()).
func Load() (*Config, error) {
	return LoadWith(Default())
}

// LoadWith layers .env, the optional CONFIG_FILE (YAML) and the environment
// over base, in that order, then validates.
func LoadWith(base Config) (*Config, error) {
	_ = godotenv.Load()

	cfg := base
	if path := os.Getenv(configFileEnv); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigFileInvalid, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrConfigFileInvalid, path, err)
		}
	}

	cfg.Port = getEnv(portEnv, cfg.Port)
	cfg.LogLevel = getEnv(logLevelEnv, cfg.LogLevel)
	cfg.LogFormat = getEnv(logFormatEnv, cfg.LogFormat)
	cfg.LogFile = getEnv(logFileEnv, cfg.LogFile)
	cfg.ClientOrigin = getEnv(clientOriginEnv, cfg.ClientOrigin)
	cfg.DBPath = getEnv(dbPathEnv, cfg.DBPath)
	cfg.SessionSecret = getEnv(sessionSecretEnv, cfg.SessionSecret)
	cfg.DailySalt = getEnv(dailySaltEnv, cfg.DailySalt)
	cfg.DefaultDifficulty = getEnv(defaultDifficultyEnv, cfg.DefaultDifficulty)
	cfg.Clipboard = getEnv(clipboardEnv, cfg.Clipboard)
	cfg.ColorNamesFile = getEnv(colorNamesFileEnv, cfg.ColorNamesFile)

	if v := os.Getenv(sessionTTLEnv); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSessionTTLInvalid, err)
		}
		cfg.SessionTTL = d
	}
	if v := os.Getenv(soundEnv); v != "" {
		on, err := strconv.ParseBool(v)
		cfg.Sound = err == nil && on || strings.EqualFold(v, "on")
	}

	return &cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrPortInvalid)
	}
	if n, err := strconv.Atoi(c.Port); err != nil || n < 0 || n > 65535 {
		return fmt.Errorf("%w: %q", ErrPortInvalid, c.Port)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %q", ErrLogLevelInvalid, c.LogLevel)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("%w: %q", ErrLogFormatInvalid, c.LogFormat)
	}
	if _, err := game.ParseDifficulty(c.DefaultDifficulty); err != nil {
		return fmt.Errorf("%w: %q", ErrDifficultyInvalid, c.DefaultDifficulty)
	}
	switch strings.ToLower(c.Clipboard) {
	case clipboard.ModeSystem, clipboard.ModeMemory, clipboard.ModeNone:
	default:
		return fmt.Errorf("%w: %q", ErrClipboardInvalid, c.Clipboard)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("%w: must be positive, got %s", ErrSessionTTLInvalid, c.SessionTTL)
	}
	return nil
}

// Difficulty returns the parsed default difficulty. Validate guarantees it parses.
func (c *Config) Difficulty() game.Difficulty {
	d, err := game.ParseDifficulty(c.DefaultDifficulty)
	if err != nil {
		return game.Hard
	}
	return d
}

// InsecureSecret reports whether the built-in development secret is in use.
func (c *Config) InsecureSecret() bool {
	return c.SessionSecret == "" || c.SessionSecret == devSessionSecret
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// LocalConfigName is the project-local config file searched for in parent directories
const LocalConfigName = ".codigo.toml"

// Config holds all application configuration
type Config struct {
	General       GeneralConfig       `toml:"general"`
	Gemini        GeminiConfig        `toml:"gemini"`
	Web           WebConfig           `toml:"web"`
	Auth          AuthConfig          `toml:"auth"`
	Notifications NotificationsConfig `toml:"notifications"`
	Retention     RetentionConfig     `toml:"retention"`
	Prompts       PromptsConfig       `toml:"prompts"`
}

// GeneralConfig holds general settings
type GeneralConfig struct {
	DatabasePath string `toml:"database_path"`
}

// GeminiConfig holds Gemini API settings
type GeminiConfig struct {
	APIKey          string  `toml:"api_key"`
	Model           string  `toml:"model"`
	MaxOutputTokens int32   `toml:"max_output_tokens"`
	Temperature     float32 `toml:"temperature"`
}

// WebConfig holds HTTP API settings
type WebConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
	// AllowedOrigins lists browser origins allowed to open event streams.
	// Empty means same-origin only; "*" allows any origin.
	AllowedOrigins []string `toml:"allowed_origins"`
}

// AuthConfig holds settings for the upstream identity proxy
type AuthConfig struct {
	UserHeader string `toml:"user_header"`
}

// NotificationsConfig holds notification settings
type NotificationsConfig struct {
	SlackWebhook string `toml:"slack_webhook"`
}

// RetentionConfig controls pruning of the generation audit log
type RetentionConfig struct {
	Cron string `toml:"cron"`
	Days int    `toml:"days"`
}

// PromptsConfig holds prompt template override settings
type PromptsConfig struct {
	OverrideDir string `toml:"override_dir"`
	Watch       bool   `toml:"watch"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		General: GeneralConfig{
			DatabasePath: filepath.Join(home, ".codigo", "codigo.db"),
		},
		Gemini: GeminiConfig{
			Model:           "gemini-2.0-flash",
			MaxOutputTokens: 8192,
			Temperature:     0.7,
		},
		Web: WebConfig{
			Port: 8080,
			Host: "127.0.0.1",
		},
		Auth: AuthConfig{
			UserHeader: "X-User-ID",
		},
		Retention: RetentionConfig{
			Cron: "0 3 * * *",
			Days: 30,
		},
		Prompts: PromptsConfig{
			OverrideDir: filepath.Join(home, ".config", "codigo", "prompts"),
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.General.DatabasePath = ExpandPath(cfg.General.DatabasePath)
	cfg.Prompts.OverrideDir = ExpandPath(cfg.Prompts.OverrideDir)
	cfg.applyEnv()

	return cfg, nil
}

// LoadWithLocalFallback loads the explicit path if given, otherwise a project-local
// config found by FindLocalConfig, otherwise the default config path
func LoadWithLocalFallback(explicit string) (*Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	if local := FindLocalConfig(); local != "" {
		return Load(local)
	}
	return Load(DefaultConfigPath())
}

// applyEnv fills the Gemini key from the environment when the file leaves it empty
func (c *Config) applyEnv() {
	if c.Gemini.APIKey != "" {
		return
	}
	for _, name := range []string{"GOOGLE_API_KEY", "GOOGLE_GENERATIVE_LANGUAGE_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			c.Gemini.APIKey = v
			return
		}
	}
}

// Validate checks settings that would otherwise fail at runtime
func (c *Config) Validate() error {
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return fmt.Errorf("web.port %d out of range", c.Web.Port)
	}
	if strings.TrimSpace(c.Gemini.Model) == "" {
		return fmt.Errorf("gemini.model is required")
	}
	if c.Auth.UserHeader == "" {
		return fmt.Errorf("auth.user_header is required")
	}
	if c.Retention.Cron != "" {
		if _, err := cron.ParseStandard(c.Retention.Cron); err != nil {
			return fmt.Errorf("retention.cron: %w", err)
		}
	}
	if c.Retention.Days < 0 {
		return fmt.Errorf("retention.days must not be negative")
	}
	return nil
}

// Save writes the configuration to path, creating parent directories
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0600)
}

// Addr returns the host:port the API listens on
func (w WebConfig) Addr() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "codigo", "config.toml")
}

// FindLocalConfig walks up from the working directory looking for LocalConfigName
func FindLocalConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, LocalConfigName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

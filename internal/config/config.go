// Package config loads application settings from the environment and
// an optional .env file.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported LLM providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds the configuration for the application.
type Config struct {
	LLM      LLMConfig      `mapstructure:"llm"`
	Database DatabaseConfig `mapstructure:"database"`
	Keys     KeysConfig     `mapstructure:"keys"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Debug    bool           `mapstructure:"debug"`
}

// LLMConfig selects and configures the text generation provider.
type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	Model    string `mapstructure:"model"`
}

// DatabaseConfig configures the local SQLite cache.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// KeysConfig configures encrypted API key storage on disk.
type KeysConfig struct {
	Dir string `mapstructure:"dir"`
}

// TelegramConfig is optional for the CLI, required for the bot.
type TelegramConfig struct {
	BotToken      string `mapstructure:"bot_token"`
	AllowedUserID int64  `mapstructure:"allowed_user_id"`
}

// Load reads settings from a .env file (when present) and environment
// variables, applies defaults and validates the result.
func Load() (*Config, error) {
	// A missing .env file is fine, the environment alone may be enough.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("MENU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("llm.provider", "MENU_LLM_PROVIDER")
	v.BindEnv("llm.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.base_url", "MENU_LLM_BASE_URL")
	v.BindEnv("llm.model", "MENU_LLM_MODEL")
	v.BindEnv("database.path", "MENU_DATABASE_PATH")
	v.BindEnv("keys.dir", "MENU_KEYS_DIR")
	v.BindEnv("telegram.bot_token", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram.allowed_user_id", "TELEGRAM_ALLOW_USER_ID")
	v.BindEnv("debug", "MENU_DEBUG")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("database.path", "data/menu_planner.db")
	v.SetDefault("keys.dir", "data/keys")
	v.SetDefault("debug", false)
}

func validate(cfg *Config) error {
	switch cfg.LLM.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if cfg.Keys.Dir == "" {
		return fmt.Errorf("keys dir is required")
	}
	return nil
}

// MaskKey hides the middle of an API key for log output.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file and environment.
// Priority (highest to lowest): env vars > config file > defaults.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	// Set defaults from struct
	setDefaults(v, cfg)

	// Environment variable support
	v.SetEnvPrefix("SYDNEYEVENTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The deployment environment sets credentials under their provider
	// names rather than the prefixed form.
	_ = v.BindEnv("mongo.uri", "SYDNEYEVENTS_MONGO_URI", "MONGODB_URI")
	_ = v.BindEnv("mongo.database", "SYDNEYEVENTS_MONGO_DATABASE", "MONGODB_DB")
	_ = v.BindEnv("ai.gemini_api_key", "SYDNEYEVENTS_AI_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("ai.groq_api_key", "SYDNEYEVENTS_AI_GROQ_API_KEY", "GROQ_API_KEY")
	_ = v.BindEnv("server.cron_token", "SYDNEYEVENTS_SERVER_CRON_TOKEN", "CRON_SECRET")

	// Load config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Search default locations
		v.SetConfigName("sydneyevents")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".sydneyevents"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.cron_token", cfg.Server.CronToken)

	v.SetDefault("mongo.uri", cfg.Mongo.URI)
	v.SetDefault("mongo.database", cfg.Mongo.Database)
	v.SetDefault("mongo.connect_timeout", cfg.Mongo.ConnectTimeout)
	v.SetDefault("mongo.query_timeout", cfg.Mongo.QueryTimeout)

	v.SetDefault("scraper.navigation_timeout", cfg.Scraper.NavigationTimeout)
	v.SetDefault("scraper.selector_timeout", cfg.Scraper.SelectorTimeout)
	v.SetDefault("scraper.user_agent", cfg.Scraper.UserAgent)
	v.SetDefault("scraper.viewport_width", cfg.Scraper.ViewportWidth)
	v.SetDefault("scraper.viewport_height", cfg.Scraper.ViewportHeight)
	v.SetDefault("scraper.stealth", cfg.Scraper.Stealth)
	v.SetDefault("scraper.sites", cfg.Scraper.Sites)

	v.SetDefault("ai.gemini_model", cfg.AI.GeminiModel)
	v.SetDefault("ai.groq_base_url", cfg.AI.GroqBaseURL)
	v.SetDefault("ai.groq_model", cfg.AI.GroqModel)
	v.SetDefault("ai.max_html_chars", cfg.AI.MaxHTMLChars)
	v.SetDefault("ai.max_tokens", cfg.AI.MaxTokens)
	v.SetDefault("ai.temperature", cfg.AI.Temperature)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}

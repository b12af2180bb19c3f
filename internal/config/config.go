package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for the Sydney events aggregator.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"  yaml:"server"`
	Mongo   MongoConfig   `mapstructure:"mongo"   yaml:"mongo"`
	Scraper ScraperConfig `mapstructure:"scraper" yaml:"scraper"`
	AI      AIConfig      `mapstructure:"ai"      yaml:"ai"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Port int `mapstructure:"port" yaml:"port"`

	// CronToken, when set, is the shared secret the /api/cron endpoint
	// requires as a ?token= query parameter.
	CronToken string `mapstructure:"cron_token" yaml:"cron_token"`
}

// MongoConfig controls the MongoDB store.
type MongoConfig struct {
	URI            string        `mapstructure:"uri"             yaml:"uri"`
	Database       string        `mapstructure:"database"        yaml:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout"   yaml:"query_timeout"`
}

// ScraperConfig controls the scrape pipeline.
type ScraperConfig struct {
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	SelectorTimeout   time.Duration `mapstructure:"selector_timeout"   yaml:"selector_timeout"`
	UserAgent         string        `mapstructure:"user_agent"         yaml:"user_agent"`
	ViewportWidth     int           `mapstructure:"viewport_width"     yaml:"viewport_width"`
	ViewportHeight    int           `mapstructure:"viewport_height"    yaml:"viewport_height"`
	Stealth           bool          `mapstructure:"stealth"            yaml:"stealth"`
	Sites             []SiteConfig  `mapstructure:"sites"              yaml:"sites"`
}

// SiteConfig describes one target site.
type SiteConfig struct {
	Name     string `mapstructure:"name"     yaml:"name"`
	URL      string `mapstructure:"url"      yaml:"url"`
	Selector string `mapstructure:"selector" yaml:"selector"`

	// Adapter selects the extraction logic: "eventbrite", "timeout", or
	// "rules" (field rules below). Defaults to the lowercased name.
	Adapter string `mapstructure:"adapter" yaml:"adapter"`

	// Fetcher is "browser" (default) or "http" for server-rendered sites.
	Fetcher string `mapstructure:"fetcher" yaml:"fetcher"`

	Fields []FieldRule `mapstructure:"fields" yaml:"fields"`
}

// FieldRule defines how one event field is extracted from a card, for the
// rule-driven site adapter.
type FieldRule struct {
	Name      string `mapstructure:"name"      yaml:"name"`
	Selector  string `mapstructure:"selector"  yaml:"selector"`
	Type      string `mapstructure:"type"      yaml:"type"` // css, xpath
	Attribute string `mapstructure:"attribute" yaml:"attribute"`
}

// AIConfig controls the LLM integration.
type AIConfig struct {
	GeminiAPIKey string  `mapstructure:"gemini_api_key" yaml:"gemini_api_key"`
	GeminiModel  string  `mapstructure:"gemini_model"   yaml:"gemini_model"`
	GroqAPIKey   string  `mapstructure:"groq_api_key"   yaml:"groq_api_key"`
	GroqBaseURL  string  `mapstructure:"groq_base_url"  yaml:"groq_base_url"`
	GroqModel    string  `mapstructure:"groq_model"     yaml:"groq_model"`
	MaxHTMLChars int     `mapstructure:"max_html_chars" yaml:"max_html_chars"`
	MaxTokens    int     `mapstructure:"max_tokens"     yaml:"max_tokens"`
	Temperature  float32 `mapstructure:"temperature"    yaml:"temperature"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Mongo: MongoConfig{
			URI:            "mongodb://localhost:27017",
			Database:       "sydney_events",
			ConnectTimeout: 10 * time.Second,
			QueryTimeout:   30 * time.Second,
		},
		Scraper: ScraperConfig{
			NavigationTimeout: 60 * time.Second,
			SelectorTimeout:   10 * time.Second,
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			ViewportWidth:     1920,
			ViewportHeight:    1080,
			Stealth:           false,
			Sites: []SiteConfig{
				{
					Name:     "Eventbrite",
					URL:      "https://www.eventbrite.com.au/d/australia--sydney/all-events/",
					Selector: ".search-event-card-square",
					Adapter:  "eventbrite",
					Fetcher:  "browser",
				},
				{
					Name:     "TimeOut",
					URL:      "https://www.timeout.com/sydney/things-to-do/things-to-do-in-sydney-this-weekend",
					Selector: ".tile",
					Adapter:  "timeout",
					Fetcher:  "browser",
				},
			},
		},
		AI: AIConfig{
			GeminiModel:  "gemini-1.5-flash",
			GroqBaseURL:  "https://api.groq.com/openai/v1",
			GroqModel:    "llama3-70b-8192",
			MaxHTMLChars: 50000,
			MaxTokens:    4000,
			Temperature:  0.2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

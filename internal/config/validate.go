package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", cfg.Server.Port)
	}

	if cfg.Mongo.ConnectTimeout <= 0 {
		return fmt.Errorf("mongo.connect_timeout must be > 0")
	}
	if cfg.Mongo.QueryTimeout <= 0 {
		return fmt.Errorf("mongo.query_timeout must be > 0")
	}

	if cfg.Scraper.NavigationTimeout <= 0 {
		return fmt.Errorf("scraper.navigation_timeout must be > 0")
	}
	if cfg.Scraper.SelectorTimeout <= 0 {
		return fmt.Errorf("scraper.selector_timeout must be > 0")
	}
	if len(cfg.Scraper.Sites) == 0 {
		return fmt.Errorf("scraper.sites: at least one site is required")
	}
	for _, site := range cfg.Scraper.Sites {
		if site.Name == "" {
			return fmt.Errorf("scraper.sites: every site needs a name")
		}
		if err := ValidateURL(site.URL); err != nil {
			return fmt.Errorf("scraper.sites[%s]: %w", site.Name, err)
		}
		if site.Fetcher != "" && site.Fetcher != "browser" && site.Fetcher != "http" {
			return fmt.Errorf("scraper.sites[%s]: fetcher must be 'browser' or 'http', got %q", site.Name, site.Fetcher)
		}
		for _, rule := range site.Fields {
			if rule.Type != "" && rule.Type != "css" && rule.Type != "xpath" {
				return fmt.Errorf("scraper.sites[%s]: field %q type must be 'css' or 'xpath', got %q", site.Name, rule.Name, rule.Type)
			}
		}
	}

	if cfg.AI.MaxHTMLChars <= 0 {
		return fmt.Errorf("ai.max_html_chars must be > 0")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	return nil
}

// Warnings reports non-fatal configuration gaps. A missing AI credential
// only fails the call that depends on it, so startup just logs it.
func Warnings(cfg *Config) []string {
	var warnings []string
	if cfg.AI.GeminiAPIKey == "" {
		warnings = append(warnings, "GEMINI_API_KEY is not set; Gemini extraction disabled")
	}
	if cfg.AI.GroqAPIKey == "" {
		warnings = append(warnings, "GROQ_API_KEY is not set; Groq extraction, summaries and recommendations disabled")
	}
	return warnings
}

// ValidateURL checks if a URL string is valid for scraping.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}

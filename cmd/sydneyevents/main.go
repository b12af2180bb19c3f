package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/ai"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/api"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/config"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/notify"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/scraper"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/sites"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/storage"
)

var (
	cfgFile   string
	verbose   bool
	storeKind string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "sydneyevents",
		Short: "Sydney events aggregator",
		Long: `sydneyevents scrapes event listings from Sydney event sites,
normalizes and deduplicates them into a single store, notifies
subscribers of new events, and serves them over a REST API with
AI-assisted extraction, summaries, and recommendations.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "mongo", "event store backend: mongo, memory")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		Long:  "Start the HTTP API. Scrape runs are triggered via GET /api/scrape or the token-gated GET /api/cron.",
		RunE:  runServe,
	}
}

func scrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Run one scrape of all configured sites and exit",
		RunE:  runScrape,
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sydneyevents %s\n", config.Version)
		},
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, cfg, err := setup()
	if err != nil {
		return err
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore(store, logger)

	s, completer := buildScraper(cfg, store, logger)
	if s == nil {
		return errors.New("no sites configured")
	}
	defer closeCompleter(completer, logger)

	recommender := ai.NewRecommender(completer, cfg.AI.MaxTokens, logger)
	summarizer := ai.NewSummarizer(completer, logger)
	server := api.NewServer(cfg.Server.Port, cfg.Server.CronToken, store, s, recommender, summarizer, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal, shutting down...", "signal", sig.String())
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	}
}

func runScrape(cmd *cobra.Command, args []string) error {
	logger, cfg, err := setup()
	if err != nil {
		return err
	}

	store, err := openStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer closeStore(store, logger)

	s, completer := buildScraper(cfg, store, logger)
	if s == nil {
		return errors.New("no sites configured")
	}
	defer closeCompleter(completer, logger)

	stats, err := s.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("scrape run: %w", err)
	}

	fmt.Printf("Scraped %d events (%d inserted, %d updated) from %d sites in %s\n",
		stats.EventsScraped, stats.EventsInserted, stats.EventsUpdated,
		stats.SitesAttempted, stats.Duration)
	return nil
}

// setup loads .env, the config file, and the logger.
func setup() (*slog.Logger, *config.Config, error) {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(cfg)
	for _, warning := range config.Warnings(cfg) {
		logger.Warn(warning)
	}
	return logger, cfg, nil
}

func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else {
		switch cfg.Logging.Level {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func openStore(cfg *config.Config, logger *slog.Logger) (storage.Store, error) {
	if storeKind == "memory" {
		logger.Warn("using in-memory store, data will not survive restarts")
		return storage.NewMemoryStore(), nil
	}
	return storage.NewMongoStore(&cfg.Mongo, logger)
}

// closeCompleter shuts down backends that hold a connection, which
// today is the Gemini client's gRPC channel.
func closeCompleter(completer ai.Completer, logger *slog.Logger) {
	c, ok := completer.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		logger.Warn("failed to close AI client", "error", err)
	}
}

func closeStore(store storage.Store, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Close(ctx); err != nil {
		logger.Warn("failed to close store", "error", err)
	}
}

// buildScraper assembles the pipeline. Missing AI credentials are not
// fatal: the extractor degrades to placeholder events and the
// recommendation and summary routes report the misconfiguration.
func buildScraper(cfg *config.Config, store storage.Store, logger *slog.Logger) (*scraper.Scraper, ai.Completer) {
	registry, err := sites.Build(cfg.Scraper.Sites)
	if err != nil {
		logger.Error("failed to build site registry", "error", err)
		return nil, nil
	}

	completer, err := ai.NewCompleter(&cfg.AI)
	if err != nil {
		logger.Warn("AI completion unavailable", "error", err)
		completer = nil
	} else {
		logger.Info("AI completion configured", "provider", completer.Provider())
	}

	extractor := ai.NewExtractor(completer, cfg.AI.MaxHTMLChars, cfg.AI.MaxTokens, logger)
	notifier := notify.NewNotifier(store, nil, logger)
	return scraper.New(cfg, registry, extractor, store, notifier, logger), completer
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/ai"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/config"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/scraper"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/storage"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/types"
)

// ScrapeRunner triggers one full scrape run.
type ScrapeRunner interface {
	Run(ctx context.Context) (*scraper.RunStats, error)
}

// Server exposes the REST API over the event store and the scrape
// pipeline.
type Server struct {
	mux         *http.ServeMux
	port        int
	cronToken   string
	store       storage.Store
	runner      ScrapeRunner
	recommender *ai.Recommender
	summarizer  *ai.Summarizer
	logger      *slog.Logger

	now func() time.Time
}

// NewServer wires the API routes. runner, recommender, and summarizer
// may be nil; their routes respond 503 in that case.
func NewServer(port int, cronToken string, store storage.Store, runner ScrapeRunner, recommender *ai.Recommender, summarizer *ai.Summarizer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		mux:         http.NewServeMux(),
		port:        port,
		cronToken:   cronToken,
		store:       store,
		runner:      runner,
		recommender: recommender,
		summarizer:  summarizer,
		logger:      logger.With("component", "api_server"),
		now:         time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the route multiplexer, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe blocks serving the API.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	// Scraping
	s.mux.HandleFunc("GET /api/scrape", s.handleScrape)
	s.mux.HandleFunc("GET /api/cron", s.handleCron)

	// Events
	s.mux.HandleFunc("GET /api/events", s.handleListEvents)
	s.mux.HandleFunc("POST /api/events/save", s.handleSaveEvent)
	s.mux.HandleFunc("GET /api/summary", s.handleSummary)

	// Subscriptions and subscribers
	s.mux.HandleFunc("GET /api/subscriptions", s.handleListSubscriptions)
	s.mux.HandleFunc("POST /api/email", s.handleEmailCapture)
	s.mux.HandleFunc("GET /api/subscribers", s.handleListSubscribers)
	s.mux.HandleFunc("POST /api/subscribers", s.handleAddSubscriber)

	// Recommendations
	s.mux.HandleFunc("POST /api/recommendations", s.handleRecommendations)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("health check store ping failed", "error", err)
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	s.jsonResponse(w, code, map[string]string{
		"status":  status,
		"version": config.Version,
	})
}

func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	s.runScrape(w, r)
}

// handleCron is the scheduler entry point. The token check only
// applies when a cron token is configured.
func (s *Server) handleCron(w http.ResponseWriter, r *http.Request) {
	if s.cronToken != "" && r.URL.Query().Get("token") != s.cronToken {
		s.jsonResponse(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	s.runScrape(w, r)
}

func (s *Server) runScrape(w http.ResponseWriter, r *http.Request) {
	if s.runner == nil {
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"error": "scraper not configured"})
		return
	}

	runID := uuid.NewString()
	s.logger.Info("scrape run requested", "run_id", runID)

	stats, err := s.runner.Run(r.Context())
	if err != nil {
		s.logger.Error("scrape run failed", "run_id", runID, "error", err)
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("scraped %d events (%d new)", stats.EventsScraped, stats.EventsInserted),
		"count":   stats.EventsScraped,
		"runId":   runID,
		"stats":   stats,
	})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.store.ListEvents(r.Context())
	if err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	filter := r.URL.Query().Get("filter")
	switch filter {
	case "", "all":
	case "today", "tomorrow", "weekend", "week", "month":
		events = ai.FilterByDate(events, filter, s.now())
	default:
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "unknown filter: " + filter})
		return
	}

	if events == nil {
		events = []types.Event{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"events": events,
		"count":  len(events),
	})
}

// handleSaveEvent bulk-upserts caller-provided events, the manual
// counterpart to a scrape run.
func (s *Server) handleSaveEvent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Events []types.Event `json:"events"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if len(body.Events) == 0 {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "events are required"})
		return
	}
	for i, ev := range body.Events {
		if ev.Title == "" || ev.Source == "" {
			s.jsonResponse(w, http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("event %d: title and source are required", i),
			})
			return
		}
	}

	result, err := s.store.UpsertEvents(r.Context(), body.Events)
	if err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   result.InsertedCount + result.UpdatedCount,
	})
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.store.ListSubscriptions(r.Context())
	if err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if subs == nil {
		subs = []types.Subscription{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"subscriptions": subs,
		"count":         len(subs),
	})
}

// handleEmailCapture records the visitor's email on their way to the
// event's ticket page. The response carries the ticket URL; the
// frontend performs the redirect.
func (s *Server) handleEmailCapture(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email      string `json:"email"`
		EventID    string `json:"eventId"`
		EventTitle string `json:"eventTitle"`
		Subscribe  bool   `json:"subscribe"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if !validEmail(body.Email) || body.EventID == "" {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "email and eventId are required"})
		return
	}

	// The subscription is recorded even when the event has since
	// disappeared from the store; the lookup only enriches the title
	// and provides the ticket URL.
	title := body.EventTitle
	redirectURL := ""
	event, err := s.store.GetEvent(r.Context(), body.EventID)
	switch {
	case err == nil:
		redirectURL = event.URL
		if title == "" {
			title = event.Title
		}
	case errors.Is(err, types.ErrEventNotFound):
		s.logger.Warn("email capture for unknown event", "event_id", body.EventID)
	default:
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	now := s.now()
	if body.Subscribe {
		if err := s.store.UpsertSubscriber(r.Context(), body.Email, now); err != nil {
			s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}
	sub := types.Subscription{
		Email:      body.Email,
		EventID:    body.EventID,
		EventTitle: title,
		Timestamp:  now,
	}
	if err := s.store.AddSubscription(r.Context(), sub); err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success":     true,
		"redirectUrl": redirectURL,
	})
}

func (s *Server) handleListSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := s.store.ListSubscribers(r.Context())
	if err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if subs == nil {
		subs = []types.Subscriber{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"subscribers": subs,
		"count":       len(subs),
	})
}

// handleAddSubscriber subscribes or, with subscribe=false,
// unsubscribes an email.
func (s *Server) handleAddSubscriber(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email     string `json:"email"`
		Subscribe *bool  `json:"subscribe"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if !validEmail(body.Email) {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "a valid email is required"})
		return
	}

	if body.Subscribe != nil && !*body.Subscribe {
		if err := s.store.DeleteSubscriber(r.Context(), body.Email); err != nil {
			s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		s.jsonResponse(w, http.StatusOK, map[string]string{"status": "unsubscribed"})
		return
	}

	if err := s.store.UpsertSubscriber(r.Context(), body.Email, s.now()); err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.jsonResponse(w, http.StatusCreated, map[string]string{"status": "subscribed"})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "id is required"})
		return
	}
	if s.summarizer == nil {
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"error": "summarizer not configured"})
		return
	}

	event, err := s.store.GetEvent(r.Context(), id)
	if err != nil {
		if errors.Is(err, types.ErrEventNotFound) {
			s.jsonResponse(w, http.StatusNotFound, map[string]string{"error": "event not found"})
			return
		}
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	summary, err := s.summarizer.Summarize(r.Context(), *event)
	if err != nil {
		var cfgErr *types.ConfigurationError
		if errors.As(err, &cfgErr) {
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
			return
		}
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"eventId": event.ID,
		"summary": summary,
	})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Preferences *types.Preferences `json:"preferences"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if body.Preferences == nil {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "preferences are required"})
		return
	}
	if s.recommender == nil {
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"error": "recommender not configured"})
		return
	}

	events, err := s.store.ListEvents(r.Context())
	if err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	recs, err := s.recommender.Recommend(r.Context(), *body.Preferences, events)
	if err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if recs == nil {
		recs = []types.Recommendation{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"recommendations": recs,
		"count":           len(recs),
	})
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && strings.Contains(email[at+1:], ".")
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

package fetcher

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/adityaraj161616/SydneyEventSrapper/internal/config"
	"github.com/adityaraj161616/SydneyEventSrapper/internal/types"
)

// maxBodySize caps how much of a document is read; event listing pages
// are nowhere near this.
const maxBodySize = 10 * 1024 * 1024

// HTTPFetcher implements Fetcher using net/http, for sites that render
// their listings server-side and need no browser.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// NewHTTPFetcher creates a new HTTP fetcher.
func NewHTTPFetcher(cfg *config.ScraperConfig, logger *slog.Logger) *HTTPFetcher {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DisableCompression:  true, // We handle decompression ourselves (including brotli)
	}

	return &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.NavigationTimeout,
		},
		userAgent: cfg.UserAgent,
		logger:    logger.With("component", "http_fetcher"),
	}
}

// Fetch executes a GET request and returns the decompressed document.
func (f *HTTPFetcher) Fetch(ctx context.Context, req Request) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return "", &types.NavigationError{URL: req.URL, Err: err}
	}

	httpReq.Header.Set("User-Agent", f.userAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-AU,en;q=0.9")
	httpReq.Header.Set("Accept-Encoding", "gzip, deflate, br")

	start := time.Now()
	httpResp, err := f.client.Do(httpReq)
	if err != nil {
		return "", &types.NavigationError{URL: req.URL, Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		return "", &types.NavigationError{
			URL: req.URL,
			Err: fmt.Errorf("HTTP %d", httpResp.StatusCode),
		}
	}

	reader, err := decompressReader(httpResp, io.LimitReader(httpResp.Body, maxBodySize))
	if err != nil {
		return "", &types.NavigationError{URL: req.URL, Err: err}
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return "", &types.NavigationError{URL: req.URL, Err: err}
	}

	f.logger.Debug("fetch complete",
		"url", req.URL,
		"status", httpResp.StatusCode,
		"size", len(body),
		"duration", time.Since(start),
	)

	return string(body), nil
}

// Close releases resources.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

// Type returns the fetcher type identifier.
func (f *HTTPFetcher) Type() string {
	return "http"
}

// decompressReader wraps a reader with the appropriate decompressor.
// Handles gzip, deflate, and brotli (br) encodings.
func decompressReader(resp *http.Response, reader io.Reader) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(reader)
	case "deflate":
		return flate.NewReader(reader), nil
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}

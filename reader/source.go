package reader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"leaderflow/config"
	"leaderflow/logger"
)

// maxResponseBytes bounds how much of an upstream response is read. Affiliate
// leaderboards are small; anything bigger is not the document we want.
const maxResponseBytes = 8 * 1024 * 1024

// Payload is a successfully fetched and decoded upstream document.
type Payload struct {
	// Data is the decoded JSON value, shape unknown.
	Data interface{}
	// URL is the candidate that answered.
	URL string
	// Tried lists every candidate attempted, in order.
	Tried []string
}

// Source fetches one affiliate API. All per-source behavior comes from the
// configuration record; sources are structurally identical.
type Source struct {
	cfg     config.SourceConfig
	client  *http.Client
	limiter *rate.Limiter
	log     *logger.Log
	now     func() time.Time
}

// NewSource creates a Source from its configuration and the shared reader
// settings.
func NewSource(cfg config.SourceConfig, rcfg config.ReaderConfig) *Source {
	rps := rcfg.RateLimit.RequestsPerSecond
	if rps < 1 {
		rps = 1
	}
	burst := rcfg.RateLimit.BurstSize
	if burst < 1 {
		burst = 1
	}

	timeout := rcfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Source{
		cfg:     cfg,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		log:     logger.GetLogger(),
		now:     time.Now,
	}
}

// Name returns the configured source name.
func (s *Source) Name() string { return s.cfg.Name }

// Fetch tries each candidate URL in order and returns the first decodable
// JSON response. Network failures, non-2xx statuses and malformed bodies are
// recoverable per candidate; exhausting every candidate is the source's
// failure for this cycle.
func (s *Source) Fetch(ctx context.Context) (*Payload, error) {
	log := s.log.WithComponent("reader").WithSource(s.cfg.Name)

	candidates := s.candidates()
	if len(candidates) == 0 {
		return nil, fmt.Errorf("source %q has no candidate URLs", s.cfg.Name)
	}

	tried := make([]string, 0, len(candidates))
	var lastErr error
	for _, candidate := range candidates {
		tried = append(tried, candidate)

		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		start := time.Now()
		data, err := s.fetchCandidate(ctx, candidate)
		if err != nil {
			lastErr = err
			log.WithError(err).WithFields(logger.Fields{"url": candidate}).Warn("candidate failed, trying next")
			continue
		}

		logger.LogPerformanceEntry(log, "reader", "fetch", time.Since(start), logger.Fields{
			"url": candidate,
		})
		return &Payload{Data: data, URL: candidate, Tried: tried}, nil
	}

	// Tried still travels with the error so failure snapshots can record
	// which URLs were attempted.
	return &Payload{Tried: tried}, fmt.Errorf("source %q: all %d candidates failed: %w", s.cfg.Name, len(tried), lastErr)
}

// candidates expands every base URL × path combination into concrete request
// URLs, substituting {param} placeholders and attaching the date window and
// query auth.
func (s *Source) candidates() []string {
	out := make([]string, 0, len(s.cfg.BaseURLs)*len(s.cfg.Paths))
	paths := s.cfg.Paths
	if len(paths) == 0 {
		paths = []string{""}
	}

	for _, base := range s.cfg.BaseURLs {
		base = strings.TrimRight(strings.TrimSpace(base), "/")
		for _, path := range paths {
			full := base + s.expandPath(path)
			if u := s.withQuery(full); u != "" {
				out = append(out, u)
			}
		}
	}
	return out
}

func (s *Source) expandPath(path string) string {
	for name, value := range s.cfg.Params {
		path = strings.ReplaceAll(path, "{"+name+"}", url.PathEscape(value))
	}
	return path
}

func (s *Source) withQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		s.log.WithComponent("reader").WithSource(s.cfg.Name).WithError(err).WithFields(logger.Fields{
			"url": raw,
		}).Warn("skipping malformed candidate URL")
		return ""
	}

	q := u.Query()
	if s.cfg.DateRange.Style != "body" {
		if w, ok := windowFromConfig(s.cfg.DateRange, s.now()); ok {
			applyQueryWindow(q, w, s.cfg.DateRange.Mode == "month")
		}
	}
	if s.cfg.Auth.Type == "query" {
		q.Set(s.cfg.Auth.Param, s.cfg.Auth.Key)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (s *Source) fetchCandidate(ctx context.Context, candidate string) (interface{}, error) {
	var body io.Reader
	if s.cfg.Method == http.MethodPost {
		payload := map[string]interface{}{}
		if s.cfg.DateRange.Style == "body" {
			if w, ok := windowFromConfig(s.cfg.DateRange, s.now()); ok {
				payload = bodyWindow(w)
			}
		}
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, s.cfg.Method, candidate, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for name, value := range s.cfg.Headers {
		req.Header.Set(name, value)
	}
	s.applyHeaderAuth(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, candidate, truncate(raw, 200))
	}

	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("invalid JSON from %s: %s", candidate, truncate(raw, 200))
	}

	logger.IncrementFetch(s.cfg.Name, len(raw))
	return data, nil
}

func (s *Source) applyHeaderAuth(req *http.Request) {
	if s.cfg.Auth.Type != "header" {
		return
	}
	switch s.cfg.Auth.Scheme {
	case "bearer":
		req.Header.Set(s.cfg.Auth.Header, "Bearer "+s.cfg.Auth.Key)
	case "token":
		req.Header.Set(s.cfg.Auth.Header, "Token "+s.cfg.Auth.Key)
	default:
		req.Header.Set(s.cfg.Auth.Header, s.cfg.Auth.Key)
	}
}

func truncate(raw []byte, n int) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > n {
		return text[:n]
	}
	return text
}

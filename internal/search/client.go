// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search issues trademark searches against the remote search endpoint
// and normalizes its loosely shaped responses into types.SearchResult.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/pdiddy/tmsearch/internal/httputil"
	"github.com/pdiddy/tmsearch/pkg/types"
)

// DefaultBaseURL is the public trademark search host.
const DefaultBaseURL = "https://vit-tm-task.api.trademarkia.app"

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "tmsearch/0.1"

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 8 << 20

	maxRemoteMessage = 120
)

// Client calls the search endpoint. It holds no per-search state and is safe
// for concurrent use; every Search call is exactly one logical request.
type Client struct {
	HTTP    *http.Client
	Config  types.SearchConfig
	Limiter *rate.Limiter
	Log     zerolog.Logger
}

// NewClient builds a Client from cfg, filling unset fields with defaults.
func NewClient(cfg types.SearchConfig, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Rows <= 0 {
		cfg.Rows = types.DefaultRows
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	c := &Client{
		HTTP:   &http.Client{},
		Config: cfg,
		Log:    log,
	}
	if cfg.RateLimit > 0 {
		c.Limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return c
}

// requestBody is the JSON payload accepted by the endpoint. Lists are always
// present; the endpoint rejects null where it expects an array.
type requestBody struct {
	InputQuery     string   `json:"input_query"`
	InputQueryType string   `json:"input_query_type"`
	SortBy         string   `json:"sort_by"`
	Status         []string `json:"status"`
	ExactMatch     bool     `json:"exact_match"`
	DateQuery      bool     `json:"date_query"`
	Owners         []string `json:"owners"`
	Attorneys      []string `json:"attorneys"`
	LawFirms       []string `json:"law_firms"`
	Description    []string `json:"mark_description_description"`
	Classes        []string `json:"classes"`
	Page           int      `json:"page"`
	Rows           int      `json:"rows"`
	SortOrder      string   `json:"sort_order"`
	States         []string `json:"states"`
	Counties       []string `json:"counties"`
}

func newRequestBody(p types.SearchParameters, rows int) requestBody {
	f := p.Filters
	// Status values differing only in case are one filter to the endpoint.
	status := make([]string, 0, len(f.Status))
	for _, s := range f.Status {
		s = strings.ToLower(s)
		if !slices.Contains(status, s) {
			status = append(status, s)
		}
	}
	return requestBody{
		InputQuery:     p.QueryText,
		InputQueryType: "",
		SortBy:         "default",
		Status:         status,
		ExactMatch:     f.ExactMatch,
		DateQuery:      false,
		Owners:         orEmpty(f.Owners),
		Attorneys:      orEmpty(f.Attorneys),
		LawFirms:       orEmpty(f.LawFirms),
		Description:    orEmpty(f.DescriptionTerms),
		Classes:        orEmpty(f.Classes),
		Page:           p.Page,
		Rows:           rows,
		SortOrder:      "desc",
		States:         orEmpty(f.States),
		Counties:       orEmpty(f.Counties),
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// endpoint returns the search URL for a country code.
func (c *Client) endpoint(country string) string {
	if country == "" {
		country = types.DefaultCountry
	}
	return strings.TrimRight(c.Config.BaseURL, "/") + "/api/v3/" + url.PathEscape(country)
}

// Search runs one search for p. Failures are *NetworkError, *RemoteError,
// *ParseError or *TimeoutError. A response without hits is an empty result.
func (c *Client) Search(ctx context.Context, p types.SearchParameters) (types.SearchResult, error) {
	if c.Config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Config.Timeout)
		defer cancel()
	}

	payload, err := json.Marshal(newRequestBody(p, c.Config.Rows))
	if err != nil {
		return types.SearchResult{}, fmt.Errorf("encoding search request: %w", err)
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			if ctx.Err() == nil {
				// Wait refuses early when the token would arrive after the deadline.
				err = context.DeadlineExceeded
			}
			return types.SearchResult{}, classifyTransport(err, c.Config.Timeout)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(p.Country), bytes.NewReader(payload))
	if err != nil {
		return types.SearchResult{}, fmt.Errorf("creating request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.Config.UserAgent)
	req.Header.Set("X-Request-Id", requestID)

	log := c.Log.With().Str("request_id", requestID).Str("country", p.Country).Int("page", p.Page).Logger()
	log.Debug().Str("query", p.QueryText).Msg("search request")
	start := time.Now()

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.Config.MaxAttempts)
	if err != nil {
		err = classifyTransport(err, c.Config.Timeout)
		log.Debug().Err(err).Dur("elapsed", time.Since(start)).Msg("search transport failure")
		return types.SearchResult{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return types.SearchResult{}, classifyTransport(err, c.Config.Timeout)
	}
	log.Debug().Int("status", resp.StatusCode).Int("bytes", len(body)).Dur("elapsed", time.Since(start)).Msg("search response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return types.SearchResult{}, &RemoteError{Status: resp.StatusCode, Message: remoteMessage(resp, body)}
	}

	var wr wireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return types.SearchResult{}, &ParseError{RawBody: string(body), Err: err}
	}
	return normalize(wr), nil
}

// remoteMessage picks a short description for a failed response: the
// endpoint's own message when it sent one, else the status text.
func remoteMessage(resp *http.Response, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil {
		for _, m := range []string{payload.Message, payload.Error, payload.Detail} {
			if m != "" {
				return m
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "<") {
		return truncate(text, maxRemoteMessage)
	}
	if resp.Status != "" {
		return resp.Status
	}
	return http.StatusText(resp.StatusCode)
}

// IsCanceled reports whether err came from the caller cancelling the search,
// as opposed to a failure of the search itself.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

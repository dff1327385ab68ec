// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tmsearch/internal/httputil"
	"github.com/pdiddy/tmsearch/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = 1 * time.Millisecond
}

// --- Mock search server ---

const sampleSearchJSON = `{
  "hits": {
    "total": {"value": 23, "relation": "eq"},
    "hits": [
      {
        "_id": "97000001",
        "_source": {
          "mark_identification": "NIKE",
          "current_owner": "Nike, Inc.",
          "registration_number": "0978952",
          "registration_date": 1079740800,
          "renewal_date": 1711929600,
          "status_type": "registered",
          "mark_description_description": ["athletic shoes", "apparel"],
          "class_codes": ["025", "035", "018"]
        }
      },
      {
        "_id": "97000002",
        "_source": {
          "mark_identification": "NIKE AIR",
          "current_owner": "Nike, Inc.",
          "registration_number": 1234567,
          "status_type": "abandoned"
        }
      }
    ]
  },
  "aggregations": {
    "current_owners": {"buckets": [{"key": "Nike, Inc.", "doc_count": 20}, {"key": "Acme", "doc_count": 3}]},
    "law_firms": {"buckets": [{"key": "Baker LLP", "doc_count": 5}]},
    "attorneys": {"buckets": []}
  }
}`

type capturedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   map[string]any
}

func searchTestServer(t *testing.T, statusCode int, body string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			raw, _ := io.ReadAll(r.Body)
			captured.Method = r.Method
			captured.Path = r.URL.Path
			captured.Header = r.Header.Clone()
			captured.Body = map[string]any{}
			_ = json.Unmarshal(raw, &captured.Body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testClient(ts *httptest.Server) *Client {
	c := NewClient(types.SearchConfig{
		HTTPConfig: types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/0.1"},
		BaseURL:    ts.URL,
	}, zerolog.Nop())
	c.HTTP = ts.Client()
	return c
}

// --- Request payload ---

func TestSearchRequestPayload(t *testing.T) {
	var got capturedRequest
	ts := searchTestServer(t, http.StatusOK, sampleSearchJSON, &got)

	p := types.SearchParameters{
		QueryText: "nike",
		Country:   "in",
		Page:      2,
		Filters: types.Filters{
			Status:     []string{"Registered", "Pending"},
			Owners:     []string{"Nike, Inc."},
			Classes:    []string{"25"},
			ExactMatch: true,
		},
	}
	_, err := testClient(ts).Search(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/api/v3/in", got.Path)
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.Equal(t, "test/0.1", got.Header.Get("User-Agent"))
	assert.NotEmpty(t, got.Header.Get("X-Request-Id"))

	b := got.Body
	assert.Equal(t, "nike", b["input_query"])
	assert.Equal(t, "", b["input_query_type"])
	assert.Equal(t, "default", b["sort_by"])
	assert.Equal(t, []any{"registered", "pending"}, b["status"])
	assert.Equal(t, true, b["exact_match"])
	assert.Equal(t, false, b["date_query"])
	assert.Equal(t, []any{"Nike, Inc."}, b["owners"])
	assert.Equal(t, []any{}, b["attorneys"])
	assert.Equal(t, []any{}, b["law_firms"])
	assert.Equal(t, []any{}, b["mark_description_description"])
	assert.Equal(t, []any{"25"}, b["classes"])
	assert.Equal(t, float64(2), b["page"])
	assert.Equal(t, float64(10), b["rows"])
	assert.Equal(t, "desc", b["sort_order"])
	assert.Equal(t, []any{}, b["states"])
	assert.Equal(t, []any{}, b["counties"])
}

func TestRequestBodyFoldsStatusCase(t *testing.T) {
	p := types.SearchParameters{Filters: types.Filters{
		Status: []string{"Registered", "registered", "Cancelled", "cancelled"},
	}}
	body := newRequestBody(p, 10)
	assert.Equal(t, []string{"registered", "cancelled"}, body.Status)
}

// --- Normalization ---

func TestSearchNormalizesHits(t *testing.T) {
	ts := searchTestServer(t, http.StatusOK, sampleSearchJSON, nil)

	res, err := testClient(ts).Search(context.Background(), types.DefaultParameters())
	require.NoError(t, err)

	assert.Equal(t, 23, res.TotalCount)
	assert.Equal(t, 3, res.TotalPages(10))
	require.Len(t, res.Items, 2)

	r0 := res.Items[0]
	assert.Equal(t, "97000001", r0.ID)
	assert.Equal(t, "NIKE", r0.MarkIdentification)
	assert.Equal(t, "Nike, Inc.", r0.CurrentOwner)
	assert.Equal(t, "0978952", r0.RegistrationNumber)
	require.NotNil(t, r0.RegistrationDate)
	assert.Equal(t, int64(1079740800), *r0.RegistrationDate)
	reg, ok := r0.Registered()
	require.True(t, ok)
	assert.Equal(t, 2004, reg.Year())
	assert.Equal(t, "registered", r0.StatusType)
	assert.Equal(t, []string{"athletic shoes", "apparel"}, r0.DescriptionTerms)
	assert.Equal(t, []string{"025", "035", "018"}, r0.ClassCodes)

	r1 := res.Items[1]
	assert.Equal(t, "1234567", r1.RegistrationNumber, "numeric registration numbers become strings")
	assert.Nil(t, r1.RegistrationDate)
	assert.Nil(t, r1.RenewalDate)
	_, ok = r1.Renewal()
	assert.False(t, ok)
	assert.NotNil(t, r1.DescriptionTerms)
	assert.Empty(t, r1.DescriptionTerms)

	assert.Equal(t, []types.Facet{{Label: "Nike, Inc.", Count: 20}, {Label: "Acme", Count: 3}}, res.Facets.Owners)
	assert.Equal(t, []types.Facet{{Label: "Baker LLP", Count: 5}}, res.Facets.LawFirms)
	assert.Empty(t, res.Facets.Attorneys)
}

func TestSearchMissingHitsIsEmptyResult(t *testing.T) {
	for name, body := range map[string]string{
		"no hits key":     `{"took": 3}`,
		"null hits":       `{"hits": null}`,
		"hits without []": `{"hits": {"total": {"value": 0}}}`,
		"null document":   `null`,
	} {
		t.Run(name, func(t *testing.T) {
			ts := searchTestServer(t, http.StatusOK, body, nil)
			res, err := testClient(ts).Search(context.Background(), types.DefaultParameters())
			require.NoError(t, err)
			assert.Equal(t, 0, res.TotalCount)
			assert.NotNil(t, res.Items)
			assert.Empty(t, res.Items)
		})
	}
}

func TestSearchBareNumericTotal(t *testing.T) {
	ts := searchTestServer(t, http.StatusOK, `{"hits":{"total":41,"hits":[]}}`, nil)
	res, err := testClient(ts).Search(context.Background(), types.DefaultParameters())
	require.NoError(t, err)
	assert.Equal(t, 41, res.TotalCount)
	assert.Equal(t, 5, res.TotalPages(10))
}

func TestSearchUnreadableDateIsAbsent(t *testing.T) {
	body := `{"hits":{"total":{"value":1},"hits":[{"_id":"1","_source":{"registration_date":"soon","renewal_date":"1711929600"}}]}}`
	ts := searchTestServer(t, http.StatusOK, body, nil)
	res, err := testClient(ts).Search(context.Background(), types.DefaultParameters())
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Nil(t, res.Items[0].RegistrationDate)
	require.NotNil(t, res.Items[0].RenewalDate)
	assert.Equal(t, int64(1711929600), *res.Items[0].RenewalDate)
}

func TestSearchOutOfRangeDateIsAbsent(t *testing.T) {
	body := `{"hits":{"total":{"value":1},"hits":[{"_id":"1","_source":{"registration_date":1e300,"renewal_date":"-1e300"}}]}}`
	ts := searchTestServer(t, http.StatusOK, body, nil)
	res, err := testClient(ts).Search(context.Background(), types.DefaultParameters())
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Nil(t, res.Items[0].RegistrationDate)
	assert.Nil(t, res.Items[0].RenewalDate)
}

// --- Error taxonomy ---

func TestSearchRemoteError(t *testing.T) {
	ts := searchTestServer(t, http.StatusBadGateway, `{"message":"upstream unavailable"}`, nil)

	_, err := testClient(ts).Search(context.Background(), types.DefaultParameters())
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusBadGateway, remoteErr.Status)
	assert.Equal(t, "upstream unavailable", remoteErr.Message)
	assert.Contains(t, Message(err), "HTTP 502")
}

func TestSearchRemoteErrorHTMLBody(t *testing.T) {
	ts := searchTestServer(t, http.StatusNotFound, `<html>nope</html>`, nil)

	_, err := testClient(ts).Search(context.Background(), types.DefaultParameters())
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, "404 Not Found", remoteErr.Message)
}

func TestSearchRemoteErrorTruncatesOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("a", 119) + "ééé"
	ts := searchTestServer(t, http.StatusInternalServerError, body, nil)

	_, err := testClient(ts).Search(context.Background(), types.DefaultParameters())
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.True(t, utf8.ValidString(remoteErr.Message))
	assert.Equal(t, strings.Repeat("a", 119)+"é...", remoteErr.Message)
}

func TestParseErrorTruncatesOnRuneBoundary(t *testing.T) {
	err := &ParseError{RawBody: strings.Repeat("a", 199) + "ééé"}
	assert.Contains(t, err.Error(), "é...")
	assert.NotContains(t, err.Error(), `\x`)
}

func TestSearchParseError(t *testing.T) {
	for name, body := range map[string]string{
		"not json":   `<html>oops</html>`,
		"array":      `[1,2,3]`,
		"empty":      ``,
		"bad hits":   `{"hits": "many"}`,
		"bad source": `{"hits":{"hits":[{"_id":true}]}}`,
	} {
		t.Run(name, func(t *testing.T) {
			ts := searchTestServer(t, http.StatusOK, body, nil)
			_, err := testClient(ts).Search(context.Background(), types.DefaultParameters())
			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Equal(t, body, parseErr.RawBody)
		})
	}
}

func TestSearchTimeoutError(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	c := testClient(ts)
	c.Config.Timeout = 50 * time.Millisecond

	_, err := c.Search(context.Background(), types.DefaultParameters())
	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, 50*time.Millisecond, timeoutErr.After)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSearchTimeoutCoversRetries(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	c := testClient(ts)
	c.Config.Timeout = 100 * time.Millisecond
	c.Config.MaxAttempts = 2

	start := time.Now()
	_, err := c.Search(context.Background(), types.DefaultParameters())
	var timeoutErr *TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, int32(2), calls.Load())
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestSearchNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c := testClient(ts)
	ts.Close()

	_, err := c.Search(context.Background(), types.DefaultParameters())
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Contains(t, Message(err), "Could not reach")
}

func TestSearchCanceled(t *testing.T) {
	ts := searchTestServer(t, http.StatusOK, sampleSearchJSON, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(ts).Search(ctx, types.DefaultParameters())
	require.Error(t, err)
	assert.True(t, IsCanceled(err))
}

func TestSearchRetriesThrottledOnce(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := testClient(ts)
	c.Config.MaxAttempts = 5

	_, err := c.Search(context.Background(), types.DefaultParameters())
	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusTooManyRequests, remoteErr.Status)
	assert.Equal(t, int32(httputil.MaxAttempts), calls.Load())
}

func TestEndpointEscapesCountry(t *testing.T) {
	c := NewClient(types.SearchConfig{BaseURL: "https://example.test/"}, zerolog.Nop())
	assert.Equal(t, "https://example.test/api/v3/us", c.endpoint("us"))
	assert.Equal(t, "https://example.test/api/v3/a%2Fb", c.endpoint("a/b"))
	assert.Equal(t, "https://example.test/api/v3/us", c.endpoint(""))
}

func TestMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&TimeoutError{}, "took too long"},
		{&ParseError{RawBody: "x"}, "unexpected response"},
		{fmt.Errorf("wrapped: %w", &RemoteError{Status: 500}), "HTTP 500"},
		{errors.New("other"), "Failed to fetch search results"},
	}
	for _, tt := range tests {
		got := Message(tt.err)
		if tt.want == "" {
			assert.Empty(t, got)
			continue
		}
		assert.True(t, strings.Contains(got, tt.want), "Message(%v) = %q", tt.err, got)
	}
}

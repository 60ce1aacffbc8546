package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paperrank/app/internal/domain"
)

func newRequest(t *testing.T) domain.SearchRequest {
	t.Helper()
	req, err := domain.NewSearchRequest("  mRNA vaccine efficacy ", domain.RankingMostInnovative)
	require.NoError(t, err)
	return req
}

func TestSearch_PostsPayload(t *testing.T) {
	var got map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "paperrank-test", r.Header.Get("User-Agent"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`[{"title":"A"}]`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, WithUserAgent("paperrank-test"))
	body, err := c.Search(context.Background(), newRequest(t))
	require.NoError(t, err)

	assert.JSONEq(t, `[{"title":"A"}]`, string(body))
	assert.Equal(t, "mRNA vaccine efficacy", got["topics"])
	assert.Equal(t, "Most Innovative", got["ranking_mode"])
	assert.Equal(t, float64(30), got["max_results"])
}

func TestSearch_NonOKIsServiceError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"message":"workflow failed"}`))
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).Search(context.Background(), newRequest(t))

	var svcErr *domain.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusBadGateway, svcErr.StatusCode)
}

func TestSearch_CreatedIsStillServiceError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	_, err := NewClient(ts.URL).Search(context.Background(), newRequest(t))

	var svcErr *domain.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusCreated, svcErr.StatusCode)
}

func TestSearch_UnreachableIsConnectionError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	_, err := NewClient(url).Search(context.Background(), newRequest(t))

	var connErr *domain.ConnectionError
	assert.True(t, errors.As(err, &connErr))
}

func TestSearch_TimeoutIsConnectionError(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	_, err := NewClient(ts.URL, WithTimeout(20*time.Millisecond)).Search(context.Background(), newRequest(t))

	var connErr *domain.ConnectionError
	assert.True(t, errors.As(err, &connErr))
}

func TestSearch_RateLimitHonoursDeadline(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, WithRateLimit(0.001, 1))
	_, err := c.Search(context.Background(), newRequest(t))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.Search(ctx, newRequest(t))

	var connErr *domain.ConnectionError
	assert.True(t, errors.As(err, &connErr))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNewClient_TimeoutOptionOrder(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	before := NewClient("http://x", WithTimeout(5*time.Second), WithHTTPClient(shared))
	after := NewClient("http://x", WithHTTPClient(shared), WithTimeout(5*time.Second))

	assert.Equal(t, 5*time.Second, before.httpClient.Timeout)
	assert.Equal(t, 5*time.Second, after.httpClient.Timeout)
	assert.Equal(t, time.Minute, shared.Timeout)
}

func TestNewClient_TimeoutLeavesDefaultClientAlone(t *testing.T) {
	orig := http.DefaultClient.Timeout

	c := NewClient("http://x", WithHTTPClient(http.DefaultClient), WithTimeout(time.Second))

	assert.Equal(t, orig, http.DefaultClient.Timeout)
	assert.Equal(t, time.Second, c.httpClient.Timeout)
	assert.NotSame(t, http.DefaultClient, c.httpClient)
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	c := NewClient("http://x")
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}

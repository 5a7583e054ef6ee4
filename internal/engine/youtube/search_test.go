package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/anatolykoptev/go_yt/internal/engine"
)

func initTestEngine(t *testing.T, client *http.Client) {
	t.Helper()
	engine.Init(engine.Config{
		HTTPClient:     client,
		YouTubeLimiter: rate.NewLimiter(rate.Inf, 0),
	})
}

func fastRequest(attempts int) SearchRequest {
	return SearchRequest{RetryCount: attempts, RetryDelay: time.Millisecond}
}

func TestBuildSearchURL(t *testing.T) {
	tests := []struct {
		name string
		req  SearchRequest
		want string
	}{
		{
			"plain query",
			SearchRequest{Query: "golang tutorial"},
			"https://youtube.com/results?search_query=golang+tutorial",
		},
		{
			"special characters",
			SearchRequest{Query: "c++ & go?"},
			"https://youtube.com/results?search_query=c%2B%2B+%26+go%3F",
		},
		{
			"language and region",
			SearchRequest{Query: "nachrichten", Language: "de", Region: "DE"},
			"https://youtube.com/results?gl=DE&hl=de&search_query=nachrichten",
		},
		{
			"full url passed through verbatim",
			SearchRequest{Query: "https://youtube.com/results?search_query=x&sp=EgIQAQ%253D%253D"},
			"https://youtube.com/results?search_query=x&sp=EgIQAQ%253D%253D",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, BuildSearchURL(tt.req))
		})
	}
}

func TestAcceptLanguage(t *testing.T) {
	require.Equal(t, "en-US,en;q=0.9", acceptLanguage(""))
	require.Equal(t, "en-US,en;q=0.9", acceptLanguage("en"))
	require.Equal(t, "de,de;q=0.9,en;q=0.5", acceptLanguage("de"))
}

func TestFetchFirstAttempt(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte(samplePage(sampleInitialData)))
	}))
	defer srv.Close()
	initTestEngine(t, srv.Client())

	page, err := FetchResultsPage(context.Background(), srv.URL, fastRequest(5))
	require.NoError(t, err)
	require.Contains(t, page, initialDataMarker)
	require.EqualValues(t, 1, requests.Load())
}

func TestFetchRetriesUntilMarker(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			_, _ = w.Write([]byte("<html><body>loading</body></html>"))
			return
		}
		_, _ = w.Write([]byte(samplePage(sampleInitialData)))
	}))
	defer srv.Close()
	initTestEngine(t, srv.Client())

	page, err := FetchResultsPage(context.Background(), srv.URL, fastRequest(5))
	require.NoError(t, err)
	require.Contains(t, page, initialDataMarker)
	require.EqualValues(t, 3, requests.Load())
}

func TestFetchMarkerNeverAppears(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_, _ = w.Write([]byte("<html><body>still loading</body></html>"))
	}))
	defer srv.Close()
	initTestEngine(t, srv.Client())

	_, err := FetchResultsPage(context.Background(), srv.URL, fastRequest(3))
	var markerErr *MarkerNotFoundError
	require.ErrorAs(t, err, &markerErr)
	require.Equal(t, 3, markerErr.Attempts)
	require.EqualValues(t, 3, requests.Load())
	require.Contains(t, err.Error(), "after 3 retries")
}

func TestFetchRetryableStatusThenSuccess(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(samplePage(sampleInitialData)))
	}))
	defer srv.Close()
	initTestEngine(t, srv.Client())

	_, err := FetchResultsPage(context.Background(), srv.URL, fastRequest(5))
	require.NoError(t, err)
	require.EqualValues(t, 2, requests.Load())
}

func TestFetchStatusExhausted(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	initTestEngine(t, srv.Client())

	_, err := FetchResultsPage(context.Background(), srv.URL, fastRequest(3))
	var statusErr *engine.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	require.EqualValues(t, 3, requests.Load())
}

func TestFetchContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("no marker here"))
	}))
	defer srv.Close()
	initTestEngine(t, srv.Client())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := FetchResultsPage(ctx, srv.URL, fastRequest(5))
	require.ErrorIs(t, err, context.Canceled)
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("upstream unreachable")
}

func TestSearchVideosNeverFails(t *testing.T) {
	initTestEngine(t, &http.Client{Transport: failingTransport{}})

	videos := SearchVideos(context.Background(), SearchRequest{Query: "anything", RetryCount: 1, RetryDelay: time.Millisecond})
	require.NotNil(t, videos)
	require.Empty(t, videos)
}

func TestSearchEndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "x", r.URL.Query().Get("search_query"))
		_, _ = w.Write([]byte(samplePage(sampleInitialData)))
	}))
	defer srv.Close()
	initTestEngine(t, srv.Client())

	page, err := FetchResultsPage(context.Background(), srv.URL+"/results?search_query=x", fastRequest(2))
	require.NoError(t, err)

	videos := ExtractVideos(page, 2)
	require.Len(t, videos, 2)
	require.Equal(t, "vid00000001", videos[0].ID)
}

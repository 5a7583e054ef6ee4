package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/anatolykoptev/go_yt/internal/engine"
)

const (
	// BaseURL is the fixed origin for search URLs and watch URLs.
	BaseURL = "https://youtube.com"

	// initialDataMarker gates the fetch loop: a response body without it is
	// treated as not-yet-loaded and retried.
	initialDataMarker = "ytInitialData"

	maxPageBytes = 4 * 1024 * 1024
)

// MarkerNotFoundError means the marker never appeared within the retry budget.
type MarkerNotFoundError struct {
	Attempts int
}

func (e *MarkerNotFoundError) Error() string {
	return fmt.Sprintf("could not retrieve expected data after %d retries", e.Attempts)
}

// errMarkerAbsent is the per-attempt transient condition inside the fetch loop.
var errMarkerAbsent = errors.New("ytInitialData marker absent from response")

// BuildSearchURL returns the target URL for a request. Input already under
// BaseURL is used verbatim; otherwise the query terms are percent-encoded
// into a results URL, with hl/gl appended when language/region are set.
func BuildSearchURL(req SearchRequest) string {
	if strings.HasPrefix(req.Query, BaseURL) {
		return req.Query
	}
	params := url.Values{}
	params.Set("search_query", req.Query)
	if req.Language != "" {
		params.Set("hl", req.Language)
	}
	if req.Region != "" {
		params.Set("gl", req.Region)
	}
	return BaseURL + "/results?" + params.Encode()
}

// acceptLanguage builds the Accept-Language header value for a request.
func acceptLanguage(lang string) string {
	if lang == "" || lang == "en" {
		return "en-US,en;q=0.9"
	}
	return lang + "," + lang + ";q=0.9,en;q=0.5"
}

// FetchResultsPage GETs target until the response body contains the
// ytInitialData marker or the retry budget is exhausted. Non-2xx statuses and
// marker-absent bodies are both transient within the loop; transport errors
// are retried and propagated as-is after the final attempt.
func FetchResultsPage(ctx context.Context, target string, req SearchRequest) (string, error) {
	attempts := req.RetryCount
	if attempts <= 0 {
		attempts = engine.Cfg.SearchRetryCount
	}
	if attempts <= 0 {
		attempts = DefaultRetryCount
	}
	delay := req.RetryDelay
	if delay <= 0 {
		delay = engine.Cfg.SearchRetryDelay
	}
	if delay <= 0 {
		delay = DefaultRetryDelay
	}

	body, err := engine.RetryDo(ctx, engine.FixedRetry(attempts, delay), func() (string, error) {
		engine.IncrPageFetches()
		if err := engine.Cfg.YouTubeLimiter.Wait(ctx); err != nil {
			return "", err
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return "", err
		}
		httpReq.Header.Set("User-Agent", engine.RandomUserAgent())
		httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		httpReq.Header.Set("Accept-Language", acceptLanguage(req.Language))

		resp, err := engine.Cfg.HTTPClient.Do(httpReq)
		if err != nil {
			engine.IncrFetchErrors()
			slog.Debug("youtube: fetch attempt failed", slog.String("url", target), slog.Any("error", err))
			return "", err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			engine.IncrFetchErrors()
			return "", &engine.HTTPStatusError{StatusCode: resp.StatusCode}
		}

		b, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
		if err != nil {
			engine.IncrFetchErrors()
			return "", err
		}
		if !strings.Contains(string(b), initialDataMarker) {
			return "", engine.Transient(errMarkerAbsent)
		}
		return string(b), nil
	})
	if err == nil {
		return body, nil
	}

	// Marker-absent and HTTP-status exhaustion both mean the expected data
	// never arrived; transport errors keep their own identity.
	var statusErr *engine.HTTPStatusError
	if errors.Is(err, errMarkerAbsent) {
		if page, ok := fetchViaBrowser(ctx, target); ok {
			return page, nil
		}
		return "", &MarkerNotFoundError{Attempts: attempts}
	}
	if errors.As(err, &statusErr) {
		if page, ok := fetchViaBrowser(ctx, target); ok {
			return page, nil
		}
		return "", fmt.Errorf("youtube results page: %w", err)
	}
	return "", fmt.Errorf("youtube results page: %w", err)
}

// fetchViaBrowser is a last-resort fetch with a Chrome TLS fingerprint, for
// responses where YouTube withholds ytInitialData from plain clients.
func fetchViaBrowser(ctx context.Context, target string) (string, bool) {
	bc := engine.Cfg.BrowserClient
	if bc == nil {
		return "", false
	}
	if err := engine.Cfg.YouTubeLimiter.Wait(ctx); err != nil {
		return "", false
	}
	engine.IncrPageFetches()
	data, status, err := bc.Do(http.MethodGet, target, engine.ChromeHeaders(), nil)
	if err != nil || status < 200 || status > 299 {
		engine.IncrFetchErrors()
		return "", false
	}
	if !strings.Contains(string(data), initialDataMarker) {
		return "", false
	}
	slog.Debug("youtube: browser client fallback served page", slog.String("url", target))
	return string(data), true
}

// Search runs one search and returns results with a classified error:
// *MarkerNotFoundError, *ParseError, *engine.HTTPStatusError, or a transport
// error from the HTTP client.
func Search(ctx context.Context, req SearchRequest) ([]Video, error) {
	engine.IncrSearchRequests()

	page, err := FetchResultsPage(ctx, BuildSearchURL(req), req)
	if err != nil {
		engine.IncrSearchFailures()
		return nil, err
	}

	videos, err := extractVideos(page, req.MaxResults)
	if err != nil {
		engine.IncrSearchFailures()
		return nil, err
	}
	return videos, nil
}

// SearchVideos is the never-fails entry point: any failure is logged and
// reduced to an empty result, so callers cannot tell "no results" from
// "page format changed" without the logs.
func SearchVideos(ctx context.Context, req SearchRequest) []Video {
	videos, err := Search(ctx, req)
	if err != nil {
		slog.Error("youtube: search failed", slog.String("query", req.Query), slog.Any("error", err))
		return []Video{}
	}
	return videos
}

package engine

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	SearchRequests     atomic.Int64
	SearchFailures     atomic.Int64
	PageFetches        atomic.Int64
	FetchErrors        atomic.Int64
	TranscriptRequests atomic.Int64
	InnertubeRequests  atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	WatchlistWrites    atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"search_requests":     metrics.SearchRequests.Load(),
		"search_failures":     metrics.SearchFailures.Load(),
		"page_fetches":        metrics.PageFetches.Load(),
		"fetch_errors":        metrics.FetchErrors.Load(),
		"transcript_requests": metrics.TranscriptRequests.Load(),
		"innertube_requests":  metrics.InnertubeRequests.Load(),
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
		"watchlist_writes":    metrics.WatchlistWrites.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"search_requests", "search_failures",
		"page_fetches", "fetch_errors",
		"transcript_requests", "innertube_requests",
		"llm_calls", "llm_errors",
		"watchlist_writes",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the youtube sub-package.
func IncrSearchRequests()     { metrics.SearchRequests.Add(1) }
func IncrSearchFailures()     { metrics.SearchFailures.Add(1) }
func IncrPageFetches()        { metrics.PageFetches.Add(1) }
func IncrFetchErrors()        { metrics.FetchErrors.Add(1) }
func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrInnertubeRequests()  { metrics.InnertubeRequests.Add(1) }
func IncrWatchlistWrites()    { metrics.WatchlistWrites.Add(1) }

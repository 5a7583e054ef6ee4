package engine

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
	"golang.org/x/time/rate"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int

	SearchRetryCount int           // attempts per results-page fetch
	SearchRetryDelay time.Duration // fixed wait between attempts
	FetchTimeout     time.Duration
	MaxTranscripts   int // transcripts fetched per search
	MaxContentChars  int // transcript chars sent to the LLM

	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	WatchlistPath string // sqlite file for the watch-later store

	HTTPClient    *http.Client
	BrowserClient *BrowserClient // nil = plain HTTPClient only
	LLMClient     *llm.Client    // nil = summaries disabled

	// YouTubeLimiter paces all outbound YouTube requests.
	YouTubeLimiter *rate.Limiter
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (youtube).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.YouTubeLimiter == nil {
		c.YouTubeLimiter = rate.NewLimiter(rate.Every(200*time.Millisecond), 4)
	}
	cfg = c
	Cfg = &cfg
}

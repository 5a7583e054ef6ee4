package youtube

import "time"

// Video is one search result mapped out of a videoRenderer entry.
// Field names in the JSON form are fixed; absent optional fields marshal away.
type Video struct {
	ID          string   `json:"id"`
	Thumbnails  []string `json:"thumbnails,omitempty"`
	Title       string   `json:"title,omitempty"`
	LongDesc    string   `json:"long_desc,omitempty"`
	Channel     string   `json:"channel,omitempty"`
	Duration    string   `json:"duration,omitempty"`
	Views       string   `json:"views,omitempty"`
	PublishTime string   `json:"publish_time,omitempty"`
	URLSuffix   string   `json:"url_suffix,omitempty"`
	WatchURL    string   `json:"yt_url,omitempty"`
	Transcript  string   `json:"transcript,omitempty"`
}

// SearchRequest configures one search call. Query may be search terms or a
// full URL already under BaseURL, which is then used verbatim.
type SearchRequest struct {
	Query      string
	MaxResults int           // <= 0 means unbounded
	Language   string        // hl param + Accept-Language on constructed URLs
	Region     string        // gl param on constructed URLs
	RetryCount int           // fetch attempts; <= 0 means DefaultRetryCount
	RetryDelay time.Duration // wait between attempts; <= 0 means DefaultRetryDelay
}

// Fetch defaults.
const (
	DefaultRetryCount = 5
	DefaultRetryDelay = 500 * time.Millisecond
)

// VideoSearchInput is the input for the video_search tool.
type VideoSearchInput struct {
	Query       string `json:"query" jsonschema:"Search terms, or a full youtube.com results URL used as-is"`
	Limit       int    `json:"limit,omitempty" jsonschema:"Max videos to return (default 10, max 50)"`
	Language    string `json:"language,omitempty" jsonschema:"Interface language code, e.g. en, de (default: en)"`
	Region      string `json:"region,omitempty" jsonschema:"Region code, e.g. US, DE"`
	Transcripts bool   `json:"transcripts,omitempty" jsonschema:"Fetch transcripts for the top results"`
	Summarize   bool   `json:"summarize,omitempty" jsonschema:"Append an LLM summary of the results (requires configured LLM)"`
}

// VideoSearchOutput is the structured output for video_search.
type VideoSearchOutput struct {
	Query   string  `json:"query"`
	Count   int     `json:"count"`
	Videos  []Video `json:"videos"`
	Summary string  `json:"summary,omitempty"`
}

// TranscriptInput is the input for the video_transcript tool.
type TranscriptInput struct {
	Video    string `json:"video" jsonschema:"Video ID or any YouTube watch URL"`
	Language string `json:"language,omitempty" jsonschema:"Preferred transcript language code (default: en)"`
}

// TranscriptOutput is the structured output for video_transcript.
type TranscriptOutput struct {
	VideoID    string `json:"video_id"`
	Transcript string `json:"transcript"`
}

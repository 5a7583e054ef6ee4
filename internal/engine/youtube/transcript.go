package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/anatolykoptev/go_yt/internal/engine"
)

// Transcript fetching.
// Primary:  watch page ytInitialPlayerResponse → caption track XML
// Fallback: /next engagement panel → /get_transcript
// Fallback: ANDROID Innertube /player → captionTracks

const playerResponseMarker = "ytInitialPlayerResponse"

// videoIDRE pulls the 11-char video ID from any YouTube URL format.
var videoIDRE = regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// ParseVideoID accepts a bare video ID or any watch URL and returns the ID.
func ParseVideoID(s string) string {
	s = strings.TrimSpace(s)
	if m := videoIDRE.FindStringSubmatch(s); len(m) >= 2 {
		return m[1]
	}
	if len(s) == 11 && !strings.ContainsAny(s, "/?&=") {
		return s
	}
	return ""
}

// transcriptTokenRE extracts the continuation token from a raw /next response.
var transcriptTokenRE = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

func extractTranscriptToken(data []byte) (string, error) {
	m := transcriptTokenRE.FindSubmatch(data)
	if len(m) < 2 {
		return "", errors.New("getTranscriptEndpoint not found in engagement panels")
	}
	// The params value in the /next response is URL-encoded; /get_transcript
	// expects the decoded (raw base64) form.
	decoded, err := url.QueryUnescape(string(m[1]))
	if err != nil {
		return string(m[1]), nil
	}
	return decoded, nil
}

// joinSegments extracts plain text from a /get_transcript response.
func joinSegments(resp transcriptResponse) string {
	var sb strings.Builder
	for _, action := range resp.Actions {
		if action.UpdateEngagementPanelAction == nil {
			continue
		}
		segs := action.UpdateEngagementPanelAction.Content.
			TranscriptRenderer.Content.
			TranscriptSearchPanelRenderer.Body.
			TranscriptSegmentListRenderer.InitialSegments
		for _, seg := range segs {
			if seg.TranscriptSegmentRenderer == nil {
				continue
			}
			for _, run := range seg.TranscriptSegmentRenderer.Snippet.Runs {
				if run.Text != "" {
					if sb.Len() > 0 {
						sb.WriteByte(' ')
					}
					sb.WriteString(run.Text)
				}
			}
		}
	}
	return sb.String()
}

// needsPoToken reports whether a caption track URL requires a PoToken
// (browser-only). Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack selects the best usable caption track for the language
// preferences: manual in preferred language > auto-generated in preferred
// language > any English > any usable.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return tracks[0], false
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

// timedText is YouTube's caption XML.
type timedText struct {
	Lines []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

// fetchTimedText fetches and parses a caption track XML URL.
func fetchTimedText(ctx context.Context, baseURL string) (string, error) {
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 3*1024*1024))
	if err != nil {
		return "", fmt.Errorf("read timedtext: %w", err)
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}

	var sb strings.Builder
	for _, line := range tt.Lines {
		text := engine.CleanHTML(line.Text)
		if text != "" {
			if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(text)
		}
	}
	return sb.String(), nil
}

// transcriptFromTracks picks a track and downloads its caption XML.
func transcriptFromTracks(ctx context.Context, pr playerResponse, langs []string, source string) (string, error) {
	if pr.Captions == nil {
		if pr.PlayabilityStatus != nil && pr.PlayabilityStatus.Reason != "" {
			return "", fmt.Errorf("captions unavailable (%s): %s", source, pr.PlayabilityStatus.Reason)
		}
		return "", fmt.Errorf("no captions in %s response", source)
	}
	tracks := pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return "", fmt.Errorf("no caption tracks in %s response", source)
	}
	track, ok := pickBestTrack(tracks, langs)
	if !ok {
		return "", errors.New("all caption tracks require PoToken")
	}
	return fetchTimedText(ctx, track.BaseURL)
}

// transcriptViaWatchPage scrapes the watch page HTML and extracts the caption
// track URL from ytInitialPlayerResponse. Works from any IP.
func transcriptViaWatchPage(ctx context.Context, videoID string, langs []string) (string, error) {
	watchURL := "https://www.youtube.com/watch?v=" + videoID

	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		return engine.Cfg.HTTPClient.Do(req)
	})
	if err != nil {
		return "", fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
	if err != nil {
		return "", fmt.Errorf("read watch page: %w", err)
	}

	data := extractAfterMarker(string(body), playerResponseMarker)
	if data == nil {
		return "", errors.New("ytInitialPlayerResponse not found in watch page")
	}

	var pr playerResponse
	if err := json.Unmarshal(data, &pr); err != nil {
		return "", fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return transcriptFromTracks(ctx, pr, langs, "watch page")
}

// transcriptViaEngagementPanel fetches a transcript via /next →
// /get_transcript. Works from datacenter IPs where /player returns
// LOGIN_REQUIRED.
func transcriptViaEngagementPanel(ctx context.Context, videoID, lang string) (string, error) {
	visitorData := newVisitorData()

	nextData, err := postInnertubeWEB(ctx, innertubeNextURL, map[string]any{
		"videoId": videoID,
		"context": webContext(visitorData, lang),
	}, visitorData)
	if err != nil {
		return "", fmt.Errorf("/next: %w", err)
	}

	token, err := extractTranscriptToken(nextData)
	if err != nil {
		return "", fmt.Errorf("token: %w", err)
	}

	transcriptData, err := postInnertubeWEB(ctx, innertubeGetTranscriptURL, map[string]any{
		"params":  token,
		"context": webContext(visitorData, lang),
	}, visitorData)
	if err != nil {
		return "", fmt.Errorf("/get_transcript: %w", err)
	}

	var resp transcriptResponse
	if err := json.Unmarshal(transcriptData, &resp); err != nil {
		return "", fmt.Errorf("decode transcript: %w", err)
	}

	text := joinSegments(resp)
	if text == "" {
		return "", errors.New("empty transcript segments")
	}
	return text, nil
}

// transcriptViaPlayer uses the ANDROID Innertube /player endpoint.
// Works from non-blocked (residential/cloud) IP addresses.
func transcriptViaPlayer(ctx context.Context, videoID string, langs []string) (string, error) {
	lang := "en"
	if len(langs) > 0 {
		lang = langs[0]
	}
	pr, err := postInnertubeAndroid(ctx, videoID, lang)
	if err != nil {
		return "", err
	}
	return transcriptFromTracks(ctx, pr, langs, "player")
}

// FetchTranscript fetches the transcript for a video, trying each strategy in
// order. Results are cached.
func FetchTranscript(ctx context.Context, videoID string, langs []string) (string, error) {
	engine.IncrTranscriptRequests()
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	if engine.Cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, engine.Cfg.FetchTimeout)
		defer cancel()
	}

	cacheKey := engine.CacheKey("transcript", videoID, strings.Join(langs, ","))
	if cached, ok := engine.CacheGet(ctx, cacheKey); ok {
		return string(cached), nil
	}

	var errs []error
	for _, attempt := range []struct {
		name string
		fn   func() (string, error)
	}{
		{"watch page", func() (string, error) { return transcriptViaWatchPage(ctx, videoID, langs) }},
		{"engagement panel", func() (string, error) { return transcriptViaEngagementPanel(ctx, videoID, langs[0]) }},
		{"android player", func() (string, error) { return transcriptViaPlayer(ctx, videoID, langs) }},
	} {
		text, err := attempt.fn()
		if err == nil && text != "" {
			engine.CacheSet(ctx, cacheKey, []byte(text))
			return text, nil
		}
		slog.Debug("youtube: transcript strategy failed",
			slog.String("strategy", attempt.name), slog.String("id", videoID), slog.Any("error", err))
		errs = append(errs, fmt.Errorf("%s: %w", attempt.name, err))
	}
	return "", errors.Join(errs...)
}

// FetchTranscriptsParallel fetches transcripts for the top N videos
// concurrently, attaching them in place.
func FetchTranscriptsParallel(ctx context.Context, videos []Video, langs []string, limit int) []Video {
	if limit <= 0 || limit > len(videos) {
		limit = len(videos)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < limit; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			transcript, err := FetchTranscript(fetchCtx, videos[idx].ID, langs)
			if err != nil {
				slog.Debug("youtube: transcript failed",
					slog.String("id", videos[idx].ID), slog.Any("err", err))
				return
			}
			if maxChars := engine.Cfg.MaxContentChars; maxChars > 0 && len(transcript) > maxChars {
				transcript = engine.TruncateRunes(transcript, maxChars, "...")
			}
			mu.Lock()
			videos[idx].Transcript = transcript
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	return videos
}

package youtube

import (
	"context"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_yt/internal/engine"
)

const summarizePrompt = `You are a research assistant. Given YouTube search results for the query %q, write a concise summary (3-5 sentences) of what the videos cover, naming the most relevant ones. Plain text only, no markdown.

Results:
%s`

// SummarizeVideos produces an LLM summary of a result set. Returns an empty
// string when no LLM is configured; callers treat summaries as best-effort.
func SummarizeVideos(ctx context.Context, query string, videos []Video) (string, error) {
	if !engine.LLMEnabled() || len(videos) == 0 {
		return "", nil
	}

	var sb strings.Builder
	for i, v := range videos {
		fmt.Fprintf(&sb, "%d. %s", i+1, v.Title)
		if v.Channel != "" {
			fmt.Fprintf(&sb, " — %s", v.Channel)
		}
		if v.Views != "" {
			fmt.Fprintf(&sb, " (%s)", v.Views)
		}
		sb.WriteByte('\n')
		if v.LongDesc != "" {
			fmt.Fprintf(&sb, "   %s\n", engine.Truncate(v.LongDesc, 200))
		}
		if v.Transcript != "" {
			fmt.Fprintf(&sb, "   transcript: %s\n", engine.TruncateRunes(v.Transcript, 1500, "..."))
		}
	}

	return engine.CallLLM(ctx, fmt.Sprintf(summarizePrompt, query, sb.String()))
}

package ytserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_yt/internal/engine"
	"github.com/anatolykoptev/go_yt/internal/engine/youtube"
	"github.com/anatolykoptev/go_yt/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerVideoSearch(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_search",
		Description: "Search YouTube videos without an API key by scraping the results page. Returns structured JSON per video (id, title, channel, duration, views, publish time, thumbnails, watch URL). Optionally fetches transcripts for the top results and appends an LLM summary.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input youtube.VideoSearchInput) (*mcp.CallToolResult, youtube.VideoSearchOutput, error) {
		if input.Query == "" {
			return nil, youtube.VideoSearchOutput{}, fmt.Errorf("query is required")
		}

		limit := toolutil.ClampLimit(input.Limit, 10, 50)

		// The search entry point never fails: a scrape or parse failure is
		// logged and shows up here as zero results.
		videos := youtube.SearchVideos(ctx, youtube.SearchRequest{
			Query:      input.Query,
			MaxResults: limit,
			Language:   input.Language,
			Region:     input.Region,
		})

		if input.Transcripts && len(videos) > 0 {
			langs := []string{toolutil.NormLang(input.Language)}
			videos = youtube.FetchTranscriptsParallel(ctx, videos, langs, engine.Cfg.MaxTranscripts)
		}

		out := youtube.VideoSearchOutput{
			Query:  input.Query,
			Count:  len(videos),
			Videos: videos,
		}

		if input.Summarize {
			summary, err := youtube.SummarizeVideos(ctx, input.Query, videos)
			if err != nil {
				slog.Warn("video_search: summarization failed", slog.Any("error", err))
			} else {
				out.Summary = summary
			}
		}

		return nil, out, nil
	})
}

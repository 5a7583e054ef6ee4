package ytserver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go_yt/internal/engine/youtube"
	"github.com/anatolykoptev/go_yt/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerVideoTranscript(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_transcript",
		Description: "Fetch the transcript of a YouTube video by ID or watch URL. Tries the watch page, the engagement panel API, then the ANDROID player API. Transcripts are cached.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input youtube.TranscriptInput) (*mcp.CallToolResult, youtube.TranscriptOutput, error) {
		videoID := youtube.ParseVideoID(input.Video)
		if videoID == "" {
			return nil, youtube.TranscriptOutput{}, fmt.Errorf("video must be an 11-char video ID or a YouTube watch URL")
		}

		langs := []string{toolutil.NormLang(input.Language)}
		transcript, err := youtube.FetchTranscript(ctx, videoID, langs)
		if err != nil {
			slog.Warn("video_transcript error", slog.String("id", videoID), slog.Any("error", err))
			return nil, youtube.TranscriptOutput{}, fmt.Errorf("transcript unavailable: %w", err)
		}

		return nil, youtube.TranscriptOutput{VideoID: videoID, Transcript: transcript}, nil
	})
}

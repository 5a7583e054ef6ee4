package ytserver

import (
	"context"

	"github.com/anatolykoptev/go_yt/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// watchLaterRemoveInput is the input for watch_later_remove.
type watchLaterRemoveInput struct {
	ID int64 `json:"id" jsonschema:"Watchlist entry id to remove"`
}

func registerWatchLater(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "watch_later_add",
		Description: "Save a video to the local watch-later list. Requires video_id and title; channel, url, duration, and notes are optional.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.WatchlistAddInput) (*mcp.CallToolResult, *engine.WatchlistResult, error) {
		out, err := engine.WatchlistAdd(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "watch_later_list",
		Description: "List saved videos from the watch-later list, optionally filtered by status (saved, watched, dropped).",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.WatchlistListInput) (*mcp.CallToolResult, *engine.WatchlistListResult, error) {
		out, err := engine.WatchlistList(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "watch_later_update",
		Description: "Update the status and/or notes of a saved video by id. Valid statuses: saved, watched, dropped.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input engine.WatchlistUpdateInput) (*mcp.CallToolResult, *engine.WatchlistResult, error) {
		out, err := engine.WatchlistUpdate(ctx, input)
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "watch_later_remove",
		Description: "Remove a saved video from the watch-later list by id.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input watchLaterRemoveInput) (*mcp.CallToolResult, *engine.WatchlistResult, error) {
		out, err := engine.WatchlistRemove(ctx, input.ID)
		if err != nil {
			return nil, nil, err
		}
		return nil, out, nil
	})
}

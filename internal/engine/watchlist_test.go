package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// The watch-later store opens once per process, so the full lifecycle is
// exercised in a single test against a temp database.
func TestWatchlistLifecycle(t *testing.T) {
	Init(Config{WatchlistPath: filepath.Join(t.TempDir(), "watchlist.db")})
	ctx := context.Background()

	// Add
	added, err := WatchlistAdd(ctx, WatchlistAddInput{
		VideoID: "dQw4w9WgXcQ",
		Title:   "Go Concurrency Patterns",
		Channel: "Google for Developers",
	})
	require.NoError(t, err)
	require.NotZero(t, added.ID)

	// Missing required fields
	_, err = WatchlistAdd(ctx, WatchlistAddInput{Title: "no id"})
	require.Error(t, err)

	// List
	list, err := WatchlistList(ctx, WatchlistListInput{})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	require.Equal(t, "dQw4w9WgXcQ", list.Videos[0].VideoID)
	require.Equal(t, StatusSaved, list.Videos[0].Status)
	// URL is derived when not supplied
	require.Equal(t, "https://youtube.com/watch?v=dQw4w9WgXcQ", list.Videos[0].URL)

	// Re-adding the same video upserts rather than duplicating
	_, err = WatchlistAdd(ctx, WatchlistAddInput{VideoID: "dQw4w9WgXcQ", Title: "Go Concurrency Patterns (updated)"})
	require.NoError(t, err)
	list, err = WatchlistList(ctx, WatchlistListInput{})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)

	// Update status
	_, err = WatchlistUpdate(ctx, WatchlistUpdateInput{ID: added.ID, Status: "watched", Notes: "great talk"})
	require.NoError(t, err)

	list, err = WatchlistList(ctx, WatchlistListInput{Status: "watched"})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	require.Equal(t, "great talk", list.Videos[0].Notes)

	// Invalid status rejected
	_, err = WatchlistUpdate(ctx, WatchlistUpdateInput{ID: added.ID, Status: "binged"})
	require.Error(t, err)

	// Update of a missing row reported
	_, err = WatchlistUpdate(ctx, WatchlistUpdateInput{ID: 9999, Status: "watched"})
	require.Error(t, err)

	// Remove
	_, err = WatchlistRemove(ctx, added.ID)
	require.NoError(t, err)
	list, err = WatchlistList(ctx, WatchlistListInput{})
	require.NoError(t, err)
	require.Equal(t, 0, list.Total)

	_, err = WatchlistRemove(ctx, added.ID)
	require.Error(t, err)
}

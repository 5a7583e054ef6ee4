package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// WatchStatus represents the viewing status for a saved video.
type WatchStatus string

const (
	StatusSaved   WatchStatus = "saved"
	StatusWatched WatchStatus = "watched"
	StatusDropped WatchStatus = "dropped"
)

// SavedVideo is a single entry in the watch-later list.
type SavedVideo struct {
	ID        int64       `json:"id"`
	VideoID   string      `json:"video_id"`
	Title     string      `json:"title"`
	Channel   string      `json:"channel,omitempty"`
	URL       string      `json:"url,omitempty"`
	Duration  string      `json:"duration,omitempty"`
	Status    WatchStatus `json:"status"`
	Notes     string      `json:"notes,omitempty"`
	CreatedAt string      `json:"created_at"`
	UpdatedAt string      `json:"updated_at"`
}

// WatchlistAddInput is the input for watch_later_add.
type WatchlistAddInput struct {
	VideoID  string `json:"video_id"`
	Title    string `json:"title"`
	Channel  string `json:"channel,omitempty"`
	URL      string `json:"url,omitempty"`
	Duration string `json:"duration,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// WatchlistListInput is the input for watch_later_list.
type WatchlistListInput struct {
	Status string `json:"status,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// WatchlistUpdateInput is the input for watch_later_update.
type WatchlistUpdateInput struct {
	ID     int64  `json:"id"`
	Status string `json:"status,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// WatchlistResult is the output for add/update/remove operations.
type WatchlistResult struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// WatchlistListResult is the output for list operations.
type WatchlistListResult struct {
	Videos []SavedVideo `json:"videos"`
	Total  int          `json:"total"`
}

var (
	watchlistDB   *sql.DB
	watchlistOnce sync.Once
	watchlistErr  error
)

// openWatchlistDB opens (or creates) the SQLite watch-later database.
func openWatchlistDB() (*sql.DB, error) {
	watchlistOnce.Do(func() {
		dbPath := cfg.WatchlistPath
		if dbPath == "" {
			dir := filepath.Join(os.Getenv("HOME"), ".go_yt")
			if err := os.MkdirAll(dir, 0750); err != nil {
				watchlistErr = fmt.Errorf("watchlist: mkdir %s: %w", dir, err)
				return
			}
			dbPath = filepath.Join(dir, "watchlist.db")
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			watchlistErr = fmt.Errorf("watchlist: open db: %w", err)
			return
		}
		db.SetMaxOpenConns(1) // SQLite: single writer
		if err := initWatchlistSchema(db); err != nil {
			watchlistErr = fmt.Errorf("watchlist: init schema: %w", err)
			return
		}
		watchlistDB = db
	})
	return watchlistDB, watchlistErr
}

// initWatchlistSchema creates the videos table if it doesn't exist.
func initWatchlistSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS videos (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id   TEXT NOT NULL UNIQUE,
		title      TEXT NOT NULL,
		channel    TEXT,
		url        TEXT,
		duration   TEXT,
		status     TEXT NOT NULL DEFAULT 'saved',
		notes      TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`)
	return err
}

// validWatchStatus checks if a status string is valid.
func validWatchStatus(s string) bool {
	switch WatchStatus(s) {
	case StatusSaved, StatusWatched, StatusDropped:
		return true
	}
	return false
}

// WatchlistAdd saves a new video to the watch-later list.
func WatchlistAdd(_ context.Context, input WatchlistAddInput) (*WatchlistResult, error) {
	if input.VideoID == "" || input.Title == "" {
		return nil, errors.New("watch_later_add: video_id and title are required")
	}

	db, err := openWatchlistDB()
	if err != nil {
		return nil, err
	}

	url := input.URL
	if url == "" {
		url = "https://youtube.com/watch?v=" + input.VideoID
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := db.Exec(
		`INSERT INTO videos (video_id, title, channel, url, duration, status, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(video_id) DO UPDATE SET title=excluded.title, updated_at=excluded.updated_at`,
		input.VideoID, input.Title, input.Channel, url, input.Duration,
		string(StatusSaved), input.Notes, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("watch_later_add: insert: %w", err)
	}
	IncrWatchlistWrites()

	id, _ := res.LastInsertId()
	return &WatchlistResult{
		ID:      id,
		Message: fmt.Sprintf("Video '%s' saved (id=%d)", input.Title, id),
	}, nil
}

// WatchlistList returns saved videos, optionally filtered by status.
func WatchlistList(_ context.Context, input WatchlistListInput) (*WatchlistListResult, error) {
	db, err := openWatchlistDB()
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var rows *sql.Rows
	if input.Status != "" {
		status := strings.ToLower(input.Status)
		if !validWatchStatus(status) {
			return nil, fmt.Errorf("watch_later_list: invalid status %q (valid: saved, watched, dropped)", status)
		}
		rows, err = db.Query(
			`SELECT id, video_id, title, channel, url, duration, status, notes, created_at, updated_at
			 FROM videos WHERE status = ? ORDER BY updated_at DESC LIMIT ?`,
			status, limit,
		)
	} else {
		rows, err = db.Query(
			`SELECT id, video_id, title, channel, url, duration, status, notes, created_at, updated_at
			 FROM videos ORDER BY updated_at DESC LIMIT ?`,
			limit,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("watch_later_list: query: %w", err)
	}
	defer rows.Close()

	var videos []SavedVideo
	for rows.Next() {
		var v SavedVideo
		var channel, url, duration, notes sql.NullString
		if err := rows.Scan(&v.ID, &v.VideoID, &v.Title, &channel, &url, &duration,
			&v.Status, &notes, &v.CreatedAt, &v.UpdatedAt); err != nil {
			continue
		}
		v.Channel = channel.String
		v.URL = url.String
		v.Duration = duration.String
		v.Notes = notes.String
		videos = append(videos, v)
	}

	// Count total matching rows
	var total int
	if input.Status != "" {
		db.QueryRow(`SELECT COUNT(*) FROM videos WHERE status = ?`, strings.ToLower(input.Status)).Scan(&total) //nolint:errcheck
	} else {
		db.QueryRow(`SELECT COUNT(*) FROM videos`).Scan(&total) //nolint:errcheck
	}

	if videos == nil {
		videos = []SavedVideo{}
	}
	return &WatchlistListResult{Videos: videos, Total: total}, nil
}

// WatchlistUpdate updates the status and/or notes of a saved video.
func WatchlistUpdate(_ context.Context, input WatchlistUpdateInput) (*WatchlistResult, error) {
	if input.ID <= 0 {
		return nil, errors.New("watch_later_update: id is required")
	}
	if input.Status == "" && input.Notes == "" {
		return nil, errors.New("watch_later_update: at least one of status or notes must be provided")
	}

	db, err := openWatchlistDB()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Format(time.RFC3339)

	var res sql.Result
	switch {
	case input.Status != "" && input.Notes != "":
		status := strings.ToLower(input.Status)
		if !validWatchStatus(status) {
			return nil, fmt.Errorf("watch_later_update: invalid status %q", status)
		}
		res, err = db.Exec(`UPDATE videos SET status=?, notes=?, updated_at=? WHERE id=?`,
			status, input.Notes, now, input.ID)
	case input.Status != "":
		status := strings.ToLower(input.Status)
		if !validWatchStatus(status) {
			return nil, fmt.Errorf("watch_later_update: invalid status %q", status)
		}
		res, err = db.Exec(`UPDATE videos SET status=?, updated_at=? WHERE id=?`,
			status, now, input.ID)
	default:
		res, err = db.Exec(`UPDATE videos SET notes=?, updated_at=? WHERE id=?`,
			input.Notes, now, input.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("watch_later_update: update: %w", err)
	}

	n, _ := res.RowsAffected()
	if n == 0 {
		return nil, fmt.Errorf("watch_later_update: no video with id=%d", input.ID)
	}
	IncrWatchlistWrites()
	return &WatchlistResult{ID: input.ID, Message: fmt.Sprintf("Video id=%d updated", input.ID)}, nil
}

// WatchlistRemove deletes a saved video by id.
func WatchlistRemove(_ context.Context, id int64) (*WatchlistResult, error) {
	if id <= 0 {
		return nil, errors.New("watch_later_remove: id is required")
	}

	db, err := openWatchlistDB()
	if err != nil {
		return nil, err
	}

	res, err := db.Exec(`DELETE FROM videos WHERE id=?`, id)
	if err != nil {
		return nil, fmt.Errorf("watch_later_remove: delete: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return nil, fmt.Errorf("watch_later_remove: no video with id=%d", id)
	}
	IncrWatchlistWrites()
	return &WatchlistResult{ID: id, Message: fmt.Sprintf("Video id=%d removed", id)}, nil
}

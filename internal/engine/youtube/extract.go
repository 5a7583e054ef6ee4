package youtube

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/html"
)

// ParseError means the page contained the marker but no parseable
// ytInitialData object, or the object was not valid JSON.
type ParseError struct {
	Stage string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse ytInitialData (%s): %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("parse ytInitialData (%s)", e.Stage)
}

func (e *ParseError) Unwrap() error { return e.Err }

// assignSkip is the length of the ` = ` assignment syntax between the marker
// and the opening brace of the object literal.
const assignSkip = 3

// ExtractInitialData returns the ytInitialData JSON object embedded in page
// markup. It scans from the first marker occurrence past the assignment
// syntax and brace-tracks to the object end; if the inline scan fails it
// falls back to walking the document's script elements.
func ExtractInitialData(page string) ([]byte, error) {
	if data := sliceInitialData(page); data != nil {
		return data, nil
	}
	if data := scanScriptTags(page); data != nil {
		return data, nil
	}
	return nil, &ParseError{Stage: "locate"}
}

// sliceInitialData extracts the object following the first marker occurrence.
func sliceInitialData(page string) []byte {
	return extractAfterMarker(page, initialDataMarker)
}

// extractAfterMarker extracts the JSON object assigned to marker in page
// markup, skipping the assignment syntax between them.
func extractAfterMarker(page, marker string) []byte {
	idx := strings.Index(page, marker)
	if idx < 0 {
		return nil
	}
	start := idx + len(marker) + assignSkip
	if start >= len(page) {
		return nil
	}
	// Tolerate variant assignment syntax by resyncing on the opening brace.
	rest := page[start:]
	if rest[0] != '{' {
		brace := strings.IndexByte(rest, '{')
		if brace < 0 {
			return nil
		}
		rest = rest[brace:]
	}
	return extractObject([]byte(rest))
}

// extractObject extracts a complete JSON object starting at b[0] == '{' by
// tracking brace depth.
func extractObject(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	var prev byte
	for i, c := range b {
		if inStr {
			if c == '"' && prev != '\\' {
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
		prev = c
	}
	return nil
}

// scanScriptTags parses the page as HTML and scans each script element's text
// for the marker. Covers markup where a naive substring offset lands inside
// attribute values or comments.
func scanScriptTags(page string) []byte {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil
	}
	var found []byte
	var visit func(n *html.Node)
	visit = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" && n.FirstChild != nil {
			if data := sliceInitialData(n.FirstChild.Data); data != nil {
				found = data
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(doc)
	return found
}

// --- fixed-path navigation over the untyped blob ---

// objField returns the value of key when raw is a JSON object containing it.
func objField(raw json.RawMessage, key string) (json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	v, ok := obj[key]
	return v, ok
}

// arrItems returns raw's elements when raw is a JSON array.
func arrItems(raw json.RawMessage) ([]json.RawMessage, bool) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, false
	}
	return arr, true
}

// walkPath descends through nested object keys, stopping at the first
// missing link.
func walkPath(raw json.RawMessage, keys ...string) (json.RawMessage, bool) {
	cur := raw
	for _, key := range keys {
		next, ok := objField(cur, key)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// --- videoRenderer field mapping ---

type textRuns struct {
	Runs []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (r textRuns) first() string {
	if len(r.Runs) == 0 {
		return ""
	}
	return r.Runs[0].Text
}

type simpleText struct {
	SimpleText string `json:"simpleText"`
}

type videoRenderer struct {
	VideoID   string `json:"videoId"`
	Thumbnail struct {
		Thumbnails []struct {
			URL string `json:"url"`
		} `json:"thumbnails"`
	} `json:"thumbnail"`
	Title              textRuns   `json:"title"`
	DescriptionSnippet *textRuns  `json:"descriptionSnippet"`
	LongBylineText     textRuns   `json:"longBylineText"`
	LengthText         simpleText `json:"lengthText"`
	ViewCountText      simpleText `json:"viewCountText"`
	PublishedTimeText  simpleText `json:"publishedTimeText"`
	NavigationEndpoint struct {
		CommandMetadata struct {
			WebCommandMetadata struct {
				URL string `json:"url"`
			} `json:"webCommandMetadata"`
		} `json:"commandMetadata"`
	} `json:"navigationEndpoint"`
}

// mapRenderer maps one videoRenderer entry into a Video. Entries without a
// videoId are rejected; every other field is independently optional.
func mapRenderer(raw json.RawMessage) (Video, bool) {
	var vr videoRenderer
	if err := json.Unmarshal(raw, &vr); err != nil {
		return Video{}, false
	}
	if vr.VideoID == "" {
		return Video{}, false
	}

	v := Video{
		ID:          vr.VideoID,
		Title:       vr.Title.first(),
		Channel:     vr.LongBylineText.first(),
		Duration:    vr.LengthText.SimpleText,
		Views:       vr.ViewCountText.SimpleText,
		PublishTime: vr.PublishedTimeText.SimpleText,
		URLSuffix:   vr.NavigationEndpoint.CommandMetadata.WebCommandMetadata.URL,
	}
	if vr.DescriptionSnippet != nil {
		v.LongDesc = vr.DescriptionSnippet.first()
	}
	for _, t := range vr.Thumbnail.Thumbnails {
		if t.URL != "" {
			v.Thumbnails = append(v.Thumbnails, t.URL)
		}
	}
	if v.URLSuffix != "" {
		v.WatchURL = BaseURL + v.URLSuffix
	}
	return v, true
}

// extractVideos parses page markup into records. A missing renderer path is
// an empty result, not an error; only a failed JSON parse is reported.
func extractVideos(page string, limit int) ([]Video, error) {
	data, err := ExtractInitialData(page)
	if err != nil {
		return nil, err
	}
	if !json.Valid(data) {
		return nil, &ParseError{Stage: "decode", Err: fmt.Errorf("extracted slice is not valid JSON")}
	}

	sections, ok := walkPath(data,
		"contents", "twoColumnSearchResultsRenderer", "primaryContents",
		"sectionListRenderer", "contents")
	if !ok {
		slog.Warn("youtube: search renderer path missing, returning no results")
		return []Video{}, nil
	}
	sectionList, ok := arrItems(sections)
	if !ok {
		return []Video{}, nil
	}

	videos := []Video{}
	for _, section := range sectionList {
		items, ok := walkPath(section, "itemSectionRenderer", "contents")
		if !ok {
			continue
		}
		entries, ok := arrItems(items)
		if !ok {
			continue
		}
		for _, entry := range entries {
			if limit > 0 && len(videos) >= limit {
				return videos, nil
			}
			renderer, ok := objField(entry, "videoRenderer")
			if !ok {
				continue // ads, shelves, and other non-video elements
			}
			if v, ok := mapRenderer(renderer); ok {
				videos = append(videos, v)
			}
		}
	}
	return videos, nil
}

// ExtractVideos is the never-fails extraction entry point: internal failures
// are logged and reduce to an empty result. limit <= 0 means unbounded.
func ExtractVideos(page string, limit int) []Video {
	videos, err := extractVideos(page, limit)
	if err != nil {
		slog.Warn("youtube: extraction failed", slog.Any("error", err))
		return []Video{}
	}
	return videos
}

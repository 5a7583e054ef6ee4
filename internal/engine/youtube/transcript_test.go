package youtube

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseVideoID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare id", "dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url", "https://youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"www watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"v not first param", "https://www.youtube.com/watch?list=PL1&v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short url", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"whitespace", "  dQw4w9WgXcQ  ", "dQw4w9WgXcQ"},
		{"too short", "abc123", ""},
		{"wrong length path", "https://example.com/watch?v=short", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ParseVideoID(tt.in))
		})
	}
}

func TestPickBestTrack(t *testing.T) {
	manualDE := captionTrack{BaseURL: "https://yt/api/timedtext?lang=de", LanguageCode: "de"}
	asrDE := captionTrack{BaseURL: "https://yt/api/timedtext?lang=de&kind=asr", LanguageCode: "de", Kind: "asr"}
	manualEN := captionTrack{BaseURL: "https://yt/api/timedtext?lang=en", LanguageCode: "en"}
	manualFR := captionTrack{BaseURL: "https://yt/api/timedtext?lang=fr", LanguageCode: "fr"}
	blocked := captionTrack{BaseURL: "https://yt/api/timedtext?lang=de&exp=xpe", LanguageCode: "de"}

	tests := []struct {
		name   string
		tracks []captionTrack
		langs  []string
		want   captionTrack
		ok     bool
	}{
		{"manual beats asr", []captionTrack{asrDE, manualDE}, []string{"de"}, manualDE, true},
		{"asr when no manual", []captionTrack{asrDE, manualFR}, []string{"de"}, asrDE, true},
		{"english fallback", []captionTrack{manualFR, manualEN}, []string{"ja"}, manualEN, true},
		{"any usable fallback", []captionTrack{manualFR}, []string{"ja"}, manualFR, true},
		{"potoken track skipped", []captionTrack{blocked, asrDE}, []string{"de"}, asrDE, true},
		{"all tracks blocked", []captionTrack{blocked}, []string{"de"}, blocked, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := pickBestTrack(tt.tracks, tt.langs)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTranscriptToken(t *testing.T) {
	data := []byte(`{"engagementPanels":[{"panel":{"getTranscriptEndpoint":{"params":"CgtkUXc0dzlXZ1hjURIOQ2dBU0FtVnVHZ0ElM0Q%3D"}}}]}`)
	token, err := extractTranscriptToken(data)
	require.NoError(t, err)
	require.Equal(t, "CgtkUXc0dzlXZ1hjURIOQ2dBU0FtVnVHZ0ElM0Q=", token)

	_, err = extractTranscriptToken([]byte(`{"engagementPanels":[]}`))
	require.Error(t, err)
}

func TestJoinSegments(t *testing.T) {
	raw := `{"actions":[
	  {"addChatItemAction": {}},
	  {"updateEngagementPanelAction": {"content": {"transcriptRenderer": {"content":
	    {"transcriptSearchPanelRenderer": {"body": {"transcriptSegmentListRenderer": {"initialSegments": [
	      {"transcriptSegmentRenderer": {"snippet": {"runs": [{"text": "hello"}]}}},
	      {"transcriptSectionHeaderRenderer": {}},
	      {"transcriptSegmentRenderer": {"snippet": {"runs": [{"text": "world"}, {"text": "again"}]}}}
	    ]}}}}}}}}
	]}`
	var resp transcriptResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	require.Equal(t, "hello world again", joinSegments(resp))

	require.Empty(t, joinSegments(transcriptResponse{}))
}

func TestNeedsPoToken(t *testing.T) {
	require.True(t, needsPoToken("https://yt/api/timedtext?lang=en&exp=xpe&v=x"))
	require.False(t, needsPoToken("https://yt/api/timedtext?lang=en&v=x"))
}

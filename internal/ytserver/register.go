// Package ytserver registers the MCP tool surface: video search, transcript
// fetching, and the watch-later list.
package ytserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterTools registers all video tools on the given MCP server:
// video_search, video_transcript, and the watch_later_* family.
func RegisterTools(server *mcp.Server) {
	registerVideoSearch(server)
	registerVideoTranscript(server)
	registerWatchLater(server)
}

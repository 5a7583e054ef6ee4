// Package youtube retrieves video search results by scraping the search
// results page and extracting the embedded ytInitialData blob. It is split by
// responsibility:
//
//	search.go     — search URL building, marker-gated fetch-with-retry, entry points
//	extract.go    — ytInitialData slicing, renderer path navigation, field mapping
//	innertube.go  — Innertube API types, constants, and low-level HTTP primitives
//	transcript.go — transcript fetching (watch page, engagement panel, ANDROID player)
//	summarize.go  — optional LLM summarization of a result set
package youtube

package search

import "context"

// Searcher is the common interface over web-search providers. Only organic
// results are surfaced; ads and knowledge panels never reach the scraper.
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Request is a provider-independent search request.
type Request struct {
	Query      string
	MaxResults int
}

// Response holds the ordered organic results.
type Response struct {
	Results []Result
}

// Result is a single organic search hit.
type Result struct {
	Title   string
	URL     string
	Snippet string
}

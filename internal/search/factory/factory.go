package factory

import (
	"fmt"

	"github.com/stosh99/olympics_tv/internal/config"
	"github.com/stosh99/olympics_tv/internal/search"
	"github.com/stosh99/olympics_tv/internal/search/serpapi"
	"github.com/stosh99/olympics_tv/internal/search/tavily"
)

// NewSearcher builds the configured search provider.
func NewSearcher(cfg config.SearchConfig) (search.Searcher, error) {
	provider := cfg.Provider
	if provider == "" {
		// Fall back to whichever provider has a key configured.
		switch {
		case cfg.SerpAPI.APIKey != "":
			provider = "serpapi"
		case cfg.Tavily.APIKey != "":
			provider = "tavily"
		default:
			return nil, fmt.Errorf("search provider not configured")
		}
	}

	switch provider {
	case "serpapi":
		if cfg.SerpAPI.APIKey == "" {
			return nil, fmt.Errorf("serpapi api key is missing")
		}
		return serpapi.NewClient(cfg.SerpAPI.APIKey), nil

	case "tavily":
		if cfg.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		return tavily.NewClient(cfg.Tavily.APIKey), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", provider)
	}
}

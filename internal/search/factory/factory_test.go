package factory

import (
	"testing"

	"github.com/stosh99/olympics_tv/internal/config"
)

func TestNewSearcher(t *testing.T) {
	cases := []struct {
		name    string
		cfg     config.SearchConfig
		wantErr bool
	}{
		{"explicit serpapi", config.SearchConfig{Provider: "serpapi", SerpAPI: config.SerpAPIConfig{APIKey: "k"}}, false},
		{"explicit tavily", config.SearchConfig{Provider: "tavily", Tavily: config.TavilyConfig{APIKey: "k"}}, false},
		{"fallback to serpapi key", config.SearchConfig{SerpAPI: config.SerpAPIConfig{APIKey: "k"}}, false},
		{"fallback to tavily key", config.SearchConfig{Tavily: config.TavilyConfig{APIKey: "k"}}, false},
		{"no key at all", config.SearchConfig{}, true},
		{"serpapi without key", config.SearchConfig{Provider: "serpapi"}, true},
		{"unknown provider", config.SearchConfig{Provider: "bing", SerpAPI: config.SerpAPIConfig{APIKey: "k"}}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, err := NewSearcher(c.cfg)
			if (err != nil) != c.wantErr {
				t.Errorf("NewSearcher() error = %v, wantErr %v", err, c.wantErr)
			}
			if !c.wantErr && s == nil {
				t.Errorf("NewSearcher() returned nil searcher")
			}
		})
	}
}

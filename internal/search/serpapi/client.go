package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/stosh99/olympics_tv/internal/search"
)

const defaultBaseURL = "https://serpapi.com/search"

// Client is a SerpAPI (Google engine) search client.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a new SerpAPI client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type organicResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	OrganicResults []organicResult `json:"organic_results"`
}

// Search runs a Google search and returns the organic results in order.
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	num := req.MaxResults
	if num == 0 {
		num = 5
	}

	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", req.Query)
	params.Set("api_key", c.apiKey)
	params.Set("num", strconv.Itoa(num))
	params.Set("gl", "us")
	params.Set("hl", "en")

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serpapi error (status %d): %s", res.StatusCode, string(body))
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	resp := &search.Response{}
	for _, r := range sr.OrganicResults {
		resp.Results = append(resp.Results, search.Result{
			Title:   r.Title,
			URL:     r.Link,
			Snippet: r.Snippet,
		})
	}
	return resp, nil
}

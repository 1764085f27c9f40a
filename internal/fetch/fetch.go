package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/time/rate"

	"github.com/stosh99/olympics_tv/internal/config"
	"github.com/stosh99/olympics_tv/internal/logger"
	"github.com/stosh99/olympics_tv/internal/model"
)

// Domains that never yield article text (social/video platforms). These are
// skipped before any network call.
var skipDomains = map[string]bool{
	"youtube.com":   true,
	"twitter.com":   true,
	"x.com":         true,
	"facebook.com":  true,
	"instagram.com": true,
	"tiktok.com":    true,
	"reddit.com":    true,
	"pinterest.com": true,
	"linkedin.com":  true,
}

var articleClassRe = regexp.MustCompile(`(?i)article|story|content|post`)

// Domain extracts the registered domain from a URL, without a www prefix.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// Skipped reports whether the URL belongs to a known low-value domain.
func Skipped(rawURL string) bool {
	return skipDomains[Domain(rawURL)]
}

// Fetcher downloads candidate pages and extracts readable article text.
// A rate limiter paces consecutive fetches so third-party sites are not
// hammered.
type Fetcher struct {
	cfg     config.ScraperConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewFetcher creates a Fetcher from scraper configuration.
func NewFetcher(cfg config.ScraperConfig) *Fetcher {
	return &Fetcher{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.FetchTimeout},
		limiter: rate.NewLimiter(rate.Every(cfg.FetchDelay), 1),
	}
}

// Fetch downloads a page and extracts its article text. It tries the
// readability extractor first and falls back to plain HTML stripping when
// that fails. Articles shorter than the configured minimum are rejected.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.Article, error) {
	domain := Domain(rawURL)
	if skipDomains[domain] {
		return nil, fmt.Errorf("skipped social/video domain: %s", domain)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	article, err := f.extractReadable(rawURL)
	if err != nil {
		logger.Log.Warnf("readability failed for %s: %v", rawURL, err)
		article, err = f.extractFallback(ctx, rawURL)
		if err != nil {
			return nil, err
		}
	}

	if len(article.Text) < f.cfg.MinArticleLength {
		return nil, fmt.Errorf("article too short (%d chars): %s", len(article.Text), rawURL)
	}

	article.URL = rawURL
	article.Domain = domain
	return article, nil
}

func (f *Fetcher) extractReadable(rawURL string) (*model.Article, error) {
	art, err := readability.FromURL(rawURL, f.cfg.FetchTimeout)
	if err != nil {
		return nil, err
	}

	out := &model.Article{
		Title: art.Title,
		Text:  strings.TrimSpace(art.TextContent),
	}
	if art.Byline != "" {
		out.Authors = []string{art.Byline}
	}
	if art.PublishedTime != nil {
		out.PublishDate = art.PublishedTime.Format("2006-01-02")
	}
	return out, nil
}

// extractFallback strips page chrome and harvests paragraph text.
func (f *Fetcher) extractFallback(ctx context.Context, rawURL string) (*model.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	res, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch failed (status %d): %s", res.StatusCode, rawURL)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, err
	}

	doc.Find("script, style, nav, header, footer, aside").Remove()

	body := doc.Find("article").First()
	if body.Length() == 0 {
		body = doc.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
			class, _ := s.Attr("class")
			return articleClassRe.MatchString(class)
		}).First()
	}
	if body.Length() == 0 {
		body = doc.Find("main").First()
	}
	if body.Length() == 0 {
		body = doc.Find("body").First()
	}
	if body.Length() == 0 {
		return nil, fmt.Errorf("no article body found: %s", rawURL)
	}

	var paragraphs []string
	body.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := strings.TrimSpace(p.Text())
		if len(text) > 30 {
			paragraphs = append(paragraphs, text)
		}
	})

	return &model.Article{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Text:  strings.Join(paragraphs, "\n\n"),
	}, nil
}

package scraper

import (
	"context"
	"fmt"
	"strings"

	"github.com/stosh99/olympics_tv/internal/config"
	"github.com/stosh99/olympics_tv/internal/fetch"
	"github.com/stosh99/olympics_tv/internal/logger"
	"github.com/stosh99/olympics_tv/internal/model"
	"github.com/stosh99/olympics_tv/internal/search"
)

// Fetcher downloads one candidate page and extracts its article text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*model.Article, error)
}

// Scraper executes resolved queries against the search provider, fetches
// surviving candidates, and enforces the dedup/diversity policy: a hard
// total ceiling, a per-query ceiling, exact-URL dedup, and at most two
// articles per registered domain across the whole event.
type Scraper struct {
	cfg      config.ScraperConfig
	searcher search.Searcher
	fetcher  Fetcher
}

// New creates a Scraper.
func New(cfg config.ScraperConfig, searcher search.Searcher, fetcher Fetcher) *Scraper {
	return &Scraper{cfg: cfg, searcher: searcher, fetcher: fetcher}
}

// Scrape gathers articles for an event. A failed search or fetch skips the
// candidate and moves on; the returned slice may be empty.
func (s *Scraper) Scrape(ctx context.Context, resolved *model.ResolvedSources) []model.Article {
	logger.Log.Infof("Scraping sources for: %s", resolved.EventLabel)

	var articles []model.Article
	seenURLs := make(map[string]bool)
	domainCount := make(map[string]int)

	for _, q := range resolved.Queries {
		if len(articles) >= s.cfg.MaxTotalArticles {
			break
		}
		logger.Log.Infof("  Searching [%s]: %s", q.Type, q.Query)

		resp, err := s.searcher.Search(ctx, &search.Request{Query: q.Query, MaxResults: 5})
		if err != nil {
			logger.Log.Errorf("Search failed for %q: %v", q.Query, err)
			continue
		}

		fromQuery := 0
		for _, r := range resp.Results {
			if fromQuery >= s.cfg.MaxArticlesPerQuery {
				break
			}
			if len(articles) >= s.cfg.MaxTotalArticles {
				break
			}

			domain := fetch.Domain(r.URL)
			if seenURLs[r.URL] {
				continue
			}
			if domainCount[domain] >= 2 {
				continue
			}
			if fetch.Skipped(r.URL) {
				continue
			}

			seenURLs[r.URL] = true
			logger.Log.Infof("    Fetching: %s", r.URL)

			article, err := s.fetcher.Fetch(ctx, r.URL)
			if err != nil {
				logger.Log.Infof("    - Failed or too short: %s (%v)", domain, err)
				continue
			}

			article.QueryType = q.Type
			article.QueryReason = q.Reason
			article.Snippet = r.Snippet
			articles = append(articles, *article)
			domainCount[article.Domain]++
			fromQuery++
			logger.Log.Infof("    + Got %d chars from %s", len(article.Text), article.Domain)
		}
	}

	logger.Log.Infof("Scraping complete: %d articles for %s", len(articles), resolved.EventLabel)
	return articles
}

// SourceMetadata builds the persisted subset of scraped articles.
func SourceMetadata(articles []model.Article) []model.SourceMeta {
	meta := make([]model.SourceMeta, 0, len(articles))
	for _, a := range articles {
		meta = append(meta, model.SourceMeta{
			URL:       a.URL,
			Domain:    a.Domain,
			Title:     a.Title,
			QueryType: a.QueryType,
		})
	}
	return meta
}

// Consolidate builds the single document handed to the writer: event
// context, then results as ground truth, then one block per source.
// A zero-article scrape produces an explicit no-sources marker so thin
// source conditions stay detectable downstream.
func Consolidate(resolved *model.ResolvedSources, articles []model.Article) string {
	var b strings.Builder

	b.WriteString("=== EVENT CONTEXT ===\n")
	fmt.Fprintf(&b, "Event: %s\n", resolved.EventLabel)
	fmt.Fprintf(&b, "Date: %s\n", resolved.EventDate)
	fmt.Fprintf(&b, "Discipline: %s\n", resolved.Discipline)
	fmt.Fprintf(&b, "Medal Event: %s\n", yesNo(resolved.IsMedalEvent))
	b.WriteString("\n")

	b.WriteString("=== RESULTS (from database - ground truth) ===\n")
	for _, r := range resolved.Results {
		fmt.Fprintf(&b, "  %s\n", FormatResult(r))
	}
	b.WriteString("\n")

	writeSources(&b, articles, "No articles could be fetched for this event.")
	return b.String()
}

// ConsolidatePreview builds the pre-event document. There are no results
// yet, so scheduling context stands in for the ground-truth section.
func ConsolidatePreview(resolved *model.ResolvedSources, articles []model.Article) string {
	var b strings.Builder

	b.WriteString("=== EVENT CONTEXT ===\n")
	fmt.Fprintf(&b, "Event: %s\n", resolved.EventLabel)
	fmt.Fprintf(&b, "Discipline: %s\n", resolved.Discipline)
	fmt.Fprintf(&b, "Scheduled: %s CET\n", resolved.StartTime.Format("January 2, 2006 at 3:04 PM"))
	fmt.Fprintf(&b, "Medal Event: %s\n", yesNo(resolved.IsMedalEvent))
	fmt.Fprintf(&b, "Unit: %s\n", resolved.UnitName)
	b.WriteString("\n")

	writeSources(&b, articles, "No preview articles could be found for this event.")
	return b.String()
}

func writeSources(b *strings.Builder, articles []model.Article, emptyNote string) {
	for i, a := range articles {
		fmt.Fprintf(b, "=== SOURCE %d: %s ===\n", i+1, a.Domain)
		fmt.Fprintf(b, "URL: %s\n", a.URL)
		fmt.Fprintf(b, "Title: %s\n", a.Title)
		if len(a.Authors) > 0 {
			fmt.Fprintf(b, "Authors: %s\n", strings.Join(a.Authors, ", "))
		}
		if a.PublishDate != "" {
			fmt.Fprintf(b, "Published: %s\n", a.PublishDate)
		}
		fmt.Fprintf(b, "Found via: %s search - %s\n", a.QueryType, a.QueryReason)
		fmt.Fprintf(b, "Snippet: %s\n", a.Snippet)
		b.WriteString("---\n")
		b.WriteString(a.Text)
		b.WriteString("\n\n")
	}

	if len(articles) == 0 {
		b.WriteString("=== NO SOURCES FOUND ===\n")
		b.WriteString(emptyNote)
		b.WriteString("\n\n")
	}
}

// FormatResult renders one result row the way both the consolidated
// document and the editor prompts display ground truth.
func FormatResult(r model.Result) string {
	medal := ""
	switch r.MedalType {
	case model.MedalGold:
		medal = " [Gold]"
	case model.MedalSilver:
		medal = " [Silver]"
	case model.MedalBronze:
		medal = " [Bronze]"
	case "":
	default:
		medal = fmt.Sprintf(" [%s]", r.MedalType)
	}

	pos := ""
	if r.Position != nil {
		pos = fmt.Sprintf("#%d", *r.Position)
	} else {
		switch r.WinnerLoserTie {
		case "W":
			pos = "Winner"
		case "L":
			pos = "Loser"
		case "T":
			pos = "Tie"
		default:
			pos = r.WinnerLoserTie
		}
	}

	return fmt.Sprintf("%s %s (%s) - %s%s", pos, r.CompetitorName, r.NOC, r.Mark, medal)
}

// FormatResults renders all rows, one per line, for editor prompts.
func FormatResults(results []model.Result) string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, FormatResult(r))
	}
	return strings.Join(lines, "\n")
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

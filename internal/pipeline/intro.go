package pipeline

import (
	"context"

	"github.com/stosh99/olympics_tv/internal/logger"
	"github.com/stosh99/olympics_tv/internal/model"
	"github.com/stosh99/olympics_tv/internal/resolver"
	"github.com/stosh99/olympics_tv/internal/scraper"
)

// UnitLookup fetches a single schedule unit row.
type UnitLookup interface {
	Unit(ctx context.Context, eventUnitCode string) (*model.PendingEvent, error)
}

// IntroOrchestrator drives the pre-event preview pipeline. It shares the
// post-event stage shape but builds its queries without ground-truth
// results, and it refuses to write a preview from nothing: unlike the
// post-event path, zero scraped sources here is a hard failure.
type IntroOrchestrator struct {
	store   Store
	units   UnitLookup
	scraper Scraper
	writer  Writer
	editor  Editor
}

// NewIntroOrchestrator wires the pre-event pipeline.
func NewIntroOrchestrator(store Store, units UnitLookup, scr Scraper, wr Writer, ed Editor) *IntroOrchestrator {
	return &IntroOrchestrator{store: store, units: units, scraper: scr, writer: wr, editor: ed}
}

// ProcessEvent runs the pre-event pipeline for one event unit.
func (o *IntroOrchestrator) ProcessEvent(ctx context.Context, eventUnitCode string, dryRun bool) (Outcome, error) {
	logger.Log.Infof("PROCESSING [pre_event]: %s", eventUnitCode)

	unit, err := o.units.Unit(ctx, eventUnitCode)
	if err != nil {
		logger.Log.Errorf("Failed to load unit %s: %v", eventUnitCode, err)
		o.recordFailure(ctx, eventUnitCode, "Source resolution failed")
		return OutcomeFailed, &StageError{Stage: StageResolve, Reason: "Source resolution failed", Err: err}
	}

	resolved := resolver.PreviewQueries(unit)
	logger.Log.Infof("  Event: %s", resolved.EventLabel)
	for _, q := range resolved.Queries {
		logger.Log.Infof("    [%s] %s", q.Type, q.Query)
	}

	if dryRun {
		logger.Log.Info("DRY RUN - stopping before scrape")
		return OutcomeSuccess, nil
	}

	logger.Log.Info("Step 2: Scraping preview sources...")
	o.setStatus(ctx, eventUnitCode, model.StatusScraping)

	articles := o.scraper.Scrape(ctx, resolved)
	if len(articles) == 0 {
		// No results table to fall back on. A preview written from the
		// model's own knowledge would be unverifiable.
		logger.Log.Warnf("No preview sources found for %s - skipping", eventUnitCode)
		o.recordFailure(ctx, eventUnitCode, "No preview sources found")
		return OutcomeFailed, &StageError{Stage: StageScrape, Reason: "No preview sources found"}
	}

	consolidated := scraper.ConsolidatePreview(resolved, articles)
	sourcesMeta := scraper.SourceMetadata(articles)
	logger.Log.Infof("  Got %d articles, %d chars consolidated", len(articles), len(consolidated))

	logger.Log.Info("Step 3: Writing preview...")
	o.setStatus(ctx, eventUnitCode, model.StatusWriting)

	draft, err := o.writer.Write(ctx, consolidated)
	if err != nil {
		logger.Log.Errorf("Preview writing failed for %s: %v", eventUnitCode, err)
		o.recordFailure(ctx, eventUnitCode, "Writer LLM call failed")
		return OutcomeFailed, &StageError{Stage: StageWrite, Reason: "Writer LLM call failed", Err: err}
	}
	logger.Log.Infof("  Written: %d chars, $%.4f", len(draft.Content), draft.Cost)

	logger.Log.Info("Step 4: Editing (source-check + prose polish)...")
	edited, err := o.editor.Edit(ctx, draft.Content, "", consolidated)
	if err != nil {
		logger.Log.Warnf("Editor unavailable for %s - saving unproofed: %v", eventUnitCode, err)
		if perr := persist(ctx, o.store, eventUnitCode, model.TypePreEvent, draft, draft.Content, "", consolidated, sourcesMeta, 0, 0, 0); perr != nil {
			return OutcomeFailed, perr
		}
		return OutcomePartial, nil
	}

	logger.Log.Info("Step 5: Saving to database...")
	if perr := persist(ctx, o.store, eventUnitCode, model.TypePreEvent, draft, edited.ProofedContent, edited.Corrections,
		consolidated, sourcesMeta, edited.InputTokens, edited.OutputTokens, edited.Cost); perr != nil {
		return OutcomeFailed, perr
	}

	logger.Log.Infof("DONE! Total cost: $%.4f", draft.Cost+edited.Cost)
	return OutcomeSuccess, nil
}

func (o *IntroOrchestrator) setStatus(ctx context.Context, eventUnitCode, status string) {
	if err := o.store.UpsertStatus(ctx, eventUnitCode, model.TypePreEvent, status, ""); err != nil {
		logger.Log.Errorf("Failed to record status %s for %s: %v", status, eventUnitCode, err)
	}
}

func (o *IntroOrchestrator) recordFailure(ctx context.Context, eventUnitCode, reason string) {
	if err := o.store.UpsertStatus(ctx, eventUnitCode, model.TypePreEvent, model.StatusFailed, Truncate(reason, 500)); err != nil {
		logger.Log.Errorf("Failed to record failure for %s: %v", eventUnitCode, err)
	}
}

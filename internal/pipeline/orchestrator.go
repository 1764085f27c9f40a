package pipeline

import (
	"context"

	"github.com/stosh99/olympics_tv/internal/editor"
	"github.com/stosh99/olympics_tv/internal/logger"
	"github.com/stosh99/olympics_tv/internal/model"
	"github.com/stosh99/olympics_tv/internal/scraper"
	"github.com/stosh99/olympics_tv/internal/storage"
	"github.com/stosh99/olympics_tv/internal/writer"
)

// Outcome classifies a finished pipeline run. Partial means a usable draft
// was persisted without the editing passes (degraded success, not failure).
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeSuccess
	OutcomePartial
)

// Store is the persistence surface the orchestrator drives. It is the sole
// write path to commentary rows; every transition is written before the
// next stage begins so observers always see the true in-flight stage.
type Store interface {
	UpsertStatus(ctx context.Context, eventUnitCode, commentaryType, status, errorMessage string) error
	SaveCommentary(ctx context.Context, req *storage.SaveRequest) error
}

// Resolver produces the queries and ground truth for an event unit.
type Resolver interface {
	Resolve(ctx context.Context, eventUnitCode string) (*model.ResolvedSources, error)
}

// Scraper gathers source articles for resolved queries.
type Scraper interface {
	Scrape(ctx context.Context, resolved *model.ResolvedSources) []model.Article
}

// Writer generates a draft from the consolidated document.
type Writer interface {
	Write(ctx context.Context, consolidated string) (*writer.Draft, error)
}

// Editor runs the two-pass edit over a draft.
type Editor interface {
	Edit(ctx context.Context, draft, resultsText, consolidated string) (*editor.Result, error)
}

// Orchestrator drives one event through resolve → scrape → write → edit →
// persist for post-event commentary. Execution is sequential and blocking;
// a process interruption leaves the record at its last written status and
// the scheduler's eligibility query makes it resumable.
type Orchestrator struct {
	store    Store
	resolver Resolver
	scraper  Scraper
	writer   Writer
	editor   Editor
}

// NewOrchestrator wires the post-event pipeline.
func NewOrchestrator(store Store, res Resolver, scr Scraper, wr Writer, ed Editor) *Orchestrator {
	return &Orchestrator{store: store, resolver: res, scraper: scr, writer: wr, editor: ed}
}

// ProcessEvent runs the full post-event pipeline for one event unit. It is
// callable directly for manual retries; eligibility guarding is the
// scheduler's job, not re-checked here. With dryRun set it resolves, logs
// the queries, and stops before any scraping or status write.
func (o *Orchestrator) ProcessEvent(ctx context.Context, eventUnitCode string, dryRun bool) (Outcome, error) {
	logger.Log.Infof("PROCESSING [post_event]: %s", eventUnitCode)

	// Step 1: resolve sources.
	logger.Log.Info("Step 1: Resolving sources...")
	resolved, err := o.resolver.Resolve(ctx, eventUnitCode)
	if err != nil {
		logger.Log.Errorf("Failed to resolve sources for %s: %v", eventUnitCode, err)
		o.recordFailure(ctx, eventUnitCode, model.TypePostEvent, "Source resolution failed")
		return OutcomeFailed, &StageError{Stage: StageResolve, Reason: "Source resolution failed", Err: err}
	}

	logger.Log.Infof("  Event: %s", resolved.EventLabel)
	for _, q := range resolved.Queries {
		logger.Log.Infof("    [%s] %s", q.Type, q.Query)
	}

	if dryRun {
		logger.Log.Info("DRY RUN - stopping before scrape")
		return OutcomeSuccess, nil
	}

	// Step 2: scrape. An empty article list is not fatal here; ground
	// truth alone can carry a post-event piece.
	logger.Log.Info("Step 2: Scraping sources...")
	o.setStatus(ctx, eventUnitCode, model.TypePostEvent, model.StatusScraping)

	articles := o.scraper.Scrape(ctx, resolved)
	if len(articles) == 0 {
		logger.Log.Warnf("No articles found for %s - writing with results only", eventUnitCode)
	}

	consolidated := scraper.Consolidate(resolved, articles)
	sourcesMeta := scraper.SourceMetadata(articles)
	logger.Log.Infof("  Got %d articles, %d chars consolidated", len(articles), len(consolidated))

	// Step 3: write.
	logger.Log.Info("Step 3: Writing commentary...")
	o.setStatus(ctx, eventUnitCode, model.TypePostEvent, model.StatusWriting)

	draft, err := o.writer.Write(ctx, consolidated)
	if err != nil {
		logger.Log.Errorf("Commentary writing failed for %s: %v", eventUnitCode, err)
		o.recordFailure(ctx, eventUnitCode, model.TypePostEvent, "Writer LLM call failed")
		return OutcomeFailed, &StageError{Stage: StageWrite, Reason: "Writer LLM call failed", Err: err}
	}
	logger.Log.Infof("  Written: %d chars, $%.4f", len(draft.Content), draft.Cost)

	// Step 4: edit. If the edit pipeline is unreachable, the unedited
	// draft is still persisted - degraded success.
	logger.Log.Info("Step 4: Editing (fact-check + prose polish)...")
	edited, err := o.editor.Edit(ctx, draft.Content, scraper.FormatResults(resolved.Results), consolidated)
	if err != nil {
		logger.Log.Warnf("Editor unavailable for %s - saving unproofed: %v", eventUnitCode, err)
		if perr := persist(ctx, o.store, eventUnitCode, model.TypePostEvent, draft, draft.Content, "", consolidated, sourcesMeta, 0, 0, 0); perr != nil {
			return OutcomeFailed, perr
		}
		return OutcomePartial, nil
	}

	// Step 5: persist.
	logger.Log.Info("Step 5: Saving to database...")
	if perr := persist(ctx, o.store, eventUnitCode, model.TypePostEvent, draft, edited.ProofedContent, edited.Corrections,
		consolidated, sourcesMeta, edited.InputTokens, edited.OutputTokens, edited.Cost); perr != nil {
		return OutcomeFailed, perr
	}

	logger.Log.Infof("DONE! Total cost: $%.4f", draft.Cost+edited.Cost)
	return OutcomeSuccess, nil
}

// persist writes the finished record. Token counts and cost are the sum of
// the writer's and editor's usage; the editor portion is zero when the edit
// passes were skipped.
func persist(ctx context.Context, store Store, eventUnitCode, commentaryType string, draft *writer.Draft,
	proofed, corrections, consolidated string, sources []model.SourceMeta,
	editInTokens, editOutTokens int, editCost float64) error {

	req := &storage.SaveRequest{
		EventUnitCode:  eventUnitCode,
		CommentaryType: commentaryType,
		Content:        draft.Content,
		ProofedContent: proofed,
		Sources:        sources,
		Snapshot: model.ScrapeSnapshot{
			ConsolidatedText: consolidated,
			Corrections:      corrections,
		},
		LLMModel:      draft.Model,
		PromptVersion: draft.PromptVersion,
		InputTokens:   draft.InputTokens + editInTokens,
		OutputTokens:  draft.OutputTokens + editOutTokens,
		EstimatedCost: draft.Cost + editCost,
	}

	if err := store.SaveCommentary(ctx, req); err != nil {
		logger.Log.Errorf("Failed to save commentary for %s: %v", eventUnitCode, err)
		return &StageError{Stage: StagePersist, Reason: "Database save failed", Err: err}
	}
	logger.Log.Infof("Saved commentary for %s", eventUnitCode)
	return nil
}

func (o *Orchestrator) setStatus(ctx context.Context, eventUnitCode, commentaryType, status string) {
	if err := o.store.UpsertStatus(ctx, eventUnitCode, commentaryType, status, ""); err != nil {
		logger.Log.Errorf("Failed to record status %s for %s: %v", status, eventUnitCode, err)
	}
}

func (o *Orchestrator) recordFailure(ctx context.Context, eventUnitCode, commentaryType, reason string) {
	if err := o.store.UpsertStatus(ctx, eventUnitCode, commentaryType, model.StatusFailed, Truncate(reason, 500)); err != nil {
		logger.Log.Errorf("Failed to record failure for %s: %v", eventUnitCode, err)
	}
}

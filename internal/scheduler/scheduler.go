package scheduler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/stosh99/olympics_tv/internal/config"
	"github.com/stosh99/olympics_tv/internal/logger"
	"github.com/stosh99/olympics_tv/internal/model"
	"github.com/stosh99/olympics_tv/internal/pipeline"
)

// Processor runs the full pipeline for one event unit.
type Processor interface {
	ProcessEvent(ctx context.Context, eventUnitCode string, dryRun bool) (pipeline.Outcome, error)
}

// Store is the eligibility query surface plus the failure write path for
// errors that escape the pipeline itself.
type Store interface {
	PostEventPending(ctx context.Context, window time.Duration) ([]model.PendingEvent, error)
	PreEventPending(ctx context.Context, window time.Duration) ([]model.PendingEvent, error)
	PostEventBacklog(ctx context.Context, medalsOnly bool) ([]model.PendingEvent, error)
	UpsertStatus(ctx context.Context, eventUnitCode, commentaryType, status, errorMessage string) error
}

// Summary tallies one scheduler sweep.
type Summary struct {
	Processed int
	Failed    int
	Skipped   int
}

// Scheduler finds eligible event units and feeds them through the
// pipelines one at a time. Events are independent, so one failure never
// stops the sweep.
type Scheduler struct {
	store  Store
	post   Processor
	pre    Processor
	cfg    config.SchedulerConfig
	dryRun bool
}

func New(store Store, post, pre Processor, cfg config.SchedulerConfig, dryRun bool) *Scheduler {
	return &Scheduler{store: store, post: post, pre: pre, cfg: cfg, dryRun: dryRun}
}

// skipUnit filters pre-event units nobody previews: training runs,
// practice sessions, and warm-ups share the schedule table with real
// competition units.
func skipUnit(unitName string) bool {
	name := strings.ToLower(unitName)
	for _, word := range []string{"training", "practice", "warm"} {
		if strings.Contains(name, word) {
			return true
		}
	}
	return false
}

// Run performs one sweep: post-event units whose start time fell inside
// the post window, then pre-event units starting inside the pre window.
func (s *Scheduler) Run(ctx context.Context, postOnly, preOnly bool) (*Summary, error) {
	sum := &Summary{}

	if !preOnly {
		events, err := s.store.PostEventPending(ctx, s.cfg.PostEventWindow)
		if err != nil {
			return nil, err
		}
		logger.Log.Infof("Found %d post-event units in the last %s", len(events), s.cfg.PostEventWindow)
		s.sweep(ctx, events, s.post, model.TypePostEvent, sum)
	}

	if !postOnly {
		events, err := s.store.PreEventPending(ctx, s.cfg.PreEventWindow)
		if err != nil {
			return nil, err
		}
		logger.Log.Infof("Found %d pre-event units in the next %s", len(events), s.cfg.PreEventWindow)
		s.sweep(ctx, events, s.pre, model.TypePreEvent, sum)
	}

	logger.Log.Infof("Sweep complete: %d processed, %d failed, %d skipped",
		sum.Processed, sum.Failed, sum.Skipped)
	return sum, nil
}

// Backlog processes every finished unit without commentary, medal events
// first. Used to catch up after downtime rather than on a schedule.
func (s *Scheduler) Backlog(ctx context.Context, medalsOnly bool, limit int) (*Summary, error) {
	events, err := s.store.PostEventBacklog(ctx, medalsOnly)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	logger.Log.Infof("Backlog: %d units to process", len(events))

	sum := &Summary{}
	s.sweep(ctx, events, s.post, model.TypePostEvent, sum)
	logger.Log.Infof("Backlog complete: %d processed, %d failed, %d skipped",
		sum.Processed, sum.Failed, sum.Skipped)
	return sum, nil
}

func (s *Scheduler) sweep(ctx context.Context, events []model.PendingEvent, proc Processor, commentaryType string, sum *Summary) {
	for _, ev := range events {
		if ctx.Err() != nil {
			logger.Log.Warn("Sweep cancelled")
			return
		}
		if commentaryType == model.TypePreEvent && skipUnit(ev.UnitName) {
			logger.Log.Debugf("Skipping non-competition unit: %s (%s)", ev.EventUnitCode, ev.UnitName)
			sum.Skipped++
			continue
		}

		outcome, err := proc.ProcessEvent(ctx, ev.EventUnitCode, s.dryRun)
		if err != nil {
			// Stage failures already wrote their own failed record;
			// anything else gets recorded here so the unit is not
			// silently retried forever.
			var stageErr *pipeline.StageError
			if !errors.As(err, &stageErr) {
				logger.Log.Errorf("Unexpected error processing %s: %v", ev.EventUnitCode, err)
				if uerr := s.store.UpsertStatus(ctx, ev.EventUnitCode, commentaryType,
					model.StatusFailed, pipeline.Truncate(err.Error(), 500)); uerr != nil {
					logger.Log.Errorf("Failed to record failure for %s: %v", ev.EventUnitCode, uerr)
				}
			}
			sum.Failed++
			continue
		}
		if outcome == pipeline.OutcomeFailed {
			sum.Failed++
			continue
		}
		sum.Processed++
	}
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stosh99/olympics_tv/internal/config"
	"github.com/stosh99/olympics_tv/internal/model"
)

// ErrEventNotFound is returned when an event unit code matches no row.
var ErrEventNotFound = errors.New("event not found")

// Store is the single write path to commentary rows and the read path for
// event context. All writes are single-row upserts or updates keyed by
// (event_unit_code, commentary_type).
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres and ensures the commentary table exists. The
// schedule/result tables are owned by the ingestion side and are only read.
func Open(cfg config.DBConfig) (*Store, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.AutoMigrate(&model.Commentary{}); err != nil {
		return nil, fmt.Errorf("failed to migrate commentary table: %w", err)
	}

	return &Store{db: db}, nil
}

// New wraps an existing gorm connection.
func New(db *gorm.DB) *Store { return &Store{db: db} }

type contextRow struct {
	Discipline    string
	Event         string
	EventUnitName string
	StartTime     time.Time
	MedalFlag     bool
}

type resultRow struct {
	CompetitorName string
	NOC            string `gorm:"column:noc"`
	Position       *int
	Mark           string
	MedalType      string
	WinnerLoserTie string
}

// EventContext loads an event unit with its result rows. Results are
// ordered medal tiers first (gold, silver, bronze), then by finishing
// position with nulls last.
func (s *Store) EventContext(ctx context.Context, eventUnitCode string) (*model.EventContext, error) {
	var row contextRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT d.name AS discipline, e.name AS event, su.event_unit_name,
		       su.start_time, su.medal_flag
		FROM schedule_units su
		JOIN events e ON su.event_id = e.event_id
		JOIN disciplines d ON e.discipline_code = d.code
		WHERE su.event_unit_code = ?
	`, eventUnitCode).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.Event == "" && row.Discipline == "" {
		return nil, ErrEventNotFound
	}

	var results []resultRow
	err = s.db.WithContext(ctx).Raw(`
		SELECT competitor_name, noc, position,
		       COALESCE(mark, '') AS mark,
		       COALESCE(medal_type, '') AS medal_type,
		       COALESCE(winner_loser_tie, '') AS winner_loser_tie
		FROM results
		WHERE event_unit_code = ?
		ORDER BY
			CASE WHEN medal_type = 'ME_GOLD' THEN 1
			     WHEN medal_type = 'ME_SILVER' THEN 2
			     WHEN medal_type = 'ME_BRONZE' THEN 3
			     ELSE 4 END,
			position NULLS LAST
	`, eventUnitCode).Scan(&results).Error
	if err != nil {
		return nil, err
	}

	out := &model.EventContext{
		EventUnitCode: eventUnitCode,
		Discipline:    row.Discipline,
		Event:         row.Event,
		UnitName:      row.EventUnitName,
		StartTime:     row.StartTime,
		MedalFlag:     row.MedalFlag,
	}
	for _, r := range results {
		out.Results = append(out.Results, model.Result{
			CompetitorName: r.CompetitorName,
			NOC:            r.NOC,
			Position:       r.Position,
			Mark:           r.Mark,
			MedalType:      r.MedalType,
			WinnerLoserTie: r.WinnerLoserTie,
		})
	}
	return out, nil
}

// CountryNames resolves NOC codes to display country names.
func (s *Store) CountryNames(ctx context.Context, nocs []string) (map[string]string, error) {
	names := make(map[string]string)
	if len(nocs) == 0 {
		return names, nil
	}

	var rows []struct {
		NOC         string `gorm:"column:noc"`
		CountryName string
	}
	err := s.db.WithContext(ctx).
		Table("country_sources").
		Select("noc, country_name").
		Where("noc IN ?", nocs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		names[r.NOC] = r.CountryName
	}
	return names, nil
}

// Unit loads a single schedule unit for manual pre-event processing.
func (s *Store) Unit(ctx context.Context, eventUnitCode string) (*model.PendingEvent, error) {
	var row model.PendingEvent
	err := s.db.WithContext(ctx).Raw(`
		SELECT su.event_unit_code, d.name AS discipline, e.name AS event,
		       su.event_unit_name AS unit_name, su.medal_flag, su.start_time,
		       COALESCE(su.status, '') AS status
		FROM schedule_units su
		JOIN events e ON su.event_id = e.event_id
		JOIN disciplines d ON e.discipline_code = d.code
		WHERE su.event_unit_code = ?
	`, eventUnitCode).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.EventUnitCode == "" {
		return nil, ErrEventNotFound
	}
	return &row, nil
}

// UpsertStatus records a status transition, creating the commentary row on
// first write. Existing rows are updated in place so at most one row ever
// exists per (event unit, type).
func (s *Store) UpsertStatus(ctx context.Context, eventUnitCode, commentaryType, status, errorMessage string) error {
	var existing model.Commentary
	err := s.db.WithContext(ctx).
		Where("event_unit_code = ? AND commentary_type = ?", eventUnitCode, commentaryType).
		First(&existing).Error

	switch {
	case err == nil:
		updates := map[string]any{"status": status, "updated_at": time.Now()}
		if errorMessage != "" {
			updates["error_message"] = errorMessage
		}
		return s.db.WithContext(ctx).
			Model(&model.Commentary{}).
			Where("event_unit_code = ? AND commentary_type = ?", eventUnitCode, commentaryType).
			Updates(updates).Error

	case errors.Is(err, gorm.ErrRecordNotFound):
		rec := model.Commentary{
			EventUnitCode:  eventUnitCode,
			CommentaryType: commentaryType,
			CommentaryDate: time.Now(),
			Status:         status,
			ErrorMessage:   errorMessage,
		}
		return s.db.WithContext(ctx).Create(&rec).Error

	default:
		return err
	}
}

// SaveRequest carries the final output of one pipeline run.
type SaveRequest struct {
	EventUnitCode  string
	CommentaryType string
	Content        string
	ProofedContent string
	Sources        []model.SourceMeta
	Snapshot       model.ScrapeSnapshot
	LLMModel       string
	PromptVersion  string
	InputTokens    int
	OutputTokens   int
	EstimatedCost  float64
}

// SaveCommentary persists a completed run and marks the record proofed.
// The row is guaranteed to exist: the orchestrator always writes a status
// before reaching this point.
func (s *Store) SaveCommentary(ctx context.Context, req *SaveRequest) error {
	sourcesJSON, err := json.Marshal(req.Sources)
	if err != nil {
		return fmt.Errorf("marshal sources: %w", err)
	}
	snapshotJSON, err := json.Marshal(req.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal scrape snapshot: %w", err)
	}

	return s.db.WithContext(ctx).
		Model(&model.Commentary{}).
		Where("event_unit_code = ? AND commentary_type = ?", req.EventUnitCode, req.CommentaryType).
		Updates(map[string]any{
			"content":         req.Content,
			"proofed_content": req.ProofedContent,
			"sources":         datatypes.JSON(sourcesJSON),
			"raw_scrape_data": datatypes.JSON(snapshotJSON),
			"status":          model.StatusProofed,
			"llm_model":       req.LLMModel,
			"prompt_version":  req.PromptVersion,
			"input_tokens":    req.InputTokens,
			"output_tokens":   req.OutputTokens,
			"estimated_cost":  req.EstimatedCost,
			"updated_at":      time.Now(),
		}).Error
}

// Commentary returns the record for one (event unit, type) key, or nil when
// none exists.
func (s *Store) Commentary(ctx context.Context, eventUnitCode, commentaryType string) (*model.Commentary, error) {
	var rec model.Commentary
	err := s.db.WithContext(ctx).
		Where("event_unit_code = ? AND commentary_type = ?", eventUnitCode, commentaryType).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// PostEventPending finds finished units with results inside the trailing
// window that have no post-event record in an active-or-done status. Failed
// records stay eligible so they are retried on the next run.
func (s *Store) PostEventPending(ctx context.Context, window time.Duration) ([]model.PendingEvent, error) {
	var rows []model.PendingEvent
	err := s.db.WithContext(ctx).Raw(`
		SELECT DISTINCT su.event_unit_code, d.name AS discipline,
		       e.name AS event, su.event_unit_name AS unit_name,
		       su.medal_flag, su.start_time, COALESCE(su.status, '') AS status
		FROM schedule_units su
		JOIN events e ON su.event_id = e.event_id
		JOIN disciplines d ON e.discipline_code = d.code
		JOIN results r ON r.event_unit_code = su.event_unit_code
		WHERE su.status = 'FINISHED'
		AND su.start_time >= NOW() - ?::interval
		AND su.event_unit_code NOT IN (
			SELECT event_unit_code FROM commentary
			WHERE commentary_type = 'post_event'
			AND status IN ('published', 'proofed', 'writing', 'analyzing')
			AND event_unit_code IS NOT NULL
		)
		ORDER BY su.medal_flag DESC, su.start_time
	`, window.String()).Scan(&rows).Error
	return rows, err
}

// PreEventPending finds units starting inside the forward window that have
// no pre-event record in {proofed, published, writing}. A previously failed
// preview is offered again.
func (s *Store) PreEventPending(ctx context.Context, window time.Duration) ([]model.PendingEvent, error) {
	var rows []model.PendingEvent
	err := s.db.WithContext(ctx).Raw(`
		SELECT DISTINCT su.event_unit_code, d.name AS discipline,
		       e.name AS event, su.event_unit_name AS unit_name,
		       su.medal_flag, su.start_time, COALESCE(su.status, '') AS status
		FROM schedule_units su
		JOIN events e ON su.event_id = e.event_id
		JOIN disciplines d ON e.discipline_code = d.code
		WHERE su.start_time > NOW()
		AND su.start_time <= NOW() + ?::interval
		AND su.event_unit_code NOT IN (
			SELECT event_unit_code FROM commentary
			WHERE commentary_type = 'pre_event'
			AND status IN ('proofed', 'published', 'writing')
			AND event_unit_code IS NOT NULL
		)
		ORDER BY su.medal_flag DESC, su.start_time
	`, window.String()).Scan(&rows).Error
	return rows, err
}

// PostEventBacklog lists every finished unit with results that has no
// completed post-event commentary, regardless of window. Used by the batch
// command.
func (s *Store) PostEventBacklog(ctx context.Context, medalsOnly bool) ([]model.PendingEvent, error) {
	q := `
		SELECT DISTINCT r.event_unit_code, d.name AS discipline,
		       e.name AS event, su.event_unit_name AS unit_name,
		       su.medal_flag, su.start_time, COALESCE(su.status, '') AS status
		FROM results r
		JOIN schedule_units su ON r.event_unit_code = su.event_unit_code
		JOIN events e ON su.event_id = e.event_id
		JOIN disciplines d ON e.discipline_code = d.code
		LEFT JOIN commentary c
			ON c.event_unit_code = r.event_unit_code
			AND c.commentary_type = 'post_event'
			AND c.content IS NOT NULL
		WHERE su.status = 'FINISHED'
		AND c.id IS NULL
	`
	if medalsOnly {
		q += " AND su.medal_flag"
	}
	q += " ORDER BY su.start_time DESC"

	var rows []model.PendingEvent
	err := s.db.WithContext(ctx).Raw(q).Scan(&rows).Error
	return rows, err
}

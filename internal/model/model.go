package model

import (
	"time"

	"gorm.io/datatypes"
)

// Commentary lifecycle statuses. Transitions move forward only, except the
// jump to failed which is allowed from any non-terminal state. Analyzing is
// reserved: it appears in the post-event exclusion set but is never written.
const (
	StatusPending   = "pending"
	StatusScraping  = "scraping"
	StatusAnalyzing = "analyzing"
	StatusWriting   = "writing"
	StatusProofed   = "proofed"
	StatusPublished = "published"
	StatusFailed    = "failed"
)

// Commentary types, one record per (event unit, type).
const (
	TypePostEvent = "post_event"
	TypePreEvent  = "pre_event"
)

// Medal tiers as stored in the results table.
const (
	MedalGold   = "ME_GOLD"
	MedalSilver = "ME_SILVER"
	MedalBronze = "ME_BRONZE"
)

// Result is one competitor row for an event unit. Rows are appended once
// results are detected and never mutated; they are the ground truth every
// generated claim is checked against.
type Result struct {
	CompetitorName string `json:"name"`
	NOC            string `json:"noc"`
	Position       *int   `json:"position"`
	Mark           string `json:"mark"`
	MedalType      string `json:"medal_type"`
	WinnerLoserTie string `json:"wlt"`
}

// EventContext is the event unit plus its ordered result rows, as loaded
// by the resolver. Results arrive gold, silver, bronze, then the rest by
// finishing position with nulls last.
type EventContext struct {
	EventUnitCode string
	Discipline    string
	Event         string
	UnitName      string
	StartTime     time.Time
	MedalFlag     bool
	Results       []Result
}

// Query is an ephemeral resolver output. It is never persisted; the full
// set is reconstructible from the event context at any time.
type Query struct {
	Type   string
	NOC    string
	Query  string
	Reason string
}

// ResolvedSources is the resolver's output for one event unit: the label
// and ground truth the downstream stages build on, plus the search queries.
type ResolvedSources struct {
	EventUnitCode string
	EventLabel    string
	EventDate     string
	Discipline    string
	UnitName      string
	StartTime     time.Time
	IsMedalEvent  bool
	Results       []Result
	Queries       []Query
}

// Article is a fetched and extracted source page. Only its metadata is
// persisted; the body text lives inside the consolidated snapshot.
type Article struct {
	URL         string
	Domain      string
	Title       string
	Text        string
	Authors     []string
	PublishDate string
	QueryType   string
	QueryReason string
	Snippet     string
}

// SourceMeta is the persisted subset of an Article.
type SourceMeta struct {
	URL       string `json:"url"`
	Domain    string `json:"domain"`
	Title     string `json:"title"`
	QueryType string `json:"query_type"`
}

// ScrapeSnapshot is stored alongside the commentary so the exact inputs to
// generation remain auditable.
type ScrapeSnapshot struct {
	ConsolidatedText string `json:"consolidated_text"`
	Corrections      string `json:"corrections"`
}

// Commentary is the persisted record, one row per (event unit, type).
type Commentary struct {
	ID             uint           `gorm:"primaryKey"`
	EventUnitCode  string         `gorm:"uniqueIndex:idx_commentary_unit_type"`
	CommentaryType string         `gorm:"uniqueIndex:idx_commentary_unit_type"`
	CommentaryDate time.Time
	Status         string
	Content        string
	ProofedContent string
	Sources        datatypes.JSON
	RawScrapeData  datatypes.JSON
	LLMModel       string `gorm:"column:llm_model"`
	PromptVersion  string
	InputTokens    int
	OutputTokens   int
	EstimatedCost  float64
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName pins the production table name.
func (Commentary) TableName() string { return "commentary" }

// PendingEvent is one row from a scheduler eligibility query.
type PendingEvent struct {
	EventUnitCode string
	Discipline    string
	Event         string
	UnitName      string
	MedalFlag     bool
	StartTime     time.Time
	Status        string
}

package pipeline

import "fmt"

// Stage identifies the pipeline stage a failure belongs to.
type Stage string

const (
	StageResolve Stage = "resolve"
	StageScrape  Stage = "scrape"
	StageWrite   Stage = "write"
	StagePersist Stage = "persist"
)

// StageError is a typed per-event failure. The orchestrator has already
// recorded it on the commentary row by the time it is returned, so batch
// drivers only need to count it.
type StageError struct {
	Stage  Stage
	Reason string
	Err    error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Reason)
}

func (e *StageError) Unwrap() error { return e.Err }

// Truncate bounds an error message before it is persisted.
func Truncate(msg string, max int) string {
	if len(msg) <= max {
		return msg
	}
	return msg[:max]
}

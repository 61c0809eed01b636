package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jonathan/exercise-tracker/internal/counting"
	"github.com/jonathan/exercise-tracker/internal/db"
	"github.com/jonathan/exercise-tracker/internal/pdftext"
)

// Store is the part of the catalogue the estimator reads and writes.
type Store interface {
	ListExercises(ctx context.Context) ([]db.ExerciseRow, error)
	UpdateExerciseCount(ctx context.Context, id uuid.UUID, count int) error
}

// Retriever downloads a document.
type Retriever interface {
	Document(ctx context.Context, url string) ([]byte, error)
}

// ExtractFunc turns document bytes into text.
type ExtractFunc func(data []byte) (string, error)

// Outcome is the final state of one record after a pass.
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeFailed    Outcome = "failed"
)

// Stage names the step a record reached, or failed at.
type Stage string

const (
	StageValidate Stage = "validate"
	StageRetrieve Stage = "retrieve"
	StageExtract  Stage = "extract"
	StageEstimate Stage = "estimate"
	StageUpdate   Stage = "update"
)

// RecordResult describes what happened to one record.
type RecordResult struct {
	ID       uuid.UUID
	Title    string
	URL      string
	Outcome  Outcome
	Stage    Stage
	Previous *int
	Estimate int
	Tier     counting.Tier
	Err      error
}

// Summary aggregates the results of one pass.
type Summary struct {
	Total     int
	Updated   int
	Unchanged int
	Skipped   int
	Failed    int
	Duration  time.Duration
	Results   []RecordResult
}

func (s *Summary) add(r RecordResult) {
	s.Total++
	switch r.Outcome {
	case OutcomeUpdated:
		s.Updated++
	case OutcomeUnchanged:
		s.Unchanged++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
	s.Results = append(s.Results, r)
}

// Estimator recomputes exercise counts for every catalogue record, one record at a time.
type Estimator struct {
	store     Store
	retriever Retriever
	extract   ExtractFunc
	logger    zerolog.Logger
}

// NewEstimator creates an Estimator that extracts text with pdftext.Extract.
func NewEstimator(store Store, retriever Retriever, logger zerolog.Logger) *Estimator {
	return &Estimator{
		store:     store,
		retriever: retriever,
		extract:   pdftext.Extract,
		logger:    logger,
	}
}

// WithExtractor replaces the text extraction step.
func (e *Estimator) WithExtractor(fn ExtractFunc) *Estimator {
	e.extract = fn
	return e
}

// Run performs one full pass over the catalogue. Per-record failures are recorded in the
// summary and never abort the pass; only a failure to list the catalogue or a cancelled
// context returns an error.
func (e *Estimator) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	rows, err := e.store.ListExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalogue: %w", err)
	}

	summary := &Summary{}
	if len(rows) == 0 {
		e.logger.Info().Msg("no exercises found in the catalogue")
		summary.Duration = time.Since(start)
		return summary, nil
	}

	e.logger.Info().Int("count", len(rows)).Msgf("%d exercises to analyse", len(rows))

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			summary.Duration = time.Since(start)
			return summary, err
		}
		result := e.processRecord(ctx, row)
		e.logResult(result)
		summary.add(result)
	}

	summary.Duration = time.Since(start)
	return summary, nil
}

// processRecord runs retrieve, extract, estimate and the conditional update for one row.
func (e *Estimator) processRecord(ctx context.Context, row db.ExerciseRow) (result RecordResult) {
	rec, err := RecordFromRow(row)
	result = RecordResult{
		ID:       rec.ID,
		Title:    rec.Title,
		URL:      rec.DocumentURL,
		Previous: rec.ExerciseCount,
	}
	if err != nil {
		result.Outcome = OutcomeSkipped
		result.Stage = StageValidate
		result.Err = err
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			result.Outcome = OutcomeFailed
			result.Err = fmt.Errorf("panic during %s: %v", result.Stage, r)
		}
	}()

	result.Stage = StageRetrieve
	data, err := e.retriever.Document(ctx, rec.DocumentURL)
	if err != nil {
		return failed(result, err)
	}

	result.Stage = StageExtract
	text, err := e.extract(data)
	if err != nil {
		return failed(result, err)
	}

	result.Stage = StageEstimate
	breakdown := counting.Explain(text)
	result.Estimate = breakdown.Estimate
	result.Tier = breakdown.Tier

	if rec.ExerciseCount != nil && *rec.ExerciseCount == breakdown.Estimate {
		result.Outcome = OutcomeUnchanged
		return result
	}

	result.Stage = StageUpdate
	if err := e.store.UpdateExerciseCount(ctx, rec.ID, breakdown.Estimate); err != nil {
		return failed(result, &UpdateError{ID: rec.ID, Count: breakdown.Estimate, Cause: err})
	}
	result.Outcome = OutcomeUpdated
	return result
}

func failed(result RecordResult, err error) RecordResult {
	result.Outcome = OutcomeFailed
	result.Err = err
	return result
}

func (e *Estimator) logResult(r RecordResult) {
	var ev *zerolog.Event
	switch r.Outcome {
	case OutcomeFailed:
		ev = e.logger.Warn()
	default:
		ev = e.logger.Info()
	}
	ev = ev.Str("title", r.Title).Str("outcome", string(r.Outcome)).Str("stage", string(r.Stage))
	if r.Err != nil {
		ev = ev.Err(r.Err)
	}

	switch r.Outcome {
	case OutcomeSkipped:
		ev.Msgf("%s: %s, skipped", r.Title, skipReason(r.Err))
	case OutcomeFailed:
		if r.Stage == StageUpdate {
			ev.Int("estimate", r.Estimate).Msgf("%s: %d exercises found, update failed", r.Title, r.Estimate)
			return
		}
		ev.Msgf("%s: %s failed", r.Title, r.Stage)
	case OutcomeUnchanged:
		ev.Int("estimate", r.Estimate).Str("tier", string(r.Tier)).
			Msgf("%s: %d exercises found, nothing to update", r.Title, r.Estimate)
	case OutcomeUpdated:
		ev.Int("estimate", r.Estimate).Str("tier", string(r.Tier)).Str("previous", formatCount(r.Previous)).
			Msgf("%s: %d exercises found, updated (previous %s)", r.Title, r.Estimate, formatCount(r.Previous))
	}
}

func skipReason(err error) string {
	var invalid *InvalidRecordError
	if errors.As(err, &invalid) {
		return invalid.Message
	}
	return "invalid record"
}

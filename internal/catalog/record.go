package catalog

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/exercise-tracker/internal/db"
)

// UntitledLabel is shown for records stored without a title.
const UntitledLabel = "(untitled)"

var validate = validator.New()

// Record is a catalogue entry as seen by the estimator.
type Record struct {
	ID            uuid.UUID
	DocumentURL   string `validate:"required,http_url"`
	Title         string
	ExerciseCount *int // nil until a first estimate is stored
}

// RecordFromRow converts a stored row, returning an *InvalidRecordError when it has no usable document URL.
// The returned Record always carries the row's id and title so failures can be reported.
func RecordFromRow(row db.ExerciseRow) (Record, error) {
	rec := Record{
		ID:            row.ID,
		Title:         UntitledLabel,
		ExerciseCount: row.ExerciseCount,
	}
	if row.Title != nil && *row.Title != "" {
		rec.Title = *row.Title
	}

	if row.ID == uuid.Nil {
		return rec, &InvalidRecordError{Message: "missing id"}
	}
	if row.DocumentURL == nil {
		return rec, &InvalidRecordError{Message: "missing document URL"}
	}
	rec.DocumentURL = *row.DocumentURL

	if err := validate.Struct(rec); err != nil {
		return rec, &InvalidRecordError{Message: "unusable document URL", Cause: err}
	}
	return rec, nil
}

// formatCount renders a stored count, using "none" for an unset value.
func formatCount(n *int) string {
	if n == nil {
		return "none"
	}
	return strconv.Itoa(*n)
}

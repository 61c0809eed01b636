package db

import (
	"time"

	"github.com/google/uuid"
)

// ExerciseRow is one row of the exercises table as read by the estimator.
// Every column other than id is nullable.
type ExerciseRow struct {
	ID            uuid.UUID `json:"id"`
	DocumentURL   *string   `json:"document_url,omitempty"`
	Title         *string   `json:"title,omitempty"`
	ExerciseCount *int      `json:"exercise_count,omitempty"`
}

// Exercise is a full catalogue entry.
type Exercise struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Chapter       string    `json:"chapter"`
	Level         string    `json:"level"`
	Category      string    `json:"category"`
	DocumentURL   string    `json:"document_url"`
	IsPremium     bool      `json:"is_premium"`
	ExerciseCount *int      `json:"exercise_count,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ExerciseInput is what discovery writes for a document it found.
type ExerciseInput struct {
	Title       string `json:"title"`
	Chapter     string `json:"chapter"`
	Level       string `json:"level"`
	Category    string `json:"category"`
	DocumentURL string `json:"document_url"`
	IsPremium   bool   `json:"is_premium"`
}

// Level values written by discovery
const (
	LevelSup   = "Sup"
	LevelSpe   = "Spé"
	LevelOral  = "Oral"
	LevelOther = "Autre"
)

// Category values written by discovery
const (
	CategoryAlgebra  = "Algèbre"
	CategoryAnalysis = "Analyse"
	CategoryProba    = "Proba"
	CategoryOther    = "Autre"
)

package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrExerciseNotFound is returned when an update targets an id that no longer exists.
var ErrExerciseNotFound = errors.New("exercise not found")

// -----------------------------------------------------------------------------
// Exercise Methods
// -----------------------------------------------------------------------------

// ListExercises returns the columns the estimator needs for every exercise, in storage order
func (db *DB) ListExercises(ctx context.Context) ([]ExerciseRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, document_url, title, exercise_count FROM exercises`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	defer rows.Close()

	var exercises []ExerciseRow
	for rows.Next() {
		var e ExerciseRow
		if err := rows.Scan(&e.ID, &e.DocumentURL, &e.Title, &e.ExerciseCount); err != nil {
			return nil, fmt.Errorf("failed to scan exercise: %w", err)
		}
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exercises: %w", err)
	}
	return exercises, nil
}

// UpdateExerciseCount sets exercise_count for a single exercise and touches nothing else
func (db *DB) UpdateExerciseCount(ctx context.Context, id uuid.UUID, count int) error {
	if count < 0 {
		return fmt.Errorf("exercise count must be non-negative, got %d", count)
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE exercises SET exercise_count = $1 WHERE id = $2`,
		count, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update exercise count: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrExerciseNotFound, id)
	}
	return nil
}

// GetExerciseByURL retrieves a catalogue entry by its canonical document URL
func (db *DB) GetExerciseByURL(ctx context.Context, documentURL string) (*Exercise, error) {
	var e Exercise
	err := db.pool.QueryRow(ctx,
		`SELECT id, COALESCE(title, ''), COALESCE(chapter, ''), COALESCE(level, ''), COALESCE(category, ''),
		        document_url, is_premium, exercise_count, created_at, updated_at
		 FROM exercises WHERE document_url = $1`,
		documentURL,
	).Scan(&e.ID, &e.Title, &e.Chapter, &e.Level, &e.Category,
		&e.DocumentURL, &e.IsPremium, &e.ExerciseCount, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get exercise: %w", err)
	}
	return &e, nil
}

// UpsertExercises inserts or refreshes entries keyed by document_url in one transaction.
// is_premium and exercise_count of existing rows are left alone.
func (db *DB) UpsertExercises(ctx context.Context, inputs []ExerciseInput) (int, error) {
	if len(inputs) == 0 {
		return 0, nil
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, in := range inputs {
		batch.Queue(
			`INSERT INTO exercises (title, chapter, level, category, document_url, is_premium)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (document_url) DO UPDATE SET
			   title = EXCLUDED.title,
			   chapter = EXCLUDED.chapter,
			   level = EXCLUDED.level,
			   category = EXCLUDED.category,
			   updated_at = NOW()`,
			in.Title, in.Chapter, in.Level, in.Category, in.DocumentURL, in.IsPremium,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for _, in := range inputs {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return 0, fmt.Errorf("failed to upsert exercise %s: %w", in.DocumentURL, err)
		}
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit upsert: %w", err)
	}
	return len(inputs), nil
}

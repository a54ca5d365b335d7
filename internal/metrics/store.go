// Package metrics persists per-call token usage so cost can be audited
// after the fact.
package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"weekly-menu-planner/internal/llm"
)

// Metric kinds recorded by the generators.
const (
	KindMenuDay = "menu_day"
	KindRecipe  = "recipe"
)

// GenerationMetric records metadata for a single LLM call.
type GenerationMetric struct {
	RunID            string
	Kind             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Duration         time.Duration
	Degraded         bool
	RecordedAt       time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m GenerationMetric) error {
	ts := m.RecordedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	degraded := 0
	if m.Degraded {
		degraded = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO generation_metrics
			(run_id, kind, model, prompt_tokens, completion_tokens, total_tokens, duration_ms, degraded, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.RunID, m.Kind, m.Model,
		m.PromptTokens, m.CompletionTokens, m.TotalTokens,
		m.Duration.Milliseconds(), degraded, ts.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to record metric: %w", err)
	}
	return nil
}

// RecordUsage records a metric built from a generator response.
func (s *Store) RecordUsage(ctx context.Context, runID, kind string, usage llm.TokenUsage, duration time.Duration, degraded bool) error {
	if usage.PromptTokens == 0 && usage.CompletionTokens == 0 {
		return nil
	}
	return s.Record(ctx, GenerationMetric{
		RunID:            runID,
		Kind:             kind,
		Model:            usage.Model,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		TotalTokens:      usage.TotalTokens,
		Duration:         duration,
		Degraded:         degraded,
	})
}

// DailyUsage represents token totals for a single day.
type DailyUsage struct {
	Date            string
	TotalPrompt     int
	TotalCompletion int
	Calls           int
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(recorded_at, 1, 10) AS day,
		       COALESCE(SUM(prompt_tokens), 0),
		       COALESCE(SUM(completion_tokens), 0),
		       COUNT(*)
		FROM generation_metrics
		WHERE recorded_at >= ?
		GROUP BY day
		ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.TotalPrompt, &u.TotalCompletion, &u.Calls); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage row: %w", err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx, `DELETE FROM generation_metrics WHERE recorded_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up metrics: %w", err)
	}
	return res.RowsAffected()
}

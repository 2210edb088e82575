package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"lm500_emulator/internal/models"
)

type SampleSQLite struct {
	db *sql.DB
}

func NewSampleSQLite(db *sql.DB) *SampleSQLite {
	return &SampleSQLite{db: db}
}

const (
	defaultSampleLimit = 500

	insertSampleSQL = `
		INSERT INTO level_samples (recorded_at, sim_seconds, fill_state, level1, level2)
		VALUES (?, ?, ?, ?, ?)
	`
	selectSampleSQL = `SELECT id, recorded_at, sim_seconds, fill_state, level1, level2 FROM level_samples`
)

// Append records one level sample. A zero RecordedAt is set to now.
func (r *SampleSQLite) Append(ctx context.Context, s models.LevelSample) error {
	ts := s.RecordedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	} else {
		ts = ts.UTC()
	}
	_, err := r.db.ExecContext(ctx, insertSampleSQL, ts, s.SimSeconds, s.FillState, s.Level1, s.Level2)
	if err != nil {
		return fmt.Errorf("insert level sample: %w", err)
	}
	return nil
}

// List returns up to limit samples in [from, to], newest first. A
// non-positive limit uses the default.
func (r *SampleSQLite) List(ctx context.Context, from, to time.Time, limit int) ([]models.LevelSample, error) {
	if limit <= 0 {
		limit = defaultSampleLimit
	}
	var (
		conds []string
		args  []any
	)
	if !from.IsZero() {
		conds = append(conds, "recorded_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "recorded_at <= ?")
		args = append(args, to.UTC())
	}
	q := selectSampleSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query level samples: %w", err)
	}
	defer rows.Close()

	var out []models.LevelSample
	for rows.Next() {
		var s models.LevelSample
		if err := rows.Scan(&s.ID, &s.RecordedAt, &s.SimSeconds, &s.FillState, &s.Level1, &s.Level2); err != nil {
			return nil, fmt.Errorf("scan level sample: %w", err)
		}
		s.RecordedAt = s.RecordedAt.UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunSummary is the record of one monitor execution.
type RunSummary struct {
	RunDate     string
	StartedUTC  string
	FinishedUTC string
	QueriesJSON string

	JobsScanned  int
	JobsInRegion int
	NewJobs      int
	NewCompanies int
}

// RunStats aggregates run counters over a date range.
type RunStats struct {
	Runs         int
	JobsScanned  int
	JobsInRegion int
	NewJobs      int
	NewCompanies int
}

// RecordRun persists the summary of a finished run.
func (s *Store) RecordRun(ctx context.Context, r RunSummary) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			run_id, run_date, started_utc, finished_utc, queries_json,
			jobs_scanned_count, jobs_in_moco_count, new_jobs_count, new_companies_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), r.RunDate, r.StartedUTC, r.FinishedUTC, r.QueriesJSON,
		r.JobsScanned, r.JobsInRegion, r.NewJobs, r.NewCompanies,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// SumRunStats totals the run counters for run dates in [start, endExclusive).
func (s *Store) SumRunStats(ctx context.Context, start, endExclusive time.Time) (RunStats, error) {
	var st RunStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(jobs_scanned_count), 0),
		       COALESCE(SUM(jobs_in_moco_count), 0),
		       COALESCE(SUM(new_jobs_count), 0),
		       COALESCE(SUM(new_companies_count), 0)
		FROM runs WHERE run_date >= ? AND run_date < ?`,
		fmtDate(start), fmtDate(endExclusive),
	).Scan(&st.Runs, &st.JobsScanned, &st.JobsInRegion, &st.NewJobs, &st.NewCompanies)
	if err != nil {
		return RunStats{}, fmt.Errorf("sum run stats: %w", err)
	}
	return st, nil
}

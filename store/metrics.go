package store

import (
	"context"
	"fmt"
	"time"
)

// StillOpenMetric is one employer's still-open measurement for one
// period: either a calendar month ("2026-07") or a completed week keyed
// by its Saturday ("2026-08-22").
type StillOpenMetric struct {
	Period       string
	EmployerNorm string
	EmployerName string
	WindowStart  time.Time
	WindowEnd    time.Time

	WindowJobs int
	OpenNow    int
	StillOpen  int
	Rate       float64
	Flagged    bool
}

// UpsertMonthlyStillOpen writes the metric for (month, employer),
// replacing any earlier computation for the same pair.
func (s *Store) UpsertMonthlyStillOpen(ctx context.Context, m StillOpenMetric) error {
	return s.upsertStillOpen(ctx, "still_open_monthly", "month", m)
}

// UpsertWeeklyStillOpen writes the metric for (week ending, employer),
// replacing any earlier computation for the same pair.
func (s *Store) UpsertWeeklyStillOpen(ctx context.Context, m StillOpenMetric) error {
	return s.upsertStillOpen(ctx, "still_open_3week", "week_ending", m)
}

func (s *Store) upsertStillOpen(ctx context.Context, table, periodCol string, m StillOpenMetric) error {
	flagged := 0
	if m.Flagged {
		flagged = 1
	}
	q := fmt.Sprintf(`
		INSERT INTO %s (
			%s, employer_norm, employer_name, window_start, window_end,
			window_jobs_count, open_now_count, still_open_count,
			still_open_rate, flagged, computed_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(%s, employer_norm) DO UPDATE SET
			employer_name = excluded.employer_name,
			window_start = excluded.window_start,
			window_end = excluded.window_end,
			window_jobs_count = excluded.window_jobs_count,
			open_now_count = excluded.open_now_count,
			still_open_count = excluded.still_open_count,
			still_open_rate = excluded.still_open_rate,
			flagged = excluded.flagged,
			computed_utc = excluded.computed_utc`,
		table, periodCol, periodCol)

	_, err := s.db.ExecContext(ctx, q,
		m.Period, m.EmployerNorm, m.EmployerName,
		fmtDate(m.WindowStart), fmtDate(m.WindowEnd),
		m.WindowJobs, m.OpenNow, m.StillOpen, m.Rate, flagged, utcNow(),
	)
	if err != nil {
		return fmt.Errorf("upsert %s for %q: %w", table, m.EmployerNorm, err)
	}
	return nil
}

// MonthlyStillOpen reads all metrics stored for a month, highest
// still-open count first.
func (s *Store) MonthlyStillOpen(ctx context.Context, month string) ([]StillOpenMetric, error) {
	return s.stillOpenByPeriod(ctx, "still_open_monthly", "month", month)
}

// WeeklyStillOpen reads all metrics stored for one completed week,
// keyed by its Saturday.
func (s *Store) WeeklyStillOpen(ctx context.Context, weekEnding string) ([]StillOpenMetric, error) {
	return s.stillOpenByPeriod(ctx, "still_open_3week", "week_ending", weekEnding)
}

func (s *Store) stillOpenByPeriod(ctx context.Context, table, periodCol, period string) ([]StillOpenMetric, error) {
	q := fmt.Sprintf(`
		SELECT %s, employer_norm, COALESCE(employer_name, ''),
		       window_start, window_end, window_jobs_count, open_now_count,
		       still_open_count, still_open_rate, flagged
		FROM %s WHERE %s = ?
		ORDER BY still_open_count DESC, employer_norm`,
		periodCol, table, periodCol)

	rows, err := s.db.QueryContext(ctx, q, period)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	defer rows.Close()

	var out []StillOpenMetric
	for rows.Next() {
		var m StillOpenMetric
		var start, end string
		var flagged int
		if err := rows.Scan(&m.Period, &m.EmployerNorm, &m.EmployerName,
			&start, &end, &m.WindowJobs, &m.OpenNow,
			&m.StillOpen, &m.Rate, &flagged); err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		m.WindowStart, _ = time.Parse(dateLayout, start)
		m.WindowEnd, _ = time.Parse(dateLayout, end)
		m.Flagged = flagged == 1
		out = append(out, m)
	}
	return out, rows.Err()
}

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mocojobs.dev/monitor/names"
	"mocojobs.dev/monitor/tagger"
)

// Job is one deduplicated posting. Requirements and Sectors are derived
// at insert time; RetagJobs can recompute Sectors after rule changes.
type Job struct {
	ID             string
	EmployerName   string
	EmployerNorm   string
	Title          string
	Publisher      string
	EmploymentType string
	City           string
	State          string
	Country        string
	PostedAt       string
	ApplyLink      string
	Salary         string
	SearchQuery    string
	Requirements   []string
	Sectors        []string

	FirstSeenRunDate string
	FirstSeenUTC     string
}

// Sector tags are stored wrapped in delimiters (",tech,") so a LIKE
// against ",tag," can never match a tag that merely contains another.
func wrapTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "," + strings.Join(tags, ",") + ","
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func wrappedPattern(tag string) string {
	return "%," + tag + ",%"
}

// InsertJobIfNew inserts the job keyed by its upstream identifier.
// Reports true when the row is new; a duplicate is a silent no-op.
// Jobs without an identifier cannot be deduplicated and are dropped.
func (s *Store) InsertJobIfNew(ctx context.Context, j Job) (bool, error) {
	if j.ID == "" {
		return false, nil
	}
	if j.EmployerNorm == "" {
		j.EmployerNorm = names.Key(j.EmployerName)
	}
	if j.FirstSeenUTC == "" {
		j.FirstSeenUTC = utcNow()
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (
			job_id, employer_name, employer_norm, job_title, job_publisher,
			job_employment_type, job_city, job_state, job_country,
			job_posted_at, apply_link, salary, search_query,
			job_requirements, fields, first_seen_run_date, first_seen_utc
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO NOTHING`,
		j.ID, j.EmployerName, j.EmployerNorm, j.Title, j.Publisher,
		j.EmploymentType, j.City, j.State, j.Country,
		j.PostedAt, j.ApplyLink, j.Salary, j.SearchQuery,
		joinTags(j.Requirements), wrapTags(j.Sectors),
		j.FirstSeenRunDate, j.FirstSeenUTC,
	)
	if err != nil {
		return false, fmt.Errorf("insert job %s: %w", j.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// RetagJobs recomputes the sector tags of every job first seen in the
// last daysBack days and rewrites rows whose tags changed. Returns the
// number of updated rows.
func (s *Store) RetagJobs(ctx context.Context, daysBack int, now time.Time) (int, error) {
	cutoff := fmtDate(now.AddDate(0, 0, -daysBack))

	rows, err := s.db.QueryContext(ctx, `
		SELECT job_id, job_title, COALESCE(employer_name, ''), fields
		FROM jobs WHERE first_seen_run_date >= ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("select jobs for retag: %w", err)
	}
	defer rows.Close()

	type retag struct {
		id     string
		fields string
	}
	var changes []retag
	for rows.Next() {
		var id, title, employer, fields string
		if err := rows.Scan(&id, &title, &employer, &fields); err != nil {
			return 0, fmt.Errorf("scan job: %w", err)
		}
		// Descriptions are not persisted, so retagging works from
		// title and employer only.
		fresh := wrapTags(tagger.SectorTags(title, "", employer))
		if fresh != fields {
			changes = append(changes, retag{id: id, fields: fresh})
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, c := range changes {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE jobs SET fields = ? WHERE job_id = ?`, c.fields, c.id); err != nil {
			return 0, fmt.Errorf("update job %s: %w", c.id, err)
		}
	}
	return len(changes), nil
}

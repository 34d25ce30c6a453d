package store

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CompanyCount pairs an employer with its distinct job count in a window.
type CompanyCount struct {
	Norm  string
	Name  string
	Count int
}

// TitleCount pairs a job title with its occurrence count.
type TitleCount struct {
	Title string
	Count int
}

// SectorStats summarizes a sector tag over a window.
type SectorStats struct {
	Jobs         int
	Companies    int
	NewCompanies int
}

// JobSample is a short excerpt of a stored job for report listings.
type JobSample struct {
	Title        string
	ApplyLink    string
	Salary       string
	Requirements string
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// TopCompanies ranks employers by distinct jobs first seen in
// [start, endExclusive), skipping the normalized names in exclude.
func (s *Store) TopCompanies(ctx context.Context, start, endExclusive time.Time, limit int, exclude []string) ([]CompanyCount, error) {
	q := `
		SELECT employer_norm, MAX(COALESCE(employer_name, '')), COUNT(*)
		FROM jobs
		WHERE first_seen_run_date >= ? AND first_seen_run_date < ?`
	args := []any{fmtDate(start), fmtDate(endExclusive)}
	if len(exclude) > 0 {
		q += " AND employer_norm NOT IN (" + placeholders(len(exclude)) + ")"
		for _, e := range exclude {
			args = append(args, e)
		}
	}
	q += `
		GROUP BY employer_norm
		ORDER BY COUNT(*) DESC, employer_norm
		LIMIT ?`
	args = append(args, limit)

	return s.companyCounts(ctx, q, args...)
}

// TopCompaniesForSector ranks employers by jobs carrying the sector tag
// and first seen in [start, endExclusive).
func (s *Store) TopCompaniesForSector(ctx context.Context, tag string, start, endExclusive time.Time, limit int) ([]CompanyCount, error) {
	return s.companyCounts(ctx, `
		SELECT employer_norm, MAX(COALESCE(employer_name, '')), COUNT(*)
		FROM jobs
		WHERE first_seen_run_date >= ? AND first_seen_run_date < ?
		  AND fields LIKE ?
		GROUP BY employer_norm
		ORDER BY COUNT(*) DESC, employer_norm
		LIMIT ?`,
		fmtDate(start), fmtDate(endExclusive), wrappedPattern(tag), limit)
}

func (s *Store) companyCounts(ctx context.Context, q string, args ...any) ([]CompanyCount, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("company counts: %w", err)
	}
	defer rows.Close()

	var out []CompanyCount
	for rows.Next() {
		var c CompanyCount
		if err := rows.Scan(&c.Norm, &c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("scan company count: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SectorWeekStats summarizes one sector tag over [start, endExclusive):
// captured jobs, distinct employers, and employers whose first sighting
// anywhere fell inside the window.
func (s *Store) SectorWeekStats(ctx context.Context, tag string, start, endExclusive time.Time) (SectorStats, error) {
	var st SectorStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT j.employer_norm),
		       COUNT(DISTINCT CASE
		           WHEN c.first_seen_run_date >= ? AND c.first_seen_run_date < ?
		           THEN j.employer_norm END)
		FROM jobs j
		LEFT JOIN companies c ON c.employer_norm = j.employer_norm
		WHERE j.first_seen_run_date >= ? AND j.first_seen_run_date < ?
		  AND j.fields LIKE ?`,
		fmtDate(start), fmtDate(endExclusive),
		fmtDate(start), fmtDate(endExclusive), wrappedPattern(tag),
	).Scan(&st.Jobs, &st.Companies, &st.NewCompanies)
	if err != nil {
		return SectorStats{}, fmt.Errorf("sector stats for %q: %w", tag, err)
	}
	return st, nil
}

// WindowJobIDs lists the job identifiers an employer posted with first
// sighting in [start, endExclusive).
func (s *Store) WindowJobIDs(ctx context.Context, employerNorm string, start, endExclusive time.Time) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT job_id FROM jobs
		WHERE employer_norm = ?
		  AND first_seen_run_date >= ? AND first_seen_run_date < ?`,
		employerNorm, fmtDate(start), fmtDate(endExclusive))
	if err != nil {
		return nil, fmt.Errorf("window job ids for %q: %w", employerNorm, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan job id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// WindowEmployers ranks every employer with at least minJobs jobs first
// seen in [start, endExclusive), busiest first.
func (s *Store) WindowEmployers(ctx context.Context, start, endExclusive time.Time, minJobs int) ([]CompanyCount, error) {
	return s.companyCounts(ctx, `
		SELECT employer_norm, MAX(COALESCE(employer_name, '')), COUNT(*)
		FROM jobs
		WHERE first_seen_run_date >= ? AND first_seen_run_date < ?
		GROUP BY employer_norm
		HAVING COUNT(*) >= ?
		ORDER BY COUNT(*) DESC, employer_norm`,
		fmtDate(start), fmtDate(endExclusive), minJobs)
}

// CompanyJobCount counts an employer's distinct postings first seen in
// [start, endExclusive), for month-over-month comparisons.
func (s *Store) CompanyJobCount(ctx context.Context, employerNorm string, start, endExclusive time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM jobs
		WHERE employer_norm = ?
		  AND first_seen_run_date >= ? AND first_seen_run_date < ?`,
		employerNorm, fmtDate(start), fmtDate(endExclusive)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("job count for %q: %w", employerNorm, err)
	}
	return n, nil
}

// TopTitles ranks an employer's job titles in [start, endExclusive).
func (s *Store) TopTitles(ctx context.Context, employerNorm string, start, endExclusive time.Time, limit int) ([]TitleCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(job_title, ''), COUNT(*)
		FROM jobs
		WHERE employer_norm = ?
		  AND first_seen_run_date >= ? AND first_seen_run_date < ?
		GROUP BY job_title
		ORDER BY COUNT(*) DESC, job_title
		LIMIT ?`,
		employerNorm, fmtDate(start), fmtDate(endExclusive), limit)
	if err != nil {
		return nil, fmt.Errorf("top titles for %q: %w", employerNorm, err)
	}
	defer rows.Close()

	var out []TitleCount
	for rows.Next() {
		var tc TitleCount
		if err := rows.Scan(&tc.Title, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

// RequirementTagCount counts jobs carrying a requirement tag in
// [start, endExclusive). Requirement tags are stored plain comma-joined,
// so a substring LIKE is sufficient as long as no tag is a substring of
// another.
func (s *Store) RequirementTagCount(ctx context.Context, tag string, start, endExclusive time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM jobs
		WHERE first_seen_run_date >= ? AND first_seen_run_date < ?
		  AND job_requirements LIKE ?`,
		fmtDate(start), fmtDate(endExclusive), "%"+tag+"%").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("requirement count for %q: %w", tag, err)
	}
	return n, nil
}

// SampleJobs returns up to limit job excerpts for an employer in
// [start, endExclusive).
func (s *Store) SampleJobs(ctx context.Context, employerNorm string, start, endExclusive time.Time, limit int) ([]JobSample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT COALESCE(job_title, ''), COALESCE(apply_link, ''),
		       COALESCE(salary, ''), COALESCE(job_requirements, '')
		FROM jobs
		WHERE employer_norm = ?
		  AND first_seen_run_date >= ? AND first_seen_run_date < ?
		ORDER BY first_seen_utc DESC
		LIMIT ?`,
		employerNorm, fmtDate(start), fmtDate(endExclusive), limit)
	if err != nil {
		return nil, fmt.Errorf("sample jobs for %q: %w", employerNorm, err)
	}
	defer rows.Close()

	var out []JobSample
	for rows.Next() {
		var js JobSample
		if err := rows.Scan(&js.Title, &js.ApplyLink, &js.Salary, &js.Requirements); err != nil {
			return nil, fmt.Errorf("scan sample job: %w", err)
		}
		out = append(out, js)
	}
	return out, rows.Err()
}

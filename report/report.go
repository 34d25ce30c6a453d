// Package report turns store queries and overlap summaries into CSV
// artifacts under the outputs directory. It stops at CSV; anything
// visual is a downstream consumer of these files.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mocojobs.dev/monitor/overlap"
	"mocojobs.dev/monitor/store"
	"mocojobs.dev/monitor/timewin"
)

// Queries is the slice of the store the report writer reads from.
type Queries interface {
	NewCompaniesBetween(ctx context.Context, start, end time.Time, exclude []string) ([]store.Company, error)
	TopCompanies(ctx context.Context, start, end time.Time, limit int, exclude []string) ([]store.CompanyCount, error)
	TopCompaniesForSector(ctx context.Context, tag string, start, end time.Time, limit int) ([]store.CompanyCount, error)
	TopTitles(ctx context.Context, employerNorm string, start, end time.Time, limit int) ([]store.TitleCount, error)
	CompanyJobCount(ctx context.Context, employerNorm string, start, end time.Time) (int, error)
	SampleJobs(ctx context.Context, employerNorm string, start, end time.Time, limit int) ([]store.JobSample, error)
	SectorWeekStats(ctx context.Context, tag string, start, end time.Time) (store.SectorStats, error)
	RequirementTagCount(ctx context.Context, tag string, start, end time.Time) (int, error)
	SumRunStats(ctx context.Context, start, end time.Time) (store.RunStats, error)
}

// Writer generates the CSV artifacts.
type Writer struct {
	Store  Queries
	OutDir string

	// Exclude drops these normalized employer names from rankings,
	// typically staffing agencies that would otherwise dominate.
	Exclude []string
}

const (
	sampleJobsPerCompany = 3
	titlesPerCompany     = 3
)

func (w *Writer) writeCSV(name string, header []string, rows [][]string) (string, error) {
	if err := os.MkdirAll(w.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(w.OutDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return "", fmt.Errorf("write rows: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", name, err)
	}
	return path, nil
}

// NewCompanies writes new_companies_YYYY-MM-DD.csv: companies first seen
// on runDate, with verification state and up to three sample jobs.
func (w *Writer) NewCompanies(ctx context.Context, runDate time.Time) (string, error) {
	day := runDate.Format("2006-01-02")
	next := runDate.AddDate(0, 0, 1)

	companies, err := w.Store.NewCompaniesBetween(ctx, runDate, next, w.Exclude)
	if err != nil {
		return "", err
	}

	var rows [][]string
	for _, c := range companies {
		samples, err := w.Store.SampleJobs(ctx, c.Norm, runDate, next, sampleJobsPerCompany)
		if err != nil {
			return "", err
		}
		var titles, links []string
		for _, s := range samples {
			titles = append(titles, s.Title)
			if s.ApplyLink != "" {
				links = append(links, s.ApplyLink)
			}
		}
		verified := "no"
		if c.Verified {
			verified = "yes"
		}
		rows = append(rows, []string{
			c.Name, c.Norm, c.FirstSeenRunDate,
			verified, c.VerifyReason, c.Address,
			strings.Join(titles, "; "), strings.Join(links, " "),
		})
	}

	return w.writeCSV("new_companies_"+day+".csv",
		[]string{"employer_name", "employer_norm", "first_seen", "verified", "verify_reason", "address", "sample_titles", "sample_links"},
		rows)
}

// TopCompanies writes top_companies_YYYY-MM.csv: the month's busiest
// employers by distinct postings, their prior-month counts for
// comparison, and their most common titles.
func (w *Writer) TopCompanies(ctx context.Context, month string, topN int) (string, error) {
	start, end, err := timewin.MonthRange(month)
	if err != nil {
		return "", err
	}
	prevStart, prevEnd, _ := timewin.MonthRange(timewin.PreviousMonth(start))

	top, err := w.Store.TopCompanies(ctx, start, end, topN, w.Exclude)
	if err != nil {
		return "", err
	}

	var rows [][]string
	for rank, c := range top {
		prevCount, err := w.Store.CompanyJobCount(ctx, c.Norm, prevStart, prevEnd)
		if err != nil {
			return "", err
		}
		titles, err := w.Store.TopTitles(ctx, c.Norm, start, end, titlesPerCompany)
		if err != nil {
			return "", err
		}
		var names []string
		for _, t := range titles {
			names = append(names, fmt.Sprintf("%s (%d)", t.Title, t.Count))
		}
		rows = append(rows, []string{
			strconv.Itoa(rank + 1), c.Name, c.Norm,
			strconv.Itoa(c.Count), strconv.Itoa(prevCount),
			strings.Join(names, "; "),
		})
	}

	return w.writeCSV("top_companies_"+month+".csv",
		[]string{"rank", "employer_name", "employer_norm", "jobs", "prev_month_jobs", "top_titles"},
		rows)
}

func fmtRate(r float64) string {
	return strconv.FormatFloat(r, 'f', 3, 64)
}

// StillOpenMonthly writes still_open_YYYY-MM.csv from the engine's
// company summaries, flagged employers first.
func (w *Writer) StillOpenMonthly(month string, summaries []overlap.CompanySummary) (string, error) {
	var rows [][]string
	for _, pass := range []bool{true, false} {
		for _, s := range summaries {
			if s.Month.Flagged != pass {
				continue
			}
			flagged := "no"
			if s.Month.Flagged {
				flagged = "yes"
			}
			rows = append(rows, []string{
				s.Name, s.Norm,
				strconv.Itoa(s.Month.WindowJobs),
				strconv.Itoa(s.Month.OpenNow),
				strconv.Itoa(s.Month.StillOpen),
				fmtRate(s.Month.Rate),
				flagged,
			})
		}
	}

	return w.writeCSV("still_open_"+month+".csv",
		[]string{"employer_name", "employer_norm", "window_jobs", "open_now", "still_open", "rate", "flagged"},
		rows)
}

// StillOpenWeekly writes still_open_weekly_YYYY-MM-DD.csv (named for the
// newest completed week's Saturday): one row per employer per week.
func (w *Writer) StillOpenWeekly(summaries []overlap.CompanySummary) (string, error) {
	newest := ""
	var rows [][]string
	for _, s := range summaries {
		trend := "no"
		if s.TrendFlagged {
			trend = "yes"
		}
		for _, wk := range s.Weeks {
			if wk.Period > newest {
				newest = wk.Period
			}
			rows = append(rows, []string{
				wk.Period, s.Name, s.Norm,
				strconv.Itoa(wk.WindowJobs),
				strconv.Itoa(wk.StillOpen),
				fmtRate(wk.Rate),
				trend,
			})
		}
	}
	if newest == "" {
		newest = "empty"
	}

	return w.writeCSV("still_open_weekly_"+newest+".csv",
		[]string{"week_ending", "employer_name", "employer_norm", "window_jobs", "still_open", "rate", "trend_flagged"},
		rows)
}

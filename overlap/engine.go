package overlap

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"mocojobs.dev/monitor/store"
	"mocojobs.dev/monitor/timewin"
)

// MetricsStore is the slice of the store the engine needs.
type MetricsStore interface {
	WindowEmployers(ctx context.Context, start, endExclusive time.Time, minJobs int) ([]store.CompanyCount, error)
	WindowJobIDs(ctx context.Context, employerNorm string, start, endExclusive time.Time) ([]string, error)
	UpsertMonthlyStillOpen(ctx context.Context, m store.StillOpenMetric) error
	UpsertWeeklyStillOpen(ctx context.Context, m store.StillOpenMetric) error
}

// FetchOpenFunc returns the identifiers of an employer's currently open
// postings. It is called exactly once per employer per run; monthly and
// weekly windows share the snapshot.
type FetchOpenFunc func(ctx context.Context, employerName string) mapset.Set[string]

// Engine computes and persists still-open metrics for every employer
// active in the month or weekly windows.
type Engine struct {
	Store         MetricsStore
	FetchOpen     FetchOpenFunc
	Thresholds    Thresholds
	MinWindowJobs int // employers with fewer monthly window jobs are skipped
}

// CompanySummary is what the engine hands the report writer: one
// employer's monthly metric plus its weekly series, newest first.
type CompanySummary struct {
	Norm  string
	Name  string
	Month store.StillOpenMetric
	Weeks []store.StillOpenMetric

	TrendFlagged bool
}

// Run computes metrics for one YYYY-MM month and the given completed
// weeks (newest first), persists them, and returns per-company
// summaries ordered by monthly still-open count. An empty month skips
// the monthly pass and computes the weekly series only.
func (e *Engine) Run(ctx context.Context, month string, weeks []timewin.Week) ([]CompanySummary, error) {
	var monthStart, monthEnd time.Time
	if month != "" {
		var err error
		monthStart, monthEnd, err = timewin.MonthRange(month)
		if err != nil {
			return nil, err
		}
	}

	minJobs := e.MinWindowJobs
	if minJobs < 1 {
		minJobs = 1
	}

	// Candidates: employers active in the month window or in any week.
	displayName := make(map[string]string)
	if month != "" {
		employers, err := e.Store.WindowEmployers(ctx, monthStart, monthEnd, minJobs)
		if err != nil {
			return nil, fmt.Errorf("month employers: %w", err)
		}
		for _, c := range employers {
			displayName[c.Norm] = c.Name
		}
	}
	for _, w := range weeks {
		weekly, err := e.Store.WindowEmployers(ctx, w.Start, w.EndExclusive(), minJobs)
		if err != nil {
			return nil, fmt.Errorf("week employers: %w", err)
		}
		for _, c := range weekly {
			if _, ok := displayName[c.Norm]; !ok {
				displayName[c.Norm] = c.Name
			}
		}
	}

	norms := make([]string, 0, len(displayName))
	for n := range displayName {
		norms = append(norms, n)
	}
	sort.Strings(norms)

	var summaries []CompanySummary
	for _, norm := range norms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := displayName[norm]

		// One API snapshot per employer, shared across all windows.
		openNow := e.FetchOpen(ctx, name)

		var monthMetric store.StillOpenMetric
		if month != "" {
			monthIDs, err := e.Store.WindowJobIDs(ctx, norm, monthStart, monthEnd)
			if err != nil {
				return nil, fmt.Errorf("month window for %q: %w", norm, err)
			}
			mres := Compute(monthIDs, openNow)
			monthMetric = store.StillOpenMetric{
				Period:       month,
				EmployerNorm: norm,
				EmployerName: name,
				WindowStart:  monthStart,
				WindowEnd:    monthEnd,
				WindowJobs:   mres.WindowJobs,
				OpenNow:      mres.OpenNow,
				StillOpen:    mres.StillOpen,
				Rate:         mres.Rate,
				Flagged:      e.Thresholds.MonthFlag(mres),
			}
			if err := e.Store.UpsertMonthlyStillOpen(ctx, monthMetric); err != nil {
				return nil, err
			}
		}

		var weekResults []Result
		var weekMetrics []store.StillOpenMetric
		for _, w := range weeks {
			ids, err := e.Store.WindowJobIDs(ctx, norm, w.Start, w.EndExclusive())
			if err != nil {
				return nil, fmt.Errorf("week window for %q: %w", norm, err)
			}
			res := Compute(ids, openNow)
			weekResults = append(weekResults, res)
			weekMetrics = append(weekMetrics, store.StillOpenMetric{
				Period:       w.End.Format("2006-01-02"),
				EmployerNorm: norm,
				EmployerName: name,
				WindowStart:  w.Start,
				WindowEnd:    w.EndExclusive(),
				WindowJobs:   res.WindowJobs,
				OpenNow:      res.OpenNow,
				StillOpen:    res.StillOpen,
				Rate:         res.Rate,
			})
		}

		trend := e.Thresholds.TrendFlag(weekResults)
		for i := range weekMetrics {
			weekMetrics[i].Flagged = trend
			if err := e.Store.UpsertWeeklyStillOpen(ctx, weekMetrics[i]); err != nil {
				return nil, err
			}
		}

		if monthMetric.Flagged || trend {
			slog.Info("overlap: employer flagged",
				"employer", name, "month_flag", monthMetric.Flagged, "trend_flag", trend,
				"still_open", monthMetric.StillOpen, "rate", monthMetric.Rate)
		}

		summaries = append(summaries, CompanySummary{
			Norm:         norm,
			Name:         name,
			Month:        monthMetric,
			Weeks:        weekMetrics,
			TrendFlagged: trend,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		if summaries[i].Month.StillOpen != summaries[j].Month.StillOpen {
			return summaries[i].Month.StillOpen > summaries[j].Month.StillOpen
		}
		var a, b int
		if len(summaries[i].Weeks) > 0 {
			a = summaries[i].Weeks[0].StillOpen
		}
		if len(summaries[j].Weeks) > 0 {
			b = summaries[j].Weeks[0].StillOpen
		}
		return a > b
	})
	return summaries, nil
}

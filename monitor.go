// Package monitor wires the ingestion pipeline together: search queries
// against the job API, geofencing to the county, deduplicated persistence,
// optional company verification, and the periodic report passes.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"mocojobs.dev/monitor/geofence"
	"mocojobs.dev/monitor/jsearch"
	"mocojobs.dev/monitor/names"
	"mocojobs.dev/monitor/overlap"
	"mocojobs.dev/monitor/places"
	"mocojobs.dev/monitor/report"
	"mocojobs.dev/monitor/store"
	"mocojobs.dev/monitor/tagger"
	"mocojobs.dev/monitor/timewin"
)

// The monthly still-open pass waits until postings have had time to go
// stale, then must run before the open-now snapshot stops being
// comparable.
const (
	monthlyPassMinAge = 30 // days after month end
	monthlyPassMaxAge = 45
)

// Runner executes the monitor's subcommands against one set of
// collaborators.
type Runner struct {
	Config Config
	Store  *store.Store
	Jobs   *jsearch.Client
	Places *places.Client
	Fence  *geofence.Boundary
	OutDir string

	// Now and Sleep are overridable for tests.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// throttle is the pause between queries: a fixed base plus random jitter
// so runs do not hit the API on a perfectly regular beat.
func (r *Runner) throttle() time.Duration {
	base := time.Duration(r.Config.Daily.ThrottleSeconds) * time.Second
	jitter := time.Duration(r.Config.Daily.JitterSeconds) * time.Second
	if jitter > 0 {
		base += rand.N(jitter)
	}
	return base
}

func utcStamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// RunDaily executes one ingestion pass over the configured queries and
// records the run summary. Per-query failures degrade to empty results;
// only storage errors and cancellation abort the run.
func (r *Runner) RunDaily(ctx context.Context) (store.RunSummary, error) {
	started := r.now()
	queriesJSON, _ := json.Marshal(r.Config.Daily.Queries)

	sum := store.RunSummary{
		RunDate:     started.UTC().Format("2006-01-02"),
		StartedUTC:  utcStamp(started),
		QueriesJSON: string(queriesJSON),
	}

	for i, q := range r.Config.Daily.Queries {
		if i > 0 {
			if err := r.sleep(ctx, r.throttle()); err != nil {
				return sum, err
			}
		}

		raws := r.Jobs.Search(ctx, q, 1, r.Config.Daily.NumPages, r.Config.Daily.DatePosted, "us")
		slog.Info("daily: query finished", "query", q, "results", len(raws))

		for _, raw := range raws {
			sum.JobsScanned++
			lat, lon := raw.LatLon()
			if !r.Fence.MatchesRecord(lat, lon, raw.City(), raw.State(), raw.Location()) {
				continue
			}
			sum.JobsInRegion++
			if err := r.ingest(ctx, raw, q, &sum); err != nil {
				return sum, err
			}
		}
	}

	sum.FinishedUTC = utcStamp(r.now())
	if err := r.Store.RecordRun(ctx, sum); err != nil {
		return sum, err
	}
	if _, err := r.writer().NewCompanies(ctx, started.UTC()); err != nil {
		return sum, err
	}
	slog.Info("daily run complete",
		"scanned", sum.JobsScanned, "in_region", sum.JobsInRegion,
		"new_jobs", sum.NewJobs, "new_companies", sum.NewCompanies)
	return sum, nil
}

// ingest persists one in-region record: company first (verifying it on
// first sighting only), then the job itself.
func (r *Runner) ingest(ctx context.Context, raw jsearch.RawJob, query string, sum *store.RunSummary) error {
	employer := raw.Employer()
	if employer != "" {
		isNew, err := r.Store.UpsertCompanyIfAbsent(ctx, employer, sum.RunDate)
		if err != nil {
			return err
		}
		if isNew {
			sum.NewCompanies++
			v := r.verifyCompany(ctx, employer)
			if err := r.Store.UpdateCompanyVerification(ctx, names.Key(employer), v); err != nil {
				return err
			}
		}
	}

	title := raw.Title()
	desc := raw.Description()
	isNew, err := r.Store.InsertJobIfNew(ctx, store.Job{
		ID:               raw.ID(),
		EmployerName:     employer,
		Title:            title,
		Publisher:        raw.Publisher(),
		EmploymentType:   raw.EmploymentType(),
		City:             raw.City(),
		State:            raw.State(),
		Country:          raw.Country(),
		PostedAt:         raw.PostedAt(),
		ApplyLink:        raw.ApplyLink(),
		Salary:           raw.SalaryText(),
		SearchQuery:      query,
		Requirements:     tagger.RequirementTags(title, desc),
		Sectors:          tagger.SectorTags(title, desc, employer),
		FirstSeenRunDate: sum.RunDate,
	})
	if err != nil {
		return err
	}
	if isNew {
		sum.NewJobs++
	}
	return nil
}

// verifyCompany asks the place API whether the employer has a presence
// in the county. Runs once per company, at first sighting.
func (r *Runner) verifyCompany(ctx context.Context, employer string) store.Verification {
	if r.Places == nil || !r.Places.Enabled() {
		return store.Verification{Reason: "lookup disabled"}
	}

	p := r.Places.TopMatch(ctx, employer+" Montgomery County Maryland")
	if p == nil {
		return store.Verification{Reason: "no place match"}
	}

	v := store.Verification{PlaceID: p.PlaceID, Address: p.Address}
	switch {
	case p.Lat != nil && p.Lon != nil && r.Fence.Contains(*p.Lat, *p.Lon):
		v.Verified = true
		v.Reason = "coordinates in county"
	case r.Fence.MatchesRecord(nil, nil, "", "", p.Address):
		v.Verified = true
		v.Reason = "address in county"
	default:
		v.Reason = "top match outside county"
	}
	return v
}

// FetchOpenIDs snapshots the employer's currently open in-county
// postings, for the overlap engine.
func (r *Runner) FetchOpenIDs(ctx context.Context, employer string) mapset.Set[string] {
	return r.Jobs.OpenJobIDs(ctx, employer, func(j jsearch.RawJob) bool {
		lat, lon := j.LatLon()
		return r.Fence.MatchesRecord(lat, lon, j.City(), j.State(), j.Location())
	})
}

func (r *Runner) writer() *report.Writer {
	return &report.Writer{
		Store:   r.Store,
		OutDir:  r.OutDir,
		Exclude: r.Config.ExcludeEmployers,
	}
}

// RunMonthly writes the top-companies CSV for the given YYYY-MM month,
// defaulting to the previous month.
func (r *Runner) RunMonthly(ctx context.Context, month string) error {
	if month == "" {
		month = timewin.PreviousMonth(r.now().UTC())
	}
	path, err := r.writer().TopCompanies(ctx, month, r.Config.Monthly.TopN)
	if err != nil {
		return err
	}
	slog.Info("monthly report written", "month", month, "path", path)
	return nil
}

// RunReport generates the weekly digest and the still-open metric
// passes. The monthly pass runs only in its 30-45 day window after month
// end; the weekly pass always covers the last three completed weeks.
func (r *Runner) RunReport(ctx context.Context) error {
	today := r.now().UTC()
	w := r.writer()

	if _, err := w.WeeklyDigest(ctx, today); err != nil {
		return err
	}

	month := ""
	prev := timewin.PreviousMonth(today)
	if _, prevEnd, err := timewin.MonthRange(prev); err == nil {
		age := int(today.Sub(prevEnd).Hours() / 24)
		if age >= monthlyPassMinAge && age <= monthlyPassMaxAge {
			month = prev
		} else {
			slog.Info("report: monthly still-open pass skipped", "month", prev, "age_days", age)
		}
	}

	engine := &overlap.Engine{
		Store:         r.Store,
		FetchOpen:     r.FetchOpenIDs,
		Thresholds:    r.Config.StillOpen,
		MinWindowJobs: r.Config.StillOpenMinJobs,
	}
	summaries, err := engine.Run(ctx, month, timewin.LastNCompletedWeeks(today, 3))
	if err != nil {
		return err
	}

	if _, err := w.StillOpenWeekly(summaries); err != nil {
		return err
	}
	if month != "" {
		if _, err := w.StillOpenMonthly(month, summaries); err != nil {
			return err
		}
	}
	return nil
}

// RunRetag recomputes sector tags for recently seen jobs.
func (r *Runner) RunRetag(ctx context.Context) error {
	n, err := r.Store.RetagJobs(ctx, r.Config.RetagDays, r.now().UTC())
	if err != nil {
		return err
	}
	slog.Info("retag complete", "days", r.Config.RetagDays, "updated", n)
	return nil
}

// LoadBoundary loads the county geometry per the environment's cache and
// source paths.
func LoadBoundary(env Env) (*geofence.Boundary, error) {
	b, err := geofence.Load(env.BoundaryCache, env.BoundarySources, RegionName)
	if err != nil {
		return nil, fmt.Errorf("load county boundary: %w", err)
	}
	return b, nil
}

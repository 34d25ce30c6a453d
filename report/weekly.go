package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mocojobs.dev/monitor/tagger"
	"mocojobs.dev/monitor/timewin"
)

var digestSectors = []struct {
	Tag   string
	Label string
}{
	{tagger.TagTechnology, "Technology"},
	{tagger.TagLifeSciences, "Life sciences"},
	{tagger.TagAeroDefense, "Aerospace / defense / satellite"},
}

var digestRequirements = []struct {
	Tag   string
	Label string
}{
	{tagger.TagNoDegree, "No degree required"},
	{tagger.TagNoExperience, "No experience required"},
	{tagger.TagUnder3Years, "Under 3 years experience"},
	{tagger.TagOver3Years, "More than 3 years experience"},
}

const (
	digestTopCompanies = 10
	digestSectorTop    = 5
)

// WeeklyDigest writes a markdown digest for the most recent completed
// week. When that week captured no runs (the monitor was down), it falls
// back to the current week to date and says so in the heading.
func (w *Writer) WeeklyDigest(ctx context.Context, today time.Time) (string, error) {
	week := timewin.MostRecentCompletedWeek(today)
	stats, err := w.Store.SumRunStats(ctx, week.Start, week.EndExclusive())
	if err != nil {
		return "", err
	}

	partial := false
	if stats.Runs == 0 {
		week = timewin.WeekToDate(today)
		partial = true
		stats, err = w.Store.SumRunStats(ctx, week.Start, week.EndExclusive())
		if err != nil {
			return "", err
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Weekly hiring digest: %s to %s\n\n",
		week.Start.Format("2006-01-02"), week.End.Format("2006-01-02"))
	if partial {
		b.WriteString("_The last completed week captured no runs; this covers the current week to date._\n\n")
	}

	fmt.Fprintf(&b, "- Runs: %d\n", stats.Runs)
	fmt.Fprintf(&b, "- Jobs scanned: %d\n", stats.JobsScanned)
	fmt.Fprintf(&b, "- Jobs in county: %d\n", stats.JobsInRegion)
	fmt.Fprintf(&b, "- New jobs: %d\n", stats.NewJobs)
	fmt.Fprintf(&b, "- New companies: %d\n\n", stats.NewCompanies)

	top, err := w.Store.TopCompanies(ctx, week.Start, week.EndExclusive(), digestTopCompanies, w.Exclude)
	if err != nil {
		return "", err
	}
	b.WriteString("## Top companies\n\n")
	if len(top) == 0 {
		b.WriteString("No postings captured this week.\n\n")
	}
	for i, c := range top {
		fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, c.Name, c.Count)
	}
	b.WriteString("\n")

	for _, sec := range digestSectors {
		st, err := w.Store.SectorWeekStats(ctx, sec.Tag, week.Start, week.EndExclusive())
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "## %s\n\n", sec.Label)
		fmt.Fprintf(&b, "- Jobs: %d, companies: %d, new companies: %d\n\n",
			st.Jobs, st.Companies, st.NewCompanies)
		if st.Jobs == 0 {
			continue
		}
		secTop, err := w.Store.TopCompaniesForSector(ctx, sec.Tag, week.Start, week.EndExclusive(), digestSectorTop)
		if err != nil {
			return "", err
		}
		for i, c := range secTop {
			fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, c.Name, c.Count)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Requirements\n\n")
	for _, req := range digestRequirements {
		n, err := w.Store.RequirementTagCount(ctx, req.Tag, week.Start, week.EndExclusive())
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "- %s: %d\n", req.Label, n)
	}
	b.WriteString("\n")

	if err := os.MkdirAll(w.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(w.OutDir, "weekly_"+week.End.Format("2006-01-02")+".md")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write digest: %w", err)
	}
	return path, nil
}

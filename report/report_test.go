package report

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mocojobs.dev/monitor/overlap"
	"mocojobs.dev/monitor/store"
)

func testWriter(t *testing.T) (*Writer, *store.Store) {
	t.Helper()
	t.Setenv("TURSO_DATABASE_URL", "")
	dir := t.TempDir()
	s, err := store.Open(filepath.Join(dir, "monitor.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return &Writer{Store: s, OutDir: filepath.Join(dir, "outputs")}, s
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNewCompaniesCSV(t *testing.T) {
	w, s := testWriter(t)
	ctx := context.Background()

	_, err := s.UpsertCompanyIfAbsent(ctx, "Acme Inc.", "2026-08-20")
	require.NoError(t, err)
	require.NoError(t, s.UpdateCompanyVerification(ctx, "acme", store.Verification{
		Verified: true, Reason: "place match", Address: "123 Main St, Rockville, MD",
	}))
	_, err = s.InsertJobIfNew(ctx, store.Job{
		ID: "j1", EmployerName: "Acme Inc.", Title: "Forklift Operator",
		ApplyLink: "https://example.com/j1", FirstSeenRunDate: "2026-08-20",
	})
	require.NoError(t, err)

	// Seen earlier: must not appear as new on the 20th.
	_, err = s.UpsertCompanyIfAbsent(ctx, "Old Corp", "2026-08-01")
	require.NoError(t, err)

	path, err := w.NewCompanies(ctx, date("2026-08-20"))
	require.NoError(t, err)
	assert.Equal(t, "new_companies_2026-08-20.csv", filepath.Base(path))

	rows := readCSV(t, path)
	require.Len(t, rows, 2, "header plus one company")
	assert.Equal(t, "Acme Inc.", rows[1][0])
	assert.Equal(t, "yes", rows[1][3])
	assert.Equal(t, "Forklift Operator", rows[1][6])
}

func TestTopCompaniesCSV(t *testing.T) {
	w, s := testWriter(t)
	ctx := context.Background()

	for i, employer := range []string{"Acme", "Acme", "Acme", "Bolt", "Bolt"} {
		_, err := s.InsertJobIfNew(ctx, store.Job{
			ID: string(rune('a' + i)), EmployerName: employer,
			Title: "Driver", FirstSeenRunDate: "2026-07-10",
		})
		require.NoError(t, err)
	}

	path, err := w.TopCompanies(ctx, "2026-07", 10)
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "Acme", "acme", "3", "0", "Driver (3)"}, rows[1])
	assert.Equal(t, "Bolt", rows[2][1])
}

func TestStillOpenMonthlyFlaggedFirst(t *testing.T) {
	w, _ := testWriter(t)

	summaries := []overlap.CompanySummary{
		{Norm: "quiet", Name: "Quiet Co", Month: store.StillOpenMetric{StillOpen: 9}},
		{Norm: "loud", Name: "Loud Co", Month: store.StillOpenMetric{StillOpen: 2, Flagged: true}},
	}
	path, err := w.StillOpenMonthly("2026-07", summaries)
	require.NoError(t, err)

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "Loud Co", rows[1][0], "flagged employers sort first")
	assert.Equal(t, "yes", rows[1][6])
	assert.Equal(t, "Quiet Co", rows[2][0])
}

func TestWeeklyDigestCoversCompletedWeek(t *testing.T) {
	w, s := testWriter(t)
	ctx := context.Background()

	// Wednesday 2026-08-26: completed week is Sunday 16th .. Saturday 22nd.
	today := date("2026-08-26")
	require.NoError(t, s.RecordRun(ctx, store.RunSummary{
		RunDate: "2026-08-18", JobsScanned: 40, JobsInRegion: 4, NewJobs: 3, NewCompanies: 1,
	}))
	_, err := s.UpsertCompanyIfAbsent(ctx, "BioCorp", "2026-08-18")
	require.NoError(t, err)
	_, err = s.InsertJobIfNew(ctx, store.Job{
		ID: "j1", EmployerName: "BioCorp", Title: "Lab Technician",
		FirstSeenRunDate: "2026-08-18",
		Sectors:          []string{"life_sciences"},
		Requirements:     []string{"no_degree"},
	})
	require.NoError(t, err)

	path, err := w.WeeklyDigest(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, "weekly_2026-08-22.md", filepath.Base(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "2026-08-16 to 2026-08-22")
	assert.Contains(t, text, "Runs: 1")
	assert.Contains(t, text, "BioCorp (1)")
	assert.Contains(t, text, "No degree required: 1")
	assert.NotContains(t, text, "week to date")
}

func TestWeeklyDigestFallsBackToWeekToDate(t *testing.T) {
	w, s := testWriter(t)
	ctx := context.Background()

	today := date("2026-08-26")
	// Only a run inside the current partial week.
	require.NoError(t, s.RecordRun(ctx, store.RunSummary{
		RunDate: "2026-08-25", JobsScanned: 10, JobsInRegion: 1,
	}))

	path, err := w.WeeklyDigest(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, "weekly_2026-08-26.md", filepath.Base(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "2026-08-23 to 2026-08-26")
	assert.Contains(t, text, "week to date")
	assert.Contains(t, text, "Runs: 1")
}

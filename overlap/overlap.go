// Package overlap computes the still-open metric: of the jobs an
// employer posted during a past window, how many are still listed as
// open right now. A persistently high overlap suggests postings that
// are not actually being filled.
package overlap

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Thresholds are the tunable cutoffs for flagging employers. Zero value
// flags nothing; load defaults with DefaultThresholds.
type Thresholds struct {
	// Monthly flag: enough window jobs AND (enough still open OR a high
	// enough rate).
	MonthMinWindowJobs int     `yaml:"month_min_window_jobs"`
	MonthMinStillOpen  int     `yaml:"month_min_still_open"`
	MonthMinRate       float64 `yaml:"month_min_rate"`

	// Weekly trend flag, any one of three signals. Each signal carries
	// its own minimum still-open count so tiny samples cannot trip it.
	TrendAvgRate            float64 `yaml:"trend_avg_rate"`
	TrendAvgMinStillOpen    int     `yaml:"trend_avg_min_still_open"`
	TrendDeltaRate          float64 `yaml:"trend_delta_rate"`
	TrendDeltaMinStillOpen  int     `yaml:"trend_delta_min_still_open"`
	TrendNewestRate         float64 `yaml:"trend_newest_rate"`
	TrendNewestMinStillOpen int     `yaml:"trend_newest_min_still_open"`
}

// DefaultThresholds returns the stock cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MonthMinWindowJobs: 3,
		MonthMinStillOpen:  5,
		MonthMinRate:       0.50,

		TrendAvgRate:            0.45,
		TrendAvgMinStillOpen:    6,
		TrendDeltaRate:          0.15,
		TrendDeltaMinStillOpen:  4,
		TrendNewestRate:         0.60,
		TrendNewestMinStillOpen: 3,
	}
}

// Result is one employer's still-open measurement for one window.
type Result struct {
	WindowJobs int
	OpenNow    int
	StillOpen  int
	Rate       float64
}

// Compute intersects the window's job identifiers with the currently
// open ones. An empty window yields rate 0, never a division by zero.
func Compute(windowIDs []string, openNow mapset.Set[string]) Result {
	window := mapset.NewThreadUnsafeSet(windowIDs...)
	if openNow == nil {
		openNow = mapset.NewThreadUnsafeSet[string]()
	}

	r := Result{
		WindowJobs: window.Cardinality(),
		OpenNow:    openNow.Cardinality(),
		StillOpen:  window.Intersect(openNow).Cardinality(),
	}
	if r.WindowJobs > 0 {
		r.Rate = float64(r.StillOpen) / float64(r.WindowJobs)
	}
	return r
}

// MonthFlag reports whether a monthly result crosses the flagging bar.
func (t Thresholds) MonthFlag(r Result) bool {
	if r.WindowJobs < t.MonthMinWindowJobs {
		return false
	}
	return r.StillOpen >= t.MonthMinStillOpen || r.Rate >= t.MonthMinRate
}

// TrendFlag inspects weekly results, newest first, for any of three
// signals: a sustained high average rate, a week-over-week jump, or a
// high rate in the newest week alone.
func (t Thresholds) TrendFlag(weeks []Result) bool {
	if len(weeks) == 0 {
		return false
	}

	totalStillOpen := 0
	rateSum := 0.0
	for _, w := range weeks {
		totalStillOpen += w.StillOpen
		rateSum += w.Rate
	}
	if totalStillOpen >= t.TrendAvgMinStillOpen && rateSum/float64(len(weeks)) >= t.TrendAvgRate {
		return true
	}

	for i := 0; i+1 < len(weeks); i++ {
		newer, older := weeks[i], weeks[i+1]
		if newer.StillOpen+older.StillOpen >= t.TrendDeltaMinStillOpen &&
			newer.Rate-older.Rate >= t.TrendDeltaRate {
			return true
		}
	}

	newest := weeks[0]
	return newest.StillOpen >= t.TrendNewestMinStillOpen && newest.Rate >= t.TrendNewestRate
}

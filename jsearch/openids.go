package jsearch

import (
	"context"
	"log/slog"

	mapset "github.com/deckarep/golang-set/v2"

	"mocojobs.dev/monitor/names"
)

const (
	// openIDsMaxPages bounds the per-company paging cost.
	openIDsMaxPages = 5
	// openIDsCutoffPage is the first page at which a page adding zero new
	// identifiers stops the walk (diminishing-returns cutoff).
	openIDsCutoffPage = 2
)

// OpenJobIDs returns the distinct identifiers of postings currently open
// for the named company, restricted to exact normalized-name matches and
// records accepted by inRegion. Paging stops at the bound or once a page
// past the first contributes nothing new. Failures degrade to whatever
// was collected so far.
func (c *Client) OpenJobIDs(ctx context.Context, company string, inRegion func(RawJob) bool) mapset.Set[string] {
	target := names.Key(company)
	ids := mapset.NewSet[string]()
	if target == "" {
		return ids
	}

	for page := 1; page <= openIDsMaxPages; page++ {
		jobs, err := c.search(ctx, company, page, 1, "month", "us")
		if err != nil {
			slog.Warn("jsearch: open-jobs fetch failed", "company", company, "page", page, "error", err)
			break
		}
		if len(jobs) == 0 {
			break
		}

		added := 0
		for _, j := range jobs {
			if names.Key(j.Employer()) != target {
				continue
			}
			if inRegion != nil && !inRegion(j) {
				continue
			}
			if id := j.ID(); id != "" && ids.Add(id) {
				added++
			}
		}
		if page >= openIDsCutoffPage && added == 0 {
			break
		}
	}
	return ids
}

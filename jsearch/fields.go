package jsearch

import (
	"fmt"
	"strconv"
	"strings"
)

// RawJob is one job record as returned by the search API. The upstream
// schema is loose and field names drift between providers, so logical
// attributes resolve through the ordered candidate key lists below,
// first present wins.
type RawJob map[string]any

var (
	postedAtKeys = []string{
		"job_posted_at_datetime_utc",
		"job_posted_at_datetime",
		"job_posted_at",
		"job_posted_at_timestamp",
	}
	cityKeys        = []string{"job_city", "job_location_city"}
	stateKeys       = []string{"job_state", "job_location_state"}
	descriptionKeys = []string{"job_description", "job_highlights", "job_summary"}

	salaryTextKeys     = []string{"job_salary", "salary", "job_salary_range", "job_salary_formatted"}
	salaryMinKeys      = []string{"job_min_salary", "job_salary_min", "min_salary"}
	salaryMaxKeys      = []string{"job_max_salary", "job_salary_max", "max_salary"}
	salaryCurrencyKeys = []string{"job_salary_currency", "salary_currency", "currency"}
	salaryPeriodKeys   = []string{"job_salary_period", "salary_period"}
)

func (j RawJob) first(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := j[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (j RawJob) str(keys ...string) string {
	v, ok := j.first(keys...)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

func (j RawJob) num(keys ...string) (float64, bool) {
	v, ok := j.first(keys...)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

func (j RawJob) ID() string             { return j.str("job_id") }
func (j RawJob) Employer() string       { return j.str("employer_name") }
func (j RawJob) Title() string          { return j.str("job_title") }
func (j RawJob) Publisher() string      { return j.str("job_publisher") }
func (j RawJob) EmploymentType() string { return j.str("job_employment_type") }
func (j RawJob) City() string           { return j.str(cityKeys...) }
func (j RawJob) State() string          { return j.str(stateKeys...) }
func (j RawJob) Country() string        { return j.str("job_country") }
func (j RawJob) Location() string       { return j.str("job_location") }
func (j RawJob) PostedAt() string       { return j.str(postedAtKeys...) }
func (j RawJob) ApplyLink() string      { return j.str("job_apply_link") }
func (j RawJob) Description() string    { return j.str(descriptionKeys...) }

// LatLon returns coordinates when both are present and numeric.
func (j RawJob) LatLon() (lat, lon *float64) {
	la, okLa := j.num("job_latitude")
	lo, okLo := j.num("job_longitude")
	if !okLa || !okLo {
		return nil, nil
	}
	return &la, &lo
}

// SalaryText returns a human-readable salary string: the upstream's own
// formatted string when present, otherwise assembled from the separate
// min/max/currency/period fields. Empty when nothing is known.
func (j RawJob) SalaryText() string {
	if s := j.str(salaryTextKeys...); s != "" {
		return s
	}

	min, okMin := j.num(salaryMinKeys...)
	max, okMax := j.num(salaryMaxKeys...)
	if !okMin && !okMax {
		return ""
	}

	var core string
	switch {
	case okMin && okMax:
		core = fmtNum(min) + "-" + fmtNum(max)
	case okMin:
		core = fmtNum(min) + "+"
	default:
		core = "up to " + fmtNum(max)
	}

	tail := strings.TrimSpace(j.str(salaryCurrencyKeys...) + " " + j.str(salaryPeriodKeys...))
	return strings.TrimSpace(core + " " + tail)
}

func fmtNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

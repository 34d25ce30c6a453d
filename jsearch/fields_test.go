package jsearch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostedAtFallbackOrder(t *testing.T) {
	tests := []struct {
		name string
		job  RawJob
		want string
	}{
		{
			name: "utc datetime wins",
			job: RawJob{
				"job_posted_at_datetime_utc": "2026-08-01T00:00:00Z",
				"job_posted_at":              "3 days ago",
			},
			want: "2026-08-01T00:00:00Z",
		},
		{
			name: "falls through to relative text",
			job:  RawJob{"job_posted_at": "3 days ago"},
			want: "3 days ago",
		},
		{
			name: "numeric timestamp is stringified",
			job:  RawJob{"job_posted_at_timestamp": float64(1722470400)},
			want: "1722470400",
		},
		{
			name: "nil values are skipped",
			job:  RawJob{"job_posted_at_datetime_utc": nil, "job_posted_at": "yesterday"},
			want: "yesterday",
		},
		{
			name: "absent entirely",
			job:  RawJob{},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.job.PostedAt())
		})
	}
}

func TestSalaryText(t *testing.T) {
	tests := []struct {
		name string
		job  RawJob
		want string
	}{
		{
			name: "formatted string wins",
			job:  RawJob{"job_salary": "$55k-$65k", "job_min_salary": float64(55000)},
			want: "$55k-$65k",
		},
		{
			name: "min and max with currency and period",
			job: RawJob{
				"job_min_salary":      float64(50000),
				"job_max_salary":      float64(70000),
				"job_salary_currency": "USD",
				"job_salary_period":   "YEAR",
			},
			want: "50000-70000 USD YEAR",
		},
		{
			name: "min only",
			job:  RawJob{"job_min_salary": float64(18.5)},
			want: "18.5+",
		},
		{
			name: "max only",
			job:  RawJob{"job_max_salary": float64(30)},
			want: "up to 30",
		},
		{
			name: "nothing known",
			job:  RawJob{},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.job.SalaryText())
		})
	}
}

func TestLatLon(t *testing.T) {
	lat, lon := RawJob{"job_latitude": 39.08, "job_longitude": -77.15}.LatLon()
	if assert.NotNil(t, lat) && assert.NotNil(t, lon) {
		assert.InDelta(t, 39.08, *lat, 1e-9)
		assert.InDelta(t, -77.15, *lon, 1e-9)
	}

	lat, lon = RawJob{"job_latitude": "39.08"}.LatLon()
	assert.Nil(t, lat)
	assert.Nil(t, lon)
}

func TestCityStateFallbacks(t *testing.T) {
	j := RawJob{"job_location_city": "Rockville", "job_location_state": "MD"}
	assert.Equal(t, "Rockville", j.City())
	assert.Equal(t, "MD", j.State())

	j = RawJob{"job_city": "Bethesda", "job_location_city": "ignored"}
	assert.Equal(t, "Bethesda", j.City())
}

package tagger

import (
	"slices"
	"testing"
)

func TestRequirementTags(t *testing.T) {
	tests := []struct {
		name  string
		title string
		desc  string
		want  []string
	}{
		{
			name: "entry level with no degree",
			desc: "Entry level role, high school diploma or equivalent accepted.",
			want: []string{TagNoDegree, TagNoExperience},
		},
		{
			name: "under three years",
			desc: "Requires 1-2 years of customer service experience.",
			want: []string{TagUnder3Years},
		},
		{
			name: "over three wins over under three",
			desc: "2+ years required, 5+ years preferred.",
			want: []string{TagOver3Years},
		},
		{
			name: "no signals",
			desc: "Join our team.",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RequirementTags(tt.title, tt.desc)
			if !slices.Equal(got, tt.want) {
				t.Errorf("RequirementTags() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSectorTags(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		desc     string
		employer string
		want     []string
	}{
		{
			name:  "software engineer is technology",
			title: "Software Engineer",
			desc:  "Build backend services in Go.",
			want:  []string{TagTechnology},
		},
		{
			// The "technician" veto fires even though nothing matches
			// the word "technology" itself.
			name:  "automotive technician is not technology",
			title: "Automotive Technician",
			desc:  "Diagnose vehicles using computer software.",
			want:  []string{},
		},
		{
			name:  "cleared systems engineer hits tech and aero",
			title: "Systems Engineer",
			desc:  "TS/SCI clearance required. Satellite ground station work.",
			want:  []string{TagAeroDefense, TagTechnology},
		},
		{
			name:     "biotech scientist",
			title:    "Research Scientist",
			desc:     "Molecular assay development",
			employer: "Gene Therapeutics",
			want:     []string{TagLifeSciences},
		},
		{
			name:  "nurse is vetoed from life sciences",
			title: "Registered Nurse",
			desc:  "Clinical laboratory setting",
			want:  []string{},
		},
		{
			name:  "retail blocker vetoes technology but not life sciences",
			title: "Barista",
			desc:  "We use cloud scheduling software and lab-grade espresso",
			want:  []string{TagLifeSciences},
		},
		{
			name:  "word boundary: maintain does not contain ai",
			title: "Facilities Coordinator",
			desc:  "maintain building schedules",
			want:  []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SectorTags(tt.title, tt.desc, tt.employer)
			if !slices.Equal(got, tt.want) {
				t.Errorf("SectorTags() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSectorTagsDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		got := SectorTags("Software Engineer", "TS/SCI cleared, python, genomics lab", "Acme")
		want := []string{TagAeroDefense, TagLifeSciences, TagTechnology}
		if !slices.Equal(got, want) {
			t.Fatalf("iteration %d: got %v, want %v", i, got, want)
		}
	}
}

package geofence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
)

// unit square around the origin
func squareBoundary() *Boundary {
	poly := orb.Polygon{{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}, {-1, -1}}}
	return New(poly)
}

func TestContains(t *testing.T) {
	b := squareBoundary()

	if !b.Contains(0, 0) {
		t.Error("origin should be inside")
	}
	if b.Contains(2, 2) {
		t.Error("(2,2) should be outside")
	}
	if b.Contains(0, 5) {
		t.Error("lon outside should be outside")
	}
}

func TestMatchesRecord(t *testing.T) {
	b := squareBoundary()

	t.Run("coordinates are authoritative", func(t *testing.T) {
		lat, lon := 0.5, 0.5
		if !b.MatchesRecord(&lat, &lon, "", "", "") {
			t.Error("point inside polygon should match")
		}
		lat, lon = 5, 5
		// Even with a matching city, real coordinates outside lose.
		if b.MatchesRecord(&lat, &lon, "Rockville", "MD", "") {
			t.Error("point outside polygon should not match")
		}
	})

	t.Run("city and state fallback", func(t *testing.T) {
		if !b.MatchesRecord(nil, nil, "Rockville", "MD", "") {
			t.Error("allow-listed city with state should match")
		}
		if b.MatchesRecord(nil, nil, "Rockville", "VA", "") {
			t.Error("wrong state should not match")
		}
		if b.MatchesRecord(nil, nil, "Annapolis", "MD", "") {
			t.Error("city not on the allow-list should not match")
		}
	})

	t.Run("free-text location fallback", func(t *testing.T) {
		if !b.MatchesRecord(nil, nil, "", "", "Montgomery County, MD") {
			t.Error("region phrase plus state should match")
		}
		if b.MatchesRecord(nil, nil, "", "", "Montgomery County, PA") {
			t.Error("region phrase without the state code should not match")
		}
	})
}

const countiesFixture = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"NAME": "Frederick"},
      "geometry": {"type": "Polygon", "coordinates": [[[10,10],[11,10],[11,11],[10,11],[10,10]]]}
    },
    {
      "type": "Feature",
      "properties": {"NAME": "Montgomery"},
      "geometry": {"type": "Polygon", "coordinates": [[[-1,-1],[1,-1],[1,1],[-1,1],[-1,-1]]]}
    }
  ]
}`

func TestLoadExtractsAndCaches(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "counties.geojson")
	cache := filepath.Join(dir, "boundary.geojson")
	if err := os.WriteFile(source, []byte(countiesFixture), 0o644); err != nil {
		t.Fatal(err)
	}

	b, err := Load(cache, []string{source}, "montgomery")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !b.Contains(0, 0) {
		t.Error("extracted boundary should contain origin")
	}

	// The cache file must now exist and be loadable on its own.
	if _, err := os.Stat(cache); err != nil {
		t.Fatalf("cache not written: %v", err)
	}
	b2, err := Load(cache, nil, "montgomery")
	if err != nil {
		t.Fatalf("Load from cache: %v", err)
	}
	if !b2.Contains(0, 0) {
		t.Error("cached boundary should contain origin")
	}
}

func TestLoadFailsWithoutSourceOrCache(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "missing.geojson"), []string{filepath.Join(dir, "also-missing.geojson")}, "montgomery")
	if err == nil {
		t.Fatal("expected error when neither cache nor source exists")
	}
}

func TestLoadUnknownRegion(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "counties.geojson")
	if err := os.WriteFile(source, []byte(countiesFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(filepath.Join(dir, "cache.geojson"), []string{source}, "atlantis")
	if err == nil {
		t.Fatal("expected error for unknown region name")
	}
}

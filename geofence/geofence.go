// Package geofence decides whether a posting or business location falls
// inside the target county boundary.
//
// The boundary geometry is loaded once per process and passed around
// explicitly. Primary classification is exact point-in-polygon; records
// without coordinates fall back to a city/state allow-list heuristic.
package geofence

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// DefaultCities is the allow-list of known in-region city names used when
// a record carries no coordinates.
var DefaultCities = []string{
	"rockville", "bethesda", "silver spring", "gaithersburg", "germantown",
	"wheaton", "takoma park", "chevy chase", "potomac", "olney", "kensington",
}

// Boundary is the loaded target-region geometry plus the textual
// fallback rules.
type Boundary struct {
	geom orb.Geometry

	State        string   // two-letter state code, lowercase
	RegionPhrase string   // full region name matched in free-text locations
	Cities       []string // lowercase city allow-list
}

// New wraps an already-decoded geometry with the default fallback rules.
func New(geom orb.Geometry) *Boundary {
	return &Boundary{
		geom:         geom,
		State:        "md",
		RegionPhrase: "montgomery county",
		Cities:       DefaultCities,
	}
}

// Load returns the region boundary. It prefers the cached single-feature
// file at cachePath; otherwise it extracts the feature named regionName
// from the first existing source path, writes the cache, and returns it.
// When neither the cache nor a source exists the error is fatal to the
// caller: ingestion without a region filter is meaningless.
func Load(cachePath string, sourcePaths []string, regionName string) (*Boundary, error) {
	if data, err := os.ReadFile(cachePath); err == nil {
		feat, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("parse boundary cache %s: %w", cachePath, err)
		}
		return New(feat.Geometry), nil
	}

	var sourcePath string
	for _, p := range sourcePaths {
		if _, err := os.Stat(p); err == nil {
			sourcePath = p
			break
		}
	}
	if sourcePath == "" {
		return nil, fmt.Errorf("no boundary cache at %s and no boundary source at any of %v", cachePath, sourcePaths)
	}

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("read boundary source: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse boundary source %s: %w", sourcePath, err)
	}

	feat := findFeature(fc, regionName)
	if feat == nil {
		return nil, fmt.Errorf("feature %q not found in %s (checked NAME/name/County/county properties)", regionName, sourcePath)
	}

	if cached, err := json.Marshal(feat); err == nil {
		if err := os.WriteFile(cachePath, cached, 0o644); err != nil {
			return nil, fmt.Errorf("write boundary cache %s: %w", cachePath, err)
		}
	}

	return New(feat.Geometry), nil
}

// findFeature locates the feature whose name property equals regionName,
// case-insensitively, probing the property keys counties files use.
func findFeature(fc *geojson.FeatureCollection, regionName string) *geojson.Feature {
	for _, feat := range fc.Features {
		for _, key := range []string{"NAME", "name", "County", "county"} {
			v, ok := feat.Properties[key]
			if !ok {
				continue
			}
			name, ok := v.(string)
			if !ok {
				continue
			}
			if strings.EqualFold(strings.TrimSpace(name), regionName) {
				return feat
			}
		}
	}
	return nil
}

// Contains reports whether the point lies inside the boundary geometry.
func (b *Boundary) Contains(lat, lon float64) bool {
	pt := orb.Point{lon, lat}
	switch g := b.geom.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, pt)
	default:
		return false
	}
}

// MatchesRecord classifies one upstream record. Coordinates, when
// present, are authoritative; otherwise the city/state allow-list and the
// free-text region phrase decide.
func (b *Boundary) MatchesRecord(lat, lon *float64, city, state, location string) bool {
	if lat != nil && lon != nil {
		return b.Contains(*lat, *lon)
	}

	city = strings.ToLower(city)
	state = strings.ToLower(state)
	location = strings.ToLower(location)

	if state == b.State {
		for _, c := range b.Cities {
			if strings.Contains(city, c) {
				return true
			}
		}
	}
	return strings.Contains(location, b.RegionPhrase) && strings.Contains(location, b.State)
}

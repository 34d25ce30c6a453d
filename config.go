package monitor

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"mocojobs.dev/monitor/jsearch"
	"mocojobs.dev/monitor/overlap"
)

// RegionName is the county feature looked up in the boundary source.
const RegionName = "Montgomery"

// Config is the file configuration (config.yaml). Zero or missing fields
// fall back to the defaults below.
type Config struct {
	Daily struct {
		Queries         []string `yaml:"queries"`
		DatePosted      string   `yaml:"date_posted"`
		NumPages        int      `yaml:"num_pages"`
		ThrottleSeconds int      `yaml:"throttle_seconds"`
		JitterSeconds   int      `yaml:"jitter_seconds"`
	} `yaml:"daily"`

	Monthly struct {
		TopN int `yaml:"top_n"`
	} `yaml:"monthly"`

	StillOpen        overlap.Thresholds `yaml:"still_open"`
	StillOpenMinJobs int                `yaml:"still_open_min_window_jobs"`

	// ExcludeEmployers drops these normalized names from rankings,
	// typically staffing agencies.
	ExcludeEmployers []string `yaml:"exclude_employers"`

	RetagDays int `yaml:"retag_days"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	var c Config
	c.Daily.Queries = []string{
		"jobs in Montgomery County Maryland",
		"jobs in Rockville MD",
		"jobs in Bethesda MD",
		"jobs in Silver Spring MD",
		"jobs in Gaithersburg MD",
		"jobs in Germantown MD",
	}
	c.Daily.DatePosted = "today"
	c.Daily.NumPages = 3
	c.Daily.ThrottleSeconds = 3
	c.Daily.JitterSeconds = 3
	c.Monthly.TopN = 25
	c.StillOpen = overlap.DefaultThresholds()
	c.StillOpenMinJobs = 1
	c.RetagDays = 30
	return c
}

// LoadConfig reads the YAML config at path over the defaults. A missing
// file is fine and yields the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(cfg.Daily.Queries) == 0 {
		return Config{}, fmt.Errorf("%s: daily.queries must not be empty", path)
	}
	return cfg, nil
}

// Env is the process environment: secrets and paths. A .env file in the
// working directory is loaded first when present.
type Env struct {
	RapidAPIKey  string
	RapidAPIHost string
	PlacesKey    string

	DBPath          string
	OutDir          string
	BoundaryCache   string
	BoundarySources []string
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadEnv reads the environment. The search API key is the one hard
// requirement; everything else has a default or is optional.
func LoadEnv() (Env, error) {
	_ = godotenv.Load()

	e := Env{
		RapidAPIKey:   os.Getenv("RAPIDAPI_KEY"),
		RapidAPIHost:  getenv("RAPIDAPI_HOST", jsearch.DefaultHost),
		PlacesKey:     os.Getenv("GOOGLE_PLACES_KEY"),
		DBPath:        getenv("DB_PATH", "data/monitor.db"),
		OutDir:        getenv("OUT_DIR", "outputs"),
		BoundaryCache: getenv("BOUNDARY_CACHE", "data/moco_boundary.geojson"),
		BoundarySources: []string{
			"data/md_counties.geojson",
			"md_counties.geojson",
		},
	}
	if e.RapidAPIKey == "" {
		return Env{}, errors.New("RAPIDAPI_KEY is not set (put it in the environment or a .env file)")
	}
	return e, nil
}

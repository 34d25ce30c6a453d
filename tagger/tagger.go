// Package tagger derives requirement and sector tags from posting text.
// All classification is phrase/word containment against the rule tables
// in rules.go; the functions are pure and deterministic.
package tagger

import (
	"regexp"
	"sort"
	"strings"
)

// Requirement tag vocabulary.
const (
	TagNoDegree     = "no_degree"
	TagNoExperience = "no_experience"
	TagUnder3Years  = "under_3_years_experience"
	TagOver3Years   = "more_than_3_years_experience"
)

// Sector tag vocabulary.
const (
	TagTechnology   = "technology"
	TagLifeSciences = "life_sciences"
	TagAeroDefense  = "aero_defense_sat"
)

var (
	textNoise = regexp.MustCompile(`[^a-z0-9+\s/.-]`)
	textSpace = regexp.MustCompile(`\s+`)
)

// prepare lowercases and strips punctuation noise so phrase containment
// behaves the same regardless of upstream formatting.
func prepare(parts ...string) string {
	s := strings.ToLower(strings.Join(parts, "\n"))
	s = textNoise.ReplaceAllString(s, " ")
	return strings.TrimSpace(textSpace.ReplaceAllString(s, " "))
}

func hasPhrase(text, p string) bool {
	return strings.Contains(text, p)
}

// hasWord matches w only at token boundaries, so "ai" never fires inside
// "maintain".
func hasWord(text, w string) bool {
	re := regexp.MustCompile(`(^|[^a-z0-9])` + regexp.QuoteMeta(w) + `($|[^a-z0-9])`)
	return re.MatchString(text)
}

func anyPhrase(text string, phrases []string) bool {
	for _, p := range phrases {
		if hasPhrase(text, p) {
			return true
		}
	}
	return false
}

func anyWord(text string, words []string) bool {
	for _, w := range words {
		if hasWord(text, w) {
			return true
		}
	}
	return false
}

// RequirementTags derives experience/degree signals from title and
// description text. If both the under-3-years and over-3-years signals
// are present, the over-3-years tag wins.
func RequirementTags(title, description string) []string {
	text := strings.ToLower(title + "\n" + description)

	tags := map[string]bool{}
	for _, rule := range requirementRules {
		if anyPhrase(text, rule.Phrases) {
			tags[rule.Tag] = true
		}
	}
	if tags[TagOver3Years] && tags[TagUnder3Years] {
		delete(tags, TagUnder3Years)
	}
	return sorted(tags)
}

// SectorTags derives sector signals from title, description and employer
// text. A sector's exclude lists veto its include matches; retail-blocked
// sectors are additionally vetoed when any retail blocker phrase appears.
func SectorTags(title, description, employer string) []string {
	text := prepare(title, description, employer)
	retailish := anyPhrase(text, retailBlockers)

	tags := map[string]bool{}
	for _, rule := range sectorRules {
		if rule.RetailBlocked && retailish {
			continue
		}
		if anyPhrase(text, rule.ExcludePhrases) || anyWord(text, rule.ExcludeWords) {
			continue
		}
		if anyPhrase(text, rule.IncludePhrases) || anyWord(text, rule.IncludeWords) {
			tags[rule.Tag] = true
		}
	}
	return sorted(tags)
}

func sorted(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Package textmatch implements the fuzzy name matching used to line up
// free-text spans with catalog entries (organizations, districts, service
// and beneficiary types).
package textmatch

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Tunable thresholds. They are heuristics, not business rules.
const (
	// MinCandidateLength is the shortest normalized candidate that may match anything.
	MinCandidateLength = 3
	// MinSignificantWordLength drops words at or below this length before overlap counting.
	MinSignificantWordLength = 2
	// OrgNameMinWordOverlapRatio is the share of an entity's words that must overlap.
	OrgNameMinWordOverlapRatio = 0.6
	// MaxRequiredWordMatches caps the overlap requirement for long names.
	MaxRequiredWordMatches = 2
	// SingleWordMinLength is the length a lone-word entity must exceed to match by overlap.
	SingleWordMinLength = 4
)

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "from": {}, "about": {},
	"what": {}, "where": {}, "which": {}, "who": {}, "how": {}, "are": {},
	"their": {}, "there": {}, "this": {}, "that": {}, "your": {}, "our": {},
	"service": {}, "services": {}, "provider": {}, "providers": {},
	"center": {}, "centre": {}, "centers": {}, "home": {}, "care": {},
	"child": {}, "children": {}, "family": {}, "families": {}, "support": {},
	"help": {}, "organization": {}, "organisation": {}, "foundation": {},
	"association": {}, "group": {}, "rwanda": {}, "phone": {}, "email": {},
	"number": {}, "contact": {}, "website": {}, "address": {}, "location": {},
}

// IsStopWord reports whether w (already normalized) is too generic to
// identify an entity on its own.
func IsStopWord(w string) bool {
	_, ok := stopWords[w]
	return ok
}

// Normalize folds s for comparison: NFC, lowercase, trimmed, inner
// whitespace collapsed to single spaces.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(norm.NFC.String(s))), " ")
}

// SignificantWords splits the normalized text on whitespace and keeps the
// words longer than MinSignificantWordLength runes.
func SignificantWords(s string) []string {
	fields := strings.Fields(Normalize(s))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, `.,;:!?"'()[]`)
		if utf8.RuneCountInString(f) > MinSignificantWordLength {
			words = append(words, f)
		}
	}
	return words
}

// MatchesEntity reports whether candidate refers to entity: either string
// contains the other, or enough significant words overlap.
func MatchesEntity(candidate, entity string) bool {
	c, e := Normalize(candidate), Normalize(entity)
	if utf8.RuneCountInString(c) < MinCandidateLength || e == "" {
		return false
	}
	if strings.Contains(c, e) || strings.Contains(e, c) {
		return true
	}
	return overlapAccepted(SignificantWords(c), SignificantWords(e))
}

// ContainsEntity is the one-directional form of MatchesEntity used when
// sweeping a whole query for catalog names: only the entity inside the text
// counts. Single-word entities must be longer than SingleWordMinLength and
// not a stop word.
func ContainsEntity(text, entity string) bool {
	t, e := Normalize(text), Normalize(entity)
	if utf8.RuneCountInString(t) < MinCandidateLength || e == "" {
		return false
	}
	entityWords := SignificantWords(e)
	if len(strings.Fields(e)) == 1 && !singleWordAllowed(e) {
		return false
	}
	if strings.Contains(t, e) {
		return true
	}
	return overlapAccepted(SignificantWords(t), entityWords)
}

// BestMatch returns the catalog item candidate refers to. Containment
// matches win over word-overlap matches; within each pass longer names are
// tried first and equal lengths keep catalog order.
func BestMatch[T any](candidate string, items []T, name func(T) string) (T, bool) {
	c := Normalize(candidate)
	if utf8.RuneCountInString(c) < MinCandidateLength {
		var zero T
		return zero, false
	}
	order := longestFirst(items, name)
	for _, i := range order {
		e := Normalize(name(items[i]))
		if e != "" && (strings.Contains(c, e) || strings.Contains(e, c)) {
			return items[i], true
		}
	}
	for _, i := range order {
		if MatchesEntity(c, name(items[i])) {
			return items[i], true
		}
	}
	var zero T
	return zero, false
}

// BestContained is BestMatch with ContainsEntity semantics. Items whose
// whole name occurs in text win over word-overlap matches.
func BestContained[T any](text string, items []T, name func(T) string) (T, bool) {
	if item, ok := LongestContained(text, items, name); ok {
		return item, true
	}
	t := Normalize(text)
	for _, i := range longestFirst(items, name) {
		if ContainsEntity(t, name(items[i])) {
			return items[i], true
		}
	}
	var zero T
	return zero, false
}

// LongestContained returns the longest item whose whole normalized name
// occurs in text and passes ContainsEntity.
func LongestContained[T any](text string, items []T, name func(T) string) (T, bool) {
	t := Normalize(text)
	for _, i := range longestFirst(items, name) {
		e := Normalize(name(items[i]))
		if e != "" && strings.Contains(t, e) && ContainsEntity(t, e) {
			return items[i], true
		}
	}
	var zero T
	return zero, false
}

// OverlapScore counts the significant words of b that overlap some
// significant word of a.
func OverlapScore(a, b string) int {
	return countOverlap(SignificantWords(a), SignificantWords(b))
}

// RequiredWordMatches is the overlap needed for an entity of n significant words.
func RequiredWordMatches(n int) int {
	required := int(math.Ceil(float64(n) * OrgNameMinWordOverlapRatio))
	if required > MaxRequiredWordMatches {
		return MaxRequiredWordMatches
	}
	return required
}

func overlapAccepted(candidateWords, entityWords []string) bool {
	if len(candidateWords) == 0 || len(entityWords) == 0 {
		return false
	}
	matched := countOverlap(candidateWords, entityWords)

	switch len(entityWords) {
	case 1:
		return matched == 1 && singleWordAllowed(entityWords[0])
	case 2:
		return matched == 2
	default:
		return matched >= RequiredWordMatches(len(entityWords))
	}
}

func singleWordAllowed(w string) bool {
	return utf8.RuneCountInString(w) > SingleWordMinLength && !IsStopWord(w)
}

func countOverlap(candidateWords, entityWords []string) int {
	matched := 0
	for _, ew := range entityWords {
		for _, cw := range candidateWords {
			if strings.Contains(cw, ew) || strings.Contains(ew, cw) {
				matched++
				break
			}
		}
	}
	return matched
}

func longestFirst[T any](items []T, name func(T) string) []int {
	order := make([]int, len(items))
	for i := range items {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return utf8.RuneCountInString(name(items[order[a]])) > utf8.RuneCountInString(name(items[order[b]]))
	})
	return order
}

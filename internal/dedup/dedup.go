// Package dedup collapses near-duplicate news items by normalized title and
// computes title-set differences between runs.
package dedup

import (
	"strings"
	"unicode"

	"github.com/trendpulse/trendpulse/internal/model"
)

// shortKeyLen bounds the dedup key. Long near-duplicate titles that agree on
// the first 50 normalized characters collapse together; the fuzzy collision
// is a deliberate trade-off for speed.
const shortKeyLen = 50

// NormalizeTitle lowercases the title, strips everything that is not a
// letter, digit, or whitespace, and collapses whitespace runs to one space.
func NormalizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// shortKey truncates a normalized title to the first shortKeyLen characters.
func shortKey(normalized string) string {
	runes := []rune(normalized)
	if len(runes) > shortKeyLen {
		return string(runes[:shortKeyLen])
	}
	return normalized
}

// Deduplicate drops items whose title short-key was already seen, keeping the
// first occurrence and preserving input order.
func Deduplicate(items []model.NewsItem) []model.NewsItem {
	seen := make(map[string]bool, len(items))
	unique := make([]model.NewsItem, 0, len(items))

	for _, item := range items {
		key := shortKey(NormalizeTitle(item.Title))
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, item)
	}

	return unique
}

// DiffNew returns the items in current whose full normalized title does not
// appear in previous. Unlike Deduplicate this compares complete normalized
// titles, not truncated keys; the asymmetry matches the different jobs
// (fuzzy collapse within a run vs. exact novelty across runs).
func DiffNew(current, previous []model.NewsItem) []model.NewsItem {
	prevTitles := make(map[string]bool, len(previous))
	for _, item := range previous {
		prevTitles[NormalizeTitle(item.Title)] = true
	}

	var fresh []model.NewsItem
	for _, item := range current {
		if !prevTitles[NormalizeTitle(item.Title)] {
			fresh = append(fresh, item)
		}
	}
	return fresh
}

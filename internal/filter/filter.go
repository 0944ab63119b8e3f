package filter

import (
	"os"
	"strings"

	"github.com/trendpulse/trendpulse/internal/model"
)

// Filter matches news titles against keyword groups and enforces per-keyword
// quotas. A Filter with no groups passes everything through unchanged, so an
// absent keyword file degrades to a no-op rather than an error.
type Filter struct {
	Groups []KeywordGroup

	// allKeywords maps lowercased word -> parsed keyword, used only to look
	// up each keyword's individual MaxCount during quota enforcement.
	allKeywords map[string]Keyword
}

// New returns an empty pass-through filter.
func New() *Filter {
	return &Filter{allKeywords: make(map[string]Keyword)}
}

// LoadFile reads a keyword rule file. A missing file leaves the filter empty.
func LoadFile(path string) (*Filter, error) {
	f := New()
	if path == "" {
		return f, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, err
	}
	f.Parse(string(content))
	return f, nil
}

// Parse loads keyword rules from text, replacing any previous state.
// Comment lines (# or //) are dropped, blank lines separate groups, and a
// group with zero keywords is never retained.
func (f *Filter) Parse(content string) {
	f.Groups = nil
	f.allKeywords = make(map[string]Keyword)

	var current KeywordGroup
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		if line == "" {
			if len(current.Keywords) > 0 {
				f.Groups = append(f.Groups, current)
				current = KeywordGroup{}
			}
			continue
		}

		kw := ParseKeyword(line)
		if kw.Word != "" {
			current.Add(kw)
			f.allKeywords[strings.ToLower(kw.Word)] = kw
		}
	}
	if len(current.Keywords) > 0 {
		f.Groups = append(f.Groups, current)
	}
}

// Matches reports whether text matches any keyword group, along with the
// matched words (lowercased, first-match order, no duplicates).
//
// Each group is evaluated independently: an exclude hit or a missing required
// word disqualifies the group; otherwise every plain or required word found in
// the text counts as matched. A configuration consisting only of exclude rules
// never produces matches of its own but must not suppress items, so it is
// treated as a pass like the no-groups case.
func (f *Filter) Matches(text string) (bool, []string) {
	if len(f.Groups) == 0 {
		return true, nil
	}

	textLower := strings.ToLower(text)
	var matched []string
	seen := make(map[string]bool)
	add := func(word string) {
		if !seen[word] {
			seen[word] = true
			matched = append(matched, word)
		}
	}

groups:
	for _, group := range f.Groups {
		for _, word := range group.ExcludeWords() {
			if strings.Contains(textLower, word) {
				continue groups
			}
		}

		required := group.RequiredWords()
		for _, word := range required {
			if !strings.Contains(textLower, word) {
				continue groups
			}
		}

		for _, word := range group.MatchWords() {
			if strings.Contains(textLower, word) {
				add(word)
			}
		}
		for _, word := range required {
			if strings.Contains(textLower, word) {
				add(word)
			}
		}
	}

	if len(matched) > 0 {
		return true, matched
	}

	// An all-exclude configuration has nothing that could ever match; treat
	// it as a pass-through rather than a filter that rejects everything.
	for _, group := range f.Groups {
		if len(group.MatchWords()) > 0 || len(group.RequiredWords()) > 0 {
			return false, nil
		}
	}
	return true, nil
}

// FilterNews applies the filter over items in order, enforcing quotas.
//
// The quota policy is first-come-first-served: items earlier in the input
// claim quota first, and an item is dropped whole if any of its matched
// keywords is already at its limit. The per-keyword limit is the keyword's own
// MaxCount when positive, otherwise globalMaxPerKeyword (0 = unlimited).
// Counts are local to one call; a Filter holds no cross-run state.
func (f *Filter) FilterNews(items []model.NewsItem, globalMaxPerKeyword int) []model.NewsItem {
	if len(f.Groups) == 0 {
		return items
	}

	var results []model.NewsItem
	counts := make(map[string]int)

	for _, item := range items {
		if item.Title == "" {
			continue
		}

		ok, matched := f.Matches(item.Title)
		if !ok {
			continue
		}

		atLimit := false
		for _, word := range matched {
			limit := globalMaxPerKeyword
			if kw, found := f.allKeywords[word]; found && kw.MaxCount > 0 {
				limit = kw.MaxCount
			}
			if limit > 0 && counts[word] >= limit {
				atLimit = true
				break
			}
		}
		if atLimit {
			continue
		}

		for _, word := range matched {
			counts[word]++
		}
		item.MatchedKeywords = matched
		results = append(results, item)
	}

	return results
}

// Stats summarizes the loaded keyword configuration.
type Stats struct {
	TotalKeywords    int `json:"total_keywords"`
	TotalGroups      int `json:"total_groups"`
	RequiredKeywords int `json:"required_keywords"`
	ExcludeKeywords  int `json:"exclude_keywords"`
	LimitedKeywords  int `json:"limited_keywords"`
}

// Statistics reports counts over the loaded configuration.
func (f *Filter) Statistics() Stats {
	s := Stats{
		TotalKeywords: len(f.allKeywords),
		TotalGroups:   len(f.Groups),
	}
	for _, kw := range f.allKeywords {
		if kw.Required {
			s.RequiredKeywords++
		}
		if kw.Exclude {
			s.ExcludeKeywords++
		}
		if kw.MaxCount > 0 {
			s.LimitedKeywords++
		}
	}
	return s
}

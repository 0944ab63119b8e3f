package filter

import (
	"regexp"
	"strings"
)

// Keyword is one parsed rule line from the keyword file.
//
//	"AI"     plain match word
//	"+AI"    required: every required word in the group must be present
//	"!ad"    exclude: any occurrence suppresses the whole group
//	"AI@5"   per-keyword quota: at most 5 accepted items may carry this word
type Keyword struct {
	Word     string
	Required bool
	Exclude  bool
	MaxCount int // 0 = unlimited (or the global limit, if one is set)
}

var maxCountSuffix = regexp.MustCompile(`^(.+?)@(\d+)$`)

// ParseKeyword parses a single rule line. A line that is blank after trimming
// yields a Keyword with an empty Word, which callers discard.
func ParseKeyword(line string) Keyword {
	text := strings.TrimSpace(line)
	if text == "" {
		return Keyword{}
	}

	var kw Keyword
	if strings.HasPrefix(text, "+") {
		kw.Required = true
		text = text[1:]
	} else if strings.HasPrefix(text, "!") {
		kw.Exclude = true
		text = text[1:]
	}

	if m := maxCountSuffix.FindStringSubmatch(text); m != nil {
		text = m[1]
		kw.MaxCount = atoiDigits(m[2])
	}

	kw.Word = text
	return kw
}

// atoiDigits converts a digits-only string. The regexp guarantees the input,
// so there is no error path.
func atoiDigits(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

// KeywordGroup is an ordered run of keywords separated from other groups by
// blank lines. Each group is evaluated independently; an item matches the
// filter if any group accepts it.
type KeywordGroup struct {
	Keywords []Keyword
}

// Add appends a keyword, dropping empty words.
func (g *KeywordGroup) Add(kw Keyword) {
	if kw.Word != "" {
		g.Keywords = append(g.Keywords, kw)
	}
}

// RequiredWords returns the lowercased required words of the group.
func (g *KeywordGroup) RequiredWords() []string {
	return g.selectWords(func(k Keyword) bool { return k.Required })
}

// ExcludeWords returns the lowercased exclude words of the group.
func (g *KeywordGroup) ExcludeWords() []string {
	return g.selectWords(func(k Keyword) bool { return k.Exclude })
}

// MatchWords returns the lowercased plain words of the group.
func (g *KeywordGroup) MatchWords() []string {
	return g.selectWords(func(k Keyword) bool { return !k.Required && !k.Exclude })
}

func (g *KeywordGroup) selectWords(pred func(Keyword) bool) []string {
	var words []string
	for _, k := range g.Keywords {
		if pred(k) {
			words = append(words, strings.ToLower(k.Word))
		}
	}
	return words
}

package engine

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/anatolykoptev/go-kit/strutil"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeSkill lowercases and trims a skill token.
func NormalizeSkill(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SplitList splits a comma-delimited string, trims each token and drops empties.
// Casing is preserved.
func SplitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SkillSet is a case-insensitive set of skill names. The first casing
// added for a key is kept as its display form.
type SkillSet struct {
	m map[string]string // normalized → display
}

// NewSkillSet builds a set from names; blank names are skipped.
func NewSkillSet(names ...string) *SkillSet {
	s := &SkillSet{m: make(map[string]string, len(names))}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// ParseSkillList turns user-typed "python, SQL ,,go" into a set.
func ParseSkillList(raw string) *SkillSet {
	return NewSkillSet(SplitList(raw)...)
}

// Add inserts name and reports whether it was new.
func (s *SkillSet) Add(name string) bool {
	key := NormalizeSkill(name)
	if key == "" {
		return false
	}
	if _, ok := s.m[key]; ok {
		return false
	}
	s.m[key] = strings.TrimSpace(name)
	return true
}

// Has reports whether name is in the set, ignoring case and surrounding space.
func (s *SkillSet) Has(name string) bool {
	_, ok := s.m[NormalizeSkill(name)]
	return ok
}

// Len returns the number of distinct skills.
func (s *SkillSet) Len() int { return len(s.m) }

// Keys returns the normalized names, sorted.
func (s *SkillSet) Keys() []string {
	out := make([]string, 0, len(s.m))
	for k := range s.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Names returns the display names sorted lexicographically.
func (s *SkillSet) Names() []string {
	out := make([]string, 0, len(s.m))
	for _, v := range s.m {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Display returns the stored display form for name, or "".
func (s *SkillSet) Display(name string) string {
	return s.m[NormalizeSkill(name)]
}

// TitleCase capitalizes each whitespace-separated word and joins them with
// single spaces: "machine  learning" → "Machine Learning", "sql" → "Sql".
// Only the first rune of a word is upper-cased; punctuation inside a word
// does not start a new one ("ci/cd" → "Ci/cd").
func TitleCase(s string) string {
	// Casers are stateful; one pair per call.
	upper, lower := cases.Upper(language.Und), cases.Lower(language.Und)
	words := strings.Fields(s)
	for i, w := range words {
		_, n := utf8.DecodeRuneInString(w)
		words[i] = upper.String(w[:n]) + lower.String(w[n:])
	}
	return strings.Join(words, " ")
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

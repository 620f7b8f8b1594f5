package roadmap

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/anatolykoptev/go_roadmap/internal/engine"
)

// Analyze scores a user's comma-separated skills against a required set.
//
// A required skill counts as held when ANY user token is a substring of its
// lower-cased name ("script" holds "JavaScript"). The match is one-directional
// and over-matches short tokens. Percentage rounds half to even.
// Have and Need are sorted and title-cased per word.
func Analyze(userSkillsRaw string, required []string) (*GapResult, error) {
	req := engine.NewSkillSet(required...)
	if req.Len() == 0 {
		return nil, fmt.Errorf("analyze: required skill set is empty: %w", ErrInvalidInput)
	}
	user := engine.ParseSkillList(userSkillsRaw)
	if user.Len() == 0 {
		return nil, fmt.Errorf("analyze: no user skills given: %w", ErrInvalidInput)
	}
	tokens := user.Keys()

	var have, need []string
	for _, name := range req.Keys() {
		if holdsAny(name, tokens) {
			have = append(have, engine.TitleCase(name))
		} else {
			need = append(need, engine.TitleCase(name))
		}
	}
	sort.Strings(have)
	sort.Strings(need)

	engine.Incr(engine.MetricGapAnalyses)
	return &GapResult{
		Percentage: int(math.RoundToEven(100 * float64(len(have)) / float64(req.Len()))),
		Have:       nonNil(have),
		Need:       nonNil(need),
	}, nil
}

func holdsAny(requiredLower string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(requiredLower, t) {
			return true
		}
	}
	return false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// RequiredFromGenerated collects the skill names of an unsaved generated roadmap.
func RequiredFromGenerated(milestones []GeneratedMilestone) []string {
	set := engine.NewSkillSet()
	for _, m := range milestones {
		for _, s := range m.Skills {
			set.Add(s.Name)
		}
	}
	return set.Names()
}

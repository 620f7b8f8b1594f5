package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrExtractionAmbiguous means no bracketed region could be located in the
	// model output; the raw text was handed to the decoder unchanged.
	ErrExtractionAmbiguous = errors.New("model returned no recognizable structure")
	// ErrInvalidStructure means a region was located but it does not decode.
	ErrInvalidStructure = errors.New("model returned invalid structure")
)

// Extractor recovers a JSON payload from free-form generator output.
// Extract never validates: decoding and its errors belong to the caller.
type Extractor interface {
	Extract(raw string) string
}

// jsonFenceRe matches a ```json fenced block, non-greedy up to the first closing fence.
var jsonFenceRe = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")

// HeuristicExtractor is a two-phase heuristic, not a parser:
//
//  1. a ```json fenced block wins and its trimmed body is returned;
//  2. otherwise the earliest '[' or '{' opens the payload and the LAST
//     matching ']' or '}' closes it.
//
// There is no depth counting. Stray brackets in prose around the payload
// (an earlier "[" in a sentence, a trailing "}" after it) shift the
// boundaries and produce a region that fails to decode.
type HeuristicExtractor struct{}

// Extract returns the located region, or raw unchanged when none is found.
func (HeuristicExtractor) Extract(raw string) string {
	s, _ := locate(raw)
	return s
}

// Locate is Extract plus whether a region was actually found.
func (HeuristicExtractor) Locate(raw string) (string, bool) {
	return locate(raw)
}

func locate(raw string) (string, bool) {
	if m := jsonFenceRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1]), true
	}

	var start int
	bracket := strings.IndexByte(raw, '[')
	brace := strings.IndexByte(raw, '{')
	switch {
	case bracket < 0 && brace < 0:
		return raw, false
	case bracket >= 0 && brace >= 0:
		start = min(bracket, brace)
	case bracket >= 0:
		start = bracket
	default:
		start = brace
	}

	closing := "}"
	if raw[start] == '[' {
		closing = "]"
	}
	end := strings.LastIndex(raw, closing)
	if end > start {
		return raw[start : end+1], true
	}
	return raw, false
}

// ExtractJSON runs the default heuristic over raw.
func ExtractJSON(raw string) string {
	return HeuristicExtractor{}.Extract(raw)
}

// ParseJSON extracts a payload from raw with ex (nil = heuristic) and decodes it into v.
func ParseJSON(ex Extractor, raw string, v any) error {
	if ex == nil {
		ex = HeuristicExtractor{}
	}
	reg.Incr(MetricExtractions)

	var (
		payload string
		found   = true
	)
	if l, ok := ex.(interface{ Locate(string) (string, bool) }); ok {
		payload, found = l.Locate(raw)
	} else {
		payload = ex.Extract(raw)
	}

	if err := json.Unmarshal([]byte(payload), v); err != nil {
		reg.Incr(MetricExtractionFailures)
		if !found {
			return fmt.Errorf("%w: %v (raw: %s)", ErrExtractionAmbiguous, err, TruncateRunes(raw, 200, "..."))
		}
		return fmt.Errorf("%w: %v (raw: %s)", ErrInvalidStructure, err, TruncateRunes(payload, 200, "..."))
	}
	return nil
}

// ExtractJSONString salvages the string value of field from malformed JSON
// where the value may contain unescaped newlines or special characters.
// Returns "" when the field is absent or not a string.
func ExtractJSONString(raw, field string) string {
	prefix := `"` + field + `"`
	idx := strings.Index(raw, prefix)
	if idx < 0 {
		return ""
	}
	rest := raw[idx+len(prefix):]
	rest = strings.TrimSpace(rest)
	if len(rest) == 0 || rest[0] != ':' {
		return ""
	}
	rest = strings.TrimSpace(rest[1:])
	if len(rest) == 0 || rest[0] != '"' {
		return ""
	}
	rest = rest[1:] // skip opening quote

	var sb strings.Builder
	for i := 0; i < len(rest); i++ {
		if rest[i] == '\\' && i+1 < len(rest) {
			i++ // the escaped byte is consumed either way
			switch c := rest[i]; c {
			case '"', '\\', '/':
				sb.WriteByte(c)
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte('\\')
				sb.WriteByte(c)
			}
			continue
		}
		if rest[i] == '"' {
			return sb.String()
		}
		sb.WriteByte(rest[i])
	}
	return sb.String()
}

package briefing

import (
	"encoding/json"
	"strings"
)

// MalformedResponseError indicates the LLM completion could not be turned
// into valid JSON even after repair. Raw carries the original completion
// text for diagnostics.
type MalformedResponseError struct {
	Raw string
}

func (e *MalformedResponseError) Error() string {
	return "response was not valid JSON"
}

// ExtractJSON turns a raw LLM completion into a parsed object, tolerating
// markdown code fences, surrounding prose, and unescaped control characters
// inside string literals.
func ExtractJSON(text string) (map[string]any, error) {
	clean := stripFence(strings.TrimSpace(text))

	// Slice to the outermost object; models reliably wrap JSON in prose.
	first := strings.Index(clean, "{")
	last := strings.LastIndex(clean, "}")
	if first != -1 && last != -1 && last > first {
		clean = clean[first : last+1]
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(clean), &result); err == nil {
		return result, nil
	}

	// Strict parse failed: repair unescaped control characters inside
	// string literals and try once more.
	repaired := repairControlChars(clean)
	if err := json.Unmarshal([]byte(repaired), &result); err != nil {
		return nil, &MalformedResponseError{Raw: text}
	}
	return result, nil
}

// stripFence removes a leading ``` or ```json fence and a trailing ```.
func stripFence(text string) string {
	for _, prefix := range []string{"```json", "```"} {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			break
		}
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// repairControlChars rewrites literal newline/carriage-return/tab characters
// inside string literals to their escaped form and drops any other control
// character. Characters outside string literals pass through unchanged.
func repairControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			continue
		}

		switch {
		case c == '\\':
			escaped = !escaped
			b.WriteByte(c)
		case c == '"' && !escaped:
			inString = false
			b.WriteByte(c)
		case c == '\n':
			escaped = false
			b.WriteString(`\n`)
		case c == '\r':
			escaped = false
			b.WriteString(`\r`)
		case c == '\t':
			escaped = false
			b.WriteString(`\t`)
		case c < 32:
			// Other control characters are invalid in JSON strings
			// and carry no information worth keeping.
			escaped = false
		default:
			escaped = false
			b.WriteByte(c)
		}
	}

	return b.String()
}

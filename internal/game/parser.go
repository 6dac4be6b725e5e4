package game

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

var smartQuotes = strings.NewReplacer(
	"“", `"`, // left double
	"”", `"`, // right double
	"‘", "'", // left single
	"’", "'", // right single
)

// ParseResponse converts a model's full reply into a Move. It extracts the
// first top-level {...} span, then tries decode strategies in order: strict
// JSON, a permissive literal decode that tolerates single-quoted keys and
// values, and a cosmetic repair pass (smart quotes, trailing commas) followed
// by a strict retry. Retrying the model itself is the caller's business.
func ParseResponse(response string) (Move, error) {
	snippet, err := extractSpan(response)
	if err != nil {
		return Move{}, err
	}

	fields, err := decodeSpan(snippet)
	if err != nil {
		return Move{}, err
	}
	return NewMove(fields)
}

func extractSpan(response string) (string, error) {
	first := strings.Index(response, "{")
	last := strings.LastIndex(response, "}")
	if first == -1 || last == -1 || last <= first {
		return "", ErrNoJSON
	}
	return response[first : last+1], nil
}

func decodeSpan(snippet string) (map[string]any, error) {
	var fields map[string]any

	// 1) strict JSON
	if err := json.Unmarshal([]byte(snippet), &fields); err == nil {
		return fields, nil
	}

	// 2) permissive literal: tolerate single-quoted strings and Python-style
	// booleans/null. Unmarshalling into a map rejects non-object results.
	if err := json.Unmarshal([]byte(literalToJSON(snippet)), &fields); err == nil {
		return fields, nil
	}

	// 3) cosmetic repair, then strict again
	cleaned := smartQuotes.Replace(snippet)
	cleaned = trailingCommaRe.ReplaceAllString(cleaned, "$1")
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return fields, nil
}

// literalToJSON rewrites a Python-style literal into JSON: single-quoted
// strings become double-quoted (escaping as needed) and bare True/False/None
// become their JSON spellings. Content inside strings is left alone.
func literalToJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	inDouble := false
	inSingle := false

	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case inDouble:
			if ch == '\\' && i+1 < len(runes) {
				b.WriteRune(ch)
				i++
				b.WriteRune(runes[i])
				continue
			}
			if ch == '"' {
				inDouble = false
			}
			b.WriteRune(ch)

		case inSingle:
			if ch == '\\' && i+1 < len(runes) {
				next := runes[i+1]
				i++
				if next == '\'' {
					b.WriteRune('\'')
				} else {
					b.WriteRune('\\')
					b.WriteRune(next)
				}
				continue
			}
			if ch == '\'' {
				inSingle = false
				b.WriteRune('"')
				continue
			}
			if ch == '"' {
				b.WriteString(`\"`)
				continue
			}
			b.WriteRune(ch)

		default:
			if ch == '"' {
				inDouble = true
				b.WriteRune(ch)
				continue
			}
			if ch == '\'' {
				inSingle = true
				b.WriteRune('"')
				continue
			}
			if unicode.IsLetter(ch) {
				j := i
				for j < len(runes) && unicode.IsLetter(runes[j]) {
					j++
				}
				word := string(runes[i:j])
				switch word {
				case "True":
					b.WriteString("true")
				case "False":
					b.WriteString("false")
				case "None":
					b.WriteString("null")
				default:
					b.WriteString(word)
				}
				i = j - 1
				continue
			}
			b.WriteRune(ch)
		}
	}
	return b.String()
}

package jsonrepair

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSON is returned when the text contains no JSON structure at all.
var ErrNoJSON = errors.New("no JSON found in text")

// ExtractObject returns the first complete JSON object in text. Markdown fences
// and surrounding prose are ignored; braces inside strings do not count.
func ExtractObject(text string) (string, bool) {
	return extract(text, '{', '}')
}

// ExtractArray returns the first complete JSON array in text.
func ExtractArray(text string) (string, bool) {
	return extract(text, '[', ']')
}

func extract(text string, open, close byte) (string, bool) {
	start := strings.IndexByte(text, open)
	for start >= 0 {
		if end := matchingEnd(text, start); end >= 0 && text[end] == close {
			return text[start : end+1], true
		}
		next := strings.IndexByte(text[start+1:], open)
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// matchingEnd returns the index closing the structure opened at start, or -1.
func matchingEnd(text string, start int) int {
	var stack []byte
	inString, escaped := false, false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}

// Repair closes a truncated JSON document: an open string is terminated, a
// dangling comma or key is dropped, and open objects and arrays are closed in order.
func Repair(text string) string {
	text = strings.TrimSpace(text)

	var stack []byte
	inString, escaped := false, false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var b strings.Builder
	b.WriteString(text)
	if inString {
		if escaped {
			b.WriteByte('\\')
		}
		b.WriteByte('"')
	}

	out := trimDangling(b.String())
	for i := len(stack) - 1; i >= 0; i-- {
		out += string(stack[i])
	}
	return out
}

// trimDangling strips a trailing comma, a trailing colon, or a key with no value.
func trimDangling(s string) string {
	for {
		trimmed := strings.TrimRight(s, " \t\r\n")
		switch {
		case strings.HasSuffix(trimmed, ","):
			s = trimmed[:len(trimmed)-1]
		case strings.HasSuffix(trimmed, ":"):
			s = dropTrailingKey(trimmed[:len(trimmed)-1])
		default:
			return trimmed
		}
	}
}

func dropTrailingKey(s string) string {
	s = strings.TrimRight(s, " \t\r\n")
	if !strings.HasSuffix(s, `"`) {
		return s
	}
	for i := len(s) - 2; i >= 0; i-- {
		if s[i] == '"' && (i == 0 || s[i-1] != '\\') {
			return s[:i]
		}
	}
	return s
}

// DecodeObject decodes the first JSON object found in text into v. A
// truncated trailing object is repaired before decoding.
func DecodeObject(text string, v any) error {
	if obj, ok := ExtractObject(text); ok {
		if err := json.Unmarshal([]byte(obj), v); err == nil {
			return nil
		}
	}

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ErrNoJSON
	}
	candidate := strings.TrimSuffix(strings.TrimSpace(text[start:]), "```")
	if err := json.Unmarshal([]byte(Repair(candidate)), v); err != nil {
		return fmt.Errorf("failed to decode repaired JSON: %w", err)
	}
	return nil
}

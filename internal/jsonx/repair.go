// Package jsonx decodes model responses that are often truncated or lightly
// malformed (a known failure mode of length-capped streaming output). The
// repairs are best effort and only ever close structures the text already
// opened; nothing is fabricated, and fields that cannot be recovered stay
// absent.
package jsonx

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseError is raised when every repair strategy is exhausted.
type ParseError struct {
	Msg     string
	Snippet string // first 100 characters of the cleaned text
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable model response: %s (text starts: %q)", e.Msg, e.Snippet)
}

var trailingComma = regexp.MustCompile(`,\s*([}\]])`)

// Decode parses raw into v, attempting repairs in a fixed order, each step
// only when the previous parse failed:
//
//  1. strip markdown code fences
//  2. direct parse
//  3. remove trailing commas before ] / }
//  4. close an unterminated string (odd count of unescaped quotes)
//  5. append missing closing } / ] characters
//  6. strip ASCII control characters and retry once more
func Decode(raw string, v any) error {
	cleaned := stripFences(raw)

	lastErr := json.Unmarshal([]byte(cleaned), v)
	if lastErr == nil {
		return nil
	}

	cleaned = trailingComma.ReplaceAllString(cleaned, "$1")
	if lastErr = json.Unmarshal([]byte(cleaned), v); lastErr == nil {
		return nil
	}

	if countUnescapedQuotes(cleaned)%2 == 1 {
		cleaned += `"`
	}
	cleaned += missingClosers(cleaned)
	if lastErr = json.Unmarshal([]byte(cleaned), v); lastErr == nil {
		return nil
	}

	cleaned = stripControlChars(cleaned)
	if lastErr = json.Unmarshal([]byte(cleaned), v); lastErr == nil {
		return nil
	}

	return &ParseError{Msg: lastErr.Error(), Snippet: firstN(cleaned, 100)}
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func countUnescapedQuotes(s string) int {
	n := 0
	escaped := false
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			n++
		}
	}
	return n
}

// missingClosers walks the text outside string literals and returns the
// closers for any structures left open, innermost first.
func missingClosers(s string) string {
	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			stack = append(stack, '}')
		case c == '[':
			stack = append(stack, ']')
		case c == '}' || c == ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}
	closers := make([]byte, 0, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		closers = append(closers, stack[i])
	}
	return string(closers)
}

func stripControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 32 && r != '\n' && r != '\r' && r != '\t' {
			continue
		}
		if r == 127 {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func firstN(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}

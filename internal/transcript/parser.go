// Package transcript turns free-text speaker-turn lines from model output
// into structured records.
package transcript

import (
	"regexp"
	"strconv"
	"strings"
)

type Line struct {
	Speaker   string `json:"speaker"`
	Timestamp string `json:"timestamp"`
	Seconds   int    `json:"seconds"`
	Message   string `json:"message"`
}

const tsGroup = `(\d{1,2}:\d{2}(?::\d{2})?)`

// Tried in order; first match wins.
var linePatterns = []struct {
	re            *regexp.Regexp
	speaker, ts, msg int // group indexes
}{
	{regexp.MustCompile(`^\s*(.+?)\s*\[` + tsGroup + `\]:\s*(.*)$`), 1, 2, 3}, // Speaker [MM:SS]: msg
	{regexp.MustCompile(`^\s*\[` + tsGroup + `\]\s*(.+?):\s*(.*)$`), 2, 1, 3}, // [MM:SS] Speaker: msg
	{regexp.MustCompile(`^\s*(.+?)\s*\(` + tsGroup + `\):\s*(.*)$`), 1, 2, 3}, // Speaker (MM:SS): msg
}

// ParseLine matches the three speaker-turn shapes in order. A line matching
// none of them becomes a System record carrying the raw line.
func ParseLine(raw string) Line {
	for _, p := range linePatterns {
		if m := p.re.FindStringSubmatch(raw); m != nil {
			ts := m[p.ts]
			return Line{
				Speaker:   m[p.speaker],
				Timestamp: ts,
				Seconds:   ToSeconds(ts),
				Message:   m[p.msg],
			}
		}
	}
	return Line{Speaker: "System", Timestamp: "00:00", Seconds: 0, Message: raw}
}

// Parse splits a transcript into lines, skipping blanks.
func Parse(text string) []Line {
	var out []Line
	for _, raw := range strings.Split(text, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		out = append(out, ParseLine(raw))
	}
	return out
}

// ToSeconds converts MM:SS or HH:MM:SS to seconds. Malformed input yields 0.
func ToSeconds(ts string) int {
	parts := strings.Split(strings.TrimSpace(ts), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// Package prompt assembles the system instruction sent with every analysis
// call: base template, media context, user-selected focus areas, severity
// mode, custom instructions and the embedded reference tables.
package prompt

import (
	"fmt"
	"strings"

	"github.com/auditlens/auditlens/internal/models"
	"github.com/auditlens/auditlens/internal/refdata"
)

type SeverityMode string

const (
	ModeStrict   SeverityMode = "strict"
	ModeBalanced SeverityMode = "balanced"
	ModeLenient  SeverityMode = "lenient"
)

var focusAreaLabels = map[string]string{
	"screen-reader":  "screen reader output and announcements",
	"keyboard":       "keyboard operability, focus order and focus visibility",
	"color-contrast": "color contrast and use of color",
	"forms":          "form labels, instructions and error handling",
	"aria":           "ARIA roles, states, properties and APG pattern conformance",
	"multimedia":     "captions, transcripts and audio descriptions",
	"structure":      "headings, landmarks and reading order",
}

type Options struct {
	FocusAreas         []string
	SeverityMode       SeverityMode
	CustomInstructions string
	Media              []models.MediaItem
}

type Builder struct {
	base    string
	version string
}

func NewBuilder(baseTemplate, version string) *Builder {
	return &Builder{base: baseTemplate, version: version}
}

func (b *Builder) Version() string { return b.version }

// System composes the full system instruction.
func (b *Builder) System(opts Options) string {
	var s strings.Builder
	s.WriteString(b.base)
	s.WriteString("\n\n")

	if ctx := mediaContext(opts.Media); ctx != "" {
		s.WriteString("Submitted media: " + ctx + "\n\n")
	}

	if areas := focusAreaText(opts.FocusAreas); areas != "" {
		s.WriteString("Pay particular attention to: " + areas + ".\n\n")
	}

	switch opts.SeverityMode {
	case ModeStrict:
		s.WriteString("Severity mode: strict. When in doubt between two severities, report the higher one.\n\n")
	case ModeLenient:
		s.WriteString("Severity mode: lenient. Report only issues you are confident about; prefer the lower severity when in doubt.\n\n")
	default:
		s.WriteString("Severity mode: balanced. Rate severity by real user impact.\n\n")
	}

	if t := strings.TrimSpace(opts.CustomInstructions); t != "" {
		s.WriteString("Additional auditor instructions: " + t + "\n\n")
	}

	s.WriteString("Reference data:\n")
	s.WriteString(refdata.Digest())
	s.WriteString("\nEvery issue must include: title, description, wcag_reference, severity (Critical|Serious|Moderate|Minor), ease_of_fix (Easy|Moderate|Hard), suggested_fix, timestamp (for time-based media), and axe_rule_id / apg_pattern when one applies.")

	return s.String()
}

func mediaContext(media []models.MediaItem) string {
	if len(media) == 0 {
		return ""
	}
	counts := map[models.MediaKind]int{}
	for _, m := range media {
		counts[m.Kind]++
	}
	var parts []string
	for _, k := range []models.MediaKind{models.KindVideo, models.KindAudio, models.KindImage, models.KindPDF} {
		if n := counts[k]; n > 0 {
			label := string(k)
			if n > 1 {
				label += "s"
			}
			parts = append(parts, fmt.Sprintf("%d %s", n, label))
		}
	}
	return strings.Join(parts, ", ")
}

func focusAreaText(areas []string) string {
	var out []string
	for _, a := range areas {
		key := strings.ToLower(strings.TrimSpace(a))
		if label, ok := focusAreaLabels[key]; ok {
			out = append(out, label)
		} else if key != "" {
			out = append(out, key)
		}
	}
	return strings.Join(out, "; ")
}

// Package refdata holds the static WCAG 2.2, axe-core and ARIA APG reference
// tables embedded into analysis prompts and used to resolve issue metadata.
// Lookups are case-insensitive and never fail: unknown ids fall back to the
// standard's index page.
package refdata

import "strings"

type WCAGCriterion struct {
	Number  string
	Slug    string
	Name    string
	Level   string // A, AA, AAA
	Version string // WCAG version that introduced the criterion
}

const wcagBaseURL = "https://www.w3.org/WAI/WCAG22/Understanding/"

// URL returns the Understanding document for the criterion.
func (c WCAGCriterion) URL() string {
	if c.Slug == "" {
		return wcagBaseURL
	}
	return wcagBaseURL + c.Slug
}

var wcagCriteria = map[string]WCAGCriterion{
	"1.1.1": {"1.1.1", "non-text-content", "Non-text Content", "A", "2.0"},
	"1.2.1": {"1.2.1", "audio-only-and-video-only-prerecorded", "Audio-only and Video-only (Prerecorded)", "A", "2.0"},
	"1.2.2": {"1.2.2", "captions-prerecorded", "Captions (Prerecorded)", "A", "2.0"},
	"1.2.3": {"1.2.3", "audio-description-or-media-alternative-prerecorded", "Audio Description or Media Alternative (Prerecorded)", "A", "2.0"},
	"1.2.5": {"1.2.5", "audio-description-prerecorded", "Audio Description (Prerecorded)", "AA", "2.0"},
	"1.3.1": {"1.3.1", "info-and-relationships", "Info and Relationships", "A", "2.0"},
	"1.3.2": {"1.3.2", "meaningful-sequence", "Meaningful Sequence", "A", "2.0"},
	"1.3.4": {"1.3.4", "orientation", "Orientation", "AA", "2.1"},
	"1.3.5": {"1.3.5", "identify-input-purpose", "Identify Input Purpose", "AA", "2.1"},
	"1.4.1": {"1.4.1", "use-of-color", "Use of Color", "A", "2.0"},
	"1.4.2": {"1.4.2", "audio-control", "Audio Control", "A", "2.0"},
	"1.4.3": {"1.4.3", "contrast-minimum", "Contrast (Minimum)", "AA", "2.0"},
	"1.4.4": {"1.4.4", "resize-text", "Resize Text", "AA", "2.0"},
	"1.4.10": {"1.4.10", "reflow", "Reflow", "AA", "2.1"},
	"1.4.11": {"1.4.11", "non-text-contrast", "Non-text Contrast", "AA", "2.1"},
	"1.4.12": {"1.4.12", "text-spacing", "Text Spacing", "AA", "2.1"},
	"1.4.13": {"1.4.13", "content-on-hover-or-focus", "Content on Hover or Focus", "AA", "2.1"},
	"2.1.1": {"2.1.1", "keyboard", "Keyboard", "A", "2.0"},
	"2.1.2": {"2.1.2", "no-keyboard-trap", "No Keyboard Trap", "A", "2.0"},
	"2.1.4": {"2.1.4", "character-key-shortcuts", "Character Key Shortcuts", "A", "2.1"},
	"2.2.1": {"2.2.1", "timing-adjustable", "Timing Adjustable", "A", "2.0"},
	"2.2.2": {"2.2.2", "pause-stop-hide", "Pause, Stop, Hide", "A", "2.0"},
	"2.4.1": {"2.4.1", "bypass-blocks", "Bypass Blocks", "A", "2.0"},
	"2.4.2": {"2.4.2", "page-titled", "Page Titled", "A", "2.0"},
	"2.4.3": {"2.4.3", "focus-order", "Focus Order", "A", "2.0"},
	"2.4.4": {"2.4.4", "link-purpose-in-context", "Link Purpose (In Context)", "A", "2.0"},
	"2.4.6": {"2.4.6", "headings-and-labels", "Headings and Labels", "AA", "2.0"},
	"2.4.7": {"2.4.7", "focus-visible", "Focus Visible", "AA", "2.0"},
	"2.4.11": {"2.4.11", "focus-not-obscured-minimum", "Focus Not Obscured (Minimum)", "AA", "2.2"},
	"2.5.1": {"2.5.1", "pointer-gestures", "Pointer Gestures", "A", "2.1"},
	"2.5.3": {"2.5.3", "label-in-name", "Label in Name", "A", "2.1"},
	"2.5.7": {"2.5.7", "dragging-movements", "Dragging Movements", "AA", "2.2"},
	"2.5.8": {"2.5.8", "target-size-minimum", "Target Size (Minimum)", "AA", "2.2"},
	"3.1.1": {"3.1.1", "language-of-page", "Language of Page", "A", "2.0"},
	"3.2.1": {"3.2.1", "on-focus", "On Focus", "A", "2.0"},
	"3.2.2": {"3.2.2", "on-input", "On Input", "A", "2.0"},
	"3.2.6": {"3.2.6", "consistent-help", "Consistent Help", "A", "2.2"},
	"3.3.1": {"3.3.1", "error-identification", "Error Identification", "A", "2.0"},
	"3.3.2": {"3.3.2", "labels-or-instructions", "Labels or Instructions", "A", "2.0"},
	"3.3.3": {"3.3.3", "error-suggestion", "Error Suggestion", "AA", "2.0"},
	"3.3.7": {"3.3.7", "redundant-entry", "Redundant Entry", "A", "2.2"},
	"3.3.8": {"3.3.8", "accessible-authentication-minimum", "Accessible Authentication (Minimum)", "AA", "2.2"},
	"4.1.2": {"4.1.2", "name-role-value", "Name, Role, Value", "A", "2.0"},
	"4.1.3": {"4.1.3", "status-messages", "Status Messages", "AA", "2.1"},
}

// LookupWCAG resolves a success-criterion number like "1.4.3". The input may
// carry surrounding text ("WCAG 1.4.3 Contrast"); only the number is matched.
func LookupWCAG(ref string) (WCAGCriterion, bool) {
	c, ok := wcagCriteria[extractWCAGNumber(ref)]
	return c, ok
}

// WCAGURL never fails; unknown references get the Understanding index.
func WCAGURL(ref string) string {
	if c, ok := LookupWCAG(ref); ok {
		return c.URL()
	}
	return wcagBaseURL
}

func extractWCAGNumber(ref string) string {
	for _, f := range strings.Fields(strings.ToLower(strings.TrimSpace(ref))) {
		f = strings.Trim(f, "(),;:")
		if isCriterionNumber(f) {
			return f
		}
	}
	return strings.ToLower(strings.TrimSpace(ref))
}

func isCriterionNumber(s string) bool {
	dots := 0
	for _, r := range s {
		switch {
		case r == '.':
			dots++
		case r < '0' || r > '9':
			return false
		}
	}
	return dots == 2 && len(s) >= 5
}

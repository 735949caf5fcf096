package models

import "strings"

type Severity string

const (
	SeverityCritical Severity = "Critical"
	SeveritySerious  Severity = "Serious"
	SeverityModerate Severity = "Moderate"
	SeverityMinor    Severity = "Minor"
)

func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SeverityCritical, true
	case "serious":
		return SeveritySerious, true
	case "moderate":
		return SeverityModerate, true
	case "minor":
		return SeverityMinor, true
	}
	return "", false
}

type EaseOfFix string

const (
	FixEasy     EaseOfFix = "Easy"
	FixModerate EaseOfFix = "Moderate"
	FixHard     EaseOfFix = "Hard"
)

func ParseEaseOfFix(s string) (EaseOfFix, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return FixEasy, true
	case "moderate":
		return FixModerate, true
	case "hard":
		return FixHard, true
	}
	return "", false
}

type IssueStatus string

const (
	StatusOpen     IssueStatus = "Open"
	StatusTriaged  IssueStatus = "Triaged"
	StatusResolved IssueStatus = "Resolved"
)

// ImpactSource records which authority decided an issue's severity.
// Precedence: apg-pattern-heuristic > axe-core > wcag-heuristic.
type ImpactSource string

const (
	ImpactSourceAPG  ImpactSource = "apg-pattern-heuristic"
	ImpactSourceAxe  ImpactSource = "axe-core"
	ImpactSourceWCAG ImpactSource = "wcag-heuristic"
)

// Issue is one accessibility finding as reported by the model, post-processed
// with video attribution and severity source stamping.
type Issue struct {
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	WCAGReference string       `json:"wcag_reference"`
	AxeRuleID     string       `json:"axe_rule_id,omitempty"`
	APGPattern    string       `json:"apg_pattern,omitempty"`
	Severity      Severity     `json:"severity"`
	EaseOfFix     EaseOfFix    `json:"ease_of_fix"`
	SuggestedFix  string       `json:"suggested_fix"`
	AltText       string       `json:"alt_text,omitempty"`
	Timestamp     string       `json:"timestamp,omitempty"`
	Status        IssueStatus  `json:"status,omitempty"`
	Disclaimer    string       `json:"disclaimer,omitempty"`
	VideoIndex    *int         `json:"video_index,omitempty"`
	ImpactSource  ImpactSource `json:"impact_source,omitempty"`

	// Priority and PriorityTier are derived on aggregation, never stored.
	Priority     float64 `json:"priority,omitempty"`
	PriorityTier string  `json:"priority_tier,omitempty"`
}

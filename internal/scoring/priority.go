// Package scoring derives a fix-priority score from an issue's severity and
// ease of fix. Scores are recomputed on every read rather than stored, so they
// stay consistent after a user edits either field.
package scoring

import (
	"github.com/sirupsen/logrus"

	"github.com/auditlens/auditlens/internal/models"
)

type Tier string

const (
	TierP0 Tier = "P0"
	TierP1 Tier = "P1"
	TierP2 Tier = "P2"
	TierP3 Tier = "P3"
)

func severityWeight(s models.Severity) float64 {
	switch s {
	case models.SeverityCritical:
		return 4
	case models.SeveritySerious:
		return 3
	case models.SeverityModerate:
		return 2
	case models.SeverityMinor:
		return 1
	default:
		logrus.WithField("severity", s).Warn("unrecognized severity, defaulting to Moderate weight")
		return 2
	}
}

func effortWeight(e models.EaseOfFix) float64 {
	switch e {
	case models.FixEasy:
		return 1
	case models.FixModerate:
		return 2
	case models.FixHard:
		return 3
	default:
		logrus.WithField("ease_of_fix", e).Warn("unrecognized ease of fix, defaulting to Moderate weight")
		return 2
	}
}

// Priority is severity_weight² / effort_weight.
func Priority(s models.Severity, e models.EaseOfFix) float64 {
	w := severityWeight(s)
	return w * w / effortWeight(e)
}

func TierFor(score float64) Tier {
	switch {
	case score >= 10:
		return TierP0
	case score >= 6:
		return TierP1
	case score >= 3:
		return TierP2
	default:
		return TierP3
	}
}

// Rank is the convenience form used by report rendering.
func Rank(issue models.Issue) (float64, Tier) {
	score := Priority(issue.Severity, issue.EaseOfFix)
	return score, TierFor(score)
}

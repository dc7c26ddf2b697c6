package consistency

import "math"

// penaltyCeilingPerScene is the penalty a single scene can absorb before the
// score bottoms out.
const penaltyCeilingPerScene = 20

func computeStatistics(issues []Issue) Statistics {
	stats := Statistics{
		TotalIssues: len(issues),
		ByType:      make(map[IssueType]int, len(IssueTypes)),
	}
	for _, t := range IssueTypes {
		stats.ByType[t] = 0
	}
	for _, is := range issues {
		switch is.Severity {
		case SeverityError:
			stats.Errors++
		case SeverityWarning:
			stats.Warnings++
		default:
			stats.Suggestions++
		}
		stats.ByType[is.Type]++
	}
	return stats
}

// computeScore maps the severity-weighted penalty onto 0..100, scaled by the
// number of scenes.
func computeScore(issues []Issue, scenes int) int {
	if scenes == 0 || len(issues) == 0 {
		return 100
	}
	penalty := 0
	for _, is := range issues {
		penalty += is.Severity.Penalty()
	}
	ratio := float64(penalty) / float64(scenes*penaltyCeilingPerScene)
	return int(math.Round(math.Max(0, 100-100*ratio)))
}

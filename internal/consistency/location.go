package consistency

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dotcommander/continuity/internal/domain/manuscript"
	"github.com/dotcommander/continuity/internal/textutil"
)

func detectLocationIssues(a *analysis) []Issue {
	var issues []Issue
	for _, l := range a.locations {
		if is, ok := descriptionDrift(a, l); ok {
			issues = append(issues, is)
		}
	}
	issues = append(issues, travelTimes(a)...)
	return issues
}

func descriptionPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) +
		`\s+(?:is|was|seemed|looked|stood|lay)\s+([^,;:]+)`)
}

// normalizePredicate reduces "a dark, damp cave." to "dark damp cave"
func normalizePredicate(p string) string {
	words := textutil.FoldedWords(p)
	for len(words) > 0 && (words[0] == "a" || words[0] == "an" || words[0] == "the") {
		words = words[1:]
	}
	return strings.Join(words, " ")
}

// descriptionDrift flags a location described differently across scenes.
// Repeating a description in the same words is never flagged.
func descriptionDrift(a *analysis, l manuscript.Location) (Issue, bool) {
	if strings.TrimSpace(l.Name) == "" {
		return Issue{}, false
	}
	re := descriptionPattern(strings.TrimSpace(l.Name))

	var scenes []manuscript.Scene
	var excerpts []string
	distinct := make(map[string]bool)
	for _, s := range a.narrative {
		found := ""
		for _, sentence := range textutil.SentencesMentioning(s.Content, l.Name) {
			m := re.FindStringSubmatch(sentence)
			if m == nil {
				continue
			}
			if pred := normalizePredicate(m[1]); pred != "" {
				distinct[pred] = true
				if found == "" {
					found = m[0]
				}
			}
		}
		if found != "" {
			scenes = append(scenes, s)
			excerpts = append(excerpts, found)
		}
	}
	if len(scenes) < 2 || len(distinct) < 2 {
		return Issue{}, false
	}

	items := []AffectedItem{locationRef(l)}
	for i, s := range scenes {
		items = append(items, sceneRefAt(s, excerpts[i]))
	}
	preds := sortedKeys(distinct)
	is := newIssue(TypeLocation, SeverityWarning, CategoryDescription,
		fmt.Sprintf("%s is described inconsistently", l.Name),
		fmt.Sprintf("%s has %d different descriptions across %d scenes: %s.",
			l.Name, len(preds), len(scenes), strings.Join(quoteAll(preds), ", ")),
		items...)
	is.Suggestions = []string{
		fmt.Sprintf("Align the descriptions of %s", l.Name),
		"Explain the change in the story",
	}
	return is, true
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}

// travelTimes compares the in-story time between consecutive scenes in
// different locations with the time needed to travel between them.
func travelTimes(a *analysis) []Issue {
	var issues []Issue
	for i := 1; i < len(a.story); i++ {
		prev, next := a.story[i-1], a.story[i]
		from, to := a.sceneLocation(prev), a.sceneLocation(next)
		if from == "" || to == "" || strings.EqualFold(from, to) {
			continue
		}
		hours, ok := textutil.ElapsedHours(a.sceneTime(prev), a.sceneTime(next))
		if !ok || hours < 0 || a.thresholds.MaxSpeedKMH <= 0 {
			continue
		}
		km := a.thresholds.distance(from, to)
		needed := km / a.thresholds.MaxSpeedKMH
		if hours >= needed {
			continue
		}

		items := []AffectedItem{sceneRefAt(prev, from), sceneRefAt(next, to)}
		for _, name := range []string{from, to} {
			if l, ok := a.locationByName(name); ok {
				items = append(items, locationRef(l))
			}
		}
		is := newIssue(TypeLocation, SeverityWarning, CategoryTravelTime,
			fmt.Sprintf("Not enough time to travel from %s to %s", from, to),
			fmt.Sprintf("%.0f km at %.0f km/h takes %.1f hour(s), but only %.1f pass between %q and %q.",
				km, a.thresholds.MaxSpeedKMH, needed, hours, prev.Title, next.Title),
			items...)
		is.Suggestions = []string{
			"Add more in-story time between the scenes",
			"Give the characters a faster means of travel",
		}
		issues = append(issues, is)
	}
	return issues
}

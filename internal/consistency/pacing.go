package consistency

import (
	"fmt"
	"strings"

	"github.com/dotcommander/continuity/internal/domain/manuscript"
	"github.com/dotcommander/continuity/internal/textutil"
)

// wordCount prefers the stored count and falls back to counting the text
func wordCount(s manuscript.Scene) int {
	if s.WordCount > 0 {
		return s.WordCount
	}
	return textutil.CountWords(s.Content)
}

func detectPacingIssues(a *analysis) []Issue {
	var issues []Issue
	for _, s := range a.narrative {
		n := wordCount(s)
		switch {
		case n > a.thresholds.LongSceneWords:
			is := newIssue(TypeContinuity, SeveritySuggestion, CategoryPacing,
				fmt.Sprintf("Scene %q may be too long", s.Title),
				fmt.Sprintf("%q has %d words; scenes over %d words can drag.", s.Title, n, a.thresholds.LongSceneWords),
				sceneRef(s))
			is.Suggestions = []string{"Split the scene", "Tighten the prose"}
			issues = append(issues, is)
		case n > 0 && n < a.thresholds.ShortSceneWords && strings.TrimSpace(s.Content) != "":
			is := newIssue(TypeContinuity, SeveritySuggestion, CategoryPacing,
				fmt.Sprintf("Scene %q may be too short", s.Title),
				fmt.Sprintf("%q has only %d words; scenes under %d words can feel rushed.", s.Title, n, a.thresholds.ShortSceneWords),
				sceneRef(s))
			is.Suggestions = []string{"Expand the scene", "Merge it with a neighbouring scene"}
			issues = append(issues, is)
		}
	}
	return issues
}

package consistency

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/dotcommander/continuity/internal/domain/manuscript"
	"github.com/dotcommander/continuity/internal/textutil"
)

// minTitleRunes keeps short, common titles ("Hi", "War") out of chronology
// cross-references.
const minTitleRunes = 4

var agePattern = regexp.MustCompile(`\b(\p{Lu}\p{Ll}+)\s+(?:is|was|turned)\s+(\d{1,3})\s+years?\s+old\b`)

// detectTimelineIssues is a no-op without a timeline
func detectTimelineIssues(a *analysis) []Issue {
	if a.timeline == nil {
		return nil
	}
	var issues []Issue
	issues = append(issues, chronologyReferences(a)...)
	issues = append(issues, seasonShifts(a)...)
	issues = append(issues, ageDrift(a)...)
	issues = append(issues, anachronisms(a)...)
	return issues
}

// chronologyReferences flags a scene that names a scene which happens later
// in-world, by its exact title.
func chronologyReferences(a *analysis) []Issue {
	var issues []Issue
	for _, s := range a.story {
		for _, later := range a.story {
			if later.ID == s.ID || !a.laterInStory(s, later) {
				continue
			}
			if utf8.RuneCountInString(later.Title) < minTitleRunes || !textutil.ContainsPhrase(s.Content, later.Title) {
				continue
			}
			is := newIssue(TypeTimeline, SeverityWarning, CategoryChronology,
				fmt.Sprintf("%q refers to a later event", s.Title),
				fmt.Sprintf("Scene %q mentions %q, which happens later in story order.", s.Title, later.Title),
				sceneRefAt(s, later.Title), sceneRef(later))
			is.Suggestions = []string{
				"Reorder the timeline entries",
				fmt.Sprintf("Frame the reference to %q as foreshadowing", later.Title),
			}
			issues = append(issues, is)
		}
	}
	return issues
}

func (a *analysis) seasonsOf(content string) []string {
	var names []string
	for _, set := range a.rules.Seasons {
		if len(textutil.ContainsAny(content, set.Terms)) > 0 {
			names = append(names, set.Name)
		}
	}
	return names
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// seasonShifts flags consecutive scenes whose season vocabularies disagree
// while too little in-story time separates them.
func seasonShifts(a *analysis) []Issue {
	var issues []Issue
	var prev manuscript.Scene
	var prevSeasons []string
	for i, s := range a.story {
		seasons := a.seasonsOf(s.Content)
		if i > 0 && len(prevSeasons) > 0 && len(seasons) > 0 && !overlaps(prevSeasons, seasons) {
			days := a.elapsedDays(prev, s)
			if days < a.thresholds.SeasonWindowDays {
				is := newIssue(TypeTimeline, SeverityWarning, CategorySeason,
					"Season changes too quickly",
					fmt.Sprintf("%q reads as %s but %q, %.0f day(s) later, reads as %s.",
						prev.Title, prevSeasons[0], s.Title, days, seasons[0]),
					sceneRef(prev), sceneRef(s))
				is.Suggestions = []string{
					"Add more in-story time between the scenes",
					"Make the seasonal vocabulary agree",
				}
				issues = append(issues, is)
			}
		}
		prev, prevSeasons = s, seasons
	}
	return issues
}

type ageMention struct {
	scene manuscript.Scene
	age   int
}

// ageDrift projects each character's first stated age forward through story
// time and flags later statements that disagree by more than the tolerance.
// Only subjects naming a declared character (full or first name) count.
func ageDrift(a *analysis) []Issue {
	first := make(map[string]ageMention)
	var issues []Issue
	for _, s := range a.story {
		for _, m := range agePattern.FindAllStringSubmatch(s.Content, -1) {
			c, ok := a.characterByName(m[1])
			if !ok {
				continue
			}
			age, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			name := c.Name
			base, seen := first[c.ID]
			if !seen {
				first[c.ID] = ageMention{scene: s, age: age}
				continue
			}
			days := a.elapsedDays(base.scene, s)
			expected := textutil.ProjectAge(base.age, days)
			if math.Abs(float64(age)-expected) <= a.thresholds.AgeToleranceYears {
				continue
			}
			corrected := int(math.Round(expected))

			items := []AffectedItem{sceneRef(base.scene)}
			if base.scene.ID != s.ID {
				items = append(items, sceneRefAt(s, m[0]))
			} else {
				items[0] = sceneRefAt(s, m[0])
			}
			items = append(items, characterRef(c))
			is := newIssue(TypeTimeline, SeverityError, CategoryAge,
				fmt.Sprintf("Age of %s is inconsistent", name),
				fmt.Sprintf("%s is %d in %q; after %.0f day(s) %s should be about %d, but %q says %d.",
					name, base.age, base.scene.Title, days, name, corrected, s.Title, age),
				items...)
			is.Suggestions = []string{
				fmt.Sprintf("Change age to %d", corrected),
				"Adjust the in-story dates between the scenes",
			}
			is.AutoFixAvailable = true
			issues = append(issues, is)
		}
	}
	return issues
}

// anachronisms uses the first year found in story order as the setting year
func anachronisms(a *analysis) []Issue {
	setting := 0
	for _, s := range a.story {
		if y, ok := textutil.FirstYear(s.Content); ok {
			setting, _ = strconv.Atoi(y)
			break
		}
	}
	if setting == 0 {
		return nil
	}

	var issues []Issue
	for _, s := range a.story {
		for _, tech := range a.rules.Technologies {
			if tech.Year <= setting || !textutil.ContainsWord(s.Content, tech.Term) {
				continue
			}
			is := newIssue(TypeTimeline, SeverityError, CategoryAnachronism,
				fmt.Sprintf("Anachronism: %s", tech.Term),
				fmt.Sprintf("%q mentions %s, which did not exist until %d; the story is set in %d.",
					s.Title, tech.Term, tech.Year, setting),
				sceneRefAt(s, tech.Term))
			is.Suggestions = []string{
				fmt.Sprintf("Replace %s with a period-appropriate equivalent", tech.Term),
			}
			issues = append(issues, is)
		}
	}
	return issues
}

package consistency

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/dotcommander/continuity/internal/domain/manuscript"
	"github.com/dotcommander/continuity/internal/textutil"
)

func detectDialogueIssues(a *analysis) []Issue {
	var issues []Issue
	issues = append(issues, voiceDrift(a)...)
	for _, c := range a.characters {
		p := a.profile(c.ID)
		if p == nil || len(p.Dialogue.Lines) == 0 {
			continue
		}
		issues = append(issues, dialectMixing(a, c, p)...)
		issues = append(issues, knowledgeLeaks(a, c, p)...)
	}
	return issues
}

// voiceDrift compares average sentence length between adjacent scenes in
// reading order. Empty scenes are skipped.
func voiceDrift(a *analysis) []Issue {
	var issues []Issue
	var prev manuscript.Scene
	prevAvg, havePrev := 0.0, false
	for _, s := range a.narrative {
		avg := textutil.AverageSentenceLength(s.Content)
		if avg == 0 {
			continue
		}
		if havePrev {
			if diff := math.Abs(avg - prevAvg); diff > a.thresholds.VoiceDriftWords {
				is := newIssue(TypeDialogue, SeveritySuggestion, CategoryVoice,
					"Narrative voice shifts between scenes",
					fmt.Sprintf("Average sentence length goes from %.1f words in %q to %.1f in %q.",
						prevAvg, prev.Title, avg, s.Title),
					sceneRef(prev), sceneRef(s))
				is.Suggestions = []string{"Check that the change in rhythm is intentional"}
				issues = append(issues, is)
			}
		}
		prev, prevAvg, havePrev = s, avg, true
	}
	return issues
}

// dialectMixing flags a speaker whose lines draw on more than one dialect set
func dialectMixing(a *analysis, c manuscript.Character, p *CharacterProfile) []Issue {
	var dialects []string
	var markers []string
	sceneSet := make(map[string]bool)
	for _, set := range a.rules.Dialects {
		hit := false
		for _, line := range p.Dialogue.Lines {
			found := textutil.ContainsAny(line.Text, set.Terms)
			if len(found) == 0 {
				continue
			}
			if !hit {
				markers = append(markers, found[0])
			}
			hit = true
			sceneSet[line.SceneID] = true
		}
		if hit {
			dialects = append(dialects, set.Name)
		}
	}
	if len(dialects) < 2 {
		return nil
	}

	items := []AffectedItem{characterRef(c)}
	for _, s := range a.narrative {
		if sceneSet[s.ID] {
			items = append(items, sceneRef(s))
		}
	}
	is := newIssue(TypeDialogue, SeverityWarning, CategoryDialect,
		fmt.Sprintf("%s mixes dialects", c.Name),
		fmt.Sprintf("%s uses %s vocabulary (%s).", c.Name, strings.Join(dialects, " and "), strings.Join(quoteAll(markers), ", ")),
		items...)
	is.Suggestions = []string{fmt.Sprintf("Pick one dialect for %s", c.Name)}
	return []Issue{is}
}

// knowledgeLeaks flags a line of dialogue naming an event that has not
// happened yet in-world.
func knowledgeLeaks(a *analysis, c manuscript.Character, p *CharacterProfile) []Issue {
	scenes := a.scenesByID()
	var issues []Issue
	for _, line := range p.Dialogue.Lines {
		spoken := scenes[line.SceneID]
		for _, later := range a.story {
			if later.ID == spoken.ID || !a.laterInStory(spoken, later) {
				continue
			}
			if utf8.RuneCountInString(later.Title) < minTitleRunes || !textutil.ContainsPhrase(line.Text, later.Title) {
				continue
			}
			is := newIssue(TypeDialogue, SeverityError, CategoryKnowledge,
				fmt.Sprintf("%s knows about %q too early", c.Name, later.Title),
				fmt.Sprintf("In %q, %s mentions %q, which has not happened yet.", spoken.Title, c.Name, later.Title),
				characterRef(c), sceneRefAt(spoken, later.Title), sceneRef(later))
			is.Suggestions = []string{
				"Remove the reference from the dialogue",
				fmt.Sprintf("Move %q earlier in the timeline", later.Title),
			}
			issues = append(issues, is)
		}
	}
	return issues
}

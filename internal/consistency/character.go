package consistency

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dotcommander/continuity/internal/domain/manuscript"
	"github.com/dotcommander/continuity/internal/textutil"
)

const longWordRunes = 8

func detectCharacterIssues(a *analysis) []Issue {
	var issues []Issue
	for _, c := range a.characters {
		p := a.profile(c.ID)
		if p == nil {
			continue
		}
		issues = append(issues, personalityShifts(a, c, p)...)
		issues = append(issues, impossibleAppearances(a, c, p)...)
		issues = append(issues, unresolvedGoals(a, c, p)...)
		issues = append(issues, vocabularyMismatch(a, c, p)...)
	}
	return issues
}

// personalityShifts flags a trait pair whose opposite poles describe the
// character in different scenes. Scenes showing both poles are ambiguous and
// ignored.
func personalityShifts(a *analysis, c manuscript.Character, p *CharacterProfile) []Issue {
	scenes := a.scenesByID()
	var issues []Issue
	for _, pair := range a.rules.PersonalityPairs {
		var posScenes, negScenes []manuscript.Scene
		var posTerm, negTerm string
		for _, app := range p.Appearances {
			s := scenes[app.SceneID]
			text := strings.Join(mentions(s.Content, c), " ")
			pos := textutil.ContainsAny(text, pair.Positive)
			neg := textutil.ContainsAny(text, pair.Negative)
			switch {
			case len(pos) > 0 && len(neg) == 0:
				posScenes = append(posScenes, s)
				if posTerm == "" {
					posTerm = pos[0]
				}
			case len(neg) > 0 && len(pos) == 0:
				negScenes = append(negScenes, s)
				if negTerm == "" {
					negTerm = neg[0]
				}
			}
		}
		if len(posScenes) == 0 || len(negScenes) == 0 {
			continue
		}

		items := []AffectedItem{characterRef(c)}
		for _, s := range posScenes {
			items = append(items, sceneRefAt(s, posTerm))
		}
		for _, s := range negScenes {
			items = append(items, sceneRefAt(s, negTerm))
		}
		is := newIssue(TypeCharacter, SeverityWarning, CategoryPersonality,
			fmt.Sprintf("%s shifts in %s", c.Name, pair.Name),
			fmt.Sprintf("%s is described as %q in %d scene(s) and as %q in %d other scene(s).",
				c.Name, posTerm, len(posScenes), negTerm, len(negScenes)),
			items...)
		is.Suggestions = []string{
			fmt.Sprintf("Show what changes %s between these scenes, or align the descriptions", c.Name),
		}
		issues = append(issues, is)
	}
	return issues
}

// impossibleAppearances flags chronologically adjacent appearances in
// different places closer together than the travel window.
func impossibleAppearances(a *analysis, c manuscript.Character, p *CharacterProfile) []Issue {
	var timed []Appearance
	for _, app := range p.Appearances {
		if app.Time != nil && app.Location != "" {
			timed = append(timed, app)
		}
	}
	sort.SliceStable(timed, func(i, j int) bool {
		return timed[i].Time.Before(*timed[j].Time)
	})

	scenes := a.scenesByID()
	var issues []Issue
	for i := 1; i < len(timed); i++ {
		prev, next := timed[i-1], timed[i]
		if strings.EqualFold(prev.Location, next.Location) {
			continue
		}
		gap := next.Time.Sub(*prev.Time)
		if gap >= a.thresholds.TravelWindow {
			continue
		}
		from, to := scenes[prev.SceneID], scenes[next.SceneID]
		is := newIssue(TypeCharacter, SeverityError, CategoryTravel,
			fmt.Sprintf("%s cannot be in two places at once", c.Name),
			fmt.Sprintf("%s is at %s in %q and at %s in %q only %s later.",
				c.Name, prev.Location, from.Title, next.Location, to.Title, formatGap(gap)),
			characterRef(c), sceneRefAt(from, prev.Location), sceneRefAt(to, next.Location))
		is.Suggestions = []string{
			"Add travel time between the scenes",
			fmt.Sprintf("Move %s out of one of the scenes", c.Name),
		}
		issues = append(issues, is)
	}
	return issues
}

func formatGap(d time.Duration) string {
	if d < time.Minute {
		return "moments"
	}
	return fmt.Sprintf("%d minutes", int(d.Minutes()))
}

// unresolvedGoals suggests following up on goals no scene with the
// character ever mentions.
func unresolvedGoals(a *analysis, c manuscript.Character, p *CharacterProfile) []Issue {
	scenes := a.scenesByID()
	var issues []Issue
	for _, goal := range c.Goals {
		goal = strings.TrimSpace(goal)
		keywords := goalKeywords(goal, a.rules.GoalStopWords)
		if goal == "" || len(keywords) == 0 {
			continue
		}
		mentioned := false
		for _, app := range p.Appearances {
			if mentionsGoal(scenes[app.SceneID].Content, goal, keywords) {
				mentioned = true
				break
			}
		}
		if mentioned {
			continue
		}
		is := newIssue(TypeCharacter, SeveritySuggestion, CategoryGoal,
			fmt.Sprintf("Goal of %s never addressed", c.Name),
			fmt.Sprintf("%s wants to %q, but no scene featuring %s mentions it.", c.Name, goal, c.Name),
			characterRef(c))
		is.Suggestions = []string{fmt.Sprintf("Add a scene where %s pursues: %s", c.Name, goal)}
		issues = append(issues, is)
	}
	return issues
}

func goalKeywords(goal string, stop []string) []string {
	var out []string
	for _, w := range textutil.FoldedWords(goal) {
		if utf8.RuneCountInString(w) < 4 || inFoldedSet(stop, w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// mentionsGoal accepts the literal goal phrase, or every keyword as a word
// prefix ("rescue" matches "rescued").
func mentionsGoal(content, goal string, keywords []string) bool {
	if textutil.ContainsWord(content, goal) {
		return true
	}
	words := textutil.FoldedWords(content)
	for _, k := range keywords {
		if !hasWordWithPrefix(words, k) {
			return false
		}
	}
	return true
}

func hasWordWithPrefix(words []string, prefix string) bool {
	for _, w := range words {
		if strings.HasPrefix(w, prefix) {
			return true
		}
	}
	return false
}

// vocabularyMismatch flags sophisticated dialogue from a character with a
// low education attribute.
func vocabularyMismatch(a *analysis, c manuscript.Character, p *CharacterProfile) []Issue {
	level, ok := c.Attribute("education")
	if !ok || !a.rules.lowEducation(level) {
		return nil
	}
	if len(p.Dialogue.Words) < a.thresholds.MinComplexityWords {
		return nil
	}
	score := VocabularyComplexity(p.Dialogue.Words)
	if score <= a.thresholds.ComplexityThreshold {
		return nil
	}

	items := []AffectedItem{characterRef(c)}
	seen := make(map[string]bool)
	scenes := a.scenesByID()
	for _, line := range p.Dialogue.Lines {
		if seen[line.SceneID] {
			continue
		}
		seen[line.SceneID] = true
		items = append(items, sceneRef(scenes[line.SceneID]))
	}
	is := newIssue(TypeCharacter, SeverityWarning, CategoryVocabulary,
		fmt.Sprintf("Dialogue of %s is unusually complex", c.Name),
		fmt.Sprintf("%s has %s education but speaks with a vocabulary complexity of %.2f.", c.Name, level, score),
		items...)
	is.Suggestions = []string{fmt.Sprintf("Simplify the vocabulary in %s's dialogue", c.Name)}
	return []Issue{is}
}

// VocabularyComplexity scores a word list between 0 and 1 from the mean word
// length and the share of words longer than eight characters.
func VocabularyComplexity(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	totalRunes, long := 0, 0
	for _, w := range words {
		n := utf8.RuneCountInString(w)
		totalRunes += n
		if n > longWordRunes {
			long++
		}
	}
	avg := float64(totalRunes) / float64(len(words))
	longShare := float64(long) / float64(len(words))
	return 0.6*min(avg/10, 1) + 0.4*min(longShare/0.4, 1)
}

// mentions returns, in order, the sentences naming the character by full or
// first name.
func mentions(content string, c manuscript.Character) []string {
	fn := firstName(c.Name)
	var out []string
	for _, s := range textutil.Sentences(content) {
		if textutil.ContainsWord(s, c.Name) || textutil.ContainsWord(s, fn) {
			out = append(out, s)
		}
	}
	return out
}

func (a *analysis) scenesByID() map[string]manuscript.Scene {
	return a.byID
}

package consistency

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dotcommander/continuity/internal/domain/manuscript"
	"github.com/dotcommander/continuity/internal/textutil"
)

// outfitTrailers are cut from the end of a captured outfit ("cloak and")
var outfitTrailers = []string{
	"and", "or", "to", "as", "with", "that", "when", "while", "in", "on", "at", "for", "of", "from", "but",
}

func detectContinuityIssues(a *analysis) []Issue {
	var issues []Issue
	issues = append(issues, propTransitions(a)...)
	for _, c := range a.characters {
		issues = append(issues, injuryContinuity(a, c)...)
		issues = append(issues, clothingChanges(a, c)...)
	}
	return issues
}

type propMatcher struct {
	patterns []*regexp.Regexp
	rules    *Rules
}

type propEvent struct {
	item    string
	state   string
	excerpt string
}

func (m propMatcher) events(content string) []propEvent {
	var out []propEvent
	for _, re := range m.patterns {
		for _, sm := range re.FindAllStringSubmatch(content, -1) {
			state, ok := m.rules.propState(strings.ToLower(sm[2]))
			if !ok {
				continue
			}
			out = append(out, propEvent{item: strings.ToLower(sm[1]), state: state, excerpt: sm[0]})
		}
	}
	return out
}

type propSighting struct {
	scene   manuscript.Scene
	state   string
	excerpt string
}

// propTransitions follows each prop through its states in reading order
func propTransitions(a *analysis) []Issue {
	last := make(map[string]propSighting)
	var issues []Issue
	for _, s := range a.narrative {
		for _, ev := range a.props.events(s.Content) {
			prev, seen := last[ev.item]
			last[ev.item] = propSighting{scene: s, state: ev.state, excerpt: ev.excerpt}
			if !seen || !a.rules.illogical(prev.state, ev.state) {
				continue
			}
			items := []AffectedItem{sceneRefAt(prev.scene, prev.excerpt)}
			if prev.scene.ID != s.ID {
				items = append(items, sceneRefAt(s, ev.excerpt))
			}
			is := newIssue(TypeContinuity, SeverityError, CategoryProp,
				fmt.Sprintf("The %s goes from %s to %s", ev.item, prev.state, ev.state),
				fmt.Sprintf("The %s is %s in %q and then %s in %q without being %s first.",
					ev.item, prev.state, prev.scene.Title, ev.state, s.Title, PropFound),
				items...)
			is.Suggestions = []string{fmt.Sprintf("Show the %s being recovered before it is %s", ev.item, ev.state)}
			issues = append(issues, is)
		}
	}
	return issues
}

type healthEvent struct {
	scene    manuscript.Scene
	recovery bool
	term     string
}

// injuryContinuity runs a healthy/injured state machine over the sentences
// naming the character. Consecutive events of the same kind in one scene are
// one event.
func injuryContinuity(a *analysis, c manuscript.Character) []Issue {
	var events []healthEvent
	for _, s := range a.narrative {
		for _, sentence := range mentions(s.Content, c) {
			ev := healthEvent{scene: s}
			if found := textutil.ContainsAny(sentence, a.rules.RecoveryTerms); len(found) > 0 {
				ev.recovery, ev.term = true, found[0]
			} else if found := textutil.ContainsAny(sentence, a.rules.InjuryTerms); len(found) > 0 {
				ev.term = found[0]
			} else {
				continue
			}
			if n := len(events); n > 0 && events[n-1].scene.ID == s.ID && events[n-1].recovery == ev.recovery {
				continue
			}
			events = append(events, ev)
		}
	}

	var issues []Issue
	injured := false
	var since healthEvent
	for _, ev := range events {
		switch {
		case ev.recovery && !injured:
			is := newIssue(TypeContinuity, SeverityWarning, CategoryInjury,
				fmt.Sprintf("%s recovers without an injury", c.Name),
				fmt.Sprintf("%s is %s in %q, but no earlier scene injures them.", c.Name, ev.term, ev.scene.Title),
				characterRef(c), sceneRefAt(ev.scene, ev.term))
			is.Suggestions = []string{fmt.Sprintf("Establish the injury before %q", ev.scene.Title)}
			issues = append(issues, is)
		case !ev.recovery && injured:
			items := []AffectedItem{characterRef(c), sceneRefAt(since.scene, since.term)}
			if since.scene.ID != ev.scene.ID {
				items = append(items, sceneRefAt(ev.scene, ev.term))
			}
			is := newIssue(TypeContinuity, SeverityWarning, CategoryInjury,
				fmt.Sprintf("%s is injured again while already injured", c.Name),
				fmt.Sprintf("%s is %s in %q and %s again in %q with no recovery in between.",
					c.Name, since.term, since.scene.Title, ev.term, ev.scene.Title),
				items...)
			is.Suggestions = []string{
				fmt.Sprintf("Show %s recovering", c.Name),
				"Make clear this is the same injury",
			}
			issues = append(issues, is)
		}
		injured = !ev.recovery
		if injured {
			since = ev
		}
	}
	return issues
}

type clothingMatcher struct {
	re *regexp.Regexp
}

// outfitAfter returns the first outfit described at or after offset
func (m clothingMatcher) outfitAfter(sentence string, offset int) (outfit, excerpt string, ok bool) {
	for _, loc := range m.re.FindAllStringSubmatchIndex(sentence, -1) {
		if loc[0] < offset {
			continue
		}
		words := strings.Fields(strings.ToLower(strings.ReplaceAll(sentence[loc[2]:loc[3]], "-", " ")))
		for len(words) > 1 && inFoldedSet(outfitTrailers, words[len(words)-1]) {
			words = words[:len(words)-1]
		}
		if len(words) == 0 || inFoldedSet(outfitTrailers, words[0]) {
			continue
		}
		return strings.Join(words, " "), sentence[loc[0]:loc[1]], true
	}
	return "", "", false
}

// segments splits scene content on scene-break lines
func (a *analysis) segments(content string) []string {
	var out []string
	var cur []string
	for _, line := range strings.Split(content, "\n") {
		if inFoldedSet(a.rules.SceneBreaks, line) {
			out = append(out, strings.Join(cur, "\n"))
			cur = nil
			continue
		}
		cur = append(cur, line)
	}
	return append(out, strings.Join(cur, "\n"))
}

// clothingChanges flags a character whose outfit changes inside one
// unbroken stretch of a scene.
func clothingChanges(a *analysis, c manuscript.Character) []Issue {
	var issues []Issue
	for _, s := range a.narrative {
		for _, seg := range a.segments(s.Content) {
			var first, firstExcerpt string
			for _, sentence := range mentions(seg, c) {
				at := mentionOffset(sentence, c)
				outfit, excerpt, ok := a.clothing.outfitAfter(sentence, at)
				if !ok {
					continue
				}
				if first == "" {
					first, firstExcerpt = outfit, excerpt
					continue
				}
				if strings.Contains(first, outfit) || strings.Contains(outfit, first) {
					continue
				}
				is := newIssue(TypeContinuity, SeverityWarning, CategoryClothing,
					fmt.Sprintf("Outfit of %s changes mid-scene", c.Name),
					fmt.Sprintf("In %q %s is wearing %s and then %s with no scene break in between.",
						s.Title, c.Name, first, outfit),
					characterRef(c), sceneRefAt(s, firstExcerpt))
				is.Suggestions = []string{
					"Insert a scene break before the change",
					fmt.Sprintf("Show %s changing clothes", c.Name),
				}
				issues = append(issues, is)
				break
			}
		}
	}
	return issues
}

func mentionOffset(sentence string, c manuscript.Character) int {
	if i := textutil.IndexWord(sentence, c.Name); i >= 0 {
		return i
	}
	if i := textutil.IndexWord(sentence, firstName(c.Name)); i >= 0 {
		return i
	}
	return 0
}

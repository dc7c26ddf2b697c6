package consistency

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dotcommander/continuity/internal/domain/manuscript"
	"github.com/dotcommander/continuity/internal/textutil"
)

var (
	itemStatement = regexp.MustCompile(`(?i)\bthe\s+([a-z]+)\s+(?:was|is)\s+([a-z]+)\b`)
	introduction  = regexp.MustCompile(`(?i)\b(?:noticed|saw|found|discovered)\s+an?\s+([a-z]+)(?:\s+([a-z]+))?`)
)

// chekhovFillers never end a noun phrase ("a key on the table" is "key")
var chekhovFillers = []string{
	"on", "in", "at", "by", "of", "for", "with", "from", "to", "under", "near", "behind", "beside",
	"and", "or", "but", "that", "which", "who", "as", "is", "was", "had", "there", "lying",
	"the", "a", "an", "his", "her", "their", "it", "here",
}

func detectPlotIssues(a *analysis) []Issue {
	var issues []Issue
	issues = append(issues, plotHoles(a)...)
	issues = append(issues, unresolvedThreads(a)...)
	issues = append(issues, contradictions(a)...)
	issues = append(issues, chekhovsGuns(a)...)
	issues = append(issues, deusExMachina(a)...)
	return issues
}

// plotHoles flags setups when no scene anywhere in the manuscript resolves
// anything.
func plotHoles(a *analysis) []Issue {
	for _, s := range a.narrative {
		if len(textutil.ContainsAny(s.Content, a.rules.ResolutionTerms)) > 0 {
			return nil
		}
	}

	var issues []Issue
	for _, s := range a.narrative {
		terms := textutil.ContainsAny(s.Content, a.rules.SetupTerms)
		if len(terms) == 0 {
			continue
		}
		is := newIssue(TypePlot, SeverityWarning, CategoryPlotHole,
			fmt.Sprintf("Setup in %q is never resolved", s.Title),
			fmt.Sprintf("Something is %s in %q, but no scene resolves or explains it.", terms[0], s.Title),
			sceneRefAt(s, terms[0]))
		is.Suggestions = []string{"Add a scene that resolves the setup", "Remove the setup if it is not needed"}
		issues = append(issues, is)
	}
	return issues
}

func unresolvedThreads(a *analysis) []Issue {
	threads := make(map[string][]manuscript.Scene)
	for _, s := range a.narrative {
		if s.Metadata == nil || strings.TrimSpace(s.Metadata.PlotThread) == "" {
			continue
		}
		key := strings.TrimSpace(s.Metadata.PlotThread)
		threads[key] = append(threads[key], s)
	}

	var issues []Issue
	for _, thread := range sortedKeys(threads) {
		scenes := threads[thread]
		resolved := false
		for _, s := range scenes {
			if len(textutil.ContainsAny(s.Content, a.rules.ResolutionTerms)) > 0 {
				resolved = true
				break
			}
		}
		if resolved {
			continue
		}
		items := make([]AffectedItem, 0, len(scenes))
		for _, s := range scenes {
			items = append(items, sceneRef(s))
		}
		is := newIssue(TypePlot, SeveritySuggestion, CategoryThread,
			fmt.Sprintf("Plot thread %q is unresolved", thread),
			fmt.Sprintf("None of the %d scene(s) in thread %q resolves it.", len(scenes), thread),
			items...)
		is.Suggestions = []string{fmt.Sprintf("Conclude the %q thread", thread)}
		issues = append(issues, is)
	}
	return issues
}

type itemFact struct {
	scene   manuscript.Scene
	value   string
	excerpt string
}

// contradictions compares "the <item> was <value>" statements whose values
// belong to the same attribute class (a red door cannot later be blue).
func contradictions(a *analysis) []Issue {
	first := make(map[string]itemFact)
	reported := make(map[string]bool)
	var issues []Issue
	for _, s := range a.narrative {
		for _, m := range itemStatement.FindAllStringSubmatch(s.Content, -1) {
			item, value := strings.ToLower(m[1]), strings.ToLower(m[2])
			class, ok := a.rules.attributeClass(value)
			if !ok {
				continue
			}
			key := item + "|" + class
			base, seen := first[key]
			if !seen {
				first[key] = itemFact{scene: s, value: value, excerpt: m[0]}
				continue
			}
			if base.value == value || reported[key+"|"+value] {
				continue
			}
			reported[key+"|"+value] = true

			items := []AffectedItem{sceneRefAt(base.scene, base.excerpt)}
			if base.scene.ID != s.ID {
				items = append(items, sceneRefAt(s, m[0]))
			}
			is := newIssue(TypePlot, SeverityError, CategoryContradiction,
				fmt.Sprintf("The %s changes %s", item, class),
				fmt.Sprintf("The %s is %s in %q but %s in %q.", item, base.value, base.scene.Title, value, s.Title),
				items...)
			is.Suggestions = []string{
				fmt.Sprintf("Standardize to %q", base.value),
				fmt.Sprintf("Explain why the %s is now %s", item, value),
			}
			is.AutoFixAvailable = true
			issues = append(issues, is)
		}
	}
	return issues
}

// introducedNoun picks the head noun of "found a <w1> [w2]"
func introducedNoun(w1, w2 string) string {
	w1, w2 = strings.ToLower(w1), strings.ToLower(w2)
	if w2 == "" || inFoldedSet(chekhovFillers, w2) || strings.HasSuffix(w2, "ing") || strings.HasSuffix(w2, "ed") {
		return w1
	}
	return w2
}

// chekhovsGuns suggests paying off objects introduced in the opening third
// that never reappear afterwards.
func chekhovsGuns(a *analysis) []Issue {
	opening, _, openingEnd := a.thirds()
	if len(opening) == 0 {
		return nil
	}
	later := a.narrative[openingEnd:]

	seen := make(map[string]bool)
	var issues []Issue
	for _, s := range opening {
		for _, m := range introduction.FindAllStringSubmatch(s.Content, -1) {
			noun := introducedNoun(m[1], m[2])
			if seen[noun] || inFoldedSet(a.rules.ChekhovStopNouns, noun) {
				continue
			}
			seen[noun] = true
			if reappears(noun, later) {
				continue
			}
			is := newIssue(TypePlot, SeveritySuggestion, CategoryChekhov,
				fmt.Sprintf("The %s is never used", noun),
				fmt.Sprintf("A %s is introduced in %q but never appears again.", noun, s.Title),
				sceneRefAt(s, strings.TrimSpace(m[0])))
			is.Suggestions = []string{
				fmt.Sprintf("Give the %s a role later in the story", noun),
				fmt.Sprintf("Remove the %s if it does not matter", noun),
			}
			issues = append(issues, is)
		}
	}
	return issues
}

func reappears(noun string, scenes []manuscript.Scene) bool {
	for _, s := range scenes {
		if textutil.ContainsWord(s.Content, noun) || textutil.ContainsWord(s.Content, noun+"s") {
			return true
		}
	}
	return false
}

// deusExMachina reports one warning per closing scene with unearned resolution phrases
func deusExMachina(a *analysis) []Issue {
	_, closing, _ := a.thirds()
	var issues []Issue
	for _, s := range closing {
		phrases := textutil.ContainsAny(s.Content, a.rules.DeusExMachina)
		if len(phrases) == 0 {
			continue
		}
		is := newIssue(TypePlot, SeverityWarning, CategoryDeusExMachina,
			fmt.Sprintf("Possible deus ex machina in %q", s.Title),
			fmt.Sprintf("The resolution relies on %s.", strings.Join(quoteAll(phrases), ", ")),
			sceneRefAt(s, phrases[0]))
		is.Suggestions = []string{"Foreshadow the resolution in an earlier scene"}
		issues = append(issues, is)
	}
	return issues
}

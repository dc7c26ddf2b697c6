package consistency

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dotcommander/continuity/internal/domain/manuscript"
	"github.com/dotcommander/continuity/internal/textutil"
)

var magicRule = regexp.MustCompile(`(?i)\bmagic\s+(requires|cannot|can't|can not)\s+([^.!?;,]+)`)

// withoutWindow is how many words after "without" may name a requirement
const withoutWindow = 3

type worldRule struct {
	requires bool
	clause   string
	keywords []string
	scene    manuscript.Scene
}

func detectWorldRuleIssues(a *analysis) []Issue {
	var issues []Issue
	if a.isGenre("fantasy") {
		issues = append(issues, magicViolations(a)...)
	}
	issues = append(issues, eraMixing(a)...)
	issues = append(issues, culturalSprawl(a)...)
	return issues
}

func extractRules(a *analysis, opening []manuscript.Scene) []worldRule {
	var rules []worldRule
	for _, s := range opening {
		for _, m := range magicRule.FindAllStringSubmatch(s.Content, -1) {
			clause := strings.TrimSpace(m[2])
			keywords := goalKeywords(clause, a.rules.GoalStopWords)
			if len(keywords) == 0 {
				continue
			}
			rules = append(rules, worldRule{
				requires: strings.EqualFold(m[1], "requires"),
				clause:   clause,
				keywords: keywords,
				scene:    s,
			})
		}
	}
	return rules
}

// magicViolations checks the scenes after the opening third against the magic
// rules the opening establishes.
func magicViolations(a *analysis) []Issue {
	opening, _, openingEnd := a.thirds()
	rules := extractRules(a, opening)
	if len(rules) == 0 {
		return nil
	}

	var issues []Issue
	for _, s := range a.narrative[openingEnd:] {
		for _, r := range rules {
			sentence, ok := violates(a, r, s.Content)
			if !ok {
				continue
			}
			sev, verb := SeverityError, "cannot"
			if r.requires {
				sev, verb = SeverityWarning, "requires"
			}
			is := newIssue(TypeWorldRules, sev, CategoryMagic,
				fmt.Sprintf("Magic rule broken in %q", s.Title),
				fmt.Sprintf("%q establishes that magic %s %s, but %q contradicts it.", r.scene.Title, verb, r.clause, s.Title),
				sceneRefAt(r.scene, r.clause), sceneRefAt(s, sentence))
			is.Suggestions = []string{
				"Respect the established rule",
				"Explain the exception in the story",
			}
			issues = append(issues, is)
		}
	}
	return issues
}

// violates returns the first sentence of content that uses magic against r
func violates(a *analysis, r worldRule, content string) (string, bool) {
	for _, sentence := range textutil.Sentences(content) {
		if len(textutil.ContainsAny(sentence, a.rules.MagicTerms)) == 0 {
			continue
		}
		words := textutil.FoldedWords(sentence)
		if r.requires {
			if lacksRequirement(words, r.keywords) {
				return sentence, true
			}
			continue
		}
		if len(textutil.ContainsAny(sentence, a.rules.NegationTerms)) > 0 {
			continue
		}
		all := true
		for _, k := range r.keywords {
			if !hasWordWithPrefix(words, k) {
				all = false
				break
			}
		}
		if all {
			return sentence, true
		}
	}
	return "", false
}

// lacksRequirement matches "without <requirement>"
func lacksRequirement(words, keywords []string) bool {
	for i, w := range words {
		if w != "without" {
			continue
		}
		end := min(len(words), i+1+withoutWindow)
		if hasAnyPrefix(words[i+1:end], keywords) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(words, prefixes []string) bool {
	for _, p := range prefixes {
		if hasWordWithPrefix(words, p) {
			return true
		}
	}
	return false
}

// eraMixing flags technology from more than one era unless the manuscript
// explains it (time travel, portals).
func eraMixing(a *analysis) []Issue {
	var eras []string
	var terms []string
	sceneSet := make(map[string]bool)
	for _, era := range a.rules.Eras {
		hit := false
		for _, s := range a.narrative {
			found := textutil.ContainsAny(s.Content, era.Terms)
			if len(found) == 0 {
				continue
			}
			if !hit {
				terms = append(terms, found[0])
			}
			hit = true
			sceneSet[s.ID] = true
		}
		if hit {
			eras = append(eras, era.Name)
		}
	}
	if len(eras) < 2 {
		return nil
	}
	for _, s := range a.narrative {
		if len(textutil.ContainsAny(s.Content, a.rules.EraExplanations)) > 0 {
			return nil
		}
	}

	var items []AffectedItem
	for _, s := range a.narrative {
		if sceneSet[s.ID] {
			items = append(items, sceneRef(s))
		}
	}
	is := newIssue(TypeWorldRules, SeverityWarning, CategoryTechnology,
		"Technology from different eras",
		fmt.Sprintf("The manuscript mixes %s technology (%s) without explanation.",
			strings.Join(eras, ", "), strings.Join(quoteAll(terms), ", ")),
		items...)
	is.Suggestions = []string{
		"Keep technology consistent with one era",
		"Explain the mix in the worldbuilding",
	}
	return []Issue{is}
}

// culturalSprawl suggests reviewing a cultural category with too many
// distinct variants.
func culturalSprawl(a *analysis) []Issue {
	var issues []Issue
	for _, culture := range a.rules.Cultures {
		variants := make(map[string]bool)
		var items []AffectedItem
		for _, s := range a.narrative {
			found := textutil.ContainsAny(s.Content, culture.Terms)
			if len(found) == 0 {
				continue
			}
			for _, f := range found {
				variants[f] = true
			}
			items = append(items, sceneRef(s))
		}
		if len(variants) <= a.thresholds.MaxCulturalVariants {
			continue
		}
		is := newIssue(TypeWorldRules, SeveritySuggestion, CategoryCulture,
			fmt.Sprintf("Many different %s", culture.Name),
			fmt.Sprintf("The manuscript uses %d distinct %s: %s.",
				len(variants), culture.Name, strings.Join(quoteAll(sortedKeys(variants)), ", ")),
			items...)
		is.Suggestions = []string{fmt.Sprintf("Check that the %s fit one consistent culture", culture.Name)}
		issues = append(issues, is)
	}
	return issues
}

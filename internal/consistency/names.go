package consistency

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/dotcommander/continuity/internal/domain/manuscript"
	"github.com/dotcommander/continuity/internal/textutil"
)

// similarityEpsilon absorbs float rounding at the threshold (1-1/5 vs 0.8)
const similarityEpsilon = 1e-9

func detectNameIssues(a *analysis) []Issue {
	var issues []Issue
	for _, c := range a.characters {
		others := otherNameParts(a.characters, c.ID)
		for _, part := range strings.Fields(c.Name) {
			if utf8.RuneCountInString(part) < a.thresholds.MinNameLength {
				continue
			}
			if is, ok := spellingVariants(a, c, part, others); ok {
				issues = append(issues, is)
			}
		}
	}
	return issues
}

func otherNameParts(all []manuscript.Character, except string) map[string]bool {
	parts := make(map[string]bool)
	for _, c := range all {
		if c.ID == except {
			continue
		}
		for _, p := range strings.Fields(c.Name) {
			parts[textutil.Fold(p)] = true
		}
	}
	return parts
}

func stripPossessive(word string) string {
	for _, suffix := range []string{"'s", "’s"} {
		if strings.HasSuffix(word, suffix) {
			return strings.TrimSuffix(word, suffix)
		}
	}
	return word
}

// spellingVariants finds capitalised words close to, but not equal to, one
// part of a character's name.
func spellingVariants(a *analysis, c manuscript.Character, part string, others map[string]bool) (Issue, bool) {
	canonical := textutil.Fold(part)
	variants := make(map[string]string)
	var items []AffectedItem
	for _, s := range a.narrative {
		first := ""
		for _, w := range textutil.Words(s.Content) {
			if !textutil.Capitalized(w) {
				continue
			}
			w = stripPossessive(w)
			folded := textutil.Fold(w)
			if folded == canonical || others[folded] {
				continue
			}
			if textutil.Similarity(w, part) < a.thresholds.NameSimilarity-similarityEpsilon {
				continue
			}
			if _, ok := variants[folded]; !ok {
				variants[folded] = w
			}
			if first == "" {
				first = w
			}
		}
		if first != "" {
			items = append(items, sceneRefAt(s, first))
		}
	}
	if len(variants) == 0 {
		return Issue{}, false
	}

	spellings := make([]string, 0, len(variants))
	for _, v := range variants {
		spellings = append(spellings, v)
	}
	sort.Strings(spellings)

	is := newIssue(TypeCharacter, SeverityWarning, CategoryNaming,
		fmt.Sprintf("Inconsistent spelling of %s", part),
		fmt.Sprintf("%s is also spelled %s.", part, strings.Join(quoteAll(spellings), ", ")),
		append([]AffectedItem{characterRef(c)}, items...)...)
	is.Suggestions = []string{fmt.Sprintf("Standardize to %q", part)}
	for _, v := range spellings {
		is.Suggestions = append(is.Suggestions, fmt.Sprintf("Replace %q with %q", v, part))
	}
	is.Variants = spellings
	is.AutoFixAvailable = true
	return is, true
}

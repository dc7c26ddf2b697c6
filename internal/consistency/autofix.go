package consistency

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dotcommander/continuity/internal/domain/manuscript"
	"github.com/dotcommander/continuity/internal/textutil"
)

var (
	quotedValue = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)
	numeral     = regexp.MustCompile(`\d+`)
)

// FixResult is the outcome of one auto-fix attempt. UpdatedScenes is only
// set on success; callers must check Success before persisting it.
type FixResult struct {
	Success       bool               `json:"success" yaml:"success"`
	UpdatedScenes []manuscript.Scene `json:"updated_scenes,omitempty" yaml:"updated_scenes,omitempty"`
	Error         string             `json:"error,omitempty" yaml:"error,omitempty"`
	Cause         error              `json:"-" yaml:"-"`
}

// AutoFixIssue applies the narrow textual correction for one reported issue
// to a copy of scenes. It never modifies scenes and never panics.
func (e *Engine) AutoFixIssue(issue Issue, scenes []manuscript.Scene) (result FixResult) {
	defer func() {
		if r := recover(); r != nil {
			result = e.fixFailed(issue, fmt.Errorf("unexpected failure: %v", r))
		}
	}()

	if !issue.AutoFixAvailable {
		return e.fixFailed(issue, ErrNotAutoFixable)
	}

	var (
		updated []manuscript.Scene
		changed int
		err     error
	)
	switch issue.Category {
	case CategoryNaming:
		updated, changed, err = fixNaming(issue, scenes)
	case CategoryAge:
		updated, changed, err = fixAge(issue, scenes)
	case CategoryContradiction:
		err = ErrFixNotImplemented
	default:
		err = ErrFixPending
	}
	if err != nil {
		return e.fixFailed(issue, err)
	}

	e.logger.Info("Applied auto-fix",
		"issue_id", issue.ID,
		"category", issue.Category,
		"scenes_changed", changed,
	)
	return FixResult{Success: true, UpdatedScenes: updated}
}

func (e *Engine) fixFailed(issue Issue, err error) FixResult {
	fixErr := &FixError{IssueID: issue.ID, Category: issue.Category, Err: err}
	e.logger.Debug("Auto-fix refused", "issue_id", issue.ID, "error", fixErr)
	return FixResult{Success: false, Error: fixErr.Error(), Cause: fixErr}
}

// suggestedValue extracts the quoted value of a suggestion such as
// `Standardize to "Elyra"`.
func suggestedValue(issue Issue) (string, error) {
	if len(issue.Suggestions) == 0 {
		return "", ErrBadSuggestion
	}
	raw := quotedValue.FindString(issue.Suggestions[0])
	if raw == "" {
		return "", ErrBadSuggestion
	}
	v, err := strconv.Unquote(raw)
	if err != nil || strings.TrimSpace(v) == "" {
		return "", ErrBadSuggestion
	}
	return v, nil
}

func fixNaming(issue Issue, scenes []manuscript.Scene) ([]manuscript.Scene, int, error) {
	canonical, err := suggestedValue(issue)
	if err != nil {
		return nil, 0, err
	}
	variants := issue.Variants
	if len(variants) == 0 {
		for _, item := range issue.AffectedItems {
			if item.Type == ItemScene && item.Location != "" {
				variants = append(variants, item.Location)
			}
		}
	}

	updated := manuscript.CloneScenes(scenes)
	changed := 0
	for i := range updated {
		content := updated[i].Content
		for _, v := range variants {
			if strings.EqualFold(v, canonical) {
				continue
			}
			content = textutil.ReplaceWordFold(content, v, canonical)
		}
		if content != updated[i].Content {
			setContent(&updated[i], content)
			changed++
		}
	}
	if changed == 0 {
		return nil, 0, ErrFixNoMatch
	}
	return updated, changed, nil
}

// fixAge rewrites the numeral inside each reported age statement
func fixAge(issue Issue, scenes []manuscript.Scene) ([]manuscript.Scene, int, error) {
	if len(issue.Suggestions) == 0 {
		return nil, 0, ErrBadSuggestion
	}
	age := numeral.FindString(issue.Suggestions[0])
	if age == "" {
		return nil, 0, ErrBadSuggestion
	}

	updated := manuscript.CloneScenes(scenes)
	index := make(map[string]int, len(updated))
	for i, s := range updated {
		index[s.ID] = i
	}

	changed := 0
	for _, item := range issue.AffectedItems {
		if item.Type != ItemScene || item.Location == "" {
			continue
		}
		i, ok := index[item.ID]
		if !ok {
			continue
		}
		loc := numeral.FindStringIndex(item.Location)
		if loc == nil {
			continue
		}
		fixed := item.Location[:loc[0]] + age + item.Location[loc[1]:]
		content := strings.ReplaceAll(updated[i].Content, item.Location, fixed)
		if content != updated[i].Content {
			setContent(&updated[i], content)
			changed++
		}
	}
	if changed == 0 {
		return nil, 0, ErrFixNoMatch
	}
	return updated, changed, nil
}

func setContent(s *manuscript.Scene, content string) {
	s.Content = content
	s.WordCount = textutil.CountWords(content)
}

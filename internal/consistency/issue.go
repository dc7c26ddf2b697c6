package consistency

import (
	"time"

	"github.com/dotcommander/continuity/internal/domain/manuscript"
)

// IssueType groups issues by the part of the narrative they concern
type IssueType string

const (
	TypeCharacter  IssueType = "character"
	TypeTimeline   IssueType = "timeline"
	TypeLocation   IssueType = "location"
	TypePlot       IssueType = "plot"
	TypeDialogue   IssueType = "dialogue"
	TypeContinuity IssueType = "continuity"
	TypeWorldRules IssueType = "world-rules"
)

// IssueTypes lists every issue type in reporting order
var IssueTypes = []IssueType{
	TypeCharacter, TypeTimeline, TypeLocation, TypePlot,
	TypeDialogue, TypeContinuity, TypeWorldRules,
}

// Severity orders issues: error > warning > suggestion
type Severity string

const (
	SeverityError      Severity = "error"
	SeverityWarning    Severity = "warning"
	SeveritySuggestion Severity = "suggestion"
)

// Penalty is the score deduction for one issue of this severity
func (s Severity) Penalty() int {
	switch s {
	case SeverityError:
		return 10
	case SeverityWarning:
		return 5
	case SeveritySuggestion:
		return 2
	default:
		return 0
	}
}

// Categories route auto-fix and let callers filter issues
const (
	CategoryPersonality   = "personality"
	CategoryTravel        = "travel"
	CategoryGoal          = "goal"
	CategoryVocabulary    = "vocabulary"
	CategoryChronology    = "chronology"
	CategorySeason        = "season"
	CategoryAge           = "age"
	CategoryAnachronism   = "anachronism"
	CategoryDescription   = "description"
	CategoryTravelTime    = "travel-time"
	CategoryPlotHole      = "plot-hole"
	CategoryThread        = "thread"
	CategoryContradiction = "contradiction"
	CategoryChekhov       = "chekhov"
	CategoryDeusExMachina = "deus-ex-machina"
	CategoryVoice         = "voice"
	CategoryDialect       = "dialect"
	CategoryKnowledge     = "knowledge"
	CategoryProp          = "prop"
	CategoryInjury        = "injury"
	CategoryClothing      = "clothing"
	CategoryMagic         = "magic"
	CategoryTechnology    = "technology"
	CategoryCulture       = "culture"
	CategoryNaming        = "naming"
	CategoryPacing        = "pacing"
)

// ItemType identifies the kind of entity an AffectedItem points at
type ItemType string

const (
	ItemScene     ItemType = "scene"
	ItemCharacter ItemType = "character"
	ItemLocation  ItemType = "location"
)

// AffectedItem references an entity of the analysed input. Location is an
// optional pointer into the entity, usually the matched excerpt.
type AffectedItem struct {
	Type     ItemType `json:"type" yaml:"type"`
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Location string   `json:"location,omitempty" yaml:"location,omitempty"`
}

type Issue struct {
	ID               string         `json:"id" yaml:"id"`
	Type             IssueType      `json:"type" yaml:"type"`
	Severity         Severity       `json:"severity" yaml:"severity"`
	Title            string         `json:"title" yaml:"title"`
	Description      string         `json:"description" yaml:"description"`
	AffectedItems    []AffectedItem `json:"affected_items" yaml:"affected_items"`
	Suggestions      []string       `json:"suggestions,omitempty" yaml:"suggestions,omitempty"`
	AutoFixAvailable bool           `json:"auto_fix_available,omitempty" yaml:"auto_fix_available,omitempty"`
	Category         string         `json:"category,omitempty" yaml:"category,omitempty"`
	Variants         []string       `json:"variants,omitempty" yaml:"variants,omitempty"`
}

type Statistics struct {
	TotalIssues int               `json:"total_issues" yaml:"total_issues"`
	Errors      int               `json:"errors" yaml:"errors"`
	Warnings    int               `json:"warnings" yaml:"warnings"`
	Suggestions int               `json:"suggestions" yaml:"suggestions"`
	ByType      map[IssueType]int `json:"by_type" yaml:"by_type"`
}

// Report is the result of one analysis run. It is not modified after
// CheckConsistency returns it.
type Report struct {
	ProjectID   string     `json:"project_id" yaml:"project_id"`
	GeneratedAt time.Time  `json:"generated_at" yaml:"generated_at"`
	Issues      []Issue    `json:"issues" yaml:"issues"`
	Statistics  Statistics `json:"statistics" yaml:"statistics"`
	Score       int        `json:"score" yaml:"score"`
}

// Issue looks up an issue by id
func (r *Report) Issue(id string) (Issue, bool) {
	for _, is := range r.Issues {
		if is.ID == id {
			return is, true
		}
	}
	return Issue{}, false
}

func newIssue(typ IssueType, sev Severity, category, title, description string, items ...AffectedItem) Issue {
	return Issue{
		Type:          typ,
		Severity:      sev,
		Category:      category,
		Title:         title,
		Description:   description,
		AffectedItems: items,
	}
}

func sceneRef(s manuscript.Scene) AffectedItem {
	return AffectedItem{Type: ItemScene, ID: s.ID, Title: s.Title}
}

func sceneRefAt(s manuscript.Scene, excerpt string) AffectedItem {
	return AffectedItem{Type: ItemScene, ID: s.ID, Title: s.Title, Location: excerpt}
}

func characterRef(c manuscript.Character) AffectedItem {
	return AffectedItem{Type: ItemCharacter, ID: c.ID, Title: c.Name}
}

func locationRef(l manuscript.Location) AffectedItem {
	return AffectedItem{Type: ItemLocation, ID: l.ID, Title: l.Name}
}

package consistency

import (
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dotcommander/continuity/internal/domain/manuscript"
	"github.com/dotcommander/continuity/internal/textutil"
)

// analysis is the arena of one CheckConsistency call: the input snapshot,
// derived orderings and the character-profile cache. It is discarded when
// the call returns.
type analysis struct {
	project    *manuscript.Project
	stories    []manuscript.Story
	characters []manuscript.Character
	locations  []manuscript.Location
	timeline   *manuscript.Timeline

	// narrative is the scene list sorted by Order; story by in-world position.
	narrative []manuscript.Scene
	story     []manuscript.Scene
	storyPos  map[string]int
	byID      map[string]manuscript.Scene

	rules      *Rules
	thresholds Thresholds
	logger     *slog.Logger
	clothing   clothingMatcher
	props      propMatcher

	profilesOnce sync.Once
	profiles     map[string]*CharacterProfile
}

func (e *Engine) newAnalysis(in manuscript.Input) *analysis {
	a := &analysis{
		project:    in.Project,
		stories:    in.Stories,
		characters: in.Characters,
		locations:  in.Locations,
		timeline:   in.Timeline,
		rules:      e.rules,
		thresholds: e.thresholds,
		logger:     e.logger,
		clothing:   clothingMatcher{re: e.clothing},
		props:      propMatcher{patterns: e.props, rules: e.rules},
	}

	a.narrative = append([]manuscript.Scene(nil), in.Scenes...)
	sort.SliceStable(a.narrative, func(i, j int) bool {
		return a.narrative[i].Order < a.narrative[j].Order
	})

	a.storyPos = make(map[string]int, len(in.Scenes))
	a.byID = make(map[string]manuscript.Scene, len(in.Scenes))
	for _, s := range a.narrative {
		a.byID[s.ID] = s
		pos := s.Order
		if entry, ok := in.Timeline.Entry(s.ID); ok {
			pos = entry.Position
		}
		a.storyPos[s.ID] = pos
	}
	a.story = append([]manuscript.Scene(nil), a.narrative...)
	sort.SliceStable(a.story, func(i, j int) bool {
		return a.storyPos[a.story[i].ID] < a.storyPos[a.story[j].ID]
	})
	return a
}

// sceneTime is the in-story time of a scene: metadata first, then timeline.
func (a *analysis) sceneTime(s manuscript.Scene) *time.Time {
	if s.Metadata != nil && s.Metadata.Time != nil {
		return s.Metadata.Time
	}
	if entry, ok := a.timeline.Entry(s.ID); ok && entry.Date != nil {
		return entry.Date
	}
	return nil
}

// elapsedDays measures in-story days between two scenes, falling back to the
// distance in story position when timestamps are missing.
func (a *analysis) elapsedDays(from, to manuscript.Scene) float64 {
	days, approximated := textutil.ElapsedDays(a.sceneTime(from), a.sceneTime(to), a.storyPos[from.ID], a.storyPos[to.ID])
	if approximated {
		a.logger.Debug("Elapsed time approximated from scene order",
			"from_scene", from.ID,
			"to_scene", to.ID,
			"days", days,
		)
	}
	return days
}

func (a *analysis) sceneLocation(s manuscript.Scene) string {
	if s.Metadata == nil {
		return ""
	}
	return strings.TrimSpace(s.Metadata.Location)
}

func (a *analysis) locationByName(name string) (manuscript.Location, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return manuscript.Location{}, false
	}
	for _, l := range a.locations {
		if strings.EqualFold(l.Name, name) || l.ID == name {
			return l, true
		}
	}
	return manuscript.Location{}, false
}

func (a *analysis) characterByName(name string) (manuscript.Character, bool) {
	for _, c := range a.characters {
		if nameMatches(c, name) {
			return c, true
		}
	}
	return manuscript.Character{}, false
}

// laterInStory reports whether b happens after a in-world
func (a *analysis) laterInStory(first, second manuscript.Scene) bool {
	return a.storyPos[second.ID] > a.storyPos[first.ID]
}

// thirds splits the narrative into the opening third and the closing third.
// Both are empty for fewer than three scenes.
func (a *analysis) thirds() (opening, closing []manuscript.Scene, openingEnd int) {
	n := len(a.narrative)
	third := n / 3
	if third == 0 {
		return nil, nil, 0
	}
	return a.narrative[:third], a.narrative[n-third:], third
}

func (a *analysis) isGenre(genre string) bool {
	if a.project != nil && strings.Contains(strings.ToLower(a.project.Genre), genre) {
		return true
	}
	for _, s := range a.stories {
		if strings.Contains(strings.ToLower(s.Genre), genre) {
			return true
		}
	}
	return false
}

// nameMatches compares a metadata or dialogue label with a character by
// full name, first name or id.
func nameMatches(c manuscript.Character, label string) bool {
	label = strings.TrimSpace(label)
	if label == "" {
		return false
	}
	if label == c.ID || strings.EqualFold(label, c.Name) {
		return true
	}
	return strings.EqualFold(label, firstName(c.Name))
}

func firstName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func inFoldedSet(set []string, value string) bool {
	value = strings.TrimSpace(value)
	for _, s := range set {
		if strings.EqualFold(s, value) {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package consistency

import (
	"regexp"
	"strings"
	"time"

	"github.com/dotcommander/continuity/internal/domain/manuscript"
	"github.com/dotcommander/continuity/internal/textutil"
)

var (
	// "Name: rest of line" script-style dialogue
	labelledLine = regexp.MustCompile(`(?m)^[ \t]*([\p{Lu}][\p{L}'’-]*(?:[ \t][\p{Lu}][\p{L}'’-]*)?)[ \t]*:[ \t]*(.+?)[ \t]*$`)
	quotedSpeech = regexp.MustCompile(`["“]([^"“”]+)["”]`)
)

// Appearance is one scene a character is present in
type Appearance struct {
	SceneID   string
	Time      *time.Time
	Location  string
	CoPresent []string
}

// DialogueLine is a line of speech attributed to a character
type DialogueLine struct {
	SceneID string
	Text    string
}

type DialogueStats struct {
	Lines             []DialogueLine
	Words             []string
	Vocabulary        map[string]struct{}
	AvgSentenceLength float64
}

// CharacterProfile is derived per analysis run and never persisted
type CharacterProfile struct {
	CharacterID   string
	Name          string
	Appearances   []Appearance
	Dialogue      DialogueStats
	Relationships map[string]float64
}

// buildProfiles derives a profile for every character from the scene set.
// Characters that never appear get an empty profile.
func buildProfiles(characters []manuscript.Character, scenes []manuscript.Scene, speechVerbs []string, timeOf func(manuscript.Scene) *time.Time) map[string]*CharacterProfile {
	profiles := make(map[string]*CharacterProfile, len(characters))
	for _, c := range characters {
		profiles[c.ID] = buildProfile(c, characters, scenes, speechVerbs, timeOf)
	}
	return profiles
}

func buildProfile(c manuscript.Character, all []manuscript.Character, scenes []manuscript.Scene, speechVerbs []string, timeOf func(manuscript.Scene) *time.Time) *CharacterProfile {
	p := &CharacterProfile{
		CharacterID:   c.ID,
		Name:          c.Name,
		Relationships: make(map[string]float64),
		Dialogue:      DialogueStats{Vocabulary: make(map[string]struct{})},
	}

	coCounts := make(map[string]int)
	var spoken []string
	for _, s := range scenes {
		if !presentIn(c, s) {
			continue
		}
		app := Appearance{SceneID: s.ID, Time: timeOf(s), Location: strings.TrimSpace(s.Metadata.Location)}
		for _, other := range all {
			if other.ID != c.ID && presentIn(other, s) {
				app.CoPresent = append(app.CoPresent, other.ID)
				coCounts[other.ID]++
			}
		}
		p.Appearances = append(p.Appearances, app)

		for _, line := range dialogueLines(c, s.Content, speechVerbs) {
			p.Dialogue.Lines = append(p.Dialogue.Lines, DialogueLine{SceneID: s.ID, Text: line})
			spoken = append(spoken, line)
		}
	}

	for _, line := range p.Dialogue.Lines {
		for _, w := range textutil.Words(line.Text) {
			p.Dialogue.Words = append(p.Dialogue.Words, w)
			p.Dialogue.Vocabulary[textutil.Fold(w)] = struct{}{}
		}
	}
	if len(spoken) > 0 {
		p.Dialogue.AvgSentenceLength = textutil.AverageSentenceLength(strings.Join(spoken, ". "))
	}

	if n := len(p.Appearances); n > 0 {
		for id, count := range coCounts {
			p.Relationships[id] = float64(count) / float64(n)
		}
	}
	for _, rel := range c.Relationships {
		if rel.CharacterID == "" || rel.CharacterID == c.ID {
			continue
		}
		p.Relationships[rel.CharacterID] = min(1, p.Relationships[rel.CharacterID]+0.5)
	}
	return p
}

// presentIn reports whether scene metadata lists the character
func presentIn(c manuscript.Character, s manuscript.Scene) bool {
	if s.Metadata == nil {
		return false
	}
	for _, label := range s.Metadata.Characters {
		if nameMatches(c, label) {
			return true
		}
	}
	return false
}

// dialogueLines extracts "Name: line" script dialogue and quoted speech
// attributed with a speech verb ("...," Name said / Name said, "...").
func dialogueLines(c manuscript.Character, content string, speechVerbs []string) []string {
	var lines []string
	for _, m := range labelledLine.FindAllStringSubmatch(content, -1) {
		if nameMatches(c, m[1]) {
			lines = append(lines, strings.TrimSpace(m[2]))
		}
	}

	if len(speechVerbs) == 0 {
		return lines
	}
	for _, par := range strings.Split(content, "\n") {
		quotes := quotedSpeech.FindAllStringSubmatchIndex(par, -1)
		for _, q := range quotes {
			after := par[q[1]:]
			before := par[:q[0]]
			if attributedAfter(c, after, speechVerbs) || attributedBefore(c, before, speechVerbs) {
				lines = append(lines, strings.TrimSpace(par[q[2]:q[3]]))
			}
		}
	}
	return lines
}

// attributedAfter matches `, Name said` right after a quote
func attributedAfter(c manuscript.Character, after string, verbs []string) bool {
	words := textutil.Words(after)
	if len(words) < 2 {
		return false
	}
	return (nameMatches(c, words[0]) && inFoldedSet(verbs, words[1])) ||
		(inFoldedSet(verbs, words[0]) && nameMatches(c, words[1]))
}

// attributedBefore matches `Name said, ` right before a quote
func attributedBefore(c manuscript.Character, before string, verbs []string) bool {
	words := textutil.Words(before)
	if len(words) < 2 {
		return false
	}
	last, prev := words[len(words)-1], words[len(words)-2]
	tail := strings.TrimSpace(before)
	if !strings.HasSuffix(tail, ",") && !strings.HasSuffix(tail, ":") {
		return false
	}
	return nameMatches(c, prev) && inFoldedSet(verbs, last)
}

// characterProfiles returns the run-scoped profile cache, building it on
// first use.
func (a *analysis) characterProfiles() map[string]*CharacterProfile {
	a.profilesOnce.Do(func() {
		a.profiles = buildProfiles(a.characters, a.narrative, a.rules.SpeechVerbs, a.sceneTime)
	})
	return a.profiles
}

func (a *analysis) profile(characterID string) *CharacterProfile {
	return a.characterProfiles()[characterID]
}

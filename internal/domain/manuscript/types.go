package manuscript

import (
	"strings"
	"time"
)

// Character roles
const (
	RoleProtagonist = "protagonist"
	RoleAntagonist  = "antagonist"
	RoleSupporting  = "supporting"
	RoleMinor       = "minor"
)

// Project is the top-level container being analysed
type Project struct {
	ID    string `json:"id" yaml:"id" toml:"id" validate:"required"`
	Title string `json:"title" yaml:"title" toml:"title"`
	Genre string `json:"genre,omitempty" yaml:"genre,omitempty" toml:"genre,omitempty"`
}

type Story struct {
	ID        string `json:"id" yaml:"id" toml:"id" validate:"required"`
	ProjectID string `json:"project_id,omitempty" yaml:"project_id,omitempty" toml:"project_id,omitempty"`
	Title     string `json:"title" yaml:"title" toml:"title"`
	Genre     string `json:"genre,omitempty" yaml:"genre,omitempty" toml:"genre,omitempty"`
}

// Scene is the atomic narrative unit. Order defines the narrative order,
// the sequence in which scenes are presented to the reader.
type Scene struct {
	ID        string         `json:"id" yaml:"id" toml:"id" validate:"required"`
	Title     string         `json:"title" yaml:"title" toml:"title"`
	Content   string         `json:"content" yaml:"content" toml:"content"`
	WordCount int            `json:"word_count,omitempty" yaml:"word_count,omitempty" toml:"word_count,omitempty" validate:"min=0"`
	Order     int            `json:"order" yaml:"order" toml:"order"`
	Metadata  *SceneMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty" toml:"metadata,omitempty"`
}

// SceneMetadata records who, where and when for a scene. Characters holds
// character names (ids are accepted too).
type SceneMetadata struct {
	Characters []string   `json:"characters,omitempty" yaml:"characters,omitempty" toml:"characters,omitempty"`
	Location   string     `json:"location,omitempty" yaml:"location,omitempty" toml:"location,omitempty"`
	Time       *time.Time `json:"time,omitempty" yaml:"time,omitempty" toml:"time,omitempty"`
	PlotThread string     `json:"plot_thread,omitempty" yaml:"plot_thread,omitempty" toml:"plot_thread,omitempty"`
}

type Relationship struct {
	CharacterID string `json:"character_id" yaml:"character_id" toml:"character_id"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
}

type Character struct {
	ID            string            `json:"id" yaml:"id" toml:"id" validate:"required"`
	Name          string            `json:"name" yaml:"name" toml:"name" validate:"required"`
	Role          string            `json:"role,omitempty" yaml:"role,omitempty" toml:"role,omitempty" validate:"omitempty,oneof=protagonist antagonist supporting minor"`
	Traits        []string          `json:"traits,omitempty" yaml:"traits,omitempty" toml:"traits,omitempty"`
	Goals         []string          `json:"goals,omitempty" yaml:"goals,omitempty" toml:"goals,omitempty"`
	Backstory     string            `json:"backstory,omitempty" yaml:"backstory,omitempty" toml:"backstory,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty" toml:"attributes,omitempty"`
	Relationships []Relationship    `json:"relationships,omitempty" yaml:"relationships,omitempty" toml:"relationships,omitempty"`
}

// Attribute looks up an attribute case-insensitively.
func (c Character) Attribute(key string) (string, bool) {
	for k, v := range c.Attributes {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

type Location struct {
	ID          string `json:"id" yaml:"id" toml:"id" validate:"required"`
	Name        string `json:"name" yaml:"name" toml:"name" validate:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
}

// Timeline maps scenes onto story order, the sequence in which events
// happen in-world. Scenes without an entry fall back to their Order.
type Timeline struct {
	ID      string          `json:"id" yaml:"id" toml:"id"`
	Name    string          `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Entries []TimelineEntry `json:"entries,omitempty" yaml:"entries,omitempty" toml:"entries,omitempty" validate:"dive"`
}

type TimelineEntry struct {
	SceneID  string     `json:"scene_id" yaml:"scene_id" toml:"scene_id" validate:"required"`
	Position int        `json:"position" yaml:"position" toml:"position"`
	Date     *time.Time `json:"date,omitempty" yaml:"date,omitempty" toml:"date,omitempty"`
}

// Entry returns the timeline entry for a scene.
func (t *Timeline) Entry(sceneID string) (TimelineEntry, bool) {
	if t == nil {
		return TimelineEntry{}, false
	}
	for _, e := range t.Entries {
		if e.SceneID == sceneID {
			return e, true
		}
	}
	return TimelineEntry{}, false
}

// Manuscript is the full entity set of one project, the unit loaded from
// and written to disk.
type Manuscript struct {
	Project    Project     `json:"project" yaml:"project" toml:"project"`
	Stories    []Story     `json:"stories,omitempty" yaml:"stories,omitempty" toml:"stories,omitempty" validate:"dive"`
	Scenes     []Scene     `json:"scenes" yaml:"scenes" toml:"scenes" validate:"dive"`
	Characters []Character `json:"characters,omitempty" yaml:"characters,omitempty" toml:"characters,omitempty" validate:"dive"`
	Locations  []Location  `json:"locations,omitempty" yaml:"locations,omitempty" toml:"locations,omitempty" validate:"dive"`
	Timeline   *Timeline   `json:"timeline,omitempty" yaml:"timeline,omitempty" toml:"timeline,omitempty"`
}

// Input converts the manuscript into an analysis snapshot.
func (m *Manuscript) Input() Input {
	return Input{
		Project:    &m.Project,
		Stories:    m.Stories,
		Scenes:     m.Scenes,
		Characters: m.Characters,
		Locations:  m.Locations,
		Timeline:   m.Timeline,
	}
}

// Input is the read-only snapshot handed to the analysis engine.
type Input struct {
	Project    *Project
	Stories    []Story
	Scenes     []Scene
	Characters []Character
	Locations  []Location
	Timeline   *Timeline
}

// CloneScenes deep-copies a scene list so callers can mutate the result
// without touching the original.
func CloneScenes(scenes []Scene) []Scene {
	if scenes == nil {
		return nil
	}
	out := make([]Scene, len(scenes))
	for i, s := range scenes {
		out[i] = s
		if s.Metadata != nil {
			md := *s.Metadata
			md.Characters = append([]string(nil), s.Metadata.Characters...)
			if s.Metadata.Time != nil {
				t := *s.Metadata.Time
				md.Time = &t
			}
			out[i].Metadata = &md
		}
	}
	return out
}

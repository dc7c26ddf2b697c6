package storage

import (
	"time"

	"github.com/dotcommander/continuity/internal/domain/manuscript"
)

// go-toml encodes *time.Time through its TextMarshaler as a quoted string,
// which it then refuses to decode back into a time. The types below carry
// times as interface values so they are written as TOML datetimes; a nil
// value leaves the key out. Decoding goes straight into manuscript types.

type tomlManuscript struct {
	Project    manuscript.Project     `toml:"project"`
	Stories    []manuscript.Story     `toml:"stories,omitempty"`
	Scenes     []tomlScene            `toml:"scenes"`
	Characters []manuscript.Character `toml:"characters,omitempty"`
	Locations  []manuscript.Location  `toml:"locations,omitempty"`
	Timeline   *tomlTimeline          `toml:"timeline,omitempty"`
}

type tomlScene struct {
	ID        string        `toml:"id"`
	Title     string        `toml:"title"`
	Content   string        `toml:"content"`
	WordCount int           `toml:"word_count,omitempty"`
	Order     int           `toml:"order"`
	Metadata  *tomlMetadata `toml:"metadata,omitempty"`
}

type tomlMetadata struct {
	Characters []string    `toml:"characters,omitempty"`
	Location   string      `toml:"location,omitempty"`
	Time       interface{} `toml:"time,omitempty"`
	PlotThread string      `toml:"plot_thread,omitempty"`
}

type tomlTimeline struct {
	ID      string              `toml:"id"`
	Name    string              `toml:"name,omitempty"`
	Entries []tomlTimelineEntry `toml:"entries,omitempty"`
}

type tomlTimelineEntry struct {
	SceneID  string      `toml:"scene_id"`
	Position int         `toml:"position"`
	Date     interface{} `toml:"date,omitempty"`
}

func tomlDatetime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func newTOMLManuscript(m *manuscript.Manuscript) *tomlManuscript {
	out := &tomlManuscript{
		Project:    m.Project,
		Stories:    m.Stories,
		Characters: m.Characters,
		Locations:  m.Locations,
		Scenes:     make([]tomlScene, len(m.Scenes)),
	}
	for i, s := range m.Scenes {
		out.Scenes[i] = tomlScene{
			ID:        s.ID,
			Title:     s.Title,
			Content:   s.Content,
			WordCount: s.WordCount,
			Order:     s.Order,
		}
		if md := s.Metadata; md != nil {
			out.Scenes[i].Metadata = &tomlMetadata{
				Characters: md.Characters,
				Location:   md.Location,
				Time:       tomlDatetime(md.Time),
				PlotThread: md.PlotThread,
			}
		}
	}
	if tl := m.Timeline; tl != nil {
		out.Timeline = &tomlTimeline{ID: tl.ID, Name: tl.Name, Entries: make([]tomlTimelineEntry, len(tl.Entries))}
		for i, e := range tl.Entries {
			out.Timeline.Entries[i] = tomlTimelineEntry{SceneID: e.SceneID, Position: e.Position, Date: tomlDatetime(e.Date)}
		}
	}
	return out
}

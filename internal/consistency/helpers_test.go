package consistency

import (
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/dotcommander/continuity/internal/domain/manuscript"
)

var baseTime = time.Date(1850, time.March, 1, 9, 0, 0, 0, time.UTC)

func quietEngine(opts ...Option) *Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(append([]Option{WithLogger(logger)}, opts...)...)
}

func testProject() *manuscript.Project {
	return &manuscript.Project{ID: "p1", Title: "Test Project"}
}

func after(d time.Duration) *time.Time {
	t := baseTime.Add(d)
	return &t
}

func scene(id string, order int, content string) manuscript.Scene {
	return manuscript.Scene{
		ID:        id,
		Title:     "Scene " + id,
		Content:   content,
		WordCount: len(strings.Fields(content)),
		Order:     order,
	}
}

func withMeta(s manuscript.Scene, location string, when *time.Time, characters ...string) manuscript.Scene {
	s.Metadata = &manuscript.SceneMetadata{Characters: characters, Location: location, Time: when}
	return s
}

func character(id, name string) manuscript.Character {
	return manuscript.Character{ID: id, Name: name, Role: manuscript.RoleSupporting}
}

// timelineFor puts the scenes in story order in the order given
func timelineFor(scenes ...manuscript.Scene) *manuscript.Timeline {
	tl := &manuscript.Timeline{ID: "tl", Name: "Main"}
	for i, s := range scenes {
		tl.Entries = append(tl.Entries, manuscript.TimelineEntry{SceneID: s.ID, Position: i + 1})
	}
	return tl
}

func input(scenes []manuscript.Scene, characters ...manuscript.Character) manuscript.Input {
	return manuscript.Input{Project: testProject(), Scenes: scenes, Characters: characters}
}

func analyse(in manuscript.Input, opts ...Option) *analysis {
	return quietEngine(opts...).newAnalysis(in)
}

func byCategory(issues []Issue, category string) []Issue {
	var out []Issue
	for _, is := range issues {
		if is.Category == category {
			out = append(out, is)
		}
	}
	return out
}

func referencesScene(is Issue, id string) bool {
	for _, item := range is.AffectedItems {
		if item.Type == ItemScene && item.ID == id {
			return true
		}
	}
	return false
}

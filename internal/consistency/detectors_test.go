package consistency

import (
	"strings"
	"testing"
	"time"

	"github.com/dotcommander/continuity/internal/domain/manuscript"
)

func TestCharacterDetector(t *testing.T) {
	tests := []struct {
		name       string
		scenes     []manuscript.Scene
		characters []manuscript.Character
		category   string
		want       int
	}{
		{
			name: "personality shift across scenes",
			scenes: []manuscript.Scene{
				withMeta(scene("s1", 1, "Arin was brave and stood firm."), "", nil, "Arin"),
				withMeta(scene("s2", 2, "Arin was cowardly and fled."), "", nil, "Arin"),
			},
			characters: []manuscript.Character{character("arin", "Arin")},
			category:   CategoryPersonality,
			want:       1,
		},
		{
			name: "both poles in one scene are ambiguous",
			scenes: []manuscript.Scene{
				withMeta(scene("s1", 1, "Arin was brave, then cowardly."), "", nil, "Arin"),
				withMeta(scene("s2", 2, "Arin slept."), "", nil, "Arin"),
			},
			characters: []manuscript.Character{character("arin", "Arin")},
			category:   CategoryPersonality,
			want:       0,
		},
		{
			name: "appearances far apart in time",
			scenes: []manuscript.Scene{
				withMeta(scene("s1", 1, "K waited."), "Forest", after(0), "K"),
				withMeta(scene("s2", 2, "K arrived."), "Castle", after(3*time.Hour), "K"),
			},
			characters: []manuscript.Character{character("k", "K")},
			category:   CategoryTravel,
			want:       0,
		},
		{
			name:       "unaddressed goal",
			scenes:     []manuscript.Scene{withMeta(scene("s1", 1, "Mira ate bread."), "", nil, "Mira")},
			characters: []manuscript.Character{{ID: "mira", Name: "Mira", Goals: []string{"rescue her brother"}}},
			category:   CategoryGoal,
			want:       1,
		},
		{
			name:       "goal addressed through word forms",
			scenes:     []manuscript.Scene{withMeta(scene("s1", 1, "Mira rescued her brother at dawn."), "", nil, "Mira")},
			characters: []manuscript.Character{{ID: "mira", Name: "Mira", Goals: []string{"rescue her brother"}}},
			category:   CategoryGoal,
			want:       0,
		},
		{
			name: "complex speech from uneducated character",
			scenes: []manuscript.Scene{withMeta(scene("s1", 1,
				"Bo: Notwithstanding considerable circumstances, unquestionably extraordinary deliberations necessitate reconsideration immediately everywhere."),
				"", nil, "Bo")},
			characters: []manuscript.Character{{ID: "bo", Name: "Bo", Attributes: map[string]string{"Education": "low"}}},
			category:   CategoryVocabulary,
			want:       1,
		},
		{
			name: "complex speech from educated character",
			scenes: []manuscript.Scene{withMeta(scene("s1", 1,
				"Bo: Notwithstanding considerable circumstances, unquestionably extraordinary deliberations necessitate reconsideration immediately everywhere."),
				"", nil, "Bo")},
			characters: []manuscript.Character{{ID: "bo", Name: "Bo", Attributes: map[string]string{"education": "doctorate"}}},
			category:   CategoryVocabulary,
			want:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := detectCharacterIssues(analyse(input(tt.scenes, tt.characters...)))
			if got := len(byCategory(issues, tt.category)); got != tt.want {
				t.Errorf("got %d %s issues, want %d: %+v", got, tt.category, tt.want, issues)
			}
		})
	}
}

func TestVocabularyComplexity(t *testing.T) {
	tests := []struct {
		name  string
		words []string
		want  float64
	}{
		{"empty", nil, 0},
		{"short words", []string{"a", "cat", "sat"}, 0.6 * (7.0 / 3 / 10)},
		{"long words", []string{"extraordinarily", "unquestionable"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := VocabularyComplexity(tt.words)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("VocabularyComplexity(%v) = %v, want %v", tt.words, got, tt.want)
			}
		})
	}
}

func TestTimelineDetector(t *testing.T) {
	t.Run("no timeline is a no-op", func(t *testing.T) {
		in := input([]manuscript.Scene{scene("s1", 1, "Snow fell."), scene("s2", 2, "Summer came.")})
		if issues := detectTimelineIssues(analyse(in)); len(issues) != 0 {
			t.Errorf("got %d issues without a timeline", len(issues))
		}
	})

	t.Run("reference to a later event", func(t *testing.T) {
		siege := scene("a", 1, "The walls fell.")
		siege.Title = "The Siege"
		home := scene("b", 2, "They spoke of The Siege in hushed tones.")
		home.Title = "Homecoming"
		in := input([]manuscript.Scene{siege, home})
		in.Timeline = timelineFor(home, siege)

		issues := byCategory(detectTimelineIssues(analyse(in)), CategoryChronology)
		if len(issues) != 1 {
			t.Fatalf("got %d chronology issues, want 1", len(issues))
		}
		if !referencesScene(issues[0], "a") || !referencesScene(issues[0], "b") {
			t.Errorf("unexpected affected items: %+v", issues[0].AffectedItems)
		}
	})

	t.Run("season flips within days", func(t *testing.T) {
		winter := withMeta(scene("s1", 1, "Snow covered the fields."), "", after(0))
		summer := withMeta(scene("s2", 2, "The summer sun blazed."), "", after(5*24*time.Hour))
		in := input([]manuscript.Scene{winter, summer})
		in.Timeline = timelineFor(winter, summer)
		if got := len(byCategory(detectTimelineIssues(analyse(in)), CategorySeason)); got != 1 {
			t.Errorf("got %d season issues, want 1", got)
		}
	})

	t.Run("season flips after months", func(t *testing.T) {
		winter := withMeta(scene("s1", 1, "Snow covered the fields."), "", after(0))
		summer := withMeta(scene("s2", 2, "The summer sun blazed."), "", after(150*24*time.Hour))
		in := input([]manuscript.Scene{winter, summer})
		in.Timeline = timelineFor(winter, summer)
		if got := len(byCategory(detectTimelineIssues(analyse(in)), CategorySeason)); got != 0 {
			t.Errorf("got %d season issues, want 0", got)
		}
	})

	t.Run("technology before its invention", func(t *testing.T) {
		s1 := scene("s1", 1, "It was 1850 in London.")
		s2 := scene("s2", 2, "She checked her smartphone.")
		in := input([]manuscript.Scene{s1, s2})
		in.Timeline = timelineFor(s1, s2)
		issues := byCategory(detectTimelineIssues(analyse(in)), CategoryAnachronism)
		if len(issues) != 1 {
			t.Fatalf("got %d anachronisms, want 1", len(issues))
		}
		if issues[0].Severity != SeverityError || !referencesScene(issues[0], "s2") {
			t.Errorf("unexpected issue: %+v", issues[0])
		}
	})
}

func TestLocationDetector(t *testing.T) {
	castle := manuscript.Location{ID: "castle", Name: "Castle"}
	forest := manuscript.Location{ID: "forest", Name: "Forest"}

	t.Run("conflicting descriptions", func(t *testing.T) {
		in := input([]manuscript.Scene{
			scene("s1", 1, "The Castle was dark and cold."),
			scene("s2", 2, "The Castle was bright and warm."),
		})
		in.Locations = []manuscript.Location{castle}
		issues := byCategory(detectLocationIssues(analyse(in)), CategoryDescription)
		if len(issues) != 1 {
			t.Fatalf("got %d description issues, want 1", len(issues))
		}
		if len(issues[0].AffectedItems) != 3 {
			t.Errorf("want location plus two scenes, got %+v", issues[0].AffectedItems)
		}
	})

	t.Run("repeated description", func(t *testing.T) {
		in := input([]manuscript.Scene{
			scene("s1", 1, "The Castle was dark and cold."),
			scene("s2", 2, "The Castle was dark and cold."),
		})
		in.Locations = []manuscript.Location{castle}
		if got := len(byCategory(detectLocationIssues(analyse(in)), CategoryDescription)); got != 0 {
			t.Errorf("got %d description issues, want 0", got)
		}
	})

	tests := []struct {
		name      string
		gap       time.Duration
		distances map[string]float64
		want      int
	}{
		{"default distance too far", 20 * time.Minute, nil, 1},
		{"default distance reachable", 2 * time.Hour, nil, 0},
		{"short configured distance", 20 * time.Minute, map[string]float64{DistanceKey("Forest", "Castle"): 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := input([]manuscript.Scene{
				withMeta(scene("s1", 1, "They left."), "Forest", after(0)),
				withMeta(scene("s2", 2, "They arrived."), "Castle", after(tt.gap)),
			})
			in.Locations = []manuscript.Location{castle, forest}
			th := DefaultThresholds()
			if tt.distances != nil {
				th.Distances = tt.distances
			}
			issues := byCategory(detectLocationIssues(analyse(in, WithThresholds(th))), CategoryTravelTime)
			if len(issues) != tt.want {
				t.Errorf("got %d travel-time issues, want %d", len(issues), tt.want)
			}
		})
	}
}

func TestPlotDetector(t *testing.T) {
	tests := []struct {
		name     string
		scenes   []manuscript.Scene
		category string
		want     int
	}{
		{
			name: "setup without resolution",
			scenes: []manuscript.Scene{
				scene("s1", 1, "They discovered a hidden door."),
				scene("s2", 2, "Nothing happened."),
				scene("s3", 3, "Night fell."),
			},
			category: CategoryPlotHole,
			want:     1,
		},
		{
			name: "setup resolved later",
			scenes: []manuscript.Scene{
				scene("s1", 1, "They discovered a hidden door."),
				scene("s2", 2, "Nothing happened."),
				scene("s3", 3, "The mystery was solved."),
			},
			category: CategoryPlotHole,
			want:     0,
		},
		{
			name: "resolution before the setup",
			scenes: []manuscript.Scene{
				scene("s1", 1, "The mystery was solved."),
				scene("s2", 2, "They discovered a hidden door."),
			},
			category: CategoryPlotHole,
			want:     0,
		},
		{
			name: "contradicting attribute",
			scenes: []manuscript.Scene{
				scene("s1", 1, "The door was red."),
				scene("s2", 2, "The door was blue."),
			},
			category: CategoryContradiction,
			want:     1,
		},
		{
			name: "attributes of different classes",
			scenes: []manuscript.Scene{
				scene("s1", 1, "The door was red."),
				scene("s2", 2, "The door was wooden."),
			},
			category: CategoryContradiction,
			want:     0,
		},
		{
			name: "introduced object never used",
			scenes: []manuscript.Scene{
				scene("s1", 1, "Jon noticed a rusty dagger on the shelf."),
				scene("s2", 2, "They rode north."),
				scene("s3", 3, "The war ended."),
			},
			category: CategoryChekhov,
			want:     1,
		},
		{
			name: "introduced object pays off",
			scenes: []manuscript.Scene{
				scene("s1", 1, "Jon noticed a rusty dagger on the shelf."),
				scene("s2", 2, "They rode north."),
				scene("s3", 3, "Jon drew the dagger."),
			},
			category: CategoryChekhov,
			want:     0,
		},
		{
			name: "unearned rescue in the finale",
			scenes: []manuscript.Scene{
				scene("s1", 1, "Morning came."),
				scene("s2", 2, "The army gathered."),
				scene("s3", 3, "Help arrived just in time."),
			},
			category: CategoryDeusExMachina,
			want:     1,
		},
		{
			name: "lucky break early is fine",
			scenes: []manuscript.Scene{
				scene("s1", 1, "Help arrived just in time."),
				scene("s2", 2, "The army gathered."),
				scene("s3", 3, "Morning came."),
			},
			category: CategoryDeusExMachina,
			want:     0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := detectPlotIssues(analyse(input(tt.scenes)))
			if got := len(byCategory(issues, tt.category)); got != tt.want {
				t.Errorf("got %d %s issues, want %d: %+v", got, tt.category, tt.want, issues)
			}
		})
	}
}

func TestContradictionSuggestsFirstValue(t *testing.T) {
	in := input([]manuscript.Scene{scene("s1", 1, "The door was red."), scene("s2", 2, "The door was blue.")})
	issues := byCategory(detectPlotIssues(analyse(in)), CategoryContradiction)
	if len(issues) != 1 {
		t.Fatalf("got %d contradictions, want 1", len(issues))
	}
	is := issues[0]
	if is.Severity != SeverityError || !is.AutoFixAvailable {
		t.Errorf("got severity %s, autofix %v", is.Severity, is.AutoFixAvailable)
	}
	if is.Suggestions[0] != `Standardize to "red"` {
		t.Errorf("Suggestions[0] = %q", is.Suggestions[0])
	}
}

func TestUnresolvedThread(t *testing.T) {
	heist := func(s manuscript.Scene) manuscript.Scene {
		s.Metadata = &manuscript.SceneMetadata{PlotThread: "heist"}
		return s
	}
	in := input([]manuscript.Scene{
		heist(scene("s1", 1, "They planned the job.")),
		heist(scene("s2", 2, "The vault door held.")),
	})
	issues := byCategory(detectPlotIssues(analyse(in)), CategoryThread)
	if len(issues) != 1 {
		t.Fatalf("got %d thread issues, want 1", len(issues))
	}
	if issues[0].Severity != SeveritySuggestion || len(issues[0].AffectedItems) != 2 {
		t.Errorf("unexpected issue: %+v", issues[0])
	}

	in.Scenes[1].Content = "The case was solved."
	if got := len(byCategory(detectPlotIssues(analyse(in)), CategoryThread)); got != 0 {
		t.Errorf("resolved thread still flagged")
	}
}

func TestDialogueDetector(t *testing.T) {
	t.Run("voice drift", func(t *testing.T) {
		in := input([]manuscript.Scene{
			scene("s1", 1, "Short one. Tiny two."),
			scene("s2", 2, "The long procession wound slowly through the narrow streets of the old town toward the harbour gates."),
		})
		if got := len(byCategory(detectDialogueIssues(analyse(in)), CategoryVoice)); got != 1 {
			t.Errorf("got %d voice issues, want 1", got)
		}
	})

	t.Run("mixed dialect", func(t *testing.T) {
		in := input([]manuscript.Scene{
			withMeta(scene("s1", 1, "Pip: I love the colour of your truck."), "", nil, "Pip"),
		}, character("pip", "Pip"))
		issues := byCategory(detectDialogueIssues(analyse(in)), CategoryDialect)
		if len(issues) != 1 {
			t.Fatalf("got %d dialect issues, want 1", len(issues))
		}
		if issues[0].Severity != SeverityWarning {
			t.Errorf("Severity = %s, want warning", issues[0].Severity)
		}
	})

	t.Run("quoted speech counts as dialogue", func(t *testing.T) {
		in := input([]manuscript.Scene{
			withMeta(scene("s1", 1, `"Pass me the colour chart from the truck," Pip said.`), "", nil, "Pip"),
		}, character("pip", "Pip"))
		if got := len(byCategory(detectDialogueIssues(analyse(in)), CategoryDialect)); got != 1 {
			t.Errorf("got %d dialect issues, want 1", got)
		}
	})

	t.Run("knowledge of a later event", func(t *testing.T) {
		early := withMeta(scene("a", 1, "Pip: We must prepare for the Battle of Ash."), "", nil, "Pip")
		battle := scene("b", 2, "Swords clashed.")
		battle.Title = "Battle of Ash"
		in := input([]manuscript.Scene{early, battle}, character("pip", "Pip"))
		in.Timeline = timelineFor(early, battle)

		issues := byCategory(detectDialogueIssues(analyse(in)), CategoryKnowledge)
		if len(issues) != 1 {
			t.Fatalf("got %d knowledge issues, want 1", len(issues))
		}
		if issues[0].Severity != SeverityError {
			t.Errorf("Severity = %s, want error", issues[0].Severity)
		}
	})
}

func TestContinuityDetector(t *testing.T) {
	tests := []struct {
		name       string
		scenes     []manuscript.Scene
		characters []manuscript.Character
		category   string
		want       int
	}{
		{
			name: "lost prop breaks",
			scenes: []manuscript.Scene{
				scene("s1", 1, "The amulet was lost in the river."),
				scene("s2", 2, "The amulet was broken beyond repair."),
			},
			category: CategoryProp,
			want:     1,
		},
		{
			name: "lost prop found then broken",
			scenes: []manuscript.Scene{
				scene("s1", 1, "The amulet was lost in the river."),
				scene("s2", 2, "The amulet was found by a fisherman."),
				scene("s3", 3, "The amulet was broken beyond repair."),
			},
			category: CategoryProp,
			want:     0,
		},
		{
			name:       "recovery without injury",
			scenes:     []manuscript.Scene{scene("s1", 1, "Tam healed quickly.")},
			characters: []manuscript.Character{character("tam", "Tam")},
			category:   CategoryInjury,
			want:       1,
		},
		{
			name: "injured while injured",
			scenes: []manuscript.Scene{
				scene("s1", 1, "Tam was wounded in the fight."),
				scene("s2", 2, "Tam was stabbed again."),
			},
			characters: []manuscript.Character{character("tam", "Tam")},
			category:   CategoryInjury,
			want:       1,
		},
		{
			name: "injury then recovery",
			scenes: []manuscript.Scene{
				scene("s1", 1, "Tam was wounded in the fight."),
				scene("s2", 2, "Tam had healed by spring."),
			},
			characters: []manuscript.Character{character("tam", "Tam")},
			category:   CategoryInjury,
			want:       0,
		},
		{
			name:       "outfit changes mid-scene",
			scenes:     []manuscript.Scene{scene("s1", 1, "Lia wore a red cloak. Later Lia wore a green dress.")},
			characters: []manuscript.Character{character("lia", "Lia")},
			category:   CategoryClothing,
			want:       1,
		},
		{
			name:       "outfit changes after a scene break",
			scenes:     []manuscript.Scene{scene("s1", 1, "Lia wore a red cloak.\n***\nLia wore a green dress.")},
			characters: []manuscript.Character{character("lia", "Lia")},
			category:   CategoryClothing,
			want:       0,
		},
		{
			name:       "outfits of different characters",
			scenes:     []manuscript.Scene{scene("s1", 1, "Lia wore a red cloak while Tom wore a blue coat.")},
			characters: []manuscript.Character{character("lia", "Lia"), character("tom", "Tom")},
			category:   CategoryClothing,
			want:       0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := detectContinuityIssues(analyse(input(tt.scenes, tt.characters...)))
			if got := len(byCategory(issues, tt.category)); got != tt.want {
				t.Errorf("got %d %s issues, want %d: %+v", got, tt.category, tt.want, issues)
			}
		})
	}
}

func TestWorldRulesDetector(t *testing.T) {
	fantasy := func(scenes ...manuscript.Scene) manuscript.Input {
		in := input(scenes)
		in.Project.Genre = "High Fantasy"
		return in
	}
	tests := []struct {
		name     string
		in       manuscript.Input
		category string
		severity Severity
		want     int
	}{
		{
			name: "cannot rule broken",
			in: fantasy(
				scene("s1", 1, "Magic cannot raise the dead."),
				scene("s2", 2, "A quiet day."),
				scene("s3", 3, "She cast a spell to raise the dead."),
			),
			category: CategoryMagic, severity: SeverityError, want: 1,
		},
		{
			name: "cannot rule respected",
			in: fantasy(
				scene("s1", 1, "Magic cannot raise the dead."),
				scene("s2", 2, "A quiet day."),
				scene("s3", 3, "She tried, but her spell could not raise the dead."),
			),
			category: CategoryMagic, severity: SeverityError, want: 0,
		},
		{
			name: "requirement skipped",
			in: fantasy(
				scene("s1", 1, "Magic requires a blood offering."),
				scene("s2", 2, "A quiet day."),
				scene("s3", 3, "He cast the spell without blood."),
			),
			category: CategoryMagic, severity: SeverityWarning, want: 1,
		},
		{
			name: "rules only apply to fantasy",
			in: input([]manuscript.Scene{
				scene("s1", 1, "Magic cannot raise the dead."),
				scene("s2", 2, "A quiet day."),
				scene("s3", 3, "She cast a spell to raise the dead."),
			}),
			category: CategoryMagic, severity: SeverityError, want: 0,
		},
		{
			name: "mixed eras",
			in: input([]manuscript.Scene{
				scene("s1", 1, "Knights loaded the trebuchet."),
				scene("s2", 2, "A hologram flickered."),
			}),
			category: CategoryTechnology, severity: SeverityWarning, want: 1,
		},
		{
			name: "mixed eras explained",
			in: input([]manuscript.Scene{
				scene("s1", 1, "Knights loaded the trebuchet."),
				scene("s2", 2, "A hologram flickered beside the portal."),
			}),
			category: CategoryTechnology, severity: SeverityWarning, want: 0,
		},
		{
			name: "too many greetings",
			in: input([]manuscript.Scene{
				scene("s1", 1, "Hello, friend. Greetings, stranger. Hail, traveller."),
				scene("s2", 2, "Namaste. Shalom. Bonjour."),
			}),
			category: CategoryCulture, severity: SeveritySuggestion, want: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got int
			for _, is := range byCategory(detectWorldRuleIssues(analyse(tt.in)), tt.category) {
				if is.Severity == tt.severity {
					got++
				}
			}
			if got != tt.want {
				t.Errorf("got %d %s/%s issues, want %d", got, tt.category, tt.severity, tt.want)
			}
		})
	}
}

func TestNameDetector(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		characters []manuscript.Character
		want       int
	}{
		{"transposed letters", "Elyra smiled. Elrya frowned.", []manuscript.Character{character("e", "Elyra")}, 1},
		{"canonical only", "Elyra smiled. Elyra frowned.", []manuscript.Character{character("e", "Elyra")}, 0},
		{"other character's name", "Elyra smiled. Elara frowned.",
			[]manuscript.Character{character("e", "Elyra"), character("a", "Elara")}, 0},
		{"short names are skipped", "Tam smiled. Tom frowned.", []manuscript.Character{character("t", "Tam")}, 0},
		{"lower-case words are ignored", "Elyra smiled at the elrya tree.", []manuscript.Character{character("e", "Elyra")}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := input([]manuscript.Scene{scene("s1", 1, tt.content)}, tt.characters...)
			issues := detectNameIssues(analyse(in))
			if len(issues) != tt.want {
				t.Errorf("got %d naming issues, want %d: %+v", len(issues), tt.want, issues)
			}
			for _, is := range issues {
				if is.Type != TypeCharacter || !strings.HasPrefix(is.Suggestions[0], "Standardize to") {
					t.Errorf("unexpected issue shape: %+v", is)
				}
			}
		})
	}
}

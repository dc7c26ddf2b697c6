package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dotcommander/continuity/internal/consistency"
)

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "invalid output format",
			mutate:  func(c *Config) { c.Output.Format = "pdf" },
			wantErr: true,
			errMsg:  "Format",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Log.Level = "loud" },
			wantErr: true,
			errMsg:  "Level",
		},
		{
			name:    "unknown detector",
			mutate:  func(c *Config) { c.Analysis.Disabled = []string{"spelling"} },
			wantErr: true,
			errMsg:  "Disabled",
		},
		{
			name:    "similarity above one",
			mutate:  func(c *Config) { c.Analysis.Thresholds.NameSimilarity = 1.5 },
			wantErr: true,
			errMsg:  "NameSimilarity",
		},
		{
			name:    "long scene limit below short limit",
			mutate:  func(c *Config) { c.Analysis.Thresholds.LongSceneWords = 100 },
			wantErr: true,
			errMsg:  "LongSceneWords",
		},
		{
			name:    "debounce too short",
			mutate:  func(c *Config) { c.Watch.Debounce = time.Millisecond },
			wantErr: true,
			errMsg:  "Debounce",
		},
		{
			name:    "distance without endpoint",
			mutate:  func(c *Config) { c.Analysis.Thresholds.Distances = []DistanceConfig{{From: "Forest", KM: 5}} },
			wantErr: true,
			errMsg:  "To",
		},
		{
			name:   "empty log level falls back to info",
			mutate: func(c *Config) { c.Log.Level = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error but got none")
				} else if tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("expected error containing %q, got %q", tt.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestLoadFromMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("CONTINUITY_LOG_LEVEL", "")
	t.Setenv("CONTINUITY_OUTPUT_DIR", "")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("Debounce = %v, want 250ms", cfg.Watch.Debounce)
	}
	if cfg.Analysis.Thresholds.TravelWindow != 30*time.Minute {
		t.Errorf("TravelWindow = %v, want 30m", cfg.Analysis.Thresholds.TravelWindow)
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlData := `
analysis:
  parallelism: 4
  disabled_detectors: [pacing]
  thresholds:
    travel_window: 45m
    name_similarity: 0.9
    distances:
      - from: Forest
        to: Castle
        km: 12
output:
  format: json
watch:
  debounce: 500ms
`
	if err := os.WriteFile(path, []byte(yamlData), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONTINUITY_LOG_LEVEL", "DEBUG")
	t.Setenv("CONTINUITY_OUTPUT_DIR", filepath.Join(dir, "reports"))

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}

	if cfg.Analysis.Parallelism != 4 || cfg.Output.Format != "json" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond || cfg.Watch.ReanalysesPerMinute != 30 {
		t.Errorf("watch config = %+v", cfg.Watch)
	}
	if cfg.Analysis.Thresholds.ShortSceneWords != 200 {
		t.Errorf("unset threshold lost its default: %d", cfg.Analysis.Thresholds.ShortSceneWords)
	}
	if cfg.Log.Level != "debug" || cfg.SlogLevel().String() != "DEBUG" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.Output.Dir != filepath.Join(dir, "reports") {
		t.Errorf("Output.Dir = %q", cfg.Output.Dir)
	}

	th := cfg.Analysis.Thresholds.ToThresholds()
	if th.TravelWindow != 45*time.Minute || th.NameSimilarity != 0.9 {
		t.Errorf("thresholds = %+v", th)
	}
	if km := th.Distances[consistency.DistanceKey("castle", "forest")]; km != 12 {
		t.Errorf("distance = %v, want 12", km)
	}
	if th.MinNameLength != consistency.DefaultThresholds().MinNameLength {
		t.Error("threshold missing from the file lost its default")
	}
}

func TestLoadFromRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("analysis: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil || !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("CONTINUITY_CONFIG", "/tmp/explicit.yaml")
	if got := getConfigPath(); got != "/tmp/explicit.yaml" {
		t.Errorf("getConfigPath() = %q", got)
	}

	t.Setenv("CONTINUITY_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := getConfigPath(); got != filepath.Join("/tmp/xdg", "continuity", "config.yaml") {
		t.Errorf("getConfigPath() = %q", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("CONTINUITY_LOG_LEVEL", "")
	t.Setenv("CONTINUITY_OUTPUT_DIR", "")

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Analysis.Parallelism = 2
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Analysis.Parallelism != 2 || loaded.Watch.Debounce != cfg.Watch.Debounce {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Analysis.Disabled = []string{"pacing"}
	if got := len(cfg.EngineOptions(nil)); got != 4 {
		t.Errorf("got %d options, want 4", got)
	}
	// nil logger is ignored by consistency.WithLogger
	_ = consistency.New(cfg.EngineOptions(nil)...)
}

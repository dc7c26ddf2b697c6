package config

import (
	"time"

	"github.com/dotcommander/continuity/internal/consistency"
)

type AnalysisConfig struct {
	// Parallelism is the number of detectors run concurrently; 0 or 1 runs
	// them in sequence.
	Parallelism int              `yaml:"parallelism" validate:"min=0,max=64"`
	Disabled    []string         `yaml:"disabled_detectors" validate:"dive,oneof=character timeline location plot dialogue continuity world-rules names pacing"`
	Thresholds  ThresholdsConfig `yaml:"thresholds" validate:"required"`
}

type ThresholdsConfig struct {
	TravelWindow        time.Duration    `yaml:"travel_window" validate:"min=1m,max=24h"`
	SeasonWindowDays    float64          `yaml:"season_window_days" validate:"min=1,max=365"`
	AgeToleranceYears   float64          `yaml:"age_tolerance_years" validate:"min=0,max=10"`
	DefaultDistanceKM   float64          `yaml:"default_distance_km" validate:"min=0"`
	MaxSpeedKMH         float64          `yaml:"max_speed_kmh" validate:"gt=0"`
	Distances           []DistanceConfig `yaml:"distances" validate:"dive"`
	VoiceDriftWords     float64          `yaml:"voice_drift_words" validate:"gt=0"`
	ComplexityThreshold float64          `yaml:"complexity_threshold" validate:"gt=0,lte=1"`
	NameSimilarity      float64          `yaml:"name_similarity" validate:"gt=0,lte=1"`
	LongSceneWords      int              `yaml:"long_scene_words" validate:"gtfield=ShortSceneWords"`
	ShortSceneWords     int              `yaml:"short_scene_words" validate:"min=0"`
	MaxCulturalVariants int              `yaml:"max_cultural_variants" validate:"min=1"`
}

// DistanceConfig is one entry of the location distance table
type DistanceConfig struct {
	From string  `yaml:"from" validate:"required"`
	To   string  `yaml:"to" validate:"required"`
	KM   float64 `yaml:"km" validate:"min=0"`
}

type WatchConfig struct {
	Debounce            time.Duration `yaml:"debounce" validate:"min=10ms,max=1m"`
	ReanalysesPerMinute int           `yaml:"reanalyses_per_minute" validate:"required,min=1,max=600"`
	BurstSize           int           `yaml:"burst_size" validate:"required,min=1,max=100"`
}

func DefaultAnalysis() AnalysisConfig {
	t := consistency.DefaultThresholds()
	return AnalysisConfig{
		Thresholds: ThresholdsConfig{
			TravelWindow:        t.TravelWindow,
			SeasonWindowDays:    t.SeasonWindowDays,
			AgeToleranceYears:   t.AgeToleranceYears,
			DefaultDistanceKM:   t.DefaultDistanceKM,
			MaxSpeedKMH:         t.MaxSpeedKMH,
			VoiceDriftWords:     t.VoiceDriftWords,
			ComplexityThreshold: t.ComplexityThreshold,
			NameSimilarity:      t.NameSimilarity,
			LongSceneWords:      t.LongSceneWords,
			ShortSceneWords:     t.ShortSceneWords,
			MaxCulturalVariants: t.MaxCulturalVariants,
		},
	}
}

func DefaultWatch() WatchConfig {
	return WatchConfig{
		Debounce:            250 * time.Millisecond,
		ReanalysesPerMinute: 30,
		BurstSize:           3,
	}
}

// ToThresholds converts the configured limits into engine thresholds.
// Values the file cannot express keep their defaults.
func (t ThresholdsConfig) ToThresholds() consistency.Thresholds {
	th := consistency.DefaultThresholds()
	th.TravelWindow = t.TravelWindow
	th.SeasonWindowDays = t.SeasonWindowDays
	th.AgeToleranceYears = t.AgeToleranceYears
	th.DefaultDistanceKM = t.DefaultDistanceKM
	th.MaxSpeedKMH = t.MaxSpeedKMH
	th.VoiceDriftWords = t.VoiceDriftWords
	th.ComplexityThreshold = t.ComplexityThreshold
	th.NameSimilarity = t.NameSimilarity
	th.LongSceneWords = t.LongSceneWords
	th.ShortSceneWords = t.ShortSceneWords
	th.MaxCulturalVariants = t.MaxCulturalVariants
	th.Distances = make(map[string]float64, len(t.Distances))
	for _, d := range t.Distances {
		th.Distances[consistency.DistanceKey(d.From, d.To)] = d.KM
	}
	return th
}

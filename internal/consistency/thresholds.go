package consistency

import (
	"sort"
	"strings"
	"time"

	"github.com/dotcommander/continuity/internal/textutil"
)

// Thresholds holds the numeric limits detectors compare against
type Thresholds struct {
	// TravelWindow is the shortest plausible gap between two appearances of
	// one character in different places.
	TravelWindow time.Duration
	// SeasonWindowDays is the shortest in-story gap that allows a change of season.
	SeasonWindowDays float64
	// AgeToleranceYears is how far a stated age may drift from the projection.
	AgeToleranceYears float64
	// DefaultDistanceKM is used for location pairs missing from Distances.
	DefaultDistanceKM float64
	MaxSpeedKMH       float64
	// Distances maps DistanceKey(a, b) to kilometres.
	Distances map[string]float64

	VoiceDriftWords     float64
	ComplexityThreshold float64
	// MinComplexityWords is the dialogue sample size below which vocabulary
	// complexity is not judged.
	MinComplexityWords int

	NameSimilarity float64
	// MinNameLength skips names too short to compare meaningfully.
	MinNameLength int

	LongSceneWords      int
	ShortSceneWords     int
	MaxCulturalVariants int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		TravelWindow:        30 * time.Minute,
		SeasonWindowDays:    30,
		AgeToleranceYears:   1,
		DefaultDistanceKM:   100,
		MaxSpeedKMH:         100,
		Distances:           map[string]float64{},
		VoiceDriftWords:     10,
		ComplexityThreshold: 0.7,
		MinComplexityWords:  10,
		NameSimilarity:      0.8,
		MinNameLength:       4,
		LongSceneWords:      3000,
		ShortSceneWords:     200,
		MaxCulturalVariants: 5,
	}
}

// DistanceKey builds the order-independent lookup key for a location pair
func DistanceKey(a, b string) string {
	pair := []string{textutil.Fold(strings.TrimSpace(a)), textutil.Fold(strings.TrimSpace(b))}
	sort.Strings(pair)
	return pair[0] + "|" + pair[1]
}

// distance returns the travel distance between two named locations
func (t Thresholds) distance(a, b string) float64 {
	if km, ok := t.Distances[DistanceKey(a, b)]; ok && km >= 0 {
		return km
	}
	return t.DefaultDistanceKM
}

package textutil

import (
	"math"
	"time"
)

const hoursPerDay = 24

// DaysPerYear is the mean calendar year used for age projection
const DaysPerYear = 365.25

// ElapsedDays returns the absolute number of in-story days between two
// scenes. When either timestamp is missing the scene-order distance is used
// as a day count and approximated is true.
func ElapsedDays(a, b *time.Time, orderA, orderB int) (days float64, approximated bool) {
	if a != nil && b != nil {
		return math.Abs(b.Sub(*a).Hours()) / hoursPerDay, false
	}
	return math.Abs(float64(orderB - orderA)), true
}

// ElapsedHours returns b - a in hours; ok is false when either is missing.
func ElapsedHours(a, b *time.Time) (hours float64, ok bool) {
	if a == nil || b == nil {
		return 0, false
	}
	return b.Sub(*a).Hours(), true
}

// ProjectAge returns the age expected after the given number of days.
func ProjectAge(age int, days float64) float64 {
	return float64(age) + days/DaysPerYear
}

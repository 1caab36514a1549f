// Package timeindex translates between (day, hour) pairs and the single
// monotonically increasing global-hour index used across the planning
// horizon.
package timeindex

// MaxDay is the number of playable days in a session.
const MaxDay = 30

// MaxHour is the last valid global hour index, inclusive. Day 0..29 and
// hour 0..23 map onto 0..719.
const MaxHour = MaxDay*24 - 1

// ToGlobalHour converts (day, hour) into a global hour index.
func ToGlobalHour(day, hour int) int { return day*24 + hour }

// FromGlobalHour converts a global hour index back into (day, hour). It is
// the exact inverse of ToGlobalHour.
func FromGlobalHour(t int) (day, hour int) { return t / 24, t % 24 }

// Clamp caps t at MaxHour. Movements may never land beyond the horizon.
func Clamp(t int) int {
	if t > MaxHour {
		return MaxHour
	}
	return t
}

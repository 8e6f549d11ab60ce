package models

import "time"

// BlackoutPeriod is a closed interval during which no slot may be used.
type BlackoutPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ScheduleConfig is supplied at construction and immutable afterwards.
type ScheduleConfig struct {
	TimeSlots       []time.Time
	BlackoutPeriods []BlackoutPeriod
	MaxPostsPerDay  int
	// Location is the reference timezone for the per-day cap.
	// time.Local when nil.
	Location *time.Location
}

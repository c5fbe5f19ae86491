package entity

import "time"

// TimeSlot is one fixed-width interval of a doctor's day and whether it
// is free. Derived from the current appointment set on demand; never
// persisted.
type TimeSlot struct {
	Date        time.Time `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	IsAvailable bool      `json:"is_available"`
}

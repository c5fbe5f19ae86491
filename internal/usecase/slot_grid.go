package usecase

import (
	"fmt"
	"time"

	"hospital-intake-api/internal/domain/entity"
)

// Clock values are minutes since midnight. Appointment times are
// zero-padded HH:MM strings, so the two representations convert
// losslessly and string comparison matches minute comparison.

func parseClock(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// normalizeDate strips the time-of-day component, keyed on the value's
// own calendar date. All stored and queried dates go through this so
// date equality is exact.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// hasConflict reports whether any appointment intersects the half-open
// interval [start, end). Touching endpoints are not a conflict.
func hasConflict(appointments []entity.Appointment, start, end string) bool {
	for i := range appointments {
		if appointments[i].OverlapsRange(start, end) {
			return true
		}
	}
	return false
}

// buildSlotGrid subdivides the operating window into fixed-width slots
// and marks each one against the appointment set. The grid always spans
// the full window: strictly increasing, contiguous, no overlaps between
// generated slots.
func buildSlotGrid(appointments []entity.Appointment, date time.Time, windowStart, windowEnd, slotMinutes int) []entity.TimeSlot {
	var slots []entity.TimeSlot

	for current := windowStart; current < windowEnd; current += slotMinutes {
		slotEnd := current + slotMinutes
		startStr := formatClock(current)
		endStr := formatClock(slotEnd)

		slots = append(slots, entity.TimeSlot{
			Date:        date,
			StartTime:   startStr,
			EndTime:     endStr,
			IsAvailable: !hasConflict(appointments, startStr, endStr),
		})
	}

	return slots
}

package usecase

import (
	"testing"
	"time"

	"hospital-intake-api/internal/domain/entity"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:00", 480, false},
		{"08:30", 510, false},
		{"17:00", 1020, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"8:00am", 0, true},
		{"", 0, true},
		{"banana", 0, true},
	}

	for _, tt := range tests {
		got, err := parseClock(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseClock(%q) expected error, got %d", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseClock(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseClock(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestFormatClockRoundTrip(t *testing.T) {
	for minutes := 0; minutes < 24*60; minutes += 7 {
		formatted := formatClock(minutes)
		parsed, err := parseClock(formatted)
		if err != nil {
			t.Fatalf("parseClock(%q) failed: %v", formatted, err)
		}
		if parsed != minutes {
			t.Fatalf("round trip %d -> %q -> %d", minutes, formatted, parsed)
		}
	}
}

func TestHasConflict(t *testing.T) {
	existing := []entity.Appointment{
		{StartTime: "09:00", EndTime: "10:00"},
	}

	tests := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"identical interval", "09:00", "10:00", true},
		{"fully inside", "09:15", "09:45", true},
		{"fully containing", "08:30", "10:30", true},
		{"overlapping start", "08:30", "09:30", true},
		{"overlapping end", "09:30", "10:30", true},
		{"touching before", "08:00", "09:00", false},
		{"touching after", "10:00", "11:00", false},
		{"well before", "07:00", "08:00", false},
		{"well after", "11:00", "12:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasConflict(existing, tt.start, tt.end); got != tt.want {
				t.Errorf("hasConflict(%s-%s) = %v, want %v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestHasConflictSymmetry(t *testing.T) {
	a := entity.Appointment{StartTime: "09:00", EndTime: "10:30"}
	b := entity.Appointment{StartTime: "10:00", EndTime: "11:00"}

	ab := hasConflict([]entity.Appointment{a}, b.StartTime, b.EndTime)
	ba := hasConflict([]entity.Appointment{b}, a.StartTime, a.EndTime)
	if ab != ba {
		t.Errorf("overlap must be symmetric: a vs b = %v, b vs a = %v", ab, ba)
	}
	if !ab {
		t.Error("expected 09:00-10:30 and 10:00-11:00 to conflict")
	}
}

func TestBuildSlotGridEmptySchedule(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	// Default window: 08:00-17:00, 30 minute slots
	slots := buildSlotGrid(nil, date, 480, 1020, 30)

	if len(slots) != 18 {
		t.Fatalf("expected 18 slots, got %d", len(slots))
	}
	if slots[0].StartTime != "08:00" || slots[0].EndTime != "08:30" {
		t.Errorf("first slot = %s-%s, want 08:00-08:30", slots[0].StartTime, slots[0].EndTime)
	}
	last := slots[len(slots)-1]
	if last.StartTime != "16:30" || last.EndTime != "17:00" {
		t.Errorf("last slot = %s-%s, want 16:30-17:00", last.StartTime, last.EndTime)
	}

	for i, slot := range slots {
		if !slot.IsAvailable {
			t.Errorf("slot %d (%s-%s) should be available on an empty schedule", i, slot.StartTime, slot.EndTime)
		}
		if !slot.Date.Equal(date) {
			t.Errorf("slot %d has date %v, want %v", i, slot.Date, date)
		}
	}
}

func TestBuildSlotGridContiguous(t *testing.T) {
	slots := buildSlotGrid(nil, time.Now(), 480, 1020, 30)

	for i := 1; i < len(slots); i++ {
		if slots[i].StartTime != slots[i-1].EndTime {
			t.Errorf("gap between slot %d and %d: %s != %s", i-1, i, slots[i-1].EndTime, slots[i].StartTime)
		}
		if slots[i].StartTime <= slots[i-1].StartTime {
			t.Errorf("slots not strictly increasing at %d: %s then %s", i, slots[i-1].StartTime, slots[i].StartTime)
		}
	}
}

func TestBuildSlotGridMarksBookedSlots(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	booked := []entity.Appointment{
		{StartTime: "09:00", EndTime: "10:00", Status: entity.AppointmentStatusScheduled},
	}

	slots := buildSlotGrid(booked, date, 480, 1020, 30)

	unavailable := map[string]bool{}
	for _, slot := range slots {
		if !slot.IsAvailable {
			unavailable[slot.StartTime] = true
		}
	}

	if len(unavailable) != 2 {
		t.Fatalf("expected exactly 2 unavailable slots, got %d: %v", len(unavailable), unavailable)
	}
	if !unavailable["09:00"] || !unavailable["09:30"] {
		t.Errorf("expected 09:00 and 09:30 to be unavailable, got %v", unavailable)
	}
}

func TestBuildSlotGridOddWindow(t *testing.T) {
	// Slots start while the window is open; the final slot keeps its
	// full width even when it runs past the window end.
	slots := buildSlotGrid(nil, time.Now(), 480, 525, 30)

	if len(slots) != 2 {
		t.Fatalf("expected 2 slots for 08:00-08:45 window, got %d", len(slots))
	}
	if slots[1].EndTime != "09:00" {
		t.Errorf("final slot end = %s", slots[1].EndTime)
	}
}

func TestNormalizeDate(t *testing.T) {
	loc := time.FixedZone("X", 5*3600)
	input := time.Date(2026, 7, 14, 23, 45, 12, 99, loc)

	got := normalizeDate(input)
	want := time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("normalizeDate = %v, want %v", got, want)
	}

	if !normalizeDate(got).Equal(got) {
		t.Error("normalizeDate must be idempotent")
	}
}

// Package timetable models the fixed weekly teaching grid and allocates
// first-fit slots for teacher/student pairings.
package timetable

import "errors"

// ErrNoSlotAvailable is returned when every slot of the weekly grid is taken.
var ErrNoSlotAvailable = errors.New("no available time slots")

// Days is the ordered list of teaching days.
var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// TimeSlots is the ordered list of one-hour teaching windows.
var TimeSlots = []string{
	"08:00 - 09:00",
	"09:00 - 10:00",
	"10:00 - 11:00",
	"11:00 - 12:00",
	"12:00 - 13:00",
	"13:00 - 14:00",
	"14:00 - 15:00",
	"15:00 - 16:00",
	"16:00 - 17:00",
	"17:00 - 18:00",
}

// Capacity is the number of slots in the weekly grid.
func Capacity() int {
	return len(Days) * len(TimeSlots)
}

// Slot is a single (day, time range) cell of the grid.
type Slot struct {
	Day      string `json:"day_of_week"`
	TimeSlot string `json:"time_slot"`
}

// Key returns the identifier used to detect occupied slots.
func (s Slot) Key() string {
	return s.Day + "-" + s.TimeSlot
}

// Grid returns every slot in allocation order.
func Grid() []Slot {
	slots := make([]Slot, 0, Capacity())
	for _, day := range Days {
		for _, timeSlot := range TimeSlots {
			slots = append(slots, Slot{Day: day, TimeSlot: timeSlot})
		}
	}
	return slots
}

// Allocate returns the first slot in grid order that is not in occupied.
func Allocate(occupied []Slot) (Slot, error) {
	taken := make(map[string]struct{}, len(occupied))
	for _, slot := range occupied {
		taken[slot.Key()] = struct{}{}
	}

	for _, day := range Days {
		for _, timeSlot := range TimeSlots {
			candidate := Slot{Day: day, TimeSlot: timeSlot}
			if _, busy := taken[candidate.Key()]; !busy {
				return candidate, nil
			}
		}
	}
	return Slot{}, ErrNoSlotAvailable
}

// DayIndex returns the position of day in Days, or -1.
func DayIndex(day string) int {
	for i, d := range Days {
		if d == day {
			return i
		}
	}
	return -1
}

// TimeSlotIndex returns the position of slot in TimeSlots, or -1.
func TimeSlotIndex(slot string) int {
	for i, s := range TimeSlots {
		if s == slot {
			return i
		}
	}
	return -1
}

// Less orders slots by day, then by time.
func Less(a, b Slot) bool {
	ai, bi := DayIndex(a.Day), DayIndex(b.Day)
	if ai != bi {
		return ai < bi
	}
	return TimeSlotIndex(a.TimeSlot) < TimeSlotIndex(b.TimeSlot)
}

// Package watering derives a plant's next watering date and how urgent it is.
package watering

import "github.com/umyakar/a3-UtkuYakar/internal/calendar"

// Urgency is the tier shown next to every plant.
type Urgency string

const (
	OnTrack Urgency = "OnTrack"
	DueSoon Urgency = "DueSoon"
	Overdue Urgency = "Overdue"
)

// DueSoonWindow is how many days ahead of the due date a plant counts as due soon.
const DueSoonWindow = 2

// Schedule is the derived, never stored, part of a plant.
type Schedule struct {
	NextWaterDate calendar.Date
	Urgency       Urgency
}

// Classify expects intervalDays to be validated (>= 1) by the caller.
// A plant due today is DueSoon, not Overdue.
func Classify(lastWatered calendar.Date, intervalDays int, today calendar.Date) Schedule {
	next := lastWatered.AddDays(intervalDays)
	diff := calendar.DaysBetween(today, next)

	var u Urgency
	switch {
	case diff < 0:
		u = Overdue
	case diff <= DueSoonWindow:
		u = DueSoon
	default:
		u = OnTrack
	}
	return Schedule{NextWaterDate: next, Urgency: u}
}

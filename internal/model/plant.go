// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — plain data carriers with
// struct tags for JSON serialization. No behaviour lives here; the rules
// about when a plant is due belong to the schedule package.
package model

import "time"

// DateFormat is the persisted format for calendar dates (last_watered).
// Date-only on purpose: watering schedules work in whole days, so a plant
// watered at 23:50 counts the same as one watered at 08:00.
const DateFormat = "2006-01-02"

// TimestampFormat is the persisted format for watering-log timestamps.
const TimestampFormat = "2006-01-02 15:04:05"

// Plant represents a plant in the shared growing space.
//
// LastWatered is stored as a "YYYY-MM-DD" string rather than a time.Time:
// that is the on-disk format, and an empty string is the natural zero value
// for "never watered". Parsing happens in the schedule package, which
// treats an unparsable value as due rather than failing.
type Plant struct {
	ID           string    `json:"id"`
	Owner        string    `json:"owner"` // username of the owning user
	Name         string    `json:"name"`
	IntervalDays int       `json:"intervalDays"` // watering frequency, >= 1
	LastWatered  string    `json:"lastWatered"`  // "YYYY-MM-DD", "" = never
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PlantStatus is a Plant annotated with its computed due state.
// Returned by list endpoints so clients never re-implement the due rule.
type PlantStatus struct {
	Plant
	Due      bool   `json:"due"`
	NextDue  string `json:"nextDue,omitempty"` // "YYYY-MM-DD", empty if never watered
}

package model

import "time"

// WateringEvent is one append-only log record of a watering action.
//
// Events are never mutated or deleted. The plant's last_watered column is
// the fast-path "current state"; the event log is the audit trail. The two
// are written in a single transaction so they cannot diverge.
type WateringEvent struct {
	ID        string    `json:"id"`
	PlantID   string    `json:"plantId"`
	WateredBy string    `json:"wateredBy"` // username of whoever watered it
	WateredAt time.Time `json:"wateredAt"`
}

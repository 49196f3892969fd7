package model

import "time"

// User represents a registered user account.
//
// WHY Email string (not *string)?
// Email is optional — it only gates reminder delivery. We use an empty
// string as the zero value rather than a nullable pointer; the reminder
// recipient query simply skips empty emails.
//
// PasswordHash is a bcrypt hash (salt embedded). The json:"-" tag excludes
// it from every API response — it must never leave the server.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        string    `json:"email"` // optional; "" = receives no reminders
	CreatedAt    time.Time `json:"createdAt"`
}

// Package models defines the persisted entities of the inventory admin:
// profiles, the two vehicle tables, and the tree/leaf/seed tables.
package models

import "time"

// Profile represents an account. Password always holds a bcrypt hash; the
// plaintext is never stored or logged. ResetToken is non-nil only while a
// password-recovery token is outstanding.
type Profile struct {
	ID            int64
	Name          string
	Username      string
	Email         string
	Password      string
	Country       string
	Photo         *string
	ResetToken    *string
	ResetIssuedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

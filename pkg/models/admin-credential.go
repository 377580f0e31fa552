package models

import (
	"time"
)

// AdminCredential is the single bootstrap login for the local UI. The
// password is stored as entered; the credential file lives next to the
// other collections and is meant to be editable by hand.
type AdminCredential struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"created_at"`
}

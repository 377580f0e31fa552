package models

import (
	"time"
)

type Patron struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NextPatronID returns max(existing ids)+1, or 1 for an empty collection.
func NextPatronID(patrons []*Patron) int {
	next := 1
	for _, p := range patrons {
		if p.ID >= next {
			next = p.ID + 1
		}
	}
	return next
}

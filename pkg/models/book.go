package models

import (
	"time"
)

// Book type constants.
const (
	BookTypeComics      = "comics"
	BookTypeStory       = "story"
	BookTypeNovel       = "novel"
	BookTypeHighContent = "high-content"
)

type Book struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Type         string    `json:"type"`
	Language     string    `json:"language"`
	Copies       int       `json:"copies,omitempty"`
	Availability int       `json:"availability"`
	CreatedAt    time.Time `json:"created_at"`
}

// EffectiveCopies returns the number of copies that count toward
// availability. Books created before the copies field existed have no
// copies value; they count as a single copy.
func (b *Book) EffectiveCopies() int {
	if b.Copies < 1 {
		return 1
	}
	return b.Copies
}

// NextBookID returns max(existing ids)+1, or 1 for an empty collection.
func NextBookID(books []*Book) int {
	next := 1
	for _, b := range books {
		if b.ID >= next {
			next = b.ID + 1
		}
	}
	return next
}

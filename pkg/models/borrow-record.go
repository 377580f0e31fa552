package models

import (
	"time"
)

// Borrow record status constants. A record transitions at most once from
// borrowed to returned; there are no other states.
const (
	BorrowStatusBorrowed = "borrowed"
	BorrowStatusReturned = "returned"
)

type BorrowRecord struct {
	ID           int        `json:"id"`
	PatronID     int        `json:"user_id"`
	BookID       int        `json:"book_id"`
	Status       string     `json:"status"`
	BorrowedDate time.Time  `json:"borrowed_date"`
	ReturnDate   *time.Time `json:"return_date,omitempty"`
}

// IsOpen reports whether the record is still borrowed.
func (r *BorrowRecord) IsOpen() bool {
	return r.Status == BorrowStatusBorrowed
}

// NextBorrowRecordID returns max(existing ids)+1, or 1 for an empty ledger.
func NextBorrowRecordID(records []*BorrowRecord) int {
	next := 1
	for _, r := range records {
		if r.ID >= next {
			next = r.ID + 1
		}
	}
	return next
}

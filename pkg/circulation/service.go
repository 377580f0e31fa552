package circulation

import (
	"sort"
	"time"

	"github.com/bibliodesk/bibliodesk/pkg/errcodes"
	"github.com/bibliodesk/bibliodesk/pkg/models"
	"github.com/bibliodesk/bibliodesk/pkg/store"
	"github.com/pkg/errors"
)

// Service handles the borrow/return ledger and availability
// reconciliation.
type Service struct {
	store *store.Store
}

// NewService creates a new circulation service.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// Borrow records a loan of the given book to the given patron. The
// decision is made against the ledger, not the stored availability:
// a book can be lent while max(1, copies) minus its open records is
// positive. The book row itself is never modified; the stored
// availability is advisory and reconciled separately.
//
// The store is refreshed first so the decision sees what is on disk.
func (s *Service) Borrow(patronID, bookID int) error {
	if err := s.store.Refresh(); err != nil {
		return errors.WithStack(err)
	}

	record := &models.BorrowRecord{
		PatronID:     patronID,
		BookID:       bookID,
		Status:       models.BorrowStatusBorrowed,
		BorrowedDate: time.Now().UTC(),
	}

	return s.store.Update(func(d *store.Data) ([]string, error) {
		var book *models.Book
		for _, b := range d.Books {
			if b.ID == bookID {
				book = b
				break
			}
		}
		if book == nil {
			return nil, errcodes.NotFound("Book")
		}

		open := 0
		for _, r := range d.Borrowings {
			if r.BookID == bookID && r.IsOpen() {
				open++
			}
		}
		if book.EffectiveCopies()-open <= 0 {
			return nil, errcodes.Unavailable("Book is not available - all copies are borrowed")
		}

		record.ID = models.NextBorrowRecordID(d.Borrowings)
		d.Borrowings = append(d.Borrowings, record)
		return []string{store.CollectionBorrowings}, nil
	})
}

// Return closes the first open ledger record matching the patron and
// book. When no open record matches, nothing happens and the call
// still succeeds.
func (s *Service) Return(patronID, bookID int) error {
	return s.store.Update(func(d *store.Data) ([]string, error) {
		for _, r := range d.Borrowings {
			if r.PatronID == patronID && r.BookID == bookID && r.IsOpen() {
				now := time.Now().UTC()
				r.Status = models.BorrowStatusReturned
				r.ReturnDate = &now
				return []string{store.CollectionBorrowings}, nil
			}
		}
		return nil, nil
	})
}

// ComputeAvailability derives a book's actual availability from the
// ledger: max(0, effective copies minus open records).
func ComputeAvailability(book *models.Book, borrowings []*models.BorrowRecord) int {
	open := 0
	for _, r := range borrowings {
		if r.BookID == book.ID && r.IsOpen() {
			open++
		}
	}
	avail := book.EffectiveCopies() - open
	if avail < 0 {
		return 0
	}
	return avail
}

// RecalculateAndPersist refreshes the store, rewrites every stored
// availability that disagrees with the ledger, and returns how many
// book rows were updated.
func (s *Service) RecalculateAndPersist() (int, error) {
	if err := s.store.Refresh(); err != nil {
		return 0, errors.WithStack(err)
	}

	updated := 0
	err := s.store.Update(func(d *store.Data) ([]string, error) {
		for _, b := range d.Books {
			actual := ComputeAvailability(b, d.Borrowings)
			if b.Availability != actual {
				b.Availability = actual
				updated++
			}
		}
		if updated == 0 {
			return nil, nil
		}
		return []string{store.CollectionBooks}, nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// BookDiagnostic describes one book's availability state against the
// ledger.
type BookDiagnostic struct {
	ID                 int                    `json:"id"`
	Title              string                 `json:"title"`
	TotalCopies        int                    `json:"totalCopies"`
	StoredAvailability int                    `json:"storedAvailability"`
	ActualAvailable    int                    `json:"actualAvailable"`
	CurrentlyBorrowed  int                    `json:"currentlyBorrowed"`
	Borrowings         []*models.BorrowRecord `json:"borrowings"`
	IsConsistent       bool                   `json:"isConsistent"`
	CanBorrow          bool                   `json:"canBorrow"`
}

// DiagnosticSummary aggregates a diagnostic run.
type DiagnosticSummary struct {
	TotalBooks        int `json:"totalBooks"`
	ConsistentBooks   int `json:"consistentBooks"`
	InconsistentBooks int `json:"inconsistentBooks"`
	AvailableBooks    int `json:"availableBooks"`
}

// DiagnosticReport compares every book's stored availability with what
// the ledger implies.
func (s *Service) DiagnosticReport() ([]*BookDiagnostic, *DiagnosticSummary, error) {
	report := []*BookDiagnostic{}
	summary := &DiagnosticSummary{}

	err := s.store.View(func(d *store.Data) error {
		for _, b := range d.Books {
			open := []*models.BorrowRecord{}
			for _, r := range d.Borrowings {
				if r.BookID == b.ID && r.IsOpen() {
					open = append(open, r)
				}
			}

			actual := b.EffectiveCopies() - len(open)
			if actual < 0 {
				actual = 0
			}

			diag := &BookDiagnostic{
				ID:                 b.ID,
				Title:              b.Title,
				TotalCopies:        b.EffectiveCopies(),
				StoredAvailability: b.Availability,
				ActualAvailable:    actual,
				CurrentlyBorrowed:  len(open),
				Borrowings:         open,
				IsConsistent:       b.Availability == actual,
				CanBorrow:          actual > 0,
			}
			report = append(report, diag)

			summary.TotalBooks++
			if diag.IsConsistent {
				summary.ConsistentBooks++
			} else {
				summary.InconsistentBooks++
			}
			if diag.CanBorrow {
				summary.AvailableBooks++
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return report, summary, nil
}

// Borrowing is a ledger record joined to its patron and book. Dangling
// references render as "Unknown ..." placeholders instead of failing.
type Borrowing struct {
	ID           int        `json:"id"`
	UserName     string     `json:"user_name"`
	UserEmail    string     `json:"user_email"`
	BookTitle    string     `json:"book_title"`
	BookAuthor   string     `json:"book_author"`
	BorrowedDate time.Time  `json:"borrowed_date"`
	ReturnDate   *time.Time `json:"return_date,omitempty"`
	Status       string     `json:"status"`
	UserID       int        `json:"user_id"`
	BookID       int        `json:"book_id"`
}

// ListBorrowings returns the full ledger joined to patrons and books,
// newest borrow first.
func (s *Service) ListBorrowings() ([]*Borrowing, error) {
	borrowings := []*Borrowing{}
	err := s.store.View(func(d *store.Data) error {
		for _, r := range d.Borrowings {
			row := &Borrowing{
				ID:           r.ID,
				UserName:     "Unknown User",
				UserEmail:    "Unknown Email",
				BookTitle:    "Unknown Book",
				BookAuthor:   "Unknown Author",
				BorrowedDate: r.BorrowedDate,
				ReturnDate:   r.ReturnDate,
				Status:       r.Status,
				UserID:       r.PatronID,
				BookID:       r.BookID,
			}
			for _, p := range d.Patrons {
				if p.ID == r.PatronID {
					row.UserName = p.Name
					row.UserEmail = p.Email
					break
				}
			}
			for _, b := range d.Books {
				if b.ID == r.BookID {
					row.BookTitle = b.Title
					row.BookAuthor = b.Author
					break
				}
			}
			borrowings = append(borrowings, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(borrowings, func(i, j int) bool {
		return borrowings[i].BorrowedDate.After(borrowings[j].BorrowedDate)
	})
	return borrowings, nil
}

// AvailableBooks returns the books whose stored availability is exactly
// one. The borrow flow itself ignores this column; this view exists
// for the UI's quick picker.
func (s *Service) AvailableBooks() ([]*models.Book, error) {
	books := []*models.Book{}
	err := s.store.View(func(d *store.Data) error {
		for _, b := range d.Books {
			if b.Availability == 1 {
				books = append(books, b)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

// BorrowedBook is an open ledger record joined to its book.
type BorrowedBook struct {
	ID           int       `json:"id"`
	BookID       int       `json:"book_id"`
	BookTitle    string    `json:"book_title"`
	BookAuthor   string    `json:"book_author"`
	BorrowedDate time.Time `json:"borrowed_date"`
}

// BorrowedBooks returns the books a patron currently has out.
func (s *Service) BorrowedBooks(patronID int) ([]*BorrowedBook, error) {
	borrowed := []*BorrowedBook{}
	err := s.store.View(func(d *store.Data) error {
		for _, r := range d.Borrowings {
			if r.PatronID != patronID || !r.IsOpen() {
				continue
			}
			row := &BorrowedBook{
				ID:           r.ID,
				BookID:       r.BookID,
				BookTitle:    "Unknown Book",
				BookAuthor:   "Unknown Author",
				BorrowedDate: r.BorrowedDate,
			}
			for _, b := range d.Books {
				if b.ID == r.BookID {
					row.BookTitle = b.Title
					row.BookAuthor = b.Author
					break
				}
			}
			borrowed = append(borrowed, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return borrowed, nil
}

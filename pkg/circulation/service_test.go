package circulation

import (
	"testing"
	"time"

	"github.com/bibliodesk/bibliodesk/pkg/models"
	"github.com/bibliodesk/bibliodesk/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()

	s := store.New(t.TempDir())
	require.NoError(t, s.Load())
	return NewService(s), s
}

func addBook(t *testing.T, s *store.Store, title string, copies int) *models.Book {
	t.Helper()

	book := &models.Book{
		Title:        title,
		Author:       "Author",
		Type:         models.BookTypeNovel,
		Language:     "English",
		Copies:       copies,
		Availability: 1,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.Update(func(d *store.Data) ([]string, error) {
		book.ID = models.NextBookID(d.Books)
		d.Books = append(d.Books, book)
		return []string{store.CollectionBooks}, nil
	}))
	return book
}

func openRecords(t *testing.T, s *store.Store, bookID int) int {
	t.Helper()

	open := 0
	require.NoError(t, s.View(func(d *store.Data) error {
		for _, r := range d.Borrowings {
			if r.BookID == bookID && r.IsOpen() {
				open++
			}
		}
		return nil
	}))
	return open
}

func TestBorrow(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)

	require.NoError(t, svc.Borrow(1, 1))
	assert.Equal(t, 1, openRecords(t, st, 1))

	// Seeded books carry a single effective copy.
	err := svc.Borrow(1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available")
}

func TestBorrow_BookNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	err := svc.Borrow(1, 9999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestBorrow_MultipleCopies(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)
	book := addBook(t, st, "Two Copies", 2)

	require.NoError(t, svc.Borrow(1, book.ID))
	require.NoError(t, svc.Borrow(2, book.ID))

	err := svc.Borrow(3, book.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not available")

	// A return frees a copy again.
	require.NoError(t, svc.Return(1, book.ID))
	require.NoError(t, svc.Borrow(3, book.ID))
	assert.Equal(t, 2, openRecords(t, st, book.ID))
}

func TestBorrow_IgnoresStoredAvailability(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)
	book := addBook(t, st, "Stale Column", 1)

	require.NoError(t, st.Update(func(d *store.Data) ([]string, error) {
		for _, b := range d.Books {
			if b.ID == book.ID {
				b.Availability = 0
			}
		}
		return []string{store.CollectionBooks}, nil
	}))

	// The ledger says no copies are out, so the loan goes through.
	require.NoError(t, svc.Borrow(1, book.ID))
}

func TestReturn_NoOpenRecordIsSuccess(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)

	require.NoError(t, svc.Return(1, 1))
	assert.Equal(t, 0, openRecords(t, st, 1))
}

func TestReturn_ClosesFirstMatchingRecord(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)
	book := addBook(t, st, "Duplicated Loan", 3)

	// The same patron can hold two open records for one book.
	require.NoError(t, svc.Borrow(1, book.ID))
	require.NoError(t, svc.Borrow(1, book.ID))
	assert.Equal(t, 2, openRecords(t, st, book.ID))

	require.NoError(t, svc.Return(1, book.ID))
	assert.Equal(t, 1, openRecords(t, st, book.ID))

	require.NoError(t, st.View(func(d *store.Data) error {
		for _, r := range d.Borrowings {
			if r.Status == models.BorrowStatusReturned {
				assert.NotNil(t, r.ReturnDate)
			}
		}
		return nil
	}))
}

func TestComputeAvailability(t *testing.T) {
	t.Parallel()

	book := &models.Book{ID: 7, Copies: 2}
	other := &models.Book{ID: 8, Copies: 2}

	borrowings := []*models.BorrowRecord{
		{BookID: 7, Status: models.BorrowStatusBorrowed},
		{BookID: 7, Status: models.BorrowStatusReturned},
		{BookID: 8, Status: models.BorrowStatusBorrowed},
	}

	assert.Equal(t, 1, ComputeAvailability(book, borrowings))
	assert.Equal(t, 1, ComputeAvailability(other, borrowings))

	// Zero copies still counts as one lendable copy.
	zero := &models.Book{ID: 9}
	assert.Equal(t, 1, ComputeAvailability(zero, nil))

	// Never negative, even with excess open records.
	over := &models.Book{ID: 7, Copies: 1}
	assert.Equal(t, 0, ComputeAvailability(over, []*models.BorrowRecord{
		{BookID: 7, Status: models.BorrowStatusBorrowed},
		{BookID: 7, Status: models.BorrowStatusBorrowed},
	}))
}

func TestRecalculateAndPersist(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)

	// Borrowing never touches the book row, so the stored availability
	// of seeded book 1 goes stale.
	require.NoError(t, svc.Borrow(1, 1))

	updated, err := svc.RecalculateAndPersist()
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	require.NoError(t, st.View(func(d *store.Data) error {
		for _, b := range d.Books {
			if b.ID == 1 {
				assert.Equal(t, 0, b.Availability)
			}
		}
		return nil
	}))

	// Second run finds nothing to do.
	updated, err = svc.RecalculateAndPersist()
	require.NoError(t, err)
	assert.Equal(t, 0, updated)
}

func TestDiagnosticReport(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	require.NoError(t, svc.Borrow(1, 1))

	report, summary, err := svc.DiagnosticReport()
	require.NoError(t, err)
	require.Len(t, report, 2)

	assert.Equal(t, 2, summary.TotalBooks)
	assert.Equal(t, 1, summary.ConsistentBooks)
	assert.Equal(t, 1, summary.InconsistentBooks)
	assert.Equal(t, 1, summary.AvailableBooks)

	for _, diag := range report {
		if diag.ID == 1 {
			assert.Equal(t, 1, diag.StoredAvailability)
			assert.Equal(t, 0, diag.ActualAvailable)
			assert.Equal(t, 1, diag.CurrentlyBorrowed)
			assert.False(t, diag.IsConsistent)
			assert.False(t, diag.CanBorrow)
		} else {
			assert.True(t, diag.IsConsistent)
			assert.True(t, diag.CanBorrow)
		}
	}
}

func TestListBorrowings(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)

	require.NoError(t, svc.Borrow(1, 1))
	require.NoError(t, svc.Borrow(1, 2))

	borrowings, err := svc.ListBorrowings()
	require.NoError(t, err)
	require.Len(t, borrowings, 2)

	assert.Equal(t, "Sample User", borrowings[0].UserName)
	assert.Equal(t, "sample@example.com", borrowings[0].UserEmail)
	assert.NotEmpty(t, borrowings[0].BookTitle)

	// Newest borrow first.
	assert.False(t, borrowings[1].BorrowedDate.After(borrowings[0].BorrowedDate))

	// Dangling references render as placeholders instead of failing.
	require.NoError(t, st.Update(func(d *store.Data) ([]string, error) {
		d.Books = nil
		d.Patrons = nil
		return []string{store.CollectionBooks, store.CollectionPatrons}, nil
	}))

	borrowings, err = svc.ListBorrowings()
	require.NoError(t, err)
	require.Len(t, borrowings, 2)
	assert.Equal(t, "Unknown User", borrowings[0].UserName)
	assert.Equal(t, "Unknown Email", borrowings[0].UserEmail)
	assert.Equal(t, "Unknown Book", borrowings[0].BookTitle)
	assert.Equal(t, "Unknown Author", borrowings[0].BookAuthor)
}

func TestAvailableBooks_StoredColumn(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)

	books, err := svc.AvailableBooks()
	require.NoError(t, err)
	assert.Len(t, books, 2)

	require.NoError(t, st.Update(func(d *store.Data) ([]string, error) {
		for _, b := range d.Books {
			if b.ID == 1 {
				b.Availability = 0
			}
		}
		return []string{store.CollectionBooks}, nil
	}))

	books, err = svc.AvailableBooks()
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 2, books[0].ID)
}

func TestBorrowedBooks(t *testing.T) {
	t.Parallel()

	svc, st := newTestService(t)

	require.NoError(t, svc.Borrow(1, 1))
	require.NoError(t, svc.Borrow(1, 2))
	require.NoError(t, svc.Return(1, 2))

	borrowed, err := svc.BorrowedBooks(1)
	require.NoError(t, err)
	require.Len(t, borrowed, 1)
	assert.Equal(t, 1, borrowed[0].BookID)
	assert.Equal(t, "Sample Book 1", borrowed[0].BookTitle)

	borrowed, err = svc.BorrowedBooks(42)
	require.NoError(t, err)
	assert.Empty(t, borrowed)

	// A deleted book still shows up with placeholder fields.
	require.NoError(t, st.Update(func(d *store.Data) ([]string, error) {
		d.Books = nil
		return []string{store.CollectionBooks}, nil
	}))

	borrowed, err = svc.BorrowedBooks(1)
	require.NoError(t, err)
	require.Len(t, borrowed, 1)
	assert.Equal(t, "Unknown Book", borrowed[0].BookTitle)
}

package books

import (
	"sort"
	"strings"
	"time"

	"github.com/bibliodesk/bibliodesk/pkg/errcodes"
	"github.com/bibliodesk/bibliodesk/pkg/models"
	"github.com/bibliodesk/bibliodesk/pkg/store"
)

// Service handles book catalog operations.
type Service struct {
	store *store.Store
}

// NewService creates a new books service.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// List returns books matching the search term, newest first. An empty
// term returns the whole catalog. Matching is a case-insensitive
// substring check across title, author, type, and language.
func (s *Service) List(search string) ([]*models.Book, error) {
	term := strings.ToLower(search)

	books := []*models.Book{}
	err := s.store.View(func(d *store.Data) error {
		for _, b := range d.Books {
			if term == "" ||
				strings.Contains(strings.ToLower(b.Title), term) ||
				strings.Contains(strings.ToLower(b.Author), term) ||
				strings.Contains(strings.ToLower(b.Type), term) ||
				strings.Contains(strings.ToLower(b.Language), term) {
				books = append(books, b)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(books, func(i, j int) bool {
		return books[i].CreatedAt.After(books[j].CreatedAt)
	})
	return books, nil
}

// Retrieve gets a book by ID.
func (s *Service) Retrieve(id int) (*models.Book, error) {
	var book *models.Book
	err := s.store.View(func(d *store.Data) error {
		for _, b := range d.Books {
			if b.ID == id {
				book = b
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, errcodes.NotFound("Book")
	}
	return book, nil
}

// CreateOptions contains options for creating a book.
type CreateOptions struct {
	Title        string
	Author       string
	Type         string
	Language     string
	Copies       int
	Availability int
}

// Create adds a book to the catalog.
func (s *Service) Create(opts CreateOptions) (*models.Book, error) {
	book := &models.Book{
		Title:        opts.Title,
		Author:       opts.Author,
		Type:         opts.Type,
		Language:     opts.Language,
		Copies:       opts.Copies,
		Availability: opts.Availability,
		CreatedAt:    time.Now().UTC(),
	}
	if book.Availability == 0 {
		book.Availability = 1
	}

	err := s.store.Update(func(d *store.Data) ([]string, error) {
		book.ID = models.NextBookID(d.Books)
		d.Books = append(d.Books, book)
		return []string{store.CollectionBooks}, nil
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// UpdateOptions contains the fields to change on a book. Nil fields are
// left untouched.
type UpdateOptions struct {
	Title        *string
	Author       *string
	Type         *string
	Language     *string
	Copies       *int
	Availability *int
}

// Update modifies an existing book.
func (s *Service) Update(id int, opts UpdateOptions) error {
	return s.store.Update(func(d *store.Data) ([]string, error) {
		for _, b := range d.Books {
			if b.ID != id {
				continue
			}
			if opts.Title != nil {
				b.Title = *opts.Title
			}
			if opts.Author != nil {
				b.Author = *opts.Author
			}
			if opts.Type != nil {
				b.Type = *opts.Type
			}
			if opts.Language != nil {
				b.Language = *opts.Language
			}
			if opts.Copies != nil {
				b.Copies = *opts.Copies
			}
			if opts.Availability != nil {
				b.Availability = *opts.Availability
			}
			return []string{store.CollectionBooks}, nil
		}
		return nil, errcodes.NotFound("Book")
	})
}

// Delete removes a book from the catalog. Ledger rows that reference it
// are left in place and show up as dangling in joined views.
func (s *Service) Delete(id int) error {
	return s.store.Update(func(d *store.Data) ([]string, error) {
		for i, b := range d.Books {
			if b.ID == id {
				d.Books = append(d.Books[:i], d.Books[i+1:]...)
				return []string{store.CollectionBooks}, nil
			}
		}
		return nil, errcodes.NotFound("Book")
	})
}

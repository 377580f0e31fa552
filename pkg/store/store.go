// Package store owns the four record collections and their backing JSON
// files. Collections are loaded fully into memory at startup and rewritten
// wholesale on every mutation; files are pretty-printed so they stay
// editable and inspectable by hand.
package store

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bibliodesk/bibliodesk/pkg/models"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
)

// Collection names. They double as the backing file basenames.
const (
	CollectionBooks      = "books"
	CollectionPatrons    = "users"
	CollectionBorrowings = "borrowings"
	CollectionAdmin      = "admin"
)

// Data is the in-memory state of all four collections. Access goes
// through Store.View and Store.Update so every reader and writer holds
// the right lock.
type Data struct {
	Books      []*models.Book
	Patrons    []*models.Patron
	Borrowings []*models.BorrowRecord
	Admins     []*models.AdminCredential
}

// Store is the flat-file record store. There is one writer at a time; the
// lock exists because the sync worker snapshots collections from its own
// goroutine.
type Store struct {
	dir string
	log logger.Logger

	mu   sync.RWMutex
	data Data
}

func New(dir string) *Store {
	return &Store{
		dir: dir,
		log: logger.New(),
	}
}

// Load reads all four collections from disk, seeding first-run sample
// rows for any collection whose backing file is absent.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create data directory: %s", s.dir)
	}

	if err := loadOrSeed(s, CollectionBooks, &s.data.Books, seedBooks); err != nil {
		return err
	}
	if err := loadOrSeed(s, CollectionPatrons, &s.data.Patrons, seedPatrons); err != nil {
		return err
	}
	if err := loadOrSeed(s, CollectionBorrowings, &s.data.Borrowings, func() []*models.BorrowRecord {
		return []*models.BorrowRecord{}
	}); err != nil {
		return err
	}
	if err := loadOrSeed(s, CollectionAdmin, &s.data.Admins, seedAdmins); err != nil {
		return err
	}

	s.log.Info("data loaded", logger.Data{
		"path":       s.dir,
		"books":      len(s.data.Books),
		"users":      len(s.data.Patrons),
		"borrowings": len(s.data.Borrowings),
	})

	return nil
}

// View runs fn with read access to the collections.
func (s *Store) View(fn func(d *Data) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&s.data)
}

// Update runs fn with write access to the collections, then rewrites the
// backing file of every collection fn reports as dirty. The whole
// operation runs under one lock so a reader never observes a mutation
// that hasn't been persisted.
func (s *Store) Update(fn func(d *Data) ([]string, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dirty, err := fn(&s.data)
	if err != nil {
		return err
	}

	for _, collection := range dirty {
		if err := s.persistLocked(collection); err != nil {
			return err
		}
	}
	return nil
}

// Refresh re-reads the given collections from disk, discarding any
// unpersisted in-memory state. With no arguments it refreshes the three
// business collections. Files that have gone missing are left as-is.
func (s *Store) Refresh(collections ...string) error {
	if len(collections) == 0 {
		collections = []string{CollectionBooks, CollectionPatrons, CollectionBorrowings}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, collection := range collections {
		var err error
		switch collection {
		case CollectionBooks:
			_, err = loadFile(s.filePath(collection), &s.data.Books)
		case CollectionPatrons:
			_, err = loadFile(s.filePath(collection), &s.data.Patrons)
		case CollectionBorrowings:
			_, err = loadFile(s.filePath(collection), &s.data.Borrowings)
		case CollectionAdmin:
			_, err = loadFile(s.filePath(collection), &s.data.Admins)
		default:
			err = errors.Errorf("unknown collection: %s", collection)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns deep copies of the three business collections for the
// sync payload.
func (s *Store) Snapshot() ([]*models.Book, []*models.Patron, []*models.BorrowRecord) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	books := make([]*models.Book, len(s.data.Books))
	for i, b := range s.data.Books {
		cp := *b
		books[i] = &cp
	}
	patrons := make([]*models.Patron, len(s.data.Patrons))
	for i, p := range s.data.Patrons {
		cp := *p
		patrons[i] = &cp
	}
	borrowings := make([]*models.BorrowRecord, len(s.data.Borrowings))
	for i, r := range s.data.Borrowings {
		cp := *r
		borrowings[i] = &cp
	}
	return books, patrons, borrowings
}

func (s *Store) filePath(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

func loadFile[T any](path string, out *[]T) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to read %s", path)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, errors.Wrapf(err, "failed to parse %s", path)
	}
	return true, nil
}

func loadOrSeed[T any](s *Store, collection string, out *[]T, seed func() []T) error {
	found, err := loadFile(s.filePath(collection), out)
	if err != nil {
		return err
	}
	if !found {
		*out = seed()
		return s.persistLocked(collection)
	}
	return nil
}

// persistLocked rewrites a collection's backing file. Callers must hold
// the write lock. The write goes to a temp file in the same directory
// first so a crash mid-write can't corrupt the previous contents.
func (s *Store) persistLocked(collection string) error {
	var v interface{}
	switch collection {
	case CollectionBooks:
		v = s.data.Books
	case CollectionPatrons:
		v = s.data.Patrons
	case CollectionBorrowings:
		v = s.data.Borrowings
	case CollectionAdmin:
		v = s.data.Admins
	default:
		return errors.Errorf("unknown collection: %s", collection)
	}

	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s", collection)
	}

	path := s.filePath(collection)
	tmp, err := os.CreateTemp(s.dir, collection+".json.tmp-*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temp file for %s", collection)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "failed to close temp file for %s", collection)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "failed to replace %s", path)
	}
	return nil
}

func seedBooks() []*models.Book {
	now := time.Now().UTC()
	return []*models.Book{
		{
			ID:           1,
			Title:        "Sample Book 1",
			Author:       "Sample Author 1",
			Type:         models.BookTypeNovel,
			Language:     "English",
			Availability: 1,
			CreatedAt:    now,
		},
		{
			ID:           2,
			Title:        "Sample Book 2",
			Author:       "Sample Author 2",
			Type:         models.BookTypeStory,
			Language:     "English",
			Availability: 1,
			CreatedAt:    now,
		},
	}
}

func seedPatrons() []*models.Patron {
	return []*models.Patron{
		{
			ID:        1,
			Name:      "Sample User",
			Email:     "sample@example.com",
			Phone:     "123-456-7890",
			Address:   "Sample Address",
			CreatedAt: time.Now().UTC(),
		},
	}
}

func seedAdmins() []*models.AdminCredential {
	return []*models.AdminCredential{
		{
			ID:        1,
			Username:  "admin",
			Password:  "admin123",
			CreatedAt: time.Now().UTC(),
		},
	}
}

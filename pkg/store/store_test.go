package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bibliodesk/bibliodesk/pkg/models"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s := New(t.TempDir())
	require.NoError(t, s.Load())
	return s
}

func TestLoad_SeedsSampleData(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, s.Load())

	err := s.View(func(d *Data) error {
		assert.Len(t, d.Books, 2)
		assert.Len(t, d.Patrons, 1)
		assert.Empty(t, d.Borrowings)
		require.Len(t, d.Admins, 1)
		assert.Equal(t, "admin", d.Admins[0].Username)
		return nil
	})
	require.NoError(t, err)

	// Seeding writes the files so a second load doesn't reseed.
	for _, name := range []string{"books.json", "users.json", "borrowings.json", "admin.json"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err)
	}
}

func TestLoad_DoesNotReseedExistingFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, s.Load())

	err := s.Update(func(d *Data) ([]string, error) {
		d.Books = append(d.Books, &models.Book{
			ID:        models.NextBookID(d.Books),
			Title:     "Persisted",
			Author:    "Someone",
			Type:      models.BookTypeNovel,
			Language:  "English",
			CreatedAt: time.Now(),
		})
		return []string{CollectionBooks}, nil
	})
	require.NoError(t, err)

	s2 := New(dir)
	require.NoError(t, s2.Load())
	err = s2.View(func(d *Data) error {
		assert.Len(t, d.Books, 3)
		return nil
	})
	require.NoError(t, err)
}

func TestUpdate_PersistsDirtyCollections(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, s.Load())

	err := s.Update(func(d *Data) ([]string, error) {
		d.Borrowings = append(d.Borrowings, &models.BorrowRecord{
			ID:           1,
			PatronID:     1,
			BookID:       1,
			Status:       models.BorrowStatusBorrowed,
			BorrowedDate: time.Now(),
		})
		return []string{CollectionBorrowings}, nil
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(dir, "borrowings.json"))
	require.NoError(t, err)

	var records []*models.BorrowRecord
	require.NoError(t, json.Unmarshal(raw, &records))
	require.Len(t, records, 1)
	assert.Equal(t, models.BorrowStatusBorrowed, records[0].Status)
}

func TestUpdate_ErrorSkipsPersist(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, s.Load())

	before, err := os.ReadFile(filepath.Join(dir, "books.json"))
	require.NoError(t, err)

	wantErr := assert.AnError
	err = s.Update(func(d *Data) ([]string, error) {
		d.Books = nil
		return []string{CollectionBooks}, wantErr
	})
	require.ErrorIs(t, err, wantErr)

	after, err := os.ReadFile(filepath.Join(dir, "books.json"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPersist_PrettyPrintsFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, s.Load())

	raw, err := os.ReadFile(filepath.Join(dir, "books.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  {")
	assert.Contains(t, string(raw), `"title": "Sample Book 1"`)
}

func TestRefresh_DiscardsUnpersistedState(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	// Mutate in memory without marking anything dirty.
	err := s.Update(func(d *Data) ([]string, error) {
		d.Books = d.Books[:1]
		return nil, nil
	})
	require.NoError(t, err)

	require.NoError(t, s.Refresh())

	err = s.View(func(d *Data) error {
		assert.Len(t, d.Books, 2)
		return nil
	})
	require.NoError(t, err)
}

func TestRefresh_UnknownCollection(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	err := s.Refresh("nope")
	require.Error(t, err)
}

func TestSnapshot_ReturnsCopies(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	books, patrons, borrowings := s.Snapshot()
	require.Len(t, books, 2)
	require.Len(t, patrons, 1)
	assert.Empty(t, borrowings)

	books[0].Title = "mutated"
	err := s.View(func(d *Data) error {
		assert.Equal(t, "Sample Book 1", d.Books[0].Title)
		return nil
	})
	require.NoError(t, err)
}

func TestLoad_CorruptFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "books.json"), []byte("{not json"), 0644))

	s := New(dir)
	err := s.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "books.json")
}

package reports

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bibliodesk/bibliodesk/pkg/errcodes"
	"github.com/bibliodesk/bibliodesk/pkg/store"
	"github.com/pkg/errors"
)

// Export collection names.
const (
	ExportBooks      = "books"
	ExportUsers      = "users"
	ExportBorrowings = "borrowings"
)

// ExportResult points at a written CSV file.
type ExportResult struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// ExportCSV writes one collection to a dated CSV file in the export
// directory. The borrowings export is the joined view, with "Unknown"
// placeholders for dangling references.
func (s *Service) ExportCSV(exportType string) (*ExportResult, error) {
	var headers []string
	var rows [][]string

	err := s.store.View(func(d *store.Data) error {
		switch exportType {
		case ExportBooks:
			headers = []string{"ID", "Title", "Author", "Type", "Language", "Availability", "Created At"}
			for _, b := range d.Books {
				rows = append(rows, []string{
					itoa(b.ID), b.Title, b.Author, b.Type, b.Language,
					itoa(b.Availability), b.CreatedAt.Format(time.RFC3339),
				})
			}
		case ExportUsers:
			headers = []string{"ID", "Name", "Email", "Phone", "Address", "Created At"}
			for _, p := range d.Patrons {
				rows = append(rows, []string{
					itoa(p.ID), p.Name, p.Email, p.Phone, p.Address,
					p.CreatedAt.Format(time.RFC3339),
				})
			}
		case ExportBorrowings:
			headers = []string{"ID", "User Name", "User Email", "Book Title", "Book Author", "Borrowed Date", "Return Date", "Status"}
			for _, r := range d.Borrowings {
				userName, userEmail := "Unknown User", "Unknown Email"
				for _, p := range d.Patrons {
					if p.ID == r.PatronID {
						userName, userEmail = p.Name, p.Email
						break
					}
				}
				bookTitle, bookAuthor := "Unknown Book", "Unknown Author"
				for _, b := range d.Books {
					if b.ID == r.BookID {
						bookTitle, bookAuthor = b.Title, b.Author
						break
					}
				}
				returnDate := ""
				if r.ReturnDate != nil {
					returnDate = r.ReturnDate.Format(time.RFC3339)
				}
				rows = append(rows, []string{
					itoa(r.ID), userName, userEmail, bookTitle, bookAuthor,
					r.BorrowedDate.Format(time.RFC3339), returnDate, r.Status,
				})
			}
		default:
			return errcodes.ValidationError("Invalid export type")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("%s_export_%s.csv", exportType, time.Now().Format("2006-01-02"))
	path := filepath.Join(s.exportDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create export file: %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return nil, errors.Wrap(err, "failed to write export header")
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, errors.Wrap(err, "failed to write export rows")
	}
	if err := f.Close(); err != nil {
		return nil, errors.Wrapf(err, "failed to flush export file: %s", path)
	}

	return &ExportResult{Success: true, Filename: filename, Path: path}, nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

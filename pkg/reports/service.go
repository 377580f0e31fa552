package reports

import (
	"sort"
	"time"

	"github.com/bibliodesk/bibliodesk/pkg/errcodes"
	"github.com/bibliodesk/bibliodesk/pkg/models"
	"github.com/bibliodesk/bibliodesk/pkg/store"
)

// Service builds the dashboard, report, and export views over the
// record store.
type Service struct {
	store     *store.Store
	exportDir string
}

// NewService creates a new reports service. exportDir is where CSV
// exports are written.
func NewService(st *store.Store, exportDir string) *Service {
	return &Service{store: st, exportDir: exportDir}
}

// DashboardStats is the landing-page summary.
type DashboardStats struct {
	TotalBooks     int `json:"totalBooks"`
	AvailableBooks int `json:"availableBooks"`
	BorrowedBooks  int `json:"borrowedBooks"`
	TotalUsers     int `json:"totalUsers"`
}

// Dashboard computes the landing-page counters. Available counts books
// whose stored availability is exactly one; borrowed counts open
// ledger records.
func (s *Service) Dashboard() (*DashboardStats, error) {
	stats := &DashboardStats{}
	err := s.store.View(func(d *store.Data) error {
		stats.TotalBooks = len(d.Books)
		stats.TotalUsers = len(d.Patrons)
		for _, b := range d.Books {
			if b.Availability == 1 {
				stats.AvailableBooks++
			}
		}
		for _, r := range d.Borrowings {
			if r.IsOpen() {
				stats.BorrowedBooks++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// TypeCount is one bucket of a per-type histogram.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// LanguageCount is one bucket of a per-language histogram.
type LanguageCount struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

// TopUser is one row of the most-active-patrons ranking.
type TopUser struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	TotalBorrowed     int    `json:"total_borrowed"`
	CurrentlyBorrowed int    `json:"currently_borrowed"`
	MostReadType      string `json:"most_read_type"`
}

// AggregateReport is the full reports-page payload. The patron list
// rides along for the report UI's picker.
type AggregateReport struct {
	TotalBooks           int              `json:"totalBooks"`
	TotalUsers           int              `json:"totalUsers"`
	TotalBorrowings      int              `json:"totalBorrowings"`
	ActiveBorrowings     int              `json:"activeBorrowings"`
	BooksByType          []TypeCount      `json:"booksByType"`
	BooksByLanguage      []LanguageCount  `json:"booksByLanguage"`
	BorrowingsByType     []TypeCount      `json:"borrowingsByType"`
	BorrowingsByLanguage []LanguageCount  `json:"borrowingsByLanguage"`
	TopUsers             []*TopUser       `json:"topUsers"`
	Users                []*models.Patron `json:"users"`
}

// Aggregate builds the reports-page payload. Ledger rows whose book has
// been deleted are skipped in the per-book histograms.
func (s *Service) Aggregate() (*AggregateReport, error) {
	report := &AggregateReport{}

	err := s.store.View(func(d *store.Data) error {
		report.TotalBooks = len(d.Books)
		report.TotalUsers = len(d.Patrons)
		report.TotalBorrowings = len(d.Borrowings)

		booksByID := map[int]*models.Book{}
		booksByType := map[string]int{}
		booksByLanguage := map[string]int{}
		for _, b := range d.Books {
			booksByID[b.ID] = b
			booksByType[b.Type]++
			booksByLanguage[b.Language]++
		}

		borrowingsByType := map[string]int{}
		borrowingsByLanguage := map[string]int{}

		type patronStats struct {
			total     int
			currently int
			types     map[string]int
		}
		statsByPatron := map[int]*patronStats{}

		for _, r := range d.Borrowings {
			if r.IsOpen() {
				report.ActiveBorrowings++
			}

			stats := statsByPatron[r.PatronID]
			if stats == nil {
				stats = &patronStats{types: map[string]int{}}
				statsByPatron[r.PatronID] = stats
			}
			stats.total++
			if r.IsOpen() {
				stats.currently++
			}

			if book := booksByID[r.BookID]; book != nil {
				borrowingsByType[book.Type]++
				borrowingsByLanguage[book.Language]++
				stats.types[book.Type]++
			}
		}

		report.BooksByType = typeCounts(booksByType)
		report.BooksByLanguage = languageCounts(booksByLanguage)
		report.BorrowingsByType = typeCounts(borrowingsByType)
		report.BorrowingsByLanguage = languageCounts(borrowingsByLanguage)

		for _, p := range d.Patrons {
			stats := statsByPatron[p.ID]
			if stats == nil {
				continue
			}
			report.TopUsers = append(report.TopUsers, &TopUser{
				ID:                p.ID,
				Name:              p.Name,
				Email:             p.Email,
				TotalBorrowed:     stats.total,
				CurrentlyBorrowed: stats.currently,
				MostReadType:      argmaxOr(stats.types, "none"),
			})
		}
		sort.SliceStable(report.TopUsers, func(i, j int) bool {
			if report.TopUsers[i].TotalBorrowed != report.TopUsers[j].TotalBorrowed {
				return report.TopUsers[i].TotalBorrowed > report.TopUsers[j].TotalBorrowed
			}
			return report.TopUsers[i].ID < report.TopUsers[j].ID
		})
		if len(report.TopUsers) > 10 {
			report.TopUsers = report.TopUsers[:10]
		}

		report.Users = append([]*models.Patron{}, d.Patrons...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// BorrowingHistoryEntry is one row of a patron's loan history.
type BorrowingHistoryEntry struct {
	BookTitle  string     `json:"bookTitle"`
	Author     string     `json:"author"`
	Type       string     `json:"type"`
	Language   string     `json:"language"`
	BorrowDate time.Time  `json:"borrowDate"`
	ReturnDate *time.Time `json:"returnDate"`
}

// PatronReport is the per-patron reading profile.
type PatronReport struct {
	UserID             int                      `json:"userId"`
	UserName           string                   `json:"userName"`
	TotalBooksBorrowed int                      `json:"totalBooksBorrowed"`
	BorrowingSessions  int                      `json:"borrowingSessions"`
	PreferredLanguage  *string                  `json:"preferredLanguage"`
	PreferredType      *string                  `json:"preferredType"`
	LanguageStats      []LanguageCount          `json:"languageStats"`
	TypeStats          []TypeCount              `json:"typeStats"`
	BorrowingHistory   []*BorrowingHistoryEntry `json:"borrowingHistory"`
}

// Patron builds the reading profile for one patron, covering every
// ledger record ever written for them.
func (s *Service) Patron(patronID int) (*PatronReport, error) {
	report := &PatronReport{}

	err := s.store.View(func(d *store.Data) error {
		var patron *models.Patron
		for _, p := range d.Patrons {
			if p.ID == patronID {
				patron = p
				break
			}
		}
		if patron == nil {
			return errcodes.NotFound("User")
		}
		report.UserID = patron.ID
		report.UserName = patron.Name

		booksByID := map[int]*models.Book{}
		for _, b := range d.Books {
			booksByID[b.ID] = b
		}

		languages := map[string]int{}
		types := map[string]int{}
		for _, r := range d.Borrowings {
			if r.PatronID != patronID {
				continue
			}
			report.TotalBooksBorrowed++
			report.BorrowingSessions++

			entry := &BorrowingHistoryEntry{
				BookTitle:  "Unknown Book",
				Author:     "Unknown Author",
				Type:       "Unknown Type",
				Language:   "Unknown Language",
				BorrowDate: r.BorrowedDate,
				ReturnDate: r.ReturnDate,
			}
			if book := booksByID[r.BookID]; book != nil {
				entry.BookTitle = book.Title
				entry.Author = book.Author
				entry.Type = book.Type
				entry.Language = book.Language
				if book.Language != "" {
					languages[book.Language]++
				}
				if book.Type != "" {
					types[book.Type]++
				}
			}
			report.BorrowingHistory = append(report.BorrowingHistory, entry)
		}

		if len(languages) > 0 {
			lang := argmaxOr(languages, "")
			report.PreferredLanguage = &lang
		}
		if len(types) > 0 {
			typ := argmaxOr(types, "")
			report.PreferredType = &typ
		}
		report.LanguageStats = languageCounts(languages)
		report.TypeStats = typeCounts(types)

		sort.SliceStable(report.BorrowingHistory, func(i, j int) bool {
			return report.BorrowingHistory[i].BorrowDate.After(report.BorrowingHistory[j].BorrowDate)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func typeCounts(m map[string]int) []TypeCount {
	out := make([]TypeCount, 0, len(m))
	for typ, count := range m {
		out = append(out, TypeCount{Type: typ, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}

func languageCounts(m map[string]int) []LanguageCount {
	out := make([]LanguageCount, 0, len(m))
	for lang, count := range m {
		out = append(out, LanguageCount{Language: lang, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Language < out[j].Language })
	return out
}

// argmaxOr returns the key with the strictly highest count, or fallback
// for an empty map. Ties resolve to whichever key the map yields first.
func argmaxOr(m map[string]int, fallback string) string {
	best := fallback
	bestCount := -1
	for k, count := range m {
		if count > bestCount {
			best = k
			bestCount = count
		}
	}
	return best
}

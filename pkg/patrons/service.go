package patrons

import (
	"sort"
	"strings"
	"time"

	"github.com/bibliodesk/bibliodesk/pkg/errcodes"
	"github.com/bibliodesk/bibliodesk/pkg/models"
	"github.com/bibliodesk/bibliodesk/pkg/store"
)

// Service handles patron registry operations.
type Service struct {
	store *store.Store
}

// NewService creates a new patrons service.
func NewService(st *store.Store) *Service {
	return &Service{store: st}
}

// List returns patrons matching the search term, newest first. Name and
// email are matched case-insensitively; phone is a plain substring
// match since it is all digits anyway.
func (s *Service) List(search string) ([]*models.Patron, error) {
	term := strings.ToLower(search)

	patrons := []*models.Patron{}
	err := s.store.View(func(d *store.Data) error {
		for _, p := range d.Patrons {
			if term == "" ||
				strings.Contains(strings.ToLower(p.Name), term) ||
				strings.Contains(strings.ToLower(p.Email), term) ||
				strings.Contains(p.Phone, search) {
				patrons = append(patrons, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(patrons, func(i, j int) bool {
		return patrons[i].CreatedAt.After(patrons[j].CreatedAt)
	})
	return patrons, nil
}

// Retrieve gets a patron by ID.
func (s *Service) Retrieve(id int) (*models.Patron, error) {
	var patron *models.Patron
	err := s.store.View(func(d *store.Data) error {
		for _, p := range d.Patrons {
			if p.ID == id {
				patron = p
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if patron == nil {
		return nil, errcodes.NotFound("User")
	}
	return patron, nil
}

// CreateOptions contains options for registering a patron.
type CreateOptions struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Create registers a patron.
func (s *Service) Create(opts CreateOptions) (*models.Patron, error) {
	patron := &models.Patron{
		Name:      opts.Name,
		Email:     opts.Email,
		Phone:     opts.Phone,
		Address:   opts.Address,
		CreatedAt: time.Now().UTC(),
	}

	err := s.store.Update(func(d *store.Data) ([]string, error) {
		patron.ID = models.NextPatronID(d.Patrons)
		d.Patrons = append(d.Patrons, patron)
		return []string{store.CollectionPatrons}, nil
	})
	if err != nil {
		return nil, err
	}
	return patron, nil
}

// UpdateOptions contains the fields to change on a patron. Nil fields
// are left untouched.
type UpdateOptions struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
}

// Update modifies an existing patron.
func (s *Service) Update(id int, opts UpdateOptions) error {
	return s.store.Update(func(d *store.Data) ([]string, error) {
		for _, p := range d.Patrons {
			if p.ID != id {
				continue
			}
			if opts.Name != nil {
				p.Name = *opts.Name
			}
			if opts.Email != nil {
				p.Email = *opts.Email
			}
			if opts.Phone != nil {
				p.Phone = *opts.Phone
			}
			if opts.Address != nil {
				p.Address = *opts.Address
			}
			return []string{store.CollectionPatrons}, nil
		}
		return nil, errcodes.NotFound("User")
	})
}

// Delete removes a patron. Their ledger rows stay behind and show up as
// dangling in joined views.
func (s *Service) Delete(id int) error {
	return s.store.Update(func(d *store.Data) ([]string, error) {
		for i, p := range d.Patrons {
			if p.ID == id {
				d.Patrons = append(d.Patrons[:i], d.Patrons[i+1:]...)
				return []string{store.CollectionPatrons}, nil
			}
		}
		return nil, errcodes.NotFound("User")
	})
}

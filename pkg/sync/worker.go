// Package sync mirrors the record collections to a remote server on a
// timer. Every failure is logged and swallowed; the library keeps
// working offline and the next tick tries again.
package sync

import (
	"bytes"
	"net/http"
	"time"

	"github.com/bibliodesk/bibliodesk/pkg/config"
	"github.com/bibliodesk/bibliodesk/pkg/models"
	"github.com/bibliodesk/bibliodesk/pkg/store"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
)

// Payload is what gets POSTed to the remote server on every run.
type Payload struct {
	LibraryID  string                 `json:"libraryId"`
	Timestamp  time.Time              `json:"timestamp"`
	Books      []*models.Book         `json:"books"`
	Users      []*models.Patron       `json:"users"`
	Borrowings []*models.BorrowRecord `json:"borrowings"`
}

type Worker struct {
	config *config.Config
	log    logger.Logger
	store  *store.Store
	client *http.Client

	shutdown chan struct{}
	done     chan struct{}
}

func New(cfg *config.Config, st *store.Store) *Worker {
	return &Worker{
		config: cfg,
		log:    logger.New(),
		store:  st,
		client: &http.Client{Timeout: cfg.SyncTimeout()},

		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sync loop. The first run happens after the startup
// delay, then once per interval.
func (w *Worker) Start() {
	go w.run()
}

func (w *Worker) run() {
	timer := time.NewTimer(w.config.SyncStartupDelay())
	defer timer.Stop()

	for {
		select {
		case <-w.shutdown:
			w.done <- struct{}{}
			return
		case <-timer.C:
			w.syncOnce()
			timer.Reset(w.config.SyncInterval())
		}
	}
}

// Shutdown stops the loop and performs one final best-effort sync so
// the remote copy is as fresh as possible.
func (w *Worker) Shutdown() {
	close(w.shutdown)
	<-w.done

	w.syncOnce()
}

func (w *Worker) syncOnce() {
	log := w.log
	if id, err := uuid.NewRandom(); err == nil {
		log = w.log.ID(id.String())
	}

	if w.config.SyncURL == "" {
		log.Info("sync skipped: no sync url configured")
		return
	}

	if err := w.sync(log); err != nil {
		log.Err(err).Error("sync error")
	}
}

func (w *Worker) sync(log logger.Logger) error {
	books, users, borrowings := w.store.Snapshot()

	payload := Payload{
		LibraryID:  w.config.LibraryID,
		Timestamp:  time.Now().UTC(),
		Books:      books,
		Users:      users,
		Borrowings: borrowings,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal sync payload")
	}

	resp, err := w.client.Post(w.config.SyncURL, "application/json", bytes.NewReader(raw))
	if err != nil {
		return errors.Wrap(err, "failed to post sync payload")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("sync server responded with status %d", resp.StatusCode)
	}

	log.Info("sync completed", logger.Data{
		"library_id": w.config.LibraryID,
		"books":      len(books),
		"users":      len(users),
		"borrowings": len(borrowings),
	})
	return nil
}

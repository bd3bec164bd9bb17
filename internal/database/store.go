// Package database implements persistent storage for the card catalog,
// per-card progress, and the completed/later bookkeeping sets, backed
// by sqlite or postgres through sqlx.
package database

import (
	"github.com/example/flashbot/pkg/models"
)

// Store bundles the repositories behind the single interface the
// scheduler consumes (scheduler.Store)
type Store struct {
	cards    *CardRepository
	progress *ProgressRepository
}

// NewStore creates a store over an open database connection
func NewStore(db *DB) *Store {
	return &Store{
		cards:    NewCardRepository(db),
		progress: NewProgressRepository(db),
	}
}

// AllCards returns the full catalog in stable catalog order
func (s *Store) AllCards() ([]models.Card, error) {
	return s.cards.GetAll()
}

// Card returns a card by id, or nil if no such card exists
func (s *Store) Card(id string) (*models.Card, error) {
	return s.cards.GetByID(id)
}

// Progress returns the stored record for a card, or the all-defaults
// record when the card has never been reviewed
func (s *Store) Progress(id string) (models.Progress, error) {
	return s.progress.Get(id)
}

// AllProgress returns every stored progress record keyed by card id
func (s *Store) AllProgress() (map[string]models.Progress, error) {
	return s.progress.All()
}

// SaveProgress persists a progress record
func (s *Store) SaveProgress(p models.Progress) error {
	return s.progress.Save(p)
}

// CompletedSet returns the ids of cards marked done
func (s *Store) CompletedSet() (map[string]bool, error) {
	return s.progress.CompletedSet()
}

// MarkCompleted adds a card to the completed set; idempotent
func (s *Store) MarkCompleted(id string) error {
	return s.progress.MarkCompleted(id)
}

// LaterQueue returns the repeat-later queue in insertion order
func (s *Store) LaterQueue() ([]string, error) {
	return s.progress.LaterQueue()
}

// PushLater appends a card to the repeat-later queue; idempotent
func (s *Store) PushLater(id string) error {
	return s.progress.PushLater(id)
}

// RemoveLater drops a card from the repeat-later queue; idempotent
func (s *Store) RemoveLater(id string) error {
	return s.progress.RemoveLater(id)
}

// ResetAll restores every card to its never-reviewed state
func (s *Store) ResetAll() error {
	return s.progress.ResetAll()
}

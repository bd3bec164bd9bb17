package database

import (
	"database/sql"
	"fmt"

	"github.com/example/flashbot/pkg/models"
)

// ProgressRepository handles database operations for per-card progress,
// the completed set and the repeat-later queue
type ProgressRepository struct {
	db *DB
}

// NewProgressRepository creates a new repository instance
func NewProgressRepository(db *DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Get returns the progress record for a card. Cards that have never
// been reviewed get the all-defaults record, not an error.
func (r *ProgressRepository) Get(cardID string) (models.Progress, error) {
	var progress models.Progress
	err := r.db.Get(&progress, "SELECT * FROM card_progress WHERE card_id = $1", cardID)
	if err == sql.ErrNoRows {
		return models.Progress{}, nil
	}
	if err != nil {
		return models.Progress{}, fmt.Errorf("failed to get progress: %v", err)
	}
	return progress, nil
}

// All returns every stored progress record keyed by card id
func (r *ProgressRepository) All() (map[string]models.Progress, error) {
	var records []models.Progress
	if err := r.db.Select(&records, "SELECT * FROM card_progress"); err != nil {
		return nil, fmt.Errorf("failed to get progress records: %v", err)
	}
	byID := make(map[string]models.Progress, len(records))
	for _, p := range records {
		byID[p.CardID] = p
	}
	return byID, nil
}

// Save writes a progress record, inserting or replacing as needed
func (r *ProgressRepository) Save(p models.Progress) error {
	if p.CardID == "" {
		return fmt.Errorf("progress record has no card id")
	}
	_, err := r.db.Exec(`
		INSERT INTO card_progress (card_id, review_count, ease, interval, last_review, due_date, difficulty)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (card_id) DO UPDATE SET
			review_count = EXCLUDED.review_count,
			ease = EXCLUDED.ease,
			interval = EXCLUDED.interval,
			last_review = EXCLUDED.last_review,
			due_date = EXCLUDED.due_date,
			difficulty = EXCLUDED.difficulty`,
		p.CardID, p.ReviewCount, p.Ease, p.Interval, p.LastReview, p.DueDate, p.Difficulty,
	)
	if err != nil {
		return fmt.Errorf("failed to save progress: %v", err)
	}
	return nil
}

// CompletedSet returns the ids of cards marked done
func (r *ProgressRepository) CompletedSet() (map[string]bool, error) {
	var ids []string
	if err := r.db.Select(&ids, "SELECT card_id FROM completed_cards"); err != nil {
		return nil, fmt.Errorf("failed to get completed set: %v", err)
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// MarkCompleted adds a card to the completed set. Marking a card that
// is already in the set changes nothing.
func (r *ProgressRepository) MarkCompleted(cardID string) error {
	_, err := r.db.Exec(
		"INSERT INTO completed_cards (card_id) VALUES ($1) ON CONFLICT (card_id) DO NOTHING",
		cardID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark card completed: %v", err)
	}
	return nil
}

// LaterQueue returns the repeat-later queue, oldest insertion first
func (r *ProgressRepository) LaterQueue() ([]string, error) {
	var ids []string
	if err := r.db.Select(&ids, "SELECT card_id FROM later_queue ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to get later queue: %v", err)
	}
	return ids, nil
}

// PushLater appends a card to the repeat-later queue; duplicates are ignored
func (r *ProgressRepository) PushLater(cardID string) error {
	_, err := r.db.Exec(
		"INSERT INTO later_queue (card_id) VALUES ($1) ON CONFLICT (card_id) DO NOTHING",
		cardID,
	)
	if err != nil {
		return fmt.Errorf("failed to push to later queue: %v", err)
	}
	return nil
}

// RemoveLater drops a card from the repeat-later queue if present
func (r *ProgressRepository) RemoveLater(cardID string) error {
	_, err := r.db.Exec("DELETE FROM later_queue WHERE card_id = $1", cardID)
	if err != nil {
		return fmt.Errorf("failed to remove from later queue: %v", err)
	}
	return nil
}

// ResetAll restores every progress record to defaults and clears the
// completed set and later queue, atomically
func (r *ProgressRepository) ResetAll() error {
	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin reset: %v", err)
	}
	for _, stmt := range []string{
		"DELETE FROM card_progress",
		"DELETE FROM completed_cards",
		"DELETE FROM later_queue",
	} {
		if _, err := tx.Exec(stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to reset progress: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %v", err)
	}
	return nil
}

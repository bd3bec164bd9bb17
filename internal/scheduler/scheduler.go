// Package scheduler picks the next flashcard to show and orchestrates
// recording review outcomes. Selection walks three tiers: due cards
// first, then never-completed cards, then the repeat-later queue.
package scheduler

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/example/flashbot/internal/srs"
	"github.com/example/flashbot/pkg/models"
)

// Store is the persistence interface the scheduler consumes.
// Implemented by the database package.
type Store interface {
	// AllCards returns the full catalog in stable catalog order
	AllCards() ([]models.Card, error)
	// Card returns a card by id, or nil if no such card exists
	Card(id string) (*models.Card, error)
	// Progress returns the progress record for a card, or the
	// all-defaults record if none has been written yet
	Progress(id string) (models.Progress, error)
	// AllProgress returns every stored progress record keyed by card id
	AllProgress() (map[string]models.Progress, error)
	// SaveProgress persists a progress record
	SaveProgress(p models.Progress) error
	// CompletedSet returns the ids of cards marked done
	CompletedSet() (map[string]bool, error)
	// MarkCompleted adds a card to the completed set; idempotent
	MarkCompleted(id string) error
	// LaterQueue returns the repeat-later queue in insertion order
	LaterQueue() ([]string, error)
	// PushLater appends a card to the repeat-later queue; idempotent
	PushLater(id string) error
	// RemoveLater drops a card from the repeat-later queue; idempotent
	RemoveLater(id string) error
	// ResetAll restores every progress record to defaults and clears
	// the completed set and later queue
	ResetAll() error
}

// Review pairs a card with its current progress record
type Review struct {
	Card     models.Card
	Progress models.Progress
}

// Scheduler selects the next card to review. All dependencies are
// provided at construction; the scheduler holds no state of its own
// and re-reads the store on every call.
type Scheduler struct {
	store Store
	algo  *srs.Algorithm
	rng   *rand.Rand
	now   func() time.Time
}

// New creates a fully wired scheduler. A nil rng falls back to a
// time-seeded source; the rng only drives the unshown-tier pick.
func New(store Store, algo *srs.Algorithm, rng *rand.Rand) *Scheduler {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Scheduler{
		store: store,
		algo:  algo,
		rng:   rng,
		now:   time.Now,
	}
}

// NextCard returns the most urgent card to review, or nil if nothing
// is available. Tier order: due cards (earliest due date first), then
// a random never-completed card, then the head of the later queue.
func (s *Scheduler) NextCard() (*Review, error) {
	cards, err := s.store.AllCards()
	if err != nil {
		return nil, fmt.Errorf("failed to load cards: %w", err)
	}
	if len(cards) == 0 {
		return nil, nil
	}

	progress, err := s.store.AllProgress()
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	now := s.now()

	// Due tier: earliest due date wins; records without a due date sort
	// after dated ones and among themselves by fewer reviews. Ties keep
	// catalog order.
	best := -1
	for i, card := range cards {
		p := progress[card.ID]
		if !srs.IsDue(p, now) {
			continue
		}
		if best == -1 || moreUrgent(p, progress[cards[best].ID]) {
			best = i
		}
	}
	if best >= 0 {
		return &Review{Card: cards[best], Progress: withID(progress[cards[best].ID], cards[best].ID)}, nil
	}

	// Unshown tier: uniform pick among cards never marked completed
	completed, err := s.store.CompletedSet()
	if err != nil {
		return nil, fmt.Errorf("failed to load completed set: %w", err)
	}
	var unshown []models.Card
	for _, card := range cards {
		if !completed[card.ID] {
			unshown = append(unshown, card)
		}
	}
	if len(unshown) > 0 {
		card := unshown[s.rng.Intn(len(unshown))]
		return &Review{Card: card, Progress: withID(progress[card.ID], card.ID)}, nil
	}

	// Deferred tier: oldest-inserted entry of the later queue
	later, err := s.store.LaterQueue()
	if err != nil {
		return nil, fmt.Errorf("failed to load later queue: %w", err)
	}
	byID := make(map[string]models.Card, len(cards))
	for _, card := range cards {
		byID[card.ID] = card
	}
	for _, id := range later {
		if card, ok := byID[id]; ok {
			return &Review{Card: card, Progress: withID(progress[id], id)}, nil
		}
	}

	return nil, nil
}

// moreUrgent reports whether a should be shown before b within the due
// tier. An absent due date carries no urgency of its own, so dated
// records come first; undated records fall back to fewer reviews.
func moreUrgent(a, b models.Progress) bool {
	switch {
	case a.DueDate != nil && b.DueDate != nil:
		return a.DueDate.Before(*b.DueDate)
	case a.DueDate != nil:
		return true
	case b.DueDate != nil:
		return false
	default:
		return a.ReviewCount < b.ReviewCount
	}
}

// RecordReview applies an outcome to a card and persists the result.
// Good and Easy also mark the card completed and drop it from the
// later queue; Hard leaves it in rotation. Unknown ids are a no-op.
func (s *Scheduler) RecordReview(id string, outcome models.Outcome) error {
	if !outcome.Valid() {
		return fmt.Errorf("unknown outcome %q", outcome)
	}

	card, err := s.store.Card(id)
	if err != nil {
		return fmt.Errorf("failed to load card %s: %w", id, err)
	}
	if card == nil {
		log.Printf("recordReview: card %s not found, ignoring", id)
		return nil
	}

	p, err := s.store.Progress(id)
	if err != nil {
		return fmt.Errorf("failed to load progress for %s: %w", id, err)
	}
	if p.ReviewCount == 0 && p.Ease == 0 {
		p.Ease = s.initialEase(card)
	}

	updated := s.algo.CalculateReview(withID(p, id), outcome, s.now())
	if err := s.store.SaveProgress(updated); err != nil {
		return fmt.Errorf("failed to save progress for %s: %w", id, err)
	}

	if outcome == models.OutcomeGood || outcome == models.OutcomeEasy {
		if err := s.store.MarkCompleted(id); err != nil {
			return fmt.Errorf("failed to mark %s completed: %w", id, err)
		}
		if err := s.store.RemoveLater(id); err != nil {
			return fmt.Errorf("failed to dequeue %s: %w", id, err)
		}
	}
	return nil
}

// initialEase seeds the ease for a card's first review, pulling toward
// the linked card's ease when one exists and has been reviewed.
func (s *Scheduler) initialEase(card *models.Card) int {
	if card.LinkedID != "" {
		if lp, err := s.store.Progress(card.LinkedID); err == nil && lp.Ease > 0 {
			return s.algo.InitialEase(lp.Ease)
		}
	}
	return s.algo.InitialEase(0)
}

// MarkForLater appends a card to the repeat-later queue. Calling it
// again for a queued card changes nothing.
func (s *Scheduler) MarkForLater(id string) error {
	card, err := s.store.Card(id)
	if err != nil {
		return fmt.Errorf("failed to load card %s: %w", id, err)
	}
	if card == nil {
		log.Printf("markForLater: card %s not found, ignoring", id)
		return nil
	}

	// Make sure a progress record exists before queueing
	p, err := s.store.Progress(id)
	if err != nil {
		return fmt.Errorf("failed to load progress for %s: %w", id, err)
	}
	if p.CardID == "" {
		if err := s.store.SaveProgress(withID(p, id)); err != nil {
			return fmt.Errorf("failed to init progress for %s: %w", id, err)
		}
	}

	if err := s.store.PushLater(id); err != nil {
		return fmt.Errorf("failed to queue %s: %w", id, err)
	}
	return nil
}

// Stats re-derives the scheduling counters from current progress
// state. Categories overlap; Total is always the catalog size.
func (s *Scheduler) Stats() (models.Stats, error) {
	cards, err := s.store.AllCards()
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to load cards: %w", err)
	}
	progress, err := s.store.AllProgress()
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to load progress: %w", err)
	}
	later, err := s.store.LaterQueue()
	if err != nil {
		return models.Stats{}, fmt.Errorf("failed to load later queue: %w", err)
	}

	now := s.now()
	stats := models.Stats{Total: len(cards), Later: len(later)}
	for _, card := range cards {
		p := progress[card.ID]
		if p.ReviewCount == 0 {
			stats.New++
		} else if srs.IsDue(p, now) {
			stats.Due++
		}
	}
	return stats, nil
}

// HasCardsAvailable reports whether NextCard would return a card.
// Storage failures count as "nothing to do".
func (s *Scheduler) HasCardsAvailable() bool {
	review, err := s.NextCard()
	if err != nil {
		log.Printf("hasCardsAvailable: %v", err)
		return false
	}
	return review != nil
}

// Reset restores every card to its never-reviewed state
func (s *Scheduler) Reset() error {
	if err := s.store.ResetAll(); err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	return nil
}

func withID(p models.Progress, id string) models.Progress {
	p.CardID = id
	return p
}

package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/flashbot/pkg/models"
)

// CardRepository handles database operations for cards
type CardRepository struct {
	db *DB
}

// NewCardRepository creates a new repository instance
func NewCardRepository(db *DB) *CardRepository {
	return &CardRepository{db: db}
}

// cardRow is the raw table shape; tags are stored comma-separated
type cardRow struct {
	ID        string    `db:"id"`
	Question  string    `db:"question"`
	Answer    string    `db:"answer"`
	Tags      string    `db:"tags"`
	LinkedID  string    `db:"linked_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (r cardRow) toModel() models.Card {
	card := models.Card{
		ID:        r.ID,
		Question:  r.Question,
		Answer:    r.Answer,
		LinkedID:  r.LinkedID,
		CreatedAt: r.CreatedAt,
	}
	if r.Tags != "" {
		card.Tags = strings.Split(r.Tags, ",")
	}
	return card
}

// GetAll returns all cards in stable catalog order
func (r *CardRepository) GetAll() ([]models.Card, error) {
	var rows []cardRow
	err := r.db.Select(&rows, "SELECT * FROM cards ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to get cards: %v", err)
	}
	cards := make([]models.Card, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, row.toModel())
	}
	return cards, nil
}

// GetByID returns a card by ID, or nil if no such card exists
func (r *CardRepository) GetByID(id string) (*models.Card, error) {
	var row cardRow
	err := r.db.Get(&row, "SELECT * FROM cards WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card by ID: %v", err)
	}
	card := row.toModel()
	return &card, nil
}

// GetByQuestion returns a card by its question text, or nil if absent
func (r *CardRepository) GetByQuestion(question string) (*models.Card, error) {
	var row cardRow
	err := r.db.Get(&row, "SELECT * FROM cards WHERE question = $1", question)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card by question: %v", err)
	}
	card := row.toModel()
	return &card, nil
}

// Create inserts a new card
func (r *CardRepository) Create(card *models.Card) error {
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now()
	}
	_, err := r.db.Exec(
		"INSERT INTO cards (id, question, answer, tags, linked_id, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		card.ID, card.Question, card.Answer, strings.Join(card.Tags, ","), card.LinkedID, card.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create card: %v", err)
	}
	return nil
}

// Update modifies an existing card's content
func (r *CardRepository) Update(card *models.Card) error {
	_, err := r.db.Exec(
		"UPDATE cards SET question = $1, answer = $2, tags = $3, linked_id = $4 WHERE id = $5",
		card.Question, card.Answer, strings.Join(card.Tags, ","), card.LinkedID, card.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update card: %v", err)
	}
	return nil
}

// Count returns the catalog size
func (r *CardRepository) Count() (int, error) {
	var count int
	if err := r.db.Get(&count, "SELECT COUNT(*) FROM cards"); err != nil {
		return 0, fmt.Errorf("failed to count cards: %v", err)
	}
	return count, nil
}

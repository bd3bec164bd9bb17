package models

import "time"

// Card represents a single flashcard to be learned
type Card struct {
	ID        string    `json:"id" db:"id"`
	Question  string    `json:"question" db:"question"`
	Answer    string    `json:"answer" db:"answer"`
	Tags      []string  `json:"tags" db:"-"`
	LinkedID  string    `json:"linked_id" db:"linked_id"` // Optional: related card whose ease seeds this card's initial ease
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

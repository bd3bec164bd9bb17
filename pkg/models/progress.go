package models

import "time"

// Outcome is the caller-visible rating of a review
type Outcome string

const (
	OutcomeHard Outcome = "hard"
	OutcomeGood Outcome = "good"
	OutcomeEasy Outcome = "easy"
)

// Valid reports whether the outcome is one of the three known ratings
func (o Outcome) Valid() bool {
	return o == OutcomeHard || o == OutcomeGood || o == OutcomeEasy
}

// Progress tracks the scheduling state for a single card.
// It is a value type: every review produces a new record rather than
// mutating the old one in place.
type Progress struct {
	CardID      string     `json:"card_id" db:"card_id"`
	ReviewCount int        `json:"review_count" db:"review_count"` // Times the card has been reviewed
	Ease        int        `json:"ease" db:"ease"`                 // Percentage-like growth factor; 0 until first seeded
	Interval    float64    `json:"interval" db:"interval"`         // Current interval in days
	LastReview  *time.Time `json:"last_review" db:"last_review"`
	DueDate     *time.Time `json:"due_date" db:"due_date"` // nil means "due now"
	Difficulty  Outcome    `json:"difficulty" db:"difficulty"`
}

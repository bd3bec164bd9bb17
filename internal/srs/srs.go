// Package srs implements the interval and ease calculation for spaced
// repetition. It is a configurable SM-2 variant: reviews are rated
// Hard, Good or Easy, each card carries an ease factor that controls
// interval growth, and an optional load balancer jitters intervals to
// avoid clumping reviews on the same future day.
package srs

import (
	"math"
	"math/rand"
	"time"

	"github.com/example/flashbot/pkg/models"
)

// Intervals in days assigned on a card's very first review,
// independent of ease and config.
const (
	firstIntervalHard = 0.5
	firstIntervalGood = 1.0
	firstIntervalEasy = 4.0
)

// jitterRange is the half-width of the load balancer's multiplier range (±5%)
const jitterRange = 0.05

const millisPerDay = 24 * 60 * 60 * 1000

// Algorithm computes review schedules. The random source feeding the
// load balancer is injected so tests can supply a fixed seed.
type Algorithm struct {
	config Config
	rng    *rand.Rand
}

// New creates an algorithm instance with the given config.
// A nil rng falls back to a time-seeded source.
func New(config Config, rng *rand.Rand) *Algorithm {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Algorithm{config: config, rng: rng}
}

// Config returns the current algorithm configuration
func (a *Algorithm) Config() Config {
	return a.config
}

// UpdateConfig replaces the configuration used for subsequent calculations
func (a *Algorithm) UpdateConfig(config Config) {
	a.config = config
}

// CalculateReview applies one review outcome to a progress record and
// returns the updated record. The input is not modified. Callers are
// expected to supply validated config; negative or otherwise malformed
// numeric fields are not defended against.
func (a *Algorithm) CalculateReview(p models.Progress, outcome models.Outcome, now time.Time) models.Progress {
	ease := p.Ease
	if ease == 0 {
		ease = a.config.BaseEase
	}

	var interval float64
	if p.ReviewCount == 0 {
		// First review: fixed lookup, ease untouched
		switch outcome {
		case models.OutcomeHard:
			interval = firstIntervalHard
		case models.OutcomeEasy:
			interval = firstIntervalEasy
		default:
			interval = firstIntervalGood
		}
	} else {
		switch outcome {
		case models.OutcomeHard:
			interval = p.Interval * float64(a.config.IntervalChangeHard) / 100
			ease = maxInt(a.config.EaseFloor, ease-20)
		case models.OutcomeEasy:
			interval = p.Interval * float64(ease) / 100 * float64(a.config.EasyBonus) / 100
			ease += 15
		default: // Good
			interval = p.Interval * float64(ease) / 100
		}

		if a.config.EnableLoadBalancer && interval >= 1 {
			// Uniform multiplier in [1-jitterRange, 1+jitterRange]
			interval *= 1 + jitterRange*(a.rng.Float64()*2-1)
		}
	}

	if max := float64(a.config.MaxIntervalDays); interval > max {
		interval = max
	}
	interval = math.Round(interval*100) / 100

	due := now.Add(time.Duration(interval*millisPerDay) * time.Millisecond)

	updated := p
	updated.ReviewCount = p.ReviewCount + 1
	updated.Ease = ease
	updated.Interval = interval
	updated.LastReview = &now
	updated.DueDate = &due
	updated.Difficulty = outcome
	return updated
}

// InitialEase computes the ease to seed a brand-new progress record with.
// A positive linkedEase pulls the result toward the linked card's ease,
// weighted by MaxLinkContribution; pass 0 for cards with no usable link.
func (a *Algorithm) InitialEase(linkedEase int) int {
	ease := float64(a.config.BaseEase)
	if linkedEase > 0 && a.config.MaxLinkContribution > 0 {
		ease += float64(linkedEase-a.config.BaseEase) * float64(a.config.MaxLinkContribution) / 100
	}
	return maxInt(a.config.EaseFloor, int(math.Round(ease)))
}

// IsDue reports whether the card should be reviewed now.
// A record without a due date (never scheduled) is always due.
func IsDue(p models.Progress, now time.Time) bool {
	return p.DueDate == nil || !now.Before(*p.DueDate)
}

// DaysUntilReview returns the number of days until the card comes due,
// rounded to the nearest whole day; 0 for records without a due date.
func DaysUntilReview(p models.Progress, now time.Time) int {
	if p.DueDate == nil {
		return 0
	}
	return int(math.Round(float64(p.DueDate.Sub(now).Milliseconds()) / millisPerDay))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

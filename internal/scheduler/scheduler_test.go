package scheduler

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/flashbot/internal/srs"
	"github.com/example/flashbot/pkg/models"
)

// mockStore is an in-memory Store used by the scheduler tests.
// Setting failWith makes every method return that error.
type mockStore struct {
	cards     []models.Card
	progress  map[string]models.Progress
	completed map[string]bool
	later     []string
	failWith  error
}

func newMockStore(cards ...models.Card) *mockStore {
	return &mockStore{
		cards:     cards,
		progress:  make(map[string]models.Progress),
		completed: make(map[string]bool),
	}
}

func (m *mockStore) AllCards() ([]models.Card, error) {
	return m.cards, m.failWith
}

func (m *mockStore) Card(id string) (*models.Card, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	for i := range m.cards {
		if m.cards[i].ID == id {
			return &m.cards[i], nil
		}
	}
	return nil, nil
}

func (m *mockStore) Progress(id string) (models.Progress, error) {
	return m.progress[id], m.failWith
}

func (m *mockStore) AllProgress() (map[string]models.Progress, error) {
	return m.progress, m.failWith
}

func (m *mockStore) SaveProgress(p models.Progress) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.progress[p.CardID] = p
	return nil
}

func (m *mockStore) CompletedSet() (map[string]bool, error) {
	return m.completed, m.failWith
}

func (m *mockStore) MarkCompleted(id string) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.completed[id] = true
	return nil
}

func (m *mockStore) LaterQueue() ([]string, error) {
	return m.later, m.failWith
}

func (m *mockStore) PushLater(id string) error {
	if m.failWith != nil {
		return m.failWith
	}
	for _, queued := range m.later {
		if queued == id {
			return nil
		}
	}
	m.later = append(m.later, id)
	return nil
}

func (m *mockStore) RemoveLater(id string) error {
	if m.failWith != nil {
		return m.failWith
	}
	kept := m.later[:0]
	for _, queued := range m.later {
		if queued != id {
			kept = append(kept, queued)
		}
	}
	m.later = kept
	return nil
}

func (m *mockStore) ResetAll() error {
	if m.failWith != nil {
		return m.failWith
	}
	m.progress = make(map[string]models.Progress)
	m.completed = make(map[string]bool)
	m.later = nil
	return nil
}

func newTestScheduler(store Store) *Scheduler {
	cfg := srs.DefaultConfig()
	cfg.EnableLoadBalancer = false
	algo := srs.New(cfg, rand.New(rand.NewSource(1)))
	return New(store, algo, rand.New(rand.NewSource(1)))
}

func card(id string) models.Card {
	return models.Card{ID: id, Question: "q-" + id, Answer: "a-" + id}
}

func reviewed(count int, due time.Time) models.Progress {
	last := due.Add(-24 * time.Hour)
	return models.Progress{ReviewCount: count, Ease: 250, Interval: 1, LastReview: &last, DueDate: &due}
}

func TestNextCard_DueTierWinsOverOthers(t *testing.T) {
	now := time.Now()
	store := newMockStore(card("future"), card("overdue"), card("fresh"))
	store.progress["future"] = reviewed(1, now.Add(48*time.Hour))
	store.progress["overdue"] = reviewed(1, now.Add(-48*time.Hour))

	sched := newTestScheduler(store)
	review, err := sched.NextCard()
	require.NoError(t, err)
	require.NotNil(t, review)

	// "fresh" is due too (no due date), but a dated overdue record
	// carries concrete urgency and comes first
	assert.Equal(t, "overdue", review.Card.ID)
}

func TestNextCard_UndatedTieBreaksOnReviewCount(t *testing.T) {
	store := newMockStore(card("seen"), card("never"))
	store.progress["seen"] = models.Progress{CardID: "seen", ReviewCount: 2, Ease: 250, Interval: 1}

	sched := newTestScheduler(store)
	review, err := sched.NextCard()
	require.NoError(t, err)
	require.NotNil(t, review)
	assert.Equal(t, "never", review.Card.ID, "fewer reviews wins among undated records")
}

func TestNextCard_EarliestDueDateFirst(t *testing.T) {
	now := time.Now()
	store := newMockStore(card("a"), card("b"), card("c"))
	store.progress["a"] = reviewed(2, now.Add(-time.Hour))
	store.progress["b"] = reviewed(2, now.Add(-72*time.Hour))
	store.progress["c"] = reviewed(2, now.Add(72*time.Hour))

	sched := newTestScheduler(store)
	review, err := sched.NextCard()
	require.NoError(t, err)
	require.NotNil(t, review)
	assert.Equal(t, "b", review.Card.ID)
}

func TestNextCard_ThreeItemScenario(t *testing.T) {
	// One overdue, one future-dated, one never reviewed: the overdue
	// card is picked
	now := time.Now()
	store := newMockStore(card("new"), card("overdue"), card("future"))
	store.progress["overdue"] = reviewed(3, now.Add(-24*time.Hour))
	store.progress["future"] = reviewed(3, now.Add(24*time.Hour))

	sched := newTestScheduler(store)
	review, err := sched.NextCard()
	require.NoError(t, err)
	require.NotNil(t, review)
	assert.Equal(t, "overdue", review.Card.ID)
}

func TestNextCard_UnshownTier(t *testing.T) {
	now := time.Now()
	store := newMockStore(card("done"), card("pending"))
	store.progress["done"] = reviewed(1, now.Add(48*time.Hour))
	store.progress["pending"] = reviewed(1, now.Add(24*time.Hour))
	store.completed["done"] = true

	// Nothing due, "pending" never completed
	sched := newTestScheduler(store)
	review, err := sched.NextCard()
	require.NoError(t, err)
	require.NotNil(t, review)
	assert.Equal(t, "pending", review.Card.ID)
}

func TestNextCard_DeferredTierFIFO(t *testing.T) {
	now := time.Now()
	store := newMockStore(card("x"), card("y"))
	store.progress["x"] = reviewed(1, now.Add(48*time.Hour))
	store.progress["y"] = reviewed(1, now.Add(48*time.Hour))
	store.completed["x"] = true
	store.completed["y"] = true
	store.later = []string{"y", "x"}

	sched := newTestScheduler(store)
	review, err := sched.NextCard()
	require.NoError(t, err)
	require.NotNil(t, review)
	assert.Equal(t, "y", review.Card.ID, "head of the later queue comes first")
}

func TestNextCard_NothingAvailable(t *testing.T) {
	now := time.Now()

	// Empty catalog
	sched := newTestScheduler(newMockStore())
	review, err := sched.NextCard()
	require.NoError(t, err)
	assert.Nil(t, review)

	// Everything completed and future-dated, later queue empty
	store := newMockStore(card("x"))
	store.progress["x"] = reviewed(1, now.Add(48*time.Hour))
	store.completed["x"] = true
	sched = newTestScheduler(store)
	review, err = sched.NextCard()
	require.NoError(t, err)
	assert.Nil(t, review)
}

func TestNextCard_StoreFailure(t *testing.T) {
	store := newMockStore(card("x"))
	store.failWith = errors.New("db gone")

	sched := newTestScheduler(store)
	review, err := sched.NextCard()
	assert.Error(t, err)
	assert.Nil(t, review)
	assert.False(t, sched.HasCardsAvailable())
}

func TestRecordReview_GoodMarksCompleted(t *testing.T) {
	store := newMockStore(card("x"))
	store.later = []string{"x"}
	sched := newTestScheduler(store)

	require.NoError(t, sched.RecordReview("x", models.OutcomeGood))

	p := store.progress["x"]
	assert.Equal(t, 1, p.ReviewCount)
	assert.Equal(t, 1.0, p.Interval)
	assert.Equal(t, 250, p.Ease)
	assert.True(t, store.completed["x"])
	assert.Empty(t, store.later, "completing a card dequeues it")

	// Completing again is idempotent
	require.NoError(t, sched.RecordReview("x", models.OutcomeEasy))
	assert.True(t, store.completed["x"])
}

func TestRecordReview_HardStaysInRotation(t *testing.T) {
	store := newMockStore(card("x"))
	sched := newTestScheduler(store)

	require.NoError(t, sched.RecordReview("x", models.OutcomeHard))

	assert.False(t, store.completed["x"])
	p := store.progress["x"]
	assert.Equal(t, 0.5, p.Interval)
	assert.Equal(t, models.OutcomeHard, p.Difficulty)
}

func TestRecordReview_EndToEndGood(t *testing.T) {
	// reviewCount=1, ease=250, interval=1 → Good doubles-and-a-half
	now := time.Now()
	store := newMockStore(card("x"))
	store.progress["x"] = withID(reviewed(1, now), "x")
	sched := newTestScheduler(store)

	require.NoError(t, sched.RecordReview("x", models.OutcomeGood))

	p := store.progress["x"]
	assert.Equal(t, 2.5, p.Interval)
	assert.Equal(t, 250, p.Ease)
	assert.Equal(t, 2, p.ReviewCount)
	require.NotNil(t, p.DueDate)
	assert.WithinDuration(t, now.Add(60*time.Hour), *p.DueDate, time.Minute)
}

func TestRecordReview_SeedsEaseFromLinkedCard(t *testing.T) {
	linked := card("src")
	dependent := models.Card{ID: "dst", Question: "q", Answer: "a", LinkedID: "src"}
	store := newMockStore(linked, dependent)
	store.progress["src"] = models.Progress{CardID: "src", ReviewCount: 3, Ease: 350, Interval: 5}

	sched := newTestScheduler(store)
	require.NoError(t, sched.RecordReview("dst", models.OutcomeGood))

	// 250 + (350-250) * 50% = 300
	assert.Equal(t, 300, store.progress["dst"].Ease)
}

func TestRecordReview_UnknownCardIsNoOp(t *testing.T) {
	store := newMockStore(card("x"))
	sched := newTestScheduler(store)

	require.NoError(t, sched.RecordReview("missing", models.OutcomeGood))
	assert.Empty(t, store.progress)
}

func TestRecordReview_RejectsUnknownOutcome(t *testing.T) {
	sched := newTestScheduler(newMockStore(card("x")))
	assert.Error(t, sched.RecordReview("x", models.Outcome("later")))
}

func TestMarkForLater_Idempotent(t *testing.T) {
	store := newMockStore(card("x"))
	sched := newTestScheduler(store)

	require.NoError(t, sched.MarkForLater("x"))
	require.NoError(t, sched.MarkForLater("x"))

	assert.Equal(t, []string{"x"}, store.later)
	assert.Equal(t, "x", store.progress["x"].CardID, "progress record created on first queueing")
}

func TestStats(t *testing.T) {
	now := time.Now()
	store := newMockStore(card("new"), card("due"), card("future"), card("queued"))
	store.progress["due"] = reviewed(1, now.Add(-time.Hour))
	store.progress["future"] = reviewed(2, now.Add(48*time.Hour))
	store.progress["queued"] = reviewed(1, now.Add(48*time.Hour))
	store.later = []string{"queued"}

	sched := newTestScheduler(store)
	stats, err := sched.Stats()
	require.NoError(t, err)

	assert.Equal(t, models.Stats{Due: 1, New: 1, Later: 1, Total: 4}, stats)
}

func TestStats_AfterGoodReview(t *testing.T) {
	store := newMockStore(card("x"))
	sched := newTestScheduler(store)

	require.NoError(t, sched.RecordReview("x", models.OutcomeGood))

	stats, err := sched.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.New, "reviewed card no longer counts as new")
	assert.Equal(t, 1, stats.Total)
}

func TestReset(t *testing.T) {
	store := newMockStore(card("x"))
	sched := newTestScheduler(store)

	require.NoError(t, sched.RecordReview("x", models.OutcomeGood))
	require.NoError(t, sched.Reset())

	assert.Empty(t, store.progress)
	assert.Empty(t, store.completed)

	stats, err := sched.Stats()
	require.NoError(t, err)
	assert.Equal(t, models.Stats{New: 1, Total: 1}, stats)
}

func TestHasCardsAvailable(t *testing.T) {
	store := newMockStore(card("x"))
	sched := newTestScheduler(store)
	assert.True(t, sched.HasCardsAvailable())

	assert.False(t, newTestScheduler(newMockStore()).HasCardsAvailable())
}

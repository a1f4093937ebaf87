// Package revision implements a timed pass through one folder's cards:
// the cards are shuffled once, then each is revealed and graded known or
// review until the list is exhausted or the session is closed.
package revision

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/agahlya1812/memoboost/internal/client/models"
)

// DefaultDuration is the length of a session when none is given.
const DefaultDuration = 300 * time.Second

var (
	ErrNoCards            = errors.New("this folder has no cards to revise")
	ErrNotActive          = errors.New("no active revision session")
	ErrCompleted          = errors.New("revision session is already complete")
	ErrInvalidStatus      = errors.New("a card can only be marked known or review")
	ErrEvaluationInFlight = errors.New("previous answer is still being saved")
)

// StatusUpdater changes a card's mastery status in three steps: Apply
// updates local state and returns the status it replaced, Commit persists
// the change, Rollback restores the previous status after a failed Commit.
type StatusUpdater interface {
	Apply(cardID string, status models.MasteryStatus) (models.MasteryStatus, error)
	Commit(ctx context.Context, cardID string, status models.MasteryStatus) error
	Rollback(cardID string, previous models.MasteryStatus)
}

// Session is safe for concurrent use. Only one Evaluate runs at a time.
type Session struct {
	mu         sync.Mutex
	categoryID string
	cards      []*models.Card
	cursor     int
	endTime    time.Time
	reveal     bool
	answered   int
	completed  bool
	closed     bool
	evaluating bool
}

// Summary counts the working copy by final status.
type Summary struct {
	Known     int
	Review    int
	Unknown   int
	Answered  int
	Total     int
	Completed bool
}

// View is the card under the cursor.
type View struct {
	Card     models.Card
	Index    int
	Total    int
	Revealed bool
}

// Start opens a session over cards, which must all belong to one folder.
// The cards are copied and shuffled with rng (the global source when nil).
// A non-positive duration selects DefaultDuration.
func Start(cards []*models.Card, now time.Time, rng *rand.Rand, duration time.Duration) (*Session, error) {
	if len(cards) == 0 {
		return nil, ErrNoCards
	}
	if duration <= 0 {
		duration = DefaultDuration
	}

	working := make([]*models.Card, len(cards))
	for i, c := range cards {
		cp := *c
		working[i] = &cp
	}
	shuffle(working, rng)

	return &Session{
		categoryID: cards[0].CategoryID,
		cards:      working,
		endTime:    now.Add(duration),
	}, nil
}

// shuffle is a Fisher-Yates shuffle: every permutation is equally likely.
func shuffle(cards []*models.Card, rng *rand.Rand) {
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for i := len(cards) - 1; i > 0; i-- {
		j := intN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// CategoryID is the folder the session was started on.
func (s *Session) CategoryID() string {
	return s.categoryID
}

// Active reports whether the session is open and has cards left.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && !s.completed
}

func (s *Session) Completed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completed
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Current returns the card under the cursor; ok is false once the session
// is completed or closed.
func (s *Session) Current() (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.completed || s.cursor >= len(s.cards) {
		return View{}, false
	}
	return View{
		Card:     *s.cards[s.cursor],
		Index:    s.cursor,
		Total:    len(s.cards),
		Revealed: s.reveal,
	}, true
}

// Reveal shows the answer of the current card. Revealing twice is a no-op.
func (s *Session) Reveal() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkActive(); err != nil {
		return err
	}
	s.reveal = true
	return nil
}

func (s *Session) checkActive() error {
	if s.closed {
		return ErrNotActive
	}
	if s.completed {
		return ErrCompleted
	}
	return nil
}

// Evaluate grades the current card with status (known or review) through
// u, then moves to the next card or completes the session. When the update
// fails the local status is rolled back and the cursor stays put. A call
// made while another is running returns ErrEvaluationInFlight.
func (s *Session) Evaluate(ctx context.Context, status models.MasteryStatus, u StatusUpdater) error {
	if status != models.StatusKnown && status != models.StatusReview {
		return ErrInvalidStatus
	}

	s.mu.Lock()
	if err := s.checkActive(); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.evaluating {
		s.mu.Unlock()
		return ErrEvaluationInFlight
	}
	if s.cursor >= len(s.cards) {
		s.mu.Unlock()
		return ErrCompleted
	}
	s.evaluating = true
	card := s.cards[s.cursor]
	s.mu.Unlock()

	err := commit(ctx, u, card.ID, status)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluating = false

	if err != nil {
		return err
	}
	if s.closed {
		return nil
	}

	card.MasteryStatus = status
	s.answered++
	s.reveal = false
	if s.cursor+1 >= len(s.cards) {
		s.completed = true
	} else {
		s.cursor++
	}
	return nil
}

func commit(ctx context.Context, u StatusUpdater, cardID string, status models.MasteryStatus) error {
	previous, err := u.Apply(cardID, status)
	if err != nil {
		return err
	}
	if err := u.Commit(ctx, cardID, status); err != nil {
		u.Rollback(cardID, previous)
		return err
	}
	return nil
}

// Close ends the session from any state.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.reveal = false
}

// Summary derives the completion counts from the working copy.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{Answered: s.answered, Total: len(s.cards), Completed: s.completed}
	for _, c := range s.cards {
		switch c.MasteryStatus {
		case models.StatusKnown:
			sum.Known++
		case models.StatusReview:
			sum.Review++
		default:
			sum.Unknown++
		}
	}
	return sum
}

// Remaining is the time left before the countdown ends, never negative.
func (s *Session) Remaining(now time.Time) time.Duration {
	if d := s.endTime.Sub(now); d > 0 {
		return d
	}
	return 0
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.endTime)
}

// Order returns the ids of the working copy in session order.
func (s *Session) Order() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, len(s.cards))
	for i, c := range s.cards {
		ids[i] = c.ID
	}
	return ids
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/agahlya1812/memoboost/internal/common"
	"github.com/agahlya1812/memoboost/internal/logging"
	"github.com/agahlya1812/memoboost/internal/server/repositories/categories"
	"github.com/agahlya1812/memoboost/internal/server/repositories/repomanager"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingManager logs owner locks and folder reads made inside
// transactions, and can make LockOwner fail.
type recordingManager struct {
	repomanager.RepositoryManager
	mu      sync.Mutex
	events  []string
	lockErr error
}

func (m *recordingManager) record(e string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func (m *recordingManager) take() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.events
	m.events = nil
	return out
}

func (m *recordingManager) WithTx(ctx context.Context, fn func(ctx context.Context, r repomanager.Repositories) error) error {
	return m.RepositoryManager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		return fn(ctx, recordingRepos{Repositories: r, m: m})
	})
}

type recordingRepos struct {
	repomanager.Repositories
	m *recordingManager
}

func (r recordingRepos) LockOwner(ctx context.Context, userID string) error {
	r.m.record("lock:" + userID)
	if r.m.lockErr != nil {
		return r.m.lockErr
	}
	return r.Repositories.LockOwner(ctx, userID)
}

func (r recordingRepos) Categories() categories.Repository {
	r.m.record("categories")
	return r.Repositories.Categories()
}

func TestTreeWritesLockOwnerBeforeReading(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@b.c")
	math := f.folder(t, u.ID, "Math", nil)
	card := f.card(t, u.ID, math.ID, "q")

	rm := &recordingManager{RepositoryManager: f.m}
	cats := NewCategoryService(rm, logging.Nop())
	cardSvc := NewCardService(rm, logging.Nop())
	transfer := NewTransferService(rm, logging.Nop())

	var algebraID string
	steps := []struct {
		name string
		run  func() error
	}{
		{"create folder", func() error {
			c, err := cats.Create(ctx, u.ID, "Algebra", &math.ID, "")
			if c != nil {
				algebraID = c.ID
			}
			return err
		}},
		{"update folder", func() error {
			_, err := cats.Update(ctx, u.ID, algebraID, "Geometry", nil, "")
			return err
		}},
		{"create card", func() error {
			_, err := cardSvc.Create(ctx, u.ID, CardInput{Question: "q2", Answer: "a", CategoryID: math.ID})
			return err
		}},
		{"update card", func() error {
			_, err := cardSvc.Update(ctx, u.ID, card.ID, CardInput{Question: "q", Answer: "b", CategoryID: algebraID})
			return err
		}},
		{"import", func() error {
			_, err := transfer.Import(ctx, u.ID, FormatJSON, strings.NewReader(
				`{"categories": [{"id": "x", "name": "Imported"}], "cards": [{"question": "q", "answer": "a", "categoryId": "x"}]}`))
			return err
		}},
		{"delete folder", func() error {
			_, err := cats.Delete(ctx, u.ID, math.ID)
			return err
		}},
	}

	for _, step := range steps {
		require.NoError(t, step.run(), step.name)
		events := rm.take()
		require.NotEmpty(t, events, step.name)
		lock := -1
		for i, e := range events {
			if e == "lock:"+u.ID {
				lock = i
				break
			}
		}
		require.GreaterOrEqual(t, lock, 0, "%s: no owner lock in %v", step.name, events)
		assert.NotContains(t, events[:lock], "categories", "%s: folders read before the lock", step.name)
	}
}

func TestTreeWrites_LockFailureWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@b.c")
	math := f.folder(t, u.ID, "Math", nil)

	rm := &recordingManager{RepositoryManager: f.m, lockErr: errors.New("lock timeout")}
	cats := NewCategoryService(rm, logging.Nop())
	cardSvc := NewCardService(rm, logging.Nop())

	_, err := cats.Create(ctx, u.ID, "Algebra", nil, "")
	assert.ErrorIs(t, err, common.ErrorUnavailable)
	_, err = cardSvc.Create(ctx, u.ID, CardInput{Question: "q", Answer: "a", CategoryID: math.ID})
	assert.ErrorIs(t, err, common.ErrorUnavailable)
	_, err = cats.Delete(ctx, u.ID, math.ID)
	assert.ErrorIs(t, err, common.ErrorUnavailable)

	list, err := f.categories.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	cards, err := f.cards.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cards)
}

func TestCategoryCreate_ConcurrentSameName(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "a@b.c")
	math := f.folder(t, u.ID, "Math", nil)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.categories.Create(context.Background(), u.ID, fmt.Sprintf(" algebra%s", strings.Repeat(" ", i)), &math.ID, "")
		}()
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, common.ErrorConflict)
	}
	assert.Equal(t, 1, created)
}

func TestCardWriteError(t *testing.T) {
	err := cardWriteError(fmt.Errorf("commit: %w", &pgconn.PgError{Code: "23503"}))
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, MsgUnknownFolder, err.Error())

	err = cardWriteError(errors.New("conn reset"))
	assert.ErrorIs(t, err, common.ErrorUnavailable)
}

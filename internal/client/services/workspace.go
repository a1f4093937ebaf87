package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/agahlya1812/memoboost/internal/client/client"
	"github.com/agahlya1812/memoboost/internal/client/models"
	"github.com/agahlya1812/memoboost/internal/client/repositories/session"
	"github.com/agahlya1812/memoboost/internal/client/repositories/states"
	"github.com/agahlya1812/memoboost/internal/client/revision"
	"github.com/agahlya1812/memoboost/internal/netx"
)

var (
	// ErrOffline wraps client.ErrUnavailable when cached data is shown instead.
	ErrOffline         = errors.New("server unreachable, showing cached data")
	ErrNoActiveFolder  = errors.New("open a folder first")
	ErrNoRevision      = revision.ErrNotActive
	ErrUnknownCard     = errors.New("card not found")
	ErrUnknownCategory = errors.New("folder not found")
)

// Workspace is the logged-in user's view of their folders and cards: the
// last fetched state, the folder being browsed and the revision session
// running on it.
//
// Every successful mutation is followed by a full refetch. Status marks
// are the exception: they are applied locally first and rolled back when
// the server rejects them. An expired or invalid session logs the user out.
type Workspace struct {
	client   client.Client
	auth     AuthService
	cache    states.Repository
	duration time.Duration

	// now and rng are replaced in tests.
	now func() time.Time
	rng *rand.Rand

	mu       sync.Mutex
	user     *session.Session
	state    *models.State
	active   string
	revision *revision.Session
}

var _ revision.StatusUpdater = (*Workspace)(nil)

func NewWorkspace(c client.Client, auth AuthService, cache states.Repository, revisionDuration time.Duration) *Workspace {
	return &Workspace{
		client:   c,
		auth:     auth,
		cache:    cache,
		duration: revisionDuration,
		now:      time.Now,
	}
}

// User returns the logged-in user, nil when logged out.
func (w *Workspace) User() *session.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.user
}

func (w *Workspace) LoggedIn() bool {
	return w.User() != nil
}

func (w *Workspace) Register(ctx context.Context, email, password, name string) error {
	s, err := w.auth.Register(ctx, email, password, name)
	if err != nil {
		return err
	}
	return w.begin(ctx, s)
}

func (w *Workspace) Login(ctx context.Context, email, password string) error {
	s, err := w.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return w.begin(ctx, s)
}

// Restore resumes the session saved by a previous run.
func (w *Workspace) Restore(ctx context.Context) error {
	s, err := w.auth.Restore(ctx)
	if err != nil {
		return err
	}
	return w.begin(ctx, s)
}

func (w *Workspace) begin(ctx context.Context, s *session.Session) error {
	w.mu.Lock()
	w.user = s
	w.state = &models.State{User: models.User{ID: s.UserID, Email: s.Email, Name: s.Name}}
	w.active = ""
	w.closeRevisionLocked()
	w.mu.Unlock()

	return w.Sync(ctx)
}

// Logout drops the session and every piece of local state except the cache.
func (w *Workspace) Logout(ctx context.Context) error {
	w.reset()
	return w.auth.Logout(ctx)
}

func (w *Workspace) reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.user = nil
	w.state = nil
	w.active = ""
	w.closeRevisionLocked()
}

// check turns identity failures into a local logout.
func (w *Workspace) check(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, client.ErrSessionExpired) {
		w.reset()
		_ = w.auth.Logout(ctx)
	}
	return err
}

func (w *Workspace) userID() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.user == nil {
		return "", ErrNotLoggedIn
	}
	return w.user.UserID, nil
}

// Sync fetches the server state and merges it with the cache: when the
// server holds nothing and the cache holds data, the cache wins. The result
// is written back to the cache. When the server is unreachable the cached
// state is shown and ErrOffline is returned.
func (w *Workspace) Sync(ctx context.Context) error {
	userID, err := w.userID()
	if err != nil {
		return err
	}

	cached, cacheErr := w.cache.Get(ctx, userID)

	remote, err := w.client.State(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) && cacheErr == nil && cached != nil {
			w.setState(cached)
			return fmt.Errorf("%w: %w", ErrOffline, err)
		}
		return w.check(ctx, err)
	}

	merged := remote
	if remote.Empty() && cacheErr == nil && !cached.Empty() {
		merged = cached
		merged.User = remote.User
	}

	w.setState(merged)
	return w.cache.Save(ctx, userID, merged)
}

// refresh replaces local state with the server's after a mutation.
func (w *Workspace) refresh(ctx context.Context) error {
	userID, err := w.userID()
	if err != nil {
		return err
	}

	s, err := w.client.State(ctx)
	if err != nil {
		return w.check(ctx, err)
	}
	w.setState(s)
	return w.cache.Save(ctx, userID, s)
}

func (w *Workspace) setState(s *models.State) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.user == nil {
		return
	}
	w.state = s
	if w.active != "" && models.FindCategory(s.Categories, w.active) == nil {
		w.active = ""
	}
	if w.revision != nil && models.FindCategory(s.Categories, w.revision.CategoryID()) == nil {
		w.closeRevisionLocked()
	}
}

// Snapshot returns a copy of the current state.
func (w *Workspace) Snapshot() *models.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == nil {
		return &models.State{}
	}
	return w.state.Clone()
}

// ActiveFolder returns the folder being browsed, nil at the root.
func (w *Workspace) ActiveFolder() *models.Category {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == nil || w.active == "" {
		return nil
	}
	c := models.FindCategory(w.state.Categories, w.active)
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Open makes id the active folder ("" for the root). A revision running on
// another folder is closed.
func (w *Workspace) Open(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if id != "" {
		if w.state == nil || models.FindCategory(w.state.Categories, id) == nil {
			return ErrUnknownCategory
		}
	}
	w.active = id
	if w.revision != nil && w.revision.CategoryID() != id {
		w.closeRevisionLocked()
	}
	return nil
}

func (w *Workspace) CreateFolder(ctx context.Context, name string, parentID *string, color string) (*models.Category, error) {
	if _, err := w.userID(); err != nil {
		return nil, err
	}
	c, err := w.client.CreateCategory(ctx, name, parentID, color)
	if err != nil {
		return nil, w.check(ctx, err)
	}
	return c, w.refresh(ctx)
}

func (w *Workspace) UpdateFolder(ctx context.Context, id, name string, parentID *string, color string) (*models.Category, error) {
	if _, err := w.userID(); err != nil {
		return nil, err
	}
	c, err := w.client.UpdateCategory(ctx, id, name, parentID, color)
	if err != nil {
		return nil, w.check(ctx, err)
	}
	return c, w.refresh(ctx)
}

// DeleteFolder removes the folder with its sub-folders and cards. The
// active folder and the revision are closed when they were removed.
func (w *Workspace) DeleteFolder(ctx context.Context, id string) (*models.DeleteResult, error) {
	if _, err := w.userID(); err != nil {
		return nil, err
	}
	res, err := w.client.DeleteCategory(ctx, id)
	if err != nil {
		return nil, w.check(ctx, err)
	}

	w.mu.Lock()
	if slices.Contains(res.RemovedCategoryIDs, w.active) {
		w.active = ""
	}
	if w.revision != nil && slices.Contains(res.RemovedCategoryIDs, w.revision.CategoryID()) {
		w.closeRevisionLocked()
	}
	w.mu.Unlock()

	return res, w.refresh(ctx)
}

func (w *Workspace) CreateCard(ctx context.Context, in client.CardInput) (*models.Card, error) {
	if _, err := w.userID(); err != nil {
		return nil, err
	}
	c, err := w.client.CreateCard(ctx, in)
	if err != nil {
		return nil, w.check(ctx, err)
	}
	return c, w.refresh(ctx)
}

func (w *Workspace) UpdateCard(ctx context.Context, id string, in client.CardInput) (*models.Card, error) {
	if _, err := w.userID(); err != nil {
		return nil, err
	}
	c, err := w.client.UpdateCard(ctx, id, in)
	if err != nil {
		return nil, w.check(ctx, err)
	}
	return c, w.refresh(ctx)
}

func (w *Workspace) DeleteCard(ctx context.Context, id string) error {
	if _, err := w.userID(); err != nil {
		return err
	}
	if err := w.client.DeleteCard(ctx, id); err != nil {
		return w.check(ctx, err)
	}
	return w.refresh(ctx)
}

// Apply sets the local status of a card and returns the one it replaced.
func (w *Workspace) Apply(cardID string, status models.MasteryStatus) (models.MasteryStatus, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == nil {
		return "", ErrNotLoggedIn
	}
	c := models.FindCard(w.state.Cards, cardID)
	if c == nil {
		return "", ErrUnknownCard
	}
	previous := c.MasteryStatus
	c.MasteryStatus = status
	return previous, nil
}

// Commit sends the status to the server.
func (w *Workspace) Commit(ctx context.Context, cardID string, status models.MasteryStatus) error {
	w.mu.Lock()
	var snapshot models.Card
	if w.state != nil {
		if c := models.FindCard(w.state.Cards, cardID); c != nil {
			snapshot = *c
		}
	}
	w.mu.Unlock()
	snapshot.ID = cardID

	updated, err := w.client.UpdateCardStatus(ctx, &snapshot, status)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if updated != nil && w.state != nil {
		if c := models.FindCard(w.state.Cards, cardID); c != nil {
			*c = *updated
		}
	}
	return nil
}

// Rollback restores a status replaced by Apply.
func (w *Workspace) Rollback(cardID string, previous models.MasteryStatus) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == nil {
		return
	}
	if c := models.FindCard(w.state.Cards, cardID); c != nil {
		c.MasteryStatus = previous
	}
}

// MarkCard sets a card's status optimistically.
func (w *Workspace) MarkCard(ctx context.Context, cardID string, status models.MasteryStatus) error {
	previous, err := w.Apply(cardID, status)
	if err != nil {
		return err
	}
	if err := w.Commit(ctx, cardID, status); err != nil {
		w.Rollback(cardID, previous)
		return w.check(ctx, err)
	}
	return w.saveCache(ctx)
}

func (w *Workspace) saveCache(ctx context.Context) error {
	w.mu.Lock()
	if w.user == nil || w.state == nil {
		w.mu.Unlock()
		return nil
	}
	userID, s := w.user.UserID, w.state.Clone()
	w.mu.Unlock()
	return w.cache.Save(ctx, userID, s)
}

// StartRevision opens a revision over the active folder's cards.
func (w *Workspace) StartRevision() (*revision.Session, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == nil {
		return nil, ErrNotLoggedIn
	}
	if w.active == "" {
		return nil, ErrNoActiveFolder
	}

	s, err := revision.Start(models.CardsIn(w.state.Cards, w.active), w.now(), w.rng, w.duration)
	if err != nil {
		return nil, err
	}
	w.closeRevisionLocked()
	w.revision = s
	return s, nil
}

// Revision returns the running revision, nil when idle.
func (w *Workspace) Revision() *revision.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.revision
}

func (w *Workspace) Reveal() error {
	s := w.Revision()
	if s == nil {
		return ErrNoRevision
	}
	return s.Reveal()
}

// Evaluate grades the current revision card.
func (w *Workspace) Evaluate(ctx context.Context, status models.MasteryStatus) error {
	s := w.Revision()
	if s == nil {
		return ErrNoRevision
	}
	if err := s.Evaluate(ctx, status, w); err != nil {
		return w.check(ctx, err)
	}
	return w.saveCache(ctx)
}

func (w *Workspace) CloseRevision() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closeRevisionLocked()
}

func (w *Workspace) closeRevisionLocked() {
	if w.revision != nil {
		w.revision.Close()
		w.revision = nil
	}
}

func (w *Workspace) Export(ctx context.Context, format string) ([]byte, string, error) {
	if _, err := w.userID(); err != nil {
		return nil, "", err
	}
	data, name, err := w.client.Export(ctx, format)
	return data, name, w.check(ctx, err)
}

func (w *Workspace) Import(ctx context.Context, format string, data []byte) (*models.ImportResult, error) {
	if _, err := w.userID(); err != nil {
		return nil, err
	}
	res, err := w.client.Import(ctx, format, data)
	if err != nil {
		return nil, w.check(ctx, err)
	}
	return res, w.refresh(ctx)
}

// UploadImage attaches an image to a card through a presigned upload URL.
func (w *Workspace) UploadImage(ctx context.Context, cardID, contentType string, data []byte) error {
	if _, err := w.userID(); err != nil {
		return err
	}
	up, err := w.client.CreateImageUpload(ctx, cardID, contentType)
	if err != nil {
		return w.check(ctx, err)
	}
	if err := netx.UploadToS3PresignedURL(ctx, nil, up.URL, contentType, data); err != nil {
		return err
	}
	return w.refresh(ctx)
}

// ImageURL returns a short-lived link to a card's image.
func (w *Workspace) ImageURL(ctx context.Context, cardID string) (string, error) {
	if _, err := w.userID(); err != nil {
		return "", err
	}
	u, err := w.client.ImageURL(ctx, cardID)
	return u, w.check(ctx, err)
}

// DownloadImage fetches a card's image through its short-lived link.
func (w *Workspace) DownloadImage(ctx context.Context, cardID string) ([]byte, error) {
	u, err := w.ImageURL(ctx, cardID)
	if err != nil {
		return nil, err
	}
	return netx.DownloadFromPresignedURL(ctx, nil, u)
}

// Ping reports whether the server answers.
func (w *Workspace) Ping(ctx context.Context) error {
	return w.auth.Ping(ctx)
}

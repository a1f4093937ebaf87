package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agahlya1812/memoboost/internal/client/client"
	"github.com/agahlya1812/memoboost/internal/client/models"
	"github.com/agahlya1812/memoboost/internal/client/repositories"
	"github.com/agahlya1812/memoboost/internal/client/revision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	fc    *fakeClient
	repos *repositories.Repositories
	ws    *Workspace
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos, err := repositories.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })

	fc := newFakeClient()
	ws := NewWorkspace(fc, NewAuthService(fc, repos.Session), repos.States, time.Minute)
	ws.rng = rand.New(rand.NewPCG(1, 2))
	return &fixture{fc: fc, repos: repos, ws: ws}
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	require.NoError(t, f.ws.Login(context.Background(), "ann@example.com", "secret"))
}

// seed creates a folder with n cards through the workspace.
func (f *fixture) seed(t *testing.T, n int) string {
	t.Helper()
	ctx := context.Background()
	folder, err := f.ws.CreateFolder(ctx, "Math", nil, "blue")
	require.NoError(t, err)
	for i := range n {
		_, err := f.ws.CreateCard(ctx, client.CardInput{
			Question:   fmt.Sprintf("q%d", i),
			Answer:     fmt.Sprintf("a%d", i),
			CategoryID: folder.ID,
		})
		require.NoError(t, err)
	}
	return folder.ID
}

func TestWorkspace_RequiresLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.False(t, f.ws.LoggedIn())
	assert.ErrorIs(t, f.ws.Sync(ctx), ErrNotLoggedIn)
	_, err := f.ws.CreateFolder(ctx, "x", nil, "")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = f.ws.StartRevision()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.ErrorIs(t, f.ws.Restore(ctx), ErrNotLoggedIn)
	assert.Empty(t, f.ws.Snapshot().Categories)
}

func TestWorkspace_LoginPersistsSessionAndRestore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	require.True(t, f.ws.LoggedIn())
	assert.Equal(t, "u1", f.ws.User().UserID)
	assert.Equal(t, "tok", f.fc.token)

	saved, err := f.repos.Session.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "tok", saved.Token)

	other := NewWorkspace(f.fc, NewAuthService(f.fc, f.repos.Session), f.repos.States, time.Minute)
	require.NoError(t, other.Restore(ctx))
	assert.Equal(t, "u1", other.User().UserID)
}

func TestWorkspace_LoginFailure(t *testing.T) {
	f := newFixture(t)
	f.fc.failNext["Login"] = client.ErrUnauthorized

	err := f.ws.Login(context.Background(), "ann@example.com", "bad")
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.False(t, f.ws.LoggedIn())
}

func TestWorkspace_SyncPrefersCachedDataOverEmptyServer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cached := &models.State{
		User:       models.User{ID: "u1"},
		Categories: []*models.Category{{ID: "old", Name: "Cached"}},
	}
	require.NoError(t, f.repos.States.Save(ctx, "u1", cached))

	f.login(t)

	snap := f.ws.Snapshot()
	require.Len(t, snap.Categories, 1)
	assert.Equal(t, "Cached", snap.Categories[0].Name)
	assert.Equal(t, "ann@example.com", snap.User.Email)
}

func TestWorkspace_SyncPrefersNonEmptyServer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repos.States.Save(ctx, "u1", &models.State{
		Categories: []*models.Category{{ID: "old", Name: "Cached"}},
	}))
	f.fc.state.Categories = []*models.Category{{ID: "srv", Name: "Server"}}

	f.login(t)

	snap := f.ws.Snapshot()
	require.Len(t, snap.Categories, 1)
	assert.Equal(t, "Server", snap.Categories[0].Name)

	stored, err := f.repos.States.Get(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, stored.Categories, 1)
	assert.Equal(t, "srv", stored.Categories[0].ID)
}

func TestWorkspace_SyncOffline(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	folderID := f.seed(t, 1)

	f.fc.failNext["State"] = fmt.Errorf("dial: %w", client.ErrUnavailable)
	err := f.ws.Sync(ctx)
	require.ErrorIs(t, err, ErrOffline)
	assert.ErrorIs(t, err, client.ErrUnavailable)
	assert.True(t, f.ws.LoggedIn())
	assert.NotNil(t, models.FindCategory(f.ws.Snapshot().Categories, folderID))
}

func TestWorkspace_SyncOfflineWithoutCache(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	require.NoError(t, f.repos.States.Delete(context.Background(), "u1"))

	f.fc.failNext["State"] = client.ErrUnavailable
	err := f.ws.Sync(context.Background())
	assert.ErrorIs(t, err, client.ErrUnavailable)
	assert.NotErrorIs(t, err, ErrOffline)
}

func TestWorkspace_MutationsRefetch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	folderID := f.seed(t, 2)
	snap := f.ws.Snapshot()
	assert.Len(t, snap.Categories, 1)
	assert.Len(t, models.CardsIn(snap.Cards, folderID), 2)

	child, err := f.ws.CreateFolder(ctx, "Algebra", &folderID, "red")
	require.NoError(t, err)
	_, err = f.ws.UpdateFolder(ctx, child.ID, "Geometry", &folderID, "green")
	require.NoError(t, err)

	got := models.FindCategory(f.ws.Snapshot().Categories, child.ID)
	require.NotNil(t, got)
	assert.Equal(t, "Geometry", got.Name)

	card := models.CardsIn(f.ws.Snapshot().Cards, folderID)[0]
	_, err = f.ws.UpdateCard(ctx, card.ID, client.CardInput{Question: "Q", Answer: "A", CategoryID: child.ID})
	require.NoError(t, err)
	assert.Len(t, models.CardsIn(f.ws.Snapshot().Cards, child.ID), 1)

	require.NoError(t, f.ws.DeleteCard(ctx, card.ID))
	assert.Nil(t, models.FindCard(f.ws.Snapshot().Cards, card.ID))

	stored, err := f.repos.States.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, stored.Categories, 2)
	assert.Len(t, stored.Cards, 1)

	assert.Contains(t, f.fc.calls, "State")
}

func TestWorkspace_MutationErrorDoesNotRefetch(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.fc.calls = nil
	f.fc.failNext["CreateCategory"] = client.ErrConflict

	_, err := f.ws.CreateFolder(context.Background(), "Math", nil, "")
	assert.ErrorIs(t, err, client.ErrConflict)
	assert.Equal(t, []string{"CreateCategory"}, f.fc.calls)
	assert.True(t, f.ws.LoggedIn())
}

func TestWorkspace_OpenFolder(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	folderID := f.seed(t, 0)

	assert.Nil(t, f.ws.ActiveFolder())
	assert.ErrorIs(t, f.ws.Open("missing"), ErrUnknownCategory)

	require.NoError(t, f.ws.Open(folderID))
	require.NotNil(t, f.ws.ActiveFolder())
	assert.Equal(t, "Math", f.ws.ActiveFolder().Name)

	require.NoError(t, f.ws.Open(""))
	assert.Nil(t, f.ws.ActiveFolder())
}

func TestWorkspace_DeleteFolderClosesActiveFolderAndRevision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	parentID := f.seed(t, 0)
	child, err := f.ws.CreateFolder(ctx, "Algebra", &parentID, "")
	require.NoError(t, err)
	card, err := f.ws.CreateCard(ctx, client.CardInput{Question: "q", Answer: "a", CategoryID: child.ID})
	require.NoError(t, err)

	require.NoError(t, f.ws.Open(child.ID))
	s, err := f.ws.StartRevision()
	require.NoError(t, err)

	res, err := f.ws.DeleteFolder(ctx, parentID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{parentID, child.ID}, res.RemovedCategoryIDs)
	assert.Equal(t, []string{card.ID}, res.RemovedCardIDs)

	assert.Nil(t, f.ws.ActiveFolder())
	assert.Nil(t, f.ws.Revision())
	assert.True(t, s.Closed())
	assert.Empty(t, f.ws.Snapshot().Categories)
	assert.Empty(t, f.ws.Snapshot().Cards)
}

func TestWorkspace_DeleteOtherFolderKeepsRevision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	folderID := f.seed(t, 1)
	other, err := f.ws.CreateFolder(ctx, "Other", nil, "")
	require.NoError(t, err)

	require.NoError(t, f.ws.Open(folderID))
	_, err = f.ws.StartRevision()
	require.NoError(t, err)

	_, err = f.ws.DeleteFolder(ctx, other.ID)
	require.NoError(t, err)
	assert.NotNil(t, f.ws.ActiveFolder())
	assert.NotNil(t, f.ws.Revision())
}

func TestWorkspace_MarkCard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	folderID := f.seed(t, 1)
	card := models.CardsIn(f.ws.Snapshot().Cards, folderID)[0]

	require.NoError(t, f.ws.MarkCard(ctx, card.ID, models.StatusKnown))
	assert.Equal(t, models.StatusKnown, models.FindCard(f.ws.Snapshot().Cards, card.ID).MasteryStatus)
	assert.Equal(t, models.StatusKnown, models.FindCard(f.fc.state.Cards, card.ID).MasteryStatus)

	stored, err := f.repos.States.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusKnown, models.FindCard(stored.Cards, card.ID).MasteryStatus)

	assert.ErrorIs(t, f.ws.MarkCard(ctx, "missing", models.StatusKnown), ErrUnknownCard)
}

func TestWorkspace_MarkCardRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	folderID := f.seed(t, 1)
	card := models.CardsIn(f.ws.Snapshot().Cards, folderID)[0]

	f.fc.failNext["UpdateCardStatus"] = client.ErrUnavailable
	err := f.ws.MarkCard(ctx, card.ID, models.StatusReview)
	assert.ErrorIs(t, err, client.ErrUnavailable)
	assert.Equal(t, models.StatusUnknown, models.FindCard(f.ws.Snapshot().Cards, card.ID).MasteryStatus)
	assert.Equal(t, models.StatusUnknown, models.FindCard(f.fc.state.Cards, card.ID).MasteryStatus)
}

func TestWorkspace_SessionExpiredLogsOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	folderID := f.seed(t, 1)
	require.NoError(t, f.ws.Open(folderID))

	f.fc.failNext["CreateCard"] = fmt.Errorf("request: %w", client.ErrSessionExpired)
	_, err := f.ws.CreateCard(ctx, client.CardInput{Question: "q", Answer: "a", CategoryID: folderID})
	require.ErrorIs(t, err, client.ErrSessionExpired)

	assert.False(t, f.ws.LoggedIn())
	assert.Nil(t, f.ws.ActiveFolder())
	assert.Empty(t, f.fc.token)

	saved, err := f.repos.Session.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, saved)

	stored, err := f.repos.States.Get(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, stored)
}

func TestWorkspace_Logout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	folderID := f.seed(t, 1)
	require.NoError(t, f.ws.Open(folderID))
	s, err := f.ws.StartRevision()
	require.NoError(t, err)

	require.NoError(t, f.ws.Logout(ctx))
	assert.False(t, f.ws.LoggedIn())
	assert.True(t, s.Closed())
	assert.Nil(t, f.ws.Revision())
	assert.Empty(t, f.ws.Snapshot().Categories)
}

func TestWorkspace_StartRevisionNeedsFolderWithCards(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	_, err := f.ws.StartRevision()
	assert.ErrorIs(t, err, ErrNoActiveFolder)

	folderID := f.seed(t, 0)
	require.NoError(t, f.ws.Open(folderID))
	_, err = f.ws.StartRevision()
	assert.ErrorIs(t, err, revision.ErrNoCards)
	assert.Nil(t, f.ws.Revision())

	assert.ErrorIs(t, f.ws.Reveal(), ErrNoRevision)
	assert.ErrorIs(t, f.ws.Evaluate(context.Background(), models.StatusKnown), ErrNoRevision)
}

func TestWorkspace_RevisionRun(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	folderID := f.seed(t, 3)
	require.NoError(t, f.ws.Open(folderID))

	s, err := f.ws.StartRevision()
	require.NoError(t, err)
	assert.Equal(t, folderID, s.CategoryID())
	assert.ElementsMatch(t, []string{"c2", "c3", "c4"}, s.Order())

	grades := []models.MasteryStatus{models.StatusKnown, models.StatusReview, models.StatusKnown}
	for _, g := range grades {
		require.NoError(t, f.ws.Reveal())
		view, ok := s.Current()
		require.True(t, ok)
		assert.True(t, view.Revealed)
		require.NoError(t, f.ws.Evaluate(ctx, g))
	}

	sum := s.Summary()
	assert.True(t, sum.Completed)
	assert.Equal(t, 2, sum.Known)
	assert.Equal(t, 1, sum.Review)
	assert.Equal(t, 0, sum.Unknown)
	assert.Equal(t, 3, sum.Answered)

	order := s.Order()
	for i, id := range order {
		assert.Equal(t, grades[i], models.FindCard(f.fc.state.Cards, id).MasteryStatus)
		assert.Equal(t, grades[i], models.FindCard(f.ws.Snapshot().Cards, id).MasteryStatus)
	}

	assert.ErrorIs(t, f.ws.Evaluate(ctx, models.StatusKnown), revision.ErrCompleted)
}

func TestWorkspace_RevisionEvaluateFailureKeepsCard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	folderID := f.seed(t, 2)
	require.NoError(t, f.ws.Open(folderID))

	s, err := f.ws.StartRevision()
	require.NoError(t, err)
	before, ok := s.Current()
	require.True(t, ok)

	f.fc.failNext["UpdateCardStatus"] = client.ErrServer
	require.ErrorIs(t, f.ws.Evaluate(ctx, models.StatusKnown), client.ErrServer)

	after, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, before.Card.ID, after.Card.ID)
	assert.Equal(t, 0, s.Summary().Answered)
	assert.Equal(t, models.StatusUnknown, models.FindCard(f.ws.Snapshot().Cards, before.Card.ID).MasteryStatus)
}

func TestWorkspace_OpenOtherFolderClosesRevision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	folderID := f.seed(t, 1)
	other, err := f.ws.CreateFolder(ctx, "Other", nil, "")
	require.NoError(t, err)

	require.NoError(t, f.ws.Open(folderID))
	s, err := f.ws.StartRevision()
	require.NoError(t, err)

	require.NoError(t, f.ws.Open(folderID))
	assert.Same(t, s, f.ws.Revision())

	require.NoError(t, f.ws.Open(other.ID))
	assert.Nil(t, f.ws.Revision())
	assert.True(t, s.Closed())
}

func TestWorkspace_StartRevisionReplacesRunningOne(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	folderID := f.seed(t, 2)
	require.NoError(t, f.ws.Open(folderID))

	first, err := f.ws.StartRevision()
	require.NoError(t, err)
	second, err := f.ws.StartRevision()
	require.NoError(t, err)

	assert.True(t, first.Closed())
	assert.Same(t, second, f.ws.Revision())
}

func TestWorkspace_ExportImport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)

	data, name, err := f.ws.Export(ctx, "csv")
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
	assert.Equal(t, "memoboost-export.csv", name)

	res, err := f.ws.Import(ctx, "json", []byte("{}"))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Categories)
	require.Len(t, f.ws.Snapshot().Categories, 1)
	assert.Equal(t, "Imported", f.ws.Snapshot().Categories[0].Name)

	f.fc.failNext["Export"] = client.ErrInvalidArgument
	_, _, err = f.ws.Export(ctx, "xml")
	assert.ErrorIs(t, err, client.ErrInvalidArgument)
}

func TestWorkspace_UploadImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.login(t)
	folderID := f.seed(t, 1)
	card := models.CardsIn(f.ws.Snapshot().Cards, folderID)[0]

	var got []byte
	var gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = io.ReadAll(r.Body)
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	f.fc.uploadURL = srv.URL

	require.NoError(t, f.ws.UploadImage(ctx, card.ID, "image/png", []byte("png")))
	assert.Equal(t, "png", string(got))
	assert.Equal(t, "image/png", gotType)

	u, err := f.ws.ImageURL(ctx, card.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://images/"+card.ID, u)

	f.fc.failNext["CreateImageUpload"] = client.ErrUnavailable
	assert.ErrorIs(t, f.ws.UploadImage(ctx, card.ID, "image/png", nil), client.ErrUnavailable)
}

func TestWorkspace_DownloadImage(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/img" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	f.fc.imageURL = srv.URL + "/img"
	data, err := f.ws.DownloadImage(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	f.fc.imageURL = srv.URL + "/missing"
	_, err = f.ws.DownloadImage(context.Background(), "c1")
	assert.ErrorContains(t, err, "download failed")

	f.fc.failNext["ImageURL"] = client.ErrNotFound
	_, err = f.ws.DownloadImage(context.Background(), "c1")
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestWorkspace_Ping(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ws.Ping(context.Background()))

	f.fc.failNext["Health"] = errors.New("down")
	assert.EqualError(t, f.ws.Ping(context.Background()), "down")
}

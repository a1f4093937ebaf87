package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/agahlya1812/memoboost/internal/client/client"
	"github.com/agahlya1812/memoboost/internal/client/models"
)

// fakeClient keeps one user's data in memory. Errors set on failNext are
// returned (once) by the named method instead of doing its work.
type fakeClient struct {
	mu       sync.Mutex
	userID   string
	token    string
	state    models.State
	seq      int
	failNext map[string]error
	calls    []string

	uploadURL string
	imageURL  string
}

func newFakeClient() *fakeClient {
	return &fakeClient{failNext: map[string]error{}}
}

func (f *fakeClient) fail(method string) error {
	f.calls = append(f.calls, method)
	if err, ok := f.failNext[method]; ok {
		delete(f.failNext, method)
		return err
	}
	return nil
}

func (f *fakeClient) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s%d", prefix, f.seq)
}

func (f *fakeClient) SetSession(userID, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.userID, f.token = userID, token
}

func (f *fakeClient) Register(ctx context.Context, email, password, name string) (*models.User, string, error) {
	return f.Login(ctx, email, password)
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Login"); err != nil {
		return nil, "", err
	}
	f.state.User = models.User{ID: "u1", Email: email}
	return &f.state.User, "tok", nil
}

func (f *fakeClient) Health(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fail("Health")
}

func (f *fakeClient) State(ctx context.Context) (*models.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("State"); err != nil {
		return nil, err
	}
	return f.state.Clone(), nil
}

func (f *fakeClient) CreateCategory(ctx context.Context, name string, parentID *string, color string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CreateCategory"); err != nil {
		return nil, err
	}
	c := &models.Category{ID: f.nextID("f"), Name: name, ParentID: parentID, Color: color}
	f.state.Categories = append(f.state.Categories, c)
	return c, nil
}

func (f *fakeClient) UpdateCategory(ctx context.Context, id, name string, parentID *string, color string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UpdateCategory"); err != nil {
		return nil, err
	}
	c := models.FindCategory(f.state.Categories, id)
	if c == nil {
		return nil, client.ErrNotFound
	}
	c.Name, c.ParentID, c.Color = name, parentID, color
	return c, nil
}

func (f *fakeClient) DeleteCategory(ctx context.Context, id string) (*models.DeleteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("DeleteCategory"); err != nil {
		return nil, err
	}
	if models.FindCategory(f.state.Categories, id) == nil {
		return nil, client.ErrNotFound
	}

	removed := map[string]bool{id: true}
	for changed := true; changed; {
		changed = false
		for _, c := range f.state.Categories {
			if !removed[c.ID] && removed[c.Parent()] {
				removed[c.ID] = true
				changed = true
			}
		}
	}

	res := &models.DeleteResult{RemovedCardIDs: []string{}}
	var cats []*models.Category
	for _, c := range f.state.Categories {
		if removed[c.ID] {
			res.RemovedCategoryIDs = append(res.RemovedCategoryIDs, c.ID)
			continue
		}
		cats = append(cats, c)
	}
	var cards []*models.Card
	for _, c := range f.state.Cards {
		if removed[c.CategoryID] {
			res.RemovedCardIDs = append(res.RemovedCardIDs, c.ID)
			continue
		}
		cards = append(cards, c)
	}
	f.state.Categories, f.state.Cards = cats, cards
	return res, nil
}

func (f *fakeClient) CreateCard(ctx context.Context, in client.CardInput) (*models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CreateCard"); err != nil {
		return nil, err
	}
	if in.MasteryStatus == "" {
		in.MasteryStatus = models.StatusUnknown
	}
	c := &models.Card{ID: f.nextID("c"), Question: in.Question, Answer: in.Answer, CategoryID: in.CategoryID, MasteryStatus: in.MasteryStatus}
	f.state.Cards = append(f.state.Cards, c)
	return c, nil
}

func (f *fakeClient) UpdateCard(ctx context.Context, id string, in client.CardInput) (*models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UpdateCard"); err != nil {
		return nil, err
	}
	c := models.FindCard(f.state.Cards, id)
	if c == nil {
		return nil, client.ErrNotFound
	}
	c.Question, c.Answer, c.CategoryID = in.Question, in.Answer, in.CategoryID
	if in.MasteryStatus != "" {
		c.MasteryStatus = in.MasteryStatus
	}
	cp := *c
	return &cp, nil
}

func (f *fakeClient) UpdateCardStatus(ctx context.Context, card *models.Card, status models.MasteryStatus) (*models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("UpdateCardStatus"); err != nil {
		return nil, err
	}
	c := models.FindCard(f.state.Cards, card.ID)
	if c == nil {
		return nil, client.ErrNotFound
	}
	c.MasteryStatus = status
	cp := *c
	return &cp, nil
}

func (f *fakeClient) DeleteCard(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("DeleteCard"); err != nil {
		return err
	}
	for i, c := range f.state.Cards {
		if c.ID == id {
			f.state.Cards = append(f.state.Cards[:i], f.state.Cards[i+1:]...)
			return nil
		}
	}
	return client.ErrNotFound
}

func (f *fakeClient) Export(ctx context.Context, format string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Export"); err != nil {
		return nil, "", err
	}
	return []byte("data"), "memoboost-export." + format, nil
}

func (f *fakeClient) Import(ctx context.Context, format string, data []byte) (*models.ImportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("Import"); err != nil {
		return nil, err
	}
	f.state.Categories = append(f.state.Categories, &models.Category{ID: f.nextID("f"), Name: "Imported"})
	return &models.ImportResult{Categories: 1}, nil
}

func (f *fakeClient) CreateImageUpload(ctx context.Context, cardID, contentType string) (*models.ImageUpload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("CreateImageUpload"); err != nil {
		return nil, err
	}
	return &models.ImageUpload{Key: "users/u1/cards/" + cardID + "/k", URL: f.uploadURL}, nil
}

func (f *fakeClient) ImageURL(ctx context.Context, cardID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail("ImageURL"); err != nil {
		return "", err
	}
	if f.imageURL != "" {
		return f.imageURL, nil
	}
	return "http://images/" + cardID, nil
}

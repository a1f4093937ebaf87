package services

import (
	"context"

	"github.com/agahlya1812/memoboost/internal/server/models"
	"github.com/agahlya1812/memoboost/internal/server/repositories/repomanager"
)

// State is everything the client needs to render a user's workspace.
type State struct {
	User       models.PublicUser `json:"user"`
	Categories []models.Category `json:"categories"`
	Cards      []models.Card     `json:"cards"`
}

type StateService struct {
	repomanager repomanager.RepositoryManager
}

func NewStateService(m repomanager.RepositoryManager) *StateService {
	return &StateService{repomanager: m}
}

// Snapshot reads folders (by name) and cards (newest first) of user from a
// single consistent view.
func (s *StateService) Snapshot(ctx context.Context, user *models.User) (*State, error) {
	state := &State{User: user.Public()}

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		var err error
		if state.Categories, err = r.Categories().ListByUser(ctx, user.ID); err != nil {
			return err
		}
		state.Cards, err = r.Cards().ListByUser(ctx, user.ID)
		return err
	})
	if err != nil {
		return nil, storageError(err)
	}
	return state, nil
}

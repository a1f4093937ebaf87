package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/agahlya1812/memoboost/internal/common"
	"github.com/agahlya1812/memoboost/internal/logging"
	"github.com/agahlya1812/memoboost/internal/server/models"
	"github.com/agahlya1812/memoboost/internal/server/repositories/repomanager"
	"github.com/agahlya1812/memoboost/internal/server/tree"
)

const (
	MsgFolderNameRequired = "folder name is required"
	MsgFolderNotFound     = "folder not found"
)

// DeleteResult lists everything removed by a cascading folder delete.
type DeleteResult struct {
	RemovedCategoryIDs []string `json:"removedCategoryIds"`
	RemovedCardIDs     []string `json:"removedCardIds"`
}

type CategoryService struct {
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewCategoryService(m repomanager.RepositoryManager, log logging.Logger) *CategoryService {
	return &CategoryService{repomanager: m, log: log.With("module", "categories")}
}

// List returns the user's folders ordered by name.
func (s *CategoryService) List(ctx context.Context, userID string) ([]models.Category, error) {
	list, err := s.repomanager.Categories().ListByUser(ctx, userID)
	if err != nil {
		return nil, storageError(err)
	}
	return list, nil
}

// Create adds a folder under parentID (nil for the root). Validation runs
// against the same snapshot the insert is written to.
func (s *CategoryService) Create(ctx context.Context, userID, name string, parentID *string, color string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid(MsgFolderNameRequired)
	}
	parentID = models.NormalizeParentID(parentID)

	var created *models.Category
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := r.LockOwner(ctx, userID); err != nil {
			return err
		}
		list, err := r.Categories().ListByUser(ctx, userID)
		if err != nil {
			return err
		}

		if err := tree.ValidateParent(list, parentID, "", userID); err != nil {
			return err
		}
		if tree.HasSibling(list, userID, parentID, name, "") {
			return common.NewError(common.ErrorConflict, tree.MsgDuplicateName)
		}

		ts := now()
		created, err = r.Categories().Create(ctx, &models.Category{
			ID:        newID(),
			UserID:    userID,
			Name:      name,
			ParentID:  parentID,
			Color:     models.NormalizeColor(color, models.DefaultColor),
			CreatedAt: ts,
			UpdatedAt: ts,
		})
		return err
	})
	if err != nil {
		return nil, storageError(err)
	}

	s.log.Debug(ctx, "folder created", "user_id", userID, "category_id", created.ID)
	return created, nil
}

// Update renames, recolors and moves a folder. parentID nil moves it to the
// root; an unknown color keeps the folder's current one.
func (s *CategoryService) Update(ctx context.Context, userID, id, name string, parentID *string, color string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid(MsgFolderNameRequired)
	}
	parentID = models.NormalizeParentID(parentID)

	var updated *models.Category
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := r.LockOwner(ctx, userID); err != nil {
			return err
		}
		list, err := r.Categories().ListByUser(ctx, userID)
		if err != nil {
			return err
		}

		current := tree.Find(list, id, userID)
		if current == nil {
			return notFound(MsgFolderNotFound)
		}

		if err := tree.ValidateParent(list, parentID, id, userID); err != nil {
			return err
		}
		if tree.HasSibling(list, userID, parentID, name, id) {
			return common.NewError(common.ErrorConflict, tree.MsgDuplicateName)
		}

		next := *current
		next.Name = name
		next.ParentID = parentID
		next.Color = models.NormalizeColor(color, models.NormalizeColor(string(current.Color), models.DefaultColor))
		next.UpdatedAt = now()

		updated, err = r.Categories().Update(ctx, &next)
		return err
	})
	if err != nil {
		return nil, storageError(err)
	}
	return updated, nil
}

// Delete removes the folder, every folder below it and all their cards in
// one transaction. The descendant set is computed first, then both bulk
// deletes are applied together.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) (*DeleteResult, error) {
	result := &DeleteResult{}

	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := r.LockOwner(ctx, userID); err != nil {
			return err
		}
		list, err := r.Categories().ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		if tree.Find(list, id, userID) == nil {
			return notFound(MsgFolderNotFound)
		}

		ids := tree.Descendants(list, id, userID)

		cardIDs, err := r.Cards().DeleteByCategoryIDs(ctx, userID, ids)
		if err != nil {
			return fmt.Errorf("error deleting cards: %w", err)
		}

		n, err := r.Categories().DeleteByIDs(ctx, userID, ids)
		if err != nil {
			return fmt.Errorf("error deleting folders: %w", err)
		}
		if n != int64(len(ids)) {
			return fmt.Errorf("%w: removed %d of %d folders", common.ErrorUnavailable, n, len(ids))
		}

		result.RemovedCategoryIDs = ids
		result.RemovedCardIDs = cardIDs
		return nil
	})
	if err != nil {
		return nil, storageError(err)
	}

	if result.RemovedCardIDs == nil {
		result.RemovedCardIDs = []string{}
	}

	s.log.Info(ctx, "folder deleted", "user_id", userID, "category_id", id,
		"folders", len(result.RemovedCategoryIDs), "cards", len(result.RemovedCardIDs))
	return result, nil
}

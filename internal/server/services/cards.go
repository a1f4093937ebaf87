package services

import (
	"context"
	"errors"
	"strings"

	"github.com/agahlya1812/memoboost/internal/common"
	"github.com/agahlya1812/memoboost/internal/dbx"
	"github.com/agahlya1812/memoboost/internal/logging"
	"github.com/agahlya1812/memoboost/internal/server/models"
	"github.com/agahlya1812/memoboost/internal/server/repositories/repomanager"
)

const (
	MsgCardFieldsRequired = "question, answer and folder are required"
	MsgUnknownFolder      = "unknown folder"
	MsgCardNotFound       = "card not found"
	MsgStatusRequired     = "mastery status is required"
)

// CardInput carries the editable fields of a card.
type CardInput struct {
	Question      string
	Answer        string
	CategoryID    string
	MasteryStatus string
}

func (in CardInput) normalize() (CardInput, error) {
	in.Question = strings.TrimSpace(in.Question)
	in.Answer = strings.TrimSpace(in.Answer)
	in.CategoryID = strings.TrimSpace(in.CategoryID)
	if in.Question == "" || in.Answer == "" || in.CategoryID == "" {
		return in, invalid(MsgCardFieldsRequired)
	}
	return in, nil
}

type CardService struct {
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewCardService(m repomanager.RepositoryManager, log logging.Logger) *CardService {
	return &CardService{repomanager: m, log: log.With("module", "cards")}
}

// List returns the user's cards, newest first.
func (s *CardService) List(ctx context.Context, userID string) ([]models.Card, error) {
	list, err := s.repomanager.Cards().ListByUser(ctx, userID)
	if err != nil {
		return nil, storageError(err)
	}
	return list, nil
}

func (s *CardService) Get(ctx context.Context, userID, id string) (*models.Card, error) {
	card, err := s.repomanager.Cards().Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, notFound(MsgCardNotFound)
		}
		return nil, storageError(err)
	}
	return card, nil
}

// ensureFolder locks the owner's tree and checks that categoryID is one of
// their folders.
func ensureFolder(ctx context.Context, r repomanager.Repositories, userID, categoryID string) error {
	if err := r.LockOwner(ctx, userID); err != nil {
		return err
	}
	if _, err := r.Categories().Get(ctx, userID, categoryID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return notFound(MsgUnknownFolder)
		}
		return err
	}
	return nil
}

// Create files a new card in one of the user's folders. An invalid status
// falls back to unknown.
func (s *CardService) Create(ctx context.Context, userID string, in CardInput) (*models.Card, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	var created *models.Card
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := ensureFolder(ctx, r, userID, in.CategoryID); err != nil {
			return err
		}

		ts := now()
		created, err = r.Cards().Create(ctx, &models.Card{
			ID:            newID(),
			UserID:        userID,
			CategoryID:    in.CategoryID,
			Question:      in.Question,
			Answer:        in.Answer,
			MasteryStatus: models.NormalizeStatus(in.MasteryStatus, models.StatusUnknown),
			CreatedAt:     ts,
			UpdatedAt:     ts,
		})
		return err
	})
	if err != nil {
		return nil, cardWriteError(err)
	}
	return created, nil
}

// Update rewrites a card. An invalid status keeps the card's current one.
func (s *CardService) Update(ctx context.Context, userID, id string, in CardInput) (*models.Card, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}

	var updated *models.Card
	err = s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		current, err := r.Cards().Get(ctx, userID, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return notFound(MsgCardNotFound)
			}
			return err
		}

		if err := ensureFolder(ctx, r, userID, in.CategoryID); err != nil {
			return err
		}

		next := *current
		next.Question = in.Question
		next.Answer = in.Answer
		next.CategoryID = in.CategoryID
		next.MasteryStatus = models.NormalizeStatus(in.MasteryStatus, models.NormalizeStatus(string(current.MasteryStatus), models.StatusUnknown))
		next.UpdatedAt = now()

		updated, err = r.Cards().Update(ctx, &next)
		return err
	})
	if err != nil {
		return nil, cardWriteError(err)
	}
	return updated, nil
}

// cardWriteError reports a folder removed under a card write as an unknown
// folder rather than a storage failure.
func cardWriteError(err error) error {
	if dbx.IsForeignKeyViolation(err) {
		return notFound(MsgUnknownFolder)
	}
	return storageError(err)
}

// UpdateStatus changes only the mastery status; question, answer and folder
// are left as stored. An unrecognised status keeps the current one.
func (s *CardService) UpdateStatus(ctx context.Context, userID, id, status string) (*models.Card, error) {
	if strings.TrimSpace(status) == "" {
		return nil, invalid(MsgStatusRequired)
	}

	var updated *models.Card
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		current, err := r.Cards().Get(ctx, userID, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return notFound(MsgCardNotFound)
			}
			return err
		}

		next := models.NormalizeStatus(status, models.NormalizeStatus(string(current.MasteryStatus), models.StatusUnknown))
		updated, err = r.Cards().UpdateStatus(ctx, userID, id, next, now())
		return err
	})
	if err != nil {
		return nil, storageError(err)
	}
	return updated, nil
}

// SetImage records the object storage key of the card's picture.
func (s *CardService) SetImage(ctx context.Context, userID, id, key string) (*models.Card, error) {
	var updated *models.Card
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		current, err := r.Cards().Get(ctx, userID, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return notFound(MsgCardNotFound)
			}
			return err
		}

		next := *current
		next.ImageKey = key
		next.UpdatedAt = now()
		updated, err = r.Cards().Update(ctx, &next)
		return err
	})
	if err != nil {
		return nil, storageError(err)
	}
	return updated, nil
}

func (s *CardService) Delete(ctx context.Context, userID, id string) error {
	err := s.repomanager.Cards().Delete(ctx, userID, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return notFound(MsgCardNotFound)
		}
		return storageError(err)
	}
	return nil
}

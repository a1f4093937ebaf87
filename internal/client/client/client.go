package client

import (
	"context"

	"github.com/agahlya1812/memoboost/internal/client/models"
)

// CardInput carries the editable fields of a card.
type CardInput struct {
	Question      string               `json:"question"`
	Answer        string               `json:"answer"`
	CategoryID    string               `json:"categoryId"`
	MasteryStatus models.MasteryStatus `json:"masteryStatus,omitempty"`
}

// Client is the MemoBoost API as seen by the CLI.
type Client interface {
	SetSession(userID, token string)
	Register(ctx context.Context, email, password, name string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	Health(ctx context.Context) error
	State(ctx context.Context) (*models.State, error)

	CreateCategory(ctx context.Context, name string, parentID *string, color string) (*models.Category, error)
	UpdateCategory(ctx context.Context, id, name string, parentID *string, color string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) (*models.DeleteResult, error)

	CreateCard(ctx context.Context, in CardInput) (*models.Card, error)
	UpdateCard(ctx context.Context, id string, in CardInput) (*models.Card, error)
	UpdateCardStatus(ctx context.Context, card *models.Card, status models.MasteryStatus) (*models.Card, error)
	DeleteCard(ctx context.Context, id string) error

	Export(ctx context.Context, format string) ([]byte, string, error)
	Import(ctx context.Context, format string, data []byte) (*models.ImportResult, error)

	CreateImageUpload(ctx context.Context, cardID, contentType string) (*models.ImageUpload, error)
	ImageURL(ctx context.Context, cardID string) (string, error)
}

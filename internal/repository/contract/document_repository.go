package contract

import (
	"context"
	"errors"

	"coreader-client/internal/model"
)

type DocumentRepository interface {
	Save(ctx context.Context, file *model.StoredFile) error
	FindByName(ctx context.Context, name string) (*model.StoredFile, error)
	FindAll(ctx context.Context) ([]*model.StoredFile, error)
	SetActive(ctx context.Context, id string, isActive bool) (*model.StoredFile, error)
	Delete(ctx context.Context, id string) error
}

type ConversationRepository interface {
	Append(ctx context.Context, turn model.ConversationTurn) error
	Clear(ctx context.Context) error
}

var ErrDocumentNotFound = errors.New("document not found")

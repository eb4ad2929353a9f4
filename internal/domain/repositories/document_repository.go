package repositories

import (
	"context"

	"github.com/AmbitionsXXXV/doc-editor/internal/domain/entities"
)

// DocumentRepository persists document rows. Implementations must return
// ErrNotFound when the requested row does not exist so callers can tell a
// missing document apart from a store failure.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entities.Document) error
	GetByID(ctx context.Context, id string) (*entities.Document, error)
	// ListForUser returns documents the user owns or holds any grant on,
	// deduplicated, most recently updated first.
	ListForUser(ctx context.Context, userID string, offset, limit int) ([]*entities.Document, error)
	CountForUser(ctx context.Context, userID string) (int64, error)
	Update(ctx context.Context, doc *entities.Document) error
	Delete(ctx context.Context, id string) error
}

package repositories

import (
	"context"

	"github.com/AmbitionsXXXV/doc-editor/internal/domain/entities"
)

// PermissionRepository persists grant rows. The store enforces at most one
// grant per (document_id, user_id) pair; Create returns ErrDuplicate when
// that constraint is violated.
type PermissionRepository interface {
	Create(ctx context.Context, grant *entities.PermissionGrant) error
	GetByID(ctx context.Context, id string) (*entities.PermissionGrant, error)
	GetByDocumentAndUser(ctx context.Context, docID, userID string) (*entities.PermissionGrant, error)
	UpdateLevel(ctx context.Context, id string, level entities.PermissionLevel) (*entities.PermissionGrant, error)
	Delete(ctx context.Context, id string) error
	DeleteAllForDocument(ctx context.Context, docID string) error
	ListForDocument(ctx context.Context, docID string) ([]*entities.PermissionGrant, error)
}

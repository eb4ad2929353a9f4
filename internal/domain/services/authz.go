package services

import (
	"context"
	"errors"

	"github.com/AmbitionsXXXV/doc-editor/internal/domain/entities"
	"github.com/AmbitionsXXXV/doc-editor/internal/domain/repositories"
)

// Authorizer decides whether an actor may perform an action on a document.
// The decision is a pure function of the document row and the actor's grant;
// the only I/O is the grant lookup, done against the same ctx (and therefore
// the same transaction) as the operation being authorized.
type Authorizer struct {
	permRepo repositories.PermissionRepository
}

func NewAuthorizer(permRepo repositories.PermissionRepository) *Authorizer {
	return &Authorizer{permRepo: permRepo}
}

// Can reports whether actorID holds the required level on doc. The empty
// actorID is the anonymous caller: it can only ever pass a public read,
// since owner_id is never empty and anonymous actors have no grants.
func (a *Authorizer) Can(ctx context.Context, doc *entities.Document, actorID string, required entities.PermissionLevel) (bool, error) {
	if actorID != "" && actorID == doc.OwnerID {
		return true, nil
	}

	if doc.IsPublic && required == entities.PermissionRead {
		return true, nil
	}

	if actorID == "" {
		return false, nil
	}

	grant, err := a.permRepo.GetByDocumentAndUser(ctx, doc.ID, actorID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return Decide(doc, actorID, grant, required), nil
}

// Decide is the side-effect-free core of the check: given a document and the
// actor's grant (nil when none exists), it applies the short-circuit order
// literal owner, public read, grant lattice.
func Decide(doc *entities.Document, actorID string, grant *entities.PermissionGrant, required entities.PermissionLevel) bool {
	if actorID != "" && actorID == doc.OwnerID {
		return true
	}

	if doc.IsPublic && required == entities.PermissionRead {
		return true
	}

	if grant == nil || grant.DocumentID != doc.ID || grant.UserID != actorID {
		return false
	}

	return grant.Level.Satisfies(required)
}

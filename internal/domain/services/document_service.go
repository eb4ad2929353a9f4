package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AmbitionsXXXV/doc-editor/internal/domain/entities"
	"github.com/AmbitionsXXXV/doc-editor/internal/domain/repositories"
	apperrors "github.com/AmbitionsXXXV/doc-editor/pkg/errors"
	"github.com/AmbitionsXXXV/doc-editor/pkg/logger"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// DocumentService implements the document operations on top of the two
// stores and the authorizer. Every check-then-act sequence runs inside one
// transaction so a permission check and the write it guards cannot observe
// different snapshots.
type DocumentService struct {
	docRepo  repositories.DocumentRepository
	permRepo repositories.PermissionRepository
	authz    *Authorizer
	tx       repositories.Transactor
	cache    CacheService
}

func NewDocumentService(
	docRepo repositories.DocumentRepository,
	permRepo repositories.PermissionRepository,
	authz *Authorizer,
	tx repositories.Transactor,
	cache CacheService,
) *DocumentService {
	return &DocumentService{
		docRepo:  docRepo,
		permRepo: permRepo,
		authz:    authz,
		tx:       tx,
		cache:    cache,
	}
}

// Fetch returns the document if the actor passes a Read check. actorID may
// be empty for anonymous callers, which only public documents admit.
func (s *DocumentService) Fetch(ctx context.Context, docID, actorID string) (*entities.Document, error) {
	doc, err := s.cache.GetDocument(ctx, docID)
	if err != nil {
		doc, err = s.loadDocument(ctx, docID)
		if err != nil {
			return nil, err
		}

		if err := s.cache.SetDocument(ctx, doc); err != nil {
			logger.Debug("failed to cache document", zap.String("doc_id", docID), zap.Error(err))
		}
	}

	// The grant lookup always hits the store, so a cached document row can
	// never resurrect a revoked grant.
	allowed, err := s.authz.Can(ctx, doc, actorID, entities.PermissionRead)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to check permission", err)
	}
	if !allowed {
		return nil, apperrors.NewForbiddenError("access denied")
	}

	return doc, nil
}

// List returns the page of documents the actor owns or holds a grant on,
// newest update first. Pages are 1-based.
func (s *DocumentService) List(ctx context.Context, actorID string, page, pageSize int) (*entities.DocumentPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	cacheKey := s.cache.ListCacheKey(actorID, page, pageSize)
	if cached, err := s.cache.GetDocumentPage(ctx, cacheKey); err == nil {
		return cached, nil
	}

	offset := (page - 1) * pageSize

	docs, err := s.docRepo.ListForUser(ctx, actorID, offset, pageSize)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to list documents", err)
	}

	total, err := s.docRepo.CountForUser(ctx, actorID)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to count documents", err)
	}

	result := &entities.DocumentPage{
		Documents: docs,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
	}

	if err := s.cache.SetDocumentPage(ctx, cacheKey, result); err != nil {
		logger.Debug("failed to cache document page", zap.Error(err))
	}

	return result, nil
}

// Create needs no permission check: any identified user may create documents.
func (s *DocumentService) Create(ctx context.Context, ownerID, title, content string, isPublic bool) (*entities.Document, error) {
	now := time.Now().UTC()
	doc := &entities.Document{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		OwnerID:   ownerID,
		IsPublic:  isPublic,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, apperrors.NewStoreError("failed to create document", err)
	}

	s.invalidateLists(ctx)

	return doc, nil
}

// Update applies a partial update; fields left nil keep their stored value.
// Requires ReadWrite. The permission check, the merge read and the write all
// happen in one transaction.
func (s *DocumentService) Update(ctx context.Context, docID, actorID string, upd entities.DocumentUpdate) (*entities.Document, error) {
	var updated *entities.Document

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		doc, err := s.loadDocument(ctx, docID)
		if err != nil {
			return err
		}

		allowed, err := s.authz.Can(ctx, doc, actorID, entities.PermissionReadWrite)
		if err != nil {
			return apperrors.NewStoreError("failed to check permission", err)
		}
		if !allowed {
			return apperrors.NewForbiddenError("access denied")
		}

		if upd.Title != nil {
			doc.Title = *upd.Title
		}
		if upd.Content != nil {
			doc.Content = *upd.Content
		}
		if upd.IsPublic != nil {
			doc.IsPublic = *upd.IsPublic
		}
		doc.UpdatedAt = time.Now().UTC()

		if err := s.docRepo.Update(ctx, doc); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.NewNotFoundError("document not found")
			}
			return apperrors.NewStoreError("failed to update document", err)
		}

		updated = doc
		return nil
	})
	if err != nil {
		return nil, txErr(err)
	}

	s.invalidateDocument(ctx, docID)

	return updated, nil
}

// Delete removes the document and all of its grants as one atomic unit.
// Only the literal owner may delete; a grant of level owner is not enough.
func (s *DocumentService) Delete(ctx context.Context, docID, actorID string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		doc, err := s.loadDocument(ctx, docID)
		if err != nil {
			return err
		}

		if doc.OwnerID != actorID {
			return apperrors.NewForbiddenError("only the owner can delete a document")
		}

		if err := s.permRepo.DeleteAllForDocument(ctx, docID); err != nil {
			return apperrors.NewStoreError("failed to delete document permissions", err)
		}

		if err := s.docRepo.Delete(ctx, docID); err != nil {
			return apperrors.NewStoreError("failed to delete document", err)
		}

		return nil
	})
	if err != nil {
		return txErr(err)
	}

	s.invalidateDocument(ctx, docID)

	return nil
}

// Share creates a grant for granteeID. Only the literal owner may share.
// Sharing twice with the same user is a conflict; use UpdateGrant instead.
func (s *DocumentService) Share(ctx context.Context, docID, granteeID string, level entities.PermissionLevel, actorID string) (*entities.PermissionGrant, error) {
	if !level.Valid() {
		return nil, apperrors.NewBadRequestError("invalid permission level")
	}

	var grant *entities.PermissionGrant

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		doc, err := s.loadDocument(ctx, docID)
		if err != nil {
			return err
		}

		if doc.OwnerID != actorID {
			return apperrors.NewForbiddenError("only the owner can share a document")
		}

		if granteeID == doc.OwnerID {
			return apperrors.NewBadRequestError("cannot share a document with its owner")
		}

		_, err = s.permRepo.GetByDocumentAndUser(ctx, docID, granteeID)
		if err == nil {
			return apperrors.NewConflictError("permission already exists for this user")
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NewStoreError("failed to check existing permission", err)
		}

		now := time.Now().UTC()
		grant = &entities.PermissionGrant{
			ID:         uuid.NewString(),
			DocumentID: docID,
			UserID:     granteeID,
			Level:      level,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := s.permRepo.Create(ctx, grant); err != nil {
			if errors.Is(err, repositories.ErrDuplicate) {
				return apperrors.NewConflictError("permission already exists for this user")
			}
			return apperrors.NewStoreError("failed to create permission", err)
		}

		return nil
	})
	if err != nil {
		return nil, txErr(err)
	}

	// Membership in the grantee's list changed; cached pages are stale now.
	s.invalidateLists(ctx)

	return grant, nil
}

// UpdateGrant changes an existing grant's level. The document owner is
// resolved through the grant; only the literal owner may manage grants.
func (s *DocumentService) UpdateGrant(ctx context.Context, permissionID string, level entities.PermissionLevel, actorID string) (*entities.PermissionGrant, error) {
	if !level.Valid() {
		return nil, apperrors.NewBadRequestError("invalid permission level")
	}

	var updated *entities.PermissionGrant

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.requireGrantOwner(ctx, permissionID, actorID); err != nil {
			return err
		}

		grant, err := s.permRepo.UpdateLevel(ctx, permissionID, level)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.NewNotFoundError("permission not found")
			}
			return apperrors.NewStoreError("failed to update permission", err)
		}

		updated = grant
		return nil
	})
	if err != nil {
		return nil, txErr(err)
	}

	s.invalidateLists(ctx)

	return updated, nil
}

// RevokeGrant removes a grant. Revoking an unknown grant id is NotFound, not
// a silent success.
func (s *DocumentService) RevokeGrant(ctx context.Context, permissionID, actorID string) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.requireGrantOwner(ctx, permissionID, actorID); err != nil {
			return err
		}

		if err := s.permRepo.Delete(ctx, permissionID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return apperrors.NewNotFoundError("permission not found")
			}
			return apperrors.NewStoreError("failed to delete permission", err)
		}

		return nil
	})
	if err != nil {
		return txErr(err)
	}

	// The revoked user must stop seeing the document in their list right
	// away, not when the cached page expires.
	s.invalidateLists(ctx)

	return nil
}

// ListGrants returns all grants on a document, owner only.
func (s *DocumentService) ListGrants(ctx context.Context, docID, actorID string) ([]*entities.PermissionGrant, error) {
	doc, err := s.loadDocument(ctx, docID)
	if err != nil {
		return nil, err
	}

	if doc.OwnerID != actorID {
		return nil, apperrors.NewForbiddenError("only the owner can list permissions")
	}

	grants, err := s.permRepo.ListForDocument(ctx, docID)
	if err != nil {
		return nil, apperrors.NewStoreError("failed to list permissions", err)
	}

	return grants, nil
}

// requireGrantOwner resolves a grant to its document and checks the actor is
// the document's literal owner.
func (s *DocumentService) requireGrantOwner(ctx context.Context, permissionID, actorID string) error {
	grant, err := s.permRepo.GetByID(ctx, permissionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NewNotFoundError("permission not found")
		}
		return apperrors.NewStoreError("failed to load permission", err)
	}

	doc, err := s.loadDocument(ctx, grant.DocumentID)
	if err != nil {
		return err
	}

	if doc.OwnerID != actorID {
		return apperrors.NewForbiddenError("only the owner can manage permissions")
	}

	return nil
}

func (s *DocumentService) loadDocument(ctx context.Context, docID string) (*entities.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("document not found")
		}
		return nil, apperrors.NewStoreError("failed to load document", err)
	}
	return doc, nil
}

func (s *DocumentService) invalidateDocument(ctx context.Context, docID string) {
	if err := s.cache.InvalidateDocument(ctx, docID); err != nil {
		logger.Debug("failed to invalidate document cache", zap.String("doc_id", docID), zap.Error(err))
	}
	s.invalidateLists(ctx)
}

func (s *DocumentService) invalidateLists(ctx context.Context) {
	if err := s.cache.InvalidateLists(ctx); err != nil {
		logger.Debug("failed to invalidate list cache", zap.Error(err))
	}
}

// txErr keeps typed service errors intact and wraps anything else the
// transaction machinery itself produced (begin/commit failures).
func txErr(err error) error {
	switch err.(type) {
	case *apperrors.NotFoundError, *apperrors.ForbiddenError, *apperrors.ConflictError,
		*apperrors.BadRequestError, *apperrors.StoreError:
		return err
	}
	return apperrors.NewStoreError("transaction failed", err)
}

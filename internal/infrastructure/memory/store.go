// Package memory provides an in-memory implementation of the repository
// contracts, used in tests and as a reference implementation of their
// semantics (not-found and duplicate reporting included).
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AmbitionsXXXV/doc-editor/internal/domain/entities"
	"github.com/AmbitionsXXXV/doc-editor/internal/domain/repositories"
)

// Store holds all tables behind one mutex. It intentionally mirrors the
// Postgres-backed repositories' behavior, sentinel errors included.
type Store struct {
	mu       sync.Mutex
	docs     map[string]*entities.Document
	grants   map[string]*entities.PermissionGrant
	users    map[string]*entities.User
	sessions map[string]*entities.Session
}

func NewStore() *Store {
	return &Store{
		docs:     make(map[string]*entities.Document),
		grants:   make(map[string]*entities.PermissionGrant),
		users:    make(map[string]*entities.User),
		sessions: make(map[string]*entities.Session),
	}
}

// WithinTx implements repositories.Transactor. The in-memory store has no
// transactional isolation; fn simply runs against the live maps.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (s *Store) Documents() repositories.DocumentRepository {
	return &documentRepo{s: s}
}

func (s *Store) Permissions() repositories.PermissionRepository {
	return &permissionRepo{s: s}
}

func (s *Store) Users() repositories.UserRepository {
	return &userRepo{s: s}
}

func (s *Store) Sessions() repositories.SessionRepository {
	return &sessionRepo{s: s}
}

func (s *Store) grantFor(docID, userID string) *entities.PermissionGrant {
	for _, g := range s.grants {
		if g.DocumentID == docID && g.UserID == userID {
			return g
		}
	}
	return nil
}

type documentRepo struct {
	s *Store
}

func (r *documentRepo) Create(_ context.Context, doc *entities.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	copied := *doc
	r.s.docs[doc.ID] = &copied
	return nil
}

func (r *documentRepo) GetByID(_ context.Context, id string) (*entities.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	doc, ok := r.s.docs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}

	copied := *doc
	return &copied, nil
}

func (r *documentRepo) ListForUser(_ context.Context, userID string, offset, limit int) ([]*entities.Document, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var docs []*entities.Document
	for _, doc := range r.s.docs {
		if doc.OwnerID == userID || r.s.grantFor(doc.ID, userID) != nil {
			copied := *doc
			docs = append(docs, &copied)
		}
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
	})

	if offset >= len(docs) {
		return nil, nil
	}
	docs = docs[offset:]
	if limit < len(docs) {
		docs = docs[:limit]
	}

	return docs, nil
}

func (r *documentRepo) CountForUser(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var count int64
	for _, doc := range r.s.docs {
		if doc.OwnerID == userID || r.s.grantFor(doc.ID, userID) != nil {
			count++
		}
	}
	return count, nil
}

func (r *documentRepo) Update(_ context.Context, doc *entities.Document) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.docs[doc.ID]; !ok {
		return repositories.ErrNotFound
	}

	copied := *doc
	r.s.docs[doc.ID] = &copied
	return nil
}

func (r *documentRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.docs[id]; !ok {
		return repositories.ErrNotFound
	}

	delete(r.s.docs, id)
	return nil
}

type permissionRepo struct {
	s *Store
}

func (r *permissionRepo) Create(_ context.Context, grant *entities.PermissionGrant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.grantFor(grant.DocumentID, grant.UserID) != nil {
		return repositories.ErrDuplicate
	}

	copied := *grant
	r.s.grants[grant.ID] = &copied
	return nil
}

func (r *permissionRepo) GetByID(_ context.Context, id string) (*entities.PermissionGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	grant, ok := r.s.grants[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}

	copied := *grant
	return &copied, nil
}

func (r *permissionRepo) GetByDocumentAndUser(_ context.Context, docID, userID string) (*entities.PermissionGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	grant := r.s.grantFor(docID, userID)
	if grant == nil {
		return nil, repositories.ErrNotFound
	}

	copied := *grant
	return &copied, nil
}

func (r *permissionRepo) UpdateLevel(_ context.Context, id string, level entities.PermissionLevel) (*entities.PermissionGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	grant, ok := r.s.grants[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}

	grant.Level = level
	grant.UpdatedAt = time.Now().UTC()
	copied := *grant
	return &copied, nil
}

func (r *permissionRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.grants[id]; !ok {
		return repositories.ErrNotFound
	}

	delete(r.s.grants, id)
	return nil
}

func (r *permissionRepo) DeleteAllForDocument(_ context.Context, docID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, g := range r.s.grants {
		if g.DocumentID == docID {
			delete(r.s.grants, id)
		}
	}
	return nil
}

func (r *permissionRepo) ListForDocument(_ context.Context, docID string) ([]*entities.PermissionGrant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var grants []*entities.PermissionGrant
	for _, g := range r.s.grants {
		if g.DocumentID == docID {
			copied := *g
			grants = append(grants, &copied)
		}
	}

	sort.Slice(grants, func(i, j int) bool {
		return grants[i].CreatedAt.Before(grants[j].CreatedAt)
	})

	return grants, nil
}

type userRepo struct {
	s *Store
}

func (r *userRepo) Create(_ context.Context, user *entities.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	copied := *user
	r.s.users[user.ID] = &copied
	return nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *userRepo) GetByID(_ context.Context, id string) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}

	copied := *user
	return &copied, nil
}

type sessionRepo struct {
	s *Store
}

func (r *sessionRepo) Create(_ context.Context, session *entities.Session) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	copied := *session
	r.s.sessions[session.Token] = &copied
	return nil
}

func (r *sessionRepo) GetByToken(_ context.Context, token string) (*entities.Session, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	session, ok := r.s.sessions[token]
	if !ok {
		return nil, repositories.ErrNotFound
	}

	copied := *session
	return &copied, nil
}

func (r *sessionRepo) Delete(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.sessions, token)
	return nil
}

func (r *sessionRepo) DeleteExpired(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	for token, session := range r.s.sessions {
		if session.ExpiresAt.Before(now) {
			delete(r.s.sessions, token)
		}
	}
	return nil
}

package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/AmbitionsXXXV/doc-editor/internal/domain/entities"
	"github.com/AmbitionsXXXV/doc-editor/internal/domain/repositories"
	"github.com/AmbitionsXXXV/doc-editor/internal/infrastructure/database"
)

const uniqueViolation = "23505"

type permissionRepository struct {
	db *database.PostgresDB
}

func NewPermissionRepository(db *database.PostgresDB) repositories.PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) Create(ctx context.Context, grant *entities.PermissionGrant) error {
	query := `INSERT INTO document_permissions (id, document_id, user_id, permission_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		grant.ID, grant.DocumentID, grant.UserID, string(grant.Level), grant.CreatedAt, grant.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return repositories.ErrDuplicate
		}
		return err
	}

	return nil
}

func (r *permissionRepository) GetByID(ctx context.Context, id string) (*entities.PermissionGrant, error) {
	query := `SELECT id, document_id, user_id, permission_level, created_at, updated_at
		FROM document_permissions WHERE id = $1`

	return r.scanOne(r.db.Conn(ctx).QueryRow(ctx, query, id))
}

func (r *permissionRepository) GetByDocumentAndUser(ctx context.Context, docID, userID string) (*entities.PermissionGrant, error) {
	query := `SELECT id, document_id, user_id, permission_level, created_at, updated_at
		FROM document_permissions WHERE document_id = $1 AND user_id = $2`

	return r.scanOne(r.db.Conn(ctx).QueryRow(ctx, query, docID, userID))
}

func (r *permissionRepository) UpdateLevel(ctx context.Context, id string, level entities.PermissionLevel) (*entities.PermissionGrant, error) {
	query := `UPDATE document_permissions SET permission_level = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, document_id, user_id, permission_level, created_at, updated_at`

	return r.scanOne(r.db.Conn(ctx).QueryRow(ctx, query, string(level), id))
}

func (r *permissionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM document_permissions WHERE id = $1`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}

	return nil
}

func (r *permissionRepository) DeleteAllForDocument(ctx context.Context, docID string) error {
	query := `DELETE FROM document_permissions WHERE document_id = $1`

	_, err := r.db.Conn(ctx).Exec(ctx, query, docID)
	return err
}

func (r *permissionRepository) ListForDocument(ctx context.Context, docID string) ([]*entities.PermissionGrant, error) {
	query := `SELECT id, document_id, user_id, permission_level, created_at, updated_at
		FROM document_permissions WHERE document_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Conn(ctx).Query(ctx, query, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	grants, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entities.PermissionGrant, error) {
		return scanGrant(row)
	})
	if err != nil {
		return nil, err
	}

	return grants, nil
}

func (r *permissionRepository) scanOne(row pgx.Row) (*entities.PermissionGrant, error) {
	grant, err := scanGrant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}
	return grant, nil
}

func scanGrant(row pgx.Row) (*entities.PermissionGrant, error) {
	var grant entities.PermissionGrant
	var level string

	err := row.Scan(&grant.ID, &grant.DocumentID, &grant.UserID, &level, &grant.CreatedAt, &grant.UpdatedAt)
	if err != nil {
		return nil, err
	}

	grant.Level = entities.PermissionLevel(level)
	return &grant, nil
}

package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/AmbitionsXXXV/doc-editor/internal/domain/entities"
	"github.com/AmbitionsXXXV/doc-editor/internal/domain/repositories"
	"github.com/AmbitionsXXXV/doc-editor/internal/infrastructure/database"
)

type documentRepository struct {
	db *database.PostgresDB
}

func NewDocumentRepository(db *database.PostgresDB) repositories.DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *entities.Document) error {
	query := `INSERT INTO documents (id, title, content, owner_id, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Conn(ctx).Exec(ctx, query,
		doc.ID, doc.Title, doc.Content, doc.OwnerID, doc.IsPublic, doc.CreatedAt, doc.UpdatedAt,
	)
	return err
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*entities.Document, error) {
	query := `SELECT id, title, content, owner_id, is_public, created_at, updated_at
		FROM documents WHERE id = $1`

	var doc entities.Document
	err := r.db.Conn(ctx).QueryRow(ctx, query, id).Scan(
		&doc.ID, &doc.Title, &doc.Content, &doc.OwnerID, &doc.IsPublic, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, err
	}

	return &doc, nil
}

func (r *documentRepository) ListForUser(ctx context.Context, userID string, offset, limit int) ([]*entities.Document, error) {
	// Owned and granted documents, deduplicated by the UNION, newest
	// update first.
	query := `
		SELECT d.id, d.title, d.content, d.owner_id, d.is_public, d.created_at, d.updated_at
		FROM documents d
		WHERE d.owner_id = $1
		UNION
		SELECT d.id, d.title, d.content, d.owner_id, d.is_public, d.created_at, d.updated_at
		FROM documents d
		JOIN document_permissions dp ON d.id = dp.document_id
		WHERE dp.user_id = $1
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Conn(ctx).Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*entities.Document, error) {
		var doc entities.Document
		err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &doc.OwnerID, &doc.IsPublic, &doc.CreatedAt, &doc.UpdatedAt)
		return &doc, err
	})
	if err != nil {
		return nil, err
	}

	return docs, nil
}

func (r *documentRepository) CountForUser(ctx context.Context, userID string) (int64, error) {
	query := `
		SELECT COUNT(DISTINCT d.id)
		FROM documents d
		LEFT JOIN document_permissions dp ON d.id = dp.document_id
		WHERE d.owner_id = $1 OR dp.user_id = $1`

	var count int64
	err := r.db.Conn(ctx).QueryRow(ctx, query, userID).Scan(&count)
	return count, err
}

func (r *documentRepository) Update(ctx context.Context, doc *entities.Document) error {
	query := `UPDATE documents SET title = $1, content = $2, is_public = $3, updated_at = $4
		WHERE id = $5`

	tag, err := r.db.Conn(ctx).Exec(ctx, query,
		doc.Title, doc.Content, doc.IsPublic, doc.UpdatedAt, doc.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}

	return nil
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM documents WHERE id = $1`

	tag, err := r.db.Conn(ctx).Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrNotFound
	}

	return nil
}

package postgres

import (
	"context"

	"github.com/samirrijal/backoffice/internal/core/domain"
)

// DocumentRepo implements ports.DocumentRepository on a single JSONB table.
type DocumentRepo struct {
	db *DB
}

func NewDocumentRepo(db *DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) List(ctx context.Context, collection string, limit, offset int) ([]domain.Document, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx, `SELECT count(*) FROM documents WHERE collection = $1`, collection).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, collection, data, created_at, updated_at
		FROM documents WHERE collection = $1
		ORDER BY updated_at DESC, id LIMIT $2 OFFSET $3
	`, collection, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.Collection, &d.Data, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		docs = append(docs, d)
	}
	return docs, total, rows.Err()
}

func (r *DocumentRepo) GetByID(ctx context.Context, collection, id string) (*domain.Document, error) {
	var d domain.Document
	err := r.db.Pool.QueryRow(ctx, `
		SELECT id, collection, data, created_at, updated_at
		FROM documents WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&d.ID, &d.Collection, &d.Data, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &d, nil
}

func (r *DocumentRepo) Upsert(ctx context.Context, d *domain.Document) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO documents (collection, id, data, created_at, updated_at)
		VALUES ($1, $2, $3, COALESCE($4, now()), COALESCE($5, now()))
		ON CONFLICT (collection, id) DO UPDATE
		SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`, d.Collection, d.ID, d.Data, nullTime(d.CreatedAt), nullTime(d.UpdatedAt))
	return mapErr(err)
}

func (r *DocumentRepo) Delete(ctx context.Context, collection, id string) error {
	return affected(r.db.Pool.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id))
}

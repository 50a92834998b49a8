package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"tenderdocs/internal/apperr"
	"tenderdocs/internal/model"
	"tenderdocs/internal/repository"
)

const uniqueViolation = "23505"

const documentColumns = `id, tenant_id, uploaded_by, created_by, updated_by, filename, storage_path,
		file_size, mime_type, language, status, metadata, is_deleted, created_at, updated_at`

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries; the only rule it enforces is the status lifecycle.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var (
		d      model.Document
		status string
		meta   []byte
	)
	if err := row.Scan(
		&d.ID,
		&d.TenantID,
		&d.UploadedBy,
		&d.CreatedBy,
		&d.UpdatedBy,
		&d.Filename,
		&d.StoragePath,
		&d.FileSize,
		&d.MimeType,
		&d.Language,
		&status,
		&meta,
		&d.IsDeleted,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.Status = model.Status(status)
	d.Metadata = map[string]any{}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &d.Metadata); err != nil {
			return nil, err
		}
	}
	return &d, nil
}

func encodeMetadata(m map[string]any) (string, error) {
	if m == nil {
		m = map[string]any{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Create inserts a new document row and returns the stored record.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const op = "postgres.Create"
	meta, err := encodeMetadata(doc.Metadata)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, op, err, "metadata is not valid json")
	}

	const q = `
		INSERT INTO documents (id, tenant_id, uploaded_by, created_by, updated_by, filename, storage_path,
			file_size, mime_type, language, status, metadata, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING ` + documentColumns
	row := r.db.QueryRowContext(ctx, q,
		doc.ID,
		doc.TenantID,
		doc.UploadedBy,
		doc.CreatedBy,
		doc.UpdatedBy,
		doc.Filename,
		doc.StoragePath,
		doc.FileSize,
		doc.MimeType,
		doc.Language,
		string(doc.Status),
		meta,
		doc.IsDeleted,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	out, err := scanDocument(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, apperr.Wrap(apperr.KindAlreadyExists, op, err, "document already exists")
		}
		return nil, apperr.Wrap(apperr.KindPersistence, op, err, "failed to create document record")
	}
	return out, nil
}

// FindByID fetches a single document by tenant and ID. Soft-deleted rows are returned.
func (r *DocumentPostgres) FindByID(ctx context.Context, tenantID, id string) (*model.Document, error) {
	const op = "postgres.FindByID"
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1 AND tenant_id = $2
	`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id, tenantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Wrap(apperr.KindNotFound, op, err, "document not found")
		}
		return nil, apperr.Wrap(apperr.KindPersistence, op, err, "failed to fetch document")
	}
	return d, nil
}

// ListByTenant returns live documents of a tenant ordered by creation time, newest first.
func (r *DocumentPostgres) ListByTenant(ctx context.Context, tenantID string) ([]model.Document, error) {
	const op = "postgres.ListByTenant"
	const q = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE tenant_id = $1 AND is_deleted = false
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, tenantID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, op, err, "failed to fetch documents")
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindPersistence, op, err, "failed to fetch documents")
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, op, err, "failed to fetch documents")
	}
	return items, nil
}

// Update locks the row, validates the status transition and applies the patch in one transaction.
// Nil patch fields keep their stored value; metadata is replaced, never merged.
func (r *DocumentPostgres) Update(ctx context.Context, tenantID, id string, patch model.DocumentPatch) (*model.Document, error) {
	const op = "postgres.Update"

	var statusArg, metaArg, updatedByArg any
	if patch.Status != nil {
		statusArg = string(*patch.Status)
	}
	if patch.Metadata != nil {
		meta, err := encodeMetadata(patch.Metadata)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, op, err, "metadata is not valid json")
		}
		metaArg = meta
	}
	if patch.UpdatedBy != nil {
		updatedByArg = *patch.UpdatedBy
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, op, err, "failed to update document")
	}
	defer tx.Rollback()

	const qLock = `SELECT status, is_deleted FROM documents WHERE id = $1 AND tenant_id = $2 FOR UPDATE`
	var (
		current string
		deleted bool
	)
	if err := tx.QueryRowContext(ctx, qLock, id, tenantID).Scan(&current, &deleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Wrap(apperr.KindNotFound, op, err, "document not found")
		}
		return nil, apperr.Wrap(apperr.KindPersistence, op, err, "failed to update document")
	}
	if deleted {
		return nil, apperr.New(apperr.KindNotFound, op, "document not found")
	}
	if patch.Status != nil {
		if err := model.CheckTransition(model.Status(current), *patch.Status); err != nil {
			return nil, err
		}
	}

	const qUpdate = `
		UPDATE documents
		SET status = COALESCE($3, status),
			metadata = COALESCE($4::jsonb, metadata),
			updated_by = COALESCE($5, updated_by),
			updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING ` + documentColumns
	d, err := scanDocument(tx.QueryRowContext(ctx, qUpdate, id, tenantID, statusArg, metaArg, updatedByArg))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, op, err, "failed to update document")
	}
	if err := tx.Commit(); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, op, err, "failed to update document")
	}
	return d, nil
}

// SoftDelete sets is_deleted. Repeating it on a deleted row is harmless and returns the row.
func (r *DocumentPostgres) SoftDelete(ctx context.Context, tenantID, id string) (*model.Document, error) {
	const op = "postgres.SoftDelete"
	const q = `
		UPDATE documents
		SET is_deleted = true, updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING ` + documentColumns
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id, tenantID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Wrap(apperr.KindNotFound, op, err, "document not found")
		}
		return nil, apperr.Wrap(apperr.KindPersistence, op, err, "failed to delete document")
	}
	return d, nil
}

// StoragePathExists checks whether any row references path.
func (r *DocumentPostgres) StoragePathExists(ctx context.Context, path string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM documents WHERE storage_path = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, path).Scan(&exists); err != nil {
		return false, apperr.Wrap(apperr.KindPersistence, "postgres.StoragePathExists", err, "failed to check storage path")
	}
	return exists, nil
}

package repository

import (
	"context"

	"tenderdocs/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// Every read and write is scoped by tenant id. Errors are *apperr.Error values.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	// A storage_path collision fails with ALREADY_EXISTS, anything else with PERSISTENCE_ERROR.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document of the tenant, including soft-deleted rows.
	FindByID(ctx context.Context, tenantID, id string) (*model.Document, error)

	// ListByTenant returns the tenant's live documents, newest first.
	ListByTenant(ctx context.Context, tenantID string) ([]model.Document, error)

	// Update applies patch to a live document. Status changes are checked against the
	// lifecycle table and rejected with INVALID_TRANSITION.
	Update(ctx context.Context, tenantID, id string, patch model.DocumentPatch) (*model.Document, error)

	// SoftDelete flags a document as deleted and returns the row. The row is never removed.
	SoftDelete(ctx context.Context, tenantID, id string) (*model.Document, error)

	// StoragePathExists reports whether any row, deleted or not, references path.
	StoragePathExists(ctx context.Context, path string) (bool, error)
}

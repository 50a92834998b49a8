package model

import "time"

// Document is the metadata row for one uploaded tender file.
// It carries no database tags; the repository scans columns explicitly.
type Document struct {
	ID          string         `json:"id"`
	TenantID    string         `json:"tenant_id"`
	UploadedBy  *string        `json:"uploaded_by"`
	CreatedBy   *string        `json:"created_by"`
	UpdatedBy   *string        `json:"updated_by"`
	Filename    string         `json:"filename"`
	StoragePath string         `json:"storage_path"`
	FileSize    *int64         `json:"file_size"`
	MimeType    *string        `json:"mime_type"`
	Language    string         `json:"language"`
	Status      Status         `json:"status"`
	Metadata    map[string]any `json:"metadata"`
	IsDeleted   bool           `json:"is_deleted"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// DocumentPatch is a partial update. Nil fields are left untouched;
// a non-nil Metadata replaces the stored map wholesale.
type DocumentPatch struct {
	Status    *Status
	Metadata  map[string]any
	UpdatedBy *string
}

// Empty reports whether the patch changes nothing.
func (p DocumentPatch) Empty() bool {
	return p.Status == nil && p.Metadata == nil && p.UpdatedBy == nil
}

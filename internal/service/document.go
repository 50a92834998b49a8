package service

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tenderdocs/internal/apperr"
	"tenderdocs/internal/model"
	"tenderdocs/internal/repository"
	"tenderdocs/internal/storage"
)

const (
	defaultOperationTimeout    = 15 * time.Second
	defaultCompensationTimeout = 10 * time.Second
	defaultPresignExpiry       = 15 * time.Minute
	defaultLanguage            = "en"
	defaultContentType         = "application/octet-stream"
)

var tracer = otel.Tracer("tenderdocs/internal/service")

// UploadInput is everything the ingestion flow needs to create one document.
type UploadInput struct {
	TenantID   string
	Filename   string
	MimeType   *string
	Language   string
	UploadedBy *string
	// Body is the raw file content. A nil Body stores an empty object.
	Body io.Reader
	// Size is the exact byte count of Body, or -1 when unknown.
	Size int64
	// FileSize is the client-declared size recorded on the row. When nil the stored object size is used.
	FileSize *int64
}

// DocumentService defines the use cases for handling documents.
// Every method takes an explicit tenant id and returns *apperr.Error values.
type DocumentService interface {
	// Upload writes the bytes to object storage, then inserts the row.
	// If the insert fails the object is deleted once, and PERSISTENCE_ERROR is returned either way.
	Upload(ctx context.Context, in UploadInput) (*model.Document, error)

	// List returns the tenant's live documents, newest first.
	List(ctx context.Context, tenantID string) ([]model.Document, error)

	// Get returns a single document. Soft-deleted rows are NOT_FOUND unless includeDeleted is set.
	Get(ctx context.Context, tenantID, id string, includeDeleted bool) (*model.Document, error)

	// Update applies a partial update of status, metadata and updated_by.
	Update(ctx context.Context, tenantID, id string, patch model.DocumentPatch) (*model.Document, error)

	// Delete soft-deletes a document. The stored object is kept.
	Delete(ctx context.Context, tenantID, id string) (*model.Document, error)

	// DownloadURL returns a time-limited URL for the document's object and its lifetime.
	DownloadURL(ctx context.Context, tenantID, id string) (string, time.Duration, error)

	// Open streams the document's object. The caller must close the reader.
	Open(ctx context.Context, tenantID, id string) (io.ReadCloser, storage.ObjectInfo, *model.Document, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store   storage.Storage
	repo    repository.DocumentRepository
	log     zerolog.Logger
	metrics *Metrics
	now     func() time.Time
	newID   func() string

	opTimeout           time.Duration
	compensationTimeout time.Duration
	presignExpiry       time.Duration
	defaultLanguage     string
}

// Option configures a DocumentService.
type Option func(*documentService)

func WithLogger(l zerolog.Logger) Option { return func(s *documentService) { s.log = l } }

func WithMetrics(m *Metrics) Option { return func(s *documentService) { s.metrics = m } }

// WithClock overrides the time source used for timestamps and storage discriminators.
func WithClock(now func() time.Time) Option { return func(s *documentService) { s.now = now } }

// WithIDGenerator overrides the document id source.
func WithIDGenerator(f func() string) Option { return func(s *documentService) { s.newID = f } }

// WithOperationTimeout bounds every store and database call made by one operation.
func WithOperationTimeout(d time.Duration) Option {
	return func(s *documentService) {
		if d > 0 {
			s.opTimeout = d
		}
	}
}

// WithCompensationTimeout bounds the cleanup delete run after a failed insert.
func WithCompensationTimeout(d time.Duration) Option {
	return func(s *documentService) {
		if d > 0 {
			s.compensationTimeout = d
		}
	}
}

func WithPresignExpiry(d time.Duration) Option {
	return func(s *documentService) {
		if d > 0 {
			s.presignExpiry = d
		}
	}
}

// WithDefaultLanguage sets the language stored when an upload does not carry one.
func WithDefaultLanguage(lang string) Option {
	return func(s *documentService) {
		if lang = strings.TrimSpace(lang); lang != "" {
			s.defaultLanguage = lang
		}
	}
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, opts ...Option) DocumentService {
	s := &documentService{
		store:               store,
		repo:                repo,
		log:                 zerolog.Nop(),
		now:                 time.Now,
		newID:               uuid.NewString,
		opTimeout:           defaultOperationTimeout,
		compensationTimeout: defaultCompensationTimeout,
		presignExpiry:       defaultPresignExpiry,
		defaultLanguage:     defaultLanguage,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *documentService) start(ctx context.Context, name, tenantID string) (context.Context, context.CancelFunc, trace.Span) {
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attribute.String("tenant.id", tenantID)))
	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	return ctx, cancel, span
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(apperr.KindOf(err)))
	}
	span.End()
}

func validateTenant(op, tenantID string) (string, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return "", apperr.Validation(op, "tenant_id", "tenant_id is required")
	}
	if strings.ContainsAny(tenantID, `/\`) || tenantID == "." || tenantID == ".." {
		return "", apperr.Validation(op, "tenant_id", "tenant_id must not contain path separators")
	}
	return tenantID, nil
}

func validateID(op, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation(op, "id", "id is required")
	}
	return nil
}

func (s *documentService) Upload(ctx context.Context, in UploadInput) (doc *model.Document, err error) {
	const op = "service.Upload"
	ctx, cancel, span := s.start(ctx, op, in.TenantID)
	defer cancel()
	defer func() {
		s.metrics.upload(err)
		endSpan(span, err)
	}()

	tenantID, err := validateTenant(op, in.TenantID)
	if err != nil {
		return nil, err
	}
	filename := strings.TrimSpace(in.Filename)
	if filename == "" {
		return nil, apperr.Validation(op, "filename", "filename is required")
	}
	if in.FileSize != nil && *in.FileSize < 0 {
		return nil, apperr.Validation(op, "file_size", "file_size must not be negative")
	}

	body, size := in.Body, in.Size
	if body == nil {
		body, size = strings.NewReader(""), 0
	}
	contentType := defaultContentType
	if in.MimeType != nil && strings.TrimSpace(*in.MimeType) != "" {
		contentType = strings.TrimSpace(*in.MimeType)
	}
	language := strings.TrimSpace(in.Language)
	if language == "" {
		language = s.defaultLanguage
	}

	now := s.now().UTC()
	id := s.newID()
	key := storage.ObjectKey(tenantID, strconv.FormatInt(now.UnixMilli(), 10)+"-"+id, filename)
	span.SetAttributes(attribute.String("document.id", id))

	info, err := s.store.Put(ctx, key, body, storage.PutObjectOptions{
		Size:        size,
		ContentType: contentType,
		Metadata: map[string]string{
			"tenant-id":   tenantID,
			"document-id": id,
		},
		NoOverwrite: true,
	})
	if err != nil {
		if k := apperr.KindOf(err); k != apperr.KindAlreadyExists && k != apperr.KindStorage {
			err = apperr.Wrap(apperr.KindStorage, op, err, "failed to store document content")
		}
		return nil, err
	}

	fileSize := in.FileSize
	if fileSize == nil && info.Size >= 0 {
		n := info.Size
		fileSize = &n
	}

	stored, err := s.repo.Create(ctx, &model.Document{
		ID:          id,
		TenantID:    tenantID,
		UploadedBy:  in.UploadedBy,
		CreatedBy:   in.UploadedBy,
		Filename:    filename,
		StoragePath: key,
		FileSize:    fileSize,
		MimeType:    in.MimeType,
		Language:    language,
		Status:      model.StatusPending,
		Metadata:    map[string]any{},
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.compensate(ctx, tenantID, id, key, err)
		return nil, apperr.Wrap(apperr.KindPersistence, op, err, "failed to save document record")
	}

	s.log.Info().
		Str("tenant_id", tenantID).
		Str("document_id", stored.ID).
		Int64("size", info.Size).
		Msg("document_uploaded")
	return stored, nil
}

// compensate removes the object written by a failed upload. It runs exactly once,
// detached from the caller's cancellation so an abandoned request still cleans up.
func (s *documentService) compensate(ctx context.Context, tenantID, id, key string, cause error) {
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.compensationTimeout)
	defer cancel()

	if err := s.store.Delete(cctx, key); err != nil {
		s.metrics.compensation(false)
		s.log.Error().
			Err(err).
			AnErr("cause", cause).
			Str("tenant_id", tenantID).
			Str("document_id", id).
			Str("storage_path", key).
			Msg("upload_compensation_failed")
		return
	}
	s.metrics.compensation(true)
	s.log.Warn().
		AnErr("cause", cause).
		Str("tenant_id", tenantID).
		Str("document_id", id).
		Msg("upload_compensated")
}

func (s *documentService) List(ctx context.Context, tenantID string) (docs []model.Document, err error) {
	const op = "service.List"
	ctx, cancel, span := s.start(ctx, op, tenantID)
	defer cancel()
	defer func() { endSpan(span, err) }()

	if tenantID, err = validateTenant(op, tenantID); err != nil {
		return nil, err
	}
	return s.repo.ListByTenant(ctx, tenantID)
}

func (s *documentService) Get(ctx context.Context, tenantID, id string, includeDeleted bool) (doc *model.Document, err error) {
	const op = "service.Get"
	ctx, cancel, span := s.start(ctx, op, tenantID)
	defer cancel()
	defer func() { endSpan(span, err) }()

	return s.find(ctx, op, tenantID, id, includeDeleted)
}

func (s *documentService) find(ctx context.Context, op, tenantID, id string, includeDeleted bool) (*model.Document, error) {
	tenantID, err := validateTenant(op, tenantID)
	if err != nil {
		return nil, err
	}
	if err := validateID(op, id); err != nil {
		return nil, err
	}
	doc, err := s.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if doc.IsDeleted && !includeDeleted {
		return nil, apperr.New(apperr.KindNotFound, op, "document not found")
	}
	return doc, nil
}

func (s *documentService) Update(ctx context.Context, tenantID, id string, patch model.DocumentPatch) (doc *model.Document, err error) {
	const op = "service.Update"
	ctx, cancel, span := s.start(ctx, op, tenantID)
	defer cancel()
	defer func() { endSpan(span, err) }()

	if tenantID, err = validateTenant(op, tenantID); err != nil {
		return nil, err
	}
	if err = validateID(op, id); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, apperr.Validation(op, "", "at least one of status, metadata or updated_by is required")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperr.Validation(op, "status", "status must be one of pending, processing, completed, failed")
	}

	doc, err = s.repo.Update(ctx, tenantID, id, patch)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("tenant_id", tenantID).
		Str("document_id", id).
		Str("status", string(doc.Status)).
		Msg("document_updated")
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, tenantID, id string) (doc *model.Document, err error) {
	const op = "service.Delete"
	ctx, cancel, span := s.start(ctx, op, tenantID)
	defer cancel()
	defer func() { endSpan(span, err) }()

	if tenantID, err = validateTenant(op, tenantID); err != nil {
		return nil, err
	}
	if err = validateID(op, id); err != nil {
		return nil, err
	}
	doc, err = s.repo.SoftDelete(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("tenant_id", tenantID).Str("document_id", id).Msg("document_deleted")
	return doc, nil
}

func (s *documentService) DownloadURL(ctx context.Context, tenantID, id string) (u string, expiry time.Duration, err error) {
	const op = "service.DownloadURL"
	ctx, cancel, span := s.start(ctx, op, tenantID)
	defer cancel()
	defer func() { endSpan(span, err) }()

	doc, err := s.find(ctx, op, tenantID, id, false)
	if err != nil {
		return "", 0, err
	}
	u, err = s.store.PresignGet(ctx, doc.StoragePath, s.presignExpiry)
	if err != nil {
		return "", 0, err
	}
	return u, s.presignExpiry, nil
}

func (s *documentService) Open(ctx context.Context, tenantID, id string) (rc io.ReadCloser, info storage.ObjectInfo, doc *model.Document, err error) {
	const op = "service.Open"
	ctx, cancel, span := s.start(ctx, op, tenantID)
	defer func() {
		if err != nil {
			cancel()
		}
		endSpan(span, err)
	}()

	doc, err = s.find(ctx, op, tenantID, id, false)
	if err != nil {
		return nil, storage.ObjectInfo{}, nil, err
	}
	rc, info, err = s.store.Get(ctx, doc.StoragePath)
	if err != nil {
		return nil, storage.ObjectInfo{}, nil, err
	}
	// The operation deadline stays in force until the stream is closed.
	return &cancelOnClose{ReadCloser: rc, cancel: cancel}, info, doc, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

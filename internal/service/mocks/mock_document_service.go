package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"tenderdocs/internal/model"
	"tenderdocs/internal/service"
	"tenderdocs/internal/storage"
)

type MockDocumentService struct {
	mock.Mock
}

var _ service.DocumentService = (*MockDocumentService)(nil)

func (m *MockDocumentService) Upload(ctx context.Context, in service.UploadInput) (*model.Document, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, tenantID string) ([]model.Document, error) {
	args := m.Called(ctx, tenantID)
	docs, _ := args.Get(0).([]model.Document)
	return docs, args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, tenantID, id string, includeDeleted bool) (*model.Document, error) {
	args := m.Called(ctx, tenantID, id, includeDeleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, tenantID, id string, patch model.DocumentPatch) (*model.Document, error) {
	args := m.Called(ctx, tenantID, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, tenantID, id string) (*model.Document, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) DownloadURL(ctx context.Context, tenantID, id string) (string, time.Duration, error) {
	args := m.Called(ctx, tenantID, id)
	return args.String(0), args.Get(1).(time.Duration), args.Error(2)
}

func (m *MockDocumentService) Open(ctx context.Context, tenantID, id string) (io.ReadCloser, storage.ObjectInfo, *model.Document, error) {
	args := m.Called(ctx, tenantID, id)
	rc, _ := args.Get(0).(io.ReadCloser)
	doc, _ := args.Get(2).(*model.Document)
	return rc, args.Get(1).(storage.ObjectInfo), doc, args.Error(3)
}

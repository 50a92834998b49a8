package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tenderdocs/internal/apperr"
	"tenderdocs/internal/http/middleware"
	"tenderdocs/internal/model"
	"tenderdocs/internal/service"
	serviceMocks "tenderdocs/internal/service/mocks"
	"tenderdocs/internal/storage"
)

func newTestApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	return app
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func jsonRequest(method, target string, body any) *http.Request {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := newTestApp()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Kind)
		assert.NotEmpty(t, body.RequestID)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUploadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp()
	app.Post("/upload-document", UploadDocument(mockSvc))

	t.Run("json success", func(t *testing.T) {
		id := uuid.NewString()
		doc := &model.Document{ID: id, TenantID: "t1", Filename: "tender.pdf", StoragePath: "documents/t1/1-" + id + "_tender.pdf", Status: model.StatusPending}
		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.TenantID == "t1" && in.Filename == "tender.pdf" && in.Size == 5 && in.Language == "fr" &&
				in.FileSize != nil && *in.FileSize == 5 && in.UploadedBy != nil && *in.UploadedBy == "u1"
		})).Return(doc, nil).Once()

		req := jsonRequest(http.MethodPost, "/upload-document", map[string]any{
			"filename":    "tender.pdf",
			"tenant_id":   "t1",
			"file_size":   5,
			"language":    "fr",
			"uploaded_by": "u1",
			"content":     base64.StdEncoding.EncodeToString([]byte("hello")),
		})
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var result uploadResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.True(t, result.Success)
		assert.Equal(t, id, result.Document.ID)
		assert.Equal(t, model.StatusPending, result.Document.Status)
		assert.True(t, strings.HasPrefix(result.Document.StoragePath, "documents/t1/"))
		assert.NotEmpty(t, result.Message)
		mockSvc.AssertExpectations(t)
	})

	t.Run("json without content", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.Filename == "metadata-only.pdf" && in.Body == nil && in.Size == 0
		})).Return(&model.Document{ID: uuid.NewString()}, nil).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/upload-document", map[string]any{
			"filename":  "metadata-only.pdf",
			"tenant_id": "t1",
		}))
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("multipart success", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		writer.WriteField("tenant_id", "t1")
		writer.WriteField("uploaded_by", "u1")
		part, _ := writer.CreateFormFile("file", "test.txt")
		part.Write([]byte("hello world"))
		writer.Close()

		expectedDoc := &model.Document{ID: uuid.NewString(), Filename: "test.txt"}
		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.TenantID == "t1" && in.Filename == "test.txt" && in.Size == 11 && in.Body != nil
		})).Return(expectedDoc, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/upload-document", body)
		req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("multipart without file", func(t *testing.T) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		writer.WriteField("tenant_id", "t1")
		writer.Close()

		req := httptest.NewRequest(http.MethodPost, "/upload-document", body)
		req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_ERROR", res.Error.Kind)
		assert.Equal(t, "file", res.Error.Details["field"])
	})

	t.Run("missing tenant never reaches the service", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/upload-document", map[string]any{"filename": "tender.pdf"}))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_ERROR", res.Error.Kind)
		assert.Equal(t, "tenant_id", res.Error.Details["field"])
	})

	t.Run("missing filename", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/upload-document", map[string]any{"tenant_id": "t1"}))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "filename", decodeError(t, resp).Error.Details["field"])
	})

	t.Run("invalid base64", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/upload-document", map[string]any{
			"tenant_id": "t1", "filename": "a.pdf", "content": "%%%",
		}))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "content", decodeError(t, resp).Error.Details["field"])
	})

	t.Run("unsupported body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload-document", strings.NewReader("raw"))
		req.Header.Set(fiber.HeaderContentType, "text/plain")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("storage error is retryable", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool { return in.Filename == "slow.pdf" })).
			Return(nil, apperr.Wrap(apperr.KindStorage, "minio.Put", errors.New("dial tcp 10.0.0.5:9000"), "object write failed")).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/upload-document", map[string]any{"tenant_id": "t1", "filename": "slow.pdf"}))
		require.NoError(t, err)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "STORAGE_ERROR", res.Error.Kind)
		assert.NotContains(t, res.Error.Message, "10.0.0.5")
		mockSvc.AssertExpectations(t)
	})

	t.Run("persistence error", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool { return in.Filename == "db.pdf" })).
			Return(nil, apperr.Wrap(apperr.KindPersistence, "service.Upload", errors.New("pq: relation missing"), "failed to save document record")).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/upload-document", map[string]any{"tenant_id": "t1", "filename": "db.pdf"}))
		require.NoError(t, err)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "PERSISTENCE_ERROR", res.Error.Kind)
		assert.Equal(t, "failed to save document record", res.Error.Message)
		mockSvc.AssertExpectations(t)
	})
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp()
	app.Get("/documents", ListDocuments(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, "t1").
			Return([]model.Document{{ID: uuid.NewString(), Filename: "test.pdf"}}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents?tenant_id=t1", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result listResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Len(t, result.Documents, 1)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty list renders as array", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, "t2").Return(nil, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents?tenant_id=t2", nil))
		require.NoError(t, err)

		raw, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"documents":[]}`, string(raw))
	})

	t.Run("missing tenant", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "tenant_id", decodeError(t, resp).Error.Details["field"])
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, "t3").
			Return(nil, apperr.New(apperr.KindPersistence, "postgres.ListByTenant", "failed to fetch documents")).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents?tenant_id=t3", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unknown error is opaque", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, "t4").Return(nil, errors.New("secret dsn postgres://admin")).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents?tenant_id=t4", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "INTERNAL_ERROR", res.Error.Kind)
		assert.Equal(t, "internal server error", res.Error.Message)
	})
}

func TestGetDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp()
	app.Get("/documents/:id", GetDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Get", mock.Anything, "t1", id, false).Return(&model.Document{ID: id, Filename: "test.txt"}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id+"?tenant_id=t1", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result documentResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, id, result.Document.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("include deleted", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Get", mock.Anything, "t1", id, true).Return(&model.Document{ID: id, IsDeleted: true}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id+"?tenant_id=t1&include_deleted=true", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Get", mock.Anything, "t1", id, false).
			Return(nil, apperr.New(apperr.KindNotFound, "service.Get", "document not found")).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id+"?tenant_id=t1", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Kind)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents/invalid-uuid?tenant_id=t1", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_ERROR", res.Error.Kind)
		assert.Equal(t, "id", res.Error.Details["field"])
	})

	t.Run("missing tenant", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+uuid.NewString(), nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUpdateDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp()
	app.Patch("/documents/:id", UpdateDocument(mockSvc))

	t.Run("status and metadata", func(t *testing.T) {
		id := uuid.NewString()
		processing := model.StatusProcessing
		mockSvc.On("Update", mock.Anything, "t1", id, model.DocumentPatch{
			Status:    &processing,
			Metadata:  map[string]any{"b": float64(2)},
			UpdatedBy: strPtr("u2"),
		}).Return(&model.Document{ID: id, Status: processing, Metadata: map[string]any{"b": 2}}, nil).Once()

		resp, err := app.Test(jsonRequest(http.MethodPatch, "/documents/"+id, map[string]any{
			"tenant_id":  "t1",
			"status":     "processing",
			"metadata":   map[string]any{"b": 2},
			"updated_by": "u2",
		}))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result updateResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.True(t, result.Success)
		assert.Equal(t, model.StatusProcessing, result.Document.Status)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty metadata object clears the map", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Update", mock.Anything, "t1", id, model.DocumentPatch{Metadata: map[string]any{}}).
			Return(&model.Document{ID: id, Metadata: map[string]any{}}, nil).Once()

		resp, err := app.Test(jsonRequest(http.MethodPatch, "/documents/"+id, map[string]any{
			"tenant_id": "t1",
			"metadata":  map[string]any{},
		}))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unknown status", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPatch, "/documents/"+uuid.NewString(), map[string]any{
			"tenant_id": "t1",
			"status":    "archived",
		}))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "status", decodeError(t, resp).Error.Details["field"])
	})

	t.Run("illegal transition", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Update", mock.Anything, "t1", id, mock.Anything).
			Return(nil, model.CheckTransition(model.StatusCompleted, model.StatusPending)).Once()

		resp, err := app.Test(jsonRequest(http.MethodPatch, "/documents/"+id, map[string]any{
			"tenant_id": "t1",
			"status":    "pending",
		}))
		require.NoError(t, err)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "INVALID_TRANSITION", decodeError(t, resp).Error.Kind)
		mockSvc.AssertExpectations(t)
	})

	t.Run("tenant comes from the body", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPatch, "/documents/"+uuid.NewString()+"?tenant_id=t1", map[string]any{
			"status": "processing",
		}))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "tenant_id", decodeError(t, resp).Error.Details["field"])
	})
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp()
	app.Delete("/documents/:id", DeleteDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Delete", mock.Anything, "t1", id).Return(&model.Document{ID: id, IsDeleted: true}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/"+id+"?tenant_id=t1", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result deleteResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.True(t, result.Success)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Delete", mock.Anything, "t1", id).
			Return(nil, apperr.New(apperr.KindNotFound, "postgres.SoftDelete", "document not found")).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/"+id+"?tenant_id=t1", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Kind)
		mockSvc.AssertExpectations(t)
	})

	t.Run("missing tenant", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/documents/"+uuid.NewString(), nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDocumentURL(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp()
	app.Get("/documents/:id/url", DocumentURL(mockSvc))

	id := uuid.NewString()
	mockSvc.On("DownloadURL", mock.Anything, "t1", id).Return("https://signed.example/x", 15*time.Minute, nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id+"/url?tenant_id=t1", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var result urlResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "https://signed.example/x", result.URL)
	assert.Equal(t, 900, result.ExpiresIn)
	mockSvc.AssertExpectations(t)
}

func TestDocumentContent(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp()
	app.Get("/documents/:id/content", DocumentContent(mockSvc))

	t.Run("streams bytes", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Open", mock.Anything, "t1", id).Return(
			io.NopCloser(strings.NewReader("%PDF-1.7")),
			storage.ObjectInfo{Size: 8, ContentType: "application/pdf"},
			&model.Document{ID: id, Filename: "tender.pdf"},
			nil,
		).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id+"/content?tenant_id=t1", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
		assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "tender.pdf")
		raw, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "%PDF-1.7", string(raw))
		mockSvc.AssertExpectations(t)
	})

	t.Run("storage unavailable", func(t *testing.T) {
		id := uuid.NewString()
		mockSvc.On("Open", mock.Anything, "t1", id).Return(
			nil, storage.ObjectInfo{}, nil,
			apperr.New(apperr.KindStorage, "s3.Get", "object read failed"),
		).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents/"+id+"/content?tenant_id=t1", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})
}

func TestRouting(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := newTestApp()
	RegisterRoutes(app, nil, mockSvc, middleware.BearerAuth([]string{"s3cret"}))

	t.Run("not found route", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Kind)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/health", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Kind)
	})

	t.Run("probes are open", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("document routes need a bearer token", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents?tenant_id=t1", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "UNAUTHORIZED", decodeError(t, resp).Error.Kind)
		mockSvc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("authorized request", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, "t1").Return([]model.Document{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents?tenant_id=t1", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer s3cret")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func strPtr(s string) *string { return &s }

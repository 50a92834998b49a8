package handler

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tenderdocs/internal/model"
	"tenderdocs/internal/service"
)

// uploadRequest is the JSON upload body. Multipart uploads carry the same names as form fields.
type uploadRequest struct {
	Filename   string  `json:"filename"`
	TenantID   string  `json:"tenant_id"`
	FileSize   *int64  `json:"file_size"`
	MimeType   *string `json:"mime_type"`
	Language   string  `json:"language"`
	UploadedBy *string `json:"uploaded_by"`
	// Content is the base64 encoded file body. Empty stores a zero-byte object.
	Content string `json:"content"`
}

type uploadResponse struct {
	Success  bool            `json:"success"`
	Document *model.Document `json:"document"`
	Message  string          `json:"message"`
}

type listResponse struct {
	Documents []model.Document `json:"documents"`
}

type documentResponse struct {
	Document *model.Document `json:"document"`
}

type updateRequest struct {
	TenantID  string          `json:"tenant_id"`
	Status    *string         `json:"status"`
	Metadata  *map[string]any `json:"metadata"`
	UpdatedBy *string         `json:"updated_by"`
}

type updateResponse struct {
	Success  bool            `json:"success"`
	Document *model.Document `json:"document"`
}

type deleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type urlResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

func isJSON(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON)
}

// documentID validates the :id path parameter.
func documentID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// UploadDocument stores a file and creates its document row.
//
// @Summary  Upload a document
// @Tags     documents
// @Accept   json,mpfd
// @Produce  json
// @Param    body body uploadRequest false "JSON upload"
// @Param    file formData file false "Multipart file part"
// @Success  201 {object} uploadResponse
// @Failure  400 {object} errorPayload
// @Failure  409 {object} errorPayload
// @Failure  500 {object} errorPayload
// @Failure  503 {object} errorPayload
// @Security BearerAuth
// @Router   /upload-document [post]
func UploadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.UploadInput

		switch {
		case isMultipart(c):
			fh, err := c.FormFile("file")
			if err != nil {
				return validationError(c, "file", "file is required")
			}
			f, err := fh.Open()
			if err != nil {
				return validationError(c, "file", "cannot open uploaded file")
			}
			defer f.Close()

			in = service.UploadInput{
				TenantID:   c.FormValue("tenant_id"),
				Filename:   c.FormValue("filename", fh.Filename),
				MimeType:   optional(c.FormValue("mime_type", fh.Header.Get(fiber.HeaderContentType))),
				Language:   c.FormValue("language"),
				UploadedBy: optional(c.FormValue("uploaded_by")),
				Body:       f,
				Size:       fh.Size,
			}
			if v := c.FormValue("file_size"); v != "" {
				n, err := strconv.ParseInt(v, 10, 64)
				if err != nil {
					return validationError(c, "file_size", "file_size must be an integer")
				}
				in.FileSize = &n
			}

		case isJSON(c):
			var req uploadRequest
			if err := c.BodyParser(&req); err != nil {
				return validationError(c, "", "invalid JSON body")
			}
			in = service.UploadInput{
				TenantID:   req.TenantID,
				Filename:   req.Filename,
				MimeType:   req.MimeType,
				Language:   req.Language,
				UploadedBy: req.UploadedBy,
				FileSize:   req.FileSize,
			}
			if req.Content != "" {
				raw, err := base64.StdEncoding.DecodeString(req.Content)
				if err != nil {
					return validationError(c, "content", "content must be base64 encoded")
				}
				in.Body = strings.NewReader(string(raw))
				in.Size = int64(len(raw))
			}

		default:
			return validationError(c, "", "body must be application/json or multipart/form-data")
		}

		if strings.TrimSpace(in.TenantID) == "" {
			return validationError(c, "tenant_id", "tenant_id is required")
		}
		if strings.TrimSpace(in.Filename) == "" {
			return validationError(c, "filename", "filename is required")
		}

		doc, err := docSvc.Upload(c.UserContext(), in)
		if err != nil {
			return writeAppError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(uploadResponse{
			Success:  true,
			Document: doc,
			Message:  "Document uploaded successfully",
		})
	}
}

// ListDocuments returns the tenant's live documents, newest first.
//
// @Summary  List documents
// @Tags     documents
// @Produce  json
// @Param    tenant_id query string true "Tenant id"
// @Success  200 {object} listResponse
// @Failure  400 {object} errorPayload
// @Failure  500 {object} errorPayload
// @Security BearerAuth
// @Router   /documents [get]
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID := c.Query("tenant_id")
		if tenantID == "" {
			return validationError(c, "tenant_id", "tenant_id query parameter is required")
		}
		docs, err := docSvc.List(c.UserContext(), tenantID)
		if err != nil {
			return writeAppError(c, err)
		}
		if docs == nil {
			docs = []model.Document{}
		}
		return c.JSON(listResponse{Documents: docs})
	}
}

// GetDocument returns one document. Soft-deleted rows need include_deleted=true.
//
// @Summary  Get a document
// @Tags     documents
// @Produce  json
// @Param    id              path  string true  "Document id"
// @Param    tenant_id       query string true  "Tenant id"
// @Param    include_deleted query bool   false "Return soft-deleted rows"
// @Success  200 {object} documentResponse
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Security BearerAuth
// @Router   /documents/{id} [get]
func GetDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return validationError(c, "id", "invalid id format")
		}
		tenantID := c.Query("tenant_id")
		if tenantID == "" {
			return validationError(c, "tenant_id", "tenant_id query parameter is required")
		}
		doc, err := docSvc.Get(c.UserContext(), tenantID, id, c.QueryBool("include_deleted", false))
		if err != nil {
			return writeAppError(c, err)
		}
		return c.JSON(documentResponse{Document: doc})
	}
}

// UpdateDocument patches status, metadata and updated_by. Metadata replaces the stored map.
//
// @Summary  Update a document
// @Tags     documents
// @Accept   json
// @Produce  json
// @Param    id   path string        true "Document id"
// @Param    body body updateRequest true "Patch"
// @Success  200 {object} updateResponse
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Failure  409 {object} errorPayload
// @Security BearerAuth
// @Router   /documents/{id} [patch]
func UpdateDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return validationError(c, "id", "invalid id format")
		}
		var req updateRequest
		if err := c.BodyParser(&req); err != nil {
			return validationError(c, "", "invalid JSON body")
		}
		if strings.TrimSpace(req.TenantID) == "" {
			return validationError(c, "tenant_id", "tenant_id is required")
		}

		patch := model.DocumentPatch{UpdatedBy: req.UpdatedBy}
		if req.Status != nil {
			st, err := model.ParseStatus(*req.Status)
			if err != nil {
				return writeAppError(c, err)
			}
			patch.Status = &st
		}
		if req.Metadata != nil {
			patch.Metadata = *req.Metadata
		}

		doc, err := docSvc.Update(c.UserContext(), req.TenantID, id, patch)
		if err != nil {
			return writeAppError(c, err)
		}
		return c.JSON(updateResponse{Success: true, Document: doc})
	}
}

// DeleteDocument soft-deletes a document.
//
// @Summary  Delete a document
// @Tags     documents
// @Produce  json
// @Param    id        path  string true "Document id"
// @Param    tenant_id query string true "Tenant id"
// @Success  200 {object} deleteResponse
// @Failure  400 {object} errorPayload
// @Failure  404 {object} errorPayload
// @Security BearerAuth
// @Router   /documents/{id} [delete]
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return validationError(c, "id", "invalid id format")
		}
		tenantID := c.Query("tenant_id")
		if tenantID == "" {
			return validationError(c, "tenant_id", "tenant_id query parameter is required")
		}
		if _, err := docSvc.Delete(c.UserContext(), tenantID, id); err != nil {
			return writeAppError(c, err)
		}
		return c.JSON(deleteResponse{Success: true, Message: "Document deleted successfully"})
	}
}

// DocumentURL returns a time-limited download URL.
//
// @Summary  Presigned download URL
// @Tags     documents
// @Produce  json
// @Param    id        path  string true "Document id"
// @Param    tenant_id query string true "Tenant id"
// @Success  200 {object} urlResponse
// @Failure  404 {object} errorPayload
// @Failure  503 {object} errorPayload
// @Security BearerAuth
// @Router   /documents/{id}/url [get]
func DocumentURL(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return validationError(c, "id", "invalid id format")
		}
		tenantID := c.Query("tenant_id")
		if tenantID == "" {
			return validationError(c, "tenant_id", "tenant_id query parameter is required")
		}
		u, expiry, err := docSvc.DownloadURL(c.UserContext(), tenantID, id)
		if err != nil {
			return writeAppError(c, err)
		}
		return c.JSON(urlResponse{URL: u, ExpiresIn: int(expiry.Seconds())})
	}
}

// DocumentContent streams the stored file.
//
// @Summary  Download document content
// @Tags     documents
// @Produce  octet-stream
// @Param    id        path  string true "Document id"
// @Param    tenant_id query string true "Tenant id"
// @Success  200 {file} file
// @Failure  404 {object} errorPayload
// @Failure  503 {object} errorPayload
// @Security BearerAuth
// @Router   /documents/{id}/content [get]
func DocumentContent(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := documentID(c)
		if !ok {
			return validationError(c, "id", "invalid id format")
		}
		tenantID := c.Query("tenant_id")
		if tenantID == "" {
			return validationError(c, "tenant_id", "tenant_id query parameter is required")
		}
		rc, info, doc, err := docSvc.Open(c.UserContext(), tenantID, id)
		if err != nil {
			return writeAppError(c, err)
		}

		c.Attachment(doc.Filename)
		switch {
		case info.ContentType != "":
			c.Set(fiber.HeaderContentType, info.ContentType)
		case doc.MimeType != nil:
			c.Set(fiber.HeaderContentType, *doc.MimeType)
		}
		size := -1
		if info.Size >= 0 {
			size = int(info.Size)
		}
		// fasthttp closes rc once the body is written.
		return c.SendStream(rc, size)
	}
}

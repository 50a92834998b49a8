// Package client is a typed Go client for the tender document API.
//
// Every call takes the tenant id explicitly. Non-2xx responses are returned as *Error.
// The client never retries; use IsRetryable to decide whether to repeat a call.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultTimeout applies to every request when Config.Timeout is zero.
const DefaultTimeout = 60 * time.Second

// Config holds client settings.
type Config struct {
	// BaseURL is the API root, e.g. http://localhost:8080.
	BaseURL string
	// Token is sent as "Authorization: Bearer <token>".
	Token string
	// Timeout bounds each request (default: 60s).
	Timeout time.Duration
	// HTTPClient replaces the default traced client.
	HTTPClient *http.Client
}

// Client calls the document API.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// Document mirrors the API document representation.
type Document struct {
	ID          string         `json:"id" yaml:"id"`
	TenantID    string         `json:"tenant_id" yaml:"tenant_id"`
	UploadedBy  *string        `json:"uploaded_by" yaml:"uploaded_by"`
	CreatedBy   *string        `json:"created_by" yaml:"created_by"`
	UpdatedBy   *string        `json:"updated_by" yaml:"updated_by"`
	Filename    string         `json:"filename" yaml:"filename"`
	StoragePath string         `json:"storage_path" yaml:"storage_path"`
	FileSize    *int64         `json:"file_size" yaml:"file_size"`
	MimeType    *string        `json:"mime_type" yaml:"mime_type"`
	Language    string         `json:"language" yaml:"language"`
	Status      string         `json:"status" yaml:"status"`
	Metadata    map[string]any `json:"metadata" yaml:"metadata"`
	IsDeleted   bool           `json:"is_deleted" yaml:"is_deleted"`
	CreatedAt   time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" yaml:"updated_at"`
}

// UploadRequest is a JSON upload. Content may be nil to register a document without bytes.
// An empty Language lets the server apply its default.
type UploadRequest struct {
	TenantID   string
	Filename   string
	FileSize   *int64
	MimeType   string
	Language   string
	UploadedBy string
	Content    []byte
}

// UploadFileRequest is a streamed multipart upload.
type UploadFileRequest struct {
	TenantID   string
	Filename   string
	MimeType   string
	Language   string
	UploadedBy string
	Body       io.Reader
}

// Patch is a partial update. Nil fields are not sent; a non-nil Metadata replaces the stored map.
type Patch struct {
	Status    *string
	Metadata  map[string]any
	UpdatedBy *string
}

// New creates a client.
func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// send executes req and decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) sendJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func tenantQuery(tenantID string) url.Values {
	return url.Values{"tenant_id": []string{tenantID}}
}

func documentPath(id string, suffix ...string) string {
	return "/documents/" + url.PathEscape(id) + strings.Join(suffix, "")
}

// Health checks the readiness endpoint.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.sendJSON(ctx, http.MethodGet, "/health", nil, nil, &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return fmt.Errorf("unexpected health status %q", out.Status)
	}
	return nil
}

type uploadResponse struct {
	Success  bool      `json:"success"`
	Document *Document `json:"document"`
	Message  string    `json:"message"`
}

// Upload creates a document from an in-memory body.
func (c *Client) Upload(ctx context.Context, in UploadRequest) (*Document, error) {
	body := map[string]any{
		"tenant_id": in.TenantID,
		"filename":  in.Filename,
	}
	if in.FileSize != nil {
		body["file_size"] = *in.FileSize
	}
	if in.MimeType != "" {
		body["mime_type"] = in.MimeType
	}
	if in.Language != "" {
		body["language"] = in.Language
	}
	if in.UploadedBy != "" {
		body["uploaded_by"] = in.UploadedBy
	}
	if len(in.Content) > 0 {
		body["content"] = base64.StdEncoding.EncodeToString(in.Content)
	}

	var out uploadResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/upload-document", nil, body, &out); err != nil {
		return nil, err
	}
	return out.Document, nil
}

// UploadFile streams Body as a multipart upload.
func (c *Client) UploadFile(ctx context.Context, in UploadFileRequest) (*Document, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeMultipart(mw, in))
	}()

	req, err := c.newRequest(ctx, http.MethodPost, "/upload-document", nil, pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out uploadResponse
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return out.Document, nil
}

func writeMultipart(mw *multipart.Writer, in UploadFileRequest) error {
	fields := [][2]string{
		{"tenant_id", in.TenantID},
		{"filename", in.Filename},
		{"mime_type", in.MimeType},
		{"language", in.Language},
		{"uploaded_by", in.UploadedBy},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%s`, strconv.Quote(in.Filename)))
	ct := in.MimeType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if in.Body != nil {
		if _, err := io.Copy(part, in.Body); err != nil {
			return err
		}
	}
	return mw.Close()
}

// List returns the tenant's live documents, newest first.
func (c *Client) List(ctx context.Context, tenantID string) ([]Document, error) {
	var out struct {
		Documents []Document `json:"documents"`
	}
	if err := c.sendJSON(ctx, http.MethodGet, "/documents", tenantQuery(tenantID), nil, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

// Get fetches one document. includeDeleted also returns soft-deleted rows.
func (c *Client) Get(ctx context.Context, tenantID, id string, includeDeleted bool) (*Document, error) {
	q := tenantQuery(tenantID)
	if includeDeleted {
		q.Set("include_deleted", "true")
	}
	var out struct {
		Document *Document `json:"document"`
	}
	if err := c.sendJSON(ctx, http.MethodGet, documentPath(id), q, nil, &out); err != nil {
		return nil, err
	}
	return out.Document, nil
}

// Update applies patch to a document.
func (c *Client) Update(ctx context.Context, tenantID, id string, patch Patch) (*Document, error) {
	body := map[string]any{"tenant_id": tenantID}
	if patch.Status != nil {
		body["status"] = *patch.Status
	}
	if patch.Metadata != nil {
		body["metadata"] = patch.Metadata
	}
	if patch.UpdatedBy != nil {
		body["updated_by"] = *patch.UpdatedBy
	}

	var out struct {
		Success  bool      `json:"success"`
		Document *Document `json:"document"`
	}
	if err := c.sendJSON(ctx, http.MethodPatch, documentPath(id), nil, body, &out); err != nil {
		return nil, err
	}
	return out.Document, nil
}

// Delete soft-deletes a document.
func (c *Client) Delete(ctx context.Context, tenantID, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, documentPath(id), tenantQuery(tenantID), nil, nil)
}

// DownloadURL returns a presigned URL and how long it stays valid.
func (c *Client) DownloadURL(ctx context.Context, tenantID, id string) (string, time.Duration, error) {
	var out struct {
		URL       string `json:"url"`
		ExpiresIn int    `json:"expires_in"`
	}
	if err := c.sendJSON(ctx, http.MethodGet, documentPath(id, "/url"), tenantQuery(tenantID), nil, &out); err != nil {
		return "", 0, err
	}
	return out.URL, time.Duration(out.ExpiresIn) * time.Second, nil
}

// Download streams the document content. The caller must close the reader.
func (c *Client) Download(ctx context.Context, tenantID, id string) (io.ReadCloser, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, documentPath(id, "/content"), tenantQuery(tenantID), nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("send request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, "", decodeError(resp)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// Package gateway is the HTTP client for the study-assistant backend. It
// covers document upload, question answering, mode processing, and vision
// queries; the backend itself is an opaque collaborator.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"edumentor/internal/model"
)

const (
	defaultBaseURL = "http://127.0.0.1:8000"
	defaultTimeout = 60 * time.Second

	// MaxUploadBytes caps the total payload of one upload batch. Exceeding
	// it is rejected client-side before any network call.
	MaxUploadBytes = 50 << 20
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) do(ctx context.Context, op, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, body)
	if err != nil {
		return &model.BackendError{Op: op, Cause: err}
	}
	req.Header.Set("Content-Type", contentType)

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return &model.BackendError{Op: op, Cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &model.BackendError{Op: op, StatusCode: resp.StatusCode, Cause: err}
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message := strings.TrimSpace(string(respBody))
		if message == "" {
			message = resp.Status
		}
		return &model.BackendError{Op: op, StatusCode: resp.StatusCode, Message: message}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &model.BackendError{Op: op, StatusCode: resp.StatusCode, Message: "invalid response body", Cause: err}
	}
	return nil
}

func (c *Client) postForm(ctx context.Context, op, path string, form url.Values, out any) error {
	return c.do(ctx, op, path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), out)
}

// UploadDocuments uploads the files as one multipart batch scoped to the
// session. The 50 MB total cap is enforced before any network traffic, with
// a human-readable size report in the error.
func (c *Client) UploadDocuments(ctx context.Context, sessionID string, paths []string) (*UploadResult, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to upload")
	}

	var total int64
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		total += info.Size()
	}
	if total > MaxUploadBytes {
		return nil, fmt.Errorf("total upload size %s exceeds the %s limit; select fewer or smaller files",
			humanize.Bytes(uint64(total)), humanize.Bytes(uint64(MaxUploadBytes)))
	}

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for _, p := range paths {
		fw, err := writer.CreateFormFile("files", filepath.Base(p))
		if err != nil {
			return nil, err
		}
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		_, copyErr := io.Copy(fw, f)
		_ = f.Close()
		if copyErr != nil {
			return nil, copyErr
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	var result UploadResult
	path := "/vision/session/" + url.PathEscape(sessionID) + "/documents"
	if err := c.do(ctx, "upload documents", path, writer.FormDataContentType(), buf, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VisionAsk sends one combined vision query: the spoken transcript, the
// captured PNG, and the selection set as repeated selected_doc_ids fields.
func (c *Client) VisionAsk(ctx context.Context, sessionID, query string, imagePNG []byte, selectedDocIDs []string) (string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	if err := writer.WriteField("query", query); err != nil {
		return "", err
	}
	for _, id := range selectedDocIDs {
		if err := writer.WriteField("selected_doc_ids", id); err != nil {
			return "", err
		}
	}
	fw, err := writer.CreateFormFile("image", "screenshot.png")
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(imagePNG); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	var result struct {
		Answer string `json:"answer"`
	}
	path := "/vision/session/" + url.PathEscape(sessionID) + "/ask"
	if err := c.do(ctx, "vision ask", path, writer.FormDataContentType(), buf, &result); err != nil {
		return "", err
	}
	return result.Answer, nil
}

// Ask sends a free-text question over the session's documents. DocID and
// Mode are optional.
func (c *Client) Ask(ctx context.Context, req AskRequest) (*AskResult, error) {
	form := url.Values{}
	form.Set("session_id", req.SessionID)
	form.Set("question", req.Question)
	if req.DocID != "" {
		form.Set("doc_id", req.DocID)
	}
	if req.Mode != "" {
		form.Set("mode", string(req.Mode))
	}
	var result AskResult
	if err := c.postForm(ctx, "ask", "/modes/ask", form, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ProcessMode requests backend processing of every session document under
// the given mode.
func (c *Client) ProcessMode(ctx context.Context, mode model.Mode, sessionID string) (*ProcessModeResult, error) {
	form := url.Values{}
	form.Set("mode", string(mode))
	form.Set("session_id", sessionID)
	var result ProcessModeResult
	if err := c.postForm(ctx, "process mode", "/modes/process-mode", form, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ChatMode fetches session-scoped bullet summaries, optionally narrowed to
// one document.
func (c *Client) ChatMode(ctx context.Context, sessionID string, maxItems int, docID string) (*ChatModeResult, error) {
	form := url.Values{}
	form.Set("session_id", sessionID)
	form.Set("max_items", strconv.Itoa(maxItems))
	if docID != "" {
		form.Set("doc_id", docID)
	}
	var result ChatModeResult
	if err := c.postForm(ctx, "chat mode", "/modes/chat-mode", form, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gennadis/projectchat/internal/config"
	"github.com/google/uuid"
)

const (
	JSONContentType = "application/json"
	RequestIDHeader = "X-Request-ID"
)

// ErrTransport marks failures where no usable response came back from the server.
var ErrTransport = errors.New("transport error")

// ApiErrorResponse is the body the backend attaches to non-success responses.
// FastAPI style validation errors carry a structured detail, so it is kept raw.
type ApiErrorResponse struct {
	Detail  json.RawMessage `json:"detail"`
	Message string          `json:"message"`
}

// APIError is returned for any non-success HTTP status.
type APIError struct {
	StatusCode int
	Detail     string
	Message    string
}

func (e *APIError) Error() string {
	text := e.Detail
	if text == "" {
		text = e.Message
	}
	return fmt.Sprintf("api request failed: status code %d, message %s", e.StatusCode, text)
}

// Client talks to the project chat backend over HTTP.
type Client struct {
	httpClient *http.Client
	Config     *config.Config
}

// NewClient creates a Client for the backend at cfg.BaseURL
func NewClient(cfg config.Config) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout.Duration},
		Config:     &cfg,
	}
}

// do sends a JSON request and decodes a successful JSON response into out.
// An empty token sends the request without an Authorization header.
func (c *Client) do(ctx context.Context, method, path, token string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		reqBytes, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(reqBytes)
	}

	url := strings.TrimRight(c.Config.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		slog.Error("Failed to build request", "path", path, "error", err)
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", JSONContentType)
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", JSONContentType)
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("Failed to send request", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		slog.Error("Failed to read response body", "path", path, "error", err)
		return fmt.Errorf("%w: read response: %w", ErrTransport, err)
	}

	if err := handleApiError(res, resBody); err != nil {
		slog.Debug("api request rejected",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", res.StatusCode),
		)
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resBody, out); err != nil {
		slog.Error("Failed to unmarshal response body", "path", path, "error", err)
		return fmt.Errorf("%w: decode response: %w", ErrTransport, err)
	}
	return nil
}

func handleApiError(res *http.Response, body []byte) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}

	apiErr := &APIError{StatusCode: res.StatusCode}
	errResp := ApiErrorResponse{}
	if err := json.Unmarshal(body, &errResp); err != nil {
		slog.Error("Failed to unmarshal error response body", "status", res.StatusCode, "error", err)
		return fmt.Errorf("%w: decode error body (status %d): %w", ErrTransport, res.StatusCode, err)
	}
	apiErr.Detail = detailText(errResp.Detail)
	apiErr.Message = errResp.Message
	return apiErr
}

// detailText turns the detail field into display text: strings verbatim,
// anything else as its JSON encoding.
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return string(raw)
}

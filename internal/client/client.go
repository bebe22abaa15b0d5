package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"gochef/internal/model"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// DefaultUserAgent identifies this tool to the processing server.
const DefaultUserAgent = "GoChef"

var (
	// ErrRequestFailed is matched by every *RequestFailedError.
	ErrRequestFailed = errors.New("request failed")
	// ErrMalformedResponse means a 2xx body was not a JSON object with a value member.
	ErrMalformedResponse = errors.New("malformed response")
)

// RequestFailedError carries the status of a non-success response
type RequestFailedError struct {
	StatusCode int
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("request failed: status code %d", e.StatusCode)
}

func (e *RequestFailedError) Unwrap() error {
	return ErrRequestFailed
}

// Client posts recipe requests to a processing server.
type Client struct {
	http      *http.Client
	userAgent string
	logger    *zap.Logger
}

// New creates a Client. A nil httpClient uses http.DefaultClient.
func New(httpClient *http.Client, userAgent string, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{http: httpClient, userAgent: userAgent, logger: logger}
}

// Post sends body to uri once and returns the text of the response's value field.
func (c *Client) Post(ctx context.Context, uri, body string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("received response", zap.String("status", resp.Status))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &RequestFailedError{StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return extractValue(raw)
}

// extractValue returns a string value unquoted and any other JSON value,
// null included, as its compact text.
func extractValue(raw []byte) (string, error) {
	var out model.Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.Value == nil {
		return "", fmt.Errorf("%w: missing value field", ErrMalformedResponse)
	}

	var s string
	if bytes.Equal(out.Value, []byte("null")) {
		return "null", nil
	}
	if err := json.Unmarshal(out.Value, &s); err == nil {
		return s, nil
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, out.Value); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return compact.String(), nil
}

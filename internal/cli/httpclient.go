package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// apiClient is a thin HTTP client against a running browsion server,
// replacing webctl's Unix-socket IPC client.
type apiClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func newAPIClient() *apiClient {
	return &apiClient{
		baseURL: ServerAddr,
		apiKey:  APIKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// apiError mirrors the {"error": "..."} body written by internal/httpapi.
type apiError struct {
	Error string `json:"error"`
}

// do issues method against path (relative, leading slash), encoding body
// as JSON if non-nil, and decodes the response into out if non-nil.
// Non-2xx responses are returned as an error built from the body's
// "error" field when present.
func (c *apiClient) do(method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	start := time.Now()
	debugRequest(method+" "+path, "")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	debugResponse(resp.StatusCode < 400, len(data), time.Since(start))

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *apiClient) get(path string, out any) error    { return c.do(http.MethodGet, path, nil, out) }
func (c *apiClient) post(path string, body, out any) error {
	return c.do(http.MethodPost, path, body, out)
}
func (c *apiClient) put(path string, body, out any) error {
	return c.do(http.MethodPut, path, body, out)
}
func (c *apiClient) delete(path string, out any) error {
	return c.do(http.MethodDelete, path, nil, out)
}

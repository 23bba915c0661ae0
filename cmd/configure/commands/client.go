package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// defaultDaemonURL matches the daemon's default listen address.
const defaultDaemonURL = "http://127.0.0.1:8766"

// apiEnvelope is the daemon's response wrapper.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// daemonClient is a minimal client for the daemon API.
type daemonClient struct {
	baseURL    string
	httpClient *http.Client
}

// newDaemonClient reads the daemon address from AMBIENTD_URL.
func newDaemonClient() *daemonClient {
	baseURL := os.Getenv("AMBIENTD_URL")
	if baseURL == "" {
		baseURL = defaultDaemonURL
	}
	return &daemonClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// call performs one request and decodes the envelope's data field into
// out when out is non-nil.
func (c *daemonClient) call(method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("cannot reach daemon at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("invalid daemon response: %w", err)
	}
	if !envelope.Success {
		if envelope.Message != "" {
			return fmt.Errorf("%s: %s", envelope.Error, envelope.Message)
		}
		return fmt.Errorf("daemon returned %s", envelope.Error)
	}
	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("invalid daemon response data: %w", err)
		}
	}
	return nil
}

// decodeJSON decodes a raw (non-envelope) JSON body.
func decodeJSON(r io.Reader, out any) error {
	return json.NewDecoder(r).Decode(out)
}

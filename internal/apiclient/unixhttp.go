//go:build unix

package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vitessce/vitcat/internal/catalog"
	"github.com/vitessce/vitcat/internal/limits"
)

type Client struct {
	http       *http.Client
	baseURL    string
	socketPath string
}

// New returns a client for the daemon listening on socketPath.
func New(socketPath string) *Client {
	tr := &http.Transport{
		DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, "unix", socketPath)
		},
		ResponseHeaderTimeout: 30 * time.Second,
		IdleConnTimeout:       60 * time.Second,
	}
	return &Client{
		http:       &http.Client{Transport: tr}, // no Timeout; use ctx per-request
		baseURL:    "http://unix",
		socketPath: socketPath,
	}
}

type APIError struct {
	StatusCode int
	Body       []byte
	Message    string // parsed from {"error": "..."} if present
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, string(e.Body))
}

func decodeAPIError(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, limits.ErrorBody))
	var m struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(b, &m)
	return &APIError{StatusCode: resp.StatusCode, Body: b, Message: m.Error}
}

func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return c.wrapConnErr(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return decodeAPIError(resp)
	}
	return json.NewDecoder(io.LimitReader(resp.Body, limits.JSON)).Decode(out)
}

// ListDatasets fetches the public dataset summaries.
func (c *Client) ListDatasets(ctx context.Context) ([]catalog.Summary, error) {
	var out struct {
		Datasets []catalog.Summary `json:"datasets"`
	}
	if err := c.GetJSON(ctx, "/api/datasets", &out); err != nil {
		return nil, err
	}
	return out.Datasets, nil
}

// GetDataset fetches one dataset configuration by id.
func (c *Client) GetDataset(ctx context.Context, id string) (*catalog.DatasetConfig, error) {
	var out struct {
		Dataset *catalog.DatasetConfig `json:"dataset"`
	}
	if err := c.GetJSON(ctx, "/api/datasets/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return out.Dataset, nil
}

func IsNotFound(err error) bool {
	var api *APIError
	return errors.As(err, &api) && api.StatusCode == http.StatusNotFound
}

// Friendly hint when the daemon isn't running / socket missing.
func (c *Client) wrapConnErr(err error) error {
	if strings.Contains(err.Error(), "connect: no such file or directory") ||
		strings.Contains(err.Error(), "unknown network unix") ||
		strings.Contains(err.Error(), "connection refused") {
		return fmt.Errorf("cannot connect to vitcat daemon at %s; is it running? try `vitcat daemon start` (%w)", c.socketPath, err)
	}
	return err
}

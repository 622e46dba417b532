// Package registry publishes finished scan results to a schema registry
// server.
package registry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
)

var ErrUnexpectedResponse = errors.New("registry: unexpected response code")

type Client struct {
	APIKey string
	Server string

	http *http.Client
}

func NewClient(apikey, server string) (*Client, error) {
	if server == "" {
		return nil, errors.New("registry: missing server URL")
	}
	return &Client{
		APIKey: apikey,
		Server: server,
		http:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type ScanUpload struct {
	SessionID string         `json:"sessionID"`
	Database  string         `json:"database"`
	StartedAt time.Time      `json:"startedAt"`
	Schemas   map[string]any `json:"schemas"`
}

func (c *Client) UploadScan(ctx context.Context, args ScanUpload) error {
	bs, err := json.Marshal(&args)
	if err != nil {
		return err
	}

	u := fmt.Sprintf("%s/api/v1/scans", c.Server)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(bs))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusCreated {
		return fmt.Errorf("%w: %s", ErrUnexpectedResponse, res.Status)
	}
	return nil
}

package edgesync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// tunneledRequest/tunneledDocument mirror pkg/syncapi's wire shapes
// exactly (this is the client side of the same POST /{instance}/sync
// contract pkg/syncapi.Sync implements server-side).
type tunneledDocument struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata"`
	RawJSON  map[string]interface{} `json:"raw_json,omitempty"`
}

type tunneledRequest struct {
	Documents []tunneledDocument `json:"documents"`
}

type tunneledResult struct {
	Status  string   `json:"status"`
	Written int      `json:"written"`
	Indexed int      `json:"indexed"`
	Errors  []string `json:"errors"`
}

type tunneledStatus struct {
	Instance string   `json:"instance"`
	Count    int      `json:"count"`
	IDs      []string `json:"ids"`
}

// TunneledTransport talks to the central server's sync endpoints over
// HTTP, either directly on the LAN or through a tunnel URL — spec.md 4.13
// doesn't distinguish the two at the wire level, only at the
// address-resolution level handled by pkg/instanceconfig.
type TunneledTransport struct {
	BaseURL    string
	Instance   string
	Token      string
	HTTPClient *http.Client
}

// NewTunneledTransport builds a transport against baseURL (e.g.
// "https://prometheus.example.com" or a tunnel's public URL).
func NewTunneledTransport(baseURL, instance, token string) *TunneledTransport {
	return &TunneledTransport{
		BaseURL:    baseURL,
		Instance:   instance,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *TunneledTransport) ExistingIDs(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.BaseURL+"/"+t.Instance+"/sync/status", nil)
	if err != nil {
		return nil, err
	}
	t.authorize(req)

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sync status: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sync status: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sync status: http %d: %s", resp.StatusCode, body)
	}

	var status tunneledStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("sync status: decode: %w", err)
	}
	return status.IDs, nil
}

func (t *TunneledTransport) Upload(ctx context.Context, batch []LocalRecord) (int, []string, error) {
	payload := tunneledRequest{Documents: make([]tunneledDocument, 0, len(batch))}
	for _, r := range batch {
		payload.Documents = append(payload.Documents, tunneledDocument{ID: r.ID, Text: r.Text, Metadata: r.Metadata, RawJSON: r.Raw})
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal sync batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+"/"+t.Instance+"/sync", bytes.NewReader(data))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	t.authorize(req)

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("sync post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusRequestEntityTooLarge {
		return 0, nil, &ErrBatchTooLarge{BatchSize: len(batch)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("sync post: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, nil, fmt.Errorf("sync post: http %d: %s", resp.StatusCode, body)
	}

	var result tunneledResult
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, nil, fmt.Errorf("sync post: decode: %w", err)
	}
	return result.Written, result.Errors, nil
}

func (t *TunneledTransport) authorize(req *http.Request) {
	if t.Token != "" {
		req.Header.Set("Authorization", "Bearer "+t.Token)
	}
}

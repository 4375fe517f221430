package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPClient talks to an external Chroma-compatible collection service over
// its REST API. The engine itself is explicitly out of scope (spec.md §1
// treats it as an abstract contract); this is a thin client, grounded on
// the PostJSON/GetJSON idiom used for upstream calls elsewhere in the pack.
type HTTPClient struct {
	baseURL    string
	collection string
	httpClient *http.Client
}

// NewHTTPClient builds a client for the named collection on a Chroma-style
// server reachable at baseURL (e.g. "http://localhost:8000").
func NewHTTPClient(baseURL, collection string) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		collection: collection,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type upsertRequest struct {
	IDs       []string      `json:"ids"`
	Documents []string      `json:"documents"`
	Metadatas []Metadata    `json:"metadatas"`
}

func (c *HTTPClient) Upsert(ctx context.Context, ids []string, texts []string, metadatas []Metadata) error {
	req := upsertRequest{}
	for i, id := range ids {
		if i >= len(texts) || texts[i] == "" {
			continue
		}
		req.IDs = append(req.IDs, id)
		req.Documents = append(req.Documents, texts[i])
		if i < len(metadatas) {
			req.Metadatas = append(req.Metadatas, metadatas[i])
		} else {
			req.Metadatas = append(req.Metadatas, Metadata{})
		}
	}
	if len(req.IDs) == 0 {
		return nil
	}
	_, status, err := c.postJSON(ctx, fmt.Sprintf("/collections/%s/upsert", c.collection), req)
	if err != nil {
		return fmt.Errorf("vectorindex: upsert: %w", err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("vectorindex: upsert: http %d", status)
	}
	return nil
}

type queryRequest struct {
	QueryTexts  []string `json:"query_texts"`
	NResults    int      `json:"n_results"`
	Where       Where    `json:"where,omitempty"`
}

type queryResponse struct {
	IDs       [][]string   `json:"ids"`
	Documents [][]string   `json:"documents"`
	Metadatas [][]Metadata `json:"metadatas"`
	Distances [][]float64  `json:"distances"`
}

func (c *HTTPClient) Query(ctx context.Context, text string, k int, where Where) ([]Hit, error) {
	req := queryRequest{QueryTexts: []string{text}, NResults: k, Where: where}
	body, status, err := c.postJSON(ctx, fmt.Sprintf("/collections/%s/query", c.collection), req)
	if err != nil {
		return nil, fmt.Errorf("vectorindex: query: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("vectorindex: query: http %d", status)
	}
	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("vectorindex: decode query response: %w", err)
	}
	if len(resp.IDs) == 0 {
		return nil, nil
	}
	hits := make([]Hit, 0, len(resp.IDs[0]))
	for i, id := range resp.IDs[0] {
		h := Hit{ID: id}
		if i < len(resp.Documents[0]) {
			h.Text = resp.Documents[0][i]
		}
		if i < len(resp.Metadatas[0]) {
			h.Metadata = resp.Metadatas[0][i]
		}
		if i < len(resp.Distances[0]) {
			h.Distance = resp.Distances[0][i]
		}
		hits = append(hits, h)
	}
	return hits, nil
}

func (c *HTTPClient) Count(ctx context.Context) (int, error) {
	body, status, err := c.getJSON(ctx, fmt.Sprintf("/collections/%s/count", c.collection))
	if err != nil {
		return 0, fmt.Errorf("vectorindex: count: %w", err)
	}
	if status < 200 || status >= 300 {
		return 0, fmt.Errorf("vectorindex: count: http %d", status)
	}
	var n int
	if err := json.Unmarshal(body, &n); err != nil {
		return 0, fmt.Errorf("vectorindex: decode count: %w", err)
	}
	return n, nil
}

func (c *HTTPClient) GetIDs(ctx context.Context) ([]string, error) {
	body, status, err := c.getJSON(ctx, fmt.Sprintf("/collections/%s/get?ids_only=true", c.collection))
	if err != nil {
		return nil, fmt.Errorf("vectorindex: get_ids: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("vectorindex: get_ids: http %d", status)
	}
	var resp struct {
		IDs []string `json:"ids"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("vectorindex: decode get_ids: %w", err)
	}
	return resp.IDs, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, payload interface{}) ([]byte, int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *HTTPClient) getJSON(ctx context.Context, path string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	return c.do(req)
}

func (c *HTTPClient) do(req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

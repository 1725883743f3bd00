package docsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/OuyangRuyi/pdf-reader/internal/doc"
)

// Client fetches document content from a remote extraction service
// over HTTP. It satisfies Provider so the indexer can run against a
// separate structure backend instead of local files.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// blocksResponse is the body of GET /documents/{id}/blocks.
type blocksResponse struct {
	DocID  string      `json:"doc_id"`
	Blocks []doc.Block `json:"blocks"`
}

// fullTextResponse is the body of GET /documents/{id}/text.
type fullTextResponse struct {
	DocID string `json:"doc_id"`
	Text  string `json:"text"`
}

// GetBlocks retrieves the positional blocks of a document.
func (c *Client) GetBlocks(ctx context.Context, docID string) ([]doc.Block, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/documents/"+docID+"/blocks", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("get blocks: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("get blocks %s: status %d: %s", docID, resp.StatusCode, string(respBody))
	}

	var body blocksResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode blocks: %w", err)
	}
	return body.Blocks, nil
}

// GetFullText retrieves the document's plain text.
func (c *Client) GetFullText(ctx context.Context, docID string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/documents/"+docID+"/text", nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("get full text: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("get full text %s: status %d: %s", docID, resp.StatusCode, string(respBody))
	}

	var body fullTextResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode full text: %w", err)
	}
	return body.Text, nil
}

// Close releases any resources (currently a no-op).
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelsync/internal/services"
)

const defaultTimeout = 30 * time.Second

// Store is the destination-store surface the reconciliation engine and sync
// loop depend on. The concrete Client satisfies it; tests substitute an
// in-memory implementation.
type Store interface {
	QueryPages(ctx context.Context, filter Filter) ([]Page, error)
	GetPage(ctx context.Context, pageID string) (Page, error)
	CreatePage(ctx context.Context, page Page) (Page, error)
	UpdatePage(ctx context.Context, pageID string, update Update) error
	ListBlocks(ctx context.Context, pageID string) ([]Block, error)
	AppendCallout(ctx context.Context, pageID, text string) error
	AppendLink(ctx context.Context, pageID, targetPageID string) error
	DeleteBlock(ctx context.Context, blockID string) error
	ArchivePage(ctx context.Context, pageID string) error
}

// Client is the HTTP client for the destination store API.
type Client struct {
	baseURL    string
	token      string
	databaseID string
	http       *http.Client
}

// NewClient creates a catalog client. Base URL, bearer token and database id
// are all required.
func NewClient(baseURL, token, databaseID string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" || strings.TrimSpace(token) == "" || strings.TrimSpace(databaseID) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "catalog", "new_client",
			"catalog base URL, token and database id are required", nil)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		databaseID: databaseID,
		http:       &http.Client{Timeout: defaultTimeout},
	}, nil
}

// WithHTTPClient replaces the underlying HTTP client, primarily for tests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.http = h
	return c
}

type queryRequest struct {
	Filter      Filter `json:"filter"`
	StartCursor string `json:"start_cursor,omitempty"`
}

type queryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// QueryPages runs a property-filter query, following the pagination cursor
// until the result set is exhausted.
func (c *Client) QueryPages(ctx context.Context, filter Filter) ([]Page, error) {
	var (
		pages  []Page
		cursor string
	)
	for {
		var resp queryResponse
		req := queryRequest{Filter: filter, StartCursor: cursor}
		path := fmt.Sprintf("/v1/databases/%s/query", c.databaseID)
		if err := c.do(ctx, http.MethodPost, path, req, &resp); err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			return pages, nil
		}
		cursor = resp.NextCursor
	}
}

// GetPage fetches a single page by id.
func (c *Client) GetPage(ctx context.Context, pageID string) (Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, "/v1/pages/"+pageID, nil, &page); err != nil {
		return Page{}, err
	}
	return page, nil
}

type createRequest struct {
	DatabaseID string     `json:"database_id"`
	Title      string     `json:"title"`
	Properties Properties `json:"properties"`
}

// CreatePage creates a page in the configured database and returns it with
// the store-assigned id.
func (c *Client) CreatePage(ctx context.Context, page Page) (Page, error) {
	var created Page
	req := createRequest{DatabaseID: c.databaseID, Title: page.Title, Properties: page.Properties}
	if err := c.do(ctx, http.MethodPost, "/v1/pages", req, &created); err != nil {
		return Page{}, err
	}
	return created, nil
}

// UpdatePage applies a partial update to a page.
func (c *Client) UpdatePage(ctx context.Context, pageID string, update Update) error {
	return c.do(ctx, http.MethodPatch, "/v1/pages/"+pageID, update, nil)
}

// ArchivePage soft-deletes a page.
func (c *Client) ArchivePage(ctx context.Context, pageID string) error {
	archived := true
	return c.UpdatePage(ctx, pageID, Update{Archived: &archived})
}

type blockListResponse struct {
	Results []Block `json:"results"`
}

// ListBlocks returns the child blocks of a page.
func (c *Client) ListBlocks(ctx context.Context, pageID string) ([]Block, error) {
	var resp blockListResponse
	if err := c.do(ctx, http.MethodGet, "/v1/blocks/"+pageID+"/children", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// AppendCallout attaches a callout notice block to a page.
func (c *Client) AppendCallout(ctx context.Context, pageID, text string) error {
	block := Block{Type: BlockCallout, Text: text}
	return c.do(ctx, http.MethodPost, "/v1/blocks/"+pageID+"/children", block, nil)
}

// AppendLink attaches a cross-page link block to a page.
func (c *Client) AppendLink(ctx context.Context, pageID, targetPageID string) error {
	block := Block{Type: BlockLinkToPage, LinkPageID: targetPageID}
	return c.do(ctx, http.MethodPost, "/v1/blocks/"+pageID+"/children", block, nil)
}

// DeleteBlock removes a block by id.
func (c *Client) DeleteBlock(ctx context.Context, blockID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/blocks/"+blockID, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode catalog request for %s: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create catalog request for %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrReconciliation, "catalog", "request",
			fmt.Sprintf("catalog request %s %s failed", method, path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return services.Wrap(services.ErrNotFound, "catalog", "request",
			fmt.Sprintf("catalog resource %s not found", path), nil)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return services.Wrap(services.ErrReconciliation, "catalog", "request",
			fmt.Sprintf("catalog request %s %s returned status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(detail))), nil)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrReconciliation, "catalog", "decode",
			fmt.Sprintf("decode catalog response for %s", path), err)
	}
	return nil
}

package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hupe1980/notomate/logging"
)

const (
	// DefaultBaseURL is the public Notion API endpoint.
	DefaultBaseURL = "https://api.notion.com"
	// DefaultVersion is the Notion-Version header sent with every request.
	DefaultVersion = "2022-06-28"
	// MaxPageSize is the largest page size the API accepts.
	MaxPageSize = 100
	// PageContentPageSize is the fixed page size used when reading block children.
	PageContentPageSize = 10
)

// Sort directions accepted by the search endpoint.
const (
	SortDescending = "descending"
	SortAscending  = "ascending"
)

// Object is a decoded JSON object returned by the API. Agents receive it
// verbatim, so no attempt is made to model every Notion block type.
type Object map[string]any

// Sort orders search results by a timestamp.
type Sort struct {
	Direction string `json:"direction"`
	Timestamp string `json:"timestamp"`
}

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	Query       string `json:"query"`
	Sort        *Sort  `json:"sort,omitempty"`
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

// APIError is the error envelope returned by the API for non-2xx responses.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion api error (status %d, code %s): %s", e.Status, e.Code, e.Message)
}

// API is the subset of the Notion API used by the tools.
type API interface {
	Search(ctx context.Context, req SearchRequest) (Object, error)
	BlockChildren(ctx context.Context, blockID, startCursor string, pageSize int) (Object, error)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Version    string
	HTTPClient *http.Client
	Logger     logging.Logger
}

// Client talks to the Notion REST API using an integration token.
type Client struct {
	apiKey string
	opts   Options
}

// NewClient creates a Client authenticated with apiKey.
func NewClient(apiKey string, optFns ...func(o *Options)) *Client {
	opts := Options{
		BaseURL:    DefaultBaseURL,
		Version:    DefaultVersion,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Client{apiKey: apiKey, opts: opts}
}

// Search runs a workspace search.
func (c *Client) Search(ctx context.Context, req SearchRequest) (Object, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	return c.do(ctx, http.MethodPost, "/v1/search", nil, body)
}

// BlockChildren lists the children of a block (or page) starting after
// startCursor when it is non-empty.
func (c *Client) BlockChildren(ctx context.Context, blockID, startCursor string, pageSize int) (Object, error) {
	if blockID == "" {
		return nil, fmt.Errorf("block id is required")
	}

	query := url.Values{}
	if startCursor != "" {
		query.Set("start_cursor", startCursor)
	}
	if pageSize > 0 {
		query.Set("page_size", strconv.Itoa(pageSize))
	}

	return c.do(ctx, http.MethodGet, "/v1/blocks/"+url.PathEscape(blockID)+"/children", query, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte) (Object, error) {
	endpoint := c.opts.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", c.opts.Version)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		c.opts.Logger.Error("notion.request.failed", "method", method, "path", path, "error", err.Error())
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	c.opts.Logger.Debug("notion.request", "method", method, "path", path, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = string(raw)
		}
		if apiErr.Status == 0 {
			apiErr.Status = resp.StatusCode
		}
		return nil, apiErr
	}

	var out Object
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return out, nil
}

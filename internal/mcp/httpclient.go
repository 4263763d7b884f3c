package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dk3682/muscle-avatar/internal/game"
	"github.com/dk3682/muscle-avatar/internal/progression"
)

// HTTPClient implements DataSource by calling the game server's REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but the
// game runs on a server (possibly reached over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

// State reads the snapshot without draining the player's notices.
func (c *HTTPClient) State(ctx context.Context) (*game.Snapshot, error) {
	body, err := c.get(ctx, "/api/v1/state", url.Values{"peek": {"1"}})
	if err != nil {
		return nil, err
	}

	var snap game.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("httpclient: decode state: %w", err)
	}
	return &snap, nil
}

func (c *HTTPClient) Export(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/api/v1/export", nil)
}

func (c *HTTPClient) XPTable(ctx context.Context, levels int) ([]progression.LevelStep, error) {
	body, err := c.get(ctx, "/api/v1/xp-table", url.Values{"levels": {strconv.Itoa(levels)}})
	if err != nil {
		return nil, err
	}

	var table []progression.LevelStep
	if err := json.Unmarshal(body, &table); err != nil {
		return nil, fmt.Errorf("httpclient: decode xp table: %w", err)
	}
	return table, nil
}

func (c *HTTPClient) PreviewGain(ctx context.Context, formAcc, repAcc, formValue float64) (*progression.Result, error) {
	params := url.Values{}
	params.Set("formAcc", strconv.FormatFloat(formAcc, 'f', -1, 64))
	params.Set("repAcc", strconv.FormatFloat(repAcc, 'f', -1, 64))
	params.Set("formValue", strconv.FormatFloat(formValue, 'f', -1, 64))

	body, err := c.get(ctx, "/api/v1/preview-gain", params)
	if err != nil {
		return nil, err
	}

	var res progression.Result
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("httpclient: decode preview: %w", err)
	}
	return &res, nil
}

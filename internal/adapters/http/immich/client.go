package immich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dev-nick421/immich-swipe/internal/core/domain"
	"github.com/dev-nick421/immich-swipe/internal/core/services"
)

// ErrNotConfigured is returned when no server URL is configured.
var ErrNotConfigured = errors.New("immich server url not configured")

// StatusError is a non-2xx response from the server.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: unexpected status code %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: unexpected status code %d", e.Op, e.StatusCode)
}

type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPClient(serverURL, apiKey string, client *http.Client) (*HTTPClient, error) {
	serverURL = strings.TrimRight(strings.TrimSpace(serverURL), "/")
	if serverURL == "" {
		return nil, ErrNotConfigured
	}
	if !strings.HasSuffix(serverURL, "/api") {
		serverURL += "/api"
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPClient{
		baseURL:    serverURL,
		apiKey:     apiKey,
		httpClient: client,
	}, nil
}

type assetResponse struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	OriginalFileName string    `json:"originalFileName"`
	FileCreatedAt    time.Time `json:"fileCreatedAt"`
	LocalDateTime    time.Time `json:"localDateTime"`
}

func (a assetResponse) toDomain() domain.Asset {
	takenAt := a.LocalDateTime
	if takenAt.IsZero() {
		takenAt = a.FileCreatedAt
	}
	return domain.Asset{
		ID:       a.ID,
		Type:     domain.ParseAssetType(a.Type),
		Filename: a.OriginalFileName,
		TakenAt:  takenAt,
	}
}

func toDomainAssets(in []assetResponse) []domain.Asset {
	out := make([]domain.Asset, 0, len(in))
	for _, a := range in {
		out = append(out, a.toDomain())
	}
	return out
}

type randomRequest struct {
	Size int `json:"size"`
}

func (c *HTTPClient) FetchRandom(ctx context.Context, count int) ([]domain.Asset, error) {
	var resp []assetResponse
	if err := c.do(ctx, "search random", http.MethodPost, "/search/random", randomRequest{Size: count}, &resp); err != nil {
		return nil, err
	}
	return toDomainAssets(resp), nil
}

type metadataSearchRequest struct {
	Page  int    `json:"page"`
	Size  int    `json:"size"`
	Order string `json:"order,omitempty"`
	Type  string `json:"type,omitempty"`
}

type assetPage struct {
	Items    []assetResponse `json:"items"`
	NextPage json.RawMessage `json:"nextPage"`
	Total    *int            `json:"total"`
	Count    *int            `json:"count"`
}

type metadataSearchResponse struct {
	Assets *assetPage `json:"assets"`
}

// SearchChronological pages through /search/metadata. The server only knows
// page numbers, so a skip offset is mapped onto the page that contains it.
func (c *HTTPClient) SearchChronological(ctx context.Context, req services.SearchRequest) (services.SearchPage, error) {
	size := req.Take
	if size <= 0 {
		size = services.ChronologicalPageSize
	}
	page := req.Skip/size + 1
	if req.Page != nil {
		page = *req.Page
	}

	body := metadataSearchRequest{Page: page, Size: size, Order: req.Order}
	if len(req.AssetTypes) == 1 {
		body.Type = string(req.AssetTypes[0])
	}

	var raw json.RawMessage
	if err := c.do(ctx, "search metadata", http.MethodPost, "/search/metadata", body, &raw); err != nil {
		return services.SearchPage{}, err
	}
	return decodeSearchPage(raw)
}

// decodeSearchPage accepts a bare asset array, a bare page object or a page
// wrapped in {"assets": ...}.
func decodeSearchPage(raw json.RawMessage) (services.SearchPage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return services.SearchPage{}, nil
	}

	if trimmed[0] == '[' {
		var items []assetResponse
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return services.SearchPage{}, fmt.Errorf("decoding asset list: %w", err)
		}
		return services.SearchPage{Items: toDomainAssets(items)}, nil
	}

	var wrapped metadataSearchResponse
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return services.SearchPage{}, fmt.Errorf("decoding search response: %w", err)
	}
	p := wrapped.Assets
	if p == nil {
		p = &assetPage{}
		if err := json.Unmarshal(trimmed, p); err != nil {
			return services.SearchPage{}, fmt.Errorf("decoding search page: %w", err)
		}
	}

	nextPage, err := parseNextPage(p.NextPage)
	if err != nil {
		return services.SearchPage{}, err
	}
	return services.SearchPage{
		Items:    toDomainAssets(p.Items),
		NextPage: nextPage,
		Total:    p.Total,
		Count:    p.Count,
	}, nil
}

// parseNextPage accepts null, a number or a numeric string.
func parseNextPage(raw json.RawMessage) (*int, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var n int
	if err := json.Unmarshal(trimmed, &n); err == nil {
		return &n, nil
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err != nil {
		return nil, fmt.Errorf("decoding nextPage: %w", err)
	}
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("decoding nextPage %q: %w", s, err)
	}
	return &n, nil
}

type idsRequest struct {
	IDs   []string `json:"ids"`
	Force *bool    `json:"force,omitempty"`
}

func (c *HTTPClient) DeleteAssets(ctx context.Context, ids []string, force bool) error {
	return c.do(ctx, "delete assets", http.MethodDelete, "/assets", idsRequest{IDs: ids, Force: &force}, nil)
}

func (c *HTTPClient) RestoreAssets(ctx context.Context, ids []string) error {
	return c.do(ctx, "restore assets", http.MethodPost, "/trash/restore/assets", idsRequest{IDs: ids}, nil)
}

type bulkIDResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (c *HTTPClient) AddAssetsToAlbum(ctx context.Context, albumID string, ids []string) error {
	var results []bulkIDResult
	path := "/albums/" + albumID + "/assets"
	if err := c.do(ctx, "add to album", http.MethodPut, path, idsRequest{IDs: ids}, &results); err != nil {
		return err
	}
	for _, r := range results {
		// duplicates mean the asset already is in the album
		if !r.Success && r.Error != "duplicate" {
			return fmt.Errorf("add to album: asset %s: %s", r.ID, r.Error)
		}
	}
	return nil
}

func (c *HTTPClient) ListAlbums(ctx context.Context) ([]domain.Album, error) {
	var albums []domain.Album
	if err := c.do(ctx, "list albums", http.MethodGet, "/albums", nil, &albums); err != nil {
		return nil, err
	}
	return albums, nil
}

func (c *HTTPClient) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshaling request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: creating request: %w", op, err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		httpReq.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: making request: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return nil
}

package sipp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Error taxonomy surfaced to the sync engine. Auth and rate-limit
// failures are sentinels so callers can errors.Is on them; everything
// else 4xx/5xx becomes an *APIError.
var (
	ErrUnauthorized = errors.New("sipp: unauthorized")
	ErrRateLimited  = errors.New("sipp: rate limited")
)

type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sipp api error %d: %s", e.StatusCode, e.Body)
}

// Filters are passed through as query parameters. Page is 1-based.
// UpdatedSince is an ISO-8601 timestamp used by incremental sync.
type Filters struct {
	Page         int
	Limit        int
	UpdatedSince string
	DateFrom     string
	DateTo       string
}

// Page is one page of raw SIPP records. HasMore is derived from the
// response envelope: a next_page_url, or a page as long as the
// requested limit, means there may be more to fetch.
type Page struct {
	Records []map[string]interface{}
	HasMore bool
}

type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	Log     *logrus.Logger
}

func NewClient(baseURL, token string, log *logrus.Logger) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Log:     log,
	}
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w (%d)", ErrUnauthorized, res.StatusCode)
	case res.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case res.StatusCode >= 400:
		return nil, &APIError{StatusCode: res.StatusCode, Body: string(body)}
	}

	return body, nil
}

func (f Filters) values() url.Values {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.UpdatedSince != "" {
		q.Set("updated_since", f.UpdatedSince)
	}
	if f.DateFrom != "" {
		q.Set("tanggal_dari", f.DateFrom)
	}
	if f.DateTo != "" {
		q.Set("tanggal_sampai", f.DateTo)
	}
	return q
}

// decodePage accepts both response shapes SIPP emits depending on the
// export path: a bare JSON array, or an envelope {data: [...],
// next_page_url: ...}.
func decodePage(body []byte, limit int) (*Page, error) {
	trimmed := firstNonSpace(body)

	if trimmed == '[' {
		var records []map[string]interface{}
		if err := json.Unmarshal(body, &records); err != nil {
			return nil, fmt.Errorf("decode record array: %w", err)
		}
		return &Page{
			Records: records,
			HasMore: limit > 0 && len(records) >= limit,
		}, nil
	}

	var envelope struct {
		Data        []map[string]interface{} `json:"data"`
		NextPageURL *string                  `json:"next_page_url"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode record envelope: %w", err)
	}

	hasMore := envelope.NextPageURL != nil && *envelope.NextPageURL != ""
	if !hasMore && limit > 0 && len(envelope.Data) >= limit {
		hasMore = true
	}

	return &Page{Records: envelope.Data, HasMore: hasMore}, nil
}

func firstNonSpace(body []byte) byte {
	for _, b := range body {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b
	}
	return 0
}

func (c *Client) getPage(ctx context.Context, path string, f Filters) (*Page, error) {
	body, err := c.get(ctx, path, f.values())
	if err != nil {
		return nil, err
	}
	page, err := decodePage(body, f.Limit)
	if err != nil {
		return nil, err
	}
	c.Log.WithFields(logrus.Fields{
		"path":     path,
		"page":     f.Page,
		"records":  len(page.Records),
		"has_more": page.HasMore,
	}).Debug("sipp page fetched")
	return page, nil
}

func (c *Client) GetSchedules(ctx context.Context, f Filters) (*Page, error) {
	return c.getPage(ctx, "/api/schedules", f)
}

func (c *Client) GetCases(ctx context.Context, f Filters) (*Page, error) {
	return c.getPage(ctx, "/api/cases", f)
}

// Reference tables are small and unpaginated.

func (c *Client) GetJudges(ctx context.Context) ([]map[string]interface{}, error) {
	return c.getAll(ctx, "/api/judges")
}

func (c *Client) GetCourtRooms(ctx context.Context) ([]map[string]interface{}, error) {
	return c.getAll(ctx, "/api/court-rooms")
}

func (c *Client) GetCaseTypes(ctx context.Context) ([]map[string]interface{}, error) {
	return c.getAll(ctx, "/api/case-types")
}

func (c *Client) getAll(ctx context.Context, path string) ([]map[string]interface{}, error) {
	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	page, err := decodePage(body, 0)
	if err != nil {
		return nil, err
	}
	return page.Records, nil
}

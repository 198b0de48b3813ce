// Package client is the REST client for the companion analytics API.
// All calls are idempotent reads; transient failures are retried with
// a short constant backoff.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"

	"github.com/ougirez/bizmap/internal/domain"
	"github.com/ougirez/bizmap/internal/domain/dto"
)

// API is the surface the dashboard engine consumes. Split out so view
// tests can substitute a fake.
type API interface {
	ListBusinesses(ctx context.Context, opts ListOptions) ([]*domain.Business, error)
	GetBusiness(ctx context.Context, id string) (*domain.Business, error)
	SearchBusinesses(ctx context.Context, query string, limit int) ([]*domain.Business, error)
	LocationsSummary(ctx context.Context) (*dto.LocationsSummaryResponse, error)
	BusinessTimeline(ctx context.Context, id, metric string, g domain.Granularity) (*dto.TimelineResponse, error)
	CityTimeline(ctx context.Context, state, city string, g domain.Granularity) (*dto.TimelineResponse, error)
	CategoryTimeline(ctx context.Context, category string, g domain.Granularity) (*dto.TimelineResponse, error)
}

type ListOptions struct {
	State string
	City  string
	Skip  int
	Limit int
}

type Client struct {
	baseURL string
	http    *http.Client
}

var _ API = (*Client)(nil)

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// getJSON fetches path with the query values and decodes the response
// body into dest, retrying transient failures.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body []byte
	err := backoff.Retry(
		func() error {
			req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
			if reqErr != nil {
				return backoff.Permanent(reqErr)
			}

			resp, httpErr := c.http.Do(req)
			if httpErr != nil {
				return fmt.Errorf("http.Do: %w", httpErr)
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusNotFound {
				return backoff.Permanent(fmt.Errorf("%s: %w", path, ErrNotFound))
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("status code error: %d %s", resp.StatusCode, resp.Status)
			}

			var readErr error
			body, readErr = io.ReadAll(resp.Body)
			if readErr != nil {
				return fmt.Errorf("io.ReadAll: %w", readErr)
			}

			return nil
		},
		backoff.WithContext(
			backoff.WithMaxRetries(backoff.NewConstantBackOff(100*time.Millisecond), 3),
			ctx,
		),
	)
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("sonic.Unmarshal: %w", err)
	}

	return nil
}

// ErrNotFound marks 404 responses so callers can distinguish a missing
// record from a transport failure.
var ErrNotFound = fmt.Errorf("not found")

func (c *Client) ListBusinesses(ctx context.Context, opts ListOptions) ([]*domain.Business, error) {
	q := url.Values{}
	if opts.State != "" {
		q.Set("state", opts.State)
	}
	if opts.City != "" {
		q.Set("city", opts.City)
	}
	q.Set("skip", strconv.Itoa(opts.Skip))
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}

	var businesses []*domain.Business
	if err := c.getJSON(ctx, "/api/v1/businesses", q, &businesses); err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	return businesses, nil
}

func (c *Client) GetBusiness(ctx context.Context, id string) (*domain.Business, error) {
	var business domain.Business
	if err := c.getJSON(ctx, "/api/v1/businesses/"+url.PathEscape(id), nil, &business); err != nil {
		return nil, fmt.Errorf("get business %s: %w", id, err)
	}
	return &business, nil
}

func (c *Client) SearchBusinesses(ctx context.Context, query string, limit int) ([]*domain.Business, error) {
	q := url.Values{}
	q.Set("q", query)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var businesses []*domain.Business
	if err := c.getJSON(ctx, "/api/v1/businesses/search", q, &businesses); err != nil {
		return nil, fmt.Errorf("search businesses: %w", err)
	}
	return businesses, nil
}

func (c *Client) LocationsSummary(ctx context.Context) (*dto.LocationsSummaryResponse, error) {
	var summary dto.LocationsSummaryResponse
	if err := c.getJSON(ctx, "/api/v1/locations/summary", nil, &summary); err != nil {
		return nil, fmt.Errorf("locations summary: %w", err)
	}
	return &summary, nil
}

func (c *Client) BusinessTimeline(ctx context.Context, id, metric string, g domain.Granularity) (*dto.TimelineResponse, error) {
	q := url.Values{}
	q.Set("period", string(g))

	path := fmt.Sprintf("/api/v1/analytics/business/%s/%s-timeline", url.PathEscape(id), metric)
	var timeline dto.TimelineResponse
	if err := c.getJSON(ctx, path, q, &timeline); err != nil {
		return nil, fmt.Errorf("business %s timeline: %w", metric, err)
	}
	return &timeline, nil
}

func (c *Client) CityTimeline(ctx context.Context, state, city string, g domain.Granularity) (*dto.TimelineResponse, error) {
	q := url.Values{}
	q.Set("period", string(g))

	path := fmt.Sprintf("/api/v1/analytics/city/%s/%s/ratings-timeline",
		url.PathEscape(state), url.PathEscape(city))
	var timeline dto.TimelineResponse
	if err := c.getJSON(ctx, path, q, &timeline); err != nil {
		return nil, fmt.Errorf("city timeline: %w", err)
	}
	return &timeline, nil
}

func (c *Client) CategoryTimeline(ctx context.Context, category string, g domain.Granularity) (*dto.TimelineResponse, error) {
	q := url.Values{}
	q.Set("period", string(g))

	path := "/api/v1/analytics/category/" + url.PathEscape(category) + "/ratings-timeline"
	var timeline dto.TimelineResponse
	if err := c.getJSON(ctx, path, q, &timeline); err != nil {
		return nil, fmt.Errorf("category timeline: %w", err)
	}
	return &timeline, nil
}

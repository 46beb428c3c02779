// Package sdk provides the client-side library for the Celerix Records API,
// along with the storage interfaces shared by the server backends.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/celerix-dev/celerix-records/pkg/engine"
	"github.com/celerix-dev/celerix-records/pkg/schema"
)

const maxAttempts = 3

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("celerix-records: %d %s", e.Status, e.Message)
}

// Is lets callers match a 404 with errors.Is(err, ErrNotFound).
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Client is a remote client for the records API.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// Connect returns a client for the server at baseURL, e.g. http://localhost:7002.
func Connect(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func retryable(method string) bool {
	// POST creates a record, so a retry could insert it twice.
	return method != http.MethodPost
}

// do sends one request. Idempotent requests are retried on transport
// failures and 5xx answers with a growing backoff.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (*http.Response, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
	}
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	attempts := 1
	if retryable(method) {
		attempts = maxAttempts
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(i*200) * time.Millisecond):
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			log.Warn().Err(err).Int("attempt", i+1).Str("path", path).Msg("celerix-records request failed")
			continue
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 300 {
			apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
			if resp.StatusCode >= 500 {
				lastErr = apiErr
				log.Warn().Err(apiErr).Int("attempt", i+1).Str("path", path).Msg("celerix-records server error")
				continue
			}
			return resp, apiErr
		}
		if out != nil {
			if err := json.Unmarshal(data, out); err != nil {
				return resp, fmt.Errorf("decode response: %w", err)
			}
		}
		return resp, nil
	}
	if attempts == 1 {
		return nil, lastErr
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

func errorMessage(data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(data))
}

func recordPath(prefix, id string) string {
	return prefix + "/" + url.PathEscape(id)
}

// createdID reads the record id from the Location header of a create answer.
func createdID(resp *http.Response) (string, error) {
	loc := resp.Header.Get("Location")
	if i := strings.LastIndex(loc, "/"); i >= 0 && i < len(loc)-1 {
		return loc[i+1:], nil
	}
	return "", errors.New("create response carries no Location header")
}

// --- Clock-in records ---

// ClockInQuery narrows FilterClockIns. Zero fields are not sent.
type ClockInQuery struct {
	Email    string
	Location string
	Since    time.Time
}

func (q ClockInQuery) values() url.Values {
	v := url.Values{}
	if q.Email != "" {
		v.Set("email", q.Email)
	}
	if q.Location != "" {
		v.Set("location", q.Location)
	}
	if !q.Since.IsZero() {
		v.Set("clock_in", engine.Timestamp(q.Since))
	}
	return v
}

func (c *Client) ListClockIns(ctx context.Context) ([]schema.ClockIn, error) {
	var out []schema.ClockIn
	_, err := c.do(ctx, http.MethodGet, "/all_user", nil, nil, &out)
	return out, err
}

func (c *Client) GetClockIn(ctx context.Context, id string) (schema.ClockIn, error) {
	var out schema.ClockIn
	_, err := c.do(ctx, http.MethodGet, recordPath("/clock-in", id), nil, nil, &out)
	return out, err
}

func (c *Client) FilterClockIns(ctx context.Context, q ClockInQuery) ([]schema.ClockIn, error) {
	var out []schema.ClockIn
	_, err := c.do(ctx, http.MethodGet, "/clock-filter/", q.values(), nil, &out)
	return out, err
}

// CreateClockIn records a clock-in and returns it. The server stamps clock_in.
func (c *Client) CreateClockIn(ctx context.Context, email, location string) (schema.ClockIn, error) {
	var raw json.RawMessage
	resp, err := c.do(ctx, http.MethodPost, "/clock-in", nil, map[string]string{
		"email":    email,
		"location": location,
	}, &raw)
	if err != nil {
		return schema.ClockIn{}, err
	}
	if resp.StatusCode == http.StatusCreated {
		var out schema.ClockIn
		err := json.Unmarshal(raw, &out)
		return out, err
	}
	id, err := createdID(resp)
	if err != nil {
		return schema.ClockIn{}, err
	}
	return c.GetClockIn(ctx, id)
}

// UpdateClockIn rewrites the clock_in of a record. A zero at means now.
func (c *Client) UpdateClockIn(ctx context.Context, id, email, location string, at time.Time) (schema.ClockIn, error) {
	body := map[string]string{"email": email, "location": location}
	if !at.IsZero() {
		body["clock_in"] = engine.Timestamp(at)
	}
	var out schema.ClockIn
	_, err := c.do(ctx, http.MethodPut, recordPath("/clock-in", id), nil, body, &out)
	return out, err
}

func (c *Client) DeleteClockIn(ctx context.Context, id string) (schema.ClockIn, error) {
	var out schema.ClockIn
	_, err := c.do(ctx, http.MethodDelete, recordPath("/clock-in", id), nil, nil, &out)
	return out, err
}

// --- Items ---

// ItemQuery narrows FilterItems. Zero fields are not sent.
type ItemQuery struct {
	Email       string
	MinQuantity *int
	InsertedAt  time.Time
	ExpiresAt   time.Time
}

func (q ItemQuery) values() url.Values {
	v := url.Values{}
	if q.Email != "" {
		v.Set("email", q.Email)
	}
	if q.MinQuantity != nil {
		v.Set("quantity", strconv.Itoa(*q.MinQuantity))
	}
	if !q.InsertedAt.IsZero() {
		v.Set("insert_date", engine.Timestamp(q.InsertedAt))
	}
	if !q.ExpiresAt.IsZero() {
		v.Set("expiry_date", engine.Timestamp(q.ExpiresAt))
	}
	return v
}

// NewItem is the body of CreateItem.
type NewItem struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	ItemName   string `json:"item_name"`
	ExpiryDate string `json:"expiry_date"`
	Quantity   int    `json:"quantity"`
}

// ItemChanges is the body of UpdateItemDetails. Nil fields are left as stored.
type ItemChanges struct {
	Email      *string `json:"email,omitempty"`
	Name       *string `json:"name,omitempty"`
	ItemName   *string `json:"item_name,omitempty"`
	ExpiryDate *string `json:"expiry_date,omitempty"`
	Quantity   *int    `json:"quantity,omitempty"`
}

func (c *Client) ListItems(ctx context.Context) ([]schema.Item, error) {
	var out []schema.Item
	_, err := c.do(ctx, http.MethodGet, "/all_item", nil, nil, &out)
	return out, err
}

func (c *Client) GetItem(ctx context.Context, id string) (schema.Item, error) {
	var out schema.Item
	_, err := c.do(ctx, http.MethodGet, recordPath("/item", id), nil, nil, &out)
	return out, err
}

func (c *Client) FilterItems(ctx context.Context, q ItemQuery) ([]schema.Item, error) {
	var out []schema.Item
	_, err := c.do(ctx, http.MethodGet, "/item-filter/", q.values(), nil, &out)
	return out, err
}

// CreateItem stores an item and returns it. The server stamps insert_date.
func (c *Client) CreateItem(ctx context.Context, item NewItem) (schema.Item, error) {
	var raw json.RawMessage
	resp, err := c.do(ctx, http.MethodPost, "/item", nil, item, &raw)
	if err != nil {
		return schema.Item{}, err
	}
	if resp.StatusCode == http.StatusCreated {
		var out schema.Item
		err := json.Unmarshal(raw, &out)
		return out, err
	}
	id, err := createdID(resp)
	if err != nil {
		return schema.Item{}, err
	}
	return c.GetItem(ctx, id)
}

func (c *Client) UpdateItemDetails(ctx context.Context, id string, changes ItemChanges) (schema.Item, error) {
	var out schema.Item
	_, err := c.do(ctx, http.MethodPut, recordPath("/update_item_details", id), nil, changes, &out)
	return out, err
}

func (c *Client) CountItemsByEmail(ctx context.Context) ([]schema.EmailCount, error) {
	var out []schema.EmailCount
	_, err := c.do(ctx, http.MethodGet, "/items/count-by-email", nil, nil, &out)
	return out, err
}

func (c *Client) DeleteItem(ctx context.Context, id string) (schema.Item, error) {
	var out schema.Item
	_, err := c.do(ctx, http.MethodDelete, recordPath("/item", id), nil, nil, &out)
	return out, err
}

// Ping checks the server's readiness endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/readyz", nil, nil, nil)
	return err
}

// Package postgrest implements the datasource ports against a hosted
// PostgREST-style data service: generic table queries with filter and order,
// filtered deletes and remote procedure calls over plain HTTP/JSON.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/frankmaximo93/shared-financial-journey/internal/datasource"
)

// Client is a thin request/response client for the data service. All state is
// immutable after construction, so a single client is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	token   string
	hc      *http.Client
}

// APIError is the error payload the service returns alongside non-2xx codes.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details"`
	Hint       string `json:"hint"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("data service: %s (%s, http %d)", e.Message, e.Code, e.StatusCode)
	}
	return fmt.Sprintf("data service: %s (http %d)", e.Message, e.StatusCode)
}

// missingFunctionCode is what PostgREST answers when an RPC does not exist in
// the exposed schema.
const missingFunctionCode = "PGRST202"

func (e *APIError) isMissingFunction() bool {
	return e.Code == missingFunctionCode ||
		strings.Contains(e.Message, "Could not find the function")
}

// New creates a client for the given service URL. apiKey authenticates the
// application; accessToken, when set, is the logged-in user's JWT and takes
// precedence as the bearer credential.
func New(baseURL, apiKey, accessToken string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		token:   accessToken,
		hc:      &http.Client{Timeout: 10 * time.Second},
	}
}

// From starts a query against the given table.
func (c *Client) From(table string) *Query {
	return &Query{c: c, table: table, selects: "*"}
}

// Query accumulates filters and ordering for one table request.
type Query struct {
	c       *Client
	table   string
	selects string
	filters []string
	order   string
}

// Select restricts the returned columns, e.g. "id,name".
func (q *Query) Select(columns string) *Query {
	q.selects = columns
	return q
}

// Eq adds an equality filter on a column.
func (q *Query) Eq(column, value string) *Query {
	q.filters = append(q.filters, column+"=eq."+url.QueryEscape(value))
	return q
}

// Gte adds a greater-or-equal filter on a column.
func (q *Query) Gte(column, value string) *Query {
	q.filters = append(q.filters, column+"=gte."+url.QueryEscape(value))
	return q
}

// Lt adds a less-than filter on a column.
func (q *Query) Lt(column, value string) *Query {
	q.filters = append(q.filters, column+"=lt."+url.QueryEscape(value))
	return q
}

// Order sorts the result by a column.
func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.order = column + "." + dir
	return q
}

func (q *Query) url() string {
	u := q.c.baseURL + "/rest/v1/" + q.table + "?select=" + url.QueryEscape(q.selects)
	for _, f := range q.filters {
		u += "&" + f
	}
	if q.order != "" {
		u += "&order=" + q.order
	}
	return u
}

// Get executes the query and decodes the JSON array into dest.
func (q *Query) Get(ctx context.Context, dest any) error {
	return q.c.do(ctx, http.MethodGet, q.url(), nil, dest)
}

// Insert posts one or more rows to the table.
func (q *Query) Insert(ctx context.Context, payload any) error {
	return q.c.do(ctx, http.MethodPost, q.url(), payload, nil)
}

// Upsert posts one or more rows, merging on primary-key conflicts.
func (q *Query) Upsert(ctx context.Context, payload any) error {
	return q.c.do(ctx, http.MethodPost, q.url(), payload, nil,
		"resolution=merge-duplicates,return=minimal")
}

// Update patches the rows matching the accumulated filters.
func (q *Query) Update(ctx context.Context, payload any) error {
	return q.c.do(ctx, http.MethodPatch, q.url(), payload, nil)
}

// Delete removes the rows matching the accumulated filters.
func (q *Query) Delete(ctx context.Context) error {
	return q.c.do(ctx, http.MethodDelete, q.url(), nil, nil)
}

// RPC invokes a stored procedure. A missing procedure surfaces as
// datasource.ErrFunctionNotFound so callers can fall back.
func (c *Client) RPC(ctx context.Context, fn string, params, dest any) error {
	if params == nil {
		params = map[string]any{}
	}
	u := c.baseURL + "/rest/v1/rpc/" + fn
	if err := c.do(ctx, http.MethodPost, u, params, dest); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.isMissingFunction() {
			return fmt.Errorf("rpc %s: %w", fn, datasource.ErrFunctionNotFound)
		}
		return fmt.Errorf("rpc %s: %w", fn, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, u string, payload, dest any, prefer ...string) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	bearer := c.token
	if bearer == "" {
		bearer = c.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	switch {
	case len(prefer) > 0:
		req.Header.Set("Prefer", prefer[0])
	case dest == nil && method != http.MethodGet:
		req.Header.Set("Prefer", "return=minimal")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if readErr == nil && len(raw) > 0 {
			// Best effort: keep the status text when the body isn't the
			// structured error payload.
			var decoded APIError
			if json.Unmarshal(raw, &decoded) == nil && decoded.Message != "" {
				decoded.StatusCode = resp.StatusCode
				apiErr = &decoded
			}
		}
		return apiErr
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Package api is a small client for the patrimonio HTTP API.
package api

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

	"github.com/dmitrijs2005/patrimonio/internal/apimodel"
	"github.com/dmitrijs2005/patrimonio/internal/common"
)

// ErrUnavailable is returned when the server cannot be reached.
var ErrUnavailable = errors.New("server unavailable")

// APIError is a non-2xx answer of the server. It unwraps to the matching
// sentinel of internal/common so callers can use errors.Is.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return common.ErrValidation
	case http.StatusUnauthorized:
		return common.ErrorUnauthorized
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusConflict:
		return common.ErrAlreadyExists
	case http.StatusServiceUnavailable:
		return common.ErrExportsDisabled
	default:
		return common.ErrorInternal
	}
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e apimodel.ErrorResponse
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e)
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) Register(ctx context.Context, username, password string) (string, error) {
	var resp apimodel.TokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", apimodel.Credentials{Username: username, Password: password}, &resp)
	return resp.Token, err
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp apimodel.TokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", apimodel.Credentials{Username: username, Password: password}, &resp)
	return resp.Token, err
}

func (c *Client) Me(ctx context.Context) (*apimodel.Me, error) {
	var me apimodel.Me
	if err := c.do(ctx, http.MethodGet, "/api/me", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]apimodel.Category, error) {
	var out []apimodel.Category
	err := c.do(ctx, http.MethodGet, "/api/categories", nil, &out)
	return out, err
}

func (c *Client) CreateCategory(ctx context.Context, req apimodel.CategoryRequest) (*apimodel.Category, error) {
	var out apimodel.Category
	if err := c.do(ctx, http.MethodPost, "/api/categories", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/categories/"+url.PathEscape(id), nil, nil)
}

// entriesPath maps "profit"/"expense" to the collection path.
func entriesPath(kind string) (string, error) {
	switch strings.ToLower(kind) {
	case "profit", "profits":
		return "/api/profits", nil
	case "expense", "expenses":
		return "/api/expenses", nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q, want profit or expense", common.ErrValidation, kind)
	}
}

func (c *Client) ListEntries(ctx context.Context, kind string) ([]apimodel.Entry, error) {
	p, err := entriesPath(kind)
	if err != nil {
		return nil, err
	}
	var out []apimodel.Entry
	err = c.do(ctx, http.MethodGet, p, nil, &out)
	return out, err
}

func (c *Client) ListEntriesByCategory(ctx context.Context, kind, categoryID string) ([]apimodel.Entry, error) {
	p, err := entriesPath(kind)
	if err != nil {
		return nil, err
	}
	var out []apimodel.Entry
	err = c.do(ctx, http.MethodGet, p+"/byCategory/"+url.PathEscape(categoryID), nil, &out)
	return out, err
}

func (c *Client) CreateEntry(ctx context.Context, kind string, req apimodel.EntryRequest) (*apimodel.Entry, error) {
	p, err := entriesPath(kind)
	if err != nil {
		return nil, err
	}
	var out apimodel.Entry
	if err := c.do(ctx, http.MethodPost, p, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteEntry(ctx context.Context, kind, id string) error {
	p, err := entriesPath(kind)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, p+"/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Summary(ctx context.Context) (*apimodel.Summary, error) {
	var out apimodel.Summary
	if err := c.do(ctx, http.MethodGet, "/api/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Export(ctx context.Context) (*apimodel.ExportResponse, error) {
	var out apimodel.ExportResponse
	if err := c.do(ctx, http.MethodPost, "/api/exports", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

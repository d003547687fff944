// Package client is a small Go client for the together backend. It mirrors
// the entity access surface (list/create/update/delete per collection) and
// offers a live subscription that degrades to polling when the websocket
// channel is unavailable.
package client

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// Client talks to the backend REST API.
type Client struct {
	baseURL string
	http    *resty.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token used on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.http.SetAuthToken(token)
	}
}

// New creates a client for the given base URL, e.g. "http://localhost:8787".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    resty.New().SetBaseURL(baseURL),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Document is one entity record; the "id" field is always present.
type Document map[string]any

// ID returns the document identifier.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

type apiError struct {
	Error string `json:"error"`
}

// List returns documents from a collection. order follows the server's
// convention: "-field" descending, "field" ascending, "" server default.
func (c *Client) List(ctx context.Context, collection, order string, limit int) ([]Document, error) {
	req := c.http.R().SetContext(ctx)
	if order != "" {
		req = req.SetQueryParam("order", order)
	}
	if limit > 0 {
		req = req.SetQueryParam("limit", fmt.Sprintf("%d", limit))
	}

	var docs []Document
	var apiErr apiError
	resp, err := req.SetResult(&docs).SetError(&apiErr).
		Get("/api/v1/entities/" + collection)
	if err != nil {
		return nil, fmt.Errorf("list %s failed: %w", collection, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list %s failed: %s", collection, apiErr.Error)
	}
	return docs, nil
}

// Create persists a new document and returns it with the assigned id.
func (c *Client) Create(ctx context.Context, collection string, data map[string]any) (Document, error) {
	var doc Document
	var apiErr apiError
	resp, err := c.http.R().SetContext(ctx).
		SetBody(data).SetResult(&doc).SetError(&apiErr).
		Post("/api/v1/entities/" + collection)
	if err != nil {
		return nil, fmt.Errorf("create %s failed: %w", collection, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("create %s failed: %s", collection, apiErr.Error)
	}
	return doc, nil
}

// Update applies a partial patch to an existing document.
func (c *Client) Update(ctx context.Context, collection, id string, patch map[string]any) (Document, error) {
	var doc Document
	var apiErr apiError
	resp, err := c.http.R().SetContext(ctx).
		SetBody(patch).SetResult(&doc).SetError(&apiErr).
		Patch("/api/v1/entities/" + collection + "/" + id)
	if err != nil {
		return nil, fmt.Errorf("update %s failed: %w", collection, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("update %s failed: %s", collection, apiErr.Error)
	}
	return doc, nil
}

// Delete removes a document by id.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	var apiErr apiError
	resp, err := c.http.R().SetContext(ctx).SetError(&apiErr).
		Delete("/api/v1/entities/" + collection + "/" + id)
	if err != nil {
		return fmt.Errorf("delete %s failed: %w", collection, err)
	}
	if resp.IsError() {
		return fmt.Errorf("delete %s failed: %s", collection, apiErr.Error)
	}
	return nil
}

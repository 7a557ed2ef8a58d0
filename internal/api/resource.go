package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Resource is one REST collection such as /tasks/.
type Resource[T any] struct {
	client *Client
	domain string
}

// NewResource binds a collection endpoint. domain is the path segment,
// for example "tasks" or "email-messages".
func NewResource[T any](c *Client, domain string) *Resource[T] {
	return &Resource[T]{client: c, domain: domain}
}

// Domain returns the collection's path segment.
func (r *Resource[T]) Domain() string {
	return r.domain
}

func (r *Resource[T]) collectionPath() string {
	return "/" + r.domain + "/"
}

func (r *Resource[T]) itemPath(id int64) string {
	return fmt.Sprintf("/%s/%d/", r.domain, id)
}

// List fetches the collection. Both a bare JSON array and a paginated
// {"results": [...]} envelope are accepted.
func (r *Resource[T]) List(ctx context.Context, query url.Values) ([]T, error) {
	var raw json.RawMessage
	if err := r.client.Do(ctx, http.MethodGet, r.collectionPath(), query, nil, &raw); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var items []T
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode %s list: %w", r.domain, err)
		}
		return items, nil
	}

	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, fmt.Errorf("decode %s page: %w", r.domain, err)
	}
	return page.Results, nil
}

// Get fetches one item.
func (r *Resource[T]) Get(ctx context.Context, id int64) (T, error) {
	var item T
	err := r.client.Do(ctx, http.MethodGet, r.itemPath(id), nil, nil, &item)
	return item, err
}

// Create posts a full payload and returns the stored item.
func (r *Resource[T]) Create(ctx context.Context, payload any) (T, error) {
	var item T
	err := r.client.Do(ctx, http.MethodPost, r.collectionPath(), nil, payload, &item)
	return item, err
}

// Update patches only the fields in patch and returns the stored item.
func (r *Resource[T]) Update(ctx context.Context, id int64, patch any) (T, error) {
	var item T
	err := r.client.Do(ctx, http.MethodPatch, r.itemPath(id), nil, patch, &item)
	return item, err
}

// Delete removes one item.
func (r *Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.client.Do(ctx, http.MethodDelete, r.itemPath(id), nil, nil, nil)
}

// Action posts to a detail route such as /email-accounts/3/sync/.
func (r *Resource[T]) Action(ctx context.Context, id int64, action string, body, out any) error {
	path := fmt.Sprintf("/%s/%d/%s/", r.domain, id, action)
	return r.client.Do(ctx, http.MethodPost, path, nil, body, out)
}

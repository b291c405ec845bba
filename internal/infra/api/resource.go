// Package api provides the generic resource service every domain service is
// built on: verb helpers, pagination, bulk calls and error normalization.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/vietddude/topup/internal/core/domain"
	"github.com/vietddude/topup/internal/infra/transport"
)

// Doer sends a request through the transport pipeline.
type Doer interface {
	Do(ctx context.Context, req *transport.Request) (*transport.Response, error)
}

// Resource is the CRUD wrapper for one REST collection.
type Resource[T any] struct {
	client   Doer
	basePath string
}

// NewResource creates a resource rooted at basePath (e.g. "/users").
func NewResource[T any](client Doer, basePath string) *Resource[T] {
	return &Resource[T]{
		client:   client,
		basePath: "/" + strings.Trim(basePath, "/"),
	}
}

// BasePath returns the collection path.
func (r *Resource[T]) BasePath() string {
	return r.basePath
}

// Get issues GET basePath/sub and decodes the body into out.
func (r *Resource[T]) Get(ctx context.Context, sub string, query url.Values, out any) error {
	return r.Send(ctx, http.MethodGet, sub, query, nil, out)
}

func (r *Resource[T]) Post(ctx context.Context, sub string, body, out any) error {
	return r.Send(ctx, http.MethodPost, sub, nil, body, out)
}

func (r *Resource[T]) Put(ctx context.Context, sub string, body, out any) error {
	return r.Send(ctx, http.MethodPut, sub, nil, body, out)
}

func (r *Resource[T]) Patch(ctx context.Context, sub string, body, out any) error {
	return r.Send(ctx, http.MethodPatch, sub, nil, body, out)
}

func (r *Resource[T]) Delete(ctx context.Context, sub string, out any) error {
	return r.Send(ctx, http.MethodDelete, sub, nil, nil, out)
}

// GetPaginated lists one page of the collection.
func (r *Resource[T]) GetPaginated(ctx context.Context, params ListParams) (domain.Page[T], error) {
	var page domain.Page[T]
	if err := r.Get(ctx, "", params.Query(), &page); err != nil {
		return domain.Page[T]{}, err
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	return page, nil
}

func (r *Resource[T]) GetByID(ctx context.Context, id string) (T, error) {
	var out T
	err := r.Get(ctx, escape(id), nil, &out)
	return out, err
}

func (r *Resource[T]) Create(ctx context.Context, input any) (T, error) {
	var out T
	err := r.Post(ctx, "", input, &out)
	return out, err
}

func (r *Resource[T]) Update(ctx context.Context, id string, input any) (T, error) {
	var out T
	err := r.Put(ctx, escape(id), input, &out)
	return out, err
}

func (r *Resource[T]) DeleteByID(ctx context.Context, id string) error {
	return r.Delete(ctx, escape(id), nil)
}

// BulkUpdateItem pairs an id with its partial update.
type BulkUpdateItem struct {
	ID   string `json:"id"`
	Data any    `json:"data"`
}

// BulkCreate posts items to basePath/bulk.
func (r *Resource[T]) BulkCreate(ctx context.Context, items []any) ([]T, error) {
	var out []T
	err := r.Post(ctx, "bulk", map[string]any{"items": items}, &out)
	return out, err
}

// BulkUpdate puts updates to basePath/bulk.
func (r *Resource[T]) BulkUpdate(ctx context.Context, updates []BulkUpdateItem) ([]T, error) {
	var out []T
	err := r.Put(ctx, "bulk", map[string]any{"updates": updates}, &out)
	return out, err
}

// BulkDelete sends DELETE basePath/bulk with {"ids": [...]}.
func (r *Resource[T]) BulkDelete(ctx context.Context, ids []string) error {
	return r.Send(ctx, http.MethodDelete, "bulk", nil, map[string]any{"ids": ids}, nil)
}

// Export downloads basePath/export in the given format (csv, xlsx, json).
func (r *Resource[T]) Export(ctx context.Context, format string, params ListParams) ([]byte, error) {
	query := params.Query()
	if format != "" {
		query.Set("format", format)
	}
	var raw []byte
	err := r.Send(ctx, http.MethodGet, "export", query, nil, &raw)
	return raw, err
}

// Send is the single exit to the transport. out may be nil, *[]byte for the
// raw body, or any JSON target. A {"data": ...} envelope is unwrapped.
func (r *Resource[T]) Send(ctx context.Context, method, sub string, query url.Values, body, out any) error {
	req := transport.NewRequest(method, r.path(sub))
	req.Query = query
	req.Body = body
	return r.SendRequest(ctx, req, out)
}

// NewRequest builds a request for basePath/sub, for callers that need to set
// transport flags before SendRequest.
func (r *Resource[T]) NewRequest(method, sub string) *transport.Request {
	return transport.NewRequest(method, r.path(sub))
}

// SendRequest sends a prepared request with the same decoding and error
// normalization as Send.
func (r *Resource[T]) SendRequest(ctx context.Context, req *transport.Request, out any) error {
	resp, err := r.client.Do(ctx, req)
	if err != nil {
		return fromTransport(err)
	}
	if !resp.OK() {
		return fromResponse(resp)
	}
	return decode(resp.Body, out)
}

func (r *Resource[T]) path(sub string) string {
	sub = strings.Trim(sub, "/")
	if sub == "" {
		return r.basePath
	}
	return r.basePath + "/" + sub
}

func decode(body []byte, out any) error {
	if out == nil {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = body
		return nil
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}

	data := unwrapData(body, out)
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{Message: fmt.Sprintf("decode response: %v", err), cause: err}
	}
	return nil
}

// unwrapData returns the "data" member when the body is a {"data": ...}
// envelope without pagination. Paginated bodies decode as a whole into Page.
func unwrapData(body []byte, out any) []byte {
	if body[0] != '{' {
		return body
	}
	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil {
		return body
	}
	data, ok := env["data"]
	if !ok {
		return body
	}
	if _, paged := env["pagination"]; paged && isPage(out) {
		return body
	}
	return data
}

type pageMarker interface{ HasNext() bool }

func isPage(out any) bool {
	_, ok := out.(pageMarker)
	return ok
}

func escape(id string) string {
	return url.PathEscape(id)
}

// Action builds the sub-path of an action on one record, e.g. "42/refund".
func Action(id, action string) string {
	return escape(id) + "/" + strings.Trim(action, "/")
}

// ListParams are the common list query parameters.
type ListParams struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
	Filters   map[string]string
}

// Query encodes the params; zero values are omitted.
func (p ListParams) Query() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.SortBy != "" {
		q.Set("sortBy", p.SortBy)
	}
	if p.SortOrder != "" {
		q.Set("sortOrder", p.SortOrder)
	}
	for k, v := range p.Filters {
		if v != "" {
			q.Set(k, v)
		}
	}
	return q
}

// Пакет apiclient — типизированный клиент REST API админки.
// Каждый метод — один endpoint; все вызовы идут через request.Dispatcher,
// который уже отвечает за токен, дедупликацию и уведомления.
package apiclient

import (
	"context"
	"net/http"

	"github.com/bigkaa/goartstore/admin-console/internal/domain/model"
	"github.com/bigkaa/goartstore/admin-console/internal/request"
)

// Client — клиент REST API.
type Client struct {
	d *request.Dispatcher
}

// New создаёт клиент поверх диспетчера.
func New(d *request.Dispatcher) *Client {
	return &Client{d: d}
}

// ListQuery — общие параметры постраничных списков.
type ListQuery struct {
	Page      int    `json:"page,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	Search    string `json:"search,omitempty"`
	SortBy    string `json:"sortBy,omitempty"`
	SortOrder string `json:"sortOrder,omitempty"`
}

func get[T any](ctx context.Context, c *Client, path string, params any) (T, error) {
	return request.Call[T](ctx, c.d, request.Options{Method: http.MethodGet, Path: path, Params: params})
}

func post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return request.Call[T](ctx, c.d, request.Options{Method: http.MethodPost, Path: path, Body: body})
}

func put[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return request.Call[T](ctx, c.d, request.Options{Method: http.MethodPut, Path: path, Body: body})
}

func del(ctx context.Context, c *Client, path string, params, body any) error {
	return c.d.Do(ctx, request.Options{Method: http.MethodDelete, Path: path, Params: params, Body: body}, nil)
}

// Health — состояние API.
func (c *Client) Health(ctx context.Context) (*model.Health, error) {
	h, err := get[model.Health](ctx, c, "/api/health", nil)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

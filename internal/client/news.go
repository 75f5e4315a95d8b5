package client

import (
	"context"
	"net/http"
	"net/url"

	"stadtwache/internal/domain"
	"stadtwache/internal/validation"
)

const newsEntity = "news"

// NewsClient reads and edits news items
type NewsClient struct {
	c *Client
}

// ListPublic returns published news, newest first
func (n *NewsClient) ListPublic(ctx context.Context) ([]domain.NewsItem, error) {
	return cached(ctx, n.c, newsEntity, "public", func(ctx context.Context) ([]domain.NewsItem, error) {
		return fetch[[]domain.NewsItem](ctx, n.c, call{entity: newsEntity, op: "list_public", method: http.MethodGet, path: "/api/news"})
	})
}

// Latest returns the newest published items shown on the homepage
func (n *NewsClient) Latest(ctx context.Context) ([]domain.NewsItem, error) {
	return cached(ctx, n.c, newsEntity, "latest", func(ctx context.Context) ([]domain.NewsItem, error) {
		return fetch[[]domain.NewsItem](ctx, n.c, call{entity: newsEntity, op: "latest", method: http.MethodGet, path: "/api/news/latest"})
	})
}

// ListAdmin returns every news item, published or not
func (n *NewsClient) ListAdmin(ctx context.Context) ([]domain.NewsItem, error) {
	return fetch[[]domain.NewsItem](ctx, n.c, call{entity: newsEntity, op: "list_admin", method: http.MethodGet, path: "/api/admin/news", auth: true})
}

func (n *NewsClient) Create(ctx context.Context, in domain.NewsInput) (*domain.NewsItem, error) {
	if err := validation.Validate(validation.FormNews, in); err != nil {
		return nil, err
	}
	return write[domain.NewsItem](ctx, n.c, call{entity: newsEntity, op: "create", method: http.MethodPost, path: "/api/admin/news", body: in, auth: true})
}

func (n *NewsClient) Update(ctx context.Context, id string, patch domain.NewsPatch) (*domain.NewsItem, error) {
	if err := validation.Validate(validation.FormNewsPatch, patch); err != nil {
		return nil, err
	}
	return write[domain.NewsItem](ctx, n.c, call{entity: newsEntity, op: "update", method: http.MethodPut, path: "/api/admin/news/" + url.PathEscape(id), body: patch, auth: true})
}

func (n *NewsClient) Delete(ctx context.Context, id string) error {
	_, err := write[map[string]string](ctx, n.c, call{entity: newsEntity, op: "delete", method: http.MethodDelete, path: "/api/admin/news/" + url.PathEscape(id), auth: true})
	return err
}

package client

import (
	"context"
	"net/http"

	"stadtwache/internal/domain"
	"stadtwache/internal/validation"
)

const (
	homepageEntity   = "homepage"
	aboutEntity      = "about"
	chatWidgetEntity = "chat_widget"
)

// updateSingleton sends patch as JSON, or as multipart when an image is attached
func updateSingleton[T any](ctx context.Context, c *Client, entity, path string, patch any, imageField string, image *Attachment) (*T, error) {
	cl := call{entity: entity, op: "update", method: http.MethodPut, path: path, body: patch, auth: true}
	if image != nil {
		fields, err := formFields(patch)
		if err != nil {
			return nil, err
		}
		cl.fields = fields
		cl.files = map[string]*Attachment{imageField: image}
	}
	return write[T](ctx, c, cl)
}

// HomepageClient reads and edits the homepage configuration
type HomepageClient struct {
	c *Client
}

func (h *HomepageClient) Get(ctx context.Context) (*domain.HomepageConfig, error) {
	return cached(ctx, h.c, homepageEntity, "public", func(ctx context.Context) (*domain.HomepageConfig, error) {
		v, err := fetch[domain.HomepageConfig](ctx, h.c, call{entity: homepageEntity, op: "get", method: http.MethodGet, path: "/api/homepage"})
		return &v, err
	})
}

// Update applies patch; image replaces the hero image when non-nil
func (h *HomepageClient) Update(ctx context.Context, patch domain.HomepagePatch, image *Attachment) (*domain.HomepageConfig, error) {
	if err := validation.Validate(validation.FormHomepagePatch, patch); err != nil {
		return nil, err
	}
	return updateSingleton[domain.HomepageConfig](ctx, h.c, homepageEntity, "/api/admin/homepage", patch, "hero_image", image)
}

// AboutClient reads and edits the about page
type AboutClient struct {
	c *Client
}

func (a *AboutClient) Get(ctx context.Context) (*domain.AboutConfig, error) {
	return cached(ctx, a.c, aboutEntity, "public", func(ctx context.Context) (*domain.AboutConfig, error) {
		v, err := fetch[domain.AboutConfig](ctx, a.c, call{entity: aboutEntity, op: "get", method: http.MethodGet, path: "/api/about"})
		return &v, err
	})
}

// Update applies patch; image replaces the about image when non-nil
func (a *AboutClient) Update(ctx context.Context, patch domain.AboutPatch, image *Attachment) (*domain.AboutConfig, error) {
	if err := validation.Validate(validation.FormAboutPatch, patch); err != nil {
		return nil, err
	}
	return updateSingleton[domain.AboutConfig](ctx, a.c, aboutEntity, "/api/admin/about", patch, "about_image", image)
}

// ChatWidgetClient reads and edits the chat widget configuration
type ChatWidgetClient struct {
	c *Client
}

func (w *ChatWidgetClient) Get(ctx context.Context) (*domain.ChatWidgetConfig, error) {
	return cached(ctx, w.c, chatWidgetEntity, "public", func(ctx context.Context) (*domain.ChatWidgetConfig, error) {
		v, err := fetch[domain.ChatWidgetConfig](ctx, w.c, call{entity: chatWidgetEntity, op: "get", method: http.MethodGet, path: "/api/chat-widget"})
		return &v, err
	})
}

func (w *ChatWidgetClient) Update(ctx context.Context, patch domain.ChatWidgetPatch) (*domain.ChatWidgetConfig, error) {
	if err := validation.Validate(validation.FormChatWidgetPatch, patch); err != nil {
		return nil, err
	}
	return write[domain.ChatWidgetConfig](ctx, w.c, call{entity: chatWidgetEntity, op: "update", method: http.MethodPut, path: "/api/admin/chat-widget", body: patch, auth: true})
}

package client

import (
	"context"
	"net/http"
	"net/url"

	"stadtwache/internal/domain"
	"stadtwache/internal/validation"
)

const chatButtonsEntity = "chat_buttons"

// ChatButtonsClient reads and edits the chat widget quick actions
type ChatButtonsClient struct {
	c *Client
}

// ListPublic returns active buttons in ascending order
func (b *ChatButtonsClient) ListPublic(ctx context.Context) ([]domain.ChatButton, error) {
	return cached(ctx, b.c, chatButtonsEntity, "public", func(ctx context.Context) ([]domain.ChatButton, error) {
		return fetch[[]domain.ChatButton](ctx, b.c, call{entity: chatButtonsEntity, op: "list_public", method: http.MethodGet, path: "/api/chat/buttons"})
	})
}

func (b *ChatButtonsClient) ListAdmin(ctx context.Context) ([]domain.ChatButton, error) {
	return fetch[[]domain.ChatButton](ctx, b.c, call{entity: chatButtonsEntity, op: "list_admin", method: http.MethodGet, path: "/api/admin/chat/buttons", auth: true})
}

func (b *ChatButtonsClient) Create(ctx context.Context, in domain.ChatButtonInput) (*domain.ChatButton, error) {
	if err := validation.Validate(validation.FormChatButton, in); err != nil {
		return nil, err
	}
	return write[domain.ChatButton](ctx, b.c, call{entity: chatButtonsEntity, op: "create", method: http.MethodPost, path: "/api/admin/chat/buttons", body: in, auth: true})
}

func (b *ChatButtonsClient) Update(ctx context.Context, id string, patch domain.ChatButtonPatch) (*domain.ChatButton, error) {
	if err := validation.Validate(validation.FormChatButtonPatch, patch); err != nil {
		return nil, err
	}
	return write[domain.ChatButton](ctx, b.c, call{entity: chatButtonsEntity, op: "update", method: http.MethodPut, path: "/api/admin/chat/buttons/" + url.PathEscape(id), body: patch, auth: true})
}

func (b *ChatButtonsClient) Delete(ctx context.Context, id string) error {
	_, err := write[map[string]string](ctx, b.c, call{entity: chatButtonsEntity, op: "delete", method: http.MethodDelete, path: "/api/admin/chat/buttons/" + url.PathEscape(id), auth: true})
	return err
}

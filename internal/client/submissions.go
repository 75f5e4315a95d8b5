package client

import (
	"context"
	"net/http"
	"net/url"

	"stadtwache/internal/domain"
	"stadtwache/internal/validation"
)

const (
	applicationsEntity = "applications"
	feedbackEntity     = "feedback"
	reportsEntity      = "reports"
	chatMessagesEntity = "chat_messages"
)

// transition validates and sends a status change with an optional admin response
func transition[T any](ctx context.Context, c *Client, entity string, form validation.Form, path, status, response string) (*T, error) {
	body := domain.StatusTransition{Status: status}
	if response != "" {
		body.AdminResponse = &response
	}
	if err := validation.Validate(form, body); err != nil {
		return nil, err
	}
	return write[T](ctx, c, call{entity: entity, op: "transition", method: http.MethodPut, path: path, body: body, auth: true})
}

// ApplicationsClient submits and reviews job applications
type ApplicationsClient struct {
	c *Client
}

// Create submits an application; cv may be nil. The request is multipart
// only when a CV is attached.
func (a *ApplicationsClient) Create(ctx context.Context, in domain.ApplicationInput, cv *Attachment) (*domain.Application, error) {
	if err := validation.Validate(validation.FormApplication, in); err != nil {
		return nil, err
	}
	cl := call{entity: applicationsEntity, op: "create", method: http.MethodPost, path: "/api/applications", body: in}
	if cv != nil {
		fields, err := formFields(in)
		if err != nil {
			return nil, err
		}
		cl.fields = fields
		cl.files = map[string]*Attachment{"cv_file": cv}
	}
	return write[domain.Application](ctx, a.c, cl)
}

func (a *ApplicationsClient) ListAdmin(ctx context.Context) ([]domain.Application, error) {
	return fetch[[]domain.Application](ctx, a.c, call{entity: applicationsEntity, op: "list_admin", method: http.MethodGet, path: "/api/admin/applications", auth: true})
}

func (a *ApplicationsClient) TransitionStatus(ctx context.Context, id, status, response string) (*domain.Application, error) {
	return transition[domain.Application](ctx, a.c, applicationsEntity, validation.FormApplicationTransition,
		"/api/admin/applications/"+url.PathEscape(id)+"/respond", status, response)
}

// FeedbackClient submits and reviews citizen feedback
type FeedbackClient struct {
	c *Client
}

func (f *FeedbackClient) Create(ctx context.Context, in domain.FeedbackInput) (*domain.Feedback, error) {
	if err := validation.Validate(validation.FormFeedback, in); err != nil {
		return nil, err
	}
	return write[domain.Feedback](ctx, f.c, call{entity: feedbackEntity, op: "create", method: http.MethodPost, path: "/api/feedback", body: in})
}

func (f *FeedbackClient) ListAdmin(ctx context.Context) ([]domain.Feedback, error) {
	return fetch[[]domain.Feedback](ctx, f.c, call{entity: feedbackEntity, op: "list_admin", method: http.MethodGet, path: "/api/admin/feedback", auth: true})
}

func (f *FeedbackClient) TransitionStatus(ctx context.Context, id, status, response string) (*domain.Feedback, error) {
	return transition[domain.Feedback](ctx, f.c, feedbackEntity, validation.FormFeedbackTransition,
		"/api/admin/feedback/"+url.PathEscape(id)+"/respond", status, response)
}

// ReportsClient submits and processes online incident reports
type ReportsClient struct {
	c *Client
}

// Types returns the incident type catalogue
func (r *ReportsClient) Types(ctx context.Context) ([]domain.IncidentType, error) {
	return cached(ctx, r.c, reportsEntity, "types", func(ctx context.Context) ([]domain.IncidentType, error) {
		return fetch[[]domain.IncidentType](ctx, r.c, call{entity: reportsEntity, op: "types", method: http.MethodGet, path: "/api/reports/types"})
	})
}

func (r *ReportsClient) Create(ctx context.Context, in domain.ReportInput) (*domain.Report, error) {
	if err := validation.Validate(validation.FormReport, in); err != nil {
		return nil, err
	}
	return write[domain.Report](ctx, r.c, call{entity: reportsEntity, op: "create", method: http.MethodPost, path: "/api/reports", body: in})
}

func (r *ReportsClient) ListAdmin(ctx context.Context) ([]domain.Report, error) {
	return fetch[[]domain.Report](ctx, r.c, call{entity: reportsEntity, op: "list_admin", method: http.MethodGet, path: "/api/admin/reports", auth: true})
}

// TransitionStatus moves a report to status. Legacy status names are
// translated to the canonical vocabulary before sending.
func (r *ReportsClient) TransitionStatus(ctx context.Context, id, status, response string) (*domain.Report, error) {
	return transition[domain.Report](ctx, r.c, reportsEntity, validation.FormReportTransition,
		"/api/admin/reports/"+url.PathEscape(id)+"/status", domain.NormalizeReportStatus(status), response)
}

// ChatMessagesClient leaves and answers chat widget messages
type ChatMessagesClient struct {
	c *Client
}

func (m *ChatMessagesClient) Create(ctx context.Context, in domain.ChatMessageInput) (*domain.ChatMessage, error) {
	if err := validation.Validate(validation.FormChatMessage, in); err != nil {
		return nil, err
	}
	return write[domain.ChatMessage](ctx, m.c, call{entity: chatMessagesEntity, op: "create", method: http.MethodPost, path: "/api/chat/messages", body: in})
}

func (m *ChatMessagesClient) ListAdmin(ctx context.Context) ([]domain.ChatMessage, error) {
	return fetch[[]domain.ChatMessage](ctx, m.c, call{entity: chatMessagesEntity, op: "list_admin", method: http.MethodGet, path: "/api/admin/chat/messages", auth: true})
}

func (m *ChatMessagesClient) TransitionStatus(ctx context.Context, id, status, response string) (*domain.ChatMessage, error) {
	return transition[domain.ChatMessage](ctx, m.c, chatMessagesEntity, validation.FormMessageTransition,
		"/api/admin/chat/messages/"+url.PathEscape(id)+"/respond", status, response)
}

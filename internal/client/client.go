// Package client is the site's access layer to the Stadtwache API: the admin
// session, one request builder and a client per resource.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "stadtwache/pkg/errors"
)

// Config configures a Client
type Config struct {
	BaseURL    string
	Timeout    time.Duration // zero keeps the transport default
	CacheReads bool
	HTTPClient *http.Client
	Log        *zap.Logger
}

// Client talks to the Stadtwache API. The embedded resource clients share its
// session and request builder.
type Client struct {
	baseURL  string
	http     *http.Client
	tracer   trace.Tracer
	requests metric.Int64Counter
	duration metric.Float64Histogram
	cache    *readCache
	log      *zap.Logger

	Session      *Session
	News         *NewsClient
	Applications *ApplicationsClient
	Feedback     *FeedbackClient
	Reports      *ReportsClient
	Homepage     *HomepageClient
	About        *AboutClient
	ChatWidget   *ChatWidgetClient
	ChatButtons  *ChatButtonsClient
	ChatMessages *ChatMessagesClient
}

// New creates a Client whose session persists its token in store
func New(cfg Config, store TokenStore) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		tracer:  otel.Tracer("stadtwache/client"),
		log:     log.Named("client"),
	}
	if cfg.CacheReads {
		c.cache = newReadCache()
	}

	meter := otel.Meter("stadtwache/client")
	var err error
	if c.requests, err = meter.Int64Counter("client.requests",
		metric.WithDescription("API requests by entity, operation and outcome")); err != nil {
		c.log.Warn("request counter unavailable", zap.Error(err))
	}
	if c.duration, err = meter.Float64Histogram("client.request.duration",
		metric.WithDescription("API request latency"), metric.WithUnit("s")); err != nil {
		c.log.Warn("request histogram unavailable", zap.Error(err))
	}
	c.Session = newSession(c, store)
	c.News = &NewsClient{c: c}
	c.Applications = &ApplicationsClient{c: c}
	c.Feedback = &FeedbackClient{c: c}
	c.Reports = &ReportsClient{c: c}
	c.Homepage = &HomepageClient{c: c}
	c.About = &AboutClient{c: c}
	c.ChatWidget = &ChatWidgetClient{c: c}
	c.ChatButtons = &ChatButtonsClient{c: c}
	c.ChatMessages = &ChatMessagesClient{c: c}
	return c
}

// UploadURL returns the public address of an uploaded file
func (c *Client) UploadURL(name string) string {
	return c.baseURL + "/api/uploads/" + name
}

// Attachment is a file sent as a multipart part. It holds the bytes so a
// failed request can be sent again with the same content.
type Attachment struct {
	Name string
	Data []byte
}

// ReadAttachment reads r to the end into an Attachment named name
func ReadAttachment(name string, r io.Reader) (*Attachment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return &Attachment{Name: name, Data: data}, nil
}

// call describes one API request
type call struct {
	entity string
	op     string
	method string
	path   string
	body   any               // JSON body
	fields map[string]string // multipart fields, used when files is non-empty
	files  map[string]*Attachment
	auth   bool
	bearer string // explicit token; the session is not consulted nor expired
}

// do builds, sends and decodes a single request. It is the only place that
// attaches the bearer token, read from the session at call time.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	ctx, span := c.tracer.Start(ctx, "client."+cl.entity+"."+cl.op, trace.WithAttributes(
		attribute.String("http.request.method", cl.method),
		attribute.String("url.path", cl.path),
	))
	defer span.End()

	start := time.Now()
	err := c.roundTrip(ctx, cl, out)
	outcome := "ok"
	if err != nil {
		outcome = string(apperrors.CodeOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}

	attrs := metric.WithAttributes(
		attribute.String("entity", cl.entity),
		attribute.String("op", cl.op),
		attribute.String("outcome", outcome),
	)
	if c.requests != nil {
		c.requests.Add(ctx, 1, attrs)
	}
	if c.duration != nil {
		c.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, cl call, out any) error {
	token, fromSession := cl.bearer, false
	if cl.auth && token == "" {
		token = c.Session.Token()
		if token == "" {
			return &apperrors.AppError{Code: apperrors.ErrCodeUnauthorized, Message: "not signed in", Status: http.StatusUnauthorized}
		}
		fromSession = true
	}

	body, contentType, err := encodeBody(cl)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeValidation, "could not encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, c.baseURL+cl.path, body)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeNetwork, "could not build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return apperrors.Wrap(apperrors.ErrCodeCancelled, "request cancelled", err)
		}
		return apperrors.Wrap(apperrors.ErrCodeNetwork, "request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeNetwork, "failed to read response", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		appErr := statusError(resp.StatusCode, raw)
		c.log.Debug("request failed",
			zap.String("method", cl.method),
			zap.String("path", cl.path),
			zap.Int("status", resp.StatusCode),
			zap.String("message", appErr.Message))
		if resp.StatusCode == http.StatusUnauthorized && fromSession {
			c.Session.Expire()
		}
		return appErr
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return &apperrors.AppError{Code: apperrors.ErrCodeServer, Message: "malformed response", Status: resp.StatusCode, Err: err}
		}
	}
	return nil
}

func encodeBody(cl call) (io.Reader, string, error) {
	if len(cl.files) > 0 {
		return encodeMultipart(cl.fields, cl.files)
	}
	if cl.body == nil {
		return nil, "", nil
	}
	raw, err := json.Marshal(cl.body)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(raw), "application/json", nil
}

func encodeMultipart(fields map[string]string, files map[string]*Attachment) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := mw.WriteField(k, fields[k]); err != nil {
			return nil, "", err
		}
	}
	for field, file := range files {
		part, err := mw.CreateFormFile(field, file.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// formFields flattens the JSON form of v into multipart fields. Omitted
// (nil) pointer fields are left out.
func formFields(v any) (map[string]string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(doc))
	for k, val := range doc {
		switch val := val.(type) {
		case nil:
		case string:
			fields[k] = val
		case bool:
			fields[k] = strconv.FormatBool(val)
		case float64:
			fields[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			return nil, fmt.Errorf("field %s cannot be sent as form data", k)
		}
	}
	return fields, nil
}

// errorBody mirrors the API's JSON error document
type errorBody struct {
	Name    string            `json:"name"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

func statusError(status int, raw []byte) *apperrors.AppError {
	var body errorBody
	_ = json.Unmarshal(raw, &body)
	message := body.Message
	if message == "" {
		message = http.StatusText(status)
	}

	err := &apperrors.AppError{Message: message, Status: status}
	switch status {
	case http.StatusUnauthorized:
		err.Code = apperrors.ErrCodeUnauthorized
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		err.Code = apperrors.ErrCodeValidation
		err.Fields = body.Fields
	case http.StatusNotFound:
		err.Code = apperrors.ErrCodeNotFound
	default:
		err.Code = apperrors.ErrCodeServer
	}
	return err
}

// fetch issues cl and decodes the response into a T
func fetch[T any](ctx context.Context, c *Client, cl call) (T, error) {
	var v T
	err := c.do(ctx, cl, &v)
	return v, err
}

// write issues a mutating call and drops every cached read of its entity on success
func write[T any](ctx context.Context, c *Client, cl call) (*T, error) {
	v := new(T)
	if err := c.do(ctx, cl, v); err != nil {
		return nil, err
	}
	c.cache.invalidate(cl.entity)
	return v, nil
}

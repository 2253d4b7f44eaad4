package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/core/events"
	"github.com/frahmantamala/star-supla/internal/transport/middleware"
	"github.com/go-resty/resty/v2"
)

const (
	HeaderContentType = "Content-Type"
	HeaderProjectID   = middleware.ProjectIDHeader
	HeaderSessionKey  = middleware.SessionKeyHeader

	contentTypeJSON = "application/json"
)

// TokenSource yields the persisted session key, "" when logged out.
type TokenSource interface {
	SessionKey(ctx context.Context) (string, error)
}

// Envelope is the server's uniform response shape. Raw keeps the whole
// body for endpoints that answer with a bare document.
type Envelope struct {
	Result     json.RawMessage `json:"result"`
	Message    string          `json:"message,omitempty"`
	TotalCount *int            `json:"totalCount,omitempty"`
	TotalPage  *int            `json:"totalPage,omitempty"`
	Raw        json.RawMessage `json:"-"`
}

// Request describes one JSON call. Body is marshalled unless it is already
// []byte.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   interface{}
}

// Upload describes one multipart call.
type Upload struct {
	Path     string
	Field    string
	FileName string
	File     io.Reader
	Fields   map[string]string
}

type Client struct {
	http      *resty.Client
	projectID string
	tokens    TokenSource
	publisher events.Publisher
	logger    *slog.Logger
}

// NewClient wires a resty client against cfg. Forbidden responses are
// announced on publisher before the error reaches the caller.
func NewClient(cfg internal.APIConfig, tokens TokenSource, publisher events.Publisher, logger *slog.Logger) *Client {
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetLogger(middleware.RestyLogger{Logger: logger}).
		OnBeforeRequest(middleware.TraceRequest).
		OnBeforeRequest(middleware.LogRequest(logger)).
		OnAfterResponse(middleware.LogResponse(logger))

	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}

	return &Client{
		http:      rc,
		projectID: cfg.ProjectID,
		tokens:    tokens,
		publisher: publisher,
		logger:    logger,
	}
}

// SetTransport swaps the underlying round tripper; tests point it at an
// in-process server.
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.http.SetTransport(rt)
}

// BuildHeaders returns the headers every call carries. Content-Type is left
// out for multipart bodies so the boundary can be set by the encoder.
func (c *Client) BuildHeaders(ctx context.Context, multipart bool) (map[string]string, error) {
	headers := map[string]string{
		HeaderProjectID: c.projectID,
	}
	if !multipart {
		headers[HeaderContentType] = contentTypeJSON
	}

	token, err := c.tokens.SessionKey(ctx)
	if err != nil {
		return nil, internal.NewInternalError("failed to read session key", err)
	}
	if token != "" {
		headers[HeaderSessionKey] = token
	}
	return headers, nil
}

// Do performs a JSON request and unwraps the envelope.
func (c *Client) Do(ctx context.Context, req Request) (*Envelope, error) {
	headers, err := c.BuildHeaders(ctx, false)
	if err != nil {
		return nil, err
	}

	r := c.http.R().
		SetContext(ctx).
		SetHeaders(headers)

	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}

	if req.Body != nil {
		body, err := encodeBody(req.Body)
		if err != nil {
			return nil, err
		}
		r.SetBody(body)
	}

	resp, err := r.Execute(req.Method, req.Path)
	if err != nil {
		return nil, internal.NewNetworkError(fmt.Sprintf("%s %s failed", req.Method, req.Path), err)
	}

	return c.unwrap(ctx, req.Method, req.Path, resp.StatusCode(), resp.Body())
}

// Upload posts a multipart form and unwraps the envelope.
func (c *Client) Upload(ctx context.Context, up Upload) (*Envelope, error) {
	headers, err := c.BuildHeaders(ctx, true)
	if err != nil {
		return nil, err
	}

	field := up.Field
	if field == "" {
		field = "file"
	}

	r := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetFileReader(field, up.FileName, up.File)

	if len(up.Fields) > 0 {
		r.SetFormData(up.Fields)
	}

	resp, err := r.Post(up.Path)
	if err != nil {
		return nil, internal.NewNetworkError(fmt.Sprintf("upload to %s failed", up.Path), err)
	}

	return c.unwrap(ctx, http.MethodPost, up.Path, resp.StatusCode(), resp.Body())
}

// Unwrap classifies a raw response without any side effect besides the
// forbidden announcement.
func (c *Client) Unwrap(ctx context.Context, status int, body []byte) (*Envelope, error) {
	return c.unwrap(ctx, "", "", status, body)
}

func (c *Client) unwrap(ctx context.Context, method, path string, status int, body []byte) (*Envelope, error) {
	env, err := ParseEnvelope(body)
	if err != nil {
		return nil, err
	}

	switch {
	case status >= 200 && status < 300:
		return env, nil
	case status == http.StatusForbidden:
		message := messageOr(env.Message, internal.MessageForbidden)
		c.announceForbidden(ctx, method, path, message)
		return nil, internal.NewForbiddenError(message, internal.ErrCodeAccessForbidden)
	case status == http.StatusUnauthorized:
		return nil, internal.NewUnauthorizedError(messageOr(env.Message, internal.MessageUnauthorized), internal.ErrCodeUnauthorized)
	default:
		return nil, internal.NewAPIError(messageOr(env.Message, internal.MessageDefault), status)
	}
}

func (c *Client) announceForbidden(ctx context.Context, method, path, message string) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.PublishSync(ctx, events.NewSessionForbidden(method, path, message)); err != nil {
		c.logger.Error("forced logout handler failed", "method", method, "path", path, "error", err)
	}
}

// ParseEnvelope validates body as JSON and lifts the envelope fields when
// the body is an object.
func ParseEnvelope(body []byte) (*Envelope, error) {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return nil, internal.NewParseError("Failed to parse server response", fmt.Errorf("invalid JSON body of %d bytes", len(body)))
	}

	env := &Envelope{Raw: json.RawMessage(trimmed)}
	if trimmed[0] != '{' {
		return env, nil
	}

	var fields struct {
		Result     json.RawMessage `json:"result"`
		Message    json.RawMessage `json:"message"`
		TotalCount *int            `json:"totalCount"`
		TotalPage  *int            `json:"totalPage"`
	}
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, internal.NewParseError("Failed to parse server response", err)
	}

	env.Result = fields.Result
	env.TotalCount = fields.TotalCount
	env.TotalPage = fields.TotalPage

	var message string
	if len(fields.Message) > 0 && json.Unmarshal(fields.Message, &message) == nil {
		env.Message = message
	}
	return env, nil
}

// Decode unmarshals the envelope result into v.
func (e *Envelope) Decode(v interface{}) error {
	if len(e.Result) == 0 {
		return internal.NewParseError("Failed to parse server response", fmt.Errorf("response has no result"))
	}
	if err := json.Unmarshal(e.Result, v); err != nil {
		return internal.NewParseError("Failed to parse server response", err)
	}
	return nil
}

// DecodeRaw unmarshals the whole body into v.
func (e *Envelope) DecodeRaw(v interface{}) error {
	if err := json.Unmarshal(e.Raw, v); err != nil {
		return internal.NewParseError("Failed to parse server response", err)
	}
	return nil
}

func encodeBody(body interface{}) ([]byte, error) {
	if b, ok := body.([]byte); ok {
		return b, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, internal.NewInternalError("failed to encode request body", err)
	}
	return b, nil
}

func messageOr(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}

package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/lms-portal-gateway/pkg/config"
	appErrors "github.com/noah-isme/lms-portal-gateway/pkg/errors"
	"github.com/noah-isme/lms-portal-gateway/pkg/middleware/requestid"
)

const defaultFallback = "Ocorreu um erro inesperado. Tente novamente."

// Observer records upstream latency; MetricsService implements it.
type Observer interface {
	ObserveUpstream(method, path string, status int, duration time.Duration)
}

// FilePart is a single file in a multipart upload.
type FilePart struct {
	Field    string
	Filename string
	Reader   io.Reader
}

// Client wraps a resty client configured for the backend.
type Client struct {
	http     *resty.Client
	logger   *zap.Logger
	fallback string
	observer Observer
}

// Option customises the client.
type Option func(*Client)

// WithObserver attaches latency instrumentation.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// New constructs a client from configuration.
func New(cfg config.UpstreamConfig, logger *zap.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	fallback := strings.TrimSpace(cfg.FallbackMessage)
	if fallback == "" {
		fallback = defaultFallback
	}
	hc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	c := &Client{http: hc, logger: logger, fallback: fallback}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// FallbackMessage is the generic text used when the server gives none.
func (c *Client) FallbackMessage() string {
	return c.fallback
}

// Get issues GET path?query and decodes the body into dest.
func (c *Client) Get(ctx context.Context, token, path string, query url.Values, dest interface{}) error {
	req := c.request(ctx, token)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	return c.do(req, http.MethodGet, path, dest)
}

// Send issues a JSON write (POST, PUT, PATCH, DELETE). body and dest may be nil.
func (c *Client) Send(ctx context.Context, token, method, path string, body, dest interface{}) error {
	req := c.request(ctx, token)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	return c.do(req, method, path, dest)
}

// Upload posts a multipart form with metadata fields and one file part.
func (c *Client) Upload(ctx context.Context, token, path string, fields map[string]string, file FilePart, dest interface{}) error {
	if file.Reader == nil || file.Field == "" {
		return appErrors.Clone(appErrors.ErrValidation, "arquivo obrigatório")
	}
	req := c.request(ctx, token).
		SetMultipartFormData(fields).
		SetFileReader(file.Field, file.Filename, file.Reader)
	return c.do(req, http.MethodPost, path, dest)
}

func (c *Client) request(ctx context.Context, token string) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if token != "" {
		req.SetAuthToken(token)
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.SetHeader(requestid.HeaderKey, id)
	}
	return req
}

func (c *Client) do(req *resty.Request, method, path string, dest interface{}) error {
	start := time.Now()
	resp, err := req.Execute(method, path)
	status := 0
	if resp != nil {
		status = resp.StatusCode()
	}
	if c.observer != nil {
		c.observer.ObserveUpstream(method, path, status, time.Since(start))
	}
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.Warn("upstream request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, c.fallback)
	}
	if resp.IsError() || status >= http.StatusMultipleChoices {
		apiErr := DecodeError(status, resp.Body(), c.fallback)
		c.logger.Info("upstream rejected request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.String("code", apiErr.Code),
		)
		return apiErr
	}
	if dest == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := UnwrapInto(resp.Body(), dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "resposta inválida do servidor")
	}
	return nil
}

var envelopeKeys = map[string]struct{}{
	"data":       {},
	"success":    {},
	"message":    {},
	"pagination": {},
	"meta":       {},
	"error":      {},
	"total":      {},
}

// Unwrap decodes either a bare JSON document or an envelope carrying a "data" field.
func Unwrap[T any](raw []byte) (T, error) {
	var out T
	err := UnwrapInto(raw, &out)
	return out, err
}

// UnwrapInto is the non-generic form of Unwrap.
func UnwrapInto(raw []byte, dest interface{}) error {
	if data, ok := envelopeData(raw); ok {
		raw = data
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode upstream body: %w", err)
	}
	return nil
}

func envelopeData(raw []byte) (json.RawMessage, bool) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, false
	}
	data, ok := top["data"]
	if !ok {
		return nil, false
	}
	for key := range top {
		if _, known := envelopeKeys[key]; !known {
			return nil, false
		}
	}
	return data, true
}

type errorBody struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// DecodeError converts a non-2xx response into a typed error. The message comes
// from "message" or "error" (string or {"message"}) and falls back to fallback.
func DecodeError(status int, body []byte, fallback string) *appErrors.Error {
	template := errorForStatus(status)
	out := appErrors.Clone(template, fallback)
	out.Status = template.Status
	if status >= 400 && status < 500 {
		out.Status = status
	}

	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return out
	}
	if code := strings.TrimSpace(parsed.Code); code != "" {
		out.Code = strings.ToUpper(code)
	}
	if msg := strings.TrimSpace(parsed.Message); msg != "" {
		out.Message = msg
		return out
	}
	if len(parsed.Error) > 0 {
		var asString string
		if json.Unmarshal(parsed.Error, &asString) == nil && strings.TrimSpace(asString) != "" {
			out.Message = strings.TrimSpace(asString)
			return out
		}
		var nested errorBody
		if json.Unmarshal(parsed.Error, &nested) == nil {
			if nested.Code != "" && parsed.Code == "" {
				out.Code = strings.ToUpper(nested.Code)
			}
			if strings.TrimSpace(nested.Message) != "" {
				out.Message = strings.TrimSpace(nested.Message)
			}
		}
	}
	return out
}

func errorForStatus(status int) *appErrors.Error {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return appErrors.ErrValidation
	case status == http.StatusUnauthorized:
		return appErrors.ErrUnauthorized
	case status == http.StatusForbidden:
		return appErrors.ErrForbidden
	case status == http.StatusNotFound:
		return appErrors.ErrNotFound
	case status == http.StatusConflict:
		return appErrors.ErrConflict
	default:
		return appErrors.ErrUpstream
	}
}

// IsStatus reports whether err is an upstream error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *appErrors.Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

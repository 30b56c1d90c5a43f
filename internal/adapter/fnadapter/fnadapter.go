// Package fnadapter is the function-as-a-service variant: instead of
// listening, it exposes a handler over a provider-neutral event shape that
// serverless runtimes can feed. CORS support is limited to response headers;
// preflight routing is the provider's concern. Drain is a no-op because the
// provider owns the process lifecycle.
package fnadapter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"

	adapter "github.com/graphmount/graphmount/internal/adapter"
	engine "github.com/graphmount/graphmount/internal/engine"
	health "github.com/graphmount/graphmount/internal/health"
)

// DefaultPath is the conventional mount point for framework attachments.
const DefaultPath = "/graphql"

// Event is the provider-neutral request shape handed to Handle.
type Event struct {
	Method          string            `json:"method"`
	Path            string            `json:"path"`
	Headers         map[string]string `json:"headers"`
	QueryParameters map[string]string `json:"queryParameters"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

// EventResponse is what the serverless runtime writes back to its transport.
type EventResponse struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// Adapter serves GraphQL from serverless invocation events.
type Adapter struct {
	*adapter.Core

	attached   bool
	path       string
	healthPath string
	responder  *health.Responder
}

func New(eng *engine.Engine) *Adapter {
	return &Adapter{Core: adapter.NewCore("fn", eng)}
}

// Attach records the mount paths and health responder. Nothing listens; the
// provider invokes Handle per event.
func (a *Adapter) Attach(opts adapter.Options) error {
	a.Configure(opts)
	a.path = opts.PathOrDefault(DefaultPath)
	a.healthPath = opts.HealthPath
	a.responder = opts.HealthResponder()
	a.attached = true
	return nil
}

// Drain is a no-op: the provider owns the process lifecycle.
func (a *Adapter) Drain(ctx context.Context) error { return nil }

// Handle serves one invocation event.
func (a *Adapter) Handle(ctx context.Context, ev Event) (EventResponse, error) {
	if !a.attached {
		return jsonError(http.StatusInternalServerError, "adapter not attached"), nil
	}

	switch ev.Path {
	case a.healthPath:
		return a.handleHealth(ctx)
	case a.path, "":
	default:
		return jsonError(http.StatusNotFound, "not found"), nil
	}

	method := ev.Method
	if method == "" {
		method = http.MethodGet
		if ev.Body != "" {
			method = http.MethodPost
		}
	}

	body := []byte(ev.Body)
	if ev.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(ev.Body)
		if err != nil {
			return jsonError(http.StatusBadRequest, "invalid base64 body"), nil
		}
		body = decoded
	}
	if max := a.Options().MaxBodyBytes; max > 0 && int64(len(body)) > max {
		return jsonError(http.StatusRequestEntityTooLarge, "body too large"), nil
	}

	header := make(http.Header, len(ev.Headers))
	for k, v := range ev.Headers {
		header.Set(k, v)
	}
	query := make(url.Values, len(ev.QueryParameters))
	for k, v := range ev.QueryParameters {
		query.Set(k, v)
	}

	raw := adapter.RawRequest{
		Method:      method,
		Path:        a.path,
		ContentType: header.Get("Content-Type"),
		Query:       query,
		Header:      header,
		Body:        body,
	}
	resp := a.Process(ctx, raw)

	headers := map[string]string{"Content-Type": "application/json; charset=utf-8"}
	for k, v := range adapter.CORSHeaders(method, header.Get("Origin"), header.Get("Access-Control-Request-Headers"), a.Options().CORS) {
		headers[k] = v
	}
	return EventResponse{StatusCode: resp.Status, Headers: headers, Body: string(resp.Body)}, nil
}

func (a *Adapter) handleHealth(ctx context.Context) (EventResponse, error) {
	if a.responder.IsDisabled() {
		return jsonError(http.StatusNotFound, "not found"), nil
	}
	status := a.responder.Check(ctx)
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	body, _ := json.Marshal(status)
	return EventResponse{
		StatusCode: code,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
		Body:       string(body),
	}, nil
}

func jsonError(status int, message string) EventResponse {
	body, _ := json.Marshal(map[string]any{
		"errors": []map[string]any{{"message": message}},
	})
	return EventResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
		Body:       string(body),
	}
}

var _ adapter.Adapter = (*Adapter)(nil)

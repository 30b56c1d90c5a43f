package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	engine "github.com/graphmount/graphmount/internal/engine"
	eventbus "github.com/graphmount/graphmount/internal/eventbus"
	events "github.com/graphmount/graphmount/internal/events"
	reqid "github.com/graphmount/graphmount/internal/reqid"
)

const errBodyTooLargeMessage = "body too large"

// RawRequest is the transport-neutral view of an incoming request. Each
// framework adapter produces one from its native request type.
type RawRequest struct {
	Method      string
	Path        string
	ContentType string
	Query       url.Values
	Header      http.Header
	Body        []byte
}

// Response is the transport-neutral result an adapter writes back through
// its native response type.
type Response struct {
	Status int
	Body   []byte
}

// Core implements the request/response translation shared by all adapter
// variants: parsing GET and POST transport requests into engine requests,
// running the engine, and serializing results with status mapping. It holds
// a non-owning reference to the engine.
type Core struct {
	name string
	eng  *engine.Engine
	opt  Options
}

// NewCore creates the shared translation layer for a named adapter variant.
func NewCore(name string, eng *engine.Engine) *Core {
	return &Core{name: name, eng: eng}
}

// Name identifies the adapter variant.
func (c *Core) Name() string { return c.name }

// Configure stores the attach-time options. Called once by Attach.
func (c *Core) Configure(opts Options) { c.opt = opts }

// Engine exposes the engine reference for read-only use.
func (c *Core) Engine() *engine.Engine { return c.eng }

// Options returns the attach-time options.
func (c *Core) Options() Options { return c.opt }

// NormalizeRequest parses a transport request into engine requests. It
// returns a KindMalformed error for unparseable bodies; the engine is never
// invoked for those.
func (c *Core) NormalizeRequest(raw RawRequest) (engine.Request, []engine.Request, *engine.Error) {
	md := engine.Metadata{Method: raw.Method, Header: raw.Header}

	if raw.Method == http.MethodGet {
		q := raw.Query.Get("query")
		if q == "" {
			return engine.Request{}, nil, malformed("missing 'query' parameter")
		}
		vars := map[string]any{}
		if v := raw.Query.Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &vars); err != nil {
				return engine.Request{}, nil, malformed("invalid 'variables' JSON")
			}
		}
		return engine.Request{
			Query:         q,
			OperationName: raw.Query.Get("operationName"),
			Variables:     vars,
			Metadata:      md,
		}, nil, nil
	}

	ct := raw.ContentType
	if ct != "" && ct != "application/json" && !strings.HasPrefix(ct, "application/json;") {
		return engine.Request{}, nil, malformed("unsupported Content-Type")
	}
	if c.opt.MaxBodyBytes > 0 && int64(len(raw.Body)) > c.opt.MaxBodyBytes {
		return engine.Request{}, nil, malformed(errBodyTooLargeMessage)
	}

	body := raw.Body
	if len(body) > 0 && body[0] == '[' {
		var batch []engine.Request
		if err := json.Unmarshal(body, &batch); err != nil {
			return engine.Request{}, nil, malformed("invalid JSON")
		}
		if len(batch) == 0 {
			return engine.Request{}, nil, malformed("empty batch")
		}
		for i := range batch {
			batch[i].Metadata = md
		}
		return engine.Request{}, batch, nil
	}

	var req engine.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return engine.Request{}, nil, malformed("invalid JSON")
	}
	if req.Query == "" {
		return engine.Request{}, nil, malformed("missing 'query'")
	}
	req.Metadata = md
	return req, nil, nil
}

// SerializeResponse renders one execution result, using the result's status
// hint for the HTTP status.
func (c *Core) SerializeResponse(result *engine.Result) Response {
	return Response{Status: result.StatusHint(), Body: c.marshal(result)}
}

// Process runs the full translation pipeline for one transport request:
// request ID, default timeout, parse, execute, serialize. It never panics
// and always returns a well-formed JSON response.
func (c *Core) Process(ctx context.Context, raw RawRequest) Response {
	if _, ok := ctx.Deadline(); !ok && c.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opt.Timeout)
		defer cancel()
	}
	ctx, _ = reqid.NewContext(ctx)

	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Adapter: c.name, Method: raw.Method, Path: raw.Path})
	resp := c.process(ctx, raw)
	eventbus.Publish(ctx, events.HTTPFinish{
		Adapter:  c.name,
		Method:   raw.Method,
		Path:     raw.Path,
		Status:   resp.Status,
		Duration: time.Since(start),
	})
	return resp
}

func (c *Core) process(ctx context.Context, raw RawRequest) Response {
	req, batch, merr := c.NormalizeRequest(raw)
	if merr != nil {
		status := http.StatusBadRequest
		if merr.Message == errBodyTooLargeMessage {
			status = http.StatusRequestEntityTooLarge
		}
		return Response{Status: status, Body: c.marshal(&engine.Result{Errors: []engine.Error{*merr}})}
	}

	if batch != nil {
		results := make([]*engine.Result, len(batch))
		for i := range batch {
			results[i] = c.eng.Execute(ctx, batch[i])
		}
		// Batched responses are always 200; per-item errors live in the list.
		return Response{Status: http.StatusOK, Body: c.marshal(results)}
	}

	return c.SerializeResponse(c.eng.Execute(ctx, req))
}

func (c *Core) marshal(v any) []byte {
	var (
		b   []byte
		err error
	)
	if c.opt.Pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return []byte(`{"errors":[{"message":"failed to encode response"}]}`)
	}
	return b
}

func malformed(message string) *engine.Error {
	return &engine.Error{Message: message, Kind: engine.KindMalformed}
}

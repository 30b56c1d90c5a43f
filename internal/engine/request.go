package engine

import (
	"net/http"

	"github.com/vektah/gqlparser/v2/ast"

	language "github.com/graphmount/graphmount/internal/language"
)

// Request is a single GraphQL execution request, decoupled from whatever
// transport carried it. Callers must treat a Request as immutable once it
// has been handed to Execute; the engine defensively copies the variable
// map so later mutation by the transport cannot race with resolvers.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Extensions    map[string]any `json:"extensions,omitempty"`

	// Metadata carries transport details for resolvers that want them.
	// The engine never interprets it.
	Metadata Metadata `json:"-"`
}

// Metadata describes the transport request that produced a Request.
type Metadata struct {
	Method string
	Header http.Header
}

// ErrorKind classifies an execution error for HTTP status mapping.
type ErrorKind string

const (
	// KindValidation marks requests that do not conform to the schema.
	KindValidation ErrorKind = "VALIDATION"
	// KindExecution marks resolver failures; the result may carry partial data.
	KindExecution ErrorKind = "EXECUTION"
	// KindMalformed marks transport bodies that could not be parsed.
	KindMalformed ErrorKind = "MALFORMED_REQUEST"
	// KindInternal marks uncaught faults; no partial data is returned.
	KindInternal ErrorKind = "INTERNAL"
)

// Path locates a field in the response tree: string keys and int list indices.
type Path []any

// Location is a position in the operation source text.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Error is a GraphQL response error.
type Error struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`

	// Kind is not part of the wire format; adapters use it to pick a status.
	Kind ErrorKind `json:"-"`
}

func (e Error) Error() string { return e.Message }

// Result is the outcome of executing a Request. Data and Errors may both be
// present (partial result). Immutable once returned.
type Result struct {
	Data   any     `json:"data"`
	Errors []Error `json:"errors,omitempty"`
}

// StatusHint suggests the HTTP status an adapter should use for this result.
// Execution errors still yield 200 per the GraphQL-over-HTTP convention.
func (r *Result) StatusHint() int {
	status := http.StatusOK
	for _, e := range r.Errors {
		switch e.Kind {
		case KindInternal:
			return http.StatusInternalServerError
		case KindValidation, KindMalformed:
			status = http.StatusBadRequest
		}
	}
	return status
}

// HasErrorKind reports whether any error of the given kind is present.
func (r *Result) HasErrorKind(kind ErrorKind) bool {
	for _, e := range r.Errors {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func validationResult(errs language.ErrorList) *Result {
	out := &Result{}
	for _, ge := range errs {
		out.Errors = append(out.Errors, fromLanguageError(ge, KindValidation))
	}
	if len(out.Errors) == 0 {
		out.Errors = append(out.Errors, Error{Message: "invalid request", Kind: KindValidation})
	}
	return out
}

func fromLanguageError(ge *language.Error, kind ErrorKind) Error {
	e := Error{Message: ge.Message, Kind: kind}
	for _, loc := range ge.Locations {
		e.Locations = append(e.Locations, Location{Line: loc.Line, Column: loc.Column})
	}
	for _, pe := range ge.Path {
		switch v := pe.(type) {
		case ast.PathName:
			e.Path = append(e.Path, string(v))
		case ast.PathIndex:
			e.Path = append(e.Path, int(v))
		default:
			e.Path = append(e.Path, v)
		}
	}
	if len(ge.Extensions) > 0 {
		e.Extensions = make(map[string]any, len(ge.Extensions))
		for k, v := range ge.Extensions {
			e.Extensions[k] = v
		}
	}
	return e
}

func copyVariables(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

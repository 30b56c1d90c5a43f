package engine

import (
	"context"
	"fmt"
	"time"

	eventbus "github.com/graphmount/graphmount/internal/eventbus"
	events "github.com/graphmount/graphmount/internal/events"
	language "github.com/graphmount/graphmount/internal/language"
)

// Engine executes GraphQL requests against a schema and resolver graph.
// It owns both exclusively; adapters hold a non-owning reference and never
// mutate them. The Engine is read-only after construction and safe for
// concurrent Execute calls. It introduces no parallelism of its own: each
// request runs on the goroutine the host framework handed it.
type Engine struct {
	schema    *language.Schema
	resolvers *Resolvers
}

// New builds an Engine from a validated schema and a populated resolver
// registry. The registry must not be mutated after this call.
func New(schema *language.Schema, resolvers *Resolvers) *Engine {
	if resolvers == nil {
		resolvers = NewResolvers()
	}
	return &Engine{schema: schema, resolvers: resolvers}
}

// Schema returns the engine's schema for read-only use.
func (e *Engine) Schema() *language.Schema { return e.schema }

// Execute parses, validates, and executes one request.
//
// Requests that fail validation produce a Result with KindValidation errors
// and no data. Resolver failures mid-execution produce a partial Result:
// whatever data completed, plus KindExecution errors. A resolver panic is
// an internal fault: data is discarded and a single KindInternal error is
// returned.
func (e *Engine) Execute(ctx context.Context, req Request) *Result {
	doc, verrs := language.LoadQuery(e.schema, req.Query)
	if len(verrs) > 0 {
		return validationResult(verrs)
	}

	op := doc.Operations.ForName(req.OperationName)
	if op == nil {
		msg := fmt.Sprintf("operation %q not found in document", req.OperationName)
		if req.OperationName == "" {
			msg = "operation name must be provided for a multi-operation document"
		}
		return &Result{Errors: []Error{{Message: msg, Kind: KindValidation}}}
	}

	start := time.Now()
	eventbus.Publish(ctx, events.GraphQLStart{
		Query:         req.Query,
		OperationName: req.OperationName,
		OperationType: string(op.Operation),
	})
	result := e.executeOperation(ctx, req, doc, op)
	errs := make([]error, len(result.Errors))
	for i := range result.Errors {
		errs[i] = result.Errors[i]
	}
	eventbus.Publish(ctx, events.GraphQLFinish{
		Query:         req.Query,
		OperationName: req.OperationName,
		OperationType: string(op.Operation),
		Errors:        errs,
		Duration:      time.Since(start),
	})
	return result
}

func (e *Engine) executeOperation(ctx context.Context, req Request, doc *language.QueryDocument, op *language.OperationDefinition) *Result {
	vars, err := language.VariableValues(e.schema, op, copyVariables(req.Variables))
	if err != nil {
		return validationResult(language.AsErrorList(err))
	}

	var rootType *language.Definition
	switch op.Operation {
	case language.Query:
		rootType = e.schema.Query
	case language.Mutation:
		rootType = e.schema.Mutation
	default:
		return &Result{Errors: []Error{{
			Message: fmt.Sprintf("%s operations are not supported by this transport", op.Operation),
			Kind:    KindValidation,
		}}}
	}
	if rootType == nil {
		return &Result{Errors: []Error{{
			Message: fmt.Sprintf("schema does not define a root %s type", op.Operation),
			Kind:    KindValidation,
		}}}
	}

	state := &executionState{
		ctx:       withMetadata(ctx, req.Metadata),
		schema:    e.schema,
		resolvers: e.resolvers,
		document:  doc,
		variables: vars,
	}

	data := state.executeSelectionSet(rootType, op.SelectionSet, nil, Path{})
	if state.internalFault != nil {
		return &Result{Errors: []Error{*state.internalFault}}
	}
	return &Result{Data: data, Errors: state.errors}
}

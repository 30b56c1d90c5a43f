package language

import (
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

// ParseQuery parses a GraphQL operation document without validating it.
func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses and validates SDL into an executable schema, with the
// built-in scalar, directive, and introspection definitions preloaded.
func LoadSchema(name, source string) (*Schema, error) {
	return gqlparser.LoadSchema(&ast.Source{Name: name, Input: source})
}

// LoadQuery parses an operation document and validates it against the
// schema. On success every field selection carries its definition, which
// execution relies on for argument coercion.
func LoadQuery(schema *Schema, source string) (*QueryDocument, ErrorList) {
	return gqlparser.LoadQuery(schema, source)
}

// Validate validates an already-parsed operation document against the schema.
func Validate(schema *Schema, doc *QueryDocument) ErrorList {
	return validator.Validate(schema, doc)
}

// VariableValues coerces raw variable values against the operation's
// variable definitions, applying defaults and rejecting missing non-null
// variables.
func VariableValues(schema *Schema, op *OperationDefinition, variables map[string]any) (map[string]any, error) {
	coerced, err := validator.VariableValues(schema, op, variables)
	if err != nil {
		return nil, err
	}
	return coerced, nil
}

// AsErrorList normalizes err into an ErrorList.
func AsErrorList(err error) ErrorList {
	if err == nil {
		return nil
	}
	if list, ok := err.(ErrorList); ok {
		return list
	}
	if ge, ok := err.(*Error); ok {
		return ErrorList{ge}
	}
	return ErrorList{gqlerror.Wrap(err)}
}

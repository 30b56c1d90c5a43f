package language

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

type (
	Schema              = ast.Schema
	QueryDocument       = ast.QueryDocument
	OperationDefinition = ast.OperationDefinition
	SelectionSet        = ast.SelectionSet
	Selection           = ast.Selection
	Field               = ast.Field
	InlineFragment      = ast.InlineFragment
	FragmentDefinition  = ast.FragmentDefinition
	FragmentSpread      = ast.FragmentSpread
	Directive           = ast.Directive
	DirectiveList       = ast.DirectiveList
	ArgumentList        = ast.ArgumentList
	Argument            = ast.Argument
	Value               = ast.Value
	FieldDefinition     = ast.FieldDefinition
	ArgumentDefinition  = ast.ArgumentDefinition
	EnumValueDefinition = ast.EnumValueDefinition
	Type                = ast.Type
	Definition          = ast.Definition
	DirectiveDefinition = ast.DirectiveDefinition
	Position            = ast.Position
)

type (
	Error     = gqlerror.Error
	ErrorList = gqlerror.List
)

type DefinitionKind = ast.DefinitionKind

type Operation = ast.Operation

const (
	Query        Operation = ast.Query
	Mutation     Operation = ast.Mutation
	Subscription Operation = ast.Subscription

	Object      DefinitionKind = ast.Object
	Interface   DefinitionKind = ast.Interface
	Union       DefinitionKind = ast.Union
	Scalar      DefinitionKind = ast.Scalar
	Enum        DefinitionKind = ast.Enum
	InputObject DefinitionKind = ast.InputObject
)

// NamedType returns the unwrapped named type of t.
func NamedType(t *Type) string {
	if t == nil {
		return ""
	}
	return t.Name()
}

// IsNonNull reports whether t is a Non-Null wrapper.
func IsNonNull(t *Type) bool { return t != nil && t.NonNull }

// IsList reports whether t is a list after stripping a Non-Null wrapper.
func IsList(t *Type) bool { return t != nil && t.Elem != nil && t.NamedType == "" }

// Unwrap strips one Non-Null wrapper, or returns the list element type.
func Unwrap(t *Type) *Type {
	if t == nil {
		return nil
	}
	if t.NonNull {
		return &Type{NamedType: t.NamedType, Elem: t.Elem, Position: t.Position}
	}
	return t.Elem
}

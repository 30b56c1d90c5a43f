package engine

import (
	"context"
	"fmt"
	"reflect"

	language "github.com/graphmount/graphmount/internal/language"
)

// executionState holds the per-request state. One request runs on one
// goroutine, so no locking is needed here; the shared schema and resolver
// registry are read-only.
type executionState struct {
	ctx       context.Context
	schema    *language.Schema
	resolvers *Resolvers
	document  *language.QueryDocument
	variables map[string]any

	errors        []Error
	internalFault *Error
}

func (s *executionState) addError(message string, path Path) {
	s.errors = append(s.errors, Error{Message: message, Path: path, Kind: KindExecution})
}

func (s *executionState) addResolverError(err error, path Path) {
	if ge, ok := err.(*Error); ok {
		e := *ge
		if e.Kind == "" {
			e.Kind = KindExecution
		}
		if e.Path == nil {
			e.Path = path
		}
		s.errors = append(s.errors, e)
		return
	}
	s.addError(err.Error(), path)
}

// executeSelectionSet executes one object level. It returns nil when a
// non-null child nullified the whole object; at the root that nullifies the
// entire data payload.
func (s *executionState) executeSelectionSet(objectType *language.Definition, selectionSet language.SelectionSet, objectValue any, path Path) map[string]any {
	grouped := collectFields(s, objectType, selectionSet)
	result := make(map[string]any, len(grouped.fields))

	for _, cf := range grouped.orderedFields() {
		field := cf.Fields[0]
		fieldPath := appendPath(path, cf.ResponseName)

		if field.Name == "__typename" {
			result[cf.ResponseName] = objectType.Name
			continue
		}

		fieldValue := s.executeField(objectType, objectValue, cf.Fields, fieldPath)

		if language.IsNonNull(field.Definition.Type) && isNullish(fieldValue) {
			return nil
		}
		if isNullish(fieldValue) {
			result[cf.ResponseName] = nil
		} else {
			result[cf.ResponseName] = fieldValue
		}
	}
	return result
}

func (s *executionState) executeField(objectType *language.Definition, objectValue any, fields []*language.Field, path Path) (value any) {
	field := fields[0]

	defer func() {
		if r := recover(); r != nil {
			s.internalFault = &Error{
				Message: fmt.Sprintf("internal fault resolving %s.%s: %v", objectType.Name, field.Name, r),
				Path:    path,
				Kind:    KindInternal,
			}
			value = nil
		}
	}()

	args := field.ArgumentMap(s.variables)
	resolved, err := s.resolvers.resolve(s.ctx, objectType.Name, field.Name, objectValue, args)
	if err != nil {
		s.addResolverError(err, path)
		return nil
	}
	return s.completeValue(field.Definition.Type, fields, resolved, path)
}

// completeValue completes a resolved value against its declared type,
// recording located errors and propagating nulls through Non-Null wrappers.
func (s *executionState) completeValue(fieldType *language.Type, fields []*language.Field, result any, path Path) any {
	if language.IsNonNull(fieldType) {
		if isNullish(result) {
			if !s.hasErrorAtPath(path) {
				s.addError(fmt.Sprintf("cannot return null for non-nullable field %s", pathString(path)), path)
			}
			return nil
		}
		completed := s.completeValue(language.Unwrap(fieldType), fields, result, path)
		if isNullish(completed) {
			// Error already recorded deeper; only propagate.
			return nil
		}
		return completed
	}

	if isNullish(result) {
		return nil
	}

	if language.IsList(fieldType) {
		return s.completeListValue(fieldType, fields, result, path)
	}

	namedType := language.NamedType(fieldType)
	typeDef := s.schema.Types[namedType]
	if typeDef == nil {
		s.addError(fmt.Sprintf("unknown type %s", namedType), path)
		return nil
	}

	switch typeDef.Kind {
	case language.Scalar, language.Enum:
		serialized, err := s.resolvers.serializeLeaf(namedType, result)
		if err != nil {
			s.addResolverError(err, path)
			return nil
		}
		return serialized
	case language.Object:
		return s.executeSelectionSet(typeDef, mergeSelectionSets(fields), result, path)
	case language.Interface, language.Union:
		return s.completeAbstractValue(namedType, fields, result, path)
	default:
		s.addError(fmt.Sprintf("cannot complete value of kind %s", typeDef.Kind), path)
		return nil
	}
}

func (s *executionState) completeListValue(listType *language.Type, fields []*language.Field, result any, path Path) any {
	items, ok := asSlice(result)
	if !ok {
		s.addError(fmt.Sprintf("expected list value, got %T", result), path)
		return nil
	}

	elemType := listType.Elem
	completed := make([]any, len(items))
	for i, item := range items {
		v := s.completeValue(elemType, fields, item, appendPath(path, i))
		if language.IsNonNull(elemType) && isNullish(v) {
			// A null element in a [T!] list nullifies the list itself.
			return nil
		}
		completed[i] = v
	}
	return completed
}

func (s *executionState) completeAbstractValue(abstractType string, fields []*language.Field, result any, path Path) any {
	typeName, err := s.resolvers.resolveType(s.ctx, abstractType, result)
	if err != nil {
		s.addResolverError(err, path)
		return nil
	}
	typeDef := s.schema.Types[typeName]
	if typeDef == nil || typeDef.Kind != language.Object {
		s.addError(fmt.Sprintf("abstract type %s resolved to %q, which is not an object type", abstractType, typeName), path)
		return nil
	}
	if !possibleType(s.schema, abstractType, typeName) {
		s.addError(fmt.Sprintf("%s is not a possible type of %s", typeName, abstractType), path)
		return nil
	}
	return s.executeSelectionSet(typeDef, mergeSelectionSets(fields), result, path)
}

func (s *executionState) hasErrorAtPath(path Path) bool {
	for _, e := range s.errors {
		if reflect.DeepEqual(e.Path, path) {
			return true
		}
	}
	return false
}

func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}

func appendPath(path Path, elem any) Path {
	next := make(Path, len(path)+1)
	copy(next, path)
	next[len(path)] = elem
	return next
}

func pathString(path Path) string {
	out := ""
	for i, elem := range path {
		switch v := elem.(type) {
		case string:
			if i > 0 {
				out += "."
			}
			out += v
		case int:
			out += fmt.Sprintf("[%d]", v)
		}
	}
	return out
}

func asSlice(v any) ([]any, bool) {
	if direct, ok := v.([]any); ok {
		return direct, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// isNullish reports nil interfaces and typed nils.
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

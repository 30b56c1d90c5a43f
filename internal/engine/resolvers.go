package engine

import (
	"context"
	"encoding/base64"
	"fmt"
)

// ResolverFunc produces the value of a single field. source is the parent
// object value (nil for root fields); args are coerced argument values.
type ResolverFunc func(ctx context.Context, source any, args map[string]any) (any, error)

// TypeResolverFunc maps a value of an abstract type (interface or union) to
// the name of its concrete object type.
type TypeResolverFunc func(ctx context.Context, value any) (string, error)

// ScalarFunc serializes a custom scalar value into a JSON-safe Go value.
type ScalarFunc func(value any) (any, error)

// Resolvers is the resolver graph for one schema. Populate it before
// constructing the Engine; it must not be mutated afterwards, which keeps
// concurrent Execute calls lock-free.
type Resolvers struct {
	fields  map[string]ResolverFunc
	types   map[string]TypeResolverFunc
	scalars map[string]ScalarFunc
}

func NewResolvers() *Resolvers {
	return &Resolvers{
		fields:  make(map[string]ResolverFunc),
		types:   make(map[string]TypeResolverFunc),
		scalars: make(map[string]ScalarFunc),
	}
}

// Register binds fn as the resolver for objectType.field.
func (r *Resolvers) Register(objectType, field string, fn ResolverFunc) *Resolvers {
	r.fields[objectType+"."+field] = fn
	return r
}

// RegisterType binds fn as the concrete-type resolver for an abstract type.
func (r *Resolvers) RegisterType(abstractType string, fn TypeResolverFunc) *Resolvers {
	r.types[abstractType] = fn
	return r
}

// RegisterScalar binds fn as the serializer for a custom scalar.
func (r *Resolvers) RegisterScalar(scalarType string, fn ScalarFunc) *Resolvers {
	r.scalars[scalarType] = fn
	return r
}

// Field returns the registered resolver for objectType.field, or nil.
func (r *Resolvers) Field(objectType, field string) ResolverFunc {
	return r.fields[objectType+"."+field]
}

// resolve runs the registered resolver, falling back to map-key lookup on
// the source value the way dynamic GraphQL servers conventionally do.
func (r *Resolvers) resolve(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	if fn := r.Field(objectType, field); fn != nil {
		return fn(ctx, source, args)
	}
	switch src := source.(type) {
	case map[string]any:
		return src[field], nil
	case nil:
		return nil, fmt.Errorf("no resolver registered for %s.%s", objectType, field)
	default:
		return nil, fmt.Errorf("no resolver registered for %s.%s (source %T)", objectType, field, source)
	}
}

// resolveType determines the concrete type of an abstract-typed value,
// falling back to a "__typename" key on map values.
func (r *Resolvers) resolveType(ctx context.Context, abstractType string, value any) (string, error) {
	if fn := r.types[abstractType]; fn != nil {
		return fn(ctx, value)
	}
	if m, ok := value.(map[string]any); ok {
		if name, ok := m["__typename"].(string); ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("cannot resolve concrete type for abstract type %s", abstractType)
}

// serializeLeaf coerces a scalar or enum value into a JSON-safe Go value.
func (r *Resolvers) serializeLeaf(typeName string, value any) (any, error) {
	if fn := r.scalars[typeName]; fn != nil {
		return fn(value)
	}
	switch v := value.(type) {
	case nil:
		return nil, nil
	case string, bool, int, int32, int64, float32, float64, uint, uint32, uint64:
		return v, nil
	case []byte:
		return base64.StdEncoding.EncodeToString(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return nil, fmt.Errorf("cannot serialize value of type %T as %s", value, typeName)
	}
}

// Package introspection resolves the __schema and __type meta fields from a
// gqlparser schema. It registers plain resolvers on the engine's registry so
// introspection queries flow through normal execution.
package introspection

import (
	"context"
	"sort"

	engine "github.com/graphmount/graphmount/internal/engine"
	language "github.com/graphmount/graphmount/internal/language"
)

// Register installs introspection resolvers for schema onto r. Call it
// before constructing the engine; skip it to disable introspection.
func Register(r *engine.Resolvers, schema *language.Schema) {
	reg := &registry{schema: schema}
	reg.install(r)
}

type registry struct {
	schema *language.Schema
}

// typeRef represents a (possibly wrapped) type reference. Exactly one of
// def or wrap is set.
type typeRef struct {
	def  *language.Definition
	wrap *language.Type
}

type fieldRef struct {
	def *language.FieldDefinition
}

type inputValueRef struct {
	def *language.ArgumentDefinition
}

type enumValueRef struct {
	def *language.EnumValueDefinition
}

type directiveRef struct {
	def *language.DirectiveDefinition
}

func (reg *registry) install(r *engine.Resolvers) {
	root := reg.schema.Query
	if root == nil {
		return
	}

	r.Register(root.Name, "__schema", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return reg, nil
	})
	r.Register(root.Name, "__type", func(ctx context.Context, source any, args map[string]any) (any, error) {
		name, _ := args["name"].(string)
		if def, ok := reg.schema.Types[name]; ok {
			return typeRef{def: def}, nil
		}
		return nil, nil
	})

	reg.installSchemaType(r)
	reg.installTypeType(r)
	reg.installFieldType(r)
	reg.installInputValueType(r)
	reg.installEnumValueType(r)
	reg.installDirectiveType(r)
}

func (reg *registry) installSchemaType(r *engine.Resolvers) {
	r.Register("__Schema", "description", nilResolver)
	r.Register("__Schema", "types", func(ctx context.Context, source any, args map[string]any) (any, error) {
		names := make([]string, 0, len(reg.schema.Types))
		for name := range reg.schema.Types {
			names = append(names, name)
		}
		sort.Strings(names)
		out := make([]any, len(names))
		for i, name := range names {
			out[i] = typeRef{def: reg.schema.Types[name]}
		}
		return out, nil
	})
	r.Register("__Schema", "queryType", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return rootRef(reg.schema.Query), nil
	})
	r.Register("__Schema", "mutationType", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return rootRef(reg.schema.Mutation), nil
	})
	r.Register("__Schema", "subscriptionType", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return rootRef(reg.schema.Subscription), nil
	})
	r.Register("__Schema", "directives", func(ctx context.Context, source any, args map[string]any) (any, error) {
		names := make([]string, 0, len(reg.schema.Directives))
		for name := range reg.schema.Directives {
			names = append(names, name)
		}
		sort.Strings(names)
		out := make([]any, len(names))
		for i, name := range names {
			out[i] = directiveRef{def: reg.schema.Directives[name]}
		}
		return out, nil
	})
}

func (reg *registry) installTypeType(r *engine.Resolvers) {
	r.Register("__Type", "kind", func(ctx context.Context, source any, args map[string]any) (any, error) {
		t := source.(typeRef)
		if t.wrap != nil {
			if t.wrap.NonNull {
				return "NON_NULL", nil
			}
			return "LIST", nil
		}
		return string(t.def.Kind), nil
	})
	r.Register("__Type", "name", func(ctx context.Context, source any, args map[string]any) (any, error) {
		t := source.(typeRef)
		if t.wrap != nil {
			return nil, nil
		}
		return t.def.Name, nil
	})
	r.Register("__Type", "description", func(ctx context.Context, source any, args map[string]any) (any, error) {
		t := source.(typeRef)
		if t.wrap != nil {
			return nil, nil
		}
		return orNil(t.def.Description), nil
	})
	r.Register("__Type", "fields", func(ctx context.Context, source any, args map[string]any) (any, error) {
		t := source.(typeRef)
		if t.wrap != nil || (t.def.Kind != language.Object && t.def.Kind != language.Interface) {
			return nil, nil
		}
		includeDeprecated, _ := args["includeDeprecated"].(bool)
		var out []any
		for _, f := range t.def.Fields {
			if isMetaName(f.Name) {
				continue
			}
			if !includeDeprecated && deprecated(f.Directives) {
				continue
			}
			out = append(out, fieldRef{def: f})
		}
		return out, nil
	})
	r.Register("__Type", "interfaces", func(ctx context.Context, source any, args map[string]any) (any, error) {
		t := source.(typeRef)
		if t.wrap != nil || (t.def.Kind != language.Object && t.def.Kind != language.Interface) {
			return nil, nil
		}
		out := make([]any, 0, len(t.def.Interfaces))
		for _, name := range t.def.Interfaces {
			if def, ok := reg.schema.Types[name]; ok {
				out = append(out, typeRef{def: def})
			}
		}
		return out, nil
	})
	r.Register("__Type", "possibleTypes", func(ctx context.Context, source any, args map[string]any) (any, error) {
		t := source.(typeRef)
		if t.wrap != nil || (t.def.Kind != language.Interface && t.def.Kind != language.Union) {
			return nil, nil
		}
		possible := reg.schema.PossibleTypes[t.def.Name]
		out := make([]any, 0, len(possible))
		for _, def := range possible {
			out = append(out, typeRef{def: def})
		}
		return out, nil
	})
	r.Register("__Type", "enumValues", func(ctx context.Context, source any, args map[string]any) (any, error) {
		t := source.(typeRef)
		if t.wrap != nil || t.def.Kind != language.Enum {
			return nil, nil
		}
		includeDeprecated, _ := args["includeDeprecated"].(bool)
		var out []any
		for _, ev := range t.def.EnumValues {
			if !includeDeprecated && deprecated(ev.Directives) {
				continue
			}
			out = append(out, enumValueRef{def: ev})
		}
		return out, nil
	})
	r.Register("__Type", "inputFields", func(ctx context.Context, source any, args map[string]any) (any, error) {
		t := source.(typeRef)
		if t.wrap != nil || t.def.Kind != language.InputObject {
			return nil, nil
		}
		out := make([]any, 0, len(t.def.Fields))
		for _, f := range t.def.Fields {
			out = append(out, inputValueRef{def: &language.ArgumentDefinition{
				Name:         f.Name,
				Description:  f.Description,
				Type:         f.Type,
				DefaultValue: f.DefaultValue,
			}})
		}
		return out, nil
	})
	r.Register("__Type", "ofType", func(ctx context.Context, source any, args map[string]any) (any, error) {
		t := source.(typeRef)
		if t.wrap == nil {
			return nil, nil
		}
		if t.wrap.NonNull {
			inner := *t.wrap
			inner.NonNull = false
			return reg.refFor(&inner), nil
		}
		return reg.refFor(t.wrap.Elem), nil
	})
	r.Register("__Type", "specifiedByURL", nilResolver)
}

func (reg *registry) installFieldType(r *engine.Resolvers) {
	r.Register("__Field", "name", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return source.(fieldRef).def.Name, nil
	})
	r.Register("__Field", "description", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return orNil(source.(fieldRef).def.Description), nil
	})
	r.Register("__Field", "args", func(ctx context.Context, source any, args map[string]any) (any, error) {
		defs := source.(fieldRef).def.Arguments
		out := make([]any, len(defs))
		for i, a := range defs {
			out[i] = inputValueRef{def: a}
		}
		return out, nil
	})
	r.Register("__Field", "type", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return reg.refFor(source.(fieldRef).def.Type), nil
	})
	r.Register("__Field", "isDeprecated", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return deprecated(source.(fieldRef).def.Directives), nil
	})
	r.Register("__Field", "deprecationReason", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return deprecationReason(source.(fieldRef).def.Directives), nil
	})
}

func (reg *registry) installInputValueType(r *engine.Resolvers) {
	r.Register("__InputValue", "name", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return source.(inputValueRef).def.Name, nil
	})
	r.Register("__InputValue", "description", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return orNil(source.(inputValueRef).def.Description), nil
	})
	r.Register("__InputValue", "type", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return reg.refFor(source.(inputValueRef).def.Type), nil
	})
	r.Register("__InputValue", "defaultValue", func(ctx context.Context, source any, args map[string]any) (any, error) {
		dv := source.(inputValueRef).def.DefaultValue
		if dv == nil {
			return nil, nil
		}
		return dv.String(), nil
	})
}

func (reg *registry) installEnumValueType(r *engine.Resolvers) {
	r.Register("__EnumValue", "name", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return source.(enumValueRef).def.Name, nil
	})
	r.Register("__EnumValue", "description", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return orNil(source.(enumValueRef).def.Description), nil
	})
	r.Register("__EnumValue", "isDeprecated", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return deprecated(source.(enumValueRef).def.Directives), nil
	})
	r.Register("__EnumValue", "deprecationReason", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return deprecationReason(source.(enumValueRef).def.Directives), nil
	})
}

func (reg *registry) installDirectiveType(r *engine.Resolvers) {
	r.Register("__Directive", "name", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return source.(directiveRef).def.Name, nil
	})
	r.Register("__Directive", "description", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return orNil(source.(directiveRef).def.Description), nil
	})
	r.Register("__Directive", "locations", func(ctx context.Context, source any, args map[string]any) (any, error) {
		locs := source.(directiveRef).def.Locations
		out := make([]any, len(locs))
		for i, loc := range locs {
			out[i] = string(loc)
		}
		return out, nil
	})
	r.Register("__Directive", "args", func(ctx context.Context, source any, args map[string]any) (any, error) {
		defs := source.(directiveRef).def.Arguments
		out := make([]any, len(defs))
		for i, a := range defs {
			out[i] = inputValueRef{def: a}
		}
		return out, nil
	})
	r.Register("__Directive", "isRepeatable", func(ctx context.Context, source any, args map[string]any) (any, error) {
		return source.(directiveRef).def.IsRepeatable, nil
	})
}

// refFor wraps an AST type reference, pointing named types at their
// definitions and keeping NON_NULL / LIST wrappers intact.
func (reg *registry) refFor(t *language.Type) any {
	if t == nil {
		return nil
	}
	if t.NonNull || t.NamedType == "" {
		return typeRef{wrap: t}
	}
	def, ok := reg.schema.Types[t.NamedType]
	if !ok {
		return nil
	}
	return typeRef{def: def}
}

func rootRef(def *language.Definition) any {
	if def == nil {
		return nil
	}
	return typeRef{def: def}
}

func deprecated(directives language.DirectiveList) bool {
	return directives.ForName("deprecated") != nil
}

func deprecationReason(directives language.DirectiveList) any {
	d := directives.ForName("deprecated")
	if d == nil {
		return nil
	}
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw
	}
	return "No longer supported"
}

func orNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isMetaName(name string) bool {
	return len(name) >= 2 && name[0] == '_' && name[1] == '_'
}

func nilResolver(ctx context.Context, source any, args map[string]any) (any, error) {
	return nil, nil
}

package engine

import (
	language "github.com/graphmount/graphmount/internal/language"
)

// collectedFieldMap groups selections by response name while preserving the
// order they first appear in the query.
type collectedFieldMap struct {
	fields []collectedField
	index  map[string]int
}

type collectedField struct {
	ResponseName string
	Fields       []*language.Field
}

func newCollectedFieldMap() *collectedFieldMap {
	return &collectedFieldMap{index: make(map[string]int)}
}

func (cfm *collectedFieldMap) add(responseName string, field *language.Field) {
	if idx, ok := cfm.index[responseName]; ok {
		cfm.fields[idx].Fields = append(cfm.fields[idx].Fields, field)
		return
	}
	cfm.index[responseName] = len(cfm.fields)
	cfm.fields = append(cfm.fields, collectedField{
		ResponseName: responseName,
		Fields:       []*language.Field{field},
	})
}

func (cfm *collectedFieldMap) orderedFields() []collectedField { return cfm.fields }

// collectFields flattens a selection set for objectType, expanding fragments
// whose type condition matches and honoring @skip / @include.
func collectFields(s *executionState, objectType *language.Definition, selectionSet language.SelectionSet) *collectedFieldMap {
	grouped := newCollectedFieldMap()
	collectFieldsImpl(s, objectType, selectionSet, grouped, map[string]bool{})
	return grouped
}

func collectFieldsImpl(s *executionState, objectType *language.Definition, selectionSet language.SelectionSet, grouped *collectedFieldMap, visited map[string]bool) {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if !shouldIncludeNode(s, sel.Directives) {
				continue
			}
			responseName := sel.Alias
			if responseName == "" {
				responseName = sel.Name
			}
			grouped.add(responseName, sel)

		case *language.InlineFragment:
			if !shouldIncludeNode(s, sel.Directives) {
				continue
			}
			if !fragmentApplies(s.schema, sel.TypeCondition, objectType) {
				continue
			}
			collectFieldsImpl(s, objectType, sel.SelectionSet, grouped, visited)

		case *language.FragmentSpread:
			if !shouldIncludeNode(s, sel.Directives) {
				continue
			}
			if visited[sel.Name] {
				continue
			}
			visited[sel.Name] = true

			def := s.document.Fragments.ForName(sel.Name)
			if def == nil {
				continue
			}
			if !fragmentApplies(s.schema, def.TypeCondition, objectType) {
				continue
			}
			if !shouldIncludeNode(s, def.Directives) {
				continue
			}
			collectFieldsImpl(s, objectType, def.SelectionSet, grouped, visited)
		}
	}
}

// fragmentApplies reports whether a fragment with the given type condition
// selects into objectType, either directly or because objectType is a
// possible type of the condition's interface or union.
func fragmentApplies(schema *language.Schema, typeCondition string, objectType *language.Definition) bool {
	if typeCondition == "" || typeCondition == objectType.Name {
		return true
	}
	for _, possible := range schema.PossibleTypes[typeCondition] {
		if possible.Name == objectType.Name {
			return true
		}
	}
	return false
}

func possibleType(schema *language.Schema, abstractType, typeName string) bool {
	for _, possible := range schema.PossibleTypes[abstractType] {
		if possible.Name == typeName {
			return true
		}
	}
	return false
}

func shouldIncludeNode(s *executionState, directives language.DirectiveList) bool {
	if skip := directives.ForName("skip"); skip != nil {
		if cond, ok := skip.ArgumentMap(s.variables)["if"].(bool); ok && cond {
			return false
		}
	}
	if include := directives.ForName("include"); include != nil {
		if cond, ok := include.ArgumentMap(s.variables)["if"].(bool); ok && !cond {
			return false
		}
	}
	return true
}

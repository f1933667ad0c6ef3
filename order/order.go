// Package order compiles client-supplied ordering requests into stable
// comparators over typed entities.
//
// An ordering is requested either as an enum token such as "date_ASC",
// "viewCount_DESC" or "promoted", or as an input object with a field name and
// a direction. Each entity type publishes a closed table of sortable fields;
// requests naming anything else leave the upstream order untouched.
package order

import (
	"slices"
	"strings"
)

// Direction is the sort direction of a field ordering.
type Direction string

const (
	// ASC sorts smaller values first.
	ASC Direction = "ASC"
	// DESC sorts larger values first.
	DESC Direction = "DESC"
)

// PromotedToken is the enum token selecting promoted-first ordering.
const PromotedToken = "promoted"

// Spec is a parsed ordering request. The zero Spec means "keep upstream order".
type Spec struct {
	Field     string
	Direction Direction
	Promoted  bool
}

// IsZero reports whether s requests no ordering at all.
func (s Spec) IsZero() bool {
	return s == Spec{}
}

// String returns the enum token form of s.
func (s Spec) String() string {
	if s.Promoted {
		return PromotedToken
	}
	if s.IsZero() {
		return ""
	}
	return s.Field + "_" + string(s.Direction)
}

// ParseToken parses an enum token of the form <field>_ASC, <field>_DESC or
// "promoted".
func ParseToken(token string) (Spec, bool) {
	if token == PromotedToken {
		return Spec{Promoted: true}, true
	}

	for _, dir := range []Direction{ASC, DESC} {
		if field, ok := strings.CutSuffix(token, "_"+string(dir)); ok && field != "" {
			return Spec{Field: field, Direction: dir}, true
		}
	}
	return Spec{}, false
}

// NewSpec builds a Spec from the input-object form. The direction is matched
// case-insensitively and defaults to ASC when empty.
func NewSpec(field, direction string) (Spec, bool) {
	if field == "" {
		return Spec{}, false
	}

	switch Direction(strings.ToUpper(direction)) {
	case ASC, "":
		return Spec{Field: field, Direction: ASC}, true
	case DESC:
		return Spec{Field: field, Direction: DESC}, true
	default:
		return Spec{}, false
	}
}

// Accessor extracts the sort key of one field.
type Accessor[T any] func(T) Key

// Field binds a public field name to its accessor.
type Field[T any] struct {
	Name string
	Key  Accessor[T]
}

// Fields is the closed table of sortable fields for an entity type.
type Fields[T any] struct {
	fields   []Field[T]
	promoted func(T) bool
}

// NewFields creates a field table. promoted may be nil for entity types that
// do not support promoted-first ordering.
func NewFields[T any](promoted func(T) bool, fields ...Field[T]) Fields[T] {
	return Fields[T]{fields: fields, promoted: promoted}
}

// Names returns the sortable field names in declaration order.
func (f Fields[T]) Names() []string {
	names := make([]string, len(f.fields))
	for i, field := range f.fields {
		names[i] = field.Name
	}
	return names
}

// Lookup returns the accessor registered for name.
func (f Fields[T]) Lookup(name string) (Accessor[T], bool) {
	for _, field := range f.fields {
		if field.Name == name {
			return field.Key, true
		}
	}
	return nil, false
}

// SupportsPromoted reports whether the table accepts the promoted ordering.
func (f Fields[T]) SupportsPromoted() bool {
	return f.promoted != nil
}

// Tokens lists every enum token accepted by the table, in declaration order.
func (f Fields[T]) Tokens() []string {
	tokens := make([]string, 0, 2*len(f.fields)+1)
	for _, field := range f.fields {
		tokens = append(tokens, field.Name+"_"+string(ASC), field.Name+"_"+string(DESC))
	}
	if f.promoted != nil {
		tokens = append(tokens, PromotedToken)
	}
	return tokens
}

// Compare is a three-way comparator suitable for slices.SortStableFunc.
type Compare[T any] func(a, b T) int

func keepOrder[T any](T, T) int { return 0 }

// Compile builds the comparator for spec. When spec names a field the table
// does not know (or asks for promoted on a table without it), the returned
// comparator treats all items as equal and ok is false.
func Compile[T any](spec Spec, fields Fields[T]) (compare Compare[T], ok bool) {
	if spec.Promoted {
		if fields.promoted == nil {
			return keepOrder[T], false
		}
		isPromoted := fields.promoted
		return func(a, b T) int {
			pa, pb := isPromoted(a), isPromoted(b)
			switch {
			case pa == pb:
				return 0
			case pa:
				return -1
			default:
				return 1
			}
		}, true
	}

	key, found := fields.Lookup(spec.Field)
	if !found || (spec.Direction != ASC && spec.Direction != DESC) {
		return keepOrder[T], false
	}

	desc := spec.Direction == DESC
	return func(a, b T) int {
		ka, kb := key(a), key(b)
		switch {
		case ka.IsMissing() && kb.IsMissing():
			return 0
		case ka.IsMissing():
			return 1
		case kb.IsMissing():
			return -1
		}

		c := compareKeys(ka, kb)
		if desc {
			return -c
		}
		return c
	}, true
}

// Sort returns a stably sorted copy of items. The input slice is not modified.
// ok is false when spec could not be compiled; items are then returned in
// their original order.
func Sort[T any](items []T, spec Spec, fields Fields[T]) (sorted []T, ok bool) {
	sorted = slices.Clone(items)
	if spec.IsZero() {
		return sorted, true
	}

	compare, ok := Compile(spec, fields)
	if ok {
		slices.SortStableFunc(sorted, compare)
	}
	return sorted, ok
}

// Package keycase rewrites the keys of decoded JSON records to camelCase.
//
// Upstream APIs answer in snake_case (and occasionally kebab-case or
// PascalCase); the GraphQL surface is camelCase. Normalize converts every key
// of every mapping reachable through mappings. Values inside arrays are left
// untouched, so nested collections keep their upstream keys until a resolver
// promotes them to nodes and normalizes them with NormalizeAll.
package keycase

import "github.com/ettle/strcase"

// Record is a decoded JSON object.
type Record = map[string]any

// Key converts a single key to camelCase.
func Key(key string) string {
	return strcase.ToCamel(key)
}

// Normalize returns a copy of record with all keys camelCased.
// Nested mappings are converted recursively; arrays are copied as-is.
// The input is never modified. A nil record yields nil.
func Normalize(record Record) Record {
	if record == nil {
		return nil
	}

	out := make(Record, len(record))
	for key, value := range record {
		out[Key(key)] = normalizeValue(value)
	}
	return out
}

// NormalizeAll normalizes each element of records.
func NormalizeAll(records []Record) []Record {
	if records == nil {
		return nil
	}

	out := make([]Record, len(records))
	for i, record := range records {
		out[i] = Normalize(record)
	}
	return out
}

// Records extracts the mapping elements of a decoded JSON array.
// Non-mapping elements are skipped.
func Records(value any) []Record {
	items, ok := value.([]any)
	if !ok {
		return nil
	}

	out := make([]Record, 0, len(items))
	for _, item := range items {
		if record, ok := item.(map[string]any); ok {
			out = append(out, record)
		}
	}
	return out
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return Normalize(v)
	case []any:
		// arrays are copied shallowly: element keys stay as upstream sent them
		cp := make([]any, len(v))
		copy(cp, v)
		return cp
	default:
		return value
	}
}

// Package media defines the entities served by the gateway: conferences,
// events, recordings, CDN mirrors and news entries.
//
// Entities are decoded from normalized (camelCase) upstream records. Nested
// collections such as a conference's events stay in their raw upstream form
// until they are requested, then get normalized and decoded on demand.
// Every entity implements Node, so the GraphQL layer can dispatch on the Go
// type instead of guessing from payload contents.
package media

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/barnslig/mediacccde-graphql/errors"
	"github.com/barnslig/mediacccde-graphql/nodeid"
	"github.com/barnslig/mediacccde-graphql/pkg/keycase"
)

// Node is an entity addressable by global id.
type Node interface {
	Kind() nodeid.Kind
	NaturalKey() string
}

// GlobalID returns the global id of n.
func GlobalID(n Node) string {
	return nodeid.Encode(n.Kind(), n.NaturalKey())
}

// Decode converts a normalized record into an entity of type T.
// Numbers are accepted for string fields and vice versa, because upstream
// payloads are not consistent about it.
func Decode[T any](record keycase.Record) (T, error) {
	var out T

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &out,
	})
	if err != nil {
		return out, errors.WrapFatal(err, "media", "Decode", "create decoder")
	}

	if err := decoder.Decode(record); err != nil {
		return out, errors.WrapInvalid(fmt.Errorf("%w: %v", errors.ErrInvalidData, err),
			"media", "Decode", fmt.Sprintf("decode %T", out))
	}
	return out, nil
}

// DecodeAll normalizes raw upstream records and decodes each into T.
func DecodeAll[T any](raw []keycase.Record) ([]T, error) {
	out := make([]T, 0, len(raw))
	for _, record := range keycase.NormalizeAll(raw) {
		item, err := Decode[T](record)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

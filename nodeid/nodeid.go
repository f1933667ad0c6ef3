// Package nodeid implements global object identification.
//
// Every entity exposed through the Node interface carries a global id of the
// form "<kind>-<naturalKey>", e.g. "event-5cb0b1a9-..." or
// "mirror-berlin-ak". Natural keys may themselves contain dashes, so decoding
// matches the longest known kind prefix.
package nodeid

import (
	"strings"

	"github.com/barnslig/mediacccde-graphql/pkg/keycase"
)

// Kind is the entity type encoded in a global id.
type Kind string

// Known kinds.
const (
	Conference Kind = "conference"
	Event      Kind = "event"
	Recording  Kind = "recording"
	Mirror     Kind = "mirror"
	News       Kind = "news"
)

const separator = "-"

// NewsNamespace is the prefix of Atom entry ids published by the news feed.
const NewsNamespace = "tag:media.ccc.de,"

// Kinds returns all known kinds.
func Kinds() []Kind {
	return []Kind{Conference, Event, Recording, Mirror, News}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case Conference, Event, Recording, Mirror, News:
		return true
	default:
		return false
	}
}

// Encode builds the global id for a natural key.
func Encode(kind Kind, key string) string {
	return string(kind) + separator + key
}

// Decode splits a global id into kind and natural key. ok is false when no
// known prefix matches or the key is empty; callers treat that as a lookup
// miss, not as an error.
func Decode(id string) (kind Kind, key string, ok bool) {
	best := -1
	for _, k := range Kinds() {
		prefix := string(k) + separator
		if strings.HasPrefix(id, prefix) && len(prefix) > best {
			best = len(prefix)
			kind = k
		}
	}

	if best < 0 || len(id) == best {
		return "", "", false
	}
	return kind, id[best:], true
}

// ResolveKind determines the kind of an untagged, normalized upstream record.
// The checks run in a fixed order: news namespace id, mirror sync timestamp,
// then the REST collection named in the record's url.
func ResolveKind(record keycase.Record) (Kind, bool) {
	if id, ok := record["id"].(string); ok && strings.HasPrefix(id, NewsNamespace) {
		return News, true
	}

	if _, ok := record["lastSync"]; ok {
		return Mirror, true
	}

	if url, ok := record["url"].(string); ok {
		switch {
		case strings.Contains(url, "/public/conferences/"):
			return Conference, true
		case strings.Contains(url, "/public/events/"):
			return Event, true
		case strings.Contains(url, "/public/recordings/"):
			return Recording, true
		}
	}

	return "", false
}

// LastSegment returns the final path segment of url, which is the natural key
// of conferences and recordings.
func LastSegment(url string) string {
	url = strings.TrimRight(url, "/")
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}

package order

import (
	"cmp"
	"strings"
	"time"
)

type keyKind int

const (
	kindMissing keyKind = iota
	kindBool
	kindNumber
	kindTime
	kindString
)

// Key is a sortable value extracted from one field of an entity.
// Keys of the same kind compare naturally; keys of different kinds compare
// by kind so mixed data still yields a total order. Missing keys always sort
// after present ones.
type Key struct {
	kind keyKind
	b    bool
	n    float64
	t    time.Time
	s    string
}

// Missing is the key of an absent or null field.
var Missing = Key{}

// Bool returns a key for a boolean; false sorts before true.
func Bool(b bool) Key {
	return Key{kind: kindBool, b: b}
}

// Number returns a key for a numeric value.
func Number[N int | int64 | float64](n N) Key {
	return Key{kind: kindNumber, n: float64(n)}
}

// Time returns a key for an instant. The zero time is Missing.
func Time(t time.Time) Key {
	if t.IsZero() {
		return Missing
	}
	return Key{kind: kindTime, t: t}
}

// String returns a key for a string. Date-like strings are parsed and compared
// as instants, so "2019-12-27T10:00:00+01:00" and "2019-12-27T09:30:00Z"
// order by the moment they denote. Empty strings are Missing.
func String(s string) Key {
	if s == "" {
		return Missing
	}
	if t, ok := ParseDate(s); ok {
		return Key{kind: kindTime, t: t}
	}
	return Key{kind: kindString, s: s}
}

// IsMissing reports whether the key carries no value.
func (k Key) IsMissing() bool {
	return k.kind == kindMissing
}

// compareKeys orders present keys ascending. Missing handling is done by the
// caller because it does not flip with the direction.
func compareKeys(a, b Key) int {
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}

	switch a.kind {
	case kindBool:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		default:
			return 1
		}
	case kindNumber:
		return cmp.Compare(a.n, b.n)
	case kindTime:
		return a.t.Compare(b.t)
	case kindString:
		return strings.Compare(a.s, b.s)
	default:
		return 0
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses the ISO 8601 variants found in upstream payloads.
func ParseDate(s string) (time.Time, bool) {
	// cheap rejection of obviously non-date strings
	if len(s) < len("2006-01-02") || s[4] != '-' || s[7] != '-' {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

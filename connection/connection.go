// Package connection builds paginated GraphQL connection results.
//
// A connection carries one page of nodes, the total number of nodes
// available and flags telling the client whether more pages exist in either
// direction. Pages are addressed by offset and limit. Some upstream endpoints
// only understand page numbers, so ToPage translates an offset/limit pair
// into the equivalent page request.
package connection

import (
	"fmt"

	"github.com/barnslig/mediacccde-graphql/errors"
)

// DefaultLimit is the page size used when a client does not ask for one.
const DefaultLimit = 25

// PageInfo tells the client whether neighbouring pages exist.
type PageInfo struct {
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// Connection is one page of nodes.
type Connection[T any] struct {
	Nodes      []T      `json:"nodes"`
	PageInfo   PageInfo `json:"pageInfo"`
	TotalCount int      `json:"totalCount"`
}

// New wraps nodes into a connection. The flags are derived from the request
// window only: hasNextPage = offset+limit < total and
// hasPreviousPage = offset > 0 && total > 0. An offset past the end therefore
// still reports a previous page.
func New[T any](nodes []T, total, offset, limit int) Connection[T] {
	if nodes == nil {
		nodes = []T{}
	}

	return Connection[T]{
		Nodes: nodes,
		PageInfo: PageInfo{
			HasNextPage:     offset+limit < total,
			HasPreviousPage: offset > 0 && total > 0,
		},
		TotalCount: total,
	}
}

// FromAll paginates a complete node list locally. The page is the clamped
// window [offset, offset+limit); windows outside the list are empty.
func FromAll[T any](nodes []T, offset, limit int) Connection[T] {
	total := len(nodes)

	start := min(max(offset, 0), total)
	end := min(start+max(limit, 0), total)

	page := make([]T, end-start)
	copy(page, nodes[start:end])

	return New(page, total, offset, limit)
}

// FromUpstream wraps a page the upstream already sliced. total is the
// upstream's own count of all nodes.
func FromUpstream[T any](page []T, total, offset, limit int) Connection[T] {
	return New(page, total, offset, limit)
}

// Map converts the node type of c while keeping its page info and total.
func Map[T, U any](c Connection[T], fn func(T) U) Connection[U] {
	nodes := make([]U, len(c.Nodes))
	for i, node := range c.Nodes {
		nodes[i] = fn(node)
	}

	return Connection[U]{
		Nodes:      nodes,
		PageInfo:   c.PageInfo,
		TotalCount: c.TotalCount,
	}
}

// Validate rejects negative pagination arguments.
func Validate(offset, limit int) error {
	if offset < 0 {
		return errors.InvalidArgument(fmt.Sprintf("offset must not be negative, got %d", offset), "offset")
	}
	if limit < 0 {
		return errors.InvalidArgument(fmt.Sprintf("limit must not be negative, got %d", limit), "limit")
	}
	return nil
}

// Page is a page-number request for upstreams paginated by page.
type Page struct {
	Number  int `url:"page"`
	PerPage int `url:"per_page"`
}

// ToPage translates offset/limit into a page request. The offset must fall on
// a page boundary, otherwise the request cannot be expressed and an invalid
// argument error naming "offset" is returned.
func ToPage(offset, limit int) (Page, error) {
	if err := Validate(offset, limit); err != nil {
		return Page{}, err
	}
	if limit == 0 {
		return Page{}, errors.InvalidArgument("limit must be greater than zero", "limit")
	}
	if offset%limit != 0 {
		return Page{}, errors.InvalidArgument("Offset is not divisible by limit without remainder.", "offset")
	}

	return Page{Number: offset/limit + 1, PerPage: limit}, nil
}

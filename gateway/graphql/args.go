package graphql

import (
	"fmt"

	"github.com/barnslig/mediacccde-graphql/connection"
	"github.com/barnslig/mediacccde-graphql/errors"
	"github.com/barnslig/mediacccde-graphql/order"
)

// Default page sizes.
const (
	DefaultLimit        = connection.DefaultLimit
	DefaultRelatedLimit = 3
)

// PageArgs is an offset/limit window.
type PageArgs struct {
	Offset int
	Limit  int
}

// ListArgs is a window over a locally sorted list.
type ListArgs struct {
	PageArgs
	Order order.Spec
}

func intArg(args map[string]interface{}, name string, fallback int) (int, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return fallback, nil
	}
	n, ok := raw.(int)
	if !ok {
		return 0, errors.InvalidArgument(fmt.Sprintf("%s must be an integer", name), name)
	}
	return n, nil
}

// parsePageArgs reads offset and limit. Omitted values fall back to 0 and
// defaultLimit; negative values are rejected.
func parsePageArgs(args map[string]interface{}, defaultLimit int) (PageArgs, error) {
	offset, err := intArg(args, "offset", 0)
	if err != nil {
		return PageArgs{}, err
	}
	limit, err := intArg(args, "limit", defaultLimit)
	if err != nil {
		return PageArgs{}, err
	}
	if err := connection.Validate(offset, limit); err != nil {
		return PageArgs{}, err
	}
	return PageArgs{Offset: offset, Limit: limit}, nil
}

// parseListArgs reads the window plus the ordering. The orderBy input object
// takes precedence over the order enum token when both are given.
func parseListArgs(args map[string]interface{}) (ListArgs, error) {
	page, err := parsePageArgs(args, DefaultLimit)
	if err != nil {
		return ListArgs{}, err
	}
	list := ListArgs{PageArgs: page}

	if input, ok := args["orderBy"].(map[string]interface{}); ok {
		field, _ := input["field"].(string)
		direction, _ := input["direction"].(string)
		spec, ok := order.NewSpec(field, direction)
		if !ok {
			return ListArgs{}, errors.InvalidArgument(
				fmt.Sprintf("cannot order by %q %q", field, direction), "orderBy")
		}
		list.Order = spec
		return list, nil
	}

	if token, ok := args["order"].(string); ok && token != "" {
		spec, ok := order.ParseToken(token)
		if !ok {
			return ListArgs{}, errors.InvalidArgument(fmt.Sprintf("unknown order %q", token), "order")
		}
		list.Order = spec
	}
	return list, nil
}

// Package errors provides classified error handling for the gateway.
//
// # Overview
//
// Errors fall into three classes: Transient (temporary, retryable), Invalid
// (bad input or malformed upstream data, do not retry) and Fatal (bad
// configuration, stop). Upstream fetches are retried only for transient
// errors, and the GraphQL layer maps each class to an error code.
//
// # Wrapping
//
// Wrap errors with the component, method and action that failed:
//
//	if err := decode(body); err != nil {
//	    return errors.WrapInvalid(err, "Client", "Fetch", "decode response body")
//	}
//
// The message follows "component.method: action failed: cause" and the
// original error stays reachable through errors.Is and errors.As.
//
// # Invalid arguments
//
// Request arguments that cannot be served are reported with InvalidArgument,
// which records the argument names:
//
//	return errors.InvalidArgument("offset must be divisible by limit", "offset")
//
// InvalidArgs extracts the names again so the GraphQL layer can expose them
// as the invalidArgs extension.
//
// # Lookup misses
//
// ErrNotFound marks an entity that does not exist upstream. Resolvers turn it
// into a null result instead of a GraphQL error.
package errors

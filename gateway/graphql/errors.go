package graphql

import (
	"context"
	stderrors "errors"

	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/barnslig/mediacccde-graphql/errors"
)

// Error codes reported in the "code" extension.
const (
	CodeBadUserInput            = "BAD_USER_INPUT"
	CodeInvalidInput            = "INVALID_INPUT"
	CodeTimeout                 = "TIMEOUT"
	CodeCancelled               = "CANCELLED"
	CodeUpstreamUnavailable     = "UPSTREAM_UNAVAILABLE"
	CodeUpstreamInvalidResponse = "UPSTREAM_INVALID_RESPONSE"
	CodeQueryTooDeep            = "QUERY_TOO_DEEP"
	CodeInternal                = "INTERNAL_ERROR"
)

// resolverError is returned from resolvers. The executor copies Extensions
// into the response; Unwrap keeps the classified cause reachable.
type resolverError struct {
	gql   *gqlerror.Error
	cause error
}

func (e *resolverError) Error() string {
	return e.gql.Message
}

func (e *resolverError) Extensions() map[string]interface{} {
	return e.gql.Extensions
}

func (e *resolverError) Unwrap() error {
	return e.cause
}

func newResolverError(cause error, message, code, operation string) *resolverError {
	return &resolverError{
		gql: &gqlerror.Error{
			Message: message,
			Extensions: map[string]interface{}{
				"code":      code,
				"operation": operation,
			},
		},
		cause: cause,
	}
}

// wrapError converts a classified error into a GraphQL error with a code
// extension. Messages never carry upstream URLs or addresses.
func wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var already *resolverError
	if stderrors.As(err, &already) {
		return err
	}

	if args, ok := errors.InvalidArgs(err); ok {
		var iae *errors.InvalidArgumentError
		stderrors.As(err, &iae)
		e := newResolverError(err, iae.Message, CodeBadUserInput, operation)
		e.gql.Extensions["invalidArgs"] = args
		return e
	}

	switch {
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, errors.ErrConnectionTimeout):
		return newResolverError(err, "Query timeout exceeded", CodeTimeout, operation)

	case stderrors.Is(err, context.Canceled):
		return newResolverError(err, "Query cancelled", CodeCancelled, operation)

	case stderrors.Is(err, errors.ErrInvalidData), stderrors.Is(err, errors.ErrParsingFailed):
		return newResolverError(err, "Invalid response from upstream", CodeUpstreamInvalidResponse, operation)

	case errors.IsTransient(err):
		e := newResolverError(err, "Upstream temporarily unavailable", CodeUpstreamUnavailable, operation)
		e.gql.Extensions["retryable"] = true
		return e

	case errors.IsInvalid(err):
		return newResolverError(err, "Invalid input", CodeInvalidInput, operation)
	}

	return newResolverError(err, "Internal server error", CodeInternal, operation)
}

// requestError builds an error for the top-level "errors" list of a request
// that never reached execution.
func requestError(code, format string, args ...interface{}) *gqlerror.Error {
	e := gqlerror.Errorf(format, args...)
	e.Extensions = map[string]interface{}{"code": code}
	return e
}

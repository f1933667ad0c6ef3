package graphql

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/barnslig/mediacccde-graphql/errors"
	gwhttp "github.com/barnslig/mediacccde-graphql/gateway/http"
)

// maxBodyBytes bounds GraphQL request bodies.
const maxBodyBytes = 1 << 20

// Request is a GraphQL request as sent over HTTP.
type Request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
}

// Handler executes GraphQL requests against a schema.
type Handler struct {
	schema   graphql.Schema
	timeout  time.Duration
	maxDepth int
}

// NewHandler creates the GraphQL endpoint handler.
func NewHandler(schema graphql.Schema, timeout time.Duration, maxDepth int) *Handler {
	return &Handler{schema: schema, timeout: timeout, maxDepth: maxDepth}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := parseRequest(r)
	if err != nil {
		writeRequestErrors(w, gwhttp.StatusFor(err), requestError(CodeBadUserInput, "%s", errorDetail(err)))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeRequestErrors(w, http.StatusBadRequest, requestError(CodeBadUserInput, "query is required"))
		return
	}

	if depth, ok := queryDepth(req.Query); ok && h.maxDepth > 0 && depth > h.maxDepth {
		writeRequestErrors(w, http.StatusBadRequest,
			requestError(CodeQueryTooDeep, "query depth %d exceeds the maximum of %d", depth, h.maxDepth))
		return
	}

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	result := graphql.Do(graphql.Params{
		Schema:         h.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})

	if result.HasErrors() {
		gwhttp.LoggerFrom(r.Context()).Debug("GraphQL request returned errors",
			"operation", req.OperationName,
			"errors", len(result.Errors))
	}

	gwhttp.WriteJSON(w, http.StatusOK, result)
}

// errorDetail returns the client-facing message of a request parsing error.
func errorDetail(err error) string {
	var iae *errors.InvalidArgumentError
	if stderrors.As(err, &iae) {
		return iae.Message
	}
	return gwhttp.SanitizeError(err)
}

func writeRequestErrors(w http.ResponseWriter, status int, errs ...*gqlerror.Error) {
	gwhttp.WriteJSON(w, status, map[string]interface{}{
		"errors": gqlerror.List(errs),
	})
}

// parseRequest reads a GET query string, a JSON body or an
// application/graphql body.
func parseRequest(r *http.Request) (Request, error) {
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		req := Request{
			Query:         q.Get("query"),
			OperationName: q.Get("operationName"),
		}
		if raw := q.Get("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
				return Request{}, errors.InvalidArgument("variables must be a JSON object", "variables")
			}
		}
		return req, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return Request{}, err
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/graphql" {
		return Request{Query: string(body)}, nil
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return Request{}, errors.InvalidArgument(fmt.Sprintf("invalid JSON body: %v", err), "body")
	}
	return req, nil
}

// queryDepth returns the deepest field nesting of any operation in query.
// Introspection fields are not counted. ok is false when the query does not
// parse; the executor reports syntax errors itself.
func queryDepth(query string) (int, bool) {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return 0, false
	}

	deepest := 0
	for _, op := range doc.Operations {
		deepest = max(deepest, selectionDepth(doc, op.SelectionSet, map[string]bool{}))
	}
	return deepest, true
}

func selectionDepth(doc *ast.QueryDocument, set ast.SelectionSet, visiting map[string]bool) int {
	deepest := 0
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			if strings.HasPrefix(s.Name, "__") {
				continue
			}
			deepest = max(deepest, 1+selectionDepth(doc, s.SelectionSet, visiting))

		case *ast.InlineFragment:
			deepest = max(deepest, selectionDepth(doc, s.SelectionSet, visiting))

		case *ast.FragmentSpread:
			frag := doc.Fragments.ForName(s.Name)
			if frag == nil || visiting[s.Name] {
				continue
			}
			visiting[s.Name] = true
			deepest = max(deepest, selectionDepth(doc, frag.SelectionSet, visiting))
			delete(visiting, s.Name)
		}
	}
	return deepest
}

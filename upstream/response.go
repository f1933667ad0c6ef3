package upstream

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/barnslig/mediacccde-graphql/errors"
	"github.com/barnslig/mediacccde-graphql/pkg/keycase"
)

// TotalHeader carries the total item count of paginated endpoints.
const TotalHeader = "total"

// Response is a successful upstream reply.
type Response struct {
	Body     []byte `json:"body"`
	RawTotal string `json:"total,omitempty"`
	Cached   bool   `json:"-"`
}

// Total parses the total item count header. A missing or non-numeric header
// is an upstream data error.
func (r *Response) Total() (int, error) {
	raw := strings.TrimSpace(r.RawTotal)
	if raw == "" {
		return 0, errors.WrapInvalid(fmt.Errorf("%w: missing %q header", errors.ErrInvalidData, TotalHeader),
			"Response", "Total", "read total count")
	}

	total, err := strconv.Atoi(raw)
	if err != nil || total < 0 {
		return 0, errors.WrapInvalid(fmt.Errorf("%w: %q header is not a count: %q", errors.ErrInvalidData, TotalHeader, raw),
			"Response", "Total", "read total count")
	}
	return total, nil
}

// Record decodes the body as a JSON object. Keys are returned as sent.
func (r *Response) Record() (keycase.Record, error) {
	var record keycase.Record
	if err := json.Unmarshal(r.Body, &record); err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrParsingFailed, err),
			"Response", "Record", "decode JSON body")
	}
	if record == nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: body is not a JSON object", errors.ErrInvalidData),
			"Response", "Record", "decode JSON body")
	}
	return record, nil
}

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"expensetracker/internal/core"
)

const maxBodyBytes = 64 << 10

// requiredTransactionFields are checked in this order so the first missing
// one is reported.
var requiredTransactionFields = []string{"description", "amount", "type", "category"}

// ValidationError is a client mistake reported back verbatim with 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ParseNewTransaction decodes and validates a create request body.
func ParseNewTransaction(r *http.Request) (core.NewTransaction, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return core.NewTransaction{}, invalid("Could not read request body")
	}
	if len(body) > maxBodyBytes {
		return core.NewTransaction{}, invalid("Request body too large")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return core.NewTransaction{}, invalid("Invalid JSON body")
	}

	for _, name := range requiredTransactionFields {
		if v, ok := fields[name]; !ok || v == nil {
			return core.NewTransaction{}, invalid("Missing required field: %s", name)
		}
	}

	var nt core.NewTransaction

	desc, ok := fields["description"].(string)
	if !ok {
		return core.NewTransaction{}, invalid("description must be a string")
	}
	nt.Description = desc

	nt.Amount, err = core.ParseAmount(fields["amount"])
	if err != nil {
		return core.NewTransaction{}, invalid("Invalid amount: must be a positive number")
	}

	typ, ok := fields["type"].(string)
	if !ok {
		return core.NewTransaction{}, invalid("type must be a string")
	}
	nt.Type, err = core.ParseTransactionType(typ)
	if err != nil {
		return core.NewTransaction{}, invalid("Invalid type: must be income or expense")
	}

	category, ok := fields["category"].(string)
	if !ok {
		return core.NewTransaction{}, invalid("category must be a string")
	}
	nt.Category = category

	switch d := fields["date"].(type) {
	case nil:
	case string:
		if strings.TrimSpace(d) != "" {
			nt.Date, err = core.ParseDate(d)
			if err != nil {
				return core.NewTransaction{}, invalid("Invalid date: expected YYYY-MM-DD")
			}
		}
	default:
		return core.NewTransaction{}, invalid("Invalid date: expected YYYY-MM-DD")
	}

	if err := nt.Validate(); err != nil {
		return core.NewTransaction{}, invalid("%s", validationMessage(err))
	}
	return nt, nil
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyDescription):
		return "Description cannot be empty"
	case errors.Is(err, core.ErrEmptyCategory):
		return "Category cannot be empty"
	case errors.Is(err, core.ErrInvalidAmount):
		return "Invalid amount: must be a positive number"
	case errors.Is(err, core.ErrInvalidType):
		return "Invalid type: must be income or expense"
	default:
		return err.Error()
	}
}

// ParseListFilter reads type and limit from the query. A malformed limit
// is ignored; an unknown type is passed through and matches nothing.
func ParseListFilter(q url.Values) (core.TransactionType, int) {
	typ := core.TransactionType(strings.TrimSpace(q.Get("type")))

	limit := 0
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return typ, limit
}

// ParseTransactionID reads the {id} path value.
func ParseTransactionID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

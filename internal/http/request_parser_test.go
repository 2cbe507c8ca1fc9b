package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
)

func parseBody(t *testing.T, body string) (core.NewTransaction, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return ParseNewTransaction(req)
}

func TestParseNewTransaction_Valid(t *testing.T) {
	nt, err := parseBody(t, `{"description":"  Lunch\u0007 ","amount":12.5,"type":"expense","category":"Food","date":"2024-01-05"}`)
	require.NoError(t, err)
	assert.Equal(t, "  Lunch\u0007 ", nt.Description, "stored as submitted")
	assert.Equal(t, 12.5, nt.Amount)
	assert.Equal(t, core.Expense, nt.Type)
	assert.Equal(t, "Food", nt.Category)
	assert.Equal(t, "2024-01-05", nt.Date.String())
}

func TestParseNewTransaction_StringAmountAndNoDate(t *testing.T) {
	nt, err := parseBody(t, `{"description":"Pay","amount":"1000,50","type":"income","category":"Salary"}`)
	require.NoError(t, err)
	assert.Equal(t, 1000.5, nt.Amount)
	assert.True(t, nt.Date.IsZero())

	nt, err = parseBody(t, `{"description":"Pay","amount":"7","type":"income","category":"Salary","date":""}`)
	require.NoError(t, err)
	assert.True(t, nt.Date.IsZero())
}

func TestParseNewTransaction_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"not json", `description=x`, "Invalid JSON body"},
		{"json array", `[1,2]`, "Invalid JSON body"},
		{"json null", `null`, "Invalid JSON body"},
		{"missing description", `{"amount":1,"type":"expense","category":"Food"}`, "Missing required field: description"},
		{"missing amount", `{"description":"x","type":"expense","category":"Food"}`, "Missing required field: amount"},
		{"null type", `{"description":"x","amount":1,"type":null,"category":"Food"}`, "Missing required field: type"},
		{"missing category", `{"description":"x","amount":1,"type":"expense"}`, "Missing required field: category"},
		{"non numeric amount", `{"description":"x","amount":"abc","type":"expense","category":"Food"}`, "Invalid amount: must be a positive number"},
		{"zero amount", `{"description":"x","amount":0,"type":"expense","category":"Food"}`, "Invalid amount: must be a positive number"},
		{"negative amount", `{"description":"x","amount":-4,"type":"expense","category":"Food"}`, "Invalid amount: must be a positive number"},
		{"nan amount", `{"description":"x","amount":"NaN","type":"expense","category":"Food"}`, "Invalid amount: must be a positive number"},
		{"bool amount", `{"description":"x","amount":true,"type":"expense","category":"Food"}`, "Invalid amount: must be a positive number"},
		{"bad type", `{"description":"x","amount":1,"type":"transfer","category":"Food"}`, "Invalid type: must be income or expense"},
		{"bad date", `{"description":"x","amount":1,"type":"expense","category":"Food","date":"05/01/2024"}`, "Invalid date: expected YYYY-MM-DD"},
		{"numeric date", `{"description":"x","amount":1,"type":"expense","category":"Food","date":20240105}`, "Invalid date: expected YYYY-MM-DD"},
		{"blank description", `{"description":"   ","amount":1,"type":"expense","category":"Food"}`, "Description cannot be empty"},
		{"blank category", `{"description":"x","amount":1,"type":"expense","category":" "}`, "Category cannot be empty"},
		{"numeric description", `{"description":5,"amount":1,"type":"expense","category":"Food"}`, "description must be a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseBody(t, tt.body)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.message, verr.Message)
		})
	}
}

func TestParseNewTransaction_BodyTooLarge(t *testing.T) {
	big := `{"description":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	_, err := parseBody(t, big)
	require.Error(t, err)
	assert.Equal(t, "Request body too large", err.Error())
}

func TestParseListFilter(t *testing.T) {
	tests := []struct {
		query string
		typ   core.TransactionType
		limit int
	}{
		{"", "", 0},
		{"type=income", core.Income, 0},
		{"limit=5", "", 5},
		{"limit=abc", "", 0},
		{"limit=-3", "", 0},
		{"type=expense&limit=1", core.Expense, 1},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			typ, limit := ParseListFilter(q)
			assert.Equal(t, tt.typ, typ)
			assert.Equal(t, tt.limit, limit)
		})
	}
}

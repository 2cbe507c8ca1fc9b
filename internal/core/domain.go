package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// DateLayout is the ISO calendar form used on the wire and in storage.
const DateLayout = "2006-01-02"

type (
	TransactionType string

	Date struct {
		time.Time
	}

	// Transaction is a recorded ledger entry. Entries are immutable once stored.
	Transaction struct {
		ID          int64           `json:"id"`
		Description string          `json:"description"`
		Amount      float64         `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`
		Date        Date            `json:"date"`
		CreatedAt   time.Time       `json:"-"`
	}

	// NewTransaction carries the caller-supplied fields of a transaction
	// before the store assigns an id. A zero Date means today.
	NewTransaction struct {
		Description string
		Amount      float64
		Type        TransactionType
		Category    string
		Date        Date
	}

	Category struct {
		ID   int64
		Name string
		Type TransactionType
	}
)

var (
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyCategory    = errors.New("empty category")
)

// DefaultCategories is the vocabulary seeded into a fresh store.
var DefaultCategories = []Category{
	{Name: "Salary", Type: Income},
	{Name: "Freelance", Type: Income},
	{Name: "Investment", Type: Income},
	{Name: "Gift", Type: Income},
	{Name: "Other Income", Type: Income},
	{Name: "Food", Type: Expense},
	{Name: "Transportation", Type: Expense},
	{Name: "Entertainment", Type: Expense},
	{Name: "Bills", Type: Expense},
	{Name: "Shopping", Type: Expense},
	{Name: "Healthcare", Type: Expense},
	{Name: "Education", Type: Expense},
	{Name: "Other", Type: Expense},
}

// IsValid reports whether t is one of the known transaction types.
func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Expense:
		return true
	default:
		return false
	}
}

func (t TransactionType) String() string {
	return string(t)
}

// ParseTransactionType normalizes s and checks it against the known types.
func ParseTransactionType(s string) (TransactionType, error) {
	t := TransactionType(strings.TrimSpace(s))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current local calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks the invariants a transaction must satisfy before it is stored.
func (t NewTransaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if !t.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, string(t.Type))
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// WithDefaults returns a copy with the date defaulted to today when unset.
func (t NewTransaction) WithDefaults() NewTransaction {
	if t.Date.IsZero() {
		t.Date = Today()
	}
	return t
}

package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseTransactionType(t *testing.T) {
	for _, s := range []string{"income", "expense", " expense "} {
		if _, err := ParseTransactionType(s); err != nil {
			t.Fatalf("%q expected ok, got %v", s, err)
		}
	}
	for _, s := range []string{"", "Income", "transfer"} {
		_, err := ParseTransactionType(s)
		if !errors.Is(err, ErrInvalidType) {
			t.Fatalf("%q expected ErrInvalidType, got %v", s, err)
		}
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, 1, 5)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2024-01-05"` {
		t.Fatalf("unexpected json %s", b)
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("round trip mismatch: %v != %v", back, d)
	}

	if err := json.Unmarshal([]byte(`"05/01/2024"`), &back); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestNewTransactionValidate(t *testing.T) {
	good := NewTransaction{
		Description: "Groceries",
		Amount:      12.5,
		Type:        Expense,
		Category:    "Food",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := map[string]struct {
		tx  NewTransaction
		err error
	}{
		"empty description": {NewTransaction{Description: " ", Amount: 1, Type: Expense, Category: "Food"}, ErrEmptyDescription},
		"zero amount":       {NewTransaction{Description: "a", Amount: 0, Type: Expense, Category: "Food"}, ErrInvalidAmount},
		"bad type":          {NewTransaction{Description: "a", Amount: 1, Type: "transfer", Category: "Food"}, ErrInvalidType},
		"empty category":    {NewTransaction{Description: "a", Amount: 1, Type: Income, Category: ""}, ErrEmptyCategory},
	}
	for name, tc := range bads {
		if err := tc.tx.Validate(); !errors.Is(err, tc.err) {
			t.Fatalf("%s: expected %v, got %v", name, tc.err, err)
		}
	}
}

func TestWithDefaultsUsesToday(t *testing.T) {
	tx := NewTransaction{Description: "a", Amount: 1, Type: Income, Category: "Gift"}.WithDefaults()
	if tx.Date.String() != time.Now().Format(DateLayout) {
		t.Fatalf("expected today, got %s", tx.Date)
	}

	fixed := NewDate(2024, 1, 1)
	tx = NewTransaction{Date: fixed}.WithDefaults()
	if !tx.Date.Equal(fixed.Time) {
		t.Fatalf("explicit date overwritten: %s", tx.Date)
	}
}

func TestBalanceInvariant(t *testing.T) {
	b := NewBalance(100.5, 40.25)
	if b.Balance != b.Income-b.Expenses {
		t.Fatalf("balance %v != %v - %v", b.Balance, b.Income, b.Expenses)
	}
}

func TestDefaultCategoryCounts(t *testing.T) {
	counts := map[TransactionType]int{}
	for _, c := range DefaultCategories {
		counts[c.Type]++
	}
	if counts[Income] != 5 || counts[Expense] != 8 {
		t.Fatalf("unexpected default counts: %v", counts)
	}
}

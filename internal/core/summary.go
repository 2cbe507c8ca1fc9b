package core

// Balance is the income/expense split across every recorded transaction.
type Balance struct {
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Balance  float64 `json:"balance"`
}

// NewBalance derives the net balance from the two totals.
func NewBalance(income, expenses float64) Balance {
	return Balance{
		Income:   income,
		Expenses: expenses,
		Balance:  income - expenses,
	}
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// CategoriesByType lists category names for both transaction types.
type CategoriesByType struct {
	Income  []string `json:"income"`
	Expense []string `json:"expense"`
}

// Of returns the names for a single type.
func (c CategoriesByType) Of(t TransactionType) []string {
	if t == Income {
		return c.Income
	}
	return c.Expense
}

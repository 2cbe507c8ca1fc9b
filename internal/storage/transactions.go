package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"expensetracker/internal/core"
)

// ListOptions narrows a transaction listing. Zero values mean no filter.
type ListOptions struct {
	Type  core.TransactionType
	Limit int
}

// InsertTransaction stores t and returns the id assigned by SQLite.
// The date must already be set; the type is checked by the table constraint.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.NewTransaction) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (description, amount, type, category, date) VALUES (?, ?, ?, ?, ?)`,
		t.Description, t.Amount, string(t.Type), t.Category, t.Date.String())
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"type", t.Type,
		"category", t.Category,
		"date", t.Date.String())

	return id, nil
}

// ListTransactions returns transactions newest date first. Rows sharing a
// date are ordered by id, most recent insert first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, opts ListOptions) ([]core.Transaction, error) {
	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(`SELECT id, description, amount, type, category, date, created_at FROM transactions`)
	if opts.Type != "" {
		query.WriteString(` WHERE type = ?`)
		args = append(args, string(opts.Type))
	}
	query.WriteString(` ORDER BY date DESC, id DESC`)
	if opts.Limit > 0 {
		query.WriteString(` LIMIT ?`)
		args = append(args, opts.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}

	return transactions, nil
}

// GetTransaction returns a single transaction by id, or sql.ErrNoRows.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, description, amount, type, category, date, created_at FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

// DeleteTransaction removes the row with the given id and reports whether
// anything was deleted.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("read affected rows: %w", err)
	}

	return affected > 0, nil
}

// SumByType totals every transaction amount split by type.
func (r *SQLiteRepository) SumByType(ctx context.Context) (income, expenses float64, err error) {
	err = r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount END), 0.0),
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount END), 0.0)
		FROM transactions`).Scan(&income, &expenses)
	if err != nil {
		return 0, 0, fmt.Errorf("sum transactions: %w", err)
	}
	return income, expenses, nil
}

// ExpenseBreakdown sums expense amounts per category, largest first.
func (r *SQLiteRepository) ExpenseBreakdown(ctx context.Context) ([]core.CategoryAmount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category, SUM(amount) AS total
		FROM transactions
		WHERE type = 'expense'
		GROUP BY category
		ORDER BY total DESC, category ASC`)
	if err != nil {
		return nil, fmt.Errorf("query expense breakdown: %w", err)
	}
	defer rows.Close()

	breakdown := make([]core.CategoryAmount, 0)
	for rows.Next() {
		var ca core.CategoryAmount
		if err := rows.Scan(&ca.Category, &ca.Amount); err != nil {
			return nil, fmt.Errorf("scan expense breakdown: %w", err)
		}
		breakdown = append(breakdown, ca)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expense breakdown: %w", err)
	}

	return breakdown, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t         core.Transaction
		txType    string
		date      string
		createdAt string
	)
	if err := row.Scan(&t.ID, &t.Description, &t.Amount, &txType, &t.Category, &date, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return t, err
		}
		return t, fmt.Errorf("scan transaction: %w", err)
	}

	t.Type = core.TransactionType(txType)
	parsed, err := core.ParseDate(date)
	if err != nil {
		return t, fmt.Errorf("transaction %d: %w", t.ID, err)
	}
	t.Date = parsed
	t.CreatedAt = parseTimestamp(createdAt)

	return t, nil
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"expensetracker/internal/core"
)

// SeedDefaultCategories inserts the default vocabulary. Pairs already
// present are left untouched, so calling it on every startup is safe.
func (r *SQLiteRepository) SeedDefaultCategories(ctx context.Context) error {
	var inserted int64
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO categories (name, type) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare seed statement: %w", err)
		}
		defer stmt.Close()

		for _, c := range core.DefaultCategories {
			res, err := stmt.ExecContext(ctx, c.Name, string(c.Type))
			if err != nil {
				return fmt.Errorf("seed category %s/%s: %w", c.Type, c.Name, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += n
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if inserted > 0 {
		slog.InfoContext(ctx, "Seeded default categories", "inserted", inserted)
	}
	return nil
}

// CategoryNames returns the names for one type in alphabetical order.
func (r *SQLiteRepository) CategoryNames(ctx context.Context, t core.TransactionType) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM categories WHERE type = ? ORDER BY name`, string(t))
	if err != nil {
		return nil, fmt.Errorf("query categories for %s: %w", t, err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return names, nil
}

// AllCategories returns both name lists, each in alphabetical order.
func (r *SQLiteRepository) AllCategories(ctx context.Context) (core.CategoriesByType, error) {
	result := core.CategoriesByType{
		Income:  make([]string, 0),
		Expense: make([]string, 0),
	}

	rows, err := r.db.QueryContext(ctx, `SELECT name, type FROM categories ORDER BY type, name`)
	if err != nil {
		return result, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, catType string
		if err := rows.Scan(&name, &catType); err != nil {
			return result, fmt.Errorf("scan category: %w", err)
		}
		switch core.TransactionType(catType) {
		case core.Income:
			result.Income = append(result.Income, name)
		case core.Expense:
			result.Expense = append(result.Expense, name)
		}
	}
	if err := rows.Err(); err != nil {
		return result, fmt.Errorf("iterate categories: %w", err)
	}
	return result, nil
}

// CategoryExists reports whether name is a known category of type t.
func (r *SQLiteRepository) CategoryExists(ctx context.Context, name string, t core.TransactionType) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE name = ? AND type = ?)`, name, string(t)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category %s/%s: %w", t, name, err)
	}
	return exists, nil
}

// CountCategories returns the number of stored categories.
func (r *SQLiteRepository) CountCategories(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return n, nil
}

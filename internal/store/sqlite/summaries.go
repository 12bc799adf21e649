package sqlite

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// SummaryByCategory totals spending per category, largest first. Categories
// missing from the catalog get the default color.
func (s *Store) SummaryByCategory(ctx context.Context, filter domain.TransactionFilter) ([]domain.CategorySummary, error) {
	w := whereBuilder{prefix: "t."}
	w.dateRange(filter)

	query := `
		SELECT t.category, SUM(t.amount) AS total, COUNT(*) AS count,
		       COALESCE(c.color, '` + domain.DefaultCategoryColor + `')
		FROM transactions t
		LEFT JOIN categories c ON c.name = t.category` + w.sql() + `
		GROUP BY t.category
		ORDER BY total DESC`

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("SummaryByCategory: querying: %w", err)
	}
	defer rows.Close()

	out := []domain.CategorySummary{}
	for rows.Next() {
		var cs domain.CategorySummary
		if err := rows.Scan(&cs.Category, &cs.Amount, &cs.Count, &cs.Color); err != nil {
			return nil, fmt.Errorf("SummaryByCategory: scanning row: %w", err)
		}
		out = append(out, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SummaryByCategory: iterating rows: %w", err)
	}
	return out, nil
}

// SummaryByDate totals spending per day, oldest first.
func (s *Store) SummaryByDate(ctx context.Context, filter domain.TransactionFilter) ([]domain.DateSummary, error) {
	var w whereBuilder
	w.dateRange(filter)

	query := `
		SELECT strftime('%Y-%m-%d', date) AS day, SUM(amount), COUNT(*)
		FROM transactions` + w.sql() + `
		GROUP BY day
		ORDER BY day ASC`

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("SummaryByDate: querying: %w", err)
	}
	defer rows.Close()

	out := []domain.DateSummary{}
	for rows.Next() {
		var ds domain.DateSummary
		if err := rows.Scan(&ds.Date, &ds.Total, &ds.Count); err != nil {
			return nil, fmt.Errorf("SummaryByDate: scanning row: %w", err)
		}
		out = append(out, ds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SummaryByDate: iterating rows: %w", err)
	}
	return out, nil
}

// SummaryByPlatform totals spending per platform, largest first.
func (s *Store) SummaryByPlatform(ctx context.Context, filter domain.TransactionFilter) ([]domain.PlatformSummary, error) {
	var w whereBuilder
	w.dateRange(filter)

	query := `
		SELECT COALESCE(platform, '') AS p, SUM(amount) AS total, COUNT(*)
		FROM transactions` + w.sql() + `
		GROUP BY p
		ORDER BY total DESC`

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("SummaryByPlatform: querying: %w", err)
	}
	defer rows.Close()

	out := []domain.PlatformSummary{}
	for rows.Next() {
		var ps domain.PlatformSummary
		if err := rows.Scan(&ps.Platform, &ps.Total, &ps.Count); err != nil {
			return nil, fmt.Errorf("SummaryByPlatform: scanning row: %w", err)
		}
		out = append(out, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("SummaryByPlatform: iterating rows: %w", err)
	}
	return out, nil
}

// Balance reports total expenses in the window. Income is not tracked.
func (s *Store) Balance(ctx context.Context, filter domain.TransactionFilter) (domain.Balance, error) {
	var w whereBuilder
	w.dateRange(filter)

	var expenses float64
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(SUM(amount), 0) FROM transactions"+w.sql(), w.args...).Scan(&expenses)
	if err != nil {
		return domain.Balance{}, fmt.Errorf("Balance: querying: %w", err)
	}
	return domain.Balance{Income: 0, Expenses: expenses, Balance: -expenses}, nil
}

// ListCategories returns the catalog ordered by type then name.
func (s *Store) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, type, COALESCE(color, '`+domain.DefaultCategoryColor+`')
		FROM categories
		ORDER BY type, name
	`)
	if err != nil {
		return nil, fmt.Errorf("ListCategories: querying: %w", err)
	}
	defer rows.Close()

	out := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.Color); err != nil {
			return nil, fmt.Errorf("ListCategories: scanning row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListCategories: iterating rows: %w", err)
	}
	return out, nil
}

// ListPlatforms returns the distinct non-empty platforms, sorted.
func (s *Store) ListPlatforms(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT platform FROM transactions
		WHERE platform IS NOT NULL AND platform != ''
		ORDER BY platform
	`)
	if err != nil {
		return nil, fmt.Errorf("ListPlatforms: querying: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("ListPlatforms: scanning row: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListPlatforms: iterating rows: %w", err)
	}
	return out, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/store"
)

// ReadItems returns the persisted items of a transaction in insertion order.
func (s *Store) ReadItems(ctx context.Context, transactionID int64) ([]domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, transaction_id, name, quantity, unit_price
		FROM items
		WHERE transaction_id = ?
		ORDER BY id ASC
	`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("ReadItems: querying: %w", err)
	}
	defer rows.Close()

	items := []domain.Item{}
	for rows.Next() {
		var it domain.Item
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.Name, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("ReadItems: scanning row: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ReadItems: iterating rows: %w", err)
	}
	return items, nil
}

func (s *Store) getItem(ctx context.Context, id int64) (domain.Item, error) {
	var it domain.Item
	err := s.db.QueryRowContext(ctx, `
		SELECT id, transaction_id, name, quantity, unit_price FROM items WHERE id = ?
	`, id).Scan(&it.ID, &it.TransactionID, &it.Name, &it.Quantity, &it.UnitPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Item{}, fmt.Errorf("getItem: scanning row: %w", err)
	}
	return it, nil
}

// AddItem stores an item against an existing transaction.
func (s *Store) AddItem(ctx context.Context, transactionID int64, p domain.CreateItemParams) (domain.Item, error) {
	if _, err := s.GetTransaction(ctx, transactionID); err != nil {
		return domain.Item{}, err
	}

	qty := p.Quantity
	if qty < 1 {
		qty = 1
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO items (transaction_id, name, quantity, unit_price)
		VALUES (?, ?, ?, ?)
	`, transactionID, p.Name, qty, p.UnitPrice)
	if err != nil {
		return domain.Item{}, fmt.Errorf("AddItem: inserting row: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Item{}, fmt.Errorf("AddItem: reading id: %w", err)
	}
	return s.getItem(ctx, id)
}

// UpdateItem applies the set fields and returns the updated item.
func (s *Store) UpdateItem(ctx context.Context, id int64, p domain.UpdateItemParams) (domain.Item, error) {
	var sets []string
	var args []any
	if p.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *p.Name)
	}
	if p.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *p.Quantity)
	}
	if p.UnitPrice != nil {
		sets = append(sets, "unit_price = ?")
		args = append(args, *p.UnitPrice)
	}

	if len(sets) == 0 {
		return s.getItem(ctx, id)
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx, "UPDATE items SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return domain.Item{}, fmt.Errorf("UpdateItem: updating row: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return domain.Item{}, err
	}
	return s.getItem(ctx, id)
}

// DeleteItem removes an item.
func (s *Store) DeleteItem(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("DeleteItem: deleting row: %w", err)
	}
	return requireAffected(res)
}

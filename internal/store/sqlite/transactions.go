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

const transactionColumns = `id, date, amount, category, description, COALESCE(platform, ''), transaction_type`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var (
		tx   domain.Transaction
		date string
	)
	if err := row.Scan(&tx.ID, &date, &tx.Amount, &tx.Category, &tx.Description, &tx.Platform, &tx.TransactionType); err != nil {
		return domain.Transaction{}, err
	}
	d, err := parseDate(date)
	if err != nil {
		return domain.Transaction{}, err
	}
	tx.Date = d
	return tx, nil
}

// ReadTransactions returns matching transactions, newest date first.
func (s *Store) ReadTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	var w whereBuilder
	w.dateRange(filter)
	if filter.Category != "" {
		w.add("category = ?", filter.Category)
	}
	if filter.Platform != "" {
		w.add("platform = ?", filter.Platform)
	}

	query := "SELECT " + transactionColumns + " FROM transactions" + w.sql() + " ORDER BY date DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("ReadTransactions: querying: %w", err)
	}
	defer rows.Close()

	txs := []domain.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("ReadTransactions: scanning row: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ReadTransactions: iterating rows: %w", err)
	}
	return txs, nil
}

// GetTransaction returns one transaction or store.ErrNotFound.
func (s *Store) GetTransaction(ctx context.Context, id int64) (domain.Transaction, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Transaction{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("GetTransaction: scanning row: %w", err)
	}
	return tx, nil
}

// CreateTransaction records a new expense.
func (s *Store) CreateTransaction(ctx context.Context, p domain.CreateTransactionParams) (domain.Transaction, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (date, amount, category, description, platform, transaction_type)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.Date.String(), p.Amount, p.Category, p.Description, nullIfEmpty(p.Platform), domain.DefaultTransactionType)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("CreateTransaction: inserting row: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("CreateTransaction: reading id: %w", err)
	}
	return s.GetTransaction(ctx, id)
}

// UpdateTransaction applies the set fields and returns the updated row.
func (s *Store) UpdateTransaction(ctx context.Context, id int64, p domain.UpdateTransactionParams) (domain.Transaction, error) {
	var sets []string
	var args []any
	if p.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, p.Date.String())
	}
	if p.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, *p.Amount)
	}
	if p.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *p.Category)
	}
	if p.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *p.Description)
	}
	if p.Platform != nil {
		sets = append(sets, "platform = ?")
		args = append(args, nullIfEmpty(*p.Platform))
	}

	if len(sets) == 0 {
		return s.GetTransaction(ctx, id)
	}

	args = append(args, id)
	res, err := s.db.ExecContext(ctx, "UPDATE transactions SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("UpdateTransaction: updating row: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return domain.Transaction{}, err
	}
	return s.GetTransaction(ctx, id)
}

// DeleteTransaction removes the transaction and its items.
func (s *Store) DeleteTransaction(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("DeleteTransaction: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM items WHERE transaction_id = ?", id); err != nil {
		return fmt.Errorf("DeleteTransaction: deleting items: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("DeleteTransaction: deleting row: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	return tx.Commit()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenAndMigrate(context.Background(), filepath.Join(t.TempDir(), "finance.db"))
	if err != nil {
		t.Fatalf("OpenAndMigrate: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func day(d int) civil.Date {
	return civil.Date{Year: 2024, Month: 3, Day: d}
}

func seed(t *testing.T, s *Store) []domain.Transaction {
	t.Helper()
	params := []domain.CreateTransactionParams{
		{Date: day(1), Amount: 120, Category: "Food & Dining", Description: "Grocery (Milk, Eggs)", Platform: "K PLUS"},
		{Date: day(1), Amount: 45, Category: "Transportation", Description: "BTS", Platform: "Rabbit"},
		{Date: day(3), Amount: 300, Category: "Shopping", Description: "Shirt", Platform: "K PLUS"},
		{Date: day(5), Amount: 80, Category: "Food & Dining", Description: "Lunch"},
		{Date: day(5), Amount: 60, Category: "Pets", Description: "Cat food"},
	}
	var out []domain.Transaction
	for _, p := range params {
		tx, err := s.CreateTransaction(context.Background(), p)
		if err != nil {
			t.Fatalf("CreateTransaction: %v", err)
		}
		out = append(out, tx)
	}
	return out
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)

	n, err := Migrate(context.Background(), s.DB(), "test")
	if err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	if n != 0 {
		t.Errorf("second Migrate applied %d migrations, want 0", n)
	}
}

func TestStatus(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "finance.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	before, err := Status(ctx, s.DB())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	for _, st := range before {
		if st.Applied {
			t.Errorf("%04d_%s applied on a fresh database", st.Version, st.Name)
		}
	}

	if _, err := Migrate(ctx, s.DB(), "test"); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	after, err := Status(ctx, s.DB())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("len(after) = %d, want %d", len(after), len(before))
	}
	for _, st := range after {
		if !st.Applied {
			t.Errorf("%04d_%s not applied after Migrate", st.Version, st.Name)
		}
	}
}

func TestListCategories_Seeded(t *testing.T) {
	s := newTestStore(t)

	cats, err := s.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(cats) != 16 {
		t.Fatalf("len(categories) = %d, want 16", len(cats))
	}
	// expense sorts before income
	if cats[0].Type != "expense" || cats[len(cats)-1].Type != "income" {
		t.Errorf("unexpected ordering: first %+v last %+v", cats[0], cats[len(cats)-1])
	}
	for _, c := range cats {
		if c.Name == "Food & Dining" && c.Color != "#FF6384" {
			t.Errorf("Food & Dining color = %q", c.Color)
		}
	}
}

func TestReadTransactions_Filters(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	from, to := day(2), day(5)

	tests := []struct {
		name   string
		filter domain.TransactionFilter
		want   []string
	}{
		{
			name:   "no filter newest first",
			filter: domain.TransactionFilter{},
			want:   []string{"Cat food", "Lunch", "Shirt", "BTS", "Grocery (Milk, Eggs)"},
		},
		{
			name:   "date range inclusive",
			filter: domain.TransactionFilter{DateFrom: &from, DateTo: &to},
			want:   []string{"Cat food", "Lunch", "Shirt"},
		},
		{
			name:   "category",
			filter: domain.TransactionFilter{Category: "Food & Dining"},
			want:   []string{"Lunch", "Grocery (Milk, Eggs)"},
		},
		{
			name:   "platform and date",
			filter: domain.TransactionFilter{Platform: "K PLUS", DateTo: &from},
			want:   []string{"Grocery (Milk, Eggs)"},
		},
		{
			name:   "no match",
			filter: domain.TransactionFilter{Category: "Housing"},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs, err := s.ReadTransactions(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("ReadTransactions: %v", err)
			}
			if txs == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(txs) != len(tt.want) {
				t.Fatalf("got %d transactions, want %d", len(txs), len(tt.want))
			}
			for i, tx := range txs {
				if tx.Description != tt.want[i] {
					t.Errorf("txs[%d] = %q, want %q", i, tx.Description, tt.want[i])
				}
			}
		})
	}
}

func TestTransactionCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tx, err := s.CreateTransaction(ctx, domain.CreateTransactionParams{Date: day(9), Amount: 99.5, Category: "Food", Description: "Pizza"})
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if tx.ID == 0 || tx.Date != day(9) || tx.Platform != "" || tx.TransactionType != domain.DefaultTransactionType {
		t.Errorf("unexpected created transaction %+v", tx)
	}

	desc := "Pizza (Margherita, Cola)"
	platform := "LINE MAN"
	updated, err := s.UpdateTransaction(ctx, tx.ID, domain.UpdateTransactionParams{Description: &desc, Platform: &platform})
	if err != nil {
		t.Fatalf("UpdateTransaction: %v", err)
	}
	if updated.Description != desc || updated.Platform != platform || updated.Amount != 99.5 {
		t.Errorf("unexpected updated transaction %+v", updated)
	}

	if _, err := s.UpdateTransaction(ctx, 9999, domain.UpdateTransactionParams{Description: &desc}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("update missing: err = %v, want ErrNotFound", err)
	}

	if err := s.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	if _, err := s.GetTransaction(ctx, tx.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("get deleted: err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteTransaction(ctx, tx.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("delete twice: err = %v, want ErrNotFound", err)
	}
}

func TestItems(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	txs := seed(t, s)
	txID := txs[0].ID

	items, err := s.ReadItems(ctx, txID)
	if err != nil {
		t.Fatalf("ReadItems: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Fatalf("expected empty non-nil items, got %#v", items)
	}

	rice, err := s.AddItem(ctx, txID, domain.CreateItemParams{Name: "Rice", Quantity: 2, UnitPrice: 45})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	soap, err := s.AddItem(ctx, txID, domain.CreateItemParams{Name: "Soap"})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if soap.Quantity != 1 {
		t.Errorf("default quantity = %d, want 1", soap.Quantity)
	}

	if _, err := s.AddItem(ctx, 9999, domain.CreateItemParams{Name: "Ghost"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("add to missing transaction: err = %v, want ErrNotFound", err)
	}

	qty := 3
	updated, err := s.UpdateItem(ctx, rice.ID, domain.UpdateItemParams{Quantity: &qty})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.Quantity != 3 || updated.Name != "Rice" {
		t.Errorf("unexpected updated item %+v", updated)
	}

	if err := s.DeleteItem(ctx, soap.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	items, _ = s.ReadItems(ctx, txID)
	if len(items) != 1 || items[0].ID != rice.ID {
		t.Errorf("items after delete = %+v", items)
	}

	// Deleting the transaction removes its items.
	if err := s.DeleteTransaction(ctx, txID); err != nil {
		t.Fatalf("DeleteTransaction: %v", err)
	}
	items, _ = s.ReadItems(ctx, txID)
	if len(items) != 0 {
		t.Errorf("items should be gone with their transaction, got %+v", items)
	}
}

func TestSummaries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seed(t, s)

	byCat, err := s.SummaryByCategory(ctx, domain.TransactionFilter{})
	if err != nil {
		t.Fatalf("SummaryByCategory: %v", err)
	}
	if len(byCat) != 4 {
		t.Fatalf("len(byCat) = %d, want 4", len(byCat))
	}
	if byCat[0].Category != "Shopping" || byCat[0].Amount != 300 || byCat[0].Color != "#FFCE56" {
		t.Errorf("byCat[0] = %+v", byCat[0])
	}
	if byCat[1].Category != "Food & Dining" || byCat[1].Amount != 200 || byCat[1].Count != 2 {
		t.Errorf("byCat[1] = %+v", byCat[1])
	}
	for _, c := range byCat {
		if c.Category == "Pets" && c.Color != domain.DefaultCategoryColor {
			t.Errorf("unknown category color = %q", c.Color)
		}
	}

	byDate, err := s.SummaryByDate(ctx, domain.TransactionFilter{})
	if err != nil {
		t.Fatalf("SummaryByDate: %v", err)
	}
	wantDates := []domain.DateSummary{
		{Date: "2024-03-01", Total: 165, Count: 2},
		{Date: "2024-03-03", Total: 300, Count: 1},
		{Date: "2024-03-05", Total: 140, Count: 2},
	}
	if len(byDate) != len(wantDates) {
		t.Fatalf("byDate = %+v", byDate)
	}
	for i, w := range wantDates {
		if byDate[i] != w {
			t.Errorf("byDate[%d] = %+v, want %+v", i, byDate[i], w)
		}
	}

	byPlatform, err := s.SummaryByPlatform(ctx, domain.TransactionFilter{})
	if err != nil {
		t.Fatalf("SummaryByPlatform: %v", err)
	}
	if byPlatform[0].Platform != "K PLUS" || byPlatform[0].Total != 420 {
		t.Errorf("byPlatform[0] = %+v", byPlatform[0])
	}

	from := day(3)
	bal, err := s.Balance(ctx, domain.TransactionFilter{DateFrom: &from})
	if err != nil {
		t.Fatalf("Balance: %v", err)
	}
	if bal.Income != 0 || bal.Expenses != 440 || bal.Balance != -440 {
		t.Errorf("Balance = %+v", bal)
	}

	platforms, err := s.ListPlatforms(ctx)
	if err != nil {
		t.Fatalf("ListPlatforms: %v", err)
	}
	if len(platforms) != 2 || platforms[0] != "K PLUS" || platforms[1] != "Rabbit" {
		t.Errorf("platforms = %v", platforms)
	}
}

func TestReadMigrations(t *testing.T) {
	migrations, err := readMigrations(migrationFiles)
	if err != nil {
		t.Fatalf("readMigrations: %v", err)
	}
	if len(migrations) < 2 {
		t.Fatalf("expected at least 2 migrations, got %d", len(migrations))
	}
	for i, m := range migrations {
		if m.Version != i+1 {
			t.Errorf("migrations[%d].Version = %d, want %d", i, m.Version, i+1)
		}
		if len(m.Checksum) != 64 {
			t.Errorf("checksum %q is not a sha256 hex digest", m.Checksum)
		}
	}
}

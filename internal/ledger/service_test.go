package ledger

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/analysis"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/items"
	"github.com/dvloznov/finance-insights/internal/store"
)

// MockStore is a store.Store whose reads are driven by Func fields.
type MockStore struct {
	ReadTransactionsFunc  func(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)
	ReadItemsFunc         func(ctx context.Context, transactionID int64) ([]domain.Item, error)
	GetTransactionFunc    func(ctx context.Context, id int64) (domain.Transaction, error)
	SummaryByCategoryFunc func(ctx context.Context, filter domain.TransactionFilter) ([]domain.CategorySummary, error)
}

var _ store.Store = (*MockStore)(nil)

func (m *MockStore) ReadTransactions(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	if m.ReadTransactionsFunc != nil {
		return m.ReadTransactionsFunc(ctx, filter)
	}
	return []domain.Transaction{}, nil
}

func (m *MockStore) ReadItems(ctx context.Context, transactionID int64) ([]domain.Item, error) {
	if m.ReadItemsFunc != nil {
		return m.ReadItemsFunc(ctx, transactionID)
	}
	return []domain.Item{}, nil
}

func (m *MockStore) GetTransaction(ctx context.Context, id int64) (domain.Transaction, error) {
	if m.GetTransactionFunc != nil {
		return m.GetTransactionFunc(ctx, id)
	}
	return domain.Transaction{}, store.ErrNotFound
}

func (m *MockStore) CreateTransaction(ctx context.Context, p domain.CreateTransactionParams) (domain.Transaction, error) {
	return domain.Transaction{}, nil
}

func (m *MockStore) UpdateTransaction(ctx context.Context, id int64, p domain.UpdateTransactionParams) (domain.Transaction, error) {
	return domain.Transaction{}, nil
}

func (m *MockStore) DeleteTransaction(ctx context.Context, id int64) error { return nil }

func (m *MockStore) AddItem(ctx context.Context, transactionID int64, p domain.CreateItemParams) (domain.Item, error) {
	return domain.Item{}, nil
}

func (m *MockStore) UpdateItem(ctx context.Context, id int64, p domain.UpdateItemParams) (domain.Item, error) {
	return domain.Item{}, nil
}

func (m *MockStore) DeleteItem(ctx context.Context, id int64) error { return nil }

func (m *MockStore) SummaryByCategory(ctx context.Context, filter domain.TransactionFilter) ([]domain.CategorySummary, error) {
	if m.SummaryByCategoryFunc != nil {
		return m.SummaryByCategoryFunc(ctx, filter)
	}
	return []domain.CategorySummary{}, nil
}

func (m *MockStore) SummaryByDate(ctx context.Context, filter domain.TransactionFilter) ([]domain.DateSummary, error) {
	return []domain.DateSummary{}, nil
}

func (m *MockStore) SummaryByPlatform(ctx context.Context, filter domain.TransactionFilter) ([]domain.PlatformSummary, error) {
	return []domain.PlatformSummary{}, nil
}

func (m *MockStore) Balance(ctx context.Context, filter domain.TransactionFilter) (domain.Balance, error) {
	return domain.Balance{}, nil
}

func (m *MockStore) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return []domain.Category{}, nil
}

func (m *MockStore) ListPlatforms(ctx context.Context) ([]string, error) { return []string{}, nil }

func (m *MockStore) Close() error { return nil }

// MockAnalyzer records the request it was given.
type MockAnalyzer struct {
	AnalyzeFunc func(ctx context.Context, req analysis.Request) analysis.Result
	Last        analysis.Request
}

func (m *MockAnalyzer) Analyze(ctx context.Context, req analysis.Request) analysis.Result {
	m.Last = req
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, req)
	}
	return analysis.Success(analysis.Payload{Summary: "ok"})
}

func TestListTransactions_MaterializesItems(t *testing.T) {
	txs := []domain.Transaction{
		{ID: 1, Date: civil.Date{Year: 2024, Month: 3, Day: 2}, Amount: 120, Description: "Grocery (Milk, Eggs)"},
		{ID: 2, Date: civil.Date{Year: 2024, Month: 3, Day: 1}, Amount: 90, Description: "Market (Ignored)"},
		{ID: 3, Date: civil.Date{Year: 2024, Month: 3, Day: 1}, Amount: 30, Description: "Coffee"},
	}
	ms := &MockStore{
		ReadTransactionsFunc: func(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
			return txs, nil
		},
		ReadItemsFunc: func(ctx context.Context, id int64) ([]domain.Item, error) {
			if id == 2 {
				return []domain.Item{{ID: 10, TransactionID: 2, Name: "Rice", Quantity: 2, UnitPrice: 45}}, nil
			}
			return []domain.Item{}, nil
		},
	}

	views, err := NewService(ms, &MockAnalyzer{}).ListTransactions(context.Background(), domain.TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}

	tests := []struct {
		id         int64
		wantCount  int
		wantSource items.Provenance
		wantFirst  string
	}{
		{id: 1, wantCount: 2, wantSource: items.ProvenanceDerived, wantFirst: "Milk"},
		{id: 2, wantCount: 1, wantSource: items.ProvenancePersisted, wantFirst: "Rice (x2)"},
		{id: 3, wantCount: 0, wantSource: items.ProvenanceDerived},
	}
	for i, tt := range tests {
		v := views[i]
		if v.ID != tt.id || v.ItemCount != tt.wantCount || v.ItemSource != tt.wantSource {
			t.Errorf("view %d = id %d count %d source %q", i, v.ID, v.ItemCount, v.ItemSource)
		}
		if tt.wantFirst != "" && v.Items[0].Formatted != tt.wantFirst {
			t.Errorf("view %d first item = %q, want %q", i, v.Items[0].Formatted, tt.wantFirst)
		}
	}
}

func TestListTransactions_StoreError(t *testing.T) {
	ms := &MockStore{
		ReadItemsFunc: func(ctx context.Context, id int64) ([]domain.Item, error) {
			return nil, errors.New("disk I/O error")
		},
		ReadTransactionsFunc: func(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
			return []domain.Transaction{{ID: 1}}, nil
		},
	}

	if _, err := NewService(ms, &MockAnalyzer{}).ListTransactions(context.Background(), domain.TransactionFilter{}); err == nil {
		t.Error("expected error")
	}
}

func TestGetTransaction_NotFound(t *testing.T) {
	_, err := NewService(&MockStore{}, &MockAnalyzer{}).GetTransaction(context.Background(), 42)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestAnalyzeRecent(t *testing.T) {
	txs := make([]domain.Transaction, 70)
	for i := range txs {
		txs[i] = domain.Transaction{ID: int64(i + 1)}
	}
	var gotFilter domain.TransactionFilter
	ms := &MockStore{
		ReadTransactionsFunc: func(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
			gotFilter = filter
			return txs, nil
		},
	}
	ma := &MockAnalyzer{}

	filter := domain.TransactionFilter{Category: "Food"}
	res, err := NewService(ms, ma).AnalyzeRecent(context.Background(), filter, "be brief", "llama3")
	if err != nil {
		t.Fatalf("AnalyzeRecent: %v", err)
	}

	if !res.OK() {
		t.Errorf("unexpected result %+v", res)
	}
	if gotFilter.Category != "Food" {
		t.Errorf("filter not passed through: %+v", gotFilter)
	}
	if len(ma.Last.Transactions) != RecentLimit || ma.Last.Transactions[0].ID != 1 {
		t.Errorf("analyzer got %d transactions starting at %d", len(ma.Last.Transactions), ma.Last.Transactions[0].ID)
	}
	if ma.Last.Instruction != "be brief" || ma.Last.ModelOverride != "llama3" {
		t.Errorf("unexpected request %+v", ma.Last)
	}
}

func TestAnalyzeRecent_StoreError(t *testing.T) {
	ms := &MockStore{
		ReadTransactionsFunc: func(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
			return nil, errors.New("database is locked")
		},
	}
	ma := &MockAnalyzer{}

	if _, err := NewService(ms, ma).AnalyzeRecent(context.Background(), domain.TransactionFilter{}, "", ""); err == nil {
		t.Error("expected error")
	}
	if ma.Last.Transactions != nil {
		t.Error("analyzer should not be called when the store fails")
	}
}

func TestDashboard(t *testing.T) {
	ms := &MockStore{
		ReadTransactionsFunc: func(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
			return []domain.Transaction{{ID: 1, Amount: 0.1}, {ID: 2, Amount: 0.2}}, nil
		},
		SummaryByCategoryFunc: func(ctx context.Context, filter domain.TransactionFilter) ([]domain.CategorySummary, error) {
			return []domain.CategorySummary{{Category: "Food", Amount: 0.3, Count: 2}}, nil
		},
	}

	d, err := NewService(ms, &MockAnalyzer{}).Dashboard(context.Background(), domain.TransactionFilter{})
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.Balance.Expenses != 0.3 || d.Balance.Balance != -0.3 {
		t.Errorf("Balance = %+v, want exact 0.3", d.Balance)
	}
	if len(d.Transactions) != 2 || len(d.CategorySummary) != 1 {
		t.Errorf("unexpected dashboard %+v", d)
	}
}

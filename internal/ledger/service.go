// Package ledger composes store reads with item materialization and analysis.
package ledger

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-insights/internal/analysis"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/items"
	"github.com/dvloznov/finance-insights/internal/store"
	"github.com/shopspring/decimal"
)

// RecentLimit is how many of the most recent filtered transactions are analyzed.
const RecentLimit = 50

// TransactionView is a transaction with its materialized item breakdown.
type TransactionView struct {
	domain.Transaction
	Items      []items.ItemView `json:"items"`
	ItemCount  int              `json:"item_count"`
	ItemSource items.Provenance `json:"item_source"`
}

// Dashboard is everything the overview screen shows at once.
type Dashboard struct {
	Balance         domain.Balance           `json:"balance"`
	Transactions    []TransactionView        `json:"transactions"`
	CategorySummary []domain.CategorySummary `json:"category_summary"`
	DateSummary     []domain.DateSummary     `json:"date_summary"`
	Categories      []domain.Category        `json:"categories"`
}

// Analyzer is the part of analysis.Analyzer the service uses.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) analysis.Result
}

// Service is the read side of the ledger.
type Service struct {
	store    store.Store
	analyzer Analyzer
}

// NewService creates a ledger service.
func NewService(s store.Store, a Analyzer) *Service {
	return &Service{store: s, analyzer: a}
}

// ListTransactions returns filtered transactions, newest first, each with its items.
func (s *Service) ListTransactions(ctx context.Context, filter domain.TransactionFilter) ([]TransactionView, error) {
	txs, err := s.store.ReadTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: reading transactions: %w", err)
	}

	views := make([]TransactionView, 0, len(txs))
	for _, tx := range txs {
		v, err := s.view(ctx, tx)
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: %w", err)
		}
		views = append(views, v)
	}
	return views, nil
}

// GetTransaction returns one transaction view or store.ErrNotFound.
func (s *Service) GetTransaction(ctx context.Context, id int64) (TransactionView, error) {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return TransactionView{}, fmt.Errorf("GetTransaction: %w", err)
	}
	return s.view(ctx, tx)
}

func (s *Service) view(ctx context.Context, tx domain.Transaction) (TransactionView, error) {
	persisted, err := s.store.ReadItems(ctx, tx.ID)
	if err != nil {
		return TransactionView{}, fmt.Errorf("reading items of transaction %d: %w", tx.ID, err)
	}
	list := items.Materialize(tx, persisted)
	return TransactionView{
		Transaction: tx,
		Items:       list.Items,
		ItemCount:   list.Count(),
		ItemSource:  list.Provenance,
	}, nil
}

// Dashboard composes balance, transactions, summaries and categories for one filter.
func (s *Service) Dashboard(ctx context.Context, filter domain.TransactionFilter) (Dashboard, error) {
	txs, err := s.ListTransactions(ctx, filter)
	if err != nil {
		return Dashboard{}, fmt.Errorf("Dashboard: %w", err)
	}
	byCategory, err := s.store.SummaryByCategory(ctx, filter)
	if err != nil {
		return Dashboard{}, fmt.Errorf("Dashboard: %w", err)
	}
	byDate, err := s.store.SummaryByDate(ctx, filter)
	if err != nil {
		return Dashboard{}, fmt.Errorf("Dashboard: %w", err)
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("Dashboard: %w", err)
	}

	return Dashboard{
		Balance:         balanceOf(txs),
		Transactions:    txs,
		CategorySummary: byCategory,
		DateSummary:     byDate,
		Categories:      categories,
	}, nil
}

// balanceOf sums the listed transactions exactly so the dashboard total
// matches the rows it shows, category and platform filters included.
func balanceOf(views []TransactionView) domain.Balance {
	total := decimal.Zero
	for _, v := range views {
		total = total.Add(decimal.NewFromFloat(v.Amount))
	}
	expenses := total.Round(2).InexactFloat64()
	return domain.Balance{Income: 0, Expenses: expenses, Balance: -expenses}
}

// AnalyzeRecent analyzes the most recent transactions matching filter. Only
// a store failure returns an error; analysis problems come back as a
// Failure result.
func (s *Service) AnalyzeRecent(ctx context.Context, filter domain.TransactionFilter, instruction, model string) (analysis.Result, error) {
	txs, err := s.store.ReadTransactions(ctx, filter)
	if err != nil {
		return analysis.Result{}, fmt.Errorf("AnalyzeRecent: reading transactions: %w", err)
	}
	if len(txs) > RecentLimit {
		txs = txs[:RecentLimit]
	}

	return s.analyzer.Analyze(ctx, analysis.Request{
		Transactions:  txs,
		Instruction:   instruction,
		ModelOverride: model,
	}), nil
}

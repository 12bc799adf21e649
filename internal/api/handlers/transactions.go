package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dvloznov/finance-insights/internal/api/middleware"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/store"
)

// TransactionsHandler serves transactions and their items.
type TransactionsHandler struct {
	ledger Ledger
	store  store.Writer
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(l Ledger, w store.Writer) *TransactionsHandler {
	return &TransactionsHandler{ledger: l, store: w}
}

type transactionRequest struct {
	Date        *string  `json:"date"`
	Amount      *float64 `json:"amount"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Platform    *string  `json:"platform"`
}

type itemRequest struct {
	Name      *string  `json:"name"`
	Quantity  *int     `json:"quantity"`
	UnitPrice *float64 `json:"unit_price"`
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseFilter(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	views, err := h.ledger.ListTransactions(r.Context(), filter)
	if err != nil {
		writeStoreError(w, logger.FromContext(r.Context()), err, "Transactions")
		return
	}

	middleware.WriteList(w, views, len(views))
}

// GetTransaction handles GET /api/transactions/{id}
func (h *TransactionsHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		writeStoreError(w, logger.FromContext(r.Context()), err, "Transaction")
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, view)
}

// CreateTransaction handles POST /api/transactions
func (h *TransactionsHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Date == nil || req.Amount == nil || req.Category == nil || strings.TrimSpace(*req.Category) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "date, amount and category are required")
		return
	}
	date, err := parseDate(*req.Date)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
		return
	}
	if *req.Amount < 0 {
		middleware.WriteError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}

	params := domain.CreateTransactionParams{
		Date:     date,
		Amount:   *req.Amount,
		Category: strings.TrimSpace(*req.Category),
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.Platform != nil {
		params.Platform = strings.TrimSpace(*req.Platform)
	}

	tx, err := h.store.CreateTransaction(r.Context(), params)
	if err != nil {
		writeStoreError(w, logger.FromContext(r.Context()), err, "Transaction")
		return
	}

	middleware.WriteSuccess(w, http.StatusCreated, tx)
}

// UpdateTransaction handles PUT /api/transactions/{id}
func (h *TransactionsHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	params := domain.UpdateTransactionParams{
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Platform:    req.Platform,
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		params.Date = &date
	}
	if params.IsEmpty() {
		middleware.WriteError(w, http.StatusBadRequest, "No fields to update")
		return
	}
	if params.Amount != nil && *params.Amount < 0 {
		middleware.WriteError(w, http.StatusBadRequest, "amount must not be negative")
		return
	}
	if params.Category != nil && strings.TrimSpace(*params.Category) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "category must not be empty")
		return
	}

	tx, err := h.store.UpdateTransaction(r.Context(), id, params)
	if err != nil {
		writeStoreError(w, logger.FromContext(r.Context()), err, "Transaction")
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, tx)
}

// DeleteTransaction handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.DeleteTransaction(r.Context(), id); err != nil {
		writeStoreError(w, logger.FromContext(r.Context()), err, "Transaction")
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, map[string]int64{"id": id})
}

// AddItem handles POST /api/transactions/{id}/items
func (h *TransactionsHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	params := domain.CreateItemParams{Name: strings.TrimSpace(*req.Name), Quantity: 1}
	if req.Quantity != nil {
		params.Quantity = *req.Quantity
	}
	if req.UnitPrice != nil {
		params.UnitPrice = *req.UnitPrice
	}
	if params.Quantity < 1 || params.UnitPrice < 0 {
		middleware.WriteError(w, http.StatusBadRequest, "quantity must be positive and unit_price not negative")
		return
	}

	item, err := h.store.AddItem(r.Context(), id, params)
	if err != nil {
		writeStoreError(w, logger.FromContext(r.Context()), err, "Transaction")
		return
	}

	middleware.WriteSuccess(w, http.StatusCreated, item)
}

// UpdateItem handles PUT /api/items/{id}
func (h *TransactionsHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	params := domain.UpdateItemParams{Name: req.Name, Quantity: req.Quantity, UnitPrice: req.UnitPrice}
	if params.IsEmpty() {
		middleware.WriteError(w, http.StatusBadRequest, "No fields to update")
		return
	}
	if (params.Name != nil && strings.TrimSpace(*params.Name) == "") ||
		(params.Quantity != nil && *params.Quantity < 1) ||
		(params.UnitPrice != nil && *params.UnitPrice < 0) {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid item fields")
		return
	}

	item, err := h.store.UpdateItem(r.Context(), id, params)
	if err != nil {
		writeStoreError(w, logger.FromContext(r.Context()), err, "Item")
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, item)
}

// DeleteItem handles DELETE /api/items/{id}
func (h *TransactionsHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.DeleteItem(r.Context(), id); err != nil {
		writeStoreError(w, logger.FromContext(r.Context()), err, "Item")
		return
	}

	middleware.WriteSuccess(w, http.StatusOK, map[string]int64{"id": id})
}

package api

import (
	"net/http"
	"time"

	"github.com/YouWantToPinch/hearth-api/internal/database"
	"github.com/YouWantToPinch/hearth-api/internal/report"
)

func (cfg *APIConfig) handleGetExpenses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := database.ExpenseFilter{
		Category: query.Get("category"),
		PaidBy:   query.Get("paidBy"),
		Kind:     query.Get("transactionType"),
	}
	if filter.Kind != "" && filter.Kind != database.KindExpense && filter.Kind != database.KindEarning {
		respondWithError(w, http.StatusBadRequest, "transactionType must be 'expense' or 'earning'", nil)
		return
	}

	if err := parseDateFromQuery("startDate", r, &filter.Start); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid startDate", err)
		return
	}
	if err := parseDateFromQuery("endDate", r, &filter.End); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid endDate", err)
		return
	}
	// endDate is inclusive; a bare date covers that whole day
	if !filter.End.IsZero() {
		if len(query.Get("endDate")) == len(time.DateOnly) {
			filter.End = filter.End.AddDate(0, 0, 1)
		} else {
			filter.End = filter.End.Add(time.Second)
		}
	}

	sortFields, err := database.ParseExpenseSort(query.Get("sort"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid sort", err)
		return
	}
	filter.Sort = sortFields

	limit, ok, err := parseIntFromQuery("limit", r)
	if err != nil || (ok && limit <= 0) {
		respondWithError(w, http.StatusBadRequest, "limit must be a positive integer", err)
		return
	}
	filter.Limit = limit

	dbExpenses, err := cfg.store.ListExpenses(r.Context(), filter)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, msgInternal, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newListResponse(expensesFromDB(dbExpenses)))
}

func (cfg *APIConfig) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	pathExpenseID, err := parseIDFromPath("expense_id", r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid expense id", err)
		return
	}

	dbExpense, err := cfg.store.GetExpense(r.Context(), pathExpenseID)
	if err != nil {
		respondWithStoreError(w, "Expense", err)
		return
	}
	respondWithJSON(w, http.StatusOK, itemResponse[Expense]{Success: true, Data: expenseFromDB(dbExpense)})
}

func (cfg *APIConfig) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	rqPayload, err := decodePayload[expensePayload](r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	valid, errs := rqPayload.validate(false)
	if errs.any() {
		respondWithValidationErrors(w, msgValidationFailed, errs)
		return
	}

	params := database.CreateExpenseParams{
		Description:     *rqPayload.Description,
		AmountCents:     *valid.amountCents,
		Category:        *rqPayload.Category,
		Date:            time.Now().UTC().Truncate(time.Second),
		PaidBy:          *rqPayload.PaidBy,
		TransactionType: database.KindExpense,
	}
	if valid.date != nil {
		params.Date = *valid.date
	}
	if rqPayload.TransactionType != nil && *rqPayload.TransactionType != "" {
		params.TransactionType = *rqPayload.TransactionType
	}

	dbExpense, err := cfg.store.CreateExpense(r.Context(), params)
	if err != nil {
		respondWithStoreError(w, "Expense", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, itemResponse[Expense]{
		Success: true,
		Message: "Expense created successfully",
		Data:    expenseFromDB(dbExpense),
	})
}

func (cfg *APIConfig) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	pathExpenseID, err := parseIDFromPath("expense_id", r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid expense id", err)
		return
	}

	rqPayload, err := decodePayload[expensePayload](r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	valid, errs := rqPayload.validate(true)
	if errs.any() {
		respondWithValidationErrors(w, msgValidationFailed, errs)
		return
	}

	params := database.UpdateExpenseParams{
		ID:          pathExpenseID,
		Description: rqPayload.Description,
		AmountCents: valid.amountCents,
		Category:    rqPayload.Category,
		Date:        valid.date,
		PaidBy:      rqPayload.PaidBy,
	}
	if rqPayload.TransactionType != nil && *rqPayload.TransactionType != "" {
		params.TransactionType = rqPayload.TransactionType
	}

	dbExpense, err := cfg.store.UpdateExpense(r.Context(), params)
	if err != nil {
		respondWithStoreError(w, "Expense", err)
		return
	}
	respondWithJSON(w, http.StatusOK, itemResponse[Expense]{
		Success: true,
		Message: "Expense updated successfully",
		Data:    expenseFromDB(dbExpense),
	})
}

func (cfg *APIConfig) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	pathExpenseID, err := parseIDFromPath("expense_id", r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid expense id", err)
		return
	}

	if err := cfg.store.DeleteExpense(r.Context(), pathExpenseID); err != nil {
		respondWithStoreError(w, "Expense", err)
		return
	}
	respondWithMessage(w, http.StatusOK, "Expense deleted successfully")
}

func (cfg *APIConfig) handleGetExpenseStats(w http.ResponseWriter, r *http.Request) {
	type rspSchema struct {
		Success bool `json:"success"`
		report.Stats
	}

	stats, err := cfg.reports.Stats(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, msgInternal, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rspSchema{Success: true, Stats: stats})
}

package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/YouWantToPinch/hearth-api/internal/report"
)

// parsePeriod reads year and, when wantMonth is set, month from the query.
func parsePeriod(r *http.Request, wantMonth bool) (year, month int, err error) {
	query := r.URL.Query()
	year, err = strconv.Atoi(query.Get("year"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: year %q", report.ErrInvalidPeriod, query.Get("year"))
	}
	if !wantMonth {
		return year, 0, nil
	}
	month, err = strconv.Atoi(query.Get("month"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: month %q", report.ErrInvalidPeriod, query.Get("month"))
	}
	return year, month, nil
}

func (cfg *APIConfig) handleGetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	type rspSchema struct {
		Success bool `json:"success"`
		report.Monthly
		Transactions []Expense `json:"transactions"`
	}

	monthly, ok := cfg.loadMonthly(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, rspSchema{
		Success:      true,
		Monthly:      monthly,
		Transactions: expensesFromDB(monthly.Transactions),
	})
}

func (cfg *APIConfig) handleGetMonthlyReportPDF(w http.ResponseWriter, r *http.Request) {
	monthly, ok := cfg.loadMonthly(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := report.WriteMonthlyPDF(&buf, monthly); err != nil {
		respondWithError(w, http.StatusInternalServerError, msgInternal, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="hearth-report-%04d-%02d.pdf"`, monthly.Year, monthly.Month))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (cfg *APIConfig) loadMonthly(w http.ResponseWriter, r *http.Request) (report.Monthly, bool) {
	query := r.URL.Query()
	if query.Get("year") == "" || query.Get("month") == "" {
		respondWithError(w, http.StatusBadRequest, "Please provide year and month", nil)
		return report.Monthly{}, false
	}
	year, month, err := parsePeriod(r, true)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid year or month", err)
		return report.Monthly{}, false
	}

	monthly, err := cfg.reports.Monthly(r.Context(), year, month)
	switch {
	case errors.Is(err, report.ErrInvalidPeriod):
		respondWithError(w, http.StatusBadRequest, "Invalid year or month", err)
		return report.Monthly{}, false
	case err != nil:
		respondWithError(w, http.StatusInternalServerError, msgInternal, err)
		return report.Monthly{}, false
	}
	return monthly, true
}

func (cfg *APIConfig) handleGetYearlyReport(w http.ResponseWriter, r *http.Request) {
	type rspSchema struct {
		Success bool `json:"success"`
		report.Yearly
	}

	if r.URL.Query().Get("year") == "" {
		respondWithError(w, http.StatusBadRequest, "Please provide year", nil)
		return
	}
	year, _, err := parsePeriod(r, false)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	yearly, err := cfg.reports.Yearly(r.Context(), year)
	switch {
	case errors.Is(err, report.ErrInvalidPeriod):
		respondWithError(w, http.StatusBadRequest, "Invalid year", err)
		return
	case err != nil:
		respondWithError(w, http.StatusInternalServerError, msgInternal, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rspSchema{Success: true, Yearly: yearly})
}

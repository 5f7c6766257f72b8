package database

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const expenseColumns = `id, description, amount_cents, category, date, paid_by, transaction_type, created_at, updated_at`

// sortColumns maps the sortable field names exposed to clients onto columns.
var sortColumns = map[string]string{
	"id":              "id",
	"date":            "date",
	"amount":          "amount_cents",
	"description":     "description",
	"category":        "category",
	"paidBy":          "paid_by",
	"transactionType": "transaction_type",
	"createdAt":       "created_at",
	"updatedAt":       "updated_at",
}

// ParseExpenseSort reads a comma separated list such as "-date,amount".
// A leading '-' sorts that field descending.
func ParseExpenseSort(raw string) ([]SortField, error) {
	var fields []SortField
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f := SortField{Field: part}
		if strings.HasPrefix(part, "-") {
			f = SortField{Field: part[1:], Desc: true}
		}
		if _, ok := sortColumns[f.Field]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSort, f.Field)
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func scanExpense(row interface{ Scan(...any) error }) (Expense, error) {
	var e Expense
	err := row.Scan(
		&e.ID,
		&e.Description,
		&e.AmountCents,
		&e.Category,
		dbTime{&e.Date},
		&e.PaidBy,
		&e.TransactionType,
		dbTime{&e.CreatedAt},
		dbTime{&e.UpdatedAt},
	)
	return e, err
}

const createExpense = `
INSERT INTO expenses (description, amount_cents, category, date, paid_by, transaction_type, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + expenseColumns

func (s *SQLStore) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	now := s.stamp()
	row := s.queryRow(ctx, createExpense,
		arg.Description,
		arg.AmountCents,
		arg.Category,
		s.d.timeArg(arg.Date),
		arg.PaidBy,
		arg.TransactionType,
		now,
		now,
	)
	e, err := scanExpense(row)
	return e, classify(err)
}

func (s *SQLStore) GetExpense(ctx context.Context, id int64) (Expense, error) {
	e, err := scanExpense(s.queryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id))
	return e, classify(err)
}

func (s *SQLStore) ListExpenses(ctx context.Context, filter ExpenseFilter) ([]Expense, error) {
	where, args := s.expenseWhere(filter.Category, filter.PaidBy, filter.Kind, filter.Start, filter.End)

	q := `SELECT ` + expenseColumns + ` FROM expenses` + where

	order := make([]string, 0, len(filter.Sort)+1)
	byID := false
	for _, f := range filter.Sort {
		col, ok := sortColumns[f.Field]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSort, f.Field)
		}
		byID = byID || col == "id"
		dir := "ASC"
		if f.Desc {
			dir = "DESC"
		}
		order = append(order, col+" "+dir)
	}
	if len(order) == 0 {
		order = append(order, "date DESC", "id DESC")
	} else if !byID {
		order = append(order, "id ASC")
	}
	q += " ORDER BY " + strings.Join(order, ", ")

	if filter.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	expenses := []Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (s *SQLStore) expenseWhere(category, paidBy, kind string, start, end time.Time) (string, []any) {
	var where []string
	var args []any
	if category != "" {
		where = append(where, "category "+s.d.like+` ? ESCAPE '\'`)
		args = append(args, escapeLike(category))
	}
	if paidBy != "" {
		where = append(where, "paid_by "+s.d.like+` ? ESCAPE '\'`)
		args = append(args, escapeLike(paidBy))
	}
	if kind != "" {
		where = append(where, "transaction_type = ?")
		args = append(args, kind)
	}
	if !start.IsZero() {
		where = append(where, "date >= ?")
		args = append(args, s.d.timeArg(start))
	}
	if !end.IsZero() {
		where = append(where, "date < ?")
		args = append(args, s.d.timeArg(end))
	}
	if len(where) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

const updateExpense = `
UPDATE expenses SET
	description = COALESCE(?, description),
	amount_cents = COALESCE(?, amount_cents),
	category = COALESCE(?, category),
	date = COALESCE(?, date),
	paid_by = COALESCE(?, paid_by),
	transaction_type = COALESCE(?, transaction_type),
	updated_at = ?
WHERE id = ?
RETURNING ` + expenseColumns

func (s *SQLStore) UpdateExpense(ctx context.Context, arg UpdateExpenseParams) (Expense, error) {
	row := s.queryRow(ctx, updateExpense,
		nullString(arg.Description),
		nullInt64(arg.AmountCents),
		nullString(arg.Category),
		s.d.nullTimeArg(arg.Date),
		nullString(arg.PaidBy),
		nullString(arg.TransactionType),
		s.stamp(),
		arg.ID,
	)
	e, err := scanExpense(row)
	return e, classify(err)
}

func (s *SQLStore) DeleteExpense(ctx context.Context, id int64) error {
	return s.execOne(ctx, `DELETE FROM expenses WHERE id = ?`, id)
}

// SumExpensesBy totals amounts per distinct value of q.Field, largest first.
func (s *SQLStore) SumExpensesBy(ctx context.Context, q GroupQuery) ([]GroupTotal, error) {
	switch q.Field {
	case GroupByCategory, GroupByPaidBy, GroupByKind:
	default:
		return nil, fmt.Errorf("cannot group expenses by %q", q.Field)
	}
	where, args := s.expenseWhere("", "", q.Kind, q.Start, q.End)
	query := `SELECT ` + q.Field + `, CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT), COUNT(*)
FROM expenses` + where + `
GROUP BY ` + q.Field + `
ORDER BY 2 DESC, 1 ASC`

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	totals := []GroupTotal{}
	for rows.Next() {
		var g GroupTotal
		if err := rows.Scan(&g.Key, &g.TotalCents, &g.Count); err != nil {
			return nil, err
		}
		totals = append(totals, g)
	}
	return totals, rows.Err()
}

// SumExpensesByMonth totals amounts per calendar month and kind within
// [start, end). Months with no rows are absent.
func (s *SQLStore) SumExpensesByMonth(ctx context.Context, start, end time.Time) ([]MonthTotal, error) {
	where, args := s.expenseWhere("", "", "", start, end)
	query := `SELECT ` + s.d.monthExpr + `, transaction_type, CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT), COUNT(*)
FROM expenses` + where + `
GROUP BY 1, 2
ORDER BY 1, 2`

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	totals := []MonthTotal{}
	for rows.Next() {
		var m MonthTotal
		if err := rows.Scan(&m.Month, &m.Kind, &m.TotalCents, &m.Count); err != nil {
			return nil, err
		}
		totals = append(totals, m)
	}
	return totals, rows.Err()
}
